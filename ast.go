package bst

import (
	"strconv"

	"github.com/strager/bst/sexy"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeProgram NodeKind = "program"

	// Commands
	NodeStrings  NodeKind = "strings"
	NodeIntegers NodeKind = "integers"
	NodeFunction NodeKind = "function"
	NodeMacro    NodeKind = "macro"
	NodeRead     NodeKind = "read"
	NodeExecute  NodeKind = "execute"
	NodeIterate  NodeKind = "iterate"
	NodeReverse  NodeKind = "reverse"
	NodeEntry    NodeKind = "entry"
	NodeSort     NodeKind = "sort"

	// Declarations
	NodeList  NodeKind = "list"
	NodeIdent NodeKind = "ident"

	// Stack items
	NodeCall    NodeKind = "call"
	NodeString  NodeKind = "string"
	NodeInteger NodeKind = "integer"
	NodeQuoted  NodeKind = "quoted"
	NodeBlock   NodeKind = "block"
)

// ASTNode represents a node in the syntax tree of a BST program.
type ASTNode struct {
	Kind NodeKind
	// NodeFunction, NodeMacro: the defined name.
	// NodeIdent, NodeCall, NodeQuoted: the identifier.
	// NodeString: the literal text.
	String string
	// NodeInteger:
	Integer int
	// NodeMacro: the macro text.
	Value string
	// Position of the first token of the node.
	Line int
	Col  int
	// NodeProgram: commands. NodeStrings, NodeIntegers, NodeList: idents.
	// NodeFunction: the body block. NodeExecute, NodeIterate, NodeReverse:
	// the single item to run. NodeEntry: three lists (fields, integers,
	// strings). NodeBlock: stack items.
	Children []*ASTNode
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	return toSexy(node).String()
}

func toSexy(node *ASTNode) *sexy.Node {
	head := sexy.NewSymbol(string(node.Kind))
	switch node.Kind {
	case NodeIdent, NodeCall, NodeString, NodeQuoted:
		return sexy.NewList([]*sexy.Node{head, sexy.NewString(node.String)})
	case NodeInteger:
		return sexy.NewList([]*sexy.Node{head, sexy.NewInteger(strconv.Itoa(node.Integer))})
	case NodeMacro:
		return sexy.NewList([]*sexy.Node{head, sexy.NewString(node.String), sexy.NewString(node.Value)})
	case NodeFunction:
		items := []*sexy.Node{head, sexy.NewString(node.String)}
		for _, child := range node.Children {
			items = append(items, toSexy(child))
		}
		return sexy.NewList(items)
	case NodeStrings, NodeIntegers, NodeList:
		items := []*sexy.Node{head}
		for _, child := range node.Children {
			items = append(items, sexy.NewString(child.String))
		}
		return sexy.NewList(items)
	default:
		items := []*sexy.Node{head}
		for _, child := range node.Children {
			items = append(items, toSexy(child))
		}
		return sexy.NewList(items)
	}
}
