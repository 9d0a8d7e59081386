package bst

import "fmt"

// bailout unwinds the parser after the first syntax error.
type bailout struct{}

type parser struct {
	l *Lexer
}

// Parse lexes and parses a complete BST program.
func Parse(src string) (*ASTNode, error) {
	l := NewLexer(src)
	l.NextToken()
	program := ParseProgram(l)
	if l.Errors.HasErrors() {
		return nil, l.Errors
	}
	return program, nil
}

// ParseProgram parses commands until EOF. Errors are recorded in l.Errors;
// when there are any, the returned tree is incomplete and must not be run.
func ParseProgram(l *Lexer) (program *ASTNode) {
	p := &parser{l: l}
	program = &ASTNode{Kind: NodeProgram, Line: l.CurrLine, Col: l.CurrCol}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
	}()

	for l.CurrTokenType != EOF {
		program.Children = append(program.Children, p.parseCommand())
	}
	if len(program.Children) == 0 {
		p.fail("empty program")
	}
	return program
}

// fail records a syntax error at the current token and stops parsing. A
// lexer error at the same token is reported on its own.
func (p *parser) fail(format string, args ...any) {
	if p.l.CurrTokenType != ILLEGAL {
		p.l.Errors.Add(p.l.CurrLine, p.l.CurrCol, format, args...)
	}
	panic(bailout{})
}

func describe(l *Lexer) string {
	switch l.CurrTokenType {
	case EOF:
		return "end of input"
	case STRING:
		return fmt.Sprintf("string %q", l.CurrLiteral)
	case INT:
		return "integer #" + l.CurrLiteral
	case QUOTED:
		return "'" + l.CurrLiteral
	default:
		return fmt.Sprintf("%q", l.CurrLiteral)
	}
}

// SkipToken advances past the current token, asserting it matches the
// expected type.
func (p *parser) SkipToken(expectedType TokenType) {
	if p.l.CurrTokenType != expectedType {
		p.fail("expected %q but got %s", string(expectedType), describe(p.l))
	}
	p.l.NextToken()
}

func (p *parser) node(kind NodeKind) *ASTNode {
	return &ASTNode{Kind: kind, Line: p.l.CurrLine, Col: p.l.CurrCol}
}

func (p *parser) parseCommand() *ASTNode {
	switch p.l.CurrTokenType {
	case STRINGS:
		return p.parseDeclaration(NodeStrings)
	case INTEGERS:
		return p.parseDeclaration(NodeIntegers)
	case FUNCTION:
		return p.parseFunction()
	case MACRO:
		return p.parseMacro()
	case READ:
		n := p.node(NodeRead)
		p.l.NextToken()
		return n
	case SORT:
		n := p.node(NodeSort)
		p.l.NextToken()
		return n
	case EXECUTE:
		return p.parseRun(NodeExecute)
	case ITERATE:
		return p.parseRun(NodeIterate)
	case REVERSE:
		return p.parseRun(NodeReverse)
	case ENTRY:
		return p.parseEntry()
	default:
		p.fail("expected a command but got %s", describe(p.l))
		return nil
	}
}

// isName reports whether the current token can be used as a name.
// Command words are ordinary identifiers outside the top level.
func (p *parser) isName() bool {
	return p.l.CurrTokenType == IDENT || isKeyword(p.l.CurrTokenType)
}

func (p *parser) parseName() *ASTNode {
	if !p.isName() {
		p.fail("expected identifier but got %s", describe(p.l))
	}
	n := p.node(NodeIdent)
	n.String = p.l.CurrLiteral
	p.l.NextToken()
	return n
}

// parseIdentList parses `{ id* }`.
func (p *parser) parseIdentList(kind NodeKind) *ASTNode {
	n := p.node(kind)
	p.SkipToken(LBRACE)
	for p.isName() {
		n.Children = append(n.Children, p.parseName())
	}
	p.SkipToken(RBRACE)
	return n
}

// STRINGS { id+ } and INTEGERS { id+ }
func (p *parser) parseDeclaration(kind NodeKind) *ASTNode {
	line, col := p.l.CurrLine, p.l.CurrCol
	p.l.NextToken()
	n := p.parseIdentList(kind)
	n.Line, n.Col = line, col
	if len(n.Children) == 0 {
		p.l.Errors.Add(line, col, "%s needs at least one identifier", kind)
		panic(bailout{})
	}
	return n
}

// FUNCTION { id } { item* }
func (p *parser) parseFunction() *ASTNode {
	n := p.node(NodeFunction)
	p.l.NextToken()
	p.SkipToken(LBRACE)
	n.String = p.parseName().String
	p.SkipToken(RBRACE)
	n.Children = []*ASTNode{p.parseBlock()}
	return n
}

// MACRO { id } { "text" }
func (p *parser) parseMacro() *ASTNode {
	n := p.node(NodeMacro)
	p.l.NextToken()
	p.SkipToken(LBRACE)
	n.String = p.parseName().String
	p.SkipToken(RBRACE)
	p.SkipToken(LBRACE)
	if p.l.CurrTokenType != STRING {
		p.fail("expected macro string but got %s", describe(p.l))
	}
	n.Value = p.l.CurrLiteral
	p.l.NextToken()
	p.SkipToken(RBRACE)
	return n
}

// EXECUTE { item }, ITERATE { item }, REVERSE { item }
func (p *parser) parseRun(kind NodeKind) *ASTNode {
	n := p.node(kind)
	p.l.NextToken()
	p.SkipToken(LBRACE)
	if p.l.CurrTokenType == RBRACE {
		p.fail("%s needs a function", kind)
	}
	item := p.parseItem()
	switch item.Kind {
	case NodeCall, NodeBlock:
	default:
		p.l.Errors.Add(item.Line, item.Col, "%s needs a function, not a %s", kind, item.Kind)
		panic(bailout{})
	}
	n.Children = []*ASTNode{item}
	p.SkipToken(RBRACE)
	return n
}

// ENTRY { fields } { integers } { strings }
func (p *parser) parseEntry() *ASTNode {
	n := p.node(NodeEntry)
	p.l.NextToken()
	for range 3 {
		n.Children = append(n.Children, p.parseIdentList(NodeList))
	}
	return n
}

// parseBlock parses `{ item* }`.
func (p *parser) parseBlock() *ASTNode {
	n := p.node(NodeBlock)
	p.SkipToken(LBRACE)
	for p.l.CurrTokenType != RBRACE {
		if p.l.CurrTokenType == EOF {
			p.fail("unterminated function body starting at %d:%d", n.Line, n.Col)
		}
		n.Children = append(n.Children, p.parseItem())
	}
	p.SkipToken(RBRACE)
	return n
}

func (p *parser) parseItem() *ASTNode {
	typ := p.l.CurrTokenType
	switch {
	case typ == LBRACE:
		return p.parseBlock()
	case typ == STRING:
		n := p.node(NodeString)
		n.String = p.l.CurrLiteral
		p.l.NextToken()
		return n
	case typ == INT:
		n := p.node(NodeInteger)
		n.Integer = p.l.CurrIntValue
		p.l.NextToken()
		return n
	case typ == QUOTED:
		n := p.node(NodeQuoted)
		n.String = p.l.CurrLiteral
		p.l.NextToken()
		return n
	case p.isName() || isOperator(typ):
		n := p.node(NodeCall)
		n.String = p.l.CurrLiteral
		p.l.NextToken()
		return n
	default:
		p.fail("unexpected %s in function body", describe(p.l))
		return nil
	}
}
