package bst

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/strager/bst/bib"
	"github.com/strager/bst/sexy"
)

func TestSexyAllTests(t *testing.T) {
	testFiles, err := filepath.Glob("testdata/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		fileName := filepath.Base(testFile)
		testName := strings.TrimSuffix(fileName, ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					runTestCase(t, tc)
				})
			}
		})
	}
}

func runTestCase(t *testing.T, tc sexy.TestCase) {
	wantErr := ""
	for _, a := range tc.Assertions {
		if a.Type == sexy.AssertionTypeError {
			wantErr = a.Content
		}
	}

	program, err := Parse(tc.Input)
	if err != nil {
		if wantErr == "" {
			t.Fatalf("parse failed: %v", err)
		}
		if !strings.Contains(err.Error(), wantErr) {
			t.Fatalf("parse error %q does not mention %q", err, wantErr)
		}
		return
	}

	needsRun := false
	for _, a := range tc.Assertions {
		if a.Type == sexy.AssertionTypeAST {
			assertText(t, a, ToSExpr(program), a.ParsedSexy.String())
		} else {
			needsRun = true
		}
	}
	if !needsRun {
		return
	}

	bibliography, err := loadData(tc)
	be.Err(t, err, nil)

	vm := New(program, DefaultOptions())
	res, runErr := vm.Run(context.Background(), bibliography)
	if runErr != nil && wantErr == "" {
		t.Fatalf("run failed: %v", runErr)
	}

	for _, a := range tc.Assertions {
		switch a.Type {
		case sexy.AssertionTypeStack:
			assertText(t, a, StackSExpr(vm.Stack()), a.ParsedSexy.String())
		case sexy.AssertionTypeOutput:
			assertText(t, a, strings.TrimRight(res.Output, "\n"), a.Content)
		case sexy.AssertionTypeWarnings:
			lines := make([]string, len(res.Warnings))
			for i, w := range res.Warnings {
				lines[i] = w.String()
			}
			assertText(t, a, strings.Join(lines, "\n"), a.Content)
		case sexy.AssertionTypeError:
			if runErr == nil {
				t.Errorf("line %d: expected an error mentioning %q", a.Line, a.Content)
			} else if !strings.Contains(runErr.Error(), a.Content) {
				t.Errorf("line %d: error %q does not mention %q", a.Line, runErr, a.Content)
			}
		}
	}
}

func loadData(tc sexy.TestCase) (Bibliography, error) {
	switch tc.DataType {
	case sexy.DataTypeBib:
		f, err := bib.ParseString(tc.Data, tc.Name+".bib")
		if err != nil {
			return Bibliography{}, err
		}
		return NewBibliography(f.Records, f.Preamble), nil
	case sexy.DataTypeYAML:
		f, err := bib.ParseYAML(strings.NewReader(tc.Data), tc.Name+".yaml")
		if err != nil {
			return Bibliography{}, err
		}
		return NewBibliography(f.Records, f.Preamble), nil
	case "":
		return Bibliography{}, nil
	default:
		return Bibliography{}, fmt.Errorf("unknown data type %s", tc.DataType)
	}
}

// assertText compares multi-line text and reports a unified diff.
func assertText(t *testing.T, a sexy.Assertion, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want + "\n"),
		B:        difflib.SplitLines(got + "\n"),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("line %d: %s mismatch\n%s", a.Line, a.Type, diff)
}
