package parser

import (
	"fmt"
	"strings"
	"testing"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseSource(t *testing.T, src string) (Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.4gl", []byte(src)))
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	toks := lexer.Tokenize(file, lexer.Options{Reporter: rep})
	return ParseFile(file, toks, Options{Reporter: rep}), bag
}

func parseClean(t *testing.T, src string) Result {
	t.Helper()
	res, bag := parseSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return res
}

// nodesOf collects nodes of kind in document order.
func nodesOf(tree *ast.Tree, kind ast.NodeKind) []ast.NodeID {
	var out []ast.NodeID
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		if n.Kind == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}
