package parser

import (
	"strings"
	"testing"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
)

// checkSpans verifies that every child lies inside its parent and that
// children are ordered with unique starts.
func checkSpans(t *testing.T, tree *ast.Tree) {
	t.Helper()
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		var prev uint32
		for i, c := range n.Children {
			cn := tree.Node(c)
			if cn.Span.Start < n.Span.Start || cn.Span.End > n.Span.End {
				t.Errorf("%s %v escapes parent %s %v", cn.Kind, cn.Span, n.Kind, n.Span)
			}
			if i > 0 && cn.Span.Start <= prev {
				t.Errorf("children of %s not strictly ordered at %d", n.Kind, cn.Span.Start)
			}
			prev = cn.Span.Start
		}
		return true
	})
}

func TestFunctionScope(t *testing.T) {
	src := `FUNCTION add(a, b)
  DEFINE a, b INTEGER
  DEFINE total INTEGER
  LET total = a + b
  RETURN total
END FUNCTION
`
	res := parseClean(t, src)
	checkSpans(t, res.Tree)
	fn, ok := res.Module.Functions.Lookup("add")
	if !ok {
		t.Fatal("function add not registered")
	}
	if len(fn.Signature.Params) != 2 || fn.Signature.Params[0].Type == nil {
		t.Fatalf("unexpected signature %s", fn.Signature)
	}
	fr := res.Module.FunctionScope(fn.Node)
	if fr == nil {
		t.Fatal("no function scope")
	}
	a, _ := fr.Locals.Lookup("a")
	if a.Kind != symbols.SymbolParam {
		t.Errorf("a kind = %s, want param", a.Kind)
	}
	if _, ok := fr.Locals.Lookup("TOTAL"); !ok {
		t.Error("locals lookup must be case-insensitive")
	}
	if len(fr.Returns) != 1 || fr.Returns[0].Count != 1 {
		t.Errorf("returns = %+v", fr.Returns)
	}
	if got := res.Module.FunctionScopeAt(uint32(strings.Index(src, "LET"))); got != fr {
		t.Error("FunctionScopeAt must find the function")
	}
}

func TestInlineParamsAndReturns(t *testing.T) {
	res := parseClean(t, "FUNCTION f(x INTEGER, s STRING) RETURNS (INTEGER, STRING)\n  RETURN x, s\nEND FUNCTION\n")
	fn, _ := res.Module.Functions.Lookup("f")
	if len(fn.Signature.Returns) != 2 {
		t.Fatalf("want 2 return types, got %s", fn.Signature)
	}
}

func TestDuplicateMain(t *testing.T) {
	_, bag := parseSource(t, "MAIN\nEND MAIN\nMAIN\nEND MAIN\n")
	if bag.Count(diag.SynDuplicateMain) != 1 {
		t.Fatalf("want duplicate MAIN error, got %s", diagnosticsSummary(bag))
	}
}

func TestExitValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"exit for inside for", "FOR i = 1 TO 3\n EXIT FOR\nEND FOR", 0},
		{"exit for outside", "EXIT FOR", 1},
		{"exit while inside nested if", "WHILE TRUE\n IF i THEN EXIT WHILE END IF\nEND WHILE", 0},
		{"exit case", "CASE i\n WHEN 1 EXIT CASE\nEND CASE", 0},
		{"exit menu outside", "WHILE TRUE\n EXIT MENU\nEND WHILE", 1},
		{"exit program", "EXIT PROGRAM 1", 0},
		{"continue foreach", "FOREACH c INTO i\n CONTINUE FOREACH\nEND FOREACH", 0},
		{"continue case", "CASE\n WHEN i = 1 CONTINUE CASE\nEND CASE", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "MAIN\n DEFINE i INTEGER\n" + tt.body + "\nEND MAIN\n"
			_, bag := parseSource(t, src)
			got := bag.Count(diag.SynInvalidExit) + bag.Count(diag.SynInvalidContinue)
			if got != tt.want {
				t.Errorf("got %d exit/continue errors, want %d: %s", got, tt.want, diagnosticsSummary(bag))
			}
		})
	}
}

func TestMissingEndRecovers(t *testing.T) {
	src := `FUNCTION f()
  IF TRUE THEN
    CALL g()
END FUNCTION

FUNCTION h()
END FUNCTION
`
	res, bag := parseSource(t, src)
	if bag.Count(diag.SynExpectEnd) != 1 {
		t.Fatalf("want one missing END, got %s", diagnosticsSummary(bag))
	}
	if _, ok := res.Module.Functions.Lookup("h"); !ok {
		t.Error("parser must recover and see the next function")
	}
	ifs := nodesOf(res.Tree, ast.NodeIf)
	if len(ifs) != 1 || res.Tree.Node(ifs[0]).Complete {
		t.Error("unterminated IF must be marked incomplete")
	}
	checkSpans(t, res.Tree)
}

func TestUnknownStatementKeepsExpression(t *testing.T) {
	res, bag := parseSource(t, "MAIN\n  foo(1)\nEND MAIN\n")
	if bag.Count(diag.SynUnknownStatement) != 1 {
		t.Fatalf("want unknown statement, got %s", diagnosticsSummary(bag))
	}
	if len(nodesOf(res.Tree, ast.NodeExprStmt)) != 1 {
		t.Error("expression statement node expected")
	}
}

func TestCursorsAreModuleWide(t *testing.T) {
	src := `MAIN
  DECLARE c1 CURSOR FOR SELECT * FROM customer
  PREPARE s1 FROM "select 1"
  DECLARE c2 SCROLL CURSOR WITH HOLD FOR s1
  FOREACH c1
  END FOREACH
END MAIN
`
	res := parseClean(t, src)
	for _, name := range []string{"c1", "c2"} {
		if _, ok := res.Module.Cursors.Lookup(name); !ok {
			t.Errorf("cursor %s not registered", name)
		}
	}
	if _, ok := res.Module.Prepared.Lookup("s1"); !ok {
		t.Error("prepared statement not registered")
	}
	decls := nodesOf(res.Tree, ast.NodeDeclareCursor)
	if got := res.Tree.Cursor(decls[1]); got == nil || got.Prepared != "s1" {
		t.Errorf("second cursor payload = %+v", got)
	}
	if !res.Tree.Node(decls[1]).Flags.Has(ast.FlagScroll | ast.FlagHold) {
		t.Error("SCROLL/HOLD flags lost")
	}
}

func TestCreateTempTable(t *testing.T) {
	res := parseClean(t, "MAIN\n CREATE TEMP TABLE tmp (id INTEGER NOT NULL, name CHAR(20))\nEND MAIN\n")
	tbl, ok := res.Module.Tables.Lookup("tmp")
	if !ok {
		t.Fatal("temp table not registered")
	}
	if _, ok := tbl.Type.Field("name"); !ok {
		t.Error("column missing from table type")
	}
}

func TestReportSections(t *testing.T) {
	src := `REPORT rep(r)
  DEFINE r RECORD id INTEGER END RECORD
  OUTPUT
    PAGE LENGTH 66
  ORDER EXTERNAL BY r.id
  FORMAT
    FIRST PAGE HEADER
      PRINT "title"
    ON EVERY ROW
      PRINT COLUMN 2, r.id USING "###", PAGENO
      SKIP 1 LINE
    AFTER GROUP OF r.id
      PRINT "total"
END REPORT

MAIN
  START REPORT rep
  OUTPUT TO REPORT rep(NULL)
  FINISH REPORT rep
END MAIN
`
	res := parseClean(t, src)
	checkSpans(t, res.Tree)
	rep, ok := res.Module.Functions.Lookup("rep")
	if !ok || rep.Kind != symbols.SymbolReport {
		t.Fatalf("report symbol = %+v", rep)
	}
	if n := len(nodesOf(res.Tree, ast.NodeFormatBlock)); n != 3 {
		t.Errorf("want 3 format blocks, got %d", n)
	}
	fr := res.Module.FunctionScope(rep.Node)
	inFormat := uint32(strings.Index(src, "PAGENO"))
	if _, ok := fr.Lookup("pageno", inFormat); !ok {
		t.Error("PAGENO must be visible inside FORMAT")
	}
	if _, ok := fr.Lookup("pageno", uint32(strings.Index(src, "OUTPUT"))); ok {
		t.Error("PAGENO must not be visible before FORMAT")
	}
	calls := nodesOf(res.Tree, ast.NodeCall)
	if len(calls) != 3 {
		t.Errorf("want 3 report control statements, got %d", len(calls))
	}
}

func TestDialogObjectScope(t *testing.T) {
	src := `MAIN
  DEFINE n INTEGER
  INPUT BY NAME n
    ON ACTION accept
      CALL DIALOG.setActionActive("x", 1)
      ACCEPT INPUT
    AFTER FIELD n
      NEXT FIELD n
  END INPUT
  LET n = 1
END MAIN
`
	res := parseClean(t, src)
	fr := res.Module.FunctionScopeAt(uint32(strings.Index(src, "INPUT")))
	if _, ok := fr.Lookup("dialog", uint32(strings.Index(src, "DIALOG."))); !ok {
		t.Error("DIALOG must be visible inside INPUT")
	}
	if _, ok := fr.Lookup("dialog", uint32(strings.Index(src, "LET"))); ok {
		t.Error("DIALOG must not be visible after END INPUT")
	}
	blocks := nodesOf(res.Tree, ast.NodeControlBlock)
	if len(blocks) != 2 || res.Tree.Node(blocks[0]).Name != "accept" {
		t.Errorf("unexpected control blocks %v", blocks)
	}
}

func TestAcceptOutsideDialog(t *testing.T) {
	_, bag := parseSource(t, "MAIN\n ACCEPT INPUT\nEND MAIN\n")
	if bag.Count(diag.SynNotAllowedHere) != 1 {
		t.Fatalf("got %s", diagnosticsSummary(bag))
	}
}

func TestMenuAndCase(t *testing.T) {
	src := `MAIN
  MENU "Main"
    COMMAND "Add" "Add a row"
      CALL add()
    ON ACTION quit
      EXIT MENU
  END MENU
  CASE
    WHEN 1 = 1
      DISPLAY "one"
    OTHERWISE
      DISPLAY "other" AT 1, 1
  END CASE
END MAIN
`
	res := parseClean(t, src)
	checkSpans(t, res.Tree)
	if len(nodesOf(res.Tree, ast.NodeWhen)) != 1 || len(nodesOf(res.Tree, ast.NodeOtherwise)) != 1 {
		t.Error("CASE branches not built")
	}
}

func TestImportsAndGlobalsFile(t *testing.T) {
	src := `IMPORT FGL lib.utils
IMPORT util
IMPORT JAVA java.util.ArrayList
SCHEMA stores
GLOBALS "globals.4gl"
`
	res := parseClean(t, src)
	m := res.Module
	if len(m.Imports) != 3 {
		t.Fatalf("want 3 imports, got %d", len(m.Imports))
	}
	if imp, ok := m.LookupImport("utils"); !ok || imp.Path != "lib.utils" {
		t.Errorf("utils import = %+v", imp)
	}
	if m.Schema != "stores" {
		t.Errorf("schema = %q", m.Schema)
	}
	if len(m.GlobalsFiles) != 1 || m.GlobalsFiles[0].Path != "globals.4gl" {
		t.Errorf("globals files = %+v", m.GlobalsFiles)
	}
}

func TestMaxErrorsStopsReporting(t *testing.T) {
	src := strings.Repeat("MAIN\n LET = 1\nEND MAIN\n", 5)
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("errs.4gl", []byte(src)))
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	res := ParseFile(file, lexer.Tokenize(file, lexer.Options{Reporter: rep}), Options{Reporter: rep, MaxErrors: 2})
	if res.Tree == nil {
		t.Fatal("tree must be built even past the error limit")
	}
	if bag.Len() != 1 {
		t.Errorf("want reporting to stop at the limit, got %d: %s", bag.Len(), diagnosticsSummary(bag))
	}
}
