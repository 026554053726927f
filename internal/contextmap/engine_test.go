package contextmap

import (
	"context"
	"slices"
	"strings"
	"testing"

	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/tokstream"
)

// classify runs the default table at the "|" marker of src.
func classify(t *testing.T, tbl *Table, src string, sets SetProvider) MemberSet {
	t.Helper()
	at := strings.Index(src, "|")
	if at < 0 {
		t.Fatal("no cursor marker")
	}
	text := src[:at] + src[at+1:]
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("ctx.4gl", []byte(text)))
	toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.NopReporter{}})
	ms, err := NewEngine(tbl).Classify(context.Background(), tokstream.NewReverse(toks, uint32(at)), sets)
	if err != nil {
		t.Fatal(err)
	}
	return ms
}

var fakeSets = SetProviderFunc(func(_ context.Context, set string) []Member {
	switch set {
	case "variables":
		return []Member{{Name: "x", Symbol: &symbols.Symbol{Name: "x", Kind: symbols.SymbolVariable}}}
	case "cursors":
		return []Member{{Name: "c_cust", Symbol: &symbols.Symbol{Name: "c_cust", Kind: symbols.SymbolCursor}}}
	}
	return nil
})

func hasMember(ms MemberSet, name string) bool {
	return slices.Contains(ms.Names(), name)
}

func TestDefaultTableLoads(t *testing.T) {
	tbl := Default()
	if tbl != Default() {
		t.Fatal("default table must be parsed once")
	}
	if len(tbl.KeywordSets["statement_start"]) == 0 {
		t.Fatal("statement_start set missing")
	}
	if tbl.Providers["cursors"] != KindCursor {
		t.Errorf("cursors provider kind = %s", tbl.Providers["cursors"])
	}
}

func TestAfterThenOffersStatements(t *testing.T) {
	ms := classify(t, nil, "MAIN\n  DEFINE x INTEGER\n  IF x > 1 THEN\n    |", fakeSets)
	if ms.State != MatchedEntry {
		t.Fatal("THEN must have an entry")
	}
	for _, kw := range []string{"LET", "CALL", "IF", "RETURN"} {
		if !hasMember(ms, kw) {
			t.Errorf("%s missing from %v", kw, ms.Names())
		}
	}
	for _, m := range ms.Members {
		if !m.IsKeyword() {
			t.Errorf("expression symbol %s offered after THEN", m.Name)
		}
	}
}

func TestAssignmentOffersExpression(t *testing.T) {
	ms := classify(t, nil, "MAIN\n  LET x = |", fakeSets)
	if !hasMember(ms, "x") || !hasMember(ms, "NOT") {
		t.Errorf("members = %v", ms.Names())
	}
	if !ms.DeferPublicFunctions {
		t.Error("public functions must be deferred")
	}
	for _, m := range ms.Members {
		if m.Name == "x" && m.Kind != KindVariable {
			t.Errorf("x tagged %s", m.Kind)
		}
	}
}

func TestClassifyPositions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
		not  []string
	}{
		{"start of file", "|", []string{"MAIN", "FUNCTION", "IMPORT"}, nil},
		{"define type", "DEFINE a |", []string{"INTEGER", "RECORD", "DYNAMIC"}, []string{"LET"}},
		{"record field type", "DEFINE r RECORD\n  a INTEGER,\n  b |", []string{"STRING"}, nil},
		{"inline param type", "FUNCTION f(a |", []string{"INTEGER"}, nil},
		{"after expression", "MAIN\n  LET a = b |", []string{"AND", "LET"}, []string{"INTEGER"}},
		{"foreach cursor", "MAIN\n  FOREACH |", []string{"c_cust"}, []string{"x"}},
		{"foreach into", "MAIN\n  FOREACH c_cust |", []string{"INTO"}, nil},
		{"end kinds", "MAIN\n  END |", []string{"IF", "MAIN"}, nil},
		{"constant value", "CONSTANT c = |", []string{"TRUE", "NULL"}, []string{"x"}},
		{"call args", "MAIN\n  CALL f(a, |", []string{"x"}, nil},
		{"define list", "DEFINE a, |", nil, []string{"x", "INTEGER"}},
		{"returns types", "FUNCTION f() RETURNS (|", []string{"INTEGER"}, []string{"x"}},
		{"function params", "FUNCTION f(|", nil, []string{"x"}},
		{"array decl", "DEFINE a DYNAMIC ARRAY |", []string{"OF"}, nil},
		{"display array", "MAIN\n  DISPLAY ARRAY |", []string{"x"}, []string{"OF"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := classify(t, nil, tt.src, fakeSets)
			for _, w := range tt.want {
				if !hasMember(ms, w) {
					t.Errorf("%q missing from %v", w, ms.Names())
				}
			}
			for _, n := range tt.not {
				if hasMember(ms, n) {
					t.Errorf("%q unexpected in %v", n, ms.Names())
				}
			}
		})
	}
}

func TestLikeDefersTables(t *testing.T) {
	ms := classify(t, nil, "DEFINE r RECORD LIKE |", fakeSets)
	if !ms.DeferDatabaseTables {
		t.Error("RECORD LIKE must defer database tables")
	}
	ms = classify(t, nil, "MAIN\n  IF a LIKE |", fakeSets)
	if ms.DeferDatabaseTables {
		t.Error("LIKE in a condition is a pattern match")
	}
}

func TestNoEntry(t *testing.T) {
	ms := classify(t, nil, "MAIN\n  LET a = r.|", fakeSets)
	if ms.State != NoEntry || len(ms.Members) != 0 {
		t.Errorf("member access must have no entry: %+v", ms)
	}
}

const miniGrammar = `
starters: [FUNCTION]
keyword_sets:
  first: [A, B]
  second: [B, C]
entries:
  - after: [THEN]
    possibilities:
      - sets: [first]
      - sets: [second]
  - after: ["@identifier"]
    possibilities:
      - sequences: [[IF, "!NOT"]]
        keywords: [SEQ]
      - singles: [WHILE]
        keywords: [SINGLE]
      - except: [LET]
        keywords: [NOT_AFTER_LET]
`

func TestUnionInDeclarationOrder(t *testing.T) {
	tbl, err := Load([]byte(miniGrammar))
	if err != nil {
		t.Fatal(err)
	}
	ms := classify(t, tbl, "IF a THEN |", nil)
	if got := strings.Join(ms.Names(), ","); got != "A,B,C" {
		t.Errorf("union = %s", got)
	}
}

func TestBackwardScan(t *testing.T) {
	tbl, err := Load([]byte(miniGrammar))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		src  string
		want string
	}{
		{"IF x |", "SEQ,NOT_AFTER_LET"},
		{"NOT IF x |", "NOT_AFTER_LET"},
		{"WHILE a b c |", "SINGLE,NOT_AFTER_LET"},
		{"WHILE FUNCTION b |", "NOT_AFTER_LET"},
		{"LET x |", ""},
	}
	for _, tt := range tests {
		ms := classify(t, tbl, tt.src, nil)
		if got := strings.Join(ms.Names(), ","); got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestWordTriggers(t *testing.T) {
	tbl, err := Load([]byte(`
entries:
  - after: ["~header"]
    possibilities:
      - keywords: [AFTER_HEADER]
  - after: ["~subtotal|~Total"]
    possibilities:
      - sequences: [[PRINT]]
        keywords: [AFTER_TOTAL]
  - after: ["@identifier"]
    possibilities:
      - keywords: [AFTER_NAME]
`))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		src  string
		want string
	}{
		{"PAGE header |", "AFTER_HEADER"},
		{"PAGE HEADER |", "AFTER_HEADER"},
		{"PRINT total |", "AFTER_TOTAL"},
		{"LET subtotal |", ""},
		{"PRINT amount |", "AFTER_NAME"},
	}
	for _, tt := range tests {
		ms := classify(t, tbl, tt.src, nil)
		if ms.State != MatchedEntry {
			t.Errorf("%q: no entry", tt.src)
			continue
		}
		if got := strings.Join(ms.Names(), ","); got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestLoadRejectsUnknownNames(t *testing.T) {
	bad := []string{
		"entries:\n  - after: [NOSUCHTOKEN]\n",
		"entries:\n  - after: [THEN]\n    possibilities:\n      - sets: [missing]\n",
		"providers:\n  vars: nonsense\n",
		"entries:\n  - possibilities: []\n",
		"entries:\n  - after: [\"@nocategory\"]\n",
	}
	for _, doc := range bad {
		if _, err := Load([]byte(doc)); err == nil {
			t.Errorf("accepted %q", doc)
		}
	}
}
