package analysis

import (
	"context"
	"slices"
	"strings"
	"testing"

	"fglsense/internal/contextmap"
	"fglsense/internal/diag"
	"fglsense/internal/provider"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

type harness struct {
	t   *testing.T
	fs  *source.FileSet
	reg *provider.Registry
	ac  *Context
}

func newHarness(t *testing.T, mode provider.Mode) *harness {
	t.Helper()
	reg := provider.NewRegistry()
	return &harness{
		t:   t,
		fs:  source.NewFileSet(),
		reg: reg,
		ac:  NewContext(Config{Registry: reg, Mode: mode, MaxDiagnostics: 100}),
	}
}

// open analyzes src as file name. A "|" in src marks the cursor; it is
// removed and its offset returned.
func (h *harness) open(name, src string) (*Document, uint32) {
	h.t.Helper()
	var at uint32
	if i := strings.IndexByte(src, '|'); i >= 0 {
		at = uint32(i)
		src = src[:i] + src[i+1:]
	}
	file := h.fs.Get(h.fs.AddVirtual(name, []byte(src)))
	doc, err := Analyze(context.Background(), h.ac, file)
	if err != nil {
		h.t.Fatalf("analyze %s: %v", name, err)
	}
	return doc, at
}

func (h *harness) check(doc *Document, q *resolve.DeferredQueue) {
	h.t.Helper()
	if err := doc.CheckNames(context.Background(), q); err != nil {
		h.t.Fatalf("check %s: %v", doc.File.Path, err)
	}
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func names(c Completion) []string {
	out := make([]string, len(c.Items))
	for i, m := range c.Items {
		out[i] = m.Name
	}
	return out
}

func offsetOf(t *testing.T, doc *Document, text string, nth int) uint32 {
	t.Helper()
	src := string(doc.File.Content)
	at := -1
	for i := 0; i <= nth; i++ {
		next := strings.Index(src[at+1:], text)
		if next < 0 {
			t.Fatalf("occurrence %d of %q not found", nth, text)
		}
		at += next + 1
	}
	return uint32(at)
}

const ordersSrc = `
DEFINE customer RECORD
    name STRING,
    num INTEGER
END RECORD

FUNCTION show(p_num)
    DEFINE p_num INTEGER
    DEFINE total INTEGER
    LET total = p_num
    DISPLAY customer.name
    CALL helper(total)
END FUNCTION

FUNCTION helper(x)
    DEFINE x INTEGER
    RETURN x
END FUNCTION
`

func TestCheckNamesCleanModule(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("orders.4gl", ordersSrc)
	h.check(doc, resolve.NewDeferredQueue())
	if doc.Diagnostics.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", doc.Diagnostics.Items())
	}
	if doc.Module.Name != "orders" {
		t.Fatalf("module name = %q", doc.Module.Name)
	}
	if got := len(doc.Module.FunctionScopes()); got != 2 {
		t.Fatalf("function scopes = %d, want 2", got)
	}
}

func TestCheckNamesReportsUnknownNames(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("bad.4gl", `
DEFINE customer RECORD
    name STRING
END RECORD

FUNCTION f()
    DEFINE n INTEGER
    LET n = missing_var
    DISPLAY customer.missing
    OPEN c_nope
    EXECUTE s_nope
END FUNCTION
`)
	h.check(doc, resolve.NewDeferredQueue())
	want := []diag.Code{
		diag.SemaUnresolvedSymbol,
		diag.SemaUnresolvedMember,
		diag.SemaUnknownCursor,
		diag.SemaUnknownPrepared,
	}
	got := codes(doc.Diagnostics)
	if !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	member := doc.Diagnostics.Items()[1]
	if s := doc.File.Slice(member.Primary); s != "missing" {
		t.Fatalf("member diagnostic at %q, want \"missing\"", s)
	}
}

func TestDeferredCallsConvergeAfterPublish(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	caller, _ := h.open("caller.4gl", `
FUNCTION process_all()
    CALL remote_fn()
    CALL nowhere()
END FUNCTION
`)
	q := resolve.NewDeferredQueue()
	h.check(caller, q)
	if q.Len() != 2 {
		t.Fatalf("queued = %d, want 2", q.Len())
	}
	if caller.Diagnostics.HasErrors() {
		t.Fatalf("first pass reported errors: %+v", caller.Diagnostics.Items())
	}

	lib, _ := h.open("lib.4gl", `
PUBLIC FUNCTION remote_fn()
END FUNCTION
`)
	h.reg.Publish(caller.Module)
	h.reg.Publish(lib.Module)

	rep := diag.BagReporter{Bag: caller.Diagnostics}
	err := q.Flush(context.Background(), func(_ resolve.Deferral, res resolve.Result) {
		resolve.Report(rep, res)
	})
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	items := caller.Diagnostics.Items()
	if len(items) != 1 || items[0].Code != diag.SemaUnresolvedSymbol {
		t.Fatalf("escalated = %+v, want one unresolved symbol", items)
	}
	if s := caller.File.Slice(items[0].Primary); s != "nowhere" {
		t.Fatalf("escalated %q, want \"nowhere\"", s)
	}
}

func TestDeferredReportedAsInfoWithoutQueue(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("caller.4gl", `
FUNCTION process_all()
    CALL later()
END FUNCTION
`)
	h.check(doc, nil)
	items := doc.Diagnostics.Items()
	if len(items) != 1 || items[0].Code != diag.SemaDeferredSymbol || items[0].Severity != diag.SevInfo {
		t.Fatalf("got %+v, want one deferred info", items)
	}
}

func TestResolveAndDefinition(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("orders.4gl", ordersSrc)
	ctx := context.Background()

	res, ok, err := doc.Resolve(ctx, offsetOf(t, doc, "name", 1)+1)
	if err != nil || !ok {
		t.Fatalf("resolve: ok=%v err=%v", ok, err)
	}
	if res.Outcome != resolve.Bound || res.Symbol.Kind != symbols.SymbolField || res.Symbol.Name != "name" {
		t.Fatalf("customer.name bound to %+v", res.Symbol)
	}

	// на первом сегменте путь обрезается до самой записи
	res, _, _ = doc.Resolve(ctx, offsetOf(t, doc, "customer.name", 0)+2)
	if res.Symbol == nil || res.Symbol.Name != "customer" || res.Symbol.Kind != symbols.SymbolVariable {
		t.Fatalf("customer bound to %+v", res.Symbol)
	}

	loc, ok, err := doc.Definition(ctx, offsetOf(t, doc, "helper", 0))
	if err != nil || !ok {
		t.Fatalf("definition: ok=%v err=%v", ok, err)
	}
	want := offsetOf(t, doc, "helper", 1)
	if loc.Path != "orders.4gl" || loc.Span.Start != want {
		t.Fatalf("definition = %+v, want start %d", loc, want)
	}

	if _, ok, _ := doc.Definition(ctx, offsetOf(t, doc, "LET", 0)); ok {
		t.Fatalf("keyword has a definition")
	}
}

func TestHoverDescribesField(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("orders.4gl", ordersSrc)
	at := offsetOf(t, doc, "name", 1)
	hv, ok, err := doc.Hover(context.Background(), at)
	if err != nil || !ok {
		t.Fatalf("hover: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(hv.Text, "field name") {
		t.Fatalf("hover text = %q", hv.Text)
	}
	if hv.Range.Start != at || hv.Range.End != at+4 {
		t.Fatalf("hover range = %v", hv.Range)
	}
}

func TestCompleteAfterThenOffersStatements(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, at := h.open("c.4gl", `
FUNCTION f()
    DEFINE total INTEGER
    IF total > 0 THEN
        |
    END IF
END FUNCTION
`)
	c, err := doc.Complete(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	got := names(c)
	if c.State != contextmap.MatchedEntry || !slices.Contains(got, "LET") {
		t.Fatalf("completion = %v (state %v)", got, c.State)
	}
	if slices.Contains(got, "total") {
		t.Fatalf("statement position offers variable: %v", got)
	}
}

func TestCompleteExpressionWithPrefix(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, at := h.open("c.4gl", `
FUNCTION f()
    DEFINE total, tally INTEGER
    DEFINE other STRING
    LET other = t|
END FUNCTION
`)
	c, err := doc.Complete(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	got := names(c)
	for _, want := range []string{"total", "tally", "TRUE", "TODAY"} {
		if !slices.Contains(got, want) {
			t.Fatalf("missing %q in %v", want, got)
		}
	}
	if slices.Contains(got, "other") {
		t.Fatalf("prefix filter let through %v", got)
	}
	if c.Prefix != "t" || c.Replace.Len() != 1 {
		t.Fatalf("prefix = %q replace = %v", c.Prefix, c.Replace)
	}
}

func TestCompleteMembers(t *testing.T) {
	src := `
DEFINE customer RECORD
    name STRING,
    num INTEGER
END RECORD
DEFINE items DYNAMIC ARRAY OF RECORD
    qty INTEGER
END RECORD

FUNCTION f()
    DISPLAY %s
END FUNCTION
`
	tests := []struct {
		path string
		want []string
	}{
		{"customer.|", []string{"name", "num"}},
		{"customer.na|", []string{"name"}},
		{"items[1].|", []string{"qty"}},
		{"nobody.|", nil},
	}
	for _, tt := range tests {
		h := newHarness(t, provider.ModeDeferred)
		doc, at := h.open("m.4gl", strings.Replace(src, "%s", tt.path, 1))
		c, err := doc.Complete(context.Background(), at)
		if err != nil {
			t.Fatal(err)
		}
		if !c.Member {
			t.Fatalf("%s: not a member completion", tt.path)
		}
		if got := names(c); !slices.Equal(got, tt.want) {
			t.Fatalf("%s: members = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCompleteArrayMethods(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, at := h.open("m.4gl", `
DEFINE arr DYNAMIC ARRAY OF INTEGER
FUNCTION f()
    CALL arr.|
END FUNCTION
`)
	c, err := doc.Complete(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(c); !slices.Contains(got, "getLength") || !slices.Contains(got, "appendElement") {
		t.Fatalf("array methods = %v", got)
	}
}

func TestCompleteDeferredSets(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	lib, _ := h.open("lib.4gl", `
PUBLIC FUNCTION remote_fn()
END FUNCTION
PRIVATE FUNCTION hidden_fn()
END FUNCTION
`)
	h.reg.Publish(lib.Module)
	orders := &types.Type{Kind: types.KindRecord}
	orders.AddField(types.Field{Name: "id", Type: types.Integer})
	h.reg.SetSchema([]*symbols.Symbol{{Name: "orders", Kind: symbols.SymbolTable, Type: orders}})

	doc, at := h.open("main.4gl", `
FUNCTION local_fn()
END FUNCTION
FUNCTION f()
    CALL |
END FUNCTION
`)
	c, err := doc.Complete(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	got := names(c)
	for _, want := range []string{"local_fn", "remote_fn", "length"} {
		if !slices.Contains(got, want) {
			t.Fatalf("missing %q in %v", want, got)
		}
	}
	if slices.Contains(got, "hidden_fn") {
		t.Fatalf("private function offered: %v", got)
	}

	doc, at = h.open("decl.4gl", "DEFINE r RECORD LIKE |")
	c, err = doc.Complete(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(c); !slices.Equal(got, []string{"orders"}) {
		t.Fatalf("tables = %v", got)
	}
}

func TestCompleteInsideStringIsEmpty(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, at := h.open("s.4gl", `
FUNCTION f()
    DISPLAY "abc|def"
END FUNCTION
`)
	c, err := doc.Complete(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 0 || c.State != contextmap.NoEntry {
		t.Fatalf("completion inside string = %v", names(c))
	}
}

func TestReturnCountMismatch(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("r.4gl", `
FUNCTION f(a)
    DEFINE a INTEGER
    IF a > 0 THEN
        RETURN 1, 2
    END IF
    RETURN 1
END FUNCTION

FUNCTION g() RETURNS INTEGER
    RETURN 1, 2
END FUNCTION
`)
	h.check(doc, nil)
	if got := doc.Diagnostics.Count(diag.SemaReturnCount); got != 2 {
		t.Fatalf("return count warnings = %d, want 2: %+v", got, doc.Diagnostics.Items())
	}
}

func TestDeclaredTypesAndIncludes(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	globals, _ := h.open("globals.4gl", `
GLOBALS
    DEFINE g_user STRING
END GLOBALS
`)
	doc, _ := h.open("main.4gl", `
GLOBALS "globals.4gl"
DEFINE x no_such_type

FUNCTION f()
    DISPLAY g_user
END FUNCTION
`)
	h.check(doc, nil)
	got := codes(doc.Diagnostics)
	if !slices.Contains(got, diag.SemaUnresolvedInclude) || !slices.Contains(got, diag.SemaUnresolvedSymbol) {
		t.Fatalf("before publish: %v", got)
	}

	h.reg.PublishInclude("globals.4gl", globals.Module)
	doc, _ = h.open("main.4gl", string(doc.File.Content))
	h.check(doc, nil)
	got = codes(doc.Diagnostics)
	if !slices.Equal(got, []diag.Code{diag.SemaUnresolvedType}) {
		t.Fatalf("after publish: %v", got)
	}
}

func TestCheckNamesFollowsCallResults(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("chain.4gl", `
TYPE rec RECORD
    id INTEGER,
    title STRING
END RECORD

FUNCTION getrec(n INTEGER) RETURNS (rec)
    DEFINE r rec
    LET r.id = n
    RETURN r
END FUNCTION

MAIN
    DISPLAY getrec(1).title
    DISPLAY getrec(2).nosuchfield
    CALL ui.Window.getCurrent().getForm()
    CALL ui.Window.getCurrent().nosuchmethod()
END MAIN
`)
	h.check(doc, resolve.NewDeferredQueue())
	got := codes(doc.Diagnostics)
	want := []diag.Code{diag.SemaUnresolvedMember, diag.SemaUnresolvedMember}
	if !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v: %+v", got, want, doc.Diagnostics.Items())
	}
	items := doc.Diagnostics.Items()
	if s := doc.File.Slice(items[0].Primary); s != "nosuchfield" {
		t.Errorf("first diagnostic at %q", s)
	}
	if s := doc.File.Slice(items[1].Primary); s != "nosuchmethod" {
		t.Errorf("second diagnostic at %q", s)
	}
}

func TestClassTypedDefinitions(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	doc, _ := h.open("cls.4gl", `
IMPORT JAVA java.util.ArrayList
MAIN
    DEFINE w ui.Window
    DEFINE ch base.Channel
    DEFINE d om.DomNode
    DEFINE l ArrayList
    LET w = ui.Window.getCurrent()
    LET ch = base.Channel.create()
    CALL ch.openFile("data.txt", "r")
    LET d = d.getFirstChild()
    CALL l.add(1)
END MAIN
`)
	h.check(doc, nil)
	if doc.Diagnostics.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", doc.Diagnostics.Items())
	}
}

func TestCanceledContext(t *testing.T) {
	h := newHarness(t, provider.ModeDeferred)
	file := h.fs.Get(h.fs.AddVirtual("x.4gl", []byte(ordersSrc)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, h.ac, file); err == nil {
		t.Fatalf("Analyze ignored a canceled context")
	}
}
