package builtins

import (
	"testing"

	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

func TestDefaultIsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatal("catalogue must be built once")
	}
}

func TestSystemNames(t *testing.T) {
	c := Default()
	for _, name := range []string{"status", "INT_FLAG", "sqlca", "notfound", "true"} {
		if _, ok := c.Lookup(name); !ok {
			t.Errorf("%s not found", name)
		}
	}
	sqlca, _ := c.Lookup("sqlca")
	code, ok := sqlca.Member("SQLCODE", c)
	if !ok || code.Type.Kind != types.KindInt {
		t.Errorf("sqlca.sqlcode = %+v", code)
	}
}

func TestMethodsByType(t *testing.T) {
	c := Default()
	arr := &types.Type{Kind: types.KindArray, Elem: types.Integer}
	if _, ok := c.Methods(arr).Lookup("getlength"); !ok {
		t.Error("array getLength missing")
	}
	if _, ok := c.Methods(types.Scalar("char")).Lookup("trim"); !ok {
		t.Error("string trim missing")
	}
	if c.Methods(types.Integer) != nil {
		t.Error("integers have no methods")
	}
}

func TestPackagesAndClasses(t *testing.T) {
	c := Default()
	ui, ok := c.LookupPackage("UI")
	if !ok || ui.Kind != symbols.SymbolPackage {
		t.Fatalf("ui package = %+v", ui)
	}
	dlg, ok := ui.Member("dialog", c)
	if !ok || dlg.Kind != symbols.SymbolClass {
		t.Fatalf("ui.Dialog = %+v", dlg)
	}
	cur, ok := dlg.Member("getCurrent", c)
	if !ok || cur.Signature.Returns[0].Name != "ui.Dialog" {
		t.Fatalf("ui.Dialog.getCurrent = %+v", cur)
	}
	// значение типа ui.Dialog видит методы класса
	if _, ok := symbols.TypeMember(types.Class("ui.Dialog"), "setActionActive", c, nil); !ok {
		t.Error("instance methods of ui.Dialog missing")
	}
	if _, ok := c.Class("base.Channel"); !ok {
		t.Error("base.Channel missing")
	}
}
