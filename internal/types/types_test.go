package types

import "testing"

func TestRecordFieldsCaseInsensitiveUnique(t *testing.T) {
	rec := &Type{Kind: KindRecord}
	if !rec.AddField(Field{Name: "Name", Type: String}) {
		t.Fatalf("first field rejected")
	}
	if rec.AddField(Field{Name: "NAME", Type: Integer}) {
		t.Fatalf("duplicate field accepted")
	}
	f, ok := rec.Field("name")
	if !ok || f.Type != String {
		t.Fatalf("lookup failed: %+v", f)
	}
}

func TestScalar(t *testing.T) {
	if k, ok := ScalarKind("VARCHAR"); !ok || k != KindString {
		t.Fatalf("VARCHAR kind = %v", k)
	}
	if got := Scalar("Integer").String(); got != "INTEGER" {
		t.Fatalf("String() = %q", got)
	}
}
