package ident

import "testing"

func TestFold(t *testing.T) {
	cases := []struct{ a, b string }{
		{"Customer", "customer"},
		{"CUSTOMER_ID", "customer_id"},
		{"ÉCOLE", "école"},
	}
	for _, tc := range cases {
		if !Equal(tc.a, tc.b) {
			t.Errorf("Equal(%q, %q) = false", tc.a, tc.b)
		}
	}
	if Equal("abc", "abd") {
		t.Fatalf("abc must differ from abd")
	}
	if !HasPrefix("getLength", "GETL") {
		t.Fatalf("HasPrefix must ignore case")
	}
}
