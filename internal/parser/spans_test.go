package parser

import (
	"testing"

	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/source"
	"fglsense/internal/testkit"
)

func TestSpanInvariants(t *testing.T) {
	sources := map[string]string{
		"main": "MAIN\n  DEFINE a, b INTEGER\n  LET a = b + 1\n  DISPLAY a\nEND MAIN\n",
		"record": "DEFINE r RECORD\n  id INTEGER,\n  name CHAR(20)\nEND RECORD\n" +
			"FUNCTION f(x)\n  DEFINE x INTEGER\n  IF x > 0 THEN\n    RETURN r.id\n  ELSE\n    RETURN 0\n  END IF\nEND FUNCTION\n",
		"unterminated": "FUNCTION f()\n  FOR i = 1 TO 10\n    CALL g(i\n",
		"garbage":      "END END ) FUNCTION\nMAIN\n  LET = 3\nEND MAIN\n",
		"empty":        "",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual(name+".4gl", []byte(src)))
			rep := diag.BagReporter{Bag: diag.NewBag(100)}
			toks := lexer.Tokenize(file, lexer.Options{Reporter: rep})
			res := ParseFile(file, toks, Options{Reporter: rep})
			if err := testkit.CheckSpanInvariants(res.Tree, file); err != nil {
				t.Fatal(err)
			}
		})
	}
}
