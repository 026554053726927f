package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// maxFuzzInput ограничивает вход, чтобы не мерить аллокатор.
const maxFuzzInput = 64 << 10

var builtinSeeds = []string{
	"",
	"MAIN\nEND MAIN\n",
	"FUNCTION f()\n    CALL rem\nEND FUNCTION\n",
	"DEFINE r RECORD a INTEGER, b STRING END RECORD\n",
	"FUNCTION f(\n",
	"MAIN\n    IF x THEN\n        DISPLAY \"a\n    END IF\n",
	"GLOBALS \"globals.4gl\"\nMAIN\n    LET x = y.z[1].w\nEND MAIN\n",
	"# comment\n-- comment\n{ block comment\n",
	"MAIN DEFINE a DYNAMIC ARRAY OF RECORD LIKE t.* END MAIN",
	"END END END FUNCTION MAIN )))",
}

// addSeeds adds the built-in snippets and every .4gl file under the
// repository testdata.
func addSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	root := filepath.Join("..", "..", "testdata")
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".4gl" {
			return nil
		}
		// #nosec G304 -- path comes from the testdata walk
		src, err := os.ReadFile(path)
		if err == nil {
			f.Add(clamp(src))
		}
		return nil
	})
}

func clamp(src []byte) []byte {
	if len(src) > maxFuzzInput {
		src = src[:maxFuzzInput]
	}
	return append([]byte(nil), src...)
}
