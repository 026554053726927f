package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredKeepsText(t *testing.T) {
	prev, prevNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = prev, prevNoColor }()
	color.NoColor = true

	for _, v := range []string{"1.2.3", "0.3.0-dev", "2.0", "nightly"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	prev, prevNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = prev, prevNoColor }()
	color.NoColor = false

	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Error("Colored() returned plain text with colors enabled")
	}
}

func TestCurrentFillsUnknown(t *testing.T) {
	prev := GitCommit
	defer func() { GitCommit = prev }()
	GitCommit = "  "
	if got := Current(); got.GitCommit != "unknown" || got.Tool != "fglsense" {
		t.Errorf("Current() = %+v", got)
	}
}
