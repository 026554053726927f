package observ

import (
	"strings"
	"testing"
)

func TestTimerSteps(t *testing.T) {
	tm := NewTimer()
	load := tm.Start("load")
	load.Done("orders")
	index := tm.Start("index")
	index.Done("%d modules", 12)
	index.Done("ignored")

	steps := tm.Steps()
	if len(steps) != 2 {
		t.Fatalf("steps = %+v", steps)
	}
	if steps[1].Name != "index" || steps[1].Note != "12 modules" {
		t.Errorf("second step = %+v", steps[1])
	}
	if tm.Total() < steps[0].Elapsed {
		t.Errorf("total %v below a step %v", tm.Total(), steps[0].Elapsed)
	}

	var b strings.Builder
	if err := tm.Print(&b); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"timings:", "load", "orders", "12 modules", "total"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("output misses %q:\n%s", want, b.String())
		}
	}
}

func TestUnfinishedStep(t *testing.T) {
	tm := NewTimer()
	tm.Start("warm")
	var b strings.Builder
	if err := tm.Print(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "running") {
		t.Errorf("unfinished step not marked:\n%s", b.String())
	}
	var nilStep *Step
	nilStep.Done("no panic")
}
