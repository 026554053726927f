package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"fglsense/internal/workspace"
)

func feed(m *progressModel, events ...workspace.Event) {
	for _, ev := range events {
		m.Update(eventMsg(ev))
	}
}

func TestProgressModelCountsStates(t *testing.T) {
	m := NewProgressModel("indexing orders", make(chan workspace.Event)).(*progressModel)
	feed(m,
		workspace.Event{Stage: workspace.StageScan, Status: workspace.StatusWorking},
		workspace.Event{File: "a.4gl", Stage: workspace.StageScan, Status: workspace.StatusQueued},
		workspace.Event{File: "b.4gl", Stage: workspace.StageScan, Status: workspace.StatusQueued},
		workspace.Event{File: "a.4gl", Stage: workspace.StageParse, Status: workspace.StatusDone},
		workspace.Event{File: "b.4gl", Stage: workspace.StageParse, Status: workspace.StatusError, Err: errors.New("boom")},
		workspace.Event{File: "b.4gl", Stage: workspace.StageCheck, Status: workspace.StatusDone},
		workspace.Event{Stage: workspace.StageResolve, Status: workspace.StatusWorking},
	)

	if m.states["a.4gl"] != stateParsed {
		t.Errorf("a.4gl = %s", stateNames[m.states["a.4gl"]])
	}
	if m.states["b.4gl"] != stateFailed || m.counts[stateFailed] != 1 {
		t.Errorf("b.4gl = %s, failed %d", stateNames[m.states["b.4gl"]], m.counts[stateFailed])
	}
	if m.counts[stateQueued] != 0 {
		t.Errorf("queued = %d after both files moved on", m.counts[stateQueued])
	}
	if got := m.fraction(); got != 0.75 {
		t.Errorf("fraction = %v", got)
	}

	view := m.View()
	for _, want := range []string{"indexing orders [resolve]", "2 modules", "1 parsed", "1 failed", "b.4gl: boom"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}

	m.Update(doneMsg{})
	if !strings.HasPrefix(m.View(), titleStyle.Render("finished indexing orders [resolve]")) {
		t.Errorf("final view:\n%s", m.View())
	}
}

func TestRecentFilesBounded(t *testing.T) {
	m := NewProgressModel("x", make(chan workspace.Event)).(*progressModel)
	for i := range recentLimit + 3 {
		feed(m, workspace.Event{File: fmt.Sprintf("m%02d.4gl", i), Stage: workspace.StageParse, Status: workspace.StatusWorking})
	}
	feed(m, workspace.Event{File: "m05.4gl", Stage: workspace.StageParse, Status: workspace.StatusDone})
	if len(m.recent) != recentLimit {
		t.Fatalf("recent = %v", m.recent)
	}
	if m.recent[len(m.recent)-1] != "m05.4gl" {
		t.Errorf("last touched = %q", m.recent[len(m.recent)-1])
	}
}

func TestTruncateKeepsTail(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("src/very/long/path.4gl", 12); got != ".../path.4gl" {
		t.Errorf("truncate = %q", got)
	}
}
