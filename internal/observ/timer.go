// Package observ measures the steps of a CLI command for --timings.
package observ

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Step is one measured step of a command: loading the manifest, warming
// the export cache, indexing.
type Step struct {
	Name    string
	Note    string
	Elapsed time.Duration

	started time.Time
	done    bool
}

// Done stops the step clock; later calls keep the first result.
func (s *Step) Done(note string, args ...any) {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.Elapsed = time.Since(s.started)
	if len(args) > 0 {
		note = fmt.Sprintf(note, args...)
	}
	s.Note = note
}

// Timer keeps steps in start order. Not safe for concurrent use.
type Timer struct {
	steps []*Step
}

func NewTimer() *Timer { return &Timer{} }

// Start begins a step.
func (t *Timer) Start(name string) *Step {
	s := &Step{Name: name, started: time.Now()}
	t.steps = append(t.steps, s)
	return s
}

// Steps returns the steps started so far.
func (t *Timer) Steps() []*Step { return t.steps }

// Total sums the finished steps.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, s := range t.steps {
		total += s.Elapsed
	}
	return total
}

// Print writes one aligned line per step and the total. Unfinished steps
// show as running.
func (t *Timer) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "timings:\t\t\t")
	for _, s := range t.steps {
		elapsed := "running"
		if s.done {
			elapsed = millis(s.Elapsed)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", s.Name, elapsed, s.Note)
	}
	fmt.Fprintf(tw, "  total\t%s\t\t\n", millis(t.Total()))
	return tw.Flush()
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
}
