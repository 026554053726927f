package trace

import (
	"io"
	"sync"
)

// Ring keeps the most recent events in memory, for dumping after a
// failure or a slow run.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	level  Level
}

// NewRing keeps up to capacity events (4096 when capacity <= 0).
func NewRing(capacity int, level Level) *Ring {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Ring{events: make([]Event, capacity), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if ev == nil {
		return
	}
	r.mu.Lock()
	r.events[r.next] = *ev
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Dump writes the snapshot to w in format.
func (r *Ring) Dump(w io.Writer, format Format) error {
	enc := encoderFor(format)
	if _, err := w.Write(enc.open()); err != nil {
		return err
	}
	first := true
	for _, ev := range r.Snapshot() {
		data := enc.encode(&ev, first)
		if data == nil {
			continue
		}
		first = false
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	_, err := w.Write(enc.close())
	return err
}

func (r *Ring) Level() Level { return r.level }
func (r *Ring) Flush() error { return nil }
func (r *Ring) Close() error { return nil }
