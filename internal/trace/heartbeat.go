package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat periodically emits an event so a stuck run is visible in a
// streamed trace.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat emits to t every interval until Stop. It returns nil when
// interval is not positive or t is disabled; Stop on nil is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if interval <= 0 || !enabled(t, ScopeWorkspace) {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.run(t, interval)
	return h
}

func (h *Heartbeat) run(t Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var beats int
	for {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			beats++
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			t.Emit(&Event{
				Time:  now,
				Seq:   seqCounter.Add(1),
				Kind:  KindHeartbeat,
				Scope: ScopeWorkspace,
				Name:  "heartbeat",
				Extra: map[string]string{
					"beat":       strconv.Itoa(beats),
					"goroutines": strconv.Itoa(runtime.NumGoroutine()),
					"heap_kb":    strconv.FormatUint(ms.HeapAlloc/1024, 10),
				},
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
