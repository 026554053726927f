package resolve

import (
	"context"
	"sync"

	"fglsense/internal/ident"
	"fglsense/internal/provider"
)

// Deferral is a name that resolved to Deferred during the first pass.
type Deferral struct {
	Resolver *Resolver
	Request  Request
	// Piece is the segment that could not be bound yet.
	Piece Piece
}

// DeferredQueue collects deferred names keyed by their text. After project
// indexing Flush re-resolves each distinct text once against the published
// modules; nothing is parsed again.
type DeferredQueue struct {
	mu    sync.Mutex
	byKey map[string][]Deferral
	order []string
}

func NewDeferredQueue() *DeferredQueue {
	return &DeferredQueue{byKey: make(map[string][]Deferral)}
}

// Add queues req when res is Deferred and reports whether it did.
func (q *DeferredQueue) Add(r *Resolver, req Request, res Result) bool {
	if res.Outcome != Deferred {
		return false
	}
	key := ident.Fold(req.Text)
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.byKey[key]; !ok {
		q.order = append(q.order, key)
	}
	q.byKey[key] = append(q.byKey[key], Deferral{Resolver: r, Request: req, Piece: res.Piece})
	return true
}

func (q *DeferredQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, ds := range q.byKey {
		n += len(ds)
	}
	return n
}

// Flush empties the queue, resolving in search mode. escalate is called
// for every occurrence that is still not bound; its Result carries the
// piece recorded in the first pass.
func (q *DeferredQueue) Flush(ctx context.Context, escalate func(Deferral, Result)) error {
	q.mu.Lock()
	byKey, order := q.byKey, q.order
	q.byKey, q.order = make(map[string][]Deferral), nil
	q.mu.Unlock()

	for _, key := range order {
		group := byKey[key]
		first := group[0]
		res, err := first.Resolver.WithMode(provider.ModeSearch).Resolve(ctx, first.Request)
		if err != nil {
			return err
		}
		for i, d := range group {
			// другой модуль может видеть другие импорты
			if i > 0 && d.Resolver.Module() != first.Resolver.Module() {
				res, err = d.Resolver.WithMode(provider.ModeSearch).Resolve(ctx, d.Request)
				if err != nil {
					return err
				}
			}
			if res.Outcome != Bound && escalate != nil {
				esc := res
				esc.Outcome = Unresolved
				esc.Piece = d.Piece
				escalate(d, esc)
			}
		}
	}
	return nil
}
