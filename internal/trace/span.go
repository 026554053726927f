package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

type tracerKey struct{}

type spanKey struct{}

type spanRef struct {
	id   uint64
	lane uint64
}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

func currentSpan(ctx context.Context) spanRef {
	if ref, ok := ctx.Value(spanKey{}).(spanRef); ok {
		return ref
	}
	return spanRef{}
}

// Span is an open interval of work. A nil *Span is valid and records
// nothing, which is what Start returns when the scope is not traced.
type Span struct {
	tracer  Tracer
	ref     spanRef
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Start opens a span under the span of ctx and returns a context in
// which it is the parent of further spans.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !enabled(t, scope) {
		return ctx, nil
	}
	parent := currentSpan(ctx)
	s := &Span{
		tracer:  t,
		ref:     spanRef{id: spanCounter.Add(1), lane: parent.lane},
		parent:  parent.id,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	// у каждого документа своя дорожка
	if scope == ScopeDocument || s.ref.lane == 0 {
		s.ref.lane = s.ref.id
	}
	t.Emit(s.event(KindBegin, s.started, ""))
	return context.WithValue(ctx, spanKey{}, s.ref), s
}

// Set records key=value on the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	ev := s.event(KindEnd, now, detail)
	ev.Dur = now.Sub(s.started)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return ev.Dur
}

// ID returns the span id, zero for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ref.id
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      seqCounter.Add(1),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.ref.id,
		ParentID: s.parent,
		Lane:     s.ref.lane,
		Name:     s.name,
		Detail:   detail,
	}
}

// Mark records an instant inside the span of ctx, e.g. a deferred name
// escalated to an error.
func Mark(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !enabled(t, scope) {
		return
	}
	parent := currentSpan(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      seqCounter.Add(1),
		Kind:     KindMark,
		Scope:    scope,
		ParentID: parent.id,
		Lane:     parent.lane,
		Name:     name,
		Detail:   detail,
	})
}
