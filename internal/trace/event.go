package trace

import "time"

// Kind of an event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindMark
	KindHeartbeat
)

var kindNames = [...]string{"", "begin", "end", "mark", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k != 0 {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeWorkspace covers a whole indexing run.
	ScopeWorkspace Scope = iota + 1
	// ScopePass is one pass over the project.
	ScopePass
	// ScopeDocument is the work on one module.
	ScopeDocument
	// ScopeRequest is one completion or resolve request.
	ScopeRequest
)

var scopeNames = [...]string{"", "workspace", "pass", "document", "request"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && s != 0 {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. End events carry the span duration.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	// Lane groups the spans of one document so concurrent documents do
	// not interleave in timeline viewers.
	Lane   uint64
	Name   string
	Detail string
	Dur    time.Duration
	Extra  map[string]string
}
