package workspace

import "time"

// Stage represents an indexing stage.
type Stage string

const (
	// StageScan lists the source files.
	StageScan Stage = "scan"
	// StageParse lexes and parses one file.
	StageParse Stage = "parse"
	// StageCheck resolves the names of one file.
	StageCheck Stage = "check"
	// StageResolve is the project-wide pass over deferred names.
	StageResolve Stage = "resolve"
)

// Status represents the status of a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole index when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
