package trace

import (
	"bufio"
	"io"
	"sync"
)

// Stream writes events to w as they arrive. Output is buffered until
// Flush or Close.
type Stream struct {
	mu      sync.Mutex
	out     io.Writer
	buf     *bufio.Writer
	enc     encoder
	level   Level
	written bool
	closed  bool
}

// NewStream returns a stream tracer; chrome output opens its JSON array
// immediately.
func NewStream(w io.Writer, level Level, format Format) *Stream {
	s := &Stream{
		out:   w,
		buf:   bufio.NewWriter(w),
		enc:   encoderFor(format),
		level: level,
	}
	s.buf.Write(s.enc.open()) //nolint:errcheck
	return s
}

func (s *Stream) Emit(ev *Event) {
	if ev == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	data := s.enc.encode(ev, !s.written)
	if data == nil {
		return
	}
	s.written = true
	s.buf.Write(data) //nolint:errcheck
}

func (s *Stream) Level() Level { return s.level }

func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Flush()
}

// Close terminates the output and closes w when it is a Closer.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Write(s.enc.close()) //nolint:errcheck
	if err := s.buf.Flush(); err != nil {
		return err
	}
	if c, ok := s.out.(io.Closer); ok {
		if _, keep := s.out.(nopCloser); !keep {
			return c.Close()
		}
	}
	return nil
}
