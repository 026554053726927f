package trace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Format of serialized events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen by output path
	FormatText                 // one line per event
	FormatNDJSON               // one JSON object per line
	FormatChrome               // Trace Event JSON array (Perfetto, chrome://tracing)
)

var formatNames = map[string]Format{
	"":       FormatAuto,
	"auto":   FormatAuto,
	"text":   FormatText,
	"ndjson": FormatNDJSON,
	"chrome": FormatChrome,
}

// ParseFormat converts a flag value to Format.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|chrome)", s)
}

func formatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".chrome.json"):
		return FormatChrome
	case filepath.Ext(path) == ".ndjson", filepath.Ext(path) == ".jsonl":
		return FormatNDJSON
	default:
		return FormatText
	}
}

// encoder turns events into bytes; a nil result skips the event.
type encoder interface {
	open() []byte
	encode(ev *Event, first bool) []byte
	close() []byte
}

func encoderFor(f Format) encoder {
	switch f {
	case FormatNDJSON:
		return ndjsonEncoder{}
	case FormatChrome:
		return chromeEncoder{}
	default:
		return textEncoder{}
	}
}

var epoch = time.Now()

type textEncoder struct{}

func (textEncoder) open() []byte  { return nil }
func (textEncoder) close() []byte { return nil }

func (textEncoder) encode(ev *Event, _ bool) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%10.3fms %-9s %-9s #%d", float64(ev.Time.Sub(epoch).Microseconds())/1000, ev.Kind, ev.Scope, ev.SpanID)
	if ev.ParentID != 0 {
		fmt.Fprintf(&b, "<#%d", ev.ParentID)
	}
	b.WriteByte(' ')
	b.WriteString(ev.Name)
	if ev.Kind == KindEnd {
		fmt.Fprintf(&b, " (%s)", ev.Dur.Round(time.Microsecond))
	}
	if ev.Detail != "" {
		b.WriteString(" ")
		b.WriteString(ev.Detail)
	}
	for _, k := range sortedKeys(ev.Extra) {
		fmt.Fprintf(&b, " %s=%s", k, ev.Extra[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

type ndjsonRecord struct {
	Time   time.Time         `json:"time"`
	Seq    uint64            `json:"seq"`
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope"`
	Span   uint64            `json:"span,omitempty"`
	Parent uint64            `json:"parent,omitempty"`
	Name   string            `json:"name"`
	Detail string            `json:"detail,omitempty"`
	DurUS  int64             `json:"dur_us,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

type ndjsonEncoder struct{}

func (ndjsonEncoder) open() []byte  { return nil }
func (ndjsonEncoder) close() []byte { return nil }

func (ndjsonEncoder) encode(ev *Event, _ bool) []byte {
	data, err := json.Marshal(ndjsonRecord{
		Time:   ev.Time,
		Seq:    ev.Seq,
		Kind:   ev.Kind.String(),
		Scope:  ev.Scope.String(),
		Span:   ev.SpanID,
		Parent: ev.ParentID,
		Name:   ev.Name,
		Detail: ev.Detail,
		DurUS:  ev.Dur.Microseconds(),
		Extra:  ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

type chromeRecord struct {
	Name string            `json:"name"`
	Cat  string            `json:"cat"`
	Ph   string            `json:"ph"`
	TS   int64             `json:"ts"`
	Dur  int64             `json:"dur,omitempty"`
	PID  int               `json:"pid"`
	TID  uint64            `json:"tid"`
	S    string            `json:"s,omitempty"`
	Args map[string]string `json:"args,omitempty"`
}

// chromeEncoder writes complete ("X") events at span end, so begin
// events are skipped.
type chromeEncoder struct{}

func (chromeEncoder) open() []byte  { return []byte("[\n") }
func (chromeEncoder) close() []byte { return []byte("\n]\n") }

func (chromeEncoder) encode(ev *Event, first bool) []byte {
	rec := chromeRecord{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		PID:  1,
		TID:  ev.Lane,
		Args: ev.Extra,
	}
	switch ev.Kind {
	case KindEnd:
		rec.Ph = "X"
		rec.TS = ev.Time.Add(-ev.Dur).Sub(epoch).Microseconds()
		rec.Dur = ev.Dur.Microseconds()
	case KindMark, KindHeartbeat:
		rec.Ph = "i"
		rec.S = "t"
		rec.TS = ev.Time.Sub(epoch).Microseconds()
	default:
		return nil
	}
	if ev.Detail != "" {
		args := make(map[string]string, len(ev.Extra)+1)
		for k, v := range ev.Extra {
			args[k] = v
		}
		args["detail"] = ev.Detail
		rec.Args = args
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	if !first {
		data = append([]byte(",\n"), data...)
	}
	return data
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
