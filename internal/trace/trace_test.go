package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" Detail ")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, l)
	assert.True(t, l.Admits(ScopeDocument))
	assert.False(t, l.Admits(ScopeRequest))
	assert.False(t, LevelOff.Admits(ScopeWorkspace))

	_, err = ParseLevel("error")
	assert.Error(t, err)
}

func TestDisabledScopeGivesNilSpan(t *testing.T) {
	ring := NewRing(8, LevelPhase)
	ctx := WithTracer(context.Background(), ring)

	ctx2, span := Start(ctx, ScopeDocument, "analyze")
	assert.Nil(t, span)
	assert.Equal(t, ctx, ctx2)
	span.Set("path", "a.4gl")
	assert.Zero(t, span.End(""))
	assert.Empty(t, ring.Snapshot())
}

func TestSpansNest(t *testing.T) {
	ring := NewRing(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, index := Start(ctx, ScopeWorkspace, "index")
	docCtx, doc := Start(ctx, ScopeDocument, "analyze")
	Mark(docCtx, ScopeDocument, "escalated", "nowhere")
	doc.Set("path", "main.4gl").End("")
	index.End("")

	evs := ring.Snapshot()
	require.Len(t, evs, 5)
	assert.Equal(t, KindBegin, evs[0].Kind)
	assert.Equal(t, index.ID(), evs[1].ParentID)
	assert.Equal(t, doc.ID(), evs[1].Lane, "a document starts its own lane")
	assert.Equal(t, KindMark, evs[2].Kind)
	assert.Equal(t, doc.ID(), evs[2].ParentID)
	assert.Equal(t, "main.4gl", evs[3].Extra["path"])
	assert.Equal(t, KindEnd, evs[4].Kind)
	assert.Less(t, evs[3].Seq, evs[4].Seq)
}

func TestRingWraps(t *testing.T) {
	ring := NewRing(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindMark, Name: name})
	}
	evs := ring.Snapshot()
	require.Len(t, evs, 2)
	assert.Equal(t, "b", evs[0].Name)
	assert.Equal(t, "c", evs[1].Name)
}

func TestChromeStreamIsJSONArray(t *testing.T) {
	var out bytes.Buffer
	stream := NewStream(&out, LevelPhase, FormatChrome)
	ctx := WithTracer(context.Background(), stream)

	ctx, span := Start(ctx, ScopeWorkspace, "index")
	_, pass := Start(ctx, ScopePass, "deferred")
	pass.End("2")
	span.End("")
	require.NoError(t, stream.Close())

	var recs []chromeRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &recs), out.String())
	require.Len(t, recs, 2, "only span ends are written")
	assert.Equal(t, "deferred", recs[0].Name)
	assert.Equal(t, "X", recs[0].Ph)
	assert.Equal(t, "2", recs[0].Args["detail"])
}

func TestTextStreamBuffersUntilFlush(t *testing.T) {
	var out bytes.Buffer
	stream := NewStream(&out, LevelPhase, FormatText)
	Mark(WithTracer(context.Background(), stream), ScopePass, "publish", "12 modules")
	assert.Zero(t, out.Len())

	require.NoError(t, stream.Flush())
	line := out.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "publish 12 modules")
}

func TestNewAndFormatForPath(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.Equal(t, Nop, tr)

	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	_, ok := AsRing(tr)
	assert.True(t, ok)

	assert.Equal(t, FormatChrome, formatForPath("run.chrome.json"))
	assert.Equal(t, FormatNDJSON, formatForPath("run.ndjson"))
	assert.Equal(t, FormatText, formatForPath("-"))
}
