// Package contextmap decides what may be typed at a cursor position by
// walking tokens backwards from it and consulting a declarative grammar
// table. The table says, per token before the cursor, which keywords and
// which symbol sets are acceptable, possibly depending on earlier tokens.
package contextmap

import (
	"context"

	"fglsense/internal/token"
	"fglsense/internal/tokstream"
)

// Well-known provider sets. Public functions and database tables are not
// expanded here; Classify raises the matching Defer flag instead.
const (
	SetPublicFunctions = "public_functions"
	SetDatabaseTables  = "database_tables"
)

// SetProvider expands symbol sets named in the grammar ("variables",
// "functions", "cursors", ...). Unknown names yield nothing.
type SetProvider interface {
	Members(ctx context.Context, set string) []Member
}

// SetProviderFunc adapts a function to SetProvider.
type SetProviderFunc func(ctx context.Context, set string) []Member

func (f SetProviderFunc) Members(ctx context.Context, set string) []Member { return f(ctx, set) }

// Engine classifies cursor positions against one table.
type Engine struct {
	table *Table
}

func NewEngine(t *Table) *Engine {
	if t == nil {
		t = Default()
	}
	return &Engine{table: t}
}

func (e *Engine) Table() *Table { return e.table }

// Classify reads the token before the cursor from rev (trivia skipped),
// evaluates every possibility of its entries and returns the union of
// their members in declaration order.
func (e *Engine) Classify(ctx context.Context, rev *tokstream.Reverse, sets SetProvider) (MemberSet, error) {
	trig, ok := rev.NextSignificant()
	if !ok {
		trig = token.Token{Kind: token.EOF}
	}
	entries := e.table.Lookup(trig)
	if len(entries) == 0 {
		return MemberSet{State: NoEntry}, nil
	}
	out := MemberSet{State: MatchedEntry}
	for _, entry := range entries {
		for i := range entry.Possibilities {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			p := &entry.Possibilities[i]
			if p.Conditional() && !e.applies(ctx, p, rev.Clone()) {
				continue
			}
			e.contribute(ctx, p, sets, &out)
		}
	}
	return out, nil
}

func (e *Engine) contribute(ctx context.Context, p *Possibility, sets SetProvider, out *MemberSet) {
	for _, kw := range p.Keywords {
		out.Add(Member{Name: kw, Kind: KindKeyword})
	}
	for _, name := range p.Sets {
		if kws, ok := e.table.KeywordSets[name]; ok {
			for _, kw := range kws {
				out.Add(Member{Name: kw, Kind: KindKeyword})
			}
			continue
		}
		switch name {
		case SetPublicFunctions:
			out.DeferPublicFunctions = true
			continue
		case SetDatabaseTables:
			out.DeferDatabaseTables = true
			continue
		}
		if sets == nil {
			continue
		}
		kind := e.table.Providers[name]
		for _, m := range sets.Members(ctx, name) {
			m.Kind = kind
			out.Add(m)
		}
	}
}

// history is a lazily filled list of significant tokens before the trigger.
type history struct {
	rev  *tokstream.Reverse
	toks []token.Token
	eof  bool
}

func (h *history) at(i int) (token.Token, bool) {
	for len(h.toks) <= i && !h.eof {
		tok, ok := h.rev.NextSignificant()
		if !ok {
			h.eof = true
			break
		}
		h.toks = append(h.toks, tok)
	}
	if i < len(h.toks) {
		return h.toks[i], true
	}
	return token.Token{Kind: token.EOF}, false
}

type seqResult uint8

const (
	seqFail seqResult = iota
	seqMatch
	seqAbort
)

// applies runs the backward scan of a conditional possibility. At every
// historical token the ordered sequences are tried first, then the single
// token matchers; the scan gives up at the start of the buffer or after
// trying a top-level starter.
func (e *Engine) applies(ctx context.Context, p *Possibility, rev *tokstream.Reverse) bool {
	h := &history{rev: rev}
	if !p.Except.Empty() {
		if prev, ok := h.at(0); ok && p.Except.Match(prev) {
			return false
		}
		if len(p.Sequences) == 0 && p.Singles.Empty() {
			return true
		}
	}
	for i := 0; ; i++ {
		if ctx.Err() != nil {
			return false
		}
		tok, ok := h.at(i)
		if !ok {
			return false
		}
		for _, seq := range p.Sequences {
			switch matchSequence(h, seq, i) {
			case seqMatch:
				return true
			case seqAbort:
				return false
			}
		}
		if p.Singles.Match(tok) {
			return true
		}
		if e.table.IsStarter(tok) {
			return false
		}
	}
}

// matchSequence matches seq against the history starting at i and walking
// backwards. A sequence made only of negated entries never matches.
func matchSequence(h *history, seq []SeqEntry, i int) seqResult {
	positive := false
	for j, ent := range seq {
		tok, ok := h.at(i + j)
		if !ok {
			if ent.Negate {
				continue
			}
			return seqFail
		}
		m := ent.Match.Match(tok)
		if ent.Negate {
			if m {
				return seqAbort
			}
			continue
		}
		if !m {
			return seqFail
		}
		positive = true
	}
	if positive {
		return seqMatch
	}
	return seqFail
}
