package resolve

import (
	"context"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"fglsense/internal/ident"
	"fglsense/internal/symbols"
)

// Suggest returns the visible name closest to the failing piece of an
// Unresolved result, or "" when nothing is near enough. Members of the
// last bound symbol are the candidates after a dot; otherwise the scope
// chain at offset.
func (r *Resolver) Suggest(ctx context.Context, res Result, offset uint32) string {
	if res.Outcome != Unresolved || res.Piece.Text == "" || res.Piece.Star {
		return ""
	}
	var candidates []*symbols.Symbol
	if n := len(res.Chain); n > 0 {
		e := r.env(ctx, offset)
		// за вызовом идут члены возвращённого значения
		owner := e.valueOf(res.Chain[n-1], true)
		if opaque(owner) || e.foreign(owner) {
			return ""
		}
		candidates = owner.Members(e)
	} else {
		candidates = r.visible(offset, res.Piece.Call)
	}
	return closest(res.Piece.Text, candidates)
}

func (r *Resolver) visible(offset uint32, wantFunc bool) []*symbols.Symbol {
	mod := r.mod
	var out []*symbols.Symbol
	if fr := mod.FunctionScopeAt(offset); fr != nil {
		for _, t := range []*symbols.Table{fr.Locals, fr.Constants} {
			out = append(out, t.All()...)
		}
		out = append(out, fr.LimitedAt(offset)...)
	}
	if wantFunc {
		out = append(out, mod.Functions.All()...)
		return append(out, r.siblingFunctions()...)
	}
	for _, t := range []*symbols.Table{
		mod.Variables, mod.Constants, mod.GlobalVariables, mod.GlobalConstants,
		mod.Cursors, mod.Prepared, mod.Tables,
	} {
		out = append(out, t.All()...)
	}
	return out
}

func (r *Resolver) siblingFunctions() []*symbols.Symbol {
	if r.opts.Modules == nil {
		return nil
	}
	var out []*symbols.Symbol
	for _, m := range r.opts.Modules.Modules(r.mod.Project) {
		if m == r.mod {
			continue
		}
		for _, sym := range m.Functions.All() {
			if sym.IsPublic() {
				out = append(out, sym)
			}
		}
	}
	return out
}

// closest picks the candidate with the smallest edit distance, ignoring
// case. A third of the name may differ, one character at least.
func closest(name string, candidates []*symbols.Symbol) string {
	target := ident.Fold(name)
	limit := max(1, len(target)/3)
	best, bestDist := "", limit+1
	for _, sym := range candidates {
		key := ident.Fold(sym.Name)
		if key == target {
			continue
		}
		if d := fuzzy.LevenshteinDistance(target, key); d < bestDist {
			best, bestDist = sym.Name, d
		}
	}
	return best
}
