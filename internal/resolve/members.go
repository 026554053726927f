package resolve

import (
	"context"

	"fglsense/internal/symbols"
)

// Members resolves req and lists the members of the bound symbol, narrowed
// to the element type when the last piece is subscripted and to the
// returned value when it is a call. Opaque symbols (Java classes, unknown
// packages) have no members.
func (r *Resolver) Members(ctx context.Context, req Request) ([]*symbols.Symbol, Result, error) {
	res, err := r.Resolve(ctx, req)
	if err != nil || res.Outcome != Bound {
		return nil, res, err
	}
	pieces := Split(req.Text, req.Span)
	e := r.env(ctx, req.Offset)
	last := pieces[len(pieces)-1]
	target := e.elementIf(e.valueOf(res.Symbol, last.Call), last.Indexed)
	if opaque(target) || e.foreign(target) {
		return nil, res, nil
	}
	return target.Members(e), res, nil
}
