package diag

import (
	"cmp"
	"slices"

	"fortio.org/safecast"
)

// Bag is an ordered collection of diagnostics with an optional cap.
// A zero cap means unbounded; Add past the cap drops the diagnostic.
type Bag struct {
	items []Diagnostic
	limit uint16
}

// NewBag returns a bag capped at limit; limits that do not fit uint16 are
// treated as the largest cap.
func NewBag(limit int) *Bag {
	capped, err := safecast.Conv[uint16](limit)
	if err != nil {
		capped = ^uint16(0)
	}
	return &Bag{items: make([]Diagnostic, 0, 16), limit: capped}
}

func (b *Bag) full() bool {
	return b.limit != 0 && len(b.items) >= int(b.limit)
}

// Add reports false when the cap dropped d.
func (b *Bag) Add(d Diagnostic) bool {
	if b.full() {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.limit }
func (b *Bag) Len() int    { return len(b.items) }

// Items is the bag's own slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity.AtLeast(SevError) })
}

// Count returns how many diagnostics carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Filter keeps the diagnostics keep accepts.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
}

// Merge appends everything from other. The cap grows to fit: merged
// diagnostics were already admitted by other's cap.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if need := len(b.items) + len(other.items); b.limit != 0 && need > int(b.limit) {
		if grown, err := safecast.Conv[uint16](need); err == nil {
			b.limit = grown
		}
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by file and position; at one span the more severe comes
// first, then the lower code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first of each group of identical findings.
func (b *Bag) Dedup() {
	seen := make(map[identity]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		id := d.identity()
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}
		return false
	})
}
