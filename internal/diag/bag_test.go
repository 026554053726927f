package diag

import (
	"testing"

	"fglsense/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	r.Report(New(SevError, SynUnexpectedToken, source.Span{File: 1, Start: 20, End: 22}, "b"))
	r.Report(New(SevError, SemaUnresolvedSymbol, source.Span{File: 1, Start: 5, End: 9}, "a"))
	r.Report(New(SevInfo, SynInfo, source.Span{File: 1, Start: 5, End: 9}, "a-info"))
	r.Report(New(SevInfo, SynInfo, source.Span{File: 1, Start: 30, End: 31}, "dropped"))

	if bag.Len() != 3 {
		t.Fatalf("expected limit of 3, got %d", bag.Len())
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Message != "a" || items[1].Message != "a-info" || items[2].Message != "b" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 1, End: 2}
	r.Report(New(SevError, SemaUnresolvedSymbol, sp, "x"))
	r.Report(New(SevError, SemaUnresolvedSymbol, sp, "x"))
	if bag.Len() != 1 {
		t.Fatalf("expected duplicates to be dropped, got %d", bag.Len())
	}
}

func TestSinkFunc(t *testing.T) {
	var got []uint32
	sink := SinkFunc(func(msg string, start, end uint32, sev Severity) {
		got = append(got, start, end)
	})
	ReportError(sink, SynExpectEnd, source.Span{File: 1, Start: 3, End: 7}, "missing END IF").Emit()
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Fatalf("sink got %v", got)
	}
	if SynExpectEnd.ID() != "SYN2008" {
		t.Fatalf("unexpected id %s", SynExpectEnd.ID())
	}
}

func TestBagMergeDedupFilter(t *testing.T) {
	sp := source.Span{File: 2, Start: 4, End: 8}
	a := NewBag(2)
	a.Add(NewError(SemaUnresolvedSymbol, sp, "x"))
	a.Add(New(SevWarning, SemaReturnCount, sp, "w"))
	b := NewBag(0)
	b.Add(NewError(SemaUnresolvedSymbol, sp, "x"))

	a.Merge(b)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("merge: len %d cap %d", a.Len(), a.Cap())
	}
	a.Dedup()
	if a.Len() != 2 {
		t.Fatalf("dedup left %d", a.Len())
	}
	a.Filter(func(d Diagnostic) bool { return d.Severity.AtLeast(SevError) })
	if a.Len() != 1 || a.Items()[0].Message != "x" {
		t.Fatalf("filter left %+v", a.Items())
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := NewError(SynExpectEnd, source.Span{File: 1}, "m").WithNote(source.Span{File: 1}, "first")
	one := base.WithNote(source.Span{File: 1}, "one")
	two := base.WithNote(source.Span{File: 1}, "two")
	if one.Notes[1].Msg != "one" || two.Notes[1].Msg != "two" || len(base.Notes) != 1 {
		t.Fatalf("notes aliased: %v %v", one.Notes, two.Notes)
	}
}
