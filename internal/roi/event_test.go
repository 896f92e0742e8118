package roi

import (
	"testing"
)

func TestEventCollapseSameIdentity(t *testing.T) {
	r := NewPoint2D(1, 2)
	a := NewEvent(r, Changed, "")
	b := NewEvent(r, Changed, "")

	if !a.Collapse(b) {
		t.Fatal("expected events with equal (source, type) to collapse")
	}
	// Idempotent: collapsing again changes nothing.
	if !a.Collapse(b) {
		t.Error("collapse must be idempotent for same-identity events")
	}
}

func TestEventCollapseRejectsDifferentIdentity(t *testing.T) {
	r1 := NewPoint2D(0, 0)
	r2 := NewPoint2D(0, 0)

	a := NewEvent(r1, Changed, "")
	if a.Collapse(NewEvent(r2, Changed, "")) {
		t.Error("events from different sources must not collapse")
	}
	if a.Collapse(NewEvent(r1, PropertyChanged, PropertyName)) {
		t.Error("events of different types must not collapse")
	}
}

func TestEventCollapsePropertyGeneralizes(t *testing.T) {
	r := NewPoint2D(0, 0)

	same := NewEvent(r, PropertyChanged, PropertyName)
	if !same.Collapse(NewEvent(r, PropertyChanged, PropertyName)) {
		t.Fatal("same-property events must collapse")
	}
	if same.Property != PropertyName {
		t.Errorf("same-property collapse changed property to %q", same.Property)
	}

	mixed := NewEvent(r, PropertyChanged, PropertyName)
	if !mixed.Collapse(NewEvent(r, PropertyChanged, PropertyColor)) {
		t.Fatal("different-property events of same identity must collapse")
	}
	if mixed.Property != PropertyAll {
		t.Errorf("expected merged property %q, got %q", PropertyAll, mixed.Property)
	}

	// Order-independent: reversed merge reaches the same result.
	reversed := NewEvent(r, PropertyChanged, PropertyColor)
	reversed.Collapse(NewEvent(r, PropertyChanged, PropertyName))
	if reversed.Property != PropertyAll {
		t.Errorf("reversed merge: expected %q, got %q", PropertyAll, reversed.Property)
	}
}

func TestBeginEndUpdateCollapsesAnchorMoves(t *testing.T) {
	r := NewPolygon2D(trianglePoints())
	var events []*Event
	r.AddListener(func(e *Event) { events = append(events, e) })

	r.BeginUpdate()
	anchors := r.Anchors()
	anchors[0].MoveTo(10, 10, 0)
	anchors[1].MoveTo(20, 5, 0)
	anchors[2].MoveTo(15, 25, 0)
	if len(events) != 0 {
		t.Fatalf("expected no delivery inside bracket, got %d events", len(events))
	}
	r.EndUpdate()

	if len(events) != 1 {
		t.Fatalf("expected 1 collapsed event for 3 anchor moves, got %d", len(events))
	}
	if events[0].Type != Changed {
		t.Errorf("expected Changed event, got %v", events[0].Type)
	}
}

func TestImmediateEventOutsideBracket(t *testing.T) {
	r := NewLine2D(0, 0, 10, 0)
	var count int
	r.AddListener(func(e *Event) { count++ })

	r.Anchors()[0].MoveTo(1, 1, 0)
	r.Anchors()[1].MoveTo(9, 1, 0)

	if count != 2 {
		t.Errorf("expected 2 immediate events, got %d", count)
	}
}

func TestSetNamePublishesPropertyEvent(t *testing.T) {
	r := NewPoint2D(0, 0)
	var got *Event
	r.AddListener(func(e *Event) { got = e })

	r.SetName("nucleus")

	if got == nil {
		t.Fatal("expected a property event")
	}
	if got.Type != PropertyChanged || got.Property != PropertyName {
		t.Errorf("expected PropertyChanged(name), got %v(%s)", got.Type, got.Property)
	}
	if r.Name() != "nucleus" {
		t.Errorf("expected name nucleus, got %s", r.Name())
	}
}

func TestSelectionAndFocusEvents(t *testing.T) {
	r := NewPoint2D(0, 0)
	var events []*Event
	r.AddListener(func(e *Event) { events = append(events, e) })

	r.SetSelected(true)
	r.SetSelected(true) // no flip, no event
	r.SetFocused(true)
	r.SetSelected(false)

	if !r.Focused() || r.Selected() {
		t.Errorf("flags: selected=%v focused=%v, want false/true", r.Selected(), r.Focused())
	}
	want := []EventType{SelectionChanged, FocusChanged, SelectionChanged}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, e := range events {
		if e.Type != want[i] {
			t.Errorf("event %d: got %v, want %v", i, e.Type, want[i])
		}
	}
}
