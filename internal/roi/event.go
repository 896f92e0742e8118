package roi

import (
	"fmt"

	"roilab/internal/event"
)

// EventType identifies the kind of change a ROI event reports.
type EventType int

const (
	// Changed reports a content change (anchors moved, shape recomputed).
	Changed EventType = iota
	// PropertyChanged reports a metadata change (name, color).
	PropertyChanged
	// SelectionChanged reports the ROI being selected or deselected.
	SelectionChanged
	// FocusChanged reports the ROI gaining or losing focus.
	FocusChanged
)

func (t EventType) String() string {
	switch t {
	case Changed:
		return "changed"
	case PropertyChanged:
		return "property_changed"
	case SelectionChanged:
		return "selection_changed"
	case FocusChanged:
		return "focus_changed"
	default:
		return "unknown"
	}
}

// Well-known property names carried by PropertyChanged events.
const (
	PropertyName  = "name"
	PropertyColor = "color"
	// PropertyAll marks a merged event whose constituents touched
	// different properties.
	PropertyAll = "*"
)

// Event is a collapsible ROI change notification. Identity for collapsing is
// (source, type); collapsing two PropertyChanged events that name different
// properties generalizes the merged event to PropertyAll.
type Event struct {
	Source   ROI
	Type     EventType
	Property string
}

// NewEvent creates a ROI event.
func NewEvent(source ROI, typ EventType, property string) *Event {
	return &Event{Source: source, Type: typ, Property: property}
}

// Key returns the collapse identity of the event.
func (e *Event) Key() string {
	return fmt.Sprintf("%p/%d", e.Source, e.Type)
}

// Collapse merges another event of the same identity into this one. The merge
// is idempotent and order-independent: same property keeps it, differing
// properties degrade to PropertyAll.
func (e *Event) Collapse(other event.Collapsible) bool {
	o, ok := other.(*Event)
	if !ok || o.Source != e.Source || o.Type != e.Type {
		return false
	}
	if e.Type == PropertyChanged && e.Property != o.Property {
		e.Property = PropertyAll
	}
	return true
}
