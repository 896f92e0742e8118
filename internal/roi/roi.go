// Package roi provides the region-of-interest geometric model: 2D and 3D
// shape variants built from anchor control points, boolean-mask operations,
// and collapsible change events.
package roi

import (
	"context"
	"image/color"
	"sync"

	"roilab/internal/event"
	"roilab/pkg/colorutil"
	"roilab/pkg/geometry"
)

// ROI is a user-defined geometric annotation over image data.
type ROI interface {
	// Name returns the display name of the ROI.
	Name() string
	// SetName changes the display name, publishing a PropertyChanged event.
	SetName(name string)
	// Color returns the display color.
	Color() color.RGBA
	// SetColor changes the display color, publishing a PropertyChanged event.
	SetColor(c color.RGBA)
	// TypeName returns the persistent shape type identifier.
	TypeName() string
	// Selected reports whether the ROI is currently selected.
	Selected() bool
	// SetSelected updates the selection flag, publishing a SelectionChanged
	// event when it flips.
	SetSelected(sel bool)
	// Focused reports whether the ROI currently holds focus.
	Focused() bool
	// SetFocused updates the focus flag, publishing a FocusChanged event
	// when it flips.
	SetFocused(focused bool)
	// Dimension returns 2 or 3.
	Dimension() int
	// Bounds returns the 2D projection of the ROI's bounding box.
	Bounds() geometry.Rect
	// Bounds3D returns the full 3D bounding box. 2D shapes report zero Z
	// extent.
	Bounds3D() geometry.Cuboid
	// Contains reports whether the point lies inside the ROI. Shapes
	// without an interior (points, lines, polylines) always report false.
	Contains(x, y, z float64) bool
	// Anchors returns the control points defining the shape.
	Anchors() []*Anchor
	// Mask rasterizes the ROI at the given Z slice. 2D shapes rasterize
	// identically at every Z. The computation polls ctx for cancellation.
	Mask(ctx context.Context, z int) (*BooleanMask2D, error)
	// Translate moves the whole ROI, publishing one collapsed change event.
	Translate(dx, dy, dz float64)
	// BeginUpdate opens an update bracket: change events are queued and
	// collapsed until the matching EndUpdate.
	BeginUpdate()
	// EndUpdate closes an update bracket, flushing collapsed events on the
	// outermost close. Safe to call from a defer.
	EndUpdate()
	// AddListener registers a change listener.
	AddListener(l func(e *Event))
}

// nextColor cycles through the overlay palette for newly created ROIs.
var (
	colorMu  sync.Mutex
	colorIdx int
)

func nextColor() color.RGBA {
	colorMu.Lock()
	defer colorMu.Unlock()
	c := colorutil.Palette(colorIdx)
	colorIdx++
	return c
}

// base carries the metadata and event plumbing shared by every shape.
type base struct {
	mu       sync.Mutex
	name     string
	col      color.RGBA
	selected bool
	focused  bool
	disp     *event.Dispatcher
	self     ROI
}

// init wires the base to its concrete shape. The self reference is the event
// source, so collapse identity follows the concrete ROI.
func (b *base) init(self ROI, name string) {
	b.self = self
	b.name = name
	b.col = nextColor()
	b.disp = event.NewDispatcher()
}

func (b *base) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

func (b *base) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
	b.disp.Publish(NewEvent(b.self, PropertyChanged, PropertyName))
}

func (b *base) Color() color.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.col
}

func (b *base) SetColor(c color.RGBA) {
	b.mu.Lock()
	b.col = c
	b.mu.Unlock()
	b.disp.Publish(NewEvent(b.self, PropertyChanged, PropertyColor))
}

func (b *base) Selected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

func (b *base) SetSelected(sel bool) {
	b.mu.Lock()
	if b.selected == sel {
		b.mu.Unlock()
		return
	}
	b.selected = sel
	b.mu.Unlock()
	b.disp.Publish(NewEvent(b.self, SelectionChanged, ""))
}

func (b *base) Focused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused
}

func (b *base) SetFocused(focused bool) {
	b.mu.Lock()
	if b.focused == focused {
		b.mu.Unlock()
		return
	}
	b.focused = focused
	b.mu.Unlock()
	b.disp.Publish(NewEvent(b.self, FocusChanged, ""))
}

func (b *base) BeginUpdate() { b.disp.Begin() }

func (b *base) EndUpdate() { b.disp.End() }

func (b *base) AddListener(l func(e *Event)) {
	b.disp.AddListener(func(e event.Collapsible) {
		if ev, ok := e.(*Event); ok {
			l(ev)
		}
	})
}

// changed publishes a content change event for the concrete shape.
func (b *base) changed() {
	b.disp.Publish(NewEvent(b.self, Changed, ""))
}
