package roi

import (
	"context"

	"roilab/pkg/geometry"
)

// guardState tracks corner-propagation re-entrancy. While a shape is
// adjusting dependent corners, further anchor notifications apply the
// position but do not re-trigger propagation.
type guardState int

const (
	guardIdle guardState = iota
	guardAdjusting
)

// Corner anchor indices, clockwise from top-left.
const (
	cornerTopLeft = iota
	cornerTopRight
	cornerBottomRight
	cornerBottomLeft
)

// rectShape carries the four-corner anchor machinery shared by rectangle and
// ellipse ROIs and by their Z-extended 3D variants. Moving one corner drags
// the two edge-sharing corners along the shared axis; the diagonal corner
// never moves.
type rectShape struct {
	base
	corners [4]*Anchor
	guard   guardState
	rect    geometry.Rect
}

func (r *rectShape) initRect(rect geometry.Rect) {
	r.corners[cornerTopLeft] = newAnchor(r, cornerTopLeft, rect.X, rect.Y, 0)
	r.corners[cornerTopRight] = newAnchor(r, cornerTopRight, rect.X+rect.Width, rect.Y, 0)
	r.corners[cornerBottomRight] = newAnchor(r, cornerBottomRight, rect.X+rect.Width, rect.Y+rect.Height, 0)
	r.corners[cornerBottomLeft] = newAnchor(r, cornerBottomLeft, rect.X, rect.Y+rect.Height, 0)
	r.rect = rect
}

func (r *rectShape) anchorMoved(a *Anchor) {
	r.mu.Lock()
	if r.guard == guardAdjusting {
		// Re-entrant move while dependent corners are being repositioned:
		// the position is already applied, propagation stops here.
		r.mu.Unlock()
		return
	}
	r.guard = guardAdjusting
	r.mu.Unlock()

	r.adjustCorners(a)

	r.mu.Lock()
	r.guard = guardIdle
	r.mu.Unlock()

	r.updateShape()
	r.changed()
}

// adjustCorners drags the two corners sharing an edge with the moved one.
// Horizontal neighbours share Y, vertical neighbours share X.
func (r *rectShape) adjustCorners(a *Anchor) {
	c := r.corners
	switch a.index {
	case cornerTopLeft:
		c[cornerTopRight].MoveTo(c[cornerTopRight].X(), a.Y(), c[cornerTopRight].Z())
		c[cornerBottomLeft].MoveTo(a.X(), c[cornerBottomLeft].Y(), c[cornerBottomLeft].Z())
	case cornerTopRight:
		c[cornerTopLeft].MoveTo(c[cornerTopLeft].X(), a.Y(), c[cornerTopLeft].Z())
		c[cornerBottomRight].MoveTo(a.X(), c[cornerBottomRight].Y(), c[cornerBottomRight].Z())
	case cornerBottomRight:
		c[cornerBottomLeft].MoveTo(c[cornerBottomLeft].X(), a.Y(), c[cornerBottomLeft].Z())
		c[cornerTopRight].MoveTo(a.X(), c[cornerTopRight].Y(), c[cornerTopRight].Z())
	case cornerBottomLeft:
		c[cornerBottomRight].MoveTo(c[cornerBottomRight].X(), a.Y(), c[cornerBottomRight].Z())
		c[cornerTopLeft].MoveTo(a.X(), c[cornerTopLeft].Y(), c[cornerTopLeft].Z())
	}
}

// updateShape recomputes the rectangle from current corner positions.
func (r *rectShape) updateShape() {
	pts := make([]geometry.Point2D, 4)
	for i, a := range r.corners {
		pts[i] = geometry.Point2D{X: a.X(), Y: a.Y()}
	}
	r.mu.Lock()
	r.rect = geometry.BoundingBox(pts)
	r.mu.Unlock()
}

// Rect returns the current rectangle.
func (r *rectShape) Rect() geometry.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rect
}

func (r *rectShape) Dimension() int { return 2 }

func (r *rectShape) Bounds() geometry.Rect { return r.Rect() }

func (r *rectShape) Bounds3D() geometry.Cuboid {
	b := r.Rect()
	return geometry.Cuboid{X: b.X, Y: b.Y, SizeX: b.Width, SizeY: b.Height}
}

func (r *rectShape) Anchors() []*Anchor {
	return append([]*Anchor(nil), r.corners[:]...)
}

func (r *rectShape) Translate(dx, dy, dz float64) {
	r.BeginUpdate()
	defer r.EndUpdate()
	for _, a := range r.corners {
		a.set(a.X()+dx, a.Y()+dy, a.Z())
	}
	r.updateShape()
	r.changed()
}

// Rectangle2D is an axis-aligned rectangle with four corner anchors.
type Rectangle2D struct {
	rectShape
}

// NewRectangle2D creates a 2D rectangle ROI.
func NewRectangle2D(rect geometry.Rect) *Rectangle2D {
	r := &Rectangle2D{}
	r.init(r, "rectangle")
	r.initRect(rect)
	return r
}

func (r *Rectangle2D) TypeName() string { return TypeRectangle2D }

func (r *Rectangle2D) Contains(x, y, z float64) bool {
	return r.Rect().Contains(geometry.Point2D{X: x, Y: y})
}

func (r *Rectangle2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	rect := r.Rect().ToInt()
	mask := NewBooleanMask2D(rect)
	for y := rect.Y; y < rect.Y+rect.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := rect.X; x < rect.X+rect.Width; x++ {
			mask.Set(x, y, true)
		}
	}
	return mask, nil
}

// Ellipse2D is an axis-aligned ellipse inscribed in a four-corner bounding
// rectangle.
type Ellipse2D struct {
	rectShape
}

// NewEllipse2D creates a 2D ellipse ROI inscribed in the given rectangle.
func NewEllipse2D(rect geometry.Rect) *Ellipse2D {
	r := &Ellipse2D{}
	r.init(r, "ellipse")
	r.initRect(rect)
	return r
}

func (r *Ellipse2D) TypeName() string { return TypeEllipse2D }

func (r *Ellipse2D) Contains(x, y, z float64) bool {
	return geometry.EllipseContains(geometry.Point2D{X: x, Y: y}, r.Rect())
}

func (r *Ellipse2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	return rasterizeEllipse(ctx, r.Rect())
}
