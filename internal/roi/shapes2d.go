package roi

import (
	"context"

	"roilab/pkg/geometry"
)

// Shape type identifiers used in XML persistence.
const (
	TypePoint2D     = "point2d"
	TypeLine2D      = "line2d"
	TypePolyline2D  = "polyline2d"
	TypePolygon2D   = "polygon2d"
	TypeRectangle2D = "rectangle2d"
	TypeEllipse2D   = "ellipse2d"
	TypeArea2D      = "area2d"
	TypePoint3D     = "point3d"
	TypeLine3D      = "line3d"
	TypeBox3D       = "box3d"
	TypeCylinder3D  = "cylinder3d"
)

// Point2D is a single-anchor 2D marker. It has no interior.
type Point2D struct {
	base
	anchor *Anchor
}

// NewPoint2D creates a 2D point ROI.
func NewPoint2D(x, y float64) *Point2D {
	r := &Point2D{}
	r.init(r, "point")
	r.anchor = newAnchor(r, 0, x, y, 0)
	return r
}

func (r *Point2D) TypeName() string { return TypePoint2D }

func (r *Point2D) Dimension() int { return 2 }

func (r *Point2D) Bounds() geometry.Rect {
	return geometry.Rect{X: r.anchor.X(), Y: r.anchor.Y()}
}

func (r *Point2D) Bounds3D() geometry.Cuboid {
	return geometry.Cuboid{X: r.anchor.X(), Y: r.anchor.Y()}
}

// Contains always returns false: a point has no interior.
func (r *Point2D) Contains(x, y, z float64) bool { return false }

func (r *Point2D) Anchors() []*Anchor { return []*Anchor{r.anchor} }

func (r *Point2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	px, py := int(r.anchor.X()), int(r.anchor.Y())
	mask := NewBooleanMask2D(geometry.RectInt{X: px, Y: py, Width: 1, Height: 1})
	mask.Set(px, py, true)
	return mask, nil
}

func (r *Point2D) Translate(dx, dy, dz float64) {
	r.anchor.MoveTo(r.anchor.X()+dx, r.anchor.Y()+dy, 0)
}

func (r *Point2D) anchorMoved(a *Anchor) {
	r.changed()
}

// polyShape carries the shared anchor-chain machinery of line, polyline and
// polygon ROIs.
type polyShape struct {
	base
	anchors []*Anchor
	points  []geometry.Point2D
}

func (r *polyShape) initPoints(points []geometry.Point2D) {
	r.anchors = make([]*Anchor, len(points))
	for i, p := range points {
		r.anchors[i] = newAnchor(r, i, p.X, p.Y, 0)
	}
	r.updateShape()
}

// updateShape recomputes the cached vertex list from current anchor
// positions.
func (r *polyShape) updateShape() {
	r.mu.Lock()
	pts := make([]geometry.Point2D, len(r.anchors))
	for i, a := range r.anchors {
		pts[i] = geometry.Point2D{X: a.X(), Y: a.Y()}
	}
	r.points = pts
	r.mu.Unlock()
}

func (r *polyShape) anchorMoved(a *Anchor) {
	r.updateShape()
	r.changed()
}

// Points returns a snapshot of the vertex positions.
func (r *polyShape) Points() []geometry.Point2D {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]geometry.Point2D(nil), r.points...)
}

func (r *polyShape) Dimension() int { return 2 }

func (r *polyShape) Bounds() geometry.Rect {
	return geometry.BoundingBox(r.Points())
}

func (r *polyShape) Bounds3D() geometry.Cuboid {
	b := r.Bounds()
	return geometry.Cuboid{X: b.X, Y: b.Y, SizeX: b.Width, SizeY: b.Height}
}

func (r *polyShape) Anchors() []*Anchor {
	return append([]*Anchor(nil), r.anchors...)
}

func (r *polyShape) Translate(dx, dy, dz float64) {
	r.BeginUpdate()
	defer r.EndUpdate()
	for _, a := range r.anchors {
		a.set(a.X()+dx, a.Y()+dy, 0)
	}
	r.updateShape()
	r.changed()
}

// Line2D is a two-anchor segment. It has no interior.
type Line2D struct {
	polyShape
}

// NewLine2D creates a 2D line ROI.
func NewLine2D(x1, y1, x2, y2 float64) *Line2D {
	r := &Line2D{}
	r.init(r, "line")
	r.initPoints([]geometry.Point2D{{X: x1, Y: y1}, {X: x2, Y: y2}})
	return r
}

func (r *Line2D) TypeName() string { return TypeLine2D }

// Contains always returns false: a line has no interior.
func (r *Line2D) Contains(x, y, z float64) bool { return false }

// DistanceTo returns the distance from a point to the segment.
func (r *Line2D) DistanceTo(p geometry.Point2D) float64 {
	pts := r.Points()
	return geometry.SegmentDistance(p, pts[0], pts[1])
}

func (r *Line2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rasterizeSegments(r.Points(), false), nil
}

// Polyline2D is an open chain of anchors. It has no interior.
type Polyline2D struct {
	polyShape
}

// NewPolyline2D creates a 2D polyline ROI.
func NewPolyline2D(points []geometry.Point2D) *Polyline2D {
	r := &Polyline2D{}
	r.init(r, "polyline")
	r.initPoints(points)
	return r
}

func (r *Polyline2D) TypeName() string { return TypePolyline2D }

// Contains always returns false: a polyline has no interior.
func (r *Polyline2D) Contains(x, y, z float64) bool { return false }

// Length returns the total length of the chain.
func (r *Polyline2D) Length() float64 {
	pts := r.Points()
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += pts[i-1].Distance(pts[i])
	}
	return sum
}

func (r *Polyline2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rasterizeSegments(r.Points(), false), nil
}

// Polygon2D is a closed chain of anchors with a ray-cast interior test.
type Polygon2D struct {
	polyShape
}

// NewPolygon2D creates a 2D polygon ROI.
func NewPolygon2D(points []geometry.Point2D) *Polygon2D {
	r := &Polygon2D{}
	r.init(r, "polygon")
	r.initPoints(points)
	return r
}

func (r *Polygon2D) TypeName() string { return TypePolygon2D }

func (r *Polygon2D) Contains(x, y, z float64) bool {
	return geometry.PointInPolygon(geometry.Point2D{X: x, Y: y}, r.Points())
}

// Area returns the analytic polygon area.
func (r *Polygon2D) Area() float64 {
	return geometry.PolygonArea(r.Points())
}

// Perimeter returns the analytic polygon perimeter.
func (r *Polygon2D) Perimeter() float64 {
	return geometry.PolygonPerimeter(r.Points())
}

func (r *Polygon2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	return rasterizePolygon(ctx, r.Points())
}
