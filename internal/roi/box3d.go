package roi

import (
	"context"
	"math"

	"roilab/pkg/geometry"
)

// Extent anchor indices of Z-extended shapes, continuing the corner indices.
const (
	extentCloseZ = 4
	extentFarZ   = 5
)

// extrudedShape is a 2D four-corner shape extended along Z between two
// extent anchors. Corner anchors keep the rectangle consistent exactly as in
// the 2D case; the extent anchors move the close and far Z planes.
type extrudedShape struct {
	rectShape
	closeA *Anchor
	farA   *Anchor
}

func (r *extrudedShape) initExtruded(rect geometry.Rect, closeZ, farZ float64) {
	r.initRect(rect)
	for _, c := range r.corners {
		c.set(c.X(), c.Y(), closeZ)
	}
	center := rect.Center()
	r.closeA = newAnchor(r, extentCloseZ, center.X, center.Y, closeZ)
	r.farA = newAnchor(r, extentFarZ, center.X, center.Y, farZ)
}

// CloseZ returns the near Z plane.
func (r *extrudedShape) CloseZ() float64 { return r.closeA.Z() }

// FarZ returns the far Z plane.
func (r *extrudedShape) FarZ() float64 { return r.farA.Z() }

func (r *extrudedShape) zRange() (float64, float64) {
	lo, hi := r.closeA.Z(), r.farA.Z()
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

func (r *extrudedShape) anchorMoved(a *Anchor) {
	switch a.index {
	case extentCloseZ:
		// The corner anchors live on the close plane.
		for _, c := range r.corners {
			c.set(c.X(), c.Y(), a.Z())
		}
		r.changed()
	case extentFarZ:
		r.changed()
	default:
		r.rectShape.anchorMoved(a)
	}
}

func (r *extrudedShape) Dimension() int { return 3 }

func (r *extrudedShape) Bounds3D() geometry.Cuboid {
	b := r.Rect()
	lo, hi := r.zRange()
	return geometry.Cuboid{X: b.X, Y: b.Y, Z: lo, SizeX: b.Width, SizeY: b.Height, SizeZ: hi - lo}
}

func (r *extrudedShape) Anchors() []*Anchor {
	out := append([]*Anchor(nil), r.corners[:]...)
	return append(out, r.closeA, r.farA)
}

func (r *extrudedShape) Translate(dx, dy, dz float64) {
	r.BeginUpdate()
	defer r.EndUpdate()
	for _, a := range r.Anchors() {
		p := a.Position()
		a.set(p.X+dx, p.Y+dy, p.Z+dz)
	}
	r.updateShape()
	r.changed()
}

// sliceOccupied reports whether the Z slice intersects the extruded extent.
func (r *extrudedShape) sliceOccupied(z int) bool {
	lo, hi := r.zRange()
	if lo == hi {
		return z == int(lo)
	}
	zf := float64(z)
	return zf >= math.Floor(lo) && zf < hi
}

// Box3D is an axis-aligned 3D box: a rectangle extruded between two Z
// planes.
type Box3D struct {
	extrudedShape
}

// NewBox3D creates a 3D box ROI.
func NewBox3D(rect geometry.Rect, closeZ, farZ float64) *Box3D {
	r := &Box3D{}
	r.init(r, "box")
	r.initExtruded(rect, closeZ, farZ)
	return r
}

func (r *Box3D) TypeName() string { return TypeBox3D }

func (r *Box3D) Contains(x, y, z float64) bool {
	return r.Bounds3D().Contains(geometry.Point3D{X: x, Y: y, Z: z})
}

func (r *Box3D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.sliceOccupied(z) {
		return NewBooleanMask2D(geometry.RectInt{}), nil
	}
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

// Cylinder3D is an elliptic cylinder: an ellipse extruded between two Z
// planes.
type Cylinder3D struct {
	extrudedShape
}

// NewCylinder3D creates a 3D cylinder ROI whose section is the ellipse
// inscribed in rect.
func NewCylinder3D(rect geometry.Rect, closeZ, farZ float64) *Cylinder3D {
	r := &Cylinder3D{}
	r.init(r, "cylinder")
	r.initExtruded(rect, closeZ, farZ)
	return r
}

func (r *Cylinder3D) TypeName() string { return TypeCylinder3D }

func (r *Cylinder3D) Contains(x, y, z float64) bool {
	lo, hi := r.zRange()
	if z < lo || z > hi {
		return false
	}
	return geometry.EllipseContains(geometry.Point2D{X: x, Y: y}, r.Rect())
}

func (r *Cylinder3D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if !r.sliceOccupied(z) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewBooleanMask2D(geometry.RectInt{}), nil
	}
	return rasterizeEllipse(ctx, r.Rect())
}
