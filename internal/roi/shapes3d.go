package roi

import (
	"context"
	"math"

	"roilab/pkg/geometry"
)

// Point3D is a single-anchor 3D marker. It has no interior.
type Point3D struct {
	base
	anchor *Anchor
}

// NewPoint3D creates a 3D point ROI.
func NewPoint3D(x, y, z float64) *Point3D {
	r := &Point3D{}
	r.init(r, "point3d")
	r.anchor = newAnchor(r, 0, x, y, z)
	return r
}

func (r *Point3D) TypeName() string { return TypePoint3D }

func (r *Point3D) Dimension() int { return 3 }

func (r *Point3D) Bounds() geometry.Rect {
	return geometry.Rect{X: r.anchor.X(), Y: r.anchor.Y()}
}

func (r *Point3D) Bounds3D() geometry.Cuboid {
	p := r.anchor.Position()
	return geometry.Cuboid{X: p.X, Y: p.Y, Z: p.Z}
}

// Contains always returns false: a point has no interior.
func (r *Point3D) Contains(x, y, z float64) bool { return false }

func (r *Point3D) Anchors() []*Anchor { return []*Anchor{r.anchor} }

func (r *Point3D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := r.anchor.Position()
	mask := NewBooleanMask2D(geometry.RectInt{X: int(p.X), Y: int(p.Y), Width: 1, Height: 1})
	if int(p.Z) == z {
		mask.Set(int(p.X), int(p.Y), true)
	}
	return mask, nil
}

func (r *Point3D) Translate(dx, dy, dz float64) {
	p := r.anchor.Position()
	r.anchor.MoveTo(p.X+dx, p.Y+dy, p.Z+dz)
}

func (r *Point3D) anchorMoved(a *Anchor) {
	r.changed()
}

// Line3D is a two-anchor 3D segment. It has no interior.
type Line3D struct {
	base
	anchors [2]*Anchor
}

// NewLine3D creates a 3D line ROI.
func NewLine3D(p1, p2 geometry.Point3D) *Line3D {
	r := &Line3D{}
	r.init(r, "line3d")
	r.anchors[0] = newAnchor(r, 0, p1.X, p1.Y, p1.Z)
	r.anchors[1] = newAnchor(r, 1, p2.X, p2.Y, p2.Z)
	return r
}

func (r *Line3D) TypeName() string { return TypeLine3D }

func (r *Line3D) Dimension() int { return 3 }

// Endpoints returns the two segment ends.
func (r *Line3D) Endpoints() (geometry.Point3D, geometry.Point3D) {
	return r.anchors[0].Position(), r.anchors[1].Position()
}

func (r *Line3D) Bounds() geometry.Rect {
	p1, p2 := r.Endpoints()
	return geometry.BoundingBox([]geometry.Point2D{p1.XY(), p2.XY()})
}

func (r *Line3D) Bounds3D() geometry.Cuboid {
	p1, p2 := r.Endpoints()
	zLo := math.Min(p1.Z, p2.Z)
	zHi := math.Max(p1.Z, p2.Z)
	b := r.Bounds()
	return geometry.Cuboid{X: b.X, Y: b.Y, Z: zLo, SizeX: b.Width, SizeY: b.Height, SizeZ: zHi - zLo}
}

// Contains always returns false: a line has no interior.
func (r *Line3D) Contains(x, y, z float64) bool { return false }

func (r *Line3D) Anchors() []*Anchor {
	return append([]*Anchor(nil), r.anchors[:]...)
}

// Length returns the segment length.
func (r *Line3D) Length() float64 {
	p1, p2 := r.Endpoints()
	return p1.Distance(p2)
}

// Mask rasterizes the portion of the segment crossing the given Z slice.
func (r *Line3D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p1, p2 := r.Endpoints()
	bounds := r.Bounds().ToInt()
	if bounds.Width == 0 {
		bounds.Width = 1
	}
	if bounds.Height == 0 {
		bounds.Height = 1
	}
	mask := NewBooleanMask2D(bounds)
	steps := int(math.Max(math.Max(math.Abs(p2.X-p1.X), math.Abs(p2.Y-p1.Y)), math.Abs(p2.Z-p1.Z)))
	if steps == 0 {
		if int(p1.Z) == z {
			mask = NewBooleanMask2D(geometry.RectInt{X: int(p1.X), Y: int(p1.Y), Width: 1, Height: 1})
			mask.Set(int(p1.X), int(p1.Y), true)
		}
		return mask, nil
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pz := p1.Z + t*(p2.Z-p1.Z)
		if int(pz) != z {
			continue
		}
		px := p1.X + t*(p2.X-p1.X)
		py := p1.Y + t*(p2.Y-p1.Y)
		mask.Set(int(px), int(py), true)
	}
	return mask, nil
}

func (r *Line3D) Translate(dx, dy, dz float64) {
	r.BeginUpdate()
	defer r.EndUpdate()
	for _, a := range r.anchors {
		p := a.Position()
		a.set(p.X+dx, p.Y+dy, p.Z+dz)
	}
	r.changed()
}

func (r *Line3D) anchorMoved(a *Anchor) {
	r.changed()
}
