package roi

import (
	"context"

	"roilab/pkg/geometry"
)

// Area2D is a freeform mask-backed 2D ROI, typically the result of a boolean
// operation between two other ROIs.
type Area2D struct {
	base
	mask *BooleanMask2D
}

// NewArea2D creates a mask-backed ROI. The mask is owned by the ROI
// afterwards.
func NewArea2D(mask *BooleanMask2D) *Area2D {
	r := &Area2D{}
	r.init(r, "area")
	if mask == nil {
		mask = NewBooleanMask2D(geometry.RectInt{})
	}
	r.mask = mask
	return r
}

func (r *Area2D) TypeName() string { return TypeArea2D }

func (r *Area2D) Dimension() int { return 2 }

func (r *Area2D) Bounds() geometry.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask.Bounds.ToFloat()
}

func (r *Area2D) Bounds3D() geometry.Cuboid {
	b := r.Bounds()
	return geometry.Cuboid{X: b.X, Y: b.Y, SizeX: b.Width, SizeY: b.Height}
}

func (r *Area2D) Contains(x, y, z float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask.Get(int(x), int(y))
}

// Anchors returns nil: a freeform area has no control points.
func (r *Area2D) Anchors() []*Anchor { return nil }

func (r *Area2D) Mask(ctx context.Context, z int) (*BooleanMask2D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask.Clone(), nil
}

func (r *Area2D) Translate(dx, dy, dz float64) {
	r.mu.Lock()
	r.mask.Translate(int(dx), int(dy))
	r.mu.Unlock()
	r.changed()
}

// SetMask replaces the area content.
func (r *Area2D) SetMask(mask *BooleanMask2D) {
	r.mu.Lock()
	r.mask = mask
	r.mu.Unlock()
	r.changed()
}

// Combine rasterizes two ROIs at Z slice 0 and merges them with the given
// mask operation, returning the result as a new freeform area ROI.
func Combine(ctx context.Context, a, b ROI,
	op func(ctx context.Context, x, y *BooleanMask2D) (*BooleanMask2D, error)) (*Area2D, error) {

	ma, err := a.Mask(ctx, 0)
	if err != nil {
		return nil, err
	}
	mb, err := b.Mask(ctx, 0)
	if err != nil {
		return nil, err
	}
	merged, err := op(ctx, ma, mb)
	if err != nil {
		return nil, err
	}
	return NewArea2D(merged), nil
}
