package roi

import (
	"context"
	"sort"

	"roilab/pkg/geometry"
)

// BooleanMask3D is a Z-indexed stack of 2D masks. Absent slices are empty.
type BooleanMask3D struct {
	Slices map[int]*BooleanMask2D
}

// NewBooleanMask3D creates an empty 3D mask.
func NewBooleanMask3D() *BooleanMask3D {
	return &BooleanMask3D{Slices: make(map[int]*BooleanMask2D)}
}

// Slice returns the mask at the given Z, or nil when the slice is empty.
func (m *BooleanMask3D) Slice(z int) *BooleanMask2D {
	return m.Slices[z]
}

// SetSlice installs a slice mask. Nil or empty slices are removed instead.
func (m *BooleanMask3D) SetSlice(z int, s *BooleanMask2D) {
	if s == nil || s.IsEmpty() {
		delete(m.Slices, z)
		return
	}
	m.Slices[z] = s
}

// ZRange returns the lowest and highest occupied slice index. The third
// result is false when the mask is empty.
func (m *BooleanMask3D) ZRange() (int, int, bool) {
	if len(m.Slices) == 0 {
		return 0, 0, false
	}
	first := true
	var lo, hi int
	for z := range m.Slices {
		if first {
			lo, hi = z, z
			first = false
			continue
		}
		if z < lo {
			lo = z
		}
		if z > hi {
			hi = z
		}
	}
	return lo, hi, true
}

// Count returns the number of interior voxels.
func (m *BooleanMask3D) Count() int {
	n := 0
	for _, s := range m.Slices {
		n += s.Count()
	}
	return n
}

// SurfaceCount approximates the boundary surface in voxel faces: per-slice
// contour pixels plus pixels not covered by the neighbouring slices.
func (m *BooleanMask3D) SurfaceCount() int {
	n := 0
	zs := make([]int, 0, len(m.Slices))
	for z := range m.Slices {
		zs = append(zs, z)
	}
	sort.Ints(zs)
	for _, z := range zs {
		s := m.Slices[z]
		n += s.ContourCount()
		n += uncovered(s, m.Slices[z-1])
		n += uncovered(s, m.Slices[z+1])
	}
	return n
}

// uncovered counts pixels set in s but clear in the neighbour slice.
func uncovered(s, neighbour *BooleanMask2D) int {
	if neighbour == nil {
		return s.Count()
	}
	n := 0
	for y := s.Bounds.Y; y < s.Bounds.Y+s.Bounds.Height; y++ {
		for x := s.Bounds.X; x < s.Bounds.X+s.Bounds.Width; x++ {
			if s.Get(x, y) && !neighbour.Get(x, y) {
				n++
			}
		}
	}
	return n
}

// Centroid returns the mean voxel position. The second result is false when
// the mask is empty.
func (m *BooleanMask3D) Centroid() (geometry.Point3D, bool) {
	var sumX, sumY, sumZ float64
	n := 0
	for z, s := range m.Slices {
		c, ok := s.Centroid()
		if !ok {
			continue
		}
		cnt := s.Count()
		sumX += c.X * float64(cnt)
		sumY += c.Y * float64(cnt)
		sumZ += (float64(z) + 0.5) * float64(cnt)
		n += cnt
	}
	if n == 0 {
		return geometry.Point3D{}, false
	}
	return geometry.Point3D{X: sumX / float64(n), Y: sumY / float64(n), Z: sumZ / float64(n)}, true
}

// combine3D evaluates the 2D operation slice by slice over the union of
// occupied Z indices.
func combine3D(ctx context.Context, a, b *BooleanMask3D,
	op func(ctx context.Context, x, y *BooleanMask2D) (*BooleanMask2D, error)) (*BooleanMask3D, error) {

	out := NewBooleanMask3D()
	seen := make(map[int]bool)
	for z := range a.Slices {
		seen[z] = true
	}
	for z := range b.Slices {
		seen[z] = true
	}
	empty := NewBooleanMask2D(geometry.RectInt{})
	for z := range seen {
		sa := a.Slices[z]
		if sa == nil {
			sa = empty
		}
		sb := b.Slices[z]
		if sb == nil {
			sb = empty
		}
		s, err := op(ctx, sa, sb)
		if err != nil {
			return nil, err
		}
		out.SetSlice(z, s)
	}
	return out, nil
}

// Union3D returns the union of both masks.
func Union3D(ctx context.Context, a, b *BooleanMask3D) (*BooleanMask3D, error) {
	return combine3D(ctx, a, b, Union2D)
}

// Intersect3D returns the intersection of both masks.
func Intersect3D(ctx context.Context, a, b *BooleanMask3D) (*BooleanMask3D, error) {
	return combine3D(ctx, a, b, Intersect2D)
}

// Subtract3D returns a minus b.
func Subtract3D(ctx context.Context, a, b *BooleanMask3D) (*BooleanMask3D, error) {
	return combine3D(ctx, a, b, Subtract2D)
}

// Xor3D returns the exclusive union of both masks.
func Xor3D(ctx context.Context, a, b *BooleanMask3D) (*BooleanMask3D, error) {
	return combine3D(ctx, a, b, Xor2D)
}

// MaskOf rasterizes a ROI into a full 3D mask by sweeping the Z extent of
// its bounding box.
func MaskOf(ctx context.Context, r ROI) (*BooleanMask3D, error) {
	out := NewBooleanMask3D()
	b := r.Bounds3D()
	zLo := int(b.Z)
	zHi := int(b.Z + b.SizeZ)
	if zHi < zLo {
		zHi = zLo
	}
	for z := zLo; z <= zHi; z++ {
		s, err := r.Mask(ctx, z)
		if err != nil {
			return nil, err
		}
		out.SetSlice(z, s)
	}
	return out, nil
}
