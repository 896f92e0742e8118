package roi

import (
	"context"

	"roilab/pkg/geometry"
)

// BooleanMask2D is a rasterized ROI interior: a bounding rectangle plus one
// bit per pixel inside it. All boolean operations poll the context once per
// row so long computations stay cancelable from the UI.
type BooleanMask2D struct {
	Bounds geometry.RectInt
	Bits   []bool
}

// NewBooleanMask2D creates an all-clear mask covering the given bounds.
func NewBooleanMask2D(bounds geometry.RectInt) *BooleanMask2D {
	n := bounds.Width * bounds.Height
	if n < 0 {
		n = 0
	}
	return &BooleanMask2D{Bounds: bounds, Bits: make([]bool, n)}
}

// Get reports whether the pixel at absolute coordinates (x, y) is set.
// Pixels outside the bounds are clear.
func (m *BooleanMask2D) Get(x, y int) bool {
	if !m.Bounds.Contains(x, y) {
		return false
	}
	return m.Bits[(y-m.Bounds.Y)*m.Bounds.Width+(x-m.Bounds.X)]
}

// Set sets or clears the pixel at absolute coordinates (x, y). Out-of-bounds
// writes are ignored.
func (m *BooleanMask2D) Set(x, y int, v bool) {
	if !m.Bounds.Contains(x, y) {
		return
	}
	m.Bits[(y-m.Bounds.Y)*m.Bounds.Width+(x-m.Bounds.X)] = v
}

// IsEmpty reports whether no pixel is set.
func (m *BooleanMask2D) IsEmpty() bool {
	for _, b := range m.Bits {
		if b {
			return false
		}
	}
	return true
}

// Count returns the number of interior pixels.
func (m *BooleanMask2D) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// ContourCount returns the number of set pixels with at least one clear
// 4-neighbour, i.e. the length of the mask boundary in pixels.
func (m *BooleanMask2D) ContourCount() int {
	n := 0
	for y := m.Bounds.Y; y < m.Bounds.Y+m.Bounds.Height; y++ {
		for x := m.Bounds.X; x < m.Bounds.X+m.Bounds.Width; x++ {
			if !m.Get(x, y) {
				continue
			}
			if !m.Get(x-1, y) || !m.Get(x+1, y) || !m.Get(x, y-1) || !m.Get(x, y+1) {
				n++
			}
		}
	}
	return n
}

// Centroid returns the mean position of set pixels (pixel centers). The
// second result is false when the mask is empty.
func (m *BooleanMask2D) Centroid() (geometry.Point2D, bool) {
	var sumX, sumY float64
	n := 0
	for y := 0; y < m.Bounds.Height; y++ {
		for x := 0; x < m.Bounds.Width; x++ {
			if m.Bits[y*m.Bounds.Width+x] {
				sumX += float64(m.Bounds.X+x) + 0.5
				sumY += float64(m.Bounds.Y+y) + 0.5
				n++
			}
		}
	}
	if n == 0 {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{X: sumX / float64(n), Y: sumY / float64(n)}, true
}

// Translate moves the mask by an integer offset.
func (m *BooleanMask2D) Translate(dx, dy int) {
	m.Bounds.X += dx
	m.Bounds.Y += dy
}

// Clone returns a deep copy of the mask.
func (m *BooleanMask2D) Clone() *BooleanMask2D {
	bits := make([]bool, len(m.Bits))
	copy(bits, m.Bits)
	return &BooleanMask2D{Bounds: m.Bounds, Bits: bits}
}

// combine2D evaluates op over the union bounds of a and b, polling the
// context per row.
func combine2D(ctx context.Context, a, b *BooleanMask2D, op func(x, y bool) bool) (*BooleanMask2D, error) {
	bounds := a.Bounds.Union(b.Bounds)
	out := NewBooleanMask2D(bounds)
	for y := bounds.Y; y < bounds.Y+bounds.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := bounds.X; x < bounds.X+bounds.Width; x++ {
			out.Set(x, y, op(a.Get(x, y), b.Get(x, y)))
		}
	}
	return out, nil
}

// Union2D returns the union of both masks.
func Union2D(ctx context.Context, a, b *BooleanMask2D) (*BooleanMask2D, error) {
	return combine2D(ctx, a, b, func(x, y bool) bool { return x || y })
}

// Intersect2D returns the intersection of both masks.
func Intersect2D(ctx context.Context, a, b *BooleanMask2D) (*BooleanMask2D, error) {
	return combine2D(ctx, a, b, func(x, y bool) bool { return x && y })
}

// Subtract2D returns a minus b.
func Subtract2D(ctx context.Context, a, b *BooleanMask2D) (*BooleanMask2D, error) {
	return combine2D(ctx, a, b, func(x, y bool) bool { return x && !y })
}

// Xor2D returns the exclusive union of both masks.
func Xor2D(ctx context.Context, a, b *BooleanMask2D) (*BooleanMask2D, error) {
	return combine2D(ctx, a, b, func(x, y bool) bool { return x != y })
}
