package roi

import (
	"context"
	"math"

	"roilab/pkg/geometry"
)

// rasterizePolygon fills pixels whose centers fall inside the polygon,
// polling the context per row.
func rasterizePolygon(ctx context.Context, polygon []geometry.Point2D) (*BooleanMask2D, error) {
	mask := NewBooleanMask2D(geometry.BoundingBox(polygon).ToInt())
	for y := mask.Bounds.Y; y < mask.Bounds.Y+mask.Bounds.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := mask.Bounds.X; x < mask.Bounds.X+mask.Bounds.Width; x++ {
			center := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if geometry.PointInPolygon(center, polygon) {
				mask.Set(x, y, true)
			}
		}
	}
	return mask, nil
}

// rasterizeEllipse fills pixels whose centers fall inside the ellipse
// inscribed in bounds, polling the context per row.
func rasterizeEllipse(ctx context.Context, bounds geometry.Rect) (*BooleanMask2D, error) {
	mask := NewBooleanMask2D(bounds.ToInt())
	for y := mask.Bounds.Y; y < mask.Bounds.Y+mask.Bounds.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := mask.Bounds.X; x < mask.Bounds.X+mask.Bounds.Width; x++ {
			center := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if geometry.EllipseContains(center, bounds) {
				mask.Set(x, y, true)
			}
		}
	}
	return mask, nil
}

// rasterizeSegments marks the pixels crossed by a chain of segments. When
// closed is true the last point connects back to the first.
func rasterizeSegments(points []geometry.Point2D, closed bool) *BooleanMask2D {
	bounds := geometry.BoundingBox(points).ToInt()
	// A degenerate chain still occupies one pixel per point.
	if bounds.Width == 0 {
		bounds.Width = 1
	}
	if bounds.Height == 0 {
		bounds.Height = 1
	}
	mask := NewBooleanMask2D(bounds)
	n := len(points)
	if n == 0 {
		return mask
	}
	last := n - 1
	if closed {
		last = n
	}
	for i := 0; i < last; i++ {
		a := points[i]
		b := points[(i+1)%n]
		plotSegment(mask, a, b)
	}
	mask.Set(int(points[n-1].X), int(points[n-1].Y), true)
	return mask
}

// plotSegment marks pixels along a-b by stepping one pixel at a time along
// the dominant axis.
func plotSegment(mask *BooleanMask2D, a, b geometry.Point2D) {
	steps := int(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)))
	if steps == 0 {
		mask.Set(int(a.X), int(a.Y), true)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + t*(b.X-a.X)
		y := a.Y + t*(b.Y-a.Y)
		mask.Set(int(x), int(y), true)
	}
}
