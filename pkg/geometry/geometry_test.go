package geometry

import (
	"math"
	"testing"
)

func TestPolygonAreaAndPerimeter(t *testing.T) {
	square := []Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	if got := PolygonArea(square); got != 16 {
		t.Errorf("area = %v, want 16", got)
	}
	if got := PolygonPerimeter(square); got != 16 {
		t.Errorf("perimeter = %v, want 16", got)
	}

	// Orientation must not flip the sign.
	reversed := []Point2D{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}}
	if got := PolygonArea(reversed); got != 16 {
		t.Errorf("clockwise area = %v, want 16", got)
	}

	if got := PolygonArea(square[:2]); got != 0 {
		t.Errorf("degenerate polygon area = %v, want 0", got)
	}
}

func TestSegmentDistance(t *testing.T) {
	a := Point2D{X: 0, Y: 0}
	b := Point2D{X: 10, Y: 0}
	if got := SegmentDistance(Point2D{X: 5, Y: 3}, a, b); got != 3 {
		t.Errorf("perpendicular distance = %v, want 3", got)
	}
	// Beyond the endpoint the nearest point is the endpoint itself.
	if got := SegmentDistance(Point2D{X: 13, Y: 4}, a, b); got != 5 {
		t.Errorf("endpoint distance = %v, want 5", got)
	}
	// Degenerate segment collapses to point distance.
	if got := SegmentDistance(Point2D{X: 3, Y: 4}, a, a); got != 5 {
		t.Errorf("point distance = %v, want 5", got)
	}
}

func TestEllipseContains(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 10, Height: 6}
	if !EllipseContains(Point2D{X: 5, Y: 3}, bounds) {
		t.Errorf("center must be inside")
	}
	if EllipseContains(Point2D{X: 0.2, Y: 0.2}, bounds) {
		t.Errorf("bounding box corner is outside the ellipse")
	}
	if !EllipseContains(Point2D{X: 9.9, Y: 3}, bounds) {
		t.Errorf("point near the major axis end must be inside")
	}
}

func TestCuboidOps(t *testing.T) {
	a := NewCuboid(0, 0, 0, 4, 4, 2)
	b := NewCuboid(2, 2, 1, 4, 4, 2)

	if !a.Contains(Point3D{X: 1, Y: 1, Z: 1}) {
		t.Errorf("interior point not contained")
	}
	if a.Contains(Point3D{X: 1, Y: 1, Z: 2.5}) {
		t.Errorf("point beyond the far face should not be contained")
	}
	if !a.Intersects(b) {
		t.Errorf("overlapping cuboids should intersect")
	}

	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.Z != 0 || u.SizeX != 6 || u.SizeY != 6 || u.SizeZ != 3 {
		t.Errorf("union = %+v", u)
	}
}

func TestRectIntIntersect(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := RectInt{X: 5, Y: 5, Width: 10, Height: 10}
	got := a.Intersect(b)
	if got.X != 5 || got.Y != 5 || got.Width != 5 || got.Height != 5 {
		t.Errorf("intersect = %+v", got)
	}

	c := RectInt{X: 20, Y: 20, Width: 2, Height: 2}
	if !a.Intersect(c).IsEmpty() {
		t.Errorf("disjoint rects should give an empty intersection")
	}
}

func TestConvexHull(t *testing.T) {
	points := []Point2D{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4},
		{X: 2, Y: 2}, {X: 1, Y: 3},
	}
	hull := ConvexHull(points)
	if len(hull) != 4 {
		t.Fatalf("hull has %d vertices, want 4", len(hull))
	}
	if !IsConvex(hull) {
		t.Errorf("hull must be convex")
	}
	if math.Abs(PolygonArea(hull)-16) > 1e-9 {
		t.Errorf("hull area = %v, want 16", PolygonArea(hull))
	}
}
