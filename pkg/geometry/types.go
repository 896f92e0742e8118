// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Point3D represents a 3D point with floating-point coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPoint3D creates a new Point3D.
func NewPoint3D(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

// Distance returns the Euclidean distance to another point.
func (p Point3D) Distance(other Point3D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Add returns the sum of two points.
func (p Point3D) Add(other Point3D) Point3D {
	return Point3D{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// Sub returns the difference of two points.
func (p Point3D) Sub(other Point3D) Point3D {
	return Point3D{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Scale returns the point scaled by a factor.
func (p Point3D) Scale(factor float64) Point3D {
	return Point3D{X: p.X * factor, Y: p.Y * factor, Z: p.Z * factor}
}

// XY returns the 2D projection of the point.
func (p Point3D) XY() Point2D {
	return Point2D{X: p.X, Y: p.Y}
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects returns true if this rectangle intersects with another.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// ToInt converts to RectInt, expanding to the enclosing integer rectangle.
func (r Rect) ToInt() RectInt {
	x := int(math.Floor(r.X))
	y := int(math.Floor(r.Y))
	x2 := int(math.Ceil(r.X + r.Width))
	y2 := int(math.Ceil(r.Y + r.Height))
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToFloat converts to Rect.
func (r RectInt) ToFloat() Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// IsEmpty returns true if the rectangle has no area.
func (r RectInt) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the pixel coordinate is inside the rectangle.
func (r RectInt) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Union returns the smallest rectangle containing both rectangles.
func (r RectInt) Union(other RectInt) RectInt {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	x2 := max(r.X+r.Width, other.X+other.Width)
	y2 := max(r.Y+r.Height, other.Y+other.Height)
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Intersect returns the overlapping region of both rectangles.
// The result is empty if they do not overlap.
func (r RectInt) Intersect(other RectInt) RectInt {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	x2 := min(r.X+r.Width, other.X+other.Width)
	y2 := min(r.Y+r.Height, other.Y+other.Height)
	if x2 <= x || y2 <= y {
		return RectInt{}
	}
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Cuboid represents an axis-aligned 3D box with floating-point coordinates.
type Cuboid struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	SizeX  float64 `json:"size_x"`
	SizeY  float64 `json:"size_y"`
	SizeZ  float64 `json:"size_z"`
}

// NewCuboid creates a new Cuboid.
func NewCuboid(x, y, z, sx, sy, sz float64) Cuboid {
	return Cuboid{X: x, Y: y, Z: z, SizeX: sx, SizeY: sy, SizeZ: sz}
}

// Contains returns true if the point is inside the cuboid.
func (c Cuboid) Contains(p Point3D) bool {
	return p.X >= c.X && p.X <= c.X+c.SizeX &&
		p.Y >= c.Y && p.Y <= c.Y+c.SizeY &&
		p.Z >= c.Z && p.Z <= c.Z+c.SizeZ
}

// Intersects returns true if this cuboid intersects with another.
func (c Cuboid) Intersects(other Cuboid) bool {
	return c.X < other.X+other.SizeX && c.X+c.SizeX > other.X &&
		c.Y < other.Y+other.SizeY && c.Y+c.SizeY > other.Y &&
		c.Z < other.Z+other.SizeZ && c.Z+c.SizeZ > other.Z
}

// Union returns the smallest cuboid containing both cuboids.
func (c Cuboid) Union(other Cuboid) Cuboid {
	x := math.Min(c.X, other.X)
	y := math.Min(c.Y, other.Y)
	z := math.Min(c.Z, other.Z)
	x2 := math.Max(c.X+c.SizeX, other.X+other.SizeX)
	y2 := math.Max(c.Y+c.SizeY, other.Y+other.SizeY)
	z2 := math.Max(c.Z+c.SizeZ, other.Z+other.SizeZ)
	return Cuboid{X: x, Y: y, Z: z, SizeX: x2 - x, SizeY: y2 - y, SizeZ: z2 - z}
}

// XY returns the 2D projection of the cuboid.
func (c Cuboid) XY() Rect {
	return Rect{X: c.X, Y: c.Y, Width: c.SizeX, Height: c.SizeY}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// GenerateCirclePoints generates n evenly-spaced points around a circle.
func GenerateCirclePoints(centerX, centerY, radius float64, n int) []Point2D {
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		points[i] = Point2D{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return points
}

// Centroid computes the centroid (average position) of a set of points.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sumX / n, Y: sumY / n}
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SegmentDistance returns the distance from point p to the segment a-b.
func SegmentDistance(p, a, b Point2D) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := Point2D{X: a.X + t*abx, Y: a.Y + t*aby}
	return p.Distance(closest)
}

// EllipseContains tests if a point lies inside the axis-aligned ellipse
// inscribed in the given rectangle.
func EllipseContains(p Point2D, bounds Rect) bool {
	rx := bounds.Width / 2
	ry := bounds.Height / 2
	if rx <= 0 || ry <= 0 {
		return false
	}
	cx := bounds.X + rx
	cy := bounds.Y + ry
	dx := (p.X - cx) / rx
	dy := (p.Y - cy) / ry
	return dx*dx+dy*dy <= 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
