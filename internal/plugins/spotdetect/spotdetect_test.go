package spotdetect

import (
	"math"
	"testing"

	"roilab/internal/roi"
	"roilab/pkg/geometry"
)

func TestCircularity(t *testing.T) {
	// A disc of radius r has area πr² and perimeter 2πr.
	r := 10.0
	got := Circularity(math.Pi*r*r, 2*math.Pi*r)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("disc circularity = %v, want 1", got)
	}

	// A square of side s has area s² and perimeter 4s: 4π/16 ≈ 0.785.
	s := 8.0
	got = Circularity(s*s, 4*s)
	if math.Abs(got-math.Pi/4) > 1e-9 {
		t.Errorf("square circularity = %v, want %v", got, math.Pi/4)
	}

	if Circularity(10, 0) != 0 {
		t.Errorf("zero perimeter should give zero circularity")
	}
}

func TestPromote(t *testing.T) {
	square := []geometry.Point2D{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 8}, {X: 0, Y: 8}}
	spots := []Spot{
		{Contour: square, Bounds: geometry.BoundingBox(square), Circularity: 0.95},
		{Contour: square, Bounds: geometry.BoundingBox(square), Circularity: math.Pi / 4},
	}

	rois := Promote(spots, 0.85)
	if len(rois) != 2 {
		t.Fatalf("promoted %d rois, want 2", len(rois))
	}
	if rois[0].TypeName() != roi.TypeEllipse2D {
		t.Errorf("circular spot promoted to %s, want ellipse", rois[0].TypeName())
	}
	if rois[1].TypeName() != roi.TypePolygon2D {
		t.Errorf("angular spot promoted to %s, want polygon", rois[1].TypeName())
	}
	if rois[0].Name() != "spot 1" || rois[1].Name() != "spot 2" {
		t.Errorf("spot names = %q, %q", rois[0].Name(), rois[1].Name())
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.BlurKernel%2 == 0 {
		t.Errorf("default blur kernel must be odd, got %d", p.BlurKernel)
	}
	if p.Circularity <= 0 || p.Circularity > 1 {
		t.Errorf("default circularity threshold out of range: %v", p.Circularity)
	}
}
