package descriptor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"roilab/internal/roi"
	"roilab/internal/sequence"
	"roilab/pkg/geometry"
)

// testSequence builds a 32x32 single-slice sequence with a constant
// background and a brighter 8x8 square at (8, 8).
func testSequence(t *testing.T) *sequence.Sequence {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(10)
			if x >= 8 && x < 16 && y >= 8 && y < 16 {
				v = 200
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	s := sequence.New("test", 32, 32)
	if err := s.AddSlice(0, img); err != nil {
		t.Fatalf("AddSlice failed: %v", err)
	}
	return s
}

func get(t *testing.T, reg *Registry, id string) Descriptor {
	t.Helper()
	d := reg.Get(id)
	if d == nil {
		t.Fatalf("descriptor %s not registered", id)
	}
	return d
}

func TestVolumeDimensionality(t *testing.T) {
	reg := DefaultRegistry()
	volume := get(t, reg, IDVolume)
	ctx := context.Background()
	seq := testSequence(t)

	flat := roi.NewRectangle2D(geometry.NewRect(0, 0, 10, 10))
	if _, err := volume.Compute(ctx, flat, seq); !errors.Is(err, ErrUnsupported) {
		t.Errorf("volume of 2D roi: expected ErrUnsupported, got %v", err)
	}

	box := roi.NewBox3D(geometry.NewRect(0, 0, 4, 4), 0, 3)
	v, err := volume.Compute(ctx, box, seq)
	if err != nil {
		t.Fatalf("volume of 3D roi failed: %v", err)
	}
	if v < 0 {
		t.Errorf("expected non-negative volume, got %v", v)
	}
	if v != 48 {
		t.Errorf("expected 48 voxels for 4x4x3 box, got %v", v)
	}
}

func TestAreaOn3DUnsupported(t *testing.T) {
	reg := DefaultRegistry()
	area := get(t, reg, IDArea)
	box := roi.NewBox3D(geometry.NewRect(0, 0, 4, 4), 0, 3)
	if _, err := area.Compute(context.Background(), box, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("area of 3D roi: expected ErrUnsupported, got %v", err)
	}
}

func TestAreaCalibration(t *testing.T) {
	reg := DefaultRegistry()
	area := get(t, reg, IDArea)
	ctx := context.Background()
	r := roi.NewRectangle2D(geometry.NewRect(0, 0, 10, 10))

	// Uncalibrated: pixel units.
	v, err := area.Compute(ctx, r, nil)
	if err != nil {
		t.Fatalf("area failed: %v", err)
	}
	if v != 100 {
		t.Errorf("expected 100 px², got %v", v)
	}
	if unit := area.Unit(nil); unit != "px²" {
		t.Errorf("expected unit px², got %s", unit)
	}

	seq := testSequence(t)
	seq.PixelSizeX = 0.5
	seq.PixelSizeY = 0.5
	v, err = area.Compute(ctx, r, seq)
	if err != nil {
		t.Fatalf("area failed: %v", err)
	}
	if v != 25 {
		t.Errorf("expected 25 µm², got %v", v)
	}
	if unit := area.Unit(seq); unit != "µm²" {
		t.Errorf("expected unit µm², got %s", unit)
	}
}

func TestMeanIntensity(t *testing.T) {
	reg := DefaultRegistry()
	mean := get(t, reg, IDMeanIntensity)
	ctx := context.Background()
	seq := testSequence(t)

	bright := roi.NewRectangle2D(geometry.NewRect(8, 8, 8, 8))
	v, err := mean.Compute(ctx, bright, seq)
	if err != nil {
		t.Fatalf("mean intensity failed: %v", err)
	}
	if v != 200 {
		t.Errorf("expected mean 200 over bright square, got %v", v)
	}

	dark := roi.NewRectangle2D(geometry.NewRect(20, 20, 4, 4))
	v, err = mean.Compute(ctx, dark, seq)
	if err != nil {
		t.Fatalf("mean intensity failed: %v", err)
	}
	if v != 10 {
		t.Errorf("expected mean 10 over background, got %v", v)
	}
}

func TestIntensityRequiresSequence(t *testing.T) {
	reg := DefaultRegistry()
	r := roi.NewRectangle2D(geometry.NewRect(0, 0, 4, 4))
	for _, id := range []string{IDMeanIntensity, IDMinIntensity, IDMaxIntensity, IDStdDevIntensity} {
		d := get(t, reg, id)
		if _, err := d.Compute(context.Background(), r, nil); !errors.Is(err, ErrNilSequence) {
			t.Errorf("%s with nil sequence: expected ErrNilSequence, got %v", id, err)
		}
	}
}

func TestStdDevIntensity(t *testing.T) {
	reg := DefaultRegistry()
	stddev := get(t, reg, IDStdDevIntensity)
	seq := testSequence(t)

	// Uniform region: zero deviation.
	r := roi.NewRectangle2D(geometry.NewRect(8, 8, 8, 8))
	v, err := stddev.Compute(context.Background(), r, seq)
	if err != nil {
		t.Fatalf("stddev failed: %v", err)
	}
	if math.Abs(v) > 1e-9 {
		t.Errorf("expected zero deviation over uniform region, got %v", v)
	}
}

func TestContainedCount(t *testing.T) {
	reg := DefaultRegistry()
	contained := get(t, reg, IDContainedCount)
	ctx := context.Background()
	seq := testSequence(t)

	outer := roi.NewRectangle2D(geometry.NewRect(0, 0, 20, 20))
	inside := roi.NewRectangle2D(geometry.NewRect(4, 4, 4, 4))
	outside := roi.NewRectangle2D(geometry.NewRect(24, 24, 6, 6))
	seq.AddROI(outer)
	seq.AddROI(inside)
	seq.AddROI(outside)

	v, err := contained.Compute(ctx, outer, seq)
	if err != nil {
		t.Fatalf("contained count failed: %v", err)
	}
	if v != 1 {
		t.Errorf("expected 1 contained roi, got %v", v)
	}

	if _, err := contained.Compute(ctx, outer, nil); !errors.Is(err, ErrNilSequence) {
		t.Errorf("expected ErrNilSequence, got %v", err)
	}
}

func TestComputeAllSkipsUnsupported(t *testing.T) {
	reg := DefaultRegistry()
	seq := testSequence(t)
	r := roi.NewRectangle2D(geometry.NewRect(0, 0, 8, 8))

	results, err := reg.ComputeAll(context.Background(), r, seq)
	if err != nil {
		t.Fatalf("ComputeAll failed: %v", err)
	}
	for _, res := range results {
		if res.Descriptor.ID() == IDVolume || res.Descriptor.ID() == IDSurfaceArea {
			t.Errorf("unsupported descriptor %s not skipped", res.Descriptor.ID())
		}
	}
	// Area must be present for a 2D roi.
	found := false
	for _, res := range results {
		if res.Descriptor.ID() == IDArea {
			found = true
		}
	}
	if !found {
		t.Error("expected area in batch results for 2D roi")
	}
}

func TestComputeAllHonorsCancellation(t *testing.T) {
	reg := DefaultRegistry()
	r := roi.NewRectangle2D(geometry.NewRect(0, 0, 8, 8))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := reg.ComputeAll(ctx, r, testSequence(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCacheInvalidationFollowsPredicate(t *testing.T) {
	reg := DefaultRegistry()
	cache := NewCache(reg)
	ctx := context.Background()
	seq := testSequence(t)
	area := get(t, reg, IDArea)

	r := roi.NewRectangle2D(geometry.NewRect(0, 0, 10, 10))
	cache.Attach(r)

	if _, err := cache.Compute(ctx, area, r, seq); err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !cache.Cached(area, r) {
		t.Fatal("expected value cached after compute")
	}

	// Metadata change: geometric values stay valid.
	r.SetName("renamed")
	if !cache.Cached(area, r) {
		t.Error("name change invalidated geometric descriptor value")
	}

	// Content change: value dropped.
	r.Anchors()[0].MoveTo(2, 2, 0)
	if cache.Cached(area, r) {
		t.Error("content change did not invalidate geometric descriptor value")
	}
}

func TestCacheDisabledStoresNothing(t *testing.T) {
	reg := DefaultRegistry()
	cache := NewCache(reg)
	cache.SetEnabled(false)
	area := get(t, reg, IDArea)
	r := roi.NewRectangle2D(geometry.NewRect(0, 0, 4, 4))

	v, err := cache.Compute(context.Background(), area, r, nil)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if v != 16 {
		t.Errorf("expected area 16, got %v", v)
	}
	if cache.Cached(area, r) {
		t.Error("disabled cache stored a value")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := DefaultRegistry()
	if err := reg.Register(get(t, reg, IDArea)); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
