package sequence

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"roilab/internal/roi"
)

// writeTestImage writes a small grayscale PNG with a constant intensity.
func writeTestImage(t *testing.T, path string, w, h int, value uint8) {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func TestLoadSingleImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cells.png")
	writeTestImage(t, path, 16, 12, 100)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Width() != 16 || s.Height() != 12 {
		t.Errorf("expected 16x12, got %dx%d", s.Width(), s.Height())
	}
	if s.SizeZ() != 1 || s.SizeT() != 1 {
		t.Errorf("expected 1x1 stack, got z=%d t=%d", s.SizeZ(), s.SizeT())
	}
	if s.Name() != "cells" {
		t.Errorf("expected name cells, got %s", s.Name())
	}
	if v := s.PixelValue(5, 5, 0, 0); v != 100 {
		t.Errorf("expected intensity 100, got %v", v)
	}
}

func TestLoadStackNumericOrdering(t *testing.T) {
	dir := t.TempDir()
	// Written out of order with non-padded numbers: lexicographic order
	// would put slice10 before slice2.
	paths := []string{
		filepath.Join(dir, "slice10.png"),
		filepath.Join(dir, "slice2.png"),
		filepath.Join(dir, "slice1.png"),
	}
	writeTestImage(t, paths[0], 8, 8, 30)
	writeTestImage(t, paths[1], 8, 8, 20)
	writeTestImage(t, paths[2], 8, 8, 10)

	s, err := LoadStack(paths)
	if err != nil {
		t.Fatalf("LoadStack failed: %v", err)
	}
	if s.SizeZ() != 3 {
		t.Fatalf("expected 3 slices, got %d", s.SizeZ())
	}
	wantOrder := []float64{10, 20, 30}
	for z, want := range wantOrder {
		if v := s.PixelValue(0, 0, z, 0); v != want {
			t.Errorf("slice %d: expected intensity %v, got %v", z, want, v)
		}
	}
}

func TestLoadStackRejectsMismatchedSizes(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a1.png")
	p2 := filepath.Join(dir, "a2.png")
	writeTestImage(t, p1, 8, 8, 0)
	writeTestImage(t, p2, 4, 4, 0)

	if _, err := LoadStack([]string{p1, p2}); err == nil {
		t.Fatal("expected error for mismatched slice sizes")
	}
}

func TestCalibration(t *testing.T) {
	s := New("test", 10, 10)
	if s.Calibrated() {
		t.Error("expected new sequence to be uncalibrated")
	}
	if s.PixelArea() != 1 || s.VoxelVolume() != 1 {
		t.Error("uncalibrated sequence must report unit pixel sizes")
	}

	s.PixelSizeX = 0.5
	s.PixelSizeY = 0.5
	s.PixelSizeZ = 2
	if !s.Calibrated() {
		t.Error("expected calibrated sequence")
	}
	if s.PixelArea() != 0.25 {
		t.Errorf("expected pixel area 0.25, got %v", s.PixelArea())
	}
	if s.VoxelVolume() != 0.5 {
		t.Errorf("expected voxel volume 0.5, got %v", s.VoxelVolume())
	}
}

func TestROIAttachEvents(t *testing.T) {
	s := New("test", 10, 10)
	var attached, detached int
	s.OnROIChange(func(r roi.ROI, isAttached bool) {
		if isAttached {
			attached++
		} else {
			detached++
		}
	})

	r := roi.NewPoint2D(1, 1)
	s.AddROI(r)
	if attached != 1 {
		t.Errorf("expected 1 attach event, got %d", attached)
	}
	if len(s.ROIs()) != 1 {
		t.Errorf("expected 1 attached roi, got %d", len(s.ROIs()))
	}

	s.RemoveROI(r)
	if detached != 1 {
		t.Errorf("expected 1 detach event, got %d", detached)
	}
	// Removing again is a no-op.
	s.RemoveROI(r)
	if detached != 1 {
		t.Errorf("expected no further detach events, got %d", detached)
	}
}

func TestIsImagePath(t *testing.T) {
	if !IsImagePath("stack.TIFF") || !IsImagePath("a.png") {
		t.Error("expected known extensions to be accepted")
	}
	if IsImagePath("notes.txt") || IsImagePath("archive") {
		t.Error("expected unknown extensions to be rejected")
	}
}
