// Package sequence provides the image stack model: Z slices by T frames with
// physical pixel calibration and attached ROIs.
package sequence

import (
	"fmt"
	"image"
	"sync"

	"roilab/internal/roi"
)

// Sequence is a named image stack with physical calibration and an attached
// ROI list. Slice access is indexed [t][z].
type Sequence struct {
	mu     sync.Mutex
	name   string
	width  int
	height int
	frames [][]image.Image

	// Physical pixel size in micrometers. Zero means uncalibrated.
	PixelSizeX float64
	PixelSizeY float64
	PixelSizeZ float64

	rois      []roi.ROI
	listeners []ROIListener
}

// ROIListener is notified when a ROI is attached to or detached from the
// sequence.
type ROIListener func(r roi.ROI, attached bool)

// New creates an empty sequence with the given slice dimensions.
func New(name string, width, height int) *Sequence {
	return &Sequence{name: name, width: width, height: height}
}

// Name returns the sequence name.
func (s *Sequence) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName changes the sequence name.
func (s *Sequence) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// Width returns the slice width in pixels.
func (s *Sequence) Width() int { return s.width }

// Height returns the slice height in pixels.
func (s *Sequence) Height() int { return s.height }

// SizeT returns the number of time frames.
func (s *Sequence) SizeT() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// SizeZ returns the number of Z slices in the first frame.
func (s *Sequence) SizeZ() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return 0
	}
	return len(s.frames[0])
}

// AddSlice appends a Z slice to the given frame, growing the frame list as
// needed. The slice must match the sequence dimensions.
func (s *Sequence) AddSlice(t int, img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("slice size %dx%d does not match sequence %dx%d",
			b.Dx(), b.Dy(), s.width, s.height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.frames) <= t {
		s.frames = append(s.frames, nil)
	}
	s.frames[t] = append(s.frames[t], img)
	return nil
}

// Image returns the slice at (t, z), or nil when out of range.
func (s *Sequence) Image(t, z int) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t < 0 || t >= len(s.frames) || z < 0 || z >= len(s.frames[t]) {
		return nil
	}
	return s.frames[t][z]
}

// Gray returns the slice at (t, z) converted to 8-bit grayscale, or nil when
// out of range.
func (s *Sequence) Gray(t, z int) *image.Gray {
	img := s.Image(t, z)
	if img == nil {
		return nil
	}
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// PixelValue returns the grayscale intensity at the given coordinates, or 0
// when out of range.
func (s *Sequence) PixelValue(x, y, z, t int) float64 {
	img := s.Image(t, z)
	if img == nil {
		return 0
	}
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return 0
	}
	if g, ok := img.(*image.Gray); ok {
		return float64(g.GrayAt(x, y).Y)
	}
	r, g, bl, _ := img.At(x, y).RGBA()
	// 16-bit channel values down to 8-bit luminance.
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257.0
}

// Calibrated reports whether the sequence carries a physical pixel size.
func (s *Sequence) Calibrated() bool {
	return s.PixelSizeX > 0 && s.PixelSizeY > 0
}

// PixelArea returns the physical area of one pixel in µm², or 1 when
// uncalibrated.
func (s *Sequence) PixelArea() float64 {
	if !s.Calibrated() {
		return 1
	}
	return s.PixelSizeX * s.PixelSizeY
}

// VoxelVolume returns the physical volume of one voxel in µm³, or 1 when
// uncalibrated.
func (s *Sequence) VoxelVolume() float64 {
	if !s.Calibrated() || s.PixelSizeZ <= 0 {
		return 1
	}
	return s.PixelSizeX * s.PixelSizeY * s.PixelSizeZ
}

// AddROI attaches a ROI to the sequence.
func (s *Sequence) AddROI(r roi.ROI) {
	s.mu.Lock()
	s.rois = append(s.rois, r)
	listeners := append([]ROIListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(r, true)
	}
}

// RemoveROI detaches a ROI from the sequence. Removing a ROI that is not
// attached is a no-op.
func (s *Sequence) RemoveROI(r roi.ROI) {
	s.mu.Lock()
	found := false
	for i, existing := range s.rois {
		if existing == r {
			s.rois = append(s.rois[:i], s.rois[i+1:]...)
			found = true
			break
		}
	}
	var listeners []ROIListener
	if found {
		listeners = append(listeners, s.listeners...)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(r, false)
	}
}

// ROIs returns a snapshot of the attached ROI list.
func (s *Sequence) ROIs() []roi.ROI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]roi.ROI(nil), s.rois...)
}

// OnROIChange registers a listener for ROI attach/detach events.
func (s *Sequence) OnROIChange(l ROIListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}
