// Package spotdetect finds bright blobs in the open sequence and attaches
// them as ROIs: near-circular blobs become ellipses, the rest polygons.
package spotdetect

import (
	"context"
	"flag"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"roilab/internal/plugin"
	"roilab/internal/roi"
	"roilab/pkg/geometry"
)

// ClassName is the plugin identity.
const ClassName = "roilab.plugins.spotdetect"

// Params controls the detection pipeline.
type Params struct {
	BlurKernel  int     // Gaussian kernel size, odd
	MinArea     float64 // contours below this area in px² are dropped
	Circularity float64 // threshold above which a spot is promoted to an ellipse
}

// DefaultParams returns the pipeline defaults.
func DefaultParams() Params {
	return Params{
		BlurKernel:  5,
		MinArea:     9,
		Circularity: 0.85,
	}
}

// Spot is a detected blob.
type Spot struct {
	Contour     []geometry.Point2D
	Bounds      geometry.Rect
	Area        float64
	Perimeter   float64
	Circularity float64
}

// Circularity is 4πA/P², 1.0 for a perfect disc.
func Circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// Detect runs the pipeline on img: grayscale, Gaussian blur, Otsu
// threshold, contour extraction, polygon simplification.
func Detect(img image.Image, params Params) ([]Spot, error) {
	if params.BlurKernel < 3 {
		params.BlurKernel = 3
	}
	if params.BlurKernel%2 == 0 {
		params.BlurKernel++
	}

	gray, err := imageToGrayMat(img)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred,
		image.Point{params.BlurKernel, params.BlurKernel}, 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var spots []Spot
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < params.MinArea {
			continue
		}
		perimeter := gocv.ArcLength(contour, true)

		epsilon := 0.01 * perimeter
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		points := make([]geometry.Point2D, 0, approx.Size())
		for j := 0; j < approx.Size(); j++ {
			p := approx.At(j)
			points = append(points, geometry.Point2D{X: float64(p.X), Y: float64(p.Y)})
		}
		approx.Close()
		if len(points) < 3 {
			continue
		}

		spots = append(spots, Spot{
			Contour:     points,
			Bounds:      geometry.BoundingBox(points),
			Area:        area,
			Perimeter:   perimeter,
			Circularity: Circularity(area, perimeter),
		})
	}
	return spots, nil
}

// Promote converts detected spots to ROIs: circular ones to ellipses over
// their bounding box, the rest to polygons.
func Promote(spots []Spot, circularityThreshold float64) []roi.ROI {
	out := make([]roi.ROI, 0, len(spots))
	for i, spot := range spots {
		var r roi.ROI
		if spot.Circularity >= circularityThreshold {
			r = roi.NewEllipse2D(spot.Bounds)
		} else {
			r = roi.NewPolygon2D(spot.Contour)
		}
		r.SetName(fmt.Sprintf("spot %d", i+1))
		out = append(out, r)
	}
	return out
}

// imageToGrayMat converts a Go image into a single-channel Mat.
func imageToGrayMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				mat.SetUCharAt(y, x, g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return mat, nil
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			mat.SetUCharAt(y, x, uint8(lum))
		}
	}
	return mat, nil
}

// Plugin wires the detector into the plugin registry.
type Plugin struct {
	desc *plugin.Descriptor
}

// New creates the plugin with its descriptor metadata.
func New() *Plugin {
	d := plugin.NewDescriptor(ClassName, plugin.Version{Major: 1, Minor: 2})
	d.Author = "roilab"
	d.Description = "Detects bright spots and attaches them as ellipse or polygon ROIs"
	return &Plugin{desc: d}
}

// Register adds the plugin to reg.
func Register(reg *plugin.Registry) error {
	return reg.Register(New())
}

// Descriptor returns the plugin metadata.
func (p *Plugin) Descriptor() *plugin.Descriptor { return p.desc }

// Run detects spots on the first frame of the open sequence and attaches
// the resulting ROIs.
func (p *Plugin) Run(ctx context.Context, env *plugin.Env, args []string) error {
	params := DefaultParams()
	fs := flag.NewFlagSet("spotdetect", flag.ContinueOnError)
	fs.IntVar(&params.BlurKernel, "blur", params.BlurKernel, "gaussian kernel size")
	fs.Float64Var(&params.MinArea, "min-area", params.MinArea, "minimum spot area in px²")
	fs.Float64Var(&params.Circularity, "circularity", params.Circularity, "ellipse promotion threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if env.Sequence == nil {
		return fmt.Errorf("no sequence open")
	}
	img := env.Sequence.Image(0, 0)
	if img == nil {
		return fmt.Errorf("sequence has no image data")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	spots, err := Detect(img, params)
	if err != nil {
		return err
	}
	rois := Promote(spots, params.Circularity)
	ellipses := 0
	for _, r := range rois {
		if r.TypeName() == roi.TypeEllipse2D {
			ellipses++
		}
		env.Sequence.AddROI(r)
	}
	logger := env.Logger()
	logger.Info().
		Int("spots", len(rois)).
		Int("ellipses", ellipses).
		Int("polygons", len(rois)-ellipses).
		Msg("spot detection complete")
	return nil
}
