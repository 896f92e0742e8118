package descriptor

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"roilab/internal/roi"
	"roilab/internal/sequence"
)

// Descriptor IDs of the intensity set.
const (
	IDMeanIntensity   = "mean_intensity"
	IDMinIntensity    = "min_intensity"
	IDMaxIntensity    = "max_intensity"
	IDStdDevIntensity = "stddev_intensity"
)

// intensityDescriptors returns the descriptors sampling sequence pixels
// under the ROI mask.
func intensityDescriptors() []Descriptor {
	return []Descriptor{
		intensityDescriptor(IDMeanIntensity, "Mean intensity", stat.Mean),
		intensityDescriptor(IDMinIntensity, "Minimum intensity", func(vs []float64, _ []float64) float64 {
			min := vs[0]
			for _, v := range vs[1:] {
				if v < min {
					min = v
				}
			}
			return min
		}),
		intensityDescriptor(IDMaxIntensity, "Maximum intensity", func(vs []float64, _ []float64) float64 {
			max := vs[0]
			for _, v := range vs[1:] {
				if v > max {
					max = v
				}
			}
			return max
		}),
		intensityDescriptor(IDStdDevIntensity, "Intensity standard deviation", stat.StdDev),
	}
}

func intensityDescriptor(id, name string, reduce func(vs, weights []float64) float64) Descriptor {
	return &Func{
		id:          id,
		name:        name,
		description: name + " of sequence pixels under the roi",
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			values, err := maskedValues(ctx, r, seq)
			if err != nil {
				return 0, err
			}
			if len(values) == 0 {
				return 0, nil
			}
			v := reduce(values, nil)
			if math.IsNaN(v) {
				// StdDev of a single sample.
				return 0, nil
			}
			return v, nil
		},
	}
}

// maskedValues collects the grayscale intensities of every voxel covered by
// the ROI mask. The first time frame is sampled.
func maskedValues(ctx context.Context, r roi.ROI, seq *sequence.Sequence) ([]float64, error) {
	if seq == nil {
		return nil, ErrNilSequence
	}
	mask, err := roi.MaskOf(ctx, r)
	if err != nil {
		return nil, err
	}
	var values []float64
	for z, slice := range mask.Slices {
		if z < 0 || z >= seq.SizeZ() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := slice.Bounds
		for y := b.Y; y < b.Y+b.Height; y++ {
			for x := b.X; x < b.X+b.Width; x++ {
				if !slice.Get(x, y) {
					continue
				}
				if x < 0 || y < 0 || x >= seq.Width() || y >= seq.Height() {
					continue
				}
				values = append(values, seq.PixelValue(x, y, z, 0))
			}
		}
	}
	return values, nil
}
