package descriptor

import (
	"context"

	"roilab/internal/roi"
	"roilab/internal/sequence"
	"roilab/pkg/geometry"
)

// Descriptor IDs of the built-in set.
const (
	IDPositionX      = "position_x"
	IDPositionY      = "position_y"
	IDPositionZ      = "position_z"
	IDSizeX          = "size_x"
	IDSizeY          = "size_y"
	IDSizeZ          = "size_z"
	IDArea           = "area"
	IDPerimeter      = "perimeter"
	IDVolume         = "volume"
	IDSurfaceArea    = "surface_area"
	IDMassCenterX    = "mass_center_x"
	IDMassCenterY    = "mass_center_y"
	IDMassCenterZ    = "mass_center_z"
	IDContainedCount = "contained_count"
)

// Builtins returns a fresh instance of every built-in descriptor, geometric
// and intensity ones alike, in display order.
func Builtins() []Descriptor {
	out := []Descriptor{
		positionDescriptor(IDPositionX, "Position X", func(b geometry.Cuboid) float64 { return b.X }),
		positionDescriptor(IDPositionY, "Position Y", func(b geometry.Cuboid) float64 { return b.Y }),
		positionDescriptor(IDPositionZ, "Position Z", func(b geometry.Cuboid) float64 { return b.Z }),
		sizeDescriptor(IDSizeX, "Size X", func(b geometry.Cuboid, seq *sequence.Sequence) float64 {
			return b.SizeX * pixelSizeX(seq)
		}),
		sizeDescriptor(IDSizeY, "Size Y", func(b geometry.Cuboid, seq *sequence.Sequence) float64 {
			return b.SizeY * pixelSizeY(seq)
		}),
		sizeDescriptor(IDSizeZ, "Size Z", func(b geometry.Cuboid, seq *sequence.Sequence) float64 {
			return b.SizeZ * pixelSizeZ(seq)
		}),
		areaDescriptor(),
		perimeterDescriptor(),
		volumeDescriptor(),
		surfaceAreaDescriptor(),
		massCenterDescriptor(IDMassCenterX, "Mass center X", 0),
		massCenterDescriptor(IDMassCenterY, "Mass center Y", 1),
		massCenterDescriptor(IDMassCenterZ, "Mass center Z", 2),
		containedCountDescriptor(),
	}
	return append(out, intensityDescriptors()...)
}

func pixelSizeX(seq *sequence.Sequence) float64 {
	if seq == nil || !seq.Calibrated() {
		return 1
	}
	return seq.PixelSizeX
}

func pixelSizeY(seq *sequence.Sequence) float64 {
	if seq == nil || !seq.Calibrated() {
		return 1
	}
	return seq.PixelSizeY
}

func pixelSizeZ(seq *sequence.Sequence) float64 {
	if seq == nil || !seq.Calibrated() || seq.PixelSizeZ <= 0 {
		return 1
	}
	return seq.PixelSizeZ
}

func lengthUnit(seq *sequence.Sequence) string {
	if seq != nil && seq.Calibrated() {
		return "µm"
	}
	return "px"
}

func areaUnit(seq *sequence.Sequence) string {
	if seq != nil && seq.Calibrated() {
		return "µm²"
	}
	return "px²"
}

func volumeUnit(seq *sequence.Sequence) string {
	if seq != nil && seq.Calibrated() {
		return "µm³"
	}
	return "px³"
}

func pixelUnit(*sequence.Sequence) string { return "px" }

// positionDescriptor reports one coordinate of the bounding box origin, in
// pixel coordinates.
func positionDescriptor(id, name string, pick func(b geometry.Cuboid) float64) Descriptor {
	return &Func{
		id:          id,
		name:        name,
		description: name + " of the roi bounding box origin",
		unit:        pixelUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			return pick(r.Bounds3D()), nil
		},
	}
}

// sizeDescriptor reports one bounding box extent, calibrated when the
// sequence carries a pixel size.
func sizeDescriptor(id, name string, pick func(b geometry.Cuboid, seq *sequence.Sequence) float64) Descriptor {
	return &Func{
		id:          id,
		name:        name,
		description: name + " of the roi bounding box",
		unit:        lengthUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			return pick(r.Bounds3D(), seq), nil
		},
	}
}

func areaDescriptor() Descriptor {
	return &Func{
		id:          IDArea,
		name:        "Area",
		description: "Interior area of a 2D roi",
		unit:        areaUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			if r.Dimension() != 2 {
				return 0, ErrUnsupported
			}
			mask, err := r.Mask(ctx, 0)
			if err != nil {
				return 0, err
			}
			area := float64(mask.Count())
			if seq != nil {
				area *= seq.PixelArea()
			}
			return area, nil
		},
	}
}

func perimeterDescriptor() Descriptor {
	return &Func{
		id:          IDPerimeter,
		name:        "Perimeter",
		description: "Contour length of a 2D roi",
		unit:        lengthUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			if r.Dimension() != 2 {
				return 0, ErrUnsupported
			}
			mask, err := r.Mask(ctx, 0)
			if err != nil {
				return 0, err
			}
			p := float64(mask.ContourCount())
			if seq != nil && seq.Calibrated() {
				p *= (seq.PixelSizeX + seq.PixelSizeY) / 2
			}
			return p, nil
		},
	}
}

func volumeDescriptor() Descriptor {
	return &Func{
		id:          IDVolume,
		name:        "Volume",
		description: "Interior volume of a 3D roi",
		unit:        volumeUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			if r.Dimension() != 3 {
				return 0, ErrUnsupported
			}
			mask, err := roi.MaskOf(ctx, r)
			if err != nil {
				return 0, err
			}
			volume := float64(mask.Count())
			if seq != nil {
				volume *= seq.VoxelVolume()
			}
			return volume, nil
		},
	}
}

func surfaceAreaDescriptor() Descriptor {
	return &Func{
		id:          IDSurfaceArea,
		name:        "Surface area",
		description: "Boundary surface of a 3D roi",
		unit:        areaUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			if r.Dimension() != 3 {
				return 0, ErrUnsupported
			}
			mask, err := roi.MaskOf(ctx, r)
			if err != nil {
				return 0, err
			}
			surface := float64(mask.SurfaceCount())
			if seq != nil {
				surface *= seq.PixelArea()
			}
			return surface, nil
		},
	}
}

func massCenterDescriptor(id, name string, axis int) Descriptor {
	return &Func{
		id:          id,
		name:        name,
		description: name + " of the roi interior",
		unit:        pixelUnit,
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			c, err := massCenter(ctx, r)
			if err != nil {
				return 0, err
			}
			switch axis {
			case 0:
				return c.X, nil
			case 1:
				return c.Y, nil
			default:
				return c.Z, nil
			}
		},
	}
}

// massCenter returns the mask centroid, falling back to the bounding box
// center for shapes without interior pixels.
func massCenter(ctx context.Context, r roi.ROI) (geometry.Point3D, error) {
	mask, err := roi.MaskOf(ctx, r)
	if err != nil {
		return geometry.Point3D{}, err
	}
	if c, ok := mask.Centroid(); ok {
		return c, nil
	}
	b := r.Bounds3D()
	return geometry.Point3D{
		X: b.X + b.SizeX/2,
		Y: b.Y + b.SizeY/2,
		Z: b.Z + b.SizeZ/2,
	}, nil
}

func containedCountDescriptor() Descriptor {
	return &Func{
		id:          IDContainedCount,
		name:        "Contained count",
		description: "Number of other rois attached to the sequence whose mass center falls inside this roi",
		unit:        func(*sequence.Sequence) string { return "" },
		compute: func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
			if seq == nil {
				return 0, ErrNilSequence
			}
			count := 0
			for _, other := range seq.ROIs() {
				if other == r {
					continue
				}
				c, err := massCenter(ctx, other)
				if err != nil {
					return 0, err
				}
				if r.Contains(c.X, c.Y, c.Z) {
					count++
				}
			}
			return float64(count), nil
		},
	}
}
