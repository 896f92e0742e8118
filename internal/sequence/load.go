package sequence

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// imageExtensions lists the file extensions the decoders above understand.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

// IsImagePath reports whether the path has a loadable image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load decodes a single image file into a 1-slice, 1-frame sequence named
// after the file.
func Load(path string) (*Sequence, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	s := New(baseName(path), b.Dx(), b.Dy())
	if err := s.AddSlice(0, img); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadStack decodes a set of image files into a single-frame Z stack. Files
// are ordered by the trailing number in their name (slice001, slice002, ...),
// falling back to lexicographic order. All slices must share one size.
func LoadStack(paths []string) (*Sequence, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no slice files given")
	}
	sorted := append([]string(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool {
		ni, iok := trailingNumber(sorted[i])
		nj, jok := trailingNumber(sorted[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return sorted[i] < sorted[j]
	})

	var s *Sequence
	for _, path := range sorted {
		img, err := decodeFile(path)
		if err != nil {
			return nil, err
		}
		if s == nil {
			b := img.Bounds()
			s = New(baseName(sorted[0]), b.Dx(), b.Dy())
		}
		if err := s.AddSlice(0, img); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return s, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// trailingNumber extracts the numeric suffix of a file name, ignoring the
// extension. Returns false when the name does not end in digits.
func trailingNumber(path string) (int, bool) {
	name := baseName(path)
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n := 0
	for _, c := range name[start:end] {
		n = n*10 + int(c-'0')
	}
	return n, true
}
