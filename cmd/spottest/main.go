// Command spottest runs spot detection on a single image and prints the
// detected spots.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"roilab/internal/plugins/spotdetect"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func main() {
	imagePath := flag.String("image", "", "Path to image (TIFF, PNG, JPEG or BMP)")
	blur := flag.Int("blur", 5, "Gaussian kernel size")
	minArea := flag.Float64("min-area", 9, "Minimum spot area in px²")
	circularity := flag.Float64("circularity", 0.85, "Ellipse promotion threshold")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: spottest -image <path> [-blur 5] [-min-area 9] [-circularity 0.85]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	params := spotdetect.Params{
		BlurKernel:  *blur,
		MinArea:     *minArea,
		Circularity: *circularity,
	}
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Blur kernel: %d\n", params.BlurKernel)
	fmt.Printf("  Min area: %.1f px²\n", params.MinArea)
	fmt.Printf("  Circularity threshold: %.2f\n", params.Circularity)

	fmt.Printf("\nDetecting spots...\n")
	spots, err := spotdetect.Detect(img, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDetected %d spots:\n", len(spots))
	fmt.Printf("%-6s %10s %10s %10s %10s %8s %8s\n",
		"ID", "X", "Y", "W", "H", "Area", "Circ")
	for i, s := range spots {
		fmt.Printf("%-6d %10.1f %10.1f %10.1f %10.1f %8.1f %8.2f\n",
			i+1, s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height,
			s.Area, s.Circularity)
	}

	ellipses := 0
	for _, s := range spots {
		if s.Circularity >= params.Circularity {
			ellipses++
		}
	}
	fmt.Printf("\nTotal: %d spots (%d ellipse candidates, %d polygons)\n",
		len(spots), ellipses, len(spots)-ellipses)
}
