// Command measure reports the black-pixel area and zone histogram of a
// 256x256 layout image.
package main

import (
	"flag"
	"fmt"
	"os"

	"floorplan/internal/measure"
	"floorplan/internal/raster"
)

func main() {
	imagePath := flag.String("image", "", "Path to a 256x256 layout image")
	ppm := flag.Float64("ppm", measure.DefaultPixelsPerMeter, "Pixels per meter")
	black := flag.Int("black", measure.DefaultBlackThreshold, "Exclusive black channel threshold")
	zone := flag.Int("zone", measure.DefaultZoneThreshold, "Zone color tolerance: maximum summed R+G+B difference")
	x := flag.Int("x", -1, "Probe pixel X")
	y := flag.Int("y", -1, "Probe pixel Y")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: measure -image <path> [-ppm 8] [-black 1] [-zone 30] [-x N -y N]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	img, err := raster.DecodeSized(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}

	meter := measure.NewAreaMeter(*black, *ppm)
	classifier := measure.NewClassifier(*zone)

	area := meter.Measure(img)
	fmt.Printf("Black area: %d px = %.2f m^2\n\n", area.Pixels, area.SquareMeters)

	fmt.Printf("%-16s %-16s %-8s %8s %10s\n", "Zone", "Name", "Color", "Pixels", "m^2")
	for _, z := range meter.Histogram(classifier, img) {
		if z.Pixels == 0 {
			continue
		}
		fmt.Printf("%-16s %-16s %-8s %8d %10.2f\n", z.ID, z.Name, z.Hex, z.Pixels, z.SquareMeters)
	}

	if *x >= 0 && *y >= 0 {
		if !img.InBounds(*x, *y) {
			fmt.Fprintf(os.Stderr, "Probe %d,%d is outside the image\n", *x, *y)
			os.Exit(1)
		}
		if z, ok := classifier.Sample(img, *x, *y); ok {
			fmt.Printf("\nPixel (%d,%d): %s (%s)\n", *x, *y, z.ID, z.Name)
		} else {
			fmt.Printf("\nPixel (%d,%d): %s\n", *x, *y, measure.UnknownZone)
		}
	}
}
