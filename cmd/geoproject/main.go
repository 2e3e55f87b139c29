// Command geoproject projects a geographic ring onto the 256x256 canvas.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"floorplan/internal/geoproj"
)

func main() {
	inPath := flag.String("in", "", "Ring file: [[lon,lat],...] or GeoJSON (default stdin)")
	asJSON := flag.Bool("json", false, "Print every projection stage as JSON")
	flag.Parse()

	var data []byte
	var err error
	if *inPath == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*inPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read ring: %v\n", err)
		os.Exit(1)
	}

	ring, err := geoproj.ParseRing(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid ring: %v\n", err)
		os.Exit(1)
	}
	res, err := geoproj.Project(ring)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Projection failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Ring: %d points\n", len(ring))
	fmt.Printf("Centroid: (%.2f, %.2f)\n", res.Centroid.X, res.Centroid.Y)
	fmt.Printf("Origin:   (%.0f, %.0f)\n\n", res.Origin.X, res.Origin.Y)
	fmt.Printf("%4s %10s %10s %10s %10s\n", "#", "NormX", "NormY", "CanvasX", "CanvasY")
	for i, p := range res.Rotated {
		n := res.Normalized[i]
		fmt.Printf("%4d %10.2f %10.2f %10.2f %10.2f\n", i, n.X, n.Y, p.X+res.Origin.X, p.Y+res.Origin.Y)
	}
}
