package measure

import (
	"image/color"

	"floorplan/internal/raster"
	"floorplan/pkg/colorutil"
)

// Calibration defaults.
const (
	DefaultBlackThreshold = 1
	DefaultPixelsPerMeter = 8
)

// Area is a pixel count and its real-world equivalent.
type Area struct {
	Pixels       int     `json:"pixels"`
	SquareMeters float64 `json:"square_meters"`
}

// AreaMeter counts near-black opaque pixels and converts the count to m^2.
type AreaMeter struct {
	// BlackThreshold is exclusive: a channel value must be below it.
	BlackThreshold int
	PixelsPerMeter float64
}

// NewAreaMeter fills non-positive parameters with the defaults.
func NewAreaMeter(blackThreshold int, pixelsPerMeter float64) AreaMeter {
	if blackThreshold <= 0 {
		blackThreshold = DefaultBlackThreshold
	}
	if pixelsPerMeter <= 0 {
		pixelsPerMeter = DefaultPixelsPerMeter
	}
	return AreaMeter{BlackThreshold: blackThreshold, PixelsPerMeter: pixelsPerMeter}
}

// IsBlack reports whether c counts towards the measured area.
func (m AreaMeter) IsBlack(c color.NRGBA) bool {
	t := m.BlackThreshold
	return int(c.R) < t && int(c.G) < t && int(c.B) < t && c.A == 255
}

// BlackPixelCount counts pixels accepted by IsBlack.
func (m AreaMeter) BlackPixelCount(r *raster.Raster) int {
	n := 0
	r.Pixels(func(_, _ int, c color.NRGBA) {
		if m.IsBlack(c) {
			n++
		}
	})
	return n
}

// SquareMeters converts a pixel count: count / pixelsPerMeter^2.
func (m AreaMeter) SquareMeters(pixels int) float64 {
	return float64(pixels) / (m.PixelsPerMeter * m.PixelsPerMeter)
}

// Measure counts and converts in one pass.
func (m AreaMeter) Measure(r *raster.Raster) Area {
	n := m.BlackPixelCount(r)
	return Area{Pixels: n, SquareMeters: m.SquareMeters(n)}
}

// ZoneArea is one row of a zone histogram.
type ZoneArea struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"color,omitempty"`
	Area
}

// Histogram classifies every pixel and reports per-zone areas in table
// order, followed by the unknown bucket.
func (m AreaMeter) Histogram(c *Classifier, r *raster.Raster) []ZoneArea {
	counts := make(map[string]int, len(c.Zones)+1)
	r.Pixels(func(_, _ int, px color.NRGBA) {
		if z, ok := c.Classify(colorutil.RGB{R: px.R, G: px.G, B: px.B}); ok {
			counts[z.ID]++
		} else {
			counts[UnknownZone]++
		}
	})
	out := make([]ZoneArea, 0, len(c.Zones)+1)
	for _, z := range c.Zones {
		n := counts[z.ID]
		out = append(out, ZoneArea{ID: z.ID, Name: z.Name, Hex: z.Hex(), Area: Area{Pixels: n, SquareMeters: m.SquareMeters(n)}})
	}
	n := counts[UnknownZone]
	out = append(out, ZoneArea{ID: UnknownZone, Name: "Unknown", Area: Area{Pixels: n, SquareMeters: m.SquareMeters(n)}})
	return out
}
