package measure

import (
	"errors"
	"fmt"
	"math"

	"floorplan/pkg/geometry"
)

// Distance calibration defaults.
const (
	DefaultDistanceDivisor = 2.08
	DefaultFootLength      = 26.0
)

var ErrInvalidFootLength = errors.New("foot length must be positive")

// Ruler converts canvas distances into meters using the user's foot length
// in centimeters.
type Ruler struct {
	FootLength float64
	Divisor    float64
}

// NewRuler validates footLength. A non-positive divisor selects the default.
func NewRuler(footLength, divisor float64) (Ruler, error) {
	if !(footLength > 0) || math.IsInf(footLength, 0) {
		return Ruler{}, fmt.Errorf("%w: %v", ErrInvalidFootLength, footLength)
	}
	if divisor <= 0 {
		divisor = DefaultDistanceDivisor
	}
	return Ruler{FootLength: footLength, Divisor: divisor}, nil
}

// Meters returns round(|ab|) / divisor * footLength / 100.
func (r Ruler) Meters(a, b geometry.Point) float64 {
	return math.Round(a.Distance(b)) / r.Divisor * r.FootLength / 100
}

// Label formats a length with one decimal.
func Label(meters float64) string {
	return fmt.Sprintf("%.1f m", meters)
}

// Annotation is a labelled edge.
type Annotation struct {
	Edge   geometry.Segment `json:"edge"`
	Meters float64          `json:"meters"`
	Label  string           `json:"label"`
	// Anchor is the label's top-left corner, just off the edge midpoint.
	Anchor geometry.Point `json:"anchor"`
}

// Annotate labels every edge of a polyline; closed adds the wrap-around edge.
func (r Ruler) Annotate(points []geometry.Point, closed bool) []Annotation {
	edges := geometry.Edges(points, closed)
	out := make([]Annotation, 0, len(edges))
	for _, e := range edges {
		m := r.Meters(e.From, e.To)
		mid := e.Midpoint()
		out = append(out, Annotation{
			Edge:   e,
			Meters: m,
			Label:  Label(m),
			Anchor: geometry.Pt(mid.X-3, mid.Y-2),
		})
	}
	return out
}
