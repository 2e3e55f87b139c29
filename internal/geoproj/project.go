// Package geoproj converts a geographic ring of arbitrary extent into a
// closed canvas polygon centred in the 256x256 document.
package geoproj

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/mat"

	"floorplan/pkg/geometry"
)

const (
	// FrameSize is the edge of the normalized frame in canvas units.
	FrameSize = 128.0
	// Rotation is applied about the centroid after the axis swap.
	Rotation = math.Pi / 2
)

// Anchor centres the FrameSize result inside the 256x256 canvas.
var Anchor = geometry.Pt(64, 64)

var ErrDegenerateBounds = errors.New("ring has zero extent on one axis")

// Result carries the projected polygon and every intermediate stage.
type Result struct {
	Normalized []geometry.Point `json:"normalized"`
	Flipped    []geometry.Point `json:"flipped"`
	Centroid   geometry.Point   `json:"centroid"`
	Rotated    []geometry.Point `json:"rotated"`
	// Flat is Rotated interleaved as x,y,x,y,...
	Flat []float64 `json:"flat"`
	// Origin is where the closed polygon is anchored on the canvas.
	Origin geometry.Point `json:"origin"`
}

// Project runs the pipeline: bounding box, normalize to FrameSize, swap
// axes, rotate a quarter turn about the centroid, flatten. It has no state;
// the same ring always yields the same output.
func Project(ring orb.Ring) (*Result, error) {
	ring, err := ValidateRing(ring)
	if err != nil {
		return nil, err
	}

	normalized, err := Normalize(ring)
	if err != nil {
		return nil, err
	}
	flipped := SwapAxes(normalized)
	centroid := geometry.Centroid(flipped)
	rotated := RotateAbout(flipped, centroid, Rotation)

	return &Result{
		Normalized: normalized,
		Flipped:    flipped,
		Centroid:   centroid,
		Rotated:    rotated,
		Flat:       geometry.Flatten(rotated),
		Origin:     Anchor,
	}, nil
}

// Normalize maps each (lon, lat) into [0, FrameSize] on both axes.
func Normalize(ring orb.Ring) ([]geometry.Point, error) {
	b := ring.Bound()
	dLon := b.Max.Lon() - b.Min.Lon()
	dLat := b.Max.Lat() - b.Min.Lat()
	if dLon == 0 || dLat == 0 {
		return nil, fmt.Errorf("%w: lon extent %g, lat extent %g", ErrDegenerateBounds, dLon, dLat)
	}
	out := make([]geometry.Point, len(ring))
	for i, p := range ring {
		out[i] = geometry.Pt(
			FrameSize*(p.Lon()-b.Min.Lon())/dLon,
			FrameSize*(p.Lat()-b.Min.Lat())/dLat,
		)
	}
	return out, nil
}

// SwapAxes exchanges x and y of every point.
func SwapAxes(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Pt(p.Y, p.X)
	}
	return out
}

// RotateAbout rotates points by theta around center using
// [cos -sin; sin cos] on the centred 2xN coordinate matrix.
func RotateAbout(points []geometry.Point, center geometry.Point, theta float64) []geometry.Point {
	if len(points) == 0 {
		return nil
	}
	n := len(points)
	centred := mat.NewDense(2, n, nil)
	for i, p := range points {
		centred.Set(0, i, p.X-center.X)
		centred.Set(1, i, p.Y-center.Y)
	}

	var rotated mat.Dense
	rotated.Mul(rotationMatrix(theta), centred)

	out := make([]geometry.Point, n)
	for i := range out {
		out[i] = geometry.Pt(rotated.At(0, i)+center.X, rotated.At(1, i)+center.Y)
	}
	return out
}

// rotationMatrix snaps sin/cos rounding noise so quarter turns are exact.
func rotationMatrix(theta float64) *mat.Dense {
	sin, cos := math.Sincos(theta)
	snap := func(v float64) float64 {
		if math.Abs(v) < 1e-15 {
			return 0
		}
		return v
	}
	sin, cos = snap(sin), snap(cos)
	return mat.NewDense(2, 2, []float64{
		cos, -sin,
		sin, cos,
	})
}
