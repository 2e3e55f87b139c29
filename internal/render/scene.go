// Package render rasterizes the drawn document into the fixed-size pixel
// buffer that is measured and sent to the model.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"floorplan/internal/raster"
	"floorplan/pkg/colorutil"
	"floorplan/pkg/geometry"
)

// NorthMarkerHeight is the thickness of the direction bar.
const NorthMarkerHeight = 8

// Direction is the canvas edge that faces north.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

var directionNames = [...]string{"north", "south", "east", "west"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// ParseDirection accepts the lower-case edge names; empty means north.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return North, nil
	}
	for i, n := range directionNames {
		if n == s {
			return Direction(i), nil
		}
	}
	return North, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarkerRect is the bar drawn along the north-facing edge.
func (d Direction) MarkerRect(size int) image.Rectangle {
	switch d {
	case South:
		return image.Rect(0, size-NorthMarkerHeight, size, size)
	case East:
		return image.Rect(size-NorthMarkerHeight, 0, size, size)
	case West:
		return image.Rect(0, 0, NorthMarkerHeight, size)
	default:
		return image.Rect(0, 0, size, NorthMarkerHeight)
	}
}

// Scene is everything drawn on the document canvas.
type Scene struct {
	// Reference is an uploaded land image, scaled to fill the canvas. When
	// present the north marker is omitted.
	Reference image.Image
	// Area is the closed land polygon in canvas coordinates.
	Area []geometry.Point
	// Outline is an unclosed polygon still being drawn.
	Outline []geometry.Point
	Street  *geometry.Rect
	// North selects the edge carrying the direction marker.
	North Direction
}

// Render draws s onto a white raster.Size square.
func Render(s Scene) *raster.Raster {
	size := raster.Size
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(colorutil.White), image.Point{}, draw.Src)

	if s.Reference != nil {
		xdraw.BiLinear.Scale(dst, dst.Bounds(), s.Reference, s.Reference.Bounds(), xdraw.Over, nil)
	} else {
		draw.Draw(dst, s.North.MarkerRect(size), image.NewUniform(colorutil.Blue), image.Point{}, draw.Src)
	}

	if len(s.Area) >= 3 {
		fillPolygon(dst, s.Area, colorutil.Black)
	}
	if len(s.Outline) >= 2 {
		strokePolyline(dst, s.Outline, false, 1, colorutil.Black)
	}
	if s.Street != nil {
		fillPolygon(dst, s.Street.Corners(), colorutil.Red)
	}
	return raster.FromImage(dst)
}

func fillPolygon(dst draw.Image, pts []geometry.Point, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// strokePolyline draws each edge as a filled quad of the given width.
func strokePolyline(dst draw.Image, pts []geometry.Point, closed bool, width float64, c color.Color) {
	for _, e := range geometry.Edges(pts, closed) {
		d := e.To.Sub(e.From)
		l := math.Hypot(d.X, d.Y)
		if l == 0 {
			continue
		}
		n := geometry.Pt(-d.Y/l*width/2, d.X/l*width/2)
		fillPolygon(dst, []geometry.Point{
			e.From.Add(n), e.To.Add(n), e.To.Sub(n), e.From.Sub(n),
		}, c)
	}
}
