package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"floorplan/internal/measure"
	"floorplan/internal/raster"
	"floorplan/pkg/colorutil"
	"floorplan/pkg/geometry"
)

var measureStroke = color.NRGBA{R: 0x00, G: 0xD0, B: 0x0F, A: 255}

// Annotate draws a measurement polyline and its distance labels on a copy
// of base. base itself is left untouched.
func Annotate(base *raster.Raster, pts []geometry.Point, closed bool, notes []measure.Annotation) *raster.Raster {
	dst := base.Clone()
	if len(pts) >= 2 {
		strokePolyline(dst, pts, closed, 2, measureStroke)
	}
	for _, p := range pts {
		r := image.Rect(int(p.X)-2, int(p.Y)-2, int(p.X)+3, int(p.Y)+3)
		draw.Draw(dst, r, image.NewUniform(colorutil.White), image.Point{}, draw.Src)
	}
	face := basicfont.Face7x13
	for _, n := range notes {
		drawLabel(dst, face, n.Anchor, n.Label)
	}
	return raster.FromImage(dst)
}

// drawLabel renders white text on a green box whose top-left is at anchor.
func drawLabel(dst draw.Image, face font.Face, anchor geometry.Point, text string) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(colorutil.White), Face: face}
	width := d.MeasureString(text).Ceil()
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()

	x, y := int(anchor.X), int(anchor.Y)
	box := image.Rect(x-3, y-2, x+width+3, y+height+2)
	draw.Draw(dst, box, image.NewUniform(colorutil.Green), image.Point{}, draw.Src)

	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + m.Ascent}
	d.DrawString(text)
}
