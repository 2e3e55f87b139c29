package editor

import (
	"math"

	"floorplan/pkg/geometry"
)

// DefaultZoomStep is the scale multiplier applied per wheel notch.
const DefaultZoomStep = 1.1

// Viewport maps canvas coordinates onto a square view of Size screen pixels.
// Scale never drops below 1, and Offset is kept within
// [-(Size*Scale - Size), 0] on both axes so the content always covers the view.
type Viewport struct {
	Size   float64
	Step   float64
	Scale  float64
	Offset geometry.Point
}

// NewViewport returns an unzoomed viewport.
func NewViewport(size, step float64) *Viewport {
	if step <= 1 {
		step = DefaultZoomStep
	}
	return &Viewport{Size: size, Step: step, Scale: 1}
}

// Transform returns the canvas-to-screen transform.
func (v *Viewport) Transform() geometry.Affine {
	return geometry.ScaleBy(v.Scale, v.Scale).Then(geometry.Translate(v.Offset.X, v.Offset.Y))
}

// ScreenToCanvas inverts the pan/zoom so hit tests run in document space.
func (v *Viewport) ScreenToCanvas(p geometry.Point) geometry.Point {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// CanvasToScreen applies the pan/zoom.
func (v *Viewport) CanvasToScreen(p geometry.Point) geometry.Point {
	return v.Transform().Apply(p)
}

// Zoom scales by one step about the screen-space pointer, keeping the
// canvas point under the pointer fixed where the pan bounds allow.
func (v *Viewport) Zoom(pointer geometry.Point, in bool) {
	anchor := v.ScreenToCanvas(pointer)
	next := v.Scale * v.Step
	if !in {
		next = math.Max(1, v.Scale/v.Step)
	}
	v.Scale = next
	v.Offset = geometry.Pt(pointer.X-anchor.X*next, pointer.Y-anchor.Y*next)
	v.clamp()
}

// PanTo moves the view origin, clamped to the pan bounds.
func (v *Viewport) PanTo(offset geometry.Point) {
	v.Offset = offset
	v.clamp()
}

// Reset restores scale 1 and zero offset.
func (v *Viewport) Reset() {
	v.Scale = 1
	v.Offset = geometry.Point{}
}

func (v *Viewport) clamp() {
	limit := -(v.Size*v.Scale - v.Size)
	v.Offset.X = math.Min(0, math.Max(limit, v.Offset.X))
	v.Offset.Y = math.Min(0, math.Max(limit, v.Offset.Y))
}
