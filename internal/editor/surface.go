package editor

import (
	"log/slog"

	"floorplan/pkg/geometry"
)

// DefaultHoverRadius is the first-vertex hit radius in screen pixels.
const DefaultHoverRadius = 4.0

// Surface feeds screen-space pointer events into a Polygon through a
// Viewport. The first-vertex hit target has a constant on-screen radius, so
// its canvas radius shrinks as the view zooms in.
type Surface struct {
	Polygon     *Polygon
	View        *Viewport
	HoverRadius float64
}

// NewSurface returns a surface over an empty polygon and an unzoomed view.
func NewSurface(size, zoomStep, hoverRadius float64, logger *slog.Logger) *Surface {
	if hoverRadius <= 0 {
		hoverRadius = DefaultHoverRadius
	}
	return &Surface{
		Polygon:     NewPolygon(logger),
		View:        NewViewport(size, zoomStep),
		HoverRadius: hoverRadius,
	}
}

// HitsFirstVertex reports whether the canvas point lies on the first
// vertex's hit target.
func (s *Surface) HitsFirstVertex(canvas geometry.Point) bool {
	first, ok := s.Polygon.First()
	if !ok {
		return false
	}
	return canvas.Distance(first)*s.View.Scale <= s.HoverRadius
}

// PointerMove updates the hover flag and the preview cursor. It returns the
// pointer position in canvas coordinates.
func (s *Surface) PointerMove(screen geometry.Point) geometry.Point {
	canvas := s.View.ScreenToCanvas(screen)
	s.Polygon.SetHoverOnFirstVertex(s.HitsFirstVertex(canvas))
	s.Polygon.UpdateCursor(canvas)
	return canvas
}

// PointerDown runs the hover test at the click position, then adds the point.
func (s *Surface) PointerDown(screen geometry.Point) (closed bool, err error) {
	canvas := s.PointerMove(screen)
	return s.Polygon.AddPoint(canvas)
}

// Reset clears the polygon and restores the view.
func (s *Surface) Reset() {
	s.Polygon.Reset()
	s.View.Reset()
}
