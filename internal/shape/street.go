package shape

import (
	"math"

	"floorplan/pkg/geometry"
)

// Street defaults, in canvas units.
const (
	DefaultStreetWidth  = 100.0
	DefaultStreetHeight = 4.0
	MinStreetWidth      = 5.0
)

var streetHandles = []Handle{HandleMiddleLeft, HandleMiddleRight}

// Street is the road rectangle. Only the left and right edge handles are
// enabled and its height is pinned during resize.
type Street struct {
	rect     geometry.Rect
	minWidth float64
	g        gesture
}

// NewStreet places a street with its top-left corner at the click point.
func NewStreet(at geometry.Point, width, height, minWidth float64) *Street {
	if width <= 0 {
		width = DefaultStreetWidth
	}
	if height < 0 {
		height = DefaultStreetHeight
	}
	if minWidth <= 0 {
		minWidth = MinStreetWidth
	}
	s := &Street{
		rect:     geometry.Rect{X: at.X, Y: at.Y, Width: math.Max(minWidth, width), Height: height},
		minWidth: minWidth,
	}
	s.g.reset()
	return s
}

func (s *Street) Kind() Kind { return KindStreet }

// Base returns the committed rectangle.
func (s *Street) Base() geometry.Rect { return s.rect }

// Rect returns the rectangle as currently rendered, including any transient
// gesture scale.
func (s *Street) Rect() geometry.Rect {
	sx, sy := s.g.scale()
	return geometry.Rect{
		X:      s.rect.X + s.g.shift.X,
		Y:      s.rect.Y + s.g.shift.Y,
		Width:  s.rect.Width * sx,
		Height: s.rect.Height * sy,
	}
}

func (s *Street) Bounds() geometry.Rect { return s.Rect() }

func (s *Street) Translate(dx, dy float64) {
	s.rect.X += dx
	s.rect.Y += dy
}

func (s *Street) Handles() []Handle { return streetHandles }

func (s *Street) BeginTransform() error { return s.g.begin() }

// DragHandle resizes from the left or right edge; the opposite edge stays
// put. delta is the pointer displacement since BeginTransform; only its X
// component is used.
func (s *Street) DragHandle(h Handle, delta geometry.Point) error {
	if !s.g.active {
		return ErrNoGesture
	}
	if !enabled(h, streetHandles) {
		return ErrHandleDisabled
	}
	w := s.rect.Width
	if w == 0 {
		return nil
	}
	switch h {
	case HandleMiddleRight:
		s.g.scaleX = math.Max(0, (w+delta.X)/w)
		s.g.shift = geometry.Point{}
	case HandleMiddleLeft:
		s.g.scaleX = math.Max(0, (w-delta.X)/w)
		s.g.shift = geometry.Pt(w-w*s.g.scaleX, 0)
	}
	s.g.scaleY = 1
	return nil
}

// SetScale sets the transient width multiplier. The height multiplier is
// ignored since height is pinned.
func (s *Street) SetScale(sx, _ float64) error {
	if !s.g.active {
		return ErrNoGesture
	}
	s.g.scaleX = math.Max(0, sx)
	s.g.scaleY = 1
	return nil
}

// EndTransform normalizes the scale back into width and height.
func (s *Street) EndTransform() error {
	if !s.g.active {
		return ErrNoGesture
	}
	s.rect = NormalizeRect(s.rect, s.g.scaleX, s.g.scaleY, s.g.shift, s.minWidth)
	s.g.reset()
	return nil
}

func (s *Street) CancelTransform()   { s.g.reset() }
func (s *Street) Transforming() bool { return s.g.active }

// NormalizeRect bakes a scale multiplier and origin shift into r, flooring
// width at minWidth and height at 0.
func NormalizeRect(r geometry.Rect, sx, sy float64, shift geometry.Point, minWidth float64) geometry.Rect {
	return geometry.Rect{
		X:      r.X + shift.X,
		Y:      r.Y + shift.Y,
		Width:  math.Max(minWidth, r.Width*sx),
		Height: math.Max(0, r.Height*sy),
	}
}
