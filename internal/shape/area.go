package shape

import (
	"math"

	"floorplan/pkg/geometry"
)

var areaHandles = []Handle{HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight}

// Area is the closed land polygon. Vertices are stored relative to origin;
// dragging the whole body moves the origin, which translates every vertex.
type Area struct {
	origin geometry.Point
	local  []geometry.Point

	g    gesture
	base geometry.Rect
}

// NewArea builds an Area from vertices relative to origin.
func NewArea(origin geometry.Point, local []geometry.Point) (*Area, error) {
	if len(local) < 3 {
		return nil, ErrMinVertices
	}
	a := &Area{origin: origin, local: append([]geometry.Point(nil), local...)}
	a.g.reset()
	return a, nil
}

func (a *Area) Kind() Kind { return KindArea }

// Origin returns the committed origin.
func (a *Area) Origin() geometry.Point { return a.origin }

// Local returns a copy of the committed vertices relative to the origin.
func (a *Area) Local() []geometry.Point {
	return append([]geometry.Point(nil), a.local...)
}

// Scale returns the transient multiplier; 1,1 outside a gesture.
func (a *Area) Scale() (float64, float64) { return a.g.scale() }

// Points returns the vertices in canvas coordinates as currently rendered,
// including any transient gesture scale.
func (a *Area) Points() []geometry.Point {
	sx, sy := a.g.scale()
	o := a.origin.Add(a.g.shift)
	out := make([]geometry.Point, len(a.local))
	for i, p := range a.local {
		out[i] = o.Add(p.Mul(sx, sy))
	}
	return out
}

func (a *Area) Bounds() geometry.Rect { return geometry.Bounds(a.Points()) }

// Translate moves the whole polygon.
func (a *Area) Translate(dx, dy float64) {
	a.origin = a.origin.Add(geometry.Pt(dx, dy))
}

// Handles returns the corner anchors. Corner drags keep the aspect ratio.
func (a *Area) Handles() []Handle { return areaHandles }

func (a *Area) BeginTransform() error {
	if err := a.g.begin(); err != nil {
		return err
	}
	a.base = a.Bounds()
	return nil
}

// DragHandle applies a corner drag. delta is the pointer displacement since
// BeginTransform. The opposite corner stays fixed and the scale is uniform:
// delta is projected onto the box diagonal through the dragged corner.
func (a *Area) DragHandle(h Handle, delta geometry.Point) error {
	if !a.g.active {
		return ErrNoGesture
	}
	if !enabled(h, areaHandles) {
		return ErrHandleDisabled
	}
	corners := a.base.Corners() // tl, tr, br, bl
	var corner, fixed geometry.Point
	switch h {
	case HandleTopLeft:
		corner, fixed = corners[0], corners[2]
	case HandleTopRight:
		corner, fixed = corners[1], corners[3]
	case HandleBottomRight:
		corner, fixed = corners[2], corners[0]
	case HandleBottomLeft:
		corner, fixed = corners[3], corners[1]
	}
	diag := corner.Sub(fixed)
	s := 1.0
	if l2 := diag.X*diag.X + diag.Y*diag.Y; l2 > 0 {
		s = math.Max(0, 1+(delta.X*diag.X+delta.Y*diag.Y)/l2)
	}
	newOrigin := fixed.Add(a.origin.Sub(fixed).Mul(s, s))
	a.g.scaleX, a.g.scaleY = s, s
	a.g.shift = newOrigin.Sub(a.origin)
	return nil
}

// SetScale sets the transient scale directly, for hosts that compute it.
func (a *Area) SetScale(sx, sy float64) error {
	if !a.g.active {
		return ErrNoGesture
	}
	a.g.scaleX, a.g.scaleY = math.Max(0, sx), math.Max(0, sy)
	return nil
}

// EndTransform bakes the gesture into the vertices and resets scale to 1.
func (a *Area) EndTransform() error {
	if !a.g.active {
		return ErrNoGesture
	}
	sx, sy := a.g.scale()
	for i, p := range a.local {
		a.local[i] = p.Mul(sx, sy)
	}
	a.origin = a.origin.Add(a.g.shift)
	a.g.reset()
	return nil
}

func (a *Area) CancelTransform()   { a.g.reset() }
func (a *Area) Transforming() bool { return a.g.active }

// MoveVertex places vertex i at a canvas position.
func (a *Area) MoveVertex(i int, to geometry.Point) error {
	if i < 0 || i >= len(a.local) {
		return ErrVertexIndex
	}
	if a.g.active {
		return ErrGestureActive
	}
	a.local[i] = to.Sub(a.origin)
	return nil
}

// InsertVertex splits edge i (vertex i to vertex i+1, wrapping) at a canvas
// position.
func (a *Area) InsertVertex(edge int, at geometry.Point) error {
	if edge < 0 || edge >= len(a.local) {
		return ErrVertexIndex
	}
	if a.g.active {
		return ErrGestureActive
	}
	p := at.Sub(a.origin)
	a.local = append(a.local[:edge+1], append([]geometry.Point{p}, a.local[edge+1:]...)...)
	return nil
}

// RemoveVertex deletes vertex i, keeping at least three.
func (a *Area) RemoveVertex(i int) error {
	if i < 0 || i >= len(a.local) {
		return ErrVertexIndex
	}
	if len(a.local) <= 3 {
		return ErrMinVertices
	}
	if a.g.active {
		return ErrGestureActive
	}
	a.local = append(a.local[:i], a.local[i+1:]...)
	return nil
}
