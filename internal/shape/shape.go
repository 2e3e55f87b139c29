// Package shape holds the transformable document shapes: the closed land
// Area polygon and the Street rectangle.
//
// Every resize runs as a gesture. While it is active the shape carries a
// transient scale multiplier and origin shift that renderers apply on top of
// the base geometry. EndTransform bakes them into the base geometry and
// resets the multiplier to 1; CancelTransform drops them untouched.
package shape

import (
	"errors"
	"fmt"

	"floorplan/pkg/geometry"
)

// Kind identifies a selectable shape.
type Kind int

const (
	KindNone Kind = iota
	KindArea
	KindStreet
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindArea:
		return "area"
	case KindStreet:
		return "street"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return KindNone, nil
	case "area":
		return KindArea, nil
	case "street":
		return KindStreet, nil
	}
	return KindNone, fmt.Errorf("unknown shape kind %q", s)
}

// Handle is a transform anchor on a shape's bounding box.
type Handle int

const (
	HandleTopLeft Handle = iota
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleMiddleLeft
	HandleMiddleRight
)

var handleNames = map[Handle]string{
	HandleTopLeft:     "top-left",
	HandleTopRight:    "top-right",
	HandleBottomLeft:  "bottom-left",
	HandleBottomRight: "bottom-right",
	HandleMiddleLeft:  "middle-left",
	HandleMiddleRight: "middle-right",
}

func (h Handle) String() string {
	if s, ok := handleNames[h]; ok {
		return s
	}
	return fmt.Sprintf("Handle(%d)", int(h))
}

// ParseHandle is the inverse of Handle.String.
func ParseHandle(s string) (Handle, error) {
	for h, name := range handleNames {
		if name == s {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown handle %q", s)
}

var (
	ErrHandleDisabled = errors.New("handle is not enabled for this shape")
	ErrNoGesture      = errors.New("no transform gesture in progress")
	ErrGestureActive  = errors.New("transform gesture already in progress")
	ErrVertexIndex    = errors.New("vertex index out of range")
	ErrMinVertices    = errors.New("area needs at least 3 vertices")
)

// Shape is the transform contract shared by Area and Street.
type Shape interface {
	Kind() Kind
	Bounds() geometry.Rect
	Translate(dx, dy float64)
	Handles() []Handle
	BeginTransform() error
	DragHandle(h Handle, delta geometry.Point) error
	EndTransform() error
	CancelTransform()
	Transforming() bool
}

// gesture is the transient state of an active resize.
type gesture struct {
	active         bool
	scaleX, scaleY float64
	shift          geometry.Point
}

func (g *gesture) begin() error {
	if g.active {
		return ErrGestureActive
	}
	*g = gesture{active: true, scaleX: 1, scaleY: 1}
	return nil
}

func (g *gesture) reset() {
	*g = gesture{scaleX: 1, scaleY: 1}
}

func (g gesture) scale() (float64, float64) {
	if !g.active {
		return 1, 1
	}
	return g.scaleX, g.scaleY
}

func enabled(h Handle, set []Handle) bool {
	for _, e := range set {
		if e == h {
			return true
		}
	}
	return false
}
