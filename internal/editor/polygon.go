// Package editor implements click-to-add polygon drawing with proximity
// loop closing, and the pan/zoom viewport its hit tests run through.
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"floorplan/pkg/geometry"
)

// State is the drawing state of a Polygon.
type State int

const (
	StateEmpty State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MinCloseVertices is the number of committed points required before the
// loop may close. A closed polygon therefore has at least three vertices.
const MinCloseVertices = 2

var (
	ErrPolygonClosed = errors.New("polygon is closed")
	ErrInvalidPoint  = errors.New("point is not finite")
	ErrTooFewPoints  = errors.New("closed polygon needs at least 3 points")
)

// Listener observes state transitions.
type Listener func(prev, next State)

// Polygon accumulates committed vertices until the loop is closed.
//
// HoverOnClosePoint is level-triggered input to AddPoint: whatever value was
// last written when AddPoint runs decides whether the click closes the loop.
type Polygon struct {
	points            []geometry.Point
	cursor            geometry.Point
	hasCursor         bool
	hoverOnClosePoint bool
	state             State

	logger    *slog.Logger
	listeners []Listener
}

// NewPolygon returns an empty polygon.
func NewPolygon(logger *slog.Logger) *Polygon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Polygon{logger: logger}
}

// OnTransition registers a listener called after every state change.
func (p *Polygon) OnTransition(l Listener) {
	p.listeners = append(p.listeners, l)
}

func (p *Polygon) State() State { return p.state }

// Points returns a copy of the committed vertices.
func (p *Polygon) Points() []geometry.Point {
	out := make([]geometry.Point, len(p.points))
	copy(out, p.points)
	return out
}

// Len returns the number of committed vertices.
func (p *Polygon) Len() int { return len(p.points) }

// First returns the first committed vertex.
func (p *Polygon) First() (geometry.Point, bool) {
	if len(p.points) == 0 {
		return geometry.Point{}, false
	}
	return p.points[0], true
}

// Cursor returns the preview point. ok is false unless the polygon is Open
// and a cursor has been recorded.
func (p *Polygon) Cursor() (geometry.Point, bool) {
	if p.state != StateOpen || !p.hasCursor {
		return geometry.Point{}, false
	}
	return p.cursor, true
}

func (p *Polygon) HoverOnClosePoint() bool { return p.hoverOnClosePoint }

// Preview returns the committed vertices followed by the cursor while Open.
func (p *Polygon) Preview() []geometry.Point {
	out := p.Points()
	if c, ok := p.Cursor(); ok {
		out = append(out, c)
	}
	return out
}

// AddPoint commits pt, or closes the loop when the hover flag is set and at
// least MinCloseVertices points are committed. On close pt is discarded.
func (p *Polygon) AddPoint(pt geometry.Point) (closed bool, err error) {
	if p.state == StateClosed {
		return false, ErrPolygonClosed
	}
	if !pt.Finite() {
		return false, ErrInvalidPoint
	}
	if p.hoverOnClosePoint && len(p.points) >= MinCloseVertices {
		p.hasCursor = false
		p.transition(StateClosed)
		return true, nil
	}
	p.points = append(p.points, pt)
	if p.state == StateEmpty {
		p.transition(StateOpen)
	}
	return false, nil
}

// UpdateCursor records the preview point. It only has effect while Open.
func (p *Polygon) UpdateCursor(pt geometry.Point) bool {
	if p.state != StateOpen || !pt.Finite() {
		return false
	}
	p.cursor = pt
	p.hasCursor = true
	return true
}

// SetHoverOnFirstVertex writes the hover flag. Last write wins.
func (p *Polygon) SetHoverOnFirstVertex(hover bool) {
	p.hoverOnClosePoint = hover
}

// Reset returns to Empty from any state.
func (p *Polygon) Reset() {
	p.points = nil
	p.hasCursor = false
	p.hoverOnClosePoint = false
	if p.state != StateEmpty {
		p.transition(StateEmpty)
	}
}

// LoadClosed replaces the contents with a pre-closed ring, as produced by
// the geographic projector or mask extraction.
func (p *Polygon) LoadClosed(points []geometry.Point) error {
	if len(points) < MinCloseVertices+1 {
		return ErrTooFewPoints
	}
	for _, pt := range points {
		if !pt.Finite() {
			return ErrInvalidPoint
		}
	}
	p.points = append([]geometry.Point(nil), points...)
	p.hasCursor = false
	p.hoverOnClosePoint = false
	if p.state != StateClosed {
		p.transition(StateClosed)
	}
	return nil
}

func (p *Polygon) transition(next State) {
	prev := p.state
	p.state = next
	p.logger.Debug("polygon_transition", "from", prev.String(), "to", next.String(), "points", len(p.points))
	for _, l := range p.listeners {
		l(prev, next)
	}
}
