package session

import (
	"errors"
	"fmt"

	"floorplan/internal/shape"
	"floorplan/pkg/geometry"
)

var (
	ErrNothingSelected = errors.New("no shape selected")
	ErrInvalidGesture  = errors.New("invalid gesture")
)

// GestureOp names a manipulation of the selected shape.
type GestureOp string

const (
	OpTranslate    GestureOp = "translate"
	OpBegin        GestureOp = "begin"
	OpDrag         GestureOp = "drag"
	OpEnd          GestureOp = "end"
	OpCancel       GestureOp = "cancel"
	OpMoveVertex   GestureOp = "move-vertex"
	OpInsertVertex GestureOp = "insert-vertex"
	OpRemoveVertex GestureOp = "remove-vertex"
)

// Gesture is one step of a drag, resize or vertex edit. Delta is the
// translation for OpTranslate and the pointer displacement since OpBegin
// for OpDrag. Index and Point address a vertex or an edge.
type Gesture struct {
	Op     GestureOp      `json:"op"`
	Handle string         `json:"handle,omitempty"`
	Delta  geometry.Point `json:"delta"`
	Index  int            `json:"index"`
	Point  geometry.Point `json:"point"`
}

// Gesture applies g to the selected shape.
func (s *Session) Gesture(g Gesture) error {
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	sel := s.doc.SelectedShape()
	if sel == nil {
		return ErrNothingSelected
	}
	if err := s.applyGesture(sel, g); err != nil {
		return err
	}
	s.emit(EventShapesChanged, sel.Kind().String())
	return nil
}

func (s *Session) applyGesture(sel shape.Shape, g Gesture) error {
	switch g.Op {
	case OpTranslate:
		if !g.Delta.Finite() {
			return fmt.Errorf("%w: translate delta is not finite", ErrInvalidGesture)
		}
		if sel.Transforming() {
			return shape.ErrGestureActive
		}
		sel.Translate(g.Delta.X, g.Delta.Y)
		return nil
	case OpBegin:
		return sel.BeginTransform()
	case OpDrag:
		h, err := shape.ParseHandle(g.Handle)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGesture, err)
		}
		if !g.Delta.Finite() {
			return fmt.Errorf("%w: drag delta is not finite", ErrInvalidGesture)
		}
		return sel.DragHandle(h, g.Delta)
	case OpEnd:
		return sel.EndTransform()
	case OpCancel:
		sel.CancelTransform()
		return nil
	}

	switch g.Op {
	case OpMoveVertex, OpInsertVertex, OpRemoveVertex:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidGesture, g.Op)
	}
	area, ok := sel.(*shape.Area)
	if !ok {
		return fmt.Errorf("%w: %s applies to the area only", ErrInvalidGesture, g.Op)
	}
	switch g.Op {
	case OpMoveVertex:
		return area.MoveVertex(g.Index, g.Point)
	case OpInsertVertex:
		return area.InsertVertex(g.Index, g.Point)
	default:
		return area.RemoveVertex(g.Index)
	}
}
