package shape

import (
	"errors"
	"log/slog"
)

var ErrNotSelectable = errors.New("shape is not selectable")

// SelectionListener observes selection changes.
type SelectionListener func(prev, next Kind)

// Document owns the shapes of one drawing and the exclusive selection
// between them. Gestures are routed to the selected shape only.
type Document struct {
	Area   *Area
	Street *Street

	selected  Kind
	listeners []SelectionListener
	logger    *slog.Logger
}

// NewDocument returns an empty document.
func NewDocument(logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	return &Document{logger: logger}
}

// OnSelectionChange registers a listener.
func (d *Document) OnSelectionChange(l SelectionListener) {
	d.listeners = append(d.listeners, l)
}

// Selected returns the selected kind.
func (d *Document) Selected() Kind { return d.selected }

// Shape returns the shape of the given kind, or nil.
func (d *Document) Shape(k Kind) Shape {
	switch k {
	case KindArea:
		if d.Area != nil {
			return d.Area
		}
	case KindStreet:
		if d.Street != nil {
			return d.Street
		}
	}
	return nil
}

// SelectedShape returns the selected shape, or nil.
func (d *Document) SelectedShape() Shape { return d.Shape(d.selected) }

// Select makes k the selected shape, deselecting any other.
func (d *Document) Select(k Kind) error {
	if k != KindNone && d.Shape(k) == nil {
		return ErrNotSelectable
	}
	d.setSelected(k)
	return nil
}

// Deselect clears the selection.
func (d *Document) Deselect() { d.setSelected(KindNone) }

// DeleteSelected removes the selected shape and returns its kind.
func (d *Document) DeleteSelected() Kind {
	k := d.selected
	d.setSelected(KindNone)
	switch k {
	case KindArea:
		d.Area = nil
	case KindStreet:
		d.Street = nil
	}
	return k
}

// Clear removes every shape.
func (d *Document) Clear() {
	d.setSelected(KindNone)
	d.Area = nil
	d.Street = nil
}

// setSelected detaches the handles from the previous shape. An unfinished
// gesture on it is cancelled so its base geometry is left as committed.
func (d *Document) setSelected(k Kind) {
	prev := d.selected
	if prev == k {
		return
	}
	if s := d.Shape(prev); s != nil && s.Transforming() {
		s.CancelTransform()
	}
	d.selected = k
	d.logger.Debug("selection_changed", "from", prev.String(), "to", k.String())
	for _, l := range d.listeners {
		l(prev, k)
	}
}
