// Package session owns one user's floor-plan document: the land drawing
// editor, the Area and Street shapes with their selection, the active tool,
// keyboard commands, inference and the measurements derived from it. All
// mutations are serialized by the session lock.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"floorplan/internal/editor"
	"floorplan/internal/geoproj"
	"floorplan/internal/inference"
	"floorplan/internal/mask/contour"
	"floorplan/internal/measure"
	"floorplan/internal/metrics"
	"floorplan/internal/raster"
	"floorplan/internal/render"
	"floorplan/internal/shape"
	"floorplan/pkg/geometry"
)

var (
	ErrClosed   = errors.New("session is closed")
	ErrNoOutput = errors.New("no generated output")
	// ErrBusy rejects document edits while inference is outstanding.
	ErrBusy = inference.ErrBusy
)

// Descriptors are user-supplied land labels. North also places the
// direction marker in the rendered scene.
type Descriptors struct {
	LandShape   string           `json:"land_shape,omitempty"`
	Orientation string           `json:"orientation,omitempty"`
	North       render.Direction `json:"north"`
}

// Session is one document and its editing state.
type Session struct {
	ID string

	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	closed      bool
	lastActive  time.Time
	tool        Tool
	land        *editor.Surface
	doc         *shape.Document
	reference   *raster.Raster
	inscribed   *geometry.Rect
	descriptors Descriptors

	ruler      measure.Ruler
	meter      measure.AreaMeter
	classifier *measure.Classifier

	runner     *inference.Runner
	busy       bool
	generation uint64
	input      *raster.Raster
	output     *raster.Raster
	measuring  *editor.Surface

	landArea    *measure.Area
	remaining   *measure.Area
	groundTruth *measure.Area

	keys     *Dispatcher
	releases []func()

	listeners   map[EventType][]EventListener
	subscribers map[uint64]EventListener
	subSeq      uint64
}

// New creates a session with an empty document. model may be nil, in which
// case generation fails with inference.ErrNoModel.
func New(id string, opts Options, model inference.Model, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)
	ruler, err := measure.NewRuler(opts.FootLength, opts.DistanceDivisor)
	if err != nil {
		return nil, err
	}
	size := float64(raster.Size)
	s := &Session{
		ID:          id,
		opts:        opts,
		logger:      logger,
		lastActive:  time.Now(),
		land:        editor.NewSurface(size, opts.ZoomStep, opts.HoverRadius, logger),
		measuring:   editor.NewSurface(size, opts.ZoomStep, opts.HoverRadius, logger),
		doc:         shape.NewDocument(logger),
		ruler:       ruler,
		meter:       measure.NewAreaMeter(opts.BlackThreshold, opts.PixelsPerMeter),
		classifier:  measure.NewClassifier(opts.ZoneThreshold),
		runner:      inference.NewRunner(model, opts.ModelTimeout, logger),
		keys:        NewDispatcher(),
		listeners:   make(map[EventType][]EventListener),
		subscribers: make(map[uint64]EventListener),
	}
	s.doc.OnSelectionChange(func(prev, next shape.Kind) {
		s.emit(EventSelectionChanged, next.String())
	})
	s.land.Polygon.OnTransition(func(prev, next editor.State) {
		s.emit(EventDrawingChanged, next.String())
	})
	s.bindKeys()
	return s, nil
}

func (s *Session) bindKeys() {
	for _, k := range []string{"Delete", "Backspace"} {
		s.releases = append(s.releases, s.keys.Bind(k, s.deleteSelected))
	}
	s.releases = append(s.releases, s.keys.Bind("Escape", s.escape))
}

// Close cancels outstanding inference and releases key bindings.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.runner.Cancel()
	s.generation++
	for _, release := range s.releases {
		release()
	}
	s.releases = nil
	s.emit(EventClosed, nil)
	s.logger.Info("session_closed")
}

// LastActive is the time of the last accepted command.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// lock acquires the session for a command. The caller must unlock.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.lastActive = time.Now()
	return nil
}

// lockEdit additionally rejects document edits during inference.
func (s *Session) lockEdit() error {
	if err := s.lock(); err != nil {
		return err
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	return nil
}

// SetTool activates t. Clear resets the document and Generate starts
// inference; both leave the mouse tool active.
func (s *Session) SetTool(t Tool) error {
	if t == ToolClear {
		return s.Clear()
	}
	if t == ToolGenerate {
		_, err := s.Generate()
		return err
	}
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.toolDisabled(t) {
		return fmt.Errorf("%w: %s", ErrToolDisabled, t)
	}
	s.deselect()
	s.setTool(t)
	return nil
}

func (s *Session) setTool(t Tool) {
	if s.tool == t {
		return
	}
	s.tool = t
	s.logger.Debug("tool_changed", "tool", t.String())
	s.emit(EventToolChanged, t.String())
}

// Tool returns the active tool.
func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// PointerMove tracks the pointer over the document canvas.
func (s *Session) PointerMove(screen geometry.Point) error {
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.tool == ToolArea {
		s.land.PointerMove(screen)
	}
	return nil
}

// PointerDown is a click on the document canvas at a screen position.
func (s *Session) PointerDown(screen geometry.Point) error {
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if !screen.Finite() {
		return editor.ErrInvalidPoint
	}

	switch s.tool {
	case ToolArea:
		closed, err := s.land.PointerDown(screen)
		if err != nil {
			return err
		}
		if closed {
			return s.promoteArea()
		}
	case ToolStreet:
		canvas := s.land.View.ScreenToCanvas(screen)
		s.doc.Street = shape.NewStreet(canvas, s.opts.StreetWidth, s.opts.StreetHeight, s.opts.MinStreetWidth)
		s.emit(EventShapesChanged, "street")
		s.setTool(ToolMouse)
	case ToolMouse:
		s.selectAt(s.land.View.ScreenToCanvas(screen))
	}
	return nil
}

// promoteArea turns the closed drawing into the Area shape.
func (s *Session) promoteArea() error {
	a, err := shape.NewArea(geometry.Point{}, s.land.Polygon.Points())
	if err != nil {
		// A two-vertex loop closes the editor but cannot be an Area.
		s.logger.Warn("area_rejected", "vertices", s.land.Polygon.Len(), "error", err)
		s.land.Polygon.Reset()
		return err
	}
	s.doc.Area = a
	s.emit(EventShapesChanged, "area")
	s.setTool(ToolMouse)
	s.logger.Info("area_closed", "vertices", len(a.Local()))
	return nil
}

// selectAt picks the topmost shape under the canvas point, or deselects.
func (s *Session) selectAt(p geometry.Point) {
	if s.land.Polygon.State() == editor.StateOpen {
		return
	}
	target := shape.KindNone
	switch {
	case s.doc.Street != nil && s.doc.Street.Bounds().Contains(p):
		target = shape.KindStreet
	case s.doc.Area != nil && geometry.PointInPolygon(p, s.doc.Area.Points()):
		target = shape.KindArea
	}
	if target != s.doc.Selected() {
		s.cancelGesture()
	}
	_ = s.doc.Select(target)
}

// Zoom scales the document view about the pointer by one step.
func (s *Session) Zoom(pointer geometry.Point, in bool) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.land.View.Zoom(pointer, in)
	s.emit(EventViewChanged, viewOf(s.land.View))
	return nil
}

// Pan moves the document view; the offset is clamped.
func (s *Session) Pan(offset geometry.Point) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.land.View.PanTo(offset)
	s.emit(EventViewChanged, viewOf(s.land.View))
	return nil
}

// Select changes the selection. Requests made while a polygon is being
// drawn are ignored. The Area is selectable only once closed.
func (s *Session) Select(k shape.Kind) error {
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.land.Polygon.State() == editor.StateOpen {
		return nil
	}
	if k != s.doc.Selected() {
		s.cancelGesture()
	}
	return s.doc.Select(k)
}

// Key dispatches a key press to its bound command.
func (s *Session) Key(key string) error {
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.keys.Dispatch(key)
}

// deleteSelected removes the selected shape. Deleting the Area also resets
// the drawing editor, including its hover flag.
func (s *Session) deleteSelected() error {
	switch s.doc.DeleteSelected() {
	case shape.KindArea:
		s.land.Polygon.Reset()
		s.emit(EventShapesChanged, "area")
	case shape.KindStreet:
		s.emit(EventShapesChanged, "street")
	}
	return nil
}

// deselect clears the selection. A gesture still in progress on the
// selected shape is cancelled so no transient scale outlives it.
func (s *Session) deselect() {
	s.cancelGesture()
	s.doc.Deselect()
}

func (s *Session) cancelGesture() {
	if sel := s.doc.SelectedShape(); sel != nil && sel.Transforming() {
		sel.CancelTransform()
		s.emit(EventShapesChanged, sel.Kind().String())
	}
}

// escape abandons a gesture or clears the selection.
func (s *Session) escape() error {
	if sel := s.doc.SelectedShape(); sel != nil && sel.Transforming() {
		sel.CancelTransform()
		s.emit(EventShapesChanged, s.doc.Selected().String())
		return nil
	}
	s.doc.Deselect()
	return nil
}

// Clear resets the whole document. An outstanding inference is cancelled
// and its result discarded.
func (s *Session) Clear() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.busy {
		s.runner.Cancel()
		s.busy = false
		s.emit(EventBusyChanged, false)
	}
	s.generation++
	s.doc.Clear()
	s.land.Reset()
	s.measuring.Reset()
	s.reference = nil
	s.inscribed = nil
	s.input, s.output = nil, nil
	s.landArea, s.remaining, s.groundTruth = nil, nil, nil
	s.setTool(ToolMouse)
	s.emit(EventCleared, nil)
	s.logger.Info("session_cleared")
	return nil
}

// SetFootLength changes the distance scale reference in centimeters.
func (s *Session) SetFootLength(cm float64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if !(cm >= s.opts.MinFootLength) || math.IsInf(cm, 0) {
		return fmt.Errorf("%w: %v is below %v", measure.ErrInvalidFootLength, cm, s.opts.MinFootLength)
	}
	r, err := measure.NewRuler(cm, s.opts.DistanceDivisor)
	if err != nil {
		return err
	}
	s.ruler = r
	s.emit(EventMeasurementChanged, "foot_length")
	return nil
}

// SetDescriptors replaces the land descriptors.
func (s *Session) SetDescriptors(d Descriptors) error {
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.descriptors = d
	s.emit(EventShapesChanged, "descriptors")
	return nil
}

// LoadGeo projects a geographic ring (raw pairs or GeoJSON) into the Area.
func (s *Session) LoadGeo(data []byte) (*geoproj.Result, error) {
	if err := s.lockEdit(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.toolDisabled(ToolLongLat) {
		return nil, fmt.Errorf("%w: %s", ErrToolDisabled, ToolLongLat)
	}
	ring, err := geoproj.ParseRing(data)
	if err == nil {
		var res *geoproj.Result
		if res, err = geoproj.Project(ring); err == nil {
			metrics.ProjectionsTotal.WithLabelValues("ok").Inc()
			return res, s.installArea(res.Origin, res.Rotated, "long-lat")
		}
	}
	metrics.ProjectionsTotal.WithLabelValues("rejected").Inc()
	return nil, err
}

// LoadMask derives the Area from a land mask image.
func (s *Session) LoadMask(img image.Image) (*contour.Result, error) {
	if err := s.lockEdit(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.toolDisabled(ToolAreaImage) {
		return nil, fmt.Errorf("%w: %s", ErrToolDisabled, ToolAreaImage)
	}
	res, err := contour.Boundary(img, s.opts.Mask)
	if err != nil {
		return nil, err
	}
	if err := s.installArea(geometry.Point{}, res.Polygon, "area-image"); err != nil {
		return nil, err
	}
	s.inscribed = res.Inscribed
	return res, nil
}

// installArea replaces any unfinished drawing with a closed Area.
func (s *Session) installArea(origin geometry.Point, local []geometry.Point, source string) error {
	a, err := shape.NewArea(origin, local)
	if err != nil {
		return err
	}
	abs := make([]geometry.Point, len(local))
	for i, p := range local {
		abs[i] = origin.Add(p)
	}
	if err := s.land.Polygon.LoadClosed(abs); err != nil {
		return err
	}
	s.doc.Area = a
	s.emit(EventShapesChanged, "area")
	s.setTool(ToolMouse)
	s.logger.Info("area_loaded", "source", source, "vertices", len(local))
	return nil
}

// SetReference loads a 256x256 reference image in place of the north
// marker.
func (s *Session) SetReference(r *raster.Raster) error {
	if err := raster.CheckSize(r); err != nil {
		return err
	}
	if err := s.lockEdit(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.toolDisabled(ToolImage) {
		return fmt.Errorf("%w: %s", ErrToolDisabled, ToolImage)
	}
	s.reference = r
	s.setTool(ToolMouse)
	s.emit(EventReferenceChanged, true)
	return nil
}

// scene assembles the renderable document. The unfinished outline is
// drawn for previews only, never for generation input.
func (s *Session) scene(preview bool) render.Scene {
	sc := render.Scene{North: s.descriptors.North}
	if s.reference != nil {
		sc.Reference = s.reference
	}
	if s.doc.Area != nil {
		sc.Area = s.doc.Area.Points()
	}
	if s.doc.Street != nil {
		r := s.doc.Street.Rect()
		sc.Street = &r
	}
	if preview && s.land.Polygon.State() == editor.StateOpen {
		sc.Outline = s.land.Polygon.Preview()
	}
	return sc
}

// Scene renders the current document.
func (s *Session) Scene() (*raster.Raster, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return render.Render(s.scene(true)), nil
}

// Generate renders the document, measures the land area and starts
// inference. The returned task may be awaited; its result is applied to the
// session when it finishes unless the session was cleared meanwhile.
func (s *Session) Generate() (*inference.Task, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	s.deselect()
	input := render.Render(s.scene(false))
	land := s.meter.Measure(input)
	metrics.MeasurementsTotal.WithLabelValues("land").Inc()

	gen := s.generation + 1
	task, err := s.runner.Submit(input, func(t *inference.Task) { s.finishGenerate(gen, t) })
	if err != nil {
		return nil, err
	}
	s.generation = gen
	s.busy = true
	s.input = input
	s.landArea = &land
	s.setTool(ToolMouse)
	s.emit(EventMeasurementChanged, "land")
	s.emit(EventBusyChanged, true)
	return task, nil
}

// finishGenerate applies a completed task. Results of superseded
// generations are dropped.
func (s *Session) finishGenerate(gen uint64, t *inference.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		s.logger.Debug("inference_discarded", "task", t.ID)
		return
	}
	s.busy = false
	s.emit(EventBusyChanged, false)

	out, err := t.Result()
	if err != nil {
		s.emit(EventGenerateFailed, err.Error())
		return
	}
	remaining := s.meter.Measure(out)
	metrics.MeasurementsTotal.WithLabelValues("remaining").Inc()
	s.output = out
	s.remaining = &remaining
	s.groundTruth = nil
	s.measuring.Reset()
	s.emit(EventOutputReady, remaining)
}

// Cancel aborts outstanding inference. The session stays as it was before
// Generate, apart from the land measurement.
func (s *Session) Cancel() (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	if !s.busy {
		return false, nil
	}
	s.runner.Cancel()
	s.generation++
	s.busy = false
	s.emit(EventBusyChanged, false)
	return true, nil
}

// Busy reports whether inference is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// SetGroundTruth measures a reference layout for comparison.
func (s *Session) SetGroundTruth(r *raster.Raster) (measure.Area, error) {
	if err := raster.CheckSize(r); err != nil {
		return measure.Area{}, err
	}
	if err := s.lock(); err != nil {
		return measure.Area{}, err
	}
	defer s.mu.Unlock()
	a := s.meter.Measure(r)
	metrics.MeasurementsTotal.WithLabelValues("ground_truth").Inc()
	s.groundTruth = &a
	s.emit(EventMeasurementChanged, "ground_truth")
	return a, nil
}
