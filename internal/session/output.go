package session

import (
	"floorplan/internal/editor"
	"floorplan/internal/measure"
	"floorplan/internal/metrics"
	"floorplan/internal/raster"
	"floorplan/internal/render"
	"floorplan/pkg/colorutil"
	"floorplan/pkg/geometry"
)

// Probe is the zone under the pointer on the output raster.
type Probe struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Zone  string `json:"zone"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color"`
}

// OutputPointerMove tracks the pointer over the output raster. It updates
// the measurement preview and returns the zone under the pointer.
func (s *Session) OutputPointerMove(screen geometry.Point) (Probe, error) {
	if err := s.lock(); err != nil {
		return Probe{}, err
	}
	defer s.mu.Unlock()
	if s.output == nil {
		return Probe{}, ErrNoOutput
	}
	canvas := s.measuring.PointerMove(screen)
	return s.probe(int(canvas.X), int(canvas.Y)), nil
}

// OutputPointerDown adds a vertex to the measurement polygon.
func (s *Session) OutputPointerDown(screen geometry.Point) (closed bool, err error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	if s.output == nil {
		return false, ErrNoOutput
	}
	closed, err = s.measuring.PointerDown(screen)
	if err != nil {
		return false, err
	}
	s.emit(EventMeasurementChanged, "distances")
	return closed, nil
}

// OutputZoom scales the output view about the pointer.
func (s *Session) OutputZoom(pointer geometry.Point, in bool) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.output == nil {
		return ErrNoOutput
	}
	s.measuring.View.Zoom(pointer, in)
	s.emit(EventViewChanged, viewOf(s.measuring.View))
	return nil
}

// ResetMeasurement discards the measurement polygon.
func (s *Session) ResetMeasurement() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.measuring.Polygon.Reset()
	s.emit(EventMeasurementChanged, "distances")
	return nil
}

// Zone classifies the output pixel at x, y.
func (s *Session) Zone(x, y int) (Probe, error) {
	if err := s.lock(); err != nil {
		return Probe{}, err
	}
	defer s.mu.Unlock()
	if s.output == nil {
		return Probe{}, ErrNoOutput
	}
	return s.probe(x, y), nil
}

func (s *Session) probe(x, y int) Probe {
	p := Probe{X: x, Y: y, Zone: measure.UnknownZone}
	if s.output.InBounds(x, y) {
		p.Color = colorutil.FromColor(s.output.NRGBAAt(x, y)).Hex()
	}
	if z, ok := s.classifier.Sample(s.output, x, y); ok {
		p.Zone, p.Name = z.ID, z.Name
	}
	return p
}

// Distances labels the measurement polygon, including the preview edge
// while it is open and the closing edge once closed.
func (s *Session) Distances() []measure.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distances()
}

func (s *Session) distances() []measure.Annotation {
	p := s.measuring.Polygon
	return s.ruler.Annotate(p.Preview(), p.State() == editor.StateClosed)
}

// Histogram breaks the output raster down by zone.
func (s *Session) Histogram() ([]measure.ZoneArea, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.output == nil {
		return nil, ErrNoOutput
	}
	metrics.MeasurementsTotal.WithLabelValues("histogram").Inc()
	return s.meter.Histogram(s.classifier, s.output), nil
}

// Output returns the generated raster. annotated draws the measurement
// polygon and its labels on a copy.
func (s *Session) Output(annotated bool) (*raster.Raster, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.output == nil {
		return nil, ErrNoOutput
	}
	if !annotated {
		return s.output, nil
	}
	p := s.measuring.Polygon
	return render.Annotate(s.output, p.Preview(), p.State() == editor.StateClosed, s.distances()), nil
}
