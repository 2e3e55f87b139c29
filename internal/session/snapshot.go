package session

import (
	"floorplan/internal/editor"
	"floorplan/internal/measure"
	"floorplan/pkg/geometry"
)

// View is a viewport's scale and pan.
type View struct {
	Scale  float64        `json:"scale"`
	Offset geometry.Point `json:"offset"`
}

func viewOf(v *editor.Viewport) View {
	return View{Scale: v.Scale, Offset: v.Offset}
}

// Drawing is a polygon editor's state.
type Drawing struct {
	State  string           `json:"state"`
	Points []geometry.Point `json:"points"`
	Cursor *geometry.Point  `json:"cursor,omitempty"`
	Hover  bool             `json:"hover_on_close_point"`
	View   View             `json:"view"`
}

func drawingOf(s *editor.Surface) Drawing {
	d := Drawing{
		State:  s.Polygon.State().String(),
		Points: s.Polygon.Points(),
		Hover:  s.Polygon.HoverOnClosePoint(),
		View:   viewOf(s.View),
	}
	if c, ok := s.Polygon.Cursor(); ok {
		d.Cursor = &c
	}
	return d
}

// AreaState is the committed Area plus any transient gesture scale.
type AreaState struct {
	Origin       geometry.Point   `json:"origin"`
	Local        []geometry.Point `json:"local"`
	Points       []geometry.Point `json:"points"`
	ScaleX       float64          `json:"scale_x"`
	ScaleY       float64          `json:"scale_y"`
	Transforming bool             `json:"transforming"`
}

// StreetState is the committed Street rectangle and its rendered rect.
type StreetState struct {
	Base         geometry.Rect `json:"base"`
	Rect         geometry.Rect `json:"rect"`
	Transforming bool          `json:"transforming"`
}

// Measurements holds the three area readings.
type Measurements struct {
	Land        *measure.Area `json:"land,omitempty"`
	Remaining   *measure.Area `json:"remaining,omitempty"`
	GroundTruth *measure.Area `json:"ground_truth,omitempty"`
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	ID            string               `json:"id"`
	Tool          Tool                 `json:"tool"`
	DisabledTools []Tool               `json:"disabled_tools"`
	Busy          bool                 `json:"busy"`
	Selected      string               `json:"selected"`
	Drawing       Drawing              `json:"drawing"`
	Area          *AreaState           `json:"area,omitempty"`
	Street        *StreetState         `json:"street,omitempty"`
	HasReference  bool                 `json:"has_reference"`
	Inscribed     *geometry.Rect       `json:"inscribed,omitempty"`
	Descriptors   Descriptors          `json:"descriptors"`
	FootLength    float64              `json:"foot_length"`
	Measurements  Measurements         `json:"measurements"`
	HasOutput     bool                 `json:"has_output"`
	Measuring     *Drawing             `json:"measuring,omitempty"`
	Distances     []measure.Annotation `json:"distances,omitempty"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.ID,
		Tool:          s.tool,
		DisabledTools: s.disabledTools(),
		Busy:          s.busy,
		Selected:      s.doc.Selected().String(),
		Drawing:       drawingOf(s.land),
		HasReference:  s.reference != nil,
		Inscribed:     s.inscribed,
		Descriptors:   s.descriptors,
		FootLength:    s.ruler.FootLength,
		Measurements: Measurements{
			Land:        s.landArea,
			Remaining:   s.remaining,
			GroundTruth: s.groundTruth,
		},
		HasOutput: s.output != nil,
	}
	if a := s.doc.Area; a != nil {
		sx, sy := a.Scale()
		snap.Area = &AreaState{
			Origin:       a.Origin(),
			Local:        a.Local(),
			Points:       a.Points(),
			ScaleX:       sx,
			ScaleY:       sy,
			Transforming: a.Transforming(),
		}
	}
	if st := s.doc.Street; st != nil {
		snap.Street = &StreetState{Base: st.Base(), Rect: st.Rect(), Transforming: st.Transforming()}
	}
	if s.output != nil {
		m := drawingOf(s.measuring)
		snap.Measuring = &m
		snap.Distances = s.distances()
	}
	return snap
}
