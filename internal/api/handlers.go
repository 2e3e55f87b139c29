package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"floorplan/internal/geoproj"
	"floorplan/internal/measure"
	"floorplan/internal/metrics"
	"floorplan/internal/raster"
	"floorplan/internal/session"
	"floorplan/internal/shape"
	"floorplan/pkg/geometry"
)

// maxJSONBody bounds geographic ring uploads.
const maxJSONBody = 1 << 20

type zoneView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	out := make([]zoneView, 0, len(s.classifier.Zones))
	for _, z := range s.classifier.Zones {
		out = append(out, zoneView{ID: z.ID, Name: z.Name, Color: z.Hex()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		s.writeError(w, r, badRequest("read body: %v", err))
		return
	}
	ring, err := geoproj.ParseRing(data)
	if err != nil {
		metrics.ProjectionsTotal.WithLabelValues("rejected").Inc()
		s.writeError(w, r, err)
		return
	}
	res, err := geoproj.Project(ring)
	if err != nil {
		metrics.ProjectionsTotal.WithLabelValues("rejected").Inc()
		s.writeError(w, r, err)
		return
	}
	metrics.ProjectionsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

type measureResponse struct {
	Area      measure.Area       `json:"area"`
	Histogram []measure.ZoneArea `json:"histogram"`
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	img, err := s.formRaster(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.MeasurementsTotal.WithLabelValues("upload").Inc()
	writeJSON(w, http.StatusOK, measureResponse{
		Area:      s.meter.Measure(img),
		Histogram: s.meter.Histogram(s.classifier, img),
	})
}

// formRaster decodes the multipart "file" field as a 256x256 raster.
func (s *Server) formRaster(w http.ResponseWriter, r *http.Request) (*raster.Raster, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return nil, badRequest("multipart form: %v", err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, badRequest("missing file field: %v", err)
	}
	defer f.Close()
	img, err := raster.DecodeSized(f)
	if err != nil && !errors.Is(err, raster.ErrSizeMismatch) && !errors.Is(err, raster.ErrEmpty) {
		return nil, badRequest("%v", err)
	}
	return img, err
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.registry.Delete(sess.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reply writes the snapshot after a successful command.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type toolRequest struct {
	Tool session.Tool `json:"tool"`
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req toolRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, sess, sess.SetTool(req.Tool))
}

// Pointer targets and actions.
const (
	targetDocument = "document"
	targetOutput   = "output"

	actionMove = "move"
	actionDown = "down"
	actionZoom = "zoom"
	actionPan  = "pan"
)

type pointerRequest struct {
	Target string  `json:"target"`
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	// In selects zoom direction for the zoom action.
	In bool `json:"in"`
}

type outputPointerResponse struct {
	Probe     *session.Probe       `json:"probe,omitempty"`
	Closed    bool                 `json:"closed"`
	Distances []measure.Annotation `json:"distances"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req pointerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	pt := geometry.Point{X: req.X, Y: req.Y}
	switch req.Target {
	case "", targetDocument:
		var err error
		switch req.Action {
		case actionMove:
			err = sess.PointerMove(pt)
		case actionDown:
			err = sess.PointerDown(pt)
		case actionZoom:
			err = sess.Zoom(pt, req.In)
		case actionPan:
			err = sess.Pan(pt)
		default:
			err = badRequest("unknown pointer action %q", req.Action)
		}
		s.reply(w, r, sess, err)
	case targetOutput:
		var resp outputPointerResponse
		var err error
		switch req.Action {
		case actionMove:
			var p session.Probe
			if p, err = sess.OutputPointerMove(pt); err == nil {
				resp.Probe = &p
			}
		case actionDown:
			resp.Closed, err = sess.OutputPointerDown(pt)
		case actionZoom:
			err = sess.OutputZoom(pt, req.In)
		default:
			err = badRequest("unknown output pointer action %q", req.Action)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Distances = sess.Distances()
		writeJSON(w, http.StatusOK, resp)
	default:
		s.writeError(w, r, badRequest("unknown pointer target %q", req.Target))
	}
}

type keyRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req keyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, sess, sess.Key(req.Key))
}

type selectRequest struct {
	Kind string `json:"kind"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	k, err := shape.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	s.reply(w, r, sess, sess.Select(k))
}

func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var g session.Gesture
	if err := decodeJSON(r, &g); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, sess, sess.Gesture(g))
}

type footLengthRequest struct {
	Centimeters float64 `json:"centimeters"`
}

func (s *Server) handleFootLength(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req footLengthRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, sess, sess.SetFootLength(req.Centimeters))
}

func (s *Server) handleDescriptors(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var d session.Descriptors
	if err := decodeJSON(r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, sess, sess.SetDescriptors(d))
}

func (s *Server) handleGeo(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		s.writeError(w, r, badRequest("read body: %v", err))
		return
	}
	res, err := sess.LoadGeo(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	img, err := s.formRaster(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, sess, sess.SetReference(img))
}

func (s *Server) handleMask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	img, err := s.formRaster(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := sess.LoadMask(img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGroundTruth(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	img, err := s.formRaster(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := sess.SetGroundTruth(img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type generateResponse struct {
	Task uint64           `json:"task"`
	Snap session.Snapshot `json:"session"`
}

// handleGenerate starts inference. With ?wait=true it blocks until the
// task finishes or the client goes away; the task itself keeps running in
// the latter case.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	task, err := sess.Generate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		writeJSON(w, http.StatusAccepted, generateResponse{Task: task.ID, Snap: sess.Snapshot()})
		return
	}
	if _, err := task.Wait(r.Context()); err != nil {
		if errors.Is(err, r.Context().Err()) {
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Task: task.ID, Snap: sess.Snapshot()})
}

type cancelResponse struct {
	Canceled bool `json:"canceled"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ok, err := sess.Cancel()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{Canceled: ok})
}

func (s *Server) handleResetMeasurement(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.reply(w, r, sess, sess.ResetMeasurement())
}

func (s *Server) handleScenePNG(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	img, err := sess.Scene()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePNG(w, img)
}

func (s *Server) handleOutputPNG(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	annotated, _ := strconv.ParseBool(r.URL.Query().Get("annotated"))
	img, err := sess.Output(annotated)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePNG(w, img)
}

func (s *Server) writePNG(w http.ResponseWriter, img *raster.Raster) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := img.EncodePNG(w); err != nil {
		s.logger.Warn("png_encode_failed", "error", err)
	}
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		s.writeError(w, r, badRequest("x and y must be integers"))
		return
	}
	if x < 0 || y < 0 || x >= raster.Size || y >= raster.Size {
		s.writeError(w, r, badRequest("pixel %d,%d outside %dx%d raster", x, y, raster.Size, raster.Size))
		return
	}
	p, err := sess.Zone(x, y)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	h, err := sess.Histogram()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}
