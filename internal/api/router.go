// Package api exposes floor-plan sessions over HTTP and websocket.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"floorplan/internal/logger"
	"floorplan/internal/measure"
	"floorplan/internal/metrics"
	"floorplan/internal/session"
	"floorplan/internal/version"
)

// DefaultMaxUpload bounds multipart image uploads.
const DefaultMaxUpload = 8 << 20

// Server holds the handlers and their dependencies.
type Server struct {
	registry   *session.Registry
	meter      measure.AreaMeter
	classifier *measure.Classifier
	maxUpload  int64
	logger     *slog.Logger
	router     *mux.Router
}

// NewServer wires every route. opts supplies the calibration used by the
// session-less measurement endpoint.
func NewServer(registry *session.Registry, opts session.Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		registry:   registry,
		meter:      measure.NewAreaMeter(opts.BlackThreshold, opts.PixelsPerMeter),
		classifier: measure.NewClassifier(opts.ZoneThreshold),
		maxUpload:  DefaultMaxUpload,
		logger:     log,
		router:     mux.NewRouter(),
	}
	s.routes()
	s.router.Use(mux.MiddlewareFunc(logger.AccessMiddleware(log)))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/health/live", s.handleLive).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/zones", s.handleZones).Methods(http.MethodGet)
	v1.HandleFunc("/project", s.handleProject).Methods(http.MethodPost)
	v1.HandleFunc("/measure", s.handleMeasure).Methods(http.MethodPost)

	v1.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	sr := v1.PathPrefix("/sessions/{id}").Subrouter()
	sr.HandleFunc("", s.withSession(s.handleGetSession)).Methods(http.MethodGet)
	sr.HandleFunc("", s.withSession(s.handleDeleteSession)).Methods(http.MethodDelete)
	sr.HandleFunc("/tool", s.withSession(s.handleTool)).Methods(http.MethodPost)
	sr.HandleFunc("/pointer", s.withSession(s.handlePointer)).Methods(http.MethodPost)
	sr.HandleFunc("/key", s.withSession(s.handleKey)).Methods(http.MethodPost)
	sr.HandleFunc("/select", s.withSession(s.handleSelect)).Methods(http.MethodPost)
	sr.HandleFunc("/gesture", s.withSession(s.handleGesture)).Methods(http.MethodPost)
	sr.HandleFunc("/foot-length", s.withSession(s.handleFootLength)).Methods(http.MethodPost)
	sr.HandleFunc("/descriptors", s.withSession(s.handleDescriptors)).Methods(http.MethodPost)
	sr.HandleFunc("/geo", s.withSession(s.handleGeo)).Methods(http.MethodPost)
	sr.HandleFunc("/image", s.withSession(s.handleImage)).Methods(http.MethodPost)
	sr.HandleFunc("/mask", s.withSession(s.handleMask)).Methods(http.MethodPost)
	sr.HandleFunc("/ground-truth", s.withSession(s.handleGroundTruth)).Methods(http.MethodPost)
	sr.HandleFunc("/generate", s.withSession(s.handleGenerate)).Methods(http.MethodPost)
	sr.HandleFunc("/cancel", s.withSession(s.handleCancel)).Methods(http.MethodPost)
	sr.HandleFunc("/measurement/reset", s.withSession(s.handleResetMeasurement)).Methods(http.MethodPost)
	sr.HandleFunc("/scene.png", s.withSession(s.handleScenePNG)).Methods(http.MethodGet)
	sr.HandleFunc("/output.png", s.withSession(s.handleOutputPNG)).Methods(http.MethodGet)
	sr.HandleFunc("/zone", s.withSession(s.handleZone)).Methods(http.MethodGet)
	sr.HandleFunc("/histogram", s.withSession(s.handleHistogram)).Methods(http.MethodGet)
	sr.HandleFunc("/ws", s.withSession(s.handleWebSocket)).Methods(http.MethodGet)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves the {id} path variable.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.registry.Get(mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "sessions": s.registry.Len()})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}
