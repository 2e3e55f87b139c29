// Package metrics holds the Prometheus collectors of the floor-plan service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Inference outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomeBusy     = "busy"
)

var (
	InferenceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_inference_total",
		Help: "Model inference requests by outcome",
	}, []string{"outcome"})
	InferenceDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "floorplan_inference_duration_ms",
		Help:    "Model inference duration in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})
	InferenceInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "floorplan_inference_in_flight",
		Help: "Inference tasks currently running",
	})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "floorplan_sessions_active",
		Help: "Open editing sessions",
	})
	MeasurementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_measurements_total",
		Help: "Raster measurements by kind",
	}, []string{"kind"})
	ProjectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_projections_total",
		Help: "Geographic ring projections by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(InferenceTotal)
	prometheus.MustRegister(InferenceDurationMs)
	prometheus.MustRegister(InferenceInFlight)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(MeasurementsTotal)
	prometheus.MustRegister(ProjectionsTotal)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
