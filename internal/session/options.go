package session

import (
	"time"

	"floorplan/internal/config"
	"floorplan/internal/editor"
	"floorplan/internal/mask/contour"
	"floorplan/internal/measure"
	"floorplan/internal/shape"
)

// Options are the per-session calibration and editor parameters.
type Options struct {
	HoverRadius    float64
	ZoomStep       float64
	StreetWidth    float64
	StreetHeight   float64
	MinStreetWidth float64

	FootLength    float64
	MinFootLength float64

	ZoneThreshold   int
	BlackThreshold  int
	PixelsPerMeter  float64
	DistanceDivisor float64

	Mask         contour.Params
	ModelTimeout time.Duration
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return Options{
		HoverRadius:     editor.DefaultHoverRadius,
		ZoomStep:        editor.DefaultZoomStep,
		StreetWidth:     shape.DefaultStreetWidth,
		StreetHeight:    shape.DefaultStreetHeight,
		MinStreetWidth:  shape.MinStreetWidth,
		FootLength:      measure.DefaultFootLength,
		MinFootLength:   1,
		ZoneThreshold:   measure.DefaultZoneThreshold,
		BlackThreshold:  measure.DefaultBlackThreshold,
		PixelsPerMeter:  measure.DefaultPixelsPerMeter,
		DistanceDivisor: measure.DefaultDistanceDivisor,
		Mask:            contour.DefaultParams(),
		ModelTimeout:    60 * time.Second,
	}
}

// OptionsFromConfig copies the relevant configuration values.
func OptionsFromConfig(c *config.Config) Options {
	o := DefaultOptions()
	o.HoverRadius = c.Editor.HoverRadius
	o.ZoomStep = c.Editor.ZoomStep
	o.StreetWidth = c.Editor.StreetWidth
	o.StreetHeight = c.Editor.StreetHeight
	o.MinStreetWidth = c.Editor.MinStreetWidth
	o.FootLength = c.DefaultFootLength
	o.MinFootLength = c.MinFootLength
	o.ZoneThreshold = c.Measure.ZoneThreshold
	o.BlackThreshold = c.Measure.BlackThreshold
	o.PixelsPerMeter = c.Measure.PixelsPerMeter
	o.DistanceDivisor = c.Measure.DistanceDivisor
	o.ModelTimeout = c.Model.Timeout.Duration
	return o
}
