// Package inference runs the image-to-image layout model. The model is a
// black box mapping a 256x256x3 tensor in [-1, 1] to another one; Runner
// wraps it in a single-flight asynchronous task with a timeout and a
// cancellation path.
package inference

import (
	"context"
	"errors"

	"floorplan/internal/raster"
)

var (
	// ErrModel wraps failures reported by the model backend.
	ErrModel = errors.New("model inference failed")
	// ErrNoModel is returned when no backend is configured.
	ErrNoModel = errors.New("no model configured")
)

// Model performs one inference.
type Model interface {
	Infer(ctx context.Context, in raster.Tensor) (raster.Tensor, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, in raster.Tensor) (raster.Tensor, error)

func (f ModelFunc) Infer(ctx context.Context, in raster.Tensor) (raster.Tensor, error) {
	return f(ctx, in)
}

// Unavailable is the Model used when no backend URL is configured.
var Unavailable Model = ModelFunc(func(context.Context, raster.Tensor) (raster.Tensor, error) {
	return raster.Tensor{}, ErrNoModel
})
