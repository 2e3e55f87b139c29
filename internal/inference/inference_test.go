package inference

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan/internal/raster"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(discardWriter{}, nil)) }

func scene() *raster.Raster {
	return raster.Filled(raster.Size, raster.Size, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

// invert maps v to -v, which turns white into black.
var invert = ModelFunc(func(_ context.Context, in raster.Tensor) (raster.Tensor, error) {
	out := in
	out.Data = make([]float32, len(in.Data))
	for i, v := range in.Data {
		out.Data[i] = -v
	}
	return out, nil
})

func waitResult(t *testing.T, task *Task) (*raster.Raster, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "task did not finish")
	return out, err
}

func TestRunnerRoundTrip(t *testing.T) {
	r := NewRunner(invert, time.Second, discardLogger())
	var seen *Task
	task, err := r.Submit(scene(), func(done *Task) { seen = done })
	require.NoError(t, err)

	out, err := waitResult(t, task)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 255}, out.NRGBAAt(10, 10))
	assert.Same(t, task, seen)
	assert.False(t, r.Busy())
}

func TestRunnerSingleFlight(t *testing.T) {
	release := make(chan struct{})
	blocking := ModelFunc(func(ctx context.Context, in raster.Tensor) (raster.Tensor, error) {
		<-release
		return in, nil
	})
	r := NewRunner(blocking, time.Second, discardLogger())

	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)
	assert.True(t, r.Busy())

	_, err = r.Submit(scene(), nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	_, err = waitResult(t, task)
	require.NoError(t, err)

	again, err := r.Submit(scene(), nil)
	require.NoError(t, err, "runner accepts work once the task is done")
	_, _ = waitResult(t, again)
}

func TestRunnerCancelDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	// Ignores ctx and returns a result after cancellation.
	stubborn := ModelFunc(func(ctx context.Context, in raster.Tensor) (raster.Tensor, error) {
		close(started)
		<-release
		return in, nil
	})
	r := NewRunner(stubborn, time.Minute, discardLogger())
	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)

	<-started
	assert.True(t, r.Cancel())
	close(release)

	out, err := waitResult(t, task)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Nil(t, out)
	assert.False(t, r.Cancel(), "nothing left to cancel")
}

func TestRunnerTimeout(t *testing.T) {
	slow := ModelFunc(func(ctx context.Context, in raster.Tensor) (raster.Tensor, error) {
		<-ctx.Done()
		return raster.Tensor{}, ctx.Err()
	})
	r := NewRunner(slow, 20*time.Millisecond, discardLogger())
	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)

	_, err = waitResult(t, task)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRunnerTimeoutWhenModelIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	deaf := ModelFunc(func(_ context.Context, in raster.Tensor) (raster.Tensor, error) {
		<-release
		return in, nil
	})
	r := NewRunner(deaf, 20*time.Millisecond, discardLogger())
	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)

	out, err := waitResult(t, task)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, out)
	assert.False(t, r.Busy())
}

func TestRunnerAcceptsWorkRightAfterCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	hanging := ModelFunc(func(_ context.Context, in raster.Tensor) (raster.Tensor, error) {
		<-release
		return in, nil
	})
	r := NewRunner(hanging, time.Minute, discardLogger())
	first, err := r.Submit(scene(), nil)
	require.NoError(t, err)

	require.True(t, r.Cancel())
	assert.False(t, r.Busy())

	second, err := r.Submit(scene(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = waitResult(t, first)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.True(t, r.Busy(), "the finished first task must not free the second task's slot")
	second.Cancel()
	_, err = waitResult(t, second)
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestRunnerModelFailure(t *testing.T) {
	broken := ModelFunc(func(context.Context, raster.Tensor) (raster.Tensor, error) {
		return raster.Tensor{}, errors.New("out of memory")
	})
	r := NewRunner(broken, time.Second, discardLogger())
	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)

	out, err := waitResult(t, task)
	assert.ErrorIs(t, err, ErrModel)
	assert.Nil(t, out)
}

func TestRunnerRejectsWrongOutputShape(t *testing.T) {
	tiny := ModelFunc(func(context.Context, raster.Tensor) (raster.Tensor, error) {
		return raster.Tensor{Height: 2, Width: 2, Channels: 3, Data: make([]float32, 12)}, nil
	})
	r := NewRunner(tiny, time.Second, discardLogger())
	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)

	_, err = waitResult(t, task)
	assert.ErrorIs(t, err, ErrModel)
	assert.ErrorContains(t, err, "256x256")
}

func TestRunnerRejectsWrongInputSize(t *testing.T) {
	r := NewRunner(invert, time.Second, discardLogger())
	_, err := r.Submit(raster.Filled(10, 10, color.NRGBA{A: 255}), nil)
	assert.ErrorIs(t, err, raster.ErrSizeMismatch)
	assert.False(t, r.Busy())
}

func TestRunnerWithoutModel(t *testing.T) {
	r := NewRunner(nil, time.Second, discardLogger())
	task, err := r.Submit(scene(), nil)
	require.NoError(t, err)
	_, err = waitResult(t, task)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestHTTPModelPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/floorplan:predict", r.URL.Path)
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Instances, 1)
		_ = json.NewEncoder(w).Encode(predictResponse{Predictions: req.Instances})
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL+"/", "floorplan", srv.Client(), discardLogger())
	in := raster.Tensor{Height: 2, Width: 1, Channels: 3, Data: []float32{-1, 0, 1, 0.5, 0.25, -0.5}}
	out, err := m.Infer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHTTPModelErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, "floorplan", nil, discardLogger())
	in := raster.Tensor{Height: 1, Width: 1, Channels: 3, Data: []float32{0, 0, 0}}
	_, err := m.Infer(context.Background(), in)
	assert.ErrorIs(t, err, ErrModel)
	assert.ErrorContains(t, err, "model not loaded")
}

func TestHTTPModelRaggedPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[[[[0,0,0]],[[0,0,0],[1,1,1]]]]}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, "floorplan", nil, discardLogger())
	in := raster.Tensor{Height: 1, Width: 1, Channels: 3, Data: []float32{0, 0, 0}}
	_, err := m.Infer(context.Background(), in)
	assert.ErrorIs(t, err, ErrModel)
}
