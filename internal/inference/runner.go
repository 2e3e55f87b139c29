package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"floorplan/internal/metrics"
	"floorplan/internal/raster"
)

var (
	// ErrBusy is returned by Submit while another task is outstanding.
	ErrBusy = errors.New("inference already in progress")
	// ErrCanceled is the result of a task cancelled before it finished.
	// Output produced after cancellation is discarded.
	ErrCanceled = errors.New("inference canceled")
	// ErrTimeout is the result of a task that exceeded the runner timeout.
	ErrTimeout = errors.New("inference timed out")
)

// DefaultTimeout bounds a single inference.
const DefaultTimeout = 60 * time.Second

var taskSeq atomic.Uint64

// Task is one asynchronous inference.
type Task struct {
	ID      uint64
	Started time.Time

	cancel context.CancelFunc
	done   chan struct{}
	out    *raster.Raster
	err    error
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result returns the output raster or the failure. It must only be called
// after Done is closed.
func (t *Task) Result() (*raster.Raster, error) { return t.out, t.err }

// Wait blocks until the task finishes or ctx ends. Ending ctx does not
// cancel the task.
func (t *Task) Wait(ctx context.Context) (*raster.Raster, error) {
	select {
	case <-t.done:
		return t.out, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the task. It is safe to call more than once.
func (t *Task) Cancel() { t.cancel() }

// Runner executes at most one inference at a time.
type Runner struct {
	model   Model
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	current *Task
}

// NewRunner wraps model. A non-positive timeout uses DefaultTimeout.
func NewRunner(model Model, timeout time.Duration, logger *slog.Logger) *Runner {
	if model == nil {
		model = Unavailable
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{model: model, timeout: timeout, logger: logger}
}

// Busy reports whether a task is outstanding.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Cancel aborts the outstanding task, if any, and frees the runner for
// new work at once. The cancelled task still finishes with ErrCanceled.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	t := r.current
	r.current = nil
	r.mu.Unlock()
	if t == nil {
		return false
	}
	t.Cancel()
	r.logger.Info("inference_canceled", "task", t.ID)
	return true
}

// Submit starts inference on in. The raster is normalized into [-1, 1]
// before the call and the output is denormalized into a fresh 256x256
// raster. then, when non-nil, runs on the task goroutine after the result
// is set and before the runner accepts new work, unless the task was
// cancelled through the runner.
func (r *Runner) Submit(in *raster.Raster, then func(*Task)) (*Task, error) {
	if err := raster.CheckSize(in); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		metrics.InferenceTotal.WithLabelValues(metrics.OutcomeBusy).Inc()
		return nil, ErrBusy
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	t := &Task{
		ID:      taskSeq.Add(1),
		Started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	r.current = t
	r.mu.Unlock()

	metrics.InferenceInFlight.Inc()
	r.logger.Info("inference_started", "task", t.ID)
	tensor := raster.ToTensor(in)

	go func() {
		defer cancel()
		out, err := r.run(ctx, tensor)
		t.out, t.err = out, err

		elapsed := time.Since(t.Started)
		outcome := outcomeOf(err)
		metrics.InferenceInFlight.Dec()
		metrics.InferenceTotal.WithLabelValues(outcome).Inc()
		metrics.InferenceDurationMs.Observe(float64(elapsed.Milliseconds()))
		if err != nil {
			r.logger.Warn("inference_failed", "task", t.ID, "outcome", outcome, "ms", elapsed.Milliseconds(), "error", err)
		} else {
			r.logger.Info("inference_done", "task", t.ID, "ms", elapsed.Milliseconds())
		}

		if then != nil {
			then(t)
		}
		r.mu.Lock()
		if r.current == t {
			r.current = nil
		}
		r.mu.Unlock()
		close(t.done)
	}()
	return t, nil
}

type inferResult struct {
	out raster.Tensor
	err error
}

// run bounds the model call by ctx even when the model ignores it. A
// result that arrives after cancellation or timeout is dropped.
func (r *Runner) run(ctx context.Context, in raster.Tensor) (*raster.Raster, error) {
	resc := make(chan inferResult, 1)
	go func() {
		out, err := r.model.Infer(ctx, in)
		resc <- inferResult{out: out, err: err}
	}()

	var res raster.Tensor
	var err error
	select {
	case got := <-resc:
		res, err = got.out, got.err
	case <-ctx.Done():
	}
	switch ctx.Err() {
	case context.Canceled:
		return nil, ErrCanceled
	case context.DeadlineExceeded:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	}
	if err != nil {
		if errors.Is(err, ErrModel) || errors.Is(err, ErrNoModel) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}
	out, err := raster.FromTensor(res)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}
	if err := raster.CheckSize(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}
	return out, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrCanceled):
		return metrics.OutcomeCanceled
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
