package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"floorplan/internal/raster"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// HTTPModel calls a TensorFlow-Serving style REST predict endpoint:
// POST {base}/v1/models/{name}:predict with {"instances": [HxWxC]}.
type HTTPModel struct {
	base   string
	name   string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPModel returns a client for the model name served under base.
// A nil client uses http.DefaultClient; timeouts come from the caller's
// context.
func NewHTTPModel(base, name string, client *http.Client, logger *slog.Logger) *HTTPModel {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPModel{
		base:   strings.TrimRight(base, "/"),
		name:   name,
		client: client,
		logger: logger,
	}
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][][][]float32 `json:"predictions"`
	Error       string          `json:"error,omitempty"`
}

// Endpoint returns the predict URL.
func (m *HTTPModel) Endpoint() string {
	return fmt.Sprintf("%s/v1/models/%s:predict", m.base, m.name)
}

func (m *HTTPModel) Infer(ctx context.Context, in raster.Tensor) (raster.Tensor, error) {
	if err := in.Validate(); err != nil {
		return raster.Tensor{}, err
	}
	body, err := json.Marshal(predictRequest{Instances: [][][][]float32{nest(in)}})
	if err != nil {
		return raster.Tensor{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return raster.Tensor{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return raster.Tensor{}, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		m.logger.Warn("model_http_error", "status", resp.StatusCode, "endpoint", m.Endpoint())
		return raster.Tensor{}, fmt.Errorf("%w: status %d: %s", ErrModel, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return raster.Tensor{}, fmt.Errorf("%w: decode response: %v", ErrModel, err)
	}
	if out.Error != "" {
		return raster.Tensor{}, fmt.Errorf("%w: %s", ErrModel, out.Error)
	}
	if len(out.Predictions) != 1 {
		return raster.Tensor{}, fmt.Errorf("%w: got %d predictions, want 1", ErrModel, len(out.Predictions))
	}
	t, err := flatten(out.Predictions[0])
	if err != nil {
		return raster.Tensor{}, fmt.Errorf("%w: %v", ErrModel, err)
	}
	return t, nil
}

// nest reshapes the flat tensor into [H][W][C].
func nest(t raster.Tensor) [][][]float32 {
	rows := make([][][]float32, t.Height)
	i := 0
	for y := range rows {
		rows[y] = make([][]float32, t.Width)
		for x := range rows[y] {
			rows[y][x] = t.Data[i : i+t.Channels : i+t.Channels]
			i += t.Channels
		}
	}
	return rows
}

func flatten(rows [][][]float32) (raster.Tensor, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return raster.Tensor{}, fmt.Errorf("empty prediction")
	}
	t := raster.Tensor{Height: len(rows), Width: len(rows[0]), Channels: len(rows[0][0])}
	t.Data = make([]float32, 0, t.Height*t.Width*t.Channels)
	for y, row := range rows {
		if len(row) != t.Width {
			return raster.Tensor{}, fmt.Errorf("row %d has %d pixels, want %d", y, len(row), t.Width)
		}
		for x, px := range row {
			if len(px) != t.Channels {
				return raster.Tensor{}, fmt.Errorf("pixel (%d,%d) has %d channels, want %d", x, y, len(px), t.Channels)
			}
			t.Data = append(t.Data, px...)
		}
	}
	return t, t.Validate()
}
