package raster

import (
	"fmt"
	"image"
	"math"
)

// Channels is the number of color channels the model consumes.
const Channels = 3

// Tensor is a dense HxWxC float32 array in row-major, channel-last order.
type Tensor struct {
	Height   int       `json:"height"`
	Width    int       `json:"width"`
	Channels int       `json:"channels"`
	Data     []float32 `json:"data"`
}

// Validate checks that the data length matches the shape.
func (t Tensor) Validate() error {
	if t.Height <= 0 || t.Width <= 0 || t.Channels != Channels {
		return fmt.Errorf("invalid tensor shape %dx%dx%d", t.Height, t.Width, t.Channels)
	}
	if len(t.Data) != t.Height*t.Width*t.Channels {
		return fmt.Errorf("tensor has %d values, want %d", len(t.Data), t.Height*t.Width*t.Channels)
	}
	return nil
}

// ToTensor drops alpha and scales each channel into [-1, 1] as v/127.5 - 1.
func ToTensor(r *Raster) Tensor {
	w, h := r.Width(), r.Height()
	t := Tensor{Height: h, Width: w, Channels: Channels, Data: make([]float32, 0, w*h*Channels)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := r.img.NRGBAAt(x, y)
			t.Data = append(t.Data,
				float32(float64(c.R)/127.5-1),
				float32(float64(c.G)/127.5-1),
				float32(float64(c.B)/127.5-1),
			)
		}
	}
	return t
}

// FromTensor builds a fresh opaque raster from model output in [-1, 1]:
// (v*0.5 + 0.5) * 255, truncated toward zero and clamped to [0, 255].
func FromTensor(t Tensor) (*Raster, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, j := 0, 0; i < len(t.Data); i, j = i+Channels, j+4 {
		for c := 0; c < Channels; c++ {
			img.Pix[j+c] = denormalize(t.Data[i+c])
		}
		img.Pix[j+3] = 255
	}
	return &Raster{img: img}, nil
}

func denormalize(v float32) uint8 {
	f := math.Trunc((float64(v)*0.5 + 0.5) * 255)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 255:
		return 255
	}
	return uint8(f)
}
