package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImageCopies(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(10, 10, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	r := FromImage(src)
	assert.Equal(t, 4, r.Width())
	assert.Equal(t, 2, r.Height())
	assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 255}, r.NRGBAAt(0, 0))

	src.Set(10, 10, color.RGBA{A: 255})
	assert.Equal(t, uint8(9), r.NRGBAAt(0, 0).R, "raster must not alias its source")
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(Filled(Size, Size, color.NRGBA{A: 255})))
	err := CheckSize(Filled(255, 256, color.NRGBA{A: 255}))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestDecodeSized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Filled(Size, Size, color.NRGBA{R: 1, A: 255}).EncodePNG(&buf))
	r, err := DecodeSized(&buf)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 1, A: 255}, r.NRGBAAt(100, 100))

	buf.Reset()
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 32, 32))))
	_, err = DecodeSized(&buf)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = DecodeSized(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestResize(t *testing.T) {
	r := Resize(Filled(512, 512, color.NRGBA{G: 200, A: 255}), Size, Size)
	require.NoError(t, CheckSize(r))
	c := r.NRGBAAt(128, 128)
	assert.InDelta(t, 200, int(c.G), 1)
	assert.Equal(t, uint8(255), c.A)
}

func TestPixelsVisitsAll(t *testing.T) {
	n := 0
	Filled(3, 5, color.NRGBA{}).Pixels(func(x, y int, _ color.NRGBA) { n++ })
	assert.Equal(t, 15, n)
}

func TestTensorNormalization(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 255, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 0, B: 255, A: 10})

	tensor := ToTensor(FromImage(img))
	require.NoError(t, tensor.Validate())
	assert.Equal(t, []float32{-1, 1, -1, 1, -1, 1}, tensor.Data)

	back, err := FromTensor(tensor)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0, G: 255, B: 0, A: 255}, back.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 255, A: 255}, back.NRGBAAt(1, 0), "output is always opaque")
}

func TestFromTensorClampsAndTruncates(t *testing.T) {
	tensor := Tensor{Height: 1, Width: 2, Channels: 3, Data: []float32{0, 2, -3, float32(math.NaN()), 0.5, -0.5}}
	r, err := FromTensor(tensor)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 127, G: 255, B: 0, A: 255}, r.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0, G: 191, B: 63, A: 255}, r.NRGBAAt(1, 0))
}

func TestFromTensorRejectsBadShape(t *testing.T) {
	_, err := FromTensor(Tensor{Height: 2, Width: 2, Channels: 3, Data: make([]float32, 5)})
	assert.Error(t, err)
	_, err = FromTensor(Tensor{Height: 1, Width: 1, Channels: 4, Data: make([]float32, 4)})
	assert.Error(t, err)
}
