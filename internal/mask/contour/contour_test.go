package contour

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareMask() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(64, 64, 192, 192), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

func TestBoundarySquare(t *testing.T) {
	res, err := Boundary(squareMask(), DefaultParams())
	require.NoError(t, err)

	assert.Len(t, res.Polygon, 4)
	assert.InDelta(t, 64, res.Bounds.X, 1)
	assert.InDelta(t, 64, res.Bounds.Y, 1)
	assert.InDelta(t, 128, res.Bounds.Width, 1)
	assert.InDelta(t, 127*127, res.Area, 300)

	require.NotNil(t, res.Inscribed)
	assert.GreaterOrEqual(t, res.Inscribed.Width, 110.0)
	assert.GreaterOrEqual(t, res.Inscribed.Height, 110.0)
}

func TestBoundaryEmptyMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	_, err := Boundary(img, DefaultParams())
	assert.ErrorIs(t, err, ErrNoContour)
}

func TestBoundaryWithoutInscribedSearch(t *testing.T) {
	p := DefaultParams()
	p.Step = 0
	res, err := Boundary(squareMask(), p)
	require.NoError(t, err)
	assert.Nil(t, res.Inscribed)
}
