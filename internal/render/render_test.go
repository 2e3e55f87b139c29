package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan/internal/measure"
	"floorplan/internal/raster"
	"floorplan/pkg/geometry"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
)

func TestRenderEmptyScene(t *testing.T) {
	r := Render(Scene{})
	require.NoError(t, raster.CheckSize(r))
	assert.Equal(t, blue, r.NRGBAAt(0, 0))
	assert.Equal(t, blue, r.NRGBAAt(255, NorthMarkerHeight-1))
	assert.Equal(t, white, r.NRGBAAt(128, NorthMarkerHeight))
	assert.Zero(t, measure.NewAreaMeter(0, 0).BlackPixelCount(r))
}

func TestRenderAreaIsMeasuredBlack(t *testing.T) {
	square := []geometry.Point{{X: 64, Y: 64}, {X: 192, Y: 64}, {X: 192, Y: 192}, {X: 64, Y: 192}}
	r := Render(Scene{Area: square})
	assert.Equal(t, black, r.NRGBAAt(128, 128))
	assert.Equal(t, white, r.NRGBAAt(10, 128))

	n := measure.NewAreaMeter(0, 0).BlackPixelCount(r)
	assert.InDelta(t, 128*128, n, 2*128)
}

func TestRenderStreetOverArea(t *testing.T) {
	square := []geometry.Point{{X: 0, Y: 0}, {X: 256, Y: 0}, {X: 256, Y: 256}, {X: 0, Y: 256}}
	street := geometry.Rect{X: 20, Y: 200, Width: 100, Height: 4}
	r := Render(Scene{Area: square, Street: &street})
	assert.Equal(t, red, r.NRGBAAt(50, 201))
	assert.Equal(t, black, r.NRGBAAt(50, 210))
}

func TestRenderReferenceHidesNorthMarker(t *testing.T) {
	ref := raster.Filled(512, 512, color.NRGBA{G: 255, A: 255})
	r := Render(Scene{Reference: ref})
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, r.NRGBAAt(0, 0))
}

func TestAnnotateLeavesBaseUntouched(t *testing.T) {
	base := raster.Filled(raster.Size, raster.Size, white)
	ruler, err := measure.NewRuler(measure.DefaultFootLength, 0)
	require.NoError(t, err)
	pts := []geometry.Point{{X: 20, Y: 40}, {X: 220, Y: 40}, {X: 220, Y: 200}}

	out := Annotate(base, pts, true, ruler.Annotate(pts, true))
	assert.Equal(t, white, base.NRGBAAt(120, 40))
	assert.NotEqual(t, white, out.NRGBAAt(60, 40))
}

func TestRenderMarkerFollowsDirection(t *testing.T) {
	r := Render(Scene{North: East})
	assert.Equal(t, blue, r.NRGBAAt(255, 128))
	assert.Equal(t, white, r.NRGBAAt(128, 0))

	r = Render(Scene{North: South})
	assert.Equal(t, blue, r.NRGBAAt(128, 255))

	_, err := ParseDirection("up")
	assert.Error(t, err)
	d, err := ParseDirection("west")
	require.NoError(t, err)
	assert.Equal(t, "west", d.String())
}
