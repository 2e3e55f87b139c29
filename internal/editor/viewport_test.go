package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan/pkg/geometry"
)

func TestViewportIdentity(t *testing.T) {
	v := NewViewport(256, 0)
	assert.Equal(t, DefaultZoomStep, v.Step)
	p := geometry.Pt(12, 34)
	assert.Equal(t, p, v.ScreenToCanvas(p))
}

func TestZoomKeepsPointerAnchored(t *testing.T) {
	v := NewViewport(256, 1.1)
	pointer := geometry.Pt(100, 60)
	before := v.ScreenToCanvas(pointer)

	v.Zoom(pointer, true)
	v.Zoom(pointer, true)
	assert.InDelta(t, 1.21, v.Scale, 1e-12)

	after := v.ScreenToCanvas(pointer)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomOutFloorsAtOne(t *testing.T) {
	v := NewViewport(256, 1.1)
	v.Zoom(geometry.Pt(200, 200), false)
	assert.Equal(t, 1.0, v.Scale)
	assert.Equal(t, geometry.Point{}, v.Offset)

	v.Zoom(geometry.Pt(256, 256), true)
	v.Zoom(geometry.Pt(256, 256), false)
	assert.InDelta(t, 1.0, v.Scale, 1e-12)
	assert.InDelta(t, 0, v.Offset.X, 1e-9)
}

func TestPanIsClamped(t *testing.T) {
	v := NewViewport(256, 2)
	v.Zoom(geometry.Pt(0, 0), true)
	require.Equal(t, 2.0, v.Scale)

	v.PanTo(geometry.Pt(50, -1000))
	assert.Equal(t, geometry.Pt(0, -256), v.Offset)
}

func TestScreenToCanvasInvertsZoom(t *testing.T) {
	v := NewViewport(256, 2)
	v.Zoom(geometry.Pt(0, 0), true)
	v.PanTo(geometry.Pt(-100, -40))

	c := geometry.Pt(80, 30)
	s := v.CanvasToScreen(c)
	assert.Equal(t, geometry.Pt(60, 20), s)
	assert.Equal(t, c, v.ScreenToCanvas(s))
}

func TestSurfaceHitTestRunsInCanvasSpace(t *testing.T) {
	s := NewSurface(256, 2, 4, discardLogger)
	for _, p := range []geometry.Point{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 60}} {
		closed, err := s.PointerDown(p)
		require.NoError(t, err)
		require.False(t, closed)
	}

	s.View.Zoom(geometry.Pt(0, 0), true)
	// first vertex (10,10) sits at screen (20,20) once zoomed 2x
	s.PointerMove(geometry.Pt(10, 10))
	assert.False(t, s.Polygon.HoverOnClosePoint())
	s.PointerMove(geometry.Pt(23, 20))
	assert.True(t, s.Polygon.HoverOnClosePoint())

	closed, err := s.PointerDown(geometry.Pt(21, 21))
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, 3, s.Polygon.Len())
}

func TestHoverRadiusIsInScreenPixels(t *testing.T) {
	s := NewSurface(256, 2, 4, discardLogger)
	_, err := s.PointerDown(geometry.Pt(10, 10))
	require.NoError(t, err)

	// 3 canvas units is within 4 px at scale 1 but 6 px at scale 2.
	assert.True(t, s.HitsFirstVertex(geometry.Pt(13, 10)))
	s.View.Zoom(geometry.Pt(0, 0), true)
	require.Equal(t, 2.0, s.View.Scale)
	assert.False(t, s.HitsFirstVertex(geometry.Pt(13, 10)))
	assert.True(t, s.HitsFirstVertex(geometry.Pt(12, 10)))
}

func TestSurfaceCursorPreview(t *testing.T) {
	s := NewSurface(256, 1.1, 4, discardLogger)
	_, _ = s.PointerDown(geometry.Pt(5, 5))
	s.PointerMove(geometry.Pt(50, 40))
	c, ok := s.Polygon.Cursor()
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(50, 40), c)

	s.Reset()
	assert.Equal(t, StateEmpty, s.Polygon.State())
	assert.Equal(t, 1.0, s.View.Scale)
}
