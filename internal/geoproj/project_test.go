package geoproj

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan/pkg/geometry"
)

func TestProjectSquareStages(t *testing.T) {
	ring := orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}}
	res, err := Project(ring)
	require.NoError(t, err)

	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 128}, {X: 128, Y: 128}, {X: 128, Y: 0}}, res.Normalized)
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 128, Y: 0}, {X: 128, Y: 128}, {X: 0, Y: 128}}, res.Flipped)
	assert.Equal(t, geometry.Pt(64, 64), res.Centroid)
	assert.Equal(t, []geometry.Point{{X: 128, Y: 0}, {X: 128, Y: 128}, {X: 0, Y: 128}, {X: 0, Y: 0}}, res.Rotated)
	assert.Equal(t, []float64{128, 0, 128, 128, 0, 128, 0, 0}, res.Flat)
	assert.Equal(t, geometry.Pt(64, 64), res.Origin)

	allowed := map[float64]bool{0: true, 64: true, 128: true}
	for _, v := range res.Flat {
		assert.True(t, allowed[v], "unexpected coordinate %v", v)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	ring := orb.Ring{
		{115.41065216064453, -8.566198747752183},
		{115.41081309318542, -8.566230588311658},
		{115.41086673736572, -8.566426030398105},
		{115.41069507598877, -8.566463177696015},
	}
	a, err := Project(ring)
	require.NoError(t, err)
	b, err := Project(ring)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for i := range a.Flat {
		assert.Equal(t, math.Float64bits(a.Flat[i]), math.Float64bits(b.Flat[i]))
	}
}

func TestProjectPreservesCentroid(t *testing.T) {
	rings := []orb.Ring{
		{{0, 0}, {3, 1}, {5, 7}, {1, 4}},
		{{-10, 2}, {4, 2.5}, {7, -3}, {-1, -8}, {-6, -4}},
		{{115.4106, -8.5661}, {115.4108, -8.5662}, {115.4107, -8.5664}},
	}
	for _, ring := range rings {
		res, err := Project(ring)
		require.NoError(t, err)
		after := geometry.Centroid(res.Rotated)
		assert.InDelta(t, res.Centroid.X, after.X, 1e-9)
		assert.InDelta(t, res.Centroid.Y, after.Y, 1e-9)
	}
}

func TestProjectDropsRepeatedClosingPoint(t *testing.T) {
	open, err := Project(orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}})
	require.NoError(t, err)
	closed, err := Project(orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, open, closed)
}

func TestProjectDegenerateBounds(t *testing.T) {
	_, err := Project(orb.Ring{{1, 0}, {1, 2}, {1, 5}})
	assert.ErrorIs(t, err, ErrDegenerateBounds)

	_, err = Project(orb.Ring{{0, 3}, {1, 3}, {5, 3}})
	assert.ErrorIs(t, err, ErrDegenerateBounds)
}

func TestProjectRejectsBadRings(t *testing.T) {
	_, err := Project(orb.Ring{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = Project(orb.Ring{{0, 0}, {1, math.NaN()}, {2, 0}})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestRotateAboutEmpty(t *testing.T) {
	assert.Nil(t, RotateAbout(nil, geometry.Point{}, Rotation))
}
