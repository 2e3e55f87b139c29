package editor

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan/pkg/geometry"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestAddPointOpensPolygon(t *testing.T) {
	p := NewPolygon(discardLogger)
	assert.Equal(t, StateEmpty, p.State())

	closed, err := p.AddPoint(geometry.Pt(10, 10))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, StateOpen, p.State())
	assert.Equal(t, 1, p.Len())
}

// Every hover pattern over six clicks: the polygon closes exactly when the
// flag is set and at least two points are committed; otherwise the count
// grows by one.
func TestClosingInvariant(t *testing.T) {
	const clicks = 6
	for mask := 0; mask < 1<<clicks; mask++ {
		p := NewPolygon(discardLogger)
		for i := 0; i < clicks && p.State() != StateClosed; i++ {
			hover := mask&(1<<i) != 0
			before := p.Len()
			p.SetHoverOnFirstVertex(hover)

			closed, err := p.AddPoint(geometry.Pt(float64(i*10), float64(i*7)))
			require.NoError(t, err)

			if hover && before >= 2 {
				assert.True(t, closed, "mask %b click %d", mask, i)
				assert.Equal(t, StateClosed, p.State())
				assert.Equal(t, before, p.Len(), "closing click must not append")
				assert.GreaterOrEqual(t, p.Len(), 2)
			} else {
				assert.False(t, closed, "mask %b click %d", mask, i)
				assert.Equal(t, StateOpen, p.State())
				assert.Equal(t, before+1, p.Len())
			}
		}
	}
}

func TestHoverWithFewPointsDoesNotClose(t *testing.T) {
	p := NewPolygon(discardLogger)
	p.SetHoverOnFirstVertex(true)
	_, err := p.AddPoint(geometry.Pt(0, 0))
	require.NoError(t, err)
	closed, err := p.AddPoint(geometry.Pt(0, 0))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, 2, p.Len())

	closed, err = p.AddPoint(geometry.Pt(1, 1))
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, 2, p.Len())
}

func TestClosedRejectsEdits(t *testing.T) {
	p := NewPolygon(discardLogger)
	require.NoError(t, p.LoadClosed([]geometry.Point{{X: 0}, {X: 1}, {Y: 1}}))

	_, err := p.AddPoint(geometry.Pt(5, 5))
	assert.ErrorIs(t, err, ErrPolygonClosed)
	assert.False(t, p.UpdateCursor(geometry.Pt(5, 5)))
	_, ok := p.Cursor()
	assert.False(t, ok)
	assert.Len(t, p.Preview(), 3)
}

func TestUpdateCursorOnlyWhileOpen(t *testing.T) {
	p := NewPolygon(discardLogger)
	assert.False(t, p.UpdateCursor(geometry.Pt(1, 1)))

	_, _ = p.AddPoint(geometry.Pt(0, 0))
	assert.True(t, p.UpdateCursor(geometry.Pt(3, 4)))
	c, ok := p.Cursor()
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(3, 4), c)
	assert.Equal(t, []geometry.Point{{}, {X: 3, Y: 4}}, p.Preview())
	assert.Equal(t, 1, p.Len(), "cursor is never committed")
}

func TestHoverIsLevelTriggered(t *testing.T) {
	p := NewPolygon(discardLogger)
	for _, pt := range []geometry.Point{{X: 0}, {X: 10}, {Y: 10}} {
		_, _ = p.AddPoint(pt)
	}
	p.SetHoverOnFirstVertex(true)
	p.SetHoverOnFirstVertex(true)
	p.SetHoverOnFirstVertex(false)
	closed, _ := p.AddPoint(geometry.Pt(20, 20))
	assert.False(t, closed, "last write wins")
}

func TestResetFromAnyState(t *testing.T) {
	var transitions []State
	p := NewPolygon(discardLogger)
	p.OnTransition(func(_, next State) { transitions = append(transitions, next) })

	p.Reset()
	assert.Empty(t, transitions, "reset from empty is silent")

	_, _ = p.AddPoint(geometry.Pt(1, 1))
	p.SetHoverOnFirstVertex(true)
	p.Reset()
	assert.Equal(t, StateEmpty, p.State())
	assert.False(t, p.HoverOnClosePoint())
	assert.Zero(t, p.Len())

	require.NoError(t, p.LoadClosed([]geometry.Point{{X: 0}, {X: 1}, {Y: 1}}))
	p.Reset()
	assert.Equal(t, []State{StateOpen, StateEmpty, StateClosed, StateEmpty}, transitions)
}

func TestRejectsNonFinitePoints(t *testing.T) {
	p := NewPolygon(discardLogger)
	_, err := p.AddPoint(geometry.Pt(math.NaN(), 0))
	assert.ErrorIs(t, err, ErrInvalidPoint)
	assert.Equal(t, StateEmpty, p.State())

	err = p.LoadClosed([]geometry.Point{{X: 0}, {X: math.Inf(1)}, {Y: 1}})
	assert.ErrorIs(t, err, ErrInvalidPoint)
	assert.ErrorIs(t, p.LoadClosed([]geometry.Point{{X: 0}, {X: 1}}), ErrTooFewPoints)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "State(9)", State(9).String())
}
