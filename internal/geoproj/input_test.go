package geoproj

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRingPairs(t *testing.T) {
	ring, err := ParseRing([]byte(`[[0,0],[0,2],[2,2],[2,0]]`))
	require.NoError(t, err)
	assert.Equal(t, orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}}, ring)
}

func TestParseRingRejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", ``, ErrMalformed},
		{"not json", `nope`, ErrMalformed},
		{"two pairs", `[[0,0],[1,1]]`, ErrTooFewPoints},
		{"triple", `[[0,0,0],[1,1],[2,0]]`, ErrMalformed},
		{"single", `[[0],[1,1],[2,0]]`, ErrMalformed},
		{"strings", `[["0","0"],[1,1],[2,0]]`, ErrMalformed},
		{"object", `{"lon": 1}`, ErrMalformed},
		{"closing duplicate only", `[[0,0],[1,1],[0,0]]`, ErrTooFewPoints},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRing([]byte(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseRingGeoJSON(t *testing.T) {
	polygon := `{"type":"Polygon","coordinates":[[[0,0],[0,2],[2,2],[2,0],[0,0]]]}`
	feature := `{"type":"Feature","properties":{"name":"lot"},"geometry":` + polygon + `}`
	collection := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,1]}},
		` + feature + `]}`

	want := orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}}
	for name, input := range map[string]string{
		"geometry":   polygon,
		"feature":    feature,
		"collection": collection,
	} {
		t.Run(name, func(t *testing.T) {
			ring, err := ParseRing([]byte(input))
			require.NoError(t, err)
			assert.Equal(t, want, ring)
		})
	}
}

func TestParseRingGeoJSONWithoutPolygon(t *testing.T) {
	_, err := ParseRing([]byte(`{"type":"Point","coordinates":[1,1]}`))
	assert.ErrorIs(t, err, ErrMalformed)
}
