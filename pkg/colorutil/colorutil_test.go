package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#DEAA25")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 222, G: 170, B: 37}, c)
	assert.Equal(t, "#DEAA25", c.Hex())

	c, err = ParseHex("0085ff")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0, G: 133, B: 255}, c)

	_, err = ParseHex("#FFF")
	assert.Error(t, err)
	_, err = ParseHex("#GGGGGG")
	assert.Error(t, err)
}

func TestDelta(t *testing.T) {
	blue := RGB{B: 255}
	assert.Equal(t, 270, Delta(RGB{R: 10, G: 10, B: 5}, blue))
	assert.Equal(t, 10, Delta(RGB{R: 2, G: 3, B: 250}, blue))
	assert.False(t, Similar(RGB{R: 10, G: 10, B: 5}, blue, 30))
	assert.True(t, Similar(RGB{R: 2, G: 3, B: 250}, blue, 30))
	assert.True(t, Similar(RGB{R: 10, G: 10, B: 245}, blue, 30))
}

func TestSimilarSymmetric(t *testing.T) {
	samples := []RGB{
		{}, {R: 255, G: 255, B: 255}, {B: 255}, {R: 222, G: 170, B: 37},
		{R: 14, G: 151, B: 28}, {R: 2, G: 3, B: 250}, {R: 30}, {R: 31},
	}
	for _, a := range samples {
		for _, b := range samples {
			assert.Equal(t, Delta(a, b), Delta(b, a))
			assert.Equal(t, Similar(a, b, 30), Similar(b, a, 30))
		}
	}
}

func TestFromColorDropsAlpha(t *testing.T) {
	assert.Equal(t, RGB{R: 1, G: 2, B: 3}, FromColor(color.RGBA{R: 1, G: 2, B: 3, A: 255}))
	assert.Equal(t, Blue, RGB{B: 255}.RGBA())
}
