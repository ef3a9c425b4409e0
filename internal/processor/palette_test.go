package processor

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteStrip(t *testing.T) {
	strip, ok, err := PaletteStrip([]string{"#ff0000", "00ff00", "not-a-color"})
	require.NoError(t, err)
	require.True(t, ok)

	img, err := png.Decode(bytes.NewReader(strip))
	require.NoError(t, err)
	assert.Equal(t, paletteWidth, img.Bounds().Dx())
	assert.Equal(t, paletteHeight, img.Bounds().Dy())
}

func TestPaletteStripNoValidColors(t *testing.T) {
	strip, ok, err := PaletteStrip([]string{"red", "#12345", ""})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, strip)
}

func TestValidHexColors(t *testing.T) {
	got := validHexColors([]string{"#AABBCC", "aabbcc", "#12", "zzzzzz"})
	assert.Equal(t, []string{"#AABBCC", "#aabbcc"}, got)
}
