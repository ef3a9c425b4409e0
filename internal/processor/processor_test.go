package processor

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeevm/ai-gallery/internal/model"
)

func jpegFile(t *testing.T, name string, w, h int) model.SourceFile {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	require.NoError(t, jpeg.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))

	return model.SourceFile{Name: name, ContentType: "image/jpeg", Data: buf.Bytes()}
}

func pngFile(t *testing.T, name string, w, h int) model.SourceFile {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))))

	return model.SourceFile{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

func TestProcessBoundsThumbnail(t *testing.T) {
	p := New(300)

	res, err := p.Process(jpegFile(t, "big.jpg", 1200, 800), nil)
	require.NoError(t, err)

	thumb, _, err := image.Decode(bytes.NewReader(res.Thumbnail))
	require.NoError(t, err)

	bounds := thumb.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 300)
	assert.LessOrEqual(t, bounds.Dy(), 300)
}

func TestProcessDoesNotUpscale(t *testing.T) {
	p := New(300)

	res, err := p.Process(pngFile(t, "small.png", 50, 40), nil)
	require.NoError(t, err)

	thumb, _, err := image.Decode(bytes.NewReader(res.Thumbnail))
	require.NoError(t, err)

	assert.Equal(t, 50, thumb.Bounds().Dx())
	assert.Equal(t, 40, thumb.Bounds().Dy())
}

func TestProcessBase64RoundTrips(t *testing.T) {
	p := New(300)
	src := jpegFile(t, "photo.jpg", 100, 100)

	res, err := p.Process(src, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Base64)

	decoded, err := base64.StdEncoding.DecodeString(res.Base64)
	require.NoError(t, err)
	assert.Equal(t, src.Data, decoded)
}

func TestProcessRejectsUnsupportedType(t *testing.T) {
	p := New(300)

	_, err := p.Process(model.SourceFile{
		Name:        "anim.gif",
		ContentType: "image/gif",
		Data:        []byte("GIF89a"),
	}, nil)

	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestProcessRejectsCorruptData(t *testing.T) {
	p := New(300)

	_, err := p.Process(model.SourceFile{
		Name:        "broken.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("not an image"),
	}, nil)

	assert.Error(t, err)
}

func TestProcessProgressCheckpoints(t *testing.T) {
	p := New(300)

	var checkpoints []float64
	_, err := p.Process(jpegFile(t, "photo.jpg", 100, 100), func(f float64) {
		checkpoints = append(checkpoints, f)
	})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, checkpoints)
}

func TestStoredNamePrefixIsStrictlyIncreasing(t *testing.T) {
	p := New(300)

	var prev int64
	for i := 0; i < 100; i++ {
		res, err := p.Process(jpegFile(t, "photo.jpg", 10, 10), nil)
		require.NoError(t, err)

		prefix, _, found := strings.Cut(res.StoredName, "-")
		require.True(t, found)

		ts, err := strconv.ParseInt(prefix, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, ts, prev)
		prev = ts
	}

	res, err := p.Process(jpegFile(t, "photo.jpg", 10, 10), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.StoredName, "-photo.jpg"))
}
