package processor

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thumb.jpg")
	img := imaging.New(w, h, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestBoundThumbnailShrinksLargeFrame(t *testing.T) {
	path := writeFrame(t, 1280, 720)
	require.NoError(t, boundThumbnail(path))

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())
}

func TestBoundThumbnailLeavesSmallFrame(t *testing.T) {
	path := writeFrame(t, 320, 180)
	require.NoError(t, boundThumbnail(path))

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 180, img.Bounds().Dy())
}

func TestBoundThumbnailTallFrame(t *testing.T) {
	path := writeFrame(t, 200, 800)
	require.NoError(t, boundThumbnail(path))

	img, err := imaging.Open(path)
	require.NoError(t, err)
	// Height is the binding dimension here.
	assert.Equal(t, 360, img.Bounds().Dy())
	assert.Equal(t, 90, img.Bounds().Dx())
}

func TestBoundThumbnailMissingFile(t *testing.T) {
	assert.Error(t, boundThumbnail(filepath.Join(t.TempDir(), "nope.jpg")))
}
