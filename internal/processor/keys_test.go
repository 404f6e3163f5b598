package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessedKey(t *testing.T) {
	assert.Equal(t, "processed/abc_clip.mp4", ProcessedKey("videos/abc_clip.mp4"))
	assert.Equal(t, "processed/abc_clip.mkv", ProcessedKey("videos/abc_clip.mkv"))
	// Only the prefix is rewritten, even if the name repeats it.
	assert.Equal(t, "processed/abc_videos/clip.mp4", ProcessedKey("videos/abc_videos/clip.mp4"))
}

func TestThumbnailKey(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"videos/abc_clip.mp4", "thumbnails/abc_clip.jpg"},
		{"videos/abc_clip.mkv", "thumbnails/abc_clip.jpg"},
		{"videos/abc_clip.mov", "thumbnails/abc_clip.jpg"},
		{"videos/abc_noext", "thumbnails/abc_noext.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ThumbnailKey(tt.source))
	}
}
