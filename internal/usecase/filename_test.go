package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "clip.mp4", "clip.mp4"},
		{"spaces", "my holiday clip.mp4", "my_holiday_clip.mp4"},
		{"unix path", "/etc/passwd/clip.mp4", "clip.mp4"},
		{"windows path", `C:\Users\me\clip.mp4`, "clip.mp4"},
		{"traversal", "../../clip.mp4", "clip.mp4"},
		{"header injection", "clip\r\nSet-Cookie: x.mp4", "clip__Set-Cookie__x.mp4"},
		{"unicode stripped", "видео.mp4", "mp4"},
		{"leading dots", "..hidden.mp4", "hidden.mp4"},
		{"empty", "", "file"},
		{"only unsafe", "???", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 300) + ".mp4"
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, strings.HasSuffix(got, ".mp4"))
}
