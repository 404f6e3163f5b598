package transcoder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataParsesFFprobeJSON(t *testing.T) {
	raw := `{
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.480000", "size": "1048576", "bit_rate": "672000"},
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
			{"index": 1, "codec_type": "audio", "codec_name": "aac"}
		]
	}`

	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(raw), &md))

	assert.Equal(t, "12.480000", md.Format.Duration)
	require.NotNil(t, md.VideoStream())
	assert.Equal(t, 1920, md.VideoStream().Width)
	assert.Equal(t, "h264", md.VideoStream().CodecName)
}

func TestMetadataNoVideoStream(t *testing.T) {
	md := Metadata{Streams: []ProbeStream{{CodecType: "audio"}}}
	assert.Nil(t, md.VideoStream())
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		offset time.Duration
		want   string
	}{
		{time.Second, "00:00:01.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{90 * time.Second, "00:01:30.000"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.000"},
		// Zero or negative falls back to the one-second default.
		{0, "00:00:01.000"},
		{-time.Second, "00:00:01.000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatOffset(tt.offset), "offset %v", tt.offset)
	}
}
