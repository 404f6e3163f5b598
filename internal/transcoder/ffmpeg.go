package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// FFmpeg shells out to ffmpeg/ffprobe. Binary paths come from configuration
// so containers can pin exact builds.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

func (f *FFmpeg) Probe(ctx context.Context, path string) (Metadata, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	var md Metadata
	if err := json.Unmarshal(out, &md); err != nil {
		return Metadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return md, nil
}

// Transcode produces the single delivery profile: 720p H.264 with AAC audio.
// There is no format negotiation; every job gets the same ladder.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-i", inputPath,
		"-vf", "scale=1280:720",
		"-c:v", "libx264",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-y",
		outputPath,
	}
	return f.run(ctx, args)
}

func (f *FFmpeg) ExtractFrame(ctx context.Context, inputPath, outputPath string, offset time.Duration) error {
	args := []string{
		"-i", inputPath,
		"-ss", formatOffset(offset),
		"-vframes", "1",
		"-y",
		outputPath,
	}
	return f.run(ctx, args)
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, lastStderrLine(&stderr))
	}
	return nil
}

// lastStderrLine keeps errors loggable; full ffmpeg stderr runs to kilobytes.
func lastStderrLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

func formatOffset(offset time.Duration) string {
	if offset <= 0 {
		offset = time.Second
	}
	h := int(offset.Hours())
	m := int(offset.Minutes()) % 60
	s := offset.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
