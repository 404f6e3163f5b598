// Package transcoder wraps the external media tool behind a capability
// interface so the processing engine can be tested against a fake.
package transcoder

import (
	"context"
	"time"
)

type ProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ProbeStream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type Metadata struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

func (m Metadata) VideoStream() *ProbeStream {
	for i := range m.Streams {
		if m.Streams[i].CodecType == "video" {
			return &m.Streams[i]
		}
	}
	return nil
}

type Engine interface {
	// Probe inspects a local file and returns its container/stream metadata.
	Probe(ctx context.Context, path string) (Metadata, error)

	// Transcode converts input to the fixed delivery profile.
	Transcode(ctx context.Context, inputPath, outputPath string) error

	// ExtractFrame writes a single still frame taken at offset.
	ExtractFrame(ctx context.Context, inputPath, outputPath string, offset time.Duration) error
}
