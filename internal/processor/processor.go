package processor

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/entities"
	"github.com/Vk76/VideoProcessingSystem/internal/metrics"
	"github.com/Vk76/VideoProcessingSystem/internal/queue"
	"github.com/Vk76/VideoProcessingSystem/internal/transcoder"
)

type BlobStore interface {
	DownloadFile(ctx context.Context, key, path string) error
	UploadFile(ctx context.Context, key, contentType, path string) error
}

type Ledger interface {
	SetStatus(ctx context.Context, jobID string, status entities.JobStatus, errMsg string) error
	SetResult(ctx context.Context, jobID, processedKey, thumbnailKey string) error
}

type Result struct {
	JobID        string
	Status       entities.JobStatus
	ProcessedKey string
	ThumbnailKey string
	Metadata     transcoder.Metadata
	Duration     time.Duration
	Err          error
}

// Engine runs one job end to end: download, probe, transcode, upload,
// thumbnail, cleanup. It never lets a failure escape; every outcome becomes
// a Result, so the consumer can ack unconditionally.
type Engine struct {
	blobs            BlobStore
	engine           transcoder.Engine
	ledger           Ledger
	tempDir          string
	transcodeTimeout time.Duration
	thumbOffset      time.Duration
	log              *zap.Logger

	active atomic.Int64
}

func NewEngine(
	blobs BlobStore,
	engine transcoder.Engine,
	ledger Ledger,
	tempDir string,
	transcodeTimeout time.Duration,
	thumbOffset time.Duration,
	log *zap.Logger,
) *Engine {
	return &Engine{
		blobs:            blobs,
		engine:           engine,
		ledger:           ledger,
		tempDir:          tempDir,
		transcodeTimeout: transcodeTimeout,
		thumbOffset:      thumbOffset,
		log:              log,
	}
}

// ActiveJobs reports how many jobs are currently in flight. With prefetch=1
// this is 0 or 1; the health endpoint exposes it.
func (e *Engine) ActiveJobs() int64 {
	return e.active.Load()
}

// Handle adapts Process to the consumer contract: outcome goes to the log,
// metrics and ledger, never back to the queue.
func (e *Engine) Handle(ctx context.Context, job queue.JobDescriptor) {
	res := e.Process(ctx, job)
	if res.Err != nil {
		e.log.Error("job failed",
			zap.String("job_id", res.JobID),
			zap.Duration("duration", res.Duration),
			zap.Error(res.Err),
		)
		return
	}
	e.log.Info("job completed",
		zap.String("job_id", res.JobID),
		zap.String("processed_key", res.ProcessedKey),
		zap.String("thumbnail_key", res.ThumbnailKey),
		zap.Duration("duration", res.Duration),
	)
}

func (e *Engine) Process(ctx context.Context, job queue.JobDescriptor) Result {
	start := time.Now()

	e.active.Add(1)
	metrics.ActiveJobs.Inc()
	defer func() {
		e.active.Add(-1)
		metrics.ActiveJobs.Dec()
	}()

	_ = e.ledger.SetStatus(ctx, job.JobID, entities.StatusProcessing, "")

	inputPath := filepath.Join(e.tempDir, job.JobID+"_input"+path.Ext(job.S3Key))
	outputPath := filepath.Join(e.tempDir, job.JobID+"_output.mp4")
	thumbPath := filepath.Join(e.tempDir, job.JobID+"_thumb.jpg")

	// Temp files go away on every exit path, success or failure.
	defer func() {
		for _, p := range []string{inputPath, outputPath, thumbPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				e.log.Warn("temp cleanup failed", zap.String("path", p), zap.Error(err))
			}
		}
	}()

	res := Result{JobID: job.JobID}

	fail := func(err error) Result {
		res.Status = entities.StatusFailed
		res.Err = err
		res.Duration = time.Since(start)

		// A cancelled context means the worker is shutting down, not that
		// the input is bad. The message stays unacked and will be
		// redelivered, so the row keeps its processing status.
		if ctx.Err() != nil {
			return res
		}

		metrics.JobsFailedTotal.Inc()
		sentry.CaptureException(fmt.Errorf("job %s: %w", job.JobID, err))
		_ = e.ledger.SetStatus(ctx, job.JobID, entities.StatusFailed, err.Error())
		return res
	}

	if err := e.blobs.DownloadFile(ctx, job.S3Key, inputPath); err != nil {
		return fail(fmt.Errorf("download source: %w", err))
	}

	// Probe is best-effort. A file ffprobe chokes on can still transcode.
	md, err := e.engine.Probe(ctx, inputPath)
	if err != nil {
		e.log.Warn("probe failed, continuing without metadata",
			zap.String("job_id", job.JobID), zap.Error(err))
	} else {
		res.Metadata = md
	}

	tctx, cancel := context.WithTimeout(ctx, e.transcodeTimeout)
	err = e.engine.Transcode(tctx, inputPath, outputPath)
	cancel()
	if err != nil {
		return fail(fmt.Errorf("transcode: %w", err))
	}

	processedKey := ProcessedKey(job.S3Key)
	if err := e.blobs.UploadFile(ctx, processedKey, "video/mp4", outputPath); err != nil {
		return fail(fmt.Errorf("upload processed: %w", err))
	}
	res.ProcessedKey = processedKey

	// A job without a thumbnail is still a success.
	if err := e.engine.ExtractFrame(ctx, inputPath, thumbPath, e.thumbOffset); err != nil {
		e.log.Warn("thumbnail extraction failed",
			zap.String("job_id", job.JobID), zap.Error(err))
	} else {
		if err := boundThumbnail(thumbPath); err != nil {
			e.log.Warn("thumbnail resize failed, uploading raw frame",
				zap.String("job_id", job.JobID), zap.Error(err))
		}
		thumbKey := ThumbnailKey(job.S3Key)
		if err := e.blobs.UploadFile(ctx, thumbKey, "image/jpeg", thumbPath); err != nil {
			return fail(fmt.Errorf("upload thumbnail: %w", err))
		}
		res.ThumbnailKey = thumbKey
	}

	res.Status = entities.StatusCompleted
	res.Duration = time.Since(start)

	metrics.JobsProcessedTotal.Inc()
	metrics.ProcessingTimeSeconds.Observe(res.Duration.Seconds())

	_ = e.ledger.SetResult(ctx, job.JobID, res.ProcessedKey, res.ThumbnailKey)
	_ = e.ledger.SetStatus(ctx, job.JobID, entities.StatusCompleted, "")

	return res
}
