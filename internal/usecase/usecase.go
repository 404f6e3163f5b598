package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/entities"
	"github.com/Vk76/VideoProcessingSystem/internal/queue"
)

// allowedExtensions is checked before any I/O happens; a disallowed name
// never touches the blob store or the broker.
var allowedExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
}

var (
	ErrUnsupportedExtension = errors.New("unsupported file type")
	ErrUnsupportedContent   = errors.New("file content is not a recognized video format")
)

type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

type Publisher interface {
	Publish(ctx context.Context, job queue.JobDescriptor) error
}

type Ledger interface {
	Insert(ctx context.Context, rec entities.JobRecord) error
	SetStatus(ctx context.Context, jobID string, status entities.JobStatus, errMsg string) error
}

type Uploads struct {
	blobs     BlobStore
	publisher Publisher
	ledger    Ledger
	bucket    string
	log       *zap.Logger
}

func NewUploads(blobs BlobStore, publisher Publisher, ledger Ledger, bucket string, log *zap.Logger) *Uploads {
	return &Uploads{
		blobs:     blobs,
		publisher: publisher,
		ledger:    ledger,
		bucket:    bucket,
		log:       log,
	}
}

// Submit validates the upload, persists it to the blob store and only then
// publishes the job: a queue message never references an object that was not
// stored first. If the publish fails the uploaded blob stays where it is —
// an orphaned object is the accepted cost, and the ledger row flags it.
func (u *Uploads) Submit(ctx context.Context, file io.ReadSeeker, originalName string, size int64) (queue.JobDescriptor, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return queue.JobDescriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		return queue.JobDescriptor{}, fmt.Errorf("detect content type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return queue.JobDescriptor{}, fmt.Errorf("rewind upload: %w", err)
	}
	if !strings.HasPrefix(mime.String(), "video/") {
		return queue.JobDescriptor{}, fmt.Errorf("%w: detected %s", ErrUnsupportedContent, mime.String())
	}

	jobID := uuid.New().String()
	safeName := SanitizeFilename(originalName)
	key := fmt.Sprintf("videos/%s_%s", jobID, safeName)

	if err := u.blobs.Upload(ctx, key, mime.String(), file); err != nil {
		return queue.JobDescriptor{}, fmt.Errorf("upload to storage: %w", err)
	}
	u.log.Info("uploaded file to storage", zap.String("job_id", jobID), zap.String("s3_key", key))

	// Ledger trouble must not block the core pipeline.
	if err := u.ledger.Insert(ctx, entities.JobRecord{
		JobID:            jobID,
		OriginalFilename: safeName,
		S3Key:            key,
		Status:           entities.StatusQueued,
	}); err != nil {
		u.log.Warn("ledger insert failed", zap.String("job_id", jobID), zap.Error(err))
	}

	job := queue.JobDescriptor{
		JobID:            jobID,
		OriginalFilename: safeName,
		S3Bucket:         u.bucket,
		S3Key:            key,
		SubmittedAt:      time.Now().UTC(),
		SizeHint:         size,
	}

	if err := u.publisher.Publish(ctx, job); err != nil {
		_ = u.ledger.SetStatus(ctx, jobID, entities.StatusFailed, "queue publish failed")
		return queue.JobDescriptor{}, fmt.Errorf("queue processing job: %w", err)
	}

	return job, nil
}
