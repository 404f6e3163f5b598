package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/entities"
	"github.com/Vk76/VideoProcessingSystem/internal/queue"
	"github.com/Vk76/VideoProcessingSystem/internal/transcoder"
)

type fakeBlobStore struct {
	downloadErr error
	uploadErr   map[string]error // keyed by object key

	downloads []string
	uploads   []string
}

func (f *fakeBlobStore) DownloadFile(_ context.Context, key, path string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	f.downloads = append(f.downloads, key)
	return os.WriteFile(path, []byte("source"), 0o644)
}

func (f *fakeBlobStore) UploadFile(_ context.Context, key, _, _ string) error {
	if err, ok := f.uploadErr[key]; ok {
		return err
	}
	f.uploads = append(f.uploads, key)
	return nil
}

type fakeEngine struct {
	probeErr     error
	transcodeErr error
	extractErr   error
}

func (f *fakeEngine) Probe(context.Context, string) (transcoder.Metadata, error) {
	if f.probeErr != nil {
		return transcoder.Metadata{}, f.probeErr
	}
	return transcoder.Metadata{
		Format:  transcoder.ProbeFormat{Duration: "10.0"},
		Streams: []transcoder.ProbeStream{{CodecType: "video", Width: 1920, Height: 1080}},
	}, nil
}

func (f *fakeEngine) Transcode(_ context.Context, _, outputPath string) error {
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	return os.WriteFile(outputPath, []byte("transcoded"), 0o644)
}

func (f *fakeEngine) ExtractFrame(_ context.Context, _, outputPath string, _ time.Duration) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(outputPath, []byte("not-a-real-jpeg"), 0o644)
}

type fakeLedger struct {
	statuses     []entities.JobStatus
	processedKey string
	thumbnailKey string
}

func (f *fakeLedger) SetStatus(_ context.Context, _ string, status entities.JobStatus, _ string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeLedger) SetResult(_ context.Context, _ string, processedKey, thumbnailKey string) error {
	f.processedKey = processedKey
	f.thumbnailKey = thumbnailKey
	return nil
}

func testJob() queue.JobDescriptor {
	return queue.JobDescriptor{
		JobID:            "job-1",
		OriginalFilename: "clip.mp4",
		S3Bucket:         "bucket",
		S3Key:            "videos/job-1_clip.mp4",
		SubmittedAt:      time.Now().UTC(),
	}
}

func newTestEngine(t *testing.T, blobs *fakeBlobStore, eng *fakeEngine, ledger *fakeLedger) *Engine {
	t.Helper()
	return NewEngine(blobs, eng, ledger, t.TempDir(), time.Minute, time.Second, zap.NewNop())
}

func TestProcessCompletes(t *testing.T) {
	blobs := &fakeBlobStore{}
	ledger := &fakeLedger{}
	e := newTestEngine(t, blobs, &fakeEngine{}, ledger)

	res := e.Process(context.Background(), testJob())

	require.NoError(t, res.Err)
	assert.Equal(t, entities.StatusCompleted, res.Status)
	assert.Equal(t, "processed/job-1_clip.mp4", res.ProcessedKey)
	assert.Equal(t, "thumbnails/job-1_clip.jpg", res.ThumbnailKey)
	assert.Equal(t, []string{"videos/job-1_clip.mp4"}, blobs.downloads)
	assert.Equal(t, []string{"processed/job-1_clip.mp4", "thumbnails/job-1_clip.jpg"}, blobs.uploads)

	assert.Equal(t, []entities.JobStatus{entities.StatusProcessing, entities.StatusCompleted}, ledger.statuses)
	assert.Equal(t, "processed/job-1_clip.mp4", ledger.processedKey)
}

func TestProcessDownloadFailureIsFatal(t *testing.T) {
	blobs := &fakeBlobStore{downloadErr: errors.New("no such key")}
	ledger := &fakeLedger{}
	e := newTestEngine(t, blobs, &fakeEngine{}, ledger)

	res := e.Process(context.Background(), testJob())

	assert.Equal(t, entities.StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "download source")
	assert.Empty(t, blobs.uploads)
	assert.Equal(t, []entities.JobStatus{entities.StatusProcessing, entities.StatusFailed}, ledger.statuses)
}

func TestProcessProbeFailureIsNotFatal(t *testing.T) {
	blobs := &fakeBlobStore{}
	e := newTestEngine(t, blobs, &fakeEngine{probeErr: errors.New("ffprobe exploded")}, &fakeLedger{})

	res := e.Process(context.Background(), testJob())

	require.NoError(t, res.Err)
	assert.Equal(t, entities.StatusCompleted, res.Status)
	assert.Empty(t, res.Metadata.Streams)
}

func TestProcessTranscodeFailureIsFatal(t *testing.T) {
	blobs := &fakeBlobStore{}
	e := newTestEngine(t, blobs, &fakeEngine{transcodeErr: errors.New("codec error")}, &fakeLedger{})

	res := e.Process(context.Background(), testJob())

	assert.Equal(t, entities.StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "transcode")
	assert.Empty(t, blobs.uploads)
}

func TestProcessThumbnailFailureIsNotFatal(t *testing.T) {
	blobs := &fakeBlobStore{}
	e := newTestEngine(t, blobs, &fakeEngine{extractErr: errors.New("no frame")}, &fakeLedger{})

	res := e.Process(context.Background(), testJob())

	require.NoError(t, res.Err)
	assert.Equal(t, entities.StatusCompleted, res.Status)
	assert.Empty(t, res.ThumbnailKey)
	assert.Equal(t, []string{"processed/job-1_clip.mp4"}, blobs.uploads)
}

func TestProcessThumbnailUploadFailureIsFatal(t *testing.T) {
	blobs := &fakeBlobStore{uploadErr: map[string]error{
		"thumbnails/job-1_clip.jpg": errors.New("s3 down"),
	}}
	e := newTestEngine(t, blobs, &fakeEngine{}, &fakeLedger{})

	res := e.Process(context.Background(), testJob())

	assert.Equal(t, entities.StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "upload thumbnail")
}

func TestProcessCleansUpTempFiles(t *testing.T) {
	tempDir := t.TempDir()
	e := NewEngine(&fakeBlobStore{}, &fakeEngine{}, &fakeLedger{}, tempDir, time.Minute, time.Second, zap.NewNop())

	res := e.Process(context.Background(), testJob())
	require.NoError(t, res.Err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed on success")
}

func TestProcessCleansUpTempFilesOnFailure(t *testing.T) {
	tempDir := t.TempDir()
	e := NewEngine(&fakeBlobStore{}, &fakeEngine{transcodeErr: errors.New("boom")}, &fakeLedger{}, tempDir, time.Minute, time.Second, zap.NewNop())

	res := e.Process(context.Background(), testJob())
	require.Error(t, res.Err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed on failure too")
}

func TestProcessActiveJobsGauge(t *testing.T) {
	e := newTestEngine(t, &fakeBlobStore{}, &fakeEngine{}, &fakeLedger{})
	assert.Equal(t, int64(0), e.ActiveJobs())
	_ = e.Process(context.Background(), testJob())
	assert.Equal(t, int64(0), e.ActiveJobs())
}

func TestProcessInputExtensionPreserved(t *testing.T) {
	dir := t.TempDir()
	var sawPath string
	blobs := &fakeBlobStore{}
	eng := &fakeEngine{}
	e := NewEngine(blobStoreFunc{blobs, &sawPath}, eng, &fakeLedger{}, dir, time.Minute, time.Second, zap.NewNop())

	job := testJob()
	job.S3Key = "videos/job-1_clip.mkv"
	_ = e.Process(context.Background(), job)

	assert.Equal(t, filepath.Join(dir, "job-1_input.mkv"), sawPath)
}

// blobStoreFunc wraps fakeBlobStore to capture the local download path.
type blobStoreFunc struct {
	inner   *fakeBlobStore
	sawPath *string
}

func (b blobStoreFunc) DownloadFile(ctx context.Context, key, path string) error {
	*b.sawPath = path
	return b.inner.DownloadFile(ctx, key, path)
}

func (b blobStoreFunc) UploadFile(ctx context.Context, key, ct, path string) error {
	return b.inner.UploadFile(ctx, key, ct, path)
}

func TestProcessShutdownKeepsProcessingStatus(t *testing.T) {
	// Worker shutdown cancels the context mid-job. The message stays unacked
	// for redelivery, so the ledger row must not be flipped to failed.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blobs := &fakeBlobStore{downloadErr: context.Canceled}
	ledger := &fakeLedger{}
	e := newTestEngine(t, blobs, &fakeEngine{}, ledger)

	res := e.Process(ctx, testJob())

	require.Error(t, res.Err)
	assert.Equal(t, entities.StatusFailed, res.Status)
	assert.Equal(t, []entities.JobStatus{entities.StatusProcessing}, ledger.statuses)
}
