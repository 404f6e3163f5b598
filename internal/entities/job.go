package entities

import "time"

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// JobRecord is the ledger row tracking a job outside the queue contract.
// The queue message stays the sole carrier of job state between producer
// and consumer; this record only exists so /status has something to read.
type JobRecord struct {
	JobID            string    `json:"job_id"`
	OriginalFilename string    `json:"original_filename"`
	S3Key            string    `json:"s3_key"`
	Status           JobStatus `json:"status"`
	ProcessedKey     *string   `json:"processed_key,omitempty"`
	ThumbnailKey     *string   `json:"thumbnail_key,omitempty"`
	Error            *string   `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
