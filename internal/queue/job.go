package queue

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrEmptyJobID = errors.New("message has no job_id")

// JobDescriptor is what we publish to RabbitMQ. No payload bytes here —
// workers fetch the asset from the blob store by S3Key.
type JobDescriptor struct {
	JobID            string    `json:"job_id"`
	OriginalFilename string    `json:"original_filename"`
	S3Bucket         string    `json:"s3_bucket"`
	S3Key            string    `json:"s3_key"`
	SubmittedAt      time.Time `json:"timestamp"`
	SizeHint         int64     `json:"file_size"` // advisory only
}

func (d JobDescriptor) Encode() ([]byte, error) {
	return json.Marshal(d)
}

func DecodeJob(body []byte) (JobDescriptor, error) {
	var d JobDescriptor
	if err := json.Unmarshal(body, &d); err != nil {
		return JobDescriptor{}, err
	}
	if d.JobID == "" {
		return JobDescriptor{}, ErrEmptyJobID
	}
	return d, nil
}
