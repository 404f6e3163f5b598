// Package jobs persists the job-status ledger. The ledger sits outside the
// queue contract: the queue message stays the only thing producer and
// consumer exchange, and this table only feeds the /status endpoint.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vk76/VideoProcessingSystem/internal/entities"
)

var ErrNotFound = errors.New("job not found")

type Repository struct {
	dbpool *pgxpool.Pool
}

func New(ctx context.Context, databaseDSN string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Repository{dbpool: pool}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.dbpool.Ping(ctx)
}

func (r *Repository) Close() {
	r.dbpool.Close()
}

func (r *Repository) Insert(ctx context.Context, rec entities.JobRecord) error {
	_, err := r.dbpool.Exec(ctx, `
		INSERT INTO jobs (job_id, original_filename, s3_key, status)
		VALUES ($1, $2, $3, $4)`,
		rec.JobID, rec.OriginalFilename, rec.S3Key, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", rec.JobID, err)
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, jobID string, status entities.JobStatus, errMsg string) error {
	_, err := r.dbpool.Exec(ctx, `
		UPDATE jobs
		SET status = $2, error = NULLIF($3, ''), updated_at = now()
		WHERE job_id = $1`,
		jobID, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("set status for job %s: %w", jobID, err)
	}
	return nil
}

func (r *Repository) SetResult(ctx context.Context, jobID, processedKey, thumbnailKey string) error {
	_, err := r.dbpool.Exec(ctx, `
		UPDATE jobs
		SET processed_key = NULLIF($2, ''), thumbnail_key = NULLIF($3, ''), updated_at = now()
		WHERE job_id = $1`,
		jobID, processedKey, thumbnailKey,
	)
	if err != nil {
		return fmt.Errorf("set result for job %s: %w", jobID, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, jobID string) (entities.JobRecord, error) {
	var rec entities.JobRecord
	err := r.dbpool.QueryRow(ctx, `
		SELECT job_id, original_filename, s3_key, status, processed_key, thumbnail_key, error, created_at, updated_at
		FROM jobs
		WHERE job_id = $1`,
		jobID,
	).Scan(
		&rec.JobID, &rec.OriginalFilename, &rec.S3Key, &rec.Status,
		&rec.ProcessedKey, &rec.ThumbnailKey, &rec.Error,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.JobRecord{}, ErrNotFound
	}
	if err != nil {
		return entities.JobRecord{}, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return rec, nil
}
