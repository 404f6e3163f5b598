package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vk76/VideoProcessingSystem/internal/cache"
	"github.com/Vk76/VideoProcessingSystem/internal/config"
	"github.com/Vk76/VideoProcessingSystem/internal/entities"
	"github.com/Vk76/VideoProcessingSystem/internal/metrics"
	"github.com/Vk76/VideoProcessingSystem/internal/queue"
	"github.com/Vk76/VideoProcessingSystem/internal/repository/jobs"
	"github.com/Vk76/VideoProcessingSystem/internal/usecase"
)

const maxMultipartMemory = 32 << 20

type UseCase interface {
	Submit(ctx context.Context, file io.ReadSeeker, originalName string, size int64) (queue.JobDescriptor, error)
}

type StatusStore interface {
	Get(ctx context.Context, jobID string) (entities.JobRecord, error)
}

type StatusCache interface {
	Get(ctx context.Context, key string) (string, error)
	Store(ctx context.Context, key, value string) error
}

// Pinger is a dependency health probe; Health fans out over all of them.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	uploads UseCase
	ledger  StatusStore
	cache   StatusCache
	probes  map[string]Pinger
	cfg     *config.Config
	log     *zap.Logger
}

func New(uploads UseCase, ledger StatusStore, statusCache StatusCache, probes map[string]Pinger, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		uploads: uploads,
		ledger:  ledger,
		cache:   statusCache,
		probes:  probes,
		cfg:     cfg,
		log:     log,
	}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.API.MaxUploadBytes)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		metrics.UploadFailuresTotal.Inc()
		writeMultipartError(w, err)
		return
	}

	file, fh, err := r.FormFile("file")
	if err != nil {
		metrics.UploadFailuresTotal.Inc()
		if strings.Contains(err.Error(), "no such file") {
			writeJSONError(w, `missing video file: form field key should be "file"`, http.StatusBadRequest)
		} else {
			writeJSONError(w, "an error occurred while uploading the file: "+err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	job, err := h.uploads.Submit(r.Context(), file, fh.Filename, fh.Size)
	if err != nil {
		metrics.UploadFailuresTotal.Inc()
		switch {
		case errors.Is(err, usecase.ErrUnsupportedExtension),
			errors.Is(err, usecase.ErrUnsupportedContent):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			h.log.Error("upload failed", zap.String("filename", fh.Filename), zap.Error(err))
			writeJSONError(w, "failed to process upload", http.StatusInternalServerError)
		}
		return
	}

	metrics.UploadsTotal.Inc()
	writeJSON(w, http.StatusOK, UploadResponse{
		Status:   "queued",
		Message:  "video uploaded and queued for processing",
		JobID:    job.JobID,
		Filename: job.OriginalFilename,
		S3Key:    job.S3Key,
	})
	metrics.UploadDurationSeconds.Observe(time.Since(start).Seconds())
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		writeJSONError(w, "missing job id", http.StatusBadRequest)
		return
	}

	if cached, err := h.cache.Get(r.Context(), jobID); err == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, cached)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		// A broken cache degrades /status to ledger reads, nothing more.
		h.log.Warn("status cache read failed", zap.String("job_id", jobID), zap.Error(err))
	}

	rec, err := h.ledger.Get(r.Context(), jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		writeJSONError(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("ledger read failed", zap.String("job_id", jobID), zap.Error(err))
		writeJSONError(w, "failed to look up job", http.StatusInternalServerError)
		return
	}

	body, err := json.Marshal(rec)
	if err != nil {
		writeJSONError(w, "failed to encode job", http.StatusInternalServerError)
		return
	}
	if err := h.cache.Store(r.Context(), jobID, string(body)); err != nil {
		h.log.Warn("status cache write failed", zap.String("job_id", jobID), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.probes))
	healthy := true

	for name, probe := range h.probes {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		if err := probe.Ping(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
		cancel()
	}

	resp := HealthResponse{Status: "healthy", Checks: checks}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ServiceInfo{
		Service: "video-processing-api",
		Version: "1.0",
		Endpoints: map[string]string{
			"upload":  "POST /upload",
			"status":  "GET /status/{job_id}",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}
