package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Vk76/VideoProcessingSystem/internal/transport/handler"
)

func NewRouter(h *handler.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Root)
	r.Post("/upload", h.Upload)
	r.Get("/status/{jobID}", h.Status)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
