// Package server exposes the attendance API over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures middleware.
type RouterOptions struct {
	AllowedOrigins []string
	// AccessLog receives one record per request; nil disables request logging.
	AccessLog *slog.Logger
	LogLevel  slog.Level
}

// NewRouter mounts h under /api/v1.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if opts.AccessLog != nil {
		r.Use(httplog.RequestLogger(opts.AccessLog, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/punches", h.RecordPunch)
		r.Get("/attendance", h.Attendance)

		r.Route("/findings", func(r chi.Router) {
			r.Get("/", h.Findings)
			r.Post("/{key}/ack", h.Acknowledge)
		})

		r.Get("/alerts", h.Alerts)
		r.Get("/employees", h.Employees)
		r.Get("/payroll", h.Payroll)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	return r
}

// AccessLogReplaceAttr renders request logs in the ECS field layout.
var AccessLogReplaceAttr = httplog.SchemaECS.Concise(false).ReplaceAttr
