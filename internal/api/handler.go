package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/clubnotify/pkg/httpserver"
	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
	"github.com/dmitrymomot/clubnotify/pkg/requestid"
	"github.com/dmitrymomot/clubnotify/pkg/stream"
)

// Handler serves the HTTP API.
type Handler struct {
	svc     *notifications.Service
	streams *stream.Registry
	logger  *slog.Logger

	metrics            http.Handler
	checks             []httpserver.Check
	readinessTimeout   time.Duration
	streamWriteTimeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics mounts m at /metrics.
func WithMetrics(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithReadiness sets the checks behind /health/ready.
func WithReadiness(timeout time.Duration, checks ...httpserver.Check) Option {
	return func(h *Handler) {
		h.readinessTimeout = timeout
		h.checks = append(h.checks, checks...)
	}
}

// WithStreamWriteTimeout bounds each event write on the stream endpoint.
func WithStreamWriteTimeout(d time.Duration) Option {
	return func(h *Handler) { h.streamWriteTimeout = d }
}

// New creates the API handler.
func New(svc *notifications.Service, streams *stream.Registry, opts ...Option) *Handler {
	h := &Handler{
		svc:                svc,
		streams:            streams,
		logger:             slog.Default(),
		readinessTimeout:   2 * time.Second,
		streamWriteTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("api"))
	return h
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(h.logger, h.readinessTimeout, h.checks...))
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/notifications", h.handle(h.createNotification))
		r.Post("/admin/broadcast", h.handle(h.broadcast))

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)
			r.Get("/notifications", h.handle(h.listNotifications))
			r.Get("/notifications/unread-count", h.handle(h.unreadCount))
			r.Post("/notifications/read-all", h.handle(h.markAllRead))
			r.Get("/notifications/stream", h.stream)
			r.Get("/notifications/stream/status", h.handle(h.streamStatus))
			r.Get("/notifications/{id}", h.handle(h.getNotification))
			r.Post("/notifications/{id}/read", h.handle(h.markRead))
			r.Delete("/notifications/{id}", h.handle(h.deleteNotification))
		})
	})
	return r
}

type handlerFunc func(r *http.Request) Response

func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, fn(r))
	}
}

// fail turns err into an error response, logging server-side failures.
func (h *Handler) fail(r *http.Request, err error) Response {
	if status, _ := classify(err); status >= http.StatusInternalServerError {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	return JSONError(err)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, resp Response) {
	if err := resp.Render(w, r); err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelWarn, "render response failed", logger.Error(err))
	}
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.LogAttrs(r.Context(), slog.LevelDebug, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			logger.Duration(time.Since(start)),
		)
	})
}
