package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kirillkom/document-summarizer/internal/config"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
	"github.com/kirillkom/document-summarizer/internal/observability/metrics"
)

type Router struct {
	cfg       config.Config
	pipeline  ports.PipelineRunner
	ingest    ports.DocumentIngestor
	processor ports.DocumentProcessor
	history   ports.HistoryReader
	validator *requestValidator

	logger         *slog.Logger
	metrics        *metrics.HTTPServerMetrics
	metricsHandler http.Handler
}

type RouterOption func(*Router)

func WithLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics, handler http.Handler) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
		rt.metricsHandler = handler
	}
}

// NewRouter wires the HTTP surface. ingest may be nil when no queue is configured.
func NewRouter(
	cfg config.Config,
	pipeline ports.PipelineRunner,
	ingest ports.DocumentIngestor,
	processor ports.DocumentProcessor,
	history ports.HistoryReader,
	opts ...RouterOption,
) *Router {
	validator, err := newRequestValidator(context.Background())
	if err != nil {
		panic(err)
	}
	rt := &Router{
		cfg:       cfg,
		pipeline:  pipeline,
		ingest:    ingest,
		processor: processor,
		history:   history,
		validator: validator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(withRequestID)
	r.Use(accessLog(rt.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", rt.healthz)
	if rt.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", rt.metricsHandler)
	}

	r.Group(func(api chi.Router) {
		api.Use(limitRate(rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst))
		api.Use(limitInFlight(rt.cfg.APIMaxInFlight, rt.cfg.APIQueueWait))

		api.Route("/v1/documents", func(docs chi.Router) {
			docs.Post("/", rt.uploadDocument)
			docs.Get("/", rt.listDocuments)
			docs.Get("/export.xlsx", rt.exportDocuments)
			docs.Get("/{documentID}", rt.getDocument)
			docs.Get("/{documentID}/summary", rt.getSummary)
		})
		api.Post("/v1/process-document", rt.processDocument)
	})

	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
