package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/document-summarizer/internal/config"
	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
	"github.com/kirillkom/document-summarizer/internal/core/usecase"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/extractor"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/extractor/ocr"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/fetch/httpfetch"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/repository/sqlstore"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/resilience"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/storage/s3"
	"github.com/kirillkom/document-summarizer/internal/observability/metrics"
)

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.PipelineMetrics

	Store ports.DocumentStore
	// Queue is nil when the API runs without a broker.
	Queue ports.MessageQueue

	PipelineUC ports.PipelineRunner
	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.DocumentProcessor
	HistoryUC  ports.HistoryReader

	closers []func() error
}

type Options struct {
	Service string
	Logger  *slog.Logger
	// RequireQueue fails startup when NATS is unreachable; the API tolerates it.
	RequireQueue bool
	// SkipQueue never connects to NATS (MCP server).
	SkipQueue bool
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: metrics.NewRegistry(),
	}
	app.Metrics = metrics.NewPipelineMetrics(opts.Service, app.Registry)

	if err := app.wire(ctx, opts); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) wire(ctx context.Context, opts Options) error {
	cfg, logger := app.Config, app.Logger

	db, dialect, err := sqlstore.OpenDB(ctx, cfg.DatabaseEndpoint)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.closers = append(app.closers, db.Close)
	store := sqlstore.New(db, dialect)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	app.Store = store
	logger.Info("database_ready", "dialect", string(dialect))

	storage, err := newObjectStorage(ctx, cfg, app.executor(logger))
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	textExtractor, serverExtractor, err := newExtractors(cfg, logger)
	if err != nil {
		return fmt.Errorf("init extractor: %w", err)
	}

	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	factory, err := app.summarizerFactory(cfg, prompts, logger)
	if err != nil {
		return fmt.Errorf("init generative client: %w", err)
	}
	defaultSummarizer, err := factory("")
	if err != nil {
		logger.Warn("generative_key_missing", "detail", "requests must carry an api key")
		defaultSummarizer = missingKeySummarizer{err: err}
	}

	app.PipelineUC = usecase.NewPipelineUseCase(storage, store, textExtractor, defaultSummarizer,
		usecase.WithFailurePolicy(usecase.FailurePolicy{MarkFailed: cfg.PipelineMarkFailed}),
		usecase.WithPipelineMetrics(app.Metrics),
		usecase.WithLogger(logger),
	)
	app.ProcessUC = usecase.NewProcessDocumentUseCase(
		store,
		storage,
		httpfetch.New(cfg.FetchTimeout, cfg.MaxUploadBytes),
		serverExtractor,
		factory,
		app.Metrics,
		logger,
	)
	app.HistoryUC = usecase.NewHistoryUseCase(store, xlsx.NewExporter(logger))

	if opts.SkipQueue {
		return nil
	}
	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject,
		nats.WithExecutor(app.executor(logger)),
		nats.WithLogger(logger),
		nats.WithDrainTimeout(cfg.WorkerJobTimeout),
	)
	if err != nil {
		if opts.RequireQueue {
			return fmt.Errorf("init message queue: %w", err)
		}
		logger.Warn("queue_unavailable", "error", err)
		return nil
	}
	app.closers = append(app.closers, func() error {
		queue.Close()
		return nil
	})
	app.Queue = queue
	app.IngestUC = usecase.NewIngestDocumentUseCase(store, storage, queue, cfg.MaxUploadBytes)

	return nil
}

func (app *App) executor(logger *slog.Logger) *resilience.Executor {
	return resilience.NewExecutor(resilience.StorageConfig(),
		resilience.WithLogger(logger),
		resilience.WithStateListener(app.Metrics.ObserveBreakerState),
	)
}

func (app *App) summarizerFactory(cfg config.Config, prompts domain.PromptSet, logger *slog.Logger) (usecase.SummarizerFactory, error) {
	execCfg := resilience.DefaultConfig()
	execCfg.RetryMaxAttempts = cfg.GeminiRetryMaxAttempts
	execCfg.BreakerEnabled = cfg.GeminiBreakerEnabled
	executor := resilience.NewExecutor(execCfg,
		resilience.WithLogger(logger),
		resilience.WithStateListener(app.Metrics.ObserveBreakerState),
	)

	summaryOpts := []usecase.SummaryOption{
		usecase.WithConcurrency(cfg.SummaryConcurrency),
		usecase.WithSummaryMetrics(app.Metrics),
	}
	if cfg.KeyPointsJSON {
		summaryOpts = append(summaryOpts, usecase.WithJSONKeyPoints())
	}
	resolveKey := func(apiKey string) (string, error) {
		key := strings.TrimSpace(apiKey)
		if key == "" {
			key = strings.TrimSpace(cfg.GenerativeServiceKey)
		}
		if key == "" {
			return "", gemini.ErrMissingAPIKey
		}
		return key, nil
	}

	switch cfg.GeminiTransport {
	case "", "rest":
		client := gemini.New(gemini.Config{
			Endpoint:          cfg.GenerativeServiceEndpoint,
			Model:             cfg.Model,
			Timeout:           cfg.GeminiTimeout,
			RequestsPerSecond: cfg.GeminiRPS,
			Burst:             cfg.GeminiBurst,
		}, executor)
		return func(apiKey string) (ports.Summarizer, error) {
			key, err := resolveKey(apiKey)
			if err != nil {
				return nil, err
			}
			return usecase.NewSummaryGenerator(client.WithAPIKey(key), prompts, summaryOpts...), nil
		}, nil
	case "sdk":
		pool := gemini.NewSDKPool(cfg.Model, executor)
		app.closers = append(app.closers, pool.Close)
		return func(apiKey string) (ports.Summarizer, error) {
			key, err := resolveKey(apiKey)
			if err != nil {
				return nil, err
			}
			client, err := pool.Get(context.Background(), key)
			if err != nil {
				return nil, err
			}
			return usecase.NewSummaryGenerator(client, prompts, summaryOpts...), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown gemini transport %q", cfg.GeminiTransport)
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return localfs.New(cfg.StoragePath)
	case "s3", "minio":
		return s3.New(ctx, s3.Config{
			Endpoint:  cfg.StorageEndpoint,
			Region:    cfg.StorageRegion,
			Bucket:    cfg.StorageBucket,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
		}, executor)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newExtractors returns the interactive extractor and the server-side one.
// Only the server side may fall back to the show-text byte scan; the
// interactive pipeline reports a parser failure as an extraction error.
func newExtractors(cfg config.Config, logger *slog.Logger) (interactive, server ports.TextExtractor, err error) {
	strict, err := pdftext.New(cfg.PDFBackend, pdftext.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	lenient, err := pdftext.New(cfg.PDFBackend,
		pdftext.WithScanFallback(cfg.PDFScanFallback),
		pdftext.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}

	var image ports.TextExtractor
	switch cfg.OCREngine {
	case "", "cli":
		image = ocr.NewTesseract(ocr.Config{
			Binary:      cfg.OCRBinary,
			Language:    cfg.OCRLanguage,
			TessdataDir: cfg.OCRTessdataDir,
			Timeout:     cfg.OCRTimeout,
		}, nil, logger)
	case "gosseract":
		image, err = ocr.NewInProcess(cfg.OCRLanguage)
		if err != nil {
			return nil, nil, err
		}
	case "none":
	default:
		return nil, nil, fmt.Errorf("unknown ocr engine %q", cfg.OCREngine)
	}

	return extractor.NewRouter(strict, image), extractor.NewRouter(lenient, image), nil
}

// missingKeySummarizer keeps the interactive pipeline wired when no server key is set.
type missingKeySummarizer struct {
	err error
}

func (s missingKeySummarizer) Summarize(context.Context, string) (domain.SummarySet, error) {
	return domain.SummarySet{}, domain.WrapError(domain.ErrSummaryService, "configure summarizer", s.err)
}

func (app *App) Close() {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	if err := errors.Join(errs...); err != nil {
		app.Logger.Warn("shutdown_close_failed", "error", err)
	}
}
