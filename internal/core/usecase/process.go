package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

const (
	variantRemote = "remote"
	variantWorker = "worker"
)

// SummarizerFactory builds a Summarizer bound to an API key. An empty key
// selects the server's configured key.
type SummarizerFactory func(apiKey string) (ports.Summarizer, error)

// ProcessDocumentUseCase is the server-side variant of the pipeline. It always
// compensates on failure.
type ProcessDocumentUseCase struct {
	store      ports.DocumentStore
	storage    ports.ObjectStorage
	fetcher    ports.SourceFetcher
	extractor  ports.TextExtractor
	summarizer SummarizerFactory
	metrics    ports.PipelineMetrics
	logger     *slog.Logger
}

func NewProcessDocumentUseCase(
	store ports.DocumentStore,
	storage ports.ObjectStorage,
	fetcher ports.SourceFetcher,
	extractor ports.TextExtractor,
	summarizer SummarizerFactory,
	metrics ports.PipelineMetrics,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		store:      store,
		storage:    storage,
		fetcher:    fetcher,
		extractor:  extractor,
		summarizer: summarizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// Process fetches the file by URL and summarizes it for an existing Document.
func (uc *ProcessDocumentUseCase) Process(ctx context.Context, req domain.ProcessRequest) (domain.SummarySet, error) {
	if err := req.Validate(); err != nil {
		return domain.SummarySet{}, err
	}
	summarizer, err := uc.summarizer(strings.TrimSpace(req.APIKey))
	if err != nil {
		return domain.SummarySet{}, domain.WrapError(domain.ErrInvalidInput, "configure summarizer", err)
	}

	return uc.run(ctx, variantRemote, req.DocumentID, summarizer, func(ctx context.Context) (domain.SourceFile, error) {
		data, err := uc.fetcher.Fetch(ctx, req.FileURL)
		if err != nil {
			return domain.SourceFile{}, fmt.Errorf("fetch file: %w", err)
		}
		return domain.SourceFile{
			Filename: req.FileURL,
			MimeType: req.FileType,
			Data:     data,
		}, nil
	})
}

// ProcessByID handles a queued Document whose bytes are in object storage.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	started := time.Now()
	doc, err := uc.store.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	summarizer, err := uc.summarizer("")
	if err != nil {
		return fmt.Errorf("configure summarizer: %w", err)
	}

	_, err = uc.run(ctx, variantWorker, doc.ID, summarizer, func(ctx context.Context) (domain.SourceFile, error) {
		return uc.openStored(ctx, doc)
	})
	uc.logger.Info("document_processed",
		"document_id", doc.ID,
		"duration_ms", time.Since(started).Milliseconds(),
		"ok", err == nil,
	)
	return err
}

func (uc *ProcessDocumentUseCase) run(
	ctx context.Context,
	variant string,
	documentID string,
	summarizer ports.Summarizer,
	load func(context.Context) (domain.SourceFile, error),
) (domain.SummarySet, error) {
	summaries, summaryWritten, err := uc.process(ctx, documentID, summarizer, load)
	if uc.metrics != nil {
		uc.metrics.RecordRun(variant, err)
	}
	if err != nil {
		uc.logger.Error("process_document_failed",
			"variant", variant,
			"document_id", documentID,
			"error", err,
		)
		return domain.SummarySet{}, compensate(ctx, uc.store, uc.logger, documentID, summaryWritten, err)
	}
	return summaries, nil
}

func (uc *ProcessDocumentUseCase) process(
	ctx context.Context,
	documentID string,
	summarizer ports.Summarizer,
	load func(context.Context) (domain.SourceFile, error),
) (domain.SummarySet, bool, error) {
	if err := uc.store.UpdateDocumentStatus(ctx, documentID, domain.StatusProcessing); err != nil {
		return domain.SummarySet{}, false, domain.WrapError(domain.ErrPersistence, "set status=processing", err)
	}

	file, err := load(ctx)
	if err != nil {
		return domain.SummarySet{}, false, err
	}

	text, err := extractText(ctx, uc.extractor, file, nil)
	if err != nil {
		return domain.SummarySet{}, false, err
	}

	summaries, err := summarizer.Summarize(ctx, text)
	if err != nil {
		return domain.SummarySet{}, false, fmt.Errorf("summarize text: %w", err)
	}

	if err := uc.store.InsertSummary(ctx, domain.CompletedSummary(documentID, text, summaries)); err != nil {
		return domain.SummarySet{}, false, domain.WrapError(domain.ErrPersistence, "insert summary", err)
	}
	if err := uc.store.UpdateDocumentStatus(ctx, documentID, domain.StatusCompleted); err != nil {
		return domain.SummarySet{}, true, domain.WrapError(domain.ErrPersistence, "set status=completed", err)
	}
	return summaries, true, nil
}

func (uc *ProcessDocumentUseCase) openStored(ctx context.Context, doc *domain.Document) (domain.SourceFile, error) {
	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.SourceFile{}, domain.WrapError(domain.ErrUpload, "open stored object", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.SourceFile{}, domain.WrapError(domain.ErrUpload, "read stored object", err)
	}
	if len(data) == 0 {
		return domain.SourceFile{}, domain.WrapError(domain.ErrUpload, "read stored object", errors.New("stored object is empty"))
	}
	return domain.SourceFile{
		Filename: doc.Filename,
		MimeType: doc.FileType,
		Data:     data,
	}, nil
}
