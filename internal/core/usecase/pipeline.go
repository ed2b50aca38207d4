package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

const variantInteractive = "interactive"

// FailurePolicy decides what happens to an existing Document when a run fails.
type FailurePolicy struct {
	// MarkFailed sets the Document to failed and records an error-only Summary.
	MarkFailed bool
}

// PipelineUseCase drives upload -> extract -> summarize -> persist for one file.
type PipelineUseCase struct {
	storage    ports.ObjectStorage
	store      ports.DocumentStore
	extractor  ports.TextExtractor
	summarizer ports.Summarizer
	policy     FailurePolicy
	metrics    ports.PipelineMetrics
	logger     *slog.Logger
	now        func() time.Time
}

type PipelineOption func(*PipelineUseCase)

func WithFailurePolicy(policy FailurePolicy) PipelineOption {
	return func(uc *PipelineUseCase) {
		uc.policy = policy
	}
}

func WithPipelineMetrics(m ports.PipelineMetrics) PipelineOption {
	return func(uc *PipelineUseCase) {
		uc.metrics = m
	}
}

func WithLogger(logger *slog.Logger) PipelineOption {
	return func(uc *PipelineUseCase) {
		uc.logger = logger
	}
}

func WithClock(now func() time.Time) PipelineOption {
	return func(uc *PipelineUseCase) {
		uc.now = now
	}
}

func NewPipelineUseCase(
	storage ports.ObjectStorage,
	store ports.DocumentStore,
	extractor ports.TextExtractor,
	summarizer ports.Summarizer,
	opts ...PipelineOption,
) *PipelineUseCase {
	uc := &PipelineUseCase{
		storage:    storage,
		store:      store,
		extractor:  extractor,
		summarizer: summarizer,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type pipelineRun struct {
	doc            *domain.Document
	fileURL        string
	text           string
	summaries      domain.SummarySet
	summaryWritten bool
	stored         *domain.Summary
}

func (uc *PipelineUseCase) Run(ctx context.Context, file domain.SourceFile, onEvent ports.EventFunc) (*domain.PipelineResult, error) {
	tracker := newStageTracker(onEvent, uc.metrics, uc.now)
	run := &pipelineRun{}

	err := uc.runStages(ctx, tracker, file, run)
	if uc.metrics != nil {
		uc.metrics.RecordRun(variantInteractive, err)
	}
	if err != nil {
		tracker.fail(err)
		tracker.reset()
		uc.logger.Error("pipeline_failed",
			"filename", file.Filename,
			"mime_type", file.MimeType,
			"document_id", run.documentID(),
			"error", err,
		)
		if run.doc != nil && uc.policy.MarkFailed {
			err = compensate(ctx, uc.store, uc.logger, run.doc.ID, run.summaryWritten, err)
		}
		return nil, err
	}
	tracker.reset()

	uc.logger.Info("pipeline_completed",
		"document_id", run.doc.ID,
		"filename", run.doc.Filename,
		"key_points", len(run.stored.KeyPoints),
	)
	return &domain.PipelineResult{
		Document: *run.doc,
		Summary:  *run.stored,
		FileURL:  run.fileURL,
	}, nil
}

func (uc *PipelineUseCase) runStages(ctx context.Context, tracker *stageTracker, file domain.SourceFile, run *pipelineRun) error {
	if err := tracker.advance(domain.StageUploading); err != nil {
		return err
	}
	if err := uc.upload(ctx, file, run); err != nil {
		return err
	}

	if err := tracker.advance(domain.StageExtracting); err != nil {
		return err
	}
	text, err := extractText(ctx, uc.extractor, file, tracker.report)
	if err != nil {
		return err
	}
	run.text = text

	if err := tracker.advance(domain.StageSummarizing); err != nil {
		return err
	}
	summaries, err := uc.summarize(ctx, text)
	if err != nil {
		return err
	}
	run.summaries = summaries

	if err := uc.persist(ctx, run); err != nil {
		return err
	}
	return tracker.advance(domain.StageComplete)
}

func (uc *PipelineUseCase) upload(ctx context.Context, file domain.SourceFile, run *pipelineRun) error {
	path := ObjectPath(uc.now(), file.Filename)

	fileURL, err := uc.storage.Put(ctx, path, file.MimeType, file.Data)
	if err != nil {
		return domain.WrapError(domain.ErrUpload, "put object", err)
	}
	run.fileURL = fileURL

	doc, err := uc.store.InsertDocument(ctx, domain.NewDocument{
		Filename:    file.Filename,
		FileType:    file.MimeType,
		FileSize:    file.Size(),
		StoragePath: path,
		Status:      domain.StatusProcessing,
	})
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "insert document", err)
	}
	run.doc = doc
	return nil
}

func (uc *PipelineUseCase) summarize(ctx context.Context, text string) (domain.SummarySet, error) {
	summaries, err := uc.summarizer.Summarize(ctx, text)
	if err != nil {
		return domain.SummarySet{}, fmt.Errorf("summarize text: %w", err)
	}
	return summaries, nil
}

func (uc *PipelineUseCase) persist(ctx context.Context, run *pipelineRun) error {
	if err := uc.store.InsertSummary(ctx, domain.CompletedSummary(run.doc.ID, run.text, run.summaries)); err != nil {
		return domain.WrapError(domain.ErrPersistence, "insert summary", err)
	}
	run.summaryWritten = true

	if err := uc.store.UpdateDocumentStatus(ctx, run.doc.ID, domain.StatusCompleted); err != nil {
		return domain.WrapError(domain.ErrPersistence, "set status=completed", err)
	}
	run.doc.Status = domain.StatusCompleted

	stored, err := uc.store.GetSummaryByDocumentID(ctx, run.doc.ID)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "fetch summary", err)
	}
	run.stored = stored
	return nil
}

func (r *pipelineRun) documentID() string {
	if r.doc == nil {
		return ""
	}
	return r.doc.ID
}

// extractText runs the extractor and rejects empty output.
func extractText(ctx context.Context, extractor ports.TextExtractor, file domain.SourceFile, progress ports.ProgressFunc) (string, error) {
	text, err := extractor.Extract(ctx, file, progress)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyExtraction, "extract text", errors.New("extracted text is empty"))
	}
	return text, nil
}

// compensate marks the Document failed and records the error. Once a
// completed Summary is stored the Document is left alone: a failed Document
// must never carry a Summary.
func compensate(ctx context.Context, store ports.DocumentStore, logger *slog.Logger, documentID string, summaryWritten bool, processErr error) error {
	if summaryWritten {
		logger.Warn("compensation_skipped",
			"document_id", documentID,
			"reason", "summary already stored",
			"error", processErr,
		)
		return processErr
	}

	var failures []error
	if err := store.UpdateDocumentStatus(ctx, documentID, domain.StatusFailed); err != nil {
		failures = append(failures, fmt.Errorf("set status=failed: %w", err))
	}
	if err := store.InsertSummary(ctx, domain.FailedSummary(documentID, domain.UserMessage(processErr))); err != nil {
		failures = append(failures, fmt.Errorf("insert error summary: %w", err))
	}
	if len(failures) == 0 {
		return processErr
	}
	return fmt.Errorf("%w; compensation: %v", processErr, errors.Join(failures...))
}

// ObjectPath builds the storage path `<unix-millis>.<ext>` for an upload.
func ObjectPath(now time.Time, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), "."))
	if ext == "" {
		ext = "bin"
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}
