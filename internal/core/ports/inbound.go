package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

// EventFunc receives stage and progress updates from a pipeline run.
type EventFunc func(domain.PipelineEvent)

// PipelineRunner is the inbound contract for the interactive upload -> summary pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, file domain.SourceFile, onEvent EventFunc) (*domain.PipelineResult, error)
}

// DocumentIngestor is the inbound contract for upload + enqueue.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for server-side processing.
type DocumentProcessor interface {
	Process(ctx context.Context, req domain.ProcessRequest) (domain.SummarySet, error)
	ProcessByID(ctx context.Context, documentID string) error
}

// HistoryReader is the inbound read model for processed documents.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.DocumentWithSummary, error)
	Document(ctx context.Context, id string) (*domain.Document, error)
	Summary(ctx context.Context, documentID string) (*domain.Summary, error)
	ExportXLSX(ctx context.Context, limit int) ([]byte, error)
}
