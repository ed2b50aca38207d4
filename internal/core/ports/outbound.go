package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

// ProgressFunc receives OCR progress as an integer percentage.
type ProgressFunc func(percent int)

// DocumentStore persists documents and their summaries.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc domain.NewDocument) (*domain.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	InsertSummary(ctx context.Context, summary domain.Summary) error
	GetSummaryByDocumentID(ctx context.Context, documentID string) (*domain.Summary, error)
	ListCompletedWithSummaries(ctx context.Context, limit int) ([]domain.DocumentWithSummary, error)
}

// ObjectStorage stores source documents and returns their URL.
type ObjectStorage interface {
	Put(ctx context.Context, path, contentType string, data []byte) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// SourceFetcher downloads a document referenced by URL.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor turns a raw file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.SourceFile, progress ProgressFunc) (string, error)
}

// TextGenerator is the opaque text-in/text-out generative service.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces the three summaries and the key points for a text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (domain.SummarySet, error)
}

// HistoryExporter renders history rows into a spreadsheet.
type HistoryExporter interface {
	Export(rows []domain.DocumentWithSummary) ([]byte, error)
}

// PipelineMetrics records pipeline observations.
type PipelineMetrics interface {
	ObserveStage(stage domain.Stage, seconds float64)
	RecordRun(variant string, err error)
	RecordGeneration(kind string, err error)
}
