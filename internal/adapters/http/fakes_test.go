package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/document-summarizer/internal/config"
	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

var testCreatedAt = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type pipelineFake struct {
	events []domain.PipelineEvent
	err    error
	file   domain.SourceFile
}

func (f *pipelineFake) Run(_ context.Context, file domain.SourceFile, onEvent ports.EventFunc) (*domain.PipelineResult, error) {
	f.file = file
	for _, ev := range f.events {
		if onEvent != nil {
			onEvent(ev)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PipelineResult{
		Document: domain.Document{ID: "doc-1", Filename: file.Filename, FileType: file.MimeType, Status: domain.StatusCompleted, CreatedAt: testCreatedAt},
		Summary:  domain.Summary{ID: "sum-1", DocumentID: "doc-1", SummaryShort: "short", KeyPoints: []string{"A"}},
		FileURL:  "file:///data/1773500966535.png",
	}, nil
}

type ingestFake struct {
	err  error
	body string
}

func (f *ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.body = string(raw)
	return &domain.Document{ID: "doc-2", Filename: filename, FileType: mimeType, FileSize: int64(len(raw)), Status: domain.StatusUploaded, CreatedAt: testCreatedAt}, nil
}

type processorFake struct {
	set domain.SummarySet
	err error
	req domain.ProcessRequest
}

func (f *processorFake) Process(_ context.Context, req domain.ProcessRequest) (domain.SummarySet, error) {
	f.req = req
	if err := req.Validate(); err != nil {
		return domain.SummarySet{}, err
	}
	return f.set, f.err
}

func (f *processorFake) ProcessByID(context.Context, string) error { return nil }

type historyFake struct {
	rows  []domain.DocumentWithSummary
	limit int
	err   error
}

func (f *historyFake) Recent(_ context.Context, limit int) ([]domain.DocumentWithSummary, error) {
	f.limit = limit
	return f.rows, f.err
}

func (f *historyFake) Document(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "a.pdf", Status: domain.StatusCompleted, CreatedAt: testCreatedAt}, nil
}

func (f *historyFake) Summary(_ context.Context, documentID string) (*domain.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Summary{ID: "sum-1", DocumentID: documentID, SummaryShort: "short", KeyPoints: []string{}}, nil
}

func (f *historyFake) ExportXLSX(_ context.Context, limit int) ([]byte, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PK-xlsx"), nil
}

type testDeps struct {
	pipeline  *pipelineFake
	ingest    *ingestFake
	processor *processorFake
	history   *historyFake
}

func newTestDeps() *testDeps {
	return &testDeps{
		pipeline:  &pipelineFake{},
		ingest:    &ingestFake{},
		processor: &processorFake{set: domain.SummarySet{Short: "s", Medium: "m", Long: "l", KeyPoints: []string{"A"}}},
		history:   &historyFake{},
	}
}

func (d *testDeps) handler(cfg config.Config) http.Handler {
	return NewRouter(cfg, d.pipeline, d.ingest, d.processor, d.history).Handler()
}

func newTestHandler(cfg config.Config) http.Handler {
	return newTestDeps().handler(cfg)
}
