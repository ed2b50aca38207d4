package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

type statusCall struct {
	id     string
	status domain.DocumentStatus
}

type storeFake struct {
	mu sync.Mutex

	docs        map[string]*domain.Document
	summaries   map[string]domain.Summary
	statusCalls []statusCall
	inserted    []domain.Summary
	nextID      int

	insertDocErr     error
	insertSummaryErr error
	statusErr        error
	completedErr     error
	getSummaryErr    error
}

func newStoreFake() *storeFake {
	return &storeFake{
		docs:      map[string]*domain.Document{},
		summaries: map[string]domain.Summary{},
	}
}

func (f *storeFake) InsertDocument(_ context.Context, doc domain.NewDocument) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertDocErr != nil {
		return nil, f.insertDocErr
	}
	f.nextID++
	created := &domain.Document{
		ID:          fmt.Sprintf("doc-%d", f.nextID),
		Filename:    doc.Filename,
		FileType:    doc.FileType,
		FileSize:    doc.FileSize,
		StoragePath: doc.StoragePath,
		Status:      doc.Status,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.docs[created.ID] = created
	copyDoc := *created
	return &copyDoc, nil
}

func (f *storeFake) UpdateDocumentStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: status})
	if f.statusErr != nil && status != domain.StatusFailed {
		return f.statusErr
	}
	if f.completedErr != nil && status == domain.StatusCompleted {
		return f.completedErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update status", errors.New(id))
	}
	doc.Status = status
	return nil
}

func (f *storeFake) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *storeFake) InsertSummary(_ context.Context, summary domain.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertSummaryErr != nil && !summary.Failed() {
		return f.insertSummaryErr
	}
	summary.ID = "sum-" + summary.DocumentID
	f.inserted = append(f.inserted, summary)
	f.summaries[summary.DocumentID] = summary
	return nil
}

func (f *storeFake) GetSummaryByDocumentID(_ context.Context, documentID string) (*domain.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getSummaryErr != nil {
		return nil, f.getSummaryErr
	}
	s, ok := f.summaries[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrSummaryNotFound, "get summary", errors.New(documentID))
	}
	return &s, nil
}

func (f *storeFake) ListCompletedWithSummaries(_ context.Context, limit int) ([]domain.DocumentWithSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.DocumentWithSummary{}
	for id, doc := range f.docs {
		if doc.Status != domain.StatusCompleted {
			continue
		}
		row := domain.DocumentWithSummary{Document: *doc}
		if s, ok := f.summaries[id]; ok {
			row.Summary = &s
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *storeFake) status(id string) domain.DocumentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.docs[id]; ok {
		return doc.Status
	}
	return ""
}

type storageFake struct {
	objects map[string][]byte
	putErr  error
	openErr error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Put(_ context.Context, path, _ string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[path] = append([]byte(nil), data...)
	return "file:///data/" + path, nil
}

func (f *storageFake) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	data, ok := f.objects[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type extractorFake struct {
	text     string
	err      error
	progress []int
	calls    int
}

func (f *extractorFake) Extract(_ context.Context, _ domain.SourceFile, progress ports.ProgressFunc) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for _, p := range f.progress {
		if progress != nil {
			progress(p)
		}
	}
	return f.text, nil
}

// generatorFake answers prompts in order and can fail on a given call number.
type generatorFake struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	failOn  int
	failErr error
	reply   func(prompt string) string
}

func (f *generatorFake) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.failOn > 0 && f.calls == f.failOn {
		return "", f.failErr
	}
	if f.reply != nil {
		return f.reply(prompt), nil
	}
	return fmt.Sprintf("answer %d", f.calls), nil
}

type summarizerFake struct {
	set   domain.SummarySet
	err   error
	calls int
}

func (f *summarizerFake) Summarize(context.Context, string) (domain.SummarySet, error) {
	f.calls++
	if f.err != nil {
		return domain.SummarySet{}, f.err
	}
	return f.set, nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type fetcherFake struct {
	data []byte
	err  error
	url  string
}

func (f *fetcherFake) Fetch(_ context.Context, url string) ([]byte, error) {
	f.url = url
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type metricsFake struct {
	mu          sync.Mutex
	stages      []domain.Stage
	runs        map[string]int
	failedRuns  map[string]int
	generations map[string]int
}

func newMetricsFake() *metricsFake {
	return &metricsFake{
		runs:        map[string]int{},
		failedRuns:  map[string]int{},
		generations: map[string]int{},
	}
}

func (m *metricsFake) ObserveStage(stage domain.Stage, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *metricsFake) RecordRun(variant string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failedRuns[variant]++
		return
	}
	m.runs[variant]++
}

func (m *metricsFake) RecordGeneration(kind string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[kind]++
}

var validSummaries = domain.SummarySet{
	Short:     "short summary",
	Medium:    "medium summary",
	Long:      "long summary",
	KeyPoints: []string{"Point A", "Point B"},
}
