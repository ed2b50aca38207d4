package httpadapter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/document-summarizer/internal/config"
	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	res := httptest.NewRecorder()
	newTestHandler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestUploadDocumentRunsPipeline(t *testing.T) {
	deps := newTestDeps()
	body, contentType := multipartBody(t, "receipt.png", "png-bytes")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if deps.pipeline.file.MimeType != "image/png" {
		t.Fatalf("expected mime type from extension, got %q", deps.pipeline.file.MimeType)
	}
	if string(deps.pipeline.file.Data) != "png-bytes" {
		t.Fatalf("unexpected pipeline input %q", deps.pipeline.file.Data)
	}

	var result domain.PipelineResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Document.Status != domain.StatusCompleted || result.Summary.SummaryShort != "short" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUploadDocumentRequiresFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("not multipart"))
	res := httptest.NewRecorder()
	newTestHandler(config.Config{}).ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentMapsPipelineErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported", domain.WrapError(domain.ErrUnsupportedType, "extract", errors.New("text/plain")), http.StatusUnsupportedMediaType},
		{"empty", domain.WrapError(domain.ErrEmptyExtraction, "extract", errors.New("blank")), http.StatusUnprocessableEntity},
		{"summary", domain.WrapError(domain.ErrSummaryService, "generate short", errors.New("429")), http.StatusBadGateway},
		{"persistence", domain.WrapError(domain.ErrPersistence, "insert summary", errors.New("down")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.pipeline.err = tc.err
			body, contentType := multipartBody(t, "a.pdf", "%PDF")

			req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
			req.Header.Set("Content-Type", contentType)
			res := httptest.NewRecorder()
			deps.handler(config.Config{}).ServeHTTP(res, req)

			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(res.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error body, got %v / %+v", err, resp)
			}
		})
	}
}

func TestUploadDocumentRejectsOversizedFile(t *testing.T) {
	deps := newTestDeps()
	body, contentType := multipartBody(t, "a.pdf", "0123456789")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	deps.handler(config.Config{MaxUploadBytes: 4}).ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentAsyncEnqueues(t *testing.T) {
	deps := newTestDeps()
	body, contentType := multipartBody(t, "a.pdf", "%PDF-1.4")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents?async=true", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if deps.ingest.body != "%PDF-1.4" {
		t.Fatalf("unexpected ingested body %q", deps.ingest.body)
	}
	if deps.pipeline.file.Filename != "" {
		t.Fatalf("pipeline must not run for async uploads")
	}
}

func TestUploadDocumentAsyncWithoutQueue(t *testing.T) {
	deps := newTestDeps()
	handler := NewRouter(config.Config{}, deps.pipeline, nil, deps.processor, deps.history).Handler()
	body, contentType := multipartBody(t, "a.pdf", "%PDF")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents?async=1", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestUploadDocumentRejectsBadFlag(t *testing.T) {
	body, contentType := multipartBody(t, "a.pdf", "%PDF")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents?stream=maybe", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	newTestHandler(config.Config{}).ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

type sseEvent struct {
	name string
	data string
}

func readSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	return events
}

func TestUploadDocumentStreamsStages(t *testing.T) {
	deps := newTestDeps()
	deps.pipeline.events = []domain.PipelineEvent{
		{Stage: domain.StageUploading},
		{Stage: domain.StageExtracting, Progress: 40},
		{Stage: domain.StageSummarizing},
		{Stage: domain.StageComplete, Progress: 100},
	}
	body, contentType := multipartBody(t, "receipt.png", "png")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents?stream=true", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, req)

	if got := res.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", got)
	}
	events := readSSE(t, res.Body.String())
	if len(events) != 5 {
		t.Fatalf("expected 4 stage events and a result, got %d: %+v", len(events), events)
	}
	var ev domain.PipelineEvent
	if err := json.Unmarshal([]byte(events[1].data), &ev); err != nil {
		t.Fatalf("decode stage event: %v", err)
	}
	if ev.Stage != domain.StageExtracting || ev.Progress != 40 {
		t.Fatalf("unexpected second event %+v", ev)
	}
	if events[4].name != sseEventResult {
		t.Fatalf("expected trailing result event, got %q", events[4].name)
	}
}

func TestUploadDocumentStreamEndsWithError(t *testing.T) {
	deps := newTestDeps()
	deps.pipeline.events = []domain.PipelineEvent{{Stage: domain.StageUploading}, {Stage: domain.StageExtracting}}
	deps.pipeline.err = domain.WrapError(domain.ErrUnsupportedType, "extract", errors.New("text/plain"))
	body, contentType := multipartBody(t, "notes.txt", "hi")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents?stream=true", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, req)

	events := readSSE(t, res.Body.String())
	last := events[len(events)-1]
	if last.name != sseEventError {
		t.Fatalf("expected trailing error event, got %+v", last)
	}
	if !strings.Contains(last.data, "Unsupported file type") {
		t.Fatalf("expected readable failure, got %s", last.data)
	}
}

func TestListDocumentsPassesLimit(t *testing.T) {
	deps := newTestDeps()
	deps.history.rows = []domain.DocumentWithSummary{{Document: domain.Document{ID: "doc-1", Status: domain.StatusCompleted}}}

	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents?limit=25", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if deps.history.limit != 25 {
		t.Fatalf("expected limit 25, got %d", deps.history.limit)
	}
	var resp struct {
		Documents []domain.DocumentWithSummary `json:"documents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].ID != "doc-1" {
		t.Fatalf("unexpected documents %+v", resp.Documents)
	}
}

func TestListDocumentsRejectsBadLimit(t *testing.T) {
	res := httptest.NewRecorder()
	newTestHandler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents?limit=ten", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestExportDocuments(t *testing.T) {
	deps := newTestDeps()
	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/export.xlsx?limit=5", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if res.Body.String() != "PK-xlsx" || deps.history.limit != 5 {
		t.Fatalf("unexpected export body %q limit %d", res.Body.String(), deps.history.limit)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	deps := newTestDeps()
	deps.history.err = domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id=missing"))

	for _, path := range []string{"/v1/documents/missing", "/v1/documents/missing/summary"} {
		res := httptest.NewRecorder()
		deps.handler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		if res.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, res.Code)
		}
	}
}

func TestGetSummary(t *testing.T) {
	res := httptest.NewRecorder()
	newTestHandler(config.Config{}).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/doc-9/summary", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var summary domain.Summary
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.DocumentID != "doc-9" {
		t.Fatalf("expected document id from path, got %q", summary.DocumentID)
	}
}

func TestDetectMIME(t *testing.T) {
	cases := []struct {
		filename, header, want string
	}{
		{"a.pdf", "application/pdf", "application/pdf"},
		{"scan.PNG", "application/octet-stream", "image/png"},
		{"photo.jpg", "", "image/jpeg"},
		{"blob", "", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := detectMIME(tc.filename, tc.header); got != tc.want {
			t.Fatalf("detectMIME(%q, %q) = %q, want %q", tc.filename, tc.header, got, tc.want)
		}
	}
}
