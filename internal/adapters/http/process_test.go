package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/document-summarizer/internal/config"
	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

func postProcess(t *testing.T, deps *testDeps, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/process-document", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	deps.handler(config.Config{}).ServeHTTP(res, req)
	return res
}

func TestProcessDocumentSuccess(t *testing.T) {
	deps := newTestDeps()
	res := postProcess(t, deps, `{"documentId":"doc-1","fileUrl":"https://files.example.com/a.pdf","fileType":"application/pdf","apiKey":"k"}`)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var resp processResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Summaries.Short != "s" || len(resp.Summaries.KeyPoints) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if deps.processor.req.APIKey != "k" || deps.processor.req.FileType != "application/pdf" {
		t.Fatalf("request not decoded: %+v", deps.processor.req)
	}
}

func TestProcessDocumentMissingFields(t *testing.T) {
	res := postProcess(t, newTestDeps(), `{"documentId":"doc-1"}`)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "Missing required fields: fileUrl, fileType" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestProcessDocumentSchemaViolation(t *testing.T) {
	deps := newTestDeps()
	for _, body := range []string{`{"documentId": 42}`, `[]`, `not json`} {
		res := postProcess(t, deps, body)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, res.Code)
		}
	}
	if deps.processor.req.DocumentID != "" {
		t.Fatalf("processor must not run for invalid bodies")
	}
}

func TestProcessDocumentFailureIs500(t *testing.T) {
	deps := newTestDeps()
	deps.processor.err = domain.WrapError(domain.ErrSummaryService, "generate short", errors.New("gemini generate status: 429 Too Many Requests"))

	res := postProcess(t, deps, `{"documentId":"doc-1","fileUrl":"u","fileType":"application/pdf"}`)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Error, "429") {
		t.Fatalf("expected upstream detail, got %q", resp.Error)
	}
}

func TestRequestValidatorLoadsEmbeddedDocument(t *testing.T) {
	v, err := newRequestValidator(t.Context())
	if err != nil {
		t.Fatalf("newRequestValidator() error = %v", err)
	}
	if err := v.validateJSON("Missing", []byte(`{}`)); err == nil {
		t.Fatalf("expected unknown schema error")
	}
	if err := v.validateJSON(processRequestSchema, []byte(`{"apiKey":"x"}`)); err != nil {
		t.Fatalf("validateJSON() error = %v", err)
	}
}
