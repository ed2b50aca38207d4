package httpadapter

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/usecase"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartSlack  = 1 << 20
)

type uploadParams struct {
	Stream bool
	Async  bool
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	var params uploadParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "stream", query, &params.Stream); err != nil {
		writeError(w, http.StatusBadRequest, "invalid stream parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "async", query, &params.Async); err != nil {
		writeError(w, http.StatusBadRequest, "invalid async parameter")
		return
	}

	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+multipartSlack)
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	mimeType := detectMIME(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if rt.metrics != nil {
		rt.metrics.RecordUpload(mimeType, fileHeader.Size)
	}

	if params.Async {
		if rt.ingest == nil {
			writeError(w, http.StatusServiceUnavailable, "asynchronous processing is not configured")
			return
		}
		doc, err := rt.ingest.Upload(r.Context(), fileHeader.Filename, mimeType, file)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
			return
		}
		writeJSON(w, http.StatusAccepted, doc)
		return
	}

	data, err := usecase.ReadUpload(file, rt.cfg.MaxUploadBytes)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
		return
	}
	source := domain.SourceFile{Filename: fileHeader.Filename, MimeType: mimeType, Data: data}

	if params.Stream {
		rt.streamPipeline(w, r, source)
		return
	}

	result, err := rt.pipeline.Run(r.Context(), source, nil)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) streamPipeline(w http.ResponseWriter, r *http.Request, source domain.SourceFile) {
	stream, ok := newSSEWriter(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	result, err := rt.pipeline.Run(r.Context(), source, func(ev domain.PipelineEvent) {
		stream.send(sseEventStage, ev)
	})
	if err != nil {
		stream.send(sseEventError, errorResponse{Error: domain.UserMessage(err)})
		return
	}
	stream.send(sseEventResult, result)
	if stream.err != nil {
		rt.logger.Warn("sse_write_failed", "request_id", middleware.GetReqID(r.Context()), "error", stream.err)
	}
}

type listParams struct {
	Limit int
}

func bindListParams(r *http.Request) (listParams, error) {
	var params listParams
	err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	return params, err
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	rows, err := rt.history.Recent(r.Context(), params.Limit)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
		return
	}
	if rows == nil {
		rows = []domain.DocumentWithSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": rows})
}

func (rt *Router) exportDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	out, err := rt.history.ExportXLSX(r.Context(), params.Limit)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="summaries.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}
	doc, err := rt.history.Document(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}
	summary, err := rt.history.Summary(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), domain.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func documentIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "documentID", chi.URLParam(r, "documentID"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil || strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return "", false
	}
	return id, true
}

// detectMIME prefers the part header and falls back to the file extension.
func detectMIME(filename, header string) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	if header != "" {
		return header
	}
	return "application/octet-stream"
}
