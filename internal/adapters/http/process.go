package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

const maxProcessBodyBytes = 64 << 10

type processResponse struct {
	Success   bool              `json:"success"`
	Summaries domain.SummarySet `json:"summaries"`
}

func (rt *Router) processDocument(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxProcessBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if err := rt.validator.validateJSON(processRequestSchema, raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.ProcessRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	set, err := rt.processor.Process(r.Context(), req)
	if err != nil {
		rt.logger.Error("process_document_failed",
			"request_id", middleware.GetReqID(r.Context()),
			"document_id", req.DocumentID,
			"error", err,
		)
		writeError(w, processStatus(err), domain.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, processResponse{Success: true, Summaries: set})
}
