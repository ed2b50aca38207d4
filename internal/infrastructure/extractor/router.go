// Package extractor dispatches source files to a text backend by MIME type.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

type Router struct {
	pdf   ports.TextExtractor
	image ports.TextExtractor
}

func NewRouter(pdf, image ports.TextExtractor) *Router {
	return &Router{pdf: pdf, image: image}
}

// Extract picks exactly one backend. Unknown types fail before the payload
// is read.
func (r *Router) Extract(ctx context.Context, file domain.SourceFile, progress ports.ProgressFunc) (string, error) {
	mediaType := NormalizeMIME(file.MimeType)

	var (
		backend ports.TextExtractor
		op      string
	)
	switch {
	case mediaType == "application/pdf":
		backend, op = r.pdf, "extract pdf"
	case strings.HasPrefix(mediaType, "image/"):
		backend, op = r.image, "extract image"
	}
	if backend == nil {
		return "", domain.WrapError(domain.ErrUnsupportedType, "extract", fmt.Errorf("mime type %q", file.MimeType))
	}

	text, err := backend.Extract(ctx, file, progress)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrExtraction, op, err)
	}
	return text, nil
}

// NormalizeMIME lower-cases a media type and drops its parameters.
func NormalizeMIME(value string) string {
	base, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
