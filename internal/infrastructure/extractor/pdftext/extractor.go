// Package pdftext reads the text layer of PDF documents.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

const (
	BackendNative  = "native"
	BackendPoppler = "poppler"
)

type parseFunc func(ctx context.Context, data []byte) (string, error)

type Extractor struct {
	backend  string
	parse    parseFunc
	fallback bool
	logger   *slog.Logger
}

type Option func(*Extractor)

// WithScanFallback retries with the show-text byte scan when the backend fails.
func WithScanFallback(enabled bool) Option {
	return func(e *Extractor) {
		e.fallback = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(backend string, opts ...Option) (*Extractor, error) {
	e := &Extractor{logger: slog.Default()}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNative:
		e.backend, e.parse = BackendNative, parseNative
	case BackendPoppler:
		e.backend, e.parse = BackendPoppler, parsePoppler
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", backend)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract returns the page texts joined with newlines. Progress is not
// reported for PDFs.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile, _ ports.ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.parse(ctx, file.Data)
	if err == nil {
		return text, nil
	}
	if !e.fallback {
		return "", fmt.Errorf("%s parse %s: %w", e.backend, file.Filename, err)
	}

	e.logger.Warn("pdf_backend_failed",
		"backend", e.backend,
		"filename", file.Filename,
		"error", err,
	)
	return ScanShowText(file.Data), nil
}
