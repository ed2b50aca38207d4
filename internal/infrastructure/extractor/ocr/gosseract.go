//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
	"github.com/otiai10/gosseract/v2"
)

type inProcess struct {
	language string
}

// NewInProcess links libtesseract through cgo.
func NewInProcess(language string) (ports.TextExtractor, error) {
	if language == "" {
		language = "eng"
	}
	return &inProcess{language: language}, nil
}

func (e *inProcess) Extract(ctx context.Context, file domain.SourceFile, progress ports.ProgressFunc) (string, error) {
	report(progress, 0)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("gosseract language: %w", err)
	}
	if err := client.SetImageFromBytes(file.Data); err != nil {
		return "", fmt.Errorf("gosseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}

	report(progress, 100)
	return normalize(text), nil
}
