//go:build !ocr

package ocr

import (
	"errors"

	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

func NewInProcess(string) (ports.TextExtractor, error) {
	return nil, errors.New("in-process ocr requires building with -tags ocr")
}
