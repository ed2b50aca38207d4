// Package ocr recognizes text in raster images.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

type Config struct {
	Binary      string
	Language    string
	TessdataDir string
	// Timeout caps a single recognition run.
	Timeout time.Duration
}

// Tesseract runs the tesseract CLI, feeding the image on stdin.
type Tesseract struct {
	cfg    Config
	runner Runner
}

func NewTesseract(cfg Config, runner Runner, logger *slog.Logger) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{timeout: cfg.Timeout, logger: logger}
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Extract reports progress at two points only, 0 before the CLI starts and
// 100 once it exits successfully. The CLI exposes nothing in between.
func (t *Tesseract) Extract(ctx context.Context, file domain.SourceFile, progress ports.ProgressFunc) (string, error) {
	report(progress, 0)

	out, err := t.runner.Run(ctx, Command{
		Name:  t.cfg.Binary,
		Args:  t.args(),
		Stdin: file.Data,
	})
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", file.Filename, err)
	}

	report(progress, 100)
	return normalize(string(out)), nil
}

func (t *Tesseract) args() []string {
	args := []string{"stdin", "stdout", "-l", t.cfg.Language}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	return strings.TrimSpace(text)
}

func report(progress ports.ProgressFunc, percent int) {
	if progress != nil {
		progress(percent)
	}
}
