package xlsx

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

const (
	sheetName = "Summaries"
	// Excel refuses cells longer than this.
	maxCellChars = 32767
)

var headers = []string{
	"Created At",
	"Filename",
	"File Type",
	"File Size",
	"Short Summary",
	"Medium Summary",
	"Long Summary",
	"Key Points",
}

type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Export writes one row per document; documents without a summary keep
// their summary columns empty.
func (e *Exporter) Export(rows []domain.DocumentWithSummary) ([]byte, error) {
	started := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i, item := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		write(1, item.CreatedAt.UTC().Format(time.RFC3339))
		write(2, item.Filename)
		write(3, item.FileType)
		write(4, item.FileSize)
		if s := item.Summary; s != nil {
			write(5, clip(s.SummaryShort))
			write(6, clip(s.SummaryMedium))
			write(7, clip(s.SummaryLong))
			write(8, clip(strings.Join(s.KeyPoints, "\n")))
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "B", 32)
	_ = f.SetColWidth(sheetName, "C", "D", 16)
	_ = f.SetColWidth(sheetName, "E", "H", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export_xlsx",
		"rows", len(rows),
		"bytes", buf.Len(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxCellChars {
		return s
	}
	r := []rune(s)
	return string(r[:maxCellChars-1]) + "…"
}
