package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// parsePoppler shells out to pdftotext through docconv. Pages come back
// separated by form feeds.
func parsePoppler(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	pages := strings.Split(body, "\f")
	out := pages[:0]
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n"), nil
}
