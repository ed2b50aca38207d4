package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

// Fetcher downloads source files referenced by http(s) URLs.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fetch file", fmt.Errorf("unsupported file url %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpload, "fetch file", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, domain.WrapError(domain.ErrUpload, "fetch file", fmt.Errorf("status: %s", resp.Status))
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpload, "read fetched file", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fetch file", fmt.Errorf("file exceeds %d bytes", f.maxBytes))
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrUpload, "fetch file", errors.New("empty response body"))
	}
	return data, nil
}
