package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/document-summarizer/internal/infrastructure/resilience"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1"
	DefaultModel    = "gemini-2.5-flash-lite"
)

var ErrMissingAPIKey = errors.New("gemini api key is not configured")

type Config struct {
	Endpoint          string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client calls generateContent over REST. Copies made by WithAPIKey share
// the rate limiter and breaker of the original.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		endpoint:   endpoint,
		model:      model,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   executor,
	}
}

func (c *Client) WithAPIKey(key string) *Client {
	clone := *c
	clone.apiKey = strings.TrimSpace(key)
	return &clone
}

func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends one prompt and returns the first candidate's first part.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	request := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	var text string
	call := func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("gemini rate limit wait: %w", err)
			}
		}
		var response generateResponse
		if err := c.postJSON(ctx, c.generateURL(), request, &response, "generate"); err != nil {
			return err
		}
		out, err := firstCandidateText(response)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini.generate", call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("gemini generate", err)
	}
	return text, nil
}

func (c *Client) generateURL() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

func firstCandidateText(response generateResponse) (string, error) {
	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked prompt: %s", response.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini response has no candidates")
	}
	parts := response.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini candidate has no parts (finish reason %q)", response.Candidates[0].FinishReason)
	}
	return parts[0].Text, nil
}
