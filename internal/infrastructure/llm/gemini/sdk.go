package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/kirillkom/document-summarizer/internal/infrastructure/resilience"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SDKClient is the gRPC transport built on the official generative-ai-go SDK.
type SDKClient struct {
	client   *genai.Client
	model    string
	executor *resilience.Executor
}

func NewSDK(ctx context.Context, apiKey, model string, executor *resilience.Executor) (*SDKClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &SDKClient{client: client, model: model, executor: executor}, nil
}

func (c *SDKClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *SDKClient) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	call := func(ctx context.Context) error {
		resp, err := c.client.GenerativeModel(c.model).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return toStatusError(err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return errors.New("gemini response has no candidates")
		}
		for _, p := range resp.Candidates[0].Content.Parts {
			if t, ok := p.(genai.Text); ok {
				text = string(t)
				return nil
			}
		}
		return errors.New("gemini candidate has no text part")
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

var grpcToHTTP = map[codes.Code]int{
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.Unauthenticated:   http.StatusUnauthorized,
	codes.PermissionDenied:  http.StatusForbidden,
	codes.NotFound:          http.StatusNotFound,
	codes.ResourceExhausted: http.StatusTooManyRequests,
	codes.Internal:          http.StatusInternalServerError,
	codes.Unavailable:       http.StatusServiceUnavailable,
	codes.DeadlineExceeded:  http.StatusGatewayTimeout,
}

// toStatusError maps SDK failures onto HTTPStatusError so both transports
// share one classifier.
func toStatusError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &HTTPStatusError{
			Operation:  "generate",
			StatusCode: apiErr.Code,
			Status:     fmt.Sprintf("%d %s", apiErr.Code, http.StatusText(apiErr.Code)),
			Body:       apiErr.Message,
		}
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		if code, mapped := grpcToHTTP[st.Code()]; mapped {
			return &HTTPStatusError{
				Operation:  "generate",
				StatusCode: code,
				Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
				Body:       st.Message(),
			}
		}
	}
	return fmt.Errorf("gemini sdk generate: %w", err)
}

// SDKPool keeps one SDK client per api key.
type SDKPool struct {
	model    string
	executor *resilience.Executor

	mu      sync.Mutex
	clients map[string]*SDKClient
}

func NewSDKPool(model string, executor *resilience.Executor) *SDKPool {
	return &SDKPool{
		model:    model,
		executor: executor,
		clients:  make(map[string]*SDKClient),
	}
}

func (p *SDKPool) Get(ctx context.Context, apiKey string) (*SDKClient, error) {
	key := strings.TrimSpace(apiKey)
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[key]; ok {
		return c, nil
	}
	c, err := NewSDK(ctx, key, p.model, p.executor)
	if err != nil {
		return nil, err
	}
	p.clients[key] = c
	return c, nil
}

func (p *SDKPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for key, c := range p.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.clients, key)
	}
	return errors.Join(errs...)
}
