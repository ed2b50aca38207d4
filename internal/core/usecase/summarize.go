package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

const (
	kindShort     = "short"
	kindMedium    = "medium"
	kindLong      = "long"
	kindKeyPoints = "key_points"
)

type summaryTask struct {
	kind   string
	prompt string
}

// SummaryGenerator issues the four generation requests for one text.
type SummaryGenerator struct {
	generator   ports.TextGenerator
	prompts     domain.PromptSet
	concurrency int
	parseKeys   func(string) []string
	metrics     ports.PipelineMetrics
}

type SummaryOption func(*SummaryGenerator)

// WithConcurrency runs up to n requests at once. n <= 1 keeps them sequential.
func WithConcurrency(n int) SummaryOption {
	return func(g *SummaryGenerator) {
		g.concurrency = n
	}
}

// WithJSONKeyPoints accepts key points returned as a JSON array.
func WithJSONKeyPoints() SummaryOption {
	return func(g *SummaryGenerator) {
		g.parseKeys = ParseKeyPoints
	}
}

func WithSummaryMetrics(m ports.PipelineMetrics) SummaryOption {
	return func(g *SummaryGenerator) {
		g.metrics = m
	}
}

func NewSummaryGenerator(generator ports.TextGenerator, prompts domain.PromptSet, opts ...SummaryOption) *SummaryGenerator {
	g := &SummaryGenerator{
		generator:   generator,
		prompts:     prompts.WithDefaults(),
		concurrency: 1,
		parseKeys:   CleanKeyPoints,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SummaryGenerator) Summarize(ctx context.Context, text string) (domain.SummarySet, error) {
	tasks := []summaryTask{
		{kind: kindShort, prompt: g.prompts.Summary(g.prompts.ShortLength, text)},
		{kind: kindMedium, prompt: g.prompts.Summary(g.prompts.MediumLength, text)},
		{kind: kindLong, prompt: g.prompts.Summary(g.prompts.LongLength, text)},
		{kind: kindKeyPoints, prompt: g.prompts.KeyPoints(text)},
	}

	var (
		results []string
		err     error
	)
	if g.concurrency > 1 {
		results, err = g.runConcurrent(ctx, tasks)
	} else {
		results, err = g.runSequential(ctx, tasks)
	}
	if err != nil {
		return domain.SummarySet{}, err
	}

	return domain.SummarySet{
		Short:     strings.TrimSpace(results[0]),
		Medium:    strings.TrimSpace(results[1]),
		Long:      strings.TrimSpace(results[2]),
		KeyPoints: g.parseKeys(results[3]),
	}, nil
}

func (g *SummaryGenerator) runSequential(ctx context.Context, tasks []summaryTask) ([]string, error) {
	results := make([]string, len(tasks))
	for i, task := range tasks {
		out, err := g.generate(ctx, task)
		if err != nil {
			return nil, err
		}
		results[i] = out
	}
	return results, nil
}

func (g *SummaryGenerator) runConcurrent(ctx context.Context, tasks []summaryTask) ([]string, error) {
	results := make([]string, len(tasks))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for i, task := range tasks {
		group.Go(func() error {
			out, err := g.generate(groupCtx, task)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *SummaryGenerator) generate(ctx context.Context, task summaryTask) (string, error) {
	out, err := g.generator.Generate(ctx, task.prompt)
	if g.metrics != nil {
		g.metrics.RecordGeneration(task.kind, err)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrSummaryService, fmt.Sprintf("generate %s", task.kind), err)
	}
	return out, nil
}
