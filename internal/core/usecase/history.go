package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

type HistoryUseCase struct {
	store    ports.DocumentStore
	exporter ports.HistoryExporter
}

func NewHistoryUseCase(store ports.DocumentStore, exporter ports.HistoryExporter) *HistoryUseCase {
	return &HistoryUseCase{store: store, exporter: exporter}
}

func (uc *HistoryUseCase) Recent(ctx context.Context, limit int) ([]domain.DocumentWithSummary, error) {
	rows, err := uc.store.ListCompletedWithSummaries(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list completed documents: %w", err)
	}
	return rows, nil
}

func (uc *HistoryUseCase) Document(ctx context.Context, id string) (*domain.Document, error) {
	return uc.store.GetDocument(ctx, id)
}

func (uc *HistoryUseCase) Summary(ctx context.Context, documentID string) (*domain.Summary, error) {
	return uc.store.GetSummaryByDocumentID(ctx, documentID)
}

func (uc *HistoryUseCase) ExportXLSX(ctx context.Context, limit int) ([]byte, error) {
	rows, err := uc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out, err := uc.exporter.Export(rows)
	if err != nil {
		return nil, fmt.Errorf("export history: %w", err)
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
