package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
	"github.com/kirillkom/document-summarizer/internal/core/ports"
)

// IngestDocumentUseCase stores an upload and queues it for the worker.
type IngestDocumentUseCase struct {
	store    ports.DocumentStore
	storage  ports.ObjectStorage
	queue    ports.MessageQueue
	maxBytes int64
	now      func() time.Time
}

func NewIngestDocumentUseCase(
	store ports.DocumentStore,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxBytes int64,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		store:    store,
		storage:  storage,
		queue:    queue,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	data, err := ReadUpload(body, uc.maxBytes)
	if err != nil {
		return nil, err
	}

	path := ObjectPath(uc.now(), filename)
	if _, err := uc.storage.Put(ctx, path, mimeType, data); err != nil {
		return nil, domain.WrapError(domain.ErrUpload, "put object", err)
	}

	doc, err := uc.store.InsertDocument(ctx, domain.NewDocument{
		Filename:    filename,
		FileType:    mimeType,
		FileSize:    int64(len(data)),
		StoragePath: path,
		Status:      domain.StatusUploaded,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "insert document", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return doc, nil
}

// ReadUpload reads a request body, rejecting empty or oversized files.
func ReadUpload(body io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		body = io.LimitReader(body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpload, "read upload", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("file is empty"))
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("file exceeds %d bytes", maxBytes))
	}
	return data, nil
}
