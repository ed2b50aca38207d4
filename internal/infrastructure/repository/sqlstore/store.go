package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

// Placeholders are numbered in order of first appearance in every query;
// the sqlite driver binds `$N` by position of appearance.

type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	newID   func() string
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func (s *Store) InsertDocument(ctx context.Context, doc domain.NewDocument) (*domain.Document, error) {
	created := &domain.Document{
		ID:          s.newID(),
		Filename:    doc.Filename,
		FileType:    doc.FileType,
		FileSize:    doc.FileSize,
		StoragePath: doc.StoragePath,
		Status:      doc.Status,
		CreatedAt:   s.now(),
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO documents (id, filename, file_type, file_size, storage_path, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`,
		created.ID, created.Filename, created.FileType, created.FileSize, created.StoragePath,
		string(created.Status), created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, filename, file_type, file_size, storage_path, status, created_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var status string
	err := row.Scan(&doc.ID, &doc.Filename, &doc.FileType, &doc.FileSize, &doc.StoragePath, &status, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

// InsertSummary writes either form of the row. Empty text fields are stored
// as NULL so error-only rows stay distinguishable.
func (s *Store) InsertSummary(ctx context.Context, summary domain.Summary) error {
	keyPoints := summary.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	keyPointsJSON, err := json.Marshal(keyPoints)
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO summaries (
	id, document_id, extracted_text, summary_short, summary_medium, summary_long, key_points, error_message, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`,
		s.newID(), summary.DocumentID,
		nullString(summary.ExtractedText), nullString(summary.SummaryShort),
		nullString(summary.SummaryMedium), nullString(summary.SummaryLong),
		string(keyPointsJSON), nullString(summary.ErrorMessage), s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

const summaryColumns = `s.id, s.document_id, s.extracted_text, s.summary_short, s.summary_medium, s.summary_long, s.key_points, s.error_message, s.created_at`

func (s *Store) GetSummaryByDocumentID(ctx context.Context, documentID string) (*domain.Summary, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+summaryColumns+`
FROM summaries s
WHERE s.document_id = $1
ORDER BY s.created_at DESC
LIMIT 1
`, documentID)

	var sr summaryRow
	if err := row.Scan(sr.targets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSummaryNotFound, "get summary", fmt.Errorf("document_id=%s", documentID))
		}
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	return sr.toDomain()
}

// ListCompletedWithSummaries returns completed documents, newest first, each
// joined with its latest summary.
func (s *Store) ListCompletedWithSummaries(ctx context.Context, limit int) ([]domain.DocumentWithSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT d.id, d.filename, d.file_type, d.file_size, d.storage_path, d.status, d.created_at, `+summaryColumns+`
FROM documents d
LEFT JOIN summaries s ON s.id = (
	SELECT s2.id FROM summaries s2 WHERE s2.document_id = d.id ORDER BY s2.created_at DESC LIMIT 1
)
WHERE d.status = $1
ORDER BY d.created_at DESC
LIMIT $2
`, string(domain.StatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("list completed documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentWithSummary, 0, limit)
	for rows.Next() {
		var (
			doc    domain.Document
			status string
			sr     summaryRow
		)
		targets := append([]any{&doc.ID, &doc.Filename, &doc.FileType, &doc.FileSize, &doc.StoragePath, &status, &doc.CreatedAt}, sr.targets()...)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan completed document: %w", err)
		}
		doc.Status = domain.DocumentStatus(status)

		item := domain.DocumentWithSummary{Document: doc}
		if sr.id.Valid {
			summary, err := sr.toDomain()
			if err != nil {
				return nil, err
			}
			item.Summary = summary
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed documents: %w", err)
	}
	return out, nil
}

type summaryRow struct {
	id            sql.NullString
	documentID    sql.NullString
	extractedText sql.NullString
	short         sql.NullString
	medium        sql.NullString
	long          sql.NullString
	keyPoints     []byte
	errorMessage  sql.NullString
	createdAt     sql.NullTime
}

func (r *summaryRow) targets() []any {
	return []any{
		&r.id, &r.documentID, &r.extractedText, &r.short, &r.medium, &r.long,
		&r.keyPoints, &r.errorMessage, &r.createdAt,
	}
}

func (r *summaryRow) toDomain() (*domain.Summary, error) {
	keyPoints := []string{}
	if len(r.keyPoints) > 0 {
		if err := json.Unmarshal(r.keyPoints, &keyPoints); err != nil {
			return nil, fmt.Errorf("unmarshal key points: %w", err)
		}
	}
	return &domain.Summary{
		ID:            r.id.String,
		DocumentID:    r.documentID.String,
		ExtractedText: r.extractedText.String,
		SummaryShort:  r.short.String,
		SummaryMedium: r.medium.String,
		SummaryLong:   r.long.String,
		KeyPoints:     keyPoints,
		ErrorMessage:  r.errorMessage.String,
		CreatedAt:     r.createdAt.Time,
	}, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
