package sqlstore

import (
	"context"
	"fmt"
)

const schemaLockID int64 = 2026031401

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('uploaded', 'processing', 'completed', 'failed')),
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status_created_at ON documents(status, created_at DESC);

CREATE TABLE IF NOT EXISTS summaries (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id),
	extracted_text TEXT,
	summary_short TEXT,
	summary_medium TEXT,
	summary_long TEXT,
	key_points JSONB NOT NULL DEFAULT '[]'::jsonb,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_document_id ON summaries(document_id, created_at DESC);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('uploaded', 'processing', 'completed', 'failed')),
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status_created_at ON documents(status, created_at DESC);

CREATE TABLE IF NOT EXISTS summaries (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id),
	extracted_text TEXT,
	summary_short TEXT,
	summary_medium TEXT,
	summary_long TEXT,
	key_points TEXT NOT NULL DEFAULT '[]',
	error_message TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_document_id ON summaries(document_id, created_at DESC);
`

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ddl := sqliteSchema
	if s.dialect == DialectPostgres {
		// Serialize bootstrap DDL across api/worker startups.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
		ddl = postgresSchema
	}

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
