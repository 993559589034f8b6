// Package postgres is the durable RecordStore: one row per document plus one
// JSONB row per record kind, upserted so the latest record of each kind wins.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vporoshin/docflow/internal/core/domain"
)

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RecordStore) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS document_records (
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	record_kind TEXT NOT NULL,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (document_id, record_kind)
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RecordStore) Store(ctx context.Context, documentID string, record domain.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, status, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
`, documentID, string(domain.StatusReceived), now)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO document_records (document_id, record_kind, payload, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (document_id, record_kind) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`, documentID, string(record.Kind()), payload, now)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store tx: %w", err)
	}
	return nil
}

func (r *RecordStore) Get(ctx context.Context, documentID string) (*domain.DocumentState, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, status, created_at, updated_at
FROM documents
WHERE id = $1
`, documentID)

	state := &domain.DocumentState{}
	var status string
	if err := row.Scan(&state.DocumentID, &status, &state.CreatedAt, &state.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "postgres get",
				fmt.Errorf("document %s", documentID))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	state.Status = domain.DocumentStatus(status)

	rows, err := r.db.QueryContext(ctx, `
SELECT record_kind, payload
FROM document_records
WHERE document_id = $1
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var payload []byte
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := attachRecord(state, domain.RecordKind(kind), payload); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return state, nil
}

func (r *RecordStore) UpdateStatus(ctx context.Context, documentID string, status domain.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1
`, documentID, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "postgres update status",
			fmt.Errorf("document %s", documentID))
	}
	return nil
}

// ListAll returns documents newest-first. The format filter reaches into the
// classification record's JSONB payload.
func (r *RecordStore) ListAll(ctx context.Context, filter domain.ListFilter) ([]domain.DocumentState, error) {
	query := `
SELECT d.id
FROM documents d
`
	args := []any{}
	where := ""

	if filter.Format != "" {
		query += `
JOIN document_records c ON c.document_id = d.id AND c.record_kind = 'classification'
`
		args = append(args, string(filter.Format))
		where = fmt.Sprintf("WHERE c.payload->>'format' = $%d\n", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		cond := fmt.Sprintf("d.status = $%d\n", len(args))
		if where == "" {
			where = "WHERE " + cond
		} else {
			where += "AND " + cond
		}
	}
	query += where + "ORDER BY d.updated_at DESC, d.id\n"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf("LIMIT $%d\n", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf("OFFSET $%d\n", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	out := make([]domain.DocumentState, 0, len(ids))
	for _, id := range ids {
		state, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *state)
	}
	return out, nil
}

func attachRecord(state *domain.DocumentState, kind domain.RecordKind, payload []byte) error {
	var err error
	switch kind {
	case domain.RecordMetadata:
		err = unmarshalInto(&state.Metadata, payload)
	case domain.RecordClassification:
		err = unmarshalInto(&state.Classification, payload)
	case domain.RecordPDFAnalysis:
		err = unmarshalInto(&state.PDFAnalysis, payload)
	case domain.RecordEmailAnalysis:
		err = unmarshalInto(&state.EmailAnalysis, payload)
	case domain.RecordJSONAnalysis:
		err = unmarshalInto(&state.JSONAnalysis, payload)
	case domain.RecordEnrichment:
		err = unmarshalInto(&state.Enrichment, payload)
	case domain.RecordAction:
		err = unmarshalInto(&state.Action, payload)
	default:
		// Rows written by a newer build are skipped, not fatal.
		return nil
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s record: %w", kind, err)
	}
	return nil
}

func unmarshalInto[T any](dst **T, payload []byte) error {
	v := new(T)
	if err := json.Unmarshal(payload, v); err != nil {
		return err
	}
	*dst = v
	return nil
}
