package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"docshield/internal/core/domain"
	"docshield/internal/infrastructure/resilience"
)

const defaultLookupTimeout = 3 * time.Second

// Registry is the postgres-backed document registry. The connection pool is
// an explicit object with its own lifecycle (open, ping, close) injected
// here; there is no ambient global connection or cooldown timestamp.
// Failures are classified into typed domain errors at this boundary so the
// verdict engine never inspects error text.
type Registry struct {
	db            *sql.DB
	lookupTimeout time.Duration
	executor      *resilience.Executor
}

type Option func(*Registry)

func WithLookupTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.lookupTimeout = d
		}
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(r *Registry) {
		r.executor = executor
	}
}

func NewRegistry(db *sql.DB, opts ...Option) *Registry {
	r := &Registry{
		db:            db,
		lookupTimeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
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

func (r *Registry) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id TEXT PRIMARY KEY,
	holder_name TEXT NOT NULL,
	doc_type TEXT NOT NULL,
	issue_date TEXT NOT NULL,
	expiry_date TEXT,
	notes TEXT,
	content_digest TEXT NOT NULL,
	fingerprint TEXT,
	features JSONB NOT NULL DEFAULT '{}'::jsonb,
	bound_hash TEXT NOT NULL,
	verify_url TEXT,
	issued_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_issued_at ON documents(issued_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Get fetches one record by doc id. The call is wrapped in a bounded timeout;
// on expiry the caller sees ErrRegistryUnavailable, never an indefinite block.
func (r *Registry) Get(ctx context.Context, docID string) (*domain.DocumentRecord, error) {
	var rec *domain.DocumentRecord
	call := func(ctx context.Context) error {
		lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()

		found, err := r.get(lookupCtx, docID)
		if err != nil {
			return err
		}
		rec = found
		return nil
	}

	var err error
	if r.executor != nil {
		err = r.executor.Execute(ctx, "registry.get", call, resilience.ClassifyRegistryError)
		if resilience.IsCircuitOpen(err) {
			err = domain.WrapError(domain.ErrRegistryUnavailable, "get record", err)
		}
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Registry) get(ctx context.Context, docID string) (*domain.DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT doc_id, holder_name, doc_type, issue_date, expiry_date, notes, content_digest, fingerprint, features, bound_hash, verify_url, issued_at
FROM documents
WHERE doc_id = $1
`, docID)

	var rec domain.DocumentRecord
	var expiry, notes, fingerprint, verifyURL sql.NullString
	var featuresRaw []byte

	err := row.Scan(
		&rec.DocID, &rec.HolderName, &rec.DocType, &rec.IssueDate, &expiry, &notes,
		&rec.ContentDigest, &fingerprint, &featuresRaw, &rec.BoundHash, &verifyURL, &rec.IssuedAt,
	)
	if err != nil {
		return nil, classifyGetError(docID, err)
	}

	rec.ExpiryDate = expiry.String
	rec.Notes = notes.String
	rec.Fingerprint = fingerprint.String
	rec.VerifyURL = verifyURL.String
	if len(featuresRaw) > 0 {
		if err := json.Unmarshal(featuresRaw, &rec.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
	}
	return &rec, nil
}

func classifyGetError(docID string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.WrapError(domain.ErrRecordNotFound, "get record", fmt.Errorf("doc_id %s", docID))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.WrapError(domain.ErrRegistryUnavailable, "get record", err)
	default:
		return domain.WrapError(domain.ErrRegistryUnavailable, "get record", err)
	}
}

// Put inserts a record at issuance. Doc id uniqueness is enforced by the
// primary key; a duplicate insert affects zero rows instead of relying on
// driver-specific error text.
func (r *Registry) Put(ctx context.Context, rec *domain.DocumentRecord) error {
	featuresJSON, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	doc_id, holder_name, doc_type, issue_date, expiry_date, notes, content_digest, fingerprint, features, bound_hash, verify_url, issued_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (doc_id) DO NOTHING
`,
		rec.DocID, rec.HolderName, rec.DocType, rec.IssueDate, rec.ExpiryDate, rec.Notes,
		rec.ContentDigest, rec.Fingerprint, featuresJSON, rec.BoundHash, rec.VerifyURL, rec.IssuedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrRegistryUnavailable, "put record", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "put record", fmt.Errorf("doc_id %s already issued", rec.DocID))
	}
	return nil
}

// ListAll returns every issued record, newest first. Admin/export path, not
// part of the verification registry port.
func (r *Registry) ListAll(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT doc_id, holder_name, doc_type, issue_date, expiry_date, notes, content_digest, fingerprint, features, bound_hash, verify_url, issued_at
FROM documents
ORDER BY issued_at DESC
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRegistryUnavailable, "list records", err)
	}
	defer rows.Close()

	var out []domain.DocumentRecord
	for rows.Next() {
		var rec domain.DocumentRecord
		var expiry, notes, fingerprint, verifyURL sql.NullString
		var featuresRaw []byte
		if err := rows.Scan(
			&rec.DocID, &rec.HolderName, &rec.DocType, &rec.IssueDate, &expiry, &notes,
			&rec.ContentDigest, &fingerprint, &featuresRaw, &rec.BoundHash, &verifyURL, &rec.IssuedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.ExpiryDate = expiry.String
		rec.Notes = notes.String
		rec.Fingerprint = fingerprint.String
		rec.VerifyURL = verifyURL.String
		if len(featuresRaw) > 0 {
			if err := json.Unmarshal(featuresRaw, &rec.Features); err != nil {
				return nil, fmt.Errorf("unmarshal features: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrRegistryUnavailable, "list records", err)
	}
	return out, nil
}
