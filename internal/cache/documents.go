package cache

import (
	"context"
	"database/sql"
	"time"
)

// Document is a cached copy of a fetched remote resource.
type Document struct {
	URL       string
	ETag      string
	Body      string
	FetchedAt time.Time
}

// Documents handles the documents table. It satisfies graph.DocumentCache.
type Documents struct {
	db *sql.DB
}

func NewDocuments(db *sql.DB) *Documents { return &Documents{db: db} }

// GetDocument returns the cached etag and body for a URL, ok=false when the
// URL has never been cached.
func (r *Documents) GetDocument(ctx context.Context, url string) (string, string, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT etag, body FROM documents WHERE url = ?`, url)
	var etag, body string
	if err := row.Scan(&etag, &body); err != nil {
		if err == sql.ErrNoRows {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return etag, body, true, nil
}

// PutDocument upserts the cached copy for a URL.
func (r *Documents) PutDocument(ctx context.Context, url, etag, body string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO documents(url, etag, body, fetched_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET etag=excluded.etag, body=excluded.body, fetched_at=excluded.fetched_at;
	`, url, etag, body, Now())
	return err
}

// Get returns the full cached document, nil when missing.
func (r *Documents) Get(ctx context.Context, url string) (*Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT url, etag, body, fetched_at FROM documents WHERE url = ?`, url)
	var d Document
	if err := row.Scan(&d.URL, &d.ETag, &d.Body, &d.FetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Purge drops cached documents older than the cutoff.
func (r *Documents) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE fetched_at < ?`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
