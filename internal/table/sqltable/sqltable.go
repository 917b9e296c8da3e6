// Package sqltable stores the certificates table in SQLite.
package sqltable

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/table"
)

const schema = `
CREATE TABLE IF NOT EXISTS certificates (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	issuer TEXT NOT NULL,
	date_issued TEXT NOT NULL,
	category TEXT NOT NULL,
	certificate_url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_certificates_date_issued ON certificates (date_issued DESC);`

// Table implements table.Table on a database/sql handle.
type Table struct {
	db *sql.DB
}

var _ table.Table = (*Table)(nil)

// Open opens (creating if needed) the SQLite file at path and makes sure
// the certificates table exists.
func Open(ctx context.Context, path string) (*Table, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	t := New(db)
	if err := t.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

// New wraps an existing handle. The caller is responsible for the schema.
func New(db *sql.DB) *Table {
	return &Table{db: db}
}

// Init creates the certificates table when it does not exist yet.
func (t *Table) Init(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create certificates table: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (t *Table) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (t *Table) Close() error {
	return t.db.Close()
}

// Count returns the number of rows in the table.
func (t *Table) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *Table) Select(ctx context.Context) ([]certificate.Record, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, title, issuer, date_issued, category, certificate_url
		FROM certificates
		ORDER BY date_issued DESC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []certificate.Record{}
	for rows.Next() {
		var (
			rec  certificate.Record
			date string
			url  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Issuer, &date, &rec.Category, &url); err != nil {
			return nil, err
		}
		if rec.DateIssued, err = certificate.ParseDate(date); err != nil {
			return nil, fmt.Errorf("certificate %s: %w", rec.ID, err)
		}
		rec.CertificateURL = url.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *Table) Insert(ctx context.Context, fields certificate.Fields) (certificate.Record, error) {
	rec := certificate.Record{ID: uuid.NewString(), Fields: fields}
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO certificates (id, title, issuer, date_issued, category, certificate_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, fields.Title, fields.Issuer, fields.DateIssued.String(), fields.Category,
		nullable(fields.CertificateURL), time.Now().UTC())
	if err != nil {
		return certificate.Record{}, err
	}
	return rec, nil
}

func (t *Table) Update(ctx context.Context, id string, fields certificate.Fields) error {
	result, err := t.db.ExecContext(ctx, `
		UPDATE certificates
		SET title = ?, issuer = ?, date_issued = ?, category = ?, certificate_url = ?
		WHERE id = ?
	`, fields.Title, fields.Issuer, fields.DateIssued.String(), fields.Category,
		nullable(fields.CertificateURL), id)
	if err != nil {
		return err
	}
	return requireRow(result, id)
}

func (t *Table) Delete(ctx context.Context, id string) error {
	result, err := t.db.ExecContext(ctx, `DELETE FROM certificates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", table.ErrNotFound, id)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
