// Package sqlite implements the storage.Repository sink on SQLite.
//
// SQLite has no dedicated timestamp type; date cells are stored as RFC 3339
// strings (TEXT affinity) for reliable round-trip behavior and easy
// debugging.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dq/internal/storage"
)

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func sqlType(dtype string) string {
	switch dtype {
	case "float":
		return "REAL"
	case "date":
		return "TEXT" // RFC 3339
	default:
		return "TEXT"
	}
}

func (r *Repo) EnsureTable(ctx context.Context, spec storage.Spec) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sqlIdent(spec.Name))
	b.WriteString(" (")
	for i, c := range spec.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(sqlType(c.DType))
	}
	b.WriteString(")")

	if _, err := r.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", spec.Name, err)
	}
	return nil
}

func (r *Repo) InsertRows(ctx context.Context, spec storage.Spec, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = sqlIdent(c.Name)
	}
	ph := "(" + strings.TrimRight(strings.Repeat("?,", len(cols)), ",") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", sqlIdent(spec.Name), strings.Join(cols, ", "))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Batch to stay under SQLite's bound-variable limit.
	const maxBatch = 200
	var written int64
	for start := 0; start < len(rows); start += maxBatch {
		end := start + maxBatch
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var q strings.Builder
		q.WriteString(prefix)
		args := make([]any, 0, len(batch)*len(cols))
		for i, row := range batch {
			if i > 0 {
				q.WriteString(", ")
			}
			q.WriteString(ph)
			for _, v := range row {
				args = append(args, bindValue(v))
			}
		}
		res, err := tx.ExecContext(ctx, q.String(), args...)
		if err != nil {
			return written, fmt.Errorf("sqlite: insert into %s: %w", spec.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += n
		}
	}
	return written, tx.Commit()
}

// bindValue maps pipeline cell values to driver-friendly bindings.
func bindValue(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().Format(time.RFC3339Nano)
	}
	return v
}
