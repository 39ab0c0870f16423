// Package mssql implements the storage.Repository sink on SQL Server via
// database/sql and the go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"dq/internal/storage"
)

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func sqlType(dtype string) string {
	switch dtype {
	case "float":
		return "FLOAT"
	case "date":
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

func (r *Repo) EnsureTable(ctx context.Context, spec storage.Spec) error {
	var cols strings.Builder
	for i, c := range spec.Columns {
		if i > 0 {
			cols.WriteString(", ")
		}
		cols.WriteString(sqlIdent(c.Name))
		cols.WriteString(" ")
		cols.WriteString(sqlType(c.DType))
	}

	// SQL Server has no CREATE TABLE IF NOT EXISTS; guard with OBJECT_ID.
	q := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		spec.Name, sqlIdent(spec.Name), cols.String(),
	)
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("mssql: create table %s: %w", spec.Name, err)
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
	ph := make([]string, len(cols))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var written int64
	for _, row := range rows {
		for i := range ph {
			ph[i] = fmt.Sprintf("@p%d", i+1)
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			sqlIdent(spec.Name), strings.Join(cols, ", "), strings.Join(ph, ", "))
		if _, err := tx.ExecContext(ctx, q, row...); err != nil {
			return written, fmt.Errorf("mssql: insert into %s: %w", spec.Name, err)
		}
		written++
	}
	return written, tx.Commit()
}
