// Package storage persists cleaned tables into a relational backend.
//
// Persistence is optional: the pipeline's contractual outputs are the CSV and
// report artifacts. When a backend is configured (-store/-dsn), the cleaned
// table is additionally loaded into one run-scoped table so downstream SQL
// consumers can query it without re-parsing CSV.
//
// Backends register themselves under a kind name; the pipeline selects one
// via config. This mirrors a create-if-not-exists, bulk-insert contract — no
// upserts, no history.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Config selects and connects a backend.
type Config struct {
	Kind string // registered backend kind: "postgres", "sqlite", "mssql"
	DSN  string
}

// Column describes one destination column using the table package's loose
// dtype labels ("float", "date", everything else is text). Each backend maps
// labels to its own SQL types.
type Column struct {
	Name  string
	DType string
}

// Spec describes the destination table.
type Spec struct {
	Name    string
	Columns []Column
}

// Repository is the backend-agnostic sink for cleaned rows.
//
// Implementations must treat EnsureTable as idempotent (create if not
// exists) and InsertRows as a plain append.
type Repository interface {
	// Close releases backend resources. Call once at shutdown.
	Close()

	// EnsureTable creates the destination table when it does not exist.
	EnsureTable(ctx context.Context, spec Spec) error

	// InsertRows bulk-appends rows aligned to spec.Columns and returns the
	// number of rows written.
	InsertRows(ctx context.Context, spec Spec, rows [][]any) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register installs a backend factory under a kind name. Backends call this
// from init(); importing dq/internal/storage/all pulls every backend in.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a repository for the configured backend kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if strings.TrimSpace(cfg.Kind) == "" {
		return nil, fmt.Errorf("storage: backend kind is empty")
	}
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported backend kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

var identRe = regexp.MustCompile(`[^a-z0-9_]+`)

// NormalizeName converts an arbitrary name (run IDs include timestamps) into
// a safe lowercase SQL identifier.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = identRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "dataset"
	}
	return s
}
