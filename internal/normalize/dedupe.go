package normalize

import (
	"dq/internal/runlog"
	"dq/internal/table"
)

// Deduplicate drops all but the first occurrence (original row order) of each
// primary-key value, in place, and returns the number of rows dropped.
//
// A missing key column is a no-op. Null keys are NOT special-cased: null is a
// value for grouping purposes, so several null-key rows collapse to the first
// one. First-occurrence-wins, not null-safe.
func Deduplicate(t *table.Table, key string, log *runlog.Logger) int {
	ci := t.ColIndex(key)
	if ci < 0 {
		return 0
	}

	seen := make(map[string]struct{}, t.Len())
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		k := table.GroupKey(row[ci])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept

	log.Infof("Deduplicated on %s: dropped=%d", key, dropped)
	return dropped
}
