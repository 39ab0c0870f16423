package normalize

import (
	"testing"

	"dq/internal/runlog"
	"dq/internal/table"
)

//
// Deduplicate
//

// TestDeduplicateFirstWins: the first occurrence by original row order
// survives, later duplicates drop.
func TestDeduplicateFirstWins(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"id", "x"})
	tab.Append([]any{1.0, "a"})
	tab.Append([]any{2.0, "b"})
	tab.Append([]any{1.0, "c"})

	dropped := Deduplicate(tab, "id", runlog.Discard())

	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if tab.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tab.Len())
	}
	if s, _ := table.Text(tab.Cell(0, 1)); s != "a" {
		t.Fatalf("first occurrence lost, row 0 x = %q", s)
	}
	if s, _ := table.Text(tab.Cell(1, 1)); s != "b" {
		t.Fatalf("row 1 x = %q, want \"b\"", s)
	}
}

// TestDeduplicateNullKeysCollapse documents the null-key behavior: null
// counts as a value, so several null-key rows collapse to the first. This is
// first-occurrence-wins, not null-safe — preserved deliberately.
func TestDeduplicateNullKeysCollapse(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"id", "x"})
	tab.Append([]any{nil, "a"})
	tab.Append([]any{nil, "b"})
	tab.Append([]any{3.0, "c"})

	dropped := Deduplicate(tab, "id", runlog.Discard())

	if dropped != 1 || tab.Len() != 2 {
		t.Fatalf("dropped=%d rows=%d, want 1 and 2", dropped, tab.Len())
	}
	if s, _ := table.Text(tab.Cell(0, 1)); s != "a" {
		t.Fatalf("surviving null-key row x = %q, want \"a\"", s)
	}
}

// TestDeduplicateMissingKeyNoOp: absent key column leaves the table intact.
func TestDeduplicateMissingKeyNoOp(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"x"})
	tab.Append([]any{"a"})
	tab.Append([]any{"a"})

	if dropped := Deduplicate(tab, "id", runlog.Discard()); dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if tab.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tab.Len())
	}
}

// TestDeduplicateUniqueSurvivors: every surviving key value is unique and the
// output is never larger than the input.
func TestDeduplicateUniqueSurvivors(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"id"})
	for _, v := range []any{"a", "b", "a", "c", "b", "a", nil, nil} {
		tab.Append([]any{v})
	}
	before := tab.Len()

	Deduplicate(tab, "id", runlog.Discard())

	if tab.Len() > before {
		t.Fatalf("output grew: %d > %d", tab.Len(), before)
	}
	seen := map[string]bool{}
	for ri := 0; ri < tab.Len(); ri++ {
		k := table.GroupKey(tab.Cell(ri, 0))
		if seen[k] {
			t.Fatalf("duplicate key survived: %q", k)
		}
		seen[k] = true
	}
}
