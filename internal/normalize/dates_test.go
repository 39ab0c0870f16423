package normalize

import (
	"testing"
	"time"

	"dq/internal/runlog"
	"dq/internal/table"
)

func dateAt(tab *table.Table, ri int) (time.Time, bool) {
	ts, ok := tab.Cell(ri, 0).(time.Time)
	return ts, ok
}

//
// DatesFlex
//

// TestDatesFlexPicksDayFirstByRate builds a column where day-first parsing
// succeeds on 90% of values and month-first on 40%, and verifies the winning
// interpretation is applied globally — including to values that are ambiguous
// on their own.
func TestDatesFlexPicksDayFirstByRate(t *testing.T) {
	t.Parallel()

	cells := []any{
		// day > 12: only day-first parses these five.
		"13/01/2024", "14/02/2024", "25/03/2024", "30/04/2024", "31/05/2024",
		// ambiguous: both interpretations parse these four.
		"03/04/2024", "05/06/2024", "01/02/2024", "10/11/2024",
		// garbage: neither parses.
		"not a date",
	}
	tab := oneColTable("order_date", cells...)

	DatesFlex(tab, "order_date", runlog.Discard())

	// Ambiguous 03/04/2024 must resolve day-first: April 3rd, not March 4th.
	ts, ok := dateAt(tab, 5)
	if !ok {
		t.Fatal("ambiguous value did not parse")
	}
	if ts.Day() != 3 || ts.Month() != time.April {
		t.Fatalf("03/04/2024 parsed as %v, want day-first (3 April)", ts)
	}

	// The garbage cell coerces to null, never errors.
	if v := tab.Cell(9, 0); v != nil {
		t.Fatalf("unparseable cell = %v, want null", v)
	}

	// All parseable cells are time.Time after the global choice.
	for ri := 0; ri < 9; ri++ {
		if _, ok := dateAt(tab, ri); !ok {
			t.Fatalf("row %d not parsed under winning interpretation", ri)
		}
	}
}

// TestDatesFlexTieGoesDayFirst: when both interpretations parse equally well
// (all-ambiguous column), day-first wins because it is evaluated first with >=.
func TestDatesFlexTieGoesDayFirst(t *testing.T) {
	t.Parallel()

	tab := oneColTable("created_at", "03/04/2024", "05/06/2024")
	DatesFlex(tab, "created_at", runlog.Discard())

	ts, ok := dateAt(tab, 0)
	if !ok || ts.Day() != 3 || ts.Month() != time.April {
		t.Fatalf("tie broke toward month-first: %v", tab.Cell(0, 0))
	}
}

// TestDatesFlexMonthFirstWins: a column dominated by month-first values
// (day position > 12) flips the global choice.
func TestDatesFlexMonthFirstWins(t *testing.T) {
	t.Parallel()

	tab := oneColTable("created_at", "01/13/2024", "02/28/2024", "03/30/2024")
	DatesFlex(tab, "created_at", runlog.Discard())

	ts, ok := dateAt(tab, 0)
	if !ok || ts.Month() != time.January || ts.Day() != 13 {
		t.Fatalf("01/13/2024 = %v, want month-first (13 January)", tab.Cell(0, 0))
	}
}

// TestDatesFlexISOAndInvalid: ISO dates parse under either interpretation;
// impossible calendar dates ("2024-13-45") coerce to null.
func TestDatesFlexISOAndInvalid(t *testing.T) {
	t.Parallel()

	tab := oneColTable("created_at", "2024-01-15", "2024-13-45")
	DatesFlex(tab, "created_at", runlog.Discard())

	if _, ok := dateAt(tab, 0); !ok {
		t.Fatal("ISO date did not parse")
	}
	if v := tab.Cell(1, 0); v != nil {
		t.Fatalf("impossible date = %v, want null", v)
	}
}

// TestDatesFlexIdempotent: already-parsed time values pass through.
func TestDatesFlexIdempotent(t *testing.T) {
	t.Parallel()

	tab := oneColTable("created_at", "15/01/2024")
	DatesFlex(tab, "created_at", runlog.Discard())
	first, _ := dateAt(tab, 0)

	DatesFlex(tab, "created_at", runlog.Discard())
	second, ok := dateAt(tab, 0)
	if !ok || !first.Equal(second) {
		t.Fatalf("second pass changed value: %v -> %v", first, second)
	}
}

// TestDatesFlexMissingColumnNoOp: parsing a column that does not exist leaves
// the table untouched.
func TestDatesFlexMissingColumnNoOp(t *testing.T) {
	t.Parallel()

	tab := oneColTable("other", "x")
	DatesFlex(tab, "order_date", runlog.Discard())
	if s, _ := table.Text(tab.Cell(0, 0)); s != "x" {
		t.Fatalf("unrelated column mutated: %v", tab.Cell(0, 0))
	}
}
