package normalize

import (
	"testing"

	"dq/internal/table"
)

func oneColTable(name string, cells ...any) *table.Table {
	t := table.New([]string{name})
	for _, c := range cells {
		t.Append([]any{c})
	}
	return t
}

//
// Strings
//

// TestStrings verifies the three normalization layers: whitespace, lowercase
// for categorical columns, title case (non-ASCII preserving) for proper-noun
// columns.
func TestStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		col  string
		in   string
		want string
	}{
		{"trim and collapse", "notes", "  a \t b   c  ", "a b c"},
		{"status lowercased", "status", " NEW  Lead ", "new lead"},
		{"channel lowercased", "channel", "ONLINE", "online"},
		{"city title cased, accents kept", "city", "bogotá", "Bogotá"},
		{"city multiword", "city", "new  york", "New York"},
		{"region title cased from caps", "region", "ANTIOQUIA", "Antioquia"},
		{"product title cased", "product", "laptop  pro", "Laptop Pro"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tab := oneColTable(tt.col, tt.in)
			Strings(tab, []string{tt.col})
			got, _ := table.Text(tab.Cell(0, 0))
			if got != tt.want {
				t.Fatalf("Strings(%q on %s) = %q, want %q", tt.in, tt.col, got, tt.want)
			}
		})
	}
}

// TestStringsSkipsMissingAndNull: absent columns are a no-op and null cells
// stay null.
func TestStringsSkipsMissingAndNull(t *testing.T) {
	t.Parallel()

	tab := oneColTable("notes", nil)
	Strings(tab, []string{"notes", "no_such_column"})
	if v := tab.Cell(0, 0); v != nil {
		t.Fatalf("null cell became %v", v)
	}
}

// TestStringsNoResidualWhitespace is the blanket property: after
// normalization no designated text column has edge whitespace or internal
// runs of two or more spaces.
func TestStringsNoResidualWhitespace(t *testing.T) {
	t.Parallel()

	inputs := []any{" a  b ", "\tx\ny", "  ", "ok"}
	tab := oneColTable("notes", inputs...)
	Strings(tab, []string{"notes"})

	for ri := 0; ri < tab.Len(); ri++ {
		s, _ := table.Text(tab.Cell(ri, 0))
		if s != "" && (s[0] == ' ' || s[len(s)-1] == ' ') {
			t.Fatalf("row %d: edge whitespace in %q", ri, s)
		}
		for i := 0; i+1 < len(s); i++ {
			if s[i] == ' ' && s[i+1] == ' ' {
				t.Fatalf("row %d: double space in %q", ri, s)
			}
		}
	}
}
