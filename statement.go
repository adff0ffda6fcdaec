package xbrl

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cell is one (row, period) value of a statement.
type Cell struct {
	Value    decimal.Decimal `json:"value"`
	Unit     string          `json:"unit,omitempty"`
	Decimals int             `json:"decimals,omitempty"`
}

// LineItem is one displayable statement row. Rows reference concepts by
// qualified name, never presentation-node pointers, and exclusively own
// their values map.
type LineItem struct {
	Concept       string           `json:"concept"`
	Label         string           `json:"label"`
	OriginalLabel string           `json:"originalLabel,omitempty"` // pre-standardization label
	Level         int              `json:"level"`
	Abstract      bool             `json:"abstract,omitempty"`
	Dimension     string           `json:"dimension,omitempty"` // axis=member key for dimensional child rows
	Values        map[string]*Cell `json:"values,omitempty"`    // period key -> cell

	PreferredLabel string  `json:"preferredLabel,omitempty"`
	Weight         float64 `json:"weight,omitempty"` // calculation weight applied to the values
}

// Cell returns the row's cell for a period key, or nil.
func (li *LineItem) Cell(periodKey string) *Cell {
	return li.Values[periodKey]
}

// HasValues reports whether any period carries a value.
func (li *LineItem) HasValues() bool { return len(li.Values) > 0 }

// Statement is one resolved, populated financial statement.
type Statement struct {
	Type         StatementType `json:"type"`
	Title        string        `json:"title"`
	Role         string        `json:"role,omitempty"`
	Entity       string        `json:"entity,omitempty"`
	Periods      []string      `json:"periods"` // period keys, most recent first
	Rows         []*LineItem   `json:"rows"`
	Standardized bool          `json:"standardized,omitempty"`
	Confidence   float64       `json:"confidence,omitempty"`

	// Diagnostic explains why an otherwise-resolved statement came back
	// empty (no displayable periods). An empty statement with a diagnostic
	// is a result, not an error.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// JSON renders the statement as pretty-printed JSON.
func (s *Statement) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// StatementFromJSON parses a statement serialized with JSON.
func StatementFromJSON(data []byte) (*Statement, error) {
	var s Statement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse statement JSON: %w", err)
	}
	return &s, nil
}

// Table is the rows-by-periods matrix form of a statement.
type Table struct {
	Type         StatementType `json:"type"`
	Title        string        `json:"title"`
	Periods      []string      `json:"periods"`
	Rows         []TableRow    `json:"rows"`
	Standardized bool          `json:"standardized,omitempty"`
}

// TableRow is one matrix row; Cells aligns with Table.Periods, nil where the
// period has no value.
type TableRow struct {
	Concept       string  `json:"concept"`
	Label         string  `json:"label"`
	OriginalLabel string  `json:"originalLabel,omitempty"`
	Level         int     `json:"level"`
	Abstract      bool    `json:"abstract,omitempty"`
	Dimension     string  `json:"dimension,omitempty"`
	Cells         []*Cell `json:"cells"`
}

// Table converts the statement to its matrix form.
func (s *Statement) Table() *Table {
	t := &Table{
		Type:         s.Type,
		Title:        s.Title,
		Periods:      append([]string(nil), s.Periods...),
		Standardized: s.Standardized,
	}
	for _, row := range s.Rows {
		tr := TableRow{
			Concept:       row.Concept,
			Label:         row.Label,
			OriginalLabel: row.OriginalLabel,
			Level:         row.Level,
			Abstract:      row.Abstract,
			Dimension:     row.Dimension,
			Cells:         make([]*Cell, len(t.Periods)),
		}
		for i, period := range t.Periods {
			tr.Cells[i] = row.Values[period]
		}
		t.Rows = append(t.Rows, tr)
	}
	return t
}

// Statement converts the matrix form back to a statement. Together with
// Statement.Table this round-trips the row set and cell values.
func (t *Table) Statement() *Statement {
	s := &Statement{
		Type:         t.Type,
		Title:        t.Title,
		Periods:      append([]string(nil), t.Periods...),
		Standardized: t.Standardized,
	}
	for _, tr := range t.Rows {
		row := &LineItem{
			Concept:       tr.Concept,
			Label:         tr.Label,
			OriginalLabel: tr.OriginalLabel,
			Level:         tr.Level,
			Abstract:      tr.Abstract,
			Dimension:     tr.Dimension,
			Values:        make(map[string]*Cell),
		}
		for i, cell := range tr.Cells {
			if cell != nil && i < len(t.Periods) {
				row.Values[t.Periods[i]] = cell
			}
		}
		if len(row.Values) == 0 {
			row.Values = nil
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
