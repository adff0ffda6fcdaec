package xbrl

import (
	"strings"
)

// LineItemOptions configures line-item generation.
type LineItemOptions struct {
	StatementType     StatementType
	IncludeDimensions bool
	Standardize       bool

	// Mapper and Signs default to the package defaults when nil.
	Mapper *ConceptMapper
	Signs  *SignPolicy
}

func (o LineItemOptions) withDefaults() LineItemOptions {
	if o.Mapper == nil {
		o.Mapper = DefaultConceptMapper()
	}
	if o.Signs == nil {
		o.Signs = DefaultSignPolicy()
	}
	return o
}

// structuralLabelMarkers identify presentation rows that exist to carry
// dimensional structure rather than values.
var structuralLabelMarkers = []string{"[Axis]", "[Domain]", "[Member]", "[Table]", "[Line Items]"}

// GenerateLineItems walks a presentation tree depth-first and produces the
// ordered displayable rows for the chosen periods. Facts attach per period
// from dimensionless contexts; calculation weights and the expense-sign
// policy normalize signs; equity roll-forwards repeat balance concepts and
// get Beginning/Ending balance treatment per occurrence.
func GenerateLineItems(tree *Tree, calc *Tree, catalog ElementCatalog, facts *FactTable, periods []string, opts LineItemOptions) []*LineItem {
	if tree == nil {
		return nil
	}
	opts = opts.withDefaults()

	// Occurrence counting drives the equity special case: the same balance
	// concept appears once per roll-forward column.
	occurrences := make(map[string]int)
	tree.Walk(func(v Visit) {
		occurrences[v.Concept]++
	})
	seen := make(map[string]int)

	var rows []*LineItem
	tree.Walk(func(v Visit) {
		seen[v.Concept]++
		el, ok := catalog[v.Concept]
		if !ok {
			return
		}

		label := el.Label(v.PreferredLabel)
		if !opts.IncludeDimensions && hasStructuralMarker(label, v.Concept) {
			return
		}

		abstract := el.IsAbstractLike()
		row := &LineItem{
			Concept:        v.Concept,
			Label:          label,
			Level:          v.Depth,
			Abstract:       abstract,
			PreferredLabel: v.PreferredLabel,
		}

		if !abstract {
			weight := 1.0
			if calc != nil {
				if w, ok := calc.ParentWeight(v.Concept); ok {
					weight = w
				}
			}
			row.Weight = weight

			occurrence, total := seen[v.Concept], occurrences[v.Concept]
			rollForward := opts.StatementType == StatementOfEquity && total > 1

			for _, periodKey := range periods {
				fact := lookupRowFact(facts, v.Concept, periodKey, rollForward, occurrence, total)
				if fact == nil || !fact.Value.IsNumeric() {
					continue
				}
				value := opts.Signs.Apply(v.Concept, *fact.Value.Numeric, weight)
				row.setCell(periodKey, &Cell{Value: value, Unit: fact.Unit.String(), Decimals: fact.Decimals})
			}

			if rollForward {
				switch {
				case occurrence == 1:
					row.Label += " — Beginning balance"
				case occurrence == total:
					row.Label += " — Ending balance"
				}
			}
		}

		if opts.Standardize {
			if std := opts.Mapper.StandardLabel(v.Concept); std != "" {
				row.OriginalLabel = row.Label
				row.Label = std
			}
		}

		rows = append(rows, row)

		if opts.IncludeDimensions && !abstract {
			rows = append(rows, dimensionalRows(row, catalog, facts, periods, opts)...)
		}
	})

	return filterRows(rows)
}

func (li *LineItem) setCell(periodKey string, cell *Cell) {
	if li.Values == nil {
		li.Values = make(map[string]*Cell)
	}
	li.Values[periodKey] = cell
}

// lookupRowFact finds the fact backing one row cell. Equity roll-forward
// balance rows translate duration periods into instants: the first
// occurrence reads the opening balance the day before the period starts, the
// last reads the closing balance at the period end, and middle occurrences
// are movement lines that use the duration fact directly.
func lookupRowFact(facts *FactTable, concept, periodKey string, rollForward bool, occurrence, total int) *Fact {
	if rollForward {
		period, err := ParsePeriodKey(periodKey)
		if err == nil && period.IsDuration() {
			switch {
			case occurrence == 1:
				open := Period{Instant: period.StartDate.AddDate(0, 0, -1)}
				return facts.Lookup(concept, open.Key(), "")
			case occurrence == total:
				closing := Period{Instant: period.EndDate}
				return facts.Lookup(concept, closing.Key(), "")
			}
		}
	}
	return facts.Lookup(concept, periodKey, "")
}

// dimensionalRows emits one child row per dimension tuple reported for the
// parent concept, at one level deeper.
func dimensionalRows(parent *LineItem, catalog ElementCatalog, facts *FactTable, periods []string, opts LineItemOptions) []*LineItem {
	byDimension := make(map[string]*LineItem)
	var order []string

	for _, periodKey := range periods {
		for _, fact := range facts.DimensionalFacts(parent.Concept, periodKey) {
			if !fact.Value.IsNumeric() {
				continue
			}
			dimKey := fact.Context.DimensionKey()
			row, ok := byDimension[dimKey]
			if !ok {
				row = &LineItem{
					Concept:   parent.Concept,
					Label:     dimensionLabel(fact.Context.Dimensions, catalog),
					Level:     parent.Level + 1,
					Dimension: dimKey,
					Weight:    parent.Weight,
				}
				byDimension[dimKey] = row
				order = append(order, dimKey)
			}
			value := opts.Signs.Apply(parent.Concept, *fact.Value.Numeric, parent.Weight)
			row.setCell(periodKey, &Cell{Value: value, Unit: fact.Unit.String(), Decimals: fact.Decimals})
		}
	}

	rows := make([]*LineItem, 0, len(order))
	for _, dimKey := range order {
		rows = append(rows, byDimension[dimKey])
	}
	return rows
}

// dimensionLabel renders a dimension tuple for display using the member
// concepts' standard labels.
func dimensionLabel(dims []Dimension, catalog ElementCatalog) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		label := LocalName(d.Member)
		if el, ok := catalog[d.Member]; ok {
			label = el.Label("")
		}
		label = strings.TrimSpace(strings.TrimSuffix(label, "[Member]"))
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

// filterRows drops rows that would render as noise: valueless leaves, and
// abstract headers with no valued descendant. Abstract headers that anchor a
// section with at least one value survive.
func filterRows(rows []*LineItem) []*LineItem {
	var out []*LineItem
	for i, row := range rows {
		if row.Abstract {
			if hasValuedDescendant(rows, i) {
				out = append(out, row)
			}
			continue
		}
		if row.HasValues() {
			out = append(out, row)
		}
	}
	return out
}

// hasValuedDescendant scans forward from an abstract row to its subtree: the
// rows that follow at a deeper level until the level returns to the header's.
func hasValuedDescendant(rows []*LineItem, i int) bool {
	level := rows[i].Level
	for _, row := range rows[i+1:] {
		if row.Level <= level {
			return false
		}
		if row.HasValues() {
			return true
		}
	}
	return false
}

func hasStructuralMarker(label, concept string) bool {
	for _, marker := range structuralLabelMarkers {
		if strings.Contains(label, marker) {
			return true
		}
	}
	local := LocalName(concept)
	for _, suffix := range []string{"Axis", "Domain", "Member", "Table"} {
		if strings.HasSuffix(local, suffix) {
			return true
		}
	}
	return false
}
