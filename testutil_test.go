package xbrl

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testUSD = &Unit{ID: "usd", Measure: "iso4217:USD"}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func dur(t *testing.T, start, end string) Period {
	t.Helper()
	return Period{StartDate: mustDate(t, start), EndDate: mustDate(t, end)}
}

func inst(t *testing.T, date string) Period {
	t.Helper()
	return Period{Instant: mustDate(t, date)}
}

// elem builds a catalog entry. An empty label leaves the concept with only
// its local name.
func elem(name string, periodType PeriodType, abstract bool, label string) *Element {
	e := &Element{
		Name:       name,
		DataType:   "xbrli:monetaryItemType",
		PeriodType: periodType,
		Abstract:   abstract,
		Labels:     make(map[string]string),
	}
	if label != "" {
		e.Labels[LabelRoleStandard] = label
	}
	return e
}

// numFact builds a numeric USD fact with a context derived from the period
// and dimensions, so equal (period, dims) tuples share context identity.
func numFact(t *testing.T, concept, value string, p Period, dims ...Dimension) *Fact {
	t.Helper()
	ctx := &Context{ID: "ctx_" + p.Key(), Entity: "0000320193", Period: p, Dimensions: dims}
	ctx.ID += "_" + ctx.DimensionKey()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad test value %q: %v", value, err)
	}
	return &Fact{Concept: concept, Context: ctx, Unit: testUSD, Value: NumericValue(d), Decimals: -6}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad test decimal %q: %v", s, err)
	}
	return d
}

func textFact(concept, value string, p Period) *Fact {
	ctx := &Context{ID: "ctx_" + p.Key(), Entity: "0000320193", Period: p}
	return &Fact{Concept: concept, Context: ctx, Value: TextValue(value)}
}

// presArc is shorthand for a presentation arc.
func presArc(role, from, to string, order float64, preferred string) Arc {
	return Arc{From: from, To: to, Role: role, Order: order, PreferredLabel: preferred, Weight: 1}
}

// calcArc is shorthand for a calculation arc.
func calcArc(role, from, to string, order, weight float64) Arc {
	return Arc{From: from, To: to, Role: role, Order: order, Weight: weight}
}

// buildTestFiling assembles a Filing from parts, building the presentation
// and calculation trees the same way ParseBundle does.
func buildTestFiling(t *testing.T, pres, calc []Arc, roles []Role, catalog ElementCatalog, facts []*Fact, doc DocumentInfo) *Filing {
	t.Helper()

	presentation, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: pres})
	if err != nil {
		t.Fatalf("building presentation trees: %v", err)
	}
	calculation, err := BuildTrees(&ArcTable{Kind: LinkbaseCalculation, Arcs: calc})
	if err != nil {
		t.Fatalf("building calculation trees: %v", err)
	}

	contexts := make(ContextTable)
	units := make(UnitTable)
	for _, f := range facts {
		contexts[f.Context.ID] = f.Context
		if f.Unit != nil {
			units[f.Unit.ID] = f.Unit
		}
	}

	return &Filing{
		Catalog:      catalog,
		Roles:        roles,
		Contexts:     contexts,
		Units:        units,
		Facts:        NewFactTable(facts),
		Presentation: presentation,
		Calculation:  calculation,
		Definition:   &TreeSet{Kind: LinkbaseDefinition, Trees: map[string]*Tree{}},
		Doc:          doc,
	}
}
