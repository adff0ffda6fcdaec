package xbrl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Well-known label role URIs from the XBRL label linkbase.
const (
	LabelRoleStandard    = "http://www.xbrl.org/2003/role/label"
	LabelRoleTerse       = "http://www.xbrl.org/2003/role/terseLabel"
	LabelRoleVerbose     = "http://www.xbrl.org/2003/role/verboseLabel"
	LabelRoleTotal       = "http://www.xbrl.org/2003/role/totalLabel"
	LabelRoleNegated     = "http://www.xbrl.org/2009/role/negatedLabel"
	LabelRolePeriodStart = "http://www.xbrl.org/2003/role/periodStartLabel"
	LabelRolePeriodEnd   = "http://www.xbrl.org/2003/role/periodEndLabel"
)

// PeriodType describes whether a concept reports at a point in time or over a span.
type PeriodType string

const (
	PeriodInstant  PeriodType = "instant"
	PeriodDuration PeriodType = "duration"
)

// BalanceType is the accounting balance of a concept (debit, credit, or none).
type BalanceType string

const (
	BalanceNone   BalanceType = ""
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
)

// Element describes one concept declared in the taxonomy schema.
type Element struct {
	Name       string // qualified name, e.g. "us-gaap:Revenues"
	DataType   string // e.g. "xbrli:monetaryItemType"
	PeriodType PeriodType
	Balance    BalanceType
	Abstract   bool
	Labels     map[string]string // label role URI -> text
}

// Label returns the label for the given role, falling back to the standard
// label and finally to the concept's local name.
func (e *Element) Label(role string) string {
	if role != "" {
		if l, ok := e.Labels[role]; ok && l != "" {
			return l
		}
	}
	if l, ok := e.Labels[LabelRoleStandard]; ok && l != "" {
		return l
	}
	return LocalName(e.Name)
}

// IsMonetary reports whether the element carries a monetary data type.
func (e *Element) IsMonetary() bool {
	return strings.Contains(e.DataType, "monetary")
}

// abstractSuffixes mark concepts that act as structural headers even when the
// schema does not flag them abstract.
var abstractSuffixes = []string{"Abstract", "Axis", "Domain", "Member", "LineItems", "Table"}

// IsAbstractLike reports whether the element is abstract by schema flag or by
// local-name convention.
func (e *Element) IsAbstractLike() bool {
	if e.Abstract {
		return true
	}
	local := LocalName(e.Name)
	for _, suffix := range abstractSuffixes {
		if strings.HasSuffix(local, suffix) {
			return true
		}
	}
	return false
}

// ElementCatalog maps qualified concept names to their declarations.
type ElementCatalog map[string]*Element

// Get returns the element for a concept, or a ConceptResolutionError when the
// concept is not declared.
func (c ElementCatalog) Get(concept string) (*Element, error) {
	if el, ok := c[concept]; ok {
		return el, nil
	}
	return nil, &ConceptResolutionError{Concept: concept}
}

// LocalName strips the namespace prefix from a qualified concept name.
func LocalName(concept string) string {
	if i := strings.IndexByte(concept, ':'); i >= 0 {
		return concept[i+1:]
	}
	return concept
}

// Namespace returns the prefix of a qualified concept name ("us-gaap" for
// "us-gaap:Revenues"), or "" when unqualified.
func Namespace(concept string) string {
	if i := strings.IndexByte(concept, ':'); i >= 0 {
		return concept[:i]
	}
	return ""
}

// Period is either an instant or a [start, end] span. Exactly one form is set.
type Period struct {
	Instant   time.Time
	StartDate time.Time
	EndDate   time.Time
}

// IsInstant reports whether the period is a point in time.
func (p Period) IsInstant() bool { return !p.Instant.IsZero() }

// IsDuration reports whether the period spans a start and end date.
func (p Period) IsDuration() bool { return !p.StartDate.IsZero() && !p.EndDate.IsZero() }

// End returns the period's end date (the instant itself for instant periods).
func (p Period) End() time.Time {
	if p.IsInstant() {
		return p.Instant
	}
	return p.EndDate
}

// Days returns the duration length in days, or 0 for instants.
func (p Period) Days() int {
	if !p.IsDuration() {
		return 0
	}
	return int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
}

// Key returns the canonical period key: "instant_2023-12-31" or
// "duration_2023-01-01_2023-12-31".
func (p Period) Key() string {
	if p.IsInstant() {
		return "instant_" + p.Instant.Format("2006-01-02")
	}
	return "duration_" + p.StartDate.Format("2006-01-02") + "_" + p.EndDate.Format("2006-01-02")
}

// ParsePeriodKey parses a period key produced by Period.Key.
func ParsePeriodKey(key string) (Period, error) {
	switch {
	case strings.HasPrefix(key, "instant_"):
		t, err := time.Parse("2006-01-02", strings.TrimPrefix(key, "instant_"))
		if err != nil {
			return Period{}, fmt.Errorf("invalid instant period key %q: %w", key, err)
		}
		return Period{Instant: t}, nil
	case strings.HasPrefix(key, "duration_"):
		parts := strings.Split(strings.TrimPrefix(key, "duration_"), "_")
		if len(parts) != 2 {
			return Period{}, fmt.Errorf("invalid duration period key %q", key)
		}
		start, err := time.Parse("2006-01-02", parts[0])
		if err != nil {
			return Period{}, fmt.Errorf("invalid duration period key %q: %w", key, err)
		}
		end, err := time.Parse("2006-01-02", parts[1])
		if err != nil {
			return Period{}, fmt.Errorf("invalid duration period key %q: %w", key, err)
		}
		return Period{StartDate: start, EndDate: end}, nil
	}
	return Period{}, fmt.Errorf("unrecognized period key %q", key)
}

// Dimension is one (axis, member) pair on a context segment.
type Dimension struct {
	Axis   string
	Member string
}

// Context identifies what a fact is about: entity, period, and any segment
// dimensions, in document order.
type Context struct {
	ID         string
	Entity     string
	Period     Period
	Dimensions []Dimension
}

// HasDimensions reports whether the context carries segment dimensions.
func (c *Context) HasDimensions() bool { return len(c.Dimensions) > 0 }

// DimensionKey returns a stable key for the dimension tuple, empty when none.
func (c *Context) DimensionKey() string {
	if len(c.Dimensions) == 0 {
		return ""
	}
	parts := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		parts[i] = d.Axis + "=" + d.Member
	}
	return strings.Join(parts, "|")
}

// Equal reports whether two contexts are identical in entity, period, and
// dimensions.
func (c *Context) Equal(other *Context) bool {
	if c.Entity != other.Entity || c.Period.Key() != other.Period.Key() {
		return false
	}
	return c.DimensionKey() == other.DimensionKey()
}

// ContextTable maps context IDs to contexts.
type ContextTable map[string]*Context

// Unit is a measurement unit: either a simple measure or a divide ratio.
type Unit struct {
	ID          string
	Measure     string // e.g. "iso4217:USD", "shares", "pure"
	Numerator   string // set for divide units
	Denominator string
}

// IsDivide reports whether the unit is a numerator/denominator ratio.
func (u *Unit) IsDivide() bool { return u.Numerator != "" }

// IsCurrency reports whether the unit is an ISO currency measure.
func (u *Unit) IsCurrency() bool {
	return strings.HasPrefix(strings.ToLower(u.Measure), "iso4217:")
}

// String renders the unit for display ("USD", "USD/shares", "pure").
func (u *Unit) String() string {
	if u == nil {
		return ""
	}
	if u.IsDivide() {
		return trimMeasure(u.Numerator) + "/" + trimMeasure(u.Denominator)
	}
	return trimMeasure(u.Measure)
}

func trimMeasure(m string) string {
	if i := strings.IndexByte(m, ':'); i >= 0 {
		return m[i+1:]
	}
	return m
}

// UnitTable maps unit IDs to units.
type UnitTable map[string]*Unit

// FactValue is the typed value of a fact: numeric or textual, never both.
type FactValue struct {
	Numeric *decimal.Decimal
	Text    string
}

// NumericValue builds a numeric fact value.
func NumericValue(d decimal.Decimal) FactValue {
	return FactValue{Numeric: &d}
}

// TextValue builds a textual fact value.
func TextValue(s string) FactValue {
	return FactValue{Text: s}
}

// IsNumeric reports whether the value carries a parsed decimal.
func (v FactValue) IsNumeric() bool { return v.Numeric != nil }

// Fact is one reported data point: concept + context + unit + value.
type Fact struct {
	Concept  string
	Context  *Context
	Unit     *Unit // nil for non-numeric facts
	Value    FactValue
	Decimals int // XBRL decimals attribute; DecimalsInf when "INF"
}

// DecimalsInf marks facts whose decimals attribute was "INF" (exact).
const DecimalsInf = 999

// Period returns the fact's context period.
func (f *Fact) Period() Period { return f.Context.Period }

// IsInstant reports whether the fact's period is an instant.
func (f *Fact) IsInstant() bool { return f.Context.Period.IsInstant() }

// IsDuration reports whether the fact's period is a duration.
func (f *Fact) IsDuration() bool { return f.Context.Period.IsDuration() }

// Decimal returns the numeric value, or an error for textual facts.
func (f *Fact) Decimal() (decimal.Decimal, error) {
	if f.Value.Numeric == nil {
		return decimal.Zero, fmt.Errorf("fact %s has no numeric value", f.Concept)
	}
	return *f.Value.Numeric, nil
}

// Float64 returns the numeric value as a float64, for callers that do not
// need exact arithmetic.
func (f *Fact) Float64() (float64, error) {
	d, err := f.Decimal()
	if err != nil {
		return 0, err
	}
	v, _ := d.Float64()
	return v, nil
}

// FactTable holds all facts of one filing with lookup indexes.
type FactTable struct {
	Facts []*Fact

	byConcept map[string][]*Fact
}

// NewFactTable builds a fact table with its concept index.
func NewFactTable(facts []*Fact) *FactTable {
	t := &FactTable{Facts: facts, byConcept: make(map[string][]*Fact)}
	for _, f := range facts {
		t.byConcept[f.Concept] = append(t.byConcept[f.Concept], f)
	}
	return t
}

// ByConcept returns all facts reported for a concept.
func (t *FactTable) ByConcept(concept string) []*Fact {
	return t.byConcept[concept]
}

// Lookup finds the fact for (concept, period key, dimension key), or nil.
// An empty dimension key matches only dimensionless contexts.
func (t *FactTable) Lookup(concept, periodKey, dimensionKey string) *Fact {
	for _, f := range t.byConcept[concept] {
		if f.Context.Period.Key() == periodKey && f.Context.DimensionKey() == dimensionKey {
			return f
		}
	}
	return nil
}

// DimensionalFacts returns the facts for a concept in a period that carry
// segment dimensions, sorted by dimension key for determinism.
func (t *FactTable) DimensionalFacts(concept, periodKey string) []*Fact {
	var out []*Fact
	for _, f := range t.byConcept[concept] {
		if f.Context.Period.Key() == periodKey && f.Context.HasDimensions() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Context.DimensionKey() < out[j].Context.DimensionKey()
	})
	return out
}

// PeriodKeys returns the distinct period keys present on a set of concepts.
// With no concepts given, all fact periods are enumerated.
func (t *FactTable) PeriodKeys(concepts ...string) []string {
	seen := make(map[string]bool)
	add := func(f *Fact) {
		seen[f.Context.Period.Key()] = true
	}
	if len(concepts) == 0 {
		for _, f := range t.Facts {
			add(f)
		}
	} else {
		for _, c := range concepts {
			for _, f := range t.byConcept[c] {
				add(f)
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LinkbaseKind identifies which relational linkbase an arc came from.
type LinkbaseKind string

const (
	LinkbasePresentation LinkbaseKind = "presentation"
	LinkbaseCalculation  LinkbaseKind = "calculation"
	LinkbaseDefinition   LinkbaseKind = "definition"
)

// Arc is one directed relation between two concepts inside a role.
type Arc struct {
	From           string
	To             string
	Role           string // extended link role URI
	Order          float64
	DocumentOrder  int    // tie-break when order attributes collide
	PreferredLabel string // presentation arcs only
	Weight         float64
	Arcrole        string // definition arcs only
}

// ArcTable groups the raw arcs of one linkbase.
type ArcTable struct {
	Kind LinkbaseKind
	Arcs []Arc
}

// Role describes one extended link role declared by the filing.
type Role struct {
	URI        string
	Definition string // human-readable text, e.g. "1001 - Statement - CONSOLIDATED BALANCE SHEETS"
}

// IsParenthetical reports whether the role's definition marks it as a
// parenthetical statement.
func (r Role) IsParenthetical() bool {
	return strings.Contains(strings.ToLower(r.Definition), "parenthetical")
}

// Label derives a display label from the role definition text, stripping the
// sort-prefix and category that EDGAR role definitions carry.
func (r Role) Label() string {
	parts := strings.Split(r.Definition, " - ")
	if len(parts) >= 3 {
		return strings.TrimSpace(strings.Join(parts[2:], " - "))
	}
	if r.Definition != "" {
		return strings.TrimSpace(r.Definition)
	}
	// Fall back to the final URI path segment.
	if i := strings.LastIndexByte(r.URI, '/'); i >= 0 {
		return r.URI[i+1:]
	}
	return r.URI
}
