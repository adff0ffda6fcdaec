package xbrl

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodView names a predefined period window for fact queries.
type PeriodView string

const (
	ViewLatestAnnual    PeriodView = "latest-annual"
	ViewLatestQuarterly PeriodView = "latest-quarterly"
	ViewTrailingTwelve  PeriodView = "trailing-twelve-months"
)

// FactQuery is a fluent filter over a filing's facts. Filters AND together;
// Get materializes the result.
type FactQuery struct {
	filing *Filing
	facts  []*Fact

	conceptFilter  []string
	conceptPattern *regexp.Regexp
	labelText      string
	statement      *StatementType
	axis           string
	member         string
	periodType     *PeriodType
	durationClass  PeriodClass
	monthly        bool
	view           PeriodView
	periodEnd      string
	unit           string
	valueMin       *decimal.Decimal
	valueMax       *decimal.Decimal
	dimensionless  bool

	err error
}

// Query starts a fact query over the filing.
func (f *Filing) Query() *FactQuery {
	return &FactQuery{filing: f, facts: f.Facts.Facts}
}

// ByConcept filters by concept name, exact or substring
// (e.g. "us-gaap:Revenues" or "Revenues").
func (q *FactQuery) ByConcept(concepts ...string) *FactQuery {
	q.conceptFilter = concepts
	return q
}

// ByConceptPattern filters concept names by regular expression.
func (q *FactQuery) ByConceptPattern(pattern string) *FactQuery {
	re, err := regexp.Compile(pattern)
	if err != nil {
		q.err = fmt.Errorf("bad concept pattern %q: %w", pattern, err)
		return q
	}
	q.conceptPattern = re
	return q
}

// ByLabel filters by case-insensitive text search over the concepts' labels.
func (q *FactQuery) ByLabel(text string) *FactQuery {
	q.labelText = strings.ToLower(text)
	return q
}

// ByStatement keeps facts whose concept belongs to the resolved statement's
// presentation tree.
func (q *FactQuery) ByStatement(t StatementType) *FactQuery {
	q.statement = &t
	return q
}

// ByDimension keeps facts whose context carries the axis/member pair. An
// empty member matches any member on the axis.
func (q *FactQuery) ByDimension(axis, member string) *FactQuery {
	q.axis, q.member = axis, member
	return q
}

// Dimensionless keeps only facts without segment dimensions.
func (q *FactQuery) Dimensionless() *FactQuery {
	q.dimensionless = true
	return q
}

// InstantOnly keeps instant facts (balance sheet items).
func (q *FactQuery) InstantOnly() *FactQuery {
	pt := PeriodInstant
	q.periodType = &pt
	return q
}

// DurationOnly keeps duration facts (income and cash flow items).
func (q *FactQuery) DurationOnly() *FactQuery {
	pt := PeriodDuration
	q.periodType = &pt
	return q
}

// Annual keeps duration facts in the annual window.
func (q *FactQuery) Annual() *FactQuery {
	q.durationClass = ClassFullYear
	return q.DurationOnly()
}

// Quarterly keeps duration facts in the quarterly window.
func (q *FactQuery) Quarterly() *FactQuery {
	q.durationClass = ClassQuarter
	return q.DurationOnly()
}

// Monthly keeps duration facts roughly one month long.
func (q *FactQuery) Monthly() *FactQuery {
	q.monthly = true
	return q.DurationOnly()
}

// ByView applies a predefined period window.
func (q *FactQuery) ByView(view PeriodView) *FactQuery {
	q.view = view
	return q
}

// ForPeriodEndingOn keeps facts whose period ends on the date (YYYY-MM-DD).
func (q *FactQuery) ForPeriodEndingOn(date string) *FactQuery {
	q.periodEnd = date
	return q
}

// ByUnit filters by rendered unit ("USD", "shares", "USD/shares", "pure").
func (q *FactQuery) ByUnit(unit string) *FactQuery {
	q.unit = unit
	return q
}

// ValueBetween keeps numeric facts with min <= value <= max.
func (q *FactQuery) ValueBetween(min, max decimal.Decimal) *FactQuery {
	q.valueMin, q.valueMax = &min, &max
	return q
}

// Get returns all matching facts in stable order.
func (q *FactQuery) Get() ([]*Fact, error) {
	if q.err != nil {
		return nil, q.err
	}

	var statementConceptSet map[string]bool
	if q.statement != nil {
		res, err := ResolveStatement(q.filing, *q.statement, false, DefaultStatementRegistry())
		if err != nil {
			return nil, err
		}
		statementConceptSet = make(map[string]bool)
		tree := q.filing.Presentation.Tree(res.Role)
		if tree != nil {
			for _, c := range tree.Concepts() {
				statementConceptSet[c] = true
			}
		}
	}

	viewPeriods, err := q.viewPeriods()
	if err != nil {
		return nil, err
	}

	var results []*Fact
	for _, fact := range q.facts {
		if !q.matches(fact, statementConceptSet, viewPeriods) {
			continue
		}
		results = append(results, fact)
	}
	return results, nil
}

func (q *FactQuery) matches(fact *Fact, statementConcepts map[string]bool, viewPeriods map[string]bool) bool {
	if len(q.conceptFilter) > 0 {
		matched := false
		for _, concept := range q.conceptFilter {
			if fact.Concept == concept || strings.Contains(fact.Concept, concept) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if q.conceptPattern != nil && !q.conceptPattern.MatchString(fact.Concept) {
		return false
	}
	if q.labelText != "" && !q.labelMatches(fact.Concept) {
		return false
	}
	if statementConcepts != nil && !statementConcepts[fact.Concept] {
		return false
	}
	if q.axis != "" {
		found := false
		for _, d := range fact.Context.Dimensions {
			if d.Axis == q.axis && (q.member == "" || d.Member == q.member) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.dimensionless && fact.Context.HasDimensions() {
		return false
	}
	if q.periodType != nil {
		if *q.periodType == PeriodInstant && !fact.IsInstant() {
			return false
		}
		if *q.periodType == PeriodDuration && !fact.IsDuration() {
			return false
		}
	}
	if q.durationClass != ClassOther && ClassifyDuration(fact.Period().Days()) != q.durationClass {
		return false
	}
	if q.monthly {
		if days := fact.Period().Days(); days < 28 || days > 31 {
			return false
		}
	}
	if viewPeriods != nil && !viewPeriods[fact.Period().Key()] {
		return false
	}
	if q.periodEnd != "" && fact.Period().End().Format("2006-01-02") != q.periodEnd {
		return false
	}
	if q.unit != "" && fact.Unit.String() != q.unit {
		return false
	}
	if q.valueMin != nil {
		if !fact.Value.IsNumeric() {
			return false
		}
		v := *fact.Value.Numeric
		if v.LessThan(*q.valueMin) || v.GreaterThan(*q.valueMax) {
			return false
		}
	}
	return true
}

func (q *FactQuery) labelMatches(concept string) bool {
	el, ok := q.filing.Catalog[concept]
	if !ok {
		return false
	}
	for _, label := range el.Labels {
		if strings.Contains(strings.ToLower(label), q.labelText) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(LocalName(concept)), q.labelText)
}

// viewPeriods materializes the predefined window into a set of period keys,
// or nil when no view is active.
func (q *FactQuery) viewPeriods() (map[string]bool, error) {
	if q.view == "" {
		return nil, nil
	}

	latestOfClass := func(class PeriodClass) map[string]bool {
		var best Period
		for _, fact := range q.facts {
			p := fact.Period()
			if !p.IsDuration() || ClassifyDuration(p.Days()) != class {
				continue
			}
			if best.EndDate.IsZero() || p.EndDate.After(best.EndDate) {
				best = p
			}
		}
		if best.EndDate.IsZero() {
			return map[string]bool{}
		}
		return map[string]bool{best.Key(): true}
	}

	switch q.view {
	case ViewLatestAnnual:
		return latestOfClass(ClassFullYear), nil
	case ViewLatestQuarterly:
		return latestOfClass(ClassQuarter), nil
	case ViewTrailingTwelve:
		// The four most recent distinct quarterly periods.
		endSet := make(map[string]Period)
		for _, fact := range q.facts {
			p := fact.Period()
			if p.IsDuration() && ClassifyDuration(p.Days()) == ClassQuarter {
				endSet[p.Key()] = p
			}
		}
		periods := make([]Period, 0, len(endSet))
		for _, p := range endSet {
			periods = append(periods, p)
		}
		sort.Slice(periods, func(i, j int) bool { return periods[i].EndDate.After(periods[j].EndDate) })
		if len(periods) > 4 {
			periods = periods[:4]
		}
		out := make(map[string]bool, len(periods))
		for _, p := range periods {
			out[p.Key()] = true
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown period view %q", q.view)
}

// First returns the first matching fact.
func (q *FactQuery) First() (*Fact, error) {
	results, err := q.Get()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &InsufficientDataError{Operation: "fact query", Need: 1, Have: 0}
	}
	return results[0], nil
}

// MostRecent returns the matching fact with the latest period end date.
func (q *FactQuery) MostRecent() (*Fact, error) {
	results, err := q.Get()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &InsufficientDataError{Operation: "fact query", Need: 1, Have: 0}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Period().End().After(results[j].Period().End())
	})
	return results[0], nil
}

// Sum adds the numeric values of all matching facts.
func (q *FactQuery) Sum() (decimal.Decimal, error) {
	results, err := q.Get()
	if err != nil {
		return decimal.Zero, err
	}
	if len(results) == 0 {
		return decimal.Zero, &InsufficientDataError{Operation: "fact query sum", Need: 1, Have: 0}
	}
	sum := decimal.Zero
	for _, fact := range results {
		if fact.Value.IsNumeric() {
			sum = sum.Add(*fact.Value.Numeric)
		}
	}
	return sum, nil
}

// AsOf flags facts visible at a given date: only periods ending on or before
// it survive. A zero date means now.
func (q *FactQuery) AsOf(date time.Time) *FactQuery {
	if date.IsZero() {
		date = time.Now()
	}
	filtered := make([]*Fact, 0, len(q.facts))
	for _, fact := range q.facts {
		if !fact.Period().End().After(date) {
			filtered = append(filtered, fact)
		}
	}
	q.facts = filtered
	return q
}
