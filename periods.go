package xbrl

import (
	"math"
	"sort"
	"time"
)

// Duration windows, in days, for classifying reporting periods.
const (
	quarterMinDays = 80
	quarterMaxDays = 100
	ytdMinDays     = 170
	ytdMaxDays     = 285
	annualMinDays  = 350
	annualMaxDays  = 380
)

// PeriodWeights are the scoring weights of the period selector.
type PeriodWeights struct {
	Recency   float64
	Alignment float64
	Density   float64
}

// PeriodOptions configures period selection.
type PeriodOptions struct {
	// MaxPeriods caps how many periods are returned. Zero means the
	// single-filing default of 3 (stitched views pass 8).
	MaxPeriods int
	// Weights overrides the per-statement defaults when non-zero.
	Weights PeriodWeights
	// MinFacts is the data-density floor; zero applies the per-statement
	// default (5 for cash flow, 1 otherwise).
	MinFacts int
}

func (o PeriodOptions) withDefaults(t StatementType) PeriodOptions {
	if o.MaxPeriods == 0 {
		o.MaxPeriods = 3
	}
	if o.Weights == (PeriodWeights{}) {
		if t == CashFlowStatement {
			o.Weights = PeriodWeights{Recency: 0.40, Alignment: 0.20, Density: 0.40}
		} else {
			o.Weights = PeriodWeights{Recency: 0.50, Alignment: 0.25, Density: 0.25}
		}
	}
	if o.MinFacts == 0 {
		if t == CashFlowStatement {
			o.MinFacts = 5
		} else {
			o.MinFacts = 1
		}
	}
	return o
}

// SelectPeriods chooses the reporting periods to display for a statement,
// most recent first. Candidates are every distinct period carrying facts for
// the statement's concepts, filtered by the statement's period-type rule and
// by the hard document-date ceiling, then scored on recency, fiscal
// alignment, and data density.
func SelectPeriods(t StatementType, tree *Tree, catalog ElementCatalog, facts *FactTable, doc DocumentInfo, opts PeriodOptions) ([]string, error) {
	opts = opts.withDefaults(t)

	concepts := statementConcepts(tree, catalog)
	if len(concepts) == 0 {
		return nil, &InsufficientDataError{Operation: "period selection", Need: 1, Have: 0}
	}

	type scored struct {
		key      string
		period   Period
		combined float64
		density  float64
	}
	var candidates []scored

	for _, key := range facts.PeriodKeys(concepts...) {
		period, err := ParsePeriodKey(key)
		if err != nil {
			continue
		}
		if !periodTypeAllowed(t, period) {
			continue
		}
		// Hard filter: a period ending after the filing's document period
		// end date is contamination from a future-dated context.
		if !doc.PeriodEndDate.IsZero() && period.End().After(doc.PeriodEndDate) {
			continue
		}
		count := factCount(facts, concepts, key)
		if count < opts.MinFacts {
			continue
		}
		density := float64(count) / float64(len(concepts))
		if density > 1 {
			density = 1
		}
		candidates = append(candidates, scored{key: key, period: period, density: density})
	}

	if len(candidates) == 0 {
		return nil, &InsufficientDataError{Operation: "period selection for " + string(t), Need: 1, Have: 0}
	}

	// Recency normalizes against the newest candidate end date.
	newest, oldest := candidates[0].period.End(), candidates[0].period.End()
	for _, c := range candidates[1:] {
		if c.period.End().After(newest) {
			newest = c.period.End()
		}
		if c.period.End().Before(oldest) {
			oldest = c.period.End()
		}
	}
	span := newest.Sub(oldest).Hours() / 24

	for i := range candidates {
		c := &candidates[i]
		recency := 1.0
		if span > 0 {
			recency = 1 - newest.Sub(c.period.End()).Hours()/24/span
		}
		alignment := fiscalAlignment(c.period.End(), doc)
		c.combined = opts.Weights.Recency*recency + opts.Weights.Alignment*alignment + opts.Weights.Density*c.density
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].combined != candidates[j].combined {
			return candidates[i].combined > candidates[j].combined
		}
		return candidates[i].key < candidates[j].key
	})

	if candidates[0].combined < 0.5 {
		logger.WithField("statement", t).WithField("period", candidates[0].key).
			Debugf("best period scored only %.2f", candidates[0].combined)
	}

	if len(candidates) > opts.MaxPeriods {
		candidates = candidates[:opts.MaxPeriods]
	}

	// Display order is period end date descending regardless of score order.
	sort.SliceStable(candidates, func(i, j int) bool {
		ei, ej := candidates[i].period.End(), candidates[j].period.End()
		if !ei.Equal(ej) {
			return ei.After(ej)
		}
		return candidates[i].key < candidates[j].key
	})

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = c.key
	}
	return keys, nil
}

// statementConcepts lists the tree's non-abstract concepts.
func statementConcepts(tree *Tree, catalog ElementCatalog) []string {
	if tree == nil {
		return nil
	}
	var out []string
	for _, concept := range tree.Concepts() {
		if el, ok := catalog[concept]; ok && el.IsAbstractLike() {
			continue
		}
		out = append(out, concept)
	}
	return out
}

// periodTypeAllowed applies the per-statement duration rule. Balance sheets
// take instants; everything else takes durations in the quarterly or annual
// windows, with cash flow statements additionally accepting year-to-date
// spans because many filers report YTD only.
func periodTypeAllowed(t StatementType, p Period) bool {
	if t == BalanceSheet {
		return p.IsInstant()
	}
	if !p.IsDuration() {
		return false
	}
	days := p.Days()
	if days >= quarterMinDays && days <= quarterMaxDays {
		return true
	}
	if days >= annualMinDays && days <= annualMaxDays {
		return true
	}
	if t == CashFlowStatement && days >= ytdMinDays && days <= ytdMaxDays {
		return true
	}
	return false
}

// factCount counts non-empty dimensionless facts for the concepts in the
// period.
func factCount(facts *FactTable, concepts []string, periodKey string) int {
	count := 0
	for _, concept := range concepts {
		if facts.Lookup(concept, periodKey, "") != nil {
			count++
		}
	}
	return count
}

// fiscalAlignment scores how close a period end sits to the filer's fiscal
// calendar: 1.0 on a fiscal quarter boundary, decaying linearly to 0 at 45
// days off.
func fiscalAlignment(end time.Time, doc DocumentInfo) float64 {
	month, day, ok := doc.FiscalMonthDay()
	if !ok {
		return 0.5 // no anchor: neutral
	}

	// Nearest fiscal year end in either direction, then quarter offsets.
	anchor := time.Date(end.Year(), month, day, 0, 0, 0, 0, time.UTC)
	best := math.MaxFloat64
	for _, yearShift := range []int{-1, 0, 1} {
		fyEnd := anchor.AddDate(yearShift, 0, 0)
		for quarter := 0; quarter < 4; quarter++ {
			qEnd := fyEnd.AddDate(0, -3*quarter, 0)
			dist := math.Abs(end.Sub(qEnd).Hours() / 24)
			if dist < best {
				best = dist
			}
		}
	}

	score := 1 - best/45
	if score < 0 {
		return 0
	}
	return score
}
