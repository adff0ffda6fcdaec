package xbrl

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodClass classifies a duration fact by its length.
type PeriodClass string

const (
	ClassQuarter    PeriodClass = "Q"
	ClassHalf       PeriodClass = "H"  // year-to-date through Q2
	ClassNineMonths PeriodClass = "9M" // year-to-date through Q3
	ClassFullYear   PeriodClass = "FY"
	ClassOther      PeriodClass = ""
)

// Duration windows for cumulative classification. The plain quarterly and
// annual windows live in periods.go.
const (
	halfMinDays = 170
	halfMaxDays = 200
	nineMinDays = 260
	nineMaxDays = 285
)

// ClassifyDuration buckets a duration length in days.
func ClassifyDuration(days int) PeriodClass {
	switch {
	case days >= quarterMinDays && days <= quarterMaxDays:
		return ClassQuarter
	case days >= halfMinDays && days <= halfMaxDays:
		return ClassHalf
	case days >= nineMinDays && days <= nineMaxDays:
		return ClassNineMonths
	case days >= annualMinDays && days <= annualMaxDays:
		return ClassFullYear
	}
	return ClassOther
}

// Inter-quarter gap tolerance: consecutive quarter ends should sit roughly a
// fiscal quarter apart.
const (
	gapMinDays = 70
	gapMaxDays = 110
)

// QuarterizeOptions configures quarterly derivation.
type QuarterizeOptions struct {
	// PreferDerivedQ4 inverts the default preference: normally a discretely
	// reported quarter beats a derived one covering the same period end
	// (some filers file Q4 as its own 10-Q), and derivation is skipped.
	PreferDerivedQ4 bool
}

// Quarter is one discrete quarterly value, reported or derived.
type Quarter struct {
	Period      Period
	Value       decimal.Decimal
	Decimals    int
	Derived     bool
	DerivedFrom string // e.g. "FY2025" for Q4 = FY2025 - 9M
}

// TTMResult is a trailing-twelve-month aggregate. Derived quarters and
// calendar gaps surface as structured flags on the result, not as log
// warnings.
type TTMResult struct {
	Concept         string
	EndDate         time.Time
	Value           decimal.Decimal
	Quarters        []Quarter // oldest first
	QuartersDerived []string  // DerivedFrom labels of the derived quarters
	HasGaps         bool
}

// QuarterlySeries builds the discrete quarterly series for a concept from
// its dimensionless duration facts, deriving quarters that filers report
// only cumulatively:
//
//	Q4 = FY - 9M    (same fiscal year start)
//	Q3 = 9M - H     (when Q3 itself is unreported)
//	Q2 = H  - Q1    (when only the half-year is reported)
//
// The series is sorted by period end ascending.
func QuarterlySeries(facts *FactTable, concept string, opts QuarterizeOptions) []Quarter {
	type span struct {
		period   Period
		value    decimal.Decimal
		decimals int
	}
	byClass := make(map[PeriodClass][]span)

	for _, f := range facts.ByConcept(concept) {
		if !f.IsDuration() || f.Context.HasDimensions() || !f.Value.IsNumeric() {
			continue
		}
		class := ClassifyDuration(f.Period().Days())
		if class == ClassOther {
			continue
		}
		byClass[class] = append(byClass[class], span{period: f.Period(), value: *f.Value.Numeric, decimals: f.Decimals})
	}

	quarters := make(map[string]Quarter) // keyed by end date
	add := func(q Quarter) {
		key := q.Period.EndDate.Format("2006-01-02")
		if existing, ok := quarters[key]; ok {
			keepExisting := existing.Derived == q.Derived ||
				(opts.PreferDerivedQ4 && existing.Derived) ||
				(!opts.PreferDerivedQ4 && !existing.Derived)
			if keepExisting {
				return
			}
		}
		quarters[key] = q
	}

	for _, s := range byClass[ClassQuarter] {
		add(Quarter{Period: s.period, Value: s.value, Decimals: s.decimals})
	}

	// sameStart tolerates a few days of fiscal-calendar drift between the
	// cumulative spans of one fiscal year.
	sameStart := func(a, b Period) bool {
		return math.Abs(a.StartDate.Sub(b.StartDate).Hours()/24) <= 7
	}

	derive := func(whole, part span, label string) Quarter {
		return Quarter{
			Period:      Period{StartDate: part.period.EndDate.AddDate(0, 0, 1), EndDate: whole.period.EndDate},
			Value:       whole.value.Sub(part.value),
			Decimals:    min(whole.decimals, part.decimals),
			Derived:     true,
			DerivedFrom: label,
		}
	}

	for _, fy := range byClass[ClassFullYear] {
		for _, nine := range byClass[ClassNineMonths] {
			if sameStart(fy.period, nine.period) && nine.period.EndDate.Before(fy.period.EndDate) {
				add(derive(fy, nine, fmt.Sprintf("FY%d", fy.period.EndDate.Year())))
				break
			}
		}
	}
	for _, nine := range byClass[ClassNineMonths] {
		for _, half := range byClass[ClassHalf] {
			if sameStart(nine.period, half.period) && half.period.EndDate.Before(nine.period.EndDate) {
				add(derive(nine, half, fmt.Sprintf("9M%d", nine.period.EndDate.Year())))
				break
			}
		}
	}
	for _, half := range byClass[ClassHalf] {
		for _, q := range byClass[ClassQuarter] {
			if sameStart(half.period, q.period) && q.period.EndDate.Before(half.period.EndDate) {
				add(derive(half, q, fmt.Sprintf("H%d", half.period.EndDate.Year())))
				break
			}
		}
	}

	out := make([]Quarter, 0, len(quarters))
	for _, q := range quarters {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.EndDate.Before(out[j].Period.EndDate)
	})
	return out
}

// TTM sums the four most recent consecutive quarters ending at or before
// endingAt. Fewer than four available quarters (reported plus derivable) is
// an InsufficientDataError listing what was found.
func TTM(facts *FactTable, concept string, endingAt time.Time, opts QuarterizeOptions) (*TTMResult, error) {
	series := QuarterlySeries(facts, concept, opts)

	// Trim to quarters ending at or before the target.
	var trimmed []Quarter
	for _, q := range series {
		if !q.Period.EndDate.After(endingAt) {
			trimmed = append(trimmed, q)
		}
	}

	if len(trimmed) < 4 {
		have := make([]string, len(trimmed))
		for i, q := range trimmed {
			have[i] = q.Period.Key()
		}
		return nil, &InsufficientDataError{
			Operation: "TTM for " + concept,
			Need:      4,
			Have:      len(trimmed),
			Periods:   have,
		}
	}

	window := trimmed[len(trimmed)-4:]
	result := &TTMResult{
		Concept:  concept,
		EndDate:  window[3].Period.EndDate,
		Quarters: window,
	}
	for i, q := range window {
		result.Value = result.Value.Add(q.Value)
		if q.Derived {
			result.QuartersDerived = append(result.QuartersDerived, q.DerivedFrom)
		}
		if i > 0 {
			gap := int(q.Period.EndDate.Sub(window[i-1].Period.EndDate).Hours() / 24)
			if gap < gapMinDays || gap > gapMaxDays {
				result.HasGaps = true
			}
		}
	}
	return result, nil
}
