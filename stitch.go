package xbrl

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// StitchOptions configures multi-filing statement stitching.
type StitchOptions struct {
	// MaxPeriods caps the stitched view's columns; zero means 8.
	MaxPeriods int
	// Statement options applied to each filing before stitching.
	Statement StatementOptions
	// Mapper drives revenue deduplication precedence; defaults to the
	// package default.
	Mapper *ConceptMapper
}

func (o StitchOptions) withDefaults() StitchOptions {
	if o.MaxPeriods == 0 {
		o.MaxPeriods = 8
	}
	if o.Mapper == nil {
		o.Mapper = DefaultConceptMapper()
	}
	return o
}

// ParseBundles parses several filings' bundles concurrently. Each parse owns
// its own state; only the immutable registries are shared, so the goroutines
// need no locks. Results keep the input order.
func ParseBundles(ctx context.Context, sources []Source) ([]*Filing, error) {
	filings := make([]*Filing, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			filing, err := ParseBundle(ctx, src)
			if err != nil {
				return err
			}
			filings[i] = filing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filings, nil
}

// StitchFilings builds one statement per filing and stitches them into a
// single multi-period view. Filings are ordered most recent first by their
// document period end date before stitching.
func StitchFilings(ctx context.Context, filings []*Filing, t StatementType, opts StitchOptions) (*Statement, error) {
	opts = opts.withDefaults()

	ordered := append([]*Filing(nil), filings...)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].Doc, ordered[j].Doc
		if !di.PeriodEndDate.Equal(dj.PeriodEndDate) {
			return di.PeriodEndDate.After(dj.PeriodEndDate)
		}
		// Original filings outrank their amendments for the same period.
		return !di.Amended && dj.Amended
	})

	stmtOpts := opts.Statement
	if stmtOpts.MaxPeriods == 0 {
		stmtOpts.MaxPeriods = opts.MaxPeriods
	}

	var statements []*Statement
	for _, filing := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, err := filing.Statement(t, stmtOpts)
		if err != nil {
			if _, ok := err.(*StatementNotFoundError); ok {
				logger.WithField("statement", t).WithField("entity", filing.Doc.EntityName).
					Debug("filing skipped during stitch: statement not found")
				continue
			}
			return nil, err
		}
		statements = append(statements, stmt)
	}

	return Stitch(statements, opts)
}

// Stitch merges single-filing statements, newest first, into one statement
// whose values map covers the union of the input periods. Row identity is the
// standardized label when standardization produced one, else the concept.
// Row order follows the newest filing, with older-only rows appended. Cell
// values come from the newest filing that reports them. Redundant revenue
// variants are deduplicated, and periods left entirely empty are dropped.
func Stitch(statements []*Statement, opts StitchOptions) (*Statement, error) {
	opts = opts.withDefaults()
	if len(statements) == 0 {
		return nil, &InsufficientDataError{Operation: "stitch", Need: 1, Have: 0}
	}

	out := &Statement{
		Type:         statements[0].Type,
		Title:        statements[0].Title,
		Entity:       statements[0].Entity,
		Standardized: statements[0].Standardized,
	}

	rowKey := func(row *LineItem) string {
		if row.OriginalLabel != "" {
			return "label:" + row.Label // standardized rows merge on the canonical label
		}
		if row.Dimension != "" {
			return "concept:" + row.Concept + "|" + row.Dimension
		}
		return "concept:" + row.Concept
	}

	merged := make(map[string]*LineItem)
	var order []string
	periodSet := make(map[string]bool)

	for _, stmt := range statements {
		for _, period := range stmt.Periods {
			periodSet[period] = true
		}
		for _, row := range stmt.Rows {
			key := rowKey(row)
			existing, ok := merged[key]
			if !ok {
				clone := *row
				clone.Values = make(map[string]*Cell, len(row.Values))
				for k, v := range row.Values {
					clone.Values[k] = v
				}
				merged[key] = &clone
				order = append(order, key)
				continue
			}
			// Newest filing wins per cell; older filings only backfill.
			for k, v := range row.Values {
				if _, has := existing.Values[k]; !has {
					existing.Values[k] = v
				}
			}
		}
	}

	order = dedupeRevenue(merged, order, opts.Mapper)

	// Union periods, newest first, dropping any column with no values.
	var periods []string
	for period := range periodSet {
		populated := false
		for _, key := range order {
			if merged[key].Cell(period) != nil {
				populated = true
				break
			}
		}
		if populated {
			periods = append(periods, period)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		pi, erri := ParsePeriodKey(periods[i])
		pj, errj := ParsePeriodKey(periods[j])
		if erri != nil || errj != nil {
			return periods[i] < periods[j]
		}
		if !pi.End().Equal(pj.End()) {
			return pi.End().After(pj.End())
		}
		return periods[i] < periods[j]
	})
	if len(periods) > opts.MaxPeriods {
		periods = periods[:opts.MaxPeriods]
	}
	out.Periods = periods

	for _, key := range order {
		out.Rows = append(out.Rows, merged[key])
	}
	return out, nil
}

// dedupeRevenue collapses coexisting revenue-family concept rows to one.
// The hierarchical precedence (Revenues > SalesRevenueNet > contract-revenue
// variants) comes from the mapper's concept ordering, but a more specific
// concept with strictly greater non-null coverage wins regardless.
func dedupeRevenue(merged map[string]*LineItem, order []string, mapper *ConceptMapper) []string {
	type revenueRow struct {
		key      string
		coverage int
		priority int
	}
	var revenue []revenueRow

	for _, key := range order {
		row := merged[key]
		if row.Dimension != "" || row.Abstract {
			continue
		}
		if mapper.StandardLabel(row.Concept) != "Revenue" {
			continue
		}
		revenue = append(revenue, revenueRow{
			key:      key,
			coverage: len(row.Values),
			priority: mapper.Priority(row.Concept),
		})
	}
	if len(revenue) <= 1 {
		return order
	}

	best := revenue[0]
	for _, cand := range revenue[1:] {
		if cand.coverage > best.coverage {
			best = cand
			continue
		}
		if cand.coverage == best.coverage && cand.priority < best.priority {
			best = cand
		}
	}

	logger.WithField("kept", merged[best.key].Concept).
		Debugf("deduplicated %d revenue concept variants", len(revenue))

	drop := make(map[string]bool)
	for _, cand := range revenue {
		if cand.key != best.key {
			drop[cand.key] = true
			delete(merged, cand.key)
		}
	}
	var out []string
	for _, key := range order {
		if !drop[key] {
			out = append(out, key)
		}
	}
	return out
}
