package xbrl

// StatementOptions configures statement construction from one filing.
type StatementOptions struct {
	Parenthetical     bool
	MaxPeriods        int
	IncludeDimensions bool
	Standardize       bool

	// Registry, Mapper, and Signs default to the package defaults when nil;
	// tests supply their own to exercise alternative configurations.
	Registry *StatementRegistry
	Mapper   *ConceptMapper
	Signs    *SignPolicy
}

func (o StatementOptions) withDefaults() StatementOptions {
	if o.Registry == nil {
		o.Registry = DefaultStatementRegistry()
	}
	if o.Mapper == nil {
		o.Mapper = DefaultConceptMapper()
	}
	if o.Signs == nil {
		o.Signs = DefaultSignPolicy()
	}
	return o
}

// Statement resolves, selects periods for, and populates one canonical
// statement. Statement-not-found surfaces as a typed error; a statement that
// resolves but has no displayable periods comes back as an empty statement
// carrying the diagnostic reason, never as nil.
func (f *Filing) Statement(t StatementType, opts StatementOptions) (*Statement, error) {
	opts = opts.withDefaults()

	res, err := ResolveStatement(f, t, opts.Parenthetical, opts.Registry)
	if err != nil {
		return nil, err
	}

	role, _ := f.Role(res.Role)
	if role.URI == "" {
		role = Role{URI: res.Role}
	}
	title := role.Label()
	if opts.Standardize {
		title += " (Standardized)"
	}

	stmt := &Statement{
		Type:         t,
		Title:        title,
		Role:         res.Role,
		Entity:       f.Doc.EntityName,
		Standardized: opts.Standardize,
		Confidence:   res.Confidence,
	}

	tree := f.Presentation.Tree(res.Role)
	if tree == nil || len(tree.Nodes) == 0 {
		return stmt, nil
	}

	periods, err := SelectPeriods(t, tree, f.Catalog, f.Facts, f.Doc, PeriodOptions{MaxPeriods: opts.MaxPeriods})
	if err != nil {
		if _, ok := err.(*InsufficientDataError); ok {
			stmt.Diagnostic = err.Error()
			return stmt, nil
		}
		return nil, err
	}
	stmt.Periods = periods

	stmt.Rows = GenerateLineItems(tree, f.Calculation.Tree(res.Role), f.Catalog, f.Facts, periods, LineItemOptions{
		StatementType:     t,
		IncludeDimensions: opts.IncludeDimensions,
		Standardize:       opts.Standardize,
		Mapper:            opts.Mapper,
		Signs:             opts.Signs,
	})
	return stmt, nil
}

// BalanceSheet returns the filing's balance sheet with default options.
func (f *Filing) BalanceSheet() (*Statement, error) {
	return f.Statement(BalanceSheet, StatementOptions{})
}

// IncomeStatement returns the filing's income statement with default options.
func (f *Filing) IncomeStatement() (*Statement, error) {
	return f.Statement(IncomeStatement, StatementOptions{})
}

// CashFlow returns the filing's cash flow statement with default options.
func (f *Filing) CashFlow() (*Statement, error) {
	return f.Statement(CashFlowStatement, StatementOptions{})
}

// EquityStatement returns the filing's statement of equity with default
// options.
func (f *Filing) EquityStatement() (*Statement, error) {
	return f.Statement(StatementOfEquity, StatementOptions{})
}

// ComprehensiveIncomeStatement returns the filing's statement of
// comprehensive income with default options. Filings that combine operations
// and comprehensive income in one role return that shared role's projection.
func (f *Filing) ComprehensiveIncomeStatement() (*Statement, error) {
	return f.Statement(ComprehensiveIncome, StatementOptions{})
}
