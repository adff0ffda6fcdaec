package xbrl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incomeCatalog() ElementCatalog {
	return ElementCatalog{
		"us-gaap:IncomeStatementAbstract": elem("us-gaap:IncomeStatementAbstract", PeriodDuration, true, "Income Statement [Abstract]"),
		"us-gaap:Revenues":                elem("us-gaap:Revenues", PeriodDuration, false, "Revenues"),
		"us-gaap:CostOfRevenue":           elem("us-gaap:CostOfRevenue", PeriodDuration, false, "Cost of revenue"),
		"us-gaap:NetIncomeLoss":           elem("us-gaap:NetIncomeLoss", PeriodDuration, false, "Net income"),
	}
}

func incomeArcs(role string) []Arc {
	return []Arc{
		presArc(role, "us-gaap:IncomeStatementAbstract", "us-gaap:Revenues", 1, ""),
		presArc(role, "us-gaap:IncomeStatementAbstract", "us-gaap:CostOfRevenue", 2, ""),
		presArc(role, "us-gaap:IncomeStatementAbstract", "us-gaap:NetIncomeLoss", 3, ""),
	}
}

// Future-dated contexts must never survive period selection: a filing whose
// document period ends 2023-12-31 can still carry stray 2024 contexts.
func TestSelectPeriods_FutureDatedPeriodFiltered(t *testing.T) {
	role := "http://tests.example.com/role/Income"
	fy2023 := dur(t, "2023-01-01", "2023-12-31")
	fy2024 := dur(t, "2024-01-01", "2024-12-31")

	facts := []*Fact{
		numFact(t, "us-gaap:Revenues", "45000000000", fy2023),
		numFact(t, "us-gaap:NetIncomeLoss", "8000000000", fy2023),
		// Contamination: facts tagged to a period after the document date.
		numFact(t, "us-gaap:Revenues", "47000000000", fy2024),
		numFact(t, "us-gaap:NetIncomeLoss", "9000000000", fy2024),
	}
	filing := buildTestFiling(t, incomeArcs(role), nil,
		[]Role{{URI: role, Definition: "1002 - Statement - STATEMENTS OF OPERATIONS"}},
		incomeCatalog(), facts,
		DocumentInfo{PeriodEndDate: mustDate(t, "2023-12-31"), FiscalYearEndDay: "--12-31", FiscalPeriodFocus: "FY"})

	tree := filing.Presentation.Tree(role)
	periods, err := SelectPeriods(IncomeStatement, tree, filing.Catalog, filing.Facts, filing.Doc, PeriodOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{fy2023.Key()}, periods)
	for _, key := range periods {
		p, err := ParsePeriodKey(key)
		require.NoError(t, err)
		assert.False(t, p.End().After(filing.Doc.PeriodEndDate))
	}
}

func TestSelectPeriods_BalanceSheetTakesInstantsOnly(t *testing.T) {
	role := "http://tests.example.com/role/BS"
	arcs := []Arc{
		presArc(role, "us-gaap:StatementOfFinancialPositionAbstract", "us-gaap:Assets", 1, ""),
		presArc(role, "us-gaap:StatementOfFinancialPositionAbstract", "us-gaap:StockholdersEquity", 2, ""),
	}
	facts := []*Fact{
		numFact(t, "us-gaap:Assets", "352000000000", inst(t, "2023-12-31")),
		numFact(t, "us-gaap:Assets", "330000000000", inst(t, "2022-12-31")),
		numFact(t, "us-gaap:Assets", "1000", dur(t, "2023-01-01", "2023-12-31")),
	}
	filing := buildTestFiling(t, arcs, nil, []Role{{URI: role}}, balanceSheetCatalog(), facts,
		DocumentInfo{PeriodEndDate: mustDate(t, "2023-12-31"), FiscalYearEndDay: "--12-31", FiscalPeriodFocus: "FY"})

	periods, err := SelectPeriods(BalanceSheet, filing.Presentation.Tree(role), filing.Catalog, filing.Facts, filing.Doc, PeriodOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"instant_2023-12-31", "instant_2022-12-31"}, periods)
}

// Income statements reject durations outside the quarterly and annual
// windows; cash flow statements additionally accept YTD spans.
func TestSelectPeriods_DurationWindows(t *testing.T) {
	ytd := dur(t, "2023-01-01", "2023-09-30") // 273 days
	doc := DocumentInfo{PeriodEndDate: mustDate(t, "2023-12-31"), FiscalYearEndDay: "--12-31", FiscalPeriodFocus: "FY"}

	assert.False(t, periodTypeAllowed(IncomeStatement, ytd))
	assert.True(t, periodTypeAllowed(CashFlowStatement, ytd))
	assert.True(t, periodTypeAllowed(IncomeStatement, dur(t, "2023-10-01", "2023-12-31")))
	assert.True(t, periodTypeAllowed(IncomeStatement, dur(t, "2023-01-01", "2023-12-31")))
	assert.False(t, periodTypeAllowed(IncomeStatement, dur(t, "2023-12-01", "2023-12-31")))

	// And the cash flow density floor still applies: a YTD period carrying a
	// single fact is too sparse to display.
	role := "http://tests.example.com/role/CF"
	catalog := ElementCatalog{
		"us-gaap:StatementOfCashFlowsAbstract": elem("us-gaap:StatementOfCashFlowsAbstract", PeriodDuration, true, ""),
		"us-gaap:NetCashProvidedByUsedInOperatingActivities": elem("us-gaap:NetCashProvidedByUsedInOperatingActivities", PeriodDuration, false, "Operating cash flow"),
	}
	filing := buildTestFiling(t,
		[]Arc{presArc(role, "us-gaap:StatementOfCashFlowsAbstract", "us-gaap:NetCashProvidedByUsedInOperatingActivities", 1, "")},
		nil, []Role{{URI: role}}, catalog,
		[]*Fact{numFact(t, "us-gaap:NetCashProvidedByUsedInOperatingActivities", "5000", ytd)},
		doc)

	_, err := SelectPeriods(CashFlowStatement, filing.Presentation.Tree(role), filing.Catalog, filing.Facts, filing.Doc, PeriodOptions{})
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestSelectPeriods_SinglePeriodAvailable(t *testing.T) {
	role := "http://tests.example.com/role/Income"
	fy := dur(t, "2023-01-01", "2023-12-31")
	filing := buildTestFiling(t, incomeArcs(role), nil, []Role{{URI: role}}, incomeCatalog(),
		[]*Fact{numFact(t, "us-gaap:Revenues", "100", fy)},
		DocumentInfo{PeriodEndDate: mustDate(t, "2023-12-31"), FiscalYearEndDay: "--12-31", FiscalPeriodFocus: "FY"})

	periods, err := SelectPeriods(IncomeStatement, filing.Presentation.Tree(role), filing.Catalog, filing.Facts, filing.Doc, PeriodOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{fy.Key()}, periods)
}

func TestSelectPeriods_MaxPeriodsAndOrdering(t *testing.T) {
	role := "http://tests.example.com/role/Income"
	var facts []*Fact
	years := []string{"2019", "2020", "2021", "2022", "2023"}
	for _, y := range years {
		p := dur(t, y+"-01-01", y+"-12-31")
		facts = append(facts,
			numFact(t, "us-gaap:Revenues", "100", p),
			numFact(t, "us-gaap:NetIncomeLoss", "10", p),
		)
	}
	filing := buildTestFiling(t, incomeArcs(role), nil, []Role{{URI: role}}, incomeCatalog(), facts,
		DocumentInfo{PeriodEndDate: mustDate(t, "2023-12-31"), FiscalYearEndDay: "--12-31", FiscalPeriodFocus: "FY"})

	periods, err := SelectPeriods(IncomeStatement, filing.Presentation.Tree(role), filing.Catalog, filing.Facts, filing.Doc, PeriodOptions{MaxPeriods: 3})
	require.NoError(t, err)
	require.Len(t, periods, 3)
	// Most recent first.
	assert.Equal(t, "duration_2023-01-01_2023-12-31", periods[0])
	assert.Equal(t, "duration_2022-01-01_2022-12-31", periods[1])
	assert.Equal(t, "duration_2021-01-01_2021-12-31", periods[2])
}

func TestFiscalAlignment(t *testing.T) {
	doc := DocumentInfo{FiscalYearEndDay: "--12-31"}

	assert.InDelta(t, 1.0, fiscalAlignment(mustDate(t, "2023-12-31"), doc), 0.001)
	assert.InDelta(t, 1.0, fiscalAlignment(mustDate(t, "2023-09-30"), doc), 0.05)
	// Mid-February sits far from every quarter boundary of a December filer.
	assert.Less(t, fiscalAlignment(mustDate(t, "2023-02-14"), doc), 0.5)
}
