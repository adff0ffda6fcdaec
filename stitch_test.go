package xbrl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incomeFiling(t *testing.T, docEnd string, facts []*Fact) *Filing {
	t.Helper()
	role := "http://tests.example.com/role/Income"
	return buildTestFiling(t, incomeArcs(role), nil,
		[]Role{{URI: role, Definition: "1002 - Statement - STATEMENTS OF OPERATIONS"}},
		incomeCatalog(), facts,
		DocumentInfo{PeriodEndDate: mustDate(t, docEnd), FiscalYearEndDay: "--12-31", FiscalPeriodFocus: "FY", EntityName: "Test Corp"})
}

func TestStitchFilings_UnionsPeriodsAcrossFilings(t *testing.T) {
	fy2023 := dur(t, "2023-01-01", "2023-12-31")
	fy2022 := dur(t, "2022-01-01", "2022-12-31")
	fy2021 := dur(t, "2021-01-01", "2021-12-31")

	newer := incomeFiling(t, "2023-12-31", []*Fact{
		numFact(t, "us-gaap:Revenues", "500", fy2023),
		numFact(t, "us-gaap:NetIncomeLoss", "50", fy2023),
		numFact(t, "us-gaap:Revenues", "450", fy2022),
		numFact(t, "us-gaap:NetIncomeLoss", "45", fy2022),
	})
	older := incomeFiling(t, "2022-12-31", []*Fact{
		numFact(t, "us-gaap:Revenues", "450", fy2022),
		numFact(t, "us-gaap:NetIncomeLoss", "45", fy2022),
		numFact(t, "us-gaap:Revenues", "400", fy2021),
		numFact(t, "us-gaap:NetIncomeLoss", "40", fy2021),
	})

	stitched, err := StitchFilings(context.Background(), []*Filing{older, newer}, IncomeStatement, StitchOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{fy2023.Key(), fy2022.Key(), fy2021.Key()}, stitched.Periods)

	var revenue *LineItem
	for _, row := range stitched.Rows {
		if row.Concept == "us-gaap:Revenues" {
			revenue = row
		}
	}
	require.NotNil(t, revenue)
	assert.Equal(t, "500", revenue.Cell(fy2023.Key()).Value.String())
	assert.Equal(t, "450", revenue.Cell(fy2022.Key()).Value.String())
	assert.Equal(t, "400", revenue.Cell(fy2021.Key()).Value.String())
}

// Rows only present in older filings are appended after the newest filing's
// row order.
func TestStitch_OlderOnlyRowsAppended(t *testing.T) {
	fy2023 := dur(t, "2023-01-01", "2023-12-31")
	fy2022 := dur(t, "2022-01-01", "2022-12-31")

	newest := &Statement{
		Type:    IncomeStatement,
		Periods: []string{fy2023.Key()},
		Rows: []*LineItem{
			{Concept: "us-gaap:Revenues", Label: "Revenues", Values: map[string]*Cell{fy2023.Key(): {Value: dec(t, "500")}}},
		},
	}
	oldest := &Statement{
		Type:    IncomeStatement,
		Periods: []string{fy2022.Key()},
		Rows: []*LineItem{
			{Concept: "us-gaap:Revenues", Label: "Revenues", Values: map[string]*Cell{fy2022.Key(): {Value: dec(t, "450")}}},
			{Concept: "us-gaap:RestructuringCharges", Label: "Restructuring", Values: map[string]*Cell{fy2022.Key(): {Value: dec(t, "30")}}},
		},
	}

	stitched, err := Stitch([]*Statement{newest, oldest}, StitchOptions{})
	require.NoError(t, err)
	require.Len(t, stitched.Rows, 2)
	assert.Equal(t, "us-gaap:Revenues", stitched.Rows[0].Concept)
	assert.Equal(t, "us-gaap:RestructuringCharges", stitched.Rows[1].Concept)
}

// Coexisting revenue variants collapse to one row. Comparable coverage falls
// back to the hierarchical precedence; strictly greater coverage wins
// outright.
func TestStitch_RevenueDeduplication(t *testing.T) {
	fy2023 := dur(t, "2023-01-01", "2023-12-31")
	fy2022 := dur(t, "2022-01-01", "2022-12-31")

	t.Run("precedence on equal coverage", func(t *testing.T) {
		stmt := &Statement{
			Type:    IncomeStatement,
			Periods: []string{fy2023.Key()},
			Rows: []*LineItem{
				{Concept: "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax", Label: "Revenue from contracts", Values: map[string]*Cell{fy2023.Key(): {Value: dec(t, "500")}}},
				{Concept: "us-gaap:Revenues", Label: "Total revenues", Values: map[string]*Cell{fy2023.Key(): {Value: dec(t, "500")}}},
			},
		}
		stitched, err := Stitch([]*Statement{stmt}, StitchOptions{})
		require.NoError(t, err)
		require.Len(t, stitched.Rows, 1)
		assert.Equal(t, "us-gaap:Revenues", stitched.Rows[0].Concept)
	})

	t.Run("coverage beats precedence", func(t *testing.T) {
		stmt := &Statement{
			Type:    IncomeStatement,
			Periods: []string{fy2023.Key(), fy2022.Key()},
			Rows: []*LineItem{
				{Concept: "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax", Label: "Revenue from contracts", Values: map[string]*Cell{
					fy2023.Key(): {Value: dec(t, "500")},
					fy2022.Key(): {Value: dec(t, "450")},
				}},
				{Concept: "us-gaap:Revenues", Label: "Total revenues", Values: map[string]*Cell{fy2023.Key(): {Value: dec(t, "500")}}},
			},
		}
		stitched, err := Stitch([]*Statement{stmt}, StitchOptions{})
		require.NoError(t, err)
		require.Len(t, stitched.Rows, 1)
		assert.Equal(t, "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax", stitched.Rows[0].Concept)
	})
}

// Periods whose cells all vanish after the merge are dropped.
func TestStitch_EmptyPeriodsPruned(t *testing.T) {
	fy2023 := dur(t, "2023-01-01", "2023-12-31")
	fy2022 := dur(t, "2022-01-01", "2022-12-31")

	stmt := &Statement{
		Type:    IncomeStatement,
		Periods: []string{fy2023.Key(), fy2022.Key()},
		Rows: []*LineItem{
			{Concept: "us-gaap:Revenues", Label: "Revenues", Values: map[string]*Cell{fy2023.Key(): {Value: dec(t, "500")}}},
		},
	}
	stitched, err := Stitch([]*Statement{stmt}, StitchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{fy2023.Key()}, stitched.Periods)
}

func TestStitch_NoInput(t *testing.T) {
	_, err := Stitch(nil, StitchOptions{})
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestParseBundles_Concurrent(t *testing.T) {
	sources := []Source{
		testBundle(testInstance, "t.xml"),
		testBundle(testInline, "t.htm"),
	}
	filings, err := ParseBundles(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, filings, 2)
	assert.Equal(t, "Test Corp", filings[0].Doc.EntityName)
	assert.Equal(t, "Test Corp", filings[1].Doc.EntityName)
}
