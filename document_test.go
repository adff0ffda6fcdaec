package xbrl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocumentInfo(t *testing.T) {
	fy := dur(t, "2023-01-01", "2023-12-31")
	facts := NewFactTable([]*Fact{
		textFact("dei:EntityRegistrantName", "Test Corp", fy),
		textFact("dei:EntityCentralIndexKey", "0000320193", fy),
		textFact("dei:DocumentType", "10-K/A", fy),
		textFact("dei:DocumentFiscalPeriodFocus", "FY", fy),
		textFact("dei:DocumentPeriodEndDate", "2023-12-31", fy),
		textFact("dei:CurrentFiscalYearEndDate", "--12-31", fy),
	})

	info := extractDocumentInfo(facts)
	assert.Equal(t, "Test Corp", info.EntityName)
	assert.Equal(t, "0000320193", info.CIK)
	assert.Equal(t, "10-K/A", info.FormType)
	assert.True(t, info.Amended)
	assert.Equal(t, "2023-12-31", info.PeriodEndDate.Format("2006-01-02"))

	month, day, ok := info.FiscalMonthDay()
	assert.True(t, ok)
	assert.Equal(t, "December", month.String())
	assert.Equal(t, 31, day)
}

// Filings without a DEI period end date fall back to the latest context end
// so the future-period filter still has an anchor.
func TestExtractDocumentInfo_FallbackPeriodEnd(t *testing.T) {
	facts := NewFactTable([]*Fact{
		textFact("dei:EntityRegistrantName", "Test Corp", dur(t, "2023-01-01", "2023-12-31")),
	})
	info := extractDocumentInfo(facts)
	assert.Equal(t, "2023-12-31", info.PeriodEndDate.Format("2006-01-02"))
}

func TestConceptMapper(t *testing.T) {
	mapper := DefaultConceptMapper()

	assert.Equal(t, "Revenue", mapper.StandardLabel("us-gaap:Revenues"))
	assert.Equal(t, "Revenue", mapper.StandardLabel("us-gaap:SalesRevenueNet"))
	assert.Equal(t, "", mapper.StandardLabel("acme:HomeGrownMetric"))
	assert.True(t, mapper.HasMapping("us-gaap:NetIncomeLoss"))

	// Precedence follows listing order within a label group.
	assert.Less(t, mapper.Priority("us-gaap:Revenues"), mapper.Priority("us-gaap:SalesRevenueNet"))
	assert.Less(t, mapper.Priority("us-gaap:SalesRevenueNet"),
		mapper.Priority("us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax"))

	concepts, err := mapper.Concepts("Revenue")
	assert.NoError(t, err)
	assert.Equal(t, "us-gaap:Revenues", concepts[0])

	_, err = mapper.Concepts("No Such Label")
	assert.Error(t, err)
}

func TestConceptMapper_CustomDocument(t *testing.T) {
	custom := `{
		"mappings": {
			"Widgets Shipped": {"concepts": ["acme:WidgetsShipped"], "notes": ""}
		}
	}`
	mapper, err := NewConceptMapper([]byte(custom))
	assert.NoError(t, err)
	assert.Equal(t, "Widgets Shipped", mapper.StandardLabel("acme:WidgetsShipped"))
	assert.Equal(t, "", mapper.StandardLabel("us-gaap:Revenues"))
}
