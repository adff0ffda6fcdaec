package xbrl

import (
	"strings"
	"time"
)

// DocumentInfo carries the filing-level metadata reported through the DEI
// (Document and Entity Information) facts. PeriodEndDate drives the period
// selector's hard future-date filter.
type DocumentInfo struct {
	EntityName        string
	CIK               string
	FormType          string // "10-K", "10-Q", ...
	Amended           bool   // form type carries an /A suffix
	FiscalPeriodFocus string // "FY", "Q1".."Q4"
	FiscalYearFocus   string
	PeriodEndDate     time.Time
	FiscalYearEndDay  string // "--12-31" from dei:CurrentFiscalYearEndDate
}

// extractDocumentInfo scans the DEI facts of a filing.
func extractDocumentInfo(facts *FactTable) DocumentInfo {
	var info DocumentInfo

	text := func(concept string) string {
		for _, f := range facts.ByConcept(concept) {
			if f.Value.Text != "" {
				return strings.TrimSpace(f.Value.Text)
			}
		}
		return ""
	}

	info.EntityName = text("dei:EntityRegistrantName")
	info.CIK = text("dei:EntityCentralIndexKey")
	info.FiscalPeriodFocus = text("dei:DocumentFiscalPeriodFocus")
	info.FiscalYearFocus = text("dei:DocumentFiscalYearFocus")
	info.FiscalYearEndDay = text("dei:CurrentFiscalYearEndDate")

	info.FormType = text("dei:DocumentType")
	if strings.HasSuffix(info.FormType, "/A") {
		info.Amended = true
	}

	if s := text("dei:DocumentPeriodEndDate"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			info.PeriodEndDate = t
		}
	}
	if info.PeriodEndDate.IsZero() {
		// Some older filings omit the DEI period end; fall back to the latest
		// context end date so the future-period filter still has an anchor.
		var latest time.Time
		for _, f := range facts.Facts {
			if end := f.Period().End(); end.After(latest) {
				latest = end
			}
		}
		info.PeriodEndDate = latest
	}

	return info
}

// FiscalMonthDay returns the fiscal year end as (month, day), parsed from the
// "--MM-DD" DEI form. When that is absent or unparsable, it falls back to the
// document period end date, but only for a filing whose fiscal period focus
// is "FY".
func (d DocumentInfo) FiscalMonthDay() (time.Month, int, bool) {
	s := strings.TrimLeft(d.FiscalYearEndDay, "-")
	if t, err := time.Parse("01-02", s); err == nil {
		return t.Month(), t.Day(), true
	}
	if !d.PeriodEndDate.IsZero() && d.FiscalPeriodFocus == "FY" {
		return d.PeriodEndDate.Month(), d.PeriodEndDate.Day(), true
	}
	return 0, 0, false
}
