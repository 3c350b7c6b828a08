/*
report.go - Forecast classification report

PURPOSE:
  Produces the due-state view the reporting surface renders into printable
  lists: every asset of a site classified against a caller-selected forecast
  year, with battery-due lights called out separately (lights never become
  due through the interval mechanism). Pure function of current state, so
  reports regenerate idempotently at any time.
*/
package compliance

import "github.com/shopspring/decimal"

// ReportLine is one asset's forecast classification.
type ReportLine struct {
	AssetID        string
	Kind           AssetKind
	Category       Category
	Brand          string
	Size           string
	LastService    string
	Classification Classification
	BatteryDue     bool
}

// ForecastReport summarizes a site against a forecast year.
type ForecastReport struct {
	SiteID       string
	ForecastYear int
	Lines        []ReportLine

	// Counts by state, plus the summed agent magnitude of target units -
	// what the recharge run will actually have to carry.
	TargetCount  int
	OverdueCount int
	UnknownCount int
	OKCount      int
	TargetAgent  decimal.Decimal
}

// BuildForecastReport classifies every asset of the site for the forecast
// year. Archived sites report like any other; archival hides them from
// listings, not from audits.
func BuildForecastReport(p IntervalPolicy, s *Site, assets []*Asset, forecastYear, currentYear int) ForecastReport {
	report := ForecastReport{SiteID: s.ID, ForecastYear: forecastYear}
	for _, a := range assets {
		cls := ClassifyAsset(p, a, forecastYear, currentYear)
		report.Lines = append(report.Lines, ReportLine{
			AssetID:        a.ID,
			Kind:           a.Kind,
			Category:       a.Category,
			Brand:          a.Brand,
			Size:           a.Size,
			LastService:    a.LastServiceYear,
			Classification: cls,
			BatteryDue:     a.Kind == KindLight && a.BatteryDue,
		})
		switch cls.State {
		case StateTarget:
			report.TargetCount++
			report.TargetAgent = report.TargetAgent.Add(sizeMagnitude(a.Size))
		case StateOverdue:
			report.OverdueCount++
		case StateUnknown:
			report.UnknownCount++
		default:
			report.OKCount++
		}
	}
	return report
}
