package compliance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

func TestBuildForecastReport(t *testing.T) {
	// GIVEN: a site with a target unit, an overdue unit, an unknown-year unit,
	//        a healthy unit and a battery-due exit light
	// WHEN: classified against forecast year 2025
	// THEN: counts line up and the target agent total sums only target sizes

	s := &compliance.Site{ID: "site-1", Archived: true}
	assets := []*compliance.Asset{
		{ID: "a1", Kind: compliance.KindExtinguisher, Category: "ABC", Brand: "Amerex", Size: "5lb", LastServiceYear: "2019"},  // 2019+6 = 2025 target
		{ID: "a2", Kind: compliance.KindExtinguisher, Category: "CO2", Brand: "Badger", Size: "10lb", LastServiceYear: "2015"}, // 2015+5 < 2025 overdue
		{ID: "a3", Kind: compliance.KindExtinguisher, Category: "K", Brand: "Ansul", Size: "2.5 gal", LastServiceYear: ""},     // unknown
		{ID: "a4", Kind: compliance.KindExtinguisher, Category: "ABC", Brand: "Amerex", Size: "5lb", LastServiceYear: "2024"},  // ok
		{ID: "a5", Kind: compliance.KindLight, Category: "Exit Light", BatteryDue: true},                                      // unknown interval, battery flag
	}

	report := compliance.BuildForecastReport(compliance.DefaultIntervalPolicy{}, s, assets, 2025, 2025)

	require.Len(t, report.Lines, 5)
	assert.Equal(t, 1, report.TargetCount)
	assert.Equal(t, 1, report.OverdueCount)
	assert.Equal(t, 2, report.UnknownCount) // the K unit and the light
	assert.Equal(t, 1, report.OKCount)
	assert.True(t, report.TargetAgent.Equal(decimal.RequireFromString("5")), "target agent = %s", report.TargetAgent)

	assert.True(t, report.Lines[4].BatteryDue, "battery-due lights are called out even though never interval-due")
}
