package compliance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// =============================================================================
// TECHNICIAN SEEDING
// =============================================================================

func TestAssignTechnician_SeedsSystemPair(t *testing.T) {
	// GIVEN: a site with an empty systemMonths set
	// WHEN: a system technician is selected in month 3
	// THEN: systemMonths = [3, 9] (sorted, six apart)

	s := &compliance.Site{ID: "s1"}
	compliance.AssignTechnician(s, compliance.ServiceSystem, "Maria Delgado", 3)

	assert.Equal(t, []int{3, 9}, s.SystemMonths)
	assert.Equal(t, "Maria Delgado", s.SystemTech)
}

func TestAssignTechnician_SystemPairWrapsAroundYearEnd(t *testing.T) {
	// Month 10 + 6 wraps to April: [4, 10].
	s := &compliance.Site{ID: "s1"}
	compliance.AssignTechnician(s, compliance.ServiceSystem, "Maria", 10)
	assert.Equal(t, []int{4, 10}, s.SystemMonths)
}

func TestAssignTechnician_SeedsExtinguisherSingleMonth(t *testing.T) {
	s := &compliance.Site{ID: "s1"}
	compliance.AssignTechnician(s, compliance.ServiceExtinguisher, "Joe Park", 7)
	assert.Equal(t, []int{7}, s.ServiceMonths)
}

func TestAssignTechnician_DoesNotReseedNonEmptySet(t *testing.T) {
	s := &compliance.Site{ID: "s1", SystemMonths: []int{2}}
	compliance.AssignTechnician(s, compliance.ServiceSystem, "Maria", 10)
	assert.Equal(t, []int{2}, s.SystemMonths, "existing months must not be reseeded")
}

func TestAssignTechnician_EmptyNameResetsToNone(t *testing.T) {
	s := &compliance.Site{ID: "s1", ServiceTech: "Joe"}
	compliance.AssignTechnician(s, compliance.ServiceExtinguisher, "", 5)
	assert.Equal(t, compliance.TechNone, s.Tech(compliance.ServiceExtinguisher))
	assert.Empty(t, s.ServiceMonths, "the None sentinel must not seed months")
}

// =============================================================================
// MONTH TOGGLES
// =============================================================================

func TestToggleMonth_AddRemove(t *testing.T) {
	s := &compliance.Site{ID: "s1"}

	compliance.ToggleMonth(s, compliance.ServiceExtinguisher, 5)
	compliance.ToggleMonth(s, compliance.ServiceExtinguisher, 2)
	assert.Equal(t, []int{2, 5}, s.ServiceMonths)

	compliance.ToggleMonth(s, compliance.ServiceExtinguisher, 5)
	assert.Equal(t, []int{2}, s.ServiceMonths)

	// Out of range is ignored.
	compliance.ToggleMonth(s, compliance.ServiceExtinguisher, 0)
	compliance.ToggleMonth(s, compliance.ServiceExtinguisher, 13)
	assert.Equal(t, []int{2}, s.ServiceMonths)
}

func TestToggleMonth_SystemSetIsUnconstrained(t *testing.T) {
	// The six-apart pair is a soft suggestion only; manual toggles may leave
	// any number of months.
	s := &compliance.Site{ID: "s1", SystemMonths: []int{3, 9}}
	compliance.ToggleMonth(s, compliance.ServiceSystem, 5)
	assert.Equal(t, []int{3, 5, 9}, s.SystemMonths)
}

// =============================================================================
// ACTIVE MONTHS
// =============================================================================

func TestMonthActive_CompletedOneOffStaysVisible(t *testing.T) {
	// GIVEN: month 4 was completed in 2024 and later removed from the set
	// THEN: month 4 stays active for 2024 (auditable) but not for 2025

	s := &compliance.Site{
		ID:            "s1",
		ServiceMonths: []int{6},
		CompletedServices: []compliance.ServiceCompletion{
			{Type: compliance.ServiceExtinguisher, Year: 2024, Month: 4},
		},
	}

	assert.True(t, compliance.MonthActive(s, compliance.ServiceExtinguisher, 2024, 4))
	assert.False(t, compliance.MonthActive(s, compliance.ServiceExtinguisher, 2025, 4))
	assert.True(t, compliance.MonthActive(s, compliance.ServiceExtinguisher, 2025, 6))

	assert.Equal(t, []int{4, 6}, compliance.ActiveMonths(s, compliance.ServiceExtinguisher, 2024))
	assert.Equal(t, []int{6}, compliance.ActiveMonths(s, compliance.ServiceExtinguisher, 2025))
}
