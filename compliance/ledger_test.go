package compliance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func testSite() *compliance.Site {
	return &compliance.Site{
		ID:            "site-1",
		Name:          "Lakeside Diner",
		Notes:         "gate code 4417",
		ServiceMonths: []int{1, 2, 3},
		ServiceTech:   "Maria Delgado",
		SystemMonths:  []int{1, 7},
		SystemTech:    "Joe Park",
		ExtinguishersOut: []compliance.OutEntry{
			{ID: "out-1", Quantity: 2, Brand: "Amerex", Size: "5lb", Type: "ABC", Year: "2019"},
		},
	}
}

func complete(s *compliance.Site, actor string, month int) []compliance.ServiceCompletion {
	return compliance.MarkComplete(s, compliance.CompleteInput{
		Type:  compliance.ServiceExtinguisher,
		Year:  2025,
		Month: month,
		Actor: actor,
	}, testNow)
}

// =============================================================================
// IDEMPOTENCY AND UNDO
// =============================================================================

func TestMarkComplete_Idempotent(t *testing.T) {
	// GIVEN: a period already marked complete
	// WHEN: marking the same (type, year, month) again
	// THEN: silent no-op, exactly one ledger entry remains

	s := testSite()
	s.ServiceMonths = []int{3}

	first := complete(s, "someone else", 3)
	require.Len(t, first, 1)

	second := complete(s, "someone else", 3)
	assert.Empty(t, second, "duplicate mark-complete must be a no-op")
	assert.Len(t, s.CompletedServices, 1)
}

func TestUndoComplete_RestoresPeriodExactly(t *testing.T) {
	s := testSite()
	s.ServiceMonths = []int{3}
	complete(s, "x", 3)
	require.Len(t, s.CompletedServices, 1)

	assert.True(t, compliance.UndoComplete(s, compliance.ServiceExtinguisher, 2025, 3))
	assert.Empty(t, s.CompletedServices, "no residual snapshot after undo")

	// Undo of a non-existent completion is a no-op.
	assert.False(t, compliance.UndoComplete(s, compliance.ServiceExtinguisher, 2025, 3))
}

func TestUndoComplete_LeavesOtherPeriodsAlone(t *testing.T) {
	s := testSite()
	complete(s, "Maria Delgado", 3) // carries over months 1 and 2
	require.Len(t, s.CompletedServices, 3)

	compliance.UndoComplete(s, compliance.ServiceExtinguisher, 2025, 2)
	assert.Len(t, s.CompletedServices, 2)
	assert.Nil(t, s.Completion(compliance.ServiceExtinguisher, 2025, 2))
	assert.NotNil(t, s.Completion(compliance.ServiceExtinguisher, 2025, 1))
	assert.NotNil(t, s.Completion(compliance.ServiceExtinguisher, 2025, 3))
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestMarkComplete_SnapshotsAreIndependentCopies(t *testing.T) {
	// GIVEN: a completion snapshotting the current out-list and notes
	// WHEN: the live out-list and notes are mutated afterwards
	// THEN: the historical snapshot is unchanged

	s := testSite()
	s.ServiceMonths = []int{3}
	complete(s, "x", 3)

	entry := s.Completion(compliance.ServiceExtinguisher, 2025, 3)
	require.NotNil(t, entry)
	require.Len(t, entry.ExtinguishersOutSnapshot, 1)
	assert.Equal(t, "gate code 4417", entry.NotesSnapshot)
	assert.Nil(t, entry.SystemTanksSnapshot, "only the matching discipline is snapshotted")

	s.ExtinguishersOut[0].Quantity = 99
	s.Notes = "changed"

	assert.Equal(t, 2, entry.ExtinguishersOutSnapshot[0].Quantity)
	assert.Equal(t, "gate code 4417", entry.NotesSnapshot)
}

func TestMarkComplete_SystemDisciplineSnapshotsTanks(t *testing.T) {
	s := testSite()
	s.SystemTanks = []compliance.OutEntry{{ID: "t-1", Quantity: 1, Brand: "Ansul", Size: "3 gal", Type: "Wet Chemical", Year: "2013"}}

	written := compliance.MarkComplete(s, compliance.CompleteInput{
		Type: compliance.ServiceSystem, Year: 2025, Month: 7, Actor: "x",
	}, testNow)
	require.Len(t, written, 1)
	assert.Len(t, written[0].SystemTanksSnapshot, 1)
	assert.Nil(t, written[0].ExtinguishersOutSnapshot)
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

func TestCompletionTimestamp_AppointmentNoonFallback(t *testing.T) {
	s := testSite()
	s.ServiceMonths = []int{3}
	s.Appointment = compliance.Appointment{Month: 3, Day: 20}

	written := complete(s, "x", 3)
	require.Len(t, written, 1)
	assert.Equal(t, time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC), written[0].CompletedDate)
}

func TestCompletionTimestamp_AppointmentWithTime(t *testing.T) {
	s := testSite()
	s.ServiceMonths = []int{3}
	s.Appointment = compliance.Appointment{Month: 3, Day: 20, Time: "08:45"}

	written := complete(s, "x", 3)
	require.Len(t, written, 1)
	assert.Equal(t, time.Date(2025, time.March, 20, 8, 45, 0, 0, time.UTC), written[0].CompletedDate)
}

func TestCompletionTimestamp_NowWhenNoAppointment(t *testing.T) {
	s := testSite()
	s.ServiceMonths = []int{3}

	written := complete(s, "x", 3)
	require.Len(t, written, 1)
	assert.Equal(t, testNow, written[0].CompletedDate)
}

func TestCompletionTimestamp_ExplicitOverrideWins(t *testing.T) {
	s := testSite()
	s.ServiceMonths = []int{3}
	at := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)

	written := compliance.MarkComplete(s, compliance.CompleteInput{
		Type: compliance.ServiceExtinguisher, Year: 2025, Month: 3, Actor: "x", CompletedAt: at,
	}, testNow)
	require.Len(t, written, 1)
	assert.Equal(t, at, written[0].CompletedDate)
}

// =============================================================================
// CARRY-OVER
// =============================================================================

func TestCarryOver_AssignedTechBackfillsEarlierMonths(t *testing.T) {
	// GIVEN: serviceMonths=[1,2,3], no completions, acting tech is assigned
	// WHEN: month 3 is marked complete in the viewed (current) month
	// THEN: months 1, 2 and 3 of that year are all complete

	s := testSite()
	written := complete(s, "Maria Delgado", 3)

	assert.Len(t, written, 3)
	for _, m := range []int{1, 2, 3} {
		assert.NotNil(t, s.Completion(compliance.ServiceExtinguisher, 2025, m), "month %d", m)
	}
	for _, c := range s.CompletedServices {
		assert.Equal(t, "Maria Delgado", c.CompletedBy)
	}
}

func TestCarryOver_NonAssignedActorCompletesOnlyOneMonth(t *testing.T) {
	s := testSite()
	written := complete(s, "Office Admin", 3)

	assert.Len(t, written, 1)
	assert.Len(t, s.CompletedServices, 1)
	assert.NotNil(t, s.Completion(compliance.ServiceExtinguisher, 2025, 3))
}

func TestCarryOver_FirstNameFallbackMatches(t *testing.T) {
	s := testSite()
	written := complete(s, "maria", 3)
	assert.Len(t, written, 3, "first-name, case-insensitive match must trigger carry-over")
}

func TestCarryOver_NoneSentinelNeverMatches(t *testing.T) {
	s := testSite()
	s.ServiceTech = ""
	written := complete(s, "None", 3)
	assert.Len(t, written, 1, "the None sentinel must never match an actor")
}

func TestCarryOver_SkipsAlreadyCompletedMonths(t *testing.T) {
	// An already completed earlier month is skipped individually, not a
	// blocking error.
	s := testSite()
	complete(s, "Office Admin", 2)
	require.Len(t, s.CompletedServices, 1)

	written := complete(s, "Maria Delgado", 3)
	assert.Len(t, written, 2) // month 3 plus backfilled month 1
	assert.Len(t, s.CompletedServices, 3)
}

func TestCarryOver_NotLatestViewedMonth_NoBackfill(t *testing.T) {
	// Completing month 2 while viewing month 3 (where month 3 is scheduled)
	// is not a catch-up action.
	s := testSite()
	written := compliance.MarkComplete(s, compliance.CompleteInput{
		Type:        compliance.ServiceExtinguisher,
		Year:        2025,
		Month:       2,
		Actor:       "Maria Delgado",
		ViewedMonth: 3,
	}, testNow)

	assert.Len(t, written, 1)
	assert.Nil(t, s.Completion(compliance.ServiceExtinguisher, 2025, 1))
}

// =============================================================================
// SERVICE & SAVE
// =============================================================================

func TestServiceAsset_UpdatesLastServiceYear(t *testing.T) {
	a := &compliance.Asset{ID: "a1", LastServiceYear: "2019"}
	require.NoError(t, compliance.ServiceAsset(a, 2025))
	assert.Equal(t, "2025", a.LastServiceYear)

	err := compliance.ServiceAsset(a, 0)
	assert.ErrorIs(t, err, compliance.ErrInvalidYear)
	assert.Equal(t, "2025", a.LastServiceYear)
}
