/*
ledger.go - Completion ledger and the carry-over engine

PURPOSE:
  The ledger is the append-only record of "this discipline, for this
  customer, was completed in month M of year Y". Each entry carries an
  immutable snapshot of the matching discipline's out-list and the site notes
  at completion time.

CRITICAL INVARIANTS:
  1. At most one entry per (site, type, year, month). MarkComplete refuses to
     insert a duplicate - silently, as a no-op, never an error.
  2. Snapshots are independent deep copies. Mutating the live out-lists after
     completion never alters history.
  3. Undo removes the one matching tuple. It never mutates an entry and never
     touches snapshots of other periods.

CARRY-OVER:
  When the acting user is the technician assigned to the discipline (matched
  case-insensitively by full name, first-name fallback) and the month being
  completed is the latest scheduled month in view, every EARLIER scheduled
  month of the same year without a completion is completed too. A technician
  who skipped announcing interim visits stops showing perpetual backlog after
  a single caught-up action. Already-completed earlier months are skipped
  individually, not treated as a blocking error.

TIMESTAMPS:
  When no explicit completion time is supplied, the site's one-off
  appointment date (with noon as the fallback time) is used; otherwise now.
*/
package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MARK COMPLETE / UNDO
// =============================================================================

// CompleteInput describes one mark-complete action.
type CompleteInput struct {
	Type  ServiceType
	Year  int
	Month int

	// Actor is the current user's name, used for attribution and the
	// carry-over technician match.
	Actor string

	// ViewedMonth is the period the user had selected when acting. Carry-over
	// only fires when Month is the latest scheduled month at or before it.
	// Zero means "the month being completed".
	ViewedMonth int

	// CompletedAt overrides the derived timestamp when non-zero.
	CompletedAt time.Time
}

// MarkComplete appends a completion entry for the tuple, snapshotting the
// matching discipline's out-list and the site notes. A duplicate tuple is a
// no-op returning nil. Returns every entry written, carry-over included.
func MarkComplete(s *Site, in CompleteInput, now time.Time) []ServiceCompletion {
	written := appendCompletion(s, in.Type, in.Year, in.Month, in.Actor, completionTime(s, in, now))
	if written == nil {
		return nil
	}
	out := []ServiceCompletion{*written}
	out = append(out, carryOver(s, in, now)...)
	return out
}

// UndoComplete removes the one entry matching the tuple. A missing tuple is
// a no-op. Reports whether an entry was removed.
func UndoComplete(s *Site, t ServiceType, year, month int) bool {
	for i := range s.CompletedServices {
		if s.CompletedServices[i].Matches(t, year, month) {
			s.CompletedServices = append(s.CompletedServices[:i], s.CompletedServices[i+1:]...)
			return true
		}
	}
	return false
}

func appendCompletion(s *Site, t ServiceType, year, month int, actor string, at time.Time) *ServiceCompletion {
	if s.Completion(t, year, month) != nil {
		return nil
	}
	entry := ServiceCompletion{
		ID:            uuid.NewString(),
		Type:          t,
		Year:          year,
		Month:         month,
		CompletedDate: at,
		CompletedBy:   actor,
		NotesSnapshot: s.Notes,
	}
	// Snapshot only the matching discipline's out-list.
	if t == ServiceSystem {
		entry.SystemTanksSnapshot = CloneOutEntries(s.SystemTanks)
	} else {
		entry.ExtinguishersOutSnapshot = CloneOutEntries(s.ExtinguishersOut)
	}
	s.CompletedServices = append(s.CompletedServices, entry)
	return &s.CompletedServices[len(s.CompletedServices)-1]
}

// completionTime derives the ledger timestamp: explicit override first, then
// the site's appointment date at noon (or its own time), then now.
func completionTime(s *Site, in CompleteInput, now time.Time) time.Time {
	if !in.CompletedAt.IsZero() {
		return in.CompletedAt
	}
	if s.Appointment.IsSet() {
		hour, min := 12, 0
		if t, err := time.Parse("15:04", s.Appointment.Time); err == nil {
			hour, min = t.Hour(), t.Minute()
		}
		return time.Date(in.Year, time.Month(s.Appointment.Month), s.Appointment.Day, hour, min, 0, 0, time.UTC)
	}
	return now
}

// =============================================================================
// CARRY-OVER ENGINE
// =============================================================================

// carryOver backfills earlier scheduled-but-unfinished months of the same
// year after the main completion has been written.
func carryOver(s *Site, in CompleteInput, now time.Time) []ServiceCompletion {
	if !ActorMatchesTech(in.Actor, s.Tech(in.Type)) {
		return nil
	}
	viewed := in.ViewedMonth
	if viewed == 0 {
		viewed = in.Month
	}
	if in.Month != latestScheduledAt(s, in.Type, viewed) {
		return nil
	}

	var extra []ServiceCompletion
	for _, m := range s.Months(in.Type) {
		if m >= in.Month {
			continue
		}
		written := appendCompletion(s, in.Type, in.Year, m, in.Actor, completionTime(s, in, now))
		if written != nil {
			extra = append(extra, *written)
		}
	}
	return extra
}

// latestScheduledAt returns the latest recurrence-set month at or before the
// viewed month, 0 when none is scheduled that early.
func latestScheduledAt(s *Site, t ServiceType, viewed int) int {
	latest := 0
	for _, m := range s.Months(t) {
		if m <= viewed && m > latest {
			latest = m
		}
	}
	return latest
}

// ActorMatchesTech matches the acting user against an assigned technician,
// case-insensitively, with a first-name fallback. The TechNone sentinel
// never matches.
func ActorMatchesTech(actor, tech string) bool {
	actor = strings.TrimSpace(strings.ToLower(actor))
	tech = strings.TrimSpace(strings.ToLower(tech))
	if actor == "" || tech == "" || tech == strings.ToLower(TechNone) {
		return false
	}
	if actor == tech {
		return true
	}
	return firstWord(actor) == firstWord(tech)
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// =============================================================================
// SERVICE & SAVE - The explicit per-asset action
// =============================================================================

// ServiceAsset records a completed major service on a single asset, updating
// its last-service year. This is deliberately the ONLY path that changes
// LastServiceYear; the out-list Clear transition never does (see
// aggregator.go).
func ServiceAsset(a *Asset, year int) error {
	if year <= 0 {
		return fmt.Errorf("service year %d: %w", year, ErrInvalidYear)
	}
	a.LastServiceYear = fmt.Sprintf("%d", year)
	return nil
}
