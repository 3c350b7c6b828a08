/*
duestate.go - Due-state classification for major service

PURPOSE:
  Given a last-service year and a recurrence interval, classify a unit's
  state relative to "now" or a caller-selected forecast year. This is the
  single source of due logic; presentation surfaces are thin callers.

TWO FORMS, ONE INTENTIONAL ASYMMETRY:
  Classify (ternary, forecasting):
    unknown input -> StateUnknown, never flagged as due
  IsDue (boolean, "needs pickup right now"):
    unknown input -> TRUE, absence of data is conservatively flagged

  Multiple surfaces rely on each behavior independently. Do not "fix" the
  asymmetry; it must hold exactly.

INVARIANT:
  Due-state is a pure function of (category, lastServiceYear, referenceYear).
  It is never cached or stored, so it cannot drift from the asset record.
*/
package compliance

// DueState is the classification of a unit relative to a forecast year.
type DueState string

const (
	StateUnknown DueState = "unknown" // no interval, or year absent/unparseable
	StateOK      DueState = "ok"      // not due; NextDue carries the display year
	StateTarget  DueState = "target"  // due in the forecast cycle
	StateOverdue DueState = "overdue" // next-due year already passed
)

// Classification annotates the state with the computed next-due year for
// display. NextDue is 0 for StateUnknown.
type Classification struct {
	State   DueState
	NextDue int
}

// Classify returns the forecast classification of a unit.
//
//	nextDue = lastServiceYear + interval
//	nextDue == forecastYear -> Target
//	nextDue <  currentYear  -> Overdue
//	otherwise               -> OK
//
// Interval 0 or an unparseable year classify as Unknown.
func Classify(lastServiceYear string, interval, forecastYear, currentYear int) Classification {
	if interval == IntervalNone {
		return Classification{State: StateUnknown}
	}
	last, ok := ParseYear(lastServiceYear)
	if !ok {
		return Classification{State: StateUnknown}
	}

	nextDue := last + interval
	switch {
	case nextDue == forecastYear:
		return Classification{State: StateTarget, NextDue: nextDue}
	case nextDue < currentYear:
		return Classification{State: StateOverdue, NextDue: nextDue}
	default:
		return Classification{State: StateOK, NextDue: nextDue}
	}
}

// IsDue is the boolean "needs out-of-service pickup right now" check:
// (lastYear + interval) <= currentYear. Unlike Classify, absent or
// unparseable years return TRUE here, and a zero interval returns false
// (lights are never interval-due).
func IsDue(lastServiceYear string, interval, currentYear int) bool {
	if interval == IntervalNone {
		return false
	}
	last, ok := ParseYear(lastServiceYear)
	if !ok {
		return true
	}
	return last+interval <= currentYear
}

// ClassifyAsset is the asset-level convenience wrapper used by the forecast
// report.
func ClassifyAsset(p IntervalPolicy, a *Asset, forecastYear, currentYear int) Classification {
	return Classify(a.LastServiceYear, p.IntervalFor(a.Kind, a.Category), forecastYear, currentYear)
}

// AssetIsDue is the boolean wrapper feeding the out-for-service aggregator.
func AssetIsDue(p IntervalPolicy, a *Asset, currentYear int) bool {
	return IsDue(a.LastServiceYear, p.IntervalFor(a.Kind, a.Category), currentYear)
}
