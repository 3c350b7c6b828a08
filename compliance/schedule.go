/*
schedule.go - Recurrence schedule: which months a discipline is active

PURPOSE:
  Manages the per-site month sets for each service discipline and the
  optional one-off appointment. A month stays visible once completed even if
  later removed from the recurrence set, so a completed one-off period
  remains auditable.

TECHNICIAN SEEDING:
  Assigning a technician to a discipline with an empty month set seeds it:
    extinguisher -> the current month
    system       -> a pair exactly six months apart (current and current+6,
                    normalized into 1-12), the twice-yearly convention
  Seeding is a soft suggestion. Manual toggles afterwards are unconstrained;
  a system schedule may end up with any number of months.
*/
package compliance

import "sort"

// =============================================================================
// ACTIVE MONTHS
// =============================================================================

// MonthActive reports whether a discipline is active for (year, month):
// the month is in the recurrence set, OR a completion already exists for the
// tuple.
func MonthActive(s *Site, t ServiceType, year, month int) bool {
	for _, m := range s.Months(t) {
		if m == month {
			return true
		}
	}
	return s.Completion(t, year, month) != nil
}

// ActiveMonths returns the sorted union of the recurrence set and the months
// completed in the given year.
func ActiveMonths(s *Site, t ServiceType, year int) []int {
	seen := make(map[int]bool)
	for _, m := range s.Months(t) {
		seen[m] = true
	}
	for _, c := range s.CompletedServices {
		if c.Type == t && c.Year == year {
			seen[c.Month] = true
		}
	}
	months := make([]int, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// =============================================================================
// MUTATIONS
// =============================================================================

// ToggleMonth adds or removes a month (1-12) from a discipline's recurrence
// set. Out-of-range months are ignored. Toggles are unconstrained; they do
// not touch the ledger.
func ToggleMonth(s *Site, t ServiceType, month int) {
	if month < 1 || month > 12 {
		return
	}
	months := s.Months(t)
	for i, m := range months {
		if m == month {
			setMonths(s, t, append(months[:i:i], months[i+1:]...))
			return
		}
	}
	months = append(months, month)
	sort.Ints(months)
	setMonths(s, t, months)
}

// AssignTechnician sets the discipline's technician and, when the month set
// is empty, seeds it from the current month. An empty name resets to the
// TechNone sentinel.
func AssignTechnician(s *Site, t ServiceType, name string, currentMonth int) {
	if name == "" {
		name = TechNone
	}
	if t == ServiceSystem {
		s.SystemTech = name
	} else {
		s.ServiceTech = name
	}
	if name == TechNone || len(s.Months(t)) > 0 {
		return
	}
	setMonths(s, t, SeedMonths(t, currentMonth))
}

// SeedMonths returns the default month set for a newly assigned discipline:
// {m} for extinguisher service, {m, m+6 wrapped} sorted for system service.
func SeedMonths(t ServiceType, currentMonth int) []int {
	if currentMonth < 1 || currentMonth > 12 {
		currentMonth = 1
	}
	if t != ServiceSystem {
		return []int{currentMonth}
	}
	pair := []int{currentMonth, wrapMonth(currentMonth + 6)}
	sort.Ints(pair)
	return pair
}

func wrapMonth(m int) int {
	for m > 12 {
		m -= 12
	}
	for m < 1 {
		m += 12
	}
	return m
}

func setMonths(s *Site, t ServiceType, months []int) {
	if t == ServiceSystem {
		s.SystemMonths = months
	} else {
		s.ServiceMonths = months
	}
}

// =============================================================================
// APPOINTMENT
// =============================================================================

// SetAppointment records the site's single next-visit slot. A zero month
// clears it.
func SetAppointment(s *Site, month, day int, timeOfDay string) {
	if month < 1 {
		s.Appointment = Appointment{}
		return
	}
	s.Appointment = Appointment{Month: month, Day: day, Time: timeOfDay}
}
