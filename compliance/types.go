/*
Package compliance implements the service lifecycle and compliance tracking
engine for fire-protection assets.

PURPOSE:
  This package contains the rules that decide, for any asset or site, whether
  a recurring major service is due, track completion of monthly service cycles
  with historical snapshots, backfill missed prior periods after a catch-up
  visit, and reconcile computed and manually-entered "equipment out for
  service" records into one de-duplicated, due-aware view.

KEY CONCEPTS IN THIS FILE (types.go):
  - Asset: a single extinguisher or emergency/exit light at a customer site
  - Site: a customer location with recurrence schedules and out-lists
  - ServiceCompletion: an immutable ledger entry for one completed period
  - OutEntry: one manually-maintained out-for-service line item
  - AppData: the opaque bag the persisted store loads and saves

DESIGN PRINCIPLES:
  1. Purity: due-state is always computed from (category, lastServiceYear,
     referenceYear) - never cached on the record, so it cannot drift
  2. Totality: every operation degrades instead of failing - unparseable
     years classify rather than error, duplicate writes are no-ops
  3. Snapshot immutability: ledger entries carry deep copies taken at
     completion time; later edits to live out-lists never alter history

SEE ALSO:
  - interval.go: category -> required recurrence interval
  - duestate.go: due-state classification and the boolean due check
  - ledger.go: completion ledger and carry-over
  - aggregator.go: out-for-service reconciliation
*/
package compliance

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// SERVICE DISCIPLINES
// =============================================================================

// ServiceType identifies which service discipline a schedule, completion, or
// out-list belongs to. A site runs the two disciplines independently.
type ServiceType string

const (
	ServiceExtinguisher ServiceType = "extinguisher"
	ServiceSystem       ServiceType = "system"
)

// =============================================================================
// ASSET CATEGORIES
// =============================================================================

// AssetKind distinguishes portable extinguishers, suppression-system tanks,
// and emergency/exit lighting. Lights have no interval-driven major service.
type AssetKind string

const (
	KindExtinguisher AssetKind = "extinguisher"
	KindSystemTank   AssetKind = "system_tank"
	KindLight        AssetKind = "light"
)

// Category is the asset's type designation as entered by technicians,
// e.g. "ABC", "CO2", "Clean Agent", "Wet Chemical", "Exit Light".
// Matching is case-insensitive throughout the engine.
type Category string

func (c Category) Normalized() string { return strings.ToLower(strings.TrimSpace(string(c))) }

// =============================================================================
// ASSET
// =============================================================================

// Asset is one protection unit registered at a site. LastServiceYear is a
// free-text year string ("2019"); absent or unparseable values are handled by
// the due-state calculator, never rejected here. Assets are never deleted -
// they are archived with their owning site.
type Asset struct {
	ID       string
	SiteID   string
	Kind     AssetKind
	Category Category
	Brand    string
	Size     string // e.g. "5lb", "2.5 gal"

	// Year of the last completed major service, as recorded on the tag.
	LastServiceYear string

	// Lights only: batteries flagged for replacement. Lights never become
	// due through the interval mechanism (interval 0).
	BatteryDue bool
}

// ParseYear converts a recorded year string to an int.
// Returns (0, false) for absent or unparseable values.
func ParseYear(s string) (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

// =============================================================================
// OUT-FOR-SERVICE ENTRIES
// =============================================================================

// OutEntry is a manually-entered out-for-service line item owned by a site.
// Year records the equipment's last-known service year. SupersededKey, when
// set, references the derived key of the auto-synced line this entry replaced
// via the Clear transition (see aggregator.go).
type OutEntry struct {
	ID       string
	Quantity int
	Brand    string
	Size     string
	Type     Category
	Year     string

	SupersededKey string
}

// =============================================================================
// APPOINTMENT
// =============================================================================

// Appointment is a site's optional single next-visit slot. Time is "HH:MM";
// empty means unset. Used only to derive completion timestamps.
type Appointment struct {
	Month int
	Day   int
	Time  string
}

// IsSet reports whether an appointment has been scheduled.
func (a Appointment) IsSet() bool { return a.Month >= 1 && a.Month <= 12 && a.Day >= 1 }

// =============================================================================
// SERVICE COMPLETION - Ledger entry
// =============================================================================

// ServiceCompletion records that one discipline, for one site, was completed
// in month M of year Y. At most one entry exists per (site, type, year,
// month); MarkComplete refuses to insert a duplicate. The snapshot fields are
// independent deep copies taken at completion time.
type ServiceCompletion struct {
	ID            string
	Type          ServiceType
	Year          int
	Month         int
	CompletedDate time.Time
	CompletedBy   string

	NotesSnapshot            string
	ExtinguishersOutSnapshot []OutEntry
	SystemTanksSnapshot      []OutEntry
}

// Matches reports whether this entry is the one for the given tuple.
func (c ServiceCompletion) Matches(t ServiceType, year, month int) bool {
	return c.Type == t && c.Year == year && c.Month == month
}

// =============================================================================
// SITE (CUSTOMER)
// =============================================================================

// TechNone is the sentinel for an unassigned technician. It never matches a
// real actor for carry-over or filtering purposes.
const TechNone = "None"

// Site is a customer location. ServiceMonths and SystemMonths are the two
// independent recurrence sets (months 1-12). CompletedServices is the
// append-only completion ledger. ExtinguishersOut and SystemTanks are the two
// manually-maintained out-lists.
type Site struct {
	ID       string
	Name     string
	Address  string
	Notes    string
	Archived bool

	ServiceMonths []int
	SystemMonths  []int

	ServiceTech string
	SystemTech  string

	Appointment Appointment

	CompletedServices []ServiceCompletion

	ExtinguishersOut []OutEntry
	SystemTanks      []OutEntry
}

// Tech returns the technician assigned to a discipline, TechNone when unset.
func (s *Site) Tech(t ServiceType) string {
	var tech string
	if t == ServiceSystem {
		tech = s.SystemTech
	} else {
		tech = s.ServiceTech
	}
	if strings.TrimSpace(tech) == "" {
		return TechNone
	}
	return tech
}

// Months returns the recurrence set for a discipline.
func (s *Site) Months(t ServiceType) []int {
	if t == ServiceSystem {
		return s.SystemMonths
	}
	return s.ServiceMonths
}

// OutList returns the manually-maintained out-list for a discipline.
func (s *Site) OutList(t ServiceType) []OutEntry {
	if t == ServiceSystem {
		return s.SystemTanks
	}
	return s.ExtinguishersOut
}

// Completion returns the ledger entry for a tuple, or nil.
func (s *Site) Completion(t ServiceType, year, month int) *ServiceCompletion {
	for i := range s.CompletedServices {
		if s.CompletedServices[i].Matches(t, year, month) {
			return &s.CompletedServices[i]
		}
	}
	return nil
}

// =============================================================================
// APP DATA - The opaque bag the persisted store operates on
// =============================================================================

// AppData holds the complete in-memory state: the site and asset collections
// the engine operates on. The store treats it as opaque; the engine never
// awaits a save before allowing further mutation.
type AppData struct {
	Sites  []*Site
	Assets []*Asset
}

// SiteByID returns the site with the given ID, or nil.
func (d *AppData) SiteByID(id string) *Site {
	for _, s := range d.Sites {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// AssetByID returns the asset with the given ID, or nil.
func (d *AppData) AssetByID(id string) *Asset {
	for _, a := range d.Assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// SiteAssets returns all assets owned by a site.
func (d *AppData) SiteAssets(siteID string) []*Asset {
	var out []*Asset
	for _, a := range d.Assets {
		if a.SiteID == siteID {
			out = append(out, a)
		}
	}
	return out
}
