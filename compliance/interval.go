/*
interval.go - Interval policy: asset/tank category -> recurrence interval

PURPOSE:
  Pure lookup from an asset's category to its required major-service
  recurrence interval in years. An interval of 0 means "no major service via
  this mechanism" (emergency/exit lighting uses the separate battery-due flag
  instead).

RULES:
  Extinguishers:
    ABC and clean-agent class        -> 6 years
    every other portable category    -> 5 years (also the unknown fallback)
  Suppression-system tanks:
    wet-chemical agent               -> 12 years
    every other agent                -> 6 years (also the unknown fallback)
  Lights                             -> 0 (never interval-due)

  There is no error path. Unknown categories take the generic fallback for
  their kind rather than failing.

SEE ALSO:
  - duestate.go: consumes the interval to classify a unit
  - factory/policy.go: JSON-configurable overrides on top of these defaults
*/
package compliance

// IntervalYears for the built-in category rules.
const (
	IntervalNone         = 0
	IntervalStandard     = 5
	IntervalExtended     = 6
	IntervalWetChemTank  = 12
	IntervalStandardTank = 6
)

// IntervalPolicy maps a category to its recurrence interval. Implementations
// must be total: unknown categories return the generic fallback, never an
// error.
type IntervalPolicy interface {
	IntervalFor(kind AssetKind, category Category) int
}

// DefaultIntervalPolicy implements the built-in NFPA-style rules.
type DefaultIntervalPolicy struct{}

// extendedExtinguishers are the 6-year recharge categories. Everything else
// portable is on the 5-year cycle.
var extendedExtinguishers = map[string]bool{
	"abc":         true,
	"clean agent": true,
	"halotron":    true,
	"fe-36":       true,
}

func (DefaultIntervalPolicy) IntervalFor(kind AssetKind, category Category) int {
	switch kind {
	case KindLight:
		return IntervalNone
	case KindSystemTank:
		if category.Normalized() == "wet chemical" {
			return IntervalWetChemTank
		}
		return IntervalStandardTank
	default:
		if extendedExtinguishers[category.Normalized()] {
			return IntervalExtended
		}
		return IntervalStandard
	}
}

// IntervalFor is the package-level lookup using the default policy.
func IntervalFor(kind AssetKind, category Category) int {
	return DefaultIntervalPolicy{}.IntervalFor(kind, category)
}
