/*
Package factory provides JSON to Go interval-policy conversion.

PURPOSE:
  Converts a JSON interval-policy definition into a compliance.IntervalPolicy.
  The built-in category rules cover the standard cycles; service companies
  with AHJ-specific requirements can override individual categories without
  code changes.

JSON SCHEMA:
  {
    "name": "county-override",
    "extinguishers": {"co2": 5, "clean agent": 6},
    "tanks": {"wet chemical": 12},
    "extinguisher_default": 5,
    "tank_default": 6
  }

  Category keys are matched case-insensitively. Anything not listed falls
  through to the built-in DefaultIntervalPolicy, so a config only needs the
  deviations.

USAGE:
  policy, err := factory.ParseIntervalPolicy(jsonString)
  due := compliance.AssetIsDue(policy, asset, currentYear)

SEE ALSO:
  - compliance/interval.go: built-in rules and the IntervalPolicy contract
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// IntervalPolicyJSON is the JSON representation of interval overrides.
type IntervalPolicyJSON struct {
	Name                string         `json:"name"`
	Extinguishers       map[string]int `json:"extinguishers,omitempty"`
	Tanks               map[string]int `json:"tanks,omitempty"`
	ExtinguisherDefault int            `json:"extinguisher_default,omitempty"`
	TankDefault         int            `json:"tank_default,omitempty"`
}

// =============================================================================
// OVERRIDE POLICY
// =============================================================================

// OverridePolicy layers configured intervals over the built-in rules. Like
// every IntervalPolicy it is total: unmatched categories fall through, never
// error.
type OverridePolicy struct {
	Name string

	extinguishers       map[string]int
	tanks               map[string]int
	extinguisherDefault int
	tankDefault         int

	fallback compliance.DefaultIntervalPolicy
}

func (p *OverridePolicy) IntervalFor(kind compliance.AssetKind, category compliance.Category) int {
	switch kind {
	case compliance.KindLight:
		return compliance.IntervalNone
	case compliance.KindSystemTank:
		if years, ok := p.tanks[category.Normalized()]; ok {
			return years
		}
		if p.tankDefault > 0 {
			return p.tankDefault
		}
	default:
		if years, ok := p.extinguishers[category.Normalized()]; ok {
			return years
		}
		if p.extinguisherDefault > 0 {
			return p.extinguisherDefault
		}
	}
	return p.fallback.IntervalFor(kind, category)
}

// =============================================================================
// PARSING
// =============================================================================

// ParseIntervalPolicy builds an IntervalPolicy from a JSON definition.
func ParseIntervalPolicy(raw string) (*OverridePolicy, error) {
	var cfg IntervalPolicyJSON
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("invalid interval policy JSON: %w", err)
	}
	return NewOverridePolicy(cfg)
}

// NewOverridePolicy validates a parsed config. Negative intervals are
// rejected; zero means "not overridden".
func NewOverridePolicy(cfg IntervalPolicyJSON) (*OverridePolicy, error) {
	p := &OverridePolicy{
		Name:                cfg.Name,
		extinguishers:       make(map[string]int),
		tanks:               make(map[string]int),
		extinguisherDefault: cfg.ExtinguisherDefault,
		tankDefault:         cfg.TankDefault,
	}
	if cfg.ExtinguisherDefault < 0 || cfg.TankDefault < 0 {
		return nil, fmt.Errorf("interval policy %q: negative default interval", cfg.Name)
	}
	for category, years := range cfg.Extinguishers {
		if years < 0 {
			return nil, fmt.Errorf("interval policy %q: negative interval for %q", cfg.Name, category)
		}
		p.extinguishers[normalize(category)] = years
	}
	for category, years := range cfg.Tanks {
		if years < 0 {
			return nil, fmt.Errorf("interval policy %q: negative interval for %q", cfg.Name, category)
		}
		p.tanks[normalize(category)] = years
	}
	return p, nil
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
