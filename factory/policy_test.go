package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
	"github.com/adeelfeb/dmfiresafety-sub000/factory"
)

func TestParseIntervalPolicy_OverridesAndFallthrough(t *testing.T) {
	policy, err := factory.ParseIntervalPolicy(`{
		"name": "county-override",
		"extinguishers": {"CO2": 4, "Water Mist": 3},
		"tanks": {"wet chemical": 10}
	}`)
	require.NoError(t, err)
	assert.Equal(t, "county-override", policy.Name)

	// Overridden categories, matched case-insensitively.
	assert.Equal(t, 4, policy.IntervalFor(compliance.KindExtinguisher, "co2"))
	assert.Equal(t, 3, policy.IntervalFor(compliance.KindExtinguisher, "WATER MIST"))
	assert.Equal(t, 10, policy.IntervalFor(compliance.KindSystemTank, "Wet Chemical"))

	// Everything else falls through to the built-in rules.
	assert.Equal(t, 6, policy.IntervalFor(compliance.KindExtinguisher, "ABC"))
	assert.Equal(t, 5, policy.IntervalFor(compliance.KindExtinguisher, "K"))
	assert.Equal(t, 6, policy.IntervalFor(compliance.KindSystemTank, "Dry Chemical"))
	assert.Equal(t, 0, policy.IntervalFor(compliance.KindLight, "Exit Light"))
}

func TestParseIntervalPolicy_Defaults(t *testing.T) {
	policy, err := factory.ParseIntervalPolicy(`{
		"name": "tight-cycle",
		"extinguisher_default": 4,
		"tank_default": 5
	}`)
	require.NoError(t, err)

	assert.Equal(t, 4, policy.IntervalFor(compliance.KindExtinguisher, "never-heard-of-it"))
	assert.Equal(t, 4, policy.IntervalFor(compliance.KindExtinguisher, "ABC"), "a configured default beats the built-in category rule")
	assert.Equal(t, 5, policy.IntervalFor(compliance.KindSystemTank, "mystery agent"))
}

func TestParseIntervalPolicy_Rejections(t *testing.T) {
	_, err := factory.ParseIntervalPolicy(`not json`)
	assert.Error(t, err)

	_, err = factory.ParseIntervalPolicy(`{"name": "bad", "extinguishers": {"abc": -1}}`)
	assert.Error(t, err)

	_, err = factory.ParseIntervalPolicy(`{"name": "bad", "tank_default": -2}`)
	assert.Error(t, err)
}
