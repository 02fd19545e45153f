package model

import (
	"testing"

	"github.com/alephcore/engine/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDependentModel() *Model {
	return New("shipment",
		Field{Name: "tracking_number", Kind: KindString},
		Field{Name: "carrier", Kind: KindString},
		Field{Name: "carrier_account", Kind: KindString},
	).WithDependencies(DependencyRules{
		"tracking_number": {"carrier"},
		"carrier":         {"carrier_account"},
	})
}

func TestCheckDependenciesSatisfied(t *testing.T) {
	m := newDependentModel()
	_, err := m.ValidateRecord(record.Record{
		"tracking_number": "1Z",
		"carrier":         "ups",
		"carrier_account": "acct-1",
	})
	require.NoError(t, err)
}

func TestCheckDependenciesTransitiveMissing(t *testing.T) {
	m := newDependentModel()
	_, err := m.ValidateRecord(record.Record{"tracking_number": "1Z", "carrier": "ups"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier_account")
}

func TestCheckDependenciesIgnoredWhenTriggerUnset(t *testing.T) {
	m := newDependentModel()
	_, err := m.ValidateRecord(record.Record{})
	require.NoError(t, err)
}

func TestIsSetTreatsZeroValuesAsUnset(t *testing.T) {
	assert.False(t, isSet(map[string]any{"f": ""}, "f"))
	assert.False(t, isSet(map[string]any{"f": false}, "f"))
	assert.False(t, isSet(map[string]any{}, "f"))
	assert.True(t, isSet(map[string]any{"f": "x"}, "f"))
	assert.True(t, isSet(map[string]any{"f": true}, "f"))
}
