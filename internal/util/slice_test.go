package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsString(t *testing.T) {
	values := []string{"alt_voltage", "alt_current"}
	assert.True(t, ContainsString(values, "alt_current"))
	assert.False(t, ContainsString(values, "alt_temp"))
}

func TestSortedKeys(t *testing.T) {
	// GIVEN
	input := map[string]int{
		"Voltage dropping": 1,
		"Amp rising fast":  2,
		"Overcurrent":      3,
	}

	// WHEN
	result := SortedKeys(input)

	// THEN
	assert.Equal(t, []string{"Amp rising fast", "Overcurrent", "Voltage dropping"}, result)
}
