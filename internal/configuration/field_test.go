package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLimits(t *testing.T) {
	var tests = []struct {
		tn       string
		update   map[string]interface{}
		expected LimitsConfig
		wantErr  bool
	}{
		{
			tn:       "empty update",
			update:   map[string]interface{}{},
			expected: DefaultLimits,
		},
		{
			tn:     "numbers",
			update: map[string]interface{}{"targetVoltage": 14.1, "currentLimit": 60},
			expected: LimitsConfig{
				TargetVoltage: 14.1,
				FloatVoltage:  DefaultLimits.FloatVoltage,
				CurrentLimit:  60,
				DerateTemp:    DefaultLimits.DerateTemp,
			},
		},
		{
			tn:     "numeric strings",
			update: map[string]interface{}{"derateTemp": " 75.5 ", "floatVoltage": "13.2"},
			expected: LimitsConfig{
				TargetVoltage: DefaultLimits.TargetVoltage,
				FloatVoltage:  13.2,
				CurrentLimit:  DefaultLimits.CurrentLimit,
				DerateTemp:    75.5,
			},
		},
		{
			tn:       "invalid number",
			update:   map[string]interface{}{"derateTemp": "hot"},
			expected: DefaultLimits,
			wantErr:  true,
		},
		{
			tn:       "unknown key",
			update:   map[string]interface{}{"rpm": 3000},
			expected: DefaultLimits,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.tn, func(t *testing.T) {
			// WHEN
			result, err := MergeLimits(DefaultLimits, tt.update)

			// THEN
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, result)
		})
	}
}
