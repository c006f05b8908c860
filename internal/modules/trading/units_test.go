package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		decimals int
		expected string
	}{
		{"whole tokens six decimals", 50.0, 6, "50000000"},
		{"fractional amount", 1.5, 6, "1500000"},
		{"eighteen decimals", 0.5, 18, "500000000000000000"},
		{"zero amount", 0, 6, "0"},
		{"zero decimals", 42.9, 0, "42"},
		{"sub-unit dust truncates to zero", 0.0000001, 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToBaseUnits_TruncatesTowardZero(t *testing.T) {
	// 1.9999999 at 6 decimals floors to 1999999, never rounds to 2000000
	got, err := ToBaseUnits(1.9999999, 6)
	require.NoError(t, err)
	assert.Equal(t, "1999999", got)
}

func TestToBaseUnits_NegativeAmount(t *testing.T) {
	_, err := ToBaseUnits(-1, 6)
	assert.Error(t, err)
}
