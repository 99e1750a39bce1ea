package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name         string
		amount       decimal.Decimal
		decimalPlace int
		expected     decimal.Decimal
		expectError  bool
	}{
		{
			name:         "half up at two places",
			amount:       decimal.RequireFromString("10.005"),
			decimalPlace: 2,
			expected:     decimal.RequireFromString("10.01"),
		},
		{
			name:         "rounds down below half",
			amount:       decimal.RequireFromString("10.004"),
			decimalPlace: 2,
			expected:     decimal.RequireFromString("10.00"),
		},
		{
			name:         "zero decimal place currency",
			amount:       decimal.RequireFromString("1050.5"),
			decimalPlace: 0,
			expected:     decimal.RequireFromString("1051"),
		},
		{
			name:         "already exact",
			amount:       decimal.RequireFromString("850.00"),
			decimalPlace: 2,
			expected:     decimal.RequireFromString("850.00"),
		},
		{
			name:         "negative decimal place rejected",
			amount:       decimal.RequireFromString("10"),
			decimalPlace: -1,
			expectError:  true,
		},
		{
			name:         "decimal place above supported range rejected",
			amount:       decimal.RequireFromString("10"),
			decimalPlace: 9,
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Round(tt.amount, tt.decimalPlace)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, result.Equal(tt.expected),
				"expected %s, got %s", tt.expected, result)
		})
	}
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("1050.75")

	units, err := ToMinorUnits(amount, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(105075), units)

	back, err := FromMinorUnits(units, 2)
	assert.NoError(t, err)
	assert.True(t, back.Equal(amount))
}

func TestToMinorUnitsRoundsFirst(t *testing.T) {
	units, err := ToMinorUnits(decimal.RequireFromString("10.005"), 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(1001), units)
}

func TestMinAndClampZero(t *testing.T) {
	a := decimal.NewFromInt(200)
	b := decimal.NewFromInt(50)

	assert.True(t, Min(a, b).Equal(b))
	assert.True(t, Min(b, a).Equal(b))

	assert.True(t, ClampZero(decimal.NewFromInt(-5)).Equal(decimal.Zero))
	assert.True(t, ClampZero(a).Equal(a))
}
