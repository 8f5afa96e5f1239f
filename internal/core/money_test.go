package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"500.00", "500", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if assert.NoError(t, err, tc.in) {
				assert.True(t, decimal.RequireFromString(tc.out).Equal(got), "%q: got %s", tc.in, got)
			}
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}

func TestParseAmountKeepsScale(t *testing.T) {
	got, err := ParseAmount("500.50")
	assert.NoError(t, err)
	assert.Equal(t, "500.5", got.String())
	assert.Equal(t, int32(-2), got.Exponent())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₹500.00", FormatMoney("₹", decimal.NewFromInt(500)))
	assert.Equal(t, "₹-200.50", FormatMoney("₹", decimal.RequireFromString("-200.5")))
	assert.Equal(t, "€0.13", FormatMoney("€", decimal.RequireFromString("0.125")))
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "+500.00", FormatSigned(In, decimal.NewFromInt(500)))
	assert.Equal(t, "-200.00", FormatSigned(Out, decimal.NewFromInt(200)))
}
