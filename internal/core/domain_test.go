package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNewTransaction(t *testing.T) {
	tx, err := NewTransaction(Input{Description: "  Rent  ", Amount: "500.00", Type: In, Mode: UPI}, 1, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tx.ID)
	assert.Equal(t, "Rent", tx.Description)
	assert.Equal(t, "500.00", tx.Amount.StringFixed(2))
	assert.Equal(t, UPI, tx.Mode)
	assert.Equal(t, time.UTC, tx.Date.Location())
}

func TestNewTransactionDefaults(t *testing.T) {
	tx, err := NewTransaction(Input{Amount: "12", Type: In}, 7, at)
	require.NoError(t, err)
	assert.Equal(t, DefaultDescription, tx.Description)
	assert.Equal(t, Cash, tx.Mode)

	tx, err = NewTransaction(Input{Description: "   ", Amount: "3", Type: Out, Mode: Card}, 8, at)
	require.NoError(t, err)
	assert.Equal(t, DefaultDescription, tx.Description)
	assert.Equal(t, Cash, tx.Mode, "expenses are always cash")
}

func TestNewTransactionRejects(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want error
	}{
		{"zero amount", Input{Amount: "0", Type: In}, ErrInvalidAmount},
		{"negative amount", Input{Amount: "-5", Type: In}, ErrInvalidAmount},
		{"missing amount", Input{Type: In}, ErrInvalidAmount},
		{"non numeric", Input{Amount: "abc", Type: Out}, ErrInvalidAmount},
		{"bad type", Input{Amount: "1", Type: "sideways"}, ErrInvalidType},
		{"bad mode", Input{Amount: "1", Type: In, Mode: "Cheque"}, ErrInvalidMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTransaction(tc.in, 1, at)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: 1, Date: at, Description: "x", Amount: decimal.NewFromInt(1), Type: In, Mode: Card}
	require.NoError(t, good.Validate())

	bads := []Transaction{
		{ID: 0, Date: at, Amount: decimal.NewFromInt(1), Type: In, Mode: Cash},
		{ID: 1, Amount: decimal.NewFromInt(1), Type: In, Mode: Cash},
		{ID: 1, Date: at, Amount: decimal.Zero, Type: In, Mode: Cash},
		{ID: 1, Date: at, Amount: decimal.NewFromInt(1), Type: "x", Mode: Cash},
		{ID: 1, Date: at, Amount: decimal.NewFromInt(1), Type: Out, Mode: UPI},
	}
	for i, tx := range bads {
		assert.Error(t, tx.Validate(), "case %d", i)
	}
}

func TestParseTypeAndMode(t *testing.T) {
	typ, err := ParseType("Cash Out")
	require.NoError(t, err)
	assert.Equal(t, Out, typ)

	typ, err = ParseType("IN")
	require.NoError(t, err)
	assert.Equal(t, In, typ)

	_, err = ParseType("")
	assert.ErrorIs(t, err, ErrInvalidType)

	mode, err := ParseMode("upi")
	require.NoError(t, err)
	assert.Equal(t, UPI, mode)

	mode, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Cash, mode)

	_, err = ParseMode("bitcoin")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Cash In", In.Label())
	assert.Equal(t, "Cash Out", Out.Label())
}
