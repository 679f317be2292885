package account

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletDebitCredit(t *testing.T) {
	ctx := context.Background()
	w := NewWallet(1, decimal.RequireFromString("10.00"))

	require.NoError(t, w.Debit(ctx, decimal.RequireFromString("0.50"), "m1"))
	require.NoError(t, w.Credit(ctx, decimal.RequireFromString("2.00"), "m1"))

	bal, err := w.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11.50", bal.StringFixed(2))

	entries := w.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, TypeGameFee, entries[0].TType)
	assert.Equal(t, TypeGameWin, entries[1].TType)
	assert.Equal(t, "m1", entries[1].TRef)
}

func TestWalletRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	w := NewWallet(1, decimal.RequireFromString("0.25"))

	err := w.Debit(ctx, decimal.RequireFromString("0.50"), "m1")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	bal, _ := w.Balance(ctx)
	assert.Equal(t, "0.25", bal.StringFixed(2))
	assert.Empty(t, w.Entries())
}

func TestWalletRejectsNegative(t *testing.T) {
	w := NewWallet(1, decimal.NewFromInt(1))
	assert.Error(t, w.Debit(context.Background(), decimal.NewFromInt(-1), "x"))
	assert.Error(t, w.Credit(context.Background(), decimal.NewFromInt(-1), "x"))
}
