package engine

import (
	"context"
	"testing"
	"time"

	"github.com/avvvet/bingo-match/internal/account"
	"github.com/avvvet/bingo-match/internal/stats"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerOneControllerPerPlayer(t *testing.T) {
	wallets := map[int64]*account.Wallet{
		1: account.NewWallet(1, decimal.NewFromInt(5)),
		2: account.NewWallet(2, decimal.NewFromInt(5)),
	}
	cfg := DefaultConfig()
	cfg.CallInterval = time.Hour
	m := NewManager(cfg, func(id int64) account.Account { return wallets[id] }, stats.NewMemory())
	defer m.Close()

	a := m.Controller(Participant{UserID: 1, Name: "a"})
	assert.Same(t, a, m.Controller(Participant{UserID: 1, Name: "a"}))

	_, ok := m.Lookup(2)
	assert.False(t, ok)
	b := m.Controller(Participant{UserID: 2, Name: "b"})
	assert.NotSame(t, a, b)

	_, err := a.StartMatch(context.Background(), false, decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = m.Controller(Participant{UserID: 1}).StartMatch(context.Background(), false, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrMatchInProgress)

	_, err = b.StartMatch(context.Background(), false, decimal.NewFromInt(1))
	assert.NoError(t, err)

	bal, _ := wallets[1].Balance(context.Background())
	assert.True(t, bal.Equal(decimal.NewFromInt(4)))
}
