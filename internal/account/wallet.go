package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is an in-memory Account, used for practice play and tests.
type Wallet struct {
	mu      sync.Mutex
	userID  int64
	balance decimal.Decimal
	entries []Entry
}

func NewWallet(userID int64, opening decimal.Decimal) *Wallet {
	return &Wallet{userID: userID, balance: opening}
}

func (w *Wallet) Balance(ctx context.Context) (decimal.Decimal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance, nil
}

func (w *Wallet) Debit(ctx context.Context, amount decimal.Decimal, ref string) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit %s: negative amount", amount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.balance = w.balance.Sub(amount)
	w.record(TypeGameFee, decimal.Zero, amount, ref)
	return nil
}

func (w *Wallet) Credit(ctx context.Context, amount decimal.Decimal, ref string) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit %s: negative amount", amount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = w.balance.Add(amount)
	w.record(TypeGameWin, amount, decimal.Zero, ref)
	return nil
}

// Entries returns a copy of the wallet history.
func (w *Wallet) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

func (w *Wallet) record(ttype string, dr, cr decimal.Decimal, ref string) {
	w.entries = append(w.entries, Entry{
		ID:        int64(len(w.entries) + 1),
		UserID:    w.userID,
		TType:     ttype,
		Dr:        dr,
		Cr:        cr,
		TRef:      ref,
		Status:    "completed",
		CreatedAt: time.Now(),
	})
}
