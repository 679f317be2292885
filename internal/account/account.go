package account

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Entry types written for match money movement.
const (
	TypeGameFee = "game-fee"
	TypeGameWin = "game-win"
)

// Account is one player's balance. Debit must reject an amount larger than
// the balance with ErrInsufficientFunds and leave the balance untouched.
type Account interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	Debit(ctx context.Context, amount decimal.Decimal, ref string) error
	Credit(ctx context.Context, amount decimal.Decimal, ref string) error
}

// Entry is one ledger row. Dr adds to the balance and Cr takes from it.
type Entry struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	TType     string          `json:"ttype"`
	Dr        decimal.Decimal `json:"dr"`
	Cr        decimal.Decimal `json:"cr"`
	TRef      string          `json:"tref"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
