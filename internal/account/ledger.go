package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Ledger keeps balances in the balances table: one row per movement,
// balance = SUM(dr) - SUM(cr) over completed rows.
type Ledger struct {
	db Pool
}

// Pool is the part of *pgxpool.Pool the ledger uses.
type Pool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

func NewLedger(db Pool) *Ledger {
	return &Ledger{db: db}
}

// For returns the Account view of one user.
func (l *Ledger) For(userID int64) Account {
	return &ledgerAccount{ledger: l, userID: userID}
}

func (l *Ledger) GetBalanceByUserID(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return balanceOf(ctx, l.db, userID)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func balanceOf(ctx context.Context, q querier, userID int64) (decimal.Decimal, error) {
	var totalDr, totalCr decimal.Decimal

	err := q.QueryRow(ctx, `
        SELECT 
            COALESCE(SUM(dr), 0), 
            COALESCE(SUM(cr), 0)
        FROM balances
        WHERE user_id = $1 AND status = 'completed'
    `, userID).Scan(&totalDr, &totalCr)
	if err != nil {
		return decimal.Zero, err
	}

	return totalDr.Sub(totalCr), nil
}

// post writes one completed entry. For debits the balance is checked in the
// same transaction under a per-user advisory lock.
func (l *Ledger) post(ctx context.Context, userID int64, ttype string, dr, cr decimal.Decimal, ref string) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return fmt.Errorf("lock balance for user %d: %w", userID, err)
	}

	if cr.IsPositive() {
		balance, err := balanceOf(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("read balance for user %d: %w", userID, err)
		}
		if balance.LessThan(cr) {
			return ErrInsufficientFunds
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO balances (user_id, ttype, dr, cr, tref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'completed', now(), now())
	`, userID, ttype, dr, cr, ref)
	if err != nil {
		return fmt.Errorf("insert %s entry for user %d: %w", ttype, userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type ledgerAccount struct {
	ledger *Ledger
	userID int64
}

func (a *ledgerAccount) Balance(ctx context.Context) (decimal.Decimal, error) {
	return a.ledger.GetBalanceByUserID(ctx, a.userID)
}

func (a *ledgerAccount) Debit(ctx context.Context, amount decimal.Decimal, ref string) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit %s: negative amount", amount)
	}
	return a.ledger.post(ctx, a.userID, TypeGameFee, decimal.Zero, amount, ref)
}

func (a *ledgerAccount) Credit(ctx context.Context, amount decimal.Decimal, ref string) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit %s: negative amount", amount)
	}
	return a.ledger.post(ctx, a.userID, TypeGameWin, amount, decimal.Zero, ref)
}
