package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// LedgerStoreImpl implements the LedgerStore interface. Every mutating
// operation runs inside a single transaction that first locks the user row
// with SELECT ... FOR UPDATE, so the funds/holdings check and the writes
// that follow cannot interleave with another operation by the same user.
// Cross-user operations touch disjoint rows and need no coordination.
type LedgerStoreImpl struct {
	db *pgxpool.Pool
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(db *pgxpool.Pool) domain.LedgerStore {
	return &LedgerStoreImpl{db: db}
}

// ExecuteBuy debits the cost from the user's cash and appends a positive
// trade, atomically
func (s *LedgerStoreImpl) ExecuteBuy(ctx context.Context, userID uuid.UUID, symbol string, shares int64, price decimal.Decimal) (*domain.Trade, error) {
	trade := &domain.Trade{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    symbol,
		Shares:    shares,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	cost := trade.Cost()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin buy transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cash, err := lockCash(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if cost.GreaterThan(cash) {
		return nil, domain.ErrInsufficientFunds
	}

	if err := applyTrade(ctx, tx, trade, cash.Sub(cost)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit buy: %w", err)
	}

	return trade, nil
}

// ExecuteSell credits the proceeds to the user's cash and appends a negative
// trade, atomically with the holding check
func (s *LedgerStoreImpl) ExecuteSell(ctx context.Context, userID uuid.UUID, symbol string, shares int64, price decimal.Decimal) (*domain.Trade, error) {
	trade := &domain.Trade{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    symbol,
		Shares:    -shares,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	proceeds := trade.Cost()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sell transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the user row before reading the holding. Two concurrent sells
	// by the same user queue on this lock, so the second one sees the
	// first one's trade and fails the check instead of double-spending.
	cash, err := lockCash(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	var holding int64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(shares), 0)
		FROM trades
		WHERE user_id = $1 AND symbol = $2
	`, userID, symbol).Scan(&holding)
	if err != nil {
		return nil, fmt.Errorf("failed to read holding: %w", err)
	}

	if shares > holding {
		return nil, domain.ErrInsufficientShares
	}

	if err := applyTrade(ctx, tx, trade, cash.Add(proceeds)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sell: %w", err)
	}

	return trade, nil
}

// lockCash reads the user's cash balance under a row lock held for the rest
// of the transaction.
func lockCash(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var cashStr string
	err := tx.QueryRow(ctx, `
		SELECT cash::text
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&cashStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, domain.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock user row: %w", err)
	}

	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse cash balance: %w", err)
	}

	return cash, nil
}

func applyTrade(ctx context.Context, tx pgx.Tx, trade *domain.Trade, newCash decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE users
		SET cash = $1, updated_at = NOW()
		WHERE id = $2
	`, newCash.String(), trade.UserID)
	if err != nil {
		return fmt.Errorf("failed to update cash: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trades (id, user_id, symbol, shares, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, trade.ID, trade.UserID, trade.Symbol, trade.Shares, trade.Price.String(), trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}
