package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user. Returns ErrDuplicateUsername when the
	// username is already taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// TradeRepository defines the read side of the trade log
type TradeRepository interface {
	// ListByUser retrieves all trades for a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Trade, error)

	// HoldingsByUser derives the net share count per symbol from the trade
	// log, omitting symbols whose net holding is zero
	HoldingsByUser(ctx context.Context, userID uuid.UUID) ([]Holding, error)
}

// LedgerStore executes the mutating ledger operations. Each call is a single
// atomic unit: the funds or holdings check, the cash update, and the trade
// append either all happen or none do. Concurrent calls for the same user
// serialize against each other.
type LedgerStore interface {
	// ExecuteBuy debits shares*price from the user's cash and appends a
	// positive trade. Returns ErrInsufficientFunds when the cost exceeds
	// the cash balance observed inside the transaction.
	ExecuteBuy(ctx context.Context, userID uuid.UUID, symbol string, shares int64, price decimal.Decimal) (*Trade, error)

	// ExecuteSell credits shares*price to the user's cash and appends a
	// negative trade. Returns ErrInsufficientShares when shares exceed the
	// holding observed inside the transaction.
	ExecuteSell(ctx context.Context, userID uuid.UUID, symbol string, shares int64, price decimal.Decimal) (*Trade, error)
}

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	// Create persists a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token. Returns ErrSessionNotFound when
	// the token is unknown.
	Get(ctx context.Context, token uuid.UUID) (*Session, error)

	// Delete removes a session by token. Deleting an unknown token is not
	// an error.
	Delete(ctx context.Context, token uuid.UUID) error

	// DeleteExpired removes all sessions expired at the given time and
	// reports how many were removed
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
