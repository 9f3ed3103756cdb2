package domain

import "errors"

// Recoverable, user-visible failures. Every one of them leaves state
// untouched: the ledger applies each operation all-or-nothing. Handlers
// discriminate with errors.Is and map to a 400-class response.
var (
	// ErrValidation marks a missing or malformed input field.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownSymbol means the quote source answered but does not know
	// the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrQuoteUnavailable means the quote source could not be consulted at
	// all. It must propagate, never be swallowed.
	ErrQuoteUnavailable = errors.New("quote lookup unavailable")

	// ErrInsufficientFunds means a buy would cost more than the user's cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares means a sell exceeds the user's current holding.
	ErrInsufficientShares = errors.New("insufficient shares")

	ErrDuplicateUsername  = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)
