package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a price for a ticker symbol at a point in time
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// QuoteService defines the interface for looking up quotes from an external
// source. Lookup returns ErrUnknownSymbol when the symbol does not resolve
// and ErrQuoteUnavailable when the source cannot be reached or answers
// garbage; the two are never conflated.
type QuoteService interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
