package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is an immutable record of shares bought or sold at a fixed price.
// Shares is signed: positive for a buy, negative for a sell. A sell never
// mutates or deletes a prior buy record.
type Trade struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cost returns the absolute cash amount moved by the trade.
func (t *Trade) Cost() decimal.Decimal {
	shares := t.Shares
	if shares < 0 {
		shares = -shares
	}
	return t.Price.Mul(decimal.NewFromInt(shares))
}

// Holding is the derived net share count for a user/symbol pair, computed
// from trade history. It is never stored.
type Holding struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

// Position is one priced row of a portfolio view.
type Position struct {
	Symbol string          `json:"symbol"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// Portfolio is the full portfolio view: priced positions plus cash.
type Portfolio struct {
	Positions []Position      `json:"positions"`
	Cash      decimal.Decimal `json:"cash"`
	Total     decimal.Decimal `json:"total"`
}
