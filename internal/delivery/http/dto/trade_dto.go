package dto

import (
	"time"

	"papertrade/internal/domain"
)

// TradeRequest represents a buy or sell request payload
type TradeRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Shares int64  `json:"shares" validate:"required,gt=0"`
}

// TradeOutput represents one executed trade in API responses
type TradeOutput struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Shares     int64     `json:"shares"`
	Price      string    `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
}

// QuoteOutput represents a quote in API responses
type QuoteOutput struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// PositionOutput represents one priced portfolio row
type PositionOutput struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
	Price  string `json:"price"`
	Value  string `json:"value"`
}

// PortfolioOutput represents the full portfolio view
type PortfolioOutput struct {
	Positions []PositionOutput `json:"positions"`
	Cash      string           `json:"cash"`
	Total     string           `json:"total"`
}

// NewTradeOutput converts a domain trade for API output
func NewTradeOutput(trade *domain.Trade) *TradeOutput {
	return &TradeOutput{
		ID:         trade.ID.String(),
		Symbol:     trade.Symbol,
		Shares:     trade.Shares,
		Price:      trade.Price.StringFixed(2),
		ExecutedAt: trade.CreatedAt,
	}
}

// NewQuoteOutput converts a domain quote for API output
func NewQuoteOutput(quote *domain.Quote) *QuoteOutput {
	return &QuoteOutput{
		Symbol: quote.Symbol,
		Price:  quote.Price.StringFixed(2),
	}
}

// NewPortfolioOutput converts a domain portfolio for API output
func NewPortfolioOutput(p *domain.Portfolio) *PortfolioOutput {
	out := &PortfolioOutput{
		Positions: make([]PositionOutput, 0, len(p.Positions)),
		Cash:      p.Cash.StringFixed(2),
		Total:     p.Total.StringFixed(2),
	}
	for _, pos := range p.Positions {
		out.Positions = append(out.Positions, PositionOutput{
			Symbol: pos.Symbol,
			Shares: pos.Shares,
			Price:  pos.Price.StringFixed(2),
			Value:  pos.Value.StringFixed(2),
		})
	}
	return out
}
