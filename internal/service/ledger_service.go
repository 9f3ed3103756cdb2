package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// LedgerService enforces the invariant-preserving mutations to cash and
// trade history. Holdings per symbol never go negative, cash always equals
// seed cash minus net cash spent across all trades, and a trade's price is
// the quote price at execution time.
type LedgerService struct {
	store     domain.LedgerStore
	userRepo  domain.UserRepository
	tradeRepo domain.TradeRepository
	quotes    domain.QuoteService
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(store domain.LedgerStore, userRepo domain.UserRepository, tradeRepo domain.TradeRepository, quotes domain.QuoteService) *LedgerService {
	return &LedgerService{
		store:     store,
		userRepo:  userRepo,
		tradeRepo: tradeRepo,
		quotes:    quotes,
	}
}

// Buy purchases shares at the current quote price. Fails with
// ErrUnknownSymbol when the symbol does not resolve and ErrInsufficientFunds
// when the cost exceeds the user's cash; neither leaves any state change.
func (s *LedgerService) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Trade, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if shares <= 0 {
		return nil, fmt.Errorf("%w: shares must be a positive integer", domain.ErrValidation)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	trade, err := s.store.ExecuteBuy(ctx, userID, quote.Symbol, shares, quote.Price)
	if err != nil {
		return nil, err
	}

	log.Printf("[OK] Trade executed: user=%s BUY %d %s @ %s", userID, shares, quote.Symbol, quote.Price)
	return trade, nil
}

// Sell sells shares at the current quote price. Fails with
// ErrInsufficientShares when the request exceeds the holding derived from
// the trade log; no state changes on failure.
func (s *LedgerService) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Trade, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if shares <= 0 {
		return nil, fmt.Errorf("%w: shares must be a positive integer", domain.ErrValidation)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	trade, err := s.store.ExecuteSell(ctx, userID, quote.Symbol, shares, quote.Price)
	if err != nil {
		return nil, err
	}

	log.Printf("[OK] Trade executed: user=%s SELL %d %s @ %s", userID, shares, quote.Symbol, quote.Price)
	return trade, nil
}

// Portfolio prices every nonzero holding at its current quote and returns
// the rows plus total = cash + sum of position values. A quote failure for
// any held symbol fails the whole view: a total that silently omits a
// position would be wrong, and there is no last-known price to fall back to.
func (s *LedgerService) Portfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.tradeRepo.HoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{
		Cash:  user.Cash,
		Total: user.Cash,
	}

	for _, h := range holdings {
		quote, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("pricing held symbol %s: %w", h.Symbol, err)
		}

		value := quote.Price.Mul(decimal.NewFromInt(h.Shares))
		portfolio.Positions = append(portfolio.Positions, domain.Position{
			Symbol: h.Symbol,
			Shares: h.Shares,
			Price:  quote.Price,
			Value:  value,
		})
		portfolio.Total = portfolio.Total.Add(value)
	}

	return portfolio, nil
}

// History returns all of the user's trades, newest first
func (s *LedgerService) History(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return s.tradeRepo.ListByUser(ctx, userID)
}

// HeldSymbols returns the symbols the user currently holds shares of
func (s *LedgerService) HeldSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	holdings, err := s.tradeRepo.HoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if h.Shares > 0 {
			symbols = append(symbols, h.Symbol)
		}
	}
	return symbols, nil
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol is required", domain.ErrValidation)
	}
	return symbol, nil
}
