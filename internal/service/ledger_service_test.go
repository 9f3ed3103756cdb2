package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

// memoryBank is an in-memory stand-in for the Postgres-backed store. Like
// the real store, it serializes mutating operations (here with a mutex
// instead of a row lock) and applies each one all-or-nothing.
type memoryBank struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*domain.User
	trades []*domain.Trade
}

func newMemoryBank() *memoryBank {
	return &memoryBank{users: make(map[uuid.UUID]*domain.User)}
}

func (b *memoryBank) addUser(cash decimal.Decimal) uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.users[id] = &domain.User{
		ID:       id,
		Username: fmt.Sprintf("user-%s", id),
		Cash:     cash,
	}
	return id
}

func (b *memoryBank) cash(userID uuid.UUID) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.users[userID].Cash
}

func (b *memoryBank) holding(userID uuid.UUID, symbol string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holdingLocked(userID, symbol)
}

func (b *memoryBank) holdingLocked(userID uuid.UUID, symbol string) int64 {
	var sum int64
	for _, t := range b.trades {
		if t.UserID == userID && t.Symbol == symbol {
			sum += t.Shares
		}
	}
	return sum
}

func (b *memoryBank) tradeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.trades)
}

// --- domain.UserRepository ---

func (b *memoryBank) Create(ctx context.Context, user *domain.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	clone := *user
	b.users[user.ID] = &clone
	return nil
}

func (b *memoryBank) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (b *memoryBank) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, user := range b.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// --- domain.TradeRepository ---

func (b *memoryBank) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var trades []*domain.Trade
	for i := len(b.trades) - 1; i >= 0; i-- {
		if b.trades[i].UserID == userID {
			clone := *b.trades[i]
			trades = append(trades, &clone)
		}
	}
	return trades, nil
}

func (b *memoryBank) HoldingsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sums := make(map[string]int64)
	for _, t := range b.trades {
		if t.UserID == userID {
			sums[t.Symbol] += t.Shares
		}
	}
	var holdings []domain.Holding
	for symbol, shares := range sums {
		if shares != 0 {
			holdings = append(holdings, domain.Holding{Symbol: symbol, Shares: shares})
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

// --- domain.LedgerStore ---

func (b *memoryBank) ExecuteBuy(ctx context.Context, userID uuid.UUID, symbol string, shares int64, price decimal.Decimal) (*domain.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	cost := price.Mul(decimal.NewFromInt(shares))
	if cost.GreaterThan(user.Cash) {
		return nil, domain.ErrInsufficientFunds
	}

	user.Cash = user.Cash.Sub(cost)
	trade := &domain.Trade{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    symbol,
		Shares:    shares,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	b.trades = append(b.trades, trade)
	return trade, nil
}

func (b *memoryBank) ExecuteSell(ctx context.Context, userID uuid.UUID, symbol string, shares int64, price decimal.Decimal) (*domain.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	if shares > b.holdingLocked(userID, symbol) {
		return nil, domain.ErrInsufficientShares
	}

	user.Cash = user.Cash.Add(price.Mul(decimal.NewFromInt(shares)))
	trade := &domain.Trade{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    symbol,
		Shares:    -shares,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	b.trades = append(b.trades, trade)
	return trade, nil
}

// --- domain.QuoteService ---

type fakeQuotes struct {
	prices map[string]decimal.Decimal
	outage map[string]bool
}

func (q *fakeQuotes) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	if q.outage[symbol] {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrQuoteUnavailable)
	}
	price, ok := q.prices[symbol]
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}
	return &domain.Quote{Symbol: symbol, Price: price}, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedgerFixture(startingCash string) (*LedgerService, *memoryBank, *fakeQuotes, uuid.UUID) {
	bank := newMemoryBank()
	quotes := &fakeQuotes{
		prices: map[string]decimal.Decimal{
			"AAPL": price("150.00"),
			"MSFT": price("300.00"),
			"NFLX": price("50.00"),
		},
		outage: map[string]bool{},
	}
	userID := bank.addUser(price(startingCash))
	return NewLedgerService(bank, bank, bank, quotes), bank, quotes, userID
}

func TestBuyDebitsCashAndAppendsTrade(t *testing.T) {
	ledger, bank, _, userID := newLedgerFixture("1000.00")

	trade, err := ledger.Buy(context.Background(), userID, "aapl", 4)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", trade.Symbol)
	assert.Equal(t, int64(4), trade.Shares)
	assert.True(t, trade.Price.Equal(price("150.00")))
	assert.True(t, bank.cash(userID).Equal(price("400.00")))
	assert.Equal(t, int64(4), bank.holding(userID, "AAPL"))
}

func TestBuyInsufficientFundsLeavesNoTrace(t *testing.T) {
	// cash 100, price 50, shares 3 -> cost 150 > 100
	ledger, bank, quotes, userID := newLedgerFixture("100.00")
	quotes.prices["XYZ"] = price("50.00")

	_, err := ledger.Buy(context.Background(), userID, "XYZ", 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, bank.cash(userID).Equal(price("100.00")))
	assert.Equal(t, 0, bank.tradeCount())
}

func TestBuyUnknownSymbol(t *testing.T) {
	ledger, bank, _, userID := newLedgerFixture("1000.00")

	_, err := ledger.Buy(context.Background(), userID, "NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
	assert.Equal(t, 0, bank.tradeCount())
}

func TestBuyRejectsNonPositiveShares(t *testing.T) {
	ledger, bank, _, userID := newLedgerFixture("1000.00")

	for _, shares := range []int64{0, -3} {
		_, err := ledger.Buy(context.Background(), userID, "AAPL", shares)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Equal(t, 0, bank.tradeCount())
}

func TestBuyQuoteOutagePropagates(t *testing.T) {
	ledger, bank, quotes, userID := newLedgerFixture("1000.00")
	quotes.outage["AAPL"] = true

	_, err := ledger.Buy(context.Background(), userID, "AAPL", 1)
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)
	assert.Equal(t, 0, bank.tradeCount())
}

func TestSellCreditsCashAndAppendsNegativeTrade(t *testing.T) {
	ledger, bank, _, userID := newLedgerFixture("1000.00")

	_, err := ledger.Buy(context.Background(), userID, "AAPL", 5)
	require.NoError(t, err)

	trade, err := ledger.Sell(context.Background(), userID, "AAPL", 2)
	require.NoError(t, err)

	assert.Equal(t, int64(-2), trade.Shares)
	assert.Equal(t, int64(3), bank.holding(userID, "AAPL"))
	// 1000 - 5*150 + 2*150 = 550
	assert.True(t, bank.cash(userID).Equal(price("550.00")))
}

func TestSellInsufficientSharesLeavesNoTrace(t *testing.T) {
	// holding 5, sell request 6 -> error, cash and trade log unchanged
	ledger, bank, _, userID := newLedgerFixture("1000.00")

	_, err := ledger.Buy(context.Background(), userID, "NFLX", 5)
	require.NoError(t, err)
	cashBefore := bank.cash(userID)

	_, err = ledger.Sell(context.Background(), userID, "NFLX", 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
	assert.True(t, bank.cash(userID).Equal(cashBefore))
	assert.Equal(t, 1, bank.tradeCount())
	assert.Equal(t, int64(5), bank.holding(userID, "NFLX"))
}

func TestSellWithNoHolding(t *testing.T) {
	ledger, _, _, userID := newLedgerFixture("1000.00")

	_, err := ledger.Sell(context.Background(), userID, "AAPL", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
}

func TestCashReconciliationAcrossHistory(t *testing.T) {
	ledger, bank, _, userID := newLedgerFixture("10000.00")
	ctx := context.Background()
	seed := price("10000.00")

	steps := []struct {
		sell   bool
		symbol string
		shares int64
	}{
		{false, "AAPL", 10},
		{false, "MSFT", 5},
		{true, "AAPL", 3},
		{false, "NFLX", 20},
		{true, "MSFT", 5},
		{true, "NFLX", 20},
	}

	net := decimal.Zero // net cash spent so far
	for _, step := range steps {
		var trade *domain.Trade
		var err error
		if step.sell {
			trade, err = ledger.Sell(ctx, userID, step.symbol, step.shares)
		} else {
			trade, err = ledger.Buy(ctx, userID, step.symbol, step.shares)
		}
		require.NoError(t, err)

		net = net.Add(trade.Price.Mul(decimal.NewFromInt(trade.Shares)))

		// Invariant 2: cash always equals seed minus net spend, exactly.
		assert.True(t, bank.cash(userID).Equal(seed.Sub(net)),
			"cash %s != seed-net %s after %v", bank.cash(userID), seed.Sub(net), step)

		// Invariant 1: no holding ever goes negative.
		for _, symbol := range []string{"AAPL", "MSFT", "NFLX"} {
			assert.GreaterOrEqual(t, bank.holding(userID, symbol), int64(0))
		}
	}
}

func TestConcurrentSellsExactlyOneSucceeds(t *testing.T) {
	ledger, bank, _, userID := newLedgerFixture("10000.00")
	ctx := context.Background()

	_, err := ledger.Buy(ctx, userID, "AAPL", 5)
	require.NoError(t, err)
	cashAfterBuy := bank.cash(userID)

	// Each sell of 3 is valid against the starting holding of 5, but both
	// together are not.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Sell(ctx, userID, "AAPL", 3)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientShares)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two sells must fail")
	assert.Equal(t, int64(2), bank.holding(userID, "AAPL"))
	assert.True(t, bank.cash(userID).Equal(cashAfterBuy.Add(price("450.00"))))
}

func TestPortfolioTotalsAndRows(t *testing.T) {
	ledger, _, _, userID := newLedgerFixture("10000.00")
	ctx := context.Background()

	// Interleave trades across symbols; the derived view must not care.
	_, err := ledger.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)
	_, err = ledger.Buy(ctx, userID, "MSFT", 2)
	require.NoError(t, err)
	_, err = ledger.Sell(ctx, userID, "AAPL", 4)
	require.NoError(t, err)

	portfolio, err := ledger.Portfolio(ctx, userID)
	require.NoError(t, err)

	require.Len(t, portfolio.Positions, 2)
	assert.Equal(t, "AAPL", portfolio.Positions[0].Symbol)
	assert.Equal(t, int64(6), portfolio.Positions[0].Shares)
	assert.True(t, portfolio.Positions[0].Value.Equal(price("900.00")))
	assert.Equal(t, "MSFT", portfolio.Positions[1].Symbol)
	assert.Equal(t, int64(2), portfolio.Positions[1].Shares)

	// cash = 10000 - 1500 - 600 + 600 = 8500; total = 8500 + 900 + 600
	assert.True(t, portfolio.Cash.Equal(price("8500.00")))
	assert.True(t, portfolio.Total.Equal(price("10000.00")))
}

func TestPortfolioOmitsClosedPositions(t *testing.T) {
	ledger, _, _, userID := newLedgerFixture("10000.00")
	ctx := context.Background()

	_, err := ledger.Buy(ctx, userID, "AAPL", 5)
	require.NoError(t, err)
	_, err = ledger.Sell(ctx, userID, "AAPL", 5)
	require.NoError(t, err)
	_, err = ledger.Buy(ctx, userID, "MSFT", 1)
	require.NoError(t, err)

	portfolio, err := ledger.Portfolio(ctx, userID)
	require.NoError(t, err)

	require.Len(t, portfolio.Positions, 1)
	assert.Equal(t, "MSFT", portfolio.Positions[0].Symbol)
}

func TestPortfolioFailsWhenHeldSymbolCannotBePriced(t *testing.T) {
	ledger, _, quotes, userID := newLedgerFixture("10000.00")
	ctx := context.Background()

	_, err := ledger.Buy(ctx, userID, "AAPL", 1)
	require.NoError(t, err)
	_, err = ledger.Buy(ctx, userID, "MSFT", 1)
	require.NoError(t, err)

	quotes.outage["MSFT"] = true

	_, err = ledger.Portfolio(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)
	assert.Contains(t, err.Error(), "MSFT")
}

func TestHistoryNewestFirst(t *testing.T) {
	ledger, _, _, userID := newLedgerFixture("10000.00")
	ctx := context.Background()

	_, err := ledger.Buy(ctx, userID, "AAPL", 1)
	require.NoError(t, err)
	_, err = ledger.Buy(ctx, userID, "MSFT", 2)
	require.NoError(t, err)

	trades, err := ledger.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "MSFT", trades[0].Symbol)
	assert.Equal(t, "AAPL", trades[1].Symbol)
}

func TestHeldSymbols(t *testing.T) {
	ledger, _, _, userID := newLedgerFixture("10000.00")
	ctx := context.Background()

	_, err := ledger.Buy(ctx, userID, "AAPL", 2)
	require.NoError(t, err)
	_, err = ledger.Buy(ctx, userID, "MSFT", 1)
	require.NoError(t, err)
	_, err = ledger.Sell(ctx, userID, "MSFT", 1)
	require.NoError(t, err)

	symbols, err := ledger.HeldSymbols(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)
}
