package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// QuoteClient fetches quotes from an external HTTP quote service.
// GET {base}/quote?symbol=SYM answers 200 with {"symbol": ..., "price": ...}
// or 404 when the symbol is unknown.
type QuoteClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewQuoteClient creates a new QuoteClient
func NewQuoteClient(baseURL string, timeout time.Duration) *QuoteClient {
	return &QuoteClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Lookup fetches the current quote for a symbol. An unknown symbol and an
// unreachable quote source are distinct failures: callers must be able to
// tell "no such ticker" apart from "try again later".
func (c *QuoteClient) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrValidation)
	}

	endpoint := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrUnknownSymbol
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: quote API returned status %d", domain.ErrQuoteUnavailable, resp.StatusCode)
	}

	var payload struct {
		Symbol string      `json:"symbol"`
		Price  json.Number `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode quote response: %v", domain.ErrQuoteUnavailable, err)
	}

	price, err := decimal.NewFromString(payload.Price.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price %q for %s", domain.ErrQuoteUnavailable, payload.Price.String(), symbol)
	}

	quoted := strings.ToUpper(strings.TrimSpace(payload.Symbol))
	if quoted == "" {
		quoted = symbol
	}

	return &domain.Quote{Symbol: quoted, Price: price}, nil
}
