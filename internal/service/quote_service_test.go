package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

func TestQuoteLookupFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol": "AAPL", "price": "189.50"}`))
	}))
	defer srv.Close()

	client := NewQuoteClient(srv.URL, 2*time.Second)
	quote, err := client.Lookup(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.Price.Equal(price("189.50")))
}

func TestQuoteLookupNumericPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol": "MSFT", "price": 412.3}`))
	}))
	defer srv.Close()

	client := NewQuoteClient(srv.URL, 2*time.Second)
	quote, err := client.Lookup(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(price("412.3")))
}

func TestQuoteLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewQuoteClient(srv.URL, 2*time.Second)
	_, err := client.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}

func TestQuoteLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewQuoteClient(srv.URL, 2*time.Second)
	_, err := client.Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)
}

func TestQuoteLookupMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewQuoteClient(srv.URL, 2*time.Second)
	_, err := client.Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)
}

func TestQuoteLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before use

	client := NewQuoteClient(srv.URL, time.Second)
	_, err := client.Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)
}

func TestQuoteLookupEmptySymbol(t *testing.T) {
	client := NewQuoteClient("http://localhost:0", time.Second)
	_, err := client.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
