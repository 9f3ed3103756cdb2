package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTradeCost(t *testing.T) {
	buy := &Trade{Symbol: "AAPL", Shares: 4, Price: decimal.RequireFromString("150.25")}
	assert.True(t, buy.Cost().Equal(decimal.RequireFromString("601.00")))

	// A sell row carries negative shares but moves a positive cash amount.
	sell := &Trade{Symbol: "AAPL", Shares: -3, Price: decimal.RequireFromString("150.25")}
	assert.True(t, sell.Cost().Equal(decimal.RequireFromString("450.75")))
}
