package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"finanalyst-api/pkg/market"
)

// ExchangeName is reported in market snapshots.
const ExchangeName = "binance.us"

type ticker24h struct {
	Symbol             string          `json:"symbol"`
	LastPrice          json.RawMessage `json:"lastPrice"`
	PriceChangePercent json.RawMessage `json:"priceChangePercent"`
}

// GetTicker24h fetches the rolling 24h statistics for symbol.
func (c *Client) GetTicker24h(ctx context.Context, symbol string) (*market.Snapshot, error) {
	symbol = strings.ToUpper(symbol)
	query := url.Values{}
	query.Set("symbol", symbol)

	var raw ticker24h
	if err := c.get(ctx, "/api/v3/ticker/24hr", query, &raw); err != nil {
		return nil, err
	}
	snap := &market.Snapshot{Exchange: ExchangeName, Symbol: symbol}
	var err error
	if len(raw.LastPrice) > 0 {
		if snap.CurrentPriceUSD, err = parseDecimal(raw.LastPrice); err != nil {
			return nil, fmt.Errorf("binance: lastPrice: %w", err)
		}
	}
	if len(raw.PriceChangePercent) > 0 {
		if snap.PriceChangePercentage24h, err = parseDecimal(raw.PriceChangePercent); err != nil {
			return nil, fmt.Errorf("binance: priceChangePercent: %w", err)
		}
	}
	return snap, nil
}
