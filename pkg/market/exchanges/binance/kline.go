package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"finanalyst-api/pkg/market"
)

// MaxKlinesLimit is the largest page the klines endpoint serves.
const MaxKlinesLimit = 1000

// GetKlines fetches up to limit candles for symbol, oldest first.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("binance: limit must be positive")
	}
	if limit > MaxKlinesLimit {
		limit = MaxKlinesLimit
	}
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	query.Set("interval", interval)
	query.Set("limit", strconv.Itoa(limit))

	var rows [][]json.RawMessage
	if err := c.get(ctx, "/api/v3/klines", query, &rows); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows))
	for i, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("binance: kline %d: %w", i, err)
		}
		candles = append(candles, candle)
	}
	market.SortCandles(candles)
	return candles, nil
}

// parseKline decodes one kline row:
// [openTime, open, high, low, close, volume, closeTime, ...].
func parseKline(row []json.RawMessage) (market.Candle, error) {
	if len(row) < 7 {
		return market.Candle{}, fmt.Errorf("expected at least 7 fields, got %d", len(row))
	}
	var candle market.Candle
	if err := json.Unmarshal(row[0], &candle.OpenTime); err != nil {
		return candle, fmt.Errorf("open_time: %w", err)
	}
	if err := json.Unmarshal(row[6], &candle.CloseTime); err != nil {
		return candle, fmt.Errorf("close_time: %w", err)
	}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &candle.Open},
		{"high", &candle.High},
		{"low", &candle.Low},
		{"close", &candle.Close},
		{"volume", &candle.Volume},
	}
	for i, f := range fields {
		v, err := parseDecimal(row[i+1])
		if err != nil {
			return candle, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return candle, nil
}

// parseDecimal accepts both quoted decimals ("42.1") and bare numbers.
func parseDecimal(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}
