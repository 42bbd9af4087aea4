package market

import (
	"context"
	"time"
)

// Provider exposes exchange-agnostic market data.
type Provider interface {
	// Klines returns up to limit candles for symbol at the given interval,
	// ordered by open time ascending.
	Klines(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	// Ticker24h returns the rolling 24 hour ticker for symbol.
	Ticker24h(ctx context.Context, symbol string) (*Snapshot, error)
}

// Snapshot is the point-in-time market view attached to indicator reports.
type Snapshot struct {
	Exchange                 string   `json:"exchange"`
	Symbol                   string   `json:"symbol"`
	CurrentPriceUSD          float64  `json:"current_price_usd"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	MarketCapUSD             *float64 `json:"market_cap_usd"` // always null for exchange tickers
}

// Candle is a single OHLCV bar. Times are epoch milliseconds.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// OpenAt returns the candle open time as a UTC timestamp.
func (c Candle) OpenAt() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}
