package market

import "context"

// Persistence hooks allow providers to persist market data to external stores.
type Persistence interface {
	// RecordCandles persists a batch of candles fetched for symbol/interval.
	RecordCandles(ctx context.Context, provider, symbol, interval string, candles []Candle) error
	// RecordTicker persists a single 24h ticker snapshot.
	RecordTicker(ctx context.Context, provider string, snapshot *Snapshot) error
}
