package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis/redistest"

	"finanalyst-api/internal/config"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
	"finanalyst-api/pkg/market"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(redistest.CreateRedis(t), NewTTLSet(config.CacheTTL{Short: 10, Medium: 60, Long: 300}))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "finanalyst:ticker:binance:BTCUSDT", TickerKey("binance", "btcusdt"))
	assert.Equal(t, "finanalyst:indicators:ETHUSDT:1h", SnapshotKey("ethusdt", "1h"))
	assert.Equal(t, "finanalyst:indicators:ETHUSDT", SnapshotKey("ETHUSDT", ""))
	assert.Equal(t, "finanalyst:prediction:SOLUSDT", PredictionKey("SOLUSDT"))
	assert.Equal(t, "finanalyst:a:b", BuildKeyWithSuffix(FormatCacheKey("a"), " b "))
}

func TestTTLSet(t *testing.T) {
	ttl := NewTTLSet(config.CacheTTL{})
	assert.Equal(t, 10*time.Second, TickerTTL(ttl))
	assert.Equal(t, time.Minute, SnapshotTTL(ttl))
	assert.Equal(t, 10*time.Minute, PredictionTTL(ttl))

	disabled := NewTTLSet(config.CacheTTL{Short: -1, Medium: 60, Long: 300})
	assert.Zero(t, TickerTTL(disabled))
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	assert.Nil(t, NewStore(nil, TTLSet{}))
	require.NoError(t, s.PutSnapshot(context.Background(), &analysis.Snapshot{Symbol: "BTCUSDT"}))
	got, err := s.Snapshot(context.Background(), "BTCUSDT", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	capUSD := 1.2e12
	snap := &analysis.Snapshot{
		Symbol:   "BTCUSDT",
		Interval: "1h",
		Indicators: analysis.Indicators{
			RSI: analysis.RSIReading{Value: 55.5, Signal: "Bullish strengthening"},
			SMA: analysis.TrendReport{ShortPeriod: 20, LongPeriod: 50, ShortValue: 101, LongValue: 99, Signal: "Bullish trend"},
		},
		MarketSnapshot: &market.Snapshot{Exchange: "binance.us", Symbol: "BTCUSDT", CurrentPriceUSD: 64000, MarketCapUSD: &capUSD},
	}
	require.NoError(t, s.PutSnapshot(ctx, snap))

	got, err := s.Snapshot(ctx, "btcusdt", "1h")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	missing, err := s.Snapshot(ctx, "BTCUSDT", "4h")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPredictionAndTickerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pred := forecast.Fallback("ETHUSDT")
	require.NoError(t, s.PutPrediction(ctx, pred))
	gotPred, err := s.Prediction(ctx, "ETHUSDT")
	require.NoError(t, err)
	require.NotNil(t, gotPred)
	assert.Equal(t, forecast.Hold, gotPred.Recommendation)
	assert.Equal(t, forecast.FallbackReasoning, gotPred.Reasoning)

	tick := &market.Snapshot{Exchange: "binance.us", Symbol: "ETHUSDT", CurrentPriceUSD: 3100.5, PriceChangePercentage24h: -1.2}
	require.NoError(t, s.PutTicker(ctx, "binance", tick))
	gotTick, err := s.Ticker(ctx, "binance", "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, tick, gotTick)
}
