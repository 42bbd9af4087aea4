package scheduler

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalyst-api/internal/config"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/journal"
	"finanalyst-api/pkg/market"
	"finanalyst-api/pkg/storage"
)

type seriesProvider struct {
	fail map[string]bool
}

func (p seriesProvider) Klines(_ context.Context, symbol, _ string, limit int) ([]market.Candle, error) {
	if p.fail[symbol] {
		return nil, errors.New("exchange unavailable")
	}
	out := make([]market.Candle, limit)
	for i := range out {
		out[i] = market.Candle{OpenTime: int64(i), Close: 100 + float64(i)}
	}
	return out, nil
}

func (seriesProvider) Ticker24h(context.Context, string) (*market.Snapshot, error) {
	return nil, errors.New("no ticker")
}

func newSvc(t *testing.T, provider market.Provider, sched config.SchedulerConf) *svc.ServiceContext {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	builder, err := analysis.NewBuilder(analysis.DefaultConfig())
	require.NoError(t, err)
	return &svc.ServiceContext{
		Config: config.Config{
			Storage:   storage.DefaultConfig(),
			Fetcher:   config.FetcherConf{Source: "binance", Interval: "1h", Limit: 100},
			Scheduler: sched,
		},
		DefaultMarket:     provider,
		DefaultMarketName: "binance",
		Store:             store,
		Builder:           builder,
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(newSvc(t, seriesProvider{}, config.SchedulerConf{Spec: "every tuesday"}), nil)
	assert.Error(t, err)

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestNewAppliesDefaults(t *testing.T) {
	s, err := New(newSvc(t, seriesProvider{}, config.SchedulerConf{}), nil)
	require.NoError(t, err)
	assert.Equal(t, "@hourly", s.cfg.Spec)
	assert.Equal(t, DefaultSymbols, s.cfg.Symbols)
	assert.Equal(t, "1h", s.cfg.Interval)
	assert.Equal(t, 100, s.cfg.Limit)
}

func TestRunOnceAnalysesEachSymbol(t *testing.T) {
	dir := t.TempDir()
	sc := newSvc(t, seriesProvider{fail: map[string]bool{"ETHUSDT": true}}, config.SchedulerConf{
		Spec:    "*/5 * * * *",
		Symbols: []string{"btcusdt", "ETHUSDT"},
		Limit:   60,
	})
	s, err := New(sc, journal.NewWriter(dir))
	require.NoError(t, err)

	rec := s.RunOnce(context.Background())
	require.Len(t, rec.Symbols, 2)
	assert.False(t, rec.Success)
	assert.NotEmpty(t, rec.RunID)
	assert.Same(t, rec, s.LastRun())

	btc := rec.Symbols[0]
	assert.Equal(t, "BTCUSDT", btc.Symbol)
	assert.Equal(t, 60, btc.Candles)
	assert.Empty(t, btc.ErrorMessage)
	assert.NotEmpty(t, btc.IndicatorKey)
	assert.InDelta(t, 100, btc.RSI, 1e-6)

	_, err = sc.Store.Get(context.Background(), sc.Config.Storage.IndicatorBucket(), btc.IndicatorKey)
	require.NoError(t, err)

	eth := rec.Symbols[1]
	assert.Contains(t, eth.ErrorMessage, "exchange unavailable")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunOnceStopsOnCancelledContext(t *testing.T) {
	s, err := New(newSvc(t, seriesProvider{}, config.SchedulerConf{Symbols: []string{"BTCUSDT"}}), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := s.RunOnce(ctx)
	assert.Empty(t, rec.Symbols)
	assert.False(t, rec.Success)
}
