package marketpersist

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachestore "finanalyst-api/internal/cache"
	"finanalyst-api/pkg/market"
)

var _ market.Persistence = (*Service)(nil)

// Service mirrors fetched candles and tickers into Postgres and Redis.
type Service struct {
	sqlConn sqlx.SqlConn
	cache   *cachestore.Store
}

// Config enumerates dependencies required to persist market data.
type Config struct {
	SQLConn sqlx.SqlConn
	Cache   *cachestore.Store
}

// NewService wires a market persistence service. Returns nil when neither
// backend is configured.
func NewService(cfg Config) *Service {
	if cfg.SQLConn == nil && cfg.Cache == nil {
		return nil
	}
	return &Service{sqlConn: cfg.SQLConn, cache: cfg.Cache}
}

const upsertCandleStmt = `
INSERT INTO public.market_candles (
    provider, symbol, interval, open_time, open, high, low, close, volume, close_time, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
)
ON CONFLICT (provider, symbol, interval, open_time) DO UPDATE SET
    open = EXCLUDED.open,
    high = EXCLUDED.high,
    low = EXCLUDED.low,
    close = EXCLUDED.close,
    volume = EXCLUDED.volume,
    close_time = EXCLUDED.close_time;`

// RecordCandles upserts a batch of candles in one transaction.
func (s *Service) RecordCandles(ctx context.Context, provider, symbol, interval string, candles []market.Candle) error {
	if s == nil || s.sqlConn == nil || len(candles) == 0 || strings.TrimSpace(symbol) == "" {
		return nil
	}
	symbol = strings.ToUpper(symbol)
	return s.sqlConn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		for _, c := range candles {
			if _, err := session.ExecCtx(ctx, upsertCandleStmt,
				provider, symbol, interval, c.OpenTime,
				c.Open, c.High, c.Low, c.Close, c.Volume, c.CloseTime,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

const upsertTickerStmt = `
INSERT INTO public.market_tickers (
    provider, symbol, exchange, price, change_pct_24h, market_cap, raw, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
)
ON CONFLICT (provider, symbol) DO UPDATE SET
    exchange = EXCLUDED.exchange,
    price = EXCLUDED.price,
    change_pct_24h = EXCLUDED.change_pct_24h,
    market_cap = EXCLUDED.market_cap,
    raw = EXCLUDED.raw,
    updated_at = NOW();`

// RecordTicker persists the latest 24h ticker to Postgres and Redis.
func (s *Service) RecordTicker(ctx context.Context, provider string, snapshot *market.Snapshot) error {
	if s == nil || snapshot == nil || strings.TrimSpace(snapshot.Symbol) == "" {
		return nil
	}
	if s.sqlConn != nil {
		raw, _ := json.Marshal(snapshot)
		marketCap := sql.NullFloat64{}
		if snapshot.MarketCapUSD != nil {
			marketCap = sql.NullFloat64{Float64: *snapshot.MarketCapUSD, Valid: true}
		}
		if _, err := s.sqlConn.ExecCtx(ctx, upsertTickerStmt,
			provider,
			strings.ToUpper(snapshot.Symbol),
			snapshot.Exchange,
			snapshot.CurrentPriceUSD,
			snapshot.PriceChangePercentage24h,
			marketCap,
			string(raw),
		); err != nil {
			return err
		}
	}
	s.cacheTicker(ctx, provider, snapshot)
	return nil
}

func (s *Service) cacheTicker(ctx context.Context, provider string, snapshot *market.Snapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutTicker(ctx, provider, snapshot); err != nil {
		logx.WithContext(ctx).Errorf("marketpersist: cache ticker provider=%s symbol=%s err=%v", provider, snapshot.Symbol, err)
	}
}
