package binance

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/pkg/market"
)

// SetPersistence wires an optional persistence hook into the provider.
func (p *Provider) SetPersistence(persist market.Persistence) {
	p.persistence = persist
}

func (p *Provider) persistCandles(ctx context.Context, symbol, interval string, candles []market.Candle) {
	if p.persistence == nil || len(candles) == 0 {
		return
	}
	if err := p.persistence.RecordCandles(ctx, p.providerName(), symbol, interval, candles); err != nil {
		logx.WithContext(ctx).Errorf("binance: persist candles symbol=%s interval=%s err=%v", symbol, interval, err)
	}
}

func (p *Provider) persistTicker(ctx context.Context, snap *market.Snapshot) {
	if p.persistence == nil || snap == nil {
		return
	}
	if err := p.persistence.RecordTicker(ctx, p.providerName(), snap); err != nil {
		logx.WithContext(ctx).Errorf("binance: persist ticker symbol=%s err=%v", snap.Symbol, err)
	}
}
