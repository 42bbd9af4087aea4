package logic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/agent"
	"finanalyst-api/pkg/market"
	"finanalyst-api/pkg/storage"
)

// FetchResult is the data fetcher reply, also stored as the result file.
type FetchResult struct {
	Symbol         string           `json:"symbol"`
	Source         string           `json:"source"`
	Interval       string           `json:"interval"`
	Count          int              `json:"count"`
	S3Bucket       string           `json:"s3_bucket"`
	S3Key          *string          `json:"s3_key"`
	Sample         *market.Candle   `json:"sample"`
	MarketSnapshot *market.Snapshot `json:"market_snapshot"`
	ResultS3Bucket string           `json:"result_s3_bucket,omitempty"`
	ResultS3Key    string           `json:"result_s3_key,omitempty"`
}

type DataFetcherLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDataFetcherLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DataFetcherLogic {
	return &DataFetcherLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// DataFetcher pulls candles and the 24h ticker for one symbol, optionally
// stores the raw candles, and always stores the aggregated result.
func (l *DataFetcherLogic) DataFetcher(ev *agent.Event) agent.Response {
	params := ev.Params()
	symbol := params.Symbol()
	if symbol == "" {
		l.Infof("data_fetcher: missing symbol, returning 400")
		return agent.RespondError(ev, http.StatusBadRequest, msgFetcherSymbol)
	}
	defaults := l.svcCtx.Config.Fetcher
	interval := params.String("interval", defaults.Interval)
	limit := params.Int("limit", defaults.Limit)
	save := params.Bool("save_to_s3", true)

	result, err := l.Fetch(symbol, interval, limit, save)
	if err != nil {
		l.Errorf("data_fetcher: %s: %v", symbol, err)
		return agent.RespondError(ev, http.StatusInternalServerError, err.Error())
	}
	return agent.Respond(ev, http.StatusOK, result)
}

// Fetch runs the fetch and store steps without the envelope.
func (l *DataFetcherLogic) Fetch(symbol, interval string, limit int, save bool) (*FetchResult, error) {
	provider := l.svcCtx.DefaultMarket
	source := l.svcCtx.Config.Fetcher.Source
	store := l.svcCtx.Store
	bucket := l.svcCtx.Config.Storage.DataBucket

	candles, err := provider.Klines(l.ctx, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	ticker, err := provider.Ticker24h(l.ctx, symbol)
	if err != nil {
		l.Errorf("data_fetcher: ticker %s: %v", symbol, err)
		ticker = nil
	}

	now := nowFn()
	result := &FetchResult{
		Symbol:         symbol,
		Source:         source,
		Interval:       interval,
		Count:          len(candles),
		S3Bucket:       bucket,
		MarketSnapshot: ticker,
	}
	if n := len(candles); n > 0 {
		last := candles[n-1]
		result.Sample = &last
	}

	if save {
		key := storage.RawCandlesKey(source, symbol, now)
		if candles == nil {
			candles = []market.Candle{}
		}
		if err := storage.PutJSON(l.ctx, store, bucket, key, candles); err != nil {
			return nil, fmt.Errorf("save candles: %w", err)
		}
		result.S3Key = &key
		l.Infof("data_fetcher: saved %d candles to s3://%s/%s", len(candles), bucket, key)
	}

	resultKey := storage.FetchResultKey(symbol, interval, now)
	if err := storage.PutJSON(l.ctx, store, bucket, resultKey, result); err != nil {
		return nil, fmt.Errorf("save fetch result: %w", err)
	}
	result.ResultS3Bucket = bucket
	result.ResultS3Key = resultKey
	return result, nil
}
