package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/internal/svc"
	"finanalyst-api/internal/types"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
)

// ErrNotCached is returned when the cache holds nothing for the request.
var ErrNotCached = errors.New("no cached entry")

// QueryLogic serves the read-only lookups over the Redis cache.
type QueryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewQueryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *QueryLogic {
	return &QueryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Indicators returns the last cached snapshot for the symbol.
func (l *QueryLogic) Indicators(req *types.IndicatorsRequest) (*analysis.Snapshot, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	interval := req.Interval
	if interval == "" {
		interval = l.svcCtx.Config.Fetcher.Interval
	}
	snap, err := l.svcCtx.Cache.Snapshot(l.ctx, symbol, interval)
	if err != nil {
		l.Errorf("indicators: cache read %s/%s: %v", symbol, interval, err)
		return nil, err
	}
	if snap == nil {
		return nil, ErrNotCached
	}
	return snap, nil
}

// Prediction returns the last cached prediction for the symbol.
func (l *QueryLogic) Prediction(req *types.PredictionRequest) (*forecast.Prediction, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	pred, err := l.svcCtx.Cache.Prediction(l.ctx, symbol)
	if err != nil {
		l.Errorf("predictions: cache read %s: %v", symbol, err)
		return nil, err
	}
	if pred == nil {
		return nil, ErrNotCached
	}
	return pred, nil
}
