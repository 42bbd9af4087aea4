package logic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	analysispersist "finanalyst-api/internal/persistence/analysis"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/agent"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
	"finanalyst-api/pkg/market"
	"finanalyst-api/pkg/market/indicators"
	"finanalyst-api/pkg/storage"
)

// PredictionResult is the prediction tool reply.
type PredictionResult struct {
	Symbol     string               `json:"symbol"`
	Interval   string               `json:"interval"`
	Prediction *forecast.Prediction `json:"prediction"`
	S3Bucket   string               `json:"s3_bucket,omitempty"`
	S3Key      string               `json:"s3_key,omitempty"`
}

// InfoMessage answers payloads that are not agent events.
type InfoMessage struct {
	Message string `json:"message"`
}

type PredictionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPredictionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PredictionLogic {
	return &PredictionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Prediction fetches fresh candles, builds the indicator snapshot and asks
// the forecaster for a stance. Callers must check agent.IsAgentEvent first.
func (l *PredictionLogic) Prediction(ev *agent.Event) agent.Response {
	params := ev.Params()
	symbol := params.Symbol()
	if symbol == "" {
		return agent.RespondError(ev, http.StatusBadRequest, msgPredictorSymbol)
	}
	defaults := l.svcCtx.Config.Fetcher
	interval := params.String("interval", defaults.Interval)
	limit := params.Int("limit", defaults.Limit)
	save := params.Bool("save_to_s3", true)

	if l.svcCtx.Forecaster == nil {
		return agent.RespondError(ev, http.StatusInternalServerError, msgNoForecaster)
	}

	snap, status, err := l.snapshot(symbol, interval, limit)
	if err != nil {
		l.Errorf("prediction: %s: %v", symbol, err)
		return agent.RespondError(ev, status, err.Error())
	}

	res, err := l.svcCtx.Forecaster.Forecast(l.ctx, snap)
	if err != nil {
		l.Errorf("prediction: model call for %s: %v", symbol, err)
		return agent.RespondError(ev, http.StatusBadGateway, fmt.Sprintf("Prediction model call failed: %v", err))
	}

	out := &PredictionResult{Symbol: symbol, Interval: interval, Prediction: res.Prediction}
	if save {
		bucket := l.svcCtx.Config.Storage.PredictionsBucket
		key := storage.PredictionKey(symbol, nowFn())
		if err := storage.PutJSON(l.ctx, l.svcCtx.Store, bucket, key, res.Prediction); err != nil {
			l.Errorf("prediction: save %s: %v", symbol, err)
			return agent.RespondError(ev, http.StatusInternalServerError, err.Error())
		}
		out.S3Bucket, out.S3Key = bucket, key
		l.Infof("prediction: saved to s3://%s/%s", bucket, key)
	}

	l.record(snap, res, out)
	return agent.Respond(ev, http.StatusOK, out)
}

func (l *PredictionLogic) snapshot(symbol, interval string, limit int) (*analysis.Snapshot, int, error) {
	provider := l.svcCtx.DefaultMarket
	candles, err := provider.Klines(l.ctx, symbol, interval, limit)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return nil, http.StatusInternalServerError, fmt.Errorf("No candle data returned for %s.", symbol)
	}
	l.Infof("prediction: fetched %d candles for %s (%s)", len(candles), symbol, interval)

	snap, err := l.svcCtx.Builder.Build(analysis.Input{
		Symbol:   symbol,
		Interval: interval,
		Closes:   market.Closes(candles),
	})
	if err != nil {
		if errors.Is(err, indicators.ErrMissingField) {
			return nil, http.StatusInternalServerError, errors.New(msgMissingClose)
		}
		return nil, http.StatusInternalServerError, err
	}

	ticker, err := provider.Ticker24h(l.ctx, symbol)
	if err != nil {
		l.Errorf("prediction: ticker %s: %v", symbol, err)
	} else {
		snap.MarketSnapshot = ticker
	}
	return snap, 0, nil
}

func (l *PredictionLogic) record(snap *analysis.Snapshot, res *forecast.Result, out *PredictionResult) {
	persist := l.svcCtx.Analyses
	if persist == nil {
		return
	}
	if err := persist.RecordSnapshot(l.ctx, analysispersist.SnapshotRecord{Snapshot: snap}); err != nil {
		l.Errorf("prediction: record snapshot %s: %v", snap.Symbol, err)
	}
	model := ""
	if cfg := l.svcCtx.LLMConfig; cfg != nil {
		model = cfg.DefaultModel
	}
	if m := l.svcCtx.Config.Forecast.Model; m != "" {
		model = m
	}
	if err := persist.RecordPrediction(l.ctx, analysispersist.PredictionRecord{
		Prediction:   res.Prediction,
		Interval:     out.Interval,
		Model:        model,
		PromptDigest: res.Digest,
		Parsed:       res.Parsed,
		Bucket:       out.S3Bucket,
		Key:          out.S3Key,
	}); err != nil {
		l.Errorf("prediction: record prediction %s: %v", snap.Symbol, err)
	}
}
