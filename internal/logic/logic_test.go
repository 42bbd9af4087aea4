package logic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalyst-api/internal/config"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/agent"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
	"finanalyst-api/pkg/llm"
	"finanalyst-api/pkg/market"
	"finanalyst-api/pkg/market/indicators"
	"finanalyst-api/pkg/storage"
)

var fixedNow = time.Date(2025, 11, 20, 8, 30, 0, 0, time.UTC)

type fakeProvider struct {
	candles   []market.Candle
	klinesErr error
	ticker    *market.Snapshot
	tickerErr error
	calls     []string
}

func (f *fakeProvider) Klines(_ context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	f.calls = append(f.calls, symbol+"/"+interval+"/"+strconv.Itoa(limit))
	return f.candles, f.klinesErr
}

func (f *fakeProvider) Ticker24h(context.Context, string) (*market.Snapshot, error) {
	return f.ticker, f.tickerErr
}

type fakeLLM struct {
	reply string
	err   error
	last  string
}

func (f *fakeLLM) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.last = req.Messages[0].Content
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Choices: []llm.Choice{{Message: llm.Message{Content: f.reply}}}}, nil
}
func (f *fakeLLM) ChatStructured(context.Context, *llm.ChatRequest, any) error { return nil }
func (f *fakeLLM) GetConfig() *llm.Config { return &llm.Config{} }
func (f *fakeLLM) Close() error { return nil }

// ramp returns n hourly candles closing at start, start+1, ...
func ramp(n int, start float64) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		c := start + float64(i)
		out[i] = market.Candle{
			OpenTime:  int64(i) * 3_600_000,
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    10,
			CloseTime: int64(i+1)*3_600_000 - 1,
		}
	}
	return out
}

func newTestSvc(t *testing.T, provider market.Provider, client llm.LLMClient) *svc.ServiceContext {
	t.Helper()
	orig := nowFn
	nowFn = func() time.Time { return fixedNow }
	t.Cleanup(func() { nowFn = orig })

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	builder, err := analysis.NewBuilder(analysis.DefaultConfig())
	require.NoError(t, err)

	sc := &svc.ServiceContext{
		Config: config.Config{
			Storage: storage.DefaultConfig(),
			Fetcher: config.FetcherConf{Source: "binance", Interval: "1h", Limit: 100},
		},
		DefaultMarket:     provider,
		DefaultMarketName: "binance",
		Store:             store,
		Builder:           builder,
	}
	if client != nil {
		f, err := forecast.New(forecast.DefaultConfig(), client)
		require.NoError(t, err)
		sc.Forecaster = f
	}
	return sc
}

func agentEvent(t *testing.T, path string, props ...agent.Property) *agent.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"messageVersion": "1.0",
		"actionGroup":    "finanalyst",
		"apiPath":        path,
		"httpMethod":     "POST",
		"requestBody": map[string]any{
			"content": map[string]any{
				"application/json": map[string]any{"properties": props},
			},
		},
	})
	require.NoError(t, err)
	ev, err := agent.Decode(raw)
	require.NoError(t, err)
	return ev
}

func prop(name, typ string, value any) agent.Property {
	return agent.Property{Name: name, Type: typ, Value: value}
}

func errorText(t *testing.T, resp agent.Response) string {
	t.Helper()
	body, ok := resp.Payload().(agent.ErrorBody)
	require.True(t, ok, "payload is %T", resp.Payload())
	return body.Error
}

func TestDataFetcherMissingSymbol(t *testing.T) {
	sc := newTestSvc(t, &fakeProvider{}, nil)
	resp := NewDataFetcherLogic(context.Background(), sc).DataFetcher(agentEvent(t, "/data_fetcher"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	assert.Equal(t, msgFetcherSymbol, errorText(t, resp))
	assert.Equal(t, "/data_fetcher", resp.Response.APIPath)
}

func TestDataFetcherSavesCandlesAndResult(t *testing.T) {
	provider := &fakeProvider{
		candles: ramp(3, 100),
		ticker:  &market.Snapshot{Exchange: "binance.us", Symbol: "BTCUSDT", CurrentPriceUSD: 102},
	}
	sc := newTestSvc(t, provider, nil)
	ev := agentEvent(t, "/data_fetcher", prop("symbol", "string", "btcusdt"), prop("limit", "integer", "3"))

	resp := NewDataFetcherLogic(context.Background(), sc).DataFetcher(ev)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, []string{"BTCUSDT/1h/3"}, provider.calls)

	res := resp.Payload().(*FetchResult)
	assert.Equal(t, "BTCUSDT", res.Symbol)
	assert.Equal(t, "binance", res.Source)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "finanalyst-storage", res.S3Bucket)
	require.NotNil(t, res.S3Key)
	assert.Equal(t, "raw/binance/BTCUSDT/2025-11-20/BTCUSDT_binance_20251120T083000Z.json", *res.S3Key)
	assert.Equal(t, 102.0, res.Sample.Close)
	assert.Equal(t, "data_fetcher_results/BTCUSDT/2025-11-20/BTCUSDT_1h_20251120T083000Z_data_fetcher.json", res.ResultS3Key)

	saved, err := storage.LoadCandles(context.Background(), sc.Store, res.S3Bucket, *res.S3Key)
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	raw, err := sc.Store.Get(context.Background(), res.ResultS3Bucket, res.ResultS3Key)
	require.NoError(t, err)
	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.NotContains(t, stored, "result_s3_key")
	assert.Equal(t, "binance.us", stored["market_snapshot"].(map[string]any)["exchange"])
}

func TestDataFetcherNoSaveAndTickerFailure(t *testing.T) {
	provider := &fakeProvider{candles: ramp(2, 10), tickerErr: errors.New("ticker down")}
	sc := newTestSvc(t, provider, nil)
	ev := agentEvent(t, "/data_fetcher", prop("symbol", "string", "ETHUSDT"), prop("save_to_s3", "boolean", "false"))

	resp := NewDataFetcherLogic(context.Background(), sc).DataFetcher(ev)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	res := resp.Payload().(*FetchResult)
	assert.Nil(t, res.S3Key)
	assert.Nil(t, res.MarketSnapshot)
	assert.NotEmpty(t, res.ResultS3Key)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"s3_key":null`)
	assert.Contains(t, string(data), `"market_snapshot":null`)
}

func TestDataFetcherKlinesError(t *testing.T) {
	sc := newTestSvc(t, &fakeProvider{klinesErr: errors.New("boom")}, nil)
	resp := NewDataFetcherLogic(context.Background(), sc).DataFetcher(agentEvent(t, "/data_fetcher", prop("symbol", "string", "BTCUSDT")))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Contains(t, errorText(t, resp), "boom")
}

func TestTechnicalAnalysisValidation(t *testing.T) {
	sc := newTestSvc(t, &fakeProvider{}, nil)
	l := NewTechnicalAnalysisLogic(context.Background(), sc)

	resp := l.TechnicalAnalysis(agentEvent(t, "/technical_analysis", prop("s3_key", "string", "raw/x.json")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	assert.Equal(t, msgAnalyzerSymbol, errorText(t, resp))

	resp = l.TechnicalAnalysis(agentEvent(t, "/technical_analysis", prop("symbol", "string", "BTCUSDT")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	assert.Equal(t, msgAnalyzerKey, errorText(t, resp))
}

func TestTechnicalAnalysisFromStoredCandles(t *testing.T) {
	sc := newTestSvc(t, &fakeProvider{}, nil)
	ctx := context.Background()
	bucket := sc.Config.Storage.DataBucket
	rawKey := "raw/binance/BTCUSDT/2025-11-20/BTCUSDT_binance_20251120T083000Z.json"
	require.NoError(t, storage.PutJSON(ctx, sc.Store, bucket, rawKey, ramp(60, 100)))
	pointer := "data_fetcher_results/BTCUSDT/pointer.json"
	require.NoError(t, storage.PutJSON(ctx, sc.Store, bucket, pointer, map[string]string{"s3_key": rawKey}))

	ev := agentEvent(t, "/technical_analysis", prop("symbol", "string", "BTCUSDT"), prop("s3_key", "string", pointer))
	resp := NewTechnicalAnalysisLogic(ctx, sc).TechnicalAnalysis(ev)
	require.Equal(t, http.StatusOK, resp.StatusCode(), "%+v", resp.Payload())

	res := resp.Payload().(*AnalysisResult)
	assert.Equal(t, "indicators/BTCUSDT/2025-11-20/pointer_indicators.json", res.IndicatorFileKey)
	assert.Equal(t, bucket, res.IndicatorFileBucket)
	assert.InDelta(t, 100, res.Indicators.RSI.Value, 1e-6)
	assert.Equal(t, indicators.SignalOverbought, res.Indicators.RSI.Signal)
	assert.InDelta(t, 149.5, res.Indicators.SMA.ShortValue, 1e-9)
	assert.InDelta(t, 134.5, res.Indicators.SMA.LongValue, 1e-9)
	assert.Equal(t, indicators.SignalTrendBullish, res.Indicators.SMA.Signal)

	raw, err := sc.Store.Get(ctx, res.IndicatorFileBucket, res.IndicatorFileKey)
	require.NoError(t, err)
	var file IndicatorFile
	require.NoError(t, json.Unmarshal(raw, &file))
	assert.Equal(t, pointer, file.SourceFileKey)
	assert.Equal(t, bucket, file.SourceFileBucket)
	assert.Contains(t, string(raw), "\n  \"symbol\"")
}

func TestTechnicalAnalysisDataErrors(t *testing.T) {
	sc := newTestSvc(t, &fakeProvider{}, nil)
	ctx := context.Background()
	bucket := sc.Config.Storage.DataBucket
	require.NoError(t, sc.Store.Put(ctx, bucket, "short.json", mustJSON(t, ramp(10, 1)), storage.ContentTypeJSON))
	require.NoError(t, sc.Store.Put(ctx, bucket, "noclose.json", []byte(`[{"open_time":1,"open":1}]`), storage.ContentTypeJSON))

	l := NewTechnicalAnalysisLogic(ctx, sc)
	cases := map[string]int{
		"missing.json": http.StatusNotFound,
		"short.json":   http.StatusUnprocessableEntity,
		"noclose.json": http.StatusUnprocessableEntity,
	}
	for key, want := range cases {
		resp := l.TechnicalAnalysis(agentEvent(t, "/technical_analysis", prop("symbol", "string", "BTCUSDT"), prop("s3_key", "string", key)))
		assert.Equal(t, want, resp.StatusCode(), key)
	}
	resp := l.TechnicalAnalysis(agentEvent(t, "/technical_analysis", prop("symbol", "string", "BTCUSDT"), prop("s3_key", "string", "noclose.json")))
	assert.Equal(t, msgMissingClose, errorText(t, resp))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

const modelReply = `{"symbol":"BTCUSDT","recommendation":"BUY","reasoning":"trend up","forecasts":{"1_week":{"direction":"UP","expected_change_percent":"0% to +5%","confidence":60}},"risks":["volatility"]}`

func TestPredictionEndToEnd(t *testing.T) {
	provider := &fakeProvider{
		candles: ramp(100, 100),
		ticker:  &market.Snapshot{Exchange: "binance.us", Symbol: "BTCUSDT", CurrentPriceUSD: 199.5},
	}
	client := &fakeLLM{reply: modelReply}
	sc := newTestSvc(t, provider, client)
	ev := agentEvent(t, "/prediction", prop("symbol", "string", "btcusdt"), prop("interval", "string", "4h"))

	resp := NewPredictionLogic(context.Background(), sc).Prediction(ev)
	require.Equal(t, http.StatusOK, resp.StatusCode(), "%+v", resp.Payload())

	res := resp.Payload().(*PredictionResult)
	assert.Equal(t, "BTCUSDT", res.Symbol)
	assert.Equal(t, "4h", res.Interval)
	assert.Equal(t, forecast.Buy, res.Prediction.Recommendation)
	require.NotNil(t, res.Prediction.MarketSnapshot)
	assert.Equal(t, 199.5, res.Prediction.MarketSnapshot.CurrentPriceUSD)
	assert.Equal(t, "finanalyst-analysis", res.S3Bucket)
	assert.Equal(t, "Predictions/BTCUSDT/2025-11-20/BTCUSDT_binance_20251120T083000Z_prediction.json", res.S3Key)

	assert.Contains(t, client.last, `"interval":"4h"`)
	assert.Contains(t, client.last, `"market_snapshot":{"exchange":"binance.us"`)

	raw, err := sc.Store.Get(context.Background(), res.S3Bucket, res.S3Key)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recommendation":"BUY"`)
}

func TestPredictionFallbackWithoutSave(t *testing.T) {
	provider := &fakeProvider{candles: ramp(60, 1), tickerErr: errors.New("down")}
	sc := newTestSvc(t, provider, &fakeLLM{reply: "not json"})
	ev := agentEvent(t, "/prediction", prop("symbol", "string", "SOLUSDT"), prop("save_to_s3", "boolean", false))

	resp := NewPredictionLogic(context.Background(), sc).Prediction(ev)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	res := resp.Payload().(*PredictionResult)
	assert.Equal(t, forecast.Hold, res.Prediction.Recommendation)
	assert.Equal(t, forecast.FallbackReasoning, res.Prediction.Reasoning)
	assert.Nil(t, res.Prediction.MarketSnapshot)
	assert.Empty(t, res.S3Key)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3_bucket")
}

func TestPredictionErrors(t *testing.T) {
	t.Run("missing symbol", func(t *testing.T) {
		sc := newTestSvc(t, &fakeProvider{}, &fakeLLM{})
		resp := NewPredictionLogic(context.Background(), sc).Prediction(agentEvent(t, "/prediction"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
		assert.Equal(t, msgPredictorSymbol, errorText(t, resp))
	})
	t.Run("no candles", func(t *testing.T) {
		sc := newTestSvc(t, &fakeProvider{}, &fakeLLM{})
		resp := NewPredictionLogic(context.Background(), sc).Prediction(agentEvent(t, "/prediction", prop("symbol", "string", "BTCUSDT")))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
		assert.Equal(t, "No candle data returned for BTCUSDT.", errorText(t, resp))
	})
	t.Run("insufficient data", func(t *testing.T) {
		sc := newTestSvc(t, &fakeProvider{candles: ramp(20, 1)}, &fakeLLM{})
		resp := NewPredictionLogic(context.Background(), sc).Prediction(agentEvent(t, "/prediction", prop("symbol", "string", "BTCUSDT")))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	})
	t.Run("model failure", func(t *testing.T) {
		sc := newTestSvc(t, &fakeProvider{candles: ramp(60, 1)}, &fakeLLM{err: errors.New("throttled")})
		resp := NewPredictionLogic(context.Background(), sc).Prediction(agentEvent(t, "/prediction", prop("symbol", "string", "BTCUSDT")))
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
		assert.Contains(t, errorText(t, resp), "throttled")
	})
	t.Run("no forecaster", func(t *testing.T) {
		sc := newTestSvc(t, &fakeProvider{candles: ramp(60, 1)}, nil)
		resp := NewPredictionLogic(context.Background(), sc).Prediction(agentEvent(t, "/prediction", prop("symbol", "string", "BTCUSDT")))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
		assert.Equal(t, msgNoForecaster, errorText(t, resp))
	})
}
