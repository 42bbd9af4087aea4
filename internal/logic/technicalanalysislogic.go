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
	"finanalyst-api/pkg/market"
	"finanalyst-api/pkg/market/indicators"
	"finanalyst-api/pkg/storage"
)

// IndicatorFile is the stored technical analysis result.
type IndicatorFile struct {
	Symbol           string              `json:"symbol"`
	SourceFileBucket string              `json:"source_file_bucket"`
	SourceFileKey    string              `json:"source_file_key"`
	Indicators       analysis.Indicators `json:"indicators"`
}

// AnalysisResult is the technical analysis reply.
type AnalysisResult struct {
	Symbol              string              `json:"symbol"`
	IndicatorFileBucket string              `json:"indicator_file_bucket"`
	IndicatorFileKey    string              `json:"indicator_file_key"`
	Indicators          analysis.Indicators `json:"indicators"`
}

// analysisError carries the envelope status for a failed analysis.
type analysisError struct {
	status int
	msg    string
	err    error
}

func (e *analysisError) Error() string { return e.msg }
func (e *analysisError) Unwrap() error { return e.err }

type TechnicalAnalysisLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTechnicalAnalysisLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TechnicalAnalysisLogic {
	return &TechnicalAnalysisLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// TechnicalAnalysis computes indicators over a stored candle file.
func (l *TechnicalAnalysisLogic) TechnicalAnalysis(ev *agent.Event) agent.Response {
	params := ev.Params()
	symbol := params.Symbol()
	if symbol == "" {
		l.Infof("technical_analysis: missing symbol, returning 400")
		return agent.RespondError(ev, http.StatusBadRequest, msgAnalyzerSymbol)
	}
	key := params.String("s3_key", "")
	if key == "" {
		l.Infof("technical_analysis: missing s3_key, returning 400")
		return agent.RespondError(ev, http.StatusBadRequest, msgAnalyzerKey)
	}
	bucket := params.String("s3_bucket", l.svcCtx.Config.Storage.DataBucket)

	interval := params.String("interval", l.svcCtx.Config.Fetcher.Interval)
	result, err := l.Analyze(symbol, interval, bucket, key)
	if err != nil {
		status := http.StatusInternalServerError
		var ae *analysisError
		if errors.As(err, &ae) {
			status = ae.status
		}
		l.Errorf("technical_analysis: %s: %v", symbol, err)
		return agent.RespondError(ev, status, err.Error())
	}
	return agent.Respond(ev, http.StatusOK, result)
}

// Analyze loads the candle file, builds the report and stores it.
func (l *TechnicalAnalysisLogic) Analyze(symbol, interval, bucket, key string) (*AnalysisResult, error) {
	candles, err := storage.LoadCandles(l.ctx, l.svcCtx.Store, bucket, key)
	if err != nil {
		msg := fmt.Sprintf("Could not load candle data from s3://%s/%s: %v", bucket, key, err)
		if errors.Is(err, indicators.ErrMissingField) {
			msg = msgMissingClose
		}
		return nil, &analysisError{status: dataStatus(err), msg: msg, err: err}
	}

	snap, err := l.svcCtx.Builder.Build(analysis.Input{
		Symbol:   symbol,
		Interval: interval,
		Closes:   market.Closes(candles),
	})
	if err != nil {
		return nil, &analysisError{status: dataStatus(err), msg: err.Error(), err: err}
	}

	outBucket := l.svcCtx.Config.Storage.IndicatorBucket()
	outKey := storage.IndicatorsKey(symbol, key, nowFn())
	file := IndicatorFile{
		Symbol:           symbol,
		SourceFileBucket: bucket,
		SourceFileKey:    key,
		Indicators:       snap.Indicators,
	}
	if err := storage.PutIndentedJSON(l.ctx, l.svcCtx.Store, outBucket, outKey, file); err != nil {
		return nil, fmt.Errorf("save indicators: %w", err)
	}
	l.Infof("technical_analysis: %s RSI=%.2f SMA=%.2f/%.2f EMA=%.2f/%.2f saved to s3://%s/%s",
		symbol, snap.Indicators.RSI.Value,
		snap.Indicators.SMA.ShortValue, snap.Indicators.SMA.LongValue,
		snap.Indicators.EMA.ShortValue, snap.Indicators.EMA.LongValue,
		outBucket, outKey)

	if err := l.svcCtx.Analyses.RecordSnapshot(l.ctx, analysispersist.SnapshotRecord{
		Snapshot:     snap,
		SourceBucket: bucket,
		SourceKey:    key,
		OutputBucket: outBucket,
		OutputKey:    outKey,
	}); err != nil {
		l.Errorf("technical_analysis: record snapshot %s: %v", symbol, err)
	}

	return &AnalysisResult{
		Symbol:              symbol,
		IndicatorFileBucket: outBucket,
		IndicatorFileKey:    outKey,
		Indicators:          snap.Indicators,
	}, nil
}
