package analysispersist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachestore "finanalyst-api/internal/cache"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
)

// Service records indicator snapshots and predictions in Postgres and keeps
// the latest of each in Redis.
type Service struct {
	sqlConn sqlx.SqlConn
	cache   *cachestore.Store
	nowFn   func() time.Time
}

// Config enumerates dependencies needed to persist analysis results.
type Config struct {
	SQLConn sqlx.SqlConn
	Cache   *cachestore.Store
}

// NewService returns nil when neither backend is configured.
func NewService(cfg Config) *Service {
	if cfg.SQLConn == nil && cfg.Cache == nil {
		return nil
	}
	return &Service{sqlConn: cfg.SQLConn, cache: cfg.Cache, nowFn: time.Now}
}

// SnapshotRecord locates the stored indicator file for a snapshot.
type SnapshotRecord struct {
	Snapshot     *analysis.Snapshot
	SourceBucket string
	SourceKey    string
	OutputBucket string
	OutputKey    string
}

const insertSnapshotStmt = `
INSERT INTO public.indicator_snapshots (
    symbol, interval, rsi, rsi_signal, sma_short, sma_long, sma_signal, ema_short, ema_long, ema_signal,
    source_bucket, source_key, output_bucket, output_key, payload, computed_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
);`

// RecordSnapshot stores one indicator snapshot row and refreshes the cache.
func (s *Service) RecordSnapshot(ctx context.Context, rec SnapshotRecord) error {
	if s == nil || rec.Snapshot == nil {
		return nil
	}
	snap := rec.Snapshot
	if s.sqlConn != nil {
		payload, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("analysispersist: encode snapshot: %w", err)
		}
		ind := snap.Indicators
		if _, err := s.sqlConn.ExecCtx(ctx, insertSnapshotStmt,
			strings.ToUpper(snap.Symbol),
			nullString(snap.Interval),
			ind.RSI.Value, ind.RSI.Signal,
			ind.SMA.ShortValue, ind.SMA.LongValue, ind.SMA.Signal,
			ind.EMA.ShortValue, ind.EMA.LongValue, ind.EMA.Signal,
			nullString(rec.SourceBucket), nullString(rec.SourceKey),
			nullString(rec.OutputBucket), nullString(rec.OutputKey),
			string(payload),
			s.nowFn().UTC(),
		); err != nil {
			return fmt.Errorf("analysispersist: insert snapshot %s: %w", snap.Symbol, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.PutSnapshot(ctx, snap); err != nil {
			logx.WithContext(ctx).Errorf("analysispersist: cache snapshot symbol=%s err=%v", snap.Symbol, err)
		}
	}
	return nil
}

// PredictionRecord carries a prediction with the context it was produced in.
type PredictionRecord struct {
	Prediction   *forecast.Prediction
	Interval     string
	Model        string
	PromptDigest string
	Parsed       bool
	Bucket       string
	Key          string
}

const insertPredictionStmt = `
INSERT INTO public.predictions (
    symbol, interval, recommendation, reasoning, forecasts, risks, model, prompt_digest, parsed,
    s3_bucket, s3_key, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
);`

// RecordPrediction stores one prediction row and refreshes the cache.
func (s *Service) RecordPrediction(ctx context.Context, rec PredictionRecord) error {
	if s == nil || rec.Prediction == nil {
		return nil
	}
	pred := rec.Prediction
	if s.sqlConn != nil {
		forecasts, err := json.Marshal(pred.Forecasts)
		if err != nil {
			return fmt.Errorf("analysispersist: encode forecasts: %w", err)
		}
		if _, err := s.sqlConn.ExecCtx(ctx, insertPredictionStmt,
			strings.ToUpper(pred.Symbol),
			nullString(rec.Interval),
			pred.Recommendation,
			pred.Reasoning,
			string(forecasts),
			pq.Array(pred.Risks),
			nullString(rec.Model),
			nullString(rec.PromptDigest),
			rec.Parsed,
			nullString(rec.Bucket),
			nullString(rec.Key),
			s.nowFn().UTC(),
		); err != nil {
			return fmt.Errorf("analysispersist: insert prediction %s: %w", pred.Symbol, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.PutPrediction(ctx, pred); err != nil {
			logx.WithContext(ctx).Errorf("analysispersist: cache prediction symbol=%s err=%v", pred.Symbol, err)
		}
	}
	return nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
