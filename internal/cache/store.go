package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
	"finanalyst-api/pkg/market"
)

// Store keeps the latest tickers, snapshots and predictions in Redis,
// msgpack encoded with the JSON field names.
type Store struct {
	rds *redis.Redis
	ttl TTLSet
}

// NewStore returns nil when rds is nil so callers can treat caching as optional.
func NewStore(rds *redis.Redis, ttl TTLSet) *Store {
	if rds == nil {
		return nil
	}
	return &Store{rds: rds, ttl: ttl}
}

// PutTicker caches a 24h ticker.
func (s *Store) PutTicker(ctx context.Context, provider string, snap *market.Snapshot) error {
	if s == nil || snap == nil {
		return nil
	}
	return s.put(ctx, TickerKey(provider, snap.Symbol), snap, TickerTTL(s.ttl))
}

// Ticker returns the cached ticker, or nil when absent.
func (s *Store) Ticker(ctx context.Context, provider, symbol string) (*market.Snapshot, error) {
	var out market.Snapshot
	ok, err := s.get(ctx, TickerKey(provider, symbol), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// PutSnapshot caches an indicator snapshot under its symbol and interval.
func (s *Store) PutSnapshot(ctx context.Context, snap *analysis.Snapshot) error {
	if s == nil || snap == nil {
		return nil
	}
	return s.put(ctx, SnapshotKey(snap.Symbol, snap.Interval), snap, SnapshotTTL(s.ttl))
}

// Snapshot returns the cached snapshot, or nil when absent.
func (s *Store) Snapshot(ctx context.Context, symbol, interval string) (*analysis.Snapshot, error) {
	var out analysis.Snapshot
	ok, err := s.get(ctx, SnapshotKey(symbol, interval), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// PutPrediction caches the latest prediction for its symbol.
func (s *Store) PutPrediction(ctx context.Context, pred *forecast.Prediction) error {
	if s == nil || pred == nil {
		return nil
	}
	return s.put(ctx, PredictionKey(pred.Symbol), pred, PredictionTTL(s.ttl))
}

// Prediction returns the cached prediction, or nil when absent.
func (s *Store) Prediction(ctx context.Context, symbol string) (*forecast.Prediction, error) {
	var out forecast.Prediction
	ok, err := s.get(ctx, PredictionKey(symbol), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (s *Store) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	if err := s.rds.SetexCtx(ctx, key, string(data), seconds); err != nil {
		logx.WithContext(ctx).Errorf("cache: set key=%s err=%v", key, err)
		return err
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string, dst any) (bool, error) {
	if s == nil {
		return false, nil
	}
	raw, err := s.rds.GetCtx(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := decode([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, dst any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(dst)
}
