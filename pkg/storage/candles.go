package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"finanalyst-api/pkg/market"
)

var (
	// ErrUnsupportedLayout is returned for candle files that are neither a
	// candle array nor a known wrapper object.
	ErrUnsupportedLayout = errors.New("storage: unsupported candle file layout")
	// ErrEmptyCandles is returned when a candle file holds no candles.
	ErrEmptyCandles = errors.New("storage: candle file is empty")
)

// candleEnvelope covers the two wrapper shapes: an inline candles array, or
// a pointer to another object holding the candles.
type candleEnvelope struct {
	Candles  json.RawMessage `json:"candles"`
	S3Bucket *string         `json:"s3_bucket"`
	S3Key    *string         `json:"s3_key"`
}

// LoadCandles reads candles from bucket/key. The object may be a candle
// array, an object with a "candles" array, or an object with s3_key (and
// optionally s3_bucket) naming the candle array. Only one level of
// indirection is followed.
func LoadCandles(ctx context.Context, store Store, bucket, key string) ([]market.Candle, error) {
	raw, err := store.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	switch firstByte(raw) {
	case '[':
		return decodeCandleArray(raw)
	case '{':
	default:
		return nil, fmt.Errorf("%w: s3://%s/%s is not a JSON array or object", ErrUnsupportedLayout, bucket, key)
	}

	var env candleEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("storage: decode s3://%s/%s: %w", bucket, key, err)
	}
	if firstByte(env.Candles) == '[' {
		return decodeCandleArray(env.Candles)
	}
	if env.S3Key == nil || *env.S3Key == "" {
		return nil, fmt.Errorf("%w: expected candle array, or object with candles or s3_bucket/s3_key", ErrUnsupportedLayout)
	}

	innerBucket := bucket
	if env.S3Bucket != nil && *env.S3Bucket != "" {
		innerBucket = *env.S3Bucket
	}
	inner, err := store.Get(ctx, innerBucket, *env.S3Key)
	if err != nil {
		return nil, err
	}
	if firstByte(inner) != '[' {
		return nil, fmt.Errorf("%w: s3://%s/%s does not hold a candle array", ErrUnsupportedLayout, innerBucket, *env.S3Key)
	}
	return decodeCandleArray(inner)
}

func decodeCandleArray(raw []byte) ([]market.Candle, error) {
	candles, err := market.DecodeCandles(raw)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrEmptyCandles
	}
	market.SortCandles(candles)
	return candles, nil
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
