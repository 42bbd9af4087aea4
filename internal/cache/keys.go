package cache

import (
	"fmt"
	"strings"
	"time"

	"finanalyst-api/internal/config"
)

// Namespace is the Redis key prefix for the application.
const Namespace = "finanalyst"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Market Keys -------------------------------------------------------------

// TickerKey holds the latest 24h ticker snapshot per provider.
func TickerKey(provider, symbol string) string {
	return formatKey("ticker", provider, strings.ToUpper(symbol))
}

// --- Indicator & Prediction Keys ---------------------------------------------

// SnapshotKey stores the latest indicator snapshot for a symbol and interval.
func SnapshotKey(symbol, interval string) string {
	return formatKey("indicators", strings.ToUpper(symbol), interval)
}

// PredictionKey stores the latest prediction for a symbol.
func PredictionKey(symbol string) string {
	return formatKey("prediction", strings.ToUpper(symbol))
}

// --- TTL Helpers -------------------------------------------------------------

// TickerTTL returns the short-lived TTL for tickers.
func TickerTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// SnapshotTTL returns the TTL for indicator snapshots.
func SnapshotTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// PredictionTTL returns the TTL for predictions.
func PredictionTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLLong, 2) // ~600s when long=300s
}

// FormatCacheKey is exported for dynamic key construction.
func FormatCacheKey(parts ...string) string {
	return formatKey(parts...)
}

// BuildKeyWithSuffix appends an arbitrary suffix to an existing key.
func BuildKeyWithSuffix(baseKey, suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		return baseKey
	}
	return fmt.Sprintf("%s:%s", baseKey, strings.TrimSpace(suffix))
}
