package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = "20060102T150405Z"
)

// RawCandlesKey locates a raw candle dump:
// raw/{source}/{SYMBOL}/{date}/{SYMBOL}_{source}_{ts}.json
func RawCandlesKey(source, symbol string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("raw/%s/%s/%s/%s_%s_%s.json",
		source, symbol, at.Format(dateLayout), symbol, source, at.Format(stampLayout))
}

// FetchResultKey locates the aggregated data fetcher result.
func FetchResultKey(symbol, interval string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("data_fetcher_results/%s/%s/%s_%s_%s_data_fetcher.json",
		symbol, at.Format(dateLayout), symbol, interval, at.Format(stampLayout))
}

// IndicatorsKey derives the indicator file key from the candle file it was
// computed from.
func IndicatorsKey(symbol, sourceKey string, at time.Time) string {
	base := strings.ReplaceAll(path.Base(sourceKey), ".json", "")
	return fmt.Sprintf("indicators/%s/%s/%s_indicators.json", symbol, at.UTC().Format(dateLayout), base)
}

// PredictionKey locates a saved prediction.
func PredictionKey(symbol string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("Predictions/%s/%s/%s_binance_%s_prediction.json",
		symbol, at.Format(dateLayout), symbol, at.Format(stampLayout))
}
