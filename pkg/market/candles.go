package market

import (
	"encoding/json"
	"fmt"
	"sort"

	"finanalyst-api/pkg/market/indicators"
)

// candleRecord mirrors Candle with a nullable close so absent values can be
// told apart from zero.
type candleRecord struct {
	OpenTime  int64    `json:"open_time"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     *float64 `json:"close"`
	Volume    float64  `json:"volume"`
	CloseTime int64    `json:"close_time"`
}

// DecodeCandles decodes a JSON array of candle objects. Every record must
// carry a close price.
func DecodeCandles(raw []byte) ([]Candle, error) {
	var records []candleRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}
	candles := make([]Candle, 0, len(records))
	for i, rec := range records {
		if rec.Close == nil {
			return nil, fmt.Errorf("candle %d: %w: close", i, indicators.ErrMissingField)
		}
		candles = append(candles, Candle{
			OpenTime:  rec.OpenTime,
			Open:      rec.Open,
			High:      rec.High,
			Low:       rec.Low,
			Close:     *rec.Close,
			Volume:    rec.Volume,
			CloseTime: rec.CloseTime,
		})
	}
	return candles, nil
}

// SortCandles orders candles by open time ascending in place.
func SortCandles(candles []Candle) {
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].OpenTime < candles[j].OpenTime
	})
}

// Closes extracts the close series from candles.
func Closes(candles []Candle) indicators.Series {
	out := make(indicators.Series, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
