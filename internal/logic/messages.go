package logic

import (
	"errors"
	"net/http"
	"time"

	"finanalyst-api/pkg/market/indicators"
	"finanalyst-api/pkg/storage"
)

const (
	msgFetcherSymbol   = "Missing required parameter 'symbol'. Please specify a crypto symbol such as BTCUSDT, ETHUSDT, or SOLUSDT."
	msgAnalyzerSymbol  = "Missing required 'symbol' parameter for technical analysis."
	msgAnalyzerKey     = "Missing required 's3_key' parameter (location of candle data)."
	msgPredictorSymbol = "Missing required parameter 'symbol'. Please specify a trading pair such as BTCUSDT, ETHUSDT, or SOLUSDT."
	msgMissingClose    = "Candle data missing 'close' field."
	msgNoForecaster    = "Prediction model is not configured."

	// NonAgentMessage answers prediction calls that are not action-group events.
	NonAgentMessage = "prediction is only used as an agent tool."
)

// nowFn is swapped in tests to pin storage keys.
var nowFn = func() time.Time { return time.Now().UTC() }

// dataStatus maps candle loading and indicator errors onto envelope codes
// for the technical analysis tool.
func dataStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrUnsupportedLayout),
		errors.Is(err, storage.ErrEmptyCandles),
		errors.Is(err, indicators.ErrMissingField),
		errors.Is(err, indicators.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
