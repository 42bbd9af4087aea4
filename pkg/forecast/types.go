package forecast

import "finanalyst-api/pkg/market"

// Recommendations.
const (
	Buy  = "BUY"
	Hold = "HOLD"
	Sell = "SELL"
)

// Directions.
const (
	Up       = "UP"
	Down     = "DOWN"
	Sideways = "SIDEWAYS"
)

// Horizons lists the forecast keys in display order.
var Horizons = []string{"1_week", "1_month", "3_months", "6_months", "12_months", "5_years"}

// FallbackReasoning is used when the model reply is not valid JSON.
const FallbackReasoning = "Model output could not be parsed as JSON."

// Prediction is the stance and multi-horizon outlook for one symbol.
type Prediction struct {
	Symbol         string             `json:"symbol"`
	Recommendation string             `json:"recommendation"`
	Reasoning      string             `json:"reasoning"`
	Forecasts      map[string]Horizon `json:"forecasts"`
	Risks          []string           `json:"risks"`
	MarketSnapshot *market.Snapshot   `json:"market_snapshot,omitempty"`
}

// Horizon is the outlook for a single time window.
type Horizon struct {
	Direction             string `json:"direction"`
	ExpectedChangePercent string `json:"expected_change_percent"`
	Confidence            int    `json:"confidence"`
}

// Fallback returns the HOLD prediction used when parsing fails.
func Fallback(symbol string) *Prediction {
	return &Prediction{
		Symbol:         symbol,
		Recommendation: Hold,
		Reasoning:      FallbackReasoning,
		Forecasts:      map[string]Horizon{},
		Risks:          []string{},
	}
}
