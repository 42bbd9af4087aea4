package indicators

// RSI classification bands. Outer bands are checked first.
const (
	RSIOverbought  = 70.0
	RSIOversold    = 30.0
	RSINeutralLow  = 45.0
	RSINeutralHigh = 55.0
	RSIMidline     = 50.0
)

// Labels attached to indicator values.
const (
	SignalOverbought = "Overbought (potential downside risk)"
	SignalOversold   = "Oversold (potential upside opportunity)"
	SignalNeutral    = "Neutral momentum"
	SignalBullishRSI = "Bullish momentum strengthening"
	SignalBearishRSI = "Bearish momentum strengthening"

	SignalTrendBullish = "Bullish (short MA above long MA)"
	SignalTrendBearish = "Bearish (short MA below long MA)"
	SignalTrendFlat    = "No clear trend (MAs equal)"
)

// InterpretRSI maps an RSI reading to a momentum label.
func InterpretRSI(value float64) string {
	switch {
	case value >= RSIOverbought:
		return SignalOverbought
	case value <= RSIOversold:
		return SignalOversold
	case value >= RSINeutralLow && value <= RSINeutralHigh:
		return SignalNeutral
	case value > RSIMidline:
		return SignalBullishRSI
	default:
		return SignalBearishRSI
	}
}

// InterpretTrend compares a short and a long moving average. Equality is
// exact float comparison.
func InterpretTrend(short, long float64) string {
	switch {
	case short > long:
		return SignalTrendBullish
	case short < long:
		return SignalTrendBearish
	default:
		return SignalTrendFlat
	}
}
