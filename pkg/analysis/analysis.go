// Package analysis turns a close series into the indicator report consumed
// by the tools and the forecaster.
package analysis

import (
	"fmt"

	"finanalyst-api/pkg/market"
	"finanalyst-api/pkg/market/indicators"
)

// Config holds the indicator windows.
type Config struct {
	RSIPeriod   int `json:",default=14"`
	ShortPeriod int `json:",default=20"`
	LongPeriod  int `json:",default=50"`
}

// DefaultConfig returns the standard 14/20/50 windows.
func DefaultConfig() Config {
	return Config{RSIPeriod: 14, ShortPeriod: 20, LongPeriod: 50}
}

// Validate rejects non-positive windows.
func (c Config) Validate() error {
	if c.RSIPeriod <= 0 || c.ShortPeriod <= 0 || c.LongPeriod <= 0 {
		return fmt.Errorf("%w: rsi=%d short=%d long=%d", indicators.ErrInvalidWindow, c.RSIPeriod, c.ShortPeriod, c.LongPeriod)
	}
	return nil
}

// MinCloses is the shortest series Build accepts.
func (c Config) MinCloses() int {
	n := c.LongPeriod
	if c.ShortPeriod > n {
		n = c.ShortPeriod
	}
	if c.RSIPeriod+1 > n {
		n = c.RSIPeriod + 1
	}
	return n
}

// Snapshot is the indicator report for one symbol.
type Snapshot struct {
	Symbol         string           `json:"symbol"`
	Interval       string           `json:"interval,omitempty"`
	Indicators     Indicators       `json:"indicators"`
	MarketSnapshot *market.Snapshot `json:"market_snapshot,omitempty"`
}

// Indicators groups the latest indicator readings.
type Indicators struct {
	RSI RSIReading  `json:"RSI"`
	SMA TrendReport `json:"SMA"`
	EMA TrendReport `json:"EMA"`
}

// RSIReading is the latest RSI with its label.
type RSIReading struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

// TrendReport compares a short and long moving average.
type TrendReport struct {
	ShortPeriod int     `json:"short_period"`
	LongPeriod  int     `json:"long_period"`
	ShortValue  float64 `json:"short_value"`
	LongValue   float64 `json:"long_value"`
	Signal      string  `json:"signal"`
}

// Input is everything Build needs for one report.
type Input struct {
	Symbol   string
	Interval string
	Closes   indicators.Series
	Market   *market.Snapshot
}

// Builder computes Snapshots. It holds no mutable state.
type Builder struct {
	cfg Config
}

// NewBuilder validates cfg and returns a Builder.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Config returns the windows the builder uses.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build computes the report for in. The market snapshot is attached as given.
func (b *Builder) Build(in Input) (*Snapshot, error) {
	need := b.cfg.MinCloses()
	if len(in.Closes) < need {
		return nil, fmt.Errorf("%w: %s has %d closes, need %d", indicators.ErrInsufficientData, in.Symbol, len(in.Closes), need)
	}

	rsi, err := indicators.RSI(in.Closes, b.cfg.RSIPeriod)
	if err != nil {
		return nil, err
	}
	lastRSI := indicators.Last(rsi)

	sma, err := b.trend(in.Closes, indicators.SMA)
	if err != nil {
		return nil, err
	}
	ema, err := b.trend(in.Closes, indicators.EMA)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Symbol:   in.Symbol,
		Interval: in.Interval,
		Indicators: Indicators{
			RSI: RSIReading{Value: lastRSI, Signal: indicators.InterpretRSI(lastRSI)},
			SMA: sma,
			EMA: ema,
		},
		MarketSnapshot: in.Market,
	}, nil
}

type movingAverage func(indicators.Series, int) ([]float64, error)

func (b *Builder) trend(closes indicators.Series, avg movingAverage) (TrendReport, error) {
	short, err := avg(closes, b.cfg.ShortPeriod)
	if err != nil {
		return TrendReport{}, err
	}
	long, err := avg(closes, b.cfg.LongPeriod)
	if err != nil {
		return TrendReport{}, err
	}
	s, l := indicators.Last(short), indicators.Last(long)
	return TrendReport{
		ShortPeriod: b.cfg.ShortPeriod,
		LongPeriod:  b.cfg.LongPeriod,
		ShortValue:  s,
		LongValue:   l,
		Signal:      indicators.InterpretTrend(s, l),
	}, nil
}
