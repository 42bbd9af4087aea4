package forecast

import (
	"errors"
	"fmt"
	"strings"
)

// Validate upper-cases the enumerated fields in place and reports every
// field outside its allowed set.
func Validate(p *Prediction) error {
	if p == nil {
		return errors.New("forecast: prediction is nil")
	}
	var errs []error

	p.Recommendation = strings.ToUpper(strings.TrimSpace(p.Recommendation))
	switch p.Recommendation {
	case Buy, Hold, Sell:
	default:
		errs = append(errs, fmt.Errorf("recommendation %q is not BUY, HOLD or SELL", p.Recommendation))
	}

	for name, h := range p.Forecasts {
		h.Direction = strings.ToUpper(strings.TrimSpace(h.Direction))
		switch h.Direction {
		case Up, Down, Sideways:
		default:
			errs = append(errs, fmt.Errorf("forecasts[%s]: direction %q is not UP, DOWN or SIDEWAYS", name, h.Direction))
		}
		if h.Confidence < 0 || h.Confidence > 100 {
			errs = append(errs, fmt.Errorf("forecasts[%s]: confidence %d outside 0-100", name, h.Confidence))
		}
		p.Forecasts[name] = h
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("forecast: invalid prediction: %w", errors.Join(errs...))
}
