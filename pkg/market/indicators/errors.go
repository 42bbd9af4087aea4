package indicators

import "errors"

var (
	// ErrInsufficientData reports a series shorter than the longest window a caller needs.
	ErrInsufficientData = errors.New("indicators: insufficient data")
	// ErrInvalidWindow reports a non-positive window or one longer than the series.
	ErrInvalidWindow = errors.New("indicators: invalid window")
	// ErrMissingField reports an input record without the required price field.
	ErrMissingField = errors.New("indicators: missing field")
)
