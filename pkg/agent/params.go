package agent

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params are decoded tool arguments.
type Params map[string]any

// coerce converts a property value by its declared type. Values that do not
// convert are kept unchanged.
func coerce(typ string, v any) any {
	switch typ {
	case "integer":
		if n, ok := toInt(v); ok {
			return n
		}
	case "number":
		if f, ok := toFloat(v); ok {
			return f
		}
	case "boolean":
		switch b := v.(type) {
		case bool:
			return b
		case string:
			return strings.EqualFold(b, "true")
		case nil:
			return false
		case float64:
			return b != 0
		}
	}
	return v
}

// String returns the value for key as a string, or def when absent or empty.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s = fmt.Sprint(t)
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Int returns the value for key as an int, or def when absent or not numeric.
func (p Params) Int(key string, def int) int {
	if n, ok := toInt(p[key]); ok {
		return n
	}
	return def
}

// Bool returns the value for key as a bool, or def when absent.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		return def
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return def
}

// Symbol returns the upper-cased symbol argument, or "".
func (p Params) Symbol() string {
	return strings.ToUpper(strings.TrimSpace(p.String("symbol", "")))
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
