package tripplanner

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Tool arguments arrive as json.Number from providers, float64 or int from
// in-process callers, and sometimes as numeric strings from weaker models.

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toInt accepts only whole numbers.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// firstFloat returns the first key of args that holds a usable number.
func firstFloat(args map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, present := args[k]; present {
			return toFloat(v)
		}
	}
	return 0, false
}

func stringArg(args map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := args[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func objectArg(args map[string]any, key string) (map[string]any, bool) {
	m, ok := args[key].(map[string]any)
	return m, ok
}
