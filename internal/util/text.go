package util

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

// Truthy follows the loose truthiness the source data relies on: empty
// strings, zero numbers, false, nil and empty lists/maps are all "unset".
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// FormatScalar renders a cell value as display text. Lists are joined with
// ", " and objects are rendered as JSON.
func FormatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatScalar(item))
		}
		return strings.Join(parts, ", ")
	default:
		blob, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(blob)
	}
}

// ToInt accepts JSON numbers and numeric strings ("1999", " 12 ", "12.0").
func ToInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ToInt(f)
		}
		return 0, false
	default:
		return 0, false
	}
}
