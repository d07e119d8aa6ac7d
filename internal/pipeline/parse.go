package pipeline

import (
	"strings"

	"orgdir/internal"
	"orgdir/internal/util"
)

// Lookup returns the value under the first alias present in fields. A
// present empty string or null still wins over later aliases.
func Lookup(fields internal.Fields, aliases []string) (any, bool) {
	for _, name := range aliases {
		if v, ok := fields[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupTruthy returns the first alias whose value is set to something
// non-empty, skipping empty strings, zeros and empty lists.
func LookupTruthy(fields internal.Fields, aliases []string) (any, bool) {
	for _, name := range aliases {
		if v, ok := fields[name]; ok && util.Truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// ParseList turns a cell holding a list, a delimited string or a scalar
// into a list of strings. ";" is tried before "," both for whole strings
// and for each list element; split parts are trimmed.
func ParseList(value any) []string {
	if !util.Truthy(value) {
		return []string{}
	}

	switch t := value.(type) {
	case string:
		return splitDelimited(t)
	case []string:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, splitDelimited(item)...)
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case string:
				out = append(out, splitDelimited(it)...)
			case []any:
				for _, nested := range it {
					out = append(out, util.FormatScalar(nested))
				}
			default:
				out = append(out, util.FormatScalar(it))
			}
		}
		return out
	default:
		return []string{util.FormatScalar(t)}
	}
}

func splitDelimited(s string) []string {
	if strings.Contains(s, ";") {
		return splitTrim(s, ";")
	}
	if strings.Contains(s, ",") {
		return splitTrim(s, ",")
	}
	return []string{s}
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
