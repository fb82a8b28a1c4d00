// Package amount normalizes German-locale numeric strings into signed decimals.
package amount

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseGerman converts a German-locale numeric string (dot as thousands
// separator, comma as decimal separator, e.g. "1.234,56") into a float64.
//
// Whitespace is stripped, every "." is removed, the first remaining "," becomes
// the decimal point. A string that still contains non-numeric characters after
// normalization fails the parse; callers must treat that as "reject this
// record", not as a fatal error.
func ParseGerman(raw string) (float64, error) {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	withoutThousands := strings.ReplaceAll(sanitized, ".", "")
	normalized := strings.Replace(withoutThousands, ",", ".", 1)

	if normalized == "" {
		return 0, fmt.Errorf("empty amount")
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	return value, nil
}
