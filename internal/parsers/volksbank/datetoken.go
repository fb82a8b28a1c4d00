package volksbank

import (
	"fmt"
	"strconv"
	"strings"
)

// dateToken is a structurally parsed dd.mm or dd.mm.yyyy token. Year is only
// present when the token carried three components.
type dateToken struct {
	day     int
	month   int
	year    int
	hasYear bool
}

// parseDateToken splits a date token on ".". It performs no calendar
// validation beyond requiring integer components; range checks happen when the
// token is resolved to an ISO date. A trailing "." is tolerated.
func parseDateToken(token string) (dateToken, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(token), ".")
	parts := strings.Split(cleaned, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return dateToken{}, fmt.Errorf("date token %q must have 2 or 3 components, got %d", token, len(parts))
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return dateToken{}, fmt.Errorf("invalid day in date token %q: %w", token, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return dateToken{}, fmt.Errorf("invalid month in date token %q: %w", token, err)
	}

	tok := dateToken{day: day, month: month}
	if len(parts) == 3 {
		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return dateToken{}, fmt.Errorf("invalid year in date token %q: %w", token, err)
		}
		tok.year = year
		tok.hasYear = true
	}

	return tok, nil
}

// toISODate resolves a token against a year, enforcing the range invariant
// (1<=day<=31, 1<=month<=12). Day-of-month is intentionally not validated
// against the month length.
func (t dateToken) toISODate(year int) (string, error) {
	if t.day < 1 || t.day > 31 {
		return "", fmt.Errorf("day %d out of range", t.day)
	}
	if t.month < 1 || t.month > 12 {
		return "", fmt.Errorf("month %d out of range", t.month)
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, t.month, t.day), nil
}
