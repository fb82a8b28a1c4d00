package merchant

import "regexp"

// SEPA memo lines label references as "CRED: DE98ZZZ..." or "MREF-ABC77".
// Values shorter than four characters are too ambiguous to trust.
var (
	credPattern = regexp.MustCompile(`(?i)\bCRED\b[:\s-]*([A-Za-z0-9_/.-]{4,})`)
	mrefPattern = regexp.MustCompile(`(?i)\bMREF\b[:\s-]*([A-Za-z0-9_/.-]{4,})`)
)

// CreditorID extracts the SEPA creditor identifier from a raw memo,
// or "" when none is present.
func CreditorID(memoRaw string) string {
	return firstGroup(credPattern, memoRaw)
}

// MandateRef extracts the SEPA mandate reference from a raw memo,
// or "" when none is present.
func MandateRef(memoRaw string) string {
	return firstGroup(mrefPattern, memoRaw)
}

func firstGroup(pattern *regexp.Regexp, text string) string {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}
