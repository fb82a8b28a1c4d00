// Package merchant derives stable counterparty keys from noisy German
// bank statement text and extracts SEPA references from memo lines.
package merchant

import (
	"regexp"
	"strings"
)

// noiseTokens are bookkeeping words that carry no counterparty identity.
var noiseTokens = map[string]struct{}{
	"eref":             {},
	"mref":             {},
	"cred":             {},
	"mandatsref":       {},
	"mandat":           {},
	"tel":              {},
	"telefon":          {},
	"uhr":              {},
	"iban":             {},
	"bic":              {},
	"zweck":            {},
	"verwendungszweck": {},
}

var (
	ibanPattern       = regexp.MustCompile(`\b[a-z]{2}\d{2}[a-z0-9]{10,30}\b`)
	bicPattern        = regexp.MustCompile(`\b[a-z]{4}[a-z]{2}[a-z0-9]{2}(?:[a-z0-9]{3})?\b`)
	longNumberPattern = regexp.MustCompile(`\b\d{4,}\b`)
	separatorPattern  = regexp.MustCompile("[_|/\\\\,:;()\\[\\]{}<>*#+~\"'`.-]+")
)

var umlautReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// Key canonicalizes free-form counterparty text into a merchant key:
// lowercased, umlauts folded to ASCII, IBANs, BIC-shaped tokens, and long
// digit runs removed, separators collapsed, and SEPA noise words dropped.
// Different bookings of the same merchant map to the same key even when
// their end-to-end references differ.
func Key(input string) string {
	lower := umlautReplacer.Replace(strings.ToLower(strings.TrimSpace(input)))

	cleaned := ibanPattern.ReplaceAllString(lower, " ")
	cleaned = bicPattern.ReplaceAllString(cleaned, " ")
	cleaned = longNumberPattern.ReplaceAllString(cleaned, " ")
	cleaned = separatorPattern.ReplaceAllString(cleaned, " ")

	tokens := make([]string, 0, 8)
	for _, token := range strings.Fields(cleaned) {
		if _, noise := noiseTokens[token]; noise {
			continue
		}
		tokens = append(tokens, token)
	}

	return strings.Join(tokens, " ")
}
