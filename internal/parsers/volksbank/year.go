package volksbank

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Candidate-year patterns scanned over the statement header region. Two-digit
// years are always interpreted as 2000+yy; statements from years <=1999 are not
// supported and no pivot heuristic is applied, since changing that assumption
// would change dedup identity for historical imports.
var (
	fullDatePattern  = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.((?:19|20)\d{2})\b`)
	monthYearPattern = regexp.MustCompile(`\b(0?[1-9]|1[0-2])/((?:19|20)\d{2})\b`)
	shortDatePattern = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.(\d{2})\b`)
)

// InferStatementYear inspects the header region (all lines before the first
// transaction start line) and returns the most probable year for transactions
// whose date tokens omit it. Highest frequency wins; on a tie the numerically
// larger year wins. With no candidates it falls back to the current year.
func InferStatementYear(text string) int {
	var headerLines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if startLinePrefixPattern.MatchString(line) {
			break
		}
		if line != "" {
			headerLines = append(headerLines, line)
		}
	}
	header := strings.Join(headerLines, "\n")

	var years []int
	for _, m := range fullDatePattern.FindAllStringSubmatch(header, -1) {
		if y, err := strconv.Atoi(m[1]); err == nil {
			years = append(years, y)
		}
	}
	for _, m := range monthYearPattern.FindAllStringSubmatch(header, -1) {
		if y, err := strconv.Atoi(m[2]); err == nil {
			years = append(years, y)
		}
	}
	for _, m := range shortDatePattern.FindAllStringSubmatch(header, -1) {
		if y, err := strconv.Atoi(m[1]); err == nil {
			years = append(years, 2000+y)
		}
	}

	return chooseMostLikelyYear(years, time.Now().Year())
}

// chooseMostLikelyYear builds a frequency count over the candidates and picks
// the winner: highest count first, larger year on equal count.
func chooseMostLikelyYear(years []int, fallback int) int {
	if len(years) == 0 {
		return fallback
	}

	counts := make(map[int]int, len(years))
	for _, y := range years {
		counts[y]++
	}

	winner := years[0]
	winnerCount := counts[winner]
	for year, count := range counts {
		if count > winnerCount || (count == winnerCount && year > winner) {
			winner = year
			winnerCount = count
		}
	}

	return winner
}
