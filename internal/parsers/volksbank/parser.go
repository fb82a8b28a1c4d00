// Package volksbank parses the proprietary line-oriented Volksbank statement
// export: multi-line transaction records reconstructed by a small state
// machine, with locale-aware amount and date normalization.
package volksbank

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/amount"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/parser"
)

// startLinePattern matches a transaction start line: booking and value date
// tokens (dd.mm or dd.mm.yyyy, optional trailing dot), free-text description,
// numeric amount, and a single-letter direction flag (S = debit, H = credit).
var startLinePattern = regexp.MustCompile(
	`^(\d{2}\.\d{2}(?:\.\d{4})?\.?)\s+(\d{2}\.\d{2}(?:\.\d{4})?\.?)\s+(.*?)\s+([0-9][0-9.,]*)\s+([SH])\s*$`)

// startLinePrefixPattern matches only the leading pair of date tokens. Format
// detection and the statement-year header cutoff use this looser shape, so a
// start line with a mangled amount or direction flag still counts as
// transaction data rather than flipping the whole paste to another format.
var startLinePrefixPattern = regexp.MustCompile(
	`^\d{2}\.\d{2}(?:\.\d{4})?\.?\s+\d{2}\.\d{2}(?:\.\d{4})?\.?`)

// carryForwardPattern matches the carry-forward/total marker lines that belong
// to neither a start line nor a memo.
var carryForwardPattern = regexp.MustCompile(`(?i)^übertrag\b`)

// IsStartLine reports whether a trimmed line begins a new transaction record,
// judged by its date-token prefix alone. The format auto-detection boundary
// counts these matches; full record validation happens during Parse.
func IsStartLine(line string) bool {
	return startLinePrefixPattern.MatchString(line)
}

// Parser implements the statement state machine with a stateless design: all
// parse state lives in the Parse call, making the parser safe for concurrent
// use without locking.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared Volksbank parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier.
func (p *Parser) Name() string {
	return "volksbank"
}

// accumulator holds the transaction currently being assembled. The state
// machine is in SCANNING when current is nil and IN_TRANSACTION otherwise.
type accumulator struct {
	bookingDate string
	valueDate   string
	description string
	amount      float64
	memoLines   []string
}

func (a *accumulator) flushInto(out []domain.ParsedTransaction) []domain.ParsedTransaction {
	return append(out, domain.ParsedTransaction{
		BookingDate: a.bookingDate,
		ValueDate:   a.valueDate,
		Description: a.description,
		Amount:      a.amount,
		MemoRaw:     strings.Join(a.memoLines, "\n"),
	})
}

// Parse reconstructs multi-line transaction records from the statement text.
// Records whose start line fails date or amount validation are discarded and
// scanning continues; a statement with zero valid start lines yields zero
// transactions, not an error. Output order matches start-line order.
func (p *Parser) Parse(ctx context.Context, text string, opts parser.Options) (*parser.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	statementYear := 0
	if opts.YearOverrideValid() {
		statementYear = opts.YearOverride
	} else {
		statementYear = InferStatementYear(text)
	}

	result := &parser.Result{}
	var current *accumulator

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		if carryForwardPattern.MatchString(line) {
			continue
		}

		match := startLinePattern.FindStringSubmatch(line)
		if match == nil {
			// IN_TRANSACTION: any non-start, non-skip line extends the memo.
			if current != nil {
				current.memoLines = append(current.memoLines, line)
			}
			continue
		}

		// A new start line always flushes whatever record is still open.
		if current != nil {
			result.Transactions = current.flushInto(result.Transactions)
			current = nil
		}

		next, ok := p.parseStartLine(match, statementYear)
		if !ok {
			result.Discarded++
			continue
		}
		current = next
	}

	if current != nil {
		result.Transactions = current.flushInto(result.Transactions)
	}

	return result, nil
}

// parseStartLine validates a matched start line and builds the accumulator for
// it. A false return means the record is discarded (SCANNING resumes).
func (p *Parser) parseStartLine(match []string, statementYear int) (*accumulator, bool) {
	bookingToken, err := parseDateToken(match[1])
	if err != nil {
		return nil, false
	}
	valueToken, err := parseDateToken(match[2])
	if err != nil {
		return nil, false
	}

	// Explicit-year precedence: when both tokens carry a year, the booking
	// token's year applies to both dates regardless of the inferred year.
	lineYear := statementYear
	if bookingToken.hasYear && valueToken.hasYear {
		lineYear = bookingToken.year
	}

	bookingDate, err := bookingToken.toISODate(lineYear)
	if err != nil {
		return nil, false
	}
	valueDate, err := valueToken.toISODate(lineYear)
	if err != nil {
		return nil, false
	}

	absAmount, err := amount.ParseGerman(match[4])
	if err != nil {
		return nil, false
	}

	signed := math.Abs(absAmount)
	if match[5] == "S" {
		signed = -signed
	}

	return &accumulator{
		bookingDate: bookingDate,
		valueDate:   valueDate,
		description: strings.TrimSpace(match[3]),
		amount:      signed,
	}, true
}
