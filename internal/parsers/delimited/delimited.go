// Package delimited parses the semicolon-delimited fallback statement format:
// one "date;amount;counterparty;purpose" record per line.
package delimited

import (
	"context"
	"strings"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/amount"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/parser"
)

// Parser is stateless and safe for concurrent use.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared delimited parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier.
func (p *Parser) Name() string {
	return "delimited"
}

// Parse converts delimited text into transactions. The purpose field may
// itself contain semicolons: everything after the third field belongs to it.
// Lines missing date, amount, or counterparty are silently dropped, as are
// lines whose amount fails normalization.
func (p *Parser) Parse(ctx context.Context, text string, opts parser.Options) (*parser.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result := &parser.Result{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		parts := strings.Split(line, ";")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var date, amountRaw, counterparty, purpose string
		if len(parts) > 0 {
			date = parts[0]
		}
		if len(parts) > 1 {
			amountRaw = parts[1]
		}
		if len(parts) > 2 {
			counterparty = parts[2]
		}
		if len(parts) > 3 {
			purpose = strings.Join(parts[3:], ";")
		}

		if date == "" || amountRaw == "" || counterparty == "" {
			result.Discarded++
			continue
		}

		value, err := amount.ParseGerman(amountRaw)
		if err != nil {
			result.Discarded++
			continue
		}

		result.Transactions = append(result.Transactions, domain.ParsedTransaction{
			BookingDate: date,
			ValueDate:   date,
			Description: counterparty,
			Amount:      value,
			MemoRaw:     purpose,
		})
	}

	return result, nil
}
