package parser

import (
	"context"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
)

// Parser is the strategy interface for statement text parsers.
type Parser interface {
	// Name returns the parser identifier (e.g. "volksbank", "delimited").
	Name() string

	// Parse converts raw statement text into an ordered transaction sequence.
	// Parsing is pure and synchronous: malformed records are dropped, never
	// surfaced as errors, and the output order matches input order.
	Parse(ctx context.Context, text string, opts Options) (*Result, error)
}

// Options carries caller-supplied parse configuration.
type Options struct {
	// YearOverride, when in the valid range 1900-2099, bypasses statement-year
	// inference for date tokens that omit the year. Out-of-range values are
	// ignored in favor of inference.
	YearOverride int
}

// YearOverrideValid reports whether the override falls in the accepted range.
func (o Options) YearOverrideValid() bool {
	return o.YearOverride >= 1900 && o.YearOverride <= 2099
}

// Result is the output of one parse invocation.
type Result struct {
	Transactions []domain.ParsedTransaction

	// Discarded counts records that matched the start-line shape but failed
	// structural or range validation. Informational only.
	Discarded int
}
