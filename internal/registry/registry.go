// Package registry selects the parser matching a statement's text format.
package registry

import (
	"strings"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/parser"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/parsers/delimited"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/parsers/volksbank"
)

// startLineThreshold is the minimum number of Volksbank transaction start
// lines a text must contain before it is treated as a Volksbank statement.
// Below the threshold the delimited fallback parser takes over.
const startLineThreshold = 3

// Registry picks a parser for raw statement text.
type Registry struct{}

// New creates a registry with the built-in parsers.
func New() *Registry {
	return &Registry{}
}

// FindParser returns the parser for this text based on format detection.
// Detection never fails: texts that do not look like a Volksbank statement
// fall through to the delimited parser, which reports its own discards.
func (r *Registry) FindParser(text string) parser.Parser {
	matches := 0
	for _, line := range strings.Split(text, "\n") {
		if volksbank.IsStartLine(strings.TrimSpace(strings.TrimSuffix(line, "\r"))) {
			matches++
			if matches >= startLineThreshold {
				return volksbank.NewParser()
			}
		}
	}
	return delimited.NewParser()
}

// ListParsers returns the names of all built-in parsers in detection order.
func (r *Registry) ListParsers() []string {
	return []string{volksbank.NewParser().Name(), delimited.NewParser().Name()}
}
