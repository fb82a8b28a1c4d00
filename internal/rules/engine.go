// Package rules provides a YAML-based seed engine for merchant categorization.
// Seed rules fill the cold-start gap: they match normalized merchant keys and
// suggest a starter category and display name until a learned rule for the key
// exists in the store.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// MatchType defines how patterns are matched against merchant keys
type MatchType string

const (
	// MatchTypeExact requires the pattern to match the entire merchant key exactly
	MatchTypeExact MatchType = "exact"
	// MatchTypeContains requires the pattern to be a substring of the merchant key
	MatchTypeContains MatchType = "contains"
)

// Rule represents a single seed categorization rule.
//
// Rules should be created via:
//   - YAML loading: NewEngine, LoadEmbedded, LoadFromFile
//   - Programmatic construction: NewRule constructor
//
// Both methods validate all invariants:
//   - Priority in range [0, 999]
//   - Pattern must not be empty after trimming
//   - MatchType must be "exact" or "contains"
//   - Category must be a valid domain.Category
//
// Direct struct construction bypasses validation; fields are exported for
// YAML unmarshaling and testing.
type Rule struct {
	Name         string    `yaml:"name"`
	Pattern      string    `yaml:"pattern"`
	MatchType    MatchType `yaml:"match_type"`
	Priority     int       `yaml:"priority"`
	Category     string    `yaml:"category"`
	MerchantName string    `yaml:"merchant_name"`
}

// NewRule creates a validated rule for programmatic construction.
// YAML loading via NewEngine performs equivalent validation automatically.
func NewRule(name, pattern string, matchType MatchType, priority int, category, merchantName string) (*Rule, error) {
	if !domain.ValidateCategory(domain.Category(category)) {
		return nil, fmt.Errorf("invalid category %q", category)
	}

	if priority < 0 || priority > 999 {
		return nil, fmt.Errorf("priority must be in [0,999], got %d", priority)
	}

	if matchType != MatchTypeExact && matchType != MatchTypeContains {
		return nil, fmt.Errorf("invalid match_type %q (must be 'exact' or 'contains')", matchType)
	}

	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	return &Rule{
		Name:         name,
		Pattern:      pattern,
		MatchType:    matchType,
		Priority:     priority,
		Category:     category,
		MerchantName: merchantName,
	}, nil
}

// RuleSet represents the top-level YAML structure
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Engine performs rule matching on merchant keys
type Engine struct {
	rules []Rule // Sorted by priority (highest first)
}

// MatchResult contains the result of applying a rule
type MatchResult struct {
	Category     domain.Category
	MerchantName string
	RuleName     string // For debugging
}

// NewEngine creates a rules engine from YAML data
func NewEngine(rulesData []byte) (*Engine, error) {
	var ruleSet RuleSet
	if err := yaml.Unmarshal(rulesData, &ruleSet); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	for i, rule := range ruleSet.Rules {
		if !domain.ValidateCategory(domain.Category(rule.Category)) {
			return nil, fmt.Errorf("rule %d (%s): invalid category %q", i, rule.Name, rule.Category)
		}

		if rule.Priority < 0 || rule.Priority > 999 {
			return nil, fmt.Errorf("rule %d (%s): priority must be in [0,999], got %d", i, rule.Name, rule.Priority)
		}

		if rule.MatchType != MatchTypeExact && rule.MatchType != MatchTypeContains {
			return nil, fmt.Errorf("rule %d (%s): invalid match_type %q (must be 'exact' or 'contains')", i, rule.Name, rule.MatchType)
		}

		if strings.TrimSpace(rule.Pattern) == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern cannot be empty", i, rule.Name)
		}
	}

	// Sort rules by priority (highest first). Use SliceStable to preserve YAML file
	// order for rules with equal priority (guarantees deterministic matching).
	sortedRules := make([]Rule, len(ruleSet.Rules))
	copy(sortedRules, ruleSet.Rules)
	sort.SliceStable(sortedRules, func(i, j int) bool {
		return sortedRules[i].Priority > sortedRules[j].Priority
	})

	return &Engine{
		rules: sortedRules,
	}, nil
}

// LoadEmbedded loads the embedded rules.yaml file
func LoadEmbedded() (*Engine, error) {
	engine, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules (possible binary corruption): %w", err)
	}
	return engine, nil
}

// LoadFromFile loads rules from a filesystem path
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	engine, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// Match applies rules to a normalized merchant key and returns the first match.
// Rules are evaluated in priority order (highest first). Rules with equal
// priority are evaluated in their original YAML file order (stable sort in
// NewEngine preserves this ordering). Returns (nil, false) if no rules match.
func (e *Engine) Match(merchantKey string) (*MatchResult, bool) {
	normalizedKey := strings.ToLower(strings.TrimSpace(merchantKey))
	if normalizedKey == "" {
		return nil, false
	}

	for _, rule := range e.rules {
		normalizedPattern := strings.ToLower(strings.TrimSpace(rule.Pattern))

		matched := false
		switch rule.MatchType {
		case MatchTypeExact:
			matched = normalizedKey == normalizedPattern
		case MatchTypeContains:
			matched = strings.Contains(normalizedKey, normalizedPattern)
		}

		if matched {
			return &MatchResult{
				Category:     domain.Category(rule.Category),
				MerchantName: rule.MerchantName,
				RuleName:     rule.Name,
			}, true
		}
	}

	return nil, false
}

// GetRules returns a copy of the rules for inspection/debugging.
// Rules are returned in priority order (highest first). For equal priorities,
// rules appear in YAML file order (stable sort).
func (e *Engine) GetRules() []Rule {
	result := make([]Rule, len(e.rules))
	copy(result, e.rules)
	return result
}
