// Package domain holds the canonical types shared by the kontoparse pipeline.
package domain

import (
	"fmt"
	"time"
)

// Category represents the budget category enum.
// Use ValidateCategory to ensure validity before use.
type Category string

const (
	CategoryGroceries Category = "groceries"
	CategoryDining    Category = "dining"
	CategorySalary    Category = "salary"
	CategoryRent      Category = "rent"
	CategoryUtilities Category = "utilities"
	CategoryTransport Category = "transport"
	CategoryShopping  Category = "shopping"
	CategoryInsurance Category = "insurance"
	CategoryHealth    Category = "health"
	CategoryLeisure   Category = "leisure"
	CategoryFees      Category = "fees"
	CategoryOther     Category = "other"
)

var validCategories = map[Category]struct{}{
	CategoryGroceries: {}, CategoryDining: {}, CategorySalary: {},
	CategoryRent: {}, CategoryUtilities: {}, CategoryTransport: {},
	CategoryShopping: {}, CategoryInsurance: {}, CategoryHealth: {},
	CategoryLeisure: {}, CategoryFees: {}, CategoryOther: {},
}

// ValidateCategory checks if category is valid
func ValidateCategory(category Category) bool {
	_, ok := validCategories[category]
	return ok
}

// Merchant rule confidence policy. A rule is created when a human first
// categorizes a transaction for a merchant key, and reinforced on every
// subsequent confirmation.
const (
	// RuleBaselineConfidence is the confidence a freshly created rule starts at.
	RuleBaselineConfidence = 60
	// RuleConfidenceStep is added on each human confirmation.
	RuleConfidenceStep = 10
	// RuleMaxConfidence caps the confidence score.
	RuleMaxConfidence = 100
)

// ParsedTransaction is the canonical parse output. It is produced by a parser
// and consumed immediately by the fingerprint builder and importer; it is never
// mutated after creation.
type ParsedTransaction struct {
	// BookingDate and ValueDate are ISO dates (YYYY-MM-DD), always fully
	// resolved: a parser must never emit a transaction with an omitted year.
	BookingDate string `json:"bookingDate"`
	ValueDate   string `json:"valueDate"`

	// Description is the free-text counterparty/purpose segment captured from
	// the transaction start line.
	Description string `json:"description"`

	// Amount sign convention: negative = debit (direction flag S),
	// positive = credit (direction flag H). Parsers must normalize to this
	// convention regardless of source representation.
	Amount float64 `json:"amount"`

	// MemoRaw is the newline-joined concatenation of all continuation lines
	// following the start line, in original order.
	MemoRaw string `json:"memoRaw"`
}

// MerchantRule maps a merchant key to a learned category with a confidence
// score. Rules are long-lived: created on first categorization of a key,
// reinforced (never deleted by this core) on every subsequent confirmation.
type MerchantRule struct {
	ID           string
	Pattern      string // normalized merchant key, unique per rule
	Category     string
	MerchantName string
	Confidence   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewMerchantRule creates a rule at baseline confidence.
func NewMerchantRule(id, pattern, category, merchantName string) (*MerchantRule, error) {
	if id == "" {
		return nil, fmt.Errorf("rule ID cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("rule pattern cannot be empty")
	}
	if category == "" {
		return nil, fmt.Errorf("rule category cannot be empty")
	}

	now := time.Now()
	return &MerchantRule{
		ID:           id,
		Pattern:      pattern,
		Category:     category,
		MerchantName: merchantName,
		Confidence:   RuleBaselineConfidence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Reinforce records one human confirmation: bumps confidence by the fixed step
// (capped) and overwrites category and display name with the confirmed values.
func (r *MerchantRule) Reinforce(category, merchantName string) {
	r.Confidence += RuleConfidenceStep
	if r.Confidence > RuleMaxConfidence {
		r.Confidence = RuleMaxConfidence
	}
	if category != "" {
		r.Category = category
	}
	if merchantName != "" {
		r.MerchantName = merchantName
	}
	r.UpdatedAt = time.Now()
}
