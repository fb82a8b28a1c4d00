// Package validate checks import batches before they reach a store.
package validate

import (
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
)

// ValidationResult contains all validation errors and warnings for a batch
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a validation error
type ValidationError struct {
	Entity  string // "batch" or "transaction"
	Index   int    // position in the batch, -1 for batch-level errors
	Field   string
	Value   string
	Message string
}

// ValidationWarning represents a non-critical validation issue
type ValidationWarning struct {
	Entity  string
	Index   int
	Field   string
	Value   string
	Message string
}

// Valid reports whether the result contains no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err converts the first validation error into a Go error, or nil.
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	first := r.Errors[0]
	if first.Index >= 0 {
		return fmt.Errorf("%s %d: %s", first.Entity, first.Index, first.Message)
	}
	return fmt.Errorf("%s: %s", first.Entity, first.Message)
}

// ValidateBatch checks an import batch: the account reference must be set,
// the batch non-empty, and every transaction must carry fully resolved ISO
// dates. Zero amounts are flagged as warnings only; a reversal booking can
// legitimately be zero.
func ValidateBatch(accountID string, txns []domain.ParsedTransaction) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	if accountID == "" {
		result.Errors = append(result.Errors, ValidationError{
			Entity:  "batch",
			Index:   -1,
			Field:   "AccountID",
			Value:   "",
			Message: "account ID cannot be empty",
		})
	}

	if len(txns) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Entity:  "batch",
			Index:   -1,
			Field:   "Transactions",
			Value:   "",
			Message: "batch contains no transactions",
		})
	}

	for i, txn := range txns {
		if _, err := time.Parse("2006-01-02", txn.BookingDate); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				Index:   i,
				Field:   "BookingDate",
				Value:   txn.BookingDate,
				Message: fmt.Sprintf("invalid booking date %q (expected YYYY-MM-DD)", txn.BookingDate),
			})
		}
		if _, err := time.Parse("2006-01-02", txn.ValueDate); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				Index:   i,
				Field:   "ValueDate",
				Value:   txn.ValueDate,
				Message: fmt.Sprintf("invalid value date %q (expected YYYY-MM-DD)", txn.ValueDate),
			})
		}
		if txn.Amount == 0 {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Entity:  "transaction",
				Index:   i,
				Field:   "Amount",
				Value:   "0",
				Message: "amount is zero",
			})
		}
	}

	return result
}
