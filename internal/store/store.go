// Package store defines the persistence boundary for imported transactions
// and learned merchant rules. Backends map their native uniqueness and
// not-found failures onto the sentinel errors here so the importer can stay
// backend-agnostic.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
)

var (
	// ErrDuplicateFingerprint reports that a transaction with the same
	// fingerprint already exists in the account.
	ErrDuplicateFingerprint = errors.New("store: duplicate fingerprint")
	// ErrDuplicateRule reports that a rule for the merchant key already exists.
	ErrDuplicateRule = errors.New("store: duplicate rule pattern")
	// ErrNotFound reports that no matching row or document exists.
	ErrNotFound = errors.New("store: not found")
)

// Record is a persisted imported transaction.
type Record struct {
	ID           string
	AccountID    string
	BookingDate  string // YYYY-MM-DD
	ValueDate    string // YYYY-MM-DD
	Amount       float64
	Description  string
	MemoRaw      string
	Category     string // empty when no rule matched at import time
	MerchantName string
	MerchantKey  string // empty when normalization produced no key
	Fingerprint  string
	Source       string
	CreatedAt    time.Time
}

// Store persists imported transactions and learned merchant rules.
type Store interface {
	// CreateTransaction inserts a record. Returns ErrDuplicateFingerprint
	// when a record with the same fingerprint is already stored.
	CreateTransaction(ctx context.Context, rec *Record) error

	// ListTransactions returns an account's records ordered by booking date.
	ListTransactions(ctx context.Context, accountID string) ([]*Record, error)

	// FindRuleByKey returns the highest-confidence rule for a merchant key,
	// or ErrNotFound.
	FindRuleByKey(ctx context.Context, merchantKey string) (*domain.MerchantRule, error)

	// CreateRule inserts a new rule. Returns ErrDuplicateRule when a rule
	// with the same pattern already exists.
	CreateRule(ctx context.Context, rule *domain.MerchantRule) error

	// UpdateRule overwrites an existing rule by ID, or returns ErrNotFound.
	UpdateRule(ctx context.Context, rule *domain.MerchantRule) error

	Close() error
}
