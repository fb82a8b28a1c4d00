// Package sqlite implements the store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	booking_date TEXT NOT NULL,
	value_date TEXT NOT NULL,
	amount REAL NOT NULL,
	description TEXT NOT NULL,
	memo_raw TEXT,
	category TEXT,
	merchant_name TEXT,
	merchant_key TEXT,
	fingerprint TEXT NOT NULL,
	source TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE(fingerprint)
);

CREATE TABLE IF NOT EXISTS merchant_rules (
	id TEXT PRIMARY KEY,
	pattern TEXT NOT NULL,
	category TEXT NOT NULL,
	merchant_name TEXT,
	confidence INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE(pattern)
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id, booking_date);
`

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTransaction inserts a record, mapping the fingerprint uniqueness
// violation onto store.ErrDuplicateFingerprint.
func (s *Store) CreateTransaction(ctx context.Context, rec *store.Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, account_id, booking_date, value_date, amount, description,
			memo_raw, category, merchant_name, merchant_key, fingerprint,
			source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AccountID, rec.BookingDate, rec.ValueDate, rec.Amount,
		rec.Description, rec.MemoRaw, nullable(rec.Category),
		nullable(rec.MerchantName), nullable(rec.MerchantKey), rec.Fingerprint,
		rec.Source, createdAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: transactions.fingerprint") {
			return store.ErrDuplicateFingerprint
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns an account's records ordered by booking date.
func (s *Store) ListTransactions(ctx context.Context, accountID string) ([]*store.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, booking_date, value_date, amount, description,
		       memo_raw, category, merchant_name, merchant_key, fingerprint,
		       source, created_at
		FROM transactions
		WHERE account_id = ?
		ORDER BY booking_date, created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var records []*store.Record
	for rows.Next() {
		var rec store.Record
		var memoRaw, category, merchantName, merchantKey sql.NullString
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.BookingDate, &rec.ValueDate,
			&rec.Amount, &rec.Description, &memoRaw, &category, &merchantName,
			&merchantKey, &rec.Fingerprint, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		rec.MemoRaw = memoRaw.String
		rec.Category = category.String
		rec.MerchantName = merchantName.String
		rec.MerchantKey = merchantKey.String
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return records, nil
}

// FindRuleByKey returns the highest-confidence rule for a merchant key.
func (s *Store) FindRuleByKey(ctx context.Context, merchantKey string) (*domain.MerchantRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, pattern, category, merchant_name, confidence, created_at, updated_at
		FROM merchant_rules
		WHERE pattern = ?
		ORDER BY confidence DESC
		LIMIT 1`, merchantKey)

	var rule domain.MerchantRule
	var merchantName sql.NullString
	err := row.Scan(&rule.ID, &rule.Pattern, &rule.Category, &merchantName,
		&rule.Confidence, &rule.CreatedAt, &rule.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rule for key %q: %w", merchantKey, err)
	}
	rule.MerchantName = merchantName.String

	return &rule, nil
}

// CreateRule inserts a new rule, mapping the pattern uniqueness violation
// onto store.ErrDuplicateRule.
func (s *Store) CreateRule(ctx context.Context, rule *domain.MerchantRule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_rules (id, pattern, category, merchant_name, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Pattern, rule.Category, nullable(rule.MerchantName),
		rule.Confidence, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: merchant_rules.pattern") {
			return store.ErrDuplicateRule
		}
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

// UpdateRule overwrites an existing rule by ID.
func (s *Store) UpdateRule(ctx context.Context, rule *domain.MerchantRule) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE merchant_rules
		SET category = ?, merchant_name = ?, confidence = ?, updated_at = ?
		WHERE id = ?`,
		rule.Category, nullable(rule.MerchantName), rule.Confidence,
		rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule %s: %w", rule.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for rule %s: %w", rule.ID, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// nullable maps "" onto NULL so optional columns stay queryable as missing.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
