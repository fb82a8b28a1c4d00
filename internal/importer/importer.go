// Package importer reconciles parsed transactions into a store: it builds
// fingerprints, skips duplicates, resolves categories from learned and seed
// rules, and records human categorizations back into the rule set.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/fingerprint"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/merchant"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/rules"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/store"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/validate"
)

// maxMerchantNameLen bounds stored display names.
const maxMerchantNameLen = 120

// ErrImportFailed is returned when a batch aborts on an unexpected store
// failure. The cause is logged, not exposed: partial imports report zero
// successes so a retry of the whole batch is always safe.
var ErrImportFailed = errors.New("import failed, no transactions were recorded")

// Importer coordinates one import pipeline against a store.
type Importer struct {
	store store.Store
	seed  *rules.Engine
	log   *slog.Logger
	newID func() string
}

// New creates an importer. The seed engine may be nil; categorization then
// relies on learned rules only.
func New(st store.Store, seed *rules.Engine, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		store: st,
		seed:  seed,
		log:   log,
		newID: uuid.NewString,
	}
}

// Result summarizes one import batch.
type Result struct {
	Imported          int
	DuplicatesSkipped int
}

// Import validates and stores a batch of parsed transactions for an account.
// Duplicates (same fingerprint) are skipped and counted, never an error.
// Reimporting an identical batch is idempotent: every transaction lands in
// DuplicatesSkipped. Any other store failure aborts the batch with a Result
// reporting zero successes.
func (im *Importer) Import(ctx context.Context, accountID string, txns []domain.ParsedTransaction, source string) (*Result, error) {
	if validation := validate.ValidateBatch(accountID, txns); !validation.Valid() {
		return &Result{}, validation.Err()
	}

	records := make([]*store.Record, 0, len(txns))
	for _, txn := range txns {
		merchantKey := merchant.Key(txn.Description + "\n" + txn.MemoRaw)
		category, merchantName := im.resolveCategory(ctx, merchantKey)

		records = append(records, &store.Record{
			ID:           im.newID(),
			AccountID:    accountID,
			BookingDate:  txn.BookingDate,
			ValueDate:    txn.ValueDate,
			Amount:       txn.Amount,
			Description:  txn.Description,
			MemoRaw:      txn.MemoRaw,
			Category:     category,
			MerchantName: merchantName,
			MerchantKey:  merchantKey,
			Fingerprint:  fingerprint.Build(accountID, txn),
			Source:       source,
			CreatedAt:    time.Now(),
		})
	}

	result := &Result{}
	for _, rec := range records {
		err := im.store.CreateTransaction(ctx, rec)
		switch {
		case errors.Is(err, store.ErrDuplicateFingerprint):
			result.DuplicatesSkipped++
		case err != nil:
			im.log.Error("import insert failed",
				"accountId", accountID,
				"fingerprint", rec.Fingerprint,
				"error", err)
			return &Result{}, ErrImportFailed
		default:
			result.Imported++
		}
	}

	im.log.Info("import batch finished",
		"accountId", accountID,
		"imported", result.Imported,
		"duplicatesSkipped", result.DuplicatesSkipped)
	return result, nil
}

// resolveCategory finds the category for a merchant key at import time:
// learned rules win, seed rules fill the cold-start gap, otherwise the
// record stays uncategorized.
func (im *Importer) resolveCategory(ctx context.Context, merchantKey string) (category, merchantName string) {
	if merchantKey == "" {
		return "", ""
	}

	rule, err := im.store.FindRuleByKey(ctx, merchantKey)
	if err == nil {
		return rule.Category, rule.MerchantName
	}
	if !errors.Is(err, store.ErrNotFound) {
		im.log.Warn("rule lookup failed", "merchantKey", merchantKey, "error", err)
		return "", ""
	}

	if im.seed != nil {
		if match, ok := im.seed.Match(merchantKey); ok {
			return string(match.Category), match.MerchantName
		}
	}
	return "", ""
}

// RecordCategorization learns from one human confirmation: it reinforces the
// existing rule for the merchant key or creates a fresh one at baseline
// confidence. An empty merchant key carries nothing to learn from and is a
// no-op. Losing a create race to a concurrent writer degrades to a
// reinforcement of the winner's rule.
func (im *Importer) RecordCategorization(ctx context.Context, merchantKey, category, merchantName string) error {
	if merchantKey == "" {
		return nil
	}
	if !domain.ValidateCategory(domain.Category(category)) {
		return fmt.Errorf("invalid category %q", category)
	}

	merchantName = clipMerchantName(merchantName)

	rule, err := im.store.FindRuleByKey(ctx, merchantKey)
	if err == nil {
		rule.Reinforce(category, merchantName)
		return im.store.UpdateRule(ctx, rule)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up rule for key %q: %w", merchantKey, err)
	}

	fresh, err := domain.NewMerchantRule(im.newID(), merchantKey, category, merchantName)
	if err != nil {
		return err
	}

	err = im.store.CreateRule(ctx, fresh)
	if errors.Is(err, store.ErrDuplicateRule) {
		existing, findErr := im.store.FindRuleByKey(ctx, merchantKey)
		if findErr != nil {
			return fmt.Errorf("failed to reload rule for key %q: %w", merchantKey, findErr)
		}
		existing.Reinforce(category, merchantName)
		return im.store.UpdateRule(ctx, existing)
	}
	return err
}

func clipMerchantName(name string) string {
	if len(name) > maxMerchantNameLen {
		return name[:maxMerchantNameLen]
	}
	return name
}
