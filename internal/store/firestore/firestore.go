// Package firestore implements the store on Google Cloud Firestore.
// Transactions are keyed by their fingerprint and rules by their merchant
// key, so Firestore's create-only document semantics enforce the same
// uniqueness the SQLite backend gets from its UNIQUE constraints.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/store"
)

const (
	transactionsCollection = "konto-transactions"
	rulesCollection        = "konto-merchant-rules"
)

// Store implements store.Store on Firestore.
type Store struct {
	client    *firestore.Client
	projectID string
}

// Open creates a Firestore-backed store for the given project, using
// Application Default Credentials.
func Open(ctx context.Context, projectID string) (*Store, error) {
	conf := &firebase.Config{ProjectID: projectID}

	app, err := firebase.NewApp(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &Store{client: client, projectID: projectID}, nil
}

// Close closes the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

// record mirrors store.Record with firestore field tags.
type record struct {
	ID           string    `firestore:"id"`
	AccountID    string    `firestore:"accountId"`
	BookingDate  string    `firestore:"bookingDate"`
	ValueDate    string    `firestore:"valueDate"`
	Amount       float64   `firestore:"amount"`
	Description  string    `firestore:"description"`
	MemoRaw      string    `firestore:"memoRaw"`
	Category     string    `firestore:"category,omitempty"`
	MerchantName string    `firestore:"merchantName,omitempty"`
	MerchantKey  string    `firestore:"merchantKey,omitempty"`
	Fingerprint  string    `firestore:"fingerprint"`
	Source       string    `firestore:"source"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type ruleDoc struct {
	ID           string    `firestore:"id"`
	Pattern      string    `firestore:"pattern"`
	Category     string    `firestore:"category"`
	MerchantName string    `firestore:"merchantName,omitempty"`
	Confidence   int       `firestore:"confidence"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// CreateTransaction creates the document keyed by the record's fingerprint.
// An existing document with the same key maps to store.ErrDuplicateFingerprint.
func (s *Store) CreateTransaction(ctx context.Context, rec *store.Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	doc := record{
		ID:           rec.ID,
		AccountID:    rec.AccountID,
		BookingDate:  rec.BookingDate,
		ValueDate:    rec.ValueDate,
		Amount:       rec.Amount,
		Description:  rec.Description,
		MemoRaw:      rec.MemoRaw,
		Category:     rec.Category,
		MerchantName: rec.MerchantName,
		MerchantKey:  rec.MerchantKey,
		Fingerprint:  rec.Fingerprint,
		Source:       rec.Source,
		CreatedAt:    createdAt,
	}

	_, err := s.client.Collection(transactionsCollection).Doc(rec.Fingerprint).Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		return store.ErrDuplicateFingerprint
	}
	if err != nil {
		return fmt.Errorf("failed to create transaction document: %w", err)
	}
	return nil
}

// ListTransactions returns an account's records ordered by booking date.
func (s *Store) ListTransactions(ctx context.Context, accountID string) ([]*store.Record, error) {
	iter := s.client.Collection(transactionsCollection).
		Where("accountId", "==", accountID).
		OrderBy("bookingDate", firestore.Asc).
		Documents(ctx)

	var records []*store.Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transactions for account %s: %w", accountID, err)
		}

		var doc record
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse transaction document: %w", err)
		}
		records = append(records, &store.Record{
			ID:           doc.ID,
			AccountID:    doc.AccountID,
			BookingDate:  doc.BookingDate,
			ValueDate:    doc.ValueDate,
			Amount:       doc.Amount,
			Description:  doc.Description,
			MemoRaw:      doc.MemoRaw,
			Category:     doc.Category,
			MerchantName: doc.MerchantName,
			MerchantKey:  doc.MerchantKey,
			Fingerprint:  doc.Fingerprint,
			Source:       doc.Source,
			CreatedAt:    doc.CreatedAt,
		})
	}

	return records, nil
}

// FindRuleByKey loads the rule document keyed by the merchant key.
func (s *Store) FindRuleByKey(ctx context.Context, merchantKey string) (*domain.MerchantRule, error) {
	snap, err := s.client.Collection(rulesCollection).Doc(merchantKey).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule for key %q: %w", merchantKey, err)
	}

	var doc ruleDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule document: %w", err)
	}

	return &domain.MerchantRule{
		ID:           doc.ID,
		Pattern:      doc.Pattern,
		Category:     doc.Category,
		MerchantName: doc.MerchantName,
		Confidence:   doc.Confidence,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

// CreateRule creates the rule document keyed by the rule's pattern.
func (s *Store) CreateRule(ctx context.Context, rule *domain.MerchantRule) error {
	_, err := s.client.Collection(rulesCollection).Doc(rule.Pattern).Create(ctx, toRuleDoc(rule))
	if status.Code(err) == codes.AlreadyExists {
		return store.ErrDuplicateRule
	}
	if err != nil {
		return fmt.Errorf("failed to create rule document: %w", err)
	}
	return nil
}

// UpdateRule overwrites the rule document keyed by the rule's pattern.
func (s *Store) UpdateRule(ctx context.Context, rule *domain.MerchantRule) error {
	docRef := s.client.Collection(rulesCollection).Doc(rule.Pattern)

	if _, err := docRef.Get(ctx); status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to load rule for update: %w", err)
	}

	if _, err := docRef.Set(ctx, toRuleDoc(rule)); err != nil {
		return fmt.Errorf("failed to update rule document: %w", err)
	}
	return nil
}

func toRuleDoc(rule *domain.MerchantRule) ruleDoc {
	return ruleDoc{
		ID:           rule.ID,
		Pattern:      rule.Pattern,
		Category:     rule.Category,
		MerchantName: rule.MerchantName,
		Confidence:   rule.Confidence,
		CreatedAt:    rule.CreatedAt,
		UpdatedAt:    rule.UpdatedAt,
	}
}
