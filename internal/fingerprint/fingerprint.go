// Package fingerprint builds deterministic duplicate-detection hashes
// for imported transactions.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/merchant"
)

// Build hashes the identity of a transaction within an account. The hash
// is stable across reimports of the same statement: the counterparty part
// prefers the SEPA creditor ID and falls back to the normalized merchant
// key, so formatting noise in the memo does not change the result.
func Build(accountID string, tx domain.ParsedTransaction) string {
	cred := merchant.CreditorID(tx.MemoRaw)
	mref := merchant.MandateRef(tx.MemoRaw)

	stableCounterparty := cred
	if stableCounterparty == "" {
		stableCounterparty = merchant.Key(tx.Description + "\n" + tx.MemoRaw)
	}

	payload := strings.Join([]string{
		accountID,
		tx.ValueDate,
		fmt.Sprintf("%.2f", tx.Amount),
		stableCounterparty,
		mref,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
