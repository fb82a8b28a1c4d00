package fingerprint

import (
	"regexp"
	"testing"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/domain"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func baseTx() domain.ParsedTransaction {
	return domain.ParsedTransaction{
		BookingDate: "2024-03-01",
		ValueDate:   "2024-03-01",
		Description: "REWE SAGT DANKE",
		Amount:      -59.99,
		MemoRaw:     "Folgelastschrift EREF: 111122223333",
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("acct-1", baseTx())
	b := Build("acct-1", baseTx())

	if a != b {
		t.Fatalf("same input hashed differently: %s vs %s", a, b)
	}
	if !hexPattern.MatchString(a) {
		t.Fatalf("fingerprint %q is not 64 lowercase hex chars", a)
	}
}

func TestBuild_IgnoresReferenceNoise(t *testing.T) {
	other := baseTx()
	other.MemoRaw = "Folgelastschrift EREF: 999988887777"

	if Build("acct-1", baseTx()) != Build("acct-1", other) {
		t.Fatal("fingerprint changed although only the end-to-end reference differs")
	}
}

func TestBuild_SensitiveInputs(t *testing.T) {
	base := Build("acct-1", baseTx())

	tests := []struct {
		name   string
		mutate func(*domain.ParsedTransaction)
		acct   string
	}{
		{
			name: "different account",
			acct: "acct-2",
		},
		{
			name:   "different value date",
			acct:   "acct-1",
			mutate: func(tx *domain.ParsedTransaction) { tx.ValueDate = "2024-03-02" },
		},
		{
			name:   "different amount",
			acct:   "acct-1",
			mutate: func(tx *domain.ParsedTransaction) { tx.Amount = -60.00 },
		},
		{
			name:   "different counterparty",
			acct:   "acct-1",
			mutate: func(tx *domain.ParsedTransaction) { tx.Description = "EDEKA" },
		},
		{
			name:   "different mandate reference",
			acct:   "acct-1",
			mutate: func(tx *domain.ParsedTransaction) { tx.MemoRaw += " MREF: NEU-2024" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := baseTx()
			if tt.mutate != nil {
				tt.mutate(&tx)
			}
			if Build(tt.acct, tx) == base {
				t.Error("fingerprint did not change")
			}
		})
	}
}

func TestBuild_PrefersCreditorID(t *testing.T) {
	withCred := baseTx()
	withCred.MemoRaw = "CRED: DE98ZZZ09999999999 Einkauf"

	renamed := withCred
	renamed.Description = "REWE Markt GmbH Filiale Bonn"

	// The creditor ID pins the counterparty, so a renamed merchant with the
	// same creditor still collides.
	if Build("acct-1", withCred) != Build("acct-1", renamed) {
		t.Fatal("fingerprints differ despite identical creditor ID")
	}
}

func TestBuild_BookingDateIrrelevant(t *testing.T) {
	late := baseTx()
	late.BookingDate = "2024-03-05"

	if Build("acct-1", baseTx()) != Build("acct-1", late) {
		t.Fatal("fingerprint depends on the booking date")
	}
}
