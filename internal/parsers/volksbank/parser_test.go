package volksbank

import (
	"context"
	"testing"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/parser"
)

const sampleStatement = `Volksbank Musterstadt eG
Kontoauszug 03/2024
Blatt 1 von 2

01.03. 01.03. REWE SAGT DANKE 59,99 S
Lastschrift
EREF: 123456789012 MREF: ABC-77
02.03. 02.03. GEHALT MUSTER GMBH 2.500,00 H
Lohn/Gehalt
03.03. 04.03. STADTWERKE MUSTERSTADT 120,50 S
Abschlag Strom
Übertrag 2.319,51 H
04.03. 04.03. AMAZON EU S.A.R.L. 34,90 S
`

func TestParse_Statement(t *testing.T) {
	result, err := NewParser().Parse(context.Background(), sampleStatement, parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Transactions) != 4 {
		t.Fatalf("Parse() returned %d transactions, want 4", len(result.Transactions))
	}

	first := result.Transactions[0]
	if first.BookingDate != "2024-03-01" || first.ValueDate != "2024-03-01" {
		t.Errorf("first transaction dates = %s/%s, want 2024-03-01/2024-03-01", first.BookingDate, first.ValueDate)
	}
	if first.Description != "REWE SAGT DANKE" {
		t.Errorf("first transaction description = %q", first.Description)
	}
	if first.Amount != -59.99 {
		t.Errorf("first transaction amount = %v, want -59.99", first.Amount)
	}
	if first.MemoRaw != "Lastschrift\nEREF: 123456789012 MREF: ABC-77" {
		t.Errorf("first transaction memoRaw = %q", first.MemoRaw)
	}

	second := result.Transactions[1]
	if second.Amount != 2500.00 {
		t.Errorf("credit amount = %v, want 2500.00", second.Amount)
	}

	third := result.Transactions[2]
	if third.ValueDate != "2024-03-04" {
		t.Errorf("value date = %s, want 2024-03-04", third.ValueDate)
	}
	// The carry-forward line is neither a start line nor a memo line.
	if third.MemoRaw != "Abschlag Strom" {
		t.Errorf("memoRaw = %q, carry-forward marker must be skipped", third.MemoRaw)
	}

	fourth := result.Transactions[3]
	if fourth.MemoRaw != "" {
		t.Errorf("last transaction memoRaw = %q, want empty", fourth.MemoRaw)
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	text := `Kontoauszug 01/2024
05.01. 05.01. DRITTER 3,00 S
memo
memo
memo
02.01. 02.01. ERSTER 1,00 S
01.01. 01.01. ZWEITER 2,00 S
memo
`
	result, err := NewParser().Parse(context.Background(), text, parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"DRITTER", "ERSTER", "ZWEITER"}
	if len(result.Transactions) != len(want) {
		t.Fatalf("Parse() returned %d transactions, want %d", len(result.Transactions), len(want))
	}
	for i, desc := range want {
		if result.Transactions[i].Description != desc {
			t.Errorf("transaction %d description = %q, want %q (input order must be preserved)", i, result.Transactions[i].Description, desc)
		}
	}
}

func TestParse_ExplicitYearPrecedence(t *testing.T) {
	text := `Kontoauszug 03/2024
15.03.2023 16.03.2023 MIETE MUELLER 850,00 S
`
	result, err := NewParser().Parse(context.Background(), text, parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Transactions) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(result.Transactions))
	}
	txn := result.Transactions[0]
	if txn.BookingDate != "2023-03-15" || txn.ValueDate != "2023-03-16" {
		t.Errorf("explicit year ignored: got %s/%s, want 2023-03-15/2023-03-16", txn.BookingDate, txn.ValueDate)
	}
}

func TestParse_YearOverride(t *testing.T) {
	text := "01.02. 01.02. BAECKEREI SCHMIDT 4,50 S\n"

	tests := []struct {
		name     string
		override int
		want     string
	}{
		{name: "valid override", override: 2019, want: "2019-02-01"},
		{name: "out of range ignored", override: 3000, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewParser().Parse(context.Background(), text, parser.Options{YearOverride: tt.override})
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(result.Transactions) != 1 {
				t.Fatalf("Parse() returned %d transactions, want 1", len(result.Transactions))
			}
			got := result.Transactions[0].BookingDate
			if tt.want != "" && got != tt.want {
				t.Errorf("booking date = %s, want %s", got, tt.want)
			}
			// Out-of-range override falls back to inference; with no header
			// candidates that is the current year, so only check it differs
			// from the bogus override.
			if tt.want == "" && got[:4] == "3000" {
				t.Errorf("out-of-range override was applied: %s", got)
			}
		})
	}
}

func TestParse_InvalidRecordsDiscarded(t *testing.T) {
	text := `Kontoauszug 03/2024
32.03. 01.03. KAPUTTES DATUM 10,00 S
verwaiste memozeile
01.03. 01.03. GUELTIG 10,00 S
02.03. 02.03. KAPUTTER BETRAG 1,2,3 S
03.03. 03.03. AUCH GUELTIG 5,00 H
`
	result, err := NewParser().Parse(context.Background(), text, parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("Parse() returned %d transactions, want 2", len(result.Transactions))
	}
	if result.Transactions[0].Description != "GUELTIG" || result.Transactions[1].Description != "AUCH GUELTIG" {
		t.Errorf("unexpected surviving transactions: %q, %q", result.Transactions[0].Description, result.Transactions[1].Description)
	}
	if result.Discarded != 2 {
		t.Errorf("Discarded = %d, want 2", result.Discarded)
	}
	// A memo line after a discarded start line must not attach to anything.
	if result.Transactions[0].MemoRaw != "" {
		t.Errorf("memo after discarded record leaked: %q", result.Transactions[0].MemoRaw)
	}
}

func TestParse_NoStartLines(t *testing.T) {
	result, err := NewParser().Parse(context.Background(), "nur Kopfzeilen\nkeine Buchungen\n", parser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(result.Transactions) != 0 {
		t.Errorf("Parse() returned %d transactions, want 0", len(result.Transactions))
	}
}

func TestParse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewParser().Parse(ctx, sampleStatement, parser.Options{}); err == nil {
		t.Error("Parse() with cancelled context should fail")
	}
}

func TestIsStartLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "01.03. 01.03. REWE SAGT DANKE 59,99 S", want: true},
		{line: "15.03.2024 16.03.2024 MIETE 850,00 S", want: true},
		// Only the date-token prefix is judged: a record whose amount or
		// direction flag is mangled still counts as transaction data.
		{line: "01.03. 01.03. OHNE BETRAG S", want: true},
		{line: "02.03. 02.03. KAPUTTER BETRAG 1,2,3 S", want: true},
		{line: "Lastschrift EREF: 12345", want: false},
		{line: "Übertrag 2.319,51 H", want: false},
		{line: "2024-03-08;-4,50;Bäckerei Schmidt;Brötchen", want: false},
	}

	for _, tt := range tests {
		if got := IsStartLine(tt.line); got != tt.want {
			t.Errorf("IsStartLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
