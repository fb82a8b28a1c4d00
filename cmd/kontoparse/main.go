package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rumor-ml/commons.systems/kontoparse/internal/config"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/importer"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/logger"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/parser"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/registry"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/rules"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/store"
	fsstore "github.com/rumor-ml/commons.systems/kontoparse/internal/store/firestore"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/store/sqlite"
	"github.com/rumor-ml/commons.systems/kontoparse/internal/ui"
)

const (
	version = "0.1.0"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")

	// Core CLI flags
	inputFile = flag.String("input", "", "Statement text file to import (required)")
	accountID = flag.String("account", "", "Account the statement belongs to (required unless -dry-run)")
	yearFlag  = flag.Int("year", 0, "Statement year override, 1900-2099 (default: infer from header)")
	rulesFile = flag.String("rules", "", "Custom seed rules file (default: embedded rules)")
	dryRun    = flag.Bool("dry-run", false, "Parse and show transactions without storing")
	verbose   = flag.Bool("verbose", false, "Show detailed parsing logs")
)

// deAmount formats amounts with German digit grouping for terminal output.
var deAmount = message.NewPrinter(language.German)

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `kontoparse - German bank statement importer

Usage:
  kontoparse [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Inspect a statement without storing anything
  kontoparse -input auszug_03_2024.txt -dry-run

  # Import a statement into an account
  kontoparse -input auszug_03_2024.txt -account girokonto

  # Force the statement year when the header is missing
  kontoparse -input auszug.txt -account girokonto -year 2023

`)
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Printf("kontoparse version %s\n", version)
		os.Exit(0)
	}

	// Validate required flags
	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -input flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if !*dryRun && *accountID == "" {
		fmt.Fprintf(os.Stderr, "Error: -account flag is required unless -dry-run is set\n\n")
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	if !*verbose {
		ui.Header("Importing Bank Statement")
		ui.Step(1, 4, "Reading statement")
	} else {
		fmt.Fprintf(os.Stderr, "Reading statement: %s\n", *inputFile)
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		return fmt.Errorf("failed to read statement %s: %w", *inputFile, err)
	}
	text := string(data)

	opts := parser.Options{YearOverride: *yearFlag}
	if *yearFlag != 0 && !opts.YearOverrideValid() {
		return fmt.Errorf("invalid -year %d (must be between 1900 and 2099)", *yearFlag)
	}

	if !*verbose {
		ui.Step(2, 4, "Detecting format and parsing")
	}

	reg := registry.New()
	p := reg.FindParser(text)
	if *verbose {
		fmt.Fprintf(os.Stderr, "Registered parsers: %v\n", reg.ListParsers())
		fmt.Fprintf(os.Stderr, "Detected format: %s\n", p.Name())
	}

	parsed, err := p.Parse(ctx, text, opts)
	if err != nil {
		return fmt.Errorf("parse failed (%s parser): %w", p.Name(), err)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Parsed %d transactions, discarded %d malformed records\n",
			len(parsed.Transactions), parsed.Discarded)
	} else {
		ui.Success(fmt.Sprintf("Parsed %d transactions (%s format)", len(parsed.Transactions), p.Name()))
		if parsed.Discarded > 0 {
			ui.Warning(fmt.Sprintf("Discarded %d malformed records", parsed.Discarded))
		}
	}

	if *dryRun {
		printTransactions(parsed)
		fmt.Printf("\nDry run complete. Would import %d transactions.\n", len(parsed.Transactions))
		return nil
	}

	if !*verbose {
		ui.Step(3, 4, "Opening store and rules")
	}

	engine, err := loadRules()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if !*verbose {
		ui.Step(4, 4, "Importing transactions")
	}

	im := importer.New(st, engine, logger.L)
	result, err := im.Import(ctx, *accountID, parsed.Transactions, cfg.Source)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	ui.Success(fmt.Sprintf("Imported %d transactions into %s", result.Imported, *accountID))
	if result.DuplicatesSkipped > 0 {
		ui.Info(fmt.Sprintf("Skipped %d duplicates (already imported)", result.DuplicatesSkipped))
	}

	var total float64
	for _, txn := range parsed.Transactions {
		total += txn.Amount
	}
	ui.Info("Statement total: " + deAmount.Sprintf("%.2f €", total))

	return nil
}

func loadRules() (*rules.Engine, error) {
	if *rulesFile != "" {
		engine, err := rules.LoadFromFile(*rulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules file: %w", err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Loaded %d custom rules from %s\n", len(engine.GetRules()), *rulesFile)
		}
		return engine, nil
	}

	engine, err := rules.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d embedded rules\n", len(engine.GetRules()))
	}
	return engine, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendFirestore:
		st, err := fsstore.Open(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to open Firestore store: %w", err)
		}
		return st, nil
	default:
		st, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		return st, nil
	}
}

func printTransactions(parsed *parser.Result) {
	fmt.Println()
	for _, txn := range parsed.Transactions {
		amount := deAmount.Sprintf("%10.2f €", txn.Amount)
		if txn.Amount < 0 {
			amount = ui.YellowText(amount)
		} else {
			amount = ui.BlueText(amount)
		}
		fmt.Printf("  %s  %s  %s\n", txn.BookingDate, amount, txn.Description)
	}
}
