package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/channel"
	"github.com/ledgermill/misflow/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import journal exports and sales registers",
	}

	cmd.AddCommand(importLedgerCmd())
	cmd.AddCommand(importSalesCmd())
	return cmd
}

func importLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger <file.csv>",
		Short: "Import a journal export",
		Long: `Import ledger entries from a CSV journal export.

Expected columns: date, voucher_id, account_name, notes, region_tag, debit, credit.
Rows whose content already exists in the database are skipped, so re-importing
the same export is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportLedger,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and report without saving")
	return cmd
}

func runImportLedger(cmd *cobra.Command, args []string) error {
	entries, err := parseLedgerCSV(args[0])
	if err != nil {
		return err
	}

	slog.Info("Parsed journal export", "file", args[0], "entries", len(entries))

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		slog.Info("Dry run mode, not saving to database")
		return nil
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := store.SaveEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}

	slog.Info("Import complete", "entries", len(entries))
	return nil
}

// parseLedgerCSV reads a journal export. Column order is fixed; a header row
// is detected and skipped.
func parseLedgerCSV(path string) ([]model.LedgerEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	bar := progressbar.DefaultBytes(info.Size(), "importing ledger")
	reader := csv.NewReader(io.TeeReader(file, bar))
	reader.FieldsPerRecord = 7

	var entries []model.LedgerEntry
	line := 0
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++

		if line == 1 && strings.EqualFold(record[0], "date") {
			continue
		}

		// Malformed rows are skipped with a warning, never fatal to the file.
		date, err := parseDate(record[0])
		if err != nil {
			slog.Warn("Skipping ledger row", "line", line, "error", err)
			skipped++
			continue
		}
		debit, err := parseAmount(record[5])
		if err != nil {
			slog.Warn("Skipping ledger row with invalid debit", "line", line, "error", err)
			skipped++
			continue
		}
		credit, err := parseAmount(record[6])
		if err != nil {
			slog.Warn("Skipping ledger row with invalid credit", "line", line, "error", err)
			skipped++
			continue
		}

		entries = append(entries, model.LedgerEntry{
			ID:          uuid.NewString(),
			Date:        date,
			VoucherID:   strings.TrimSpace(record[1]),
			AccountName: strings.TrimSpace(record[2]),
			Notes:       strings.TrimSpace(record[3]),
			RegionTag:   strings.TrimSpace(record[4]),
			Debit:       debit,
			Credit:      credit,
		})
	}

	_ = bar.Finish()
	if skipped > 0 {
		slog.Warn("Skipped malformed ledger rows", "file", path, "skipped", skipped)
	}
	return entries, nil
}

func importSalesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales <file.csv>",
		Short: "Import one state's sales register",
		Long: `Import a per-state sales register from CSV.

Expected columns: party, amount, tax_amount. The sales channel, transfer flag,
and destination region are detected from the party name; negative amounts are
treated as returns. Re-importing a state and period replaces its register.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportSales,
	}

	cmd.Flags().String("state", "", "State the register belongs to (required)")
	cmd.Flags().String("period", "", "Period key YYYY-MM (required)")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func runImportSales(cmd *cobra.Command, args []string) error {
	state, _ := cmd.Flags().GetString("state")
	periodKey, _ := cmd.Flags().GetString("period")
	if err := validatePeriodKey(periodKey); err != nil {
		return err
	}

	items, err := parseSalesCSV(args[0])
	if err != nil {
		return err
	}

	slog.Info("Parsed sales register",
		"file", args[0],
		"state", state,
		"period", periodKey,
		"lines", len(items))

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := store.SaveSalesItems(ctx, state, periodKey, items); err != nil {
		return fmt.Errorf("failed to save sales: %w", err)
	}

	slog.Info("Import complete", "state", state, "period", periodKey, "lines", len(items))
	return nil
}

// parseSalesCSV reads a sales register and enriches each row with detected
// channel, transfer, and destination-region attributes.
func parseSalesCSV(path string) ([]model.SalesLineItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3

	var items []model.SalesLineItem
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++

		if line == 1 && strings.EqualFold(record[0], "party") {
			continue
		}

		party := strings.TrimSpace(record[0])
		amount, err := parseAmount(record[1])
		if err != nil {
			slog.Warn("Skipping sales row with invalid amount", "line", line, "error", err)
			continue
		}
		taxAmount, err := parseAmount(record[2])
		if err != nil {
			slog.Warn("Skipping sales row with invalid tax amount", "line", line, "error", err)
			continue
		}

		isTransfer := channel.DetectTransfer(party)
		item := model.SalesLineItem{
			Party:      party,
			Channel:    channel.DetectChannel(party),
			Amount:     amount,
			TaxAmount:  taxAmount,
			IsTransfer: isTransfer,
			IsReturn:   !isTransfer && amount.IsNegative(),
		}
		if isTransfer {
			item.DestinationRegion = channel.DetectDestinationRegion(party)
		}

		items = append(items, item)
	}

	return items, nil
}

// parseAmount tolerates blanks and thousands separators.
func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}
