package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/ledgermill/misflow/internal/report"
)

func combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine <period>...",
		Short: "Consolidate several periods into one report",
		Long: `Merge stored per-period reports into one consolidated view, for
example a quarter or a fiscal year. Figures are summed and every percentage is
recomputed from the combined net revenue; stock snapshots follow opening-from-
first, closing-from-last semantics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCombine,
	}
}

func runCombine(cmd *cobra.Command, args []string) error {
	for _, periodKey := range args {
		if err := validatePeriodKey(periodKey); err != nil {
			return err
		}
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

	records := make([]model.MISRecord, 0, len(args))
	for _, periodKey := range args {
		record, err := store.GetRecord(ctx, periodKey)
		if err != nil {
			return fmt.Errorf("period %s: %w", periodKey, err)
		}
		records = append(records, *record)
	}

	combined, err := report.Combine(records)
	if err != nil {
		return err
	}

	printRecord(&combined)
	return nil
}
