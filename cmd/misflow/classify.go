package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/engine"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <period>",
		Short: "Classify a period and generate its report",
		Long: `Run the classification passes over one YYYY-MM period: offset
resolution, the ordered rule set, auto-ignore keywords, and the AI oracle for
whatever remains. The period's P&L report is regenerated and stored.`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().Bool("no-oracle", false, "Skip the AI pass; unmatched entries stay in review")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	periodKey := args[0]
	if err := validatePeriodKey(periodKey); err != nil {
		return err
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

	var oracleClient interface{ Close() }
	eng := engine.New(store, nil, runConfig())
	if noOracle, _ := cmd.Flags().GetBool("no-oracle"); !noOracle {
		o, err := newOracle()
		if err != nil {
			return err
		}
		if o == nil {
			slog.Warn("Oracle endpoint not configured, running rules-only")
		} else {
			eng = engine.New(store, o, runConfig())
			if closer, ok := o.(interface{ Close() }); ok {
				oracleClient = closer
			}
		}
	}
	if oracleClient != nil {
		defer oracleClient.Close()
	}

	result, err := eng.RunPeriod(ctx, periodKey)
	if err != nil {
		return err
	}

	for _, diag := range result.Diagnostics {
		slog.Warn("Diagnostic", "severity", diag.Severity, "ref", diag.Ref, "message", diag.Message)
	}

	stats := result.Stats
	fmt.Printf("Period %s classified in %s\n", periodKey, stats.Duration.Round(time.Millisecond))
	fmt.Printf("  total entries:    %d\n", stats.TotalEntries)
	fmt.Printf("  rule classified:  %d\n", stats.RuleClassified)
	fmt.Printf("  oracle accepted:  %d\n", stats.OracleAccepted)
	fmt.Printf("  auto-ignored:     %d\n", stats.AutoIgnored)
	fmt.Printf("  offset pairs:     %d\n", stats.OffsetPairs)
	fmt.Printf("  needs review:     %d\n", stats.NeedsReview)

	if stats.NeedsReview > 0 {
		fmt.Printf("\nRun 'misflow rules review %s' to see entries awaiting review.\n", periodKey)
	}

	return nil
}
