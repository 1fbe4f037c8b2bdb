package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/reconcile"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <period>",
		Short: "Reconcile a period's report against its snapshot",
		Long: `Compare the MIS-derived net revenue, COGS, and net income against
the authoritative snapshot for one period. Variances under 5% are reported as
matches; a zero snapshot value makes the comparison not applicable.`,
		Args: cobra.ExactArgs(1),
		RunE: runReconcile,
	}
}

func runReconcile(cmd *cobra.Command, args []string) error {
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

	record, err := store.GetRecord(ctx, periodKey)
	if err != nil {
		return err
	}
	snapshot, err := store.GetSnapshot(ctx, periodKey)
	if err != nil {
		return err
	}

	result := reconcile.Reconcile(*record, *snapshot)

	fmt.Printf("Reconciliation %s\n\n", periodKey)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMIS\tSNAPSHOT\tVARIANCE\tSTATUS")
	for _, m := range result.Metrics() {
		variance := "n/a"
		if m.Status != reconcile.StatusNotApplicable {
			variance = fmt.Sprintf("%+.2f%%", m.VariancePct)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.Metric, m.MISValue.StringFixed(2), m.SnapshotValue.StringFixed(2), variance, m.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.ReviewRequired() {
		fmt.Println("\nOne or more metrics exceed the variance threshold.")
	}
	return nil
}
