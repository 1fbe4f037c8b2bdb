package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/model"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage authoritative period snapshots",
		Long: `Snapshots hold the accountant-certified figures for a period:
stock positions, purchases, net sales, and net profit/loss. When present, the
snapshot's implied COGS takes precedence over the transaction-derived figure.`,
	}

	cmd.AddCommand(snapshotSetCmd())
	cmd.AddCommand(snapshotShowCmd())
	return cmd
}

func snapshotSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <period>",
		Short: "Create or update a period's snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshotSet,
	}

	cmd.Flags().String("opening-stock", "0", "Opening stock value")
	cmd.Flags().String("closing-stock", "0", "Closing stock value")
	cmd.Flags().String("purchases", "0", "Purchases during the period")
	cmd.Flags().String("net-sales", "0", "Certified net sales")
	cmd.Flags().String("net-profit-loss", "0", "Certified net profit or loss")
	return cmd
}

func runSnapshotSet(cmd *cobra.Command, args []string) error {
	periodKey := args[0]
	if err := validatePeriodKey(periodKey); err != nil {
		return err
	}

	snapshot := &model.AuthoritativeSnapshot{PeriodKey: periodKey}
	fields := []struct {
		dst  *decimal.Decimal
		flag string
	}{
		{&snapshot.OpeningStock, "opening-stock"},
		{&snapshot.ClosingStock, "closing-stock"},
		{&snapshot.Purchases, "purchases"},
		{&snapshot.NetSales, "net-sales"},
		{&snapshot.NetProfitLoss, "net-profit-loss"},
	}
	for _, f := range fields {
		raw, _ := cmd.Flags().GetString(f.flag)
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid --%s value %q", f.flag, raw)
		}
		*f.dst = value
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
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}

	fmt.Printf("Snapshot %s saved (implied COGS %s)\n", periodKey, snapshot.ImpliedCOGS().StringFixed(2))
	return nil
}

func snapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <period>",
		Short: "Show a period's snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePeriodKey(args[0]); err != nil {
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

			snapshot, err := store.GetSnapshot(ctx, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "period\t%s\n", snapshot.PeriodKey)
			fmt.Fprintf(w, "opening stock\t%s\n", snapshot.OpeningStock.StringFixed(2))
			fmt.Fprintf(w, "closing stock\t%s\n", snapshot.ClosingStock.StringFixed(2))
			fmt.Fprintf(w, "purchases\t%s\n", snapshot.Purchases.StringFixed(2))
			fmt.Fprintf(w, "net sales\t%s\n", snapshot.NetSales.StringFixed(2))
			fmt.Fprintf(w, "net profit/loss\t%s\n", snapshot.NetProfitLoss.StringFixed(2))
			fmt.Fprintf(w, "implied COGS\t%s\n", snapshot.ImpliedCOGS().StringFixed(2))
			return w.Flush()
		},
	}
}
