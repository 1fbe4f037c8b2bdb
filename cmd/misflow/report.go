package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/model"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <period>",
		Short: "Show a period's P&L report",
		Long: `Print the stored report for one YYYY-MM period: channel revenue,
category totals, and the margin waterfall. Run 'misflow classify' first to
generate or refresh the report.`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}
}

func runReport(cmd *cobra.Command, args []string) error {
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

	record, err := store.GetRecord(ctx, args[0])
	if err != nil {
		return err
	}

	printRecord(record)
	return nil
}

func printRecord(record *model.MISRecord) {
	fmt.Printf("MIS Report %s (generated %s)\n\n", record.PeriodKey, record.GeneratedAt.Format("2006-01-02 15:04"))

	fmt.Println("Revenue")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "  gross sales\t%s\n", record.Revenue.GrossSales.StringFixed(2))
	fmt.Fprintf(w, "  returns\t-%s\n", record.Revenue.Returns.StringFixed(2))
	fmt.Fprintf(w, "  transfers\t-%s\n", record.Revenue.Transfers.StringFixed(2))
	fmt.Fprintf(w, "  taxes\t-%s\n", record.Revenue.Taxes.StringFixed(2))
	fmt.Fprintf(w, "  net revenue\t%s\n", record.Revenue.NetRevenue.StringFixed(2))
	_ = w.Flush()

	if len(record.Revenue.GrossByChannel) > 0 {
		fmt.Println("\nGross sales by channel")
		channels := make([]model.Channel, 0, len(record.Revenue.GrossByChannel))
		for ch := range record.Revenue.GrossByChannel {
			channels = append(channels, ch)
		}
		sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, ch := range channels {
			fmt.Fprintf(w, "  %s\t%s\n", ch, record.Revenue.GrossByChannel[ch].StringFixed(2))
		}
		_ = w.Flush()
	}

	fmt.Printf("\nMargin waterfall (COGS from %s: %s)\n", record.COGSSource, record.Waterfall.COGS.StringFixed(2))
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printStep(w, "gross margin", record.Waterfall.GrossMargin, record.Waterfall.ZeroRevenue)
	printStep(w, "cm1", record.Waterfall.CM1, record.Waterfall.ZeroRevenue)
	printStep(w, "cm2", record.Waterfall.CM2, record.Waterfall.ZeroRevenue)
	printStep(w, "cm3", record.Waterfall.CM3, record.Waterfall.ZeroRevenue)
	printStep(w, "ebitda", record.Waterfall.EBITDA, record.Waterfall.ZeroRevenue)
	printStep(w, "ebt", record.Waterfall.EBT, record.Waterfall.ZeroRevenue)
	printStep(w, "net income", record.Waterfall.NetIncome, record.Waterfall.ZeroRevenue)
	_ = w.Flush()

	if len(record.CategoryTotals) > 0 {
		fmt.Println("\nCategory totals")
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  CATEGORY\tSUBCATEGORY\tDEBIT\tCREDIT\tCOUNT")
		for _, total := range record.CategoryTotals {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%d\n",
				total.Category.DisplayLabel(), total.Subcategory,
				total.DebitTotal.StringFixed(2), total.CreditTotal.StringFixed(2), total.Count)
		}
		_ = w.Flush()
	}

	fmt.Printf("\n%d entries, %d unclassified, %d needing review, %d auto-ignored\n",
		len(record.Entries), record.UnclassifiedCount, record.NeedsReviewCount, record.AutoIgnoredCount)
}

func printStep(w *tabwriter.Writer, name string, step model.WaterfallStep, zeroRevenue bool) {
	if zeroRevenue {
		fmt.Fprintf(w, "  %s\t%s\tn/a\n", name, step.Amount.StringFixed(2))
		return
	}
	fmt.Fprintf(w, "  %s\t%s\t%.1f%%\n", name, step.Amount.StringFixed(2), step.PercentOfNetRevenue)
}
