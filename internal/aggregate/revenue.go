// Package aggregate reduces classified transactions and sales line items into
// the totals consumed by the margin waterfall.
package aggregate

import (
	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

// StateSales holds one state's parsed sales register.
type StateSales struct {
	State string
	Items []model.SalesLineItem
}

// AggregateRevenue turns per-state sales line items into gross sales,
// returns, inter-entity transfers, and net revenue, per channel and in total.
//
// Totals across states are summed field-by-field except transfers, which by
// convention are only sourced from the designated hub state. Line items that
// violate the return/transfer exclusivity invariant are skipped with a
// diagnostic, never fatal to the batch.
func AggregateRevenue(states []StateSales, hubState string) (model.RevenueTotals, []model.Diagnostic) {
	totals := model.RevenueTotals{
		GrossByChannel:   make(map[model.Channel]decimal.Decimal),
		ReturnsByChannel: make(map[model.Channel]decimal.Decimal),
		TaxesByChannel:   make(map[model.Channel]decimal.Decimal),
	}
	var diags []model.Diagnostic

	for _, state := range states {
		for i := range state.Items {
			item := &state.Items[i]
			if err := item.Validate(); err != nil {
				diags = append(diags, model.Warnf(item.Party, "skipped sales line in %s: %v", state.State, err))
				continue
			}

			switch {
			case item.IsTransfer:
				if state.State == hubState {
					totals.Transfers = totals.Transfers.Add(item.Amount)
				}
			case item.IsReturn:
				abs := item.Amount.Abs()
				totals.Returns = totals.Returns.Add(abs)
				totals.ReturnsByChannel[item.Channel] = totals.ReturnsByChannel[item.Channel].Add(abs)
				totals.Taxes = totals.Taxes.Add(item.TaxAmount)
				totals.TaxesByChannel[item.Channel] = totals.TaxesByChannel[item.Channel].Add(item.TaxAmount)
			default:
				totals.GrossSales = totals.GrossSales.Add(item.Amount)
				totals.GrossByChannel[item.Channel] = totals.GrossByChannel[item.Channel].Add(item.Amount)
				totals.Taxes = totals.Taxes.Add(item.TaxAmount)
				totals.TaxesByChannel[item.Channel] = totals.TaxesByChannel[item.Channel].Add(item.TaxAmount)
			}
		}
	}

	totals.NetRevenue = totals.GrossSales.
		Sub(totals.Transfers).
		Sub(totals.Returns).
		Sub(totals.Taxes).
		Sub(totals.Discounts)

	return totals, diags
}
