package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

// ErrNoRecords is returned when Combine receives zero records.
var ErrNoRecords = errors.New("no records to combine")

// Combine merges per-period records into one consolidated record. Revenue,
// cost, and margin figures are summed field-by-field and every percentage is
// recomputed from the combined net revenue, never averaged.
//
// The snapshot follows point-in-time vs. flow semantics: openingStock comes
// from the first record, closingStock from the last, flow fields are summed,
// and impliedCOGS is re-derived from the combined stock movement rather than
// summed from per-period values.
func Combine(records []model.MISRecord) (model.MISRecord, error) {
	if len(records) == 0 {
		return model.MISRecord{}, ErrNoRecords
	}
	if len(records) == 1 {
		return records[0], nil
	}

	sorted := make([]model.MISRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodKey < sorted[j].PeriodKey
	})

	combined := model.MISRecord{
		ID:          uuid.NewString(),
		PeriodKey:   fmt.Sprintf("%s..%s", sorted[0].PeriodKey, sorted[len(sorted)-1].PeriodKey),
		GeneratedAt: time.Now().UTC(),
		Revenue: model.RevenueTotals{
			GrossByChannel:   make(map[model.Channel]decimal.Decimal),
			ReturnsByChannel: make(map[model.Channel]decimal.Decimal),
			TaxesByChannel:   make(map[model.Channel]decimal.Decimal),
		},
	}

	for _, r := range sorted {
		combined.Revenue.GrossSales = combined.Revenue.GrossSales.Add(r.Revenue.GrossSales)
		combined.Revenue.Returns = combined.Revenue.Returns.Add(r.Revenue.Returns)
		combined.Revenue.Transfers = combined.Revenue.Transfers.Add(r.Revenue.Transfers)
		combined.Revenue.Taxes = combined.Revenue.Taxes.Add(r.Revenue.Taxes)
		combined.Revenue.Discounts = combined.Revenue.Discounts.Add(r.Revenue.Discounts)
		combined.Revenue.NetRevenue = combined.Revenue.NetRevenue.Add(r.Revenue.NetRevenue)
		addChannelMap(combined.Revenue.GrossByChannel, r.Revenue.GrossByChannel)
		addChannelMap(combined.Revenue.ReturnsByChannel, r.Revenue.ReturnsByChannel)
		addChannelMap(combined.Revenue.TaxesByChannel, r.Revenue.TaxesByChannel)

		combined.UnclassifiedCount += r.UnclassifiedCount
		combined.NeedsReviewCount += r.NeedsReviewCount
		combined.AutoIgnoredCount += r.AutoIgnoredCount
		combined.Entries = append(combined.Entries, r.Entries...)
	}

	combined.CategoryTotals = mergeCategoryTotals(sorted)
	combined.Snapshot = combineSnapshots(sorted)
	combined.Waterfall = combineWaterfalls(sorted, combined.Revenue.NetRevenue)
	combined.COGSSource = sorted[len(sorted)-1].COGSSource

	return combined, nil
}

// combineWaterfalls sums every margin figure field-by-field and recomputes
// the percentages from the combined net revenue.
func combineWaterfalls(records []model.MISRecord, netRevenue decimal.Decimal) model.WaterfallResult {
	var cogs, grossMargin, cm1, cm2, cm3, ebitda, ebt, netIncome decimal.Decimal
	for _, r := range records {
		cogs = cogs.Add(r.Waterfall.COGS)
		grossMargin = grossMargin.Add(r.Waterfall.GrossMargin.Amount)
		cm1 = cm1.Add(r.Waterfall.CM1.Amount)
		cm2 = cm2.Add(r.Waterfall.CM2.Amount)
		cm3 = cm3.Add(r.Waterfall.CM3.Amount)
		ebitda = ebitda.Add(r.Waterfall.EBITDA.Amount)
		ebt = ebt.Add(r.Waterfall.EBT.Amount)
		netIncome = netIncome.Add(r.Waterfall.NetIncome.Amount)
	}

	return model.WaterfallResult{
		NetRevenue:  netRevenue,
		COGS:        cogs,
		GrossMargin: step(grossMargin, netRevenue),
		CM1:         step(cm1, netRevenue),
		CM2:         step(cm2, netRevenue),
		CM3:         step(cm3, netRevenue),
		EBITDA:      step(ebitda, netRevenue),
		EBT:         step(ebt, netRevenue),
		NetIncome:   step(netIncome, netRevenue),
		ZeroRevenue: netRevenue.IsZero(),
	}
}

// combineSnapshots applies the per-field combination rules: first for
// opening stock, last for closing stock, sum for the flow fields. Records
// without a snapshot contribute nothing.
func combineSnapshots(records []model.MISRecord) *model.AuthoritativeSnapshot {
	var combined *model.AuthoritativeSnapshot
	for _, r := range records {
		if r.Snapshot == nil {
			continue
		}
		if combined == nil {
			combined = &model.AuthoritativeSnapshot{
				PeriodKey:    r.Snapshot.PeriodKey,
				OpeningStock: r.Snapshot.OpeningStock,
			}
		}
		combined.ClosingStock = r.Snapshot.ClosingStock
		combined.Purchases = combined.Purchases.Add(r.Snapshot.Purchases)
		combined.NetSales = combined.NetSales.Add(r.Snapshot.NetSales)
		combined.NetProfitLoss = combined.NetProfitLoss.Add(r.Snapshot.NetProfitLoss)
	}
	return combined
}

func mergeCategoryTotals(records []model.MISRecord) []model.CategoryTotal {
	type key struct {
		category    model.CategoryID
		subcategory string
	}

	groups := make(map[key]*model.CategoryTotal)
	for _, r := range records {
		for _, total := range r.CategoryTotals {
			k := key{total.Category, total.Subcategory}
			merged, ok := groups[k]
			if !ok {
				merged = &model.CategoryTotal{Category: total.Category, Subcategory: total.Subcategory}
				groups[k] = merged
			}
			merged.DebitTotal = merged.DebitTotal.Add(total.DebitTotal)
			merged.CreditTotal = merged.CreditTotal.Add(total.CreditTotal)
			merged.Count += total.Count
		}
	}

	totals := make([]model.CategoryTotal, 0, len(groups))
	for _, total := range groups {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Category != totals[j].Category {
			return totals[i].Category < totals[j].Category
		}
		return totals[i].Subcategory < totals[j].Subcategory
	})
	return totals
}

func addChannelMap(dst, src map[model.Channel]decimal.Decimal) {
	for ch, v := range src {
		dst[ch] = dst[ch].Add(v)
	}
}
