// Package report derives the layered contribution-margin statement and
// combines per-period records into consolidated reports.
package report

import (
	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeWaterfall derives the ordered margin sequence from net revenue,
// cost of goods, and the expense-category totals. Stateless: the result is
// fully re-derivable from its inputs, so recomputation after a
// classification edit is always safe.
//
// Each subtraction uses the absolute value of the corresponding cost
// category's debit total; expense categories are recorded as debits.
func ComputeWaterfall(netRevenue, cogs decimal.Decimal, totals []model.CategoryTotal) model.WaterfallResult {
	channelCost := costOf(totals, model.CategoryChannelFulfillment)
	marketingCost := costOf(totals, model.CategoryMarketing)
	platformCost := costOf(totals, model.CategoryPlatform)
	operatingCost := costOf(totals, model.CategoryOperating)
	financeCost := costOf(totals, model.CategoryInterest, model.CategoryDepreciation, model.CategoryAmortization)
	incomeTax := costOf(totals, model.CategoryIncomeTax)

	result := model.WaterfallResult{
		NetRevenue:  netRevenue,
		COGS:        cogs,
		ZeroRevenue: netRevenue.IsZero(),
	}

	grossMargin := netRevenue.Sub(cogs)
	cm1 := grossMargin.Sub(channelCost)
	cm2 := cm1.Sub(marketingCost)
	cm3 := cm2.Sub(platformCost)
	ebitda := cm3.Sub(operatingCost)
	ebt := ebitda.Sub(financeCost)
	netIncome := ebt.Sub(incomeTax)

	result.GrossMargin = step(grossMargin, netRevenue)
	result.CM1 = step(cm1, netRevenue)
	result.CM2 = step(cm2, netRevenue)
	result.CM3 = step(cm3, netRevenue)
	result.EBITDA = step(ebitda, netRevenue)
	result.EBT = step(ebt, netRevenue)
	result.NetIncome = step(netIncome, netRevenue)

	return result
}

// costOf sums the absolute debit totals across the given category heads.
func costOf(totals []model.CategoryTotal, categories ...model.CategoryID) decimal.Decimal {
	var sum decimal.Decimal
	for _, total := range totals {
		for _, cat := range categories {
			if total.Category == cat {
				sum = sum.Add(total.DebitTotal.Abs())
			}
		}
	}
	return sum
}

// step pairs a figure with its percentage of net revenue. A zero base yields
// percent 0; the caller-visible ZeroRevenue flag marks the percentages as
// undefined rather than computed.
func step(amount, netRevenue decimal.Decimal) model.WaterfallStep {
	s := model.WaterfallStep{Amount: amount}
	if !netRevenue.IsZero() {
		s.PercentOfNetRevenue = amount.Div(netRevenue).Mul(hundred).InexactFloat64()
	}
	return s
}
