package report

import (
	"testing"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debitTotal(cat model.CategoryID, amount string) model.CategoryTotal {
	return model.CategoryTotal{Category: cat, DebitTotal: dec(amount), Count: 1}
}

func TestComputeWaterfall(t *testing.T) {
	totals := []model.CategoryTotal{
		debitTotal(model.CategoryChannelFulfillment, "10000"),
		debitTotal(model.CategoryMarketing, "5000"),
		debitTotal(model.CategoryPlatform, "2000"),
		debitTotal(model.CategoryOperating, "8000"),
		debitTotal(model.CategoryInterest, "1000"),
		debitTotal(model.CategoryDepreciation, "500"),
		debitTotal(model.CategoryAmortization, "250"),
		debitTotal(model.CategoryIncomeTax, "3000"),
	}

	result := ComputeWaterfall(dec("100000"), dec("40000"), totals)

	assert.True(t, result.GrossMargin.Amount.Equal(dec("60000")))
	assert.InDelta(t, 60.0, result.GrossMargin.PercentOfNetRevenue, 1e-9)

	assert.True(t, result.CM1.Amount.Equal(dec("50000")))
	assert.InDelta(t, 50.0, result.CM1.PercentOfNetRevenue, 1e-9)

	assert.True(t, result.CM2.Amount.Equal(dec("45000")))
	assert.True(t, result.CM3.Amount.Equal(dec("43000")))
	assert.True(t, result.EBITDA.Amount.Equal(dec("35000")))
	// ebt = ebitda - (interest + depreciation + amortization)
	assert.True(t, result.EBT.Amount.Equal(dec("33250")))
	assert.True(t, result.NetIncome.Amount.Equal(dec("30250")))
	assert.False(t, result.ZeroRevenue)
}

func TestComputeWaterfall_SequentialSubtractionIdentity(t *testing.T) {
	totals := []model.CategoryTotal{
		debitTotal(model.CategoryChannelFulfillment, "123.45"),
		debitTotal(model.CategoryMarketing, "67.89"),
	}

	result := ComputeWaterfall(dec("1000"), dec("300"), totals)

	// grossMargin - channelCost - marketingCost == cm2
	want := result.GrossMargin.Amount.Sub(dec("123.45")).Sub(dec("67.89"))
	assert.True(t, result.CM2.Amount.Equal(want))
}

func TestComputeWaterfall_ZeroRevenue(t *testing.T) {
	totals := []model.CategoryTotal{
		debitTotal(model.CategoryMarketing, "500"),
	}

	result := ComputeWaterfall(decimal.Zero, dec("100"), totals)

	assert.True(t, result.ZeroRevenue)
	// Percentages are reported as 0, never NaN or Inf.
	assert.Zero(t, result.GrossMargin.PercentOfNetRevenue)
	assert.Zero(t, result.NetIncome.PercentOfNetRevenue)
	assert.True(t, result.GrossMargin.Amount.Equal(dec("-100")))
}

func TestComputeWaterfall_UsesAbsoluteDebitTotals(t *testing.T) {
	// A cost category recorded with a negative debit total still reduces the
	// margin by its absolute value.
	totals := []model.CategoryTotal{
		{Category: model.CategoryMarketing, DebitTotal: dec("-500"), Count: 1},
	}

	result := ComputeWaterfall(dec("1000"), decimal.Zero, totals)
	assert.True(t, result.CM2.Amount.Equal(dec("500")))
}

func TestComputeWaterfall_MissingCategoriesCostZero(t *testing.T) {
	result := ComputeWaterfall(dec("1000"), dec("400"), nil)

	assert.True(t, result.GrossMargin.Amount.Equal(dec("600")))
	assert.True(t, result.NetIncome.Amount.Equal(dec("600")))
}

func TestComputeWaterfall_Stateless(t *testing.T) {
	totals := []model.CategoryTotal{
		debitTotal(model.CategoryOperating, "100"),
	}

	first := ComputeWaterfall(dec("1000"), dec("200"), totals)
	second := ComputeWaterfall(dec("1000"), dec("200"), totals)

	assert.True(t, first.NetIncome.Amount.Equal(second.NetIncome.Amount))
	assert.Equal(t, first.NetIncome.PercentOfNetRevenue, second.NetIncome.PercentOfNetRevenue)
}
