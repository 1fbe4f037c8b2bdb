package aggregate

import (
	"testing"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregateRevenue(t *testing.T) {
	states := []StateSales{
		{
			State: "KA",
			Items: []model.SalesLineItem{
				{Party: "AMAZON SALE", Channel: model.ChannelAmazon, Amount: dec("1180.00"), TaxAmount: dec("180.00")},
				{Party: "Flipkart Order", Channel: model.ChannelFlipkart, Amount: dec("590.00"), TaxAmount: dec("90.00")},
				{Party: "Amazon Return", Channel: model.ChannelAmazon, Amount: dec("-118.00"), TaxAmount: dec("-18.00"), IsReturn: true},
			},
		},
		{
			State: "MH",
			Items: []model.SalesLineItem{
				{Party: "Website Order", Channel: model.ChannelWebsite, Amount: dec("236.00"), TaxAmount: dec("36.00")},
				{Party: "Stock Transfer to Delhi Branch", Channel: model.ChannelOther, Amount: dec("400.00"), IsTransfer: true},
			},
		},
	}

	totals, diags := AggregateRevenue(states, "KA")
	require.Empty(t, diags)

	assert.True(t, totals.GrossSales.Equal(dec("2006.00")), "gross = %s", totals.GrossSales)
	assert.True(t, totals.Returns.Equal(dec("118.00")))
	// Transfer came from MH but the hub is KA, so it is excluded.
	assert.True(t, totals.Transfers.IsZero())
	assert.True(t, totals.Taxes.Equal(dec("288.00")))
	// net = 2006 - 0 - 118 - 288 - 0
	assert.True(t, totals.NetRevenue.Equal(dec("1600.00")), "net = %s", totals.NetRevenue)

	assert.True(t, totals.GrossByChannel[model.ChannelAmazon].Equal(dec("1180.00")))
	assert.True(t, totals.ReturnsByChannel[model.ChannelAmazon].Equal(dec("118.00")))
}

func TestAggregateRevenue_TransfersOnlyFromHubState(t *testing.T) {
	states := []StateSales{
		{
			State: "KA",
			Items: []model.SalesLineItem{
				{Party: "Stock Transfer Outward", Channel: model.ChannelOther, Amount: dec("1000.00"), IsTransfer: true},
			},
		},
		{
			State: "MH",
			Items: []model.SalesLineItem{
				{Party: "Stock Transfer Outward", Channel: model.ChannelOther, Amount: dec("500.00"), IsTransfer: true},
			},
		},
	}

	totals, _ := AggregateRevenue(states, "KA")
	assert.True(t, totals.Transfers.Equal(dec("1000.00")))
	// Transfers never count as sales or returns.
	assert.True(t, totals.GrossSales.IsZero())
	assert.True(t, totals.Returns.IsZero())
}

func TestAggregateRevenue_ChannelTotalsSumToGrandTotal(t *testing.T) {
	states := []StateSales{
		{
			State: "KA",
			Items: []model.SalesLineItem{
				{Party: "a", Channel: model.ChannelAmazon, Amount: dec("100.33"), TaxAmount: dec("15.31")},
				{Party: "b", Channel: model.ChannelFlipkart, Amount: dec("250.77"), TaxAmount: dec("38.25")},
				{Party: "c", Channel: model.ChannelWebsite, Amount: dec("99.99"), TaxAmount: dec("15.25")},
				{Party: "d", Channel: model.ChannelAmazon, Amount: dec("-50.11"), TaxAmount: dec("-7.64"), IsReturn: true},
				{Party: "e", Channel: model.ChannelOffline, Amount: dec("1234.56"), TaxAmount: dec("188.32")},
			},
		},
	}

	totals, _ := AggregateRevenue(states, "KA")

	tolerance := 1e-6

	var grossSum, returnsSum, taxesSum decimal.Decimal
	for _, v := range totals.GrossByChannel {
		grossSum = grossSum.Add(v)
	}
	for _, v := range totals.ReturnsByChannel {
		returnsSum = returnsSum.Add(v)
	}
	for _, v := range totals.TaxesByChannel {
		taxesSum = taxesSum.Add(v)
	}

	assert.InDelta(t, totals.GrossSales.InexactFloat64(), grossSum.InexactFloat64(), tolerance)
	assert.InDelta(t, totals.Returns.InexactFloat64(), returnsSum.InexactFloat64(), tolerance)
	assert.InDelta(t, totals.Taxes.InexactFloat64(), taxesSum.InexactFloat64(), tolerance)
}

func TestAggregateRevenue_InvalidLineSkippedWithDiagnostic(t *testing.T) {
	states := []StateSales{
		{
			State: "KA",
			Items: []model.SalesLineItem{
				{Party: "broken", Channel: model.ChannelAmazon, Amount: dec("100.00"), IsReturn: true, IsTransfer: true},
				{Party: "ok", Channel: model.ChannelAmazon, Amount: dec("200.00")},
			},
		},
	}

	totals, diags := AggregateRevenue(states, "KA")

	require.Len(t, diags, 1)
	assert.Equal(t, model.SeverityWarning, diags[0].Severity)
	assert.True(t, totals.GrossSales.Equal(dec("200.00")))
}

func TestAggregateRevenue_NegativeTaxOnReturns(t *testing.T) {
	states := []StateSales{
		{
			State: "KA",
			Items: []model.SalesLineItem{
				{Party: "sale", Channel: model.ChannelAmazon, Amount: dec("1000.00"), TaxAmount: dec("180.00")},
				{Party: "return", Channel: model.ChannelAmazon, Amount: dec("-100.00"), TaxAmount: dec("-18.00"), IsReturn: true},
			},
		},
	}

	totals, _ := AggregateRevenue(states, "KA")
	// Return tax is negative and nets against sale tax.
	assert.True(t, totals.Taxes.Equal(dec("162.00")))
	assert.True(t, totals.TaxesByChannel[model.ChannelAmazon].Equal(dec("162.00")))
}
