package aggregate

import (
	"testing"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classified(account string, cat model.CategoryID, sub string, debit, credit string) model.LedgerEntry {
	return model.LedgerEntry{
		AccountName: account,
		Debit:       dec(debit),
		Credit:      dec(credit),
		Classification: model.ClassificationResult{
			Category:    cat,
			Subcategory: sub,
			Origin:      model.OriginSystemRule,
			Tier:        model.TierMedium,
		},
	}
}

func TestAggregateByCategory(t *testing.T) {
	entries := []model.LedgerEntry{
		classified("Amazon Logistics Fee", model.CategoryChannelFulfillment, "Amazon Fees", "50.00", "0"),
		classified("Amazon Storage Fee", model.CategoryChannelFulfillment, "Amazon Fees", "30.00", "0"),
		classified("Google Ads", model.CategoryMarketing, "Performance", "200.00", "0"),
		classified("Ads Credit Note", model.CategoryMarketing, "Performance", "0", "20.00"),
	}

	totals := AggregateByCategory(entries)
	require.Len(t, totals, 2)

	// Sorted by category then subcategory.
	assert.Equal(t, model.CategoryChannelFulfillment, totals[0].Category)
	assert.True(t, totals[0].DebitTotal.Equal(dec("80.00")))
	assert.Equal(t, 2, totals[0].Count)

	assert.Equal(t, model.CategoryMarketing, totals[1].Category)
	assert.True(t, totals[1].DebitTotal.Equal(dec("200.00")))
	assert.True(t, totals[1].CreditTotal.Equal(dec("20.00")))
	assert.Equal(t, 2, totals[1].Count)
}

func TestAggregateByCategory_SkipsUnclassified(t *testing.T) {
	entries := []model.LedgerEntry{
		{AccountName: "Mystery", Debit: dec("10.00"), Classification: model.Unclassified()},
		classified("Rent", model.CategoryOperating, "Office", "100.00", "0"),
	}

	totals := AggregateByCategory(entries)
	require.Len(t, totals, 1)
	assert.Equal(t, model.CategoryOperating, totals[0].Category)
}

func TestAggregateByCategory_KeepsIgnoreHeadInAuditView(t *testing.T) {
	entries := []model.LedgerEntry{
		{
			AccountName:    "AMAZON CASH SALE",
			Credit:         dec("1180.00"),
			Classification: model.AutoIgnored("internal adjustment entry (offset source)"),
		},
	}

	totals := AggregateByCategory(entries)
	require.Len(t, totals, 1)
	assert.Equal(t, model.CategoryIgnore, totals[0].Category)
	assert.True(t, totals[0].CreditTotal.Equal(dec("1180.00")))
}

func TestAggregateByCategory_SortOrder(t *testing.T) {
	entries := []model.LedgerEntry{
		classified("z", model.CategoryOperating, "b", "1", "0"),
		classified("y", model.CategoryOperating, "a", "1", "0"),
		classified("x", model.CategoryMarketing, "z", "1", "0"),
	}

	totals := AggregateByCategory(entries)
	require.Len(t, totals, 3)
	assert.Equal(t, model.CategoryMarketing, totals[0].Category)
	assert.Equal(t, "a", totals[1].Subcategory)
	assert.Equal(t, "b", totals[2].Subcategory)
}

func TestAggregateByCategory_Empty(t *testing.T) {
	assert.Empty(t, AggregateByCategory(nil))
}
