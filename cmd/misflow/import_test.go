package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgermill/misflow/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseLedgerCSV(t *testing.T) {
	t.Run("parses rows and skips the header", func(t *testing.T) {
		path := writeTempCSV(t, `date,voucher_id,account_name,notes,region_tag,debit,credit
2024-04-10,V-100,Amazon Seller Services,monthly fees,KA,"1,200.00",
2024-04-11,V-101,Sales Account,,KA,,50000.00
`)

		entries, err := parseLedgerCSV(path)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, "Amazon Seller Services", entries[0].AccountName)
		assert.Equal(t, "V-100", entries[0].VoucherID)
		assert.True(t, entries[0].Debit.Equal(decimal.RequireFromString("1200.00")))
		assert.True(t, entries[0].Credit.IsZero())
		assert.NotEmpty(t, entries[0].ID)

		assert.True(t, entries[1].Credit.Equal(decimal.RequireFromString("50000.00")))
	})

	t.Run("skips malformed rows without failing the file", func(t *testing.T) {
		path := writeTempCSV(t, `10/04/2024,V-1,Bad Date Account,,,100,
2024-04-12,V-2,Good Account,,,250.00,
`)
		entries, err := parseLedgerCSV(path)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Good Account", entries[0].AccountName)
	})
}

func TestParseSalesCSV(t *testing.T) {
	path := writeTempCSV(t, `party,amount,tax_amount
Amazon Seller Services,50000.00,9000.00
Flipkart Refund,-2000.00,-360.00
Branch Transfer Mumbai,12000.00,0
Local Counter Sale,800.00,144.00
`)

	items, err := parseSalesCSV(path)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, model.ChannelAmazon, items[0].Channel)
	assert.False(t, items[0].IsReturn)

	assert.Equal(t, model.ChannelFlipkart, items[1].Channel)
	assert.True(t, items[1].IsReturn)
	assert.False(t, items[1].IsTransfer)

	assert.True(t, items[2].IsTransfer)
	assert.False(t, items[2].IsReturn)
	assert.Equal(t, model.RegionMaharashtra, items[2].DestinationRegion)

	assert.Equal(t, model.ChannelOffline, items[3].Channel)
}

func TestValidatePeriodKey(t *testing.T) {
	assert.NoError(t, validatePeriodKey("2024-04"))
	assert.NoError(t, validatePeriodKey("2024-12"))
	assert.Error(t, validatePeriodKey("2024-13"))
	assert.Error(t, validatePeriodKey("2024-4"))
	assert.Error(t, validatePeriodKey("April 2024"))
	assert.Error(t, validatePeriodKey(""))
}
