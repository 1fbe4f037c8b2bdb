package classify

import (
	"testing"
	"time"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestOffsetResolver_PairsAdjustmentWithCounterEntry(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "AMAZON CASH SALE", Credit: dec("1180.00")},
		{ID: "b", Date: day(1), AccountName: "Amazon Settlement Clearing", Debit: dec("1180.00")},
		{ID: "c", Date: day(1), AccountName: "Freight Outward", Debit: dec("250.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, diags := r.Resolve(entries)

	assert.Equal(t, 1, pairs)
	assert.Empty(t, diags)

	assert.Equal(t, model.OriginAutoIgnore, entries[0].Classification.Origin)
	assert.Equal(t, model.OriginAutoIgnore, entries[1].Classification.Origin)
	// Source and offset carry distinct reason tags for the audit trail.
	assert.NotEqual(t, entries[0].Classification.Reason, entries[1].Classification.Reason)
	// The unrelated entry is untouched.
	assert.Empty(t, entries[2].Classification.Origin)
}

func TestOffsetResolver_NeverMatchesSelf(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "AMAZON CASH SALE", Credit: dec("500.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	assert.Zero(t, pairs)
	assert.Empty(t, entries[0].Classification.Origin)
}

func TestOffsetResolver_RequiresSameDate(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(2), AccountName: "Clearing Account", Debit: dec("500.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	assert.Zero(t, pairs)
}

func TestOffsetResolver_RequiresOppositeSide(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "Clearing Account", Credit: dec("500.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	assert.Zero(t, pairs)
}

func TestOffsetResolver_AmountWithinTolerance(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "Clearing Account", Debit: dec("500.01")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	assert.Equal(t, 1, pairs)
}

func TestOffsetResolver_AmountBeyondTolerance(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "Clearing Account", Debit: dec("500.02")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	assert.Zero(t, pairs)
}

func TestOffsetResolver_AtMostOneMatchPerAdjustment(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "Clearing One", Debit: dec("500.00")},
		{ID: "c", Date: day(1), AccountName: "Clearing Two", Debit: dec("500.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, diags := r.Resolve(entries)

	assert.Equal(t, 1, pairs)
	// First candidate in input order wins; the ambiguity is diagnosed.
	assert.Equal(t, model.OriginAutoIgnore, entries[1].Classification.Origin)
	assert.Empty(t, entries[2].Classification.Origin)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "2 offset candidates")
}

func TestOffsetResolver_ExcludesAutoIgnoredCandidates(t *testing.T) {
	autoIgnore := []model.AutoIgnoreRule{
		{ID: 1, Keyword: "suspense", Reason: "suspense accounts are non-P&L"},
	}
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "Suspense Account", Debit: dec("500.00")},
		{ID: "c", Date: day(1), AccountName: "Clearing Account", Debit: dec("500.00")},
	}

	r := NewOffsetResolver(nil, autoIgnore)
	pairs, _ := r.Resolve(entries)

	assert.Equal(t, 1, pairs)
	assert.Empty(t, entries[1].Classification.Origin)
	assert.Equal(t, model.OriginAutoIgnore, entries[2].Classification.Origin)
}

func TestOffsetResolver_KeepsManualReclassification(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "AMAZON CASH SALE", Credit: dec("1180.00")},
		{ID: "b", Date: day(1), AccountName: "Amazon Settlement Clearing", Debit: dec("1180.00")},
	}
	// The user already re-classified the adjustment entry by hand.
	entries[0].Classification = model.ClassificationResult{
		Category: model.CategoryRevenue,
		Tier:     model.TierHigh,
		Origin:   model.OriginUserRule,
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	// A manual override survives an automatic re-run.
	assert.Zero(t, pairs)
	assert.Equal(t, model.OriginUserRule, entries[0].Classification.Origin)
	assert.Equal(t, model.CategoryRevenue, entries[0].Classification.Category)
	assert.Empty(t, entries[1].Classification.Origin)
}

func TestOffsetResolver_SkipsClassifiedCandidates(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "Clearing One", Debit: dec("500.00")},
		{ID: "c", Date: day(1), AccountName: "Clearing Two", Debit: dec("500.00")},
	}
	// The first candidate was classified by a rule on an earlier run.
	entries[1].Classification = model.ClassificationResult{
		Category: model.CategoryOperating,
		Tier:     model.TierMedium,
		Origin:   model.OriginSystemRule,
		RuleID:   7,
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	assert.Equal(t, 1, pairs)
	assert.Equal(t, model.OriginSystemRule, entries[1].Classification.Origin)
	assert.Equal(t, model.OriginAutoIgnore, entries[2].Classification.Origin)
}

func TestOffsetResolver_RerunIsIdempotent(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "AMAZON CASH SALE", Credit: dec("1180.00")},
		{ID: "b", Date: day(1), AccountName: "Amazon Settlement Clearing", Debit: dec("1180.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)
	require.Equal(t, 1, pairs)

	first := []model.ClassificationResult{entries[0].Classification, entries[1].Classification}

	// Entries this pass marked earlier are re-matched, everything else holds.
	pairs, _ = r.Resolve(entries)
	assert.Equal(t, 1, pairs)
	assert.Equal(t, first[0], entries[0].Classification)
	assert.Equal(t, first[1], entries[1].Classification)
}

func TestOffsetResolver_ExcludesOtherAdjustments(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", Date: day(1), AccountName: "CASH SALE ADJUSTMENT", Credit: dec("500.00")},
		{ID: "b", Date: day(1), AccountName: "FLIPKART CASH SALE", Debit: dec("500.00")},
	}

	r := NewOffsetResolver(nil, nil)
	pairs, _ := r.Resolve(entries)

	// Two adjustment entries never offset each other.
	assert.Zero(t, pairs)
}
