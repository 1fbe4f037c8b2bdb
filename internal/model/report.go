package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueTotals is the net-of-returns channel revenue breakdown produced by
// the revenue aggregator.
type RevenueTotals struct {
	GrossSales decimal.Decimal `json:"gross_sales"`
	Returns    decimal.Decimal `json:"returns"`
	Transfers  decimal.Decimal `json:"transfers"`
	Taxes      decimal.Decimal `json:"taxes"`
	// Discounts is reserved; no current source populates it.
	Discounts  decimal.Decimal `json:"discounts"`
	NetRevenue decimal.Decimal `json:"net_revenue"`

	GrossByChannel   map[Channel]decimal.Decimal `json:"gross_by_channel"`
	ReturnsByChannel map[Channel]decimal.Decimal `json:"returns_by_channel"`
	TaxesByChannel   map[Channel]decimal.Decimal `json:"taxes_by_channel"`
}

// CategoryTotal is the aggregated sum for one (category, subcategory) group.
// Purely derived; regenerated on every classification change.
type CategoryTotal struct {
	Category    CategoryID      `json:"category"`
	Subcategory string          `json:"subcategory"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	Count       int             `json:"count"`
}

// WaterfallStep is one figure in the margin waterfall with its percentage of
// net revenue.
type WaterfallStep struct {
	Amount              decimal.Decimal `json:"amount"`
	PercentOfNetRevenue float64         `json:"percent_of_net_revenue"`
}

// WaterfallResult is the ordered margin sequence derived from net revenue,
// COGS, and the expense-category totals.
type WaterfallResult struct {
	NetRevenue decimal.Decimal `json:"net_revenue"`
	COGS       decimal.Decimal `json:"cogs"`

	GrossMargin WaterfallStep `json:"gross_margin"`
	CM1         WaterfallStep `json:"cm1"`
	CM2         WaterfallStep `json:"cm2"`
	CM3         WaterfallStep `json:"cm3"`
	EBITDA      WaterfallStep `json:"ebitda"`
	EBT         WaterfallStep `json:"ebt"`
	NetIncome   WaterfallStep `json:"net_income"`

	// ZeroRevenue flags that percentages are undefined and reported as 0.
	ZeroRevenue bool `json:"zero_revenue"`
}

// ValueSource records which side of the snapshot-vs-derived precedence
// supplied a figure.
type ValueSource string

// Value source constants. The authoritative snapshot always takes precedence
// over figures derived from transactions.
const (
	SourceSnapshot ValueSource = "snapshot"
	SourceDerived  ValueSource = "derived"
)

// MISRecord is one period's full report: the outward-facing contract of the
// engine. It is derived data, fully recomputed on every classification change.
type MISRecord struct {
	ID          string    `json:"id"`
	PeriodKey   string    `json:"period_key"`
	GeneratedAt time.Time `json:"generated_at"`

	Revenue        RevenueTotals   `json:"revenue"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
	Waterfall      WaterfallResult `json:"waterfall"`
	COGSSource     ValueSource     `json:"cogs_source"`

	Snapshot *AuthoritativeSnapshot `json:"snapshot,omitempty"`

	// Entries is the classified-transaction audit trail.
	Entries []LedgerEntry `json:"entries,omitempty"`

	UnclassifiedCount int `json:"unclassified_count"`
	NeedsReviewCount  int `json:"needs_review_count"`
	AutoIgnoredCount  int `json:"auto_ignored_count"`
}
