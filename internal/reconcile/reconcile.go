// Package reconcile compares MIS-derived figures against the authoritative
// balance-sheet snapshot.
package reconcile

import (
	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

// varianceThresholdPct is the absolute variance below which a metric pair is
// considered a match.
const varianceThresholdPct = 5.0

// Status classifies the variance on one metric pair.
type Status string

// Reconciliation status constants.
const (
	StatusMatch          Status = "match"
	StatusReviewRequired Status = "review-required"
	// StatusNotApplicable is reported when the snapshot value is zero and the
	// variance percentage is undefined.
	StatusNotApplicable Status = "not-applicable"
)

// Metric names the three reconciled pairs. Direct/indirect expense boundaries
// differ between the two sources, so no other metrics are comparable.
type Metric string

// Reconciled metric constants.
const (
	MetricNetRevenue Metric = "net_revenue"
	MetricCOGS       Metric = "cogs"
	MetricNetIncome  Metric = "net_income"
)

// MetricResult is one metric pair's comparison outcome.
type MetricResult struct {
	Metric        Metric          `json:"metric"`
	MISValue      decimal.Decimal `json:"mis_value"`
	SnapshotValue decimal.Decimal `json:"snapshot_value"`
	VariancePct   float64         `json:"variance_pct"`
	Status        Status          `json:"status"`
}

// Result is the full reconciliation outcome for one record.
type Result struct {
	NetRevenue MetricResult `json:"net_revenue"`
	COGS       MetricResult `json:"cogs"`
	NetIncome  MetricResult `json:"net_income"`
}

// Metrics returns the three comparisons in fixed order.
func (r Result) Metrics() []MetricResult {
	return []MetricResult{r.NetRevenue, r.COGS, r.NetIncome}
}

// ReviewRequired reports whether any metric pair needs attention.
func (r Result) ReviewRequired() bool {
	for _, m := range r.Metrics() {
		if m.Status == StatusReviewRequired {
			return true
		}
	}
	return false
}

// Reconcile compares exactly three metric pairs: net revenue vs. snapshot net
// sales, category-aggregated COGS vs. snapshot implied COGS, and net income
// vs. snapshot net profit/loss.
func Reconcile(record model.MISRecord, snapshot model.AuthoritativeSnapshot) Result {
	derivedCOGS := decimal.Decimal{}
	for _, total := range record.CategoryTotals {
		if total.Category == model.CategoryCOGS {
			derivedCOGS = derivedCOGS.Add(total.DebitTotal.Abs())
		}
	}

	return Result{
		NetRevenue: compare(MetricNetRevenue, record.Revenue.NetRevenue, snapshot.NetSales),
		COGS:       compare(MetricCOGS, derivedCOGS, snapshot.ImpliedCOGS()),
		NetIncome:  compare(MetricNetIncome, record.Waterfall.NetIncome.Amount, snapshot.NetProfitLoss),
	}
}

// compare computes (mis - snapshot) / snapshot * 100 and classifies it. A
// zero snapshot value makes the variance undefined: the pair is reported
// not-applicable, never a computed number.
func compare(metric Metric, misValue, snapshotValue decimal.Decimal) MetricResult {
	result := MetricResult{
		Metric:        metric,
		MISValue:      misValue,
		SnapshotValue: snapshotValue,
	}

	if snapshotValue.IsZero() {
		result.Status = StatusNotApplicable
		return result
	}

	variance := misValue.Sub(snapshotValue).Div(snapshotValue).Mul(decimal.NewFromInt(100))
	result.VariancePct = variance.InexactFloat64()
	if variance.Abs().LessThan(decimal.NewFromFloat(varianceThresholdPct)) {
		result.Status = StatusMatch
	} else {
		result.Status = StatusReviewRequired
	}

	return result
}
