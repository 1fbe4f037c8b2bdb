package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgermill/misflow/internal/model"
)

// Build assembles one period's MISRecord from aggregated revenue, category
// totals, the optional authoritative snapshot, and the classified entries
// (kept as the audit trail). Unclassified and needs-review counts are
// first-class fields, never hidden in logs.
func Build(periodKey string, revenue model.RevenueTotals, totals []model.CategoryTotal, snapshot *model.AuthoritativeSnapshot, entries []model.LedgerEntry) model.MISRecord {
	derivedCOGS := costOf(totals, model.CategoryCOGS)
	cogs, cogsSource := ResolveCOGS(derivedCOGS, snapshot)

	record := model.MISRecord{
		ID:             uuid.NewString(),
		PeriodKey:      periodKey,
		GeneratedAt:    time.Now().UTC(),
		Revenue:        revenue,
		CategoryTotals: totals,
		Waterfall:      ComputeWaterfall(revenue.NetRevenue, cogs, totals),
		COGSSource:     cogsSource,
		Snapshot:       snapshot,
		Entries:        entries,
	}

	for i := range entries {
		c := entries[i].Classification
		switch {
		case c.Origin == model.OriginUnclassified:
			record.UnclassifiedCount++
		case c.Origin == model.OriginAutoIgnore:
			record.AutoIgnoredCount++
		}
		if c.NeedsReview {
			record.NeedsReviewCount++
		}
	}

	return record
}
