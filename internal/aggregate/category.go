package aggregate

import (
	"sort"

	"github.com/ledgermill/misflow/internal/model"
)

// AggregateByCategory groups classified entries by (category, subcategory)
// and sums debit and credit totals. Unclassified entries are excluded; the
// ignore head is kept so the audit view stays complete. Output is sorted by
// category then subcategory, lexicographic.
func AggregateByCategory(entries []model.LedgerEntry) []model.CategoryTotal {
	type key struct {
		category    model.CategoryID
		subcategory string
	}

	groups := make(map[key]*model.CategoryTotal)
	for i := range entries {
		entry := &entries[i]
		if !entry.Classification.IsClassified() {
			continue
		}
		k := key{entry.Classification.Category, entry.Classification.Subcategory}
		total, ok := groups[k]
		if !ok {
			total = &model.CategoryTotal{
				Category:    k.category,
				Subcategory: k.subcategory,
			}
			groups[k] = total
		}
		total.DebitTotal = total.DebitTotal.Add(entry.Debit)
		total.CreditTotal = total.CreditTotal.Add(entry.Credit)
		total.Count++
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
