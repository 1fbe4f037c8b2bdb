package classify

import (
	"strings"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

// offsetEpsilon is the absolute tolerance for amount matching between an
// adjustment entry and its offset, in currency units.
var offsetEpsilon = decimal.RequireFromString("0.01")

// Offset reason tags keep the audit trail traceable: the adjustment entry and
// its matched counterpart carry distinct reasons.
const (
	offsetReasonSource = "internal adjustment entry (offset source)"
	offsetReasonMatch  = "offsetting entry for internal adjustment"
)

// OffsetResolver finds paired internal wash entries so they do not pollute
// the P&L. Certain marketplaces record a sale and simultaneously an internal
// counter-entry; both are neutralized, never deleted.
type OffsetResolver struct {
	adjustmentKeywords []string
	autoIgnore         []model.AutoIgnoreRule
}

// NewOffsetResolver builds a resolver. adjustmentKeywords identify
// self-adjustment entries; autoIgnore rules exclude candidates that would be
// ignored anyway.
func NewOffsetResolver(adjustmentKeywords []string, autoIgnore []model.AutoIgnoreRule) *OffsetResolver {
	if len(adjustmentKeywords) == 0 {
		adjustmentKeywords = []string{"cash sale"}
	}
	return &OffsetResolver{
		adjustmentKeywords: adjustmentKeywords,
		autoIgnore:         autoIgnore,
	}
}

// IsSelfAdjustment reports whether an account name denotes an internal
// self-adjustment entry.
func (r *OffsetResolver) IsSelfAdjustment(accountName string) bool {
	lower := strings.ToLower(accountName)
	for _, kw := range r.adjustmentKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Resolve marks matched adjustment/offset pairs as auto-ignore in place and
// returns the number of resolved pairs plus diagnostics. This pass must run
// before the rule classifier so an entry is never both rule-classified and
// offset-matched.
//
// For each adjustment entry the single candidate with an identical date and
// an equal amount (within tolerance) on the opposite debit/credit side is
// chosen. Candidates that are themselves adjustments, match an auto-ignore
// rule, or are already matched are excluded. When several candidates qualify
// the first in input order wins; the ambiguity is reported as a diagnostic.
//
// Entries already classified by a rule, the oracle, or an explicit user
// action are never touched. Only unclassified entries and entries this
// resolver marked on a previous run participate, so re-running the pass is
// idempotent and a manual override always sticks.
func (r *OffsetResolver) Resolve(entries []model.LedgerEntry) (int, []model.Diagnostic) {
	var diags []model.Diagnostic
	matched := make(map[int]bool)
	pairs := 0

	for i := range entries {
		if matched[i] || !r.IsSelfAdjustment(entries[i].AccountName) {
			continue
		}
		if !r.resolvable(entries[i].Classification) {
			continue
		}

		adj := &entries[i]
		amount := adj.SignedAmount().Abs()
		candidateIdx := -1
		candidates := 0

		for j := range entries {
			if j == i || matched[j] {
				continue
			}
			cand := &entries[j]
			if r.IsSelfAdjustment(cand.AccountName) {
				continue
			}
			if r.matchesAutoIgnore(cand.AccountName) {
				continue
			}
			if !r.resolvable(cand.Classification) {
				continue
			}
			if !cand.Date.Equal(adj.Date) {
				continue
			}
			if cand.IsDebit() == adj.IsDebit() {
				continue
			}
			if cand.SignedAmount().Abs().Sub(amount).Abs().GreaterThan(offsetEpsilon) {
				continue
			}
			candidates++
			if candidateIdx == -1 {
				candidateIdx = j
			}
		}

		if candidateIdx == -1 {
			continue
		}
		if candidates > 1 {
			diags = append(diags, model.Warnf(adj.AccountName,
				"%d offset candidates on %s for amount %s; first in input order chosen",
				candidates, adj.Date.Format("2006-01-02"), amount.String()))
		}

		adj.Classification = model.AutoIgnored(offsetReasonSource)
		entries[candidateIdx].Classification = model.AutoIgnored(offsetReasonMatch)
		matched[i] = true
		matched[candidateIdx] = true
		pairs++
	}

	return pairs, diags
}

// resolvable reports whether an entry may be marked by this pass. An
// unclassified entry always may; a classified one only when it carries one of
// this resolver's own reason tags from an earlier run.
func (r *OffsetResolver) resolvable(c model.ClassificationResult) bool {
	if !c.IsClassified() {
		return true
	}
	if c.Origin != model.OriginAutoIgnore {
		return false
	}
	return c.Reason == offsetReasonSource || c.Reason == offsetReasonMatch
}

func (r *OffsetResolver) matchesAutoIgnore(accountName string) bool {
	lower := strings.ToLower(accountName)
	for _, rule := range r.autoIgnore {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return true
		}
	}
	return false
}
