// Package engine orchestrates the classification passes and report assembly
// for one accounting period.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/ledgermill/misflow/internal/aggregate"
	"github.com/ledgermill/misflow/internal/classify"
	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/model"
	"github.com/ledgermill/misflow/internal/report"
	"github.com/ledgermill/misflow/internal/service"
)

// DefaultAutoAcceptThreshold is the minimum oracle confidence accepted
// without manual review.
const DefaultAutoAcceptThreshold = 0.85

// PipelineInput carries everything one period's run needs. The pipeline
// itself touches no storage; the Engine wrapper loads and persists.
type PipelineInput struct {
	PeriodKey          string
	Entries            []model.LedgerEntry
	Rules              []model.Rule
	AutoIgnore         []model.AutoIgnoreRule
	AdjustmentKeywords []string
	Sales              []aggregate.StateSales
	HubState           string
	Snapshot           *model.AuthoritativeSnapshot
}

// PipelineResult is the classified period plus run bookkeeping.
type PipelineResult struct {
	Record      model.MISRecord
	Stats       service.RunStats
	Diagnostics []model.Diagnostic
	// RuleUsage maps rule ID to the number of entries it classified in this
	// run, for the persistent usage counters.
	RuleUsage map[int]int
}

// Pipeline runs the ordered classification passes: offset resolution, rule
// matching with auto-ignore, then the oracle fallback for whatever is left.
// Re-running over already classified entries reproduces the same result.
type Pipeline struct {
	oracle    service.Oracle
	threshold float64
}

// NewPipeline creates a pipeline. oracle may be nil, in which case unmatched
// entries stay in needs-review.
func NewPipeline(oracle service.Oracle, autoAcceptThreshold float64) *Pipeline {
	if autoAcceptThreshold <= 0 || autoAcceptThreshold > 1 {
		autoAcceptThreshold = DefaultAutoAcceptThreshold
	}
	return &Pipeline{oracle: oracle, threshold: autoAcceptThreshold}
}

// Run classifies the period's entries and assembles its MISRecord.
func (p *Pipeline) Run(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	start := time.Now()

	result := PipelineResult{RuleUsage: make(map[int]int)}
	result.Stats.TotalEntries = len(input.Entries)

	// Pass 1: neutralize internal adjustment pairs before any rule can
	// claim them.
	resolver := classify.NewOffsetResolver(input.AdjustmentKeywords, input.AutoIgnore)
	pairs, offsetDiags := resolver.Resolve(input.Entries)
	result.Stats.OffsetPairs = pairs
	result.Diagnostics = append(result.Diagnostics, offsetDiags...)

	// Pass 2: ordered rule set, then auto-ignore keywords.
	matcher := classify.NewMatcher(input.Rules, input.AutoIgnore)
	result.Diagnostics = append(result.Diagnostics, matcher.Diagnostics()...)

	var unmatched []int
	for i := range input.Entries {
		entry := &input.Entries[i]
		if entry.Classification.IsClassified() {
			continue
		}

		classification, rule := matcher.Classify(entry.AccountName)
		entry.Classification = classification

		switch classification.Origin {
		case model.OriginUserRule, model.OriginSystemRule:
			result.Stats.RuleClassified++
			if rule != nil {
				result.RuleUsage[rule.ID]++
			}
		case model.OriginAutoIgnore:
		default:
			unmatched = append(unmatched, i)
		}
	}

	// Pass 3: oracle fallback. Failure degrades the batch to needs-review,
	// never fails the run.
	if len(unmatched) > 0 && p.oracle != nil {
		p.runOracle(ctx, input.Entries, unmatched, &result)
	}

	for i := range input.Entries {
		c := input.Entries[i].Classification
		if c.Origin == model.OriginAutoIgnore {
			result.Stats.AutoIgnored++
		}
		if c.Origin == model.OriginUnclassified {
			result.Stats.Unclassified++
		}
		if c.NeedsReview {
			result.Stats.NeedsReview++
		}
	}

	revenue, revenueDiags := aggregate.AggregateRevenue(input.Sales, input.HubState)
	result.Diagnostics = append(result.Diagnostics, revenueDiags...)

	totals := aggregate.AggregateByCategory(input.Entries)
	result.Record = report.Build(input.PeriodKey, revenue, totals, input.Snapshot, input.Entries)

	result.Stats.Duration = time.Since(start)
	return result, nil
}

// runOracle sends the unmatched entries out in one batched exchange and
// applies the suggestions that clear the auto-accept threshold.
func (p *Pipeline) runOracle(ctx context.Context, entries []model.LedgerEntry, unmatched []int, result *PipelineResult) {
	requests := buildOracleRequests(entries, unmatched)

	suggestions, err := p.oracle.ClassifyAccounts(ctx, requests, model.DefaultCategorySet())
	if err != nil {
		common.LogError(err, "Oracle classification failed, batch stays in review", common.Fields{
			"unmatched": len(unmatched),
		})
		result.Diagnostics = append(result.Diagnostics,
			model.Warnf("oracle", "classification service unavailable, %d entries need manual review: %v", len(unmatched), err))
		return
	}

	byName := make(map[string]service.OracleSuggestion, len(suggestions))
	for _, s := range suggestions {
		byName[strings.ToLower(strings.TrimSpace(s.Name))] = s
	}

	for _, idx := range unmatched {
		entry := &entries[idx]
		suggestion, ok := byName[strings.ToLower(strings.TrimSpace(entry.AccountName))]
		if !ok {
			continue
		}

		if suggestion.Confidence < p.threshold {
			result.Diagnostics = append(result.Diagnostics,
				model.Infof(entry.AccountName, "oracle suggested %s at %.2f confidence, below auto-accept; kept in review",
					suggestion.Category, suggestion.Confidence))
			continue
		}

		entry.Classification = model.ClassificationResult{
			Category:    suggestion.Category,
			Subcategory: suggestion.Subcategory,
			Tier:        model.TierMedium,
			Origin:      model.OriginAI,
			Reason:      suggestion.Reasoning,
			Confidence:  suggestion.Confidence,
		}
		result.Stats.OracleAccepted++
	}
}

// buildOracleRequests deduplicates unmatched entries by account name so each
// distinct name is classified once per run.
func buildOracleRequests(entries []model.LedgerEntry, unmatched []int) []service.OracleRequest {
	seen := make(map[string]bool, len(unmatched))
	requests := make([]service.OracleRequest, 0, len(unmatched))

	for _, idx := range unmatched {
		entry := &entries[idx]
		key := strings.ToLower(strings.TrimSpace(entry.AccountName))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		kind := "credit"
		if entry.IsDebit() {
			kind = "debit"
		}
		amount := entry.SignedAmount().Abs()

		requests = append(requests, service.OracleRequest{
			Name:    entry.AccountName,
			Kind:    kind,
			Amount:  &amount,
			Context: entry.Notes,
		})
	}

	return requests
}
