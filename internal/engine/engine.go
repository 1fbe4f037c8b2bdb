package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/service"
)

// Engine binds the pipeline to persistent storage. It loads one period's
// inputs, runs the passes, and writes back classifications, rule usage
// counters, and the assembled report.
type Engine struct {
	storage  service.Storage
	pipeline *Pipeline
	config   RunConfig
}

// RunConfig carries the per-deployment knobs for a classification run.
type RunConfig struct {
	HubState            string
	AdjustmentKeywords  []string
	AutoAcceptThreshold float64
}

// New creates an engine. oracle may be nil to run rules-only.
func New(storage service.Storage, oracle service.Oracle, cfg RunConfig) *Engine {
	return &Engine{
		storage:  storage,
		pipeline: NewPipeline(oracle, cfg.AutoAcceptThreshold),
		config:   cfg,
	}
}

// RunPeriod classifies one period end to end and persists the result.
func (e *Engine) RunPeriod(ctx context.Context, periodKey string) (PipelineResult, error) {
	entries, err := e.storage.GetEntriesByPeriod(ctx, periodKey)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to load entries for %s: %w", periodKey, err)
	}
	if len(entries) == 0 {
		return PipelineResult{}, fmt.Errorf("%w: period %s", common.ErrNoEntries, periodKey)
	}

	rules, err := e.storage.ListRules(ctx)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to load rules: %w", err)
	}

	autoIgnore, err := e.storage.ListAutoIgnoreRules(ctx)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to load auto-ignore rules: %w", err)
	}

	sales, err := e.storage.GetSalesByPeriod(ctx, periodKey)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("failed to load sales for %s: %w", periodKey, err)
	}

	snapshot, err := e.storage.GetSnapshot(ctx, periodKey)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return PipelineResult{}, fmt.Errorf("failed to load snapshot for %s: %w", periodKey, err)
	}

	result, err := e.pipeline.Run(ctx, PipelineInput{
		PeriodKey:          periodKey,
		Entries:            entries,
		Rules:              rules,
		AutoIgnore:         autoIgnore,
		AdjustmentKeywords: e.config.AdjustmentKeywords,
		Sales:              sales,
		HubState:           e.config.HubState,
		Snapshot:           snapshot,
	})
	if err != nil {
		return PipelineResult{}, err
	}

	if err := e.persist(ctx, result); err != nil {
		return PipelineResult{}, err
	}

	common.LogInfo("Classification run complete", common.Fields{
		"period":          periodKey,
		"total":           result.Stats.TotalEntries,
		"rule_classified": result.Stats.RuleClassified,
		"oracle_accepted": result.Stats.OracleAccepted,
		"auto_ignored":    result.Stats.AutoIgnored,
		"offset_pairs":    result.Stats.OffsetPairs,
		"needs_review":    result.Stats.NeedsReview,
		"duration":        result.Stats.Duration.String(),
	})

	return result, nil
}

// persist writes back classifications, usage counters, and the report.
func (e *Engine) persist(ctx context.Context, result PipelineResult) error {
	for i := range result.Record.Entries {
		entry := &result.Record.Entries[i]
		if err := e.storage.UpdateEntryClassification(ctx, entry.ID, entry.Classification); err != nil {
			return fmt.Errorf("failed to save classification for entry %s: %w", entry.ID, err)
		}
	}

	for ruleID, count := range result.RuleUsage {
		for i := 0; i < count; i++ {
			if err := e.storage.IncrementRuleUseCount(ctx, ruleID); err != nil {
				return fmt.Errorf("failed to update usage counter for rule %d: %w", ruleID, err)
			}
		}
	}

	if err := e.storage.SaveRecord(ctx, &result.Record); err != nil {
		return fmt.Errorf("failed to save report for %s: %w", result.Record.PeriodKey, err)
	}

	return nil
}
