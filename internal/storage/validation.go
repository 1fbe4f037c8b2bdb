package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgermill/misflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrEmptySlice      = errors.New("slice cannot be empty")
	ErrInvalidEntry    = errors.New("invalid ledger entry")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntries validates a slice of ledger entries.
func validateEntries(entries []model.LedgerEntry) error {
	if entries == nil {
		return fmt.Errorf("%w: entries", ErrNilParameter)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: entries", ErrEmptySlice)
	}

	for i := range entries {
		if err := validateEntry(&entries[i]); err != nil {
			return fmt.Errorf("entry at index %d: %w", i, err)
		}
	}
	return nil
}

// validateEntry validates a single ledger entry.
func validateEntry(entry *model.LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidEntry)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}
	if strings.TrimSpace(entry.AccountName) == "" {
		return fmt.Errorf("%w: missing account name", ErrInvalidEntry)
	}
	return nil
}

// validateRule validates a classification rule.
func validateRule(rule *model.Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern", ErrInvalidRule)
	}
	if !rule.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRule, rule.Category)
	}
	switch rule.Kind {
	case model.PatternExact, model.PatternSubstring, model.PatternRegex:
	default:
		return fmt.Errorf("%w: unknown pattern kind %q", ErrInvalidRule, rule.Kind)
	}
	switch rule.Origin {
	case model.RuleOriginUser, model.RuleOriginSystem, model.RuleOriginAILearned:
	default:
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidRule, rule.Origin)
	}
	if rule.Confidence < 0 || rule.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidRule)
	}
	return nil
}

// validateSnapshot validates an authoritative period snapshot.
func validateSnapshot(snapshot *model.AuthoritativeSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}
	if err := validateString(snapshot.PeriodKey, "periodKey"); err != nil {
		return err
	}
	if snapshot.OpeningStock.IsNegative() || snapshot.ClosingStock.IsNegative() {
		return fmt.Errorf("%w: stock values cannot be negative", ErrInvalidSnapshot)
	}
	return nil
}
