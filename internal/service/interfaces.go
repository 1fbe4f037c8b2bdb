// Package service defines the interfaces the engine depends on.
package service

import (
	"context"
	"time"

	"github.com/ledgermill/misflow/internal/aggregate"
	"github.com/ledgermill/misflow/internal/model"
	"github.com/shopspring/decimal"
)

// Storage defines the contract for the persistence layer. The engine depends
// only on the ordered rule list and the period data, not on how they are
// stored.
type Storage interface {
	// Ledger entry operations
	SaveEntries(ctx context.Context, entries []model.LedgerEntry) error
	GetEntriesByPeriod(ctx context.Context, periodKey string) ([]model.LedgerEntry, error)
	UpdateEntryClassification(ctx context.Context, entryID string, result model.ClassificationResult) error
	GetNeedsReview(ctx context.Context, periodKey string) ([]model.LedgerEntry, error)

	// Sales line item operations
	SaveSalesItems(ctx context.Context, state, periodKey string, items []model.SalesLineItem) error
	GetSalesByPeriod(ctx context.Context, periodKey string) ([]aggregate.StateSales, error)

	// Rule operations
	ListRules(ctx context.Context) ([]model.Rule, error)
	CreateRule(ctx context.Context, rule *model.Rule) error
	UpdateRule(ctx context.Context, rule *model.Rule) error
	DeleteRule(ctx context.Context, id int) error
	IncrementRuleUseCount(ctx context.Context, id int) error
	ListAutoIgnoreRules(ctx context.Context) ([]model.AutoIgnoreRule, error)
	CreateAutoIgnoreRule(ctx context.Context, rule *model.AutoIgnoreRule) error

	// Authoritative snapshot operations
	SaveSnapshot(ctx context.Context, snapshot *model.AuthoritativeSnapshot) error
	GetSnapshot(ctx context.Context, periodKey string) (*model.AuthoritativeSnapshot, error)

	// Report operations
	SaveRecord(ctx context.Context, record *model.MISRecord) error
	GetRecord(ctx context.Context, periodKey string) (*model.MISRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// OracleRequest describes one unmatched entity sent to the AI-classification
// oracle.
type OracleRequest struct {
	Name    string
	Kind    string
	Amount  *decimal.Decimal
	Context string
}

// OracleSuggestion is the oracle's proposal for one entity. Categories
// outside the active category list are invalid and must be discarded by the
// caller.
type OracleSuggestion struct {
	Name        string
	Category    model.CategoryID
	Subcategory string
	Confidence  float64
	Reasoning   string
}

// Oracle is the external AI-classification collaborator. Classification of N
// entities is a single batched round trip; failure or timeout degrades the
// whole batch to needs-review rather than failing the pipeline.
type Oracle interface {
	ClassifyAccounts(ctx context.Context, requests []OracleRequest, categories []model.Category) ([]OracleSuggestion, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// RunStats summarizes a classification run for the caller.
type RunStats struct {
	TotalEntries    int
	RuleClassified  int
	OracleAccepted  int
	AutoIgnored     int
	OffsetPairs     int
	NeedsReview     int
	Unclassified    int
	Duration        time.Duration
}
