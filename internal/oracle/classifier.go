package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ledgermill/misflow/internal/common"
	"github.com/ledgermill/misflow/internal/model"
	"github.com/ledgermill/misflow/internal/service"
)

// Config holds oracle client configuration.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	BatchSize  int
	RateLimit  int // requests per minute
	CacheTTL   time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Classifier batches unmatched entities, dispatches them to the
// classification service, and validates the replies. It implements
// service.Oracle.
type Classifier struct {
	client  Client
	cache   *suggestionCache
	limiter *rateLimiter
	cfg     Config
}

// New creates a Classifier from configuration.
func New(cfg Config) (*Classifier, error) {
	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Classifier with an explicit transport. Used by
// tests to substitute a fake service.
func NewWithClient(client Client, cfg Config) *Classifier {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}

	return &Classifier{
		client:  client,
		cache:   newSuggestionCache(cfg.CacheTTL),
		limiter: newRateLimiter(cfg.RateLimit),
		cfg:     cfg,
	}
}

// ClassifyAccounts classifies a set of unmatched entities in batched round
// trips. Suggestions naming a category outside the provided list are
// discarded. An error means the whole set should degrade to needs-review.
func (c *Classifier) ClassifyAccounts(ctx context.Context, requests []service.OracleRequest, categories []model.Category) ([]service.OracleSuggestion, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories available for classification", common.ErrInvalidConfig)
	}

	valid := make(map[model.CategoryID]bool, len(categories))
	for _, cat := range categories {
		valid[cat.ID] = true
	}

	var (
		cached  []service.OracleSuggestion
		pending []service.OracleRequest
	)
	for _, req := range requests {
		if suggestion, ok := c.cache.get(cacheKey(req)); ok {
			cached = append(cached, suggestion)
			continue
		}
		pending = append(pending, req)
	}

	if len(pending) == 0 {
		return cached, nil
	}

	batches := splitBatches(pending, c.cfg.BatchSize)

	slog.Debug("Dispatching oracle batches",
		"total", len(pending),
		"cached", len(cached),
		"batches", len(batches))

	var (
		mu      sync.Mutex
		results []service.OracleSuggestion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			suggestions, err := c.classifyBatch(gctx, batch, categories)
			if err != nil {
				return err
			}

			mu.Lock()
			results = append(results, suggestions...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := results[:0]
	for _, s := range results {
		if !valid[s.Category] {
			slog.Warn("Discarding oracle suggestion with unknown category",
				"name", s.Name,
				"category", s.Category)
			continue
		}
		kept = append(kept, s)
		c.cache.set(strings.ToLower(strings.TrimSpace(s.Name)), s)
	}

	return append(cached, kept...), nil
}

// classifyBatch sends one batch with retry and maps the reply to
// suggestions.
func (c *Classifier) classifyBatch(ctx context.Context, batch []service.OracleRequest, categories []model.Category) ([]service.OracleSuggestion, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}

	prompt := buildPrompt(batch, categories)

	var response BatchResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		response, callErr = c.client.ClassifyBatch(ctx, prompt)
		return callErr
	}, service.RetryOptions{
		MaxAttempts:  c.cfg.MaxRetries,
		InitialDelay: c.cfg.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle batch failed: %w", err)
	}

	suggestions := make([]service.OracleSuggestion, 0, len(response.Suggestions))
	for _, payload := range response.Suggestions {
		suggestions = append(suggestions, service.OracleSuggestion{
			Name:        payload.Name,
			Category:    model.CategoryID(payload.Category),
			Subcategory: payload.Subcategory,
			Confidence:  payload.Confidence,
			Reasoning:   payload.Reasoning,
		})
	}

	return suggestions, nil
}

// Close releases the cache cleanup goroutine.
func (c *Classifier) Close() {
	c.cache.Close()
}

func cacheKey(req service.OracleRequest) string {
	return strings.ToLower(strings.TrimSpace(req.Name))
}

// splitBatches partitions requests into chunks of at most size.
func splitBatches(requests []service.OracleRequest, size int) [][]service.OracleRequest {
	var batches [][]service.OracleRequest
	for start := 0; start < len(requests); start += size {
		end := start + size
		if end > len(requests) {
			end = len(requests)
		}
		batches = append(batches, requests[start:end])
	}
	return batches
}

// buildPrompt renders one batch into the classification prompt. The reply
// contract is a JSON object with a "suggestions" array.
func buildPrompt(batch []service.OracleRequest, categories []model.Category) string {
	var b strings.Builder

	b.WriteString("You are a financial classification assistant for an Indian trading business.\n")
	b.WriteString("Classify each ledger account below into exactly one of these categories:\n\n")

	for _, cat := range categories {
		fmt.Fprintf(&b, "- %s: %s\n", cat.ID, cat.Description)
	}

	b.WriteString("\nAccounts to classify:\n")
	for i, req := range batch {
		fmt.Fprintf(&b, "%d. name=%q kind=%q", i+1, req.Name, req.Kind)
		if req.Amount != nil {
			fmt.Fprintf(&b, " amount=%s", req.Amount.StringFixed(2))
		}
		if req.Context != "" {
			fmt.Fprintf(&b, " context=%q", req.Context)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with JSON only, no prose:\n")
	b.WriteString(`{"suggestions": [{"name": "...", "category": "...", "subcategory": "...", "confidence": 0.0, "reasoning": "..."}]}`)
	b.WriteString("\n")

	return b.String()
}
