package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/ledgermill/misflow/internal/service"
)

// fakeClient echoes a canned classification for every name in the prompt.
type fakeClient struct {
	mu       sync.Mutex
	calls    int
	prompts  []string
	respond  func(prompt string) (BatchResponse, error)
}

func (f *fakeClient) ClassifyBatch(_ context.Context, prompt string) (BatchResponse, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(prompt)
}

func testCategories() []model.Category {
	return []model.Category{
		{ID: model.CategoryRevenue, Description: "Sales income"},
		{ID: model.CategoryMarketing, Description: "Advertising and promotion"},
		{ID: model.CategoryOperating, Description: "General operating expenses"},
	}
}

func suggestionJSON(names map[string]string) func(prompt string) (BatchResponse, error) {
	return func(prompt string) (BatchResponse, error) {
		var payloads []SuggestionPayload
		for name, category := range names {
			if strings.Contains(prompt, name) {
				payloads = append(payloads, SuggestionPayload{
					Name:       name,
					Category:   category,
					Confidence: 0.9,
				})
			}
		}
		return BatchResponse{Suggestions: payloads}, nil
	}
}

func TestClassifierClassifyAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns validated suggestions", func(t *testing.T) {
		client := &fakeClient{respond: suggestionJSON(map[string]string{
			"Meta Ads":     "marketing",
			"Office Rent":  "operating_expense",
			"Crypto Gains": "speculation", // not a real category
		})}
		classifier := NewWithClient(client, Config{})
		defer classifier.Close()

		requests := []service.OracleRequest{
			{Name: "Meta Ads", Kind: "expense"},
			{Name: "Office Rent", Kind: "expense"},
			{Name: "Crypto Gains", Kind: "income"},
		}

		suggestions, err := classifier.ClassifyAccounts(ctx, requests, testCategories())
		require.NoError(t, err)
		require.Len(t, suggestions, 2)

		byName := make(map[string]service.OracleSuggestion)
		for _, s := range suggestions {
			byName[s.Name] = s
		}
		assert.Equal(t, model.CategoryMarketing, byName["Meta Ads"].Category)
		assert.Equal(t, model.CategoryOperating, byName["Office Rent"].Category)
		assert.NotContains(t, byName, "Crypto Gains")
	})

	t.Run("empty request list is a no-op", func(t *testing.T) {
		client := &fakeClient{respond: func(string) (BatchResponse, error) {
			return BatchResponse{}, errors.New("should not be called")
		}}
		classifier := NewWithClient(client, Config{})
		defer classifier.Close()

		suggestions, err := classifier.ClassifyAccounts(ctx, nil, testCategories())
		require.NoError(t, err)
		assert.Empty(t, suggestions)
		assert.Equal(t, 0, client.calls)
	})

	t.Run("requires a category list", func(t *testing.T) {
		client := &fakeClient{respond: suggestionJSON(nil)}
		classifier := NewWithClient(client, Config{})
		defer classifier.Close()

		_, err := classifier.ClassifyAccounts(ctx, []service.OracleRequest{{Name: "X"}}, nil)
		assert.Error(t, err)
	})

	t.Run("splits large inputs into batches", func(t *testing.T) {
		names := make(map[string]string)
		var requests []service.OracleRequest
		for i := 0; i < 7; i++ {
			name := fmt.Sprintf("Vendor %d", i)
			names[name] = "operating_expense"
			requests = append(requests, service.OracleRequest{Name: name})
		}

		client := &fakeClient{respond: suggestionJSON(names)}
		classifier := NewWithClient(client, Config{BatchSize: 3})
		defer classifier.Close()

		suggestions, err := classifier.ClassifyAccounts(ctx, requests, testCategories())
		require.NoError(t, err)
		assert.Len(t, suggestions, 7)
		assert.Equal(t, 3, client.calls)
	})

	t.Run("serves repeat lookups from cache", func(t *testing.T) {
		client := &fakeClient{respond: suggestionJSON(map[string]string{
			"Meta Ads": "marketing",
		})}
		classifier := NewWithClient(client, Config{})
		defer classifier.Close()

		requests := []service.OracleRequest{{Name: "Meta Ads"}}

		_, err := classifier.ClassifyAccounts(ctx, requests, testCategories())
		require.NoError(t, err)

		suggestions, err := classifier.ClassifyAccounts(ctx, requests, testCategories())
		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, model.CategoryMarketing, suggestions[0].Category)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("batch failure surfaces as error", func(t *testing.T) {
		client := &fakeClient{respond: func(string) (BatchResponse, error) {
			return BatchResponse{}, errors.New("service unavailable")
		}}
		classifier := NewWithClient(client, Config{MaxRetries: 1})
		defer classifier.Close()

		_, err := classifier.ClassifyAccounts(ctx, []service.OracleRequest{{Name: "X"}}, testCategories())
		assert.Error(t, err)
	})
}

func TestBuildPrompt(t *testing.T) {
	requests := []service.OracleRequest{
		{Name: "Amazon Seller Services", Kind: "expense", Context: "monthly marketplace fees"},
	}

	prompt := buildPrompt(requests, testCategories())

	assert.Contains(t, prompt, "Amazon Seller Services")
	assert.Contains(t, prompt, "marketing")
	assert.Contains(t, prompt, "monthly marketplace fees")
	assert.Contains(t, prompt, `"suggestions"`)

	// The instructions embed a JSON contract example; it must itself be valid.
	start := strings.Index(prompt, `{"suggestions"`)
	require.GreaterOrEqual(t, start, 0)
	assert.True(t, json.Valid([]byte(strings.TrimSpace(prompt[start:]))))
}
