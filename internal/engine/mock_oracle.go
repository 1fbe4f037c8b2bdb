package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/ledgermill/misflow/internal/service"
)

// MockOracle is a configurable service.Oracle for tests.
type MockOracle struct {
	// Suggestions maps lowercase account name to the canned reply.
	Suggestions map[string]service.OracleSuggestion
	// Err, when set, fails every call.
	Err error

	mu    sync.Mutex
	calls int
}

// NewMockOracle creates an empty mock.
func NewMockOracle() *MockOracle {
	return &MockOracle{Suggestions: make(map[string]service.OracleSuggestion)}
}

// Suggest registers a canned suggestion for an account name.
func (m *MockOracle) Suggest(name string, category model.CategoryID, confidence float64) *MockOracle {
	m.Suggestions[strings.ToLower(name)] = service.OracleSuggestion{
		Name:       name,
		Category:   category,
		Confidence: confidence,
	}
	return m
}

// ClassifyAccounts implements service.Oracle.
func (m *MockOracle) ClassifyAccounts(_ context.Context, requests []service.OracleRequest, _ []model.Category) ([]service.OracleSuggestion, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	var out []service.OracleSuggestion
	for _, req := range requests {
		if s, ok := m.Suggestions[strings.ToLower(req.Name)]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Calls reports how many times the oracle was invoked.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
