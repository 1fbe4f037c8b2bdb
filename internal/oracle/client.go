// Package oracle implements the client for the external AI-classification
// service. The engine treats it as a pluggable request/response collaborator:
// unavailable or low-confidence answers degrade to needs-review, never to a
// pipeline failure.
package oracle

import (
	"context"
)

// Client defines the transport-level interface to the classification service.
type Client interface {
	ClassifyBatch(ctx context.Context, prompt string) (BatchResponse, error)
}

// BatchResponse is the parsed service reply for one batch.
type BatchResponse struct {
	Suggestions []SuggestionPayload `json:"suggestions"`
}

// SuggestionPayload is one raw suggestion as returned by the service.
type SuggestionPayload struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}
