package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// parseBatchResponse parses the service reply. Model-generated JSON is often
// slightly malformed (trailing commas, markdown fences), so a repair pass
// runs before strict unmarshaling.
func parseBatchResponse(content string) (BatchResponse, error) {
	content = stripMarkdownFences(content)

	var response BatchResponse
	if err := json.Unmarshal([]byte(content), &response); err == nil {
		return clampResponse(response), nil
	}

	repaired, err := jsonrepair.RepairJSON(content)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("failed to repair oracle response: %w", err)
	}

	if err := json.Unmarshal([]byte(repaired), &response); err != nil {
		return BatchResponse{}, fmt.Errorf("failed to parse oracle response: %w", err)
	}

	return clampResponse(response), nil
}

// clampResponse bounds confidences to [0, 1] and drops suggestions without a
// name; malformed items are skipped, never fatal to the batch.
func clampResponse(response BatchResponse) BatchResponse {
	kept := response.Suggestions[:0]
	for _, s := range response.Suggestions {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		if s.Confidence < 0 {
			s.Confidence = 0
		}
		if s.Confidence > 1 {
			s.Confidence = 1
		}
		kept = append(kept, s)
	}
	response.Suggestions = kept
	return response
}

// stripMarkdownFences removes a ```json ... ``` wrapper when present.
func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
