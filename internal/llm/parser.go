package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parsePurposeResponse extracts the purpose prediction from raw model output.
// Models occasionally wrap the JSON in markdown fences or prose despite
// instructions, so everything outside the outermost braces is discarded.
func parsePurposeResponse(content string) (PurposeResponse, error) {
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return PurposeResponse{}, fmt.Errorf("no JSON object in response: %q", truncate(content, 120))
	}

	var parsed struct {
		Category    string  `json:"category"`
		Explanation string  `json:"explanation"`
		Confidence  float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return PurposeResponse{}, fmt.Errorf("malformed JSON in response: %w", err)
	}

	if parsed.Category == "" {
		return PurposeResponse{}, fmt.Errorf("response missing category")
	}

	confidence := parsed.Confidence
	switch {
	case confidence == 0:
		// Older prompts did not ask for a confidence; treat a silent model
		// the same as a keyword match.
		confidence = 0.75
	case confidence < 0:
		confidence = 0.0
	case confidence > 1:
		confidence = 1.0
	}

	return PurposeResponse{
		Category:    strings.TrimSpace(parsed.Category),
		Confidence:  confidence,
		Explanation: strings.TrimSpace(parsed.Explanation),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
