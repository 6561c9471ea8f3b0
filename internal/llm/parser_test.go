package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePurposeResponse(t *testing.T) {
	t.Run("clean JSON", func(t *testing.T) {
		resp, err := parsePurposeResponse(`{"category": "Study", "confidence": 0.8, "explanation": "looks like coursework"}`)
		require.NoError(t, err)

		assert.Equal(t, "Study", resp.Category)
		assert.InDelta(t, 0.8, resp.Confidence, 1e-9)
		assert.Equal(t, "looks like coursework", resp.Explanation)
	})

	t.Run("markdown fences are stripped", func(t *testing.T) {
		content := "```json\n{\"category\": \"Work\", \"confidence\": 0.9}\n```"
		resp, err := parsePurposeResponse(content)
		require.NoError(t, err)

		assert.Equal(t, "Work", resp.Category)
		assert.InDelta(t, 0.9, resp.Confidence, 1e-9)
	})

	t.Run("surrounding prose is discarded", func(t *testing.T) {
		content := `Sure! Based on the filename this is work-related: {"category": "Work", "confidence": 0.85} Let me know if you need more.`
		resp, err := parsePurposeResponse(content)
		require.NoError(t, err)

		assert.Equal(t, "Work", resp.Category)
	})

	t.Run("missing confidence defaults to keyword level", func(t *testing.T) {
		resp, err := parsePurposeResponse(`{"category": "Study"}`)
		require.NoError(t, err)

		assert.InDelta(t, 0.75, resp.Confidence, 1e-9)
	})

	t.Run("confidence is clamped", func(t *testing.T) {
		resp, err := parsePurposeResponse(`{"category": "Study", "confidence": 1.7}`)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, resp.Confidence, 1e-9)

		resp, err = parsePurposeResponse(`{"category": "Study", "confidence": -0.3}`)
		require.NoError(t, err)
		assert.Zero(t, resp.Confidence)
	})

	t.Run("category whitespace is trimmed", func(t *testing.T) {
		resp, err := parsePurposeResponse(`{"category": " Work ", "confidence": 0.8}`)
		require.NoError(t, err)

		assert.Equal(t, "Work", resp.Category)
	})

	t.Run("no JSON at all", func(t *testing.T) {
		_, err := parsePurposeResponse("I am unable to classify this file.")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no JSON object")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := parsePurposeResponse(`{"category": "Work", "confidence": }`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed JSON")
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := parsePurposeResponse(`{"confidence": 0.9}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing category")
	})
}
