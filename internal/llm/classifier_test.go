package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// mockClient is a test implementation of the Client interface. It returns the
// queued responses and errors in call order.
type mockClient struct {
	responses []PurposeResponse
	errors    []error
	calls     int
	mu        sync.Mutex
}

func (m *mockClient) ClassifyPurpose(_ context.Context, _ string) (PurposeResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	callIdx := m.calls
	m.calls++

	if callIdx < len(m.errors) && m.errors[callIdx] != nil {
		return PurposeResponse{}, m.errors[callIdx]
	}
	if callIdx < len(m.responses) {
		return m.responses[callIdx], nil
	}
	return PurposeResponse{}, errors.New("no more mock responses")
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestClassifier(t *testing.T, client Client) *Classifier {
	t.Helper()

	hints := []PurposeHint{
		{Category: "Study", Examples: []string{"assignment", "lecture"}},
		{Category: "Work", Examples: []string{"invoice", "meeting"}},
	}

	classifier, err := NewClassifier(Config{
		Provider:   "openai",
		APIKey:     "test-key",
		RetryDelay: time.Millisecond,
		MaxRetries: 2,
	}, hints, "Miscellaneous", 0.7, slog.Default())
	require.NoError(t, err)

	classifier.client = client
	t.Cleanup(func() { _ = classifier.Close() })

	return classifier
}

func TestClassifier(t *testing.T) {
	ctx := context.Background()
	record := model.FileRecord{
		Path:      "/downloads/assignment_final.bin",
		Name:      "assignment_final.bin",
		Extension: "bin",
		MIMEType:  "application/octet-stream",
	}

	t.Run("successful classification", func(t *testing.T) {
		client := &mockClient{responses: []PurposeResponse{
			{Category: "Study", Confidence: 0.8, Explanation: "coursework filename"},
		}}
		classifier := newTestClassifier(t, client)

		result, err := classifier.Classify(ctx, record)
		require.NoError(t, err)

		assert.Equal(t, "Study", result.Category)
		assert.InDelta(t, 0.8, result.Confidence, 1e-9)
		assert.Equal(t, model.MethodHeuristic, result.Method)
		assert.Equal(t, "coursework filename", result.Explanation)
	})

	t.Run("repeated files are served from cache", func(t *testing.T) {
		client := &mockClient{responses: []PurposeResponse{
			{Category: "Work", Confidence: 0.9},
		}}
		classifier := newTestClassifier(t, client)

		first, err := classifier.Classify(ctx, record)
		require.NoError(t, err)

		second, err := classifier.Classify(ctx, record)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("transient error is retried", func(t *testing.T) {
		client := &mockClient{
			errors:    []error{errors.New("rate limited")},
			responses: []PurposeResponse{{}, {Category: "Work", Confidence: 0.85}},
		}
		classifier := newTestClassifier(t, client)

		result, err := classifier.Classify(ctx, record)
		require.NoError(t, err)

		assert.Equal(t, "Work", result.Category)
		assert.Equal(t, 2, client.callCount())
	})

	t.Run("exhausted retries degrade to sentinel", func(t *testing.T) {
		client := &mockClient{errors: []error{
			errors.New("connection refused"),
			errors.New("connection refused"),
		}}
		classifier := newTestClassifier(t, client)

		result, err := classifier.Classify(ctx, record)
		require.Error(t, err)

		assert.ErrorIs(t, err, common.ErrClassificationDegraded)
		assert.Equal(t, "Miscellaneous", result.Category)
		assert.Zero(t, result.Confidence)
	})

	t.Run("unknown category is treated as a failure", func(t *testing.T) {
		client := &mockClient{responses: []PurposeResponse{
			{Category: "Cooking", Confidence: 0.9},
			{Category: "Cooking", Confidence: 0.9},
		}}
		classifier := newTestClassifier(t, client)

		result, err := classifier.Classify(ctx, record)
		require.Error(t, err)

		assert.ErrorIs(t, err, common.ErrClassificationDegraded)
		assert.Equal(t, "Miscellaneous", result.Category)
	})

	t.Run("fallback is an acceptable answer", func(t *testing.T) {
		client := &mockClient{responses: []PurposeResponse{
			{Category: "Miscellaneous", Confidence: 0.4},
		}}
		classifier := newTestClassifier(t, client)

		result, err := classifier.Classify(ctx, record)
		require.NoError(t, err)

		assert.Equal(t, "Miscellaneous", result.Category)
	})

	t.Run("empty explanation gets a default", func(t *testing.T) {
		client := &mockClient{responses: []PurposeResponse{
			{Category: "Study", Confidence: 0.8},
		}}
		classifier := newTestClassifier(t, client)

		result, err := classifier.Classify(ctx, record)
		require.NoError(t, err)

		assert.NotEmpty(t, result.Explanation)
	})

	t.Run("ambiguity threshold", func(t *testing.T) {
		classifier := newTestClassifier(t, &mockClient{})

		assert.True(t, classifier.IsAmbiguous(record, model.ClassificationResult{Confidence: 0.6}))
		assert.False(t, classifier.IsAmbiguous(record, model.ClassificationResult{Confidence: 0.7}))
	})
}

func TestBuildPrompt(t *testing.T) {
	classifier := newTestClassifier(t, &mockClient{})

	prompt := classifier.buildPrompt(model.FileRecord{
		Name:      "quarterly_numbers.xlsx",
		Extension: "xlsx",
		MIMEType:  "application/vnd.ms-excel",
	})

	assert.Contains(t, prompt, "quarterly_numbers.xlsx")
	assert.Contains(t, prompt, "Study")
	assert.Contains(t, prompt, "Work")
	assert.Contains(t, prompt, "Miscellaneous")
	assert.Contains(t, prompt, "assignment")
	assert.Contains(t, prompt, `"category"`)
}
