package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// PurposeHint pairs a purpose category with example keywords shown to the
// model.
type PurposeHint struct {
	Category string
	Examples []string
}

// Classifier implements classify.PurposeClassifier against a remote LLM
// backend. Backend failures degrade: Classify returns a sentinel
// low-confidence result together with a ClassificationDegraded error so the
// engine can proceed on the rule result alone.
type Classifier struct {
	client      Client
	cache       *purposeCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	hints       []PurposeHint
	fallback    string
	categories  map[string]struct{}
	retryOpts   common.RetryOptions
	timeout     time.Duration
	threshold   float64
}

// NewClassifier creates a new LLM-backed purpose classifier. The hint list
// defines the closed set of categories the backend may answer with; anything
// outside it is treated as a malformed response.
func NewClassifier(cfg Config, hints []PurposeHint, fallback string, ambiguityThreshold float64, logger *slog.Logger) (*Classifier, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	categories := make(map[string]struct{}, len(hints)+1)
	for _, hint := range hints {
		categories[hint.Category] = struct{}{}
	}
	categories[fallback] = struct{}{}

	return &Classifier{
		client:      client,
		cache:       newPurposeCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger,
		hints:       hints,
		fallback:    fallback,
		categories:  categories,
		retryOpts:   retryOpts,
		timeout:     timeout,
		threshold:   ambiguityThreshold,
	}, nil
}

// IsAmbiguous reports whether the rule result's confidence falls below the
// configured ambiguity threshold.
func (c *Classifier) IsAmbiguous(_ model.FileRecord, ruleResult model.ClassificationResult) bool {
	return ruleResult.Confidence < c.threshold
}

// Classify asks the backend for the file's purpose category. Every call is
// bounded by the configured timeout; timeouts, transport errors, and malformed
// responses all collapse into the sentinel result.
func (c *Classifier) Classify(ctx context.Context, record model.FileRecord) (model.ClassificationResult, error) {
	if cached, found := c.cache.get(record.Path); found {
		c.logger.Debug("purpose cache hit", "file", record.Name)
		return cached, nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return c.sentinel(), fmt.Errorf("%w: %v", common.ErrClassificationDegraded, err)
	}

	prompt := c.buildPrompt(record)

	var response PurposeResponse
	retryErr := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.ClassifyPurpose(callCtx, prompt)
		if err != nil {
			c.logger.Warn("purpose classification attempt failed",
				"file", record.Name,
				"error", err)
			return &common.RetryableError{Err: err, Retryable: true}
		}

		if _, known := c.categories[resp.Category]; !known {
			c.logger.Warn("backend returned unknown category",
				"file", record.Name,
				"category", resp.Category)
			return &common.RetryableError{
				Err:       fmt.Errorf("unknown category %q", resp.Category),
				Retryable: true,
			}
		}

		response = resp
		return nil
	}, c.retryOpts)

	if retryErr != nil {
		return c.sentinel(), fmt.Errorf("%w: %v", common.ErrClassificationDegraded, retryErr)
	}

	result := model.ClassificationResult{
		Category:    response.Category,
		Confidence:  response.Confidence,
		Method:      model.MethodHeuristic,
		Explanation: response.Explanation,
	}
	if result.Explanation == "" {
		result.Explanation = fmt.Sprintf("model predicted %s", result.Category)
	}

	c.cache.set(record.Path, result)

	c.logger.Info("purpose classified",
		"file", record.Name,
		"category", result.Category,
		"confidence", result.Confidence)

	return result, nil
}

// sentinel is returned when the backend cannot be consulted. Zero confidence
// guarantees the rule result wins any later merge.
func (c *Classifier) sentinel() model.ClassificationResult {
	return model.ClassificationResult{
		Category:    c.fallback,
		Confidence:  0.0,
		Method:      model.MethodHeuristic,
		Explanation: "purpose classifier unavailable",
	}
}

// buildPrompt creates the purpose classification prompt for one file.
func (c *Classifier) buildPrompt(record model.FileRecord) string {
	var categoryList strings.Builder
	for _, hint := range c.hints {
		if len(hint.Examples) > 0 {
			fmt.Fprintf(&categoryList, "- %s (e.g. %s)\n", hint.Category, strings.Join(hint.Examples, ", "))
		} else {
			fmt.Fprintf(&categoryList, "- %s\n", hint.Category)
		}
	}
	fmt.Fprintf(&categoryList, "- %s (no clear purpose)\n", c.fallback)

	return fmt.Sprintf(`Predict the purpose of this file from its name alone.

Filename: %s
Extension: %s
MIME type: %s

Choose exactly one category:
%s
Respond with JSON: {"category": "<category>", "confidence": <0.0-1.0>, "explanation": "<one sentence>"}`,
		record.Name,
		record.Extension,
		record.MIMEType,
		categoryList.String())
}

// Close stops background goroutines and cleans up resources.
func (c *Classifier) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.rateLimiter != nil {
		c.rateLimiter.Close()
	}
	return nil
}
