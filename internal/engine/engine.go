// Package engine implements the core classification and organization engine:
// it turns file metadata into a final category decision and relocates each
// file, recording exactly one operation record per input.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/the-files-must-flow/internal/classify"
	"github.com/Veraticus/the-files-must-flow/internal/ledger"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Engine orchestrates the per-file classify → merge → relocate pipeline.
// Files are independent of each other; one file's failure never aborts the
// run.
type Engine struct {
	rules     *classify.RuleClassifier
	purpose   classify.PurposeClassifier
	merger    *classify.Merger
	relocator Relocator
	onRecord  func(model.OperationRecord)
	workers   int
}

// Config holds configuration options for the engine.
type Config struct {
	Workers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// New creates an engine with the default configuration. A nil purpose
// classifier disables the second classification stage entirely.
func New(rules *classify.RuleClassifier, purpose classify.PurposeClassifier, merger *classify.Merger, relocator Relocator) *Engine {
	return NewWithConfig(rules, purpose, merger, relocator, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(rules *classify.RuleClassifier, purpose classify.PurposeClassifier, merger *classify.Merger, relocator Relocator, config Config) *Engine {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		rules:     rules,
		purpose:   purpose,
		merger:    merger,
		relocator: relocator,
		workers:   workers,
	}
}

// OnRecord registers a callback invoked after each file completes. Used by
// the CLI for progress display; the callback runs under the same
// synchronization as the ledger append.
func (e *Engine) OnRecord(fn func(model.OperationRecord)) {
	e.onRecord = fn
}

// Organize processes every record through the pipeline and returns the
// ledger. The run can be canceled between files; the ledger then contains the
// subset that completed, alongside the context error.
func (e *Engine) Organize(ctx context.Context, records []model.FileRecord) (*ledger.Ledger, error) {
	led := ledger.New()

	slog.Info("starting organization run",
		"files", len(records),
		"workers", e.workers)

	var err error
	if e.workers > 1 {
		err = e.organizeParallel(ctx, records, led)
	} else {
		err = e.organizeSequential(ctx, records, led)
	}

	slog.Info("organization run finished",
		"processed", led.Len(),
		"of", len(records))

	return led, err
}

func (e *Engine) organizeSequential(ctx context.Context, records []model.FileRecord, led *ledger.Ledger) error {
	var mu sync.Mutex
	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		e.append(led, &mu, e.processOne(ctx, record))
	}
	return nil
}

// organizeParallel fans records out to a bounded worker pool. The only
// cross-file shared state is the ledger (mutex-guarded append) and the
// destination namespace, which the relocator guards itself.
func (e *Engine) organizeParallel(ctx context.Context, records []model.FileRecord, led *ledger.Ledger) error {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var canceled error

	for _, record := range records {
		select {
		case <-ctx.Done():
			canceled = ctx.Err()
		default:
		}
		if canceled != nil {
			break
		}

		wg.Add(1)
		go func(rec model.FileRecord) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			e.append(led, &mu, e.processOne(ctx, rec))
		}(record)
	}

	wg.Wait()
	return canceled
}

func (e *Engine) append(led *ledger.Ledger, mu *sync.Mutex, record model.OperationRecord) {
	mu.Lock()
	defer mu.Unlock()
	led.Append(record)
	if e.onRecord != nil {
		e.onRecord(record)
	}
}

// processOne runs the full pipeline for a single file.
func (e *Engine) processOne(ctx context.Context, record model.FileRecord) model.OperationRecord {
	ruleResult := e.rules.Classify(record)

	slog.Debug("classification attempted",
		"file", record.Name,
		"method", ruleResult.Method,
		"category", ruleResult.Category,
		"confidence", ruleResult.Confidence)

	var purposeResult *model.ClassificationResult
	if e.purpose != nil && e.purpose.IsAmbiguous(record, ruleResult) {
		slog.Debug("purpose classifier invoked",
			"file", record.Name,
			"rule_confidence", ruleResult.Confidence)

		result, err := e.purpose.Classify(ctx, record)
		if err != nil {
			// Degrade to the rule result alone; never abort the file.
			slog.Warn("purpose classification degraded",
				"file", record.Name,
				"error", err)
		} else {
			purposeResult = &result
		}
	}

	final := e.merger.Merge(ruleResult, purposeResult)

	slog.Info("classification decided",
		"file", record.Name,
		"category", final.Category,
		"method", final.Method,
		"confidence", final.Confidence)

	return e.relocator.Relocate(record, final)
}
