// Package classify implements the two-stage file classification pipeline:
// a rule classifier over extensions and MIME types, a pluggable purpose
// classifier over filename content, and the merger that combines the two.
package classify

import (
	"context"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// PurposeClassifier infers a file's purpose category from its name. The
// deterministic keyword matcher and the networked LLM backend are
// interchangeable implementations.
type PurposeClassifier interface {
	// Classify returns a purpose category for the record. Implementations
	// backed by a remote service return a sentinel low-confidence result
	// alongside the error so callers can degrade to rule-only output.
	Classify(ctx context.Context, record model.FileRecord) (model.ClassificationResult, error)

	// IsAmbiguous reports whether the rule result alone is insufficient and
	// the purpose classifier should be consulted.
	IsAmbiguous(record model.FileRecord, ruleResult model.ClassificationResult) bool
}
