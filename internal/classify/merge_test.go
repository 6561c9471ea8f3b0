package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func TestMerger(t *testing.T) {
	merger := NewMerger(0.5, "Miscellaneous")

	t.Run("rule result passes through when purpose not invoked", func(t *testing.T) {
		rule := model.ClassificationResult{
			Category:    "Documents",
			Confidence:  1.0,
			Method:      model.MethodRule,
			Explanation: "extension match",
		}

		merged := merger.Merge(rule, nil)

		// Unchanged, including method: no merge happened.
		assert.Equal(t, rule, merged)
	})

	t.Run("purpose wins when strictly more confident", func(t *testing.T) {
		rule := model.ClassificationResult{Category: "Documents", Confidence: 0.6, Method: model.MethodRule}
		purpose := &model.ClassificationResult{Category: "Study", Confidence: 0.75, Method: model.MethodHeuristic}

		merged := merger.Merge(rule, purpose)

		assert.Equal(t, "Study", merged.Category)
		assert.InDelta(t, 0.75, merged.Confidence, 1e-9)
		assert.Equal(t, model.MethodMerged, merged.Method)
	})

	t.Run("rule wins ties", func(t *testing.T) {
		rule := model.ClassificationResult{Category: "Documents", Confidence: 0.6, Method: model.MethodRule}
		purpose := &model.ClassificationResult{Category: "Work", Confidence: 0.6, Method: model.MethodHeuristic}

		merged := merger.Merge(rule, purpose)

		assert.Equal(t, "Documents", merged.Category)
		assert.InDelta(t, 0.6, merged.Confidence, 1e-9)
		assert.Equal(t, model.MethodMerged, merged.Method)
	})

	t.Run("rule wins when purpose is weaker", func(t *testing.T) {
		rule := model.ClassificationResult{Category: "Images", Confidence: 0.6, Method: model.MethodRule}
		purpose := &model.ClassificationResult{Category: "Work", Confidence: 0.3, Method: model.MethodHeuristic}

		merged := merger.Merge(rule, purpose)

		assert.Equal(t, "Images", merged.Category)
		assert.InDelta(t, 0.6, merged.Confidence, 1e-9)
	})

	t.Run("floor forces fallback after comparison", func(t *testing.T) {
		// Both sides are below the floor; the winner is discarded for the
		// fallback but the winning confidence is kept.
		rule := model.ClassificationResult{Category: "Documents", Confidence: 0.0, Method: model.MethodRule}
		purpose := &model.ClassificationResult{Category: "Work", Confidence: 0.3, Method: model.MethodHeuristic}

		merged := merger.Merge(rule, purpose)

		assert.Equal(t, "Miscellaneous", merged.Category)
		assert.InDelta(t, 0.3, merged.Confidence, 1e-9)
		assert.Equal(t, model.MethodMerged, merged.Method)
	})

	t.Run("floor does not apply without purpose result", func(t *testing.T) {
		rule := model.ClassificationResult{Category: "Documents", Confidence: 0.2, Method: model.MethodRule}

		merged := merger.Merge(rule, nil)

		assert.Equal(t, "Documents", merged.Category)
	})

	t.Run("result at the floor is kept", func(t *testing.T) {
		rule := model.ClassificationResult{Category: "Documents", Confidence: 0.0, Method: model.MethodRule}
		purpose := &model.ClassificationResult{Category: "Work", Confidence: 0.5, Method: model.MethodHeuristic}

		merged := merger.Merge(rule, purpose)

		assert.Equal(t, "Work", merged.Category)
	})
}

// TestTwoStagePipeline exercises the rule, keyword, and merge stages together
// the way the engine composes them.
func TestTwoStagePipeline(t *testing.T) {
	rules := NewRuleClassifier(
		map[string]string{"pdf": "Documents", "jpg": "Images"},
		[]MIMERule{{Prefix: "image/", Category: "Images"}},
		"Miscellaneous",
	)
	keywords := newTestKeywordClassifier()
	merger := NewMerger(0.5, "Miscellaneous")

	classify := func(record model.FileRecord) model.ClassificationResult {
		ruleResult := rules.Classify(record)
		var purposeResult *model.ClassificationResult
		if keywords.IsAmbiguous(record, ruleResult) {
			result, err := keywords.Classify(context.Background(), record)
			if err == nil {
				purposeResult = &result
			}
		}
		return merger.Merge(ruleResult, purposeResult)
	}

	t.Run("confident extension match skips stage two", func(t *testing.T) {
		result := classify(model.FileRecord{Name: "report.pdf", Extension: "pdf"})

		assert.Equal(t, "Documents", result.Category)
		assert.Equal(t, model.MethodRule, result.Method)
		assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	})

	t.Run("ambiguous mime match is refined by keywords", func(t *testing.T) {
		result := classify(model.FileRecord{
			Name:      "assignment_final(1).bin",
			Extension: "bin",
			MIMEType:  "application/x-binary",
		})

		assert.Equal(t, "Study", result.Category)
		assert.Equal(t, model.MethodMerged, result.Method)
		assert.InDelta(t, 0.75, result.Confidence, 1e-9)
	})

	t.Run("nothing matches lands in fallback", func(t *testing.T) {
		result := classify(model.FileRecord{
			Name:      "asdf.xyz",
			Extension: "xyz",
			MIMEType:  "application/octet-stream",
		})

		assert.Equal(t, "Miscellaneous", result.Category)
		assert.Equal(t, model.MethodMerged, result.Method)
	})
}
