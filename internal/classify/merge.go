package classify

import (
	"fmt"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Merger combines the rule and purpose classifier outputs into the final
// classification. It always terminates with exactly one category and never
// signals an error.
type Merger struct {
	fallback string
	floor    float64
}

// NewMerger creates a merger with the given low-confidence floor and fallback
// category.
func NewMerger(confidenceFloor float64, fallback string) *Merger {
	return &Merger{
		floor:    confidenceFloor,
		fallback: fallback,
	}
}

// Merge combines the two classifier results. When the purpose classifier was
// not invoked (purposeResult nil), the rule result is returned unchanged.
// Otherwise the strictly-higher-confidence side wins, the method becomes
// "merged", and the confidence is the maximum of the two inputs. The
// low-confidence floor is evaluated last: if the merged confidence falls below
// it, the category is forced to the fallback regardless of which side won.
func (m *Merger) Merge(ruleResult model.ClassificationResult, purposeResult *model.ClassificationResult) model.ClassificationResult {
	if purposeResult == nil {
		return ruleResult
	}

	merged := model.ClassificationResult{
		Category:    ruleResult.Category,
		Confidence:  ruleResult.Confidence,
		Method:      model.MethodMerged,
		Explanation: fmt.Sprintf("rule classification (confidence %.2f): %s", ruleResult.Confidence, ruleResult.Explanation),
	}

	if purposeResult.Confidence > ruleResult.Confidence {
		merged.Category = purposeResult.Category
		merged.Confidence = purposeResult.Confidence
		merged.Explanation = fmt.Sprintf("purpose classification (confidence %.2f): %s", purposeResult.Confidence, purposeResult.Explanation)
	}

	// The floor is an override, not a competitor: it runs after the win/lose
	// comparison so a low-confidence winner still lands in the fallback.
	if merged.Confidence < m.floor {
		merged.Category = m.fallback
		merged.Explanation = fmt.Sprintf("confidence %.2f below floor %.2f, using fallback: %s", merged.Confidence, m.floor, merged.Explanation)
	}

	return merged
}
