package classify

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Rule classifier confidence levels.
const (
	extensionMatchConfidence = 1.0
	mimeMatchConfidence      = 0.6
)

// MIMERule maps a MIME type prefix to a category.
type MIMERule struct {
	Prefix   string
	Category string
}

// RuleClassifier maps a file's extension or MIME type to a category with a
// fixed confidence. It never fails: an unrecognized file yields the fallback
// category at zero confidence.
type RuleClassifier struct {
	extensions map[string]string
	fallback   string
	mimeRules  []MIMERule
}

// NewRuleClassifier creates a rule classifier from an extension-to-category
// index and an ordered list of MIME prefix rules.
func NewRuleClassifier(extensions map[string]string, mimeRules []MIMERule, fallback string) *RuleClassifier {
	normalized := make(map[string]string, len(extensions))
	for ext, category := range extensions {
		normalized[strings.TrimPrefix(strings.ToLower(ext), ".")] = category
	}

	return &RuleClassifier{
		extensions: normalized,
		mimeRules:  mimeRules,
		fallback:   fallback,
	}
}

// Classify resolves the record's extension against the configured mapping,
// falling back to MIME prefix matching and finally the fallback category.
func (c *RuleClassifier) Classify(record model.FileRecord) model.ClassificationResult {
	ext := strings.TrimPrefix(strings.ToLower(record.Extension), ".")
	if ext != "" {
		if category, ok := c.extensions[ext]; ok {
			return model.ClassificationResult{
				Category:    category,
				Confidence:  extensionMatchConfidence,
				Method:      model.MethodRule,
				Explanation: fmt.Sprintf("extension %q maps to %s", "."+ext, category),
			}
		}
	}

	for _, rule := range c.mimeRules {
		if strings.HasPrefix(record.MIMEType, rule.Prefix) {
			return model.ClassificationResult{
				Category:    rule.Category,
				Confidence:  mimeMatchConfidence,
				Method:      model.MethodRule,
				Explanation: fmt.Sprintf("MIME type %q indicates %s", record.MIMEType, rule.Category),
			}
		}
	}

	return model.ClassificationResult{
		Category:    c.fallback,
		Confidence:  0.0,
		Method:      model.MethodRule,
		Explanation: "unknown file type",
	}
}
