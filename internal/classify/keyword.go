package classify

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Keyword classifier confidence levels.
const (
	keywordMatchConfidence = 0.75
	keywordMissConfidence  = 0.3
)

// KeywordList associates a purpose category with the filename tokens that
// indicate it.
type KeywordList struct {
	Category string
	Words    []string
}

// KeywordClassifier is the deterministic PurposeClassifier implementation. It
// tokenizes the base name and matches tokens against configured keyword lists
// in order.
type KeywordClassifier struct {
	lists     []keywordList
	fallback  string
	threshold float64
}

type keywordList struct {
	words    map[string]struct{}
	category string
	ordered  []string
}

// NewKeywordClassifier creates a keyword classifier. Lists are consulted in
// the order given; the first matching keyword wins.
func NewKeywordClassifier(lists []KeywordList, fallback string, ambiguityThreshold float64) *KeywordClassifier {
	compiled := make([]keywordList, 0, len(lists))
	for _, list := range lists {
		kl := keywordList{
			category: list.Category,
			words:    make(map[string]struct{}, len(list.Words)),
			ordered:  make([]string, 0, len(list.Words)),
		}
		for _, word := range list.Words {
			word = strings.ToLower(word)
			if _, seen := kl.words[word]; seen {
				continue
			}
			kl.words[word] = struct{}{}
			kl.ordered = append(kl.ordered, word)
		}
		compiled = append(compiled, kl)
	}

	return &KeywordClassifier{
		lists:     compiled,
		fallback:  fallback,
		threshold: ambiguityThreshold,
	}
}

// IsAmbiguous reports whether the rule result's confidence falls below the
// configured ambiguity threshold.
func (c *KeywordClassifier) IsAmbiguous(_ model.FileRecord, ruleResult model.ClassificationResult) bool {
	return ruleResult.Confidence < c.threshold
}

// Classify tokenizes the record's base name and returns the first keyword
// match. A miss yields the fallback category at low confidence. The error is
// always nil; the signature satisfies PurposeClassifier.
func (c *KeywordClassifier) Classify(_ context.Context, record model.FileRecord) (model.ClassificationResult, error) {
	tokens := Tokenize(record.Name)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		tokenSet[token] = struct{}{}
	}

	for _, list := range c.lists {
		for _, word := range list.ordered {
			if _, ok := tokenSet[word]; ok {
				return model.ClassificationResult{
					Category:    list.category,
					Confidence:  keywordMatchConfidence,
					Method:      model.MethodHeuristic,
					Explanation: fmt.Sprintf("filename contains %q indicating %s", word, list.category),
				}, nil
			}
		}
	}

	return model.ClassificationResult{
		Category:    c.fallback,
		Confidence:  keywordMissConfidence,
		Method:      model.MethodHeuristic,
		Explanation: "no purpose indicators found in filename",
	}, nil
}

// Tokenize splits a filename into lowercase tokens on non-alphanumeric
// boundaries.
func Tokenize(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
