package model

// ClassificationMethod indicates which classifier produced a result.
type ClassificationMethod string

// Classification method constants.
const (
	MethodRule      ClassificationMethod = "rule"
	MethodHeuristic ClassificationMethod = "heuristic"
	MethodMerged    ClassificationMethod = "merged"
)

// ClassificationResult is the outcome of classifying one file. The merger's
// output supersedes the individual classifier results and is the only one
// persisted to the ledger.
type ClassificationResult struct {
	Category    string
	Method      ClassificationMethod
	Explanation string
	Confidence  float64
}
