// Package llm implements the networked purpose classifier backend. It
// satisfies the same capability interface as the deterministic keyword
// matcher, so the two are interchangeable behind classify.PurposeClassifier.
package llm
