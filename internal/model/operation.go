package model

import "time"

// OperationOutcome is the terminal state of one relocation attempt.
type OperationOutcome string

// Operation outcome constants.
const (
	OutcomeSucceeded OperationOutcome = "succeeded"
	OutcomeFailed    OperationOutcome = "failed"
)

// FailureKind classifies why a relocation failed. Empty for successful
// operations.
type FailureKind string

// Failure kind constants.
const (
	FailureNone                FailureKind = ""
	FailureFileUnavailable     FailureKind = "file_unavailable"
	FailurePermissionDenied    FailureKind = "permission_denied"
	FailureDuplicatesExhausted FailureKind = "duplicates_exhausted"
	FailurePartialCopy         FailureKind = "partial_copy"
)

// OperationRecord is the audit trail entry for one processed file. Exactly one
// record exists per FileRecord regardless of outcome, and records are never
// mutated after being appended to the ledger.
type OperationRecord struct {
	AttemptedAt     time.Time
	ID              string
	SourcePath      string
	DestinationPath string
	Category        string
	Error           string
	Warning         string
	Outcome         OperationOutcome
	FailureKind     FailureKind
	Classification  ClassificationResult
}

// Succeeded reports whether the file reached its destination.
func (r OperationRecord) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}
