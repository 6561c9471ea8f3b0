// Package ledger holds the run-scoped, append-only audit trail of file
// operations.
package ledger

import (
	"sync"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Ledger is the in-memory, append-only collection of per-file operation
// records. Appends are synchronized so a worker pool can complete files
// concurrently; entries are never mutated after being appended.
type Ledger struct {
	records []model.OperationRecord
	mu      sync.Mutex
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append adds one operation record.
func (l *Ledger) Append(record model.OperationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
}

// Records returns a snapshot copy of all appended records in append order.
func (l *Ledger) Records() []model.OperationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.OperationRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of appended records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
