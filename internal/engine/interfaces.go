package engine

import (
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Relocator performs the move of one classified file and reports the outcome
// without raising past its boundary.
type Relocator interface {
	Relocate(record model.FileRecord, classification model.ClassificationResult) model.OperationRecord
}
