// Package model defines the core domain models used throughout the application.
package model

import "time"

// FileRecord identifies one filesystem entry discovered by the scanner.
// It is immutable once produced; exactly one instance exists per physical
// file per run.
type FileRecord struct {
	ModTime   time.Time
	Path      string
	Name      string
	Extension string
	MIMEType  string
	Size      int64
	Hidden    bool
}
