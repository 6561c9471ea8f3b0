// Package scan discovers files in the accumulation folder and extracts the
// metadata the classification engine consumes.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

const defaultMIMEType = "application/octet-stream"

// Scanner walks one folder (non-recursive) and produces an ordered sequence
// of FileRecords.
type Scanner struct {
	fs       afero.Fs
	patterns []string
}

// New creates a scanner. System file patterns are matched against the base
// name as a suffix or exact match; matching files are skipped.
func New(fs afero.Fs, systemFilePatterns []string) *Scanner {
	return &Scanner{
		fs:       fs,
		patterns: systemFilePatterns,
	}
}

// Scan returns records for every processable file directly inside dir.
// Subdirectories, hidden files, and system files are skipped. Only an
// inaccessible root folder is fatal.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]model.FileRecord, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", dir, err)
	}

	records := make([]model.FileRecord, 0, len(infos))
	for _, info := range infos {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		if info.IsDir() {
			continue
		}
		if s.isSystemFile(info.Name()) {
			continue
		}

		records = append(records, newRecord(dir, info))
	}

	slog.Info("scan complete", "dir", dir, "files", len(records))

	return records, nil
}

func newRecord(dir string, info os.FileInfo) model.FileRecord {
	name := info.Name()
	return model.FileRecord{
		Path:      filepath.Join(dir, name),
		Name:      name,
		Extension: Extension(name),
		MIMEType:  MIMEType(name),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Hidden:    strings.HasPrefix(name, "."),
	}
}

func (s *Scanner) isSystemFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range s.patterns {
		if name == pattern || strings.HasSuffix(name, pattern) {
			return true
		}
	}
	return false
}

// Extension returns the lowercased extension of name without the leading dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// MIMEType guesses the MIME type of name from its extension.
func MIMEType(name string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		return defaultMIMEType
	}
	// Strip any parameters such as "; charset=utf-8".
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType)
}
