// Package organize relocates classified files into category folders without
// losing data: collision-free destination naming, atomic moves, and failure
// isolation per file.
package organize

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/Veraticus/the-files-must-flow/internal/common"
)

// DuplicateResolver computes a collision-free destination path by applying a
// numeric suffix pattern until an unoccupied path is found.
type DuplicateResolver struct {
	fs          afero.Fs
	pattern     string
	maxAttempts int
}

// NewDuplicateResolver creates a resolver. The pattern must contain the {n}
// placeholder (e.g. "_{n}"); maxAttempts caps the search so a pathological
// folder cannot loop forever.
func NewDuplicateResolver(fs afero.Fs, pattern string, maxAttempts int) *DuplicateResolver {
	if pattern == "" {
		pattern = "_{n}"
	}
	if maxAttempts <= 0 {
		maxAttempts = 10000
	}
	return &DuplicateResolver{
		fs:          fs,
		pattern:     pattern,
		maxAttempts: maxAttempts,
	}
}

// Resolve returns path unchanged if nothing occupies it, otherwise the first
// suffixed variant that is free. Suffix indices start at 1 and increase
// strictly, so resolving twice for the same base name yields increasing
// indices.
func (r *DuplicateResolver) Resolve(path string) (string, error) {
	occupied, err := afero.Exists(r.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to check destination %s: %w", path, err)
	}
	if !occupied {
		return path, nil
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	for n := 1; n <= r.maxAttempts; n++ {
		suffix := strings.ReplaceAll(r.pattern, "{n}", strconv.Itoa(n))
		candidate := stem + suffix + ext

		occupied, err := afero.Exists(r.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check destination %s: %w", candidate, err)
		}
		if !occupied {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: tried %d suffixes for %s", common.ErrDuplicatesExhausted, r.maxAttempts, path)
}
