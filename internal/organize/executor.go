package organize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Executor performs the relocation of one classified file. All failures are
// caught at this boundary and reported through the OperationRecord; the
// executor never aborts the run, and the source file is guaranteed to remain
// untouched or fully moved.
type Executor struct {
	fs         afero.Fs
	resolver   *DuplicateResolver
	categories *model.CategorySet
	baseDir    string
	dryRun     bool
	destMu     sync.Mutex
}

// NewExecutor creates an executor that moves files into category folders
// under baseDir. In dry-run mode the move itself is skipped but the resolved
// destination is still recorded.
func NewExecutor(filesystem afero.Fs, resolver *DuplicateResolver, categories *model.CategorySet, baseDir string, dryRun bool) *Executor {
	return &Executor{
		fs:         filesystem,
		resolver:   resolver,
		categories: categories,
		baseDir:    baseDir,
		dryRun:     dryRun,
	}
}

// Relocate moves the file into its category folder and returns the
// OperationRecord for the attempt. The record's outcome is always set; a
// failed record keeps the source path as destination.
func (e *Executor) Relocate(record model.FileRecord, classification model.ClassificationResult) model.OperationRecord {
	op := model.OperationRecord{
		ID:              uuid.NewString(),
		AttemptedAt:     time.Now(),
		SourcePath:      record.Path,
		DestinationPath: record.Path,
		Category:        classification.Category,
		Classification:  classification,
	}

	folder, ok := e.categories.FolderFor(classification.Category)
	if !ok {
		// The merger only emits categories from the set; falling back here
		// keeps an unexpected category from losing the file.
		folder, _ = e.categories.FolderFor(e.categories.Fallback())
	}
	categoryDir := filepath.Join(e.baseDir, folder)

	slog.Debug("move attempted",
		"file", record.Name,
		"category", classification.Category,
		"dir", categoryDir)

	if err := e.fs.MkdirAll(categoryDir, 0o755); err != nil {
		return e.fail(op, record, fmt.Errorf("failed to create category folder: %w", err))
	}

	// Resolution and the move itself share the destination-namespace lock so
	// a concurrent worker cannot claim the resolved name between the
	// existence check and the rename.
	e.destMu.Lock()
	destination, err := e.resolver.Resolve(filepath.Join(categoryDir, record.Name))
	if err == nil && !e.dryRun {
		err = e.move(record.Path, destination)
	}
	e.destMu.Unlock()

	if err != nil {
		return e.fail(op, record, err)
	}

	op.DestinationPath = destination
	op.Outcome = model.OutcomeSucceeded

	if !e.dryRun {
		if err := e.fs.Chtimes(destination, record.ModTime, record.ModTime); err != nil {
			op.Warning = fmt.Sprintf("failed to restore modification time: %v", err)
			slog.Warn("failed to restore modification time",
				"file", record.Name,
				"destination", destination,
				"error", err)
		}
	}

	slog.Info("move succeeded",
		"file", record.Name,
		"destination", destination,
		"category", classification.Category,
		"dry_run", e.dryRun)

	return op
}

// move renames src to dst, falling back to copy-verify-delete when the
// destination is on a different filesystem. Same-filesystem moves are always
// a single rename so they stay atomic.
func (e *Executor) move(src, dst string) error {
	err := e.fs.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return e.copyAcrossFilesystems(src, dst)
}

// copyAcrossFilesystems copies src to dst, verifies the byte count, and only
// then deletes the source. Any failure removes the partial destination so no
// orphan files are left behind.
func (e *Executor) copyAcrossFilesystems(src, dst string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	in, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := e.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	written, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = e.fs.Remove(dst)
		return fmt.Errorf("failed to copy across filesystems: %w", copyErr)
	}

	if written != info.Size() {
		_ = e.fs.Remove(dst)
		return fmt.Errorf("%w: copied %d of %d bytes", common.ErrPartialCopy, written, info.Size())
	}

	if err := e.fs.Remove(src); err != nil {
		// Both copies exist at this point; removing the destination restores
		// the single-copy invariant before reporting failure.
		_ = e.fs.Remove(dst)
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}

	return nil
}

func (e *Executor) fail(op model.OperationRecord, record model.FileRecord, err error) model.OperationRecord {
	op.Outcome = model.OutcomeFailed
	op.FailureKind = classifyFailure(err)
	op.Error = err.Error()

	slog.Error("move failed",
		"file", record.Name,
		"category", op.Category,
		"kind", op.FailureKind,
		"error", err)

	return op
}

// classifyFailure maps a relocation error onto the failure taxonomy.
func classifyFailure(err error) model.FailureKind {
	switch {
	case errors.Is(err, common.ErrDuplicatesExhausted):
		return model.FailureDuplicatesExhausted
	case errors.Is(err, common.ErrPartialCopy):
		return model.FailurePartialCopy
	case errors.Is(err, fs.ErrPermission):
		return model.FailurePermissionDenied
	default:
		return model.FailureFileUnavailable
	}
}
