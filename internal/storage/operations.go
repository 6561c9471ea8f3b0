package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Run summarizes one organization run in the audit history.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	SourceDir  string
	Total      int
	Moved      int
	Failed     int
}

// SaveRun writes a run summary and all of its operation records in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, records []model.OperationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source_dir, started_at, finished_at, total, moved, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, run.StartedAt, run.FinishedAt, run.Total, run.Moved, run.Failed)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO operations (id, run_id, source_path, destination_path, category, method,
		                          confidence, explanation, outcome, failure_kind, error, warning, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare operation insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.ID, run.ID, record.SourcePath, record.DestinationPath,
			record.Category, string(record.Classification.Method),
			record.Classification.Confidence, record.Classification.Explanation,
			string(record.Outcome), string(record.FailureKind),
			record.Error, record.Warning, record.AttemptedAt)
		if err != nil {
			return fmt.Errorf("failed to save operation %s: %w", record.ID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_dir, started_at, finished_at, total, moved, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SourceDir, &run.StartedAt, &run.FinishedAt,
			&run.Total, &run.Moved, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetOperations returns every operation record of one run in append order.
func (s *SQLiteStore) GetOperations(ctx context.Context, runID string) ([]model.OperationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, destination_path, category, method, confidence,
		        explanation, outcome, failure_kind, error, warning, attempted_at
		 FROM operations WHERE run_id = ? ORDER BY attempted_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.OperationRecord
	for rows.Next() {
		var record model.OperationRecord
		var method, outcome, failureKind string
		var explanation, errMsg, warning sql.NullString

		if err := rows.Scan(&record.ID, &record.SourcePath, &record.DestinationPath,
			&record.Category, &method, &record.Classification.Confidence,
			&explanation, &outcome, &failureKind, &errMsg, &warning,
			&record.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}

		record.Classification.Category = record.Category
		record.Classification.Method = model.ClassificationMethod(method)
		record.Classification.Explanation = explanation.String
		record.Outcome = model.OperationOutcome(outcome)
		record.FailureKind = model.FailureKind(failureKind)
		record.Error = errMsg.String
		record.Warning = warning.String

		records = append(records, record)
	}

	return records, rows.Err()
}
