// Package report turns the operation ledger into run statistics, a markdown
// summary, and a styled console table.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Stats aggregates the outcome of one run.
type Stats struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	ByCategory  map[string]int
	Total       int
	Moved       int
	Failed      int
	Degraded    int
}

// BuildStats computes run statistics from the ledger records.
func BuildStats(records []model.OperationRecord, startedAt, finishedAt time.Time) Stats {
	stats := Stats{
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Total:      len(records),
		ByCategory: make(map[string]int),
	}

	for _, record := range records {
		if record.Succeeded() {
			stats.Moved++
			stats.ByCategory[record.Category]++
		} else {
			stats.Failed++
		}
		if record.Warning != "" {
			stats.Degraded++
		}
	}

	return stats
}

// Duration returns the wall-clock duration of the run.
func (s Stats) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// sortedCategories returns category names with at least one moved file,
// alphabetically.
func (s Stats) sortedCategories() []string {
	names := make([]string, 0, len(s.ByCategory))
	for name := range s.ByCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderMarkdown produces the markdown summary written into the organized
// folder.
func RenderMarkdown(stats Stats, records []model.OperationRecord) string {
	var b strings.Builder

	b.WriteString("# Cleanup Summary\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n", stats.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Duration:** %.1f seconds\n", stats.Duration().Seconds())
	fmt.Fprintf(&b, "**Total Files Processed:** %d\n", stats.Total)
	fmt.Fprintf(&b, "**Total Files Moved:** %d\n", stats.Moved)
	fmt.Fprintf(&b, "**Files Failed:** %d\n\n", stats.Failed)

	if len(stats.ByCategory) > 0 {
		b.WriteString("## Category Breakdown\n\n")
		b.WriteString("| Category | Files Moved | Percentage |\n")
		b.WriteString("|----------|-------------|------------|\n")
		for _, category := range stats.sortedCategories() {
			count := stats.ByCategory[category]
			percentage := 0.0
			if stats.Moved > 0 {
				percentage = float64(count) / float64(stats.Moved) * 100
			}
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", category, count, percentage)
		}
		b.WriteString("\n")
	}

	if samples := sampleOperations(records, 2); len(samples) > 0 {
		b.WriteString("## Sample Operations\n\n")
		for _, category := range sortedKeys(samples) {
			fmt.Fprintf(&b, "### %s\n", category)
			for _, op := range samples[category] {
				fmt.Fprintf(&b, "- `%s` → %s (%s)\n",
					filepath.Base(op.SourcePath),
					op.DestinationPath,
					op.Classification.Explanation)
			}
			b.WriteString("\n")
		}
	}

	var failures []model.OperationRecord
	for _, record := range records {
		if !record.Succeeded() {
			failures = append(failures, record)
		}
	}
	if len(failures) > 0 {
		b.WriteString("## Errors\n\n")
		for _, record := range failures {
			fmt.Fprintf(&b, "- `%s`: %s\n", filepath.Base(record.SourcePath), record.Error)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// WriteSummary renders the markdown summary and writes it to path.
func WriteSummary(fs afero.Fs, path string, stats Stats, records []model.OperationRecord) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	content := RenderMarkdown(stats, records)
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// RenderTable produces the console category breakdown table.
func RenderTable(stats Stats) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Category", "Moved", "%"})

	for _, category := range stats.sortedCategories() {
		count := stats.ByCategory[category]
		percentage := 0.0
		if stats.Moved > 0 {
			percentage = float64(count) / float64(stats.Moved) * 100
		}
		t.AppendRow(table.Row{category, count, fmt.Sprintf("%.1f", percentage)})
	}

	t.AppendFooter(table.Row{"Total", stats.Moved, ""})

	return t.Render()
}

func sampleOperations(records []model.OperationRecord, perCategory int) map[string][]model.OperationRecord {
	samples := make(map[string][]model.OperationRecord)
	for _, record := range records {
		if !record.Succeeded() {
			continue
		}
		if len(samples[record.Category]) < perCategory {
			samples[record.Category] = append(samples[record.Category], record)
		}
	}
	if len(samples) == 0 {
		return nil
	}
	return samples
}

func sortedKeys(m map[string][]model.OperationRecord) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
