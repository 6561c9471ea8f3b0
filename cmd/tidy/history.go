package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/config"
	"github.com/Veraticus/the-files-must-flow/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past organization runs",
		Long: `Show the audit history of past organization runs. Without arguments it
lists recent runs; with a run ID it shows every operation of that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	_ = viper.BindPFlag("history.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open audit history: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	if len(args) == 1 {
		return showRun(cmd, store, args[0])
	}
	return listRuns(cmd, store)
}

func listRuns(cmd *cobra.Command, store *storage.SQLiteStore) error {
	runs, err := store.ListRuns(cmd.Context(), viper.GetInt("history.limit"))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No runs recorded yet."))
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Run ID", "Started", "Folder", "Total", "Moved", "Failed"})

	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID[:8],
			run.StartedAt.Format("2006-01-02 15:04"),
			run.SourceDir,
			run.Total,
			run.Moved,
			run.Failed,
		})
	}

	fmt.Println(cli.TitleStyle.Render("Organization history"))
	fmt.Println(t.Render())
	fmt.Println(cli.SubtleStyle.Render("Use 'tidy history <run-id>' to see individual operations."))

	return nil
}

func showRun(cmd *cobra.Command, store *storage.SQLiteStore, runID string) error {
	// Accept the abbreviated IDs printed by the run listing.
	runs, err := store.ListRuns(cmd.Context(), 0)
	if err != nil {
		return err
	}
	for _, run := range runs {
		if strings.HasPrefix(run.ID, runID) {
			runID = run.ID
			break
		}
	}

	records, err := store.GetOperations(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no operations found for run %s", runID)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"File", "Category", "Method", "Conf", "Outcome"})

	for _, record := range records {
		outcome := cli.SuccessStyle.Render(string(record.Outcome))
		if !record.Succeeded() {
			outcome = cli.ErrorStyle.Render(fmt.Sprintf("%s (%s)", record.Outcome, record.FailureKind))
		}
		t.AppendRow(table.Row{
			filepath.Base(record.SourcePath),
			record.Category,
			record.Classification.Method,
			fmt.Sprintf("%.2f", record.Classification.Confidence),
			outcome,
		})
	}

	fmt.Println(cli.TitleStyle.Render("Run " + runID))
	fmt.Println(t.Render())

	return nil
}
