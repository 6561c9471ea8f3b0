package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-files-must-flow/internal/classify"
	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/config"
	"github.com/Veraticus/the-files-must-flow/internal/engine"
	"github.com/Veraticus/the-files-must-flow/internal/llm"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/organize"
	"github.com/Veraticus/the-files-must-flow/internal/report"
	"github.com/Veraticus/the-files-must-flow/internal/scan"
	"github.com/Veraticus/the-files-must-flow/internal/storage"
)

func organizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize [folder]",
		Short: "Classify and relocate files into category folders",
		Long: `Scan the accumulation folder, classify every file with the two-stage
classifier, and move each one into its category subfolder.

Examples:
  tidy organize                   # Organize the configured folder
  tidy organize ~/Downloads       # Organize a specific folder
  tidy organize --dry-run         # Preview without moving anything
  tidy organize --workers 4       # Relocate with a worker pool`,
		Args: cobra.MaximumNArgs(1),
		RunE: runOrganize,
	}

	cmd.Flags().Bool("dry-run", false, "Preview without moving files")
	cmd.Flags().Int("workers", 0, "Number of relocation workers (0 = use config)")

	_ = viper.BindPFlag("organize.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("organize.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun := viper.GetBool("organize.dry_run")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if workers := viper.GetInt("organize.workers"); workers > 0 {
		cfg.Engine.Workers = workers
	}

	dir := cfg.Source.Dir
	if len(args) > 0 {
		dir = config.ExpandPath(args[0])
	}
	if dir == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return fmt.Errorf("failed to get home directory: %w", homeErr)
		}
		dir = filepath.Join(home, "Downloads")
		slog.Info("no folder configured, using default", "dir", dir)
	}

	fs := afero.NewOsFs()

	info, err := fs.Stat(dir)
	if err != nil {
		return fmt.Errorf("folder not found: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	startedAt := time.Now()

	scanner := scan.New(fs, cfg.Source.SystemFilePatterns)
	records, err := scanner.Scan(ctx, dir)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No files to organize."))
		return nil
	}

	eng, cleanup, err := buildEngine(cfg, fs, dir, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	bar := progressbar.Default(int64(len(records)), "organizing")
	eng.OnRecord(func(_ model.OperationRecord) {
		_ = bar.Add(1)
	})

	led, runErr := eng.Organize(ctx, records)
	_ = bar.Finish()

	finishedAt := time.Now()
	results := led.Records()
	stats := report.BuildStats(results, startedAt, finishedAt)

	if !dryRun {
		summaryPath := filepath.Join(dir, cfg.Source.OrganizedFolder, "summary.md")
		if err := report.WriteSummary(fs, summaryPath, stats, results); err != nil {
			slog.Warn("failed to write summary report", "error", err)
		} else {
			fmt.Println(cli.SubtleStyle.Render("Summary report: " + summaryPath))
		}

		if err := persistRun(cmd, cfg, dir, stats, results); err != nil {
			slog.Warn("failed to persist audit history", "error", err)
		}
	}

	printSummary(stats, dryRun)

	return runErr
}

func buildEngine(cfg config.Config, fs afero.Fs, dir string, dryRun bool) (*engine.Engine, func(), error) {
	categorySet, err := cfg.CategorySet()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid category configuration: %w", err)
	}

	mimeRules := make([]classify.MIMERule, len(cfg.MIMEPrefixes))
	for i, rule := range cfg.MIMEPrefixes {
		mimeRules[i] = classify.MIMERule{Prefix: rule.Prefix, Category: rule.Category}
	}
	rules := classify.NewRuleClassifier(cfg.ExtensionIndex(), mimeRules, cfg.Fallback)

	purpose, cleanup, err := buildPurposeClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}

	merger := classify.NewMerger(cfg.Classification.ConfidenceFloor, cfg.Fallback)

	baseDir := filepath.Join(dir, cfg.Source.OrganizedFolder)
	resolver := organize.NewDuplicateResolver(fs, cfg.Duplicates.SuffixPattern, cfg.Duplicates.MaxAttempts)
	executor := organize.NewExecutor(fs, resolver, categorySet, baseDir, dryRun)

	eng := engine.NewWithConfig(rules, purpose, merger, executor, engine.Config{
		Workers: cfg.Engine.Workers,
	})

	return eng, cleanup, nil
}

// buildPurposeClassifier picks the second-stage classifier: the LLM backend
// when enabled and configured, the deterministic keyword matcher otherwise.
func buildPurposeClassifier(cfg config.Config) (classify.PurposeClassifier, func(), error) {
	noop := func() {}

	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		hints := make([]llm.PurposeHint, len(cfg.Keywords))
		for i, rule := range cfg.Keywords {
			examples := rule.Words
			if len(examples) > 3 {
				examples = examples[:3]
			}
			hints[i] = llm.PurposeHint{Category: rule.Category, Examples: examples}
		}

		classifier, err := llm.NewClassifier(llm.Config{
			Provider:    cfg.LLM.Provider,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
			RateLimit:   cfg.LLM.RateLimit,
			CacheTTL:    cfg.LLM.CacheTTL,
			MaxRetries:  cfg.LLM.MaxRetries,
			RetryDelay:  cfg.LLM.RetryDelay,
		}, hints, cfg.Fallback, cfg.Classification.AmbiguityThreshold, slog.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM classifier: %w", err)
		}

		return classifier, func() { _ = classifier.Close() }, nil
	}

	lists := make([]classify.KeywordList, len(cfg.Keywords))
	for i, rule := range cfg.Keywords {
		lists[i] = classify.KeywordList{Category: rule.Category, Words: rule.Words}
	}

	return classify.NewKeywordClassifier(lists, cfg.Fallback, cfg.Classification.AmbiguityThreshold), noop, nil
}

func persistRun(cmd *cobra.Command, cfg config.Config, dir string, stats report.Stats, records []model.OperationRecord) error {
	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	return store.SaveRun(ctx, storage.Run{
		ID:         uuid.NewString(),
		SourceDir:  dir,
		StartedAt:  stats.StartedAt,
		FinishedAt: stats.FinishedAt,
		Total:      stats.Total,
		Moved:      stats.Moved,
		Failed:     stats.Failed,
	}, records)
}

func printSummary(stats report.Stats, dryRun bool) {
	title := "Organization complete!"
	if dryRun {
		title = "Dry run complete (no files were moved)"
	}
	fmt.Println()
	fmt.Println(cli.TitleStyle.Render(title))

	if stats.Moved > 0 {
		fmt.Println(report.RenderTable(stats))
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %d of %d files organized in %.1fs",
		stats.Moved, stats.Total, stats.Duration().Seconds())))

	if stats.Failed > 0 {
		fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("✗ %d files failed, see the summary report", stats.Failed)))
	}
	if stats.Degraded > 0 {
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("! %d files moved with warnings", stats.Degraded)))
	}
}
