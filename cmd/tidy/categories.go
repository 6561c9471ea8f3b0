package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/config"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the configured category rules",
		Long: `Show every configured category with its destination folder, the file
extensions that resolve to it, and the purpose keywords that hint at it.`,
		RunE: runCategories,
	}
}

func runCategories(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	categorySet, err := cfg.CategorySet()
	if err != nil {
		return err
	}

	keywordsByCategory := make(map[string][]string)
	for _, rule := range cfg.Keywords {
		keywordsByCategory[rule.Category] = append(keywordsByCategory[rule.Category], rule.Words...)
	}

	extensionsByCategory := make(map[string][]string)
	for _, rule := range cfg.Categories {
		extensionsByCategory[rule.Name] = rule.Extensions
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Category", "Folder", "Extensions", "Keywords"})

	for _, category := range categorySet.Categories() {
		name := category.Name
		if name == cfg.Fallback {
			name += " (fallback)"
		}
		t.AppendRow(table.Row{
			name,
			category.Folder,
			wrapList(extensionsByCategory[category.Name], 6),
			wrapList(keywordsByCategory[category.Name], 4),
		})
	}

	fmt.Println(cli.TitleStyle.Render("Configured categories"))
	fmt.Println(t.Render())

	for _, rule := range cfg.MIMEPrefixes {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  %s* → %s", rule.Prefix, rule.Category)))
	}

	return nil
}

// wrapList joins items with commas, breaking onto a new line every perLine
// items so wide lists stay readable in the table cell.
func wrapList(items []string, perLine int) string {
	if len(items) == 0 {
		return "-"
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			if i%perLine == 0 {
				b.WriteString(",\n")
			} else {
				b.WriteString(", ")
			}
		}
		b.WriteString(item)
	}
	return b.String()
}
