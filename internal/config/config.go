package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// CategoryRule maps a named category to its destination folder and the file
// extensions that resolve to it.
type CategoryRule struct {
	Name       string   `mapstructure:"name"`
	Folder     string   `mapstructure:"folder"`
	Extensions []string `mapstructure:"extensions"`
}

// MIMEPrefixRule maps a MIME type prefix (e.g. "image/") to a category.
type MIMEPrefixRule struct {
	Prefix   string `mapstructure:"prefix"`
	Category string `mapstructure:"category"`
}

// KeywordRule maps filename keywords to a purpose category.
type KeywordRule struct {
	Category string   `mapstructure:"category"`
	Words    []string `mapstructure:"words"`
}

// SourceConfig describes the folder being organized.
type SourceConfig struct {
	Dir                string   `mapstructure:"dir"`
	OrganizedFolder    string   `mapstructure:"organized_folder"`
	SystemFilePatterns []string `mapstructure:"system_file_patterns"`
}

// ClassificationConfig holds the confidence thresholds of the two-stage
// classifier.
type ClassificationConfig struct {
	AmbiguityThreshold float64 `mapstructure:"ambiguity_threshold"`
	ConfidenceFloor    float64 `mapstructure:"confidence_floor"`
}

// DuplicateConfig controls collision-free destination naming.
type DuplicateConfig struct {
	SuffixPattern string `mapstructure:"suffix_pattern"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
}

// EngineConfig holds pipeline execution settings.
type EngineConfig struct {
	Workers int `mapstructure:"workers"`
}

// LLMConfig configures the optional networked purpose classifier.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Enabled     bool          `mapstructure:"enabled"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   int           `mapstructure:"rate_limit"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// DatabaseConfig locates the audit history database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the validated settings object consumed by the engine and CLI.
type Config struct {
	Source         SourceConfig         `mapstructure:"source"`
	Fallback       string               `mapstructure:"fallback_category"`
	Categories     []CategoryRule       `mapstructure:"categories"`
	MIMEPrefixes   []MIMEPrefixRule     `mapstructure:"mime_prefixes"`
	Keywords       []KeywordRule        `mapstructure:"keywords"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Duplicates     DuplicateConfig      `mapstructure:"duplicates"`
	Engine         EngineConfig         `mapstructure:"engine"`
	LLM            LLMConfig            `mapstructure:"llm"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// Default returns the standard configuration with the full category table.
func Default() Config {
	return Config{
		Source: SourceConfig{
			OrganizedFolder:    "organized",
			SystemFilePatterns: []string{".tmp", ".part", ".DS_Store", ".crdownload"},
		},
		Fallback: "Miscellaneous",
		Categories: []CategoryRule{
			{Name: "Documents", Extensions: []string{"pdf", "doc", "docx", "txt", "rtf", "odt"}},
			{Name: "Images", Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"}},
			{Name: "Videos", Extensions: []string{"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm"}},
			{Name: "Archives", Extensions: []string{"zip", "rar", "7z", "tar", "gz", "bz2"}},
			{Name: "Code", Extensions: []string{"py", "js", "html", "css", "java", "cpp", "c", "h", "go"}},
			{Name: "Installers", Extensions: []string{"exe", "msi", "dmg", "pkg", "deb", "rpm"}},
			{Name: "Work"},
			{Name: "Study"},
			{Name: "Miscellaneous"},
		},
		MIMEPrefixes: []MIMEPrefixRule{
			{Prefix: "image/", Category: "Images"},
			{Prefix: "video/", Category: "Videos"},
			{Prefix: "audio/", Category: "Videos"},
			{Prefix: "text/", Category: "Documents"},
		},
		Keywords: []KeywordRule{
			{Category: "Study", Words: []string{
				"assignment", "homework", "lecture", "notes", "study",
				"exam", "quiz", "course", "tutorial", "lab",
				"thesis", "dissertation", "research",
			}},
			{Category: "Work", Words: []string{
				"invoice", "contract", "meeting", "report", "proposal",
				"presentation", "budget", "financial", "business", "client",
				"memo", "agenda", "minutes", "quarterly", "annual",
			}},
		},
		Classification: ClassificationConfig{
			AmbiguityThreshold: 0.7,
			ConfidenceFloor:    0.5,
		},
		Duplicates: DuplicateConfig{
			SuffixPattern: "_{n}",
			MaxAttempts:   10000,
		},
		Engine: EngineConfig{
			Workers: 1,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   150,
			Timeout:     15 * time.Second,
			RateLimit:   60,
			CacheTTL:    15 * time.Minute,
			MaxRetries:  3,
			RetryDelay:  time.Second,
		},
		Database: DatabaseConfig{
			Path: "~/.local/share/tidy/tidy.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load unmarshals the global viper state over the defaults and validates the
// result. Absent keys keep their default values.
func Load() (Config, error) {
	cfg := Default()

	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.Source.Dir = ExpandPath(cfg.Source.Dir)
	cfg.Database.Path = ExpandPath(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration and returns an aggregated error listing
// every problem found.
func (c Config) Validate() error {
	var errs []string

	if len(c.Categories) == 0 {
		errs = append(errs, "at least one category is required")
	}
	if c.Fallback == "" {
		errs = append(errs, "fallback category name cannot be empty")
	}
	if c.Source.OrganizedFolder == "" {
		errs = append(errs, "organized folder name cannot be empty")
	}
	if c.Classification.AmbiguityThreshold < 0.0 || c.Classification.AmbiguityThreshold > 1.0 {
		errs = append(errs, "ambiguity threshold must be between 0.0 and 1.0")
	}
	if c.Classification.ConfidenceFloor < 0.0 || c.Classification.ConfidenceFloor > 1.0 {
		errs = append(errs, "confidence floor must be between 0.0 and 1.0")
	}
	if !strings.Contains(c.Duplicates.SuffixPattern, "{n}") {
		errs = append(errs, "duplicate suffix pattern must contain the {n} placeholder")
	}
	if c.Duplicates.MaxAttempts <= 0 {
		errs = append(errs, "duplicate max attempts must be positive")
	}
	if c.Engine.Workers < 1 {
		errs = append(errs, "engine workers must be at least 1")
	}
	if c.LLM.Enabled && c.LLM.Provider == "" {
		errs = append(errs, "llm provider is required when the llm classifier is enabled")
	}

	for _, rule := range c.MIMEPrefixes {
		if rule.Prefix == "" || rule.Category == "" {
			errs = append(errs, "mime prefix rules require both prefix and category")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CategorySet builds the ordered category-to-folder mapping, including the
// always-present fallback.
func (c Config) CategorySet() (*model.CategorySet, error) {
	categories := make([]model.Category, len(c.Categories))
	for i, rule := range c.Categories {
		categories[i] = model.Category{Name: rule.Name, Folder: rule.Folder}
	}
	return model.NewCategorySet(categories, c.Fallback)
}

// ExtensionIndex flattens the category rules into an extension-to-category
// lookup. Extensions are lowercased with any leading dot stripped.
func (c Config) ExtensionIndex() map[string]string {
	index := make(map[string]string)
	for _, rule := range c.Categories {
		for _, ext := range rule.Extensions {
			ext = strings.TrimPrefix(strings.ToLower(ext), ".")
			if ext == "" {
				continue
			}
			if _, exists := index[ext]; !exists {
				index[ext] = rule.Name
			}
		}
	}
	return index
}
