package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docwarden/internal/migrate"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Docs       DocsConfig        `yaml:"docs"`
	Scope      ScopeConfig       `yaml:"scope"`
	Navigation NavigationConfig  `yaml:"navigation"`
	Migration  MigrationConfig   `yaml:"migration"`
	Watch      WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Docs.Validate(); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	if err := c.Scope.Validate(); err != nil {
		return fmt.Errorf("scope: %w", err)
	}
	if err := c.Navigation.Validate(); err != nil {
		return fmt.Errorf("navigation: %w", err)
	}
	if err := c.Migration.Validate(); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// DocsConfig describes the knowledge base layout and its metadata rules.
type DocsConfig struct {
	// MarkerDir identifies the project root and holds the documents.
	MarkerDir      string   `yaml:"marker_dir"`
	VariantSuffix  string   `yaml:"variant_suffix"`
	ExcludedNames  []string `yaml:"excluded_names"`
	ExcludedDirs   []string `yaml:"excluded_dirs"`
	RequiredFields []string `yaml:"required_fields"`
	Statuses       []string `yaml:"statuses"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MarkerDir, validation.Required),
		validation.Field(&c.VariantSuffix, validation.Required),
		validation.Field(&c.Statuses, validation.Required),
	)
}

// ScopeConfig configures the tier dependency check.
type ScopeConfig struct {
	Fields           []string `yaml:"fields"`
	SharedTier       string   `yaml:"shared_tier"`
	ConsumerTier     string   `yaml:"consumer_tier"`
	SharedPathHint   string   `yaml:"shared_path_hint"`
	ConsumerPathHint string   `yaml:"consumer_path_hint"`
}

// Validate validates the scope configuration.
func (c *ScopeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Fields, validation.Required),
		validation.Field(&c.SharedTier, validation.Required),
		validation.Field(&c.ConsumerTier, validation.Required),
	); err != nil {
		return err
	}
	if c.SharedTier == c.ConsumerTier {
		return fmt.Errorf("shared and consumer tier are both %q", c.SharedTier)
	}
	return nil
}

// NavigationConfig locates the navigation targets.
type NavigationConfig struct {
	HomeIndex string `yaml:"home_index"`
	// HomeTitle overrides the title read from the home index.
	HomeTitle       string   `yaml:"home_title"`
	CategoryIndexes []string `yaml:"category_indexes"`
}

// Validate validates the navigation configuration.
func (c *NavigationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HomeIndex, validation.Required),
		validation.Field(&c.CategoryIndexes, validation.Required),
	)
}

// MigrationConfig configures the terminology migration.
type MigrationConfig struct {
	Rules          []migrate.Rule `yaml:"rules"`
	MigratedMarker string         `yaml:"migrated_marker"`
	LegacyMarker   string         `yaml:"legacy_marker"`
	SkipTokens     []string       `yaml:"skip_tokens"`
	ExtraFiles     []string       `yaml:"extra_files"`
}

// Validate validates the migration configuration.
func (c *MigrationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Rules, validation.Required),
	); err != nil {
		return err
	}
	for i, r := range c.Rules {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
	}
	return nil
}

// WatchConfig configures validate --watch.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Docs: DocsConfig{
			MarkerDir:     ".claude",
			VariantSuffix: "_KOR",
			ExcludedNames: []string{"CLAUDE.md", "README.md"},
			ExcludedDirs:  []string{"commands", "skills"},
			RequiredFields: []string{
				"title", "version", "scope", "created", "modified",
				"category", "tags", "paired_document", "status",
			},
			Statuses: []string{"draft", "review", "approved", "deprecated", "active"},
		},
		Scope: ScopeConfig{
			Fields:           []string{"scope", "layer"},
			SharedTier:       "framework",
			ConsumerTier:     "game",
			SharedPathHint:   "/framework/",
			ConsumerPathHint: "/games/",
		},
		Navigation: NavigationConfig{
			HomeIndex:       "MASTER_INDEX.md",
			CategoryIndexes: []string{"INDEX.md", "README.md", "index.md"},
		},
		Migration: MigrationConfig{
			Rules:          append([]migrate.Rule(nil), migrate.DefaultRules...),
			MigratedMarker: "scope-system.md",
			LegacyMarker:   "layer-system.md",
			SkipTokens:     []string{"scope-system", "layer-system"},
			ExtraFiles:     []string{"CLAUDE.md"},
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
