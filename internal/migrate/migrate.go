// Package migrate rewrites legacy terminology across the knowledge base.
package migrate

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/docwarden/internal/storage"
)

// Rule replaces every match of Pattern with Replacement. A \b at either end
// of Pattern is a Unicode word boundary, so "layer" inside "layer는" or
// "레이어layer" is left alone.
type Rule struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// DefaultRules migrate "layer" terminology to "scope". Order matters: the
// specific forms run before the bare words.
var DefaultRules = []Rule{
	{Pattern: `\blayer:`, Replacement: "scope:"},
	{Pattern: `layer-system`, Replacement: "scope-system"},
	{Pattern: `layer_validate\.py`, Replacement: "scope_validate.py"},
	{Pattern: `\bLayer\b`, Replacement: "Scope"},
	{Pattern: `\blayer\b`, Replacement: "scope"},
	{Pattern: `\bLayers\b`, Replacement: "Scopes"},
	{Pattern: `\blayers\b`, Replacement: "scopes"},
	{Pattern: `레이어`, Replacement: "스코프"},
}

// Config selects the files to migrate and the rules to apply.
type Config struct {
	Rules []Rule
	// MarkerDir is walked recursively, relative to the project root.
	MarkerDir string
	// A file that mentions MigratedMarker but not LegacyMarker is skipped.
	MigratedMarker string
	LegacyMarker   string
	// SkipTokens exclude files whose name contains any of them.
	SkipTokens []string
	// ExtraFiles are root-relative files added when they exist.
	ExtraFiles []string
}

type compiledRule struct {
	re          *regexp.Regexp
	replacement string
	// leading and trailing hold the stripped edge \b anchors.
	leading, trailing bool
}

func compileRule(r Rule) (compiledRule, error) {
	p := r.Pattern
	c := compiledRule{replacement: r.Replacement}
	if strings.HasPrefix(p, `\b`) {
		c.leading, p = true, p[2:]
	}
	if strings.HasSuffix(p, `\b`) && !strings.HasSuffix(p, `\\b`) {
		c.trailing, p = true, p[:len(p)-2]
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return compiledRule{}, err
	}
	c.re = re
	return c, nil
}

func (c compiledRule) replace(s string) string {
	if !c.leading && !c.trailing {
		return c.re.ReplaceAllLiteralString(s, c.replacement)
	}
	var b strings.Builder
	last := 0
	for _, loc := range c.re.FindAllStringIndex(s, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if (c.leading && !wordBoundary(s, loc[0])) || (c.trailing && !wordBoundary(s, loc[1])) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(c.replacement)
		last = loc[1]
	}
	if last == 0 && b.Len() == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// wordBoundary reports whether exactly one side of byte offset i is a word
// character.
func wordBoundary(s string, i int) bool {
	var before, after bool
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWord(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWord(r)
	}
	return before != after
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Stats counts the outcome of a run.
type Stats struct {
	Processed int
	Updated   int
	Skipped   int
	Errors    int
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithDryRun reports changes without writing files.
func WithDryRun(dryRun bool) Option {
	return func(m *Migrator) { m.dryRun = dryRun }
}

// Migrator applies the rules to files.
type Migrator struct {
	store  storage.Provider
	cfg    Config
	rules  []compiledRule
	logger *slog.Logger
	dryRun bool
}

// New compiles cfg.Rules and returns a Migrator. An invalid pattern is an
// error.
func New(store storage.Provider, cfg Config, logger *slog.Logger, opts ...Option) (*Migrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rules := make([]compiledRule, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("migrate: rule %d: %w", i, err)
		}
		rules = append(rules, c)
	}
	m := &Migrator{store: store, cfg: cfg, rules: rules, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Apply runs every rule over content in order.
func (m *Migrator) Apply(content string) string {
	for _, r := range m.rules {
		content = r.replace(content)
	}
	return content
}

// Migrated reports whether content has already been migrated.
func (m *Migrator) Migrated(content string) bool {
	if m.cfg.MigratedMarker == "" {
		return false
	}
	return strings.Contains(content, m.cfg.MigratedMarker) &&
		(m.cfg.LegacyMarker == "" || !strings.Contains(content, m.cfg.LegacyMarker))
}

// Files returns the sorted absolute paths selected for migration.
func (m *Migrator) Files() ([]string, error) {
	metas, err := m.store.List(m.cfg.MarkerDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, meta := range metas {
		if m.skipName(filepath.Base(meta.Path)) {
			continue
		}
		files = append(files, filepath.Join(m.store.Root(), filepath.FromSlash(meta.Path)))
	}
	for _, extra := range m.cfg.ExtraFiles {
		abs := filepath.Join(m.store.Root(), filepath.FromSlash(extra))
		if m.store.Exists(abs) {
			files = append(files, abs)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *Migrator) skipName(name string) bool {
	for _, tok := range m.cfg.SkipTokens {
		if tok != "" && strings.Contains(name, tok) {
			return true
		}
	}
	return false
}

// MigrateFile rewrites one file and reports whether it changed.
func (m *Migrator) MigrateFile(abs string) (bool, error) {
	data, err := m.store.Read(abs)
	if err != nil {
		return false, err
	}
	content := string(data)
	if m.Migrated(content) {
		m.logger.Debug("migrate: already migrated", slog.String("path", abs))
		return false, nil
	}
	updated := m.Apply(content)
	if updated == content {
		m.logger.Debug("migrate: no changes needed", slog.String("path", abs))
		return false, nil
	}
	if m.dryRun {
		m.logger.Info("migrate: would update", slog.String("path", abs))
		return true, nil
	}
	if err := m.store.Backup(abs, data); err != nil {
		return false, err
	}
	if err := m.store.Write(abs, []byte(updated)); err != nil {
		return false, err
	}
	m.logger.Info("migrate: updated", slog.String("path", abs))
	return true, nil
}

// Run migrates every selected file. Per-file failures are counted and logged.
func (m *Migrator) Run() (Stats, error) {
	files, err := m.Files()
	if err != nil {
		return Stats{}, err
	}
	m.logger.Info("migrate: found files", slog.Int("count", len(files)))

	var st Stats
	for _, abs := range files {
		st.Processed++
		changed, err := m.MigrateFile(abs)
		switch {
		case err != nil:
			st.Errors++
			m.logger.Error("migrate: processing failed", slog.String("path", abs), slog.String("error", err.Error()))
		case changed:
			st.Updated++
		default:
			st.Skipped++
		}
	}
	return st, nil
}
