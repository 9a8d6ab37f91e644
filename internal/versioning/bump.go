package versioning

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/starford/docwarden/internal/apperr"
	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/frontmatter"
	"github.com/starford/docwarden/internal/storage"
)

// DateLayout is the format of the modified field.
const DateLayout = "2006-01-02"

// Result describes one rewritten document.
type Result struct {
	Path     string
	From, To Version
	// Modified is the new modified date, empty when the field is absent.
	Modified string
	Written  bool
}

// Option configures a Bumper.
type Option func(*Bumper)

// WithDryRun computes results without touching files.
func WithDryRun(dryRun bool) Option {
	return func(b *Bumper) { b.dryRun = dryRun }
}

// WithClock overrides the source of today's date.
func WithClock(now func() time.Time) Option {
	return func(b *Bumper) { b.now = now }
}

// Bumper rewrites version and modified fields.
type Bumper struct {
	store  storage.Provider
	logger *slog.Logger
	now    func() time.Time
	dryRun bool
}

// NewBumper creates a Bumper writing through store.
func NewBumper(store storage.Provider, logger *slog.Logger, opts ...Option) *Bumper {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bumper{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bump bumps the document at abs and then its paired document, if any, with
// the same kind. Each document is visited at most once so a pair pointing back
// at its origin ends the cascade. Results of documents bumped before a
// failure are returned along with the error.
func (b *Bumper) Bump(abs string, kind Kind) ([]Result, error) {
	visited := make(map[string]bool)
	var results []Result
	for abs != "" && !visited[abs] {
		visited[abs] = true
		res, next, err := b.bumpOne(abs, kind)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		abs = next
	}
	return results, nil
}

// bumpOne rewrites a single file and returns the paired document to visit next.
func (b *Bumper) bumpOne(abs string, kind Kind) (Result, string, error) {
	rel := b.rel(abs)
	if !b.store.Exists(abs) {
		return Result{}, "", fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
	}
	data, err := b.store.Read(abs)
	if err != nil {
		return Result{}, "", err
	}
	content := string(data)

	parsed, ok := frontmatter.Parse(content)
	if !ok {
		return Result{}, "", fmt.Errorf("%w: %s", apperr.ErrNoFrontmatter, rel)
	}
	if !parsed.Metadata.Has("version") {
		return Result{}, "", fmt.Errorf("%w: %s", apperr.ErrNoVersion, rel)
	}
	from, err := ParseVersion(parsed.Metadata.String("version"))
	if err != nil {
		return Result{}, "", fmt.Errorf("%s: %w", rel, err)
	}

	res := Result{Path: rel, From: from, To: from.Bump(kind)}
	updated, _ := frontmatter.ReplaceScalar(content, "version", res.To.String())
	today := b.now().Format(DateLayout)
	if out, ok := frontmatter.ReplaceScalar(updated, "modified", today); ok {
		updated = out
		res.Modified = today
	}

	if !b.dryRun {
		if err := b.store.Backup(abs, data); err != nil {
			return Result{}, "", err
		}
		if err := b.store.Write(abs, []byte(updated)); err != nil {
			return Result{}, "", err
		}
		res.Written = true
	}
	b.logger.Info("bump: version updated",
		slog.String("path", rel),
		slog.String("from", from.String()),
		slog.String("to", res.To.String()),
		slog.Bool("dry_run", b.dryRun))

	next := ""
	if paired := parsed.Metadata.String("paired_document"); paired != "" {
		target := docgraph.Resolve(abs, paired)
		if b.store.Exists(target) {
			next = target
		} else {
			b.logger.Warn("bump: paired document not found",
				slog.String("path", rel),
				slog.String("paired_document", paired))
		}
	}
	return res, next, nil
}

func (b *Bumper) rel(abs string) string {
	if rel, err := filepath.Rel(b.store.Root(), abs); err == nil {
		return filepath.ToSlash(rel)
	}
	return abs
}
