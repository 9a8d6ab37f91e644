// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docwarden/internal/apperr"
	"github.com/starford/docwarden/internal/docgraph"
	"github.com/starford/docwarden/internal/docsync"
	"github.com/starford/docwarden/internal/mcpserver"
	"github.com/starford/docwarden/internal/migrate"
	"github.com/starford/docwarden/internal/models"
	"github.com/starford/docwarden/internal/navigation"
	"github.com/starford/docwarden/internal/report"
	"github.com/starford/docwarden/internal/storage"
	"github.com/starford/docwarden/internal/validate"
	"github.com/starford/docwarden/internal/versioning"
	"github.com/starford/docwarden/internal/watch"
)

// Report titles.
const (
	TitleValidation = "Documentation Validation"
	TitleScope      = "Scope Dependency Validation"
	TitleSync       = "Translation Sync"
)

// App runs docwarden commands against one project root.
type App struct {
	config  *Config
	logger  *slog.Logger
	out     io.Writer
	workDir string
	root    string
	now     func() time.Time

	store *storage.FS
}

var _ mcpserver.Service = (*App)(nil)

// New locates the project root and prepares the application. Failing to find
// the root is a setup error wrapping apperr.ErrRootNotFound.
func New(opts ...Option) (*App, error) {
	app := &App{out: os.Stdout, now: time.Now}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	if app.logger == nil {
		app.logger = NewLogger(cfg.App, os.Stderr)
	}

	root := app.root
	if root == "" {
		start := app.workDir
		if start == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("get working dir: %w", err)
			}
			start = wd
		}
		found, err := storage.FindRoot(start, cfg.Docs.MarkerDir)
		if err != nil {
			return nil, err
		}
		root = found
	}

	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	app.store = store

	app.logger.Debug("Configuration loaded",
		slog.String("root", store.Root()),
		slog.String("marker_dir", cfg.Docs.MarkerDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return app, nil
}

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Root returns the absolute project root.
func (a *App) Root() string { return a.store.Root() }

func (a *App) markerDir() string {
	return filepath.Join(a.store.Root(), filepath.FromSlash(a.config.Docs.MarkerDir))
}

// locate resolves a user-supplied path: absolute, then root-relative, then
// relative to the marker directory.
func (a *App) locate(p string, dirs bool) (string, error) {
	if dirs {
		return storage.LocateAny(p, a.store.Root(), a.markerDir())
	}
	return storage.Locate(p, a.store.Root(), a.markerDir())
}

func (a *App) graph() (*docgraph.Graph, error) {
	docs := a.config.Docs
	return docgraph.Load(a.store, docgraph.Options{
		Dir:           docs.MarkerDir,
		VariantSuffix: docs.VariantSuffix,
		ExcludedNames: docs.ExcludedNames,
		ExcludedDirs:  docs.ExcludedDirs,
		Logger:        a.logger,
	})
}

func (a *App) scopePass() validate.Pass {
	s := a.config.Scope
	return validate.ScopePass(validate.ScopeRules{
		Fields:           s.Fields,
		SharedTier:       s.SharedTier,
		ConsumerTier:     s.ConsumerTier,
		SharedPathHint:   s.SharedPathHint,
		ConsumerPathHint: s.ConsumerPathHint,
	})
}

// hasMetadata selects documents with a non-empty frontmatter block. Full
// validation reports the rest as Missing Frontmatter.
func hasMetadata(doc *models.Document) bool {
	return doc.HasFrontmatter && len(doc.Metadata) > 0
}

func (a *App) run(title string, passes []validate.Pass, include func(*models.Document) bool, strict bool) (*report.Report, error) {
	g, err := a.graph()
	if err != nil {
		return nil, err
	}
	n, findings := validate.Run(g, passes, include, a.logger)
	return &report.Report{
		Title:     title,
		Root:      a.store.Root(),
		Documents: n,
		Strict:    strict,
		Findings:  findings,
	}, nil
}

// ValidateReport runs the metadata and scope passes. A non-empty path limits
// the run to that file or the documents under that directory.
func (a *App) ValidateReport(path string, strict bool) (*report.Report, error) {
	var include func(*models.Document) bool
	if path != "" {
		target, err := a.locate(path, true)
		if err != nil {
			return nil, err
		}
		include = func(doc *models.Document) bool {
			return doc.Abs == target || strings.HasPrefix(doc.Abs, target+string(os.PathSeparator))
		}
	}
	passes := validate.MetadataPasses(validate.Rules{
		RequiredFields: a.config.Docs.RequiredFields,
		Statuses:       a.config.Docs.Statuses,
	})
	passes = append(passes, a.scopePass())
	return a.run(TitleValidation, passes, include, strict)
}

// ScopeReport runs only the tier dependency pass.
func (a *App) ScopeReport() (*report.Report, error) {
	return a.run(TitleScope, []validate.Pass{a.scopePass()}, hasMetadata, false)
}

// SyncReport lists originals modified after their paired translation. Any
// drift fails the report.
func (a *App) SyncReport() (*report.Report, error) {
	return a.run(TitleSync, []validate.Pass{docsync.Pass(a.logger)}, hasMetadata, true)
}

// Bump bumps the version of the document at path and of its paired document.
func (a *App) Bump(path, kind string, dryRun bool) ([]versioning.Result, error) {
	k, err := versioning.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	abs, err := a.locate(path, false)
	if err != nil {
		return nil, err
	}
	bumper := versioning.NewBumper(a.store, a.logger,
		versioning.WithDryRun(dryRun),
		versioning.WithClock(a.now))
	return bumper.Bump(abs, k)
}

// Navigate injects navigation into the file or directory at path, or into
// the whole marker directory when all is set.
func (a *App) Navigate(path string, all, dryRun bool) (navigation.Stats, error) {
	n := navigation.New(a.store, navigation.Config{
		MarkerDir:       a.config.Docs.MarkerDir,
		HomeIndex:       a.config.Navigation.HomeIndex,
		HomeTitle:       a.config.Navigation.HomeTitle,
		CategoryIndexes: a.config.Navigation.CategoryIndexes,
		VariantSuffix:   a.config.Docs.VariantSuffix,
	}, navigation.NewTitleCache(a.store), a.logger, navigation.WithDryRun(dryRun))

	if all {
		return n.ProcessDir(a.markerDir())
	}
	target, err := a.locate(path, true)
	if err != nil {
		return navigation.Stats{}, err
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return n.ProcessDir(target)
	}

	st := navigation.Stats{Processed: 1}
	changed, err := n.ProcessFile(target)
	switch {
	case err != nil:
		return navigation.Stats{}, err
	case changed:
		st.Updated = 1
	default:
		st.Skipped = 1
	}
	return st, nil
}

// Migrate rewrites legacy terminology across the knowledge base.
func (a *App) Migrate(dryRun bool) (migrate.Stats, error) {
	m := a.config.Migration
	migrator, err := migrate.New(a.store, migrate.Config{
		Rules:          m.Rules,
		MarkerDir:      a.config.Docs.MarkerDir,
		MigratedMarker: m.MigratedMarker,
		LegacyMarker:   m.LegacyMarker,
		SkipTokens:     m.SkipTokens,
		ExtraFiles:     m.ExtraFiles,
	}, a.logger, migrate.WithDryRun(dryRun))
	if err != nil {
		return migrate.Stats{}, err
	}
	return migrator.Run()
}

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	Strict bool
	Format report.Format
	Path   string
}

// RunValidate renders the validation report and fails when it does.
func (a *App) RunValidate(opts ValidateOptions) error {
	r, err := a.ValidateReport(opts.Path, opts.Strict)
	if err != nil {
		return err
	}
	return a.render(r, opts.Format)
}

// RunScope renders the scope report and fails on any violation.
func (a *App) RunScope(format report.Format) error {
	r, err := a.ScopeReport()
	if err != nil {
		return err
	}
	return a.render(r, format)
}

// RunSync renders the sync report and fails on any drift.
func (a *App) RunSync(format report.Format) error {
	r, err := a.SyncReport()
	if err != nil {
		return err
	}
	return a.render(r, format)
}

func (a *App) render(r *report.Report, format report.Format) error {
	if err := report.Render(a.out, r, format); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if r.Failed() {
		return fmt.Errorf("%w: %d error(s), %d warning(s)", apperr.ErrValidationFailed, r.Errors(), r.Warnings())
	}
	return nil
}

// RunBump bumps a document and prints every rewritten file.
func (a *App) RunBump(path, kind string, dryRun bool) error {
	results, err := a.Bump(path, kind, dryRun)
	for _, r := range results {
		line := fmt.Sprintf("%s: %s -> %s", r.Path, r.From, r.To)
		if r.Modified != "" {
			line += fmt.Sprintf(" (modified %s)", r.Modified)
		}
		if dryRun {
			line += " [dry run]"
		}
		fmt.Fprintln(a.out, line)
	}
	return err
}

// RunNavigate injects navigation and prints the run statistics.
func (a *App) RunNavigate(path string, all, dryRun bool) error {
	st, err := a.Navigate(path, all, dryRun)
	if err != nil {
		return err
	}
	a.printStats(st.Processed, st.Updated, st.Skipped, st.Errors, dryRun)
	if st.Errors > 0 {
		return fmt.Errorf("%w: %d file(s)", apperr.ErrFilesFailed, st.Errors)
	}
	return nil
}

// RunMigrate migrates terminology and prints the run statistics.
func (a *App) RunMigrate(dryRun bool) error {
	st, err := a.Migrate(dryRun)
	if err != nil {
		return err
	}
	a.printStats(st.Processed, st.Updated, st.Skipped, st.Errors, dryRun)
	if st.Errors > 0 {
		return fmt.Errorf("%w: %d file(s)", apperr.ErrFilesFailed, st.Errors)
	}
	return nil
}

func (a *App) printStats(processed, updated, skipped, errs int, dryRun bool) {
	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}
	fmt.Fprintf(a.out, "Processed: %d\n%s: %d\nSkipped: %d\nErrors: %d\n", processed, verb, updated, skipped, errs)
}

// Watch validates once and again whenever the documents change, until ctx is
// cancelled or the process receives SIGINT or SIGTERM.
func (a *App) Watch(ctx context.Context, opts ValidateOptions) error {
	check := func() {
		if err := a.RunValidate(opts); err != nil {
			a.logger.Warn("watch: validation", slog.String("error", err.Error()))
		}
	}
	check()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return watch.Watch(gCtx, a.store, a.config.Docs.MarkerDir, a.config.Watch.Debounce, a.logger, check)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			a.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	return g.Wait()
}

// ServeMCP serves the MCP tools on stdin/stdout.
func (a *App) ServeMCP() error {
	a.logger.Info("MCP server starting", slog.String("root", a.store.Root()))
	return mcpserver.New(a, a.store).ServeStdio()
}
