package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docwarden/internal"
	"github.com/starford/docwarden/internal/apperr"
	"github.com/starford/docwarden/internal/report"
	pkgconfig "github.com/starford/docwarden/pkg/config"
)

const defaultConfigFile = "docwarden.yaml"

// newApp loads the configuration and locates the project root. The config
// file is optional unless it was named explicitly.
func newApp(cmd *cli.Command) (*internal.App, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	logger := internal.NewLogger(cfg.App, os.Stderr)
	slog.SetDefault(logger)

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
	}
	if root := cmd.String("root"); root != "" {
		opts = append(opts, internal.WithRoot(root))
	}

	return internal.New(opts...)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Report format: text, json or yaml",
		Value:   string(report.FormatText),
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Show what would change without writing files",
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	opts := internal.ValidateOptions{
		Strict: cmd.Bool("strict"),
		Format: format,
		Path:   cmd.String("path"),
	}
	if cmd.Bool("watch") {
		return app.Watch(ctx, opts)
	}
	return app.RunValidate(opts)
}

func runScope(ctx context.Context, cmd *cli.Command) error {
	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.RunScope(format)
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.RunSync(format)
}

func runBump(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: docwarden bump <file> <major|minor|patch>")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.RunBump(cmd.Args().Get(0), cmd.Args().Get(1), cmd.Bool("dry-run"))
}

func runNav(ctx context.Context, cmd *cli.Command) error {
	file, dir, all := cmd.String("file"), cmd.String("dir"), cmd.Bool("all")
	set := 0
	for _, ok := range []bool{file != "", dir != "", all} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of --file, --dir or --all is required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	path := file
	if dir != "" {
		path = dir
	}
	return app.RunNavigate(path, all, cmd.Bool("dry-run"))
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.RunMigrate(cmd.Bool("dry-run"))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.ServeMCP(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "docwarden",
		Usage: "Validate, version and maintain a markdown knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigFile,
				Value:       defaultConfigFile,
				Sources:     cli.EnvVars("DOCWARDEN_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root (skips the search for the marker directory)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate frontmatter, references and scope dependencies",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "strict", Usage: "Treat warnings as errors"},
					formatFlag(),
					&cli.StringFlag{Name: "path", Usage: "Only validate this file or directory"},
					&cli.BoolFlag{Name: "watch", Usage: "Validate again whenever documents change"},
				},
				Action: runValidate,
			},
			{
				Name:   "scope",
				Usage:  "Check that framework documents never depend on game documents",
				Flags:  []cli.Flag{formatFlag()},
				Action: runScope,
			},
			{
				Name:   "sync",
				Usage:  "Find translations older than their originals",
				Flags:  []cli.Flag{formatFlag()},
				Action: runSync,
			},
			{
				Name:      "bump",
				Usage:     "Bump a document version and its paired document",
				ArgsUsage: "<file> <major|minor|patch>",
				Flags:     []cli.Flag{dryRunFlag()},
				Action:    runBump,
			},
			{
				Name:  "nav",
				Usage: "Insert navigation blocks after the frontmatter",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Process a single document"},
					&cli.StringFlag{Name: "dir", Usage: "Process every document under a directory"},
					&cli.BoolFlag{Name: "all", Usage: "Process the whole knowledge base"},
					dryRunFlag(),
				},
				Action: runNav,
			},
			{
				Name:   "migrate",
				Usage:  "Migrate layer terminology to scope",
				Flags:  []cli.Flag{dryRunFlag()},
				Action: runMigrate,
			},
			{
				Name:   "mcp",
				Usage:  "Serve docwarden tools over MCP on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, apperr.ErrValidationFailed) {
			slog.Error("application error", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
