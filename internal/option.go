package internal

import (
	"io"
	"log/slog"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithOutput sets where reports are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

// WithWorkDir sets the directory the project root search starts from.
func WithWorkDir(dir string) Option {
	return func(a *App) {
		a.workDir = dir
	}
}

// WithRoot uses root as the project root without searching for it.
func WithRoot(root string) Option {
	return func(a *App) {
		a.root = root
	}
}

// WithClock overrides the source of today's date.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
