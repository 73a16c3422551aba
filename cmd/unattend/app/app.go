// Package app provides the application context and dependency management
// for the unattend CLI. It centralizes configuration, logging and the
// command tree.
package app

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/logging"
)

// App represents the unattend application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// logOutput overrides the configured log destination (tests)
	logOutput io.Writer

	// stdout receives command output; nil means os.Stdout
	stdout io.Writer
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration loaded from the environment and
// config files, which can be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	app.config = config

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	// Initialize logger
	app.resetLogger()

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

func (a *App) resetLogger() {
	logger := NewLogger(a.config)
	if a.logOutput != nil {
		logger = logger.Output(a.logOutput)
	}
	a.logger = &logger
	logging.SetDefault(logger)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogOutput sends log events to w instead of the configured output.
func WithLogOutput(w io.Writer) Option {
	return func(a *App) error {
		a.logOutput = w
		return nil
	}
}

// WithStdout sends command output to w.
func WithStdout(w io.Writer) Option {
	return func(a *App) error {
		a.stdout = w
		return nil
	}
}
