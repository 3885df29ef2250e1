// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/builtin"
	"github.com/wirehook/wirehook/internal/config"
	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App is the composition root of the CLI. Cobra handlers receive it and
	// open a session per invocation.
	App struct {
		Config config.Provider
		FS     afero.Fs
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		flags  rootFlags
	}

	// Dependencies are the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		FS     afero.Fs
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is the project state one command works on.
	session struct {
		cfg     *config.Config
		fs      afero.Fs
		logger  *log.Logger
		plugins []plugin.Descriptor
		loader  module.Loader
	}
)

// NewApp builds an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		FS:     deps.FS,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.FS == nil {
		app.FS = afero.NewOsFs()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		ProjectDir:     a.flags.projectDir,
	}
}

// open loads the configuration, applies flag overrides and resolves the
// plugin set.
func (a *App) open(ctx context.Context) (*session, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if a.flags.environment != "" {
		cfg.Environment = a.flags.environment
	}
	if a.flags.logFormat != "" {
		format := config.LogFormat(a.flags.logFormat)
		if ok, errs := format.IsValid(); !ok {
			return nil, issue.New(issue.ErrBadConfig, "invalid --log-format").Wrap(errs[0])
		}
		cfg.Log.Format = format
	}
	if a.flags.verbose {
		cfg.Log.Level = config.LogLevelDebug
	}

	logger := logging.New(a.stderr, cfg.Log)
	logging.InstallDefault(logger)

	plugins, err := plugin.NewRegistry(a.FS, cfg, logger).Resolve(cfg.Plugins)
	if err != nil {
		return nil, err
	}

	loader := module.NewFileLoader(a.FS, builtin.Catalog(a.stdout),
		module.WithScriptIO(module.ScriptIO{Stdin: a.stdin, Stdout: a.stdout, Stderr: a.stderr}),
		module.WithLogger(logger),
	)

	return &session{
		cfg:     cfg,
		fs:      a.FS,
		logger:  logger,
		plugins: plugins,
		loader:  loader,
	}, nil
}

// resolver returns a resolver with empty caches.
func (s *session) resolver() *autoload.Resolver {
	return autoload.New(s.fs, s.plugins, s.loader, autoload.OptionsFromConfig(s.cfg, s.logger))
}
