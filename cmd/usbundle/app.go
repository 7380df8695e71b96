// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/usbundle/usbundle/internal/build"
	"github.com/usbundle/usbundle/internal/bundler"
	"github.com/usbundle/usbundle/internal/config"
	"github.com/usbundle/usbundle/pkg/usermeta"
	"github.com/usbundle/usbundle/pkg/userscript"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and delegate work to its services.
	App struct {
		Config ConfigProvider
		Builds BuildService
		logger *log.Logger
		stdout io.Writer
		stderr io.Writer

		// Global flag values, bound by NewRootCommand.
		verbose    bool
		configFile string
		projectDir string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Builds BuildService
		Logger *log.Logger
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// BuildService runs the userscript pipeline.
	BuildService interface {
		Build(ctx context.Context, req build.Request) (build.Result, error)
		Header(ctx context.Context, req build.Request) (userscript.Header, *usermeta.Metadata, error)
		Watch(ctx context.Context, req build.Request, opts build.WatchOptions) error
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = newLogger(deps.Stderr)
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Builds == nil {
		deps.Builds = build.NewService(bundler.NewEsbuild(deps.Logger), deps.Logger)
	}

	return &App{
		Config: deps.Config,
		Builds: deps.Builds,
		logger: deps.Logger,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// newLogger returns the CLI logger writing to w.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "usbundle",
		Level:  log.InfoLevel,
	})
}

// loadOptions returns the config loading options for the global flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.configFile,
		ProjectDir:     a.projectDir,
	}
}

// loadConfig loads the project configuration and applies its ui settings.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.setVerbose(true)
	}
	return cfg, nil
}

func (a *App) setVerbose(v bool) {
	a.verbose = v
	if v {
		a.logger.SetLevel(log.DebugLevel)
	}
}
