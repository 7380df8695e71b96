// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "usbundle",
		Short: "Bundle userscripts with a generated metadata header",
		Long: TitleStyle.Render("usbundle") + SubtitleStyle.Render(" - Bundle userscripts with a generated metadata header") + `

usbundle reads the userscript settings from your package metadata,
validates them, renders the ==UserScript== header and bundles your
entry module into a single browser script.

` + SubtitleStyle.Render("Examples:") + `
  usbundle build               Bundle src/index.ts into dist/
  usbundle build --watch       Rebuild whenever sources change
  usbundle validate            Check package metadata only
  usbundle header              Print the generated header
  usbundle config show         Show the effective configuration`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setVerbose(app.verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is usbundle.cue or usbundle.toml in the project directory)")
	rootCmd.PersistentFlags().StringVarP(&app.projectDir, "dir", "C", "", "project directory (default is the working directory)")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newHeaderCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI and exits with the command's exit code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	slog.SetDefault(slog.New(app.logger))

	opts := append(fangOptions(), fang.WithNotifySignal(os.Interrupt))
	if err := fang.Execute(context.Background(), NewRootCommand(app), opts...); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// fangOptions returns the fang settings shared by every entry point.
// fang overrides rootCmd.Version, so the version goes through WithVersion.
func fangOptions() []fang.Option {
	return []fang.Option{
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(errorHandler),
	}
}

// errorHandler prints errors that no command rendered. An ExitError was
// already written to stderr by fail.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// fail renders err for the user, silences cobra's own error output and
// returns an ExitError carrying the exit code for err.
func (a *App) fail(cmd *cobra.Command, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}

	renderError(a.stderr, err, a.verbose)

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.Root().SilenceErrors = true
	return &ExitError{Code: exitCodeFor(err), Err: err}
}
