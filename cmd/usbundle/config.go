// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/usbundle/usbundle/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `usbundle config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage usbundle configuration",
		Long: `Manage usbundle configuration.

Configuration is read from usbundle.cue, or usbundle.toml, in the project
directory. Environment variables prefixed with ` + config.EnvPrefix + `_ override
file values, e.g. ` + config.EnvPrefix + `_OUT_DIR=build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			showConfig(app, cfg)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := config.FindConfigFile(app.loadOptions()); path != "" {
				fmt.Fprintln(app.stdout, path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n",
				filepath.Join(app.projectDir, config.ConfigFileName+"."+config.ConfigFileExt),
				SubtitleStyle.Render("(not found, using defaults)"))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default usbundle.cue",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := app.projectDir
			if dir == "" {
				dir = "."
			}
			path, created, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return app.fail(cmd, err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s already exists\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, cfg *config.Config) {
	w := app.stdout
	key := CmdStyle.Render
	value := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path := config.FindConfigFile(app.loadOptions()); path != "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", key("entry"), value(cfg.Entry))
	fmt.Fprintf(w, "%s: %s\n", key("out_dir"), value(cfg.OutDir))
	fmt.Fprintf(w, "%s: %s\n", key("package_file"), value(cfg.PackageFile))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("build"))
	fmt.Fprintf(w, "  minify: %s\n", value(fmt.Sprintf("%v", cfg.Build.Minify)))
	fmt.Fprintf(w, "  sourcemap: %s\n", value(string(cfg.Build.Sourcemap)))
	fmt.Fprintf(w, "  target: %s\n", value(cfg.Build.Target))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("watch"))
	fmt.Fprintf(w, "  patterns: %s\n", value(strings.Join(cfg.Watch.Patterns, ", ")))
	fmt.Fprintf(w, "  debounce_ms: %s\n", value(fmt.Sprintf("%d", cfg.Watch.DebounceMs)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", value(fmt.Sprintf("%v", cfg.UI.Verbose)))
}
