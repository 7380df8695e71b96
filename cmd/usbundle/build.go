// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/usbundle/usbundle/internal/build"
	"github.com/usbundle/usbundle/internal/bundler"
	"github.com/usbundle/usbundle/internal/config"

	"github.com/spf13/cobra"
)

// buildFlags holds the flag values shared by build, validate and header.
// Flags that were not set leave the configuration value in place.
type buildFlags struct {
	entry       string
	outDir      string
	packageFile string
	minify      bool
	sourcemap   string
	target      string
	watch       bool
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Validate metadata and bundle the userscript",
		Long: `Validate the package metadata, render the userscript header and bundle
the entry module into <out-dir>/<name>.user.js.

Flags override values from the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}

			req, err := buildRequest(cmd, app.projectDir, cfg, flags)
			if err != nil {
				return app.fail(cmd, err)
			}

			if flags.watch {
				return app.fail(cmd, app.Builds.Watch(cmd.Context(), req, build.WatchOptions{
					Patterns: cfg.Watch.Patterns,
					Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
					OnBuild: func(res build.Result, err error) {
						if err != nil {
							renderError(app.stderr, err, app.verbose)
							return
						}
						printBuilt(app.stdout, res)
					},
				}))
			}

			res, err := app.Builds.Build(cmd.Context(), req)
			if err != nil {
				return app.fail(cmd, err)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("warning:"), w)
			}
			printBuilt(app.stdout, res)
			return nil
		},
	}

	buildCmd.Flags().StringVar(&flags.entry, "entry", "", "entry module (default from config: src/index.ts)")
	buildCmd.Flags().StringVar(&flags.outDir, "out-dir", "", "output directory (default from config: dist)")
	addPackageFlag(buildCmd, &flags)
	buildCmd.Flags().BoolVar(&flags.minify, "minify", false, "minify the bundle")
	buildCmd.Flags().StringVar(&flags.sourcemap, "sourcemap", "", "source map mode: none, inline, linked, external or both")
	buildCmd.Flags().StringVar(&flags.target, "target", "", "language target such as es2020 or chrome100")
	buildCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when sources change")

	return buildCmd
}

func addPackageFlag(cmd *cobra.Command, flags *buildFlags) {
	cmd.Flags().StringVar(&flags.packageFile, "package", "", "package metadata file (default from config: package.json)")
}

// buildRequest merges configuration and explicitly set flags.
func buildRequest(cmd *cobra.Command, projectDir string, cfg *config.Config, flags buildFlags) (build.Request, error) {
	req := build.Request{
		ProjectDir:  projectDir,
		PackageFile: cfg.PackageFile,
		EntryPoint:  cfg.Entry,
		OutDir:      cfg.OutDir,
		Minify:      cfg.Build.Minify,
		Sourcemap:   bundler.SourcemapMode(cfg.Build.Sourcemap),
		Target:      cfg.Build.Target,
	}

	changed := cmd.Flags().Changed
	if changed("entry") {
		req.EntryPoint = flags.entry
	}
	if changed("out-dir") {
		req.OutDir = flags.outDir
	}
	if changed("package") {
		req.PackageFile = flags.packageFile
	}
	if changed("minify") {
		req.Minify = flags.minify
	}
	if changed("sourcemap") {
		mode := config.SourcemapMode(flags.sourcemap)
		if valid, errs := mode.IsValid(); !valid {
			return build.Request{}, errs[0]
		}
		req.Sourcemap = bundler.SourcemapMode(mode)
	}
	if changed("target") {
		req.Target = flags.target
	}

	return req, nil
}

func printBuilt(w io.Writer, res build.Result) {
	fmt.Fprintf(w, "%s built %s %s\n",
		SuccessStyle.Render("✓"),
		CmdStyle.Render(res.OutputPath),
		SubtitleStyle.Render(fmt.Sprintf("(%s %s, %s)", res.Metadata.Name, res.Metadata.Version, res.Duration.Round(time.Millisecond))),
	)
}
