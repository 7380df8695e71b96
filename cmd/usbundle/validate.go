// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(app *App) *cobra.Command {
	var flags buildFlags

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the package metadata",
		Long: `Validate the package metadata without bundling.

Every violation is reported, one per line. The exit status is 1 when the
metadata is invalid.`,
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

			_, meta, err := app.Builds.Header(cmd.Context(), req)
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintf(app.stdout, "valid: %s %s\n", meta.Name, meta.Version)
			return nil
		},
	}
	addPackageFlag(validateCmd, &flags)

	return validateCmd
}
