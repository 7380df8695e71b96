// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHeaderCommand(app *App) *cobra.Command {
	var flags buildFlags

	headerCmd := &cobra.Command{
		Use:   "header",
		Short: "Print the userscript header",
		Long:  `Validate the package metadata and print the generated ==UserScript== header.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			req, err := buildRequest(cmd, app.projectDir, cfg, flags)
			if err != nil {
				return app.fail(cmd, err)
			}

			header, _, err := app.Builds.Header(cmd.Context(), req)
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(app.stdout, header.String())
			return nil
		},
	}
	addPackageFlag(headerCmd, &flags)

	return headerCmd
}
