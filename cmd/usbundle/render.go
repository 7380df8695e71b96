// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/usbundle/usbundle/internal/bundler"
	"github.com/usbundle/usbundle/internal/issue"
	"github.com/usbundle/usbundle/pkg/usermeta"

	"github.com/charmbracelet/lipgloss"
)

// renderError writes a user-facing report for err to w.
//
// Metadata violations are listed one per line as "  - <path>: <message>".
// Bundler diagnostics are printed as the bundler formatted them. Errors
// linked to the issue catalog are followed by its guidance; metadata
// guidance is only shown in verbose mode since the violations already name
// every problem.
func renderError(w io.Writer, err error, verbose bool) {
	var validationErr *usermeta.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintf(w, "%s %s: invalid package metadata\n", ErrorStyle.Render("✗"), validationErr.File)
		for _, v := range validationErr.Violations {
			fmt.Fprintf(w, "  - %s\n", v)
		}
		if verbose {
			renderIssue(w, issue.MetadataInvalidId)
		}
		return
	}

	var buildErr *bundler.BuildError
	if errors.As(err, &buildErr) {
		if details := buildErr.Details(); details != "" {
			fmt.Fprintln(w, details)
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if id := issue.IssueOf(err); id != 0 && (verbose || id != issue.BundleFailedId) {
		renderIssue(w, id)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the catalog entry for id.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(glamourStyle(w))
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// glamourStyle picks a markdown style for w: plain text unless w is the
// process's stderr or stdout.
func glamourStyle(w io.Writer) string {
	if w != os.Stderr && w != os.Stdout {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
