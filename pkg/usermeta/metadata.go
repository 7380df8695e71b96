// SPDX-License-Identifier: MPL-2.0

package usermeta

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed metadata_schema.cue
var metadataSchema []byte

// ErrInvalidMetadata is the sentinel error wrapped by ValidationError.
var ErrInvalidMetadata = errors.New("invalid package metadata")

type (
	// Metadata is the validated package metadata.
	Metadata struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Version     string     `json:"version"`
		Userscript  Userscript `json:"userscript"`
	}

	// Userscript holds the userscript section of the package metadata.
	Userscript struct {
		// MatchURL is the page pattern the script runs on. It is also parsed
		// as a URL to derive the icon host.
		MatchURL    string  `json:"matchUrl"`
		Homepage    string  `json:"homepage,omitempty"`
		DownloadURL string  `json:"downloadUrl,omitempty"`
		UpdateURL   string  `json:"updateUrl,omitempty"`
		Grants      []Grant `json:"grants,omitempty"`
	}

	// Violation is one failed constraint, addressed by JSON path.
	Violation struct {
		Path    string
		Message string
	}

	// ValidationError reports every violation found in a metadata document.
	// It wraps ErrInvalidMetadata for errors.Is() compatibility.
	ValidationError struct {
		File       string
		Violations []Violation
	}
)

// String renders the violation as "<path>: <message>".
func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if len(e.Violations) == 1 {
		fmt.Fprintf(&sb, "%s: invalid package metadata: %s", e.File, e.Violations[0])
		return sb.String()
	}

	fmt.Fprintf(&sb, "%s: invalid package metadata (%d violations):", e.File, len(e.Violations))
	for _, v := range e.Violations {
		sb.WriteString("\n  - ")
		sb.WriteString(v.String())
	}
	return sb.String()
}

// Unwrap returns ErrInvalidMetadata for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrInvalidMetadata }

// HasPath reports whether any violation is addressed to path.
func (e *ValidationError) HasPath(path string) bool {
	return hasPath(e.Violations, path)
}
