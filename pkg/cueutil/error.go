// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

type (
	// ValidationError represents a single CUE validation failure with context.
	ValidationError struct {
		// FilePath is the file being validated.
		FilePath string

		// CUEPath is the JSON path to the invalid value (e.g., "userscript.grants[0]").
		CUEPath string

		// Message is the validation error message.
		Message string
	}

	// SchemaError aggregates every violation reported for one document.
	SchemaError struct {
		FilePath   string
		Violations []*ValidationError
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns nil (ValidationError is a leaf error).
func (e *ValidationError) Unwrap() error {
	return nil
}

// Error implements the error interface.
//
// A single violation renders as "<file>: <path>: <message>"; several render
// as an indented list below a "validation failed" line.
func (e *SchemaError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.CUEPath != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", v.CUEPath, v.Message))
		} else {
			lines = append(lines, v.Message)
		}
	}

	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// FormatError converts a CUE error into a *SchemaError carrying one
// ValidationError per underlying CUE error, with JSON path prefixes.
//
// Error format: <file-path>: <json-path>: <message>
//
// Examples:
//   - package.json: version: invalid value "1.0" (out of bound =~"^\\d+\\.\\d+\\.\\d+$")
//   - usbundle.cue: build.minify: conflicting values "yes" and bool
//
// Non-CUE errors are wrapped with the file path and keep their identity for
// errors.Is.
func FormatError(err error, filePath string) error {
	return formatError(err, filePath, nil)
}

// formatError is FormatError for values unified below a schema definition.
// Paths reported by CUE start with the selectors of that definition
// ("#Metadata"), which are dropped so paths address the user's document.
func formatError(err error, filePath string, schemaPrefix []string) error {
	if err == nil {
		return nil
	}

	var cueErr errors.Error
	if !errors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	return &SchemaError{
		FilePath:   filePath,
		Violations: collectViolations(errors.Errors(err), filePath, schemaPrefix),
	}
}

// collectViolations keeps the first message reported for each path. CUE
// reports one entry per failed branch of a disjunction; those all share the
// path of the offending value and only the first is useful to a reader.
func collectViolations(cueErrors []errors.Error, filePath string, schemaPrefix []string) []*ValidationError {
	seen := make(map[string]bool, len(cueErrors))
	violations := make([]*ValidationError, 0, len(cueErrors))

	for _, e := range cueErrors {
		path := trimPrefix(errors.Path(e), schemaPrefix)
		pathStr := formatPath(path)
		if seen[pathStr] {
			continue
		}
		seen[pathStr] = true

		violations = append(violations, &ValidationError{
			FilePath: filePath,
			CUEPath:  pathStr,
			Message:  errorMessage(e, errors.Path(e), path),
		})
	}

	return violations
}

// errorMessage returns the message of e without any path CUE put in front
// of it, in either the full or the trimmed dotted form.
func errorMessage(e errors.Error, fullPath, path []string) string {
	format, args := e.Msg()
	msg := fmt.Sprintf(format, args...)

	for _, p := range [][]string{fullPath, path} {
		if len(p) == 0 {
			continue
		}
		prefix := strings.Join(p, ".") + ":"
		if strings.HasPrefix(msg, prefix) {
			msg = strings.TrimSpace(strings.TrimPrefix(msg, prefix))
			break
		}
	}
	return msg
}

// trimPrefix drops prefix from the front of path when path starts with it.
func trimPrefix(path, prefix []string) []string {
	if len(prefix) == 0 || len(path) < len(prefix) {
		return path
	}
	for i, p := range prefix {
		if path[i] != p {
			return path
		}
	}
	return path[len(prefix):]
}

// formatPath converts a CUE error path to JSON-path notation for user-facing messages.
// CUE provides error paths as flat string slices (e.g., ["userscript", "grants", "0"])
// where numeric elements represent array indices. The result here is
// "userscript.grants[0]".
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}

	var result strings.Builder
	for i, part := range path {
		isIndex := part != ""
		for _, c := range part {
			if c < '0' || c > '9' {
				isIndex = false
				break
			}
		}

		if isIndex && i > 0 {
			result.WriteString("[")
			result.WriteString(part)
			result.WriteString("]")
		} else {
			if i > 0 {
				result.WriteString(".")
			}
			result.WriteString(part)
		}
	}

	return result.String()
}

// CheckFileSize verifies that data does not exceed the specified maximum size.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
