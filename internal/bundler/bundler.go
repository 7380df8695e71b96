// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// SourcemapNone disables source maps.
	SourcemapNone SourcemapMode = "none"
	// SourcemapInline appends the map as a data URL comment.
	SourcemapInline SourcemapMode = "inline"
	// SourcemapLinked writes <outfile>.map and links it.
	SourcemapLinked SourcemapMode = "linked"
	// SourcemapExternal writes <outfile>.map without a link comment.
	SourcemapExternal SourcemapMode = "external"
	// SourcemapBoth combines inline and external.
	SourcemapBoth SourcemapMode = "both"
)

var (
	// ErrBundleFailed is the sentinel wrapped by BuildError.
	ErrBundleFailed = errors.New("bundle failed")
	// ErrInvalidSourcemapMode is returned for an unknown SourcemapMode.
	ErrInvalidSourcemapMode = errors.New("invalid sourcemap mode")
	// ErrInvalidTarget is returned for a target esbuild does not understand.
	ErrInvalidTarget = errors.New("invalid target")
)

type (
	// Bundler produces a single script from an entry module.
	Bundler interface {
		Bundle(ctx context.Context, req Request) (Result, error)
	}

	// SourcemapMode selects how source maps are emitted.
	SourcemapMode string

	// Request describes one bundling run.
	Request struct {
		// EntryPoint is the entry module, absolute or relative to AbsWorkingDir.
		EntryPoint string
		// Outfile is the output file path.
		Outfile string
		// Banner is emitted verbatim before the bundle.
		Banner string
		Minify bool
		// Sourcemap defaults to SourcemapInline when empty.
		Sourcemap SourcemapMode
		// Target is an ES version ("es2020") or an engine with version ("chrome100").
		Target string
		// AbsWorkingDir resolves relative paths; it must be absolute when set.
		AbsWorkingDir string
	}

	// Result describes the files written by a successful run.
	Result struct {
		OutputFiles []string
		// Warnings are formatted bundler warnings.
		Warnings []string
	}

	// Message is one bundler diagnostic.
	Message struct {
		Text string
		File string
		Line int
		// Column is zero-based, in bytes.
		Column int
	}

	// BuildError reports the diagnostics of a failed bundle.
	BuildError struct {
		Messages []Message
		// Formatted holds the diagnostics rendered with source context.
		Formatted []string
	}
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	switch len(e.Messages) {
	case 0:
		return "bundle failed"
	case 1:
		return "bundle failed: " + e.Messages[0].String()
	default:
		return fmt.Sprintf("bundle failed with %d errors: %s", len(e.Messages), e.Messages[0].String())
	}
}

// Unwrap returns ErrBundleFailed for errors.Is() compatibility.
func (e *BuildError) Unwrap() error { return ErrBundleFailed }

// Details returns the formatted diagnostics, one block per error.
func (e *BuildError) Details() string {
	return strings.TrimRight(strings.Join(e.Formatted, ""), "\n")
}

// String renders the message as "file:line:column: text".
func (m Message) String() string {
	if m.File == "" {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.File, m.Line, m.Column, m.Text)
}

// IsValid returns whether the SourcemapMode is recognized. The empty value
// is valid and means inline.
func (m SourcemapMode) IsValid() (bool, []error) {
	switch m {
	case "", SourcemapNone, SourcemapInline, SourcemapLinked, SourcemapExternal, SourcemapBoth:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidSourcemapMode, string(m))}
	}
}
