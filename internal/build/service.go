// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/usbundle/usbundle/internal/bundler"
	"github.com/usbundle/usbundle/internal/issue"
	"github.com/usbundle/usbundle/pkg/usermeta"
	"github.com/usbundle/usbundle/pkg/userscript"

	"github.com/charmbracelet/log"
)

var (
	// ErrEntryNotFound is returned when the entry module does not exist.
	ErrEntryNotFound = errors.New("entry point not found")
	// ErrPackageNotFound is returned when the package metadata file does not exist.
	ErrPackageNotFound = errors.New("package metadata file not found")
)

type (
	// Request describes one build. Relative paths resolve against ProjectDir.
	Request struct {
		// ProjectDir is the project root; empty means the working directory.
		ProjectDir  string
		PackageFile string
		EntryPoint  string
		OutDir      string
		Minify      bool
		Sourcemap   bundler.SourcemapMode
		Target      string
	}

	// Result describes a successful build.
	Result struct {
		OutputPath string
		Header     userscript.Header
		Metadata   *usermeta.Metadata
		Duration   time.Duration
		Warnings   []string
	}

	// Service runs builds against a Bundler.
	Service struct {
		bundler bundler.Bundler
		logger  *log.Logger
	}

	// paths holds the absolute locations for one request.
	paths struct {
		projectDir  string
		packageFile string
		entryPoint  string
		outDir      string
	}
)

// NewService creates a Service. A nil logger uses the default logger.
func NewService(b bundler.Bundler, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{bundler: b, logger: logger}
}

// Build validates the package metadata, renders the header and bundles the
// entry point into <OutDir>/<file name>. Invalid metadata is returned as the
// *usermeta.ValidationError from validation, before anything is written.
func (s *Service) Build(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	p, err := resolvePaths(req)
	if err != nil {
		return Result{}, err
	}

	header, meta, err := s.header(ctx, p)
	if err != nil {
		return Result{}, err
	}

	outPath := filepath.Join(p.outDir, userscript.FileName(meta.Name))

	if err := checkEntry(p.entryPoint); err != nil {
		return Result{}, err
	}

	if err := prepareOutput(p.outDir, outPath); err != nil {
		return Result{}, err
	}

	s.logger.Debug("bundling", "entry", p.entryPoint, "out", outPath)
	res, err := s.bundler.Bundle(ctx, bundler.Request{
		EntryPoint:    p.entryPoint,
		Outfile:       outPath,
		Banner:        header.String(),
		Minify:        req.Minify,
		Sourcemap:     req.Sourcemap,
		Target:        req.Target,
		AbsWorkingDir: p.projectDir,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, err
		}
		return Result{}, issue.NewErrorContext().
			WithOperation("bundle userscript").
			WithResource(p.entryPoint).
			WithSuggestion("Fix the errors reported above and build again").
			WithIssue(issue.BundleFailedId).
			Wrap(err).
			BuildError()
	}

	return Result{
		OutputPath: outPath,
		Header:     header,
		Metadata:   meta,
		Duration:   time.Since(start),
		Warnings:   res.Warnings,
	}, nil
}

// Header validates the package metadata and renders the header without
// bundling.
func (s *Service) Header(ctx context.Context, req Request) (userscript.Header, *usermeta.Metadata, error) {
	p, err := resolvePaths(req)
	if err != nil {
		return userscript.Header{}, nil, err
	}
	return s.header(ctx, p)
}

func (s *Service) header(ctx context.Context, p paths) (userscript.Header, *usermeta.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return userscript.Header{}, nil, fmt.Errorf("build canceled: %w", err)
	}

	meta, err := loadMetadata(p.packageFile)
	if err != nil {
		return userscript.Header{}, nil, err
	}

	header, err := userscript.NewHeader(meta)
	if err != nil {
		return userscript.Header{}, nil, issue.NewErrorContext().
			WithOperation("render userscript header").
			WithResource(p.packageFile).
			WithIssue(issue.MetadataInvalidId).
			Wrap(err).
			BuildError()
	}

	s.logger.Debug("metadata valid", "name", meta.Name, "version", meta.Version)
	return header, meta, nil
}

func loadMetadata(path string) (*usermeta.Metadata, error) {
	meta, err := usermeta.LoadAndValidate(path)
	if err == nil {
		return meta, nil
	}

	var validationErr *usermeta.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return nil, validationErr
	case errors.Is(err, fs.ErrNotExist):
		return nil, issue.NewErrorContext().
			WithOperation("read package metadata").
			WithResource(path).
			WithSuggestion("Run from the project root or pass --dir").
			WithSuggestion("Use --package to point at the metadata file").
			WithIssue(issue.PackageNotFoundId).
			Wrap(fmt.Errorf("%w: %w", ErrPackageNotFound, err)).
			BuildError()
	default:
		return nil, issue.NewErrorContext().
			WithOperation("read package metadata").
			WithResource(path).
			WithSuggestion("Check the file for syntax errors").
			WithIssue(issue.MetadataInvalidId).
			Wrap(err).
			BuildError()
	}
}

func checkEntry(path string) error {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return nil
	}
	cause := ErrEntryNotFound
	if err == nil {
		cause = fmt.Errorf("%w: is a directory", ErrEntryNotFound)
	} else if !errors.Is(err, fs.ErrNotExist) {
		cause = fmt.Errorf("%w: %w", ErrEntryNotFound, err)
	}
	return issue.NewErrorContext().
		WithOperation("find entry point").
		WithResource(path).
		WithSuggestion("Pass --entry or set entry in usbundle.cue").
		WithIssue(issue.EntryNotFoundId).
		Wrap(cause).
		BuildError()
}

// prepareOutput creates outDir and removes a previous build of outPath.
func prepareOutput(outDir, outPath string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return outputError(outDir, err)
	}
	if err := os.Remove(outPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return outputError(outPath, err)
	}
	return nil
}

func outputError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("prepare output").
		WithResource(path).
		WithSuggestion("Check that the output directory is writable").
		WithIssue(issue.OutputWriteFailedId).
		Wrap(err).
		BuildError()
}

func resolvePaths(req Request) (paths, error) {
	projectDir := req.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return paths{}, fmt.Errorf("resolve project directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(abs, p)
	}

	return paths{
		projectDir:  abs,
		packageFile: resolve(req.PackageFile),
		entryPoint:  resolve(req.EntryPoint),
		outDir:      resolve(req.OutDir),
	}, nil
}
