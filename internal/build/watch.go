// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/usbundle/usbundle/internal/watch"
)

// WatchOptions configures Service.Watch.
type WatchOptions struct {
	// Patterns select the files that trigger a rebuild, relative to the
	// project directory.
	Patterns []string
	Debounce time.Duration
	// OnBuild receives the outcome of every build, including the first.
	// nil logs the outcome.
	OnBuild func(Result, error)
}

// Watch builds once and then rebuilds whenever a watched file changes,
// until ctx is cancelled. Failed builds are reported and watching continues.
// The output directory is never watched.
func (s *Service) Watch(ctx context.Context, req Request, opts WatchOptions) error {
	p, err := resolvePaths(req)
	if err != nil {
		return err
	}

	report := opts.OnBuild
	if report == nil {
		report = s.logOutcome
	}

	var ignore []string
	if rel, relErr := filepath.Rel(p.projectDir, p.outDir); relErr == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel)+"/**")
	}

	w, err := watch.New(watch.Config{
		BaseDir:  p.projectDir,
		Patterns: opts.Patterns,
		Ignore:   ignore,
		Debounce: opts.Debounce,
		Logger:   s.logger.WithPrefix("watch"),
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("change detected, rebuilding", "files", changed)
			report(s.Build(ctx, req))
			return nil
		},
	})
	if err != nil {
		return err
	}

	report(s.Build(ctx, req))
	s.logger.Info("watching for changes", "dir", p.projectDir)

	return w.Run(ctx)
}

func (s *Service) logOutcome(res Result, err error) {
	if err != nil {
		s.logger.Error("build failed", "error", err)
		return
	}
	s.logger.Info("built", "out", res.OutputPath, "duration", res.Duration.Round(time.Millisecond))
}
