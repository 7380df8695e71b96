// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/evanw/esbuild/pkg/api"
)

var (
	esTargets = map[string]api.Target{
		"esnext": api.ESNext,
		"es5":    api.ES5,
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
	}

	engines = map[string]api.EngineName{
		"chrome":  api.EngineChrome,
		"edge":    api.EngineEdge,
		"firefox": api.EngineFirefox,
		"ios":     api.EngineIOS,
		"opera":   api.EngineOpera,
		"safari":  api.EngineSafari,
	}

	sourcemaps = map[SourcemapMode]api.SourceMap{
		"":                api.SourceMapInline,
		SourcemapNone:     api.SourceMapNone,
		SourcemapInline:   api.SourceMapInline,
		SourcemapLinked:   api.SourceMapLinked,
		SourcemapExternal: api.SourceMapExternal,
		SourcemapBoth:     api.SourceMapInlineAndExternal,
	}
)

// Esbuild bundles with esbuild's in-process Go API.
type Esbuild struct {
	logger *log.Logger
}

// NewEsbuild returns an esbuild-backed Bundler. A nil logger discards
// warnings.
func NewEsbuild(logger *log.Logger) *Esbuild {
	return &Esbuild{logger: logger}
}

// Bundle runs one build. Each call owns its build context and disposes it
// before returning.
func (b *Esbuild) Bundle(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("bundle canceled: %w", err)
	}

	opts, err := buildOptions(req)
	if err != nil {
		return Result{}, err
	}

	bctx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return Result{}, newBuildError(ctxErr.Errors)
	}
	defer bctx.Dispose()

	stop := context.AfterFunc(ctx, bctx.Cancel)
	defer stop()

	res := bctx.Rebuild()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("bundle canceled: %w", err)
	}

	warnings := api.FormatMessages(res.Warnings, api.FormatMessagesOptions{Kind: api.WarningMessage})
	for _, w := range warnings {
		if b.logger != nil {
			b.logger.Warn("bundler warning", "detail", strings.TrimSpace(w))
		}
	}

	if len(res.Errors) > 0 {
		return Result{}, newBuildError(res.Errors)
	}

	out := Result{Warnings: warnings}
	for _, f := range res.OutputFiles {
		out.OutputFiles = append(out.OutputFiles, f.Path)
	}
	if len(out.OutputFiles) == 0 {
		out.OutputFiles = []string{req.Outfile}
	}
	if b.logger != nil {
		b.logger.Debug("bundle written", "files", len(out.OutputFiles), "outfile", req.Outfile)
	}
	return out, nil
}

func buildOptions(req Request) (api.BuildOptions, error) {
	sourcemap, ok := sourcemaps[req.Sourcemap]
	if !ok {
		_, errs := req.Sourcemap.IsValid()
		return api.BuildOptions{}, errs[0]
	}

	opts := api.BuildOptions{
		EntryPoints:       []string{req.EntryPoint},
		Outfile:           req.Outfile,
		AbsWorkingDir:     req.AbsWorkingDir,
		Bundle:            true,
		Write:             true,
		Format:            api.FormatIIFE,
		Platform:          api.PlatformBrowser,
		Charset:           api.CharsetUTF8,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  req.Minify,
		MinifyIdentifiers: req.Minify,
		MinifySyntax:      req.Minify,
		LogLevel:          api.LogLevelSilent,
	}

	// esbuild separates the banner from the code with a single newline; the
	// extra one leaves a blank line after the header.
	if req.Banner != "" {
		opts.Banner = map[string]string{"js": req.Banner + "\n"}
	}

	if req.Target != "" {
		target, engine, err := parseTarget(req.Target)
		if err != nil {
			return api.BuildOptions{}, err
		}
		opts.Target = target
		if engine != nil {
			opts.Engines = []api.Engine{*engine}
		}
	}

	return opts, nil
}

// parseTarget accepts "esNNNN", "esnext", or an engine name followed by a
// version such as "chrome100" or "safari15.4".
func parseTarget(s string) (api.Target, *api.Engine, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if t, ok := esTargets[name]; ok {
		return t, nil, nil
	}

	split := strings.IndexFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	if split > 0 {
		engine, ok := engines[name[:split]]
		version := name[split:]
		if ok && validVersion(version) {
			return api.DefaultTarget, &api.Engine{Name: engine, Version: version}, nil
		}
	}

	return api.DefaultTarget, nil, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
}

func validVersion(v string) bool {
	for part := range strings.SplitSeq(v, ".") {
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}

func newBuildError(msgs []api.Message) *BuildError {
	be := &BuildError{
		Formatted: api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: api.ErrorMessage}),
	}
	for _, m := range msgs {
		msg := Message{Text: m.Text}
		if m.Location != nil {
			msg.File = m.Location.File
			msg.Line = m.Location.Line
			msg.Column = m.Location.Column
		}
		be.Messages = append(be.Messages, msg)
	}
	return be
}
