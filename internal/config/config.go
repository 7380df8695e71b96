// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/usbundle/usbundle/internal/issue"
	"github.com/usbundle/usbundle/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "usbundle"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = AppName
	// ConfigFileExt is the preferred config file extension.
	ConfigFileExt = "cue"
	// TOMLFileExt is the alternate config file extension.
	TOMLFileExt = "toml"
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "USBUNDLE"
)

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

//go:embed config_schema.cue
var configSchema []byte

// FindConfigFile returns the config file that Load would read, or "" when
// the defaults apply. An explicit ConfigFilePath is returned as-is.
func FindConfigFile(opts LoadOptions) string {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath
	}
	for _, ext := range []string{ConfigFileExt, TOMLFileExt} {
		candidate := filepath.Join(opts.ProjectDir, ConfigFileName+"."+ext)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// loadWithOptions performs option-driven config loading. It returns the
// config and the path of the file it was read from ("" for defaults only).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath := FindConfigFile(opts)
	if resolvedPath != "" {
		if !fileExists(resolvedPath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'usbundle config init' to create a configuration file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, resolvedPath)).
				BuildError()
		}
		if err := loadFileIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE or TOML syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'usbundle config --help' for configuration options").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the schema, so the decoded struct is
	// checked again here.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance with defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("entry", defaults.Entry)
	v.SetDefault("out_dir", defaults.OutDir)
	v.SetDefault("package_file", defaults.PackageFile)
	v.SetDefault("build.minify", defaults.Build.Minify)
	v.SetDefault("build.sourcemap", string(defaults.Build.Sourcemap))
	v.SetDefault("build.target", defaults.Build.Target)
	v.SetDefault("watch.patterns", defaults.Watch.Patterns)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadFileIntoViper reads a CUE or TOML config file, validates it against
// the #Config schema, and merges its contents into Viper.
//
// The schema is applied with Concrete(false) because every config field is
// optional, and the result is decoded to a map so Viper can layer it over
// the defaults.
func loadFileIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	opts := []cueutil.Option{cueutil.WithConcrete(false), cueutil.WithFilename(path)}

	var result *cueutil.ParseResult[map[string]any]
	switch strings.ToLower(filepath.Ext(path)) {
	case "." + TOMLFileExt:
		if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
			return err
		}
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		result, err = cueutil.DecodeValue[map[string]any](configSchema, doc, "#Config", opts...)
	default:
		result, err = cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config", opts...)
	}
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default usbundle.cue into dir. It returns the
// written path and whether a file was created; an existing file is left alone.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// usbundle configuration file\n")
	sb.WriteString("// Environment variables prefixed with " + EnvPrefix + "_ override these values.\n\n")

	sb.WriteString(fmt.Sprintf("entry:        %q\n", cfg.Entry))
	sb.WriteString(fmt.Sprintf("out_dir:      %q\n", cfg.OutDir))
	sb.WriteString(fmt.Sprintf("package_file: %q\n", cfg.PackageFile))

	sb.WriteString("\nbuild: {\n")
	sb.WriteString(fmt.Sprintf("\tminify:    %v\n", cfg.Build.Minify))
	sb.WriteString(fmt.Sprintf("\tsourcemap: %q\n", cfg.Build.Sourcemap))
	sb.WriteString(fmt.Sprintf("\ttarget:    %q\n", cfg.Build.Target))
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	if len(cfg.Watch.Patterns) > 0 {
		sb.WriteString("\tpatterns: [\n")
		for _, p := range cfg.Watch.Patterns {
			sb.WriteString(fmt.Sprintf("\t\t%q,\n", p))
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString(fmt.Sprintf("\tdebounce_ms: %d\n", cfg.Watch.DebounceMs))
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", cfg.UI.Verbose))
	sb.WriteString("}\n")

	return sb.String()
}
