// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SourcemapNone disables source maps.
	SourcemapNone SourcemapMode = "none"
	// SourcemapInline embeds the source map in the output file.
	SourcemapInline SourcemapMode = "inline"
	// SourcemapLinked writes a .map file and links it from the output.
	SourcemapLinked SourcemapMode = "linked"
	// SourcemapExternal writes a .map file without linking it.
	SourcemapExternal SourcemapMode = "external"
	// SourcemapBoth embeds the map and also writes a .map file.
	// Defined locally to avoid coupling config to the bundler package.
	SourcemapBoth SourcemapMode = "both"
)

var (
	// ErrInvalidSourcemapMode is returned when a SourcemapMode value is not recognized.
	ErrInvalidSourcemapMode = errors.New("invalid sourcemap mode")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// SourcemapMode selects how source maps are emitted next to the bundle.
	SourcemapMode string

	// InvalidSourcemapModeError is returned when a SourcemapMode value is not recognized.
	// It wraps ErrInvalidSourcemapMode for errors.Is() compatibility.
	InvalidSourcemapModeError struct {
		Value SourcemapMode
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the project configuration.
	Config struct {
		// Entry is the entry module, relative to the project directory.
		Entry string `json:"entry" mapstructure:"entry"`
		// OutDir receives the bundled userscript.
		OutDir string `json:"out_dir" mapstructure:"out_dir"`
		// PackageFile is the package metadata file.
		PackageFile string `json:"package_file" mapstructure:"package_file"`
		// Build configures the bundler.
		Build BuildConfig `json:"build" mapstructure:"build"`
		// Watch configures watch mode.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// BuildConfig configures the bundler.
	BuildConfig struct {
		Minify    bool          `json:"minify" mapstructure:"minify"`
		Sourcemap SourcemapMode `json:"sourcemap" mapstructure:"sourcemap"`
		// Target is an esbuild target such as "es2020" or "chrome100".
		Target string `json:"target" mapstructure:"target"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Patterns are doublestar globs relative to the project directory.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// DebounceMs is the quiet period before a rebuild.
		DebounceMs int `json:"debounce_ms" mapstructure:"debounce_ms"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and error chains
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// SourcemapModes returns every supported mode in display order.
func SourcemapModes() []SourcemapMode {
	return []SourcemapMode{SourcemapNone, SourcemapInline, SourcemapLinked, SourcemapExternal, SourcemapBoth}
}

// String returns the string representation of the SourcemapMode.
func (m SourcemapMode) String() string { return string(m) }

// IsValid returns whether the SourcemapMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m SourcemapMode) IsValid() (bool, []error) {
	switch m {
	case SourcemapNone, SourcemapInline, SourcemapLinked, SourcemapExternal, SourcemapBoth:
		return true, nil
	default:
		return false, []error{&InvalidSourcemapModeError{Value: m}}
	}
}

// Error implements the error interface.
func (e *InvalidSourcemapModeError) Error() string {
	modes := make([]string, 0, len(SourcemapModes()))
	for _, m := range SourcemapModes() {
		modes = append(modes, string(m))
	}
	return fmt.Sprintf("invalid sourcemap mode %q (valid: %s)", e.Value, strings.Join(modes, ", "))
}

// Unwrap returns ErrInvalidSourcemapMode so callers can use errors.Is for programmatic detection.
func (e *InvalidSourcemapModeError) Unwrap() error { return ErrInvalidSourcemapMode }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid checks the constraints the schema cannot see after environment
// overrides have been applied.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Entry) == "" {
		errs = append(errs, errors.New("entry must not be empty"))
	}
	if strings.TrimSpace(c.OutDir) == "" {
		errs = append(errs, errors.New("out_dir must not be empty"))
	}
	if strings.TrimSpace(c.PackageFile) == "" {
		errs = append(errs, errors.New("package_file must not be empty"))
	}
	if valid, fieldErrs := c.Build.Sourcemap.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMs))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Entry:       "src/index.ts",
		OutDir:      "dist",
		PackageFile: "package.json",
		Build: BuildConfig{
			Minify:    false,
			Sourcemap: SourcemapInline,
			Target:    "es2020",
		},
		Watch: WatchConfig{
			Patterns:   []string{"src/**", "package.json"},
			DebounceMs: 200,
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
