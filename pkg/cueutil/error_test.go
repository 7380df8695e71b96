// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/google/go-cmp/cmp"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := FormatError(originalErr, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "test.cue") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
		if !errors.Is(err, originalErr) {
			t.Errorf("error should wrap the original error, got: %v", err)
		}
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			t.Errorf("a non-CUE error should not become a *SchemaError: %v", err)
		}
	})

	t.Run("CUE error becomes a SchemaError", func(t *testing.T) {
		t.Parallel()

		v := cuecontext.New().CompileString(`limits: max: int & "lots"`)
		err := FormatError(v.Validate(), "limits.cue")

		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("expected *SchemaError, got %T: %v", err, err)
		}
		got := schemaErr.Violations[0]
		if got.CUEPath != "limits.max" {
			t.Errorf("CUEPath = %q, want %q", got.CUEPath, "limits.max")
		}
		if strings.HasPrefix(got.Message, "limits") {
			t.Errorf("message should not repeat the path: %q", got.Message)
		}
	})
}

func TestTrimPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   []string
		prefix []string
		want   []string
	}{
		{"no prefix", []string{"version"}, nil, []string{"version"}},
		{"definition prefix", []string{"#Metadata", "version"}, []string{"#Metadata"}, []string{"version"}},
		{"nested definition prefix", []string{"#A", "#B", "x", "0"}, []string{"#A", "#B"}, []string{"x", "0"}},
		{"different prefix is kept", []string{"#Config", "out_dir"}, []string{"#Metadata"}, []string{"#Config", "out_dir"}},
		{"path shorter than prefix", []string{"#A"}, []string{"#A", "#B"}, []string{"#A"}},
		{"path equal to prefix", []string{"#Metadata"}, []string{"#Metadata"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, trimPrefix(tt.path, tt.prefix)); diff != "" {
				t.Errorf("trimPrefix() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{
			name:     "empty path",
			path:     []string{},
			expected: "",
		},
		{
			name:     "single element",
			path:     []string{"name"},
			expected: "name",
		},
		{
			name:     "nested path",
			path:     []string{"userscript", "matchUrl"},
			expected: "userscript.matchUrl",
		},
		{
			name:     "array index",
			path:     []string{"userscript", "grants", "0"},
			expected: "userscript.grants[0]",
		},
		{
			name:     "nested arrays",
			path:     []string{"items", "0", "values", "1"},
			expected: "items[0].values[1]",
		},
		{
			name:     "leading number is not an index",
			path:     []string{"0", "name"},
			expected: "0.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if result := formatPath(tt.path); result != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	t.Run("data within limit returns nil", func(t *testing.T) {
		t.Parallel()

		if err := CheckFileSize([]byte("hello world"), 100, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("data at exact limit returns nil", func(t *testing.T) {
		t.Parallel()

		if err := CheckFileSize(make([]byte, 100), 100, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("data exceeding limit returns error", func(t *testing.T) {
		t.Parallel()

		err := CheckFileSize(make([]byte, 101), 100, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		for _, want := range []string{"test.cue", "101", "100"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error should contain %q, got: %v", want, err)
			}
		}
	})
}

func TestSchemaError(t *testing.T) {
	t.Parallel()

	t.Run("single violation", func(t *testing.T) {
		t.Parallel()

		err := &SchemaError{
			FilePath: "package.json",
			Violations: []*ValidationError{
				{FilePath: "package.json", CUEPath: "version", Message: "out of bound"},
			},
		}
		want := "package.json: version: out of bound"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
	})

	t.Run("several violations are listed", func(t *testing.T) {
		t.Parallel()

		err := &SchemaError{
			FilePath: "package.json",
			Violations: []*ValidationError{
				{CUEPath: "description", Message: "field is required but not present"},
				{CUEPath: "version", Message: "out of bound"},
			},
		}
		want := "package.json: validation failed:\n  description: field is required but not present\n  version: out of bound"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	t.Run("Error with path", func(t *testing.T) {
		t.Parallel()

		err := &ValidationError{
			FilePath: "usbundle.cue",
			CUEPath:  "build.minify",
			Message:  "expected bool, got string",
		}
		expected := "usbundle.cue: build.minify: expected bool, got string"
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Error without path", func(t *testing.T) {
		t.Parallel()

		err := &ValidationError{FilePath: "usbundle.cue", Message: "syntax error"}
		if err.Error() != "usbundle.cue: syntax error" {
			t.Errorf("got %q", err.Error())
		}
		if err.Unwrap() != nil {
			t.Error("Unwrap should return nil")
		}
	})
}
