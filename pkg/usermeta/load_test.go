// SPDX-License-Identifier: MPL-2.0

package usermeta

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadAndValidate_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		content  string
		wantName string
	}{
		{
			name: "package.json",
			file: "package.json",
			content: `{
  "name": "acme/widget",
  "description": "Does a thing",
  "version": "1.2.3",
  "private": true,
  "userscript": {
    "matchUrl": "https://example.com/*",
    "grants": ["GM_setValue"]
  }
}`,
			wantName: "acme/widget",
		},
		{
			name: "jsonc with comments and trailing commas",
			file: "deno.jsonc",
			content: `{
  // userscript package
  "name": "acme/commented",
  "description": "Has comments",
  "version": "0.1.0",
  "userscript": {
    "matchUrl": "https://example.com/*", /* trailing comma follows */
  },
}`,
			wantName: "acme/commented",
		},
		{
			name: "package.yaml",
			file: "package.yaml",
			content: `name: acme/yaml
description: From YAML
version: 2.0.0
userscript:
  matchUrl: https://example.org/*
  grants:
    - GM_addStyle
    - unsafeWindow
`,
			wantName: "acme/yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			meta, err := LoadAndValidate(path)
			if err != nil {
				t.Fatalf("LoadAndValidate() error = %v", err)
			}
			if meta.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", meta.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file wraps fs.ErrNotExist", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "package.json"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "package.toml", `name = "x"`)
		_, err := Load(path)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "package.json", `{"name": `)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
			t.Errorf("expected invalid JSON error, got %v", err)
		}
	})

	t.Run("non-object document", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "package.json", `["not", "an", "object"]`)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "must be an object") {
			t.Errorf("expected object error, got %v", err)
		}
	})

	t.Run("validation failure from disk", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "package.json", `{
  "name": "acme/widget",
  "version": "1.2.3",
  "userscript": {"matchUrl": "https://example.com/*"}
}`)
		_, err := LoadAndValidate(path)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %T: %v", err, err)
		}
		if verr.File != path {
			t.Errorf("File = %q, want %q", verr.File, path)
		}
		if !verr.HasPath("description") {
			t.Errorf("expected description violation, got %v", verr.Violations)
		}
	})
}
