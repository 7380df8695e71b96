// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	dir := NewProject(t, map[string]string{
		"package.json":       `{"name": "x"}`,
		"src/nested/main.ts": "export {};\n",
	})

	if got := MustReadFile(t, filepath.Join(dir, "package.json")); got != `{"name": "x"}` {
		t.Errorf("package.json = %q", got)
	}
	info, err := os.Stat(filepath.Join(dir, "src", "nested"))
	if err != nil || !info.IsDir() {
		t.Fatalf("nested directory not created: %v", err)
	}
}

func TestMustWriteFile_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b.txt")
	MustWriteFile(t, path, "first")
	MustWriteFile(t, path, "second")

	if got := MustReadFile(t, path); got != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}
}

func TestBufferLogger(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	BufferLogger(&b).Debug("rebuilding", "files", 2)
	if !strings.Contains(b.String(), "rebuilding") {
		t.Errorf("debug message not captured: %q", b.String())
	}
	QuietLogger().Error("dropped")
}
