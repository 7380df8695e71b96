// SPDX-License-Identifier: MPL-2.0

package userscript

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"acme/widget", "Acme - Widget"},
		{"widget", "Widget"},
		{"@my-org/cool_tool", "My Org - Cool Tool"},
		{"acme/coolTool", "Acme - Cool Tool"},
		{"acme/XMLParser", "Acme - Xml Parser"},
		{"acme/tools/page-fixer", "Acme - Tools - Page Fixer"},
		{"acme/v2Widget", "Acme - V2 Widget"},
		{"  spaced  name  ", "Spaced Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DisplayName(tt.name); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"acme/widget", "acme___widget.user.js"},
		{"widget", "widget.user.js"},
		{"@my-org/cool-tool", "my_org___cool_tool.user.js"},
		{"acme/coolTool", "acme___cool_tool.user.js"},
		{"Acme/XMLParser", "acme___xml_parser.user.js"},
		{"a/b/c", "a___b___c.user.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FileName(tt.name); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSplitWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"---", nil},
		{"hello", []string{"hello"}},
		{"hello-world", []string{"hello", "world"}},
		{"helloWorld", []string{"hello", "World"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"page2Fix", []string{"page2", "Fix"}},
		{"ALLCAPS", []string{"ALLCAPS"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, splitWords(tt.in)); diff != "" {
				t.Errorf("splitWords(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
