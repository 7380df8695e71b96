// SPDX-License-Identifier: MPL-2.0

package userscript

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbundle/usbundle/pkg/usermeta"
)

func minimalMetadata() *usermeta.Metadata {
	return &usermeta.Metadata{
		Name:        "acme/widget",
		Description: "Does a thing",
		Version:     "1.2.3",
		Userscript: usermeta.Userscript{
			MatchURL: "https://example.com/*",
		},
	}
}

func keysOf(h Header) []string {
	var keys []string
	for _, f := range h.Fields() {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestNewHeader_Minimal(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(minimalMetadata())
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}

	want := []Field{
		{KeyName, "Acme - Widget"},
		{KeyNamespace, "http://tampermonkey.net/"},
		{KeyVersion, "1.2.3"},
		{KeyDescription, "Does a thing"},
		{KeyRunAt, "document-idle"},
		{KeyMatch, "https://example.com/*"},
		{KeyIcon, "https://www.google.com/s2/favicons?domain=example.com"},
	}
	if diff := cmp.Diff(want, h.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHeader_Render(t *testing.T) {
	t.Parallel()

	meta := minimalMetadata()
	meta.Userscript.Homepage = "https://github.com/acme/widget"
	meta.Userscript.DownloadURL = "https://example.com/w.user.js"
	meta.Userscript.UpdateURL = "https://example.com/w.meta.js"
	meta.Userscript.Grants = []usermeta.Grant{usermeta.GrantSetValue, usermeta.GrantGetValue}

	h, err := NewHeader(meta)
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}

	want := strings.Join([]string{
		"// ==UserScript==",
		"// @name         Acme - Widget",
		"// @namespace    http://tampermonkey.net/",
		"// @version      1.2.3",
		"// @description  Does a thing",
		"// @homepage     https://github.com/acme/widget",
		"// @downloadURL  https://example.com/w.user.js",
		"// @updateURL    https://example.com/w.meta.js",
		"// @run-at       document-idle",
		"// @match        https://example.com/*",
		"// @icon         https://www.google.com/s2/favicons?domain=example.com",
		"// @grant        GM_setValue",
		"// @grant        GM_getValue",
		"// ==/UserScript==",
	}, "\n")

	if diff := cmp.Diff(want, h.String()); diff != "" {
		t.Errorf("rendered header mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHeader_OptionalFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*usermeta.Metadata)
		want   []string
	}{
		{
			name:   "none",
			mutate: func(*usermeta.Metadata) {},
			want:   []string{"name", "namespace", "version", "description", "run-at", "match", "icon"},
		},
		{
			name:   "homepage only",
			mutate: func(m *usermeta.Metadata) { m.Userscript.Homepage = "https://h.example" },
			want:   []string{"name", "namespace", "version", "description", "homepage", "run-at", "match", "icon"},
		},
		{
			name:   "update only",
			mutate: func(m *usermeta.Metadata) { m.Userscript.UpdateURL = "https://u.example" },
			want:   []string{"name", "namespace", "version", "description", "updateURL", "run-at", "match", "icon"},
		},
		{
			name: "download and update",
			mutate: func(m *usermeta.Metadata) {
				m.Userscript.UpdateURL = "https://u.example"
				m.Userscript.DownloadURL = "https://d.example"
			},
			want: []string{"name", "namespace", "version", "description", "downloadURL", "updateURL", "run-at", "match", "icon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			meta := minimalMetadata()
			tt.mutate(meta)
			h, err := NewHeader(meta)
			if err != nil {
				t.Fatalf("NewHeader() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, keysOf(h)); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewHeader_GrantsPreserveOrder(t *testing.T) {
	t.Parallel()

	grants := []usermeta.Grant{
		usermeta.GrantXMLHTTPRequest,
		usermeta.GrantAddStyle,
		usermeta.GrantUnsafeWindow,
		usermeta.GrantAsyncGetValue,
	}
	meta := minimalMetadata()
	meta.Userscript.Grants = grants

	h, err := NewHeader(meta)
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}

	want := []string{"GM_xmlhttpRequest", "GM_addStyle", "unsafeWindow", "GM.getValue"}
	if diff := cmp.Diff(want, h.All(KeyGrant)); diff != "" {
		t.Errorf("grants mismatch (-want +got):\n%s", diff)
	}

	// grant lines come last
	fields := h.Fields()
	for _, f := range fields[len(fields)-len(grants):] {
		if f.Key != KeyGrant {
			t.Errorf("expected trailing grant fields, got %q", f.Key)
		}
	}
}

func TestNewHeader_Deterministic(t *testing.T) {
	t.Parallel()

	meta := minimalMetadata()
	meta.Userscript.Grants = []usermeta.Grant{usermeta.GrantLog}

	first, err := NewHeader(meta)
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}
	second, err := NewHeader(meta)
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("header not deterministic:\n%s\n---\n%s", first, second)
	}
}

func TestNewHeader_IconHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		match string
		want  string
	}{
		{"https://example.com/*", "example.com"},
		{"https://*.example.com/path/*", "*.example.com"},
		{"http://localhost:8080/*", "localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.match, func(t *testing.T) {
			t.Parallel()

			meta := minimalMetadata()
			meta.Userscript.MatchURL = tt.match
			h, err := NewHeader(meta)
			if err != nil {
				t.Fatalf("NewHeader() error = %v", err)
			}
			icon, _ := h.Get(KeyIcon)
			if want := iconURLPrefix + tt.want; icon != want {
				t.Errorf("icon = %q, want %q", icon, want)
			}
		})
	}
}

func TestNewHeader_UnparsableMatchURL(t *testing.T) {
	t.Parallel()

	meta := minimalMetadata()
	meta.Userscript.MatchURL = "*://*/*"
	if _, err := NewHeader(meta); err == nil {
		t.Error("expected error for unparsable match URL")
	}
}

func TestHeader_FieldsIsCopy(t *testing.T) {
	t.Parallel()

	h, err := NewHeader(minimalMetadata())
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}
	fields := h.Fields()
	fields[0].Value = "changed"
	if got, _ := h.Get(KeyName); got != "Acme - Widget" {
		t.Errorf("header mutated through Fields(): name = %q", got)
	}
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	if got, want := Render(nil), OpenTag+"\n"+CloseTag; got != want {
		t.Errorf("Render(nil) = %q, want %q", got, want)
	}
}
