// SPDX-License-Identifier: MPL-2.0

package userscript

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/usbundle/usbundle/pkg/usermeta"
)

const (
	// Namespace is the constant @namespace value.
	Namespace = "http://tampermonkey.net/"
	// RunAt is the constant @run-at value.
	RunAt = "document-idle"

	// OpenTag and CloseTag delimit the header block.
	OpenTag  = "// ==UserScript=="
	CloseTag = "// ==/UserScript=="

	iconURLPrefix = "https://www.google.com/s2/favicons?domain="

	// keyWidth pads keys so that "// @<key>" is 16 columns wide.
	keyWidth = 12
)

// Header keys, in emission order.
const (
	KeyName        = "name"
	KeyNamespace   = "namespace"
	KeyVersion     = "version"
	KeyDescription = "description"
	KeyHomepage    = "homepage"
	KeyDownloadURL = "downloadURL"
	KeyUpdateURL   = "updateURL"
	KeyRunAt       = "run-at"
	KeyMatch       = "match"
	KeyIcon        = "icon"
	KeyGrant       = "grant"
)

type (
	// Field is one "// @key value" line of the header.
	Field struct {
		Key   string
		Value string
	}

	// Header is an ordered, immutable sequence of header fields.
	Header struct {
		fields []Field
	}
)

// NewHeader derives the header fields from validated metadata.
//
// Fields are emitted in a fixed order: name, namespace, version,
// description, then homepage, downloadURL and updateURL when set, then
// run-at, match, icon, and one grant line per grant in input order.
//
// The only failure is a match URL that does not parse, which validated
// metadata never carries.
func NewHeader(meta *usermeta.Metadata) (Header, error) {
	us := meta.Userscript

	icon, err := IconURL(us.MatchURL)
	if err != nil {
		return Header{}, err
	}

	fields := make([]Field, 0, 10+len(us.Grants))
	fields = append(fields,
		Field{KeyName, DisplayName(meta.Name)},
		Field{KeyNamespace, Namespace},
		Field{KeyVersion, meta.Version},
		Field{KeyDescription, meta.Description},
	)

	if us.Homepage != "" {
		fields = append(fields, Field{KeyHomepage, us.Homepage})
	}
	if us.DownloadURL != "" {
		fields = append(fields, Field{KeyDownloadURL, us.DownloadURL})
	}
	if us.UpdateURL != "" {
		fields = append(fields, Field{KeyUpdateURL, us.UpdateURL})
	}

	fields = append(fields,
		Field{KeyRunAt, RunAt},
		Field{KeyMatch, us.MatchURL},
		Field{KeyIcon, icon},
	)

	for _, g := range us.Grants {
		fields = append(fields, Field{KeyGrant, g.String()})
	}

	return Header{fields: fields}, nil
}

// IconURL returns the favicon service URL for the host of matchURL.
func IconURL(matchURL string) (string, error) {
	u, err := url.Parse(matchURL)
	if err != nil {
		return "", fmt.Errorf("parse match URL %q: %w", matchURL, err)
	}
	return iconURLPrefix + u.Host, nil
}

// Fields returns a copy of the header fields.
func (h Header) Fields() []Field {
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Get returns the value of the first field with the given key.
func (h Header) Get(key string) (string, bool) {
	for _, f := range h.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// All returns the values of every field with the given key, in order.
func (h Header) All(key string) []string {
	var values []string
	for _, f := range h.fields {
		if f.Key == key {
			values = append(values, f.Value)
		}
	}
	return values
}

// String renders the header block.
func (h Header) String() string {
	return Render(h.fields)
}

// Render formats fields as a header block. Lines are joined with "\n" and
// the block has no trailing newline.
func Render(fields []Field) string {
	lines := make([]string, 0, len(fields)+2)
	lines = append(lines, OpenTag)
	for _, f := range fields {
		lines = append(lines, f.line())
	}
	lines = append(lines, CloseTag)
	return strings.Join(lines, "\n")
}

func (f Field) line() string {
	return fmt.Sprintf("// @%-*s %s", keyWidth, f.Key, f.Value)
}
