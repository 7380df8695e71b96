// SPDX-License-Identifier: MPL-2.0

package usermeta

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/usbundle/usbundle/pkg/cueutil"
)

// optionalURLFields are the userscript keys that, when present, must hold
// an absolute URL.
var optionalURLFields = []string{"homepage", "downloadUrl", "updateUrl"}

// Validate checks doc against every metadata rule and returns the typed
// metadata, or a *ValidationError listing all violations.
//
// Structural rules and the grant set come from the CUE #Metadata
// definition. URL syntax and grant uniqueness are checked here because CUE
// cannot express them. Grants outside the set are also named here, and a Go
// violation replaces the schema's message for the same path. Violations are
// sorted by path.
func Validate(doc *Document) (*Metadata, error) {
	if doc == nil {
		return nil, errors.New("validate metadata: nil document")
	}

	result, schemaErr := cueutil.DecodeValue[Metadata](
		metadataSchema,
		doc.Data,
		"#Metadata",
		cueutil.WithFilename(doc.Path),
	)

	violations := checkUserscript(doc.Data)
	if schemaErr != nil {
		var se *cueutil.SchemaError
		if !errors.As(schemaErr, &se) {
			return nil, schemaErr
		}
		for _, v := range se.Violations {
			if !hasPath(violations, v.CUEPath) {
				violations = append(violations, Violation{Path: v.CUEPath, Message: v.Message})
			}
		}
	}

	if len(violations) > 0 {
		sort.SliceStable(violations, func(i, j int) bool {
			return violations[i].Path < violations[j].Path
		})
		return nil, &ValidationError{File: doc.Path, Violations: violations}
	}

	return result.Value, nil
}

func hasPath(violations []Violation, path string) bool {
	for _, v := range violations {
		if v.Path == path {
			return true
		}
	}
	return false
}

// checkUserscript applies the Go-side rules to the raw userscript section.
// Values of the wrong type are skipped; the schema already reports them.
func checkUserscript(data map[string]any) []Violation {
	section, ok := data["userscript"].(map[string]any)
	if !ok {
		return nil
	}

	var violations []Violation

	if match, ok := section["matchUrl"].(string); ok && match != "" {
		if err := checkMatchURL(match); err != nil {
			violations = append(violations, Violation{Path: "userscript.matchUrl", Message: err.Error()})
		}
	}

	for _, field := range optionalURLFields {
		raw, ok := section[field].(string)
		if !ok {
			continue
		}
		if err := checkAbsoluteURL(raw); err != nil {
			violations = append(violations, Violation{Path: "userscript." + field, Message: err.Error()})
		}
	}

	if grants, ok := section["grants"].([]any); ok {
		violations = append(violations, checkGrants(grants)...)
	}

	return violations
}

// checkGrants reports unknown grants by index and repeated grants by value.
func checkGrants(grants []any) []Violation {
	var (
		violations []Violation
		seen       = make(map[Grant]int, len(grants))
		duplicates []string
	)

	for i, raw := range grants {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		g := Grant(s)
		if valid, errs := g.IsValid(); !valid {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("userscript.grants[%d]", i),
				Message: errs[0].Error(),
			})
		}

		seen[g]++
		if seen[g] == 2 {
			duplicates = append(duplicates, fmt.Sprintf("%q", s))
		}
	}

	if len(duplicates) > 0 {
		violations = append(violations, Violation{
			Path:    "userscript.grants",
			Message: "duplicate grants: " + strings.Join(duplicates, ", "),
		})
	}

	return violations
}

// checkAbsoluteURL requires raw to parse as a URL with a scheme.
func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q", raw)
	}
	if !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return fmt.Errorf("invalid URL %q: must be absolute", raw)
	}
	return nil
}

// checkMatchURL requires the match pattern to parse as a URL with a host,
// since the icon line is derived from that host.
func checkMatchURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("match pattern %q does not parse as a URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("match pattern %q has no host", raw)
	}
	return nil
}
