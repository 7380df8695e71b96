// SPDX-License-Identifier: MPL-2.0

// Package usermeta loads and validates the package metadata a userscript is
// built from.
//
// The metadata document is a package.json (or package.yaml / deno.jsonc
// style) file carrying name, description, version and a nested userscript
// section. Validation reports every violation at once: structural rules
// live in the embedded CUE schema (metadata_schema.cue), and the rules CUE
// cannot express (URL syntax, grant membership and uniqueness) are checked
// in Go. Callers receive either a typed *Metadata or a *ValidationError.
package usermeta
