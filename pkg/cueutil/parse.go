// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult contains the result of a successful CUE parse operation.
type ParseResult[T any] struct {
	// Value is the decoded Go value.
	Value *T

	// Unified is the unified CUE value, available for callers that need to
	// inspect fields the Go type does not carry.
	Unified cue.Value
}

// ParseAndDecode compiles CUE source data, unifies it with the definition at
// schemaPath inside schema, validates the result and decodes it into T.
//
// Validation failures are returned as *SchemaError listing every violation.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaRoot, err := compileSchema(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	return unifyAndDecode[T](schemaRoot, userValue, schemaPath, options)
}

// DecodeValue validates a document that was already decoded into Go values
// (maps, slices, strings, numbers) by a JSON, YAML or TOML decoder. The
// document is encoded into CUE, unified with the definition at schemaPath,
// validated, and decoded into T.
//
// Whole float64 numbers, which is how encoding/json decodes every number,
// are encoded as CUE ints so they satisfy int constraints.
func DecodeValue[T any](schema []byte, doc any, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	ctx := cuecontext.New()

	schemaRoot, err := compileSchema(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	userValue := ctx.Encode(normalizeNumbers(doc))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	return unifyAndDecode[T](schemaRoot, userValue, schemaPath, options)
}

func applyOptions(opts []Option) parseOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		options.filename = "<input>"
	}
	return options
}

func compileSchema(ctx *cue.Context, schema []byte, schemaPath string) (cue.Value, error) {
	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}
	return schemaRoot, nil
}

func unifyAndDecode[T any](schemaRoot, userValue cue.Value, schemaPath string, options parseOptions) (*ParseResult[T], error) {
	unified := schemaRoot.Unify(userValue)

	prefix := pathSelectors(schemaPath)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		formatted := formatError(err, options.filename, prefix)
		if se, ok := formatted.(*SchemaError); ok {
			se.Violations = appendMissing(se.Violations, missingRequired(schemaRoot, userValue, nil), options.filename)
		}
		return nil, formatted
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, formatError(err, options.filename, prefix)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// missingRequired lists the required fields of schema that user does not
// set, descending into the structs user does set. CUE drops these
// incomplete errors from Validate as soon as any other field conflicts.
func missingRequired(schema, user cue.Value, path []string) [][]string {
	iter, err := schema.Fields(cue.Optional(true))
	if err != nil {
		return nil
	}

	var missing [][]string
	for iter.Next() {
		sel := iter.Selector()
		if sel.IsDefinition() || sel.LabelType().IsHidden() {
			continue
		}
		name := strings.TrimRight(sel.String(), "?!")
		fieldPath := append(slices.Clone(path), name)

		child := user.LookupPath(cue.MakePath(cue.Str(name)))
		if !child.Exists() {
			if sel.ConstraintType() == cue.RequiredConstraint {
				missing = append(missing, fieldPath)
			}
			continue
		}
		if iter.Value().IncompleteKind() == cue.StructKind && child.Kind() == cue.StructKind {
			missing = append(missing, missingRequired(iter.Value(), child, fieldPath)...)
		}
	}
	return missing
}

// appendMissing adds a violation for every missing path not already reported.
func appendMissing(violations []*ValidationError, missing [][]string, filename string) []*ValidationError {
	for _, path := range missing {
		pathStr := formatPath(path)
		reported := slices.ContainsFunc(violations, func(v *ValidationError) bool {
			return v.CUEPath == pathStr
		})
		if reported {
			continue
		}
		violations = append(violations, &ValidationError{
			FilePath: filename,
			CUEPath:  pathStr,
			Message:  "field is required but not present",
		})
	}
	return violations
}

// pathSelectors splits a schema path such as "#Metadata" into the labels
// CUE uses in error paths.
func pathSelectors(schemaPath string) []string {
	sels := cue.ParsePath(schemaPath).Selectors()
	labels := make([]string, 0, len(sels))
	for _, sel := range sels {
		labels = append(labels, sel.String())
	}
	return labels
}

// normalizeNumbers returns doc with whole float64 values replaced by int64.
func normalizeNumbers(doc any) any {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = normalizeNumbers(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = normalizeNumbers(elem)
		}
		return out
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= 1<<53 {
			return int64(v)
		}
		return v
	default:
		return doc
	}
}
