// SPDX-License-Identifier: MPL-2.0

package usermeta

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/go-cmp/cmp"
)

// extractCUEFields returns the regular fields of a CUE struct definition,
// mapped to whether each is optional.
func extractCUEFields(t *testing.T, val cue.Value) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}

	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}
		name := strings.TrimRight(sel.String(), "?!")
		fields[name] = iter.IsOptional()
	}

	return fields
}

// extractGoJSONTags returns the JSON field names of a struct type, mapped to
// whether the field has omitempty.
func extractGoJSONTags(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if !field.IsExported() || tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		fields[parts[0]] = slices.Contains(parts[1:], "omitempty")
	}

	return fields
}

func TestSchemaSync(t *testing.T) {
	t.Parallel()

	schema := cuecontext.New().CompileBytes(metadataSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}

	tests := []struct {
		definition string
		goType     reflect.Type
	}{
		{"#Metadata", reflect.TypeFor[Metadata]()},
		{"#Userscript", reflect.TypeFor[Userscript]()},
	}

	for _, tt := range tests {
		t.Run(tt.definition, func(t *testing.T) {
			t.Parallel()

			def := schema.LookupPath(cue.ParsePath(tt.definition))
			if def.Err() != nil {
				t.Fatalf("failed to lookup %s: %v", tt.definition, def.Err())
			}

			cueFields := extractCUEFields(t, def)
			goFields := extractGoJSONTags(t, tt.goType)

			for field, optional := range cueFields {
				omitempty, ok := goFields[field]
				if !ok {
					t.Errorf("CUE field %q has no Go JSON tag", field)
					continue
				}
				if optional != omitempty {
					t.Errorf("field %q: CUE optional=%v, Go omitempty=%v", field, optional, omitempty)
				}
			}
			for field := range goFields {
				if _, ok := cueFields[field]; !ok {
					t.Errorf("Go JSON tag %q has no CUE field", field)
				}
			}
		})
	}
}

// walkDisjunction collects the string literals of a CUE disjunction.
func walkDisjunction(v cue.Value, out *[]string) {
	op, args := v.Expr()
	if op == cue.OrOp && len(args) >= 2 {
		for _, arg := range args {
			walkDisjunction(arg, out)
		}
		return
	}
	if s, err := v.String(); err == nil {
		*out = append(*out, s)
	}
}

func TestGrantSchemaSync(t *testing.T) {
	t.Parallel()

	schema := cuecontext.New().CompileBytes(metadataSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath("#Grant"))
	if def.Err() != nil {
		t.Fatalf("failed to lookup #Grant: %v", def.Err())
	}

	var cueGrants []string
	walkDisjunction(def, &cueGrants)

	var goGrants []string
	for _, g := range KnownGrants() {
		goGrants = append(goGrants, g.String())
	}

	slices.Sort(cueGrants)
	slices.Sort(goGrants)
	if diff := cmp.Diff(goGrants, cueGrants); diff != "" {
		t.Errorf("#Grant and KnownGrants() differ (-go +cue):\n%s", diff)
	}
}
