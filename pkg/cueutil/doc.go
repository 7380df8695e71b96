// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// The package consolidates the 3-step CUE flow used by the metadata and
// config packages:
//
//  1. Compile the embedded schema
//  2. Compile (or encode) user data and unify with schema
//  3. Validate and decode to Go struct
//
// Documents that arrive as CUE source go through ParseAndDecode. Documents
// decoded from JSON, YAML or TOML by other libraries go through
// DecodeValue, which encodes the Go value into CUE first.
//
// # Usage
//
//	//go:embed metadata_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.DecodeValue[Metadata](
//	    schemaBytes,
//	    doc,
//	    "#Metadata",
//	    cueutil.WithFilename("package.json"),
//	)
//	var schemaErr *cueutil.SchemaError
//	if errors.As(err, &schemaErr) {
//	    for _, v := range schemaErr.Violations {
//	        fmt.Println(v.CUEPath, v.Message)
//	    }
//	}
package cueutil
