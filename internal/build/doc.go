// SPDX-License-Identifier: MPL-2.0

// Package build runs the userscript pipeline: load and validate package
// metadata, render the header, and bundle the entry point with the header as
// banner. Watch mode repeats the pipeline whenever sources change.
package build
