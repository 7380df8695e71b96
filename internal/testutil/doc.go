// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that need a project on disk.
//
// Helpers fail the test immediately on I/O errors (MustWriteFile,
// MustMkdirAll) so fixtures stay one line at the call site. NewProject
// lays out a temporary project from a map of relative paths to contents.
package testutil
