// SPDX-License-Identifier: MPL-2.0

// Package bundler turns an entry module and its imports into a single
// browser script with a banner on top. The esbuild implementation runs
// in-process through esbuild's Go API.
package bundler
