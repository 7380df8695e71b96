// SPDX-License-Identifier: MPL-2.0

// Package watch provides file-watching with debounced callbacks.
//
// It monitors a directory tree for changes to paths matching glob patterns
// and invokes a callback once the tree has been quiet for the debounce
// period. Events that arrive while a callback runs are collected and
// delivered in the next batch, so callbacks never overlap.
package watch
