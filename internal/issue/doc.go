// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for fixing it. The issue catalog holds longer Markdown guidance
// per failure class, rendered with glamour when the CLI reports an error.
package issue
