// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for usbundle.
//
// The command tree is built by NewRootCommand around an App, which holds the
// configuration provider, the build service and the output writers. Execute
// runs the tree through fang for styled help, version output and signal
// handling.
package cmd
