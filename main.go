// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/usbundle/usbundle/cmd/usbundle"

func main() {
	cmd.Execute()
}
