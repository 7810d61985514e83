// SPDX-License-Identifier: MPL-2.0

package main

import cmd "molt-cli/cmd/molt"

func main() {
	cmd.Execute()
}
