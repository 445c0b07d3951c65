// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/confreg/confreg/cmd/confreg"

func main() {
	cmd.Execute()
}
