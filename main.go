// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/weex-cli/weex/cmd/weex"

func main() {
	cmd.Execute()
}
