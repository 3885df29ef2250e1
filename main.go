// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/wirehook/wirehook/cmd/wirehook"

func main() {
	cmd.Execute()
}
