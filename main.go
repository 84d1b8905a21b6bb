// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/pyzbuild/pyz/cmd/pyz"

func main() {
	cmd.Execute()
}
