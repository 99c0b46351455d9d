// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/fatih/color"

	"sigil/cmd/sigil/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		if err != commands.ErrReported {
			color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
