package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/asm"
)

// Version is overridden at link time with -ldflags "-X".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the compiler version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sigil %s (default evm version %s)\n", Version, asm.DefaultEVMVersion)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
