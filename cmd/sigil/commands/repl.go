package commands

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"sigil/internal/compiler"
	"sigil/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Settings()
		if err != nil {
			return err
		}

		name := "there"
		if u, err := user.Current(); err == nil {
			name = u.Username
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome to the sigil REPL, %s! Type :help for commands.\n", name)

		return repl.Start(compiler.New(fs, settings), cmd.OutOrStdout())
	},
}

func init() {
	RootCmd.AddCommand(replCmd)
}
