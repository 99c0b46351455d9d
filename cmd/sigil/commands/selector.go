package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/grammar"
	"sigil/internal/function"
)

var selectorCmd = &cobra.Command{
	Use:   "selector <signature>...",
	Short: "Print the canonical form and 4-byte selector of function signatures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, text := range args {
			canonical, err := grammar.Canonicalize(text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", function.FormatSelector(function.Selector(canonical)), canonical)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(selectorCmd)
}
