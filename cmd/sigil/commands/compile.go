package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sigil/internal/compiler"
	"sigil/internal/errors"
	"sigil/internal/output"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a contract and print the selected outputs",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	RootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	path := args[0]

	settings, err := config.Settings()
	if err != nil {
		return err
	}
	formats, err := config.Formats()
	if err != nil {
		return err
	}

	c := compiler.New(fs, settings)
	art, err := c.CompileFile(path)
	if err != nil {
		report(cmd.ErrOrStderr(), c, path, err)
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("Compilation failed after %s", formatDuration(time.Since(startTime))))
		return ErrReported
	}

	out := cmd.OutOrStdout()
	for _, f := range formats {
		text, err := output.Render(art, f)
		if err != nil {
			return err
		}
		if len(formats) > 1 {
			fmt.Fprintf(out, "======= %s =======\n", f)
		}
		fmt.Fprintln(out, text)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("Successfully compiled %s in %s", path, formatDuration(time.Since(startTime))))
	return nil
}

// report renders err against the source of the file it points into.
func report(w io.Writer, c *compiler.Compiler, path string, err error) {
	source, readErr := c.Loader().ReadFile(path)
	if readErr != nil {
		source = ""
	}
	reporter := errors.NewErrorReporter(path, source).WithSources(c.Loader().ReadFile)
	fmt.Fprint(w, reporter.Report(err))
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
