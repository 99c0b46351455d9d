package commands

import (
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	cfg "sigil/internal/config"
)

// ErrReported is returned once a command has already printed its own
// diagnostics.
var ErrReported = errors.New("errors reported")

var (
	config     = cfg.DefaultConfig()
	configFile string
	fs         = afero.NewOsFs()
)

var RootCmd = &cobra.Command{
	Use:   "sigil [file]",
	Short: "Compile sigil contracts to EVM bytecode.",
	Args:  cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := cfg.Load(fs, viper.GetViper(), configFile)
		if err != nil {
			return err
		}
		config = loaded

		verbosity, err := config.Verbosity()
		if err != nil {
			return err
		}
		commonlog.Configure(verbosity, config.LogPath())

		if !config.Color {
			color.NoColor = true
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runCompile(cmd, args)
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	d := cfg.DefaultConfig()
	flags := RootCmd.PersistentFlags()

	flags.StringVar(&configFile, "config", "", "Configuration file (default sigil.toml when present)")
	flags.String("optimize", d.Optimize, "Optimization level (none, gas or codesize)")
	flags.StringSlice("search_paths", d.SearchPaths, "Directories searched for imported modules")
	flags.StringP("format", "f", d.Format, "Comma separated output formats")
	flags.String("evm_version", d.EVMVersion, "Target EVM version")
	flags.String("log_level", d.LogLevel, "Log level (none, error, warning, notice, info or debug)")
	flags.String("log_file", d.LogFile, "Log output file")
	flags.Bool("color", d.Color, "Colorize diagnostics")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}
