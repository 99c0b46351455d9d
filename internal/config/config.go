// Package config loads command line settings from flags, the environment
// and an optional sigil.toml.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"sigil/internal/asm"
	"sigil/internal/compiler"
	"sigil/internal/optimizer"
	"sigil/internal/output"
)

// EnvPrefix prefixes every environment variable, as in SIGIL_OPTIMIZE.
const EnvPrefix = "SIGIL"

// FileName is the base name of the configuration file looked up in the
// working directory.
const FileName = "sigil"

type Config struct {
	// none, gas or codesize
	Optimize string `mapstructure:"optimize"`

	// Directories searched for imported modules, in order
	SearchPaths []string `mapstructure:"search_paths"`

	// Comma separated output formats
	Format string `mapstructure:"format"`

	EVMVersion string `mapstructure:"evm_version"`

	// none, error, warning, notice, info or debug
	LogLevel string `mapstructure:"log_level"`

	// log file name, empty for stderr
	LogFile string `mapstructure:"log_file"`

	Color bool `mapstructure:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		Optimize:   optimizer.Gas.String(),
		Format:     string(output.Bytecode),
		EVMVersion: asm.DefaultEVMVersion,
		LogLevel:   "warning",
		Color:      true,
	}
}

// SetDefaults registers every key with v so that environment variables
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("optimize", d.Optimize)
	v.SetDefault("search_paths", d.SearchPaths)
	v.SetDefault("format", d.Format)
	v.SetDefault("evm_version", d.EVMVersion)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("color", d.Color)
}

// Load reads file, or sigil.toml in the working directory when file is
// empty, and merges it with the environment. A missing sigil.toml is not
// an error; a missing explicit file is.
func Load(fs afero.Fs, v *viper.Viper, file string) (*Config, error) {
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if file == "" {
		ok, err := afero.Exists(fs, FileName+".toml")
		if err != nil {
			return nil, errors.Wrap(err, "look up configuration")
		}
		if ok {
			file = FileName + ".toml"
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read configuration %s", file)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode configuration")
	}
	return cfg, nil
}

// Settings converts the configuration into compiler settings.
func (c *Config) Settings() (compiler.Settings, error) {
	level, err := optimizer.ParseLevel(c.Optimize)
	if err != nil {
		return compiler.Settings{}, err
	}
	return compiler.Settings{
		Optimize:    level,
		SearchPaths: c.SearchPaths,
		EVMVersion:  c.EVMVersion,
	}, nil
}

func (c *Config) Formats() ([]output.Format, error) {
	return output.ParseFormats(c.Format)
}

var verbosities = map[string]int{
	"none":    -4,
	"error":   -2,
	"warning": -1,
	"notice":  0,
	"info":    1,
	"debug":   2,
}

// Verbosity maps LogLevel onto commonlog's verbosity scale.
func (c *Config) Verbosity() (int, error) {
	v, ok := verbosities[strings.ToLower(c.LogLevel)]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return v, nil
}

// LogPath is nil when logging goes to stderr.
func (c *Config) LogPath() *string {
	if c.LogFile == "" {
		return nil
	}
	path := c.LogFile
	return &path
}
