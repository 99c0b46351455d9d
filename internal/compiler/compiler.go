// Package compiler runs every phase from source text to bytecode.
package compiler

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"

	"sigil/internal/ast"
	"sigil/internal/asm"
	"sigil/internal/codegen"
	"sigil/internal/loader"
	"sigil/internal/optimizer"
	"sigil/internal/output"
	"sigil/internal/semantic"
)

var log = commonlog.GetLogger("sigil.compiler")

type Settings struct {
	Optimize    optimizer.Level
	SearchPaths []string
	EVMVersion  string
}

// DefaultSettings optimizes for gas on the newest EVM version.
func DefaultSettings() Settings {
	return Settings{Optimize: optimizer.Gas, EVMVersion: asm.DefaultEVMVersion}
}

type Compiler struct {
	settings Settings
	loader   *loader.Loader
}

func New(fs afero.Fs, settings Settings) *Compiler {
	return &Compiler{
		settings: settings,
		loader:   loader.New(fs, settings.SearchPaths),
	}
}

func (c *Compiler) Settings() Settings {
	return c.settings
}

// Loader is shared by every compilation so imported sources are read once.
func (c *Compiler) Loader() *loader.Loader {
	return c.loader
}

// CompileFile compiles the file at path. Imports are searched for next to
// the file before the configured search paths.
func (c *Compiler) CompileFile(path string) (*output.Artifacts, error) {
	var source string
	err := phase("load", func() error {
		var err error
		source, err = c.loader.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.compile(c.loader.WithPaths(filepath.Dir(path)), path, source)
}

// CompileSource compiles source as if it were read from path.
func (c *Compiler) CompileSource(path, source string) (*output.Artifacts, error) {
	return c.compile(c.loader, path, source)
}

// Analyze parses and checks source without generating code.
func (c *Compiler) Analyze(path, source string) (*semantic.Program, error) {
	module, err := loader.Parse(path, source)
	if err != nil {
		return nil, err
	}
	return semantic.NewAnalyzer(c.loader).Analyze(module)
}

func (c *Compiler) compile(l *loader.Loader, path, source string) (*output.Artifacts, error) {
	start := time.Now()
	defer func() {
		log.Infof("compiled %s in %s", path, time.Since(start))
	}()

	assembler, err := asm.NewAssembler(c.settings.EVMVersion)
	if err != nil {
		return nil, err
	}

	var module *ast.Module
	if err := phase("parse", func() error {
		module, err = loader.Parse(path, source)
		return err
	}); err != nil {
		return nil, err
	}
	module.Path = path
	module.Source = source

	var program *semantic.Program
	if err := phase("analyze", func() error {
		program, err = semantic.NewAnalyzer(l).Analyze(module)
		return err
	}); err != nil {
		return nil, err
	}

	var result *codegen.Result
	if err := phase("generate", func() error {
		result, err = codegen.Generate(program)
		return err
	}); err != nil {
		return nil, err
	}

	if err := phase("optimize", func() error {
		reach := optimizer.NewReachability(program)
		return optimizer.NewOptimizationPipeline(c.settings.Optimize, reach).Run(result.Program)
	}); err != nil {
		return nil, err
	}

	var code *asm.Bytecode
	if err := phase("assemble", func() error {
		code, err = assembler.AssembleProgram(result.Program)
		return err
	}); err != nil {
		return nil, err
	}

	return &output.Artifacts{
		Program:  program,
		Assembly: result.Program,
		Code:     code,
		Layout:   result.Layout,
	}, nil
}

func phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	log.Debugf("%s: %s", name, time.Since(start))
	return err
}
