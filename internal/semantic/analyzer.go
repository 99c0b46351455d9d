package semantic

import (
	"fmt"

	"github.com/tliron/commonlog"

	"sigil/internal/ast"
	"sigil/internal/errors"
)

var log = commonlog.GetLogger("sigil.semantic")

// Importer resolves a dotted module name to its parsed source.
type Importer interface {
	Import(name string) (*ast.Module, error)
}

// Analyzer checks a contract and the modules it imports. Analysis is
// fail-fast: the first error aborts the compilation unit.
type Analyzer struct {
	importer Importer
	program  *Program
	loading  map[string]bool
	loaded   map[string]*ModuleInfo
}

func NewAnalyzer(importer Importer) *Analyzer {
	return &Analyzer{importer: importer}
}

// Analyze runs every pass over module:
//  1. declarations of imports, constants, interfaces, state, functions
//  2. function bodies, which also builds the call graph
//  3. whole-program checks against the completed graph
func (a *Analyzer) Analyze(module *ast.Module) (*Program, error) {
	a.program = newProgram()
	a.loading = make(map[string]bool)
	a.loaded = make(map[string]*ModuleInfo)

	root, err := a.analyzeModule(module, "", false)
	if err != nil {
		return nil, err
	}
	a.program.Root = root

	if err := a.checkRecursion(); err != nil {
		return nil, err
	}
	if err := CheckLoops(a.program); err != nil {
		return nil, err
	}

	log.Debugf("analyzed %d functions across %d modules", len(a.program.Functions()), len(a.program.Modules()))
	return a.program, nil
}

func (a *Analyzer) analyzeModule(module *ast.Module, name string, library bool) (*ModuleInfo, error) {
	info := newModuleInfo(name, module, library)
	if err := a.declareModule(info); err != nil {
		return nil, err
	}
	for _, sig := range info.Functions {
		if err := a.checkFunction(info, sig); err != nil {
			return nil, err
		}
	}
	if library {
		a.program.Libraries = append(a.program.Libraries, info)
	}
	return info, nil
}

func (a *Analyzer) importModule(info *ModuleInfo, imp *ast.Import) error {
	name := imp.ModuleName()
	if a.loading[name] {
		return errors.At(errors.ErrorImportCycle, fmt.Sprintf("import cycle through module '%s'", name), imp).Build()
	}

	sub, ok := a.loaded[name]
	if !ok {
		if a.importer == nil {
			return errors.At(errors.ErrorModuleNotFound, fmt.Sprintf("module '%s' not found", name), imp).Build()
		}
		module, err := a.importer.Import(name)
		if err != nil {
			if ce, ok := errors.AsCompilerError(err); ok && ce.Code != errors.ErrorModuleNotFound {
				return ce
			}
			return errors.At(errors.ErrorModuleNotFound, fmt.Sprintf("module '%s' not found", name), imp).
				WithNote(err.Error()).
				Build()
		}

		log.Debugf("importing module %s", name)
		a.loading[name] = true
		sub, err = a.analyzeModule(module, name, true)
		delete(a.loading, name)
		if err != nil {
			return err
		}
		a.loaded[name] = sub
	}

	local := imp.LocalName()
	if _, err := info.Namespace.Define(local, SymbolImport, sub, imp); err != nil {
		return err
	}
	info.Imports[local] = sub
	return nil
}

// checkRecursion rejects call cycles; function bodies are laid out with
// static frames.
func (a *Analyzer) checkRecursion() error {
	for _, f := range a.program.Functions() {
		if a.program.CallGraph.Reaches(f, f) {
			return errors.At(errors.ErrorCallViolation,
				fmt.Sprintf("contract contains cyclic function call through '%s'", f.QualifiedName()), f.Decl).
				WithNote("recursion is not supported").
				Build()
		}
	}
	return nil
}
