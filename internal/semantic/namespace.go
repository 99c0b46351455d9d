package semantic

import (
	"fmt"
	"sort"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

type SymbolKind int

const (
	SymbolEnvironment SymbolKind = iota
	SymbolConstant
	SymbolInterface
	SymbolImport
	SymbolParameter
	SymbolVariable
	SymbolLoopVariable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolEnvironment:
		return "environment name"
	case SymbolConstant:
		return "constant"
	case SymbolInterface:
		return "interface"
	case SymbolImport:
		return "module"
	case SymbolParameter:
		return "parameter"
	case SymbolVariable:
		return "variable"
	case SymbolLoopVariable:
		return "loop variable"
	default:
		return "symbol"
	}
}

type Symbol struct {
	Name string
	Kind SymbolKind
	Type types.Type
	Node ast.Node
}

// Namespace is one lexical scope. Names may not be redeclared in any
// enclosing scope.
type Namespace struct {
	symbols map[string]*Symbol
	parent  *Namespace
}

func NewNamespace(parent *Namespace) *Namespace {
	return &Namespace{
		symbols: make(map[string]*Symbol),
		parent:  parent,
	}
}

// NewModuleNamespace returns a root scope holding the environment names.
func NewModuleNamespace() *Namespace {
	ns := NewNamespace(nil)
	for _, name := range stdlib.ReservedNames() {
		ns.symbols[name] = &Symbol{Name: name, Kind: SymbolEnvironment}
	}
	return ns
}

// Child opens a nested scope.
func (ns *Namespace) Child() *Namespace {
	return NewNamespace(ns)
}

// Define adds a symbol, failing when the name is already visible.
func (ns *Namespace) Define(name string, kind SymbolKind, t types.Type, node ast.Node) (*Symbol, error) {
	if existing := ns.Lookup(name); existing != nil {
		if existing.Kind == SymbolEnvironment {
			return nil, errors.At(errors.ErrorDuplicateDeclaration,
				fmt.Sprintf("'%s' is a reserved name", name), node).Build()
		}
		return nil, errors.DuplicateDeclaration(name, node)
	}
	symbol := &Symbol{Name: name, Kind: kind, Type: t, Node: node}
	ns.symbols[name] = symbol
	return symbol, nil
}

func (ns *Namespace) Lookup(name string) *Symbol {
	for scope := ns; scope != nil; scope = scope.parent {
		if symbol, exists := scope.symbols[name]; exists {
			return symbol
		}
	}
	return nil
}

func (ns *Namespace) LookupLocal(name string) *Symbol {
	return ns.symbols[name]
}

// Names lists every visible name, sorted, for suggestions.
func (ns *Namespace) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for scope := ns; scope != nil; scope = scope.parent {
		for name := range scope.symbols {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
