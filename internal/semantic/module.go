package semantic

import (
	"sigil/internal/ast"
	"sigil/internal/folding"
	"sigil/internal/function"
	"sigil/internal/types"
)

// StateVar is a module-level storage variable.
type StateVar struct {
	Name   string
	Type   types.Type
	Decl   *ast.VariableDecl
	Getter *function.Signature // nil unless public
}

// Constant is a folded module-level constant.
type Constant struct {
	Name  string
	Type  types.Type
	Value folding.Value
	Decl  *ast.VariableDecl
}

// ModuleInfo holds everything declared by one source file. The root module
// is the contract; imported modules are libraries.
type ModuleInfo struct {
	Name      string
	AST       *ast.Module
	IsLibrary bool

	Namespace  *Namespace
	Constants  []*Constant
	StateVars  []*StateVar
	Functions  []*function.Signature
	Getters    []*function.Signature
	Interfaces []*function.InterfaceT
	Imports    map[string]*ModuleInfo
	Implements []*function.InterfaceT

	Constructor *function.Signature
	Fallback    *function.Signature

	registry *types.TypeRegistry
	members  map[string]any // *StateVar, *Constant or *function.Signature
}

func newModuleInfo(name string, module *ast.Module, library bool) *ModuleInfo {
	return &ModuleInfo{
		Name:      name,
		AST:       module,
		IsLibrary: library,
		Namespace: NewModuleNamespace(),
		Imports:   make(map[string]*ModuleInfo),
		registry:  types.NewTypeRegistry(),
		members:   make(map[string]any),
	}
}

// Member returns the state variable, constant or function bound to name.
func (m *ModuleInfo) Member(name string) (any, bool) {
	v, ok := m.members[name]
	return v, ok
}

// MemberNames lists the names reachable as "self.<name>".
func (m *ModuleInfo) MemberNames() []string {
	names := make([]string, 0, len(m.members))
	for name := range m.members {
		names = append(names, name)
	}
	return names
}

func (m *ModuleInfo) Function(name string) (*function.Signature, bool) {
	sig, ok := m.members[name].(*function.Signature)
	return sig, ok
}

func (m *ModuleInfo) StateVar(name string) (*StateVar, bool) {
	v, ok := m.members[name].(*StateVar)
	return v, ok
}

func (m *ModuleInfo) Constant(name string) (*Constant, bool) {
	c, ok := m.members[name].(*Constant)
	return c, ok
}

// ExternalFunctions returns the external functions other than the
// constructor, in declaration order.
func (m *ModuleInfo) ExternalFunctions() []*function.Signature {
	var out []*function.Signature
	for _, f := range m.Functions {
		if f.IsExternal() && !f.IsConstructor() {
			out = append(out, f)
		}
	}
	return out
}

// RuntimeEntryPoints are the functions callable once the contract is deployed.
func (m *ModuleInfo) RuntimeEntryPoints() []*function.Signature {
	entries := m.ExternalFunctions()
	return append(entries, m.Getters...)
}

// DeployEntryPoints holds the constructor, when there is one.
func (m *ModuleInfo) DeployEntryPoints() []*function.Signature {
	if m.Constructor == nil {
		return nil
	}
	return []*function.Signature{m.Constructor}
}

// a module is a namespace value: "self" in its own body, or an import
// binding elsewhere

func (m *ModuleInfo) String() string {
	if m.IsLibrary {
		return "module " + m.Name
	}
	return "self"
}
func (m *ModuleInfo) ABIType() string             { return "" }
func (m *ModuleInfo) Compare(types.Type) bool     { return false }
func (m *ModuleInfo) StorageSlots() int           { return 0 }
func (m *ModuleInfo) SupportsExternalCalls() bool { return false }

type CallKind int

const (
	CallInternal CallKind = iota
	CallExternal
	CallBuiltin
	CallConvert
	CallAppend
	CallPop
)

// CallInfo is what analysis resolved a call expression to.
type CallInfo struct {
	Kind    CallKind
	Target  *function.Signature // internal and external calls
	Builtin string              // builtin name
	Type    types.Type          // interface type for conversions
}

// Write is a direct write to a storage binding.
type Write struct {
	Var  *StateVar
	Node ast.Node
}

// Loop records a for statement and what runs inside it.
type Loop struct {
	Stmt *ast.ForStmt
	Func *function.Signature
	// Var is the storage binding being iterated, nil for ranges, list
	// literals and memory values.
	Var    *StateVar
	Elem   types.Type
	Range  *RangeInfo
	Writes []Write
	Calls  []LoopCall
}

// LoopCall is an internal call made from inside a loop body.
type LoopCall struct {
	Target *function.Signature
	Call   *ast.CallExpr
}

// RangeInfo describes a range() iterable.
type RangeInfo struct {
	Start ast.Expr // nil means zero
	End   ast.Expr
	Bound int // maximum iterations
	Count int // iterations when known at compile time, otherwise zero
}

// Program is the result of analyzing a contract and its imports.
type Program struct {
	Root      *ModuleInfo
	Libraries []*ModuleInfo // in load order
	CallGraph *function.CallGraph

	Types  map[ast.Expr]types.Type
	Locals map[*ast.DeclStmt]types.Type
	Calls  map[*ast.CallExpr]*CallInfo
	Loops  map[*ast.ForStmt]*Loop
	Writes map[*function.Signature][]Write

	loopOrder []*Loop
	owners    map[*function.Signature]*ModuleInfo
}

func newProgram() *Program {
	return &Program{
		CallGraph: function.NewCallGraph(),
		Types:     make(map[ast.Expr]types.Type),
		Locals:    make(map[*ast.DeclStmt]types.Type),
		Calls:     make(map[*ast.CallExpr]*CallInfo),
		Loops:     make(map[*ast.ForStmt]*Loop),
		Writes:    make(map[*function.Signature][]Write),
		owners:    make(map[*function.Signature]*ModuleInfo),
	}
}

// Owner returns the module that declares f.
func (p *Program) Owner(f *function.Signature) *ModuleInfo {
	return p.owners[f]
}

// Modules returns the libraries followed by the root.
func (p *Program) Modules() []*ModuleInfo {
	return append(append([]*ModuleInfo(nil), p.Libraries...), p.Root)
}

// Functions returns every declared function in every module.
func (p *Program) Functions() []*function.Signature {
	var out []*function.Signature
	for _, m := range p.Modules() {
		out = append(out, m.Functions...)
	}
	return out
}

// InternalFunctions returns the functions emitted as shared labeled bodies.
func (p *Program) InternalFunctions() []*function.Signature {
	var out []*function.Signature
	for _, f := range p.Functions() {
		if f.IsInternal() {
			out = append(out, f)
		}
	}
	return out
}

// LoopsInOrder returns every loop in analysis order.
func (p *Program) LoopsInOrder() []*Loop {
	return p.loopOrder
}
