package ast

import "strings"

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Module represents one parsed source file.
// Example: "import lib; owner: address; @external fn f() { ... }"
type Module struct {
	Pos    Position
	EndPos Position
	Name   string // dotted import name, empty for the compilation root
	Path   string
	Source string
	Items  []ModuleItem
}

// Ident represents any identifier like variable names, type names, etc.
// Example: "owner", "balanceOf", "uint256"
type Ident struct {
	Pos    Position
	EndPos Position
	Value  string
}

// Import brings another module into scope.
// Example: "import util.math as m;"
type Import struct {
	Pos    Position
	EndPos Position
	Path   []Ident
	Alias  *Ident
}

// ModuleName returns the dotted module name.
func (i *Import) ModuleName() string {
	parts := make([]string, len(i.Path))
	for j, p := range i.Path {
		parts[j] = p.Value
	}
	return strings.Join(parts, ".")
}

// LocalName is the name the import is bound to in the importing module.
func (i *Import) LocalName() string {
	if i.Alias != nil {
		return i.Alias.Value
	}
	return i.Path[len(i.Path)-1].Value
}

// Implements declares that the contract conforms to an interface.
// Example: "implements: Token;"
type Implements struct {
	Pos       Position
	EndPos    Position
	Interface Ident
}

// InterfaceDef declares external function shapes callable on an address.
// Example: "interface Token { fn transfer(to: address, amount: uint256) -> bool: nonpayable; }"
type InterfaceDef struct {
	Pos       Position
	EndPos    Position
	Name      Ident
	Functions []*FunctionDef
}

// VariableDecl is a module-level state variable or constant.
// Example: "balances: public(HashMap[address, uint256]);", "FEE: constant(uint256) = 30;"
type VariableDecl struct {
	Pos      Position
	EndPos   Position
	Name     Ident
	Type     *TypeExpr
	Public   bool
	Constant bool
	Value    Expr
}

// FunctionDef is a function declaration. Interface members carry a
// Mutability ident and no body.
type FunctionDef struct {
	Pos        Position
	EndPos     Position
	Decorators []*Decorator
	Name       Ident
	Params     []*Param
	Return     *TypeExpr
	Body       *Block
	Mutability *Ident
}

// Decorator annotates a function declaration.
// Example: "@external", "@nonreentrant(\"lock\")"
type Decorator struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Call   bool
	Args   []Expr
}

// Param is a function parameter, optionally defaulted.
// Example: "amount: uint256 = 10"
type Param struct {
	Pos     Position
	EndPos  Position
	Name    Ident
	Type    *TypeExpr
	Default Expr
}

// TypeExpr is a type annotation as written.
// Example: "uint256", "HashMap[address, uint256]", "uint256[3][2]"
type TypeExpr struct {
	Pos        Position
	EndPos     Position
	Name       Ident
	Subscripts []*TypeSubscript
}

// TypeSubscript is one bracketed group after a type name.
type TypeSubscript struct {
	Pos    Position
	EndPos Position
	Args   []*TypeArg
}

// TypeArg is either a nested type or an integer size.
type TypeArg struct {
	Pos    Position
	EndPos Position
	Type   *TypeExpr
	Size   *IntLit
}

type ModuleItem interface {
	Node
	isModuleItem()
}

func (*Import) isModuleItem()       {}
func (*Implements) isModuleItem()   {}
func (*InterfaceDef) isModuleItem() {}
func (*VariableDecl) isModuleItem() {}
func (*FunctionDef) isModuleItem()  {}
