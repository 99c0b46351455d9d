package ast

type Stmt interface {
	Node
	isStmt()
}

// Block is a braced statement list.
type Block struct {
	Pos    Position
	EndPos Position
	Stmts  []Stmt
}

// DeclStmt declares a local variable.
// Example: "total: uint256 = 0;"
type DeclStmt struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Type   *TypeExpr
	Value  Expr
}

// AssignStmt is a plain or augmented assignment.
// Example: "self.count += 1;"
type AssignStmt struct {
	Pos    Position
	EndPos Position
	Target Expr
	Op     AssignType
	Value  Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Pos    Position
	EndPos Position
	Expr   Expr
}

type ReturnStmt struct {
	Pos    Position
	EndPos Position
	Value  Expr
}

// IfStmt holds an optional else block; "else if" chains nest an IfStmt
// as the only statement of Else.
type IfStmt struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Then   *Block
	Else   *Block
}

// ForStmt iterates a list, a storage array or a range() call.
// Example: "for i: uint8 in range(10) { ... }"
type ForStmt struct {
	Pos        Position
	EndPos     Position
	Target     Ident
	TargetType *TypeExpr
	Iter       Expr
	Body       *Block
}

type PassStmt struct {
	Pos    Position
	EndPos Position
}

type BreakStmt struct {
	Pos    Position
	EndPos Position
}

type ContinueStmt struct {
	Pos    Position
	EndPos Position
}

// AssertStmt reverts when Test is false.
// Example: "assert x > 0, \"empty\";"
type AssertStmt struct {
	Pos    Position
	EndPos Position
	Test   Expr
	Msg    Expr
}

func (*Block) isStmt()        {}
func (*DeclStmt) isStmt()     {}
func (*AssignStmt) isStmt()   {}
func (*ExprStmt) isStmt()     {}
func (*ReturnStmt) isStmt()   {}
func (*IfStmt) isStmt()       {}
func (*ForStmt) isStmt()      {}
func (*PassStmt) isStmt()     {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*AssertStmt) isStmt()   {}
