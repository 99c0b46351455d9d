package ast

type Expr interface {
	Node
	isExpr()
}

// BadExpr stands in for an expression that failed to parse
type BadExpr struct {
	Pos     Position
	EndPos  Position
	Message string
}

// IntLit is a decimal or hex integer literal as written.
// Example: "42", "0xff"
type IntLit struct {
	Pos    Position
	EndPos Position
	Value  string
}

// StrLit holds the unquoted string contents.
type StrLit struct {
	Pos    Position
	EndPos Position
	Value  string
}

type BoolLit struct {
	Pos    Position
	EndPos Position
	Value  bool
}

// NameExpr is a bare identifier reference.
// Example: "amount", "self", "msg"
type NameExpr struct {
	Pos    Position
	EndPos Position
	Name   string
}

// AttributeExpr is a member access.
// Example: "self.owner", "msg.sender"
type AttributeExpr struct {
	Pos    Position
	EndPos Position
	Value  Expr
	Attr   Ident
}

// SubscriptExpr indexes an array or mapping.
// Example: "self.balances[owner]"
type SubscriptExpr struct {
	Pos    Position
	EndPos Position
	Value  Expr
	Index  Expr
}

// CallExpr is a call with positional and keyword arguments.
// Example: "Token(addr).transfer(to, 1, gas=50000)"
type CallExpr struct {
	Pos      Position
	EndPos   Position
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

// Keyword is a named call argument.
type Keyword struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Value  Expr
}

// KeywordValue returns the value passed for name, or nil.
func (c *CallExpr) KeywordValue(name string) Expr {
	for _, kw := range c.Keywords {
		if kw.Name.Value == name {
			return kw.Value
		}
	}
	return nil
}

type BinaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	Left   Expr
	Right  Expr
}

// UnaryExpr is "-x" or "not x".
type UnaryExpr struct {
	Pos     Position
	EndPos  Position
	Op      string
	Operand Expr
}

// ListExpr is a list literal.
// Example: "[1, 2, 3]"
type ListExpr struct {
	Pos      Position
	EndPos   Position
	Elements []Expr
}

type ParenExpr struct {
	Pos    Position
	EndPos Position
	Value  Expr
}

func (*BadExpr) isExpr()       {}
func (*IntLit) isExpr()        {}
func (*StrLit) isExpr()        {}
func (*BoolLit) isExpr()       {}
func (*NameExpr) isExpr()      {}
func (*AttributeExpr) isExpr() {}
func (*SubscriptExpr) isExpr() {}
func (*CallExpr) isExpr()      {}
func (*BinaryExpr) isExpr()    {}
func (*UnaryExpr) isExpr()     {}
func (*ListExpr) isExpr()      {}
func (*ParenExpr) isExpr()     {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Value
	}
}

// IsLiteral reports whether e is a literal value as written in source.
// Negated integer literals count; list literals count when every element does.
func IsLiteral(e Expr) bool {
	switch v := Unparen(e).(type) {
	case *IntLit, *StrLit, *BoolLit:
		return true
	case *UnaryExpr:
		if v.Op == "-" {
			_, ok := Unparen(v.Operand).(*IntLit)
			return ok
		}
	case *ListExpr:
		for _, el := range v.Elements {
			if !IsLiteral(el) {
				return false
			}
		}
		return true
	}
	return false
}

// SourceText returns the exact source slice a node spans.
func SourceText(source string, n Node) string {
	start, end := n.NodePos().Offset, n.NodeEndPos().Offset
	if start < 0 || end > len(source) || start > end {
		return ""
	}
	return source[start:end]
}
