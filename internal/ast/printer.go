package ast

import (
	"fmt"
	"strings"
)

func (m *Module) String() string {
	var b strings.Builder
	for _, item := range m.Items {
		b.WriteString(item.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (i *Ident) String() string { return i.Value }

func (i *Import) String() string {
	s := "import " + i.ModuleName()
	if i.Alias != nil {
		s += " as " + i.Alias.Value
	}
	return s + ";"
}

func (i *Implements) String() string { return "implements: " + i.Interface.Value + ";" }

func (d *InterfaceDef) String() string {
	var b strings.Builder
	b.WriteString("interface " + d.Name.Value + " {\n")
	for _, fn := range d.Functions {
		b.WriteString("    " + fn.String() + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (v *VariableDecl) String() string {
	typ := v.Type.String()
	switch {
	case v.Public:
		typ = "public(" + typ + ")"
	case v.Constant:
		typ = "constant(" + typ + ")"
	}
	s := v.Name.Value + ": " + typ
	if v.Value != nil {
		s += " = " + v.Value.String()
	}
	return s + ";"
}

func (f *FunctionDef) String() string {
	var b strings.Builder
	for _, d := range f.Decorators {
		b.WriteString(d.String() + "\n")
	}
	b.WriteString("fn " + f.Name.Value + "(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	if f.Return != nil {
		b.WriteString(" -> " + f.Return.String())
	}
	if f.Mutability != nil {
		b.WriteString(": " + f.Mutability.Value + ";")
	}
	if f.Body != nil {
		b.WriteString(" " + f.Body.String())
	}
	return b.String()
}

func (d *Decorator) String() string {
	if !d.Call {
		return "@" + d.Name.Value
	}
	return "@" + d.Name.Value + "(" + joinExprs(d.Args) + ")"
}

func (p *Param) String() string {
	s := p.Name.Value
	if p.Type != nil {
		s += ": " + p.Type.String()
	}
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

func (t *TypeExpr) String() string {
	var b strings.Builder
	b.WriteString(t.Name.Value)
	for _, s := range t.Subscripts {
		b.WriteString(s.String())
	}
	return b.String()
}

func (s *TypeSubscript) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *TypeArg) String() string {
	if a.Size != nil {
		return a.Size.Value
	}
	if a.Type != nil {
		return a.Type.String()
	}
	return "?"
}

func (b *Block) String() string {
	if len(b.Stmts) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString("    " + strings.ReplaceAll(s.String(), "\n", "\n    ") + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (d *DeclStmt) String() string {
	s := d.Name.Value + ": " + d.Type.String()
	if d.Value != nil {
		s += " = " + d.Value.String()
	}
	return s + ";"
}

func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s %s %s;", a.Target, a.Op, a.Value)
}

func (e *ExprStmt) String() string { return e.Expr.String() + ";" }

func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

func (i *IfStmt) String() string {
	s := "if " + i.Cond.String() + " " + i.Then.String()
	if i.Else != nil {
		if len(i.Else.Stmts) == 1 {
			if nested, ok := i.Else.Stmts[0].(*IfStmt); ok {
				return s + " else " + nested.String()
			}
		}
		s += " else " + i.Else.String()
	}
	return s
}

func (f *ForStmt) String() string {
	target := f.Target.Value
	if f.TargetType != nil {
		target += ": " + f.TargetType.String()
	}
	return "for " + target + " in " + f.Iter.String() + " " + f.Body.String()
}

func (*PassStmt) String() string     { return "pass;" }
func (*BreakStmt) String() string    { return "break;" }
func (*ContinueStmt) String() string { return "continue;" }

func (a *AssertStmt) String() string {
	if a.Msg == nil {
		return "assert " + a.Test.String() + ";"
	}
	return "assert " + a.Test.String() + ", " + a.Msg.String() + ";"
}

func (b *BadExpr) String() string   { return "<bad: " + b.Message + ">" }
func (l *IntLit) String() string    { return l.Value }
func (l *StrLit) String() string    { return fmt.Sprintf("%q", l.Value) }
func (n *NameExpr) String() string  { return n.Name }
func (p *ParenExpr) String() string { return "(" + p.Value.String() + ")" }

func (l *BoolLit) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}

func (a *AttributeExpr) String() string { return a.Value.String() + "." + a.Attr.Value }

func (s *SubscriptExpr) String() string {
	return s.Value.String() + "[" + s.Index.String() + "]"
}

func (c *CallExpr) String() string {
	args := joinExprs(c.Args)
	for _, kw := range c.Keywords {
		if args != "" {
			args += ", "
		}
		args += kw.String()
	}
	return c.Func.String() + "(" + args + ")"
}

func (k *Keyword) String() string { return k.Name.Value + "=" + k.Value.String() }

func (b *BinaryExpr) String() string {
	return b.Left.String() + " " + b.Op + " " + b.Right.String()
}

func (u *UnaryExpr) String() string {
	if u.Op == "not" {
		return "not " + u.Operand.String()
	}
	return u.Op + u.Operand.String()
}

func (l *ListExpr) String() string { return "[" + joinExprs(l.Elements) + "]" }

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
