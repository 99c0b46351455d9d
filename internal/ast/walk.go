package ast

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch v := n.(type) {
	case *Module:
		for _, item := range v.Items {
			Inspect(item, f)
		}
	case *InterfaceDef:
		for _, fn := range v.Functions {
			Inspect(fn, f)
		}
	case *VariableDecl:
		if v.Type != nil {
			Inspect(v.Type, f)
		}
		inspectExpr(v.Value, f)
	case *FunctionDef:
		for _, d := range v.Decorators {
			Inspect(d, f)
		}
		for _, p := range v.Params {
			Inspect(p, f)
		}
		if v.Return != nil {
			Inspect(v.Return, f)
		}
		if v.Body != nil {
			Inspect(v.Body, f)
		}
	case *Decorator:
		for _, a := range v.Args {
			Inspect(a, f)
		}
	case *Param:
		if v.Type != nil {
			Inspect(v.Type, f)
		}
		inspectExpr(v.Default, f)
	case *TypeExpr:
		for _, s := range v.Subscripts {
			for _, a := range s.Args {
				if a.Type != nil {
					Inspect(a.Type, f)
				}
			}
		}
	case *Block:
		for _, s := range v.Stmts {
			Inspect(s, f)
		}
	case *DeclStmt:
		if v.Type != nil {
			Inspect(v.Type, f)
		}
		inspectExpr(v.Value, f)
	case *AssignStmt:
		Inspect(v.Target, f)
		Inspect(v.Value, f)
	case *ExprStmt:
		Inspect(v.Expr, f)
	case *ReturnStmt:
		inspectExpr(v.Value, f)
	case *IfStmt:
		Inspect(v.Cond, f)
		Inspect(v.Then, f)
		if v.Else != nil {
			Inspect(v.Else, f)
		}
	case *ForStmt:
		if v.TargetType != nil {
			Inspect(v.TargetType, f)
		}
		Inspect(v.Iter, f)
		Inspect(v.Body, f)
	case *AssertStmt:
		Inspect(v.Test, f)
		inspectExpr(v.Msg, f)
	case *AttributeExpr:
		Inspect(v.Value, f)
	case *SubscriptExpr:
		Inspect(v.Value, f)
		Inspect(v.Index, f)
	case *CallExpr:
		Inspect(v.Func, f)
		for _, a := range v.Args {
			Inspect(a, f)
		}
		for _, kw := range v.Keywords {
			Inspect(kw, f)
		}
	case *Keyword:
		Inspect(v.Value, f)
	case *BinaryExpr:
		Inspect(v.Left, f)
		Inspect(v.Right, f)
	case *UnaryExpr:
		Inspect(v.Operand, f)
	case *ListExpr:
		for _, e := range v.Elements {
			Inspect(e, f)
		}
	case *ParenExpr:
		Inspect(v.Value, f)
	}
}

// inspectExpr guards against typed-nil interface values for optional children.
func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}
