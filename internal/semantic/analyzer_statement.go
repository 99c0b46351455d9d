package semantic

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

func (a *Analyzer) checkFunction(info *ModuleInfo, sig *function.Signature) error {
	def, ok := sig.Decl.(*ast.FunctionDef)
	if !ok || def.Body == nil {
		return errors.CompilerPanic("function %s has no body", sig.QualifiedName())
	}

	params := info.Namespace.Child()
	for _, p := range sig.Positional {
		if _, err := params.Define(p.Name, SymbolParameter, p.Type, p.Node); err != nil {
			return err
		}
	}
	for _, k := range sig.Keyword {
		if _, err := params.Define(k.Name, SymbolParameter, k.Type, k.Node); err != nil {
			return err
		}
	}

	c := &exprChecker{
		a:      a,
		module: info,
		fn:     &funcContext{sig: sig, scope: params},
	}
	if err := c.checkBlock(def.Body); err != nil {
		return err
	}
	return checkFlow(sig, def)
}

func (c *exprChecker) checkBlock(block *ast.Block) error {
	outer := c.fn.scope
	c.fn.scope = outer.Child()
	defer func() { c.fn.scope = outer }()

	for _, stmt := range block.Stmts {
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *exprChecker) checkStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return c.checkBlock(s)
	case *ast.DeclStmt:
		return c.checkDecl(s)
	case *ast.AssignStmt:
		return c.checkAssign(s)
	case *ast.ExprStmt:
		call, ok := ast.Unparen(s.Expr).(*ast.CallExpr)
		if !ok {
			return errors.At(errors.ErrorStructure, "expression statement has no effect", s).
				WithHelp("only calls may be used as statements").
				Build()
		}
		_, err := c.TypeOf(call)
		return err
	case *ast.ReturnStmt:
		return c.checkReturn(s)
	case *ast.IfStmt:
		if err := c.ValidateExpectedType(s.Cond, types.Bool); err != nil {
			return err
		}
		if err := c.checkBlock(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return c.checkBlock(s.Else)
		}
		return nil
	case *ast.ForStmt:
		return c.checkFor(s)
	case *ast.BreakStmt, *ast.ContinueStmt:
		if len(c.fn.loops) == 0 {
			return errors.At(errors.ErrorStructure, "break or continue outside of a loop", s).Build()
		}
		return nil
	case *ast.PassStmt:
		return nil
	case *ast.AssertStmt:
		if err := c.ValidateExpectedType(s.Test, types.Bool); err != nil {
			return err
		}
		if s.Msg != nil {
			if _, ok := s.Msg.(*ast.StrLit); !ok {
				return errors.At(errors.ErrorTypeMismatch, "assert reason must be a string literal", s.Msg).Build()
			}
		}
		return nil
	}
	return errors.CompilerPanic("unhandled statement %T", stmt)
}

func (c *exprChecker) checkDecl(s *ast.DeclStmt) error {
	t, err := c.ResolveType(s.Type)
	if err != nil {
		return err
	}
	if _, ok := t.(types.HashMapT); ok {
		return errors.At(errors.ErrorStructure, "HashMap can only be declared as a state variable", s.Type).Build()
	}
	if s.Value == nil {
		return errors.At(errors.ErrorStructure,
			fmt.Sprintf("local variable '%s' must be initialized", s.Name.Value), &s.Name).
			WithSuggestion(fmt.Sprintf("%s: %s = <value>;", s.Name.Value, t)).
			Build()
	}
	// the name is not in scope for its own initializer
	if err := c.ValidateExpectedType(s.Value, t); err != nil {
		return err
	}
	if _, err := c.fn.scope.Define(s.Name.Value, SymbolVariable, t, &s.Name); err != nil {
		return err
	}
	c.a.program.Locals[s] = t
	return nil
}

func (c *exprChecker) checkAssign(s *ast.AssignStmt) error {
	t, err := c.valueType(s.Target)
	if err != nil {
		return err
	}
	if _, ok := t.(types.HashMapT); ok {
		return errors.At(errors.ErrorImmutableViolation, "a HashMap cannot be assigned as a whole", s.Target).
			WithHelp("assign individual entries instead").
			Build()
	}
	if s.Op != ast.ASSIGN && !isInteger(t) {
		return errors.At(errors.ErrorInvalidOperation,
			fmt.Sprintf("operator '%s' is not supported for %s", s.Op, t), s).Build()
	}
	if err := c.ValidateExpectedType(s.Value, t); err != nil {
		return err
	}
	return c.modify(s.Target, s)
}

// modify checks that target may be written and records the write.
func (c *exprChecker) modify(target ast.Expr, node ast.Node) error {
	root, err := c.assignmentRoot(target)
	if err != nil {
		return err
	}
	if root == nil {
		return nil
	}

	sig := c.fn.sig
	if !sig.IsMutable() {
		return errors.StateAccessViolation(
			fmt.Sprintf("%s function '%s' cannot modify contract state", sig.Mutability, sig.Name), node)
	}
	w := Write{Var: root, Node: node}
	c.a.program.Writes[sig] = append(c.a.program.Writes[sig], w)
	for _, loop := range c.fn.loops {
		loop.Writes = append(loop.Writes, w)
	}
	return nil
}

// assignmentRoot returns the state variable an assignment target writes to,
// nil when the target is a local.
func (c *exprChecker) assignmentRoot(target ast.Expr) (*StateVar, error) {
	switch t := ast.Unparen(target).(type) {
	case *ast.NameExpr:
		symbol := c.scope().Lookup(t.Name)
		if symbol == nil {
			return nil, errors.UndefinedName(t.Name, t, c.scope().Names())
		}
		switch symbol.Kind {
		case SymbolVariable:
			return nil, nil
		case SymbolLoopVariable:
			return nil, errors.ImmutableViolation(fmt.Sprintf("loop variable '%s' cannot be modified", t.Name), t)
		case SymbolParameter:
			return nil, errors.ImmutableViolation(fmt.Sprintf("function argument '%s' cannot be modified", t.Name), t)
		}
		return nil, errors.ImmutableViolation(fmt.Sprintf("'%s' is not assignable", t.Name), t)
	case *ast.AttributeExpr:
		if env := environmentBase(t.Value); env != nil {
			return nil, errors.ImmutableViolation(
				fmt.Sprintf("environment variable %s.%s is read-only", env.Name, t.Attr.Value), t)
		}
		recv, err := c.TypeOf(t.Value)
		if err != nil {
			return nil, err
		}
		if m, ok := recv.(*ModuleInfo); ok {
			member, _ := m.Member(t.Attr.Value)
			switch v := member.(type) {
			case *StateVar:
				return v, nil
			case *Constant:
				return nil, errors.ImmutableViolation(fmt.Sprintf("constant '%s' cannot be modified", v.Name), t)
			}
		}
	case *ast.SubscriptExpr:
		return c.assignmentRoot(t.Value)
	}
	return nil, errors.At(errors.ErrorInvalidOperation,
		fmt.Sprintf("cannot assign to `%s`", c.SourceText(target)), target).Build()
}

func (c *exprChecker) checkReturn(s *ast.ReturnStmt) error {
	sig := c.fn.sig
	if s.Value == nil {
		if sig.Return != nil {
			return errors.At(errors.ErrorMissingReturn,
				fmt.Sprintf("function '%s' must return a value of type %s", sig.Name, sig.Return), s).Build()
		}
		return nil
	}
	if sig.Return == nil {
		return errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("function '%s' does not declare a return type", sig.Name), s.Value).Build()
	}
	return c.ValidateExpectedType(s.Value, sig.Return)
}

func (c *exprChecker) checkFor(s *ast.ForStmt) error {
	loop := &Loop{Stmt: s, Func: c.fn.sig}

	var declared types.Type
	if s.TargetType != nil {
		t, err := c.ResolveType(s.TargetType)
		if err != nil {
			return err
		}
		declared = t
	}

	iter := ast.Unparen(s.Iter)
	switch {
	case isRangeCall(iter, c.scope()):
		if err := c.checkRange(loop, iter.(*ast.CallExpr), declared); err != nil {
			return err
		}
	default:
		if err := c.checkIterable(loop, iter, declared); err != nil {
			return err
		}
	}

	if !types.IsValueType(loop.Elem) {
		return errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("cannot iterate over values of type %s", loop.Elem), s.Iter).Build()
	}

	outer := c.fn.scope
	c.fn.scope = outer.Child()
	defer func() { c.fn.scope = outer }()
	if _, err := c.fn.scope.Define(s.Target.Value, SymbolLoopVariable, loop.Elem, &s.Target); err != nil {
		return err
	}

	c.a.program.Loops[s] = loop
	c.a.program.loopOrder = append(c.a.program.loopOrder, loop)
	c.fn.loops = append(c.fn.loops, loop)
	defer func() { c.fn.loops = c.fn.loops[:len(c.fn.loops)-1] }()
	return c.checkBlock(s.Body)
}

func isRangeCall(expr ast.Expr, scope *Namespace) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	name, ok := call.Func.(*ast.NameExpr)
	if !ok || name.Name != "range" {
		return false
	}
	symbol := scope.Lookup("range")
	return symbol != nil && symbol.Kind == SymbolEnvironment
}

// checkRange validates "range(end)", "range(start, end)" and their
// "bound=" forms. The iteration count must be known at compile time or
// bounded by a literal.
func (c *exprChecker) checkRange(loop *Loop, call *ast.CallExpr, declared types.Type) error {
	b := stdlib.GetBuiltin("range")
	for _, kw := range call.Keywords {
		if kw.Name.Value != "bound" {
			return errors.UnknownKeyword(kw.Name.Value, b.Keywords, function.RemoveKwargHint(call, kw, c), kw)
		}
	}
	if len(call.Args) < b.MinArgs || len(call.Args) > b.MaxArgs {
		return errors.ArgumentCount("range", b.MinArgs, b.MaxArgs, len(call.Args), call)
	}

	info := &RangeInfo{End: call.Args[0]}
	if len(call.Args) == 2 {
		info.Start, info.End = call.Args[0], call.Args[1]
	}

	bound := -1
	if kw := call.KeywordValue("bound"); kw != nil {
		if !ast.IsLiteral(kw) {
			return errors.LiteralRequired("bound", kw)
		}
		v, err := c.folder().Fold(kw)
		if err != nil {
			return err
		}
		n, ok := v.Int()
		if !ok || n <= 0 {
			return errors.At(errors.ErrorInvalidLiteral, "bound must be a positive integer", kw).Build()
		}
		bound = n
	}

	elem := declared
	if elem == nil {
		t, err := c.rangeElement(info)
		if err != nil {
			return err
		}
		elem = t
	}
	if !isInteger(elem) {
		return errors.TypeMismatch("integer", elem.String(), call)
	}
	for _, arg := range call.Args {
		if err := c.ValidateExpectedType(arg, elem); err != nil {
			return err
		}
	}

	count, constant, err := c.rangeCount(info)
	if err != nil {
		return err
	}
	switch {
	case constant && count <= 0:
		return errors.At(errors.ErrorStructure, "range() must iterate at least once", call).Build()
	case constant && bound > 0 && count > int64(bound):
		return errors.At(errors.ErrorStructure,
			fmt.Sprintf("range() iterates %d times, more than its bound of %d", count, bound), call).Build()
	case constant && bound < 0:
		if count > 1<<31-1 {
			return errors.At(errors.ErrorStructure, "range() iterates too many times", call).Build()
		}
		bound = int(count)
	case !constant && bound < 0:
		return errors.At(errors.ErrorStructure, "range() over a value not known at compile time requires a bound", call).
			WithSuggestion(fmt.Sprintf("%s, bound=<max iterations>)", trimCall(c.SourceText(call)))).
			Build()
	}

	info.Bound = bound
	if constant {
		info.Count = int(count)
	}
	loop.Range = info
	loop.Elem = elem
	return nil
}

func trimCall(source string) string {
	if n := len(source); n > 0 && source[n-1] == ')' {
		return source[:n-1]
	}
	return source
}

// rangeElement infers the loop variable type of an untyped range.
func (c *exprChecker) rangeElement(info *RangeInfo) (types.Type, error) {
	args := []ast.Expr{info.End}
	if info.Start != nil {
		args = []ast.Expr{info.Start, info.End}
	}
	return c.inferElement(args)
}

// rangeCount folds the number of iterations. "range(x, x + n)" counts n
// even when x is not constant.
func (c *exprChecker) rangeCount(info *RangeInfo) (int64, bool, error) {
	end, endConst, err := c.fold(info.End)
	if err != nil {
		return 0, false, err
	}
	if info.Start == nil {
		if !endConst {
			return 0, false, nil
		}
		n, ok := end.Int64()
		if !ok {
			return 0, false, errors.At(errors.ErrorInvalidLiteral, "range() end is out of range", info.End).Build()
		}
		return n, true, nil
	}

	start, startConst, err := c.fold(info.Start)
	if err != nil {
		return 0, false, err
	}
	if startConst && endConst {
		s, ok1 := start.Int64()
		e, ok2 := end.Int64()
		if !ok1 || !ok2 {
			return 0, false, errors.At(errors.ErrorInvalidLiteral, "range() arguments are out of range", info.End).Build()
		}
		return e - s, true, nil
	}

	if bin, ok := ast.Unparen(info.End).(*ast.BinaryExpr); ok && bin.Op == "+" &&
		c.SourceText(bin.Left) == c.SourceText(info.Start) {
		if v, constant, err := c.fold(bin.Right); err == nil && constant {
			if n, ok := v.Int64(); ok {
				return n, true, nil
			}
		}
	}
	return 0, false, nil
}

// checkIterable handles list literals and array values.
func (c *exprChecker) checkIterable(loop *Loop, iter ast.Expr, declared types.Type) error {
	if list, ok := iter.(*ast.ListExpr); ok {
		if len(list.Elements) == 0 {
			return errors.At(errors.ErrorStructure, "cannot iterate over an empty list", list).Build()
		}
		elem := declared
		if elem == nil {
			t, err := c.inferElement(list.Elements)
			if err != nil {
				return err
			}
			elem = t
		}
		if err := c.ValidateExpectedType(list, types.SArrayT{Elem: elem, Count: len(list.Elements)}); err != nil {
			return err
		}
		loop.Elem = elem
		return nil
	}

	t, err := c.valueType(iter)
	if err != nil {
		return err
	}
	var elem types.Type
	switch arr := t.(type) {
	case types.SArrayT:
		elem = arr.Elem
	case types.DArrayT:
		elem = arr.Elem
	default:
		return errors.At(errors.ErrorTypeMismatch, fmt.Sprintf("cannot iterate over %s", t), iter).Build()
	}
	if declared != nil && !declared.Compare(elem) {
		return errors.TypeMismatch(declared.String(), elem.String(), &loop.Stmt.Target)
	}
	loop.Elem = elem
	loop.Var = c.storageRoot(iter)
	return nil
}

// storageRoot returns the state variable an expression reads from, nil
// for memory values.
func (c *exprChecker) storageRoot(expr ast.Expr) *StateVar {
	switch e := ast.Unparen(expr).(type) {
	case *ast.AttributeExpr:
		if recv, ok := c.a.program.Types[e.Value].(*ModuleInfo); ok {
			v, _ := recv.StateVar(e.Attr.Value)
			return v
		}
	case *ast.SubscriptExpr:
		return c.storageRoot(e.Value)
	}
	return nil
}
