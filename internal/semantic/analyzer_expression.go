package semantic

import (
	"fmt"
	"sort"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/folding"
	"sigil/internal/function"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

// funcContext is the state of the function body being checked.
type funcContext struct {
	sig   *function.Signature
	scope *Namespace
	loops []*Loop
}

// checker types expressions and statements of one module. At module level
// fn is nil and only constant expressions and environment values resolve.
type exprChecker struct {
	a      *Analyzer
	module *ModuleInfo
	fn     *funcContext
}

var (
	_ function.DeclContext = (*exprChecker)(nil)
	_ function.ExprChecker = (*exprChecker)(nil)
)

func (a *Analyzer) moduleChecker(info *ModuleInfo) *exprChecker {
	return &exprChecker{a: a, module: info}
}

func (c *exprChecker) scope() *Namespace {
	if c.fn != nil {
		return c.fn.scope
	}
	return c.module.Namespace
}

func (c *exprChecker) constantLookup(name string) (folding.Value, bool) {
	if k, ok := c.module.Constant(name); ok {
		return k.Value, true
	}
	return folding.Value{}, false
}

func (c *exprChecker) folder() *folding.Folder {
	return folding.NewFolder(c.constantLookup)
}

// fold evaluates expr as a constant. ok is false when expr is not constant;
// err is set when expr is constant but invalid, such as an overflow.
func (c *exprChecker) fold(expr ast.Expr) (v folding.Value, ok bool, err error) {
	v, err = c.folder().Fold(expr)
	if err == nil {
		return v, true, nil
	}
	if ce, isCE := errors.AsCompilerError(err); isCE && ce.Code == errors.ErrorInvalidConstant {
		return folding.Value{}, false, nil
	}
	return folding.Value{}, false, err
}

func (c *exprChecker) ResolveType(te *ast.TypeExpr) (types.Type, error) {
	t, err := c.module.registry.Resolve(te)
	if err == nil {
		return t, nil
	}
	re, ok := err.(*types.ResolveError)
	if !ok {
		return nil, err
	}
	builder := errors.At(errors.ErrorUnknownType, re.Message, re.Node)
	if !c.module.registry.IsValidType(te.Name.Value) {
		names := c.module.registry.TypeNames()
		sort.Strings(names)
		if similar := errors.FindSimilarNames(te.Name.Value, names); len(similar) > 0 {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
		}
	}
	return nil, builder.Build()
}

func (c *exprChecker) IsKwargable(expr ast.Expr) bool {
	return c.folder().IsConstant(expr) || stdlib.IsEnvironmentConstant(expr)
}

func (c *exprChecker) SourceText(node ast.Node) string {
	return ast.SourceText(c.module.AST.Source, node)
}

// TypeOf returns the static type of expr; nil means a call to a function
// without a return value. Results are recorded on the program.
func (c *exprChecker) TypeOf(expr ast.Expr) (types.Type, error) {
	if t, ok := c.a.program.Types[expr]; ok {
		return t, nil
	}
	t, err := c.typeOf(expr)
	if err != nil {
		return nil, err
	}
	c.a.program.Types[expr] = t
	return t, nil
}

// valueType is TypeOf for positions that need a value.
func (c *exprChecker) valueType(expr ast.Expr) (types.Type, error) {
	if n, ok := ast.Unparen(expr).(*ast.NameExpr); ok && n.Name == "self" {
		return types.Address, nil
	}
	t, err := c.TypeOf(expr)
	if err != nil {
		return nil, err
	}
	switch v := t.(type) {
	case nil:
		return nil, errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("`%s` does not return a value", c.SourceText(expr)), expr).Build()
	case *function.Signature:
		return nil, errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("function '%s' must be called", v.QualifiedName()), expr).Build()
	case *ModuleInfo:
		return nil, errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("%s is not a value", v), expr).Build()
	}
	return t, nil
}

func (c *exprChecker) ValidateExpectedType(expr ast.Expr, expected types.Type) error {
	if expected == nil {
		return errors.CompilerPanic("no expected type for `%s`", c.SourceText(expr))
	}
	if n, ok := ast.Unparen(expr).(*ast.NameExpr); ok && n.Name == "self" {
		if _, isAddr := expected.(types.AddressT); isAddr {
			c.a.program.Types[expr] = types.Address
			return nil
		}
	}

	v, constant, err := c.fold(expr)
	if err != nil {
		return err
	}
	if constant {
		return c.validateConstant(expr, v, expected)
	}

	if list, ok := ast.Unparen(expr).(*ast.ListExpr); ok {
		return c.validateList(list, expected)
	}

	actual, err := c.valueType(expr)
	if err != nil {
		return err
	}
	if !expected.Compare(actual) {
		return errors.TypeMismatch(expected.String(), actual.String(), expr)
	}
	return nil
}

func literalType(v folding.Value) types.Type {
	switch v.Kind {
	case folding.KindBool:
		return types.Bool
	case folding.KindString:
		return types.StringT{MaxLen: len(v.Str)}
	}
	if v.Neg {
		return types.Int256
	}
	return types.Uint256
}

func (c *exprChecker) validateConstant(expr ast.Expr, v folding.Value, expected types.Type) error {
	if !v.FitsType(expected) {
		switch expected.(type) {
		case types.IntegerT:
			if v.Kind == folding.KindInt {
				return errors.At(errors.ErrorInvalidLiteral,
					fmt.Sprintf("%s is out of range for %s", v, expected), expr).Build()
			}
		case types.StringT, types.BytesT:
			if v.Kind == folding.KindString {
				return errors.At(errors.ErrorInvalidLiteral,
					fmt.Sprintf("%s is too long for %s", v, expected), expr).Build()
			}
		}
		return errors.TypeMismatch(expected.String(), literalType(v).String(), expr)
	}
	c.a.program.Types[expr] = expected
	return nil
}

func isInteger(t types.Type) bool {
	_, ok := t.(types.IntegerT)
	return ok
}

func (c *exprChecker) validateList(list *ast.ListExpr, expected types.Type) error {
	var elem types.Type
	switch t := expected.(type) {
	case types.SArrayT:
		if len(list.Elements) != t.Count {
			return errors.TypeMismatch(expected.String(), fmt.Sprintf("list of %d elements", len(list.Elements)), list)
		}
		elem = t.Elem
	case types.DArrayT:
		if len(list.Elements) > t.Count {
			return errors.TypeMismatch(expected.String(), fmt.Sprintf("list of %d elements", len(list.Elements)), list)
		}
		elem = t.Elem
	default:
		return errors.TypeMismatch(expected.String(), "list literal", list)
	}
	for _, el := range list.Elements {
		if err := c.ValidateExpectedType(el, elem); err != nil {
			return err
		}
	}
	c.a.program.Types[list] = expected
	return nil
}

func (c *exprChecker) typeOf(expr ast.Expr) (types.Type, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return c.TypeOf(e.Value)
	case *ast.IntLit, *ast.BoolLit, *ast.StrLit:
		v, err := c.folder().Fold(e)
		if err != nil {
			return nil, err
		}
		return literalType(v), nil
	case *ast.ListExpr:
		return c.listType(e)
	case *ast.NameExpr:
		return c.nameType(e)
	case *ast.AttributeExpr:
		return c.attributeType(e)
	case *ast.SubscriptExpr:
		return c.subscriptType(e)
	case *ast.CallExpr:
		return c.callType(e)
	case *ast.UnaryExpr:
		return c.unaryType(e)
	case *ast.BinaryExpr:
		return c.binaryType(e)
	case *ast.BadExpr:
		return nil, errors.At(errors.ErrorSyntax, e.Message, e).Build()
	}
	return nil, errors.CompilerPanic("unhandled expression %T", expr)
}

func (c *exprChecker) listType(list *ast.ListExpr) (types.Type, error) {
	if len(list.Elements) == 0 {
		return nil, errors.At(errors.ErrorTypeMismatch, "cannot infer the type of an empty list", list).Build()
	}
	elem, err := c.inferElement(list.Elements)
	if err != nil {
		return nil, err
	}
	for _, el := range list.Elements {
		if err := c.ValidateExpectedType(el, elem); err != nil {
			return nil, err
		}
	}
	return types.SArrayT{Elem: elem, Count: len(list.Elements)}, nil
}

// inferElement picks the element type of a list: the first non-constant
// element decides, otherwise constants default to uint256, int256 when any
// is negative.
func (c *exprChecker) inferElement(elements []ast.Expr) (types.Type, error) {
	var fallback types.Type
	for _, el := range elements {
		v, constant, err := c.fold(el)
		if err != nil {
			return nil, err
		}
		if !constant {
			return c.valueType(el)
		}
		lt := literalType(v)
		if fallback == nil || lt == types.Type(types.Int256) {
			fallback = lt
		}
	}
	return fallback, nil
}

func (c *exprChecker) nameType(e *ast.NameExpr) (types.Type, error) {
	symbol := c.scope().Lookup(e.Name)
	if symbol == nil {
		return nil, errors.UndefinedName(e.Name, e, c.scope().Names())
	}

	switch symbol.Kind {
	case SymbolEnvironment:
		if e.Name == "self" {
			return c.module, nil
		}
		if stdlib.GetBuiltin(e.Name) != nil {
			return nil, errors.At(errors.ErrorNotCallable,
				fmt.Sprintf("builtin '%s' must be called", e.Name), e).Build()
		}
		return nil, errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("'%s' is a namespace, not a value", e.Name), e).Build()
	case SymbolInterface:
		return nil, errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("interface '%s' is not a value", e.Name), e).
			WithSuggestion(fmt.Sprintf("convert an address with %s(addr)", e.Name)).
			Build()
	}
	return symbol.Type, nil
}

// environmentBase returns the namespace definition when expr names one.
func environmentBase(expr ast.Expr) *stdlib.ModuleDefinition {
	if n, ok := expr.(*ast.NameExpr); ok {
		return stdlib.GetModuleDefinition(n.Name)
	}
	return nil
}

func (c *exprChecker) attributeType(e *ast.AttributeExpr) (types.Type, error) {
	name := e.Attr.Value
	if env := environmentBase(e.Value); env != nil {
		m, ok := env.Members[name]
		if !ok {
			names := make([]string, 0, len(env.Members))
			for n := range env.Members {
				names = append(names, n)
			}
			sort.Strings(names)
			return nil, errors.UnknownMember(env.Name, name, &e.Attr, names)
		}
		if err := c.checkEnvironmentRead(e, env.Name, name); err != nil {
			return nil, err
		}
		return m.Type, nil
	}

	recv, err := c.TypeOf(e.Value)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case *ModuleInfo:
		return c.memberType(r, e)
	case *function.InterfaceT:
		if sig, ok := r.Lookup(name); ok {
			return sig, nil
		}
		return nil, errors.UnknownMember(r.Name, name, &e.Attr, r.FunctionNames())
	case types.DArrayT:
		if name == "append" || name == "pop" {
			return nil, errors.At(errors.ErrorTypeMismatch,
				fmt.Sprintf("'%s' must be called", name), e).Build()
		}
	case nil:
		return nil, errors.At(errors.ErrorTypeMismatch,
			fmt.Sprintf("`%s` does not return a value", c.SourceText(e.Value)), e.Value).Build()
	}
	return nil, errors.UnknownMember(recv.String(), name, &e.Attr, nil)
}

func (c *exprChecker) memberType(m *ModuleInfo, e *ast.AttributeExpr) (types.Type, error) {
	name := e.Attr.Value
	member, ok := m.Member(name)
	if !ok {
		names := m.MemberNames()
		sort.Strings(names)
		return nil, errors.UnknownMember(m.String(), name, &e.Attr, names)
	}

	switch v := member.(type) {
	case *StateVar:
		if c.fn != nil && c.fn.sig.Mutability == function.PURE {
			return nil, errors.StateAccessViolation(
				fmt.Sprintf("pure function '%s' cannot read contract state", c.fn.sig.Name), e)
		}
		return v.Type, nil
	case *Constant:
		return v.Type, nil
	case *function.Signature:
		return v, nil
	}
	return nil, errors.CompilerPanic("unknown member kind %T", member)
}

func (c *exprChecker) checkEnvironmentRead(e *ast.AttributeExpr, namespace, member string) error {
	if c.fn == nil {
		return nil
	}
	sig := c.fn.sig
	if sig.Mutability == function.PURE {
		return errors.StateAccessViolation(
			fmt.Sprintf("pure function '%s' cannot read %s.%s", sig.Name, namespace, member), e)
	}
	if namespace == "msg" && member == "value" && !sig.IsPayable() {
		return errors.At(errors.ErrorStateAccessViolation,
			"msg.value is not allowed in non-payable functions", e).
			WithSuggestion("mark the function @payable").
			Build()
	}
	return nil
}

func (c *exprChecker) subscriptType(e *ast.SubscriptExpr) (types.Type, error) {
	base, err := c.valueType(e.Value)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case types.HashMapT:
		if err := c.ValidateExpectedType(e.Index, b.Key); err != nil {
			return nil, err
		}
		return b.Value, nil
	case types.SArrayT:
		if err := c.checkIndex(e.Index, b.Count); err != nil {
			return nil, err
		}
		return b.Elem, nil
	case types.DArrayT:
		if err := c.checkIndex(e.Index, 0); err != nil {
			return nil, err
		}
		return b.Elem, nil
	}
	return nil, errors.At(errors.ErrorInvalidOperation, fmt.Sprintf("%s is not subscriptable", base), e.Value).Build()
}

// checkIndex validates an array index; count is zero for dynamic arrays.
func (c *exprChecker) checkIndex(index ast.Expr, count int) error {
	v, constant, err := c.fold(index)
	if err != nil {
		return err
	}
	if constant {
		n, ok := v.Int()
		if v.Kind != folding.KindInt || !ok || count > 0 && n >= count {
			return errors.At(errors.ErrorInvalidLiteral, fmt.Sprintf("index %s is out of range", v), index).Build()
		}
		c.a.program.Types[index] = types.Uint256
		return nil
	}
	t, err := c.valueType(index)
	if err != nil {
		return err
	}
	if !isInteger(t) {
		return errors.TypeMismatch("uint256", t.String(), index)
	}
	return nil
}

func (c *exprChecker) unaryType(e *ast.UnaryExpr) (types.Type, error) {
	v, constant, err := c.fold(e)
	if err != nil {
		return nil, err
	}
	if constant {
		return literalType(v), nil
	}

	switch e.Op {
	case "not":
		if err := c.ValidateExpectedType(e.Operand, types.Bool); err != nil {
			return nil, err
		}
		return types.Bool, nil
	case "-":
		t, err := c.valueType(e.Operand)
		if err != nil {
			return nil, err
		}
		if it, ok := t.(types.IntegerT); !ok || !it.Signed {
			return nil, errors.At(errors.ErrorInvalidOperation,
				fmt.Sprintf("unary minus requires a signed integer, found %s", t), e).Build()
		}
		return t, nil
	}
	return nil, errors.CompilerPanic("unknown unary operator %s", e.Op)
}

func (c *exprChecker) binaryType(e *ast.BinaryExpr) (types.Type, error) {
	v, constant, err := c.fold(e)
	if err != nil {
		return nil, err
	}
	if constant {
		return literalType(v), nil
	}

	switch e.Op {
	case "and", "or":
		if err := c.ValidateExpectedType(e.Left, types.Bool); err != nil {
			return nil, err
		}
		if err := c.ValidateExpectedType(e.Right, types.Bool); err != nil {
			return nil, err
		}
		return types.Bool, nil
	}

	t, err := c.operandType(e.Left, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==", "!=":
		switch t.(type) {
		case types.IntegerT, types.BoolT, types.AddressT, types.BytesMT, *function.InterfaceT:
			return types.Bool, nil
		}
	case "<", "<=", ">", ">=":
		if isInteger(t) {
			return types.Bool, nil
		}
	case "+", "-", "*", "/", "%", "**":
		if isInteger(t) {
			return t, nil
		}
	}
	return nil, errors.At(errors.ErrorInvalidOperation,
		fmt.Sprintf("operator '%s' is not supported for %s", e.Op, t), e).Build()
}

// operandType unifies the operand types of a binary operation. A constant
// operand takes the type of the other side.
func (c *exprChecker) operandType(left, right ast.Expr) (types.Type, error) {
	_, lc, err := c.fold(left)
	if err != nil {
		return nil, err
	}
	_, rc, err := c.fold(right)
	if err != nil {
		return nil, err
	}

	switch {
	case lc && !rc:
		t, err := c.valueType(right)
		if err != nil {
			return nil, err
		}
		return t, c.ValidateExpectedType(left, t)
	case rc && !lc:
		t, err := c.valueType(left)
		if err != nil {
			return nil, err
		}
		return t, c.ValidateExpectedType(right, t)
	}

	lt, err := c.valueType(left)
	if err != nil {
		return nil, err
	}
	if lc {
		return lt, c.ValidateExpectedType(right, lt)
	}
	rt, err := c.valueType(right)
	if err != nil {
		return nil, err
	}
	if !types.Equal(lt, rt) {
		return nil, errors.TypeMismatch(lt.String(), rt.String(), right)
	}
	return lt, nil
}
