package semantic

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

func (c *exprChecker) callType(call *ast.CallExpr) (types.Type, error) {
	if c.fn == nil {
		return nil, errors.At(errors.ErrorStructure, "function calls are not allowed outside function bodies", call).Build()
	}

	switch fn := call.Func.(type) {
	case *ast.NameExpr:
		symbol := c.scope().Lookup(fn.Name)
		if symbol == nil {
			return nil, errors.UndefinedName(fn.Name, fn, c.scope().Names())
		}
		if symbol.Kind == SymbolEnvironment {
			if b := stdlib.GetBuiltin(fn.Name); b != nil {
				return c.builtinCall(call, b)
			}
		}
		if iface, ok := symbol.Type.(*function.InterfaceT); ok && symbol.Kind == SymbolInterface {
			return c.conversionCall(call, iface)
		}
	case *ast.AttributeExpr:
		if environmentBase(fn.Value) == nil {
			recv, err := c.TypeOf(fn.Value)
			if err != nil {
				return nil, err
			}
			if arr, ok := recv.(types.DArrayT); ok {
				switch fn.Attr.Value {
				case "append":
					return c.appendCall(call, fn, arr)
				case "pop":
					return c.popCall(call, fn, arr)
				}
			}
		}
		t, err := c.TypeOf(fn)
		if err != nil {
			return nil, err
		}
		if sig, ok := t.(*function.Signature); ok {
			return c.functionCall(call, fn, sig)
		}
	}
	return nil, errors.At(errors.ErrorNotCallable,
		fmt.Sprintf("`%s` is not callable", c.SourceText(call.Func)), call.Func).Build()
}

func (c *exprChecker) functionCall(call *ast.CallExpr, fn *ast.AttributeExpr, sig *function.Signature) (types.Type, error) {
	ret, err := sig.FetchCallReturn(call, c)
	if err != nil {
		return nil, err
	}

	recv, _ := c.TypeOf(fn.Value)
	_, external := recv.(*function.InterfaceT)
	caller := c.fn.sig

	switch {
	case caller.Mutability == function.PURE && (external || sig.Mutability != function.PURE):
		return nil, errors.StateAccessViolation(
			fmt.Sprintf("pure function '%s' cannot call %s function '%s'", caller.Name, sig.Mutability, sig.QualifiedName()), call)
	case caller.Mutability <= function.VIEW && sig.IsMutable():
		return nil, errors.StateAccessViolation(
			fmt.Sprintf("%s function '%s' cannot call state-modifying function '%s'", caller.Mutability, caller.Name, sig.QualifiedName()), call)
	}

	info := &CallInfo{Kind: CallInternal, Target: sig}
	if external {
		info.Kind = CallExternal
	} else {
		c.a.program.CallGraph.AddCall(caller, sig)
		for _, loop := range c.fn.loops {
			loop.Calls = append(loop.Calls, LoopCall{Target: sig, Call: call})
		}
	}
	c.a.program.Calls[call] = info
	return ret, nil
}

func (c *exprChecker) builtinCall(call *ast.CallExpr, b *stdlib.BuiltinDefinition) (types.Type, error) {
	if b.LoopOnly {
		return nil, errors.At(errors.ErrorStructure,
			fmt.Sprintf("%s() may only be used as the iterable of a for loop", b.Name), call).Build()
	}
	if len(call.Keywords) > 0 {
		kw := call.Keywords[0]
		return nil, errors.UnknownKeyword(kw.Name.Value, b.Keywords, function.RemoveKwargHint(call, kw, c), kw)
	}
	if len(call.Args) < b.MinArgs || len(call.Args) > b.MaxArgs {
		return nil, errors.ArgumentCount(b.Name, b.MinArgs, b.MaxArgs, len(call.Args), call)
	}

	var ret types.Type
	switch b.Name {
	case "len":
		t, err := c.valueType(call.Args[0])
		if err != nil {
			return nil, err
		}
		switch t.(type) {
		case types.DArrayT, types.StringT, types.BytesT:
		default:
			return nil, errors.At(errors.ErrorTypeMismatch,
				fmt.Sprintf("len() expects a dynamic array, string or bytes value, found %s", t), call.Args[0]).Build()
		}
		ret = types.Uint256
	case "min", "max":
		t, err := c.operandType(call.Args[0], call.Args[1])
		if err != nil {
			return nil, err
		}
		if !isInteger(t) {
			return nil, errors.At(errors.ErrorTypeMismatch,
				fmt.Sprintf("%s() expects integer arguments, found %s", b.Name, t), call).Build()
		}
		ret = t
	default:
		return nil, errors.CompilerPanic("unhandled builtin %s", b.Name)
	}
	c.a.program.Calls[call] = &CallInfo{Kind: CallBuiltin, Builtin: b.Name}
	return ret, nil
}

func (c *exprChecker) conversionCall(call *ast.CallExpr, iface *function.InterfaceT) (types.Type, error) {
	if len(call.Keywords) > 0 {
		kw := call.Keywords[0]
		return nil, errors.UnknownKeyword(kw.Name.Value, nil, "", kw)
	}
	if len(call.Args) != 1 {
		return nil, errors.ArgumentCount(iface.Name, 1, 1, len(call.Args), call)
	}
	if err := c.ValidateExpectedType(call.Args[0], types.Address); err != nil {
		return nil, err
	}
	c.a.program.Calls[call] = &CallInfo{Kind: CallConvert, Type: iface}
	return iface, nil
}

func (c *exprChecker) appendCall(call *ast.CallExpr, fn *ast.AttributeExpr, arr types.DArrayT) (types.Type, error) {
	if len(call.Keywords) > 0 {
		kw := call.Keywords[0]
		return nil, errors.UnknownKeyword(kw.Name.Value, nil, "", kw)
	}
	if len(call.Args) != 1 {
		return nil, errors.ArgumentCount("append", 1, 1, len(call.Args), call)
	}
	if err := c.ValidateExpectedType(call.Args[0], arr.Elem); err != nil {
		return nil, err
	}
	if err := c.modify(fn.Value, call); err != nil {
		return nil, err
	}
	c.a.program.Calls[call] = &CallInfo{Kind: CallAppend}
	return nil, nil
}

func (c *exprChecker) popCall(call *ast.CallExpr, fn *ast.AttributeExpr, arr types.DArrayT) (types.Type, error) {
	if len(call.Args) != 0 || len(call.Keywords) != 0 {
		return nil, errors.ArgumentCount("pop", 0, 0, len(call.Args)+len(call.Keywords), call)
	}
	if err := c.modify(fn.Value, call); err != nil {
		return nil, err
	}
	c.a.program.Calls[call] = &CallInfo{Kind: CallPop}
	return arr.Elem, nil
}
