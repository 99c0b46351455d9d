package codegen

import (
	"fmt"

	"github.com/holiman/uint256"

	"sigil/internal/asm"
	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/folding"
	"sigil/internal/function"
	"sigil/internal/semantic"
	"sigil/internal/types"
)

// buildCall emits call and reports whether it left a value on the stack.
func (b *Builder) buildCall(call *ast.CallExpr) (bool, error) {
	info, ok := b.program.Calls[call]
	if !ok {
		return false, errors.CompilerPanic("call was not analyzed")
	}
	switch info.Kind {
	case semantic.CallInternal:
		return info.Target.Return != nil, b.buildInternalCall(call, info.Target)
	case semantic.CallExternal:
		return info.Target.Return != nil, b.buildExternalCall(call, info.Target)
	case semantic.CallBuiltin:
		return true, b.buildBuiltin(call, info.Builtin)
	case semantic.CallConvert:
		return true, b.buildExpression(call.Args[0])
	case semantic.CallAppend:
		return false, b.buildAppend(call)
	case semantic.CallPop:
		return true, b.buildPop(call)
	}
	return false, errors.CompilerPanic("unknown call kind %d", info.Kind)
}

// callArguments matches the call's arguments to sig's parameters. A nil
// entry is a keyword parameter left at its default.
func callArguments(call *ast.CallExpr, sig *function.Signature) []ast.Expr {
	args := make([]ast.Expr, sig.NTotal())
	copy(args, call.Args)
	for i, kw := range sig.Keyword {
		idx := sig.NPositional() + i
		if args[idx] == nil {
			args[idx] = call.KeywordValue(kw.Name)
		}
	}
	return args
}

// buildDefault evaluates a keyword default in the declaring module.
func (b *Builder) buildDefault(sig *function.Signature, expr ast.Expr) error {
	saved := b.fn
	module := b.program.Owner(sig)
	if module == nil {
		module = saved.module
	}
	b.fn = &funcState{sig: saved.sig, module: module, exit: saved.exit}
	b.fn.push()
	err := b.buildExpression(expr)
	b.fn = saved
	return err
}

// buildInternalCall stores the arguments in the callee's frame and jumps
// to its body with the return label underneath.
func (b *Builder) buildInternalCall(call *ast.CallExpr, sig *function.Signature) error {
	ret := b.newLabel("return")
	b.emit(asm.PushLabel(ret))

	args := callArguments(call, sig)
	for i, arg := range args {
		var err error
		if arg != nil {
			err = b.buildExpression(arg)
		} else {
			err = b.buildDefault(sig, sig.Keyword[i-sig.NPositional()].Default)
		}
		if err != nil {
			return err
		}
	}
	offsets := b.params[sig]
	for i := len(args) - 1; i >= 0; i-- {
		b.pushInt(offsets[i])
		b.op("MSTORE")
	}

	b.jump(sig.Label())
	b.emit(asm.Label(ret))
	return nil
}

// callBuffer returns the memory reserved for one external call site:
// the selector word followed by one word per argument.
func (b *Builder) callBuffer(call *ast.CallExpr, n int) int {
	if offset, ok := b.callBufs[call]; ok {
		return offset
	}
	offset := b.mem.words(n + 1)
	b.callBufs[call] = offset
	return offset
}

func (b *Builder) buildExternalCall(call *ast.CallExpr, sig *function.Signature) error {
	attr, ok := call.Func.(*ast.AttributeExpr)
	if !ok {
		return errors.CompilerPanic("external call to %s without a receiver", sig.Name)
	}

	// the selector covers every parameter up to the last one supplied;
	// skipped keyword parameters before it are sent with their defaults
	args := callArguments(call, sig)
	for len(args) > 0 && args[len(args)-1] == nil {
		args = args[:len(args)-1]
	}
	var selector uint32
	for _, id := range sig.MethodIDs() {
		if id.Arity == len(args) {
			selector = id.Selector
		}
	}

	buf := b.callBuffer(call, len(args))
	if err := b.buildExpression(attr.Value); err != nil {
		return err
	}

	// selector in the four bytes before the first argument word
	word := new(uint256.Int).Lsh(uint256.NewInt(uint64(selector)), selectorShift)
	b.emit(asm.Push(word))
	b.pushInt(buf)
	b.op("MSTORE")
	for i, arg := range args {
		var err error
		if arg != nil {
			err = b.buildExpression(arg)
		} else {
			err = b.buildDefault(sig, sig.Keyword[i-sig.NPositional()].Default)
		}
		if err != nil {
			return err
		}
		b.pushInt(buf + 4 + i*wordSize)
		b.op("MSTORE")
	}

	defaultValue := call.KeywordValue("default_return_value")
	if defaultValue == nil && !b.literalTrue(call.KeywordValue("skip_contract_check")) {
		b.op("DUP1", "EXTCODESIZE", "ISZERO")
		b.revertIf()
	}

	retSize := 0
	if sig.Return != nil {
		retSize = wordSize
	}
	b.pushInt(retSize)
	b.pushInt(buf)
	b.pushInt(4 + len(args)*wordSize)
	b.pushInt(buf)

	static := sig.Mutability <= function.VIEW
	if !static {
		if v := call.KeywordValue("value"); v != nil {
			if err := b.buildExpression(v); err != nil {
				return err
			}
		} else {
			b.pushInt(0)
		}
		b.op("DUP6")
	} else {
		b.op("DUP5")
	}
	if g := call.KeywordValue("gas"); g != nil {
		if err := b.buildExpression(g); err != nil {
			return err
		}
	} else {
		b.op("GAS")
	}
	if static {
		b.op("STATICCALL")
	} else {
		b.op("CALL")
	}
	b.op("ISZERO")
	b.jumpIf(labelBubble)
	b.op("POP")

	if sig.Return == nil {
		return nil
	}
	return b.buildReturnData(buf, sig.Return, defaultValue)
}

// buildReturnData pushes the call's return value, or the default when the
// callee returned nothing.
func (b *Builder) buildReturnData(buf int, ret types.Type, defaultValue ast.Expr) error {
	done, useDefault := b.newLabel("returndata_end"), ""
	if defaultValue != nil {
		useDefault = b.newLabel("returndata_default")
		b.op("RETURNDATASIZE", "ISZERO")
		b.jumpIf(useDefault)
	}
	b.op("RETURNDATASIZE")
	b.pushInt(wordSize)
	b.op("GT")
	b.revertIf()
	b.pushInt(buf)
	b.op("MLOAD")
	b.clamp(ret)
	if defaultValue == nil {
		return nil
	}
	b.jump(done)
	b.emit(asm.Label(useDefault))
	if err := b.buildExpression(defaultValue); err != nil {
		return err
	}
	b.emit(asm.Label(done))
	return nil
}

func (b *Builder) literalTrue(expr ast.Expr) bool {
	if expr == nil {
		return false
	}
	v, ok := b.fold(expr)
	return ok && v.Kind == folding.KindBool && v.Bool
}

func (b *Builder) buildBuiltin(call *ast.CallExpr, name string) error {
	switch name {
	case "len":
		t, err := b.buildLocation(call.Args[0])
		if err != nil {
			return err
		}
		if _, ok := t.(types.DArrayT); !ok {
			return unsupported(fmt.Sprintf("len() of %s", t), call)
		}
		b.op("SLOAD")
		return nil
	case "min", "max":
		t := b.operandType(call.Args[0], call.Args[1])
		for _, arg := range call.Args {
			if err := b.buildExpression(arg); err != nil {
				return err
			}
		}
		cmp := "LT"
		if name == "max" {
			cmp = "GT"
		}
		if it, ok := t.(types.IntegerT); ok && it.Signed {
			cmp = "S" + cmp
		}
		// [a b] -> a ^ ((a ^ b) * (b cmp a))
		b.op("DUP2", "DUP2", cmp)
		b.op("DUP3", "DUP3", "XOR", "MUL", "SWAP1", "POP", "XOR")
		return nil
	}
	return unsupported("builtin "+name, call)
}

func (b *Builder) arrayReceiver(call *ast.CallExpr) (types.DArrayT, error) {
	attr := call.Func.(*ast.AttributeExpr)
	t, err := b.buildLocation(attr.Value)
	if err != nil {
		return types.DArrayT{}, err
	}
	arr, ok := t.(types.DArrayT)
	if !ok {
		return types.DArrayT{}, errors.CompilerPanic("%s called on %s", attr.Attr.Value, t)
	}
	if !isWord(arr.Elem) {
		return types.DArrayT{}, unsupported(fmt.Sprintf("%s of %s", attr.Attr.Value, arr.Elem), call)
	}
	return arr, nil
}

func (b *Builder) buildAppend(call *ast.CallExpr) error {
	arr, err := b.arrayReceiver(call)
	if err != nil {
		return err
	}
	// [base] -> [base len], reverting when full
	b.op("DUP1", "SLOAD", "DUP1")
	b.pushInt(arr.Count)
	b.op("GT", "ISZERO")
	b.revertIf()
	// length + 1 stored at base
	b.op("DUP1")
	b.pushInt(1)
	b.op("ADD", "DUP3", "SSTORE")
	b.scaleIndex(arr.Elem)
	b.pushInt(1)
	b.op("ADD", "ADD")
	if err := b.buildExpression(call.Args[0]); err != nil {
		return err
	}
	b.op("SWAP1", "SSTORE")
	return nil
}

func (b *Builder) buildPop(call *ast.CallExpr) error {
	arr, err := b.arrayReceiver(call)
	if err != nil {
		return err
	}
	// [base] -> [base len-1], reverting when empty
	b.op("DUP1", "SLOAD", "DUP1", "ISZERO")
	b.revertIf()
	b.pushInt(1)
	b.op("SWAP1", "SUB", "DUP1", "DUP3", "SSTORE")
	b.scaleIndex(arr.Elem)
	b.pushInt(1)
	b.op("ADD", "ADD")
	// load the element and clear its slot
	b.op("DUP1", "SLOAD", "SWAP1")
	b.pushInt(0)
	b.op("SWAP1", "SSTORE")
	return nil
}
