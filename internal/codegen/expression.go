package codegen

import (
	"fmt"

	"sigil/internal/asm"
	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/folding"
	"sigil/internal/semantic"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

// buildExpression pushes the value of expr as one word.
func (b *Builder) buildExpression(expr ast.Expr) error {
	if v, ok := b.fold(expr); ok {
		if v.Kind == folding.KindString {
			return unsupported("string value", expr)
		}
		b.emit(asm.Push(v.Word()))
		return nil
	}

	switch e := ast.Unparen(expr).(type) {
	case *ast.NameExpr:
		return b.buildName(e)
	case *ast.AttributeExpr:
		return b.buildAttribute(e)
	case *ast.SubscriptExpr:
		return b.buildStorageLoad(e)
	case *ast.CallExpr:
		pushed, err := b.buildCall(e)
		if err != nil {
			return err
		}
		if !pushed {
			return errors.CompilerPanic("call without a value used as an expression")
		}
		return nil
	case *ast.BinaryExpr:
		return b.buildBinaryOp(e)
	case *ast.UnaryExpr:
		return b.buildUnaryOp(e)
	case *ast.ListExpr:
		return unsupported("list value outside a for loop", e)
	}
	return errors.CompilerPanic("cannot generate %T", expr)
}

func (b *Builder) buildName(e *ast.NameExpr) error {
	if e.Name == "self" {
		b.op("ADDRESS")
		return nil
	}
	v, ok := b.fn.lookup(e.Name)
	if !ok {
		return errors.CompilerPanic("unresolved name %s", e.Name)
	}
	b.pushInt(v.offset)
	b.op("MLOAD")
	return nil
}

func (b *Builder) buildAttribute(e *ast.AttributeExpr) error {
	if m, ok := stdlib.LookupMember(e); ok {
		b.op(m.Opcode)
		return nil
	}
	if m := b.moduleOf(e.Value); m != nil {
		if k, ok := m.Constant(e.Attr.Value); ok {
			b.emit(asm.Push(k.Value.Word()))
			return nil
		}
	}
	return b.buildStorageLoad(e)
}

// moduleOf returns the module expr names: self or an import binding.
func (b *Builder) moduleOf(expr ast.Expr) *semantic.ModuleInfo {
	n, ok := ast.Unparen(expr).(*ast.NameExpr)
	if !ok {
		return nil
	}
	if n.Name == "self" {
		return b.fn.module
	}
	if _, local := b.fn.lookup(n.Name); local {
		return nil
	}
	return b.fn.module.Imports[n.Name]
}

func (b *Builder) buildStorageLoad(expr ast.Expr) error {
	t, err := b.buildLocation(expr)
	if err != nil {
		return err
	}
	if !isWord(t) {
		return unsupported(fmt.Sprintf("reading a whole %s", t), expr)
	}
	b.op("SLOAD")
	return nil
}

// buildLocation pushes the storage slot expr refers to and returns the
// type stored there.
func (b *Builder) buildLocation(expr ast.Expr) (types.Type, error) {
	switch e := ast.Unparen(expr).(type) {
	case *ast.AttributeExpr:
		if m := b.moduleOf(e.Value); m != nil {
			if v, ok := m.StateVar(e.Attr.Value); ok {
				slot, ok := b.layout.VarSlot(v)
				if !ok {
					return nil, errors.CompilerPanic("no storage slot for %s", v.Name)
				}
				b.pushInt(slot)
				return v.Type, nil
			}
		}
	case *ast.SubscriptExpr:
		t, err := b.buildLocation(e.Value)
		if err != nil {
			return nil, err
		}
		if err := b.buildExpression(e.Index); err != nil {
			return nil, err
		}
		return b.indexSlot(t, e)
	}
	return nil, unsupported("this expression as a storage location", expr)
}

// indexSlot turns [base key] into the slot of the element and returns
// its type. Array indexes are bounds checked.
func (b *Builder) indexSlot(t types.Type, node ast.Node) (types.Type, error) {
	switch tt := t.(type) {
	case types.HashMapT:
		// keccak256(base . key)
		b.pushInt(wordSize)
		b.op("MSTORE")
		b.pushInt(scratchSlot)
		b.op("MSTORE")
		b.pushInt(2 * wordSize)
		b.pushInt(scratchSlot)
		b.op("SHA3")
		return tt.Value, nil
	case types.SArrayT:
		b.op("DUP1")
		b.pushInt(tt.Count)
		b.op("GT", "ISZERO")
		b.revertIf()
		b.scaleIndex(tt.Elem)
		b.op("ADD")
		return tt.Elem, nil
	case types.DArrayT:
		b.op("DUP2", "SLOAD", "DUP2", "LT", "ISZERO")
		b.revertIf()
		b.scaleIndex(tt.Elem)
		b.pushInt(1)
		b.op("ADD", "ADD")
		return tt.Elem, nil
	}
	return nil, unsupported(fmt.Sprintf("indexing %s", t), node)
}

func (b *Builder) scaleIndex(elem types.Type) {
	if n := elem.StorageSlots(); n > 1 {
		b.pushInt(n)
		b.op("MUL")
	}
}

// operandType is the type both operands of a binary operation share.
func (b *Builder) operandType(left, right ast.Expr) types.Type {
	if _, ok := b.fold(left); !ok {
		return b.typeOf(left)
	}
	return b.typeOf(right)
}

func (b *Builder) buildBinaryOp(e *ast.BinaryExpr) error {
	switch e.Op {
	case "and", "or":
		return b.buildShortCircuit(e)
	}

	t := b.operandType(e.Left, e.Right)
	if e.Op == "**" {
		return b.buildPow(e, t)
	}

	if err := b.buildExpression(e.Left); err != nil {
		return err
	}
	if err := b.buildExpression(e.Right); err != nil {
		return err
	}

	signed := false
	if it, ok := t.(types.IntegerT); ok {
		signed = it.Signed
	}
	lt, gt := "LT", "GT"
	if signed {
		lt, gt = "SLT", "SGT"
	}

	switch e.Op {
	case "==":
		b.op("EQ")
	case "!=":
		b.op("EQ", "ISZERO")
	case "<":
		b.op("SWAP1", lt)
	case ">":
		b.op("SWAP1", gt)
	case "<=":
		b.op("SWAP1", gt, "ISZERO")
	case ">=":
		b.op("SWAP1", lt, "ISZERO")
	default:
		return b.arithmetic(e.Op, t, e)
	}
	return nil
}

// buildShortCircuit skips the right operand once the left one decides
// the result.
func (b *Builder) buildShortCircuit(e *ast.BinaryExpr) error {
	end := b.newLabel("bool_end")
	if err := b.buildExpression(e.Left); err != nil {
		return err
	}
	b.op("DUP1")
	if e.Op == "and" {
		b.op("ISZERO")
	}
	b.jumpIf(end)
	b.op("POP")
	if err := b.buildExpression(e.Right); err != nil {
		return err
	}
	b.emit(asm.Label(end))
	return nil
}

func (b *Builder) buildUnaryOp(e *ast.UnaryExpr) error {
	if err := b.buildExpression(e.Operand); err != nil {
		return err
	}
	switch e.Op {
	case "not":
		b.op("ISZERO")
		return nil
	case "-":
		it, ok := b.typeOf(e).(types.IntegerT)
		if !ok {
			return unsupported("negation", e)
		}
		b.negate(it)
		return nil
	}
	return unsupported("operator "+e.Op, e)
}
