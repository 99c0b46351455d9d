package codegen

import (
	"math/big"

	"github.com/holiman/uint256"

	"sigil/internal/asm"
	"sigil/internal/ast"
	"sigil/internal/types"
)

var (
	minInt256 = new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	addrMax   = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))
)

// clamp reverts unless the word on top of the stack is a valid t. The
// word stays on the stack.
func (b *Builder) clamp(t types.Type) {
	switch tt := t.(type) {
	case types.IntegerT:
		b.rangeCheck(tt)
	case types.BoolT:
		b.op("DUP1")
		b.pushInt(1)
		b.op("LT")
		b.revertIf()
	case types.AddressT:
		b.clampMax(addrMax)
	case types.BytesMT:
		if tt.M < 32 {
			mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(256-8*tt.M)), uint256.NewInt(1))
			b.op("DUP1")
			b.emit(asm.Push(mask))
			b.op("AND")
			b.revertIf()
		}
	default:
		if t.SupportsExternalCalls() {
			b.clampMax(addrMax)
		}
	}
}

func (b *Builder) clampMax(max *uint256.Int) {
	b.op("DUP1")
	b.emit(asm.Push(max))
	b.op("LT")
	b.revertIf()
}

// rangeCheck reverts when the word on top of the stack is outside t.
func (b *Builder) rangeCheck(t types.IntegerT) {
	if t.Bits >= 256 {
		return
	}
	if !t.Signed {
		max, _ := t.Bounds()
		b.clampMax(max)
		return
	}
	b.op("DUP1")
	b.pushInt(t.Bits/8 - 1)
	b.op("SIGNEXTEND", "DUP2", "EQ", "ISZERO")
	b.revertIf()
}

// The checked operations take [l r] with r on top and leave the result.

func (b *Builder) checkedAdd(t types.IntegerT) {
	switch {
	case !t.Signed && t.Bits == 256:
		b.op("DUP2", "ADD", "SWAP1", "DUP2", "LT")
		b.revertIf()
	case t.Signed && t.Bits == 256:
		// overflow when (r < 0) != (s < l)
		b.op("DUP2", "DUP2", "ADD")
		b.op("DUP3", "DUP2", "SLT")
		b.pushInt(0)
		b.op("DUP4", "SLT", "XOR")
		b.revertIf()
		b.op("SWAP2", "POP", "POP")
	default:
		b.op("ADD")
		b.rangeCheck(t)
	}
}

func (b *Builder) checkedSub(t types.IntegerT) {
	switch {
	case !t.Signed:
		b.op("DUP1", "DUP3", "LT")
		b.revertIf()
		b.op("SWAP1", "SUB")
	case t.Bits == 256:
		// overflow when (r < 0) != (s > l)
		b.op("DUP1", "DUP3", "SUB")
		b.op("DUP3", "DUP2", "SGT")
		b.pushInt(0)
		b.op("DUP4", "SLT", "XOR")
		b.revertIf()
		b.op("SWAP2", "POP", "POP")
	default:
		b.op("SWAP1", "SUB")
		b.rangeCheck(t)
	}
}

func (b *Builder) checkedMul(t types.IntegerT) {
	if t.Bits <= 128 {
		b.op("MUL")
		b.rangeCheck(t)
		return
	}

	div := "DIV"
	if t.Signed {
		div = "SDIV"
	}
	// overflow when l != 0 and s / l != r
	b.op("DUP2", "DUP2", "MUL")
	b.op("DUP3", "DUP2", div)
	b.op("DUP3", "EQ", "ISZERO")
	b.op("DUP4", "ISZERO", "ISZERO", "AND")
	if t.Signed {
		// -1 * MIN wraps to MIN and passes the division test
		b.op("DUP4", "NOT", "ISZERO")
		b.op("DUP4")
		b.emit(asm.Push(minInt256))
		b.op("EQ", "AND", "OR")
	}
	b.revertIf()
	b.op("SWAP2", "POP", "POP")
	b.rangeCheck(t)
}

func (b *Builder) checkedDiv(t types.IntegerT) {
	b.op("DUP1", "ISZERO")
	b.revertIf()
	if !t.Signed {
		b.op("SWAP1", "DIV")
		return
	}
	if t.Bits == 256 {
		b.op("DUP1", "NOT", "ISZERO", "DUP3")
		b.emit(asm.Push(minInt256))
		b.op("EQ", "AND")
		b.revertIf()
	}
	b.op("SWAP1", "SDIV")
	b.rangeCheck(t)
}

func (b *Builder) checkedMod(t types.IntegerT) {
	b.op("DUP1", "ISZERO")
	b.revertIf()
	if t.Signed {
		b.op("SWAP1", "SMOD")
		return
	}
	b.op("SWAP1", "MOD")
}

// arithmetic applies a binary arithmetic operator to [l r].
func (b *Builder) arithmetic(op string, t types.Type, node ast.Node) error {
	it, ok := t.(types.IntegerT)
	if !ok {
		return unsupported("arithmetic on "+t.String(), node)
	}
	switch op {
	case "+":
		b.checkedAdd(it)
	case "-":
		b.checkedSub(it)
	case "*":
		b.checkedMul(it)
	case "/":
		b.checkedDiv(it)
	case "%":
		b.checkedMod(it)
	default:
		return unsupported("operator "+op, node)
	}
	return nil
}

func (b *Builder) negate(t types.IntegerT) {
	if t.Bits == 256 {
		b.op("DUP1")
		b.emit(asm.Push(minInt256))
		b.op("EQ")
		b.revertIf()
	}
	b.pushInt(0)
	b.op("SUB")
	b.rangeCheck(t)
}

// maxExponent is the largest e with base**e <= max.
func maxExponent(base, max *big.Int) uint64 {
	var e uint64
	p := big.NewInt(1)
	for {
		next := new(big.Int).Mul(p, base)
		if next.Cmp(max) > 0 {
			return e
		}
		p = next
		e++
	}
}

// maxBase is the largest x with x**exp <= max.
func maxBase(exp uint64, max *big.Int) *big.Int {
	lo, hi := big.NewInt(0), new(big.Int).Set(max)
	e := new(big.Int).SetUint64(exp)
	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Add(mid, big.NewInt(1)).Rsh(mid, 1)
		if new(big.Int).Exp(mid, e, nil).Cmp(max) <= 0 {
			lo = mid
		} else {
			hi = mid.Sub(mid, big.NewInt(1))
		}
	}
	return lo
}

// buildPow handles "**" when either side is a constant; the result is
// checked against the type bound up front.
func (b *Builder) buildPow(e *ast.BinaryExpr, t types.Type) error {
	it, ok := t.(types.IntegerT)
	if !ok || it.Signed {
		return unsupported("exponentiation of "+t.String(), e)
	}
	maxU, _ := it.Bounds()
	max := maxU.ToBig()

	if base, ok := b.fold(e.Left); ok {
		if err := b.buildExpression(e.Right); err != nil {
			return err
		}
		word := base.Word()
		if word.GtUint64(1) {
			k := maxExponent(word.ToBig(), max)
			b.op("DUP1")
			b.emit(asm.PushInt(k))
			b.op("LT")
			b.revertIf()
		}
		b.emit(asm.Push(word))
		b.op("EXP")
		return nil
	}

	exp, ok := b.fold(e.Right)
	if !ok {
		return unsupported("exponentiation with a non-constant base and exponent", e)
	}
	n, ok := exp.Int64()
	if !ok || n < 0 {
		return unsupported("exponent "+exp.String(), e.Right)
	}
	if err := b.buildExpression(e.Left); err != nil {
		return err
	}
	switch n {
	case 0:
		b.op("POP")
		b.pushInt(1)
	case 1:
	default:
		bound, _ := uint256.FromBig(maxBase(uint64(n), max))
		b.clampMax(bound)
		b.emit(asm.PushInt(uint64(n)))
		b.op("SWAP1", "EXP")
	}
	return nil
}
