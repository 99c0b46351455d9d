package folding

import (
	"fmt"

	"github.com/holiman/uint256"

	"sigil/internal/ast"
	"sigil/internal/errors"
)

// Lookup resolves a named constant to its folded value.
type Lookup func(name string) (Value, bool)

// Folder evaluates constant expressions.
type Folder struct {
	constants Lookup
}

func NewFolder(constants Lookup) *Folder {
	return &Folder{constants: constants}
}

// Fold evaluates expr. Names resolve through the constant lookup, either
// bare or as "self.NAME".
func (f *Folder) Fold(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return f.Fold(e.Value)

	case *ast.IntLit:
		mag, ok := ParseInt(e.Value)
		if !ok {
			return Value{}, f.fail(errors.ErrorInvalidLiteral, fmt.Sprintf("integer literal %s does not fit in 256 bits", e.Value), e)
		}
		return IntValue(mag, false), nil

	case *ast.BoolLit:
		return BoolValue(e.Value), nil

	case *ast.StrLit:
		return StringValue(e.Value), nil

	case *ast.NameExpr:
		if f.constants != nil {
			if v, ok := f.constants(e.Name); ok {
				return v, nil
			}
		}
		return Value{}, f.notConstant(e)

	case *ast.AttributeExpr:
		if base, ok := e.Value.(*ast.NameExpr); ok && base.Name == "self" && f.constants != nil {
			if v, ok := f.constants(e.Attr.Value); ok {
				return v, nil
			}
		}
		return Value{}, f.notConstant(e)

	case *ast.UnaryExpr:
		operand, err := f.Fold(e.Operand)
		if err != nil {
			return Value{}, err
		}
		return f.foldUnary(e, operand)

	case *ast.BinaryExpr:
		left, err := f.Fold(e.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := f.Fold(e.Right)
		if err != nil {
			return Value{}, err
		}
		return f.foldBinary(e, left, right)
	}

	return Value{}, f.notConstant(expr)
}

// IsConstant reports whether expr folds without error.
func (f *Folder) IsConstant(expr ast.Expr) bool {
	_, err := f.Fold(expr)
	return err == nil
}

func (f *Folder) foldUnary(e *ast.UnaryExpr, v Value) (Value, error) {
	switch e.Op {
	case "-":
		if v.Kind != KindInt {
			return Value{}, f.badOperand(e, v)
		}
		return IntValue(v.Mag, !v.Neg), nil
	case "not":
		if v.Kind != KindBool {
			return Value{}, f.badOperand(e, v)
		}
		return BoolValue(!v.Bool), nil
	}
	return Value{}, f.badOperand(e, v)
}

func (f *Folder) foldBinary(e *ast.BinaryExpr, l, r Value) (Value, error) {
	switch e.Op {
	case "==":
		return BoolValue(l.equal(r)), nil
	case "!=":
		return BoolValue(!l.equal(r)), nil
	case "and", "or":
		if l.Kind != KindBool || r.Kind != KindBool {
			return Value{}, f.badOperands(e, l, r)
		}
		if e.Op == "and" {
			return BoolValue(l.Bool && r.Bool), nil
		}
		return BoolValue(l.Bool || r.Bool), nil
	}

	if l.Kind != KindInt || r.Kind != KindInt {
		return Value{}, f.badOperands(e, l, r)
	}

	switch e.Op {
	case "<":
		return BoolValue(l.cmp(r) < 0), nil
	case "<=":
		return BoolValue(l.cmp(r) <= 0), nil
	case ">":
		return BoolValue(l.cmp(r) > 0), nil
	case ">=":
		return BoolValue(l.cmp(r) >= 0), nil
	case "+":
		return f.add(e, l, r)
	case "-":
		return f.add(e, l, IntValue(r.Mag, !r.Neg))
	case "*":
		mag, overflow := new(uint256.Int).MulOverflow(l.Mag, r.Mag)
		if overflow {
			return Value{}, f.overflow(e)
		}
		return IntValue(mag, l.Neg != r.Neg), nil
	case "/", "%":
		if r.Mag.IsZero() {
			return Value{}, f.fail(errors.ErrorInvalidOperation, "division by zero", e)
		}
		if e.Op == "/" {
			return IntValue(new(uint256.Int).Div(l.Mag, r.Mag), l.Neg != r.Neg), nil
		}
		// remainder takes the sign of the dividend
		return IntValue(new(uint256.Int).Mod(l.Mag, r.Mag), l.Neg), nil
	case "**":
		if r.Neg {
			return Value{}, f.fail(errors.ErrorInvalidOperation, "negative exponent", e)
		}
		return f.pow(e, l, r)
	}
	return Value{}, f.badOperands(e, l, r)
}

func (f *Folder) add(e ast.Node, l, r Value) (Value, error) {
	if l.Neg == r.Neg {
		mag, overflow := new(uint256.Int).AddOverflow(l.Mag, r.Mag)
		if overflow {
			return Value{}, f.overflow(e)
		}
		return IntValue(mag, l.Neg), nil
	}
	if l.Mag.Cmp(r.Mag) >= 0 {
		return IntValue(new(uint256.Int).Sub(l.Mag, r.Mag), l.Neg), nil
	}
	return IntValue(new(uint256.Int).Sub(r.Mag, l.Mag), r.Neg), nil
}

func (f *Folder) pow(e ast.Node, base, exp Value) (Value, error) {
	result := uint256.NewInt(1)
	b := new(uint256.Int).Set(base.Mag)
	n := new(uint256.Int).Set(exp.Mag)
	one := uint256.NewInt(1)
	var overflow bool
	for !n.IsZero() {
		if new(uint256.Int).And(n, one).Eq(one) {
			if result, overflow = new(uint256.Int).MulOverflow(result, b); overflow {
				return Value{}, f.overflow(e)
			}
		}
		n.Rsh(n, 1)
		if !n.IsZero() {
			if b, overflow = new(uint256.Int).MulOverflow(b, b); overflow {
				return Value{}, f.overflow(e)
			}
		}
	}
	odd := new(uint256.Int).And(exp.Mag, one).Eq(one)
	return IntValue(result, base.Neg && odd), nil
}

func (f *Folder) fail(code, msg string, n ast.Node) error {
	return errors.At(code, msg, n).Build()
}

func (f *Folder) notConstant(n ast.Node) error {
	return f.fail(errors.ErrorInvalidConstant, "value is not a compile-time constant", n)
}

func (f *Folder) overflow(n ast.Node) error {
	return f.fail(errors.ErrorInvalidOperation, "constant arithmetic overflows 256 bits", n)
}

func (f *Folder) badOperand(e *ast.UnaryExpr, v Value) error {
	return f.fail(errors.ErrorInvalidOperation, fmt.Sprintf("operator '%s' not supported for %s", e.Op, v), e)
}

func (f *Folder) badOperands(e *ast.BinaryExpr, l, r Value) error {
	return f.fail(errors.ErrorInvalidOperation, fmt.Sprintf("operator '%s' not supported between %s and %s", e.Op, l, r), e)
}
