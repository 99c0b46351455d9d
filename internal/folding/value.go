package folding

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"sigil/internal/types"
)

type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
)

// Value is a compile-time constant. Integers are stored as a 256-bit
// magnitude plus a sign so both uint256 and int256 ranges are representable.
type Value struct {
	Kind Kind
	Mag  *uint256.Int
	Neg  bool
	Bool bool
	Str  string
}

func IntValue(mag *uint256.Int, neg bool) Value {
	if mag.IsZero() {
		neg = false
	}
	return Value{Kind: KindInt, Mag: mag, Neg: neg}
}

func Uint(v uint64) Value {
	return IntValue(uint256.NewInt(v), false)
}

func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// ParseInt parses a decimal or hex integer literal. Underscore separators are
// accepted. The second result is false when the literal does not fit 256 bits.
func ParseInt(text string) (*uint256.Int, bool) {
	b, ok := new(big.Int).SetString(strings.ReplaceAll(text, "_", ""), 0)
	if !ok || b.Sign() < 0 {
		return nil, false
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, false
	}
	return v, true
}

// FitsType reports whether v can be stored in t.
func (v Value) FitsType(t types.Type) bool {
	switch tt := t.(type) {
	case types.IntegerT:
		return v.Kind == KindInt && tt.Fits(v.Mag, v.Neg)
	case types.BoolT:
		return v.Kind == KindBool
	case types.StringT:
		return v.Kind == KindString && len(v.Str) <= tt.MaxLen
	case types.BytesT:
		return v.Kind == KindString && len(v.Str) <= tt.MaxLen
	}
	return false
}

// Int returns the value as a non-negative int when it fits.
func (v Value) Int() (int, bool) {
	if v.Kind != KindInt || v.Neg || !v.Mag.IsUint64() {
		return 0, false
	}
	u := v.Mag.Uint64()
	if u > 1<<31-1 {
		return 0, false
	}
	return int(u), true
}

// Int64 returns the signed value when it fits in an int64.
func (v Value) Int64() (int64, bool) {
	if v.Kind != KindInt || !v.Mag.IsUint64() || v.Mag.Uint64() > 1<<63-1 {
		return 0, false
	}
	n := int64(v.Mag.Uint64())
	if v.Neg {
		n = -n
	}
	return n, true
}

// Word is the two's complement 256-bit representation used by codegen.
func (v Value) Word() *uint256.Int {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return uint256.NewInt(1)
		}
		return new(uint256.Int)
	case KindInt:
		if v.Neg {
			return new(uint256.Int).Neg(v.Mag)
		}
		return new(uint256.Int).Set(v.Mag)
	}
	return new(uint256.Int)
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return `"` + v.Str + `"`
	}
	if v.Neg {
		return "-" + v.Mag.Dec()
	}
	return v.Mag.Dec()
}

func (v Value) equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindString:
		return v.Str == o.Str
	}
	return v.Neg == o.Neg && v.Mag.Eq(o.Mag)
}

// cmp compares two integer values: -1, 0 or 1.
func (v Value) cmp(o Value) int {
	switch {
	case v.Neg && !o.Neg:
		return -1
	case !v.Neg && o.Neg:
		return 1
	}
	c := v.Mag.Cmp(o.Mag)
	if v.Neg {
		return -c
	}
	return c
}
