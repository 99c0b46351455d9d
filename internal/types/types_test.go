package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/ast"
	"sigil/internal/parser"
)

func typeExpr(t *testing.T, text string) *ast.TypeExpr {
	t.Helper()
	module, parseErrs, scanErrs := parser.ParseSource("types.sg", "x: "+text+";")
	require.Empty(t, scanErrs)
	require.Empty(t, parseErrs)
	require.Len(t, module.Items, 1)
	return module.Items[0].(*ast.VariableDecl).Type
}

func TestResolve(t *testing.T) {
	tr := NewTypeRegistry()
	tr.SetSizeResolver(func(name string) (int, bool) {
		if name == "MAX" {
			return 4, true
		}
		return 0, false
	})

	cases := []struct {
		in    string
		str   string
		abi   string
		slots int
	}{
		{"uint256", "uint256", "uint256", 1},
		{"int8", "int8", "int8", 1},
		{"bytes32", "bytes32", "bytes32", 1},
		{"address", "address", "address", 1},
		{"bool", "bool", "bool", 1},
		{"uint256[3]", "uint256[3]", "uint256[3]", 3},
		{"uint8[2][3]", "uint8[2][3]", "uint8[2][3]", 6},
		{"DynArray[address, MAX]", "DynArray[address, 4]", "address[]", 5},
		{"HashMap[address, uint256]", "HashMap[address, uint256]", "", 1},
		{"HashMap[address, HashMap[address, bool]]", "HashMap[address, HashMap[address, bool]]", "", 1},
		{"String[64]", "String[64]", "string", 3},
		{"Bytes[0x20]", "Bytes[32]", "bytes", 2},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			typ, err := tr.Resolve(typeExpr(t, tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.str, typ.String())
			assert.Equal(t, tc.abi, typ.ABIType())
			assert.Equal(t, tc.slots, typ.StorageSlots())
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tr := NewTypeRegistry()
	cases := map[string]string{
		"uint7":                            "unknown type 'uint7'",
		"HashMap[address]":                 "HashMap requires a key and a value type",
		"HashMap[uint256[2], bool]":        "HashMap key must be a value type",
		"DynArray[uint256]":                "DynArray requires an element type and a bound",
		"DynArray[uint256, N]":             "expected an integer size or a constant",
		"String":                           "String requires a maximum length",
		"uint256[0]":                       "invalid size '0'",
		"uint256[2, 3]":                    "array dimension takes exactly one size",
		"HashMap[address, bool][2]":        "HashMap cannot be an array element",
		"DynArray[HashMap[bool, bool], 2]": "HashMap cannot be an array element",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := tr.Resolve(typeExpr(t, in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
			var re *ResolveError
			require.ErrorAs(t, err, &re)
			assert.NotNil(t, re.Node)
		})
	}
}

func TestRegistryNames(t *testing.T) {
	tr := NewTypeRegistry()
	assert.True(t, tr.IsBuiltinType("uint128"))
	assert.True(t, tr.IsValidType("HashMap"))
	assert.False(t, tr.IsValidType("Token"))

	tr.AddUserDefinedType("Token", Address)
	assert.True(t, tr.IsValidType("Token"))
	assert.False(t, tr.IsBuiltinType("Token"))
	assert.Contains(t, tr.TypeNames(), "Token")
	// 32 unsigned, 32 signed, 32 fixed bytes, bool, address and Token
	assert.Len(t, tr.TypeNames(), 99)
}

func TestCompare(t *testing.T) {
	assert.True(t, Equal(Uint256, IntegerT{Bits: 256}))
	assert.False(t, Uint256.Compare(Int256))
	assert.False(t, Uint8.Compare(Uint256))

	small, large := StringT{MaxLen: 5}, StringT{MaxLen: 10}
	assert.True(t, large.Compare(small))
	assert.False(t, small.Compare(large))
	assert.False(t, Equal(small, large))

	arr := SArrayT{Elem: Uint256, Count: 3}
	assert.True(t, arr.Compare(SArrayT{Elem: Uint256, Count: 3}))
	assert.False(t, arr.Compare(SArrayT{Elem: Uint256, Count: 2}))

	dyn := DArrayT{Elem: Address, Count: 4}
	assert.True(t, dyn.Compare(DArrayT{Elem: Address, Count: 2}))
	assert.False(t, HashMapT{Key: Address, Value: Bool}.Compare(HashMapT{Key: Address, Value: Bool}))
}

func TestIsValueType(t *testing.T) {
	assert.True(t, IsValueType(Uint8))
	assert.True(t, IsValueType(Bytes32))
	assert.False(t, IsValueType(StringT{MaxLen: 1}))
	assert.False(t, IsValueType(SArrayT{Elem: Bool, Count: 1}))
}

func TestGetterShape(t *testing.T) {
	args, value := GetterShape(HashMapT{Key: Address, Value: SArrayT{Elem: Bool, Count: 2}})
	assert.Equal(t, []Type{Address, Uint256}, args)
	assert.Equal(t, Bool, value)

	args, value = GetterShape(Uint256)
	assert.Empty(t, args)
	assert.Equal(t, Uint256, value)
}

func TestBounds(t *testing.T) {
	maxPos, maxNeg := Uint8.Bounds()
	assert.Equal(t, uint64(255), maxPos.Uint64())
	assert.True(t, maxNeg.IsZero())

	maxPos, maxNeg = IntegerT{Bits: 8, Signed: true}.Bounds()
	assert.Equal(t, uint64(127), maxPos.Uint64())
	assert.Equal(t, uint64(128), maxNeg.Uint64())

	maxPos, _ = Uint256.Bounds()
	assert.Equal(t, new(uint256.Int).SetAllOne(), maxPos)
}

func TestFits(t *testing.T) {
	int8T := IntegerT{Bits: 8, Signed: true}
	assert.True(t, int8T.Fits(uint256.NewInt(128), true))
	assert.False(t, int8T.Fits(uint256.NewInt(129), true))
	assert.False(t, int8T.Fits(uint256.NewInt(128), false))
	assert.True(t, Uint8.Fits(uint256.NewInt(255), false))
	assert.False(t, Uint8.Fits(uint256.NewInt(1), true))
	assert.True(t, Uint8.Fits(new(uint256.Int), true), "negative zero fits any integer")
	assert.True(t, Uint256.Fits(new(uint256.Int).SetAllOne(), false))
}
