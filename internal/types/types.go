package types

import (
	"fmt"
)

// Type is a resolved static type.
type Type interface {
	// String is the type as written in source.
	String() string
	// ABIType is the canonical ABI name, empty when the type cannot cross the ABI.
	ABIType() string
	// Compare reports whether a value of type other may be used where the
	// receiver is expected.
	Compare(other Type) bool
	// StorageSlots is the number of 32-byte slots the type occupies in storage.
	StorageSlots() int
	// SupportsExternalCalls reports whether values of this type can receive
	// external function calls.
	SupportsExternalCalls() bool
}

// Equal reports mutual compatibility.
func Equal(a, b Type) bool {
	return a.Compare(b) && b.Compare(a)
}

// IntegerT is a signed or unsigned integer of 8 to 256 bits.
type IntegerT struct {
	Bits   int
	Signed bool
}

func (t IntegerT) String() string {
	if t.Signed {
		return fmt.Sprintf("int%d", t.Bits)
	}
	return fmt.Sprintf("uint%d", t.Bits)
}

func (t IntegerT) ABIType() string { return t.String() }

func (t IntegerT) Compare(other Type) bool {
	o, ok := other.(IntegerT)
	return ok && o == t
}

func (IntegerT) StorageSlots() int           { return 1 }
func (IntegerT) SupportsExternalCalls() bool { return false }

type BoolT struct{}

func (BoolT) String() string  { return "bool" }
func (BoolT) ABIType() string { return "bool" }
func (BoolT) Compare(other Type) bool {
	_, ok := other.(BoolT)
	return ok
}
func (BoolT) StorageSlots() int           { return 1 }
func (BoolT) SupportsExternalCalls() bool { return false }

type AddressT struct{}

func (AddressT) String() string  { return "address" }
func (AddressT) ABIType() string { return "address" }
func (AddressT) Compare(other Type) bool {
	_, ok := other.(AddressT)
	return ok
}
func (AddressT) StorageSlots() int           { return 1 }
func (AddressT) SupportsExternalCalls() bool { return false }

// BytesMT is a fixed-size byte string, bytes1 through bytes32.
type BytesMT struct {
	M int
}

func (t BytesMT) String() string  { return fmt.Sprintf("bytes%d", t.M) }
func (t BytesMT) ABIType() string { return t.String() }
func (t BytesMT) Compare(other Type) bool {
	o, ok := other.(BytesMT)
	return ok && o.M == t.M
}
func (BytesMT) StorageSlots() int           { return 1 }
func (BytesMT) SupportsExternalCalls() bool { return false }

// StringT is a bounded string.
type StringT struct {
	MaxLen int
}

func (t StringT) String() string  { return fmt.Sprintf("String[%d]", t.MaxLen) }
func (StringT) ABIType() string   { return "string" }
func (t StringT) Compare(other Type) bool {
	o, ok := other.(StringT)
	return ok && o.MaxLen <= t.MaxLen
}
func (t StringT) StorageSlots() int         { return 1 + (t.MaxLen+31)/32 }
func (StringT) SupportsExternalCalls() bool { return false }

// BytesT is a bounded byte array.
type BytesT struct {
	MaxLen int
}

func (t BytesT) String() string  { return fmt.Sprintf("Bytes[%d]", t.MaxLen) }
func (BytesT) ABIType() string   { return "bytes" }
func (t BytesT) Compare(other Type) bool {
	o, ok := other.(BytesT)
	return ok && o.MaxLen <= t.MaxLen
}
func (t BytesT) StorageSlots() int         { return 1 + (t.MaxLen+31)/32 }
func (BytesT) SupportsExternalCalls() bool { return false }

// SArrayT is a fixed-length array.
type SArrayT struct {
	Elem  Type
	Count int
}

func (t SArrayT) String() string { return fmt.Sprintf("%s[%d]", t.Elem, t.Count) }

func (t SArrayT) ABIType() string {
	elem := t.Elem.ABIType()
	if elem == "" {
		return ""
	}
	return fmt.Sprintf("%s[%d]", elem, t.Count)
}

func (t SArrayT) Compare(other Type) bool {
	o, ok := other.(SArrayT)
	return ok && o.Count == t.Count && t.Elem.Compare(o.Elem)
}

func (t SArrayT) StorageSlots() int         { return t.Count * t.Elem.StorageSlots() }
func (SArrayT) SupportsExternalCalls() bool { return false }

// DArrayT is a dynamic array bounded by Count elements.
type DArrayT struct {
	Elem  Type
	Count int
}

func (t DArrayT) String() string { return fmt.Sprintf("DynArray[%s, %d]", t.Elem, t.Count) }

func (t DArrayT) ABIType() string {
	elem := t.Elem.ABIType()
	if elem == "" {
		return ""
	}
	return elem + "[]"
}

func (t DArrayT) Compare(other Type) bool {
	o, ok := other.(DArrayT)
	return ok && o.Count <= t.Count && t.Elem.Compare(o.Elem)
}

func (t DArrayT) StorageSlots() int         { return 1 + t.Count*t.Elem.StorageSlots() }
func (DArrayT) SupportsExternalCalls() bool { return false }

// HashMapT only exists in storage and cannot be assigned as a whole.
type HashMapT struct {
	Key   Type
	Value Type
}

func (t HashMapT) String() string          { return fmt.Sprintf("HashMap[%s, %s]", t.Key, t.Value) }
func (HashMapT) ABIType() string           { return "" }
func (HashMapT) Compare(Type) bool         { return false }
func (HashMapT) StorageSlots() int         { return 1 }
func (HashMapT) SupportsExternalCalls() bool { return false }

var (
	Uint8   = IntegerT{Bits: 8}
	Uint256 = IntegerT{Bits: 256}
	Int128  = IntegerT{Bits: 128, Signed: true}
	Int256  = IntegerT{Bits: 256, Signed: true}
	Bool    = BoolT{}
	Address = AddressT{}
	Bytes32 = BytesMT{M: 32}
)

// IsValueType reports whether t fits in a single stack word.
func IsValueType(t Type) bool {
	switch t.(type) {
	case IntegerT, BoolT, AddressT, BytesMT:
		return true
	}
	return false
}

// GetterShape returns the index types and innermost value type of a public
// state variable's generated getter.
func GetterShape(t Type) ([]Type, Type) {
	var args []Type
	for {
		switch v := t.(type) {
		case HashMapT:
			args = append(args, v.Key)
			t = v.Value
		case SArrayT:
			args = append(args, Uint256)
			t = v.Elem
		case DArrayT:
			args = append(args, Uint256)
			t = v.Elem
		default:
			return args, t
		}
	}
}
