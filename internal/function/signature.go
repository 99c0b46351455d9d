package function

import (
	"fmt"
	"strings"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/types"
)

type Visibility int

const (
	INTERNAL Visibility = iota
	EXTERNAL
)

func (v Visibility) String() string {
	if v == EXTERNAL {
		return "external"
	}
	return "internal"
}

// StateMutability is ordered from least to most effectful.
type StateMutability int

const (
	PURE StateMutability = iota
	VIEW
	NONPAYABLE
	PAYABLE
)

var mutabilityNames = map[string]StateMutability{
	"pure":       PURE,
	"view":       VIEW,
	"nonpayable": NONPAYABLE,
	"payable":    PAYABLE,
}

func (m StateMutability) String() string {
	switch m {
	case PURE:
		return "pure"
	case VIEW:
		return "view"
	case PAYABLE:
		return "payable"
	default:
		return "nonpayable"
	}
}

// ParseStateMutability maps a decorator or interface suffix to its mutability.
func ParseStateMutability(name string) (StateMutability, bool) {
	m, ok := mutabilityNames[name]
	return m, ok
}

const (
	ConstructorName = "__init__"
	FallbackName    = "__default__"
)

// PositionalArg is a parameter without a default.
type PositionalArg struct {
	Name string
	Type types.Type
	Node ast.Node
}

// KeywordArg is a parameter with a default value.
type KeywordArg struct {
	Name    string
	Type    types.Type
	Default ast.Expr
	Node    ast.Node
}

// Signature is the calling contract of one declared function.
//
// Signatures compare by identity: two declarations with the same shape are
// still different functions, and as a type a Signature is never assignable
// from anything. Everything except the function id and the re-entrancy slot
// is fixed at construction.
type Signature struct {
	Name         string
	Module       string // declaring module for library functions, empty for the contract itself
	Positional   []PositionalArg
	Keyword      []KeywordArg
	Return       types.Type
	Visibility   Visibility
	Mutability   StateMutability
	Nonreentrant string
	Decl         ast.Node

	functionID     int
	hasFunctionID  bool
	reentrancySlot int
	hasSlot        bool
}

// NewSignature builds a signature directly. Declarations go through
// FromFunctionDef and friends, which validate first.
func NewSignature(name string, positional []PositionalArg, keyword []KeywordArg, ret types.Type,
	visibility Visibility, mutability StateMutability) *Signature {
	return &Signature{
		Name:       name,
		Positional: positional,
		Keyword:    keyword,
		Return:     ret,
		Visibility: visibility,
		Mutability: mutability,
	}
}

func (s *Signature) NPositional() int { return len(s.Positional) }
func (s *Signature) NKeyword() int    { return len(s.Keyword) }
func (s *Signature) NTotal() int      { return len(s.Positional) + len(s.Keyword) }

func (s *Signature) IsExternal() bool    { return s.Visibility == EXTERNAL }
func (s *Signature) IsInternal() bool    { return s.Visibility == INTERNAL }
func (s *Signature) IsMutable() bool     { return s.Mutability > VIEW }
func (s *Signature) IsPayable() bool     { return s.Mutability == PAYABLE }
func (s *Signature) IsConstructor() bool { return s.Name == ConstructorName }
func (s *Signature) IsFallback() bool    { return s.Name == FallbackName }

// ArgumentNames returns positional then keyword parameter names.
func (s *Signature) ArgumentNames() []string {
	names := make([]string, 0, s.NTotal())
	for _, a := range s.Positional {
		names = append(names, a.Name)
	}
	for _, a := range s.Keyword {
		names = append(names, a.Name)
	}
	return names
}

// ArgumentTypes returns positional then keyword parameter types.
func (s *Signature) ArgumentTypes() []types.Type {
	ts := make([]types.Type, 0, s.NTotal())
	for _, a := range s.Positional {
		ts = append(ts, a.Type)
	}
	for _, a := range s.Keyword {
		ts = append(ts, a.Type)
	}
	return ts
}

// keywordIndex returns the position of a keyword parameter, or -1.
func (s *Signature) keywordIndex(name string) int {
	for i, a := range s.Keyword {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// QualifiedName prefixes library functions with their module.
func (s *Signature) QualifiedName() string {
	if s.Module == "" {
		return s.Name
	}
	return s.Module + "." + s.Name
}

// Implements reports whether s can stand in for other in an interface:
// s is external, parameter and return types line up, and s is no more
// effectful than other.
func (s *Signature) Implements(other *Signature) bool {
	if !s.IsExternal() {
		return false
	}

	mine, theirs := s.ArgumentTypes(), other.ArgumentTypes()
	if len(mine) != len(theirs) {
		return false
	}
	for i := range mine {
		if !mine[i].Compare(theirs[i]) {
			return false
		}
	}

	switch {
	case s.Return == nil && other.Return == nil:
	case s.Return == nil || other.Return == nil:
		return false
	case !s.Return.Compare(other.Return):
		return false
	}

	return s.Mutability <= other.Mutability
}

// SetFunctionID binds the numeric id used in internal labels. It may only
// be set once.
func (s *Signature) SetFunctionID(id int) error {
	if s.hasFunctionID {
		return errors.CompilerPanic("function id for %s already assigned", s.QualifiedName())
	}
	s.functionID = id
	s.hasFunctionID = true
	return nil
}

func (s *Signature) FunctionID() (int, bool) {
	return s.functionID, s.hasFunctionID
}

// SetReentrancySlot binds the storage slot of the function's lock. It may
// only be set once, and only on functions that declare a lock.
func (s *Signature) SetReentrancySlot(slot int) error {
	if s.hasSlot {
		return errors.CompilerPanic("re-entrancy slot for %s already assigned", s.QualifiedName())
	}
	if s.Nonreentrant == "" {
		return errors.CompilerPanic("no re-entrancy key on %s", s.QualifiedName())
	}
	s.reentrancySlot = slot
	s.hasSlot = true
	return nil
}

func (s *Signature) ReentrancySlot() (int, bool) {
	return s.reentrancySlot, s.hasSlot
}

// CanonicalSignature is name(type,...) over every parameter.
func (s *Signature) CanonicalSignature() string {
	return s.abiSignature(s.NTotal())
}

// Label names the function's body in assembly.
func (s *Signature) Label() string {
	id, _ := s.FunctionID()
	return fmt.Sprintf("internal %d %s", id, s.CanonicalSignature())
}

// Signature is a types.Type so that "self.f" has a type; it can only be called.

func (s *Signature) String() string {
	names := make([]string, 0, s.NTotal())
	for _, t := range s.ArgumentTypes() {
		names = append(names, t.String())
	}
	ret := ""
	if s.Return != nil {
		ret = " -> " + s.Return.String()
	}
	return fmt.Sprintf("fn %s(%s)%s", s.QualifiedName(), strings.Join(names, ", "), ret)
}

func (s *Signature) ABIType() string { return "" }

// Compare is false even for s itself: functions are not values. Compare
// signatures by pointer.
func (s *Signature) Compare(types.Type) bool { return false }

func (s *Signature) StorageSlots() int           { return 0 }
func (s *Signature) SupportsExternalCalls() bool { return false }
