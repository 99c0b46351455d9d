package function

import (
	"fmt"
	"strings"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/types"
)

// InterfaceT is a declared interface. Values of an interface type are
// addresses that external functions can be called on.
type InterfaceT struct {
	Name      string
	functions []*Signature
	byName    map[string]*Signature
}

func NewInterface(name string) *InterfaceT {
	return &InterfaceT{Name: name, byName: make(map[string]*Signature)}
}

// AddFunction registers a member function; names must be unique.
func (t *InterfaceT) AddFunction(sig *Signature) error {
	if _, exists := t.byName[sig.Name]; exists {
		node := sig.Decl
		if def, ok := node.(*ast.FunctionDef); ok {
			node = &def.Name
		}
		return errors.DuplicateDeclaration(sig.Name, node)
	}
	t.byName[sig.Name] = sig
	t.functions = append(t.functions, sig)
	return nil
}

func (t *InterfaceT) Functions() []*Signature { return t.functions }

func (t *InterfaceT) Lookup(name string) (*Signature, bool) {
	sig, ok := t.byName[name]
	return sig, ok
}

// FunctionNames lists member names in declaration order.
func (t *InterfaceT) FunctionNames() []string {
	names := make([]string, len(t.functions))
	for i, f := range t.functions {
		names[i] = f.Name
	}
	return names
}

// ValidateImplementation checks that lookup provides a conforming function
// for every interface member. The error names each missing or mismatched
// function.
func (t *InterfaceT) ValidateImplementation(node ast.Node, lookup func(name string) (*Signature, bool)) error {
	var missing, mismatched []string
	for _, want := range t.functions {
		have, ok := lookup(want.Name)
		if !ok {
			missing = append(missing, want.CanonicalSignature())
			continue
		}
		if !have.Implements(want) {
			mismatched = append(mismatched, want.CanonicalSignature())
		}
	}
	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	builder := errors.At(errors.ErrorInterfaceNotImplemented,
		fmt.Sprintf("contract does not implement interface '%s'", t.Name), node)
	if len(missing) > 0 {
		builder = builder.WithNote("missing: " + strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		builder = builder.WithNote("signature or mutability does not match: " + strings.Join(mismatched, ", "))
	}
	return builder.Build()
}

func (t *InterfaceT) String() string  { return t.Name }
func (t *InterfaceT) ABIType() string { return "address" }

func (t *InterfaceT) Compare(other types.Type) bool {
	o, ok := other.(*InterfaceT)
	return ok && o == t
}

func (t *InterfaceT) StorageSlots() int           { return 1 }
func (t *InterfaceT) SupportsExternalCalls() bool { return true }
