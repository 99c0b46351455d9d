package types

import (
	"fmt"
	"strconv"
	"strings"

	"sigil/internal/ast"
)

// SizeResolver resolves a named compile-time constant used as a size.
type SizeResolver func(name string) (int, bool)

// ResolveError carries the node a type annotation failed on.
type ResolveError struct {
	Node    ast.Node
	Message string
}

func (e *ResolveError) Error() string { return e.Message }

// TypeRegistry manages the type names visible in one module.
type TypeRegistry struct {
	builtins    map[string]Type
	userDefined map[string]Type
	sizes       SizeResolver
}

// NewTypeRegistry creates a new type registry with built-in types
func NewTypeRegistry() *TypeRegistry {
	tr := &TypeRegistry{
		builtins:    make(map[string]Type),
		userDefined: make(map[string]Type),
	}
	tr.InitializeBuiltins()
	return tr
}

// InitializeBuiltins adds all primitive types to the registry
func (tr *TypeRegistry) InitializeBuiltins() {
	for bits := 8; bits <= 256; bits += 8 {
		tr.builtins[fmt.Sprintf("uint%d", bits)] = IntegerT{Bits: bits}
		tr.builtins[fmt.Sprintf("int%d", bits)] = IntegerT{Bits: bits, Signed: true}
	}
	for m := 1; m <= 32; m++ {
		tr.builtins[fmt.Sprintf("bytes%d", m)] = BytesMT{M: m}
	}
	tr.builtins["bool"] = Bool
	tr.builtins["address"] = Address
}

// AddUserDefinedType registers an interface or other named type.
func (tr *TypeRegistry) AddUserDefinedType(name string, t Type) {
	tr.userDefined[name] = t
}

// SetSizeResolver lets array bounds refer to named constants.
func (tr *TypeRegistry) SetSizeResolver(r SizeResolver) {
	tr.sizes = r
}

// IsValidType checks if a bare type name is known in this registry
func (tr *TypeRegistry) IsValidType(name string) bool {
	if _, ok := tr.builtins[name]; ok {
		return true
	}
	_, ok := tr.userDefined[name]
	return ok || isGenericName(name)
}

// IsBuiltinType checks if a type is a built-in primitive
func (tr *TypeRegistry) IsBuiltinType(name string) bool {
	_, ok := tr.builtins[name]
	return ok
}

// Lookup returns a user defined or primitive type by name.
func (tr *TypeRegistry) Lookup(name string) (Type, bool) {
	if t, ok := tr.userDefined[name]; ok {
		return t, true
	}
	t, ok := tr.builtins[name]
	return t, ok
}

// TypeNames lists every bare type name, for suggestions.
func (tr *TypeRegistry) TypeNames() []string {
	names := make([]string, 0, len(tr.builtins)+len(tr.userDefined))
	for n := range tr.builtins {
		names = append(names, n)
	}
	for n := range tr.userDefined {
		names = append(names, n)
	}
	return names
}

func isGenericName(name string) bool {
	switch name {
	case "HashMap", "DynArray", "String", "Bytes":
		return true
	}
	return false
}

// Resolve turns a type annotation into a Type.
func (tr *TypeRegistry) Resolve(te *ast.TypeExpr) (Type, error) {
	name := te.Name.Value
	subs := te.Subscripts

	var base Type
	switch name {
	case "HashMap":
		if len(subs) == 0 || len(subs[0].Args) != 2 {
			return nil, tr.fail(te, "HashMap requires a key and a value type: HashMap[K, V]")
		}
		key, err := tr.resolveArgType(subs[0].Args[0])
		if err != nil {
			return nil, err
		}
		if !IsValueType(key) {
			return nil, tr.fail(subs[0].Args[0], fmt.Sprintf("HashMap key must be a value type, not %s", key))
		}
		value, err := tr.resolveArgType(subs[0].Args[1])
		if err != nil {
			return nil, err
		}
		base = HashMapT{Key: key, Value: value}
		subs = subs[1:]
	case "DynArray":
		if len(subs) == 0 || len(subs[0].Args) != 2 {
			return nil, tr.fail(te, "DynArray requires an element type and a bound: DynArray[T, N]")
		}
		elem, err := tr.resolveArgType(subs[0].Args[0])
		if err != nil {
			return nil, err
		}
		if _, isMap := elem.(HashMapT); isMap {
			return nil, tr.fail(subs[0].Args[0], "HashMap cannot be an array element")
		}
		n, err := tr.resolveArgSize(subs[0].Args[1])
		if err != nil {
			return nil, err
		}
		base = DArrayT{Elem: elem, Count: n}
		subs = subs[1:]
	case "String", "Bytes":
		if len(subs) == 0 || len(subs[0].Args) != 1 {
			return nil, tr.fail(te, fmt.Sprintf("%s requires a maximum length: %s[N]", name, name))
		}
		n, err := tr.resolveArgSize(subs[0].Args[0])
		if err != nil {
			return nil, err
		}
		if name == "String" {
			base = StringT{MaxLen: n}
		} else {
			base = BytesT{MaxLen: n}
		}
		subs = subs[1:]
	default:
		t, ok := tr.Lookup(name)
		if !ok {
			return nil, tr.fail(te, fmt.Sprintf("unknown type '%s'", name))
		}
		base = t
	}

	// remaining groups are fixed array dimensions, outermost last
	for _, sub := range subs {
		if len(sub.Args) != 1 {
			return nil, tr.fail(sub, "array dimension takes exactly one size")
		}
		if _, isMap := base.(HashMapT); isMap {
			return nil, tr.fail(sub, "HashMap cannot be an array element")
		}
		n, err := tr.resolveArgSize(sub.Args[0])
		if err != nil {
			return nil, err
		}
		base = SArrayT{Elem: base, Count: n}
	}
	return base, nil
}

func (tr *TypeRegistry) resolveArgType(arg *ast.TypeArg) (Type, error) {
	if arg.Type == nil {
		return nil, tr.fail(arg, "expected a type")
	}
	return tr.Resolve(arg.Type)
}

func (tr *TypeRegistry) resolveArgSize(arg *ast.TypeArg) (int, error) {
	if arg.Size != nil {
		n, err := strconv.ParseInt(strings.ReplaceAll(arg.Size.Value, "_", ""), 0, 32)
		if err != nil || n <= 0 {
			return 0, tr.fail(arg, fmt.Sprintf("invalid size '%s'", arg.Size.Value))
		}
		return int(n), nil
	}
	if arg.Type != nil && len(arg.Type.Subscripts) == 0 && tr.sizes != nil {
		if n, ok := tr.sizes(arg.Type.Name.Value); ok {
			if n <= 0 {
				return 0, tr.fail(arg, "size must be positive")
			}
			return n, nil
		}
	}
	return 0, tr.fail(arg, "expected an integer size or a constant")
}

func (tr *TypeRegistry) fail(n ast.Node, msg string) error {
	return &ResolveError{Node: n, Message: msg}
}
