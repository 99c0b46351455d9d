package stdlib

import (
	"sort"

	"sigil/internal/ast"
	"sigil/internal/types"
)

// ModuleDefinition defines an environment namespace
type ModuleDefinition struct {
	Name    string                      // Namespace name (e.g., "msg", "block")
	Members map[string]MemberDefinition // Values readable through the namespace
}

// MemberDefinition is one environment value, read with a single opcode
type MemberDefinition struct {
	Name   string     // Member name (e.g., "sender")
	Type   types.Type // Static type of the value
	Opcode string     // Opcode pushing the value onto the stack
}

// BuiltinDefinition describes a builtin function callable by bare name
type BuiltinDefinition struct {
	Name     string
	MinArgs  int
	MaxArgs  int
	Keywords []string // accepted keyword arguments
	LoopOnly bool     // only valid as the iterable of a for loop
}

func member(name string, t types.Type, opcode string) MemberDefinition {
	return MemberDefinition{Name: name, Type: t, Opcode: opcode}
}

var standardModules = map[string]*ModuleDefinition{
	"msg": {
		Name: "msg",
		Members: map[string]MemberDefinition{
			"sender": member("sender", types.Address, "CALLER"),
			"value":  member("value", types.Uint256, "CALLVALUE"),
			"gas":    member("gas", types.Uint256, "GAS"),
		},
	},
	"block": {
		Name: "block",
		Members: map[string]MemberDefinition{
			"timestamp":  member("timestamp", types.Uint256, "TIMESTAMP"),
			"number":     member("number", types.Uint256, "NUMBER"),
			"coinbase":   member("coinbase", types.Address, "COINBASE"),
			"prevrandao": member("prevrandao", types.Bytes32, "PREVRANDAO"),
		},
	},
	"tx": {
		Name: "tx",
		Members: map[string]MemberDefinition{
			"origin":   member("origin", types.Address, "ORIGIN"),
			"gasprice": member("gasprice", types.Uint256, "GASPRICE"),
		},
	},
	"chain": {
		Name: "chain",
		Members: map[string]MemberDefinition{
			"id": member("id", types.Uint256, "CHAINID"),
		},
	},
}

var builtins = map[string]*BuiltinDefinition{
	"len":   {Name: "len", MinArgs: 1, MaxArgs: 1},
	"min":   {Name: "min", MinArgs: 2, MaxArgs: 2},
	"max":   {Name: "max", MinArgs: 2, MaxArgs: 2},
	"range": {Name: "range", MinArgs: 1, MaxArgs: 2, Keywords: []string{"bound"}, LoopOnly: true},
}

// GetStandardModules returns all environment namespaces
func GetStandardModules() map[string]*ModuleDefinition {
	return standardModules
}

// IsKnownModule checks if a name is an environment namespace
func IsKnownModule(name string) bool {
	_, exists := standardModules[name]
	return exists
}

// GetModuleDefinition returns the definition for an environment namespace
func GetModuleDefinition(name string) *ModuleDefinition {
	return standardModules[name]
}

// GetBuiltin returns the builtin function with the given name, or nil
func GetBuiltin(name string) *BuiltinDefinition {
	return builtins[name]
}

// ReservedNames lists every name owned by the environment, sorted.
func ReservedNames() []string {
	names := []string{"self"}
	for n := range standardModules {
		names = append(names, n)
	}
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupMember resolves "ns.member" expressions to their definition.
func LookupMember(expr ast.Expr) (*MemberDefinition, bool) {
	attr, ok := ast.Unparen(expr).(*ast.AttributeExpr)
	if !ok {
		return nil, false
	}
	base, ok := attr.Value.(*ast.NameExpr)
	if !ok {
		return nil, false
	}
	mod := standardModules[base.Name]
	if mod == nil {
		return nil, false
	}
	m, ok := mod.Members[attr.Attr.Value]
	if !ok {
		return nil, false
	}
	return &m, true
}

// IsEnvironmentConstant reports whether expr is an environment value that
// may be used where a compile-time constant is required, such as a
// parameter default.
func IsEnvironmentConstant(expr ast.Expr) bool {
	if name, ok := ast.Unparen(expr).(*ast.NameExpr); ok {
		return name.Name == "self"
	}
	_, ok := LookupMember(expr)
	return ok
}
