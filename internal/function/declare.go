package function

import (
	"fmt"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/types"
)

// DeclContext is what signature construction needs from the enclosing
// module: type resolution and checks on parameter defaults.
type DeclContext interface {
	ResolveType(te *ast.TypeExpr) (types.Type, error)
	// IsKwargable reports whether expr folds to a compile-time constant or is
	// an environment value.
	IsKwargable(expr ast.Expr) bool
	ValidateExpectedType(expr ast.Expr, expected types.Type) error
}

// SpecialKwargs are the call-site options forwarded with an external call.
// They cannot be used as parameter names.
var SpecialKwargs = []string{"gas", "value", "skip_contract_check", "default_return_value"}

func isSpecialKwarg(name string) bool {
	for _, k := range SpecialKwargs {
		if k == name {
			return true
		}
	}
	return false
}

// FromFunctionDef builds the signature of a contract or library function.
func FromFunctionDef(def *ast.FunctionDef, ctx DeclContext) (*Signature, error) {
	if def.Body == nil {
		return nil, errors.At(errors.ErrorFunctionDeclaration,
			fmt.Sprintf("function '%s' has no body", def.Name.Value), &def.Name).Build()
	}
	if def.Mutability != nil {
		return nil, errors.At(errors.ErrorFunctionDeclaration,
			"mutability suffix is only allowed in interface declarations", def.Mutability).
			WithSuggestion(fmt.Sprintf("use the @%s decorator instead", def.Mutability.Value)).
			Build()
	}

	visibility, mutability, key, err := parseDecorators(def)
	if err != nil {
		return nil, err
	}

	positional, keyword, err := parseArgs(def, ctx)
	if err != nil {
		return nil, err
	}

	ret, err := parseReturnType(def, ctx)
	if err != nil {
		return nil, err
	}

	switch def.Name.Value {
	case FallbackName:
		if visibility != EXTERNAL {
			return nil, errors.At(errors.ErrorInvalidFallback,
				"default function must be marked as @external", &def.Name).Build()
		}
		if len(def.Params) > 0 {
			return nil, errors.At(errors.ErrorInvalidFallback,
				"default function may not receive any arguments", def.Params[0]).Build()
		}
	case ConstructorName:
		if mutability == PURE || mutability == VIEW || visibility == INTERNAL {
			return nil, errors.At(errors.ErrorInvalidConstructor,
				"constructor cannot be marked as @pure, @view or @internal", &def.Name).Build()
		}
		if def.Return != nil {
			return nil, errors.At(errors.ErrorInvalidConstructor,
				"constructor may not have a return type", def.Return).Build()
		}
		if len(keyword) > 0 {
			return nil, errors.At(errors.ErrorInvalidConstructor,
				"constructor may not use default arguments", keyword[0].Default).Build()
		}
	}

	sig := NewSignature(def.Name.Value, positional, keyword, ret, visibility, mutability)
	sig.Nonreentrant = key
	sig.Decl = def
	return sig, nil
}

// FromInterfaceDef builds the signature of a function declared inside an
// interface. Interface functions are always external and carry their
// mutability as a suffix instead of a decorator.
func FromInterfaceDef(def *ast.FunctionDef, ctx DeclContext) (*Signature, error) {
	if len(def.Decorators) > 0 {
		return nil, errors.At(errors.ErrorInterfaceDeclaration,
			"decorators are not allowed in interface declarations", def.Decorators[0]).Build()
	}
	if def.Body != nil {
		return nil, errors.At(errors.ErrorInterfaceDeclaration,
			"interface functions cannot have a body", def.Body).Build()
	}
	if def.Mutability == nil {
		return nil, errors.At(errors.ErrorInterfaceDeclaration,
			fmt.Sprintf("interface function '%s' must declare its mutability", def.Name.Value), &def.Name).
			WithSuggestion("end the declaration with ': view', ': pure', ': nonpayable' or ': payable'").
			Build()
	}
	mutability, ok := ParseStateMutability(def.Mutability.Value)
	if !ok {
		return nil, errors.At(errors.ErrorInterfaceDeclaration,
			fmt.Sprintf("state mutability should be one of pure, view, nonpayable or payable, not '%s'", def.Mutability.Value),
			def.Mutability).Build()
	}

	switch def.Name.Value {
	case ConstructorName:
		return nil, errors.At(errors.ErrorFunctionDeclaration,
			"constructors cannot appear in interfaces", &def.Name).Build()
	case FallbackName:
		return nil, errors.At(errors.ErrorFunctionDeclaration,
			"default functions cannot appear in interfaces", &def.Name).Build()
	}

	positional, keyword, err := parseArgs(def, ctx)
	if err != nil {
		return nil, err
	}
	ret, err := parseReturnType(def, ctx)
	if err != nil {
		return nil, err
	}

	sig := NewSignature(def.Name.Value, positional, keyword, ret, EXTERNAL, mutability)
	sig.Decl = def
	return sig, nil
}

// GetterFromVariableDecl synthesizes the view function generated for a
// public state variable of type t.
func GetterFromVariableDecl(decl *ast.VariableDecl, t types.Type) (*Signature, error) {
	if !decl.Public {
		return nil, errors.CompilerPanic("getter generated for non-public variable %s", decl.Name.Value)
	}

	argTypes, ret := types.GetterShape(t)
	args := make([]PositionalArg, len(argTypes))
	for i, at := range argTypes {
		args[i] = PositionalArg{Name: fmt.Sprintf("arg%d", i), Type: at, Node: decl}
	}

	sig := NewSignature(decl.Name.Value, args, nil, ret, EXTERNAL, VIEW)
	sig.Decl = decl
	return sig, nil
}

// parseArgs splits parameters at the first default into positional and
// keyword parameters.
func parseArgs(def *ast.FunctionDef, ctx DeclContext) ([]PositionalArg, []KeywordArg, error) {
	var positional []PositionalArg
	var keyword []KeywordArg
	seen := make(map[string]bool)

	for _, p := range def.Params {
		name := p.Name.Value
		if isSpecialKwarg(name) {
			return nil, nil, errors.At(errors.ErrorInvalidParameter,
				fmt.Sprintf("cannot use '%s' as a parameter name", name), &p.Name).
				WithNote("gas, value, skip_contract_check and default_return_value are reserved for call options").
				Build()
		}
		if seen[name] {
			return nil, nil, errors.At(errors.ErrorInvalidParameter,
				fmt.Sprintf("function contains multiple parameters named '%s'", name), &p.Name).Build()
		}
		seen[name] = true

		if p.Type == nil {
			return nil, nil, errors.At(errors.ErrorInvalidParameter,
				fmt.Sprintf("parameter '%s' is missing a type", name), &p.Name).
				WithSuggestion(fmt.Sprintf("annotate it, e.g. '%s: uint256'", name)).
				Build()
		}
		t, err := ctx.ResolveType(p.Type)
		if err != nil {
			return nil, nil, err
		}
		if _, isMap := t.(types.HashMapT); isMap {
			return nil, nil, errors.At(errors.ErrorInvalidParameter,
				"HashMap can only be used for storage variables", p.Type).Build()
		}

		if p.Default == nil {
			if len(keyword) > 0 {
				return nil, nil, errors.At(errors.ErrorInvalidParameter,
					fmt.Sprintf("parameter '%s' without a default follows a parameter with a default", name), p).Build()
			}
			positional = append(positional, PositionalArg{Name: name, Type: t, Node: p})
			continue
		}

		if !ctx.IsKwargable(p.Default) {
			return nil, nil, errors.At(errors.ErrorInvalidDefault,
				"value must be a literal, a constant or an environment variable", p.Default).Build()
		}
		if err := ctx.ValidateExpectedType(p.Default, t); err != nil {
			return nil, nil, err
		}
		keyword = append(keyword, KeywordArg{Name: name, Type: t, Default: p.Default, Node: p})
	}

	return positional, keyword, nil
}

func parseReturnType(def *ast.FunctionDef, ctx DeclContext) (types.Type, error) {
	if def.Return == nil {
		return nil, nil
	}
	t, err := ctx.ResolveType(def.Return)
	if err != nil {
		return nil, err
	}
	if _, isMap := t.(types.HashMapT); isMap {
		return nil, errors.At(errors.ErrorFunctionDeclaration,
			"HashMap can only be used for storage variables", def.Return).Build()
	}
	return t, nil
}
