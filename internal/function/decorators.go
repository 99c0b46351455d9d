package function

import (
	"fmt"
	"sort"

	"sigil/internal/ast"
	"sigil/internal/errors"
)

type decoratorKind int

const (
	visibilityDecorator decoratorKind = iota
	mutabilityDecorator
	lockDecorator
)

// decorator is one classified "@..." annotation.
type decorator struct {
	kind       decoratorKind
	node       *ast.Decorator
	visibility Visibility
	mutability StateMutability
	key        string
}

var visibilityNames = map[string]Visibility{
	"external": EXTERNAL,
	"internal": INTERNAL,
}

const nonreentrantName = "nonreentrant"

// DecoratorNames lists every accepted decorator name, sorted.
func DecoratorNames() []string {
	names := []string{nonreentrantName}
	for n := range visibilityNames {
		names = append(names, n)
	}
	for n := range mutabilityNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// classifyDecorator sorts a decorator into its category, rejecting unknown
// names and call-form mismatches.
func classifyDecorator(d *ast.Decorator) (decorator, error) {
	name := d.Name.Value

	if d.Call {
		if name != nonreentrantName {
			return decorator{}, errors.At(errors.ErrorDecoratorSyntax,
				fmt.Sprintf("decorator '@%s' is not callable", name), d).Build()
		}
		if len(d.Args) != 1 {
			return decorator{}, lockKeyError(d)
		}
		lit, ok := d.Args[0].(*ast.StrLit)
		if !ok {
			return decorator{}, lockKeyError(d)
		}
		if !isIdentifier(lit.Value) {
			return decorator{}, errors.At(errors.ErrorInvalidReentrancy,
				fmt.Sprintf("'%s' is not a valid re-entrancy key", lit.Value), lit).
				WithHelp("keys follow identifier rules: a letter or '_' followed by letters, digits or '_'").
				Build()
		}
		return decorator{kind: lockDecorator, node: d, key: lit.Value}, nil
	}

	if v, ok := visibilityNames[name]; ok {
		return decorator{kind: visibilityDecorator, node: d, visibility: v}, nil
	}
	if m, ok := ParseStateMutability(name); ok {
		return decorator{kind: mutabilityDecorator, node: d, mutability: m}, nil
	}
	if name == nonreentrantName {
		return decorator{}, errors.At(errors.ErrorDecoratorSyntax,
			"@nonreentrant requires a key", d).
			WithSuggestion(`use @nonreentrant("lock")`).
			Build()
	}

	return decorator{}, errors.At(errors.ErrorUnknownDecorator,
		fmt.Sprintf("unknown decorator: @%s", name), d).
		WithNote("valid decorators are @external, @internal, @pure, @view, @nonpayable, @payable and @nonreentrant(\"key\")").
		Build()
}

func lockKeyError(d *ast.Decorator) error {
	return errors.At(errors.ErrorDecoratorSyntax,
		"@nonreentrant name must be given as a single string literal", d).Build()
}

// parseDecorators classifies every decorator of def and then checks the
// count of each category. A missing mutability defaults to nonpayable.
func parseDecorators(def *ast.FunctionDef) (Visibility, StateMutability, string, error) {
	var vis, mut, lock []decorator
	for _, d := range def.Decorators {
		c, err := classifyDecorator(d)
		if err != nil {
			return 0, 0, "", err
		}
		switch c.kind {
		case visibilityDecorator:
			vis = append(vis, c)
		case mutabilityDecorator:
			mut = append(mut, c)
		case lockDecorator:
			lock = append(lock, c)
		}
	}

	if len(vis) > 1 {
		return 0, 0, "", errors.At(errors.ErrorDuplicateDecorator,
			fmt.Sprintf("visibility is already set to: %s", vis[0].visibility), vis[1].node).Build()
	}
	if len(mut) > 1 {
		return 0, 0, "", errors.At(errors.ErrorDuplicateDecorator,
			fmt.Sprintf("mutability is already set to: %s", mut[0].mutability), mut[1].node).Build()
	}
	if len(lock) > 1 {
		return 0, 0, "", errors.At(errors.ErrorDuplicateDecorator,
			fmt.Sprintf("nonreentrant decorator is already set with key: %s", lock[0].key), lock[1].node).Build()
	}

	if len(vis) == 0 {
		return 0, 0, "", errors.At(errors.ErrorMissingVisibility,
			fmt.Sprintf("function '%s' has no visibility", def.Name.Value), &def.Name).
			WithSuggestion("add @external or @internal").
			Build()
	}

	visibility := vis[0].visibility
	mutability := NONPAYABLE
	if len(mut) == 1 {
		mutability = mut[0].mutability
	}

	key := ""
	if len(lock) == 1 {
		key = lock[0].key
		if def.Name.Value == ConstructorName {
			return 0, 0, "", errors.At(errors.ErrorInvalidReentrancy,
				"nonreentrant decorator disallowed on constructor", lock[0].node).Build()
		}
		if mutability == PURE {
			return 0, 0, "", errors.At(errors.ErrorInvalidReentrancy,
				"cannot use re-entrancy guard on pure functions", lock[0].node).Build()
		}
	}

	return visibility, mutability, key, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
