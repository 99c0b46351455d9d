package function

import (
	"fmt"
	"regexp"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/types"
)

// ExprChecker is the expression type checker used to validate call
// arguments.
type ExprChecker interface {
	TypeOf(expr ast.Expr) (types.Type, error)
	ValidateExpectedType(expr ast.Expr, expected types.Type) error
	SourceText(node ast.Node) string
}

// KwargSettings describes one call-site option.
type KwargSettings struct {
	Name           string
	Type           types.Type
	RequireLiteral bool
}

// CallSiteKwargs returns the options accepted by external calls to s, in
// declaration order.
func (s *Signature) CallSiteKwargs() []KwargSettings {
	return []KwargSettings{
		{Name: "gas", Type: types.Uint256},
		{Name: "value", Type: types.Uint256},
		{Name: "skip_contract_check", Type: types.Bool, RequireLiteral: true},
		{Name: "default_return_value", Type: s.Return},
	}
}

func (s *Signature) callSiteKwarg(name string) (KwargSettings, bool) {
	for _, k := range s.CallSiteKwargs() {
		if k.Name == name {
			return k, true
		}
	}
	return KwargSettings{}, false
}

// FetchCallReturn validates call against s and returns the type the call
// evaluates to, nil for functions without a return value. call.Func must be
// an attribute access ("self.f", "lib.f" or "token.f").
func (s *Signature) FetchCallReturn(call *ast.CallExpr, checker ExprChecker) (types.Type, error) {
	attr, ok := call.Func.(*ast.AttributeExpr)
	if !ok {
		return nil, errors.CompilerPanic("call to %s without a receiver", s.QualifiedName())
	}

	receiver, err := checker.TypeOf(attr.Value)
	if err != nil {
		return nil, err
	}
	if s.IsExternal() && !receiver.SupportsExternalCalls() {
		return nil, errors.At(errors.ErrorCallViolation, "cannot call external functions via 'self' or via library", call).
			WithSuggestion(fmt.Sprintf("mark '%s' @internal, or call it through an interface", s.Name)).
			Build()
	}

	// keyword parameters may be given by name; external calls also take
	// the call-site options
	allowed := make([]string, 0, s.NKeyword()+len(SpecialKwargs))
	for _, k := range s.Keyword {
		allowed = append(allowed, k.Name)
	}
	if !s.IsInternal() {
		allowed = append(allowed, SpecialKwargs...)
	}

	count := len(call.Args)
	given := make(map[string]bool)
	for _, kw := range call.Keywords {
		name := kw.Name.Value
		if given[name] {
			return nil, errors.At(errors.ErrorArgumentCount,
				fmt.Sprintf("keyword argument '%s' repeated", name), kw).Build()
		}
		given[name] = true

		if idx := s.keywordIndex(name); idx >= 0 {
			if s.NPositional()+idx < len(call.Args) {
				return nil, errors.At(errors.ErrorArgumentCount,
					fmt.Sprintf("'%s' given both positionally and by keyword", name), kw).Build()
			}
			count++
			continue
		}
		if !s.IsInternal() && isSpecialKwarg(name) {
			continue
		}
		return nil, errors.UnknownKeyword(name, allowed, RemoveKwargHint(call, kw, checker), kw)
	}

	if len(call.Args) < s.NPositional() && count >= s.NPositional() {
		return nil, errors.At(errors.ErrorArgumentCount,
			fmt.Sprintf("invalid argument count for call to '%s': expected %d positional arguments, got %d",
				s.QualifiedName(), s.NPositional(), len(call.Args)),
			call).Build()
	}
	if count < s.NPositional() || count > s.NTotal() {
		return nil, errors.ArgumentCount(s.QualifiedName(), s.NPositional(), s.NTotal(), count, call)
	}

	if s.Mutability < PAYABLE {
		if kw := keyword(call, "value"); kw != nil {
			return nil, errors.NonPayable(s.Name, kw)
		}
	}

	argTypes := s.ArgumentTypes()
	for i, arg := range call.Args {
		if err := checker.ValidateExpectedType(arg, argTypes[i]); err != nil {
			return nil, err
		}
	}

	for _, kw := range call.Keywords {
		name := kw.Name.Value
		if idx := s.keywordIndex(name); idx >= 0 {
			if err := checker.ValidateExpectedType(kw.Value, s.Keyword[idx].Type); err != nil {
				return nil, err
			}
			continue
		}

		settings, _ := s.callSiteKwarg(name)
		if name == "default_return_value" && s.Return == nil {
			return nil, errors.At(errors.ErrorCallViolation,
				fmt.Sprintf("`%s=` specified but %s() does not return anything", name, s.Name), kw.Value).Build()
		}
		if err := checker.ValidateExpectedType(kw.Value, settings.Type); err != nil {
			return nil, err
		}
		if settings.RequireLiteral && !ast.IsLiteral(kw.Value) {
			return nil, errors.LiteralRequired(name, kw.Value)
		}
	}

	return s.Return, nil
}

func keyword(call *ast.CallExpr, name string) *ast.Keyword {
	for _, kw := range call.Keywords {
		if kw.Name.Value == name {
			return kw
		}
	}
	return nil
}

// RemoveKwargHint rewrites the call source so that "kw=value" reads "value".
// It returns "" when the source cannot be rewritten.
func RemoveKwargHint(call *ast.CallExpr, kw *ast.Keyword, checker ExprChecker) string {
	source := checker.SourceText(call)
	value := checker.SourceText(kw.Value)
	if source == "" || value == "" {
		return ""
	}
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw.Name.Value) + `\s*=\s*` + regexp.QuoteMeta(value))
	modified := pattern.ReplaceAllLiteralString(source, value)
	if modified == source {
		return ""
	}
	return modified
}
