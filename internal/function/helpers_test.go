package function

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/folding"
	"sigil/internal/parser"
	"sigil/internal/stdlib"
	"sigil/internal/types"
)

// selfT is the type of "self": it cannot receive external calls.
type selfT struct{}

func (selfT) String() string              { return "self" }
func (selfT) ABIType() string             { return "" }
func (selfT) Compare(types.Type) bool     { return false }
func (selfT) StorageSlots() int           { return 0 }
func (selfT) SupportsExternalCalls() bool { return false }

// testContext is a minimal stand-in for the semantic analyzer.
type testContext struct {
	registry *types.TypeRegistry
	source   string
	names    map[string]types.Type
}

func newTestContext(source string) *testContext {
	return &testContext{
		registry: types.NewTypeRegistry(),
		source:   source,
		names:    map[string]types.Type{"self": selfT{}},
	}
}

func (c *testContext) ResolveType(te *ast.TypeExpr) (types.Type, error) {
	t, err := c.registry.Resolve(te)
	if err != nil {
		re := err.(*types.ResolveError)
		return nil, errors.At(errors.ErrorUnknownType, re.Message, re.Node).Build()
	}
	return t, nil
}

func (c *testContext) IsKwargable(expr ast.Expr) bool {
	return folding.NewFolder(nil).IsConstant(expr) || stdlib.IsEnvironmentConstant(expr)
}

func (c *testContext) TypeOf(expr ast.Expr) (types.Type, error) {
	switch e := ast.Unparen(expr).(type) {
	case *ast.IntLit:
		return types.Uint256, nil
	case *ast.UnaryExpr:
		if e.Op == "not" {
			return types.Bool, nil
		}
		return types.Uint256, nil
	case *ast.BinaryExpr:
		switch e.Op {
		case "==", "!=", "<", "<=", ">", ">=", "and", "or":
			return types.Bool, nil
		}
		return types.Uint256, nil
	case *ast.BoolLit:
		return types.Bool, nil
	case *ast.StrLit:
		return types.StringT{MaxLen: len(e.Value)}, nil
	case *ast.NameExpr:
		if t, ok := c.names[e.Name]; ok {
			return t, nil
		}
		return nil, errors.UndefinedName(e.Name, e, nil)
	case *ast.AttributeExpr:
		if m, ok := stdlib.LookupMember(e); ok {
			return m.Type, nil
		}
	}
	return nil, errors.At(errors.ErrorTypeMismatch, "unsupported expression in test", expr).Build()
}

func (c *testContext) ValidateExpectedType(expr ast.Expr, expected types.Type) error {
	if it, ok := expected.(types.IntegerT); ok {
		if v, err := folding.NewFolder(nil).Fold(expr); err == nil && v.Kind == folding.KindInt {
			if !v.FitsType(it) {
				return errors.At(errors.ErrorInvalidLiteral, fmt.Sprintf("%s out of range for %s", v, it), expr).Build()
			}
			return nil
		}
	}
	actual, err := c.TypeOf(expr)
	if err != nil {
		return err
	}
	if !expected.Compare(actual) {
		return errors.TypeMismatch(expected.String(), actual.String(), expr)
	}
	return nil
}

func (c *testContext) SourceText(node ast.Node) string {
	return ast.SourceText(c.source, node)
}

func parseModule(t *testing.T, source string) *ast.Module {
	t.Helper()
	module, parseErrs, scanErrs := parser.ParseSource("test.sg", source)
	require.Empty(t, scanErrs)
	require.Empty(t, parseErrs)
	return module
}

// firstFunction parses source and returns its first function definition.
func firstFunction(t *testing.T, source string) *ast.FunctionDef {
	t.Helper()
	for _, item := range parseModule(t, source).Items {
		if fn, ok := item.(*ast.FunctionDef); ok {
			return fn
		}
	}
	t.Fatal("no function in source")
	return nil
}

func declare(t *testing.T, source string) (*Signature, error) {
	t.Helper()
	return FromFunctionDef(firstFunction(t, source), newTestContext(source))
}

func mustDeclare(t *testing.T, source string) *Signature {
	t.Helper()
	sig, err := declare(t, source)
	require.NoError(t, err)
	return sig
}

func requireCode(t *testing.T, err error, code string) errors.CompilerError {
	t.Helper()
	require.Error(t, err)
	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok, "expected a compiler error, got %v", err)
	require.Equal(t, code, ce.Code, ce.Message)
	return ce
}
