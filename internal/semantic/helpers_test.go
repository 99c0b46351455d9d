package semantic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/function"
	"sigil/internal/parser"
)

// mapImporter serves library modules from memory.
type mapImporter map[string]string

func (m mapImporter) Import(name string) (*ast.Module, error) {
	source, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no file for %s", name)
	}
	module, parseErrs, scanErrs := parser.ParseSource(name+".sg", source)
	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		return nil, errors.NewSemanticError(errors.ErrorSyntax, "parse failure in "+name, ast.Position{}).Build()
	}
	module.Name = name
	return module, nil
}

func parse(t *testing.T, source string) *ast.Module {
	t.Helper()
	module, parseErrs, scanErrs := parser.ParseSource("test.sg", source)
	require.Empty(t, scanErrs)
	require.Empty(t, parseErrs)
	return module
}

func analyzeWith(t *testing.T, importer Importer, source string) (*Program, error) {
	t.Helper()
	return NewAnalyzer(importer).Analyze(parse(t, source))
}

func analyze(t *testing.T, source string) (*Program, error) {
	t.Helper()
	return analyzeWith(t, nil, source)
}

func mustAnalyze(t *testing.T, source string) *Program {
	t.Helper()
	p, err := analyze(t, source)
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, err error, code string) errors.CompilerError {
	t.Helper()
	require.Error(t, err)
	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok, "expected a compiler error, got %v", err)
	require.Equal(t, code, ce.Code, ce.Message)
	return ce
}

func names(sigs []*function.Signature) []string {
	out := make([]string, len(sigs))
	for i, s := range sigs {
		out[i] = s.Name
	}
	return out
}
