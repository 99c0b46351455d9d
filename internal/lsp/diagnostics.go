package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sigil/internal/ast"
	"sigil/internal/errors"
	"sigil/internal/parser"
)

const (
	sourceScanner  = "sigil-scanner"
	sourceParser   = "sigil-parser"
	sourceCompiler = "sigil"
)

// ConvertParseErrors transforms parser errors into LSP diagnostics.
func ConvertParseErrors(parseErrors []parser.ParseError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range parseErrors {
		diagnostics = append(diagnostics, diagnostic(e.Position.Line, e.Position.Column, e.Length, sourceParser, nil, e.Message))
	}
	return diagnostics
}

// ConvertScanErrors transforms scanner errors such as unterminated strings
// into LSP diagnostics.
func ConvertScanErrors(scanErrors []parser.ScanError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	for _, e := range scanErrors {
		diagnostics = append(diagnostics, diagnostic(e.Position.Line, e.Position.Column, e.Length, sourceScanner, nil, e.Message))
	}
	return diagnostics
}

// ConvertError turns a compilation error for the document at path into a
// diagnostic. Errors raised inside an imported module are reported at the
// start of the document.
func ConvertError(path string, err error) protocol.Diagnostic {
	ce, ok := errors.AsCompilerError(err)
	if !ok {
		return diagnostic(1, 1, 1, sourceCompiler, nil, err.Error())
	}

	code := protocol.IntegerOrString{Value: ce.Code}
	if ce.Position.Filename != "" && ce.Position.Filename != path {
		return diagnostic(1, 1, 1, sourceCompiler, &code, ce.Position.Filename+": "+ce.Message)
	}
	return diagnostic(ce.Position.Line, ce.Position.Column, ce.Length, sourceCompiler, &code, ce.Message)
}

func diagnostic(line, column, length int, source string, code *protocol.IntegerOrString, message string) protocol.Diagnostic {
	start := toPosition(ast.Position{Line: line, Column: column})
	if length < 1 {
		length = 1
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: start,
			End:   protocol.Position{Line: start.Line, Character: start.Character + uint32(length)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Code:     code,
		Source:   ptrString(source),
		Message:  message,
	}
}

// toPosition converts a 1-based source position to the 0-based LSP form.
func toPosition(pos ast.Position) protocol.Position {
	line, column := pos.Line-1, pos.Column-1
	if line < 0 {
		line = 0
	}
	if column < 0 {
		column = 0
	}
	return protocol.Position{Line: uint32(line), Character: uint32(column)}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
