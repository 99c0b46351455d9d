package parser

import "sigil/internal/ast"

// ParseSource scans and parses one source file.
func ParseSource(path string, source string) (*ast.Module, []ParseError, []ScanError) {
	scanner := NewScanner(source)
	tokens := scanner.ScanTokens()

	parser := NewParser(path, tokens)
	module := parser.ParseModule()
	module.Path = path
	module.Source = source

	return module, parser.errors, scanner.errors
}
