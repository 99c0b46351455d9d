package parser

import (
	"sigil/internal/ast"
)

type Parser struct {
	filename string
	tokens   []Token
	current  int
	errors   []ParseError
}

type ParseError struct {
	Message  string
	Position Position
	Length   int
}

func NewParser(filename string, tokens []Token) *Parser {
	return &Parser{filename: filename, tokens: tokens}
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// ParseModule parses a whole source file. It always returns a module; items
// that failed to parse are dropped and reported through Errors.
func (p *Parser) ParseModule() *ast.Module {
	start := p.peek()
	module := &ast.Module{Pos: p.makePos(start)}

	for !p.isAtEnd() {
		before := p.current
		if item := p.parseModuleItem(); item != nil {
			module.Items = append(module.Items, item)
		}
		if p.current == before {
			p.advance()
		}
	}

	module.EndPos = p.makePos(p.peek())
	return module
}

func (p *Parser) parseModuleItem() ast.ModuleItem {
	switch {
	case p.check(IMPORT):
		if imp := p.parseImport(); imp != nil {
			return imp
		}
	case p.check(IMPLEMENTS):
		if impl := p.parseImplements(); impl != nil {
			return impl
		}
	case p.check(INTERFACE):
		if iface := p.parseInterface(); iface != nil {
			return iface
		}
	case p.check(AT), p.check(FN):
		if fn := p.parseFunction(); fn != nil {
			return fn
		}
	case p.check(IDENTIFIER):
		if v := p.parseVariable(); v != nil {
			return v
		}
	default:
		p.errorAtCurrent("expected declaration: import, interface, implements, variable or function")
		p.synchronizeTopLevel()
	}
	return nil
}
