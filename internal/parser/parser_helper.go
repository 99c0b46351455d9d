package parser

import (
	"fmt"

	"sigil/internal/ast"
)

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	if p.isAtEnd() {
		return tt == EOF
	}
	return p.peek().Type == tt
}

func (p *Parser) checkNext(tt TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == tt
}

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// consume returns the expected token, or records an error and returns an
// ILLEGAL token without moving past the offending one.
func (p *Parser) consume(tt TokenType, message string) Token {
	if p.check(tt) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	return Token{Type: ILLEGAL, Position: p.peek().Position}
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) errorAtCurrent(message string) {
	tok := p.peek()
	found := tok.Lexeme
	if tok.Type == EOF {
		found = "end of file"
	}
	length := len(tok.Lexeme)
	if length == 0 {
		length = 1
	}
	p.errors = append(p.errors, ParseError{
		Message:  fmt.Sprintf("%s, found '%s'", message, found),
		Position: tok.Position,
		Length:   length,
	})
}

func (p *Parser) makePos(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Position.Offset,
		Line:     tok.Position.Line,
		Column:   tok.Position.Column,
	}
}

func (p *Parser) makeEndPos(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Position.Offset + len(tok.Lexeme),
		Line:     tok.Position.Line,
		Column:   tok.Position.Column + len(tok.Lexeme),
	}
}

// prevEnd is the end position of the last consumed token.
func (p *Parser) prevEnd() ast.Position {
	return p.makeEndPos(p.previous())
}

// synchronize skips to the end of the current statement.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.match(SEMICOLON) {
			return
		}
		switch p.peek().Type {
		case RIGHT_BRACE, RETURN, IF, FOR, PASS, BREAK, CONTINUE, ASSERT:
			return
		}
		p.advance()
	}
}

// synchronizeTopLevel skips to the next token that can start a declaration.
func (p *Parser) synchronizeTopLevel() {
	depth := 0
	for !p.isAtEnd() {
		switch p.peek().Type {
		case LEFT_BRACE:
			depth++
		case RIGHT_BRACE:
			depth--
			if depth <= 0 {
				p.advance()
				return
			}
		case AT, FN, IMPORT, INTERFACE, IMPLEMENTS:
			if depth <= 0 {
				return
			}
		}
		p.advance()
	}
}

// makeIdent creates an ast.Ident from a token
func (p *Parser) makeIdent(tok Token) ast.Ident {
	return ast.Ident{
		Pos:    p.makePos(tok),
		EndPos: p.makeEndPos(tok),
		Value:  tok.Lexeme,
	}
}

// consumeIdent consumes an identifier token and returns an ast.Ident
func (p *Parser) consumeIdent(message string) (ast.Ident, bool) {
	tok := p.consume(IDENTIFIER, message)
	if tok.Type == ILLEGAL {
		return ast.Ident{Value: "error"}, false
	}
	return p.makeIdent(tok), true
}
