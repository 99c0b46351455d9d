package parser

import (
	"strconv"

	"sigil/internal/ast"
)

const precComparison = 3

var binaryPrecedence = map[TokenType]int{
	OR:  1,
	AND: 2,
	EQUAL_EQUAL: precComparison, BANG_EQUAL: precComparison,
	LESS: precComparison, LESS_EQUAL: precComparison,
	GREATER: precComparison, GREATER_EQUAL: precComparison,
	PLUS: 4, MINUS: 4,
	STAR: 5, SLASH: 5, PERCENT: 5,
	STAR_STAR: 6,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parsePrattExpr(0)
}

func (p *Parser) parsePrattExpr(minPrec int) ast.Expr {
	expr := p.parsePrefixExpr()

	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()

		// '**' is right associative
		next := prec + 1
		if tok.Type == STAR_STAR {
			next = prec
		}
		right := p.parsePrattExpr(next)

		expr = &ast.BinaryExpr{
			Pos:    expr.NodePos(),
			EndPos: right.NodeEndPos(),
			Op:     tok.Lexeme,
			Left:   expr,
			Right:  right,
		}
	}

	return expr
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	if p.match(NOT) {
		op := p.previous()
		value := p.parsePrattExpr(precComparison)
		return &ast.UnaryExpr{
			Pos:     p.makePos(op),
			EndPos:  value.NodeEndPos(),
			Op:      "not",
			Operand: value,
		}
	}

	if p.match(MINUS) {
		op := p.previous()
		value := p.parsePrefixExpr()
		return &ast.UnaryExpr{
			Pos:     p.makePos(op),
			EndPos:  value.NodeEndPos(),
			Op:      "-",
			Operand: value,
		}
	}

	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixExpr(expr ast.Expr) ast.Expr {
	if _, bad := expr.(*ast.BadExpr); bad {
		return expr
	}

	for {
		if p.match(DOT) {
			field, ok := p.consumeIdent("expected member name after '.'")
			if !ok {
				return &ast.BadExpr{Pos: expr.NodePos(), EndPos: p.prevEnd(), Message: "expected member name"}
			}
			expr = &ast.AttributeExpr{
				Pos:    expr.NodePos(),
				EndPos: field.EndPos,
				Value:  expr,
				Attr:   field,
			}
		} else if p.match(LEFT_PAREN) {
			call := &ast.CallExpr{Pos: expr.NodePos(), Func: expr}
			p.parseCallArgs(call)
			end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
			if end.Type == ILLEGAL {
				return &ast.BadExpr{Pos: expr.NodePos(), EndPos: p.prevEnd(), Message: "unterminated call"}
			}
			call.EndPos = p.makeEndPos(end)
			expr = call
		} else if p.match(LEFT_BRACKET) {
			index := p.parseExpr()
			end := p.consume(RIGHT_BRACKET, "expected ']' after index")
			expr = &ast.SubscriptExpr{
				Pos:    expr.NodePos(),
				EndPos: p.makeEndPos(end),
				Value:  expr,
				Index:  index,
			}
		} else {
			return expr
		}
	}
}

// parseCallArgs fills positional and keyword arguments up to the closing paren.
func (p *Parser) parseCallArgs(call *ast.CallExpr) {
	if p.check(RIGHT_PAREN) {
		return
	}

	for {
		if p.check(IDENTIFIER) && p.checkNext(EQUAL) {
			nameTok := p.advance()
			p.advance() // '='
			value := p.parseExpr()
			call.Keywords = append(call.Keywords, &ast.Keyword{
				Pos:    p.makePos(nameTok),
				EndPos: value.NodeEndPos(),
				Name:   p.makeIdent(nameTok),
				Value:  value,
			})
		} else {
			if len(call.Keywords) > 0 {
				p.errorAtCurrent("positional argument follows keyword argument")
			}
			call.Args = append(call.Args, p.parseExpr())
		}

		if !p.match(COMMA) || p.check(RIGHT_PAREN) {
			return
		}
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.peek()

	switch {
	case p.match(NUMBER, HEX_NUMBER):
		return &ast.IntLit{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: tok.Lexeme}

	case p.match(STRING):
		value, err := strconv.Unquote(tok.Lexeme)
		if err != nil {
			value = tok.Lexeme[1 : len(tok.Lexeme)-1]
		}
		return &ast.StrLit{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: value}

	case p.match(TRUE, FALSE):
		return &ast.BoolLit{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: tok.Type == TRUE}

	case p.match(IDENTIFIER):
		return &ast.NameExpr{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Name: tok.Lexeme}

	case p.match(LEFT_PAREN):
		inner := p.parseExpr()
		end := p.consume(RIGHT_PAREN, "expected ')'")
		return &ast.ParenExpr{Pos: p.makePos(tok), EndPos: p.makeEndPos(end), Value: inner}

	case p.match(LEFT_BRACKET):
		list := &ast.ListExpr{Pos: p.makePos(tok)}
		for !p.check(RIGHT_BRACKET) && !p.isAtEnd() {
			list.Elements = append(list.Elements, p.parseExpr())
			if !p.match(COMMA) {
				break
			}
		}
		end := p.consume(RIGHT_BRACKET, "expected ']' after list elements")
		list.EndPos = p.makeEndPos(end)
		return list
	}

	p.errorAtCurrent("unexpected token in expression")
	return &ast.BadExpr{
		Pos:     p.makePos(tok),
		EndPos:  p.makeEndPos(tok),
		Message: "unexpected token in expression: " + tok.Lexeme,
	}
}
