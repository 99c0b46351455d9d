package parser

import "sigil/internal/ast"

func (p *Parser) parseBlock() *ast.Block {
	start := p.consume(LEFT_BRACE, "expected '{'")
	block := &ast.Block{Pos: p.makePos(start)}

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		before := p.current
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.current == before {
			p.advance()
		}
	}

	end := p.consume(RIGHT_BRACE, "expected '}' to close block")
	if end.Type == ILLEGAL {
		block.EndPos = p.prevEnd()
	} else {
		block.EndPos = p.makeEndPos(end)
	}
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.peek().Type {
	case RETURN:
		return p.parseReturnStmt()
	case IF:
		return p.parseIfStmt()
	case FOR:
		if stmt := p.parseForStmt(); stmt != nil {
			return stmt
		}
		return nil
	case PASS:
		tok := p.advance()
		end := p.consume(SEMICOLON, "expected ';' after 'pass'")
		return &ast.PassStmt{Pos: p.makePos(tok), EndPos: p.makeEndPos(end)}
	case BREAK:
		tok := p.advance()
		end := p.consume(SEMICOLON, "expected ';' after 'break'")
		return &ast.BreakStmt{Pos: p.makePos(tok), EndPos: p.makeEndPos(end)}
	case CONTINUE:
		tok := p.advance()
		end := p.consume(SEMICOLON, "expected ';' after 'continue'")
		return &ast.ContinueStmt{Pos: p.makePos(tok), EndPos: p.makeEndPos(end)}
	case ASSERT:
		return p.parseAssertStmt()
	case LEFT_BRACE:
		return p.parseBlock()
	case IDENTIFIER:
		if p.checkNext(COLON) {
			return p.parseDeclStmt()
		}
	}
	return p.parseSimpleStmt()
}

func (p *Parser) parseDeclStmt() ast.Stmt {
	nameTok := p.advance()
	p.advance() // ':'
	decl := &ast.DeclStmt{
		Pos:  p.makePos(nameTok),
		Name: p.makeIdent(nameTok),
		Type: p.parseType(),
	}
	if p.match(EQUAL) {
		decl.Value = p.parseExpr()
	}
	if p.consume(SEMICOLON, "expected ';' after variable declaration").Type == ILLEGAL {
		p.synchronize()
	}
	decl.EndPos = p.prevEnd()
	return decl
}

// parseSimpleStmt parses an assignment or an expression statement.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	expr := p.parseExpr()
	if _, bad := expr.(*ast.BadExpr); bad {
		p.synchronize()
		return nil
	}

	if isAssignOperator(p.peek()) {
		opTok := p.advance()
		value := p.parseExpr()
		if p.consume(SEMICOLON, "expected ';' after assignment").Type == ILLEGAL {
			p.synchronize()
		}
		return &ast.AssignStmt{
			Pos:    expr.NodePos(),
			EndPos: p.prevEnd(),
			Target: expr,
			Op:     assignOpFromToken(opTok),
			Value:  value,
		}
	}

	if p.consume(SEMICOLON, "expected ';' after expression").Type == ILLEGAL {
		p.synchronize()
	}
	return &ast.ExprStmt{
		Pos:    expr.NodePos(),
		EndPos: p.prevEnd(),
		Expr:   expr,
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.advance()
	stmt := &ast.ReturnStmt{Pos: p.makePos(start)}
	if !p.check(SEMICOLON) {
		stmt.Value = p.parseExpr()
	}
	if p.consume(SEMICOLON, "expected ';' after return statement").Type == ILLEGAL {
		p.synchronize()
	}
	stmt.EndPos = p.prevEnd()
	return stmt
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance()
	stmt := &ast.IfStmt{Pos: p.makePos(start)}
	stmt.Cond = p.parseExpr()
	stmt.Then = p.parseBlock()

	if p.match(ELSE) {
		if p.check(IF) {
			nested := p.parseIfStmt()
			stmt.Else = &ast.Block{
				Pos:    nested.Pos,
				EndPos: nested.EndPos,
				Stmts:  []ast.Stmt{nested},
			}
		} else {
			stmt.Else = p.parseBlock()
		}
	}

	stmt.EndPos = p.prevEnd()
	return stmt
}

// parseForStmt parses "for x[: T] in iter { ... }"
func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.advance()
	stmt := &ast.ForStmt{Pos: p.makePos(start)}

	target, ok := p.consumeIdent("expected loop variable after 'for'")
	if !ok {
		p.synchronize()
		return nil
	}
	stmt.Target = target
	if p.match(COLON) {
		stmt.TargetType = p.parseType()
	}

	if p.consume(IN, "expected 'in' after loop variable").Type == ILLEGAL {
		p.synchronize()
		return nil
	}
	stmt.Iter = p.parseExpr()
	stmt.Body = p.parseBlock()
	stmt.EndPos = stmt.Body.EndPos
	return stmt
}

func (p *Parser) parseAssertStmt() *ast.AssertStmt {
	start := p.advance()
	stmt := &ast.AssertStmt{Pos: p.makePos(start)}
	stmt.Test = p.parseExpr()
	if p.match(COMMA) {
		stmt.Msg = p.parseExpr()
	}
	if p.consume(SEMICOLON, "expected ';' after assert statement").Type == ILLEGAL {
		p.synchronize()
	}
	stmt.EndPos = p.prevEnd()
	return stmt
}

func isAssignOperator(tok Token) bool {
	switch tok.Type {
	case EQUAL, PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, SLASH_EQUAL, PERCENT_EQUAL:
		return true
	default:
		return false
	}
}

func assignOpFromToken(tok Token) ast.AssignType {
	switch tok.Type {
	case EQUAL:
		return ast.ASSIGN
	case PLUS_EQUAL:
		return ast.PLUS_ASSIGN
	case MINUS_EQUAL:
		return ast.MINUS_ASSIGN
	case STAR_EQUAL:
		return ast.STAR_ASSIGN
	case SLASH_EQUAL:
		return ast.SLASH_ASSIGN
	case PERCENT_EQUAL:
		return ast.PERCENT_ASSIGN
	default:
		return ast.ILLEGAL_ASSIGN
	}
}
