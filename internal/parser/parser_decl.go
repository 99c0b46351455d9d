package parser

import "sigil/internal/ast"

func (p *Parser) parseImport() *ast.Import {
	start := p.consume(IMPORT, "expected 'import'")

	first, ok := p.consumeIdent("expected module name after 'import'")
	if !ok {
		p.synchronizeTopLevel()
		return nil
	}
	path := []ast.Ident{first}
	for p.match(DOT) {
		part, ok := p.consumeIdent("expected module name after '.'")
		if !ok {
			p.synchronizeTopLevel()
			return nil
		}
		path = append(path, part)
	}

	var alias *ast.Ident
	if p.match(AS) {
		name, ok := p.consumeIdent("expected alias after 'as'")
		if !ok {
			p.synchronizeTopLevel()
			return nil
		}
		alias = &name
	}

	end := p.consume(SEMICOLON, "expected ';' after import")
	if end.Type == ILLEGAL {
		p.synchronizeTopLevel()
		return nil
	}

	return &ast.Import{
		Pos:    p.makePos(start),
		EndPos: p.makeEndPos(end),
		Path:   path,
		Alias:  alias,
	}
}

func (p *Parser) parseImplements() *ast.Implements {
	start := p.consume(IMPLEMENTS, "expected 'implements'")
	p.consume(COLON, "expected ':' after 'implements'")
	name, ok := p.consumeIdent("expected interface name")
	if !ok {
		p.synchronizeTopLevel()
		return nil
	}
	end := p.consume(SEMICOLON, "expected ';' after implements declaration")
	return &ast.Implements{
		Pos:       p.makePos(start),
		EndPos:    p.makeEndPos(end),
		Interface: name,
	}
}

func (p *Parser) parseInterface() *ast.InterfaceDef {
	start := p.consume(INTERFACE, "expected 'interface'")
	name, ok := p.consumeIdent("expected interface name")
	if !ok {
		p.synchronizeTopLevel()
		return nil
	}
	if p.consume(LEFT_BRACE, "expected '{' after interface name").Type == ILLEGAL {
		p.synchronizeTopLevel()
		return nil
	}

	iface := &ast.InterfaceDef{Pos: p.makePos(start), Name: name}
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		before := p.current
		if fn := p.parseInterfaceFunction(); fn != nil {
			iface.Functions = append(iface.Functions, fn)
		}
		if p.current == before {
			p.advance()
		}
	}

	end := p.consume(RIGHT_BRACE, "expected '}' to close interface")
	iface.EndPos = p.makeEndPos(end)
	return iface
}

// parseInterfaceFunction parses "fn name(params) -> T: mutability;"
func (p *Parser) parseInterfaceFunction() *ast.FunctionDef {
	start := p.consume(FN, "expected 'fn' in interface body")
	if start.Type == ILLEGAL {
		p.synchronize()
		return nil
	}
	name, ok := p.consumeIdent("expected function name")
	if !ok {
		p.synchronize()
		return nil
	}

	params := p.parseParams()
	ret := p.parseReturnType()

	p.consume(COLON, "expected ':' and a mutability after interface function")
	mut, ok := p.consumeIdent("expected mutability")
	if !ok {
		p.synchronize()
		return nil
	}
	end := p.consume(SEMICOLON, "expected ';' after interface function")

	return &ast.FunctionDef{
		Pos:        p.makePos(start),
		EndPos:     p.makeEndPos(end),
		Name:       name,
		Params:     params,
		Return:     ret,
		Mutability: &mut,
	}
}

// parseVariable parses "name: T;", "name: public(T);" and "NAME: constant(T) = e;"
func (p *Parser) parseVariable() *ast.VariableDecl {
	nameTok := p.advance()
	name := p.makeIdent(nameTok)

	if p.consume(COLON, "expected ':' after variable name").Type == ILLEGAL {
		p.synchronizeTopLevel()
		return nil
	}

	decl := &ast.VariableDecl{Pos: p.makePos(nameTok), Name: name}
	if p.check(IDENTIFIER) && p.checkNext(LEFT_PAREN) {
		switch p.peek().Lexeme {
		case "public":
			decl.Public = true
		case "constant":
			decl.Constant = true
		default:
			p.errorAtCurrent("expected 'public' or 'constant'")
			p.synchronizeTopLevel()
			return nil
		}
		p.advance()
		p.advance()
		decl.Type = p.parseType()
		p.consume(RIGHT_PAREN, "expected ')' after wrapped type")
	} else {
		decl.Type = p.parseType()
	}

	if p.match(EQUAL) {
		decl.Value = p.parseExpr()
	}

	end := p.consume(SEMICOLON, "expected ';' after variable declaration")
	if end.Type == ILLEGAL {
		p.synchronizeTopLevel()
	}
	decl.EndPos = p.prevEnd()
	return decl
}

func (p *Parser) parseFunction() *ast.FunctionDef {
	startTok := p.peek()

	var decorators []*ast.Decorator
	for p.check(AT) {
		decorators = append(decorators, p.parseDecorator())
	}

	if p.consume(FN, "expected 'fn' after decorators").Type == ILLEGAL {
		p.synchronizeTopLevel()
		return nil
	}
	name, ok := p.consumeIdent("expected function name")
	if !ok {
		p.synchronizeTopLevel()
		return nil
	}

	params := p.parseParams()
	ret := p.parseReturnType()

	if !p.check(LEFT_BRACE) {
		p.errorAtCurrent("expected '{' to start function body")
		p.synchronizeTopLevel()
		return nil
	}
	body := p.parseBlock()

	return &ast.FunctionDef{
		Pos:        p.makePos(startTok),
		EndPos:     body.EndPos,
		Decorators: decorators,
		Name:       name,
		Params:     params,
		Return:     ret,
		Body:       body,
	}
}

func (p *Parser) parseDecorator() *ast.Decorator {
	at := p.advance()
	name, _ := p.consumeIdent("expected decorator name after '@'")

	dec := &ast.Decorator{Pos: p.makePos(at), Name: name}
	if p.match(LEFT_PAREN) {
		dec.Call = true
		if !p.check(RIGHT_PAREN) {
			for {
				dec.Args = append(dec.Args, p.parseExpr())
				if !p.match(COMMA) {
					break
				}
			}
		}
		p.consume(RIGHT_PAREN, "expected ')' after decorator arguments")
	}
	dec.EndPos = p.prevEnd()
	return dec
}

// parseParams parses the parenthesized parameter list. A missing type
// annotation is left nil so the analyzer can report it precisely.
func (p *Parser) parseParams() []*ast.Param {
	p.consume(LEFT_PAREN, "expected '(' after function name")
	var params []*ast.Param

	for !p.check(RIGHT_PAREN) && !p.isAtEnd() {
		nameTok := p.peek()
		name, ok := p.consumeIdent("expected parameter name")
		if !ok {
			break
		}
		param := &ast.Param{Pos: p.makePos(nameTok), Name: name}
		if p.match(COLON) {
			param.Type = p.parseType()
		}
		if p.match(EQUAL) {
			param.Default = p.parseExpr()
		}
		param.EndPos = p.prevEnd()
		params = append(params, param)

		if !p.match(COMMA) {
			break
		}
	}

	p.consume(RIGHT_PAREN, "expected ')' after parameter list")
	return params
}

func (p *Parser) parseReturnType() *ast.TypeExpr {
	if p.match(ARROW) {
		return p.parseType()
	}
	return nil
}

// parseType parses a name followed by bracketed groups, e.g. "HashMap[address, uint256]"
// or "uint256[3][2]". Interpreting the groups is left to the type resolver.
func (p *Parser) parseType() *ast.TypeExpr {
	tok := p.peek()
	if !p.match(IDENTIFIER) {
		p.errorAtCurrent("expected type")
		return &ast.TypeExpr{
			Pos:    p.makePos(tok),
			EndPos: p.makeEndPos(tok),
			Name:   ast.Ident{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok), Value: "error"},
		}
	}

	t := &ast.TypeExpr{Pos: p.makePos(tok), Name: p.makeIdent(tok)}
	for p.check(LEFT_BRACKET) {
		open := p.advance()
		sub := &ast.TypeSubscript{Pos: p.makePos(open)}
		for {
			argTok := p.peek()
			arg := &ast.TypeArg{Pos: p.makePos(argTok)}
			if p.match(NUMBER, HEX_NUMBER) {
				arg.Size = &ast.IntLit{Pos: p.makePos(argTok), EndPos: p.makeEndPos(argTok), Value: argTok.Lexeme}
			} else {
				arg.Type = p.parseType()
			}
			arg.EndPos = p.prevEnd()
			sub.Args = append(sub.Args, arg)
			if !p.match(COMMA) {
				break
			}
		}
		p.consume(RIGHT_BRACKET, "expected ']' in type")
		sub.EndPos = p.prevEnd()
		t.Subscripts = append(t.Subscripts, sub)
	}
	t.EndPos = p.prevEnd()
	return t
}
