package parser

import (
	"strings"

	"github.com/quark-lang/quark/ast"
	"github.com/quark-lang/quark/lexer"
)

// ============================================================================
// STATEMENT PARSING
// ============================================================================

// parseStatement dispatches on the current token. At statement level a
// leading keyword is either a statement head (return, import, if) or
// the type of a definition or function signature; a leading identifier
// is a call or a reassignment.
func (p *Parser) parseStatement() ast.Statement {
	if p.hadError {
		return nil
	}
	tok := p.peek()

	switch {
	case tok.Type == lexer.LBRACE:
		return p.parseBlock()
	case tok.IsKeyword("return"):
		return p.parseReturn()
	case tok.IsKeyword("import"):
		return p.parseImport()
	case tok.IsKeyword("if"):
		return p.parseIf()
	case tok.IsKeyword("else"):
		p.errorf("'else' without a preceding 'if'")
		return nil
	case tok.IsKeyword("while"), tok.IsKeyword("for"):
		p.errorf("loops are not supported")
		return nil
	case tok.IsKeyword("typedef"):
		p.errorf("'typedef' is not supported")
		return nil
	case tok.Type == lexer.KEYWORD:
		return p.parseDefinitionOrFuncDef()
	case tok.Type == lexer.IDENT:
		return p.parseCallOrReassign()
	}

	p.errorf("unknown statement")
	return nil
}

// parseBlock parses a brace-delimited statement sequence and manages
// nothing else; scoping is the emitter's concern.
func (p *Parser) parseBlock() *ast.Block {
	if p.hadError {
		return nil
	}
	lbrace := p.peek()
	if lbrace.Type != lexer.LBRACE {
		p.errorf("expected '{'")
		return nil
	}
	p.advance()

	block := &ast.Block{LBrace: lbrace.Position}
	for p.peek().Type != lexer.RBRACE {
		if p.peek().Type == lexer.EOF {
			p.errorf("expected '}' to close block")
			return nil
		}
		stmt := p.parseStatement()
		if p.hadError {
			return nil
		}
		if stmt == nil {
			break
		}
		block.Stmts = append(block.Stmts, stmt)
	}

	if p.peek().Type != lexer.RBRACE {
		p.errorf("expected '}' to close block")
		return nil
	}
	p.advance()
	return block
}

// parseReturn parses "return [expr] ;".
func (p *Parser) parseReturn() ast.Statement {
	ret := &ast.Return{ReturnPos: p.advance().Position}

	if p.peek().Type != lexer.SEMICOLON {
		ret.Value = p.parseExpression(0)
		if p.hadError {
			return nil
		}
	}

	if p.peek().Type != lexer.SEMICOLON {
		p.errorf("expected ';' after return statement")
		return nil
	}
	p.advance()
	return ret
}

// parseImport parses "import a.b.c ;". The dotted name is collapsed
// into a single module string; nothing is loaded.
func (p *Parser) parseImport() ast.Statement {
	importPos := p.advance().Position

	if p.peek().Type != lexer.IDENT {
		p.errorf("expected module name after import statement")
		return nil
	}

	var parts []string
	parts = append(parts, p.advance().Lexeme)
	for p.peek().Type == lexer.DOT {
		p.advance()
		if p.peek().Type != lexer.IDENT {
			p.errorf("expected identifier in module name")
			return nil
		}
		parts = append(parts, p.advance().Lexeme)
	}

	if p.peek().Type != lexer.SEMICOLON {
		p.errorf("expected ';' after import statement")
		return nil
	}
	p.advance()

	return &ast.Import{ImportPos: importPos, Module: strings.Join(parts, ".")}
}

// parseIf parses a conditional chain. "else if" nests another *If in
// the Else slot; a bare else becomes the terminal *Else.
func (p *Parser) parseIf() ast.Statement {
	ifPos := p.advance().Position

	if p.peek().Type != lexer.LPAREN {
		p.errorf("expected '(' after 'if'")
		return nil
	}
	p.advance()

	cond := p.parseExpression(0)
	if p.hadError {
		return nil
	}

	if p.peek().Type != lexer.RPAREN {
		p.errorf("expected ')' after condition")
		return nil
	}
	p.advance()

	then := p.parseBlock()
	if p.hadError {
		return nil
	}

	stmt := &ast.If{IfPos: ifPos, Cond: cond, Then: then}

	if p.peek().IsKeyword("else") {
		elsePos := p.advance().Position
		switch {
		case p.peek().IsKeyword("if"):
			nested := p.parseIf()
			if p.hadError {
				return nil
			}
			stmt.Else = nested
		case p.peek().Type == lexer.LBRACE:
			body := p.parseBlock()
			if p.hadError {
				return nil
			}
			stmt.Else = &ast.Else{ElsePos: elsePos, Body: body}
		default:
			p.errorf("expected 'if' or '{' after 'else'")
			return nil
		}
	}

	return stmt
}

// parseDefinitionOrFuncDef handles statements beginning with a type
// keyword: either "T name = expr ;" or a function signature.
func (p *Parser) parseDefinitionOrFuncDef() ast.Statement {
	typeTok := p.advance()

	nameTok := p.peek()
	if nameTok.Type != lexer.IDENT {
		p.errorf("expected identifier after type")
		return nil
	}
	p.advance()

	switch p.peek().Type {
	case lexer.LPAREN:
		return p.parseFuncDef(typeTok, nameTok)
	case lexer.ASSIGN:
		p.advance()
		value := p.parseExpression(0)
		if p.hadError {
			return nil
		}
		if p.peek().Type != lexer.SEMICOLON {
			p.errorf("expected ';' after definition")
			return nil
		}
		p.advance()
		return &ast.Assign{
			NamePos: nameTok.Position,
			Name:    nameTok.Lexeme,
			Type:    typeTok.Lexeme,
			Value:   value,
		}
	default:
		p.errorf("expected '=' or '(' after identifier")
		return nil
	}
}

// parseCallOrReassign handles statements beginning with an identifier:
// "name(args) ;" or "name = expr ;".
func (p *Parser) parseCallOrReassign() ast.Statement {
	nameTok := p.advance()

	switch p.peek().Type {
	case lexer.LPAREN:
		p.pos--
		call := p.parseFuncCall()
		if p.hadError {
			return nil
		}
		if p.peek().Type != lexer.SEMICOLON {
			p.errorf("expected ';' after function call")
			return nil
		}
		p.advance()
		return call
	case lexer.ASSIGN:
		p.advance()
		value := p.parseExpression(0)
		if p.hadError {
			return nil
		}
		if p.peek().Type != lexer.SEMICOLON {
			p.errorf("expected ';' after assignment")
			return nil
		}
		p.advance()
		return &ast.Assign{
			NamePos: nameTok.Position,
			Name:    nameTok.Lexeme,
			Value:   value,
		}
	default:
		p.errorf("expected '=' or '(' after identifier")
		return nil
	}
}

// parseFuncDef parses the remainder of a function signature whose
// return type and name have already been consumed, then either a ';'
// (forward declaration) or the body block.
func (p *Parser) parseFuncDef(typeTok, nameTok lexer.TokenInfo) ast.Statement {
	params := p.parseParamList()
	if p.hadError {
		return nil
	}

	def := &ast.FuncDef{
		TypePos:    typeTok.Position,
		Name:       nameTok.Lexeme,
		ReturnType: typeTok.Lexeme,
		Params:     params,
	}

	if p.peek().Type == lexer.SEMICOLON {
		p.advance()
		def.IsDeclaration = true
		return def
	}

	if p.peek().Type != lexer.LBRACE {
		p.errorf("expected '{' for function body")
		return nil
	}
	def.Body = p.parseBlock()
	if p.hadError {
		return nil
	}
	return def
}

// parseParamList parses "( [T name {, T name}] [, ...] )". The
// variadic sentinel must be last; a comma after it is a parse error.
func (p *Parser) parseParamList() []*ast.Param {
	if p.peek().Type != lexer.LPAREN {
		p.errorf("expected '(' for parameter list")
		return nil
	}
	p.advance()

	var params []*ast.Param
	for p.peek().Type != lexer.RPAREN {
		if p.peek().Type == lexer.ELLIPSIS {
			p.advance()
			params = append(params, &ast.Param{Variadic: true})
			if p.peek().Type == lexer.COMMA {
				p.errorf("variadic parameter must be the last in the list")
				return nil
			}
			break
		}

		typeTok := p.peek()
		if typeTok.Type != lexer.KEYWORD {
			p.errorf("expected type in parameter list")
			return nil
		}
		p.advance()

		nameTok := p.peek()
		if nameTok.Type != lexer.IDENT {
			p.errorf("expected identifier in parameter list")
			return nil
		}
		p.advance()

		params = append(params, &ast.Param{Name: nameTok.Lexeme, Type: typeTok.Lexeme})

		if p.peek().Type == lexer.COMMA {
			p.advance()
		} else if p.peek().Type != lexer.RPAREN {
			p.errorf("expected ',' or ')' in parameter list")
			return nil
		}
	}

	if p.peek().Type != lexer.RPAREN {
		p.errorf("expected ')' to close parameter list")
		return nil
	}
	p.advance()
	return params
}
