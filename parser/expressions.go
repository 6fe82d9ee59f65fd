package parser

import (
	"github.com/quark-lang/quark/ast"
	"github.com/quark-lang/quark/lexer"
)

// ============================================================================
// EXPRESSION PARSING
// ============================================================================

// parseExpression climbs operator precedence starting at minPrec. All
// binary operators are left-associative, so the recursive call asks
// for strictly higher precedence on the right.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	if p.hadError {
		return nil
	}
	left := p.parseFactor()
	if p.hadError {
		return nil
	}

	for {
		tok := p.peek()
		prec := tok.Type.Precedence()
		if prec < minPrec || prec < 0 {
			break
		}

		p.advance()
		right := p.parseExpression(prec + 1)
		if p.hadError {
			return nil
		}
		left = &ast.BinOp{Op: tok.Type, Left: left, Right: right}
	}

	return left
}

// parseFactor parses a primary: a literal, an identifier (reparsed as
// a call when immediately followed by '('), or a parenthesised
// expression. Character and boolean literals are integer-valued.
func (p *Parser) parseFactor() ast.Expression {
	if p.hadError {
		return nil
	}
	tok := p.peek()

	switch tok.Type {
	case lexer.INT, lexer.CHAR, lexer.BOOLEAN:
		p.advance()
		return &ast.NumberLit{ValuePos: tok.Position, Int: tok.Int}
	case lexer.FLOAT:
		p.advance()
		return &ast.NumberLit{ValuePos: tok.Position, IsFloat: true, Float: tok.Float}
	case lexer.STRING:
		p.advance()
		return &ast.StringLit{ValuePos: tok.Position, Value: tok.Str}
	case lexer.IDENT:
		p.advance()
		if p.peek().Type == lexer.LPAREN {
			p.pos--
			return p.parseFuncCall()
		}
		return &ast.Ident{NamePos: tok.Position, Name: tok.Lexeme}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression(0)
		if p.hadError {
			return nil
		}
		if p.peek().Type != lexer.RPAREN {
			p.errorf("expected ')'")
			return nil
		}
		p.advance()
		return expr
	}

	p.errorf("expected number, string, identifier, or '('")
	return nil
}

// parseFuncCall parses "name ( [expr {, expr}] )" with the name as the
// current token.
func (p *Parser) parseFuncCall() *ast.FuncCall {
	nameTok := p.peek()
	if nameTok.Type != lexer.IDENT {
		p.errorf("expected identifier for function call")
		return nil
	}
	p.advance()

	if p.peek().Type != lexer.LPAREN {
		p.errorf("expected '(' for function call")
		return nil
	}
	p.advance()

	call := &ast.FuncCall{NamePos: nameTok.Position, Name: nameTok.Lexeme}
	for p.peek().Type != lexer.RPAREN {
		arg := p.parseExpression(0)
		if p.hadError {
			return nil
		}
		call.Args = append(call.Args, arg)

		if p.peek().Type == lexer.COMMA {
			p.advance()
		} else if p.peek().Type != lexer.RPAREN {
			p.errorf("expected ',' or ')' in argument list")
			return nil
		}
	}
	p.advance()
	return call
}
