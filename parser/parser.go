// Package parser turns the materialised token vector into an AST.
// Parsing is recursive descent with precedence climbing for
// expressions. The first diagnostic latches a sticky error flag on the
// parser value; every subsequent parse operation short-circuits, and
// the top-level parse returns nil.
package parser

import (
	"fmt"

	"github.com/quark-lang/quark/ast"
	"github.com/quark-lang/quark/diag"
	"github.com/quark-lang/quark/lexer"
)

// Parser represents the parser state.
type Parser struct {
	tokens []lexer.TokenInfo
	pos    int

	source string
	sink   *diag.Sink

	hadError bool
	errors   []string
}

// New creates a parser over a token vector. The vector must be
// terminated by an EOF token; one is appended if missing. The source
// buffer is carried along so diagnostics can show the offending line.
func New(tokens []lexer.TokenInfo, source string, sink *diag.Sink) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		tokens = append(tokens, lexer.TokenInfo{Type: lexer.EOF})
	}
	return &Parser{
		tokens: tokens,
		source: source,
		sink:   sink,
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() lexer.TokenInfo {
	return p.tokens[p.pos]
}

// advance consumes and returns the current token. The terminating EOF
// token is never consumed.
func (p *Parser) advance() lexer.TokenInfo {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

// errorf reports a parse error at the current token and latches the
// sticky error flag. Only the first error is reported; everything
// after it is fallout.
func (p *Parser) errorf(format string, args ...interface{}) {
	if p.hadError {
		return
	}
	p.hadError = true
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, msg)
	tok := p.peek()
	p.sink.Fatalf(p.source, tok.Position.Line, tok.Position.Column, msg)
}

// Errors returns the recorded parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// HadError reports whether the sticky error flag is set.
func (p *Parser) HadError() bool {
	return p.hadError
}

// ParseProgram parses the whole token vector and returns the Program,
// or nil on failure. Only function definitions and imports may appear
// at the top level.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}

	for p.peek().Type != lexer.EOF {
		stmt := p.parseStatement()
		if p.hadError {
			return nil
		}
		if stmt == nil {
			break
		}

		switch stmt.(type) {
		case *ast.FuncDef, *ast.Import:
		default:
			p.errorf("only function definitions and imports are allowed at top level")
			return nil
		}

		prog.Items = append(prog.Items, stmt)
	}

	if p.peek().Type != lexer.EOF {
		p.errorf("unexpected token after function definition")
		return nil
	}

	return prog
}
