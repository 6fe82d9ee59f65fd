// Package ast defines the abstract syntax tree of the Quark language.
// The node set is closed: every alternative the parser can produce has
// a concrete struct here, and consumers dispatch exhaustively with a
// type switch. String renders a node back to source text; re-parsing
// that text yields a structurally equal tree.
package ast

import (
	"strconv"
	"strings"

	"github.com/quark-lang/quark/lexer"
)

// Node represents a node in the AST.
type Node interface {
	// Pos returns the position of the first token belonging to the node.
	Pos() lexer.Position
	// String returns the source-text representation of the node.
	String() string
}

// Expression represents all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement represents all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// ============================================================================
// BASIC NODES AND LITERALS
// ============================================================================

// Ident represents an identifier in expression position.
type Ident struct {
	NamePos lexer.Position
	Name    string
}

func (i *Ident) Pos() lexer.Position { return i.NamePos }
func (i *Ident) String() string      { return i.Name }
func (i *Ident) expressionNode()     {}

// NumberLit represents an integer or float literal. IsFloat
// discriminates which payload field is meaningful. Character and
// boolean literals parse into integer-valued NumberLits.
type NumberLit struct {
	ValuePos lexer.Position
	IsFloat  bool
	Int      int64
	Float    float64
}

func (n *NumberLit) Pos() lexer.Position { return n.ValuePos }
func (n *NumberLit) String() string {
	if n.IsFloat {
		s := strconv.FormatFloat(n.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatInt(n.Int, 10)
}
func (n *NumberLit) expressionNode() {}

// StringLit represents a string literal. Value holds the cooked bytes,
// with escape sequences already resolved.
type StringLit struct {
	ValuePos lexer.Position
	Value    []byte
}

func (s *StringLit) Pos() lexer.Position { return s.ValuePos }
func (s *StringLit) String() string      { return strconv.Quote(string(s.Value)) }
func (s *StringLit) expressionNode()     {}

// ============================================================================
// EXPRESSIONS
// ============================================================================

// BinOp represents a binary operation. All operators are
// left-associative; the parser encodes precedence in the tree shape.
type BinOp struct {
	Op    lexer.Token
	Left  Expression
	Right Expression
}

func (b *BinOp) Pos() lexer.Position { return b.Left.Pos() }
func (b *BinOp) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}
func (b *BinOp) expressionNode() {}

// FuncCall represents a call. It appears both in expression position
// and, followed by a semicolon, as a statement.
type FuncCall struct {
	NamePos lexer.Position
	Name    string
	Args    []Expression
}

func (c *FuncCall) Pos() lexer.Position { return c.NamePos }
func (c *FuncCall) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}
func (c *FuncCall) expressionNode() {}
func (c *FuncCall) statementNode()  {}
