package ast

import (
	"strings"

	"github.com/quark-lang/quark/lexer"
)

// ============================================================================
// STATEMENTS
// ============================================================================

// Block represents a brace-delimited statement sequence.
type Block struct {
	LBrace lexer.Position
	Stmts  []Statement
}

func (b *Block) Pos() lexer.Position { return b.LBrace }
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for _, s := range b.Stmts {
		sb.WriteString(" ")
		sb.WriteString(s.String())
		// Calls carry no terminator of their own in expression form.
		if _, ok := s.(*FuncCall); ok {
			sb.WriteString(";")
		}
	}
	sb.WriteString(" }")
	return sb.String()
}
func (b *Block) statementNode() {}

// Assign represents both variable definitions and reassignments. A
// non-empty Type introduces a new binding in the current scope; an
// empty Type requires Name to resolve in an enclosing scope. Value may
// be nil only in a definition.
type Assign struct {
	NamePos lexer.Position
	Name    string
	Type    string
	Value   Expression
}

func (a *Assign) Pos() lexer.Position { return a.NamePos }
func (a *Assign) String() string {
	var sb strings.Builder
	if a.Type != "" {
		sb.WriteString(a.Type)
		sb.WriteString(" ")
	}
	sb.WriteString(a.Name)
	if a.Value != nil {
		sb.WriteString(" = ")
		sb.WriteString(a.Value.String())
	}
	sb.WriteString(";")
	return sb.String()
}
func (a *Assign) statementNode() {}

// Return represents a return statement. Value may be nil.
type Return struct {
	ReturnPos lexer.Position
	Value     Expression
}

func (r *Return) Pos() lexer.Position { return r.ReturnPos }
func (r *Return) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}
func (r *Return) statementNode() {}

// If represents a conditional. Else is nil, another *If (an "else if"
// chain link), or a terminal *Else.
type If struct {
	IfPos lexer.Position
	Cond  Expression
	Then  *Block
	Else  Statement
}

func (i *If) Pos() lexer.Position { return i.IfPos }
func (i *If) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}
func (i *If) statementNode() {}

// Else represents the terminal arm of a conditional chain.
type Else struct {
	ElsePos lexer.Position
	Body    *Block
}

func (e *Else) Pos() lexer.Position { return e.ElsePos }
func (e *Else) String() string      { return e.Body.String() }
func (e *Else) statementNode()      {}

// Import represents an import statement. The dotted module name is
// stored as a single string; no loading is performed.
type Import struct {
	ImportPos lexer.Position
	Module    string
}

func (im *Import) Pos() lexer.Position { return im.ImportPos }
func (im *Import) String() string      { return "import " + im.Module + ";" }
func (im *Import) statementNode()      {}

// ============================================================================
// FUNCTIONS AND PROGRAM
// ============================================================================

// Param represents one function parameter. The variadic sentinel has
// Variadic set and empty Name and Type; it is always last in the list.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

func (p *Param) String() string {
	if p.Variadic {
		return "..."
	}
	return p.Type + " " + p.Name
}

// FuncDef represents a function definition or forward declaration.
// Declarations have a nil Body and IsDeclaration set.
type FuncDef struct {
	TypePos       lexer.Position
	Name          string
	ReturnType    string
	Params        []*Param
	Body          *Block
	IsDeclaration bool
}

func (f *FuncDef) Pos() lexer.Position { return f.TypePos }
func (f *FuncDef) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	s := f.ReturnType + " " + f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.IsDeclaration {
		return s + ";"
	}
	return s + " " + f.Body.String()
}
func (f *FuncDef) statementNode() {}

// Program is the root node. Its items are exclusively FuncDef and
// Import nodes; the parser enforces this.
type Program struct {
	Items []Statement
}

func (p *Program) Pos() lexer.Position {
	if len(p.Items) > 0 {
		return p.Items[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	items := make([]string, len(p.Items))
	for i, it := range p.Items {
		items[i] = it.String()
	}
	return strings.Join(items, "\n")
}
