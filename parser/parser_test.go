package parser

import (
	"io"
	"testing"

	"github.com/quark-lang/quark/ast"
	"github.com/quark-lang/quark/diag"
	"github.com/quark-lang/quark/lexer"
)

func parseSource(src string) (*ast.Program, *Parser) {
	sink := diag.New(io.Discard)
	tokens := lexer.New(src, sink).TokenizeAll()
	p := New(tokens, src, sink)
	return p.ParseProgram(), p
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, p := parseSource(src)
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	return prog
}

func mustFail(t *testing.T, src string) *Parser {
	t.Helper()
	prog, p := parseSource(src)
	if prog != nil {
		t.Fatalf("expected parse failure, got %s", prog.String())
	}
	if !p.HadError() {
		t.Fatal("expected sticky error flag to be set")
	}
	return p
}

// firstBody returns the body block of the first function in src.
func firstBody(t *testing.T, src string) *ast.Block {
	t.Helper()
	prog := mustParse(t, src)
	def, ok := prog.Items[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected FuncDef, got %T", prog.Items[0])
	}
	return def.Body
}

func TestTopLevelRestriction(t *testing.T) {
	for _, src := range []string{
		"int x = 1;",
		"x = 1;",
		"f();",
		"return 0;",
		"{ }",
	} {
		mustFail(t, src)
	}

	prog := mustParse(t, `
import std.io;
int f(int a);
int main() { return 0; }
`)
	for _, item := range prog.Items {
		switch item.(type) {
		case *ast.FuncDef, *ast.Import:
		default:
			t.Fatalf("unexpected top-level node %T", item)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	body := firstBody(t, "int main() { return a + b * c; }")
	ret := body.Stmts[0].(*ast.Return)

	outer, ok := ret.Value.(*ast.BinOp)
	if !ok || outer.Op != lexer.ADD {
		t.Fatalf("expected + at root, got %s", ret.Value.String())
	}
	right, ok := outer.Right.(*ast.BinOp)
	if !ok || right.Op != lexer.MUL {
		t.Fatalf("expected * on the right, got %s", outer.Right.String())
	}
	if got := ret.Value.String(); got != "(a + (b * c))" {
		t.Fatalf("rendered = %q", got)
	}
}

func TestComparisonBindsLoosest(t *testing.T) {
	body := firstBody(t, "int main() { return a == b + c; }")
	ret := body.Stmts[0].(*ast.Return)

	outer, ok := ret.Value.(*ast.BinOp)
	if !ok || outer.Op != lexer.EQ {
		t.Fatalf("expected == at root, got %s", ret.Value.String())
	}
	if got := ret.Value.String(); got != "(a == (b + c))" {
		t.Fatalf("rendered = %q", got)
	}
}

func TestLeftAssociativity(t *testing.T) {
	body := firstBody(t, "int main() { return a - b - c; }")
	ret := body.Stmts[0].(*ast.Return)

	outer, ok := ret.Value.(*ast.BinOp)
	if !ok || outer.Op != lexer.SUB {
		t.Fatalf("expected - at root, got %s", ret.Value.String())
	}
	if _, ok := outer.Left.(*ast.BinOp); !ok {
		t.Fatalf("expected nested - on the left, got %s", outer.Left.String())
	}
	if got := ret.Value.String(); got != "((a - b) - c)" {
		t.Fatalf("rendered = %q", got)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	body := firstBody(t, "int main() { return (a + b) * c; }")
	ret := body.Stmts[0].(*ast.Return)

	outer, ok := ret.Value.(*ast.BinOp)
	if !ok || outer.Op != lexer.MUL {
		t.Fatalf("expected * at root, got %s", ret.Value.String())
	}
}

func TestVariadicParams(t *testing.T) {
	prog := mustParse(t, "int f(int a, ...);")
	def := prog.Items[0].(*ast.FuncDef)
	if len(def.Params) != 2 {
		t.Fatalf("len(params) = %d, want 2", len(def.Params))
	}
	if !def.Params[1].Variadic {
		t.Fatal("expected trailing variadic parameter")
	}
	if !def.IsDeclaration || def.Body != nil {
		t.Fatal("expected a forward declaration with nil body")
	}

	// Variadic-only signatures are allowed.
	mustParse(t, "int g(...);")

	// The variadic sentinel must be last.
	mustFail(t, "int f(..., int a);")
	mustFail(t, "int f(int a, ..., int b);")
}

func TestDefinitionAndReassignment(t *testing.T) {
	body := firstBody(t, "int main() { int x = 1; x = 2; return x; }")

	def := body.Stmts[0].(*ast.Assign)
	if def.Type != "int" || def.Name != "x" {
		t.Fatalf("definition = %s", def.String())
	}
	re := body.Stmts[1].(*ast.Assign)
	if re.Type != "" || re.Name != "x" {
		t.Fatalf("reassignment = %s", re.String())
	}
}

func TestDefinitionRequiresValue(t *testing.T) {
	mustFail(t, "int main() { int x; return 0; }")
}

func TestCallStatement(t *testing.T) {
	body := firstBody(t, "int main() { f(1, 2 + 3); }")

	call, ok := body.Stmts[0].(*ast.FuncCall)
	if !ok {
		t.Fatalf("expected FuncCall, got %T", body.Stmts[0])
	}
	if call.Name != "f" || len(call.Args) != 2 {
		t.Fatalf("call = %s", call.String())
	}

	mustFail(t, "int main() { f(1, 2) }")
}

func TestIfElseChain(t *testing.T) {
	body := firstBody(t, `
int main() {
	if (x == 1) { return 10; } else if (x == 2) { return 20; } else { return 30; }
}`)

	stmt, ok := body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", body.Stmts[0])
	}
	nested, ok := stmt.Else.(*ast.If)
	if !ok {
		t.Fatalf("expected nested If in else branch, got %T", stmt.Else)
	}
	if _, ok := nested.Else.(*ast.Else); !ok {
		t.Fatalf("expected terminal Else, got %T", nested.Else)
	}
}

func TestIfWithoutElse(t *testing.T) {
	body := firstBody(t, "int main() { if (x) { return 1; } return 0; }")
	stmt := body.Stmts[0].(*ast.If)
	if stmt.Else != nil {
		t.Fatalf("expected nil else branch, got %T", stmt.Else)
	}
}

func TestDanglingElse(t *testing.T) {
	mustFail(t, "int main() { else { return 1; } }")
	mustFail(t, "int main() { if (x) { } else return 1; }")
}

func TestImportDottedName(t *testing.T) {
	prog := mustParse(t, "import std.io.fmt;")
	im := prog.Items[0].(*ast.Import)
	if im.Module != "std.io.fmt" {
		t.Fatalf("module = %q", im.Module)
	}

	mustFail(t, "import;")
	mustFail(t, "import std.;")
	mustFail(t, "import std.io")
}

func TestImportInsideFunction(t *testing.T) {
	body := firstBody(t, "int main() { import std.io; return 0; }")
	if _, ok := body.Stmts[0].(*ast.Import); !ok {
		t.Fatalf("expected Import statement, got %T", body.Stmts[0])
	}
}

func TestNestedBlock(t *testing.T) {
	body := firstBody(t, "int main() { { int x = 1; } return 0; }")
	if _, ok := body.Stmts[0].(*ast.Block); !ok {
		t.Fatalf("expected Block, got %T", body.Stmts[0])
	}
}

func TestReturnWithoutValue(t *testing.T) {
	body := firstBody(t, "void f() { return; }")
	ret := body.Stmts[0].(*ast.Return)
	if ret.Value != nil {
		t.Fatalf("expected nil return value, got %s", ret.Value.String())
	}
}

func TestLiteralFactors(t *testing.T) {
	body := firstBody(t, `int main() { f(1, 2.5, "hi", 'a', true); }`)
	call := body.Stmts[0].(*ast.FuncCall)

	if n := call.Args[0].(*ast.NumberLit); n.IsFloat || n.Int != 1 {
		t.Fatalf("arg 0 = %s", n.String())
	}
	if n := call.Args[1].(*ast.NumberLit); !n.IsFloat || n.Float != 2.5 {
		t.Fatalf("arg 1 = %s", n.String())
	}
	if s := call.Args[2].(*ast.StringLit); string(s.Value) != "hi" {
		t.Fatalf("arg 2 = %s", s.String())
	}
	if n := call.Args[3].(*ast.NumberLit); n.Int != 'a' {
		t.Fatalf("arg 3 = %s", n.String())
	}
	if n := call.Args[4].(*ast.NumberLit); n.Int != 1 {
		t.Fatalf("arg 4 = %s", n.String())
	}
}

func TestRejectedKeywords(t *testing.T) {
	mustFail(t, "int main() { while (1) { } }")
	mustFail(t, "int main() { for (x) { } }")
	mustFail(t, "int main() { typedef int foo; }")
}

func TestStickyErrorReportsOnce(t *testing.T) {
	_, p := parseSource("int main() { return ; } garbage garbage garbage")
	if len(p.Errors()) != 1 {
		t.Fatalf("len(errors) = %d, want exactly 1", len(p.Errors()))
	}
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"int main() { return 0; }",
		"int add(int a, int b) { return a + b; }\nint main() { return add(40, 2); }",
		"import std.io;\nint printf(string fmt, ...);\nint main() { printf(\"hi\\n\"); return 0; }",
		"int main() { int x = 2; if (x == 1) { return 10; } else if (x == 2) { return 20; } else { return 30; } }",
		"float half(float x) { return x / 2.0; }",
		"void noop() { return; }",
		"int main() { int x = 1; { x = x * 2; } f(); return x; }",
	}

	for _, src := range sources {
		first := mustParse(t, src)
		rendered := first.String()
		second := mustParse(t, rendered)
		if second.String() != rendered {
			t.Errorf("round trip diverged:\n  source:   %q\n  first:    %q\n  second:   %q",
				src, rendered, second.String())
		}
	}
}
