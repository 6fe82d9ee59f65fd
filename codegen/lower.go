package codegen

import (
	"strconv"
	"strings"

	"github.com/quark-lang/quark/ast"
	"github.com/quark-lang/quark/lexer"
)

// ============================================================================
// STRING POOLING PASS
// ============================================================================

// internBlock walks a block in pre-order and pools every string
// literal it can reach, so the data section is complete before any
// function body is lowered.
func (g *Generator) internBlock(b *ast.Block) {
	for _, stmt := range b.Stmts {
		g.internStmt(stmt)
	}
}

func (g *Generator) internStmt(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.Block:
		g.internBlock(n)
	case *ast.Assign:
		g.internExpr(n.Value)
	case *ast.Return:
		g.internExpr(n.Value)
	case *ast.FuncCall:
		g.internExpr(n)
	case *ast.If:
		g.internExpr(n.Cond)
		g.internBlock(n.Then)
		if n.Else != nil {
			g.internStmt(n.Else)
		}
	case *ast.Else:
		g.internBlock(n.Body)
	}
}

func (g *Generator) internExpr(expr ast.Expression) {
	switch n := expr.(type) {
	case *ast.StringLit:
		g.internString(n.Value)
	case *ast.BinOp:
		g.internExpr(n.Left)
		g.internExpr(n.Right)
	case *ast.FuncCall:
		for _, arg := range n.Args {
			g.internExpr(arg)
		}
	}
}

// ============================================================================
// FUNCTION LOWERING
// ============================================================================

// genFunc emits one function definition. Parameters arrive in
// registers and are immediately spilled into stack slots, so they are
// addressable and mutable exactly like locals.
func (g *Generator) genFunc(def *ast.FuncDef) error {
	retKind, err := g.baseType(def.ReturnType)
	if err != nil {
		return err
	}

	type spill struct {
		name string
		reg  string
		kind storageKind
	}
	var sig []string
	var spills []spill
	variadic := false
	for _, p := range def.Params {
		if p.Variadic {
			variadic = true
			continue
		}
		kind, err := g.baseType(p.Type)
		if err != nil {
			return err
		}
		reg := "%p" + strconv.Itoa(len(spills))
		sig = append(sig, kind.String()+" "+reg)
		spills = append(spills, spill{name: p.Name, reg: reg, kind: kind})
	}
	if variadic {
		sig = append(sig, "...")
	}

	export := ""
	if def.Name == "main" {
		export = "export "
	}
	ret := ""
	if retKind != 0 {
		ret = retKind.String() + " "
	}
	g.buf.WriteString(export + "function " + ret + "$" + def.Name + "(" + strings.Join(sig, ", ") + ") {\n")
	g.label("@start")

	g.pushScope()
	for _, s := range spills {
		alloc, n := slotSize(s.kind)
		slot := g.freshTmp()
		g.ins("%s =l %s %d", slot, alloc, n)
		g.ins("store%s %s, %s", s.kind, s.reg, slot)
		g.bind(s.name, slot, s.kind)
	}

	if err := g.genBlock(def.Body); err != nil {
		return err
	}
	g.popScope()

	// A body whose last block fell through still needs a terminator.
	if !g.terminated {
		if retKind == 0 {
			g.jump("ret")
		} else {
			g.jump("ret %s", zeroValue(retKind))
		}
	}
	g.buf.WriteString("}\n\n")
	g.terminated = false
	return nil
}

// ============================================================================
// STATEMENT LOWERING
// ============================================================================

// genBlock lowers a statement sequence inside a fresh scope.
func (g *Generator) genBlock(b *ast.Block) error {
	g.pushScope()
	defer g.popScope()
	for _, stmt := range b.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genStmt(stmt ast.Statement) error {
	switch n := stmt.(type) {
	case *ast.Block:
		return g.genBlock(n)
	case *ast.Assign:
		return g.genAssign(n)
	case *ast.Return:
		if n.Value == nil {
			g.jump("ret")
			return nil
		}
		v, _, err := g.genExpr(n.Value)
		if err != nil {
			return err
		}
		g.jump("ret %s", v)
		return nil
	case *ast.FuncCall:
		_, _, err := g.genCall(n)
		return err
	case *ast.If:
		return g.genIf(n, "")
	case *ast.Import:
		// Accepted syntactically; no module resolution is performed.
		return nil
	default:
		return g.fatalf("unsupported statement %T", stmt)
	}
}

// genAssign lowers both forms of assignment. A definition allocates a
// slot and binds the name in the current scope; a reassignment
// resolves the name through the scope stack and stores into its slot.
func (g *Generator) genAssign(n *ast.Assign) error {
	if n.Type != "" {
		kind, err := g.baseType(n.Type)
		if err != nil {
			return err
		}
		if kind == 0 {
			return g.fatalf("cannot declare variable %q of type void", n.Name)
		}
		alloc, size := slotSize(kind)
		slot := g.freshTmp()
		g.ins("%s =l %s %d", slot, alloc, size)
		g.bind(n.Name, slot, kind)

		if n.Value == nil {
			g.ins("store%s %s, %s", kind, zeroValue(kind), slot)
			return nil
		}
		v, _, err := g.genExpr(n.Value)
		if err != nil {
			return err
		}
		g.ins("store%s %s, %s", kind, v, slot)
		return nil
	}

	sym, ok := g.scope.lookup(n.Name)
	if !ok {
		return g.fatalf("unresolved identifier %q", n.Name)
	}
	v, _, err := g.genExpr(n.Value)
	if err != nil {
		return err
	}
	g.ins("store%s %s, %s", sym.kind, v, sym.addr)
	return nil
}

// genIf lowers a conditional chain. Every chain shares one
// continuation label, generated by the outermost arm and passed down;
// each arm body jumps to it, and only the outermost call emits it.
func (g *Generator) genIf(n *ast.If, cont string) error {
	outer := cont == ""
	if outer {
		cont = g.freshLabel()
	}

	v, _, err := g.genExpr(n.Cond)
	if err != nil {
		return err
	}

	then := g.freshLabel()
	next := g.freshLabel()
	g.jump("jnz %s, %s, %s", v, then, next)

	g.label(then)
	if err := g.genBlock(n.Then); err != nil {
		return err
	}
	g.jump("jmp %s", cont)

	g.label(next)
	switch e := n.Else.(type) {
	case nil:
	case *ast.If:
		if err := g.genIf(e, cont); err != nil {
			return err
		}
	case *ast.Else:
		if err := g.genBlock(e.Body); err != nil {
			return err
		}
		g.jump("jmp %s", cont)
	default:
		return g.fatalf("unsupported else branch %T", n.Else)
	}

	if outer {
		g.label(cont)
	}
	return nil
}

// ============================================================================
// EXPRESSION LOWERING
// ============================================================================

// genExpr lowers an expression and returns the IR value holding its
// result together with its base type.
func (g *Generator) genExpr(expr ast.Expression) (string, storageKind, error) {
	switch n := expr.(type) {
	case *ast.NumberLit:
		if n.IsFloat {
			return "d_" + strconv.FormatFloat(n.Float, 'g', -1, 64), 'd', nil
		}
		return strconv.FormatInt(n.Int, 10), 'l', nil

	case *ast.StringLit:
		return g.internString(n.Value), 'l', nil

	case *ast.Ident:
		sym, ok := g.scope.lookup(n.Name)
		if !ok {
			return "", 0, g.fatalf("unresolved identifier %q", n.Name)
		}
		tmp := g.freshTmp()
		g.ins("%s =%s load%s %s", tmp, sym.kind, sym.kind, sym.addr)
		return tmp, sym.kind, nil

	case *ast.BinOp:
		return g.genBinOp(n)

	case *ast.FuncCall:
		return g.genCall(n)

	default:
		return "", 0, g.fatalf("unsupported expression %T", expr)
	}
}

// arithOps maps arithmetic tokens to IR mnemonics. The result type
// equals the operand type.
var arithOps = map[lexer.Token]string{
	lexer.ADD: "add",
	lexer.SUB: "sub",
	lexer.MUL: "mul",
	lexer.DIV: "div",
	lexer.MOD: "rem",
}

// cmpOps maps comparison tokens to IR mnemonics. Comparisons always
// produce a w-typed boolean.
var cmpOps = map[lexer.Token]string{
	lexer.EQ: "ceq",
	lexer.NE: "cne",
	lexer.LT: "slt",
	lexer.LE: "sle",
	lexer.GT: "sgt",
	lexer.GE: "sge",
}

func (g *Generator) genBinOp(n *ast.BinOp) (string, storageKind, error) {
	lv, lk, err := g.genExpr(n.Left)
	if err != nil {
		return "", 0, err
	}
	rv, rk, err := g.genExpr(n.Right)
	if err != nil {
		return "", 0, err
	}
	if lk != rk {
		return "", 0, g.fatalf("mixed-type operands for binary %q", n.Op.String())
	}

	if mn, ok := arithOps[n.Op]; ok {
		tmp := g.freshTmp()
		g.ins("%s =%s %s%s %s, %s", tmp, lk, mn, lk, lv, rv)
		return tmp, lk, nil
	}
	if mn, ok := cmpOps[n.Op]; ok {
		tmp := g.freshTmp()
		g.ins("%s =w %s%s %s, %s", tmp, mn, lk, lv, rv)
		return tmp, 'w', nil
	}

	return "", 0, g.fatalf("unsupported binary operator %q", n.Op.String())
}

// genCall lowers a call. Declared parameters dictate the IR type of
// the matching arguments; variadic tail arguments keep their own
// inferred type. Calling an unregistered function warns and assumes
// l-typed arguments and return.
func (g *Generator) genCall(call *ast.FuncCall) (string, storageKind, error) {
	def := g.funcs[call.Name]
	if def == nil {
		g.sink.Warnf("", 0, 0, "call to unknown function %q", call.Name)
	}

	var declared []*ast.Param
	variadic := false
	if def != nil {
		for _, p := range def.Params {
			if p.Variadic {
				variadic = true
			} else {
				declared = append(declared, p)
			}
		}
	}

	vals := make([]string, len(call.Args))
	kinds := make([]storageKind, len(call.Args))
	for i, arg := range call.Args {
		v, k, err := g.genExpr(arg)
		if err != nil {
			return "", 0, err
		}
		vals[i] = v
		kinds[i] = k
	}

	var parts []string
	for i, v := range vals {
		kind := kinds[i]
		if def == nil {
			kind = 'l'
		}
		if i < len(declared) {
			dk, err := g.baseType(declared[i].Type)
			if err != nil {
				return "", 0, err
			}
			kind = dk
		}
		if variadic && i == len(declared) {
			parts = append(parts, "...")
		}
		parts = append(parts, kind.String()+" "+v)
	}
	if variadic && len(vals) <= len(declared) {
		parts = append(parts, "...")
	}

	retKind := storageKind('l')
	if def != nil {
		rk, err := g.baseType(def.ReturnType)
		if err != nil {
			return "", 0, err
		}
		retKind = rk
	}

	args := strings.Join(parts, ", ")
	if retKind == 0 {
		g.ins("call $%s(%s)", call.Name, args)
		return "", 0, nil
	}
	tmp := g.freshTmp()
	g.ins("%s =%s call $%s(%s)", tmp, retKind, call.Name, args)
	return tmp, retKind, nil
}
