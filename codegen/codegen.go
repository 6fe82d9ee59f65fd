// Package codegen walks the AST and emits textual SSA IR for the QBE
// backend, then drives the backend and the system C compiler to
// produce a native executable.
//
// All emitter state — scope stack, function table, string pool, fresh
// name counters — lives for exactly one Generate or EmitIR call.
package codegen

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/quark-lang/quark/ast"
	"github.com/quark-lang/quark/diag"
)

// storageKind is a QBE base type: w (32-bit int), l (64-bit
// int/pointer), s (32-bit float), d (64-bit float). The zero value
// stands for void.
type storageKind byte

func (k storageKind) String() string {
	return string(byte(k))
}

// symbol binds a source name to the temporary holding its stack slot
// address and the base type stored there.
type symbol struct {
	name string
	addr string
	kind storageKind
}

// scope is one link of the scope stack. Lookup walks inner to outer.
type scope struct {
	parent  *scope
	symbols []symbol
}

func (s *scope) lookup(name string) (symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		for _, sym := range sc.symbols {
			if sym.name == name {
				return sym, true
			}
		}
	}
	return symbol{}, false
}

// stringEntry is one pooled string literal.
type stringEntry struct {
	data []byte
	name string
}

// Generator holds the emitter state for a single generate call.
type Generator struct {
	// Backend is the IR assembler command, qbe by default.
	Backend string
	// CC is the C compiler/linker command, cc by default.
	CC string
	// KeepIntermediates retains the .qbe and .asm files on success.
	KeepIntermediates bool

	sink *diag.Sink

	buf     bytes.Buffer
	funcs   map[string]*ast.FuncDef
	pool    []stringEntry
	poolIdx map[string]string
	scope   *scope
	tmps    int
	lbls    int

	// terminated tracks whether the current basic block already ended
	// in a jump, so unreachable instructions are not emitted.
	terminated bool
}

// New creates a generator reporting through sink.
func New(sink *diag.Sink) *Generator {
	return &Generator{
		Backend: "qbe",
		CC:      "cc",
		sink:    sink,
	}
}

// reset clears all per-call state.
func (g *Generator) reset() {
	g.buf.Reset()
	g.funcs = make(map[string]*ast.FuncDef)
	g.pool = nil
	g.poolIdx = make(map[string]string)
	g.scope = nil
	g.tmps = 0
	g.lbls = 0
	g.terminated = false
}

// fatalf reports a fatal emission diagnostic and returns it as an
// error. Emitter-stage diagnostics carry no source buffer.
func (g *Generator) fatalf(format string, args ...interface{}) error {
	g.sink.Fatalf("", 0, 0, format, args...)
	return errors.Errorf(format, args...)
}

// freshTmp returns the next %tN temporary.
func (g *Generator) freshTmp() string {
	name := fmt.Sprintf("%%t%d", g.tmps)
	g.tmps++
	return name
}

// freshLabel returns the next @lN label.
func (g *Generator) freshLabel() string {
	name := fmt.Sprintf("@l%d", g.lbls)
	g.lbls++
	return name
}

// pushScope enters a new innermost scope.
func (g *Generator) pushScope() {
	g.scope = &scope{parent: g.scope}
}

// popScope leaves the innermost scope.
func (g *Generator) popScope() {
	g.scope = g.scope.parent
}

// bind registers a symbol in the innermost scope.
func (g *Generator) bind(name, addr string, kind storageKind) {
	g.scope.symbols = append(g.scope.symbols, symbol{name: name, addr: addr, kind: kind})
}

// ins emits one indented instruction. Instructions after a block
// terminator are unreachable and dropped.
func (g *Generator) ins(format string, args ...interface{}) {
	if g.terminated {
		return
	}
	fmt.Fprintf(&g.buf, "\t"+format+"\n", args...)
}

// jump emits a block terminator (jmp, jnz or ret) and marks the block
// as closed.
func (g *Generator) jump(format string, args ...interface{}) {
	if g.terminated {
		return
	}
	fmt.Fprintf(&g.buf, "\t"+format+"\n", args...)
	g.terminated = true
}

// label starts a new basic block.
func (g *Generator) label(name string) {
	fmt.Fprintf(&g.buf, "%s\n", name)
	g.terminated = false
}

// baseType maps a source type name to its QBE base type. The empty
// name is the inferred default and maps to l.
func (g *Generator) baseType(name string) (storageKind, error) {
	switch name {
	case "int", "uint", "string":
		return 'l', nil
	case "char":
		return 'w', nil
	case "float", "double":
		return 'd', nil
	case "void":
		return 0, nil
	case "":
		return 'l', nil
	default:
		return 0, g.fatalf("unknown type name %q", name)
	}
}

// slotSize returns the alloc mnemonic and byte count for a base type.
func slotSize(kind storageKind) (string, int) {
	if kind == 'w' || kind == 's' {
		return "alloc4", 4
	}
	return "alloc8", 8
}

// zeroValue is the IR immediate used when a definition has no value.
func zeroValue(kind storageKind) string {
	if kind == 's' || kind == 'd' {
		return "d_0"
	}
	return "0"
}

// EmitIR lowers a program to textual IR without invoking the backend.
func (g *Generator) EmitIR(prog *ast.Program) (string, error) {
	if prog == nil {
		return "", g.fatalf("root node must be a program")
	}
	g.reset()

	// First pass: pool every string literal in pre-order and register
	// every function, declarations included.
	for _, item := range prog.Items {
		if def, ok := item.(*ast.FuncDef); ok {
			g.registerFunc(def)
			if def.Body != nil {
				g.internBlock(def.Body)
			}
		}
	}

	for _, entry := range g.pool {
		g.buf.WriteString("data " + entry.name + " = { ")
		for _, b := range entry.data {
			fmt.Fprintf(&g.buf, "b %d, ", b)
		}
		g.buf.WriteString("b 0 }\n")
	}
	if len(g.pool) > 0 {
		g.buf.WriteString("\n")
	}

	for _, item := range prog.Items {
		def, ok := item.(*ast.FuncDef)
		if !ok || def.Body == nil {
			continue
		}
		if err := g.genFunc(def); err != nil {
			return "", err
		}
	}

	return g.buf.String(), nil
}

// registerFunc records a function in the global table. A definition
// always wins over a forward declaration of the same name.
func (g *Generator) registerFunc(def *ast.FuncDef) {
	if existing, ok := g.funcs[def.Name]; ok && existing.Body != nil {
		return
	}
	g.funcs[def.Name] = def
}

// internString pools a literal, deduplicated by exact byte content.
func (g *Generator) internString(data []byte) string {
	if name, ok := g.poolIdx[string(data)]; ok {
		return name
	}
	name := fmt.Sprintf("$str%d", len(g.pool))
	g.pool = append(g.pool, stringEntry{data: data, name: name})
	g.poolIdx[string(data)] = name
	return name
}

// Generate lowers the program, writes <outputPath>.qbe, assembles it
// with the backend and links the result with the C compiler. The
// intermediates are removed on success unless KeepIntermediates is
// set; on backend failure they remain for inspection.
func (g *Generator) Generate(prog *ast.Program, outputPath string) error {
	ir, err := g.EmitIR(prog)
	if err != nil {
		return err
	}

	qbePath := outputPath + ".qbe"
	asmPath := outputPath + ".asm"

	if err := os.WriteFile(qbePath, []byte(ir), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", qbePath)
	}

	if err := g.run(g.Backend, "-o", asmPath, qbePath); err != nil {
		return errors.Wrapf(err, "backend %s failed", g.Backend)
	}

	if err := g.run(g.CC, "-o", outputPath, asmPath); err != nil {
		return errors.Wrapf(err, "linking with %s failed", g.CC)
	}

	if !g.KeepIntermediates {
		os.Remove(qbePath)
		os.Remove(asmPath)
	}
	return nil
}

// run executes an external collaborator synchronously, forwarding its
// output to ours.
func (g *Generator) run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
