package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/quark-lang/quark/codegen"
	"github.com/quark-lang/quark/diag"
	"github.com/quark-lang/quark/lexer"
	"github.com/quark-lang/quark/parser"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:      "quarkc",
		Usage:     "compiler for the Quark language",
		Version:   version,
		ArgsUsage: "<source-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output executable `path` (default: source file name without extension)",
			},
			&cli.BoolFlag{
				Name:  "emit-ir",
				Usage: "print the generated IR to stdout and stop",
			},
			&cli.BoolFlag{
				Name:  "dump-tokens",
				Usage: "print the token stream and stop",
			},
			&cli.BoolFlag{
				Name:  "dump-ast",
				Usage: "print the parsed program and stop",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "keep the .qbe and .asm intermediates",
			},
			&cli.StringFlag{
				Name:  "backend",
				Value: "qbe",
				Usage: "IR assembler `command`",
			},
			&cli.StringFlag{
				Name:  "cc",
				Value: "cc",
				Usage: "C compiler `command` used for linking",
			},
		},
		Action: compile,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func compile(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: quarkc [options] <source-file>", 1)
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	source := string(data)
	sink := diag.NewStderr()

	lex := lexer.New(source, sink)
	tokens := lex.TokenizeAll()
	if c.Bool("dump-tokens") {
		for _, tok := range tokens {
			fmt.Printf("[%4d:%-3d] %-8s %s\n", tok.Position.Line, tok.Position.Column, tok.Type, tok.Lexeme)
		}
		return nil
	}
	if lex.HasErrors() {
		return cli.Exit("", 1)
	}

	p := parser.New(tokens, source, sink)
	prog := p.ParseProgram()
	if prog == nil {
		return cli.Exit("", 1)
	}
	if c.Bool("dump-ast") {
		fmt.Println(prog.String())
		return nil
	}

	gen := codegen.New(sink)
	gen.Backend = c.String("backend")
	gen.CC = c.String("cc")
	gen.KeepIntermediates = c.Bool("keep")

	if c.Bool("emit-ir") {
		ir, err := gen.EmitIR(prog)
		if err != nil {
			return cli.Exit("", 1)
		}
		fmt.Print(ir)
		return nil
	}

	out := c.String("output")
	if out == "" {
		base := filepath.Base(path)
		out = strings.TrimSuffix(base, filepath.Ext(base))
		if out == "" {
			out = "a.out"
		}
	}
	if err := gen.Generate(prog, out); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
