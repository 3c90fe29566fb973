// Command parsus-demo evaluates a small arithmetic grammar built on
// package grammar, package combinators, and package engine. It exists
// to exercise the library end to end the way cmd/risor exercises the
// Risor evaluator: read an expression from -c or a file, parse it, and
// print the result or a colorized parse error.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/parsus/combinators"
	"github.com/deepnoodle-ai/parsus/engine"
	"github.com/deepnoodle-ai/parsus/grammar"
	"github.com/deepnoodle-ai/parsus/parseerr"
	"github.com/deepnoodle-ai/parsus/token"
)

// sumGrammar builds: sum := number (("+" | "-") number)*, over ignored
// whitespace, folding left to right.
func sumGrammar() *grammar.Grammar[int] {
	intTok := token.Regex("int", `\d+`, false)
	plusTok := token.Literal("plus", "+")
	minusTok := token.Literal("minus", "-")
	wsTok := token.Regex("ws", `\s+`, false).Ignored()

	number := func(scope *engine.Scope) int {
		m := engine.Token(scope, intTok)
		n := 0
		for _, c := range m.Text(engine.Input(scope)) {
			n = n*10 + int(c-'0')
		}
		return n
	}
	op := combinators.Or(combinators.Token(plusTok), combinators.Token(minusTok))
	root := combinators.LeftAssociative(number, op, func(acc int, opTok token.TokenMatch, next int) int {
		if opTok.Token.Name == "minus" {
			return acc - next
		}
		return acc + next
	})

	g := grammar.New(root)
	g.MustRegister(intTok)
	g.MustRegister(plusTok)
	g.MustRegister(minusTok)
	g.MustRegister(wsTok)
	return g
}

func main() {
	var noColor bool
	var expr string
	flag.BoolVar(&noColor, "no-color", false, "Disable color output")
	flag.StringVar(&expr, "c", "", "Expression to evaluate")
	flag.Parse()

	if noColor {
		color.NoColor = true
	}
	red := color.New(color.FgRed).SprintfFunc()

	nArgs := len(flag.Args())
	if nArgs > 0 && expr != "" {
		fmt.Fprintf(os.Stderr, "%s\n", red("error: cannot provide both a file and -c input"))
		os.Exit(1)
	}

	var input string
	switch {
	case nArgs == 1:
		data, err := os.ReadFile(flag.Args()[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", red(err.Error()))
			os.Exit(1)
		}
		input = string(data)
	case expr != "":
		input = expr
	default:
		fmt.Fprintf(os.Stderr, "%s\n", red("error: provide an expression with -c or as a file argument"))
		os.Exit(1)
	}

	g := sumGrammar()
	res := g.Parse(input)
	if !res.IsSuccess() {
		printParseError(red, input, res.Error())
		os.Exit(1)
	}
	fmt.Println(res.Value())
}

func printParseError(red func(string, ...any) string, input string, err parseerr.ParseError) {
	line, col := parseerr.Position(input, err.Offset())
	fmt.Fprintf(os.Stderr, "%s\n", red("parse error at line %d, column %d: %s", line, col, err.Error()))
}
