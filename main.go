package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"golox/interpret"
	"golox/parse"
	"golox/resolve"
	"golox/scan"
)

func main() {
	app := cli.NewApp()
	app.Name = "golox"
	app.Usage = "tree-walking interpreter for the Lox language"
	app.ArgsUsage = "[script]"
	app.Description = "Runs a script file, or starts an interactive prompt when no file is given.\n" +
		"Exits with 65 on a syntax or resolution error and 70 on a runtime error."
	app.HideVersion = true
	app.Action = func(ctx *cli.Context) error {
		switch ctx.NArg() {
		case 0:
			return runPrompt()
		case 1:
			return runFile(ctx.Args().First())
		default:
			return cli.NewExitError("Usage: golox [script]", 64)
		}
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(64)
	}
}

// runFile executes a script and maps its outcome to the process exit code:
// 65 for scan, parse or resolution errors, 70 for a runtime error.
func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("golox: %v", err), 64)
	}

	r := newRunner(os.Stdout, diagnosticWriter(os.Stderr))
	hadError, hadRuntimeError := r.run(string(source))
	if hadError {
		return cli.NewExitError("", 65)
	}
	if hadRuntimeError {
		return cli.NewExitError("", 70)
	}
	return nil
}

// runPrompt reads and runs one line at a time. The interpreter persists
// across lines, so globals defined on one line are visible on the next;
// errors are reported and the prompt continues.
func runPrompt() error {
	r := newRunner(os.Stdout, diagnosticWriter(os.Stderr))

	input := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !input.Scan() {
			break
		}
		r.run(input.Text())
	}
	return input.Err()
}

// diagnosticWriter colors diagnostics red. When color output is disabled
// (not a terminal, NO_COLOR set), the text passes through unchanged.
func diagnosticWriter(w io.Writer) io.Writer {
	red := color.New(color.FgRed)
	return writerFunc(func(p []byte) (int, error) {
		if _, err := red.Fprint(w, string(p)); err != nil {
			return 0, err
		}
		return len(p), nil
	})
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func newRunner(stdOut io.Writer, stdErr io.Writer) *runner {
	return &runner{interpreter: interpret.NewInterpreter(stdOut, stdErr), stdErr: stdErr}
}

type runner struct {
	interpreter *interpret.Interpreter
	stdErr      io.Writer
}

// run pushes a source string through the full pipeline. Scan errors do not
// stop the parser (it sees whatever tokens were recovered), but any static
// error prevents interpretation.
func (r *runner) run(source string) (hadError, hadRuntimeError bool) {
	tokens, hadScanError := scan.NewScanner(source, r.stdErr).ScanTokens()

	tree, program, hadParseError := parse.NewParser(tokens, r.stdErr).Parse()
	if hadParseError {
		return true, false
	}

	locals, hadResolveError := resolve.NewResolver(r.stdErr).ResolveProgram(tree, program)
	if hadScanError || hadResolveError {
		return true, false
	}

	return false, r.interpreter.Interpret(tree, program, locals)
}
