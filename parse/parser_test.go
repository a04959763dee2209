package parse

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/ast"
	"golox/scan"
)

func parseSource(t *testing.T, source string) (*ast.Tree, []ast.StmtID) {
	t.Helper()
	tokens, hadScanError := scan.NewScanner(source, io.Discard).ScanTokens()
	require.False(t, hadScanError)

	tree, program, hadError := NewParser(tokens, io.Discard).Parse()
	require.False(t, hadError)
	return tree, program
}

// parseExpression parses a single expression statement and returns the
// expression node.
func parseExpression(t *testing.T, source string) (*ast.Tree, ast.ExprID) {
	t.Helper()
	tree, program := parseSource(t, source+";")
	require.Len(t, program, 1)

	stmt := tree.Stmt(program[0])
	require.Equal(t, ast.StmtExpression, stmt.Kind)
	return tree, stmt.Expr
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: "1 + 2 * 3", want: "(+ 1 (* 2 3))"},
		{source: "(1 + 2) * 3", want: "(* (group (+ 1 2)) 3)"},
		{source: "10 - 4 / 2", want: "(- 10 (/ 4 2))"},
		{source: "-1 - -2", want: "(- (- 1) (- 2))"},
		{source: "!!true", want: "(! (! true))"},
		{source: "nil", want: "nil"},
		{source: `"foo" + "bar"`, want: "(+ foo bar)"},
		{source: "1 < 2 == true", want: "(== (< 1 2) true)"},
		{source: "a or b and c", want: "(or a (and b c))"},
		{source: "a = b = 1", want: "(= a (= b 1))"},
		{source: "x ? y : z ? w : v", want: "(?: x y (?: z w v))"},
		{source: "f(1, 2)(3)", want: "(call (call f 1 2) 3)"},
		{source: "a.b.c", want: "(get c (get b a))"},
		{source: "a.b = 1", want: "(set b a 1)"},
		{source: "this.x", want: "(get x this)"},
		{source: "super.method()", want: "(call (super method))"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			tree, expr := parseExpression(t, tt.source)
			assert.Equal(t, tt.want, ast.Print(tree, expr))
		})
	}
}

// A for loop is sugar: it parses into a block holding the initializer and a
// while loop whose body runs the increment after each iteration.
func TestParseForLoopDesugaring(t *testing.T) {
	tree, program := parseSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Len(t, program, 1)

	outer := tree.Stmt(program[0])
	require.Equal(t, ast.StmtBlock, outer.Kind)
	require.Len(t, outer.Body, 2)

	init := tree.Stmt(outer.Body[0])
	assert.Equal(t, ast.StmtVar, init.Kind)
	assert.Equal(t, "i", init.Name.Lexeme)

	loop := tree.Stmt(outer.Body[1])
	require.Equal(t, ast.StmtWhile, loop.Kind)
	assert.Equal(t, "(< i 3)", ast.Print(tree, loop.Cond))

	body := tree.Stmt(loop.LoopBody)
	require.Equal(t, ast.StmtBlock, body.Kind)
	require.Len(t, body.Body, 2)
	assert.Equal(t, ast.StmtPrint, tree.Stmt(body.Body[0]).Kind)

	increment := tree.Stmt(body.Body[1])
	require.Equal(t, ast.StmtExpression, increment.Kind)
	assert.Equal(t, "(= i (+ i 1))", ast.Print(tree, increment.Expr))
}

// A for loop with no clauses becomes a bare while (true).
func TestParseForLoopWithoutClauses(t *testing.T) {
	tree, program := parseSource(t, "for (;;) print 1;")
	require.Len(t, program, 1)

	loop := tree.Stmt(program[0])
	require.Equal(t, ast.StmtWhile, loop.Kind)
	assert.Equal(t, "true", ast.Print(tree, loop.Cond))
	assert.Equal(t, ast.StmtPrint, tree.Stmt(loop.LoopBody).Kind)
}

func TestParseClassDeclaration(t *testing.T) {
	tree, program := parseSource(t, `
class Derived < Base {
  init(tag) {}
  describe() {}
}`)
	require.Len(t, program, 1)

	stmt := tree.Stmt(program[0])
	require.Equal(t, ast.StmtClass, stmt.Kind)
	assert.Equal(t, "Derived", stmt.Name.Lexeme)

	require.NotEqual(t, ast.NoExpr, stmt.Superclass)
	assert.Equal(t, "Base", ast.Print(tree, stmt.Superclass))

	require.Len(t, stmt.Methods, 2)
	init := tree.Stmt(stmt.Methods[0])
	assert.Equal(t, "init", init.Name.Lexeme)
	require.Len(t, init.Params, 1)
	assert.Equal(t, "tag", init.Params[0].Lexeme)
	assert.Equal(t, "describe", tree.Stmt(stmt.Methods[1]).Name.Lexeme)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		errors string
	}{
		{
			name:   "missing semicolon",
			source: "print 1",
			errors: "[line 1] Error at end: Expect ';' after value.\n",
		},
		{
			name:   "missing variable name",
			source: "var = 1;",
			errors: "[line 1] Error at '=': Expect variable name.\n",
		},
		{
			name:   "unclosed grouping",
			source: "(1 + 2;",
			errors: "[line 1] Error at ';': Expect ')' after expression.\n",
		},
		{
			name:   "invalid assignment target",
			source: "1 + 2 = 3;",
			errors: "[line 1] Error at '=': Invalid assignment target.\n",
		},
		{
			name:   "super without a method",
			source: "super;",
			errors: "[line 1] Error at ';': Expect '.' after 'super'.\n",
		},
		{
			name:   "unclosed block",
			source: "{ print 1;",
			errors: "[line 1] Error at end: Expect '}' after block.\n",
		},
		{
			name:   "missing comma between parameters",
			source: "fun f(a b) {}",
			errors: "[line 1] Error at 'b': Expect ')' after parameters.\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tokens, _ := scan.NewScanner(tt.source, io.Discard).ScanTokens()

			var stdErr bytes.Buffer
			_, _, hadError := NewParser(tokens, &stdErr).Parse()
			assert.True(t, hadError)
			assert.Equal(t, tt.errors, stdErr.String())
		})
	}
}

// After an error the parser skips to the next statement boundary, so one bad
// statement neither hides later errors nor drops later good statements.
func TestParseSynchronizes(t *testing.T) {
	tokens, _ := scan.NewScanner("var = 1;\nprint 2;\nvar = 3;", io.Discard).ScanTokens()

	var stdErr bytes.Buffer
	tree, program, hadError := NewParser(tokens, &stdErr).Parse()
	assert.True(t, hadError)
	assert.Equal(t,
		"[line 1] Error at '=': Expect variable name.\n[line 3] Error at '=': Expect variable name.\n",
		stdErr.String())

	require.Len(t, program, 1)
	assert.Equal(t, ast.StmtPrint, tree.Stmt(program[0]).Kind)
}
