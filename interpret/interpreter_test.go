package interpret

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/ast"
	"golox/parse"
	"golox/resolve"
	"golox/scan"
)

func compile(t *testing.T, source string) (*ast.Tree, []ast.StmtID, map[ast.ExprID]int) {
	t.Helper()
	tokens, hadScanError := scan.NewScanner(source, io.Discard).ScanTokens()
	require.False(t, hadScanError)

	tree, program, hadParseError := parse.NewParser(tokens, io.Discard).Parse()
	require.False(t, hadParseError)

	locals, hadResolveError := resolve.NewResolver(io.Discard).ResolveProgram(tree, program)
	require.False(t, hadResolveError)
	return tree, program, locals
}

func interpretSource(t *testing.T, source string) (stdOut, stdErr string, hadRuntimeError bool) {
	t.Helper()
	tree, program, locals := compile(t, source)

	var out, errOut bytes.Buffer
	hadRuntimeError = NewInterpreter(&out, &errOut).Interpret(tree, program, locals)
	return out.String(), errOut.String(), hadRuntimeError
}

func TestClockIsMonotonic(t *testing.T) {
	stdOut, stdErr, hadRuntimeError := interpretSource(t, `
var t1 = clock();
var t2 = clock();
print t2 >= t1;
print t1 >= 0;`)
	require.False(t, hadRuntimeError)
	require.Empty(t, stdErr)
	assert.Equal(t, "true\ntrue\n", stdOut)
}

// One interpreter can execute several independently parsed programs; globals
// carry over even though each program has its own arena and side table.
func TestGlobalsSurviveAcrossPrograms(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	in := NewInterpreter(&stdOut, &stdErr)

	tree, program, locals := compile(t, `var count = 0;
fun bump() {
  count = count + 1;
}`)
	require.False(t, in.Interpret(tree, program, locals))

	tree, program, locals = compile(t, `bump();
bump();
print count;`)
	require.False(t, in.Interpret(tree, program, locals))

	require.Empty(t, stdErr.String())
	assert.Equal(t, "2\n", stdOut.String())
}

func TestRuntimeErrorAbortsExecution(t *testing.T) {
	stdOut, stdErr, hadRuntimeError := interpretSource(t, `
print "first";
print 1 + nil;
print "never";`)
	assert.True(t, hadRuntimeError)
	assert.Equal(t, "first\n", stdOut)
	assert.Equal(t, "Operands must be two numbers or two strings.\n[line 3]\n", stdErr)
}

// The depth guard resets between programs: a blown stack on one run must not
// poison the next.
func TestCallDepthResetsBetweenPrograms(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	in := NewInterpreter(&stdOut, &stdErr)

	tree, program, locals := compile(t, `fun loop() {
  loop();
}
loop();`)
	require.True(t, in.Interpret(tree, program, locals))
	assert.Equal(t, "Stack overflow.\n[line 2]\n", stdErr.String())

	stdErr.Reset()
	tree, program, locals = compile(t, `fun ok() {
  return "fine";
}
print ok();`)
	require.False(t, in.Interpret(tree, program, locals))
	assert.Empty(t, stdErr.String())
	assert.Equal(t, "fine\n", stdOut.String())
}

func TestMethodValuesStringify(t *testing.T) {
	stdOut, stdErr, hadRuntimeError := interpretSource(t, `
fun top() {}
class A {
  method() {}
}
print top;
print A().method;`)
	require.False(t, hadRuntimeError)
	require.Empty(t, stdErr)
	assert.Equal(t, "<fn top>\n<fn method>\n", stdOut)
}

// Assignments through a closure and through the declaring scope observe the
// same environment.
func TestClosuresShareTheirEnvironment(t *testing.T) {
	stdOut, stdErr, hadRuntimeError := interpretSource(t, `
fun makeBox() {
  var value = "empty";
  fun put(v) {
    value = v;
  }
  fun take() {
    return value;
  }
  put("full");
  print take();
}
makeBox();`)
	require.False(t, hadRuntimeError)
	require.Empty(t, stdErr)
	assert.Equal(t, "full\n", stdOut)
}
