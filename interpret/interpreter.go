// Package interpret walks the AST, evaluating expressions to runtime values
// and executing statements for effect.
package interpret

import (
	"fmt"
	"io"
	"time"

	"golox/ast"
)

// maxCallDepth bounds language-level call nesting so that runaway recursion
// surfaces as a reported runtime error instead of exhausting the host stack.
const maxCallDepth = 1024

type runtimeError struct {
	token ast.Token
	msg   string
}

func (r runtimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", r.msg, r.token.Line)
}

// completion tags the outcome of executing a statement: it either completed
// normally or is unwinding a return. The tag is threaded explicitly through
// block, if and while execution; only the function-call boundary converts a
// return back into a plain value.
type completion uint8

const (
	completionNormal completion = iota
	completionReturn
)

type control struct {
	kind  completion
	value interface{}
}

// Interpreter holds the global scope and the current execution environment
// for a program to be executed. The globals survive across Interpret calls,
// so a REPL can feed the same interpreter one program per line.
type Interpreter struct {
	// current execution environment
	environment *Environment
	// global variables
	globals *Environment
	// the arena of the program being executed
	tree *ast.Tree
	// scope distances for variable references, keyed by node id
	locals map[ast.ExprID]int
	// language-level call nesting depth
	callDepth int
	// standard output
	stdOut io.Writer
	// standard error
	stdErr io.Writer
}

// NewInterpreter sets up a new interpreter with its global environment
func NewInterpreter(stdOut io.Writer, stdErr io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", clock{start: time.Now()})

	return &Interpreter{
		globals:     globals,
		environment: globals,
		stdOut:      stdOut,
		stdErr:      stdErr,
	}
}

// Interpret executes a resolved program. A runtime error aborts execution
// immediately: it is reported to stdErr with its line and the function
// returns true. Side effects produced before the error stand.
func (in *Interpreter) Interpret(tree *ast.Tree, program []ast.StmtID, locals map[ast.ExprID]int) (hadRuntimeError bool) {
	in.tree = tree
	in.locals = locals
	in.environment = in.globals
	in.callDepth = 0

	for _, id := range program {
		if _, err := in.execute(id); err != nil {
			_, _ = in.stdErr.Write([]byte(err.Error() + "\n"))
			return true
		}
	}
	return false
}

func (in *Interpreter) execute(id ast.StmtID) (control, error) {
	stmt := in.tree.Stmt(id)
	switch stmt.Kind {
	case ast.StmtExpression:
		_, err := in.evaluate(stmt.Expr)
		return control{}, err

	case ast.StmtPrint:
		value, err := in.evaluate(stmt.Expr)
		if err != nil {
			return control{}, err
		}
		_, err = in.stdOut.Write([]byte(stringify(value) + "\n"))
		return control{}, err

	case ast.StmtVar:
		var value interface{}
		if stmt.Expr != ast.NoExpr {
			var err error
			if value, err = in.evaluate(stmt.Expr); err != nil {
				return control{}, err
			}
		}
		in.environment.Define(stmt.Name.Lexeme, value)
		return control{}, nil

	case ast.StmtBlock:
		return in.executeBlock(stmt.Body, NewEnvironment(in.environment))

	case ast.StmtIf:
		cond, err := in.evaluate(stmt.Cond)
		if err != nil {
			return control{}, err
		}
		if isTruthy(cond) {
			return in.execute(stmt.Then)
		}
		if stmt.Else != ast.NoStmt {
			return in.execute(stmt.Else)
		}
		return control{}, nil

	case ast.StmtWhile:
		for {
			cond, err := in.evaluate(stmt.Cond)
			if err != nil {
				return control{}, err
			}
			if !isTruthy(cond) {
				return control{}, nil
			}
			ctrl, err := in.execute(stmt.LoopBody)
			if err != nil {
				return control{}, err
			}
			if ctrl.kind == completionReturn {
				return ctrl, nil
			}
		}

	case ast.StmtFunction:
		fn := &function{tree: in.tree, locals: in.locals, declaration: id, closure: in.environment}
		in.environment.Define(stmt.Name.Lexeme, fn)
		return control{}, nil

	case ast.StmtReturn:
		var value interface{}
		if stmt.Expr != ast.NoExpr {
			var err error
			if value, err = in.evaluate(stmt.Expr); err != nil {
				return control{}, err
			}
		}
		return control{kind: completionReturn, value: value}, nil

	case ast.StmtClass:
		return control{}, in.executeClass(stmt)
	}

	return control{}, nil
}

// executeClass evaluates an optional superclass reference, builds the
// method table (methods close over an environment that binds "super" when
// a superclass exists), and binds the class in the current environment.
func (in *Interpreter) executeClass(stmt *ast.Stmt) error {
	var superclass *class
	if stmt.Superclass != ast.NoExpr {
		superVal, err := in.evaluate(stmt.Superclass)
		if err != nil {
			return err
		}
		sc, ok := superVal.(*class)
		if !ok {
			return runtimeError{token: in.tree.Expr(stmt.Superclass).Name, msg: "Superclass must be a class."}
		}
		superclass = sc
	}

	in.environment.Define(stmt.Name.Lexeme, nil)

	closure := in.environment
	if superclass != nil {
		closure = NewEnvironment(in.environment)
		closure.Define("super", superclass)
	}

	methods := make(map[string]*function, len(stmt.Methods))
	for _, methodID := range stmt.Methods {
		method := in.tree.Stmt(methodID)
		methods[method.Name.Lexeme] = &function{
			tree:          in.tree,
			locals:        in.locals,
			declaration:   methodID,
			closure:       closure,
			isInitializer: method.Name.Lexeme == "init",
		}
	}

	return in.environment.Assign(stmt.Name, &class{name: stmt.Name.Lexeme, superclass: superclass, methods: methods})
}

// executeBlock executes statements within the given environment, restoring
// the previous environment when done. A return completion stops execution
// of the remaining statements and propagates to the caller.
func (in *Interpreter) executeBlock(statements []ast.StmtID, env *Environment) (control, error) {
	previous := in.environment
	defer func() { in.environment = previous }()

	in.environment = env
	for _, statement := range statements {
		ctrl, err := in.execute(statement)
		if err != nil {
			return control{}, err
		}
		if ctrl.kind == completionReturn {
			return ctrl, nil
		}
	}
	return control{}, nil
}

func (in *Interpreter) evaluate(id ast.ExprID) (interface{}, error) {
	expr := in.tree.Expr(id)
	switch expr.Kind {
	case ast.ExprLiteral:
		return expr.Value, nil

	case ast.ExprGrouping:
		return in.evaluate(expr.Inner)

	case ast.ExprUnary:
		return in.evaluateUnary(expr)

	case ast.ExprBinary:
		return in.evaluateBinary(expr)

	case ast.ExprLogical:
		left, err := in.evaluate(expr.Left)
		if err != nil {
			return nil, err
		}
		if expr.Operator.TokenType == ast.TokenOr {
			if isTruthy(left) {
				return left, nil
			}
		} else { // and
			if !isTruthy(left) {
				return left, nil
			}
		}
		return in.evaluate(expr.Right)

	case ast.ExprTernary:
		cond, err := in.evaluate(expr.Cond)
		if err != nil {
			return nil, err
		}
		if isTruthy(cond) {
			return in.evaluate(expr.Then)
		}
		return in.evaluate(expr.Else)

	case ast.ExprVariable:
		return in.lookupVariable(expr.Name, id)

	case ast.ExprAssign:
		value, err := in.evaluate(expr.Right)
		if err != nil {
			return nil, err
		}
		if distance, ok := in.locals[id]; ok {
			in.environment.AssignAt(distance, expr.Name.Lexeme, value)
		} else if err := in.globals.Assign(expr.Name, value); err != nil {
			return nil, err
		}
		return value, nil

	case ast.ExprCall:
		return in.evaluateCall(expr)

	case ast.ExprGet:
		object, err := in.evaluate(expr.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := object.(*instance)
		if !ok {
			return nil, runtimeError{token: expr.Name, msg: "Only instances have properties."}
		}
		return inst.get(expr.Name)

	case ast.ExprSet:
		object, err := in.evaluate(expr.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := object.(*instance)
		if !ok {
			return nil, runtimeError{token: expr.Name, msg: "Only instances have fields."}
		}
		value, err := in.evaluate(expr.Right)
		if err != nil {
			return nil, err
		}
		inst.set(expr.Name, value)
		return value, nil

	case ast.ExprThis:
		return in.lookupVariable(expr.Keyword, id)

	case ast.ExprSuper:
		return in.evaluateSuper(expr, id)
	}

	return nil, nil
}

func (in *Interpreter) evaluateUnary(expr *ast.Expr) (interface{}, error) {
	right, err := in.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.TokenType {
	case ast.TokenBang:
		return !isTruthy(right), nil
	case ast.TokenMinus:
		operand, ok := right.(float64)
		if !ok {
			return nil, runtimeError{token: expr.Operator, msg: "Operand must be a number."}
		}
		return -operand, nil
	}
	return nil, nil
}

func (in *Interpreter) evaluateBinary(expr *ast.Expr) (interface{}, error) {
	left, err := in.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.TokenType {
	case ast.TokenPlus:
		if l, ok := left.(float64); ok {
			if r, ok := right.(float64); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(string); ok {
			if r, ok := right.(string); ok {
				return l + r, nil
			}
		}
		return nil, runtimeError{token: expr.Operator, msg: "Operands must be two numbers or two strings."}
	case ast.TokenMinus:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l - r, nil
	case ast.TokenStar:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l * r, nil
	case ast.TokenSlash:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		if r == 0 {
			return nil, runtimeError{token: expr.Operator, msg: "Division by zero."}
		}
		return l / r, nil

	// comparison
	case ast.TokenGreater:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l > r, nil
	case ast.TokenGreaterEqual:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l >= r, nil
	case ast.TokenLess:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l < r, nil
	case ast.TokenLessEqual:
		l, r, err := numberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l <= r, nil

	case ast.TokenEqualEqual:
		return isEqual(left, right), nil
	case ast.TokenBangEqual:
		return !isEqual(left, right), nil
	}
	return nil, nil
}

func (in *Interpreter) evaluateCall(expr *ast.Expr) (interface{}, error) {
	callee, err := in.evaluate(expr.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]interface{}, len(expr.Args))
	for i, arg := range expr.Args {
		if args[i], err = in.evaluate(arg); err != nil {
			return nil, err
		}
	}

	fn, ok := callee.(callable)
	if !ok {
		return nil, runtimeError{token: expr.Paren, msg: "Can only call functions and classes."}
	}

	if len(args) != fn.arity() {
		return nil, runtimeError{token: expr.Paren,
			msg: fmt.Sprintf("Expected %d arguments but got %d.", fn.arity(), len(args))}
	}

	if in.callDepth >= maxCallDepth {
		return nil, runtimeError{token: expr.Paren, msg: "Stack overflow."}
	}
	in.callDepth++
	defer func() { in.callDepth-- }()

	return fn.call(in, args)
}

// evaluateSuper starts the method search one level above the class that
// defines the currently executing method (per the resolved binding), while
// "this" stays bound to the original instance.
func (in *Interpreter) evaluateSuper(expr *ast.Expr, id ast.ExprID) (interface{}, error) {
	distance := in.locals[id]
	superVal, _ := in.environment.GetAt(distance, "super")
	superclass, ok := superVal.(*class)
	if !ok {
		return nil, runtimeError{token: expr.Keyword, msg: "Unresolved 'super' binding."}
	}

	thisVal, _ := in.environment.GetAt(distance-1, "this")
	object, ok := thisVal.(*instance)
	if !ok {
		return nil, runtimeError{token: expr.Keyword, msg: "Unresolved 'this' binding."}
	}

	method, ok := superclass.findMethod(expr.Method.Lexeme)
	if !ok {
		return nil, runtimeError{token: expr.Method, msg: fmt.Sprintf("Undefined property '%s'.", expr.Method.Lexeme)}
	}
	return method.bind(object), nil
}

// lookupVariable returns the value of a variable. Resolved references walk
// exactly the recorded distance; everything else is a global looked up by name.
func (in *Interpreter) lookupVariable(name ast.Token, id ast.ExprID) (interface{}, error) {
	if distance, ok := in.locals[id]; ok {
		value, defined := in.environment.GetAt(distance, name.Lexeme)
		if !defined {
			return nil, runtimeError{token: name, msg: fmt.Sprintf("Unresolved variable '%s'.", name.Lexeme)}
		}
		return value, nil
	}
	return in.globals.Get(name)
}

func numberOperands(operator ast.Token, left, right interface{}) (float64, float64, error) {
	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, runtimeError{token: operator, msg: "Operands must be numbers."}
	}
	return l, r, nil
}
