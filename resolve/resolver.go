// Package resolve performs the static scope-resolution pass over the AST.
package resolve

import (
	"fmt"
	"io"

	"golox/ast"
)

type functionType int

const (
	functionTypeNone functionType = iota
	functionTypeFunction
	functionTypeMethod
	functionTypeInitializer
)

type classType int

const (
	classTypeNone classType = iota
	classTypeClass
	classTypeSubClass
)

type scopeVar struct {
	token   ast.Token
	defined bool
	used    bool
}

// scope describes all the local variables
// declared and defined in the current scope
type scope map[string]*scopeVar

// declare a variable with the given name in this scope
func (s scope) declare(name string, token ast.Token) {
	s[name] = &scopeVar{token: token}
}

// define a variable with the given name in this scope
func (s scope) define(name string) {
	s[name].defined = true
}

// has returns whether a variable with the given
// name is declared and defined in this scope
func (s scope) has(name string) (declared, defined bool) {
	v, ok := s[name]
	if !ok {
		return false, false
	}
	return true, v.defined
}

// use sets a variable as used in this scope
func (s scope) use(name string) {
	s[name].used = true
}

// set declares a synthetic binding (this, super, parameters) that is
// defined immediately and exempt from the unused-variable warning
func (s scope) set(name string) {
	s[name] = &scopeVar{defined: true, used: true}
}

type scopes []scope

func (s *scopes) peek() scope {
	return (*s)[len(*s)-1]
}

func (s *scopes) push(scope scope) {
	*s = append(*s, scope)
}

func (s *scopes) pop() {
	*s = (*s)[:len(*s)-1]
}

// Resolver resolves the local variables in a program by simulating lexical
// scoping without executing anything. It produces a side table mapping each
// variable-reference node id to the number of enclosing scopes between the
// reference and the scope that defines the name. References not found in any
// local scope get no entry and are looked up in the global environment by
// name at run time.
type Resolver struct {
	tree   *ast.Tree
	scopes scopes
	locals map[ast.ExprID]int
	// currentFunction is the functionType of the current enclosing
	// function, used to reject return statements outside a function and
	// value-carrying returns inside an init method
	currentFunction functionType
	// the classType of the current enclosing class, used to
	// reject "this" and "super" outside a class
	currentClass classType
	stdErr       io.Writer
	hadError     bool
}

// NewResolver returns a new Resolver that reports errors to stdErr
func NewResolver(stdErr io.Writer) *Resolver {
	return &Resolver{locals: make(map[ast.ExprID]int), stdErr: stdErr}
}

// ResolveProgram resolves all the local variables in a program and returns
// the scope-distance table and whether any resolution error was found
func (r *Resolver) ResolveProgram(tree *ast.Tree, program []ast.StmtID) (map[ast.ExprID]int, bool) {
	r.tree = tree
	r.resolveStmts(program)
	return r.locals, r.hadError
}

func (r *Resolver) resolveStmts(statements []ast.StmtID) {
	for _, statement := range statements {
		r.resolveStmt(statement)
	}
}

func (r *Resolver) resolveStmt(id ast.StmtID) {
	stmt := r.tree.Stmt(id)
	switch stmt.Kind {
	case ast.StmtExpression, ast.StmtPrint:
		r.resolveExpr(stmt.Expr)

	case ast.StmtVar:
		r.declare(stmt.Name)
		if stmt.Expr != ast.NoExpr {
			r.resolveExpr(stmt.Expr)
		}
		r.define(stmt.Name)

	case ast.StmtBlock:
		r.beginScope()
		r.resolveStmts(stmt.Body)
		r.endScope()

	case ast.StmtIf:
		r.resolveExpr(stmt.Cond)
		r.resolveStmt(stmt.Then)
		if stmt.Else != ast.NoStmt {
			r.resolveStmt(stmt.Else)
		}

	case ast.StmtWhile:
		r.resolveExpr(stmt.Cond)
		r.resolveStmt(stmt.LoopBody)

	case ast.StmtFunction:
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.resolveFunction(stmt, functionTypeFunction)

	case ast.StmtReturn:
		if r.currentFunction == functionTypeNone {
			r.error(stmt.Keyword, "Can't return from top-level code.")
		}
		if stmt.Expr != ast.NoExpr {
			if r.currentFunction == functionTypeInitializer {
				r.error(stmt.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(stmt.Expr)
		}

	case ast.StmtClass:
		r.resolveClass(stmt)
	}
}

func (r *Resolver) resolveClass(stmt *ast.Stmt) {
	enclosingClass := r.currentClass
	defer func() { r.currentClass = enclosingClass }()

	r.currentClass = classTypeClass

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != ast.NoExpr {
		superclass := r.tree.Expr(stmt.Superclass)
		if stmt.Name.Lexeme == superclass.Name.Lexeme {
			r.error(superclass.Name, "A class can't inherit from itself.")
		}

		r.currentClass = classTypeSubClass
		r.resolveExpr(stmt.Superclass)

		r.beginScope()
		defer r.endScope()
		r.scopes.peek().set("super")
	}

	r.beginScope()
	r.scopes.peek().set("this")

	for _, method := range stmt.Methods {
		declaration := functionTypeMethod
		if r.tree.Stmt(method).Name.Lexeme == "init" {
			declaration = functionTypeInitializer
		}
		r.resolveFunction(r.tree.Stmt(method), declaration)
	}

	r.endScope()
}

// resolveFunction resolves a function statement. It begins a
// new scope and resolves the function body within the scope.
func (r *Resolver) resolveFunction(function *ast.Stmt, fnType functionType) {
	// change the current function type and save it back
	enclosingFunction := r.currentFunction
	r.currentFunction = fnType
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	for _, param := range function.Params {
		r.declare(param)
		r.define(param)
		// parameters are exempt from the unused-variable warning
		r.scopes.peek().use(param.Lexeme)
	}
	r.resolveStmts(function.Body)
	r.endScope()
}

func (r *Resolver) resolveExpr(id ast.ExprID) {
	expr := r.tree.Expr(id)
	switch expr.Kind {
	case ast.ExprLiteral:

	case ast.ExprGrouping:
		r.resolveExpr(expr.Inner)

	case ast.ExprUnary:
		r.resolveExpr(expr.Right)

	case ast.ExprBinary, ast.ExprLogical:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)

	case ast.ExprTernary:
		r.resolveExpr(expr.Cond)
		r.resolveExpr(expr.Then)
		r.resolveExpr(expr.Else)

	case ast.ExprVariable:
		if len(r.scopes) > 0 {
			if declared, defined := r.scopes.peek().has(expr.Name.Lexeme); declared && !defined {
				r.error(expr.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(id, expr.Name)

	case ast.ExprAssign:
		r.resolveExpr(expr.Right)
		r.resolveLocal(id, expr.Name)

	case ast.ExprCall:
		r.resolveExpr(expr.Callee)
		for _, argument := range expr.Args {
			r.resolveExpr(argument)
		}

	case ast.ExprGet:
		r.resolveExpr(expr.Object)

	case ast.ExprSet:
		r.resolveExpr(expr.Right)
		r.resolveExpr(expr.Object)

	case ast.ExprThis:
		if r.currentClass == classTypeNone {
			r.error(expr.Keyword, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(id, expr.Keyword)

	case ast.ExprSuper:
		if r.currentClass == classTypeNone {
			r.error(expr.Keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != classTypeSubClass {
			r.error(expr.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(id, expr.Keyword)
	}
}

// beginScope pushes a new scope to the stack
func (r *Resolver) beginScope() {
	r.scopes.push(make(scope))
}

// endScope pops the current scope. Before removing the scope, it warns
// about any local variable in the scope that was never read. The warning
// does not block interpretation.
func (r *Resolver) endScope() {
	for name, v := range r.scopes.peek() {
		if !v.used {
			r.warn(v.token, fmt.Sprintf("Variable '%s' declared but not used.", name))
		}
	}

	r.scopes.pop()
}

// declare a variable name within the current scope. If a variable with the
// same name is already declared in the current scope, it reports an error.
// Global declarations are not tracked; redeclaring a global is legal.
func (r *Resolver) declare(name ast.Token) {
	if len(r.scopes) == 0 {
		return
	}

	sc := r.scopes.peek()
	if declared, _ := sc.has(name.Lexeme); declared {
		r.error(name, "Already a variable with this name in this scope.")
	}

	sc.declare(name.Lexeme, name)
}

// define a variable name within the current scope
func (r *Resolver) define(name ast.Token) {
	if len(r.scopes) == 0 {
		return
	}

	r.scopes.peek().define(name.Lexeme)
}

// resolveLocal resolves a variable or assignment expression. It looks
// through the scope stack and records the depth of the declaring scope in
// the side table, keyed by the expression's node id. Names not found in any
// local scope are left to the global environment.
func (r *Resolver) resolveLocal(id ast.ExprID, name ast.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		s := r.scopes[i]
		if _, defined := s.has(name.Lexeme); defined {
			r.locals[id] = len(r.scopes) - 1 - i
			s.use(name.Lexeme)
			return
		}
	}
}

func (r *Resolver) error(token ast.Token, message string) {
	r.report("Error", token, message)
	r.hadError = true
}

func (r *Resolver) warn(token ast.Token, message string) {
	r.report("Warning", token, message)
}

func (r *Resolver) report(severity string, token ast.Token, message string) {
	var where string
	if token.TokenType == ast.TokenEof {
		where = " at end"
	} else {
		where = " at '" + token.Lexeme + "'"
	}

	_, _ = fmt.Fprintf(r.stdErr, "[line %d] %s%s: %s\n", token.Line, severity, where, message)
}
