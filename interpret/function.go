package interpret

import "golox/ast"

// callable is anything invocable by a call expression: user-defined
// functions, native functions, and classes (instantiation).
type callable interface {
	arity() int
	call(in *Interpreter, args []interface{}) (interface{}, error)
}

// function is a user-defined function value: the declaration node plus the
// environment captured at the definition site. The tree and scope-distance
// table of the declaring program come along too, because the function may
// outlive that program's run and be called while a different tree is
// installed in the interpreter.
type function struct {
	tree          *ast.Tree
	locals        map[ast.ExprID]int
	declaration   ast.StmtID
	closure       *Environment
	isInitializer bool
}

func (f *function) decl() *ast.Stmt {
	return f.tree.Stmt(f.declaration)
}

func (f *function) arity() int {
	return len(f.decl().Params)
}

// call binds the arguments in a fresh environment enclosed by the closure
// (not the caller's environment) and executes the body. The return
// completion is consumed here: it never propagates past the call boundary.
func (f *function) call(in *Interpreter, args []interface{}) (interface{}, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl().Params {
		env.Define(param.Lexeme, args[i])
	}

	// run the body against the declaring program's tree and distances
	prevTree, prevLocals := in.tree, in.locals
	in.tree, in.locals = f.tree, f.locals
	defer func() { in.tree, in.locals = prevTree, prevLocals }()

	ctrl, err := in.executeBlock(f.decl().Body, env)
	if err != nil {
		return nil, err
	}

	// an initializer always yields the instance, whatever its body did
	if f.isInitializer {
		this, _ := f.closure.GetAt(0, "this")
		return this, nil
	}

	if ctrl.kind == completionReturn {
		return ctrl.value, nil
	}
	return nil, nil
}

// bind returns a copy of the method whose closure nests an environment
// binding "this" to the given instance.
func (f *function) bind(inst *instance) *function {
	env := NewEnvironment(f.closure)
	env.Define("this", inst)
	return &function{tree: f.tree, locals: f.locals, declaration: f.declaration, closure: env, isInitializer: f.isInitializer}
}

func (f *function) String() string {
	return "<fn " + f.decl().Name.Lexeme + ">"
}
