package ast

// ExprID addresses an expression node within a Tree. Node identity is the
// index itself, which stays stable for the life of the tree and doubles as
// the key of the resolver's scope-distance table.
type ExprID int32

// StmtID addresses a statement node within a Tree.
type StmtID int32

const (
	// NoExpr marks an absent optional expression (e.g. a variable
	// declaration without an initializer).
	NoExpr ExprID = -1
	// NoStmt marks an absent optional statement (e.g. an if without else).
	NoStmt StmtID = -1
)

// Tree is the arena that owns every node of a parsed program. The parser
// appends nodes as it goes; after parsing, the tree is read-only.
type Tree struct {
	exprs []Expr
	stmts []Stmt
}

// AddExpr appends an expression node and returns its id.
func (t *Tree) AddExpr(expr Expr) ExprID {
	t.exprs = append(t.exprs, expr)
	return ExprID(len(t.exprs) - 1)
}

// AddStmt appends a statement node and returns its id.
func (t *Tree) AddStmt(stmt Stmt) StmtID {
	t.stmts = append(t.stmts, stmt)
	return StmtID(len(t.stmts) - 1)
}

// Expr returns the expression node with the given id.
func (t *Tree) Expr(id ExprID) *Expr {
	return &t.exprs[id]
}

// ExprCount returns the number of expression nodes in the tree. Valid ids
// are 0 through ExprCount()-1, in parse order.
func (t *Tree) ExprCount() int {
	return len(t.exprs)
}

// StmtCount returns the number of statement nodes in the tree.
func (t *Tree) StmtCount() int {
	return len(t.stmts)
}

// Stmt returns the statement node with the given id.
func (t *Tree) Stmt(id StmtID) *Stmt {
	return &t.stmts[id]
}
