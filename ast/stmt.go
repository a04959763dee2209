package ast

type StmtKind uint8

const (
	StmtExpression StmtKind = iota
	StmtPrint
	StmtVar
	StmtBlock
	StmtIf
	StmtWhile
	StmtFunction
	StmtReturn
	StmtClass
)

// Stmt is a single statement node, tagged by Kind:
//
//	Expression  Expr
//	Print       Expr
//	Var         Name, Expr (initializer, NoExpr if absent)
//	Block       Body
//	If          Cond, Then, Else (NoStmt if absent)
//	While       Cond, LoopBody
//	Function    Name, Params, Body
//	Return      Keyword, Expr (value, NoExpr if absent)
//	Class       Name, Superclass (a Variable expr, NoExpr if absent), Methods
type Stmt struct {
	Kind StmtKind

	Name    Token
	Keyword Token // the return keyword, for error reporting
	Params  []Token

	Expr       ExprID
	Cond       ExprID
	Superclass ExprID

	Then     StmtID
	Else     StmtID
	LoopBody StmtID
	Body     []StmtID
	Methods  []StmtID
}
