package ast

type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprGrouping
	ExprUnary
	ExprBinary
	ExprLogical
	ExprTernary
	ExprVariable
	ExprAssign
	ExprCall
	ExprGet
	ExprSet
	ExprThis
	ExprSuper
)

// Expr is a single expression node. It is a tagged variant: Kind selects
// which of the remaining fields are meaningful.
//
//	Literal   Value
//	Grouping  Inner
//	Unary     Operator, Right
//	Binary    Operator, Left, Right
//	Logical   Operator, Left, Right
//	Ternary   Cond, Then, Else
//	Variable  Name
//	Assign    Name, Right
//	Call      Callee, Args, Paren
//	Get       Object, Name
//	Set       Object, Name, Right
//	This      Keyword
//	Super     Keyword, Method
type Expr struct {
	Kind ExprKind

	Value interface{} // literal value: nil, bool, float64 or string

	Operator Token // unary/binary/logical operator
	Name     Token // variable or assignment target, property name
	Keyword  Token // the this/super keyword itself
	Method   Token // super method name
	Paren    Token // closing paren of a call, for error reporting

	Inner  ExprID // grouped expression
	Left   ExprID // left operand
	Right  ExprID // right operand, unary operand, assigned/set value
	Cond   ExprID // ternary condition
	Then   ExprID // ternary consequent
	Else   ExprID // ternary alternative
	Object ExprID // property access receiver
	Callee ExprID // called expression
	Args   []ExprID
}
