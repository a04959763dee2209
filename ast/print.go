package ast

import (
	"fmt"
	"strings"
)

// Print returns a parenthesized prefix rendering of an expression,
// e.g. "(+ 1 (* 2 3))". Useful for debugging and parser tests.
func Print(tree *Tree, id ExprID) string {
	expr := tree.Expr(id)
	switch expr.Kind {
	case ExprLiteral:
		if expr.Value == nil {
			return "nil"
		}
		return fmt.Sprint(expr.Value)
	case ExprGrouping:
		return parenthesize(tree, "group", expr.Inner)
	case ExprUnary:
		return parenthesize(tree, expr.Operator.Lexeme, expr.Right)
	case ExprBinary, ExprLogical:
		return parenthesize(tree, expr.Operator.Lexeme, expr.Left, expr.Right)
	case ExprTernary:
		return parenthesize(tree, "?:", expr.Cond, expr.Then, expr.Else)
	case ExprVariable:
		return expr.Name.Lexeme
	case ExprAssign:
		return parenthesize(tree, "= "+expr.Name.Lexeme, expr.Right)
	case ExprCall:
		return parenthesize(tree, "call", append([]ExprID{expr.Callee}, expr.Args...)...)
	case ExprGet:
		return parenthesize(tree, "get "+expr.Name.Lexeme, expr.Object)
	case ExprSet:
		return parenthesize(tree, "set "+expr.Name.Lexeme, expr.Object, expr.Right)
	case ExprThis:
		return "this"
	case ExprSuper:
		return "(super " + expr.Method.Lexeme + ")"
	}
	return "<unknown expr>"
}

func parenthesize(tree *Tree, name string, ids ...ExprID) string {
	var str strings.Builder
	str.WriteString("(" + name)
	for _, id := range ids {
		str.WriteString(" " + Print(tree, id))
	}
	str.WriteString(")")
	return str.String()
}
