// Package parse turns a token sequence into an AST.
package parse

import (
	"fmt"
	"io"

	"golox/ast"
)

type parseError struct {
	msg string
}

func (p parseError) Error() string {
	return p.msg
}

// Parser parses a flat list of tokens into an AST representation of the
// source program. Nodes are appended to an arena tree and referenced by id.
type Parser struct {
	tokens   []ast.Token
	tree     *ast.Tree
	current  int
	hadError bool
	stdErr   io.Writer
}

// NewParser returns a new Parser that reads a list of tokens
func NewParser(tokens []ast.Token, stdErr io.Writer) *Parser {
	return &Parser{tokens: tokens, tree: &ast.Tree{}, stdErr: stdErr}
}

/**
Parser grammar:

	program      => declaration* EOF
	declaration  => classDecl | funDecl | varDecl | statement
	classDecl    => "class" IDENTIFIER ( "<" IDENTIFIER )? "{" function* "}"
	funDecl      => "fun" function
	function     => IDENTIFIER "(" parameters? ")" block
	parameters   => IDENTIFIER ( "," IDENTIFIER )*
	varDecl      => "var" IDENTIFIER ( "=" expression )? ";"
	statement    => exprStmt | ifStmt | forStmt | printStmt | returnStmt
									| whileStmt | block
	exprStmt     => expression ";"
	ifStmt       => "if" "(" expression ")" statement ( "else" statement )?
	forStmt      => "for" "(" ( varDecl | exprStmt | ";" ) expression? ";" expression? ")" statement
	printStmt    => "print" expression ";"
	returnStmt   => "return" expression? ";"
	whileStmt    => "while" "(" expression ")" statement
	block        => "{" declaration* "}"
	expression   => assignment
	assignment   => ( call "." )? IDENTIFIER "=" assignment | ternary
	ternary      => logic_or ( "?" ternary ":" ternary )?
	logic_or     => logic_and ( "or" logic_and )*
	logic_and    => equality ( "and" equality )*
	equality     => comparison ( ( "!=" | "==" ) comparison )*
	comparison   => term ( ( ">" | ">=" | "<" | "<=" ) term )*
	term         => factor ( ( "+" | "-" ) factor )*
	factor       => unary ( ( "/" | "*" ) unary )*
	unary        => ( "!" | "-" ) unary | call
	call         => primary ( "(" arguments? ")" | "." IDENTIFIER )*
	arguments    => expression ( "," expression )*
	primary      => NUMBER | STRING | "true" | "false" | "nil" | "(" expression ")"
									| IDENTIFIER | "this" | "super" "." IDENTIFIER
*/

// Parse reads the list of tokens and returns the arena tree, the ids of the
// top-level statements, and whether any syntax error was found
func (p *Parser) Parse() (*ast.Tree, []ast.StmtID, bool) {
	var program []ast.StmtID
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != ast.NoStmt {
			program = append(program, stmt)
		}
	}
	return p.tree, program, p.hadError
}

// declaration parses declaration statements. A declaration statement is a
// class, function, or variable declaration, or a regular statement. If the
// statement contains a parse error, it skips to the start of the next
// statement and returns ast.NoStmt.
func (p *Parser) declaration() (stmt ast.StmtID) {
	defer func() {
		if err := recover(); err != nil {
			// If the error is a parseError, synchronize to
			// the next statement. If not, propagate the panic.
			if _, ok := err.(parseError); ok {
				p.hadError = true
				p.synchronize()
				stmt = ast.NoStmt
			} else {
				panic(err)
			}
		}
	}()

	if p.match(ast.TokenClass) {
		return p.classDeclaration()
	}
	if p.match(ast.TokenFun) {
		return p.function("function")
	}
	if p.match(ast.TokenVar) {
		return p.varDeclaration()
	}
	return p.statement()
}

func (p *Parser) classDeclaration() ast.StmtID {
	name := p.consume(ast.TokenIdentifier, "Expect class name.")

	superclass := ast.NoExpr
	if p.match(ast.TokenLess) {
		p.consume(ast.TokenIdentifier, "Expect superclass name.")
		superclass = p.tree.AddExpr(ast.Expr{Kind: ast.ExprVariable, Name: p.previous()})
	}

	p.consume(ast.TokenLeftBrace, "Expect '{' before class body.")

	methods := make([]ast.StmtID, 0)
	for !p.check(ast.TokenRightBrace) && !p.isAtEnd() {
		methods = append(methods, p.function("method"))
	}

	p.consume(ast.TokenRightBrace, "Expect '}' after class body.")
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtClass, Name: name, Superclass: superclass, Methods: methods})
}

func (p *Parser) varDeclaration() ast.StmtID {
	name := p.consume(ast.TokenIdentifier, "Expect variable name.")
	initializer := ast.NoExpr
	if p.match(ast.TokenEqual) {
		initializer = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after variable declaration.")
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtVar, Name: name, Expr: initializer})
}

// statement parses statements. A statement can be a print, if, while, for,
// return, block or expression statement.
func (p *Parser) statement() ast.StmtID {
	if p.match(ast.TokenPrint) {
		return p.printStatement()
	}
	if p.match(ast.TokenLeftBrace) {
		return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtBlock, Body: p.block()})
	}
	if p.match(ast.TokenIf) {
		return p.ifStatement()
	}
	if p.match(ast.TokenWhile) {
		return p.whileStatement()
	}
	if p.match(ast.TokenFor) {
		return p.forStatement()
	}
	if p.match(ast.TokenReturn) {
		return p.returnStatement()
	}
	return p.expressionStatement()
}

// forStatement desugars a for loop into an equivalent block: the optional
// initializer, then a while whose body appends the increment expression.
func (p *Parser) forStatement() ast.StmtID {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'for'.")

	initializer := ast.NoStmt
	if p.match(ast.TokenSemicolon) {
		// no initializer
	} else if p.match(ast.TokenVar) {
		initializer = p.varDeclaration()
	} else {
		initializer = p.expressionStatement()
	}

	condition := ast.NoExpr
	if !p.check(ast.TokenSemicolon) {
		condition = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after loop condition.")

	increment := ast.NoExpr
	if !p.check(ast.TokenRightParen) {
		increment = p.expression()
	}
	p.consume(ast.TokenRightParen, "Expect ')' after for clauses.")
	body := p.statement()

	if increment != ast.NoExpr {
		incrementStmt := p.tree.AddStmt(ast.Stmt{Kind: ast.StmtExpression, Expr: increment})
		body = p.tree.AddStmt(ast.Stmt{Kind: ast.StmtBlock, Body: []ast.StmtID{body, incrementStmt}})
	}

	if condition == ast.NoExpr {
		condition = p.tree.AddExpr(ast.Expr{Kind: ast.ExprLiteral, Value: true})
	}
	body = p.tree.AddStmt(ast.Stmt{Kind: ast.StmtWhile, Cond: condition, LoopBody: body})

	if initializer != ast.NoStmt {
		body = p.tree.AddStmt(ast.Stmt{Kind: ast.StmtBlock, Body: []ast.StmtID{initializer, body}})
	}

	return body
}

func (p *Parser) printStatement() ast.StmtID {
	expr := p.expression()
	p.consume(ast.TokenSemicolon, "Expect ';' after value.")
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtPrint, Expr: expr})
}

func (p *Parser) returnStatement() ast.StmtID {
	keyword := p.previous()
	value := ast.NoExpr
	if !p.check(ast.TokenSemicolon) {
		value = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after return value.")
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtReturn, Keyword: keyword, Expr: value})
}

func (p *Parser) block() []ast.StmtID {
	var statements []ast.StmtID
	for !p.check(ast.TokenRightBrace) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != ast.NoStmt {
			statements = append(statements, stmt)
		}
	}
	p.consume(ast.TokenRightBrace, "Expect '}' after block.")
	return statements
}

func (p *Parser) ifStatement() ast.StmtID {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after if condition.")

	thenBranch := p.statement()
	elseBranch := ast.NoStmt
	if p.match(ast.TokenElse) {
		elseBranch = p.statement()
	}

	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtIf, Cond: condition, Then: thenBranch, Else: elseBranch})
}

func (p *Parser) whileStatement() ast.StmtID {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after while condition.")
	body := p.statement()
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtWhile, Cond: condition, LoopBody: body})
}

func (p *Parser) expressionStatement() ast.StmtID {
	expr := p.expression()
	p.consume(ast.TokenSemicolon, "Expect ';' after expression.")
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtExpression, Expr: expr})
}

func (p *Parser) function(kind string) ast.StmtID {
	name := p.consume(ast.TokenIdentifier, "Expect "+kind+" name.")
	p.consume(ast.TokenLeftParen, "Expect '(' after "+kind+" name.")

	parameters := make([]ast.Token, 0)
	if !p.check(ast.TokenRightParen) {
		for {
			if len(parameters) >= 255 {
				p.error(p.peek(), "Can't have more than 255 parameters.")
			}
			parameters = append(parameters, p.consume(ast.TokenIdentifier, "Expect parameter name."))
			if !p.match(ast.TokenComma) {
				break
			}
		}
	}
	p.consume(ast.TokenRightParen, "Expect ')' after parameters.")

	p.consume(ast.TokenLeftBrace, "Expect '{' before "+kind+" body.")
	body := p.block()
	return p.tree.AddStmt(ast.Stmt{Kind: ast.StmtFunction, Name: name, Params: parameters, Body: body})
}

func (p *Parser) expression() ast.ExprID {
	return p.assignment()
}

// assignment parses an assignment expression. The left-hand side must be a
// plain variable or a property access; anything else is a syntax error.
func (p *Parser) assignment() ast.ExprID {
	expr := p.ternary()

	if p.match(ast.TokenEqual) {
		equals := p.previous()
		value := p.assignment()

		switch target := p.tree.Expr(expr); target.Kind {
		case ast.ExprVariable:
			return p.tree.AddExpr(ast.Expr{Kind: ast.ExprAssign, Name: target.Name, Right: value})
		case ast.ExprGet:
			return p.tree.AddExpr(ast.Expr{Kind: ast.ExprSet, Object: target.Object, Name: target.Name, Right: value})
		}
		p.error(equals, "Invalid assignment target.")
	}

	return expr
}

func (p *Parser) ternary() ast.ExprID {
	expr := p.or()

	if p.match(ast.TokenQuestionMark) {
		then := p.ternary()
		p.consume(ast.TokenColon, "Expect ':' after conditional.")
		alt := p.ternary()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprTernary, Cond: expr, Then: then, Else: alt})
	}

	return expr
}

func (p *Parser) or() ast.ExprID {
	expr := p.and()

	for p.match(ast.TokenOr) {
		operator := p.previous()
		right := p.and()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprLogical, Operator: operator, Left: expr, Right: right})
	}
	return expr
}

func (p *Parser) and() ast.ExprID {
	expr := p.equality()

	for p.match(ast.TokenAnd) {
		operator := p.previous()
		right := p.equality()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprLogical, Operator: operator, Left: expr, Right: right})
	}
	return expr
}

func (p *Parser) equality() ast.ExprID {
	expr := p.comparison()

	for p.match(ast.TokenBangEqual, ast.TokenEqualEqual) {
		operator := p.previous()
		right := p.comparison()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprBinary, Operator: operator, Left: expr, Right: right})
	}

	return expr
}

func (p *Parser) comparison() ast.ExprID {
	expr := p.term()

	for p.match(ast.TokenGreater, ast.TokenGreaterEqual, ast.TokenLess, ast.TokenLessEqual) {
		operator := p.previous()
		right := p.term()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprBinary, Operator: operator, Left: expr, Right: right})
	}

	return expr
}

func (p *Parser) term() ast.ExprID {
	expr := p.factor()

	for p.match(ast.TokenMinus, ast.TokenPlus) {
		operator := p.previous()
		right := p.factor()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprBinary, Operator: operator, Left: expr, Right: right})
	}

	return expr
}

func (p *Parser) factor() ast.ExprID {
	expr := p.unary()

	for p.match(ast.TokenSlash, ast.TokenStar) {
		operator := p.previous()
		right := p.unary()
		expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprBinary, Operator: operator, Left: expr, Right: right})
	}

	return expr
}

func (p *Parser) unary() ast.ExprID {
	if p.match(ast.TokenBang, ast.TokenMinus) {
		operator := p.previous()
		right := p.unary()
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprUnary, Operator: operator, Right: right})
	}

	return p.call()
}

func (p *Parser) call() ast.ExprID {
	expr := p.primary()

	for {
		if p.match(ast.TokenLeftParen) {
			expr = p.finishCall(expr)
		} else if p.match(ast.TokenDot) {
			name := p.consume(ast.TokenIdentifier, "Expect property name after '.'.")
			expr = p.tree.AddExpr(ast.Expr{Kind: ast.ExprGet, Object: expr, Name: name})
		} else {
			break
		}
	}

	return expr
}

func (p *Parser) finishCall(callee ast.ExprID) ast.ExprID {
	args := make([]ast.ExprID, 0)
	if !p.check(ast.TokenRightParen) {
		for {
			if len(args) >= 255 {
				p.error(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(ast.TokenComma) {
				break
			}
		}
	}
	paren := p.consume(ast.TokenRightParen, "Expect ')' after arguments.")
	return p.tree.AddExpr(ast.Expr{Kind: ast.ExprCall, Callee: callee, Paren: paren, Args: args})
}

func (p *Parser) primary() ast.ExprID {
	switch {
	case p.match(ast.TokenFalse):
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprLiteral, Value: false})
	case p.match(ast.TokenTrue):
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprLiteral, Value: true})
	case p.match(ast.TokenNil):
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprLiteral})
	case p.match(ast.TokenNumber, ast.TokenString):
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprLiteral, Value: p.previous().Literal})
	case p.match(ast.TokenLeftParen):
		expr := p.expression()
		p.consume(ast.TokenRightParen, "Expect ')' after expression.")
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprGrouping, Inner: expr})
	case p.match(ast.TokenIdentifier):
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprVariable, Name: p.previous()})
	case p.match(ast.TokenThis):
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprThis, Keyword: p.previous()})
	case p.match(ast.TokenSuper):
		keyword := p.previous()
		p.consume(ast.TokenDot, "Expect '.' after 'super'.")
		method := p.consume(ast.TokenIdentifier, "Expect superclass method name.")
		return p.tree.AddExpr(ast.Expr{Kind: ast.ExprSuper, Keyword: keyword, Method: method})
	}

	p.error(p.peek(), "Expect expression.")
	return ast.NoExpr
}

// consume checks that the next token is of the given type and then advances
// to the next token. If the check fails, it panics with the given message.
func (p *Parser) consume(tokenType ast.TokenType, message string) ast.Token {
	if p.check(tokenType) {
		return p.advance()
	}
	p.error(p.peek(), message)
	return ast.Token{}
}

func (p *Parser) error(token ast.Token, message string) {
	err := tokenError(token, message)
	_, _ = p.stdErr.Write([]byte(err.msg))
	panic(err)
}

// synchronize discards tokens until a statement boundary: just past a
// semicolon, or right before a token that can begin a declaration.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().TokenType == ast.TokenSemicolon {
			return
		}

		switch p.peek().TokenType {
		case ast.TokenClass, ast.TokenFor, ast.TokenFun, ast.TokenIf,
			ast.TokenPrint, ast.TokenReturn, ast.TokenVar, ast.TokenWhile:
			return
		}

		p.advance()
	}
}

func (p *Parser) match(types ...ast.TokenType) bool {
	for _, tokenType := range types {
		if p.check(tokenType) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(tokenType ast.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().TokenType == tokenType
}

func (p *Parser) advance() ast.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().TokenType == ast.TokenEof
}

func (p *Parser) peek() ast.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() ast.Token {
	return p.tokens[p.current-1]
}

func tokenError(token ast.Token, message string) parseError {
	var where string
	if token.TokenType == ast.TokenEof {
		where = " at end"
	} else {
		where = " at '" + token.Lexeme + "'"
	}

	return parseError{msg: fmt.Sprintf("[line %d] Error%s: %s\n", token.Line, where, message)}
}
