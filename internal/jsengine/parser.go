package jsengine

import "fmt"

// Parser is a Pratt (precedence-climbing) recursive-descent parser turning
// a Lexer's token stream into a Program. No parser exists anywhere in the
// retrieved corpus — golemjs ships only a lexer and a hand-built
// interpreter that walks pre-constructed AST literals in its tests — so
// this file is written fresh, following the precedence-table shape that is
// the standard idiom for this kind of tree-walking interpreter.
type Parser struct {
	lexer *Lexer

	curToken  Token
	peekToken Token

	errors []string

	prefixParseFns map[TokenType]func() Expression
	infixParseFns  map[TokenType]func(Expression) Expression
}

const (
	_ int = iota
	LOWEST
	ASSIGNPREC // =
	LOGICAL    // && ||
	EQUALS     // == !=
	LESSGREATER
	SUM     // + -
	PRODUCT // * /
	PREFIX  // !x, -x
	CALLPREC
	MEMBER // ., [
)

var precedences = map[TokenType]int{
	ASSIGN:   ASSIGNPREC,
	AND:      LOGICAL,
	OR:       LOGICAL,
	EQ:       EQUALS,
	NOT_EQ:   EQUALS,
	LT:       LESSGREATER,
	GT:       LESSGREATER,
	PLUS:     SUM,
	MINUS:    SUM,
	SLASH:    PRODUCT,
	ASTERISK: PRODUCT,
	LPAREN:   CALLPREC,
	DOT:      MEMBER,
	LBRACKET: MEMBER,
}

// NewParser builds a Parser reading from lexer and primes the two-token
// lookahead.
func NewParser(lexer *Lexer) *Parser {
	p := &Parser{lexer: lexer}

	p.prefixParseFns = map[TokenType]func() Expression{
		IDENT:    p.parseIdentifier,
		INT:      p.parseIntegerLiteral,
		STRING:   p.parseStringLiteral,
		TRUE:     p.parseBooleanLiteral,
		FALSE:    p.parseBooleanLiteral,
		NULLTOK:  p.parseNullLiteral,
		BANG:     p.parsePrefixExpression,
		MINUS:    p.parsePrefixExpression,
		LPAREN:   p.parseGroupedExpression,
		LBRACKET: p.parseArrayLiteral,
		FUNCTION: p.parseFunctionLiteral,
		NEW:      p.parseNewExpression,
	}

	p.infixParseFns = map[TokenType]func(Expression) Expression{
		PLUS:     p.parseBinaryExpression,
		MINUS:    p.parseBinaryExpression,
		SLASH:    p.parseBinaryExpression,
		ASTERISK: p.parseBinaryExpression,
		EQ:       p.parseBinaryExpression,
		NOT_EQ:   p.parseBinaryExpression,
		LT:       p.parseBinaryExpression,
		GT:       p.parseBinaryExpression,
		AND:      p.parseBinaryExpression,
		OR:       p.parseBinaryExpression,
		LPAREN:   p.parseCallExpression,
		DOT:      p.parseMemberExpression,
		LBRACKET: p.parseIndexExpression,
		ASSIGN:   p.parseAssignExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) curIs(t TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errors = append(p.errors, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram consumes the whole token stream and returns the resulting
// Program, accumulating any errors in p.errors rather than stopping at the
// first one, so one malformed statement doesn't hide errors later in the
// script.
func (p *Parser) ParseProgram() *Program {
	program := &Program{}
	for !p.curIs(EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case LET:
		return p.parseVariableDeclaration()
	case FUNCTION:
		if p.peekIs(IDENT) {
			return p.parseFunctionDeclaration()
		}
		return p.parseExpressionStatement()
	case IF:
		return p.parseIfStatement()
	case WHILE:
		return p.parseWhileStatement()
	case RETURN:
		return p.parseReturnStatement()
	case LBRACE:
		return p.parseBlockStatement()
	case SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVariableDeclaration() Statement {
	stmt := &VariableDeclaration{Token: p.curToken}
	if !p.expectPeek(IDENT) {
		return nil
	}
	stmt.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekIs(SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if !p.expectPeek(ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.peekIs(SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() Statement {
	stmt := &FunctionDeclaration{Token: p.curToken}
	if !p.expectPeek(IDENT) {
		return nil
	}
	stmt.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseFunctionParameters()

	if !p.expectPeek(LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseFunctionParameters() []*Identifier {
	var params []*Identifier

	if p.peekIs(RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekIs(COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}

	if !p.expectPeek(LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(RPAREN) {
		return nil
	}
	if !p.expectPeek(LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()

	if p.peekIs(ELSE) {
		p.nextToken()
		switch {
		case p.peekIs(IF):
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		case p.peekIs(LBRACE):
			p.nextToken()
			stmt.Alternative = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}

	if !p.expectPeek(LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(RPAREN) {
		return nil
	}
	if !p.expectPeek(LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}
	p.nextToken()

	if p.curIs(SEMICOLON) {
		return stmt
	}
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if p.peekIs(SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curIs(RBRACE) && !p.curIs(EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)

	if p.peekIs(SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errors = append(p.errors, fmt.Sprintf("no prefix parse function for %s found", p.curToken.Type))
		return nil
	}
	left := prefix()

	for !p.peekIs(SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() Expression {
	lit := &IntegerLiteral{Token: p.curToken}
	var value int64
	for _, ch := range p.curToken.Literal {
		if ch < '0' || ch > '9' {
			p.errors = append(p.errors, fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
			return nil
		}
		value = value*10 + int64(ch-'0')
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curIs(TRUE)}
}

func (p *Parser) parseNullLiteral() Expression {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseBinaryExpression(left Expression) Expression {
	expr := &BinaryExpression{Token: p.curToken, Left: left, Operator: p.curToken.Literal}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseArrayLiteral() Expression {
	arr := &ArrayLiteral{Token: p.curToken}
	arr.Elements = p.parseExpressionList(RBRACKET)
	return arr
}

func (p *Parser) parseExpressionList(end TokenType) []Expression {
	var list []Expression

	if p.peekIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekIs(COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseFunctionLiteral() Expression {
	lit := &FunctionLiteral{Token: p.curToken}
	if !p.expectPeek(LPAREN) {
		return nil
	}
	lit.Parameters = p.parseFunctionParameters()

	if !p.expectPeek(LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	return lit
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	expr := &CallExpression{Token: p.curToken, Function: function}
	expr.Arguments = p.parseExpressionList(RPAREN)
	return expr
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: object}
	if !p.expectPeek(IDENT) {
		return nil
	}
	expr.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	expr := &IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if !p.expectPeek(RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseAssignExpression(target Expression) Expression {
	expr := &AssignExpression{Token: p.curToken, Target: target}
	p.nextToken()
	expr.Value = p.parseExpression(LOWEST)
	return expr
}

func (p *Parser) parseNewExpression() Expression {
	expr := &NewExpression{Token: p.curToken}
	p.nextToken()
	expr.Callee = p.parseExpression(CALLPREC)

	if p.peekIs(LPAREN) {
		p.nextToken()
		expr.Arguments = p.parseExpressionList(RPAREN)
	}
	return expr
}
