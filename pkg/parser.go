package zminus

import (
	"fmt"
	"strconv"
)

var binaryOps = map[TokenType]BinaryOp{
	TokenPlus:         BinaryAddition,
	TokenMinus:        BinarySubtraction,
	TokenMulti:        BinaryMultiplication,
	TokenSlash:        BinaryDivision,
	TokenPercent:      BinaryModulo,
	TokenDiv:          BinaryTruncDivision,
	TokenEqual:        BinaryEqual,
	TokenNotEqual:     BinaryNotEqual,
	TokenLess:         BinaryLess,
	TokenLessEqual:    BinaryLessEqual,
	TokenGreater:      BinaryGreater,
	TokenGreaterEqual: BinaryGreaterEqual,
}

// bailout unwinds the parser after the first error has been recorded.
type bailout struct{}

// Parser is a recursive-descent parser over a complete token stream. It stops
// at the first structural mismatch.
type Parser struct {
	filename string
	tokens   []Token
	pos      int

	inFunction bool
	loopDepth  int

	err *ParseError
}

func NewParser(filename string, tokens []Token) *Parser {
	return &Parser{
		filename: filename,
		tokens:   tokens,
	}
}

// Parse lexes and parses src.
func Parse(filename, src string) (*Program, error) {
	tokens, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	return NewParser(filename, tokens).Run()
}

func (p *Parser) GetFilename() string {
	return p.filename
}

func (p *Parser) Run() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}

			prog, err = nil, p.err
		}
	}()

	prog = &Program{Filename: p.filename}

	started := p.check(TokenStart)
	if started {
		p.next()
	}

	for !p.check(TokenEOF) && !(started && p.check(TokenEnd)) {
		prog.Statements = append(prog.Statements, p.topLevel())
	}

	if started {
		p.expect(TokenEnd)
	}

	p.expect(TokenEOF)
	return prog, nil
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}

	eof := Token{Typ: TokenEOF}
	if len(p.tokens) > 0 {
		eof.Loc = p.tokens[len(p.tokens)-1].Loc
	}

	return eof
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}

	return tok
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Typ == typ
}

func (p *Parser) expect(typ TokenType) Token {
	tok := p.next()
	if tok.Typ != typ {
		p.errorf(tok, "%s", typ)
	}

	return tok
}

func (p *Parser) errorf(found Token, format string, args ...interface{}) {
	p.err = &ParseError{
		Loc:      found.Loc,
		Expected: fmt.Sprintf(format, args...),
		Found:    found,
	}

	panic(bailout{})
}

func (p *Parser) topLevel() Stmt {
	if p.check(TokenFunc) {
		return p.funcDecl()
	}

	return p.statement()
}

func (p *Parser) funcDecl() Stmt {
	start := p.next() // fun keyword

	name := p.expect(TokenIdentifier)
	p.expect(TokenOpenParentheses)

	var params []*Param
	if !p.check(TokenCloseParentheses) {
		for {
			param := p.expect(TokenIdentifier)
			params = append(params, &Param{Loc: param.Loc, Name: param.Value})

			if !p.check(TokenComma) {
				break
			}

			p.next() // Skip the comma
		}
	}

	p.expect(TokenCloseParentheses)

	p.inFunction = true
	defer func() { p.inFunction = false }()

	return &FuncDecl{
		Loc:    start.Loc,
		Name:   name.Value,
		Params: params,
		Body:   p.blockStmt(),
	}
}

func (p *Parser) blockStmt() *Block {
	open := p.expect(TokenOpenCurly)

	block := &Block{Loc: open.Loc}
	for !p.check(TokenCloseCurly) {
		if tok := p.peek(); tok.Typ == TokenEOF {
			p.errorf(tok, "'}' to close the block opened at %s", open.Loc)
		}

		block.Stmts = append(block.Stmts, p.statement())
	}

	p.next() // Skip }
	return block
}

func (p *Parser) statement() Stmt {
	var stmt Stmt

	switch tok := p.peek(); tok.Typ {
	case TokenFunc:
		p.errorf(tok, "a statement (functions can only be declared at top level)")
	case TokenLet:
		stmt = p.letStmt()
	case TokenInput:
		stmt = p.inputStmt()
	case TokenPrint:
		stmt = p.printStmt()
	case TokenIf:
		stmt = p.ifStmt()
	case TokenWhile:
		stmt = p.whileStmt()
	case TokenReturn:
		stmt = p.returnStmt()
	case TokenBreak:
		stmt = p.breakStmt()
	case TokenOpenCurly:
		stmt = p.blockStmt()
	case TokenIdentifier:
		if p.peekAt(1).Typ == TokenAssign {
			stmt = p.assignStmt()
			break
		}

		stmt = p.exprStmt()
	default:
		stmt = p.exprStmt()
	}

	if p.check(TokenSemicolon) {
		p.next()
	}

	return stmt
}

func (p *Parser) letStmt() Stmt {
	start := p.next() // let keyword
	name := p.expect(TokenIdentifier)

	stmt := &LetStmt{Loc: start.Loc, Name: name.Value}
	if p.check(TokenAssign) {
		p.next()
		stmt.Value = p.expr()
	}

	return stmt
}

func (p *Parser) assignStmt() Stmt {
	name := p.next()
	p.next() // Skip =

	return &AssignStmt{
		Loc:   name.Loc,
		Name:  name.Value,
		Value: p.expr(),
	}
}

func (p *Parser) inputStmt() Stmt {
	start := p.next() // input keyword

	p.expect(TokenOpenParentheses)
	name := p.expect(TokenIdentifier)
	p.expect(TokenCloseParentheses)

	return &InputStmt{Loc: start.Loc, Name: name.Value}
}

func (p *Parser) printStmt() Stmt {
	start := p.next() // print keyword

	if tok := p.peek(); tok.Typ == TokenString {
		p.next()
		return &PrintStmt{Loc: start.Loc, Text: tok.Value, IsString: true}
	}

	return &PrintStmt{Loc: start.Loc, Value: p.expr()}
}

func (p *Parser) ifStmt() Stmt {
	start := p.next() // if keyword

	stmt := &IfStmt{
		Loc:  start.Loc,
		Cond: p.expr(),
		Then: p.blockStmt(),
	}

	if p.check(TokenElse) {
		p.next()
		stmt.Else = p.blockStmt()
	}

	return stmt
}

func (p *Parser) whileStmt() Stmt {
	start := p.next() // while keyword
	cond := p.expr()

	p.loopDepth++
	defer func() { p.loopDepth-- }()

	return &WhileStmt{
		Loc:  start.Loc,
		Cond: cond,
		Body: p.blockStmt(),
	}
}

func (p *Parser) returnStmt() Stmt {
	start := p.next() // return keyword
	if !p.inFunction {
		p.errorf(start, "a top-level statement ('return' is only allowed inside a function)")
	}

	stmt := &ReturnStmt{Loc: start.Loc}
	if startsExpr(p.peek()) {
		stmt.Value = p.expr()
	}

	return stmt
}

func (p *Parser) breakStmt() Stmt {
	start := p.next() // break keyword
	if p.loopDepth == 0 {
		p.errorf(start, "a statement ('break' is only allowed inside a loop)")
	}

	return &BreakStmt{Loc: start.Loc}
}

func (p *Parser) exprStmt() Stmt {
	x := p.expr()
	return &ExprStmt{Loc: x.GetLocation(), X: x}
}

// expr parses a full expression. Comparisons bind loosest and do not chain.
func (p *Parser) expr() Expr {
	lhs := p.additiveExpr()

	tok := p.peek()
	op, ok := binaryOps[tok.Typ]
	if !ok || !op.IsComparison() {
		return lhs
	}

	p.next()
	rhs := p.additiveExpr()

	if next := p.peek(); isComparisonToken(next) {
		p.errorf(next, "end of comparison (comparison operators cannot be chained)")
	}

	return &BinaryExpr{
		Loc:       tok.Loc,
		Operation: op,
		Op1:       lhs,
		Op2:       rhs,
	}
}

func (p *Parser) additiveExpr() Expr {
	lhs := p.multiplicativeExpr()

	for {
		tok := p.peek()
		if tok.Typ != TokenPlus && tok.Typ != TokenMinus {
			return lhs
		}

		p.next()
		lhs = &BinaryExpr{
			Loc:       tok.Loc,
			Operation: binaryOps[tok.Typ],
			Op1:       lhs,
			Op2:       p.multiplicativeExpr(),
		}
	}
}

func (p *Parser) multiplicativeExpr() Expr {
	lhs := p.unaryExpr()

	for {
		tok := p.peek()
		switch tok.Typ {
		case TokenMulti, TokenSlash, TokenPercent, TokenDiv:
		default:
			return lhs
		}

		p.next()
		lhs = &BinaryExpr{
			Loc:       tok.Loc,
			Operation: binaryOps[tok.Typ],
			Op1:       lhs,
			Op2:       p.unaryExpr(),
		}
	}
}

func (p *Parser) unaryExpr() Expr {
	if tok := p.peek(); tok.Typ == TokenMinus { // Unary negative
		p.next()

		return &UnaryExpr{
			Loc:       tok.Loc,
			Operation: UnaryNegative,
			Operand:   p.unaryExpr(),
		}
	}

	return p.primary()
}

func (p *Parser) primary() Expr {
	switch tok := p.peek(); tok.Typ {
	case TokenOpenParentheses:
		return p.parenthesisedExpression()
	case TokenIdentifier:
		if p.peekAt(1).Typ == TokenOpenParentheses {
			return p.funcCall()
		}

		p.next()
		return &Identifier{Loc: tok.Loc, Name: tok.Value}
	}

	return p.literal()
}

func (p *Parser) parenthesisedExpression() Expr {
	p.next() // Skip (
	exp := p.expr()
	p.expect(TokenCloseParentheses)

	return exp
}

func (p *Parser) funcCall() Expr {
	name := p.next()
	p.next() // Skip (

	call := &FuncCall{Loc: name.Loc, Name: name.Value}
	if !p.check(TokenCloseParentheses) {
		for {
			call.Args = append(call.Args, p.expr())

			if !p.check(TokenComma) {
				break
			}

			p.next() // Skip the comma
		}
	}

	p.expect(TokenCloseParentheses)
	return call
}

func (p *Parser) literal() Expr {
	switch tok := p.next(); tok.Typ {
	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.errorf(tok, "a number representable as a double")
		}

		return &NumberLit{Loc: tok.Loc, Value: v}
	case TokenTrue:
		return &NumberLit{Loc: tok.Loc, Value: 1, IsBool: true}
	case TokenFalse:
		return &NumberLit{Loc: tok.Loc, Value: 0, IsBool: true}
	default:
		p.errorf(tok, "an expression")
	}

	return nil // Unreachable
}

func startsExpr(tok Token) bool {
	switch tok.Typ {
	case TokenNumber, TokenTrue, TokenFalse, TokenIdentifier, TokenOpenParentheses, TokenMinus:
		return true
	}

	return false
}

func isComparisonToken(tok Token) bool {
	op, ok := binaryOps[tok.Typ]
	return ok && op.IsComparison()
}
