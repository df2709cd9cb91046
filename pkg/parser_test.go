package zminus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	cases := []struct {
		data   []Token
		fail   bool
		expect []Stmt
	}{
		{
			[]Token{
				{TokenFunc, "fun", nil},
				{TokenIdentifier, "main2", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenCloseParentheses, ")", nil},
				{TokenOpenCurly, "{", nil},
				{TokenCloseCurly, "}", nil},
			},
			false,
			[]Stmt{
				&FuncDecl{
					Name: "main2",
					Body: &Block{},
				},
			},
		},
		{
			[]Token{
				{TokenFunc, "fun", nil},
				{TokenIdentifier, "add", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenIdentifier, "a", nil},
				{TokenComma, ",", nil},
				{TokenIdentifier, "b", nil},
				{TokenCloseParentheses, ")", nil},
				{TokenOpenCurly, "{", nil},
				{TokenReturn, "return", nil},
				{TokenIdentifier, "a", nil},
				{TokenPlus, "+", nil},
				{TokenIdentifier, "b", nil},
				{TokenCloseCurly, "}", nil},
			},
			false,
			[]Stmt{
				&FuncDecl{
					Name:   "add",
					Params: []*Param{{Name: "a"}, {Name: "b"}},
					Body: &Block{
						Stmts: []Stmt{
							&ReturnStmt{
								Value: &BinaryExpr{
									Operation: BinaryAddition,
									Op1:       &Identifier{Name: "a"},
									Op2:       &Identifier{Name: "b"},
								},
							},
						},
					},
				},
			},
		},
		{
			[]Token{
				{TokenLet, "let", nil},
				{TokenIdentifier, "x", nil},
				{TokenSemicolon, ";", nil},
				{TokenLet, "let", nil},
				{TokenIdentifier, "y", nil},
				{TokenAssign, "=", nil},
				{TokenTrue, "true", nil},
			},
			false,
			[]Stmt{
				&LetStmt{Name: "x"},
				&LetStmt{Name: "y", Value: &NumberLit{Value: 1, IsBool: true}},
			},
		},
		{
			// 1 - 2 - 3 is left associative
			[]Token{
				{TokenIdentifier, "x", nil},
				{TokenAssign, "=", nil},
				{TokenNumber, "1", nil},
				{TokenMinus, "-", nil},
				{TokenNumber, "2", nil},
				{TokenMinus, "-", nil},
				{TokenNumber, "3", nil},
			},
			false,
			[]Stmt{
				&AssignStmt{
					Name: "x",
					Value: &BinaryExpr{
						Operation: BinarySubtraction,
						Op1: &BinaryExpr{
							Operation: BinarySubtraction,
							Op1:       &NumberLit{Value: 1},
							Op2:       &NumberLit{Value: 2},
						},
						Op2: &NumberLit{Value: 3},
					},
				},
			},
		},
		{
			// -a * b % 2 < c + 1
			[]Token{
				{TokenPrint, "print", nil},
				{TokenMinus, "-", nil},
				{TokenIdentifier, "a", nil},
				{TokenMulti, "*", nil},
				{TokenIdentifier, "b", nil},
				{TokenPercent, "%", nil},
				{TokenNumber, "2", nil},
				{TokenLess, "<", nil},
				{TokenIdentifier, "c", nil},
				{TokenPlus, "+", nil},
				{TokenNumber, "1", nil},
			},
			false,
			[]Stmt{
				&PrintStmt{
					Value: &BinaryExpr{
						Operation: BinaryLess,
						Op1: &BinaryExpr{
							Operation: BinaryModulo,
							Op1: &BinaryExpr{
								Operation: BinaryMultiplication,
								Op1: &UnaryExpr{
									Operation: UnaryNegative,
									Operand:   &Identifier{Name: "a"},
								},
								Op2: &Identifier{Name: "b"},
							},
							Op2: &NumberLit{Value: 2},
						},
						Op2: &BinaryExpr{
							Operation: BinaryAddition,
							Op1:       &Identifier{Name: "c"},
							Op2:       &NumberLit{Value: 1},
						},
					},
				},
			},
		},
		{
			// (a + b) div 2
			[]Token{
				{TokenPrint, "print", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenIdentifier, "a", nil},
				{TokenPlus, "+", nil},
				{TokenIdentifier, "b", nil},
				{TokenCloseParentheses, ")", nil},
				{TokenDiv, "div", nil},
				{TokenNumber, "2", nil},
			},
			false,
			[]Stmt{
				&PrintStmt{
					Value: &BinaryExpr{
						Operation: BinaryTruncDivision,
						Op1: &BinaryExpr{
							Operation: BinaryAddition,
							Op1:       &Identifier{Name: "a"},
							Op2:       &Identifier{Name: "b"},
						},
						Op2: &NumberLit{Value: 2},
					},
				},
			},
		},
		{
			[]Token{
				{TokenPrint, "print", nil},
				{TokenString, "hello", nil},
				{TokenInput, "input", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenIdentifier, "n", nil},
				{TokenCloseParentheses, ")", nil},
				{TokenIdentifier, "f", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenIdentifier, "n", nil},
				{TokenComma, ",", nil},
				{TokenNumber, "2", nil},
				{TokenCloseParentheses, ")", nil},
			},
			false,
			[]Stmt{
				&PrintStmt{Text: "hello", IsString: true},
				&InputStmt{Name: "n"},
				&ExprStmt{
					X: &FuncCall{
						Name: "f",
						Args: []Expr{&Identifier{Name: "n"}, &NumberLit{Value: 2}},
					},
				},
			},
		},
		{
			[]Token{
				{TokenWhile, "while", nil},
				{TokenIdentifier, "i", nil},
				{TokenOpenCurly, "{", nil},
				{TokenIf, "if", nil},
				{TokenIdentifier, "i", nil},
				{TokenOpenCurly, "{", nil},
				{TokenBreak, "break", nil},
				{TokenCloseCurly, "}", nil},
				{TokenElse, "else", nil},
				{TokenOpenCurly, "{", nil},
				{TokenOpenCurly, "{", nil},
				{TokenCloseCurly, "}", nil},
				{TokenCloseCurly, "}", nil},
				{TokenCloseCurly, "}", nil},
			},
			false,
			[]Stmt{
				&WhileStmt{
					Cond: &Identifier{Name: "i"},
					Body: &Block{
						Stmts: []Stmt{
							&IfStmt{
								Cond: &Identifier{Name: "i"},
								Then: &Block{Stmts: []Stmt{&BreakStmt{}}},
								Else: &Block{Stmts: []Stmt{&Block{}}},
							},
						},
					},
				},
			},
		},
		{
			[]Token{
				{TokenStart, "start", nil},
				{TokenPrint, "print", nil},
				{TokenNumber, "1", nil},
				{TokenEnd, "end", nil},
			},
			false,
			[]Stmt{
				&PrintStmt{Value: &NumberLit{Value: 1}},
			},
		},
		{
			// missing function name
			[]Token{
				{TokenFunc, "fun", nil},
				{TokenOpenCurly, "{", nil},
				{TokenCloseCurly, "}", nil},
			},
			true,
			nil,
		},
		{
			// unclosed block
			[]Token{
				{TokenWhile, "while", nil},
				{TokenNumber, "1", nil},
				{TokenOpenCurly, "{", nil},
			},
			true,
			nil,
		},
		{
			// chained comparison
			[]Token{
				{TokenPrint, "print", nil},
				{TokenIdentifier, "a", nil},
				{TokenLess, "<", nil},
				{TokenIdentifier, "b", nil},
				{TokenLess, "<", nil},
				{TokenIdentifier, "c", nil},
			},
			true,
			nil,
		},
		{
			// start without end
			[]Token{
				{TokenStart, "start", nil},
				{TokenPrint, "print", nil},
				{TokenNumber, "1", nil},
			},
			true,
			nil,
		},
		{
			// missing operand
			[]Token{
				{TokenIdentifier, "x", nil},
				{TokenAssign, "=", nil},
				{TokenNumber, "1", nil},
				{TokenPlus, "+", nil},
			},
			true,
			nil,
		},
	}

	for _, c := range cases {
		p := NewParser("testing", c.data)

		got, err := p.Run()
		if c.fail {
			assert.Error(t, err)
			assert.IsType(t, &ParseError{}, err)
			assert.Nil(t, got)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, c.expect, got.Statements)
	}
}

func TestParserErrors(t *testing.T) {
	cases := []struct {
		src    string
		expect string
	}{
		{"return 1", "t.zmm:1:1: expected a top-level statement ('return' is only allowed inside a function), found 'return'"},
		{"break", "t.zmm:1:1: expected a statement ('break' is only allowed inside a loop), found 'break'"},
		{"fun f() { fun g() {} }", "t.zmm:1:11: expected a statement (functions can only be declared at top level), found 'fun'"},
		{"let = 1", "t.zmm:1:5: expected identifier, found '='"},
		{"print a == b == c", "t.zmm:1:14: expected end of comparison (comparison operators cannot be chained), found '=='"},
		{"while 1 {\nprint 1\n", "t.zmm:3:1: expected '}' to close the block opened at t.zmm:1:9, found end of input"},
		{"x = (1 + 2", "t.zmm:1:11: expected ')', found end of input"},
		{"print 1 end", "t.zmm:1:9: expected an expression, found 'end'"},
		{"start print 1", "t.zmm:1:14: expected 'end', found end of input"},
		{"start end print 1", "t.zmm:1:11: expected end of input, found 'print'"},
	}

	for _, c := range cases {
		_, err := Parse("t.zmm", c.src)

		var parseErr *ParseError
		if assert.ErrorAs(t, err, &parseErr, c.src) {
			assert.Equal(t, c.expect, err.Error())
		}
	}
}

func TestParserReturnValue(t *testing.T) {
	prog, err := Parse("t.zmm", "fun f() { if 1 { return } return -1 }")
	require.NoError(t, err)

	body := prog.Statements[0].(*FuncDecl).Body.Stmts
	require.Len(t, body, 2)

	inner := body[0].(*IfStmt).Then.Stmts[0].(*ReturnStmt)
	assert.Nil(t, inner.Value)

	outer := body[1].(*ReturnStmt)
	assert.Equal(t, &UnaryExpr{
		Loc:       &Location{"t.zmm", 1, 34},
		Operation: UnaryNegative,
		Operand:   &NumberLit{Loc: &Location{"t.zmm", 1, 35}, Value: 1},
	}, outer.Value)
}

func TestParserLeavesLocations(t *testing.T) {
	prog, err := Parse("t.zmm", "let a = 1\nprint a + 2")
	require.NoError(t, err)

	stmt := prog.Statements[1].(*PrintStmt)
	assert.Equal(t, &Location{"t.zmm", 2, 1}, stmt.Loc)
	assert.Equal(t, &Location{"t.zmm", 2, 9}, stmt.Value.GetLocation())
}
