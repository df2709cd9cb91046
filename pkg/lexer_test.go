package zminus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zminus.dev/internal/test"
)

// withoutLocations drops token locations so expectations can be written
// inline.
func withoutLocations(toks []Token) []Token {
	if toks == nil {
		return nil
	}

	out := make([]Token, len(toks))
	for i, t := range toks {
		out[i] = Token{Typ: t.Typ, Value: t.Value}
	}

	return out
}

func TestLexer(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []Token
	}{
		{
			"fun main () {}",
			false,
			[]Token{
				{TokenFunc, "fun", nil},
				{TokenIdentifier, "main", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenCloseParentheses, ")", nil},
				{TokenOpenCurly, "{", nil},
				{TokenCloseCurly, "}", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"//this is a comment\n",
			false,
			[]Token{
				{TokenEOF, "", nil},
			},
		},
		{
			"let x = 1 /* block\ncomment */ print x",
			false,
			[]Token{
				{TokenLet, "let", nil},
				{TokenIdentifier, "x", nil},
				{TokenAssign, "=", nil},
				{TokenNumber, "1", nil},
				{TokenPrint, "print", nil},
				{TokenIdentifier, "x", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"a==b!=c<=d>=e<f>g=h",
			false,
			[]Token{
				{TokenIdentifier, "a", nil},
				{TokenEqual, "==", nil},
				{TokenIdentifier, "b", nil},
				{TokenNotEqual, "!=", nil},
				{TokenIdentifier, "c", nil},
				{TokenLessEqual, "<=", nil},
				{TokenIdentifier, "d", nil},
				{TokenGreaterEqual, ">=", nil},
				{TokenIdentifier, "e", nil},
				{TokenLess, "<", nil},
				{TokenIdentifier, "f", nil},
				{TokenGreater, ">", nil},
				{TokenIdentifier, "g", nil},
				{TokenAssign, "=", nil},
				{TokenIdentifier, "h", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"x = 3.14 % 2 div 1 * -y / z;",
			false,
			[]Token{
				{TokenIdentifier, "x", nil},
				{TokenAssign, "=", nil},
				{TokenNumber, "3.14", nil},
				{TokenPercent, "%", nil},
				{TokenNumber, "2", nil},
				{TokenDiv, "div", nil},
				{TokenNumber, "1", nil},
				{TokenMulti, "*", nil},
				{TokenMinus, "-", nil},
				{TokenIdentifier, "y", nil},
				{TokenSlash, "/", nil},
				{TokenIdentifier, "z", nil},
				{TokenSemicolon, ";", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"start input(n) if true {} else { break } while false {} return end",
			false,
			[]Token{
				{TokenStart, "start", nil},
				{TokenInput, "input", nil},
				{TokenOpenParentheses, "(", nil},
				{TokenIdentifier, "n", nil},
				{TokenCloseParentheses, ")", nil},
				{TokenIf, "if", nil},
				{TokenTrue, "true", nil},
				{TokenOpenCurly, "{", nil},
				{TokenCloseCurly, "}", nil},
				{TokenElse, "else", nil},
				{TokenOpenCurly, "{", nil},
				{TokenBreak, "break", nil},
				{TokenCloseCurly, "}", nil},
				{TokenWhile, "while", nil},
				{TokenFalse, "false", nil},
				{TokenOpenCurly, "{", nil},
				{TokenCloseCurly, "}", nil},
				{TokenReturn, "return", nil},
				{TokenEnd, "end", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"print \"GCD of 48 and 18 is: \"",
			false,
			[]Token{
				{TokenPrint, "print", nil},
				{TokenString, "GCD of 48 and 18 is: ", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"_tmp1 Let fun2 divide",
			false,
			[]Token{
				{TokenIdentifier, "_tmp1", nil},
				{TokenIdentifier, "Let", nil},
				{TokenIdentifier, "fun2", nil},
				{TokenIdentifier, "divide", nil},
				{TokenEOF, "", nil},
			},
		},
		{
			"\"\"",
			false,
			[]Token{
				{TokenString, "", nil},
				{TokenEOF, "", nil},
			},
		},
		{"\"unclosed string", true, nil},
		{"\"broken\nstring\"", true, nil},
		{"/* unclosed comment", true, nil},
		{"1.", true, nil},
		{"a ! b", true, nil},
		{"@", true, nil},
		{"x = \x00", true, nil},
		{"únicode", true, nil},
	}

	for _, c := range cases {
		toks, err := Tokenize("test.zmm", c.data)
		if c.fail {
			assert.Error(t, err, c.data)
			assert.IsType(t, &LexError{}, err)
		} else {
			assert.NoError(t, err, c.data)
		}

		assert.Equal(t, c.expect, withoutLocations(toks), c.data)
	}
}

func TestLexerLocations(t *testing.T) {
	toks, err := Tokenize("test.zmm", "let x = 1\n  print x\n")
	require.NoError(t, err)

	expect := []Location{
		{"test.zmm", 1, 1},
		{"test.zmm", 1, 5},
		{"test.zmm", 1, 7},
		{"test.zmm", 1, 9},
		{"test.zmm", 2, 3},
		{"test.zmm", 2, 9},
		{"test.zmm", 3, 1},
	}

	require.Len(t, toks, len(expect))
	for i, tok := range toks {
		assert.Equal(t, expect[i], *tok.Loc, tok.String())
	}
}

func TestLexerErrorLocation(t *testing.T) {
	_, err := Tokenize("test.zmm", "let x = 1\nx = x # 2")

	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, '#', lexErr.Char)
	assert.Equal(t, &Location{"test.zmm", 2, 7}, lexErr.Location())
	assert.Equal(t, "test.zmm:2:7: unexpected character '#'", err.Error())
}

func TestLexerNextAndReset(t *testing.T) {
	l := NewLexer("test.zmm", "print 1")

	assert.Equal(t, TokenPrint, l.Next().Typ)
	assert.Equal(t, TokenNumber, l.Next().Typ)
	assert.Equal(t, TokenEOF, l.Next().Typ)
	assert.Equal(t, TokenEOF, l.Next().Typ)

	l.Reset()
	assert.Equal(t, TokenPrint, l.Next().Typ)
}

func TestLexerFromReader(t *testing.T) {
	l, err := NewLexerFromReader("test.zmm", strings.NewReader("let a"))
	require.NoError(t, err)

	toks, err := l.RunBlocking()
	require.NoError(t, err)
	assert.Len(t, toks, 3)
	assert.Equal(t, "test.zmm", l.GetFilename())
}

// Use a package-level variable to avoid compiler optimisation
var benchResult []Token

func benchmarkLexer(size int, b *testing.B) {
	for n := 0; n < b.N; n++ {
		// Setup
		b.StopTimer()
		data := test.GetRandomTokens(size)
		l := NewLexer("bench.zmm", data)

		var err error
		b.StartTimer()

		benchResult, err = l.RunBlocking()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexer100(b *testing.B) {
	benchmarkLexer(100, b)
}

func BenchmarkLexer1000(b *testing.B) {
	benchmarkLexer(1000, b)
}

func BenchmarkLexer10000(b *testing.B) {
	benchmarkLexer(10000, b)
}

func BenchmarkLexer100000(b *testing.B) {
	benchmarkLexer(100000, b)
}
