package zminus

import (
	"fmt"
	"io"
	"unicode/utf8"
)

type TokenType uint64
type stateFunc func(l *Lexer) stateFunc

const (
	EOF rune = 0

	TokenError TokenType = iota
	TokenEOF
	TokenNumber
	TokenString
	TokenIdentifier

	TokenStart
	TokenEnd
	TokenLet
	TokenPrint
	TokenInput
	TokenIf
	TokenElse
	TokenWhile
	TokenBreak
	TokenFunc
	TokenReturn
	TokenTrue
	TokenFalse
	TokenDiv

	TokenPlus
	TokenMinus
	TokenMulti
	TokenSlash
	TokenPercent
	TokenAssign
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual
	TokenOpenParentheses
	TokenCloseParentheses
	TokenOpenCurly
	TokenCloseCurly
	TokenComma
	TokenSemicolon
)

var keywordTable = map[string]TokenType{
	"start":  TokenStart,
	"end":    TokenEnd,
	"let":    TokenLet,
	"print":  TokenPrint,
	"input":  TokenInput,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"break":  TokenBreak,
	"fun":    TokenFunc,
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"div":    TokenDiv,
}

var operatorTable = map[string]TokenType{
	"+":  TokenPlus,
	"-":  TokenMinus,
	"*":  TokenMulti,
	"/":  TokenSlash,
	"%":  TokenPercent,
	"=":  TokenAssign,
	"==": TokenEqual,
	"!=": TokenNotEqual,
	"<":  TokenLess,
	"<=": TokenLessEqual,
	">":  TokenGreater,
	">=": TokenGreaterEqual,
	"(":  TokenOpenParentheses,
	")":  TokenCloseParentheses,
	"{":  TokenOpenCurly,
	"}":  TokenCloseCurly,
	",":  TokenComma,
	";":  TokenSemicolon,
}

var tokenNames = map[TokenType]string{
	TokenError:      "error",
	TokenEOF:        "end of input",
	TokenNumber:     "number",
	TokenString:     "string",
	TokenIdentifier: "identifier",
}

func init() {
	for k, t := range keywordTable {
		tokenNames[t] = "'" + k + "'"
	}

	for op, t := range operatorTable {
		tokenNames[t] = "'" + op + "'"
	}
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", uint64(t))
}

type Token struct {
	Typ   TokenType
	Value string
	Loc   *Location
}

func (t Token) String() string {
	switch t.Typ {
	case TokenNumber, TokenIdentifier:
		return fmt.Sprintf("%s '%s'", t.Typ, t.Value)
	case TokenString:
		return fmt.Sprintf("string %q", t.Value)
	}

	return t.Typ.String()
}

func (t Token) isValid() bool {
	return t.Typ != TokenError && t.Typ != TokenEOF
}

// Lexer turns Z-- source into tokens on demand. Tokens are produced lazily by
// Next and the whole sequence can be replayed with Reset.
type Lexer struct {
	filename string
	src      string

	pos  int
	line int
	col  int

	start   Location
	state   stateFunc
	pending []Token
	last    Token
	err     *LexError
}

func NewLexer(filename, src string) *Lexer {
	l := &Lexer{
		filename: filename,
		src:      src,
	}

	l.Reset()
	return l
}

func NewLexerFromReader(filename string, reader io.Reader) (*Lexer, error) {
	src, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return NewLexer(filename, string(src)), nil
}

// Tokenize returns every token of src, ending with TokenEOF.
func Tokenize(filename, src string) ([]Token, error) {
	return NewLexer(filename, src).RunBlocking()
}

func (l *Lexer) GetFilename() string {
	return l.filename
}

// Reset rewinds the lexer to the beginning of its source.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.col = 1
	l.state = defaultState
	l.pending = nil
	l.last = Token{}
	l.err = nil
}

// Next returns the next token. Once the end of input or an error has been
// reached, the same terminal token is returned on every call.
func (l *Lexer) Next() Token {
	for len(l.pending) == 0 {
		if l.state == nil {
			return l.last
		}

		l.state = l.state(l)
	}

	tok := l.pending[0]
	l.pending = l.pending[1:]

	if !tok.isValid() {
		l.last = tok
	}

	return tok
}

// RunBlocking drains the lexer. The returned slice always ends with the EOF
// token.
func (l *Lexer) RunBlocking() ([]Token, error) {
	var tokens []Token
	for {
		t := l.Next()
		switch t.Typ {
		case TokenError:
			return nil, l.err
		case TokenEOF:
			return append(tokens, t), nil
		}

		tokens = append(tokens, t)
	}
}

func defaultState(l *Lexer) stateFunc {
	for {
		switch r := l.peek(); {
		case l.atEOF():
			l.mark()
			return l.emmitEOF()
		case isSpace(r):
			l.next()
		case r == '/' && l.peekAt(1) == '/':
			return lineCommentState
		case r == '/' && l.peekAt(1) == '*':
			return blockCommentState
		case isDigit(r):
			return numberState
		case r == '"':
			return stringState
		case isIdentStart(r):
			return identifierState
		default:
			return operatorState
		}
	}
}

func numberState(l *Lexer) stateFunc {
	l.mark()
	begin := l.pos

	for isDigit(l.peek()) {
		l.next()
	}

	if l.peek() == '.' {
		l.next()
		if !isDigit(l.peek()) {
			return l.errorf("expected a digit after '.' in number %s", l.src[begin:l.pos])
		}

		for isDigit(l.peek()) {
			l.next()
		}
	}

	return l.emmitValue(TokenNumber, l.src[begin:l.pos])
}

func stringState(l *Lexer) stateFunc {
	l.mark()
	l.next() // Skip the leading double-quote

	begin := l.pos
	for {
		if l.atEOF() {
			return l.errorf("unterminated string")
		}

		switch l.peek() {
		case '\n', '\r':
			return l.errorf("newline in string")
		case '"':
			str := l.src[begin:l.pos]
			l.next()
			return l.emmitValue(TokenString, str)
		default:
			l.next()
		}
	}
}

func identifierState(l *Lexer) stateFunc {
	l.mark()
	begin := l.pos

	for isIdentPart(l.peek()) {
		l.next()
	}

	id := l.src[begin:l.pos]
	if t, ok := keywordTable[id]; ok {
		return l.emmitValue(t, id)
	}

	return l.emmitValue(TokenIdentifier, id)
}

func operatorState(l *Lexer) stateFunc {
	l.mark()

	r := l.next()
	if r == '=' || r == '!' || r == '<' || r == '>' { // Some operators can be two runes
		op := string(r) + string(l.peek())
		if tok, ok := operatorTable[op]; ok {
			l.next()
			return l.emmitValue(tok, op)
		}
	}

	if tok, ok := operatorTable[string(r)]; ok {
		return l.emmitValue(tok, string(r))
	}

	return l.unexpected(r)
}

func lineCommentState(l *Lexer) stateFunc {
	for r := l.peek(); r != '\n' && r != EOF; r = l.peek() {
		l.next()
	}

	return defaultState
}

func blockCommentState(l *Lexer) stateFunc {
	l.mark()
	l.next()
	l.next()

	for {
		if l.atEOF() {
			return l.errorf("unterminated block comment")
		}

		if r := l.next(); r == '*' && l.peek() == '/' {
			l.next()
			return defaultState
		}
	}
}

func (l *Lexer) unexpected(r rune) stateFunc {
	l.err = &LexError{Loc: l.loc(), Char: r}
	return l.emmitError(l.err.Error())
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = &LexError{
		Loc:    l.loc(),
		Reason: fmt.Sprintf(format, args...),
	}

	return l.emmitError(l.err.Error())
}

func (l *Lexer) emmitError(msg string) stateFunc {
	l.pending = append(l.pending, Token{
		Typ:   TokenError,
		Value: msg,
		Loc:   l.loc(),
	})

	return nil
}

func (l *Lexer) emmitEOF() stateFunc {
	l.pending = append(l.pending, Token{
		Typ: TokenEOF,
		Loc: l.loc(),
	})

	return nil
}

func (l *Lexer) emmitValue(t TokenType, val string) stateFunc {
	l.pending = append(l.pending, Token{
		Typ:   t,
		Value: val,
		Loc:   l.loc(),
	})

	return defaultState
}

// mark records the position of the token about to be scanned.
func (l *Lexer) mark() {
	l.start = Location{Filename: l.filename, Line: l.line, Col: l.col}
}

func (l *Lexer) loc() *Location {
	loc := l.start
	return &loc
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) rune {
	pos := l.pos
	for i := 0; ; i++ {
		if pos >= len(l.src) {
			return EOF
		}

		r, size := utf8.DecodeRuneInString(l.src[pos:])
		if i == n {
			return r
		}

		pos += size
	}
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.src) {
		return EOF
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
