package test

import (
	"math/rand"
	"strings"
)

// validTokens is a ';'-separated list of lexemes that are valid on their own.
// The list can't contain ';' itself, so that token is appended separately.
const validTokens = "fun;gcd;start;end;let;print;input;if;else;while;break;return;true;false;div;(;);{;};,;" +
	"+;-;*;/;%;=;==;!=;<;<=;>;>=;0;1;48;18;3.14;12345;98765;temp;_under_score;x1;" +
	"\"this is a string\";\"\";\"Enter first number: \";" +
	"\"this is a longer string containing a bunch of text: Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.\";" +
	"// line comment\n;/* block comment */;\n"

// GetRandomTokens returns size random lexemes joined by spaces.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := append(strings.Split(validTokens, ";"), ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
