package zminus

import "fmt"

// CompileError is implemented by every diagnostic the pipeline can produce.
// All of them are fatal to the compilation that raised them.
type CompileError interface {
	error
	Location() *Location
}

type LexError struct {
	Loc    *Location
	Char   rune
	Reason string
}

func (e *LexError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Loc, e.Reason)
	}

	return fmt.Sprintf("%s: unexpected character %q", e.Loc, e.Char)
}

func (e *LexError) Location() *Location { return e.Loc }

type ParseError struct {
	Loc      *Location
	Expected string
	Found    Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", e.Loc, e.Expected, e.Found)
}

func (e *ParseError) Location() *Location { return e.Loc }

type UndeclaredIdentifier struct {
	Loc  *Location
	Name string
}

func (e *UndeclaredIdentifier) Error() string {
	return fmt.Sprintf("%s: undeclared identifier '%s'", e.Loc, e.Name)
}

func (e *UndeclaredIdentifier) Location() *Location { return e.Loc }

type DuplicateDeclaration struct {
	Loc  *Location
	Name string
}

func (e *DuplicateDeclaration) Error() string {
	return fmt.Sprintf("%s: duplicate declaration of '%s'", e.Loc, e.Name)
}

func (e *DuplicateDeclaration) Location() *Location { return e.Loc }

type ArityMismatch struct {
	Loc      *Location
	Callee   string
	Expected int
	Got      int
}

func (e *ArityMismatch) Error() string {
	return fmt.Sprintf("%s: '%s' expects %d argument(s), got %d", e.Loc, e.Callee, e.Expected, e.Got)
}

func (e *ArityMismatch) Location() *Location { return e.Loc }

type UndefinedFunction struct {
	Loc  *Location
	Name string
}

func (e *UndefinedFunction) Error() string {
	return fmt.Sprintf("%s: undefined function '%s'", e.Loc, e.Name)
}

func (e *UndefinedFunction) Location() *Location { return e.Loc }

// ReservedIdentifier is raised for names that would collide with the C
// keywords or with the symbols the generated translation unit defines itself.
type ReservedIdentifier struct {
	Loc  *Location
	Name string
}

func (e *ReservedIdentifier) Error() string {
	return fmt.Sprintf("%s: '%s' is reserved and cannot be declared", e.Loc, e.Name)
}

func (e *ReservedIdentifier) Location() *Location { return e.Loc }
