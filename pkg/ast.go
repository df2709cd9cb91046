package zminus

import "fmt"

// Location is a 1-based position in a source file.
type Location struct {
	Filename string
	Line     int
	Col      int
}

func (l *Location) String() string {
	if l == nil {
		return "<unknown>"
	}

	if l.Filename == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}

	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Col)
}

// Program is a parsed source file. Statements keeps the top-level items in
// source order; function declarations only ever appear at this level.
type Program struct {
	Filename   string
	Statements []Stmt
}

type Node interface {
	GetLocation() *Location
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type Param struct {
	Loc  *Location
	Name string
}

type FuncDecl struct {
	Loc    *Location
	Name   string
	Params []*Param
	Body   *Block
}

type Block struct {
	Loc   *Location
	Stmts []Stmt
}

// LetStmt declares a variable. Without a value it is initialized to zero.
type LetStmt struct {
	Loc   *Location
	Name  string
	Value Expr
}

type AssignStmt struct {
	Loc   *Location
	Name  string
	Value Expr
}

type IfStmt struct {
	Loc  *Location
	Cond Expr
	Then *Block
	Else *Block
}

type WhileStmt struct {
	Loc  *Location
	Cond Expr
	Body *Block
}

type ReturnStmt struct {
	Loc   *Location
	Value Expr
}

type BreakStmt struct {
	Loc *Location
}

// PrintStmt prints either a number (Value) or a string constant (Text).
type PrintStmt struct {
	Loc      *Location
	Value    Expr
	Text     string
	IsString bool
}

type InputStmt struct {
	Loc  *Location
	Name string
}

type ExprStmt struct {
	Loc *Location
	X   Expr
}

type NumberLit struct {
	Loc    *Location
	Value  float64
	IsBool bool
}

type Identifier struct {
	Loc  *Location
	Name string
}

type BinaryOp string

const (
	BinaryAddition       BinaryOp = "+"
	BinarySubtraction    BinaryOp = "-"
	BinaryMultiplication BinaryOp = "*"
	BinaryDivision       BinaryOp = "/"
	BinaryModulo         BinaryOp = "%"
	BinaryTruncDivision  BinaryOp = "div"
	BinaryEqual          BinaryOp = "=="
	BinaryNotEqual       BinaryOp = "!="
	BinaryLess           BinaryOp = "<"
	BinaryLessEqual      BinaryOp = "<="
	BinaryGreater        BinaryOp = ">"
	BinaryGreaterEqual   BinaryOp = ">="
)

// IsComparison reports whether op yields 0 or 1.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case BinaryEqual, BinaryNotEqual, BinaryLess, BinaryLessEqual, BinaryGreater, BinaryGreaterEqual:
		return true
	}

	return false
}

// IsTruncating reports whether op operates on the integer parts of its
// operands.
func (op BinaryOp) IsTruncating() bool {
	return op == BinaryModulo || op == BinaryTruncDivision
}

type BinaryExpr struct {
	Loc       *Location
	Operation BinaryOp
	Op1       Expr
	Op2       Expr
}

type UnaryOp string

const (
	UnaryNegative UnaryOp = "-"
)

type UnaryExpr struct {
	Loc       *Location
	Operation UnaryOp
	Operand   Expr
}

type FuncCall struct {
	Loc  *Location
	Name string
	Args []Expr
}

func (s *FuncDecl) GetLocation() *Location   { return s.Loc }
func (s *Block) GetLocation() *Location      { return s.Loc }
func (s *LetStmt) GetLocation() *Location    { return s.Loc }
func (s *AssignStmt) GetLocation() *Location { return s.Loc }
func (s *IfStmt) GetLocation() *Location     { return s.Loc }
func (s *WhileStmt) GetLocation() *Location  { return s.Loc }
func (s *ReturnStmt) GetLocation() *Location { return s.Loc }
func (s *BreakStmt) GetLocation() *Location  { return s.Loc }
func (s *PrintStmt) GetLocation() *Location  { return s.Loc }
func (s *InputStmt) GetLocation() *Location  { return s.Loc }
func (s *ExprStmt) GetLocation() *Location   { return s.Loc }

func (e *NumberLit) GetLocation() *Location  { return e.Loc }
func (e *Identifier) GetLocation() *Location { return e.Loc }
func (e *BinaryExpr) GetLocation() *Location { return e.Loc }
func (e *UnaryExpr) GetLocation() *Location  { return e.Loc }
func (e *FuncCall) GetLocation() *Location   { return e.Loc }

func (*FuncDecl) stmtNode()   {}
func (*Block) stmtNode()      {}
func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*BreakStmt) stmtNode()  {}
func (*PrintStmt) stmtNode()  {}
func (*InputStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}

func (*NumberLit) exprNode()  {}
func (*Identifier) exprNode() {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*FuncCall) exprNode()   {}
