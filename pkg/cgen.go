package zminus

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const cIndent = "    "

// CGenerator lowers a resolved Program into a single C translation unit.
// Output is fully determined by the Program and its SymbolTable.
type CGenerator struct {
	prog  *Program
	table *SymbolTable

	buf    strings.Builder
	indent int
}

func NewCGenerator(prog *Program, table *SymbolTable) *CGenerator {
	return &CGenerator{
		prog:  prog,
		table: table,
	}
}

// GenerateC renders prog as C. When table is nil the program is resolved
// first.
func GenerateC(prog *Program, table *SymbolTable) (string, error) {
	if table == nil {
		var err error
		if table, err = Resolve(prog); err != nil {
			return "", err
		}
	}

	return NewCGenerator(prog, table).Do(), nil
}

func (g *CGenerator) Do() string {
	g.buf.Reset()
	g.indent = 0

	g.line("#include <stdio.h>")
	g.line("#include <stdbool.h>")

	if len(g.table.Globals) > 0 {
		g.line("")
		g.line("// Global variable declarations")
		for _, name := range g.table.Globals {
			g.line("double %s;", name)
		}
	}

	if g.table.NeedsPrototypes() {
		g.line("")
		g.line("// Function prototypes")
		for _, name := range g.table.Order {
			g.line("%s;", g.signature(g.table.Functions[name]))
		}
	}

	funcs := g.functions()
	if len(funcs) > 0 {
		g.line("")
		g.line("// Function definitions")
		for i, fd := range funcs {
			if i > 0 {
				g.line("")
			}

			g.function(fd)
		}
	} else {
		g.line("")
	}

	g.main()
	return g.buf.String()
}

func (g *CGenerator) functions() []*FuncDecl {
	var funcs []*FuncDecl
	for _, stmt := range g.prog.Statements {
		if fd, ok := stmt.(*FuncDecl); ok {
			funcs = append(funcs, fd)
		}
	}

	return funcs
}

func (g *CGenerator) signature(info *FuncInfo) string {
	if len(info.Params) == 0 {
		return fmt.Sprintf("double %s(void)", info.Name)
	}

	params := make([]string, len(info.Params))
	for i, p := range info.Params {
		params[i] = "double " + p
	}

	return fmt.Sprintf("double %s(%s)", info.Name, strings.Join(params, ", "))
}

func (g *CGenerator) function(fd *FuncDecl) {
	info := g.table.Function(fd.Name)
	if info == nil {
		panic("unresolved function: " + fd.Name)
	}

	g.line("%s {", g.signature(info))
	g.indent++

	// Locals start at zero, as they do in the IR backend
	for _, name := range info.Locals {
		g.line("double %s = 0;", name)
	}

	g.stmts(fd.Body.Stmts)
	if !endsInReturn(fd.Body) {
		g.line("return 0;")
	}

	g.indent--
	g.line("}")
}

func (g *CGenerator) main() {
	g.line("int main(void) {")
	g.indent++

	for _, stmt := range g.prog.Statements {
		if _, ok := stmt.(*FuncDecl); ok {
			continue
		}

		g.stmt(stmt)
	}

	g.line("return 0;")
	g.indent--
	g.line("}")
}

func (g *CGenerator) stmts(stmts []Stmt) {
	for _, stmt := range stmts {
		g.stmt(stmt)
	}
}

func (g *CGenerator) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *LetStmt:
		if s.Value == nil {
			g.line("%s = 0;", s.Name)
			return
		}

		g.line("%s = %s;", s.Name, g.expr(s.Value))
	case *AssignStmt:
		g.line("%s = %s;", s.Name, g.expr(s.Value))
	case *InputStmt:
		g.line("if (scanf(\"%%lf\", &%s) != 1) {", s.Name)
		g.indent++
		g.line("%s = 0;", s.Name)
		g.line("scanf(\"%%*s\");")
		g.indent--
		g.line("}")
	case *PrintStmt:
		if s.IsString {
			g.line("printf(\"%s\\n\");", escapeCString(s.Text))
			return
		}

		g.line("printf(\"%%.2f\\n\", %s);", g.double(s.Value))
	case *IfStmt:
		g.line("if (%s) {", g.expr(s.Cond))
		g.nested(s.Then)
		g.line("}")

		if s.Else != nil {
			g.line("else {")
			g.nested(s.Else)
			g.line("}")
		}
	case *WhileStmt:
		g.line("while (%s) {", g.expr(s.Cond))
		g.nested(s.Body)
		g.line("}")
	case *ReturnStmt:
		if s.Value == nil {
			g.line("return 0;")
			return
		}

		g.line("return %s;", g.expr(s.Value))
	case *BreakStmt:
		g.line("break;")
	case *Block:
		g.line("{")
		g.nested(s)
		g.line("}")
	case *ExprStmt:
		g.line("%s;", g.expr(s.X))
	default:
		panic(fmt.Sprintf("unexpected statement: %T", stmt))
	}
}

func (g *CGenerator) nested(b *Block) {
	g.indent++
	g.stmts(b.Stmts)
	g.indent--
}

func (g *CGenerator) expr(expr Expr) string {
	switch e := expr.(type) {
	case *NumberLit:
		return formatNumber(e)
	case *Identifier:
		return e.Name
	case *BinaryExpr:
		l, r := g.expr(e.Op1), g.expr(e.Op2)
		if e.Operation.IsTruncating() {
			return truncatingOp(e.Operation, l, r)
		}

		// An arithmetic operation between two ints would use int semantics
		if !e.Operation.IsComparison() && !isDouble(e.Op1) && !isDouble(e.Op2) {
			l = "(double)" + l
		}

		return fmt.Sprintf("(%s %s %s)", l, e.Operation, r)
	case *UnaryExpr:
		switch e.Operation {
		case UnaryNegative:
			return fmt.Sprintf("(-%s)", g.expr(e.Operand))
		default:
			panic("unexpected unary op: " + string(e.Operation))
		}
	case *FuncCall:
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = g.expr(arg)
		}

		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
	}

	panic(fmt.Sprintf("unexpected expression: %T", expr))
}

// double renders expr so that its C type is double.
func (g *CGenerator) double(expr Expr) string {
	if isDouble(expr) {
		return g.expr(expr)
	}

	return "(double)" + g.expr(expr)
}

// isDouble reports whether expr has type double in the generated C. Integral
// literals, comparisons and truncating operations are ints.
func isDouble(expr Expr) bool {
	switch e := expr.(type) {
	case *NumberLit:
		return e.IsBool || strings.Contains(formatNumber(e), ".")
	case *BinaryExpr:
		return !e.Operation.IsComparison() && !e.Operation.IsTruncating()
	case *UnaryExpr:
		return isDouble(e.Operand)
	}

	return true
}

func (g *CGenerator) line(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteByte('\n')
		return
	}

	g.buf.WriteString(strings.Repeat(cIndent, g.indent))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

// truncatingOp lowers the operators that work on the integer parts of their
// operands. Both operands are truncated toward zero before the operation.
func truncatingOp(op BinaryOp, l, r string) string {
	switch op {
	case BinaryModulo:
		return fmt.Sprintf("((int)%s %% (int)%s)", l, r)
	case BinaryTruncDivision:
		return fmt.Sprintf("((int)%s / (int)%s)", l, r)
	}

	panic("not a truncating op: " + string(op))
}

func formatNumber(n *NumberLit) string {
	if n.IsBool {
		if n.Value != 0 {
			return "1.0"
		}

		return "0.0"
	}

	s := strconv.FormatFloat(n.Value, 'f', -1, 64)

	// Integral literals outside the int range would be too large for a C
	// integer constant.
	if !strings.Contains(s, ".") && math.Abs(n.Value) > math.MaxInt32 {
		s += ".0"
	}

	return s
}

func escapeCString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, `%`, `%%`).Replace(s)
}

func endsInReturn(b *Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}

	_, ok := b.Stmts[len(b.Stmts)-1].(*ReturnStmt)
	return ok
}
