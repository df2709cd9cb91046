package zminus

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Inherit(t2 *ValueLookup) {
	for k, v := range t2.vals {
		l.Set(k, v)
	}
}

func (l *ValueLookup) Get(id string) value.Value {
	if val, ok := l.vals[id]; ok {
		return val
	}

	// The resolver rejects every program that could get here
	panic("undefined identifier: " + id)
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

type IRGenerator interface {
	Do() IR
}

type IR interface {
	fmt.Stringer
}

// LLVMIRBuilder holds the state of the function being lowered. Variables are
// stored as pointers (globals or allocas) and every read is a load.
type LLVMIRBuilder struct {
	mod    *ir.Module
	fn     *ir.Func
	block  *ir.Block
	values *ValueLookup

	breaks  []*ir.Block
	strings map[string]*ir.Global
	blocks  int
}

func NewLLVMIRBuilder() *LLVMIRBuilder {
	builder := &LLVMIRBuilder{
		mod:     ir.NewModule(),
		values:  NewValueLookup(),
		strings: make(map[string]*ir.Global),
	}

	defineBuiltins(builder)
	return builder
}

func (b *LLVMIRBuilder) global(name string) {
	g := b.mod.NewGlobalDef(name, constant.NewFloat(types.Double, 0))
	b.values.Set(name, g)
}

// declare adds the signature of info to the module so calls can be lowered
// regardless of declaration order.
func (b *LLVMIRBuilder) declare(info *FuncInfo) {
	params := make([]*ir.Param, len(info.Params))
	for i, name := range info.Params {
		params[i] = ir.NewParam(name, types.Double)
	}

	f := b.mod.NewFunc(info.Name, types.Double, params...)
	b.values.Set(info.Name, f)
}

func (b *LLVMIRBuilder) function(expr *FuncDecl, info *FuncInfo) {
	f, ok := b.values.Get(expr.Name).(*ir.Func)
	if !ok {
		panic("not a function: " + expr.Name)
	}

	prevVals := b.values
	b.values = NewValueLookup()
	b.values.Inherit(prevVals)

	b.fn = f
	b.block = f.NewBlock("entry.0")

	defer func() {
		b.values = prevVals
		b.fn = nil
		b.block = nil
	}()

	for _, param := range f.Params {
		ptr := b.block.NewAlloca(types.Double)
		ptr.SetName(param.Name() + ".addr")
		b.block.NewStore(param, ptr)
		b.values.Set(param.Name(), ptr)
	}

	zero := constant.NewFloat(types.Double, 0)
	for _, name := range info.Locals {
		ptr := b.block.NewAlloca(types.Double)
		ptr.SetName(name)
		b.block.NewStore(zero, ptr)
		b.values.Set(name, ptr)
	}

	b.stmts(expr.Body.Stmts)

	if b.block.Term == nil {
		b.block.NewRet(zero)
	}
}

func (b *LLVMIRBuilder) main(stmts []Stmt) {
	b.fn = b.mod.NewFunc("main", types.I32)
	b.block = b.fn.NewBlock("entry.0")

	b.stmts(stmts)

	if b.block.Term == nil {
		b.block.NewRet(constant.NewInt(types.I32, 0))
	}
}

func (b *LLVMIRBuilder) newBlock(name string) *ir.Block {
	b.blocks++
	return b.fn.NewBlock(fmt.Sprintf("%s.%d", name, b.blocks))
}

func (b *LLVMIRBuilder) stmts(stmts []Stmt) {
	for _, stmt := range stmts {
		b.stmt(stmt)
	}
}

func (b *LLVMIRBuilder) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *LetStmt:
		var v value.Value = constant.NewFloat(types.Double, 0)
		if s.Value != nil {
			v = b.recursiveLoad(s.Value)
		}

		b.block.NewStore(v, b.values.Get(s.Name))
	case *AssignStmt:
		b.block.NewStore(b.recursiveLoad(s.Value), b.values.Get(s.Name))
	case *InputStmt:
		b.input(b.values.Get(s.Name))
	case *PrintStmt:
		if s.IsString {
			b.printText(s.Text)
			return
		}

		b.printNumber(b.recursiveLoad(s.Value))
	case *IfStmt:
		b.ifStmt(s)
	case *WhileStmt:
		b.whileStmt(s)
	case *ReturnStmt:
		var v value.Value = constant.NewFloat(types.Double, 0)
		if s.Value != nil {
			v = b.recursiveLoad(s.Value)
		}

		b.block.NewRet(v)
		b.block = b.newBlock("dead")
	case *BreakStmt:
		b.block.NewBr(b.breaks[len(b.breaks)-1])
		b.block = b.newBlock("dead")
	case *Block:
		b.stmts(s.Stmts)
	case *ExprStmt:
		b.recursiveLoad(s.X)
	default:
		panic(fmt.Sprintf("unexpected statement: %T", stmt))
	}
}

func (b *LLVMIRBuilder) ifStmt(s *IfStmt) {
	cond := b.condition(s.Cond)

	then := b.newBlock("if.then")
	done := b.newBlock("if.done")
	otherwise := done
	if s.Else != nil {
		otherwise = b.newBlock("if.else")
	}

	b.block.NewCondBr(cond, then, otherwise)

	b.block = then
	b.stmts(s.Then.Stmts)
	b.block.NewBr(done)

	if s.Else != nil {
		b.block = otherwise
		b.stmts(s.Else.Stmts)
		b.block.NewBr(done)
	}

	b.block = done
}

func (b *LLVMIRBuilder) whileStmt(s *WhileStmt) {
	head := b.newBlock("while.cond")
	body := b.newBlock("while.body")
	done := b.newBlock("while.done")

	b.block.NewBr(head)

	b.block = head
	b.block.NewCondBr(b.condition(s.Cond), body, done)

	b.breaks = append(b.breaks, done)
	b.block = body
	b.stmts(s.Body.Stmts)
	b.block.NewBr(head)
	b.breaks = b.breaks[:len(b.breaks)-1]

	b.block = done
}

// condition converts a double into an i1 that is true for any non-zero value.
func (b *LLVMIRBuilder) condition(expr Expr) value.Value {
	v := b.recursiveLoad(expr)
	return b.block.NewFCmp(enum.FPredUNE, v, constant.NewFloat(types.Double, 0))
}

func (b *LLVMIRBuilder) recursiveLoad(expr Expr) value.Value {
	switch e := expr.(type) {
	case *NumberLit:
		return constant.NewFloat(types.Double, e.Value)
	case *BinaryExpr:
		return b.binaryExpression(e)
	case *UnaryExpr:
		return b.unaryExpression(e)
	case *Identifier:
		return b.block.NewLoad(types.Double, b.values.Get(e.Name))
	case *FuncCall:
		return b.functionCall(e)
	default:
		panic(fmt.Sprintf("unexpected expression: %T", expr))
	}
}

var fpreds = map[BinaryOp]enum.FPred{
	BinaryEqual:        enum.FPredOEQ,
	BinaryNotEqual:     enum.FPredUNE,
	BinaryLess:         enum.FPredOLT,
	BinaryLessEqual:    enum.FPredOLE,
	BinaryGreater:      enum.FPredOGT,
	BinaryGreaterEqual: enum.FPredOGE,
}

func (b *LLVMIRBuilder) binaryExpression(expr *BinaryExpr) value.Value {
	v1 := b.recursiveLoad(expr.Op1)
	v2 := b.recursiveLoad(expr.Op2)

	switch expr.Operation {
	case BinaryAddition:
		return b.block.NewFAdd(v1, v2)
	case BinarySubtraction:
		return b.block.NewFSub(v1, v2)
	case BinaryMultiplication:
		return b.block.NewFMul(v1, v2)
	case BinaryDivision:
		return b.block.NewFDiv(v1, v2)
	case BinaryModulo, BinaryTruncDivision:
		i1 := b.block.NewFPToSI(v1, types.I32)
		i2 := b.block.NewFPToSI(v2, types.I32)

		var res value.Value
		if expr.Operation == BinaryModulo {
			res = b.block.NewSRem(i1, i2)
		} else {
			res = b.block.NewSDiv(i1, i2)
		}

		return b.block.NewSIToFP(res, types.Double)
	}

	pred, ok := fpreds[expr.Operation]
	if !ok {
		panic("unexpected binary op: " + string(expr.Operation))
	}

	cmp := b.block.NewFCmp(pred, v1, v2)
	return b.block.NewUIToFP(cmp, types.Double)
}

func (b *LLVMIRBuilder) unaryExpression(expr *UnaryExpr) value.Value {
	v := b.recursiveLoad(expr.Operand)

	switch expr.Operation {
	case UnaryNegative:
		return b.block.NewFNeg(v)
	default:
		panic("unexpected unary op: " + string(expr.Operation))
	}
}

func (b *LLVMIRBuilder) functionCall(expr *FuncCall) value.Value {
	callVals := make([]value.Value, len(expr.Args))
	for i, arg := range expr.Args {
		callVals[i] = b.recursiveLoad(arg)
	}

	return b.block.NewCall(b.values.Get(expr.Name), callVals...)
}

type LLVMGenerator struct {
	ast   *Program
	table *SymbolTable
}

func NewLLVMGenerator(ast *Program, table *SymbolTable) *LLVMGenerator {
	return &LLVMGenerator{
		ast:   ast,
		table: table,
	}
}

// GenerateIR renders prog as textual LLVM IR. When table is nil the program
// is resolved first.
func GenerateIR(prog *Program, table *SymbolTable) (string, error) {
	if table == nil {
		var err error
		if table, err = Resolve(prog); err != nil {
			return "", err
		}
	}

	return NewLLVMGenerator(prog, table).Do().String(), nil
}

func (g LLVMGenerator) Do() IR {
	builder := NewLLVMIRBuilder()

	for _, name := range g.table.Globals {
		builder.global(name)
	}

	for _, name := range g.table.Order {
		builder.declare(g.table.Functions[name])
	}

	var mainStmts []Stmt
	for _, stmt := range g.ast.Statements {
		if fd, ok := stmt.(*FuncDecl); ok {
			builder.function(fd, g.table.Function(fd.Name))
			continue
		}

		mainStmts = append(mainStmts, stmt)
	}

	builder.main(mainStmts)
	return builder.mod
}
