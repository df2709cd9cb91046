package zminus

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const (
	numberFormat = "%.2f\n"
	scanFormat   = "%lf"
	skipFormat   = "%*s"
)

func defineBuiltins(b *LLVMIRBuilder) {
	defineBuiltinFunc(b, "printf", builtinPrintf)
	defineBuiltinFunc(b, "scanf", builtinScanf)
}

type funcDefinition = func(mod *ir.Module) *ir.Func

func defineBuiltinFunc(b *LLVMIRBuilder, name string, definition funcDefinition) {
	f := definition(b.mod)
	f.SetName(name)
	b.values.Set(name, f)
}

func builtinPrintf(mod *ir.Module) *ir.Func {
	printf := mod.NewFunc("", types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true

	return printf
}

func builtinScanf(mod *ir.Module) *ir.Func {
	scanf := mod.NewFunc("", types.I32, ir.NewParam("format", types.I8Ptr))
	scanf.Sig.Variadic = true

	return scanf
}

// cstring returns a pointer to a NUL-terminated private constant holding s.
// Equal strings share one global.
func (b *LLVMIRBuilder) cstring(s string) value.Value {
	glob, ok := b.strings[s]
	if !ok {
		data := constant.NewCharArrayFromString(s + "\x00")

		glob = b.mod.NewGlobalDef(fmt.Sprintf(".str.%d", len(b.strings)), data)
		glob.Linkage = enum.LinkagePrivate
		glob.Immutable = true

		b.strings[s] = glob
	}

	zero := constant.NewInt(types.I32, 0)
	return constant.NewGetElementPtr(glob.ContentType, glob, zero, zero)
}

func (b *LLVMIRBuilder) printNumber(v value.Value) {
	b.block.NewCall(b.values.Get("printf"), b.cstring(numberFormat), v)
}

func (b *LLVMIRBuilder) printText(text string) {
	// The text goes through a "%s" format so it is printed verbatim.
	b.block.NewCall(b.values.Get("printf"), b.cstring("%s\n"), b.cstring(text))
}

// input reads a double into ptr. When the read fails the variable is set to
// zero and the offending word is discarded.
func (b *LLVMIRBuilder) input(ptr value.Value) {
	scanf := b.values.Get("scanf")

	n := b.block.NewCall(scanf, b.cstring(scanFormat), ptr)
	failed := b.block.NewICmp(enum.IPredNE, n, constant.NewInt(types.I32, 1))

	fail := b.newBlock("input.fail")
	done := b.newBlock("input.done")
	b.block.NewCondBr(failed, fail, done)

	b.block = fail
	b.block.NewStore(constant.NewFloat(types.Double, 0), ptr)
	b.block.NewCall(scanf, b.cstring(skipFormat))
	b.block.NewBr(done)

	b.block = done
}
