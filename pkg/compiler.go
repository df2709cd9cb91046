package zminus

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Target selects the code generator used by a Compiler.
type Target string

const (
	TargetC    Target = "c"
	TargetLLVM Target = "llvm"
)

func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetC, TargetLLVM:
		return t, nil
	}

	return "", errors.Errorf("unknown target %q (expected %q or %q)", s, TargetC, TargetLLVM)
}

// Extension is the file extension of the artifacts produced for t.
func (t Target) Extension() string {
	if t == TargetLLVM {
		return ".ll"
	}

	return ".c"
}

type Compiler struct {
	Target Target
}

func NewCompiler() *Compiler {
	return &Compiler{Target: TargetC}
}

// Compile reads and compiles the file at filename. The first error found by
// any stage is returned as is.
func (c *Compiler) Compile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", errors.Wrap(err, "open source")
	}
	defer f.Close()

	return c.CompileFromReader(filename, f)
}

func (c *Compiler) CompileFromReader(filename string, reader io.Reader) (string, error) {
	lexer, err := NewLexerFromReader(filename, reader)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", filename)
	}

	tokens, err := lexer.RunBlocking()
	if err != nil {
		return "", err
	}

	prog, err := NewParser(filename, tokens).Run()
	if err != nil {
		return "", err
	}

	return c.compile(prog)
}

func (c *Compiler) compile(prog *Program) (string, error) {
	table, err := Resolve(prog)
	if err != nil {
		return "", err
	}

	switch c.Target {
	case TargetC, "":
		return GenerateC(prog, table)
	case TargetLLVM:
		return GenerateIR(prog, table)
	}

	return "", errors.Errorf("unknown target %q", c.Target)
}

// CompileToFile compiles src and writes the result to dst. Nothing is written
// unless the compilation succeeds, and a failed write leaves no file behind.
func (c *Compiler) CompileToFile(src, dst string) error {
	out, err := c.Compile(src)
	if err != nil {
		return err
	}

	return writeOutput(dst, out)
}

func writeOutput(dst, out string) (err error) {
	f, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close output")
		}

		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.WriteString(f, out); err != nil {
		return errors.Wrap(err, "write output")
	}

	return nil
}
