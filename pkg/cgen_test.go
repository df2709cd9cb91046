package zminus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateC(t *testing.T, src string) string {
	t.Helper()

	prog, err := Parse("t.zmm", src)
	require.NoError(t, err)

	out, err := GenerateC(prog, nil)
	require.NoError(t, err)

	return out
}

func TestGenerateCGolden(t *testing.T) {
	sources, err := filepath.Glob(filepath.Join("testdata", "*.zmm"))
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	for _, src := range sources {
		name := strings.TrimSuffix(filepath.Base(src), ".zmm")

		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(src)
			require.NoError(t, err)

			expect, err := os.ReadFile(strings.TrimSuffix(src, ".zmm") + ".c")
			require.NoError(t, err)

			assert.Equal(t, string(expect), generateC(t, string(data)))
		})
	}
}

func TestGenerateC(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		expect string
	}{
		{
			"empty program",
			"",
			`#include <stdio.h>
#include <stdbool.h>

int main(void) {
    return 0;
}
`,
		},
		{
			"function without parameters",
			"fun hello() { print \"hi\" }\nhello()",
			`#include <stdio.h>
#include <stdbool.h>

// Function definitions
double hello(void) {
    printf("hi\n");
    return 0;
}
int main(void) {
    hello();
    return 0;
}
`,
		},
		{
			"locals, bare return and nested block",
			"fun f(a) {\nlet t\nif a > 0 { return }\n{ u = a }\nreturn u\n}\nprint f(1)",
			`#include <stdio.h>
#include <stdbool.h>

// Function definitions
double f(double a) {
    double t = 0;
    double u = 0;
    t = 0;
    if ((a > 0)) {
        return 0;
    }
    {
        u = a;
    }
    return u;
}
int main(void) {
    printf("%.2f\n", f(1));
    return 0;
}
`,
		},
		{
			"conditionally bound local starts at zero",
			"fun f(n) {\nif n > 0 { r = 1 }\nreturn r\n}\nprint f(0)",
			`#include <stdio.h>
#include <stdbool.h>

// Function definitions
double f(double n) {
    double r = 0;
    if ((n > 0)) {
        r = 1;
    }
    return r;
}
int main(void) {
    printf("%.2f\n", f(0));
    return 0;
}
`,
		},
		{
			"integer operands are promoted",
			"print 7 / 2\nprint 5\nprint 7 % 4\nprint 1 < 2\nlet x = 2 * 3 + 0.5",
			`#include <stdio.h>
#include <stdbool.h>

// Global variable declarations
double x;

int main(void) {
    printf("%.2f\n", ((double)7 / 2));
    printf("%.2f\n", (double)5);
    printf("%.2f\n", (double)((int)7 % (int)4));
    printf("%.2f\n", (double)(1 < 2));
    x = (((double)2 * 3) + 0.5);
    return 0;
}
`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expect, generateC(t, c.src))
		})
	}
}

func TestGenerateCDeterministic(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "prime.zmm"))
	require.NoError(t, err)

	first := generateC(t, string(data))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, generateC(t, string(data)))
	}
}

func TestGenerateCResolveError(t *testing.T) {
	prog, err := Parse("t.zmm", "print nope")
	require.NoError(t, err)

	_, err = GenerateC(prog, nil)
	assert.IsType(t, &UndeclaredIdentifier{}, err)
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		lit    *NumberLit
		expect string
	}{
		{&NumberLit{Value: 48}, "48"},
		{&NumberLit{Value: 0}, "0"},
		{&NumberLit{Value: 0.5}, "0.5"},
		{&NumberLit{Value: 3.14}, "3.14"},
		{&NumberLit{Value: 1e20}, "100000000000000000000.0"},
		{&NumberLit{Value: 1, IsBool: true}, "1.0"},
		{&NumberLit{Value: 0, IsBool: true}, "0.0"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, formatNumber(c.lit))
	}
}

func TestTruncatingOp(t *testing.T) {
	assert.Equal(t, "((int)a % (int)b)", truncatingOp(BinaryModulo, "a", "b"))
	assert.Equal(t, "((int)a / (int)(b + 1))", truncatingOp(BinaryTruncDivision, "a", "(b + 1)"))
	assert.Panics(t, func() { truncatingOp(BinaryAddition, "a", "b") })
}

func TestEscapeCString(t *testing.T) {
	assert.Equal(t, `50%% \"off\" C:\\dir`, escapeCString(`50% "off" C:\dir`))
}
