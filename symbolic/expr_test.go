package symbolic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	// Round trips through parse + canonical render
	{
		cases := map[string]string{
			"x":                     "x",
			"x + y":                 "x + y",
			"y + x":                 "x + y",
			"2*x":                   "2*x",
			"x*2":                   "2*x",
			"x - x":                 "0",
			"x*x":                   "x^2",
			"x^2*x":                 "x^3",
			"x/2":                   "x/2",
			"-x":                    "-x",
			"sin(pi*x)":             "sin(pi*x)",
			"sin(pi*x)*sin(pi*y)":   "sin(pi*x)*sin(pi*y)",
			"sqrt(x)":               "sqrt(x)",
			"sqrt(x)*sqrt(x)":      "x",
			"x^2 + x^2":             "2*x^2",
			"(x+y)^2":               "(x + y)^2",
			"1/x":                   "1/x",
			"x^-2":                  "1/x^2",
			"2^3":                   "8",
			"0*sin(x)":              "0",
			"cos(0)":                "1",
			"log(exp(x))":           "x",
			"y*(x^2+y^2-1)":         "y*(x^2 + y^2 - 1)",
		}
		for in, want := range cases {
			e, err := Parse(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, e.String(), in)
		}
	}
	// Malformed input fails with ErrParse
	{
		bad := []string{
			"", "x +", "sin(x", "foo(x)", "z", "1..2", "x & y", "(x",
		}
		for _, in := range bad {
			_, err := Parse(in)
			require.Error(t, err, in)
			assert.ErrorIs(t, err, ErrParse, in)
		}
	}
	// Caret is right associative and binds above unary minus
	{
		e, err := Parse("-x^2")
		require.NoError(t, err)
		assert.Equal(t, "-x^2", e.String())
		v, err := e.Eval(map[string]float64{"x": 3, "y": 0})
		require.NoError(t, err)
		assert.InDelta(t, -9.0, v, 1e-12)
	}
}

func TestDiff(t *testing.T) {
	// Basic rules
	{
		cases := []struct{ in, v, want string }{
			{"x", "x", "1"},
			{"x", "y", "0"},
			{"pi", "x", "0"},
			{"x^3", "x", "3*x^2"},
			{"sin(x)", "x", "cos(x)"},
			{"cos(x)", "x", "-sin(x)"},
			{"exp(2*x)", "x", "2*exp(2*x)"},
			{"log(x)", "x", "1/x"},
			{"sin(pi*x)", "x", "pi*cos(pi*x)"},
			{"x*y", "x", "y"},
			{"sin(pi*x)*sin(pi*y)", "x", "pi*cos(pi*x)*sin(pi*y)"},
		}
		for _, c := range cases {
			e := MustParse(c.in)
			assert.Equal(t, c.want, Diff(e, c.v).String(), "d(%s)/d%s", c.in, c.v)
		}
	}
	// Chain rule sanity, checked numerically
	{
		e := MustParse("sqrt(x^2 + y^2)")
		d := Diff(e, "x")
		at := map[string]float64{"x": 0.6, "y": 0.8}
		v, err := d.Eval(at)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, v, 1e-12) // d/dx sqrt(x²+y²) = x/r, r=1
	}
}

func TestDeterminism(t *testing.T) {
	// The same text always renders byte-identically, and algebraically
	// equal inputs written differently converge to one canonical form.
	inputs := []string{
		"sin(pi*x)*sin(pi*y) + sin(pi*y)*sin(pi*x)",
		"-256*y*(y-1)*(2*y-1)*x^2*(x-1)^2",
		"y*(x^2+y^2-1)",
	}
	for _, in := range inputs {
		a := MustParse(in)
		b := MustParse(in)
		assert.Equal(t, a.String(), b.String(), in)
		dA := Diff(Diff(a, "x"), "y")
		dB := Diff(Diff(b, "x"), "y")
		assert.Equal(t, dA.String(), dB.String(), in)
	}
	{
		a := MustParse("x*sin(pi*y) + y")
		b := MustParse("y + sin(pi*y)*x")
		assert.Equal(t, a.String(), b.String())
	}
}

func TestEval(t *testing.T) {
	{
		e := MustParse("sin(pi*x)*cos(pi*y) + x^2/4")
		v, err := e.Eval(map[string]float64{"x": 0.5, "y": 0})
		require.NoError(t, err)
		assert.InDelta(t, 1.0+0.0625, v, 1e-12)
	}
	// pi is always bound
	{
		e := MustParse("pi^2")
		v, err := e.Eval(nil)
		require.NoError(t, err)
		assert.InDelta(t, math.Pi*math.Pi, v, 1e-12)
	}
	// Unbound variable is an error
	{
		e := MustParse("x + y")
		_, err := e.Eval(map[string]float64{"x": 1})
		assert.Error(t, err)
	}
}
