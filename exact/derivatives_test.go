package exact

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

var samplePoints = [][2]float64{
	{0.15, 0.35}, {0.5, 0.5}, {0.8, 0.2}, {0.95, 0.65}, {0.3, 0.9},
}

func TestDeriveCompleteness(t *testing.T) {
	sol, err := Derive("sin(pi*x)*sin(pi*y)", "sin(pi*x)*sin(pi*y)")
	require.NoError(t, err)
	m := sol.Map()
	assert.Len(t, m, 14)
	for _, k := range Keys {
		v, ok := m[k]
		assert.True(t, ok, k)
		assert.NotEmpty(t, v, k)
	}
}

func TestDeriveDeterminism(t *testing.T) {
	a, err := Derive("sin(pi*y)*cos(pi*x)", "2*sin(pi*x)*cos(pi*y)")
	require.NoError(t, err)
	b, err := Derive("sin(pi*y)*cos(pi*x)", "2*sin(pi*x)*cos(pi*y)")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestForcingTerm(t *testing.T) {
	// For u1 = u2 = sin(pi*x)*sin(pi*y), the Laplacian eigenfunction
	// identity gives f = 2*pi^2*sin(pi*x)*sin(pi*y). Checked at sampled
	// points rather than by string comparison.
	sol, err := Derive("sin(pi*x)*sin(pi*y)", "sin(pi*x)*sin(pi*y)")
	require.NoError(t, err)
	for _, p := range samplePoints {
		x, y := p[0], p[1]
		want := 2 * math.Pi * math.Pi * math.Sin(math.Pi*x) * math.Sin(math.Pi*y)
		f1, err := EvalAt(sol.F1, x, y)
		require.NoError(t, err)
		f2, err := EvalAt(sol.F2, x, y)
		require.NoError(t, err)
		assert.True(t, scalar.EqualWithinAbs(f1, want, 1e-10), "f1 at (%g,%g): %g != %g", x, y, f1, want)
		assert.True(t, scalar.EqualWithinAbs(f2, want, 1e-10), "f2 at (%g,%g)", x, y)
	}
}

func TestRotationAntisymmetry(t *testing.T) {
	// With u1 ≡ u2, rot(u) = ∂u/∂x - ∂u/∂y, so swapping x and y flips the
	// sign of the rotation.
	sol, err := Derive("sin(pi*x)*sin(pi*y)", "sin(pi*x)*sin(pi*y)")
	require.NoError(t, err)
	for _, p := range samplePoints {
		x, y := p[0], p[1]
		a, err := EvalAt(sol.RotU, x, y)
		require.NoError(t, err)
		b, err := EvalAt(sol.RotU, y, x)
		require.NoError(t, err)
		assert.True(t, scalar.EqualWithinAbs(a, -b, 1e-10), "rot at (%g,%g)", x, y)
	}
}

func TestDivergenceAndGradients(t *testing.T) {
	// Electric-case Trigonometric field; every derived quantity matches a
	// hand-computed value at sampled points.
	sol, err := Derive("sin(pi*y)*cos(pi*x)", "2*sin(pi*x)*cos(pi*y)")
	require.NoError(t, err)
	for _, p := range samplePoints {
		x, y := p[0], p[1]
		sx, cx := math.Sin(math.Pi*x), math.Cos(math.Pi*x)
		sy, cy := math.Sin(math.Pi*y), math.Cos(math.Pi*y)
		pi := math.Pi

		checks := map[string][2]float64{
			"u1x":   {mustEval(t, sol.U1x, x, y), -pi * sx * sy},
			"u1y":   {mustEval(t, sol.U1y, x, y), pi * cx * cy},
			"u2x":   {mustEval(t, sol.U2x, x, y), 2 * pi * cx * cy},
			"u2y":   {mustEval(t, sol.U2y, x, y), -2 * pi * sx * sy},
			"divu":  {mustEval(t, sol.DivU, x, y), -3 * pi * sx * sy},
			"rotu":  {mustEval(t, sol.RotU, x, y), pi * cx * cy},
			"divux": {mustEval(t, sol.DivUx, x, y), -3 * pi * pi * cx * sy},
			"divuy": {mustEval(t, sol.DivUy, x, y), -3 * pi * pi * sx * cy},
			"rotux": {mustEval(t, sol.RotUx, x, y), -pi * pi * sx * cy},
			"rotuy": {mustEval(t, sol.RotUy, x, y), -pi * pi * cx * sy},
			"f1":    {mustEval(t, sol.F1, x, y), 2 * pi * pi * sy * cx},
			"f2":    {mustEval(t, sol.F2, x, y), 4 * pi * pi * sx * cy},
		}
		for name, pair := range checks {
			assert.True(t, scalar.EqualWithinAbs(pair[0], pair[1], 1e-10),
				"%s at (%g,%g): got %g want %g", name, x, y, pair[0], pair[1])
		}
	}
}

func TestDeriveParseFailure(t *testing.T) {
	_, err := Derive("sin(pi*x", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u1")

	_, err = Derive("x", "foo(y)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u2")
}

func mustEval(t *testing.T, expr string, x, y float64) float64 {
	t.Helper()
	v, err := EvalAt(expr, x, y)
	require.NoError(t, err)
	return v
}
