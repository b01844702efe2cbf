// Package exact computes the derived quantities a FreeFEM error-analysis
// script needs from the closed-form exact solution of a benchmark problem.
//
// For the vector field u = (u1, u2) over (x, y):
//
//	div(u) = ∂u1/∂x + ∂u2/∂y
//	rot(u) = ∂u2/∂x - ∂u1/∂y
//	f      = -Δu  (forcing term per component)
//
// plus the gradients of div(u) and rot(u) for the flux and vorticity error
// norms. All results are rendered in FreeFEM expression syntax.
package exact

import (
	"fmt"

	"femgen/symbolic"
)

// Solution holds the 14 derived quantities for one exact solution, each
// rendered as FreeFEM expression text. Every field is always non-empty for a
// successfully derived solution.
type Solution struct {
	U1Exact string
	U2Exact string
	U1x     string
	U1y     string
	U2x     string
	U2y     string
	DivU    string
	RotU    string
	DivUx   string
	DivUy   string
	RotUx   string
	RotUy   string
	F1      string
	F2      string
}

// Keys lists the canonical quantity names in their fixed order.
var Keys = []string{
	"u1exact", "u2exact",
	"u1x", "u1y", "u2x", "u2y",
	"divu", "rotu",
	"divux", "divuy", "rotux", "rotuy",
	"f1", "f2",
}

// Map returns the quantities keyed by canonical name.
func (s Solution) Map() map[string]string {
	return map[string]string{
		"u1exact": s.U1Exact,
		"u2exact": s.U2Exact,
		"u1x":     s.U1x,
		"u1y":     s.U1y,
		"u2x":     s.U2x,
		"u2y":     s.U2y,
		"divu":    s.DivU,
		"rotu":    s.RotU,
		"divux":   s.DivUx,
		"divuy":   s.DivUy,
		"rotux":   s.RotUx,
		"rotuy":   s.RotUy,
		"f1":      s.F1,
		"f2":      s.F2,
	}
}

// Derive parses the two component expressions and computes every derived
// quantity. The operation is pure: identical input text always yields
// byte-identical output. A parse failure aborts the whole derivation; there
// is no partial result.
func Derive(u1Text, u2Text string) (Solution, error) {
	u1, err := symbolic.Parse(u1Text)
	if err != nil {
		return Solution{}, fmt.Errorf("u1: %w", err)
	}
	u2, err := symbolic.Parse(u2Text)
	if err != nil {
		return Solution{}, fmt.Errorf("u2: %w", err)
	}

	u1x := symbolic.Diff(u1, "x")
	u1y := symbolic.Diff(u1, "y")
	u2x := symbolic.Diff(u2, "x")
	u2y := symbolic.Diff(u2, "y")

	divu := symbolic.Sum(u1x, u2y)
	rotu := symbolic.Sum(u2x, symbolic.Product(symbolic.Integer(-1), u1y))

	// f = -Δu componentwise
	f1 := symbolic.Product(symbolic.Integer(-1),
		symbolic.Sum(symbolic.Diff(u1x, "x"), symbolic.Diff(u1y, "y")))
	f2 := symbolic.Product(symbolic.Integer(-1),
		symbolic.Sum(symbolic.Diff(u2x, "x"), symbolic.Diff(u2y, "y")))

	return Solution{
		U1Exact: u1.String(),
		U2Exact: u2.String(),
		U1x:     u1x.String(),
		U1y:     u1y.String(),
		U2x:     u2x.String(),
		U2y:     u2y.String(),
		DivU:    divu.String(),
		RotU:    rotu.String(),
		DivUx:   symbolic.Diff(divu, "x").String(),
		DivUy:   symbolic.Diff(divu, "y").String(),
		RotUx:   symbolic.Diff(rotu, "x").String(),
		RotUy:   symbolic.Diff(rotu, "y").String(),
		F1:      f1.String(),
		F2:      f2.String(),
	}, nil
}

// EvalAt parses one rendered quantity and evaluates it at (x, y). Intended
// for verification; the generated scripts evaluate these expressions
// themselves.
func EvalAt(expr string, x, y float64) (float64, error) {
	e, err := symbolic.Parse(expr)
	if err != nil {
		return 0, err
	}
	return e.Eval(map[string]float64{"x": x, "y": y})
}
