package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is an immutable expression tree over the variables x and y, the
// constant pi, and the solver's function vocabulary. Constructors return
// simplified nodes, so any Expr obtained through this package is already in
// canonical form and renders deterministically.
type Expr interface {
	// Simplify returns the canonical form of the expression. Calling it on
	// an already-canonical expression is a no-op.
	Simplify() Expr
	// Diff returns the partial derivative with respect to v, simplified.
	Diff(v string) Expr
	// Eval substitutes the bindings and computes a float64 value. pi is
	// always bound. An unbound variable is an error.
	Eval(vars map[string]float64) (float64, error)
	// String renders the expression in FreeFEM syntax: caret exponentiation,
	// the literal token pi, and sqrt for half-integer powers.
	String() string
}

// Num is an exact rational constant.
type Num struct{ val *big.Rat }

func Integer(n int64) Num { return Num{val: new(big.Rat).SetInt64(n)} }

func Rational(p, q int64) Num {
	if q == 0 {
		panic("symbolic: zero denominator")
	}
	return Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func ratNum(r *big.Rat) Num { return Num{val: new(big.Rat).Set(r)} }

func (n Num) Simplify() Expr  { return n }
func (n Num) Diff(string) Expr { return Integer(0) }
func (n Num) Eval(map[string]float64) (float64, error) {
	f, _ := n.val.Float64()
	return f, nil
}
func (n Num) IsZero() bool   { return n.val.Sign() == 0 }
func (n Num) IsOne() bool    { return n.val.Cmp(ratOne) == 0 }
func (n Num) IsNegOne() bool { return n.val.Cmp(ratNegOne) == 0 }
func (n Num) Rat() *big.Rat  { return new(big.Rat).Set(n.val) }

func (n Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
	ratHalf   = big.NewRat(1, 2)
)

// Sym is a free variable or the symbolic constant pi.
type Sym struct{ name string }

func Variable(name string) Sym { return Sym{name: name} }

// Pi is rendered as the literal token pi and evaluates to math.Pi.
var Pi = Sym{name: "pi"}

func (s Sym) Simplify() Expr { return s }
func (s Sym) String() string { return s.name }
func (s Sym) Name() string   { return s.name }

func (s Sym) Diff(v string) Expr {
	if s.name == v {
		return Integer(1)
	}
	return Integer(0)
}

func (s Sym) Eval(vars map[string]float64) (float64, error) {
	if s.name == "pi" {
		return math.Pi, nil
	}
	v, ok := vars[s.name]
	if !ok {
		return 0, fmt.Errorf("symbolic: unbound variable %q", s.name)
	}
	return v, nil
}

// Add is a canonical sum: like terms collected, terms ordered by rendered
// key, numeric accumulator last. Never fewer than two terms.
type Add struct{ terms []Expr }

// Sum builds the simplified sum of the operands.
func Sum(terms ...Expr) Expr { return simplifySum(terms) }

func (a Add) Simplify() Expr { return simplifySum(a.terms) }
func (a Add) Terms() []Expr  { return a.terms }

func simplifySum(terms []Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		s := t.Simplify()
		if inner, ok := s.(Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	// Collect like terms by the rendered key of their non-numeric part.
	accum := new(big.Rat)
	coeffs := map[string]*big.Rat{}
	parts := map[string]Expr{}
	for _, t := range flat {
		c, rest := splitCoefficient(t)
		if rest == nil {
			accum.Add(accum, c)
			continue
		}
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			coeffs[key] = new(big.Rat)
			parts[key] = rest
		}
		coeffs[key].Add(coeffs[key], c)
	}
	keys := make([]string, 0, len(coeffs))
	for k := range coeffs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		c := coeffs[k]
		switch {
		case c.Sign() == 0:
		case c.Cmp(ratOne) == 0:
			out = append(out, parts[k])
		default:
			out = append(out, scaleExpr(ratNum(c), parts[k]))
		}
	}
	if accum.Sign() != 0 {
		out = append(out, ratNum(accum))
	}
	switch len(out) {
	case 0:
		return Integer(0)
	case 1:
		return out[0]
	}
	return Add{terms: out}
}

// splitCoefficient separates a canonical term into its rational coefficient
// and the remaining expression. A pure Num yields a nil remainder.
func splitCoefficient(t Expr) (*big.Rat, Expr) {
	switch v := t.(type) {
	case Num:
		return v.Rat(), nil
	case Mul:
		if c, ok := v.factors[0].(Num); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return c.Rat(), rest[0]
			}
			return c.Rat(), Mul{factors: rest}
		}
	}
	return new(big.Rat).SetInt64(1), t
}

// scaleExpr multiplies a canonical non-numeric part by a coefficient without
// re-running full product simplification.
func scaleExpr(c Num, part Expr) Expr {
	if m, ok := part.(Mul); ok {
		fs := make([]Expr, 0, len(m.factors)+1)
		fs = append(fs, c)
		fs = append(fs, m.factors...)
		return Mul{factors: fs}
	}
	return Mul{factors: []Expr{c, part}}
}

func (a Add) Diff(v string) Expr {
	ds := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		ds[i] = t.Diff(v)
	}
	return Sum(ds...)
}

func (a Add) Eval(vars map[string]float64) (float64, error) {
	total := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(vars)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

func (a Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.String()
		if i == 0 {
			sb.WriteString(s)
			continue
		}
		if rest, neg := strings.CutPrefix(s, "-"); neg {
			sb.WriteString(" - ")
			sb.WriteString(rest)
		} else {
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

// Mul is a canonical product: numeric coefficient folded into a single
// leading Num, identical bases merged into powers, factors ordered by
// rendered key.
type Mul struct{ factors []Expr }

// Product builds the simplified product of the operands.
func Product(factors ...Expr) Expr { return simplifyProduct(factors) }

func (m Mul) Simplify() Expr  { return simplifyProduct(m.factors) }
func (m Mul) Factors() []Expr { return m.factors }

func simplifyProduct(factors []Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		s := f.Simplify()
		if inner, ok := s.(Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := new(big.Rat).SetInt64(1)
	exps := map[string]*big.Rat{}
	bases := map[string]Expr{}
	for _, f := range flat {
		if n, ok := f.(Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		base, exp := splitPower(f)
		key := base.String()
		if _, seen := exps[key]; !seen {
			exps[key] = new(big.Rat)
			bases[key] = base
		}
		exps[key].Add(exps[key], exp)
	}
	if coeff.Sign() == 0 {
		return Integer(0)
	}
	keys := make([]string, 0, len(exps))
	for k := range exps {
		keys = append(keys, k)
	}
	// Symbols sort before powers, powers before calls, calls before sums;
	// ties broken by rendered text. Keeps pi*cos(pi*x) and y*(x + 1) shaped
	// the way a reader expects while staying fully deterministic.
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := factorRank(bases[keys[i]]), factorRank(bases[keys[j]])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	out := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		e := exps[k]
		switch {
		case e.Sign() == 0:
		case e.Cmp(ratOne) == 0:
			out = append(out, bases[k])
		default:
			out = append(out, Power(bases[k], ratNum(e)))
		}
	}
	if len(out) == 0 {
		return ratNum(coeff)
	}
	if coeff.Cmp(ratOne) != 0 {
		out = append([]Expr{ratNum(coeff)}, out...)
	}
	if len(out) == 1 {
		return out[0]
	}
	return Mul{factors: out}
}

func factorRank(e Expr) int {
	switch e.(type) {
	case Sym:
		return 0
	case Pow:
		return 1
	case Call:
		return 2
	case Add:
		return 3
	}
	return 4
}

// splitPower unwraps a factor into (base, rational exponent). Factors that
// are not powers, and powers with symbolic exponents, keep exponent one.
func splitPower(f Expr) (Expr, *big.Rat) {
	if p, ok := f.(Pow); ok {
		if e, ok := p.exp.(Num); ok {
			return p.base, e.Rat()
		}
	}
	return f, new(big.Rat).SetInt64(1)
}

func (m Mul) Diff(v string) Expr {
	// General product rule: sum over factors of d(f_i) * prod(f_j, j != i).
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		parts := make([]Expr, 0, len(m.factors))
		parts = append(parts, fi.Diff(v))
		for j, fj := range m.factors {
			if j != i {
				parts = append(parts, fj)
			}
		}
		terms[i] = Product(parts...)
	}
	return Sum(terms...)
}

func (m Mul) Eval(vars map[string]float64) (float64, error) {
	total := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(vars)
		if err != nil {
			return 0, err
		}
		total *= v
	}
	return total, nil
}

func (m Mul) String() string {
	sign := ""
	var num, den []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case Num:
			r := v.val
			if r.Sign() < 0 {
				sign = "-"
				r = new(big.Rat).Neg(r)
			}
			if r.Num().Cmp(big.NewInt(1)) != 0 {
				num = append(num, r.Num().String())
			}
			if !r.IsInt() {
				den = append(den, r.Denom().String())
			}
		case Pow:
			if e, ok := v.exp.(Num); ok && e.val.Sign() < 0 {
				den = append(den, renderPow(v.base, ratNum(new(big.Rat).Neg(e.val))))
				continue
			}
			num = append(num, v.String())
		case Add:
			num = append(num, "("+v.String()+")")
		default:
			num = append(num, v.String())
		}
	}
	top := strings.Join(num, "*")
	if top == "" {
		top = "1"
	}
	if len(den) == 0 {
		return sign + top
	}
	bottom := strings.Join(den, "*")
	if len(den) > 1 || strings.Contains(den[0], "*") {
		bottom = "(" + bottom + ")"
	}
	return sign + top + "/" + bottom
}

// Pow is base^exponent. Half-integer exponents render through sqrt, negative
// exponents through division.
type Pow struct{ base, exp Expr }

// Power builds the simplified power.
func Power(base, exp Expr) Expr { return simplifyPower(base, exp) }

func (p Pow) Simplify() Expr { return simplifyPower(p.base, p.exp) }
func (p Pow) Base() Expr     { return p.base }
func (p Pow) Exponent() Expr { return p.exp }

func simplifyPower(base, exp Expr) Expr {
	b := base.Simplify()
	e := exp.Simplify()
	if en, ok := e.(Num); ok {
		if en.IsZero() {
			return Integer(1)
		}
		if en.IsOne() {
			return b
		}
		if bn, ok := b.(Num); ok {
			if bn.IsZero() {
				if en.val.Sign() > 0 {
					return Integer(0)
				}
				return Pow{base: b, exp: e} // 0^0 and 0^negative stay symbolic
			}
			if bn.IsOne() {
				return Integer(1)
			}
			if en.val.IsInt() {
				if k := en.val.Num().Int64(); k >= -16 && k <= 16 {
					return ratNum(ratPowInt(bn.val, k))
				}
			}
		}
		if inner, ok := b.(Pow); ok {
			if ie, ok := inner.exp.(Num); ok {
				merged := new(big.Rat).Mul(ie.val, en.val)
				return Power(inner.base, ratNum(merged))
			}
		}
	}
	return Pow{base: b, exp: e}
}

func ratPowInt(r *big.Rat, k int64) *big.Rat {
	out := new(big.Rat).SetInt64(1)
	neg := k < 0
	if neg {
		k = -k
	}
	for i := int64(0); i < k; i++ {
		out.Mul(out, r)
	}
	if neg {
		out.Inv(out)
	}
	return out
}

func (p Pow) Diff(v string) Expr {
	db := p.base.Diff(v)
	de := p.exp.Diff(v)
	if _, ok := p.exp.(Num); ok {
		// d(b^k) = k * b^(k-1) * db
		return Product(p.exp, Power(p.base, Sum(p.exp, Integer(-1))), db)
	}
	if _, ok := p.base.(Num); ok {
		// d(c^e) = c^e * log(c) * de
		return Product(Pow{base: p.base, exp: p.exp}, Log(p.base), de)
	}
	return Product(Pow{base: p.base, exp: p.exp},
		Sum(Product(de, Log(p.base)), Product(p.exp, db, Power(p.base, Integer(-1)))))
}

func (p Pow) Eval(vars map[string]float64) (float64, error) {
	b, err := p.base.Eval(vars)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(vars)
	if err != nil {
		return 0, err
	}
	return math.Pow(b, e), nil
}

func (p Pow) String() string {
	if e, ok := p.exp.(Num); ok {
		if e.val.Cmp(ratHalf) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
		if e.val.Sign() < 0 {
			return "1/" + renderPow(p.base, ratNum(new(big.Rat).Neg(e.val)))
		}
	}
	return renderPow(p.base, p.exp)
}

func renderPow(base, exp Expr) string {
	if e, ok := exp.(Num); ok && e.val.Cmp(ratHalf) == 0 {
		return "sqrt(" + base.String() + ")"
	}
	if e, ok := exp.(Num); ok && e.IsOne() {
		return base.String()
	}
	bs := base.String()
	switch base.(type) {
	case Add, Mul, Pow:
		bs = "(" + bs + ")"
	case Num:
		if strings.ContainsAny(bs, "-/") {
			bs = "(" + bs + ")"
		}
	}
	es := exp.String()
	if _, simple := exp.(Sym); !simple {
		if n, ok := exp.(Num); !ok || !n.val.IsInt() || n.val.Sign() < 0 {
			es = "(" + es + ")"
		}
	}
	return bs + "^" + es
}

// Call is a named function application from the fixed vocabulary.
type Call struct {
	name string
	arg  Expr
}

func Sin(arg Expr) Expr { return applyFunc("sin", arg) }
func Cos(arg Expr) Expr { return applyFunc("cos", arg) }
func Tan(arg Expr) Expr { return applyFunc("tan", arg) }
func Exp(arg Expr) Expr { return applyFunc("exp", arg) }
func Log(arg Expr) Expr { return applyFunc("log", arg) }

// Sqrt is represented as a half-integer power so products of square roots
// merge during simplification.
func Sqrt(arg Expr) Expr { return Power(arg, Rational(1, 2)) }

func applyFunc(name string, arg Expr) Expr {
	return Call{name: name, arg: arg.Simplify()}.Simplify()
}

func (c Call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(Num); ok && n.IsZero() {
		switch c.name {
		case "sin", "tan":
			return Integer(0)
		case "cos", "exp":
			return Integer(1)
		}
	}
	if n, ok := arg.(Num); ok && n.IsOne() && c.name == "log" {
		return Integer(0)
	}
	if inner, ok := arg.(Call); ok {
		if c.name == "log" && inner.name == "exp" {
			return inner.arg
		}
		if c.name == "exp" && inner.name == "log" {
			return inner.arg
		}
	}
	return Call{name: c.name, arg: arg}
}

func (c Call) Diff(v string) Expr {
	da := c.arg.Diff(v)
	var outer Expr
	switch c.name {
	case "sin":
		outer = Cos(c.arg)
	case "cos":
		outer = Product(Integer(-1), Sin(c.arg))
	case "tan":
		outer = Sum(Integer(1), Power(Tan(c.arg), Integer(2)))
	case "exp":
		outer = Exp(c.arg)
	case "log":
		outer = Power(c.arg, Integer(-1))
	default:
		panic("symbolic: no derivative rule for " + c.name)
	}
	return Product(outer, da)
}

func (c Call) Eval(vars map[string]float64) (float64, error) {
	a, err := c.arg.Eval(vars)
	if err != nil {
		return 0, err
	}
	switch c.name {
	case "sin":
		return math.Sin(a), nil
	case "cos":
		return math.Cos(a), nil
	case "tan":
		return math.Tan(a), nil
	case "exp":
		return math.Exp(a), nil
	case "log":
		return math.Log(a), nil
	}
	return 0, fmt.Errorf("symbolic: cannot evaluate %s", c.name)
}

func (c Call) String() string { return c.name + "(" + c.arg.String() + ")" }

// Diff differentiates and canonicalizes in one step.
func Diff(e Expr, v string) Expr { return e.Diff(v).Simplify() }
