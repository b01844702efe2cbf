package symbolic

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrParse wraps every failure to turn expression text into an Expr. The
// parser is the only validation point for user-authored expressions.
var ErrParse = errors.New("expression parse error")

// Parse reads an infix expression in the solver syntax: caret for
// exponentiation, the variables x and y, the constant pi, and the functions
// sin, cos, tan, exp, log, sqrt. The result is simplified.
func Parse(text string) (Expr, error) {
	p := &parser{input: text}
	p.next()
	e, err := p.parseSum()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrParse, text, err)
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: %q: unexpected %q at offset %d",
			ErrParse, text, p.tok.text, p.tok.pos)
	}
	return e.Simplify(), nil
}

// MustParse is for fixed expressions in tests and catalog validation.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIllegal
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input string
	pos   int
	tok   token
}

func (p *parser) next() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}
	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.input[start:p.pos], pos: start}
	case isAlpha(c):
		for p.pos < len(p.input) && isAlpha(p.input[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos], pos: start}
	default:
		p.pos++
		kind, ok := map[byte]tokenKind{
			'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash,
			'^': tokCaret, '(': tokLParen, ')': tokRParen,
		}[c]
		if !ok {
			p.tok = token{kind: tokIllegal, text: string(c), pos: start}
			return
		}
		p.tok = token{kind: kind, text: string(c), pos: start}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		neg := p.tok.kind == tokMinus
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if neg {
			right = Product(Integer(-1), right)
		}
		left = Sum(left, right)
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		div := p.tok.kind == tokSlash
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if div {
			right = Power(right, Integer(-1))
		}
		left = Product(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	neg := false
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		if p.tok.kind == tokMinus {
			neg = !neg
		}
		p.next()
	}
	e, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	if neg {
		e = Product(Integer(-1), e)
	}
	return e, nil
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokCaret {
		return base, nil
	}
	p.next()
	// Right associative; the exponent may carry its own sign.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Power(base, exp), nil
}

func (p *parser) parseAtom() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(p.tok.text)
		if !ok {
			return nil, fmt.Errorf("bad number %q at offset %d", p.tok.text, p.tok.pos)
		}
		p.next()
		return ratNum(r), nil
	case tokLParen:
		p.next()
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at offset %d", p.tok.pos)
		}
		p.next()
		return e, nil
	case tokIdent:
		name := p.tok.text
		p.next()
		if p.tok.kind == tokLParen {
			p.next()
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if p.tok.kind != tokRParen {
				return nil, fmt.Errorf("missing closing parenthesis after %s(", name)
			}
			p.next()
			switch name {
			case "sin":
				return Sin(arg), nil
			case "cos":
				return Cos(arg), nil
			case "tan":
				return Tan(arg), nil
			case "exp":
				return Exp(arg), nil
			case "log":
				return Log(arg), nil
			case "sqrt":
				return Sqrt(arg), nil
			}
			return nil, fmt.Errorf("unknown function %q", name)
		}
		switch name {
		case "x", "y":
			return Variable(name), nil
		case "pi":
			return Pi, nil
		}
		return nil, fmt.Errorf("unknown symbol %q", name)
	case tokIllegal:
		return nil, fmt.Errorf("illegal character %q at offset %d", p.tok.text, p.tok.pos)
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", p.tok.text, p.tok.pos)
	}
}
