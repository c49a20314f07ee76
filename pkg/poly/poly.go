// Package poly implements real polynomials in the Laplace variable s and
// the rational functions built from them.
package poly

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Cancellation threshold: a sum whose magnitude falls below this fraction
// of its operands is taken as exactly zero.
const cancelTol = 1e-10

var ErrDivideByZero = errors.New("division by zero polynomial")

// Poly holds coefficients in ascending powers: p[i] multiplies s^i.
type Poly []float64

func Const(c float64) Poly {
	if c == 0 {
		return Poly{}
	}
	return Poly{c}
}

// Monomial returns c·s^deg.
func Monomial(c float64, deg int) Poly {
	if c == 0 {
		return Poly{}
	}
	p := make(Poly, deg+1)
	p[deg] = c
	return p
}

// Trim drops trailing zero coefficients.
func (p Poly) Trim() Poly {
	n := len(p)
	for n > 0 && p[n-1] == 0 {
		n--
	}
	return p[:n]
}

// Degree returns -1 for the zero polynomial.
func (p Poly) Degree() int {
	return len(p.Trim()) - 1
}

func (p Poly) IsZero() bool {
	return p.Degree() < 0
}

// Lead returns the highest-order non-zero coefficient.
func (p Poly) Lead() float64 {
	t := p.Trim()
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// Low returns the order and value of the lowest non-zero coefficient.
func (p Poly) Low() (int, float64) {
	for i, c := range p {
		if c != 0 {
			return i, c
		}
	}
	return -1, 0
}

func (p Poly) Clone() Poly {
	return slices.Clone(p)
}

func sum(a, b float64) float64 {
	v := a + b
	if math.Abs(v) <= cancelTol*(math.Abs(a)+math.Abs(b)) {
		return 0
	}
	return v
}

func (p Poly) Add(q Poly) Poly {
	n := max(len(p), len(q))
	out := make(Poly, n)
	for i := range n {
		var a, b float64
		if i < len(p) {
			a = p[i]
		}
		if i < len(q) {
			b = q[i]
		}
		out[i] = sum(a, b)
	}
	return out.Trim()
}

func (p Poly) Sub(q Poly) Poly {
	return p.Add(q.Neg())
}

func (p Poly) Neg() Poly {
	return p.Scale(-1)
}

func (p Poly) Scale(c float64) Poly {
	out := make(Poly, len(p))
	for i, v := range p {
		out[i] = v * c
	}
	return out.Trim()
}

func (p Poly) Mul(q Poly) Poly {
	p, q = p.Trim(), q.Trim()
	if len(p) == 0 || len(q) == 0 {
		return Poly{}
	}
	out := make(Poly, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			out[i+j] = sum(out[i+j], a*b)
		}
	}
	return out.Trim()
}

// Div returns quotient and remainder of p / q.
func (p Poly) Div(q Poly) (quo, rem Poly, err error) {
	q = q.Trim()
	if len(q) == 0 {
		return nil, nil, ErrDivideByZero
	}
	rem = p.Trim().Clone()
	if len(rem) < len(q) {
		return Poly{}, rem, nil
	}

	dq := len(q) - 1
	lead := q[dq]
	quo = make(Poly, len(rem)-dq)
	for i := len(rem) - 1; i >= dq; i-- {
		c := rem[i] / lead
		quo[i-dq] = c
		if c == 0 {
			continue
		}
		for j := 0; j < dq; j++ {
			rem[i-dq+j] = sum(rem[i-dq+j], -c*q[j])
		}
		rem[i] = 0
	}
	return quo.Trim(), rem.Trim(), nil
}

// Eval evaluates p at a complex point using Horner's rule.
func (p Poly) Eval(s complex128) complex128 {
	var acc complex128
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*s + complex(p[i], 0)
	}
	return acc
}

// FromRoots expands gain·Π(s - r). Complex roots are expected in
// conjugate pairs; imaginary residue is discarded.
func FromRoots(roots []complex128, gain float64) Poly {
	acc := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(acc)+1)
		for i, c := range acc {
			next[i+1] += c
			next[i] -= c * r
		}
		acc = next
	}

	out := make(Poly, len(acc))
	for i, c := range acc {
		out[i] = real(c) * gain
	}
	return out.Trim()
}

// String renders p in ascending order, e.g. "1 + 0.001*s".
func (p Poly) String() string {
	t := p.Trim()
	if len(t) == 0 {
		return "0"
	}

	var b strings.Builder
	first := true
	for i, c := range t {
		if c == 0 {
			continue
		}
		switch {
		case first && c < 0:
			b.WriteString("-")
		case !first && c < 0:
			b.WriteString(" - ")
		case !first:
			b.WriteString(" + ")
		}
		first = false

		mag := math.Abs(c)
		switch {
		case i == 0:
			fmt.Fprintf(&b, "%g", mag)
		case mag == 1:
			b.WriteString(term(i))
		default:
			fmt.Fprintf(&b, "%g*%s", mag, term(i))
		}
	}
	return b.String()
}

func term(deg int) string {
	if deg == 1 {
		return "s"
	}
	return fmt.Sprintf("s^%d", deg)
}
