package poly

import (
	"fmt"
	"math"
)

// Rational is Num(s)/Den(s).
type Rational struct {
	Num Poly `json:"num"`
	Den Poly `json:"den"`
}

func (r Rational) Eval(s complex128) complex128 {
	return r.Num.Eval(s) / r.Den.Eval(s)
}

// AtFrequency evaluates at s = j2πf.
func (r Rational) AtFrequency(hz float64) complex128 {
	return r.Eval(complex(0, 2*math.Pi*hz))
}

// Normalize scales numerator and denominator so that the lowest-order
// non-zero denominator coefficient is 1.
func (r Rational) Normalize() Rational {
	i, c := r.Den.Low()
	if c == 0 {
		return r
	}
	den := r.Den.Scale(1 / c)
	den[i] = 1 // c·(1/c) may round to 0.9999999999999999
	return Rational{Num: r.Num.Scale(1 / c), Den: den}
}

// Reduce cancels pole/zero pairs closer than tol (relative) and normalizes.
func (r Rational) Reduce(tol float64) (Rational, error) {
	num, den := r.Num.Trim(), r.Den.Trim()
	if len(den) == 0 {
		return r, ErrDivideByZero
	}
	if len(num) == 0 {
		return Rational{Num: Poly{}, Den: Poly{1}}, nil
	}

	zeros, err := num.Roots()
	if err != nil {
		return r, fmt.Errorf("numerator roots: %w", err)
	}
	poles, err := den.Roots()
	if err != nil {
		return r, fmt.Errorf("denominator roots: %w", err)
	}

	used := make([]bool, len(poles))
	keptZeros := make([]complex128, 0, len(zeros))
	cancelled := 0
	for _, z := range zeros {
		match := -1
		for j, p := range poles {
			if !used[j] && SameRoot(z, p, tol) {
				match = j
				break
			}
		}
		if match < 0 {
			keptZeros = append(keptZeros, z)
			continue
		}
		used[match] = true
		cancelled++
	}

	if cancelled == 0 {
		return Rational{Num: num, Den: den}.Normalize(), nil
	}

	keptPoles := make([]complex128, 0, len(poles)-cancelled)
	for j, p := range poles {
		if !used[j] {
			keptPoles = append(keptPoles, p)
		}
	}

	out := Rational{
		Num: FromRoots(keptZeros, num.Lead()/den.Lead()),
		Den: FromRoots(keptPoles, 1),
	}
	return out.Normalize(), nil
}

func (r Rational) Zeros() ([]complex128, error) {
	return r.Num.Roots()
}

func (r Rational) Poles() ([]complex128, error) {
	return r.Den.Roots()
}

// DCGain returns H(0); a pole at the origin gives ±Inf.
func (r Rational) DCGain() float64 {
	n0, d0 := coef(r.Num, 0), coef(r.Den, 0)
	if d0 == 0 {
		if n0 == 0 {
			return math.NaN()
		}
		_, dl := r.Den.Low()
		return math.Inf(int(math.Copysign(1, n0*dl)))
	}
	if n0 == 0 {
		return 0
	}
	return n0 / d0
}

func coef(p Poly, i int) float64 {
	if i < len(p) {
		return p[i]
	}
	return 0
}

func (r Rational) String() string {
	return fmt.Sprintf("(%s) / (%s)", r.Num, r.Den)
}
