package poly

import (
	"cmp"
	"errors"
	"math"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/mat"
)

var ErrNoConvergence = errors.New("eigenvalue decomposition did not converge")

// Roots returns the roots of p, computed as the eigenvalues of its
// companion matrix. Roots at the origin are split off exactly first.
func (p Poly) Roots() ([]complex128, error) {
	t := p.Trim()
	if len(t) <= 1 {
		return nil, nil
	}

	low, _ := t.Low()
	roots := make([]complex128, low, len(t)-1)
	t = t[low:]

	n := len(t) - 1
	if n > 0 {
		lead := t[n]
		data := make([]float64, n*n)
		for i := 0; i < n; i++ {
			if i > 0 {
				data[i*n+i-1] = 1
			}
			data[i*n+n-1] = -t[i] / lead
		}

		var eig mat.Eigen
		if ok := eig.Factorize(mat.NewDense(n, n, data), mat.EigenNone); !ok {
			return nil, ErrNoConvergence
		}
		roots = append(roots, eig.Values(nil)...)
	}

	for i, r := range roots {
		roots[i] = clean(r)
	}
	SortRoots(roots)
	return roots, nil
}

// clean snaps numerically negligible real or imaginary parts to zero.
func clean(r complex128) complex128 {
	mag := cmplx.Abs(r)
	re, im := real(r), imag(r)
	if math.Abs(im) <= 1e-9*mag {
		im = 0
	}
	if math.Abs(re) <= 1e-12*mag {
		re = 0
	}
	return complex(re, im)
}

// SortRoots orders roots by real part, then imaginary part.
func SortRoots(roots []complex128) {
	slices.SortFunc(roots, func(a, b complex128) int {
		if c := cmp.Compare(real(a), real(b)); c != 0 {
			return c
		}
		return cmp.Compare(imag(a), imag(b))
	})
}

// SameRoot reports whether two roots agree within a relative tolerance.
func SameRoot(a, b complex128, tol float64) bool {
	scale := math.Max(cmplx.Abs(a), cmplx.Abs(b))
	return cmplx.Abs(a-b) <= tol*scale
}
