package matrix

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/toy-schematic/pkg/poly"
)

// SymbolicMatrix is a dense MNA system whose entries are polynomials in s.
// Indices are 1-based like CircuitMatrix; row and column 0 (ground) are
// dropped silently.
type SymbolicMatrix struct {
	Size int
	a    [][]poly.Poly
	rhs  []poly.Poly
}

func NewSymbolic(size int) *SymbolicMatrix {
	a := make([][]poly.Poly, size)
	for i := range a {
		a[i] = make([]poly.Poly, size)
	}
	return &SymbolicMatrix{
		Size: size,
		a:    a,
		rhs:  make([]poly.Poly, size),
	}
}

func (m *SymbolicMatrix) AddPoly(i, j int, p poly.Poly) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return
	}
	m.a[i-1][j-1] = m.a[i-1][j-1].Add(p)
}

func (m *SymbolicMatrix) AddRHSPoly(i int, p poly.Poly) {
	if i <= 0 || i > m.Size {
		return
	}
	m.rhs[i-1] = m.rhs[i-1].Add(p)
}

// Det returns det(A).
func (m *SymbolicMatrix) Det() (poly.Poly, error) {
	return bareiss(m.copyWith(-1))
}

// Cramer returns det(A) with column col replaced by the right-hand side,
// the numerator of x[col] by Cramer's rule.
func (m *SymbolicMatrix) Cramer(col int) (poly.Poly, error) {
	if col <= 0 || col > m.Size {
		return nil, fmt.Errorf("column %d out of range 1..%d", col, m.Size)
	}
	return bareiss(m.copyWith(col - 1))
}

func (m *SymbolicMatrix) copyWith(col int) [][]poly.Poly {
	out := make([][]poly.Poly, m.Size)
	for i := range m.a {
		out[i] = make([]poly.Poly, m.Size)
		for j := range m.a[i] {
			if j == col {
				out[i][j] = m.rhs[i].Clone()
			} else {
				out[i][j] = m.a[i][j].Clone()
			}
		}
	}
	return out
}

// bareiss computes the determinant by fraction-free elimination. Each
// division by the previous pivot is exact in exact arithmetic; the float
// remainder is discarded.
func bareiss(a [][]poly.Poly) (poly.Poly, error) {
	n := len(a)
	if n == 0 {
		return poly.Poly{1}, nil
	}

	sign := 1.0
	prev := poly.Poly{1}
	for k := 0; k < n-1; k++ {
		p := pivotRow(a, k)
		if p < 0 {
			return poly.Poly{}, nil
		}
		if p != k {
			a[p], a[k] = a[k], a[p]
			sign = -sign
		}

		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				num := a[i][j].Mul(a[k][k]).Sub(a[i][k].Mul(a[k][j]))
				q, _, err := num.Div(prev)
				if err != nil {
					return nil, fmt.Errorf("elimination step %d: %w", k, err)
				}
				a[i][j] = q
			}
			a[i][k] = nil
		}
		prev = a[k][k]
	}

	return a[n-1][n-1].Scale(sign), nil
}

// pivotRow picks the row at or below k whose column-k entry has the
// largest coefficient.
func pivotRow(a [][]poly.Poly, k int) int {
	best, bestNorm := -1, 0.0
	for r := k; r < len(a); r++ {
		norm := 0.0
		for _, c := range a[r][k] {
			norm = math.Max(norm, math.Abs(c))
		}
		if norm > bestNorm {
			best, bestNorm = r, norm
		}
	}
	return best
}

func (m *SymbolicMatrix) String() string {
	var b strings.Builder
	for i := range m.a {
		for j := range m.a[i] {
			if j > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(m.a[i][j].String())
		}
		fmt.Fprintf(&b, " || %s\n", m.rhs[i].String())
	}
	return b.String()
}
