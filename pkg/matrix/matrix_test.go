package matrix

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-schematic/pkg/poly"
)

// Voltage divider: V1 = 10 V on node 1, 1k from 1 to 2, 1k from 2 to ground.
func stampDivider(m DeviceMatrix) {
	g := 1e-3
	m.AddElement(1, 1, g)
	m.AddElement(1, 2, -g)
	m.AddElement(2, 1, -g)
	m.AddElement(2, 2, 2*g)
	m.AddElement(1, 3, 1)
	m.AddElement(3, 1, 1)
	m.AddRHS(3, 10)
}

func TestCircuitMatrix_RealSolve(t *testing.T) {
	m, err := NewMatrix(3, false)
	require.NoError(t, err)
	defer m.Destroy()

	m.SetupElements()
	stampDivider(m)

	var buf bytes.Buffer
	m.WriteSystem(&buf)
	assert.Contains(t, buf.String(), "Equation 3:  +1*x1 = 10")

	require.NoError(t, m.Solve())

	x := m.Solution()
	assert.InDelta(t, 10.0, x[1], 1e-9)
	assert.InDelta(t, 5.0, x[2], 1e-9)
	assert.InDelta(t, -5e-3, x[3], 1e-12)
}

func TestCircuitMatrix_RestampAfterSolve(t *testing.T) {
	m, err := NewMatrix(3, false)
	require.NoError(t, err)
	defer m.Destroy()

	m.SetupElements()
	stampDivider(m)
	require.NoError(t, m.Solve())

	// The first Factor reorders the matrix; later stamps still address
	// external row and column numbers.
	m.Clear()
	stampDivider(m)
	m.AddRHS(3, 10)
	require.NoError(t, m.Solve())

	x := m.Solution()
	assert.InDelta(t, 20.0, x[1], 1e-9)
	assert.InDelta(t, 10.0, x[2], 1e-9)

	var buf bytes.Buffer
	assert.NotPanics(t, func() { m.WriteSystem(&buf) })
}

func TestCircuitMatrix_ComplexSolveInterleaved(t *testing.T) {
	// RC low-pass at its corner frequency: R = 1k, C = 1u, unit AC source.
	m, err := NewMatrix(3, true)
	require.NoError(t, err)
	defer m.Destroy()

	g := 1e-3
	wc := 1 / (1e3 * 1e-6)
	m.SetupElements()
	m.AddComplexElement(1, 1, g, 0)
	m.AddComplexElement(1, 2, -g, 0)
	m.AddComplexElement(2, 1, -g, 0)
	m.AddComplexElement(2, 2, g, wc*1e-6)
	m.AddComplexElement(1, 3, 1, 0)
	m.AddComplexElement(3, 1, 1, 0)
	m.AddComplexRHS(3, 1, 0)
	require.NoError(t, m.Solve())

	re, im := m.GetComplexSolution(2)
	assert.InDelta(t, 0.5, re, 1e-9)
	assert.InDelta(t, -0.5, im, 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, math.Hypot(re, im), 1e-9)

	re, im = m.GetComplexSolution(1)
	assert.InDelta(t, 1.0, re, 1e-9)
	assert.InDelta(t, 0.0, im, 1e-9)
}

func TestCircuitMatrix_OutOfBoundsStampFailsSolve(t *testing.T) {
	m, err := NewMatrix(2, false)
	require.NoError(t, err)
	defer m.Destroy()

	m.SetupElements()
	m.AddElement(1, 1, 1)
	m.AddElement(2, 2, 1)
	m.AddElement(3, 1, 1)
	assert.Error(t, m.Solve())

	m.Clear()
	m.AddElement(1, 1, 1)
	m.AddElement(2, 2, 1)
	assert.NoError(t, m.Solve())
}

func TestSymbolicMatrix_RCLowPass(t *testing.T) {
	// Unknowns: v1, v2, i(V). G = 1/R, C in farads.
	R, C := 1e3, 1e-6
	G := 1 / R
	m := NewSymbolic(3)
	m.AddPoly(1, 1, poly.Const(G))
	m.AddPoly(1, 2, poly.Const(-G))
	m.AddPoly(2, 1, poly.Const(-G))
	m.AddPoly(2, 2, poly.Poly{G, C})
	m.AddPoly(1, 3, poly.Const(1))
	m.AddPoly(3, 1, poly.Const(1))
	m.AddPoly(0, 1, poly.Const(99)) // ground row is dropped
	m.AddRHSPoly(3, poly.Const(1))

	det, err := m.Det()
	require.NoError(t, err)
	require.Len(t, det, 2)
	assert.InDelta(t, -G, det[0], 1e-15)
	assert.InDelta(t, -C, det[1], 1e-18)

	num, err := m.Cramer(2)
	require.NoError(t, err)
	require.Len(t, num, 1)
	assert.InDelta(t, -G, num[0], 1e-15)

	_, err = m.Cramer(4)
	assert.Error(t, err)
}

func TestBareiss_NeedsPivoting(t *testing.T) {
	// [[0, 1], [1, 0]] has a zero leading entry and determinant -1.
	m := NewSymbolic(2)
	m.AddPoly(1, 2, poly.Const(1))
	m.AddPoly(2, 1, poly.Const(1))

	det, err := m.Det()
	require.NoError(t, err)
	assert.Equal(t, poly.Poly{-1}, det)
}

func TestBareiss_Singular(t *testing.T) {
	m := NewSymbolic(2)
	m.AddPoly(1, 1, poly.Poly{1, 1})
	m.AddPoly(1, 2, poly.Poly{2, 2})
	m.AddPoly(2, 1, poly.Poly{1})
	m.AddPoly(2, 2, poly.Poly{2})

	det, err := m.Det()
	require.NoError(t, err)
	assert.True(t, det.IsZero(), "got %v", det)
}

func TestBareiss_ThreeByThreePolynomial(t *testing.T) {
	// diag(s+1, s+2, s+3) plus an off-diagonal coupling that does not
	// change the determinant (upper triangular).
	m := NewSymbolic(3)
	m.AddPoly(1, 1, poly.Poly{1, 1})
	m.AddPoly(2, 2, poly.Poly{2, 1})
	m.AddPoly(3, 3, poly.Poly{3, 1})
	m.AddPoly(1, 3, poly.Poly{0, 5})

	det, err := m.Det()
	require.NoError(t, err)
	want := poly.Poly{6, 11, 6, 1}
	require.Len(t, det, len(want))
	for i := range want {
		assert.InDelta(t, want[i], det[i], 1e-9)
	}
}
