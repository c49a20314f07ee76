package matrix

import (
	"fmt"
	"io"

	"github.com/edp1096/sparse"
)

// CircuitMatrix is the MNA system A·x = b backed by a sparse matrix.
// Complex systems keep rhs and solution interleaved: x[2i] real, x[2i+1] imag.
type CircuitMatrix struct {
	Size         int
	matrix       *sparse.Matrix
	rhs          []float64
	rhsImag      []float64
	solution     []float64
	solutionImag []float64
	config       *sparse.Configuration
	outOfBounds  int
}

func NewMatrix(size int, isComplex bool) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 isComplex,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               true,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	vectorSize := size + 1 // rhs, solution size
	vectorSizeImag := size + 1
	if isComplex && !config.SeparatedComplexVectors {
		vectorSize *= 2
		vectorSizeImag = 1
	}

	return &CircuitMatrix{
		Size:         size,
		matrix:       mat,
		rhs:          make([]float64, vectorSize), // 1-based indexing
		rhsImag:      make([]float64, vectorSizeImag),
		solution:     make([]float64, vectorSize),
		solutionImag: make([]float64, vectorSizeImag),
		config:       config,
	}, nil
}

func (m *CircuitMatrix) IsComplex() bool {
	return m.config.Complex
}

// SetupElements allocates every entry so later stamps never grow the matrix.
func (m *CircuitMatrix) SetupElements() {
	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			m.matrix.GetElement(int64(i), int64(j))
		}
	}
}

func (m *CircuitMatrix) inBounds(i, j int) bool {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		m.outOfBounds++
		return false
	}
	return true
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if !m.inBounds(i, j) {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) {
	if !m.inBounds(i, j) {
		return
	}

	element := m.matrix.GetElement(int64(i), int64(j))
	element.Real += real
	element.Imag += imag
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) {
	if !m.inBounds(i, i) {
		return
	}

	if m.config.SeparatedComplexVectors {
		m.rhs[i] += real
		m.rhsImag[i] += imag
	} else {
		m.rhs[2*i] += real
		m.rhs[2*i+1] += imag
	}
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if !m.inBounds(i, i) {
		return
	}
	if m.config.Complex && !m.config.SeparatedComplexVectors {
		m.rhs[2*i] += value
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) LoadGmin(gmin float64) {
	for i := 1; i <= m.Size; i++ {
		if diag := m.GetDiagElement(i); diag != nil {
			diag.Real += gmin
		}
	}
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
	for i := range m.rhsImag {
		m.rhsImag[i] = 0
	}
	m.outOfBounds = 0
}

func (m *CircuitMatrix) Solve() error {
	var err error

	if m.outOfBounds > 0 {
		return fmt.Errorf("%d stamps fell outside the %dx%d matrix", m.outOfBounds, m.Size, m.Size)
	}

	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	if m.config.Complex {
		m.solution, m.solutionImag, err = m.matrix.SolveComplex(m.rhs, m.rhsImag)
	} else {
		m.solution, err = m.matrix.Solve(m.rhs)
	}

	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}

	return nil
}

func (m *CircuitMatrix) GetDiagElement(i int) *sparse.Element {
	if i <= 0 || i > m.Size {
		return nil
	}
	return m.matrix.Diags[i]
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

// GetComplexSolution returns the real and imaginary parts of x[i].
func (m *CircuitMatrix) GetComplexSolution(i int) (float64, float64) {
	if !m.config.Complex || i <= 0 || i > m.Size {
		return 0, 0
	}
	if m.config.SeparatedComplexVectors {
		return m.solution[i], m.solutionImag[i]
	}
	return m.solution[2*i], m.solution[2*i+1]
}

func (m *CircuitMatrix) rhsAt(i int) (float64, float64) {
	switch {
	case !m.config.Complex:
		return m.rhs[i], 0
	case m.config.SeparatedComplexVectors:
		return m.rhs[i], m.rhsImag[i]
	default:
		return m.rhs[2*i], m.rhs[2*i+1]
	}
}

// WriteSystem dumps the stamped equations, one row per unknown. Call it
// before Solve: factoring overwrites the entries with their LU factors.
func (m *CircuitMatrix) WriteSystem(w io.Writer) {
	fmt.Fprintf(w, "\nCircuit Equations (%dx%d):\n", m.Size, m.Size)
	fmt.Fprintln(w, "Node equations 1..n, followed by branch equations")

	for i := 1; i <= m.Size; i++ {
		fmt.Fprintf(w, "Equation %d:", i)
		for j := 1; j <= m.Size; j++ {
			element := m.matrix.GetElement(int64(i), int64(j))
			if element.Real == 0 && element.Imag == 0 {
				continue
			}
			if m.config.Complex && element.Imag != 0 {
				fmt.Fprintf(w, "  (%g + j%g)*x%d", element.Real, element.Imag, j)
			} else {
				fmt.Fprintf(w, "  %+g*x%d", element.Real, j)
			}
		}

		re, im := m.rhsAt(i)
		if m.config.Complex {
			fmt.Fprintf(w, " = %g + j%g\n", re, im)
		} else {
			fmt.Fprintf(w, " = %g\n", re)
		}
	}
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
