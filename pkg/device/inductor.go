package device

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

// Inductor carries its current as a branch unknown, so the branch row
// reads v1 - v2 - jωL·i = 0 and collapses to a short at DC.
type Inductor struct {
	BaseDevice
	branchIdx int // Branch index
}

var (
	_ BranchDevice    = (*Inductor)(nil)
	_ SymbolicElement = (*Inductor)(nil)
)

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BaseDevice: newBaseDevice(name, value, nodeNames)}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(l.Nodes) != 2 {
		return fmt.Errorf("inductor %s: requires exactly 2 nodes", l.Name)
	}
	n1, n2 := l.Nodes[0], l.Nodes[1]
	bIdx := l.branchIdx

	switch status.Mode {
	case ACAnalysis:
		omega := 2 * math.Pi * status.Frequency
		stampIncidence(matrix, n1, n2, bIdx, true)
		matrix.AddComplexElement(bIdx, bIdx, 0, -omega*l.Value)

	default:
		stampIncidence(matrix, n1, n2, bIdx, false)
	}

	return nil
}

func (l *Inductor) StampSymbolic(matrix matrix.SymbolicDeviceMatrix) error {
	symIncidence(matrix, l.Nodes[0], l.Nodes[1], l.branchIdx)
	matrix.AddPoly(l.branchIdx, l.branchIdx, poly.Monomial(-l.Value, 1))
	return nil
}

func (l *Inductor) BranchIndex() int {
	return l.branchIdx
}

func (l *Inductor) SetBranchIndex(idx int) {
	l.branchIdx = idx
}
