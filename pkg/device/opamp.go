package device

import (
	"fmt"

	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

// OpAmp is a voltage-controlled voltage source with nodes (in+, in-, out).
// A zero gain selects the ideal model, a nullor forcing v+ = v-; any other
// gain A gives vout = A·(v+ - v-). The output current is the branch unknown.
type OpAmp struct {
	BaseDevice
	branchIdx int
}

var (
	_ BranchDevice    = (*OpAmp)(nil)
	_ SymbolicElement = (*OpAmp)(nil)
)

func NewOpAmp(name string, nodeNames []string, gain float64) *OpAmp {
	return &OpAmp{BaseDevice: newBaseDevice(name, gain, nodeNames)}
}

func (o *OpAmp) GetType() string { return "X" }

func (o *OpAmp) Ideal() bool { return o.Value == 0 }

func (o *OpAmp) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(o.Nodes) != 3 {
		return fmt.Errorf("op-amp %s: requires exactly 3 nodes", o.Name)
	}
	inp, inn, out := o.Nodes[0], o.Nodes[1], o.Nodes[2]
	b := o.branchIdx

	add := func(i, j int, v float64) {
		if i == 0 || j == 0 {
			return
		}
		if status.Mode == ACAnalysis {
			matrix.AddComplexElement(i, j, v, 0)
		} else {
			matrix.AddElement(i, j, v)
		}
	}

	add(out, b, 1)
	if o.Ideal() {
		add(b, inp, 1)
		add(b, inn, -1)
		return nil
	}

	add(b, inp, o.Value)
	add(b, inn, -o.Value)
	add(b, out, -1)
	return nil
}

func (o *OpAmp) StampSymbolic(matrix matrix.SymbolicDeviceMatrix) error {
	inp, inn, out := o.Nodes[0], o.Nodes[1], o.Nodes[2]
	b := o.branchIdx

	matrix.AddPoly(out, b, poly.Const(1))
	if o.Ideal() {
		matrix.AddPoly(b, inp, poly.Const(1))
		matrix.AddPoly(b, inn, poly.Const(-1))
		return nil
	}

	matrix.AddPoly(b, inp, poly.Const(o.Value))
	matrix.AddPoly(b, inn, poly.Const(-o.Value))
	matrix.AddPoly(b, out, poly.Const(-1))
	return nil
}

func (o *OpAmp) BranchIndex() int {
	return o.branchIdx
}

func (o *OpAmp) SetBranchIndex(idx int) {
	o.branchIdx = idx
}
