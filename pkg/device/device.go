package device

import (
	"github.com/edp1096/toy-schematic/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
	GetValue() float64
	SetNodes(nodes []int)
}

// SymbolicElement stamps its admittance as polynomials in s. Sources stamp
// their zero-valued form; the analysis drives the chosen input itself.
type SymbolicElement interface {
	StampSymbolic(matrix matrix.SymbolicDeviceMatrix) error
}

// BranchDevice owns an extra MNA unknown: its branch current.
type BranchDevice interface {
	Device
	BranchIndex() int
	SetBranchIndex(idx int)
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

type ACElement interface {
	StampAC(matrix matrix.DeviceMatrix, status *CircuitStatus) error
}

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	ACAnalysis
)

type CircuitStatus struct {
	Gmin      float64
	Mode      AnalysisMode
	Temp      float64
	Frequency float64 // AC frequency
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func newBaseDevice(name string, value float64, nodeNames []string) BaseDevice {
	return BaseDevice{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}

// stampAdmittance adds y between n1 and n2, skipping ground.
func stampAdmittance(m matrix.DeviceMatrix, n1, n2 int, re, im float64, isComplex bool) {
	add := func(i, j int, sign float64) {
		if isComplex {
			m.AddComplexElement(i, j, sign*re, sign*im)
		} else {
			m.AddElement(i, j, sign*re)
		}
	}

	if n1 != 0 {
		add(n1, n1, 1)
		if n2 != 0 {
			add(n1, n2, -1)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			add(n2, n1, -1)
		}
		add(n2, n2, 1)
	}
}

// stampIncidence couples branch b to nodes n1 (+) and n2 (-): the branch
// current leaves n1 and enters n2, and row b reads v1 - v2.
func stampIncidence(m matrix.DeviceMatrix, n1, n2, b int, isComplex bool) {
	add := func(i, j int, v float64) {
		if isComplex {
			m.AddComplexElement(i, j, v, 0)
		} else {
			m.AddElement(i, j, v)
		}
	}

	if n1 != 0 {
		add(n1, b, 1)
		add(b, n1, 1)
	}
	if n2 != 0 {
		add(n2, b, -1)
		add(b, n2, -1)
	}
}
