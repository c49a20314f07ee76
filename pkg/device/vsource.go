package device

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-schematic/pkg/matrix"
)

type VoltageSource struct {
	BaseDevice
	dcValue float64
	// AC params
	acMag   float64
	acPhase float64 // degrees
	// Branch index for MNA
	branchIdx int
}

var (
	_ BranchDevice    = (*VoltageSource)(nil)
	_ ACElement       = (*VoltageSource)(nil)
	_ SymbolicElement = (*VoltageSource)(nil)
)

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return NewACVoltageSource(name, nodeNames, value, 0, 0)
}

func NewACVoltageSource(name string, nodeNames []string, dcValue, acMag, acPhase float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBaseDevice(name, dcValue, nodeNames),
		dcValue:    dcValue,
		acMag:      acMag,
		acPhase:    acPhase,
	}
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(v.Nodes) != 2 {
		return fmt.Errorf("voltage source %s: requires exactly 2 nodes", v.Name)
	}
	if status.Mode == ACAnalysis {
		return v.StampAC(matrix, status)
	}

	// v1 - v2 = V
	stampIncidence(matrix, v.Nodes[0], v.Nodes[1], v.branchIdx, false)
	matrix.AddRHS(v.branchIdx, v.dcValue)
	return nil
}

// Stamp for AC analysis
func (v *VoltageSource) StampAC(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	phaseRad := v.acPhase * math.Pi / 180.0

	// magnitude * (cos(θ) + j*sin(θ))
	voltageReal := v.acMag * math.Cos(phaseRad)
	voltageImag := v.acMag * math.Sin(phaseRad)

	stampIncidence(matrix, v.Nodes[0], v.Nodes[1], v.branchIdx, true)
	matrix.AddComplexRHS(v.branchIdx, voltageReal, voltageImag)
	return nil
}

func (v *VoltageSource) StampSymbolic(matrix matrix.SymbolicDeviceMatrix) error {
	symIncidence(matrix, v.Nodes[0], v.Nodes[1], v.branchIdx)
	return nil
}

func (v *VoltageSource) DCValue() float64     { return v.dcValue }
func (v *VoltageSource) ACMagnitude() float64 { return v.acMag }
func (v *VoltageSource) ACPhase() float64     { return v.acPhase }

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.dcValue = value
}
