package device

import (
	"fmt"

	"github.com/edp1096/toy-schematic/internal/consts"
	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

type Resistor struct {
	BaseDevice
	Tc1  float64
	Tc2  float64
	Tnom float64
}

var _ SymbolicElement = (*Resistor)(nil)

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		BaseDevice: newBaseDevice(name, value, nodeNames),
		Tnom:       consts.TNOM,
	}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}
	if r.Value == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}

	g := 1.0 / r.temperatureAdjustedValue(status.Temp) // G = 1/R
	stampAdmittance(matrix, r.Nodes[0], r.Nodes[1], g, 0, status.Mode == ACAnalysis)

	return nil
}

func (r *Resistor) StampSymbolic(matrix matrix.SymbolicDeviceMatrix) error {
	if r.Value == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}
	symAdmittance(matrix, r.Nodes[0], r.Nodes[1], poly.Const(1/r.Value))
	return nil
}

func (r *Resistor) temperatureAdjustedValue(temp float64) float64 {
	if temp == 0 {
		return r.Value
	}
	dt := temp - r.Tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return r.Value * factor
}
