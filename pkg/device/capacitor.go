package device

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-schematic/internal/consts"
	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

type Capacitor struct {
	BaseDevice
}

var _ SymbolicElement = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: newBaseDevice(name, value, nodeNames)}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(c.Nodes) != 2 {
		return fmt.Errorf("capacitor %s: requires exactly 2 nodes", c.Name)
	}
	n1, n2 := c.Nodes[0], c.Nodes[1]

	switch status.Mode {
	case ACAnalysis:
		omega := 2 * math.Pi * status.Frequency
		stampAdmittance(matrix, n1, n2, 0, omega*c.Value, true) // C * jω

	default:
		// Open circuit, kept solvable with gmin
		gmin := math.Max(status.Gmin, consts.GMIN)
		stampAdmittance(matrix, n1, n2, gmin, 0, false)
	}

	return nil
}

func (c *Capacitor) StampSymbolic(matrix matrix.SymbolicDeviceMatrix) error {
	symAdmittance(matrix, c.Nodes[0], c.Nodes[1], poly.Monomial(c.Value, 1))
	return nil
}
