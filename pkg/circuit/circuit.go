package circuit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/edp1096/toy-schematic/internal/consts"
	"github.com/edp1096/toy-schematic/pkg/device"
	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/netlist"
)

var ErrNoMatrix = errors.New("matrix not created")

type Circuit struct {
	name      string
	nodeMap   map[string]int
	branchMap map[string]int
	devices   []device.Device
	numNodes  int
	matrix    *matrix.CircuitMatrix
	Status    *device.CircuitStatus
	isComplex bool
}

func New(name string) *Circuit {
	return NewWithComplex(name, false)
}

func NewWithComplex(name string, isComplex bool) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		devices:   make([]device.Device, 0),
		Status:    &device.CircuitStatus{Temp: consts.TNOM},
		isComplex: isComplex,
	}
}

// hasBranch reports element types that carry a branch current unknown.
func hasBranch(typ string) bool {
	switch typ {
	case "V", "L", "X":
		return true
	}
	return false
}

// AssignNodeBranchMaps numbers nodes in order of first appearance, then
// gives each V, L and X element a branch row after the last node.
func (c *Circuit) AssignNodeBranchMaps(elements []netlist.Element) error {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if netlist.IsGround(nodeName) {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				idx := len(c.nodeMap) + 1
				c.nodeMap[nodeName] = idx
			}
		}
	}

	branchStart := len(c.nodeMap) + 1
	for _, elem := range elements {
		if !hasBranch(elem.Type) {
			continue
		}
		if _, dup := c.branchMap[elem.Name]; dup {
			return fmt.Errorf("duplicate element %s", elem.Name)
		}
		c.branchMap[elem.Name] = branchStart
		branchStart++
	}

	c.numNodes = len(c.nodeMap)
	return nil
}

func (c *Circuit) Size() int {
	return len(c.nodeMap) + len(c.branchMap)
}

func (c *Circuit) CreateMatrix() error {
	if c.Size() == 0 {
		return fmt.Errorf("circuit %q has no unknowns", c.name)
	}
	mat, err := matrix.NewMatrix(c.Size(), c.isComplex)
	if err != nil {
		return err
	}
	c.matrix = mat
	return nil
}

// SetupDevices creates the devices and resolves their node and branch
// indices. When a matrix exists its sparsity pattern is allocated too.
func (c *Circuit) SetupDevices(elements []netlist.Element) error {
	for _, elem := range elements {
		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			return fmt.Errorf("creating device %s: %w", elem.Name, err)
		}

		// Node index
		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if netlist.IsGround(nodeName) {
				nodeIndices[i] = 0
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if b, ok := dev.(device.BranchDevice); ok {
			idx, exists := c.branchMap[elem.Name]
			if !exists {
				return fmt.Errorf("device %s: no branch assigned", elem.Name)
			}
			b.SetBranchIndex(idx)
		}

		c.devices = append(c.devices, dev)
	}

	if c.matrix != nil {
		c.matrix.SetupElements()
	}

	return nil
}

func (c *Circuit) Stamp(status *device.CircuitStatus) error {
	if c.matrix == nil {
		return ErrNoMatrix
	}

	for _, dev := range c.devices {
		err := dev.Stamp(c.matrix, status)
		if err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

// StampSymbolic fills m with every device's polynomial stamp. Sources
// contribute their incidence only.
func (c *Circuit) StampSymbolic(m matrix.SymbolicDeviceMatrix) error {
	for _, dev := range c.devices {
		se, ok := dev.(device.SymbolicElement)
		if !ok {
			return fmt.Errorf("device %s: no symbolic model", dev.GetName())
		}
		if err := se.StampSymbolic(m); err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) GetMatrix() *matrix.CircuitMatrix {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetBranchMap() map[string]int {
	return c.branchMap
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

// Device looks a device up by name.
func (c *Circuit) Device(name string) (device.Device, bool) {
	for _, dev := range c.devices {
		if dev.GetName() == name {
			return dev, true
		}
	}
	return nil, false
}

// NodeIndex maps a node name to its matrix row; ground is 0.
func (c *Circuit) NodeIndex(name string) (int, bool) {
	if netlist.IsGround(name) {
		return 0, true
	}
	idx, ok := c.nodeMap[name]
	return idx, ok
}

// NodeNames lists node names in index order.
func (c *Circuit) NodeNames() []string {
	names := make([]string, 0, len(c.nodeMap))
	for name := range c.nodeMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return c.nodeMap[names[i]] < c.nodeMap[names[j]] })
	return names
}

func (c *Circuit) GetSolution() map[string]float64 {
	solution := make(map[string]float64)
	if c.matrix == nil {
		return solution
	}
	matrixSolution := c.matrix.Solution()

	// Node voltage
	for name, idx := range c.nodeMap {
		solution[fmt.Sprintf("V(%s)", name)] = matrixSolution[idx]
	}

	// Branch current
	for name, idx := range c.branchMap {
		solution[fmt.Sprintf("I(%s)", name)] = matrixSolution[idx]
	}

	// V = IR -> I = V/R
	for _, dev := range c.devices {
		if dev.GetType() == "R" {
			nodes := dev.GetNodes()
			v1, v2 := c.GetNodeVoltage(nodes[0]), c.GetNodeVoltage(nodes[1])
			current := (v1 - v2) / dev.GetValue()
			solution[fmt.Sprintf("I(%s)", dev.GetName())] = current
		}
	}

	return solution
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
	}
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) IsComplex() bool {
	return c.isComplex
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) GetNodeVoltage(nodeIdx int) float64 {
	if nodeIdx <= 0 || c.matrix == nil { // ground or invalid node
		return 0
	}

	solution := c.matrix.Solution()
	if nodeIdx >= len(solution) {
		return 0
	}

	return solution[nodeIdx]
}

// Build maps, allocates and populates a circuit from parsed elements.
func Build(name string, elements []netlist.Element, isComplex bool) (*Circuit, error) {
	ckt := NewWithComplex(name, isComplex)
	if err := ckt.AssignNodeBranchMaps(elements); err != nil {
		return nil, err
	}
	if err := ckt.CreateMatrix(); err != nil {
		return nil, err
	}
	if err := ckt.SetupDevices(elements); err != nil {
		ckt.Destroy()
		return nil, err
	}
	return ckt, nil
}
