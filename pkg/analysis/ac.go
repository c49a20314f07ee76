package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-schematic/internal/consts"
	"github.com/edp1096/toy-schematic/pkg/circuit"
	"github.com/edp1096/toy-schematic/pkg/device"
)

type ACAnalysis struct {
	BaseAnalysis
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
}

func NewAC(fStart, fStop float64, nPoints int, pType string) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		startFreq:    fStart,
		stopFreq:     fStop,
		numPoints:    nPoints,
		pointsType:   pType,
	}
}

// Setup checks the sweep. Every device is linear, so the small-signal
// system does not depend on the bias point and no OP solve is needed.
func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	if ckt.GetMatrix() == nil {
		return circuit.ErrNoMatrix
	}
	if !ckt.IsComplex() {
		return fmt.Errorf("ac analysis needs a complex matrix")
	}
	ac.Circuit = ckt

	freqs, err := GenerateFrequencies(ac.pointsType, ac.numPoints, ac.startFreq, ac.stopFreq)
	if err != nil {
		return err
	}
	ac.frequencies = freqs

	return nil
}

func (ac *ACAnalysis) Frequencies() []float64 {
	return ac.frequencies
}

func (ac *ACAnalysis) Execute() error {
	if ac.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	mat := ac.Circuit.GetMatrix()
	for _, freq := range ac.frequencies {
		ac.Circuit.Status = &device.CircuitStatus{
			Frequency: freq,
			Mode:      device.ACAnalysis,
			Temp:      consts.TNOM,
		}

		mat.Clear()
		err := ac.Circuit.Stamp(ac.Circuit.Status)
		if err != nil {
			return fmt.Errorf("stamping error at f=%g: %w", freq, err)
		}

		err = mat.Solve()
		if err != nil {
			return fmt.Errorf("%w at f=%g: %v", ErrSingular, freq, err)
		}

		solution := make(map[string]complex128)

		// Node voltage
		for name, nodeIdx := range ac.Circuit.GetNodeMap() {
			real, imag := mat.GetComplexSolution(nodeIdx)
			solution[fmt.Sprintf("V(%s)", name)] = complex(real, imag)
		}

		// Branch current
		for name, bIdx := range ac.Circuit.GetBranchMap() {
			real, imag := mat.GetComplexSolution(bIdx)
			solution[fmt.Sprintf("I(%s)", name)] = complex(real, imag)
		}

		ac.StoreACResult(freq, solution)
	}

	return nil
}

// GenerateFrequencies lays out a DEC, OCT or LIN sweep. For DEC and OCT,
// points counts samples per decade or octave as in SPICE; LIN spreads
// points samples over the whole range.
func GenerateFrequencies(sweep string, points int, fStart, fStop float64) ([]float64, error) {
	if points < 1 {
		return nil, fmt.Errorf("sweep needs at least one point, got %d", points)
	}
	if fStart <= 0 || fStop < fStart {
		return nil, fmt.Errorf("invalid sweep range %g..%g", fStart, fStop)
	}
	if fStop == fStart {
		return []float64{fStart}, nil
	}

	var base float64
	switch sweep {
	case "DEC": // Decade
		base = 10
	case "OCT": // Octave
		base = 2
	case "LIN": // Linear
		n := max(points, 2)
		step := (fStop - fStart) / float64(n-1)
		freqs := make([]float64, n)
		for i := range n {
			freqs[i] = fStart + float64(i)*step
		}
		return freqs, nil
	default:
		return nil, fmt.Errorf("unknown sweep type %q", sweep)
	}

	span := math.Log(fStop/fStart) / math.Log(base)
	n := int(math.Floor(span*float64(points)+1e-9)) + 1
	ratio := math.Pow(base, 1/float64(points))

	freqs := make([]float64, 0, n+1)
	for i := range n {
		freqs = append(freqs, fStart*math.Pow(ratio, float64(i)))
	}
	if last := freqs[len(freqs)-1]; math.Abs(last-fStop) > 1e-9*fStop {
		freqs = append(freqs, fStop)
	} else {
		freqs[len(freqs)-1] = fStop
	}
	return freqs, nil
}
