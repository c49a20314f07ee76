package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/edp1096/toy-schematic/pkg/circuit"
	"github.com/edp1096/toy-schematic/pkg/device"
	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/netlist"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

// reduceTol is the relative distance under which a pole and a zero cancel.
const reduceTol = 1e-6

// TransferFunction is H(s) = V(Output, Reference) / Input.
type TransferFunction struct {
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Reference string        `json:"reference,omitempty"`
	H         poly.Rational `json:"h"`
	Poles     []complex128  `json:"-"`
	Zeros     []complex128  `json:"-"`
	DCGain    float64       `json:"-"`
}

func (tf *TransferFunction) String() string {
	out := "V(" + tf.Output
	if tf.Reference != "" {
		out += "," + tf.Reference
	}
	return fmt.Sprintf("H(s) = %s)/%s = %s", out, tf.Input, tf.H)
}

// At evaluates H(j2πf).
func (tf *TransferFunction) At(freq float64) complex128 {
	return tf.H.AtFrequency(freq)
}

type FrequencyPoint struct {
	Freq      float64 `json:"freq"`
	Magnitude float64 `json:"magnitude"`
	DB        float64 `json:"db"`
	Phase     float64 `json:"phase"` // degrees
}

// Response evaluates H over freqs for a Bode plot.
func (tf *TransferFunction) Response(freqs []float64) []FrequencyPoint {
	points := make([]FrequencyPoint, len(freqs))
	for i, f := range freqs {
		h := tf.At(f)
		mag := cmplx.Abs(h)
		points[i] = FrequencyPoint{
			Freq:      f,
			Magnitude: mag,
			DB:        20 * math.Log10(mag),
			Phase:     cmplx.Phase(h) * 180 / math.Pi,
		}
	}
	return points
}

type TransferAnalysis struct {
	BaseAnalysis
	output    string
	reference string
	input     string
	outIdx    int
	refIdx    int
	srcBranch int
	result    *TransferFunction
}

// NewTF prepares V(output, reference)/input. An empty reference is ground
// and an empty input selects the circuit's only voltage source.
func NewTF(output, reference, input string) *TransferAnalysis {
	return &TransferAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		output:       output,
		reference:    reference,
		input:        input,
	}
}

func (tf *TransferAnalysis) Setup(ckt *circuit.Circuit) error {
	tf.Circuit = ckt

	var ok bool
	if tf.outIdx, ok = ckt.NodeIndex(tf.output); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, tf.output)
	}
	if tf.reference != "" {
		if tf.refIdx, ok = ckt.NodeIndex(tf.reference); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, tf.reference)
		}
	}

	src, err := selectInput(ckt, tf.input)
	if err != nil {
		return err
	}
	tf.input = src.GetName()
	tf.srcBranch = src.BranchIndex()

	return nil
}

func selectInput(ckt *circuit.Circuit, name string) (*device.VoltageSource, error) {
	var sources []*device.VoltageSource
	for _, dev := range ckt.GetDevices() {
		if v, ok := dev.(*device.VoltageSource); ok {
			if name != "" && strings.EqualFold(v.GetName(), name) {
				return v, nil
			}
			sources = append(sources, v)
		}
	}

	switch {
	case name != "":
		return nil, fmt.Errorf("%w: %s is not a voltage source", ErrNoInput, name)
	case len(sources) == 0:
		return nil, ErrNoInput
	case len(sources) > 1:
		return nil, fmt.Errorf("%w: %d voltage sources, name one", ErrNoInput, len(sources))
	}
	return sources[0], nil
}

// Execute solves the polynomial MNA system by Cramer's rule with the input
// source set to 1 and every other source shorted.
func (tf *TransferAnalysis) Execute() error {
	if tf.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	m := matrix.NewSymbolic(tf.Circuit.Size())
	if err := tf.Circuit.StampSymbolic(m); err != nil {
		return err
	}
	m.AddRHSPoly(tf.srcBranch, poly.Const(1))

	den, err := m.Det()
	if err != nil {
		return err
	}
	if den.IsZero() {
		return ErrSingular
	}

	num, err := tf.cramer(m, tf.outIdx)
	if err != nil {
		return err
	}
	if tf.refIdx != 0 {
		ref, err := tf.cramer(m, tf.refIdx)
		if err != nil {
			return err
		}
		num = num.Sub(ref)
	}

	h, err := poly.Rational{Num: num, Den: den}.Reduce(reduceTol)
	if err != nil {
		return fmt.Errorf("reducing transfer function: %w", err)
	}

	result := &TransferFunction{
		Input:     tf.input,
		Output:    tf.output,
		Reference: tf.reference,
		H:         h,
		DCGain:    h.DCGain(),
	}
	if result.Zeros, err = h.Zeros(); err != nil {
		return fmt.Errorf("zeros: %w", err)
	}
	if result.Poles, err = h.Poles(); err != nil {
		return fmt.Errorf("poles: %w", err)
	}
	tf.result = result
	tf.storeResults()

	return nil
}

func (tf *TransferAnalysis) cramer(m *matrix.SymbolicMatrix, idx int) (poly.Poly, error) {
	if idx == 0 {
		return poly.Poly{}, nil
	}
	return m.Cramer(idx)
}

func (tf *TransferAnalysis) Result() *TransferFunction {
	return tf.result
}

func (tf *TransferAnalysis) storeResults() {
	r := tf.result
	tf.results["NUM"] = append([]float64(nil), r.H.Num...)
	tf.results["DEN"] = append([]float64(nil), r.H.Den...)
	tf.results["DCGAIN"] = []float64{r.DCGain}
	for _, p := range r.Poles {
		tf.results["POLE_RE"] = append(tf.results["POLE_RE"], real(p))
		tf.results["POLE_IM"] = append(tf.results["POLE_IM"], imag(p))
	}
	for _, z := range r.Zeros {
		tf.results["ZERO_RE"] = append(tf.results["ZERO_RE"], real(z))
		tf.results["ZERO_IM"] = append(tf.results["ZERO_IM"], imag(z))
	}
}

// Transfer builds the circuit for data and computes the transfer function
// named by param.
func Transfer(data *netlist.NetlistData, param netlist.TFParam) (*TransferFunction, error) {
	ckt := circuit.New(data.Title)
	if err := ckt.AssignNodeBranchMaps(data.Elements); err != nil {
		return nil, err
	}
	if err := ckt.SetupDevices(data.Elements); err != nil {
		return nil, err
	}

	tf := NewTF(param.Output, param.Reference, param.Input)
	if err := tf.Setup(ckt); err != nil {
		return nil, err
	}
	if err := tf.Execute(); err != nil {
		return nil, err
	}
	return tf.Result(), nil
}
