package netlist

import "fmt"

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisAC
	AnalysisTF
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return "op"
	case AnalysisAC:
		return "ac"
	case AnalysisTF:
		return "tf"
	}
	return fmt.Sprintf("AnalysisType(%d)", int(a))
}

type ACParam struct {
	Sweep  string  `json:"sweep"`  // DEC, OCT, LIN
	Points int     `json:"points"` // points per decade, per octave or in total
	FStart float64 `json:"fstart"` // start frequency
	FStop  float64 `json:"fstop"`  // stop frequency
}

// TFParam names the transfer function V(Output, Reference) / Input.
type TFParam struct {
	Output    string `json:"output"`
	Reference string `json:"reference,omitempty"` // empty means ground
	Input     string `json:"input"`               // source name
}

type NetlistData struct {
	Title    string         // Circuit title
	Elements []Element      // Circuit elements
	Analyses []AnalysisType // In deck order
	ACParam  ACParam
	TFParam  TFParam
}

func (d *NetlistData) Has(a AnalysisType) bool {
	for _, x := range d.Analyses {
		if x == a {
			return true
		}
	}
	return false
}

// Element returns the element with the given name, case-insensitively.
func (d *NetlistData) Element(name string) (Element, bool) {
	for _, e := range d.Elements {
		if equalFold(e.Name, name) {
			return e, true
		}
	}
	return Element{}, false
}

type Element struct {
	Type   string            `json:"type"`             // Part type (R, L, C, V, X)
	Name   string            `json:"name"`             // Part name
	Nodes  []string          `json:"nodes"`            // Node names
	Value  float64           `json:"value"`            // Part value; DC value for V, gain for X
	Params map[string]string `json:"params,omitempty"` // Parameter values
}

// IsGround reports whether a node name denotes the reference node.
func IsGround(node string) bool {
	return node == "0" || equalFold(node, "gnd")
}

// ParseError locates a deck error by its source line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
