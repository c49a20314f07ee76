package analysis

import (
	"fmt"

	"github.com/edp1096/toy-schematic/pkg/circuit"
	"github.com/edp1096/toy-schematic/pkg/netlist"
)

// New returns the analyzer for one deck directive.
func New(data *netlist.NetlistData, typ netlist.AnalysisType) (Analysis, error) {
	switch typ {
	case netlist.AnalysisOP:
		return NewOP(), nil
	case netlist.AnalysisAC:
		p := data.ACParam
		return NewAC(p.FStart, p.FStop, p.Points, p.Sweep), nil
	case netlist.AnalysisTF:
		p := data.TFParam
		return NewTF(p.Output, p.Reference, p.Input), nil
	}
	return nil, fmt.Errorf("unsupported analysis type %v", typ)
}

// Run builds a fresh circuit for the directive, executes it and returns
// its result table.
func Run(data *netlist.NetlistData, typ netlist.AnalysisType) (Analysis, error) {
	analyzer, err := New(data, typ)
	if err != nil {
		return nil, err
	}

	ckt, err := circuit.Build(data.Title, data.Elements, typ == netlist.AnalysisAC)
	if err != nil {
		return nil, err
	}
	defer ckt.Destroy()

	if err := analyzer.Setup(ckt); err != nil {
		return nil, fmt.Errorf("%v setup: %w", typ, err)
	}
	if err := analyzer.Execute(); err != nil {
		return nil, fmt.Errorf("%v: %w", typ, err)
	}
	return analyzer, nil
}
