package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/edp1096/toy-schematic/pkg/circuit"
)

const (
	OP int = iota
	AC
	TF
)

var (
	ErrSingular    = errors.New("singular circuit matrix")
	ErrNoInput     = errors.New("no input source")
	ErrUnknownNode = errors.New("unknown node")
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Circuit     *circuit.Circuit
	results     map[string][]float64 // key: variable name, value: result per point
	convergence struct {
		maxIter int
		abstol  float64
		reltol  float64
		gmin    float64
	}
}

func NewBaseAnalysis() *BaseAnalysis {
	ba := &BaseAnalysis{results: make(map[string][]float64)}

	ba.convergence.maxIter = 100
	ba.convergence.abstol = 1e-12
	ba.convergence.reltol = 1e-6
	ba.convergence.gmin = 1e-12

	return ba
}

func (a *BaseAnalysis) CheckConvergence(oldSol, newSol []float64) bool {
	if len(oldSol) != len(newSol) {
		return false
	}

	for i := range oldSol {
		diff := math.Abs(newSol[i] - oldSol[i])
		if diff > a.convergence.abstol &&
			diff > a.convergence.reltol*math.Abs(newSol[i]) {
			return false
		}
	}
	return true
}

func (a *BaseAnalysis) StoreACResult(freq float64, solution map[string]complex128) {
	a.results["FREQ"] = append(a.results["FREQ"], freq)

	for name, value := range solution {
		// Magnitude
		magName := name + "_MAG"
		a.results[magName] = append(a.results[magName], cmplx.Abs(value))

		// Phase - degree
		phaseName := name + "_PHASE"
		a.results[phaseName] = append(a.results[phaseName], cmplx.Phase(value)*180.0/math.Pi)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
