package analysis

import (
	"fmt"

	"github.com/edp1096/toy-schematic/internal/consts"
	"github.com/edp1096/toy-schematic/pkg/circuit"
	"github.com/edp1096/toy-schematic/pkg/device"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	if ckt.GetMatrix() == nil {
		return circuit.ErrNoMatrix
	}
	if ckt.IsComplex() {
		return fmt.Errorf("operating point needs a real matrix")
	}
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) doNRiter(gmin float64, maxIter int) error {
	ckt := op.Circuit
	mat := ckt.GetMatrix()
	var oldSolution []float64
	cktStatus := &device.CircuitStatus{
		Mode: device.OperatingPointAnalysis,
		Temp: consts.TNOM,
		Gmin: gmin,
	}

	for iter := range maxIter {
		mat.Clear()

		err := ckt.Stamp(cktStatus)
		if err != nil {
			return fmt.Errorf("stamping error: %w", err)
		}
		mat.LoadGmin(gmin)

		err = mat.Solve()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSingular, err)
		}

		solution := mat.Solution()

		// Linear devices settle on the first solve; the second confirms it.
		if iter > 0 && op.CheckConvergence(oldSolution, solution) {
			return nil
		}

		if oldSolution == nil {
			oldSolution = make([]float64, len(solution))
		}
		copy(oldSolution, solution)
	}

	return fmt.Errorf("failed to converge in %d iterations", maxIter)
}

func (op *OperatingPoint) Execute() error {
	ckt := op.Circuit
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	mat := ckt.GetMatrix()

	err := op.doNRiter(0, op.convergence.maxIter)
	if err == nil {
		op.storeResults()
		return nil
	}
	firstErr := err

	numGminSteps := 10
	startGmin := float64(mat.Size) * 0.001
	gmin := startGmin

	for i := 0; i <= numGminSteps; i++ {
		err := op.doNRiter(gmin, op.convergence.maxIter)
		if err != nil {
			return fmt.Errorf("gmin stepping failed at %g: %w", gmin, err)
		}
		gmin /= 10
	}

	err = op.doNRiter(op.convergence.gmin, op.convergence.maxIter)
	if err != nil {
		return fmt.Errorf("final solution failed (%v): %w", firstErr, err)
	}

	op.storeResults()
	return nil
}

func (op *OperatingPoint) storeResults() {
	for name, value := range op.Circuit.GetSolution() {
		op.results[name] = []float64{value}
	}
}
