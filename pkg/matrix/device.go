package matrix

import "github.com/edp1096/toy-schematic/pkg/poly"

// DeviceMatrix receives numeric stamps. Indices are 1-based; 0 is ground.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
	AddComplexElement(i, j int, real, imag float64)
	AddComplexRHS(i int, real, imag float64)
}

// SymbolicDeviceMatrix receives stamps whose entries are polynomials in s.
type SymbolicDeviceMatrix interface {
	AddPoly(i, j int, p poly.Poly)
	AddRHSPoly(i int, p poly.Poly)
}
