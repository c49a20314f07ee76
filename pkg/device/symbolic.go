package device

import (
	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

func symAdmittance(m matrix.SymbolicDeviceMatrix, n1, n2 int, y poly.Poly) {
	neg := y.Neg()
	m.AddPoly(n1, n1, y)
	m.AddPoly(n2, n2, y)
	m.AddPoly(n1, n2, neg)
	m.AddPoly(n2, n1, neg)
}

func symIncidence(m matrix.SymbolicDeviceMatrix, n1, n2, b int) {
	one, minus := poly.Const(1), poly.Const(-1)
	m.AddPoly(n1, b, one)
	m.AddPoly(b, n1, one)
	m.AddPoly(n2, b, minus)
	m.AddPoly(b, n2, minus)
}
