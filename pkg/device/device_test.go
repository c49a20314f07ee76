package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-schematic/pkg/matrix"
	"github.com/edp1096/toy-schematic/pkg/poly"
)

type entry struct{ re, im float64 }

// recorder collects stamps keyed by (row, col); column 0 holds the rhs.
type recorder struct {
	a map[[2]int]entry
}

func newRecorder() *recorder { return &recorder{a: map[[2]int]entry{}} }

func (r *recorder) AddElement(i, j int, v float64) {
	e := r.a[[2]int{i, j}]
	e.re += v
	r.a[[2]int{i, j}] = e
}

func (r *recorder) AddRHS(i int, v float64) { r.AddElement(i, 0, v) }

func (r *recorder) AddComplexElement(i, j int, re, im float64) {
	e := r.a[[2]int{i, j}]
	e.re += re
	e.im += im
	r.a[[2]int{i, j}] = e
}

func (r *recorder) AddComplexRHS(i int, re, im float64) { r.AddComplexElement(i, 0, re, im) }

func (r *recorder) at(i, j int) entry { return r.a[[2]int{i, j}] }

var _ matrix.DeviceMatrix = (*recorder)(nil)

func TestResistor_Stamp(t *testing.T) {
	r := NewResistor("R1", []string{"1", "0"}, 1e3)
	r.SetNodes([]int{1, 0})

	m := newRecorder()
	require.NoError(t, r.Stamp(m, &CircuitStatus{}))
	assert.InDelta(t, 1e-3, m.at(1, 1).re, 1e-15)
	assert.Len(t, m.a, 1)

	zero := NewResistor("R2", []string{"1", "2"}, 0)
	zero.SetNodes([]int{1, 2})
	assert.Error(t, zero.Stamp(m, &CircuitStatus{}))
}

func TestCapacitor_StampModes(t *testing.T) {
	c := NewCapacitor("C1", []string{"1", "2"}, 1e-6)
	c.SetNodes([]int{1, 2})

	ac := newRecorder()
	require.NoError(t, c.Stamp(ac, &CircuitStatus{Mode: ACAnalysis, Frequency: 1e3}))
	y := 2 * math.Pi * 1e3 * 1e-6
	assert.InDelta(t, y, ac.at(1, 1).im, 1e-12)
	assert.InDelta(t, -y, ac.at(1, 2).im, 1e-12)
	assert.Zero(t, ac.at(1, 1).re)

	op := newRecorder()
	require.NoError(t, c.Stamp(op, &CircuitStatus{}))
	assert.Greater(t, op.at(2, 2).re, 0.0)
	assert.Zero(t, op.at(2, 2).im)
}

func TestInductor_BranchStamp(t *testing.T) {
	l := NewInductor("L1", []string{"1", "2"}, 1e-3)
	l.SetNodes([]int{1, 2})
	l.SetBranchIndex(3)

	ac := newRecorder()
	require.NoError(t, l.Stamp(ac, &CircuitStatus{Mode: ACAnalysis, Frequency: 1e3}))
	assert.Equal(t, 1.0, ac.at(1, 3).re)
	assert.Equal(t, 1.0, ac.at(3, 1).re)
	assert.Equal(t, -1.0, ac.at(2, 3).re)
	assert.Equal(t, -1.0, ac.at(3, 2).re)
	assert.InDelta(t, -2*math.Pi*1e3*1e-3, ac.at(3, 3).im, 1e-12)

	op := newRecorder()
	require.NoError(t, l.Stamp(op, &CircuitStatus{}))
	assert.Equal(t, entry{}, op.at(3, 3))
	assert.Equal(t, 1.0, op.at(3, 1).re)
}

func TestVoltageSource_Stamp(t *testing.T) {
	v := NewACVoltageSource("V1", []string{"in", "0"}, 5, 2, 90)
	v.SetNodes([]int{1, 0})
	v.SetBranchIndex(2)

	op := newRecorder()
	require.NoError(t, v.Stamp(op, &CircuitStatus{}))
	assert.Equal(t, 1.0, op.at(1, 2).re)
	assert.Equal(t, 1.0, op.at(2, 1).re)
	assert.Equal(t, 5.0, op.at(2, 0).re)

	ac := newRecorder()
	require.NoError(t, v.Stamp(ac, &CircuitStatus{Mode: ACAnalysis}))
	assert.InDelta(t, 0, ac.at(2, 0).re, 1e-12)
	assert.InDelta(t, 2, ac.at(2, 0).im, 1e-12)

	v.SetValue(3)
	assert.Equal(t, 3.0, v.DCValue())
	assert.Equal(t, 3.0, v.GetValue())
}

func TestOpAmp_Stamp(t *testing.T) {
	ideal := NewOpAmp("XU1", []string{"0", "n", "out"}, 0)
	ideal.SetNodes([]int{0, 1, 2})
	ideal.SetBranchIndex(3)
	assert.True(t, ideal.Ideal())

	m := newRecorder()
	require.NoError(t, ideal.Stamp(m, &CircuitStatus{}))
	assert.Equal(t, 1.0, m.at(2, 3).re)
	assert.Equal(t, -1.0, m.at(3, 1).re)
	assert.Equal(t, entry{}, m.at(3, 2))

	finite := NewOpAmp("XU2", []string{"in", "out", "out"}, 1e5)
	finite.SetNodes([]int{1, 2, 2})
	finite.SetBranchIndex(3)

	m = newRecorder()
	require.NoError(t, finite.Stamp(m, &CircuitStatus{Mode: ACAnalysis}))
	assert.Equal(t, 1e5, m.at(3, 1).re)
	assert.Equal(t, -1e5-1, m.at(3, 2).re)

	bad := NewOpAmp("XU3", []string{"a", "b"}, 0)
	assert.Error(t, bad.Stamp(m, &CircuitStatus{}))
}

func TestSymbolicStamps_RCLowpass(t *testing.T) {
	// V1 in 0, R1 in out, C1 out 0: nodes in=1, out=2, branch 3.
	v := NewDCVoltageSource("V1", []string{"in", "0"}, 0)
	v.SetNodes([]int{1, 0})
	v.SetBranchIndex(3)
	r := NewResistor("R1", []string{"in", "out"}, 1e3)
	r.SetNodes([]int{1, 2})
	c := NewCapacitor("C1", []string{"out", "0"}, 1e-6)
	c.SetNodes([]int{2, 0})

	m := matrix.NewSymbolic(3)
	for _, d := range []SymbolicElement{v, r, c} {
		require.NoError(t, d.StampSymbolic(m))
	}
	m.AddRHSPoly(3, poly.Const(1))

	den, err := m.Det()
	require.NoError(t, err)
	num, err := m.Cramer(2)
	require.NoError(t, err)

	h, err := poly.Rational{Num: num, Den: den}.Reduce(1e-6)
	require.NoError(t, err)
	require.Len(t, h.Den, 2)
	assert.InDelta(t, 1, h.Num[0], 1e-9)
	assert.InDelta(t, 1e-3, h.Den[1], 1e-12)
}
