package analysis

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-schematic/pkg/netlist"
)

func parse(t *testing.T, deck string) *netlist.NetlistData {
	t.Helper()
	data, err := netlist.Parse(deck)
	require.NoError(t, err)
	return data
}

func transfer(t *testing.T, deck, out, ref, in string) *TransferFunction {
	t.Helper()
	tf, err := Transfer(parse(t, deck), netlist.TFParam{Output: out, Reference: ref, Input: in})
	require.NoError(t, err)
	return tf
}

const rcLowpass = `rc
V1 in 0 AC 1
R1 in out 1k
C1 out 0 1u
`

func TestTransfer_RCLowpass(t *testing.T) {
	tf := transfer(t, rcLowpass, "out", "", "")

	assert.Equal(t, "V1", tf.Input)
	require.Len(t, tf.H.Num, 1)
	require.Len(t, tf.H.Den, 2)
	assert.InDelta(t, 1, tf.H.Num[0], 1e-9)
	assert.InDelta(t, 1, tf.H.Den[0], 1e-12)
	assert.InDelta(t, 1e-3, tf.H.Den[1], 1e-12)
	assert.InDelta(t, 1, tf.DCGain, 1e-9)

	require.Len(t, tf.Poles, 1)
	assert.InDelta(t, -1000, real(tf.Poles[0]), 1e-6)
	assert.Empty(t, tf.Zeros)

	// -3 dB at the corner
	fc := 1 / (2 * math.Pi * 1e-3)
	assert.InDelta(t, 1/math.Sqrt2, cmplx.Abs(tf.At(fc)), 1e-9)
	assert.Contains(t, tf.String(), "V(out)/V1")
}

func TestTransfer_RLHighpass(t *testing.T) {
	tf := transfer(t, `rl
V1 in 0 1
R1 in out 100
L1 out 0 10m
`, "out", "", "V1")

	tau := 10e-3 / 100
	require.Len(t, tf.H.Num, 2)
	require.Len(t, tf.H.Den, 2)
	assert.InDelta(t, 0, tf.H.Num[0], 1e-12)
	assert.InDelta(t, tau, tf.H.Num[1], 1e-12)
	assert.InDelta(t, 1, tf.H.Den[0], 1e-12)
	assert.InDelta(t, tau, tf.H.Den[1], 1e-12)
	assert.InDelta(t, 0, tf.DCGain, 1e-12)

	require.Len(t, tf.Zeros, 1)
	assert.InDelta(t, 0, cmplx.Abs(tf.Zeros[0]), 1e-6)
	require.Len(t, tf.Poles, 1)
	assert.InDelta(t, -1/tau, real(tf.Poles[0]), 1e-6)
}

func TestTransfer_OpAmps(t *testing.T) {
	tests := []struct {
		name string
		deck string
		in   string
		want float64
	}{
		{
			name: "inverting",
			deck: `inv
V1 in 0 1
R1 in n 1k
R2 n out 10k
XU1 0 n out OPAMP
`,
			want: -10,
		},
		{
			name: "non-inverting",
			deck: `noninv
V1 in 0 1
R1 n 0 1k
R2 n out 3k
XU1 in n out OPAMP
`,
			want: 4,
		},
		{
			name: "finite gain follower",
			deck: `follower
V1 in 0 1
XU1 in out out OPAMP gain=1000
RL out 0 10k
`,
			want: 1000.0 / 1001.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := transfer(t, tt.deck, "out", "", "")
			assert.InDelta(t, tt.want, tf.DCGain, 1e-9)
			assert.Empty(t, tf.Poles)
			assert.InDelta(t, tt.want, real(tf.At(1e3)), 1e-9)
		})
	}
}

func TestTransfer_DifferentialOutput(t *testing.T) {
	tf := transfer(t, `divider
V1 a 0 1
R1 a b 1k
R2 b 0 1k
`, "a", "b", "V1")
	assert.InDelta(t, 0.5, tf.DCGain, 1e-12)
}

func TestTransfer_OtherSourcesShorted(t *testing.T) {
	// V2 is zeroed, so R2 returns to ground through it.
	tf := transfer(t, `two sources
V1 a 0 1
V2 c 0 5
R1 a b 1k
R2 b c 1k
`, "b", "", "V1")
	assert.InDelta(t, 0.5, tf.DCGain, 1e-12)
}

func TestTransfer_Errors(t *testing.T) {
	data := parse(t, rcLowpass)

	_, err := Transfer(data, netlist.TFParam{Output: "nowhere"})
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = Transfer(data, netlist.TFParam{Output: "out", Input: "R1"})
	assert.ErrorIs(t, err, ErrNoInput)

	passive := parse(t, "p\nR1 a 0 1k\n")
	_, err = Transfer(passive, netlist.TFParam{Output: "a"})
	assert.ErrorIs(t, err, ErrNoInput)

	two := parse(t, "p\nV1 a 0 1\nV2 b 0 1\nR1 a b 1k\n")
	_, err = Transfer(two, netlist.TFParam{Output: "a"})
	assert.ErrorIs(t, err, ErrNoInput)

	// Nothing drives node f.
	floating := parse(t, "f\nV1 a 0 1\nR1 a 0 1k\nXU1 f 0 out OPAMP\n")
	_, err = Transfer(floating, netlist.TFParam{Output: "out", Input: "V1"})
	assert.ErrorIs(t, err, ErrSingular)
}

func TestAC_MatchesTransferFunction(t *testing.T) {
	data := parse(t, rcLowpass+".ac DEC 5 10 100k\n")
	tf := transfer(t, rcLowpass, "out", "", "V1")

	analyzer, err := Run(data, netlist.AnalysisAC)
	require.NoError(t, err)

	res := analyzer.GetResults()
	freqs := res["FREQ"]
	require.Len(t, freqs, 21)
	assert.InDelta(t, 10, freqs[0], 1e-9)
	assert.InDelta(t, 1e5, freqs[len(freqs)-1], 1e-6)

	for i, f := range freqs {
		h := tf.At(f)
		assert.InDelta(t, cmplx.Abs(h), res["V(out)_MAG"][i], 1e-9, "f=%g", f)
		assert.InDelta(t, cmplx.Phase(h)*180/math.Pi, res["V(out)_PHASE"][i], 1e-6, "f=%g", f)
		assert.InDelta(t, 1, res["V(in)_MAG"][i], 1e-12)
	}
}

func TestOP_Divider(t *testing.T) {
	data := parse(t, `divider
Vsrc 1 0 10
R1 1 2 1k
R2 2 0 1k
L1 2 3 1m
C1 3 0 1u
.op
`)
	analyzer, err := Run(data, netlist.AnalysisOP)
	require.NoError(t, err)

	res := analyzer.GetResults()
	assert.InDelta(t, 10, res["V(1)"][0], 1e-6)
	assert.InDelta(t, 5, res["V(2)"][0], 1e-6)
	assert.InDelta(t, 5, res["V(3)"][0], 1e-6)
	assert.InDelta(t, 5e-3, res["I(R1)"][0], 1e-9)
}

func TestTF_ResultTable(t *testing.T) {
	data := parse(t, rcLowpass+".tf V(out) V1\n")
	analyzer, err := Run(data, netlist.AnalysisTF)
	require.NoError(t, err)

	res := analyzer.GetResults()
	assert.InDelta(t, 1, res["DCGAIN"][0], 1e-9)
	assert.InDelta(t, -1000, res["POLE_RE"][0], 1e-6)
	assert.Len(t, res["DEN"], 2)
}

func TestGenerateFrequencies(t *testing.T) {
	dec, err := GenerateFrequencies("DEC", 10, 1, 1e3)
	require.NoError(t, err)
	assert.Len(t, dec, 31)
	assert.InDelta(t, 10, dec[10], 1e-9)
	assert.Equal(t, 1e3, dec[30])

	oct, err := GenerateFrequencies("OCT", 1, 100, 800)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100, 200, 400, 800}, oct, 1e-9)

	lin, err := GenerateFrequencies("LIN", 5, 0.5, 2.5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1, 1.5, 2, 2.5}, lin, 1e-12)

	one, err := GenerateFrequencies("DEC", 10, 50, 50)
	require.NoError(t, err)
	assert.Equal(t, []float64{50}, one)

	_, err = GenerateFrequencies("LOG", 10, 1, 10)
	assert.Error(t, err)
	_, err = GenerateFrequencies("DEC", 10, 0, 10)
	assert.Error(t, err)
}

func TestResponse(t *testing.T) {
	tf := transfer(t, rcLowpass, "out", "", "")
	pts := tf.Response([]float64{1, 1 / (2 * math.Pi * 1e-3)})
	require.Len(t, pts, 2)
	assert.InDelta(t, 0, pts[0].DB, 1e-3)
	assert.InDelta(t, -3.0103, pts[1].DB, 1e-3)
	assert.InDelta(t, -45, pts[1].Phase, 1e-6)
}
