package netlist

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-schematic/pkg/device"
)

const rcDeck = `* RC low-pass
V1 in 0 DC 0 AC 1
R1 in out 1k ; series resistor
C1 out 0
+ 1uF
* the probe
.ac dec 10 1 1meg
.tf V(out) V1
.op
.end
R9 ignored after end 1
`

func TestParse_RCDeck(t *testing.T) {
	data, err := Parse(rcDeck)
	require.NoError(t, err)

	assert.Equal(t, "RC low-pass", data.Title)
	require.Len(t, data.Elements, 3)

	v1 := data.Elements[0]
	assert.Equal(t, "V", v1.Type)
	assert.Equal(t, []string{"in", "0"}, v1.Nodes)
	assert.Equal(t, "1", v1.Params["ac"])

	r1 := data.Elements[1]
	assert.Equal(t, "R", r1.Type)
	assert.InDelta(t, 1e3, r1.Value, 1e-9)

	c1 := data.Elements[2]
	assert.Equal(t, []string{"out", "0"}, c1.Nodes)
	assert.InDelta(t, 1e-6, c1.Value, 1e-18)

	assert.Equal(t, []AnalysisType{AnalysisAC, AnalysisTF, AnalysisOP}, data.Analyses)
	assert.Equal(t, ACParam{Sweep: "DEC", Points: 10, FStart: 1, FStop: 1e6}, data.ACParam)
	assert.Equal(t, TFParam{Output: "out", Input: "V1"}, data.TFParam)
	assert.True(t, data.Has(AnalysisTF))
}

func TestParse_OpAmpAndDifferentialProbe(t *testing.T) {
	data, err := Parse(`inverting
Vin in 0 1
R1 in n 1k
R2 n out 10k
XU1 0 n out opamp gain=100k
.tf v(out,n) Vin
`)
	require.NoError(t, err)

	x, ok := data.Element("xu1")
	require.True(t, ok)
	assert.Equal(t, "X", x.Type)
	assert.Equal(t, []string{"0", "n", "out"}, x.Nodes)
	assert.InDelta(t, 1e5, x.Value, 1e-6)

	vin, _ := data.Element("Vin")
	assert.Equal(t, 1.0, vin.Value)
	assert.Equal(t, TFParam{Output: "out", Reference: "n", Input: "Vin"}, data.TFParam)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		deck string
		line int
	}{
		{"bad value", "t\nR1 a b 1x2\n", 2},
		{"missing value", "t\n\nR1 a b\n", 3},
		{"unknown element", "t\nD1 a b 1\n", 2},
		{"unknown directive", "t\nR1 a 0 1\n.tran 1 2\n", 3},
		{"bad sweep", "t\n.ac log 10 1 100\n", 2},
		{"bad tf", "t\n.tf I(out) V1\n", 2},
		{"opamp model", "t\nX1 a b c LM741\n", 2},
		{"lexer", "t\nR1 a b 1k $\n", 2},
		{"duplicate", "t\nR1 a 0 1\nr1 b 0 1\n", 3},
		{"dangling continuation", "t\n+ 1k\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.deck)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.line, pe.Line)
		})
	}

	_, err := Parse("t\nQ1 c b e npn\n")
	assert.ErrorIs(t, err, ErrUnsupportedElement)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1k", 1e3},
		{"4.7K", 4.7e3},
		{"10uF", 10e-6},
		{"1meg", 1e6},
		{"1MEGohm", 1e6},
		{"2M", 2e-3},
		{"100n", 100e-9},
		{"3.3p", 3.3e-12},
		{"1e-3", 1e-3},
		{"-2.5", -2.5},
		{".5", 0.5},
		{"15", 15},
		{"1G", 1e9},
		{"1T", 1e12},
		{"5V", 5},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		require.NoError(t, err, tt.in)
		assert.InEpsilon(t, tt.want, got, 1e-12, tt.in)
	}

	for _, bad := range []string{"", "k1", "1.2.3", "abc"} {
		_, err := ParseValue(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1k", FormatValue(1e3))
	assert.Equal(t, "4.7k", FormatValue(4.7e3))
	assert.Equal(t, "1u", FormatValue(1e-6))
	assert.Equal(t, "2.2n", FormatValue(2.2e-9))
	assert.Equal(t, "1meg", FormatValue(1e6))
	assert.Equal(t, "100k", FormatValue(1e5))
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "-15", FormatValue(-15))
}

func TestWrite_RoundTrip(t *testing.T) {
	data, err := Parse(rcDeck + "")
	require.NoError(t, err)
	data.Elements = append(data.Elements,
		Element{Type: "X", Name: "XU1", Nodes: []string{"0", "out", "y"}, Value: 2e5},
		Element{Type: "L", Name: "L1", Nodes: []string{"y", "0"}, Value: 3.3e-3},
	)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, data))

	back, err := Parse(buf.String())
	require.NoError(t, err, buf.String())

	assert.Equal(t, data.Title, back.Title)
	assert.Equal(t, data.Analyses, back.Analyses)
	assert.Equal(t, data.ACParam, back.ACParam)
	assert.Equal(t, data.TFParam, back.TFParam)
	require.Len(t, back.Elements, len(data.Elements))
	for i, e := range data.Elements {
		got := back.Elements[i]
		assert.Equal(t, e.Type, got.Type)
		assert.Equal(t, e.Name, got.Name)
		assert.Equal(t, e.Nodes, got.Nodes)
		assert.InDelta(t, e.Value, got.Value, 1e-12*max(1, e.Value))
		assert.Equal(t, e.Params["ac"], got.Params["ac"])
	}
}

func TestCreateDevice(t *testing.T) {
	data, err := Parse(`devices
V1 in 0 DC 2 AC 1 45
R1 in a 1k tc1=1m
L1 a b 1m
C1 b 0 1n
XU1 b 0 out OPAMP
`)
	require.NoError(t, err)

	types := map[string]string{}
	for _, e := range data.Elements {
		dev, err := CreateDevice(e)
		require.NoError(t, err)
		types[dev.GetName()] = dev.GetType()

		switch d := dev.(type) {
		case *device.VoltageSource:
			assert.Equal(t, 2.0, d.DCValue())
			assert.Equal(t, 1.0, d.ACMagnitude())
			assert.Equal(t, 45.0, d.ACPhase())
		case *device.Resistor:
			assert.InDelta(t, 1e-3, d.Tc1, 1e-15)
		case *device.OpAmp:
			assert.True(t, d.Ideal())
		}
	}
	assert.Equal(t, map[string]string{"V1": "V", "R1": "R", "L1": "L", "C1": "C", "XU1": "X"}, types)

	_, err = CreateDevice(Element{Type: "Q", Name: "Q1"})
	assert.ErrorIs(t, err, ErrUnsupportedElement)
}

func TestParseProbe(t *testing.T) {
	out, ref, err := ParseProbe("V(out, n)")
	require.NoError(t, err)
	assert.Equal(t, "out", out)
	assert.Equal(t, "n", ref)

	out, ref, err = ParseProbe(" vout ")
	require.NoError(t, err)
	assert.Equal(t, "vout", out)
	assert.Empty(t, ref)

	out, _, err = ParseProbe("v(2)")
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	_, _, err = ParseProbe("I(V1)")
	assert.Error(t, err)
	_, _, err = ParseProbe("V(a,b,c)")
	assert.Error(t, err)
}
