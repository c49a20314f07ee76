package component

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"resistor", KindResistor, true},
		{"Resistance", KindResistor, true},
		{"condensateur", KindCapacitor, true},
		{"bobine", KindInductor, true},
		{"AOP", KindOpAmp, true},
		{"opamp", KindOpAmp, true},
		{"noeud", KindNode, true},
		{"wire", KindWire, true},
		{"masse", KindGround, true},
		{"source", KindSource, true},
		{" capacitor ", KindCapacitor, true},
		{"transistor", KindUnknown, false},
		{"unknown", KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpecs_PlaceableKindsHavePorts(t *testing.T) {
	for _, k := range Kinds() {
		spec, ok := Lookup(k)
		require.True(t, ok, k.String())
		assert.NotEmpty(t, spec.Ports, k.String())
		assert.NotEmpty(t, spec.Designator, k.String())
	}

	wire, ok := Lookup(KindWire)
	require.True(t, ok)
	assert.Empty(t, wire.Ports)
	assert.False(t, wire.HasElement())
}

func TestSpec_PortLookup(t *testing.T) {
	spec, _ := Lookup(KindOpAmp)

	p, ok := spec.Port("out")
	require.True(t, ok)
	assert.Equal(t, RoleDriver, p.Role)
	assert.Equal(t, 2, spec.PortIndex("out"))
	assert.Equal(t, -1, spec.PortIndex("vcc"))
	assert.Equal(t, "X", spec.Letter)
}

func TestSpec_ValueOrDefault(t *testing.T) {
	r, _ := Lookup(KindResistor)
	assert.Equal(t, 1e3, r.ValueOrDefault(0))
	assert.Equal(t, 4.7e3, r.ValueOrDefault(4.7e3))
}

func TestKind_MarshalsAsName(t *testing.T) {
	data, err := json.Marshal(map[string]Kind{"k": KindCapacitor})
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"capacitor"}`, string(data))
}

func TestCheckConnection(t *testing.T) {
	r1 := func(port string) Endpoint { return Endpoint{Component: "r1", Kind: KindResistor, Port: port} }
	r2 := func(port string) Endpoint { return Endpoint{Component: "r2", Kind: KindResistor, Port: port} }
	u1 := func(port string) Endpoint { return Endpoint{Component: "u1", Kind: KindOpAmp, Port: port} }
	u2 := func(port string) Endpoint { return Endpoint{Component: "u2", Kind: KindOpAmp, Port: port} }
	v1 := func(port string) Endpoint { return Endpoint{Component: "v1", Kind: KindSource, Port: port} }
	gnd := Endpoint{Component: "g", Kind: KindGround, Port: "gnd"}
	node := Endpoint{Component: "n", Kind: KindNode, Port: "n"}

	tests := []struct {
		name string
		a, b Endpoint
		want error
	}{
		{"resistor to resistor", r1("2"), r2("1"), nil},
		{"resistor to ground", r2("2"), gnd, nil},
		{"node fan-in", node, r1("1"), nil},
		{"opamp out to feedback", u1("out"), r2("2"), nil},
		{"source minus to ground", v1("-"), gnd, nil},
		{"self loop", r1("1"), r1("1"), ErrSelfLoop},
		{"short own ports", r1("1"), r1("2"), ErrSameComponent},
		{"opamp out to own input", u1("out"), u1("-"), ErrSameComponent},
		{"two opamp outputs", u1("out"), u2("out"), ErrDriverConflict},
		{"source to opamp out", v1("+"), u1("out"), ErrDriverConflict},
		{"opamp out grounded", u1("out"), gnd, ErrDriverGrounded},
		{"source plus grounded", gnd, v1("+"), ErrDriverGrounded},
		{"unknown port", r1("3"), r2("1"), ErrUnknownPort},
		{"unknown kind", Endpoint{Component: "x", Kind: KindUnknown, Port: "1"}, r2("1"), ErrUnknownComponent},
		{"wire kind has no ports", Endpoint{Component: "w", Kind: KindWire, Port: "1"}, r2("1"), ErrUnknownComponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConnection(tt.a, tt.b)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
