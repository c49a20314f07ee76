// Package component defines the component taxonomy placed on a schematic:
// the kinds, their ports and the rules deciding which ports may be wired.
package component

import (
	"strings"

	"github.com/edp1096/toy-schematic/pkg/geometry"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindResistor
	KindInductor
	KindCapacitor
	KindOpAmp
	KindNode
	KindWire
	KindGround
	KindSource
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindResistor:  "resistor",
	KindInductor:  "inductor",
	KindCapacitor: "capacitor",
	KindOpAmp:     "opamp",
	KindNode:      "node",
	KindWire:      "wire",
	KindGround:    "ground",
	KindSource:    "source",
}

// Aliases used by the canvas palette.
var kindAliases = map[string]Kind{
	"r":            KindResistor,
	"resistance":   KindResistor,
	"l":            KindInductor,
	"bobine":       KindInductor,
	"inductance":   KindInductor,
	"c":            KindCapacitor,
	"condensateur": KindCapacitor,
	"aop":          KindOpAmp,
	"op-amp":       KindOpAmp,
	"ampliop":      KindOpAmp,
	"noeud":        KindNode,
	"junction":     KindNode,
	"fil":          KindWire,
	"link":         KindWire,
	"gnd":          KindGround,
	"masse":        KindGround,
	"v":            KindSource,
	"generateur":   KindSource,
	"vsource":      KindSource,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// ParseKind resolves a canonical name or palette alias, ignoring case.
func ParseKind(s string) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if k != KindUnknown && name == key {
			return k, true
		}
	}
	if k, ok := kindAliases[key]; ok {
		return k, true
	}
	return KindUnknown, false
}

// Kinds lists every placeable kind in palette order.
func Kinds() []Kind {
	return []Kind{KindResistor, KindInductor, KindCapacitor, KindOpAmp, KindNode, KindGround, KindSource}
}

type Role int

const (
	RolePassive Role = iota
	RoleInput
	RoleDriver
	RoleJunction
	RoleGround
)

func (r Role) String() string {
	switch r {
	case RolePassive:
		return "passive"
	case RoleInput:
		return "input"
	case RoleDriver:
		return "driver"
	case RoleJunction:
		return "junction"
	case RoleGround:
		return "ground"
	default:
		return "unknown"
	}
}

// Port is a connection point, offset from the item position.
type Port struct {
	Name   string         `json:"name"`
	Role   Role           `json:"role"`
	Offset geometry.Point `json:"offset"`
}

// Spec describes one kind.
type Spec struct {
	Kind       Kind    `json:"kind"`
	Designator string  `json:"designator"` // reference prefix: R, L, C, U, V
	Letter     string  `json:"letter"`     // SPICE element letter, empty when the kind has no element
	Unit       string  `json:"unit"`
	Default    float64 `json:"default"`
	Symbol     string  `json:"symbol"`
	Ports      []Port  `json:"ports"`
}

var specs = map[Kind]Spec{
	KindResistor: {
		Kind: KindResistor, Designator: "R", Letter: "R", Unit: "Ω", Default: 1e3, Symbol: "R",
		Ports: []Port{
			{Name: "1", Role: RolePassive, Offset: geometry.Pt(0, 20)},
			{Name: "2", Role: RolePassive, Offset: geometry.Pt(80, 20)},
		},
	},
	KindInductor: {
		Kind: KindInductor, Designator: "L", Letter: "L", Unit: "H", Default: 1e-3, Symbol: "L",
		Ports: []Port{
			{Name: "1", Role: RolePassive, Offset: geometry.Pt(0, 20)},
			{Name: "2", Role: RolePassive, Offset: geometry.Pt(80, 20)},
		},
	},
	KindCapacitor: {
		Kind: KindCapacitor, Designator: "C", Letter: "C", Unit: "F", Default: 1e-6, Symbol: "C",
		Ports: []Port{
			{Name: "1", Role: RolePassive, Offset: geometry.Pt(0, 20)},
			{Name: "2", Role: RolePassive, Offset: geometry.Pt(80, 20)},
		},
	},
	KindOpAmp: {
		// Value is the open-loop gain. 0 means ideal.
		Kind: KindOpAmp, Designator: "U", Letter: "X", Unit: "V/V", Default: 0, Symbol: "AOP",
		Ports: []Port{
			{Name: "+", Role: RoleInput, Offset: geometry.Pt(0, 50)},
			{Name: "-", Role: RoleInput, Offset: geometry.Pt(0, 10)},
			{Name: "out", Role: RoleDriver, Offset: geometry.Pt(80, 30)},
		},
	},
	KindNode: {
		Kind: KindNode, Designator: "N", Symbol: "•",
		Ports: []Port{
			{Name: "n", Role: RoleJunction, Offset: geometry.Pt(0, 0)},
		},
	},
	KindGround: {
		Kind: KindGround, Designator: "GND", Symbol: "⏚",
		Ports: []Port{
			{Name: "gnd", Role: RoleGround, Offset: geometry.Pt(10, 0)},
		},
	},
	KindSource: {
		// Value is the AC magnitude.
		Kind: KindSource, Designator: "V", Letter: "V", Unit: "V", Default: 1, Symbol: "Ve",
		Ports: []Port{
			{Name: "+", Role: RoleDriver, Offset: geometry.Pt(20, 0)},
			{Name: "-", Role: RolePassive, Offset: geometry.Pt(20, 60)},
		},
	},
	KindWire: {
		Kind: KindWire, Designator: "W", Symbol: "—",
	},
}

// Lookup returns the spec of a kind.
func Lookup(k Kind) (Spec, bool) {
	s, ok := specs[k]
	return s, ok
}

// LookupType resolves a type string and returns its spec.
func LookupType(typ string) (Spec, bool) {
	k, ok := ParseKind(typ)
	if !ok {
		return Spec{}, false
	}
	return Lookup(k)
}

// Port returns the named port.
func (s Spec) Port(name string) (Port, bool) {
	for _, p := range s.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// PortIndex returns the position of the named port, or -1.
func (s Spec) PortIndex(name string) int {
	for i, p := range s.Ports {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// HasElement reports whether the kind becomes an analysis element.
func (s Spec) HasElement() bool {
	return s.Letter != ""
}

// ValueOrDefault substitutes the kind default for a zero value.
func (s Spec) ValueOrDefault(v float64) float64 {
	if v == 0 {
		return s.Default
	}
	return v
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
