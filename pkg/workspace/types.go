package workspace

import (
	"maps"
	"slices"

	"github.com/edp1096/toy-schematic/pkg/geometry"
)

// PlacedItem is a component instance positioned on the canvas.
type PlacedItem struct {
	ID     string  `json:"id"`
	Src    string  `json:"src,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Type   string  `json:"type"`
	Symbol string  `json:"symbol,omitempty"`
	Ref    string  `json:"ref,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Label  string  `json:"label,omitempty"`
}

func (p PlacedItem) Position() geometry.Point {
	return geometry.Pt(p.X, p.Y)
}

// NetlistEntry mirrors a placed item. IDPlus, IDMinus and Nodes name the
// nets of its ports once the schematic has been resolved.
type NetlistEntry struct {
	PlacedItem
	IDPlus  string            `json:"idPlus,omitempty"`
	IDMinus string            `json:"idMinus,omitempty"`
	Nodes   map[string]string `json:"nodes,omitempty"`
}

func (e NetlistEntry) clone() NetlistEntry {
	e.Nodes = maps.Clone(e.Nodes)
	return e
}

// PortRef addresses one port of a placed item.
type PortRef struct {
	Component string `json:"component" validate:"required"`
	Port      string `json:"port" validate:"required"`
}

func (r PortRef) Key() string {
	return r.Component + ":" + r.Port
}

// Wire links two ports. Points are the bend points between them.
type Wire struct {
	ID     string           `json:"id"`
	From   PortRef          `json:"from"`
	To     PortRef          `json:"to"`
	Points []geometry.Point `json:"points,omitempty"`
}

func (w Wire) clone() Wire {
	w.Points = slices.Clone(w.Points)
	return w
}

// Joins reports whether w links a and b in either direction.
func (w Wire) Joins(a, b PortRef) bool {
	return (w.From == a && w.To == b) || (w.From == b && w.To == a)
}

// Touches reports whether either end of w sits on the component.
func (w Wire) Touches(componentID string) bool {
	return w.From.Component == componentID || w.To.Component == componentID
}

// Snapshot is the full editable state of a workspace.
type Snapshot struct {
	Items   []PlacedItem   `json:"items"`
	Netlist []NetlistEntry `json:"netlist"`
	Wires   []Wire         `json:"wires"`
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Items:   slices.Clone(s.Items),
		Netlist: make([]NetlistEntry, len(s.Netlist)),
		Wires:   make([]Wire, len(s.Wires)),
	}
	if out.Items == nil {
		out.Items = []PlacedItem{}
	}
	for i, e := range s.Netlist {
		out.Netlist[i] = e.clone()
	}
	for i, w := range s.Wires {
		out.Wires[i] = w.clone()
	}
	return out
}

// Item returns the placed item with the given id.
func (s Snapshot) Item(id string) (PlacedItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return PlacedItem{}, false
}

// State is everything needed to rebuild a manager, history included.
type State struct {
	Current Snapshot   `json:"current"`
	Undo    []Snapshot `json:"undo,omitempty"`
	Redo    []Snapshot `json:"redo,omitempty"`
	LastID  int64      `json:"lastId"`
}
