// Package schematic turns a drawn workspace into nets and analysis
// elements.
package schematic

import (
	"fmt"
	"strings"

	"github.com/edp1096/toy-schematic/internal/consts"
	"github.com/edp1096/toy-schematic/pkg/component"
	"github.com/edp1096/toy-schematic/pkg/geometry"
	"github.com/edp1096/toy-schematic/pkg/netlist"
	"github.com/edp1096/toy-schematic/pkg/workspace"
)

const GroundNet = "0"

type IssueCode string

const (
	IssueNoGround        IssueCode = "no-ground"
	IssueNoSource        IssueCode = "no-source"
	IssueUnconnectedPort IssueCode = "unconnected-port"
	IssueUnknownType     IssueCode = "unknown-type"
	IssueBadValue        IssueCode = "bad-value"
	IssueDanglingWire    IssueCode = "dangling-wire"
	IssueDuplicateLabel  IssueCode = "duplicate-label"
)

// Issue is an electrical rule warning. Issues never stop resolution.
type Issue struct {
	Code    IssueCode `json:"code"`
	Item    string    `json:"item,omitempty"`
	Port    string    `json:"port,omitempty"`
	Message string    `json:"message"`
}

type Net struct {
	Name  string              `json:"name"`
	Ports []workspace.PortRef `json:"ports"`
}

type Result struct {
	Entries  []workspace.NetlistEntry `json:"entries"`
	Elements []netlist.Element        `json:"elements"`
	Nets     []Net                    `json:"nets"`
	Issues   []Issue                  `json:"issues"`
}

// Netlist wraps the elements in a deck without analyses.
func (r *Result) Netlist(title string) *netlist.NetlistData {
	return &netlist.NetlistData{Title: title, Elements: r.Elements}
}

// NetOf returns the net name of a port.
func (r *Result) NetOf(ref workspace.PortRef) (string, bool) {
	for _, n := range r.Nets {
		for _, p := range n.Ports {
			if p == ref {
				return n.Name, true
			}
		}
	}
	return "", false
}

type placedPort struct {
	ref  workspace.PortRef
	spec component.Port
	pos  geometry.Point
}

type resolver struct {
	snap   workspace.Snapshot
	set    *disjointSet
	ports  []placedPort // item order, then port order
	byKey  map[string]placedPort
	specs  map[string]component.Spec
	wired  map[string]bool
	issues []Issue
}

// Resolve groups every port of the snapshot into nets, names them and
// derives one analysis element per electrical item.
func Resolve(snap workspace.Snapshot) *Result {
	r := &resolver{
		snap:  snap,
		set:   newDisjointSet(),
		byKey: map[string]placedPort{},
		specs: map[string]component.Spec{},
		wired: map[string]bool{},
	}

	r.collectPorts()
	r.joinWires()
	names := r.nameNets()

	res := &Result{Nets: r.nets(names)}
	res.Entries = r.entries(names)
	res.Elements = r.elements(names)
	r.check(res)
	res.Issues = r.issues
	if res.Issues == nil {
		res.Issues = []Issue{}
	}
	return res
}

func (r *resolver) issue(code IssueCode, item, port, format string, args ...any) {
	r.issues = append(r.issues, Issue{Code: code, Item: item, Port: port, Message: fmt.Sprintf(format, args...)})
}

func (r *resolver) collectPorts() {
	for _, it := range r.snap.Items {
		spec, ok := component.LookupType(it.Type)
		if !ok {
			r.issue(IssueUnknownType, it.ID, "", "unknown component type %q", it.Type)
			continue
		}
		r.specs[it.ID] = spec
		for _, p := range spec.Ports {
			pp := placedPort{
				ref:  workspace.PortRef{Component: it.ID, Port: p.Name},
				spec: p,
				pos:  it.Position().Add(p.Offset),
			}
			r.ports = append(r.ports, pp)
			r.byKey[pp.ref.Key()] = pp
			r.set.add(pp.ref.Key())
		}
	}
}

// joinWires unions each wire's ends, then merges wires whose vertex lies
// on another wire's segment. Crossings without a shared vertex stay apart.
func (r *resolver) joinWires() {
	type placedWire struct {
		key      string
		vertices []geometry.Point
	}
	var wires []placedWire

	for _, w := range r.snap.Wires {
		from, okFrom := r.byKey[w.From.Key()]
		to, okTo := r.byKey[w.To.Key()]
		if !okFrom || !okTo {
			r.issue(IssueDanglingWire, w.ID, "", "wire %s references a missing port", w.ID)
			continue
		}
		r.set.union(from.ref.Key(), to.ref.Key())
		r.wired[from.ref.Key()] = true
		r.wired[to.ref.Key()] = true

		vertices := make([]geometry.Point, 0, len(w.Points)+2)
		vertices = append(vertices, from.pos)
		vertices = append(vertices, w.Points...)
		vertices = append(vertices, to.pos)
		wires = append(wires, placedWire{key: from.ref.Key(), vertices: vertices})
	}

	for i, a := range wires {
		for j, b := range wires {
			if i == j {
				continue
			}
			if touchesAny(a.vertices, geometry.Polyline(b.vertices)) {
				r.set.union(a.key, b.key)
			}
		}
	}
}

func touchesAny(vertices []geometry.Point, segs []geometry.Segment) bool {
	for _, v := range vertices {
		for _, s := range segs {
			if s.Touches(v, consts.NET_TOLERANCE) {
				return true
			}
		}
	}
	return false
}

// nameNets maps each net root to its name.
func (r *resolver) nameNets() map[string]string {
	names := map[string]string{}
	used := map[string]bool{GroundNet: true}

	for _, p := range r.ports {
		if p.spec.Role == component.RoleGround {
			names[r.set.find(p.ref.Key())] = GroundNet
		}
	}

	for _, it := range r.snap.Items {
		label := strings.TrimSpace(it.Label)
		spec, ok := r.specs[it.ID]
		if !ok || spec.Kind != component.KindNode || label == "" {
			continue
		}
		root := r.set.find(workspace.PortRef{Component: it.ID, Port: spec.Ports[0].Name}.Key())
		if _, named := names[root]; named {
			continue
		}
		if used[label] || netlist.IsGround(label) {
			r.issue(IssueDuplicateLabel, it.ID, "", "label %q is already used by another net", label)
			continue
		}
		names[root] = label
		used[label] = true
	}

	next := 1
	for _, p := range r.ports {
		root := r.set.find(p.ref.Key())
		if _, named := names[root]; named {
			continue
		}
		for used[fmt.Sprintf("N%d", next)] {
			next++
		}
		name := fmt.Sprintf("N%d", next)
		names[root] = name
		used[name] = true
	}

	return names
}

func (r *resolver) netName(names map[string]string, ref workspace.PortRef) string {
	return names[r.set.find(ref.Key())]
}

func (r *resolver) nets(names map[string]string) []Net {
	var out []Net
	index := map[string]int{}
	for _, p := range r.ports {
		name := r.netName(names, p.ref)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Net{Name: name})
		}
		out[i].Ports = append(out[i].Ports, p.ref)
	}
	if out == nil {
		out = []Net{}
	}
	return out
}

func (r *resolver) entries(names map[string]string) []workspace.NetlistEntry {
	entries := make([]workspace.NetlistEntry, 0, len(r.snap.Items))
	for _, it := range r.snap.Items {
		e := workspace.NetlistEntry{PlacedItem: it}
		if spec, ok := r.specs[it.ID]; ok && len(spec.Ports) > 0 {
			e.Nodes = make(map[string]string, len(spec.Ports))
			for _, p := range spec.Ports {
				e.Nodes[p.Name] = r.netName(names, workspace.PortRef{Component: it.ID, Port: p.Name})
			}
			e.IDPlus = e.Nodes[spec.Ports[0].Name]
			if len(spec.Ports) > 1 {
				e.IDMinus = e.Nodes[spec.Ports[1].Name]
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// ElementName is the SPICE letter followed by the reference, unless the
// reference already starts with the letter.
func ElementName(spec component.Spec, it workspace.PlacedItem) string {
	ref := it.Ref
	if ref == "" {
		ref = it.ID
	}
	if strings.HasPrefix(strings.ToUpper(ref), spec.Letter) {
		return ref
	}
	return spec.Letter + ref
}

func (r *resolver) elements(names map[string]string) []netlist.Element {
	elements := make([]netlist.Element, 0, len(r.snap.Items))
	for _, it := range r.snap.Items {
		spec, ok := r.specs[it.ID]
		if !ok || !spec.HasElement() {
			continue
		}

		value := spec.ValueOrDefault(it.Value)
		switch spec.Kind {
		case component.KindResistor, component.KindInductor, component.KindCapacitor:
			if value <= 0 {
				r.issue(IssueBadValue, it.ID, "", "%s value must be positive, got %g", spec.Kind, value)
				continue
			}
		case component.KindOpAmp:
			if value < 0 {
				r.issue(IssueBadValue, it.ID, "", "op-amp gain must not be negative, got %g", value)
				continue
			}
		}

		e := netlist.Element{
			Type:   spec.Letter,
			Name:   ElementName(spec, it),
			Params: map[string]string{},
		}
		for _, p := range spec.Ports {
			e.Nodes = append(e.Nodes, r.netName(names, workspace.PortRef{Component: it.ID, Port: p.Name}))
		}

		switch spec.Kind {
		case component.KindSource:
			// The drawn value is the small-signal amplitude.
			e.Params["ac"] = netlist.FormatValue(value)
		case component.KindOpAmp:
			e.Params["model"] = "OPAMP"
			e.Value = value
		default:
			e.Value = value
		}
		elements = append(elements, e)
	}
	return elements
}

func (r *resolver) check(res *Result) {
	hasGround, hasSource := false, false
	for _, p := range r.ports {
		if p.spec.Role == component.RoleGround {
			hasGround = true
		}
		if !r.wired[p.ref.Key()] {
			r.issue(IssueUnconnectedPort, p.ref.Component, p.ref.Port, "port %s is not wired", p.ref.Key())
		}
	}
	for _, e := range res.Elements {
		if e.Type == "V" {
			hasSource = true
		}
	}

	if len(r.ports) == 0 {
		return
	}
	if !hasGround {
		r.issue(IssueNoGround, "", "", "schematic has no ground")
	}
	if !hasSource {
		r.issue(IssueNoSource, "", "", "schematic has no source")
	}
}
