// Package workspace tracks the components placed on a canvas, the wires
// between their ports and an undo/redo history of full snapshots.
package workspace

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/edp1096/toy-schematic/internal/logging"
	"github.com/edp1096/toy-schematic/pkg/component"
	"github.com/edp1096/toy-schematic/pkg/geometry"
)

// Manager is the placement and undo manager of one design. It is safe for
// concurrent use.
type Manager struct {
	mu     sync.Mutex
	cur    Snapshot
	undo   []Snapshot
	redo   []Snapshot
	limit  int
	lastID int64
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Manager)

// WithHistoryLimit keeps at most n undo snapshots. 0 means unbounded.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		cur:    Snapshot{Items: []PlacedItem{}, Netlist: []NetlistEntry{}, Wires: []Wire{}},
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromState rebuilds a manager, history included.
func NewFromState(s State, opts ...Option) *Manager {
	m := New(opts...)
	m.cur = s.Current.clone()
	for _, snap := range s.Undo {
		m.undo = append(m.undo, snap.clone())
	}
	for _, snap := range s.Redo {
		m.redo = append(m.redo, snap.clone())
	}
	m.lastID = s.LastID
	m.trim()
	return m
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{Current: m.cur.clone(), LastID: m.lastID}
	for _, snap := range m.undo {
		s.Undo = append(s.Undo, snap.clone())
	}
	for _, snap := range m.redo {
		s.Redo = append(s.Redo, snap.clone())
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.clone()
}

func (m *Manager) Items() []PlacedItem {
	return m.Snapshot().Items
}

func (m *Manager) Netlist() []NetlistEntry {
	return m.Snapshot().Netlist
}

func (m *Manager) Wires() []Wire {
	return m.Snapshot().Wires
}

func (m *Manager) Item(id string) (PlacedItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.Item(id)
}

func (m *Manager) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo)
}

func (m *Manager) RedoLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo)
}

// AddComponent records a snapshot and appends the item to both the placed
// items and the netlist. Missing id and ref are generated; nothing else is
// checked.
func (m *Manager) AddComponent(item PlacedItem) PlacedItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == "" {
		item.ID = m.nextID()
	}
	if item.Ref == "" {
		item.Ref = m.nextRef(item.Type)
	}

	m.push()
	m.cur.Items = append(m.cur.Items, item)
	m.cur.Netlist = append(m.cur.Netlist, NetlistEntry{PlacedItem: item})

	m.logger.Debug("component added", "id", item.ID, "type", item.Type, "ref", item.Ref)
	return item
}

// Drop places a component at a client point seen through the viewport.
func (m *Manager) Drop(typ string, client geometry.Point, view geometry.Viewport, src, symbol string) PlacedItem {
	pos := view.ToCanvas(client)
	return m.AddComponent(PlacedItem{
		Src:    src,
		X:      pos.X,
		Y:      pos.Y,
		Type:   typ,
		Symbol: symbol,
	})
}

// MoveComponent updates the coordinates of an item. Unknown ids are ignored.
func (m *Manager) MoveComponent(id string, x, y float64) bool {
	return m.mutateItem(id, func(it *PlacedItem) {
		it.X, it.Y = x, y
	})
}

func (m *Manager) SetValue(id string, value float64) bool {
	return m.mutateItem(id, func(it *PlacedItem) {
		it.Value = value
	})
}

func (m *Manager) SetLabel(id, label string) bool {
	return m.mutateItem(id, func(it *PlacedItem) {
		it.Label = label
	})
}

// RemoveComponent drops an item, its netlist entry and the wires attached
// to it. Unknown ids are ignored.
func (m *Manager) RemoveComponent(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cur.Item(id); !ok {
		return false
	}

	m.push()
	m.cur.Items = slices.DeleteFunc(m.cur.Items, func(it PlacedItem) bool { return it.ID == id })
	m.cur.Netlist = slices.DeleteFunc(m.cur.Netlist, func(e NetlistEntry) bool { return e.ID == id })
	m.cur.Wires = slices.DeleteFunc(m.cur.Wires, func(w Wire) bool { return w.Touches(id) })

	m.logger.Debug("component removed", "id", id)
	return true
}

// Connect validates and stores a wire.
func (m *Manager) Connect(w Wire) (Wire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, err := m.endpoint(w.From)
	if err != nil {
		return Wire{}, err
	}
	to, err := m.endpoint(w.To)
	if err != nil {
		return Wire{}, err
	}
	if err := component.CheckConnection(from, to); err != nil {
		return Wire{}, err
	}
	for _, existing := range m.cur.Wires {
		if existing.Joins(w.From, w.To) {
			return Wire{}, fmt.Errorf("%s and %s: %w", w.From.Key(), w.To.Key(), component.ErrDuplicateWire)
		}
	}

	w = w.clone()
	if w.ID == "" {
		w.ID = "w" + m.nextID()
	}

	m.push()
	m.cur.Wires = append(m.cur.Wires, w)

	m.logger.Debug("wire connected", "id", w.ID, "from", w.From.Key(), "to", w.To.Key())
	return w, nil
}

// Disconnect removes a wire. Unknown ids are ignored.
func (m *Manager) Disconnect(wireID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.cur.Wires, func(w Wire) bool { return w.ID == wireID })
	if idx < 0 {
		return false
	}

	m.push()
	m.cur.Wires = slices.Delete(m.cur.Wires, idx, idx+1)
	return true
}

// Undo restores the state saved before the last mutation. It reports
// false when there is nothing to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.undo)
	if n == 0 {
		return false
	}

	m.redo = append(m.redo, m.cur)
	m.cur = m.undo[n-1]
	m.undo = m.undo[:n-1]

	m.logger.Debug("undo", "history", len(m.undo))
	return true
}

// Redo reapplies the last undone mutation.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.redo)
	if n == 0 {
		return false
	}

	m.undo = append(m.undo, m.cur)
	m.cur = m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.trim()

	m.logger.Debug("redo", "history", len(m.undo))
	return true
}

func (m *Manager) mutateItem(id string, fn func(*PlacedItem)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.cur.Items, func(it PlacedItem) bool { return it.ID == id })
	if idx < 0 {
		return false
	}

	m.push()
	fn(&m.cur.Items[idx])
	for i := range m.cur.Netlist {
		if m.cur.Netlist[i].ID == id {
			m.cur.Netlist[i].PlacedItem = m.cur.Items[idx]
		}
	}
	return true
}

// push stores a deep copy of the current state and clears redo.
func (m *Manager) push() {
	m.undo = append(m.undo, m.cur.clone())
	m.redo = nil
	m.trim()
}

func (m *Manager) trim() {
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = slices.Clone(m.undo[len(m.undo)-m.limit:])
	}
}

// nextID returns a millisecond timestamp, bumped past the last issued id.
func (m *Manager) nextID() string {
	id := m.now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return strconv.FormatInt(id, 10)
}

func (m *Manager) nextRef(typ string) string {
	spec, ok := component.LookupType(typ)
	if !ok {
		return ""
	}

	used := make(map[string]bool, len(m.cur.Items))
	for _, it := range m.cur.Items {
		used[it.Ref] = true
	}
	for n := 1; ; n++ {
		ref := spec.Designator + strconv.Itoa(n)
		if !used[ref] {
			return ref
		}
	}
}

func (m *Manager) endpoint(ref PortRef) (component.Endpoint, error) {
	it, ok := m.cur.Item(ref.Component)
	if !ok {
		return component.Endpoint{}, fmt.Errorf("%s: %w", ref.Component, component.ErrUnknownComponent)
	}
	kind, _ := component.ParseKind(it.Type)
	return component.Endpoint{Component: it.ID, Kind: kind, Port: ref.Port}, nil
}
