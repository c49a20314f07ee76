package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/edp1096/toy-schematic/pkg/store"
	"github.com/edp1096/toy-schematic/pkg/workspace"
)

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrWireNotFound      = errors.New("wire not found")
)

type openDesign struct {
	mu     sync.Mutex
	design *store.Design
	mgr    *workspace.Manager

	// deleted is guarded by Designs.mu.
	deleted bool
}

// Designs keeps one workspace manager per open design and writes the
// manager state back to the store after every mutation. Store writes and
// deletes are serialized by mu, so a save never resurrects a deleted design.
type Designs struct {
	store        *store.Store
	historyLimit int
	logger       *slog.Logger
	metrics      *Metrics

	mu   sync.Mutex
	open map[string]*openDesign
}

func NewDesigns(st *store.Store, historyLimit int, logger *slog.Logger, metrics *Metrics) *Designs {
	return &Designs{
		store:        st,
		historyLimit: historyLimit,
		logger:       logger,
		metrics:      metrics,
		open:         make(map[string]*openDesign),
	}
}

func (s *Designs) newManager(state workspace.State) *workspace.Manager {
	return workspace.NewFromState(state,
		workspace.WithHistoryLimit(s.historyLimit),
		workspace.WithLogger(s.logger),
	)
}

func (s *Designs) Create(name string) (*store.Design, error) {
	d, err := s.store.Create(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.open[d.ID] = &openDesign{design: d, mgr: s.newManager(d.State)}
	s.metrics.openDesigns.Set(float64(len(s.open)))
	s.mu.Unlock()

	s.logger.Info("design created", "id", d.ID, "name", name)
	return d, nil
}

func (s *Designs) List() ([]store.Summary, error) {
	return s.store.List()
}

// get returns the cached design, loading it from the store on a miss.
func (s *Designs) get(id string) (*openDesign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if od, ok := s.open[id]; ok {
		return od, nil
	}

	d, err := s.store.Load(id)
	if err != nil {
		return nil, err
	}
	od := &openDesign{design: d, mgr: s.newManager(d.State)}
	s.open[id] = od
	s.metrics.openDesigns.Set(float64(len(s.open)))
	return od, nil
}

// View is a design with its current snapshot and history depth.
type View struct {
	store.Summary
	Snapshot workspace.Snapshot `json:"snapshot"`
	CanUndo  bool               `json:"canUndo"`
	CanRedo  bool               `json:"canRedo"`
}

func (od *openDesign) view() View {
	return View{
		Summary:  od.design.Summary(),
		Snapshot: od.mgr.Snapshot(),
		CanUndo:  od.mgr.HistoryLen() > 0,
		CanRedo:  od.mgr.RedoLen() > 0,
	}
}

func (s *Designs) Get(id string) (View, error) {
	od, err := s.get(id)
	if err != nil {
		return View{}, err
	}
	od.mu.Lock()
	defer od.mu.Unlock()
	return od.view(), nil
}

func (s *Designs) Snapshot(id string) (store.Summary, workspace.Snapshot, error) {
	od, err := s.get(id)
	if err != nil {
		return store.Summary{}, workspace.Snapshot{}, err
	}
	od.mu.Lock()
	defer od.mu.Unlock()
	return od.design.Summary(), od.mgr.Snapshot(), nil
}

func (s *Designs) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(id); err != nil {
		return err
	}
	if od, ok := s.open[id]; ok {
		od.deleted = true
		delete(s.open, id)
	}
	s.metrics.openDesigns.Set(float64(len(s.open)))

	s.logger.Info("design deleted", "id", id)
	return nil
}

// Mutate runs fn against the design's manager and persists the resulting
// state. Nothing is written when fn fails. When the write fails, or the
// design was deleted meanwhile, the manager is rolled back to the last
// persisted state.
func (s *Designs) Mutate(id string, fn func(m *workspace.Manager) error) (View, error) {
	od, err := s.get(id)
	if err != nil {
		return View{}, err
	}

	od.mu.Lock()
	defer od.mu.Unlock()

	if err := fn(od.mgr); err != nil {
		return View{}, err
	}

	if err := s.persist(od); err != nil {
		od.mgr = s.newManager(od.design.State)
		return View{}, err
	}
	return od.view(), nil
}

func (s *Designs) persist(od *openDesign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if od.deleted {
		return fmt.Errorf("%w: %s", store.ErrNotFound, od.design.ID)
	}

	prev := *od.design
	od.design.State = od.mgr.State()
	if err := s.store.Save(od.design); err != nil {
		*od.design = prev
		return fmt.Errorf("persist design %s: %w", od.design.ID, err)
	}
	return nil
}
