// Package store persists designs in an embedded Badger database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/edp1096/toy-schematic/pkg/workspace"
)

var ErrNotFound = errors.New("design not found")

const designPrefix = "design/"

type Config struct {
	// Path is the database directory, ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

func DefaultConfig() Config {
	return Config{Path: "./data/designs", SyncWrites: true}
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Design is a named, persisted workspace.
type Design struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	State     workspace.State `json:"state"`
}

// Summary is a design without its state.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Design) Summary() Summary {
	return Summary{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

type Store struct {
	db       *badger.DB
	inMemory bool
	now      func() time.Time
}

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db, inMemory: cfg.InMemory, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(id string) []byte {
	return []byte(designPrefix + id)
}

// Create stores a new empty design and returns it.
func (s *Store) Create(name string) (*Design, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("design id: %w", err)
	}
	now := s.now().UTC()
	d := &Design{
		ID:        id.String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		State:     workspace.State{Current: workspace.Snapshot{Items: []workspace.PlacedItem{}}},
	}
	if err := s.put(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Save writes d, stamping UpdatedAt. A design without an id gets one.
func (s *Store) Save(d *Design) error {
	now := s.now().UTC()
	if d.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("design id: %w", err)
		}
		d.ID = id.String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	return s.put(d)
}

func (s *Store) put(d *Design) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode design %s: %w", d.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(d.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save design %s: %w", d.ID, err)
	}
	return nil
}

func (s *Store) Load(id string) (*Design, error) {
	var d Design
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &d)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load design %s: %w", id, err)
	}
	return &d, nil
}

// List returns every design summary, oldest first.
func (s *Store) List() ([]Summary, error) {
	out := []Summary{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(designPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var d Design
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &d)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, d.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(id)); err != nil {
			return err
		}
		return txn.Delete(key(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("delete design %s: %w", id, err)
	}
	return nil
}

// RunGC triggers value log garbage collection every interval until ctx
// ends. In-memory stores have no value log and return at once.
func (s *Store) RunGC(ctx context.Context, interval time.Duration, ratio float64, logger *slog.Logger) error {
	if interval <= 0 || s.inMemory {
		return nil
	}
	if ratio <= 0 || ratio >= 1 {
		return fmt.Errorf("gc discard ratio must be in (0, 1), got %g", ratio)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := s.db.RunValueLogGC(ratio)
			switch {
			case err == nil:
				logger.Debug("badger value log GC completed")
			case !errors.Is(err, badger.ErrNoRewrite):
				logger.Warn("badger value log GC error", slog.String("error", err.Error()))
			}
		}
	}
}
