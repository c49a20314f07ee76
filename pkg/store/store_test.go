package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-schematic/internal/logging"
	"github.com/edp1096/toy-schematic/pkg/workspace"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateLoad(t *testing.T) {
	s := openTest(t)

	d, err := s.Create("rc filter")
	require.NoError(t, err)
	assert.Len(t, d.ID, 36)
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)

	got, err := s.Load(d.ID)
	require.NoError(t, err)
	assert.Equal(t, "rc filter", got.Name)
	assert.Equal(t, d.ID, got.ID)
	assert.Empty(t, got.State.Current.Items)
}

func TestStore_SaveKeepsState(t *testing.T) {
	s := openTest(t)
	clock := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return clock }

	d, err := s.Create("x")
	require.NoError(t, err)

	d.State = workspace.State{
		Current: workspace.Snapshot{
			Items: []workspace.PlacedItem{{ID: "1", Type: "resistor", Ref: "R1", X: 10, Y: 20, Value: 1e3}},
			Wires: []workspace.Wire{},
		},
		LastID: 1,
	}
	clock = clock.Add(time.Minute)
	require.NoError(t, s.Save(d))

	got, err := s.Load(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.State.Current.Items, got.State.Current.Items)
	assert.Equal(t, int64(1), got.State.LastID)
	assert.Equal(t, clock, got.UpdatedAt)
	assert.True(t, got.CreatedAt.Before(got.UpdatedAt))
}

func TestStore_SaveAssignsID(t *testing.T) {
	s := openTest(t)
	d := &Design{Name: "fresh"}
	require.NoError(t, s.Save(d))
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestStore_ListAndDelete(t *testing.T) {
	s := openTest(t)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	a, err := s.Create("a")
	require.NoError(t, err)
	b, err := s.Create("b")
	require.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, "b", list[1].Name)

	require.NoError(t, s.Delete(a.ID))
	_, err = s.Load(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(a.ID), ErrNotFound)

	list, err = s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestStore_LoadMissing(t *testing.T) {
	s := openTest(t)
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_OpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestStore_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Path = dir
	cfg.SyncWrites = false
	cfg.Logger = logging.Discard()

	s, err := Open(cfg)
	require.NoError(t, err)
	d, err := s.Create("disk")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(d.ID)
	require.NoError(t, err)
	assert.Equal(t, "disk", got.Name)
}

func TestStore_RunGCStopsWithContext(t *testing.T) {
	s := openTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.RunGC(ctx, time.Millisecond, 0.5, logging.Discard()))
}
