// Package memory implements the in-memory store backend for menagerie. It is
// the default backend: two append-only tables and a key counter guarded by
// one lock, alive for as long as the Store value.
package memory

import (
	"sync"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// Compile-time contract assertion.
var _ types.Store = (*Store)(nil)

// Store holds the zoo and animal tables of one context. The counter and both
// tables share a single RWMutex, so key issuance and appends are one critical
// section and reads run concurrently with each other.
type Store struct {
	mu      sync.RWMutex
	closed  bool
	lastKey types.Key

	zoos    []types.ZooRow
	animals []types.AnimalRow

	// Positions into zoos and animals, keyed by row key.
	zooIndex    map[types.Key]int
	animalIndex map[types.Key]int
	// Positions into animals per owning zoo, in insertion order.
	byZoo map[types.Key][]int
}

// NewStore returns an empty store whose counter starts at zero.
func NewStore() *Store {
	return &Store{
		zooIndex:    make(map[types.Key]int),
		animalIndex: make(map[types.Key]int),
		byZoo:       make(map[types.Key][]int),
	}
}

// NextKey increments the shared counter and returns the new value.
func (s *Store) NextKey() (types.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrStoreClosed
	}
	s.lastKey++
	return s.lastKey, nil
}

// InsertZoo appends row to the zoo table.
func (s *Store) InsertZoo(row types.ZooRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	s.zooIndex[row.Key] = len(s.zoos)
	s.zoos = append(s.zoos, row)
	return nil
}

// InsertAnimal appends row to the animal table. The owning zoo is not
// required to exist.
func (s *Store) InsertAnimal(row types.AnimalRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	pos := len(s.animals)
	s.animalIndex[row.Key] = pos
	s.byZoo[row.ZooKey] = append(s.byZoo[row.ZooKey], pos)
	s.animals = append(s.animals, cloneAnimal(row))
	return nil
}

// GetZoo returns the zoo with the given key or ErrNotFound.
func (s *Store) GetZoo(key types.Key) (types.ZooRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.ZooRow{}, types.ErrStoreClosed
	}
	pos, ok := s.zooIndex[key]
	if !ok {
		return types.ZooRow{}, types.ErrNotFound
	}
	return s.zoos[pos], nil
}

// GetAnimal returns the animal with the given key or ErrNotFound.
func (s *Store) GetAnimal(key types.Key) (types.AnimalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.AnimalRow{}, types.ErrStoreClosed
	}
	pos, ok := s.animalIndex[key]
	if !ok {
		return types.AnimalRow{}, types.ErrNotFound
	}
	return cloneAnimal(s.animals[pos]), nil
}

// GetAnimalsByZoo returns the animals owned by zooKey in insertion order.
func (s *Store) GetAnimalsByZoo(zooKey types.Key) ([]types.AnimalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}
	positions := s.byZoo[zooKey]
	rows := make([]types.AnimalRow, 0, len(positions))
	for _, pos := range positions {
		rows = append(rows, cloneAnimal(s.animals[pos]))
	}
	return rows, nil
}

// Len returns the number of zoo and animal rows held by the store.
func (s *Store) Len() (zoos, animals int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zoos), len(s.animals)
}

// Close drops every row. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.zoos = nil
	s.animals = nil
	s.zooIndex = nil
	s.animalIndex = nil
	s.byZoo = nil
	return nil
}

// cloneAnimal copies row so callers cannot mutate stored speeds through the
// shared pointers.
func cloneAnimal(row types.AnimalRow) types.AnimalRow {
	row.WalkSpeed = cloneFloat(row.WalkSpeed)
	row.RunSpeed = cloneFloat(row.RunSpeed)
	row.SwimSpeed = cloneFloat(row.SwimSpeed)
	return row
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
