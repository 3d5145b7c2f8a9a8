// Package sqlite implements the SQLite store backend for menagerie. Each
// Backend owns a private in-memory database named after a fresh UUID; nothing
// is written to disk and the data is gone once the Backend is closed.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// Compile-time contract assertion.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on top of SQLite.
type Backend struct {
	mu     sync.RWMutex
	closed bool
	id     string
	db     *sql.DB

	zoos    *zoosTable
	animals *animalsTable
}

// Open creates a new in-memory database, applies the schema, and returns the
// Backend. The caller must Close it.
func Open() (*Backend, error) {
	id := uuid.Must(uuid.NewV7()).String()
	dsn := fmt.Sprintf("file:menagerie-%s?mode=memory&cache=shared", id)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection keeps the in-memory database alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	b := &Backend{id: id, db: db}
	b.zoos = &zoosTable{backend: b}
	b.animals = &animalsTable{backend: b}
	return b, nil
}

// ID returns the unique name of the backing database.
func (b *Backend) ID() string {
	return b.id
}

// NextKey increments the key sequence row and returns the new value.
func (b *Backend) NextKey() (types.Key, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, types.ErrStoreClosed
	}

	var key int64
	err := b.db.QueryRow(
		"UPDATE key_sequence SET last_key = last_key + 1 WHERE id = 1 RETURNING last_key",
	).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("issuing key: %w", err)
	}
	return types.Key(key), nil
}

// InsertZoo appends row to the zoos table.
func (b *Backend) InsertZoo(row types.ZooRow) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}
	return b.zoos.insert(row)
}

// InsertAnimal appends row to the animals table.
func (b *Backend) InsertAnimal(row types.AnimalRow) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}
	return b.animals.insert(row)
}

// GetZoo returns the zoo with the given key or ErrNotFound.
func (b *Backend) GetZoo(key types.Key) (types.ZooRow, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return types.ZooRow{}, types.ErrStoreClosed
	}
	return b.zoos.get(key)
}

// GetAnimal returns the animal with the given key or ErrNotFound.
func (b *Backend) GetAnimal(key types.Key) (types.AnimalRow, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return types.AnimalRow{}, types.ErrStoreClosed
	}
	return b.animals.get(key)
}

// GetAnimalsByZoo returns the animals owned by zooKey in append order. Keys
// need not follow it: a writer may append after a later key was issued.
func (b *Backend) GetAnimalsByZoo(zooKey types.Key) ([]types.AnimalRow, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}
	return b.animals.byZoo(zooKey)
}

// Close closes the connection, which drops the in-memory database.
// Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	return nil
}
