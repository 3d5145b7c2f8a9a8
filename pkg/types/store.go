package types

import "errors"

// Store is one context: the zoo and animal tables plus the key counter they
// share. Tables are append-only; rows are never updated or deleted.
// Closing a store releases every entity it owns.
type Store interface {
	// NextKey issues a key strictly greater than every key issued before by
	// this store.
	NextKey() (Key, error)

	// InsertZoo appends a zoo row. No validation is performed.
	InsertZoo(row ZooRow) error

	// InsertAnimal appends an animal row. The owning zoo is not checked.
	InsertAnimal(row AnimalRow) error

	// GetZoo returns the zoo with the given key.
	// Returns ErrNotFound if no zoo has that key.
	GetZoo(key Key) (ZooRow, error)

	// GetAnimal returns the animal with the given key.
	// Returns ErrNotFound if no animal has that key.
	GetAnimal(key Key) (AnimalRow, error)

	// GetAnimalsByZoo returns every animal whose ZooKey matches, in
	// insertion order. The result is empty, not nil, when nothing matches.
	GetAnimalsByZoo(zooKey Key) ([]AnimalRow, error)

	// Close releases the store. Operations after Close return ErrStoreClosed.
	// Close is idempotent.
	Close() error
}

// Store operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrStoreClosed = errors.New("store is closed")
)

// Entity and mutation errors.
var (
	ErrUnknownVariant = errors.New("unknown animal variant")
	ErrZooNotFound    = errors.New("zoo not found")
)
