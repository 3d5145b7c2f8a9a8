package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/mesh-intelligence/menagerie/internal/storetest"
	"github.com/mesh-intelligence/menagerie/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.Store {
		return NewStore()
	})
}

func TestStoreLen(t *testing.T) {
	s := NewStore()
	defer s.Close()

	zoos, animals := s.Len()
	assert.Zero(t, zoos)
	assert.Zero(t, animals)

	assert.NoError(t, s.InsertZoo(types.ZooRow{Key: 1, Name: "Artis"}))
	assert.NoError(t, s.InsertAnimal(types.AnimalRow{ZooKey: 1, Key: 2, Name: "Jaws", Variant: types.VariantShark}))
	assert.NoError(t, s.InsertAnimal(types.AnimalRow{ZooKey: 1, Key: 3, Name: "Bruce", Variant: types.VariantShark}))

	zoos, animals = s.Len()
	assert.Equal(t, 1, zoos)
	assert.Equal(t, 2, animals)
}

func TestStoreCloseReleasesRows(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.InsertZoo(types.ZooRow{Key: 1, Name: "Artis"}))
	assert.NoError(t, s.Close())

	zoos, animals := s.Len()
	assert.Zero(t, zoos)
	assert.Zero(t, animals)
}
