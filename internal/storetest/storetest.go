// Package storetest provides the behavioural tests every types.Store backend
// must pass. Backends call Run from their own _test.go files.
package storetest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// Factory opens a fresh, empty store. Run closes every store it opens.
type Factory func(t *testing.T) types.Store

// Run executes the store contract against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s types.Store)
	}{
		{"NextKeyStartsAtOneAndIncrements", testNextKey},
		{"ZooRoundTrip", testZooRoundTrip},
		{"AnimalRoundTrip", testAnimalRoundTrip},
		{"NotFound", testNotFound},
		{"AnimalsByZooInInsertionOrder", testAnimalsByZoo},
		{"AnimalsByZooInAppendOrderNotKeyOrder", testAnimalsByZooAppendOrder},
		{"AnimalsByZooEmptyNotNil", testAnimalsByZooEmpty},
		{"DanglingZooKeyAccepted", testDanglingZooKey},
		{"ReturnedRowsAreCopies", testReturnedRowsAreCopies},
		{"ConcurrentWritersNeverReuseKeys", testConcurrentWriters},
		{"ClosedStoreRejectsOperations", testClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func testNextKey(t *testing.T, s types.Store) {
	for want := types.Key(1); want <= 5; want++ {
		got, err := s.NextKey()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func testZooRoundTrip(t *testing.T, s types.Store) {
	key, err := s.NextKey()
	require.NoError(t, err)
	require.NoError(t, s.InsertZoo(types.ZooRow{Key: key, Name: "Blijdorp"}))

	got, err := s.GetZoo(key)
	require.NoError(t, err)
	assert.Equal(t, types.ZooRow{Key: key, Name: "Blijdorp"}, got)
}

func testAnimalRoundTrip(t *testing.T, s types.Store) {
	lion := types.AnimalRow{
		ZooKey:    1,
		Key:       2,
		Name:      "Simba",
		Variant:   types.VariantLion,
		WalkSpeed: ptr(1.0),
		RunSpeed:  ptr(2.0),
	}
	shark := types.AnimalRow{
		ZooKey:    1,
		Key:       3,
		Name:      "Jaws",
		Variant:   types.VariantShark,
		SwimSpeed: ptr(0.5),
	}
	require.NoError(t, s.InsertAnimal(lion))
	require.NoError(t, s.InsertAnimal(shark))

	got, err := s.GetAnimal(2)
	require.NoError(t, err)
	assert.Equal(t, lion, got)
	assert.Nil(t, got.SwimSpeed)

	got, err = s.GetAnimal(3)
	require.NoError(t, err)
	assert.Equal(t, shark, got)
	assert.Nil(t, got.WalkSpeed)
	assert.Nil(t, got.RunSpeed)
}

func testNotFound(t *testing.T, s types.Store) {
	_, err := s.GetZoo(99)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.GetAnimal(99)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// A zoo key is not an animal key, and vice versa.
	require.NoError(t, s.InsertZoo(types.ZooRow{Key: 1, Name: "Artis"}))
	_, err = s.GetAnimal(1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func testAnimalsByZoo(t *testing.T, s types.Store) {
	require.NoError(t, s.InsertZoo(types.ZooRow{Key: 1, Name: "Blijdorp"}))
	require.NoError(t, s.InsertZoo(types.ZooRow{Key: 2, Name: "Artis"}))
	names := []struct {
		zoo  types.Key
		key  types.Key
		name string
	}{
		{1, 3, "Simba"},
		{2, 4, "Jaws"},
		{1, 5, "Nala"},
		{1, 6, "Mufasa"},
	}
	for _, n := range names {
		require.NoError(t, s.InsertAnimal(types.AnimalRow{
			ZooKey:    n.zoo,
			Key:       n.key,
			Name:      n.name,
			Variant:   types.VariantLion,
			WalkSpeed: ptr(1),
			RunSpeed:  ptr(2),
		}))
	}

	rows, err := s.GetAnimalsByZoo(1)
	require.NoError(t, err)
	var got []string
	for _, r := range rows {
		got = append(got, r.Name)
	}
	assert.Equal(t, []string{"Simba", "Nala", "Mufasa"}, got)

	rows, err = s.GetAnimalsByZoo(2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jaws", rows[0].Name)
}

// Keys are issued and rows appended in separate calls, so a writer can append
// a row after a later key has already been stored.
func testAnimalsByZooAppendOrder(t *testing.T, s types.Store) {
	for _, n := range []struct {
		key  types.Key
		name string
	}{
		{6, "Mufasa"},
		{3, "Simba"},
		{5, "Nala"},
	} {
		require.NoError(t, s.InsertAnimal(types.AnimalRow{
			ZooKey:  1,
			Key:     n.key,
			Name:    n.name,
			Variant: types.VariantLion,
		}))
	}

	rows, err := s.GetAnimalsByZoo(1)
	require.NoError(t, err)
	var got []types.Key
	for _, r := range rows {
		got = append(got, r.Key)
	}
	assert.Equal(t, []types.Key{6, 3, 5}, got)
}

func testAnimalsByZooEmpty(t *testing.T, s types.Store) {
	require.NoError(t, s.InsertZoo(types.ZooRow{Key: 1, Name: "Empty"}))

	rows, err := s.GetAnimalsByZoo(1)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows, err = s.GetAnimalsByZoo(42)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func testDanglingZooKey(t *testing.T, s types.Store) {
	row := types.AnimalRow{ZooKey: 77, Key: 1, Name: "Stray", Variant: types.VariantShark, SwimSpeed: ptr(3)}
	require.NoError(t, s.InsertAnimal(row))

	got, err := s.GetAnimal(1)
	require.NoError(t, err)
	assert.Equal(t, types.Key(77), got.ZooKey)
}

func testReturnedRowsAreCopies(t *testing.T, s types.Store) {
	row := types.AnimalRow{ZooKey: 1, Key: 2, Name: "Jaws", Variant: types.VariantShark, SwimSpeed: ptr(0.5)}
	require.NoError(t, s.InsertAnimal(row))
	*row.SwimSpeed = 9

	got, err := s.GetAnimal(2)
	require.NoError(t, err)
	require.NotNil(t, got.SwimSpeed)
	assert.Equal(t, 0.5, *got.SwimSpeed)

	*got.SwimSpeed = 7
	again, err := s.GetAnimal(2)
	require.NoError(t, err)
	assert.Equal(t, 0.5, *again.SwimSpeed)
}

func testConcurrentWriters(t *testing.T, s types.Store) {
	const writers, perWriter = 8, 25

	var (
		mu   sync.Mutex
		seen = make(map[types.Key]bool)
	)
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				key, err := s.NextKey()
				if err != nil {
					return err
				}
				if err := s.InsertZoo(types.ZooRow{Key: key, Name: "z" + key.String()}); err != nil {
					return err
				}
				mu.Lock()
				seen[key] = true
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, seen, writers*perWriter)
	for k := types.Key(1); k <= writers*perWriter; k++ {
		assert.True(t, seen[k], "key %d never issued", k)
		_, err := s.GetZoo(k)
		assert.NoError(t, err, "zoo %d lost", k)
	}
}

func testClosed(t *testing.T, s types.Store) {
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close should be idempotent")

	_, err := s.NextKey()
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.InsertZoo(types.ZooRow{Key: 1, Name: "x"}), types.ErrStoreClosed)
	assert.ErrorIs(t, s.InsertAnimal(types.AnimalRow{Key: 2, Variant: types.VariantLion}), types.ErrStoreClosed)
	_, err = s.GetZoo(1)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = s.GetAnimal(2)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = s.GetAnimalsByZoo(1)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}
