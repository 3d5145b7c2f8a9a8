package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mesh-intelligence/menagerie/internal/memory"
	"github.com/mesh-intelligence/menagerie/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newContext(t *testing.T) types.Store {
	t.Helper()
	s := memory.NewStore()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestZooScenario(t *testing.T) {
	e := New()
	s := newContext(t)

	blijdorp, err := e.InsertZoo(s, types.NewZoo{Name: "Blijdorp"})
	require.NoError(t, err)
	artis, err := e.InsertZoo(s, types.NewZoo{Name: "Artis"})
	require.NoError(t, err)
	simba, err := e.InsertLion(s, blijdorp, types.NewLion{Name: "Simba", WalkSpeed: 1.0, RunSpeed: 2.0})
	require.NoError(t, err)
	jaws, err := e.InsertShark(s, artis, types.NewShark{Name: "Jaws", SwimSpeed: 0.5})
	require.NoError(t, err)

	assert.Equal(t, []types.Key{1, 2, 3, 4}, []types.Key{blijdorp, artis, simba, jaws})

	tests := []struct {
		name    string
		key     types.Key
		want    types.ZooView
		animals []types.AnimalView
	}{
		{
			name:    "Blijdorp holds Simba",
			key:     blijdorp,
			want:    types.ZooView{Key: 1, Name: "Blijdorp"},
			animals: []types.AnimalView{types.LionView{Name: "Simba", WalkSpeed: 1.0, RunSpeed: 2.0}},
		},
		{
			name:    "Artis holds Jaws",
			key:     artis,
			want:    types.ZooView{Key: 2, Name: "Artis"},
			animals: []types.AnimalView{types.SharkView{Name: "Jaws", SwimSpeed: 0.5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zoo, err := e.ResolveZoo(s, tt.key)
			require.NoError(t, err)
			require.NotNil(t, zoo)
			assert.Equal(t, tt.want, *zoo)

			animals, err := e.ResolveZooAnimals(s, *zoo)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.animals, animals); diff != "" {
				t.Errorf("animals mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKeysAreSharedAcrossKinds(t *testing.T) {
	e := New()
	s := newContext(t)

	var keys []types.Key
	for i := 0; i < 4; i++ {
		zoo, err := e.InsertZoo(s, types.NewZoo{Name: "zoo"})
		require.NoError(t, err)
		lion, err := e.InsertLion(s, zoo, types.NewLion{Name: "lion"})
		require.NoError(t, err)
		shark, err := e.InsertShark(s, zoo, types.NewShark{Name: "shark"})
		require.NoError(t, err)
		keys = append(keys, zoo, lion, shark)
	}

	for i, key := range keys {
		assert.Equal(t, types.Key(i+1), key)
	}
}

func TestResolveZooWithoutAnimals(t *testing.T) {
	e := New()
	s := newContext(t)

	key, err := e.InsertZoo(s, types.NewZoo{Name: "Empty"})
	require.NoError(t, err)

	zoo, err := e.ResolveZoo(s, key)
	require.NoError(t, err)
	require.NotNil(t, zoo)
	assert.Equal(t, "Empty", zoo.Name)

	animals, err := e.ResolveZooAnimals(s, *zoo)
	require.NoError(t, err)
	assert.NotNil(t, animals)
	assert.Empty(t, animals)
}

func TestResolveNotFound(t *testing.T) {
	e := New()
	s := newContext(t)

	zoo, err := e.ResolveZoo(s, 1)
	assert.NoError(t, err)
	assert.Nil(t, zoo)

	animal, err := e.ResolveAnimal(s, 1)
	assert.NoError(t, err)
	assert.Nil(t, animal)

	// A zoo key never resolves as an animal.
	key, err := e.InsertZoo(s, types.NewZoo{Name: "Artis"})
	require.NoError(t, err)
	animal, err = e.ResolveAnimal(s, key)
	assert.NoError(t, err)
	assert.Nil(t, animal)
}

func TestResolveAnimal(t *testing.T) {
	e := New()
	s := newContext(t)

	zoo, err := e.InsertZoo(s, types.NewZoo{Name: "Blijdorp"})
	require.NoError(t, err)
	lion, err := e.InsertLion(s, zoo, types.NewLion{Name: "Simba", WalkSpeed: 1, RunSpeed: 2})
	require.NoError(t, err)
	shark, err := e.InsertShark(s, zoo, types.NewShark{Name: "Jaws", SwimSpeed: 0.5})
	require.NoError(t, err)

	got, err := e.ResolveAnimal(s, lion)
	require.NoError(t, err)
	assert.Equal(t, types.LionView{Name: "Simba", WalkSpeed: 1, RunSpeed: 2}, got)

	got, err = e.ResolveAnimal(s, shark)
	require.NoError(t, err)
	assert.Equal(t, types.SharkView{Name: "Jaws", SwimSpeed: 0.5}, got)
}

func TestMissingSpeedsDefaultToZero(t *testing.T) {
	e := New()
	s := newContext(t)

	require.NoError(t, s.InsertAnimal(types.AnimalRow{ZooKey: 1, Key: 10, Name: "Scar", Variant: types.VariantLion}))
	require.NoError(t, s.InsertAnimal(types.AnimalRow{ZooKey: 1, Key: 11, Name: "Bruce", Variant: types.VariantShark}))

	got, err := e.ResolveAnimal(s, 10)
	require.NoError(t, err)
	assert.Equal(t, types.LionView{Name: "Scar"}, got)

	animals, err := e.ResolveZooAnimals(s, types.ZooView{Key: 1})
	require.NoError(t, err)
	assert.Equal(t, []types.AnimalView{
		types.LionView{Name: "Scar", WalkSpeed: 0, RunSpeed: 0},
		types.SharkView{Name: "Bruce", SwimSpeed: 0},
	}, animals)
}

func TestUnknownVariantPanics(t *testing.T) {
	e := New()
	s := newContext(t)

	require.NoError(t, s.InsertAnimal(types.AnimalRow{ZooKey: 1, Key: 5, Name: "Tony", Variant: "tiger"}))

	assertPanicsWithUnknownVariant := func(fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic")
			err, ok := r.(error)
			require.True(t, ok, "panic value should be an error, got %T", r)
			assert.True(t, errors.Is(err, types.ErrUnknownVariant))
		}()
		fn()
	}

	assertPanicsWithUnknownVariant(func() { _, _ = e.ResolveAnimal(s, 5) })
	assertPanicsWithUnknownVariant(func() { _, _ = e.ResolveZooAnimals(s, types.ZooView{Key: 1}) })
}

func TestDanglingZooKey(t *testing.T) {
	e := New()
	s := newContext(t)

	zoo, err := e.InsertZoo(s, types.NewZoo{Name: "Artis"})
	require.NoError(t, err)

	stray, err := e.InsertShark(s, 99, types.NewShark{Name: "Stray", SwimSpeed: 1})
	require.NoError(t, err, "dangling zoo keys are accepted by default")
	assert.Equal(t, types.Key(2), stray)

	animals, err := e.ResolveZooAnimals(s, types.ZooView{Key: zoo, Name: "Artis"})
	require.NoError(t, err)
	assert.Empty(t, animals)

	got, err := e.ResolveAnimal(s, stray)
	require.NoError(t, err)
	assert.Equal(t, types.SharkView{Name: "Stray", SwimSpeed: 1}, got)
}

func TestStrictReferences(t *testing.T) {
	e := New(WithStrictReferences(true))
	s := newContext(t)

	_, err := e.InsertLion(s, 1, types.NewLion{Name: "Simba"})
	assert.ErrorIs(t, err, types.ErrZooNotFound)
	_, err = e.InsertShark(s, 1, types.NewShark{Name: "Jaws"})
	assert.ErrorIs(t, err, types.ErrZooNotFound)

	// Rejected inserts do not consume keys.
	zoo, err := e.InsertZoo(s, types.NewZoo{Name: "Blijdorp"})
	require.NoError(t, err)
	assert.Equal(t, types.Key(1), zoo)

	lion, err := e.InsertLion(s, zoo, types.NewLion{Name: "Simba", WalkSpeed: 1, RunSpeed: 2})
	require.NoError(t, err)
	assert.Equal(t, types.Key(2), lion)
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	e := New()
	s := memory.NewStore()
	require.NoError(t, s.Close())

	_, err := e.InsertZoo(s, types.NewZoo{Name: "Closed"})
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = e.InsertLion(s, 1, types.NewLion{Name: "Closed"})
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = e.ResolveZoo(s, 1)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = e.ResolveAnimal(s, 1)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = e.ResolveZooAnimals(s, types.ZooView{Key: 1})
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}

func TestMetricsCountJoins(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := New(WithMetrics(reg))
	s := newContext(t)

	key, err := e.InsertZoo(s, types.NewZoo{Name: "Blijdorp"})
	require.NoError(t, err)

	zoo, err := e.ResolveZoo(s, key)
	require.NoError(t, err)
	assert.Zero(t, testutil.ToFloat64(e.Metrics().AnimalJoins), "resolving a zoo must not join")

	_, err = e.ResolveZooAnimals(s, *zoo)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics().AnimalJoins))

	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics().Operations.WithLabelValues(opInsertZoo)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics().Operations.WithLabelValues(opResolveZoo)))

	n, err := testutil.GatherAndCount(reg, "menagerie_animal_joins_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
