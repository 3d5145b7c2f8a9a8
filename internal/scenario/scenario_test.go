package scenario

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/menagerie/internal/engine"
	"github.com/mesh-intelligence/menagerie/internal/memory"
	"github.com/mesh-intelligence/menagerie/internal/schema"
	"github.com/mesh-intelligence/menagerie/pkg/types"
)

func newRunner(t *testing.T, opts ...engine.Option) (types.Store, *schema.Executor) {
	t.Helper()
	s, err := schema.Zoo(engine.New(opts...))
	require.NoError(t, err)
	store := memory.NewStore()
	t.Cleanup(func() { _ = store.Close() })
	return store, schema.NewExecutor(s, nil)
}

func TestRunZooScenario(t *testing.T) {
	sc, err := Load("testdata/zoo.yaml")
	require.NoError(t, err)
	require.Len(t, sc.Steps, 9)

	store, x := newRunner(t)
	report, err := Run(context.Background(), store, x, sc)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %+v", report.Failures)

	out, err := json.MarshalIndent(report, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, append(out, '\n'))
}

func TestRunCollectsMismatches(t *testing.T) {
	sc, err := Parse([]byte(`
name: mismatch
steps:
  - mutation: insertZoo
    args: {model: {name: Blijdorp}}
    expect: 7
  - query: getZoo
    args: {key: 1}
    select: "{ name }"
    expect: {name: Artis}
  - query: getZoo
    args: {key: 1}
    select: "{ name }"
    expect: {name: Blijdorp}
`))
	require.NoError(t, err)

	store, x := newRunner(t)
	report, err := Run(context.Background(), store, x, sc)
	require.NoError(t, err)

	assert.False(t, report.Passed())
	assert.Len(t, report.Steps, 3)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "step 1", report.Failures[0].Step)
	assert.Equal(t, "step 2", report.Failures[1].Step)
	assert.Contains(t, report.Failures[1].Diff, "Artis")
}

func TestRunExpectNull(t *testing.T) {
	sc, err := Parse([]byte(`
name: absent
steps:
  - name: zoo that exists
    mutation: insertZoo
    args: {model: {name: Blijdorp}}
  - name: null expected, value found
    query: getZoo
    args: {key: 1}
    select: "{ name }"
    expect: null
`))
	require.NoError(t, err)
	assert.False(t, sc.Steps[0].HasExpect())
	assert.True(t, sc.Steps[1].HasExpect())

	store, x := newRunner(t)
	report, err := Run(context.Background(), store, x, sc)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "null expected, value found", report.Failures[0].Step)
}

func TestRunExpectError(t *testing.T) {
	sc, err := Parse([]byte(`
name: strict
strict_references: true
steps:
  - name: lion without zoo
    mutation: insertLion
    args:
      zooKey: 5
      model: {name: Simba, walkSpeed: 1, runSpeed: 2}
    expect_error: zoo not found
  - name: zoo gets the first key
    mutation: insertZoo
    args: {model: {name: Artis}}
    expect: 1
`))
	require.NoError(t, err)
	assert.True(t, sc.StrictReferences)

	store, x := newRunner(t, engine.WithStrictReferences(sc.StrictReferences))
	report, err := Run(context.Background(), store, x, sc)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %+v", report.Failures)
	assert.Contains(t, report.Steps[0].Error, "zoo not found")
}

func TestRunUnexpectedSuccess(t *testing.T) {
	sc, err := Parse([]byte(`
name: lenient
steps:
  - mutation: insertLion
    args:
      zooKey: 5
      model: {name: Simba, walkSpeed: 1, runSpeed: 2}
    expect_error: zoo not found
`))
	require.NoError(t, err)

	store, x := newRunner(t)
	report, err := Run(context.Background(), store, x, sc)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Diff, "succeeded")
}

func TestRunAbortsOnOperationError(t *testing.T) {
	sc, err := Parse([]byte(`
name: broken
steps:
  - query: getZoo
    args: {key: 1}
    select: "{ city }"
  - mutation: insertZoo
    args: {model: {name: Artis}}
`))
	require.NoError(t, err)

	store, x := newRunner(t)
	report, err := Run(context.Background(), store, x, sc)
	assert.ErrorIs(t, err, schema.ErrUnknownField)
	assert.Empty(t, report.Steps)
}

func TestRunHonoursCancellation(t *testing.T) {
	sc, err := Load("testdata/zoo.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, x := newRunner(t)
	_, err = Run(ctx, store, x, sc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "missing name", src: "steps: [{query: getZoo}]"},
		{name: "no steps", src: "name: empty"},
		{name: "unknown key", src: "name: x\nsteps: [{query: getZoo, selection: '{ name }'}]"},
		{name: "neither kind", src: "name: x\nsteps: [{name: nothing}]"},
		{name: "both kinds", src: "name: x\nsteps: [{query: getZoo, mutation: insertZoo}]"},
		{name: "bad selection", src: "name: x\nsteps: [{query: getZoo, select: '{ name'}]"},
		{name: "not yaml", src: "name: [x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	assert.Error(t, err)
}
