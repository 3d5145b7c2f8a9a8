// Package scenario runs scripted operations against one context.
//
// A scenario is a YAML file listing mutation and query steps. Steps run in
// order against a single store, so keys issued by earlier steps are visible to
// later ones. A step may state the value it expects; mismatches are collected
// in the Report rather than stopping the run.
package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/menagerie/internal/schema"
	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// ErrInvalidScenario is returned for malformed scenario files.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a named list of steps.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	// StrictReferences asks the caller to reject animal inserts whose zoo
	// does not exist.
	StrictReferences bool `yaml:"strict_references,omitempty"`

	// Steps run in order against one context.
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Exactly one of Mutation and Query is set.
type Step struct {
	Name     string         `yaml:"name"`
	Mutation string         `yaml:"mutation,omitempty"`
	Query    string         `yaml:"query,omitempty"`
	Args     map[string]any `yaml:"args,omitempty"`

	// Select is the selection set, required for object results.
	Select string `yaml:"select,omitempty"`

	// Expect is compared with the root field value after both are
	// normalized through JSON. An explicit null expects an absent result;
	// leaving the key out skips the check.
	Expect yaml.Node `yaml:"expect,omitempty"`

	// ExpectError, when set, must be a substring of the step's error. A step
	// with ExpectError fails if it succeeds.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// HasExpect reports whether the step states an expected value.
func (s Step) HasExpect() bool {
	return s.Expect.Kind != 0
}

// Operation converts the step into an executor operation.
func (s Step) Operation() (schema.Operation, error) {
	op := schema.Operation{Args: s.Args}
	switch {
	case s.Mutation != "" && s.Query != "":
		return op, fmt.Errorf("%w: step %q sets both mutation and query", ErrInvalidScenario, s.Name)
	case s.Mutation != "":
		op.Type, op.Field = schema.OperationMutation, s.Mutation
	case s.Query != "":
		op.Type, op.Field = schema.OperationQuery, s.Query
	default:
		return op, fmt.Errorf("%w: step %q sets neither mutation nor query", ErrInvalidScenario, s.Name)
	}
	if strings.TrimSpace(s.Select) != "" {
		set, err := schema.ParseSelection(s.Select)
		if err != nil {
			return op, fmt.Errorf("step %q: %w", s.Name, err)
		}
		op.Selection = set
	}
	return op, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: steps must be non-empty", ErrInvalidScenario)
	}
	for i := range sc.Steps {
		st := &sc.Steps[i]
		if st.Name == "" {
			st.Name = fmt.Sprintf("step %d", i+1)
		}
		if _, err := st.Operation(); err != nil {
			return err
		}
	}
	return nil
}

// StepResult records the outcome of one step.
type StepResult struct {
	Name   string         `json:"name"`
	Result *schema.Record `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Failure is a step whose outcome differed from what it expected.
type Failure struct {
	Step string `json:"step"`
	Diff string `json:"diff"`
}

// Report is the outcome of a run.
type Report struct {
	Scenario string       `json:"scenario"`
	Steps    []StepResult `json:"steps"`
	Failures []Failure    `json:"failures,omitempty"`
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes the steps of sc in order against store. An operation error
// aborts the run unless the step expected it. ctx is checked between steps.
func Run(ctx context.Context, store types.Store, x *schema.Executor, sc *Scenario) (*Report, error) {
	report := &Report{Scenario: sc.Name, Steps: make([]StepResult, 0, len(sc.Steps))}

	for _, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		op, err := st.Operation()
		if err != nil {
			return report, err
		}

		rec, err := x.Execute(store, op)
		if err != nil {
			if st.ExpectError == "" {
				return report, fmt.Errorf("step %q: %w", st.Name, err)
			}
			report.Steps = append(report.Steps, StepResult{Name: st.Name, Error: err.Error()})
			if !strings.Contains(err.Error(), st.ExpectError) {
				report.Failures = append(report.Failures, Failure{
					Step: st.Name,
					Diff: fmt.Sprintf("error %q does not contain %q", err.Error(), st.ExpectError),
				})
			}
			continue
		}

		report.Steps = append(report.Steps, StepResult{Name: st.Name, Result: rec})
		if st.ExpectError != "" {
			report.Failures = append(report.Failures, Failure{
				Step: st.Name,
				Diff: fmt.Sprintf("succeeded, want error containing %q", st.ExpectError),
			})
			continue
		}
		if !st.HasExpect() {
			continue
		}

		var want any
		if err := st.Expect.Decode(&want); err != nil {
			return report, fmt.Errorf("step %q: decoding expect: %w", st.Name, err)
		}
		got, _ := rec.Get(op.Field)
		diff, err := compare(want, got)
		if err != nil {
			return report, fmt.Errorf("step %q: %w", st.Name, err)
		}
		if diff != "" {
			report.Failures = append(report.Failures, Failure{Step: st.Name, Diff: diff})
		}
	}
	return report, nil
}

// compare normalizes both values through JSON and returns their diff, or ""
// when they are equal.
func compare(want, got any) (string, error) {
	w, err := normalize(want)
	if err != nil {
		return "", fmt.Errorf("normalizing expectation: %w", err)
	}
	g, err := normalize(got)
	if err != nil {
		return "", fmt.Errorf("normalizing result: %w", err)
	}
	return cmp.Diff(w, g), nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
