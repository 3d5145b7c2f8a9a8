package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// OperationType selects the root an operation runs against.
type OperationType string

// Operation types.
const (
	OperationQuery    OperationType = "query"
	OperationMutation OperationType = "mutation"
)

// Operation is one root field invocation with its selection.
type Operation struct {
	Type OperationType
	// Field is the root field, for example "getZoo" or "insertLion".
	Field string
	// Args are the raw root field arguments; they are coerced to the
	// declared argument types before the resolver runs.
	Args map[string]any
	// Selection is required when the root field has an object or interface
	// type and must be empty for scalar results.
	Selection SelectionSet
}

// Executor runs operations against a Schema.
type Executor struct {
	schema *Schema
	logger *zap.Logger
}

// NewExecutor returns an Executor for s. A nil logger discards output.
func NewExecutor(s *Schema, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{schema: s, logger: logger}
}

// Schema returns the schema the executor runs against.
func (x *Executor) Schema() *Schema {
	return x.schema
}

// Execute validates op, runs it against store, and returns a Record with a
// single key, the root field name. An absent root value is reported as nil.
func (x *Executor) Execute(store types.Store, op Operation) (*Record, error) {
	root, err := x.root(op.Type)
	if err != nil {
		return nil, err
	}
	field := root.Field(op.Field)
	if field == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, root.Name, op.Field)
	}
	if err := x.validate(field.ref, op.Selection, op.Field); err != nil {
		return nil, err
	}
	args, err := x.coerceArgs(field, op.Args, op.Field)
	if err != nil {
		return nil, err
	}

	x.logger.Debug("executing operation",
		zap.String("type", string(op.Type)),
		zap.String("field", op.Field))

	val, err := field.Resolve(Params{Store: store, Args: args})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Field, err)
	}
	out, err := x.complete(store, field.ref, val, op.Selection, op.Field)
	if err != nil {
		return nil, err
	}

	rec := NewRecord()
	rec.Set(op.Field, out)
	return rec, nil
}

func (x *Executor) root(t OperationType) (*Object, error) {
	switch t {
	case OperationQuery, "":
		return x.schema.query, nil
	case OperationMutation:
		if x.schema.mutation == nil {
			return nil, fmt.Errorf("%w: schema has no mutation root", ErrUnknownOperation)
		}
		return x.schema.mutation, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, t)
}

// validate checks set against the static type ref before anything runs.
func (x *Executor) validate(ref TypeRef, set SelectionSet, path string) error {
	name := ref.Named()
	if scalars[name] {
		if len(set) > 0 {
			return fmt.Errorf("%w: %s: %s has no fields", ErrInvalidSelection, path, name)
		}
		return nil
	}
	if len(set) == 0 {
		return fmt.Errorf("%w: %s: %s requires a selection", ErrInvalidSelection, path, name)
	}
	if err := checkResponseKeys(set, make(map[string]string), path); err != nil {
		return err
	}

	lookup := func(field string) *Field {
		if obj := x.schema.objects[name]; obj != nil {
			return obj.Field(field)
		}
		return x.schema.interfaces[name].Field(field)
	}

	for _, sel := range set {
		if sel.IsFragment() {
			if !x.applicable(name, sel.On) {
				return fmt.Errorf("%w: %s: fragment on %s can never apply to %s", ErrInvalidSelection, path, sel.On, name)
			}
			if err := x.validate(TypeRef{Name: sel.On}, sel.Set, path); err != nil {
				return err
			}
			continue
		}
		if sel.Name == TypenameField {
			if len(sel.Set) > 0 {
				return fmt.Errorf("%w: %s.%s has no fields", ErrInvalidSelection, path, TypenameField)
			}
			continue
		}
		f := lookup(sel.Name)
		if f == nil {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, name, sel.Name)
		}
		if err := x.validate(f.ref, sel.Set, path+"."+sel.ResponseKey()); err != nil {
			return err
		}
	}
	return nil
}

// checkResponseKeys rejects a set in which one response key names two
// different fields. Fragment contents share the keys of their parent set.
func checkResponseKeys(set SelectionSet, seen map[string]string, path string) error {
	for _, sel := range set {
		if sel.IsFragment() {
			if err := checkResponseKeys(sel.Set, seen, path); err != nil {
				return err
			}
			continue
		}
		key := sel.ResponseKey()
		if name, ok := seen[key]; ok && name != sel.Name {
			return fmt.Errorf("%w: %s: %q selects both %s and %s", ErrInvalidSelection, path, key, name, sel.Name)
		}
		seen[key] = sel.Name
	}
	return nil
}

// applicable reports whether a fragment on the type cond can match a value
// statically typed as parent.
func (x *Executor) applicable(parent, cond string) bool {
	if parent == cond {
		return true
	}
	if obj := x.schema.objects[cond]; obj != nil {
		return obj.Implements(parent)
	}
	if x.schema.interfaces[cond] == nil {
		return false
	}
	if obj := x.schema.objects[parent]; obj != nil {
		return obj.Implements(cond)
	}
	return false
}

func (x *Executor) coerceArgs(field *Field, raw map[string]any, path string) (map[string]any, error) {
	declared := make(map[string]bool, len(field.Args))
	for _, a := range field.Args {
		declared[a.Name] = true
	}
	for name := range raw {
		if !declared[name] {
			return nil, fmt.Errorf("%w: %s: unknown argument %q", ErrInvalidArgument, path, name)
		}
	}

	args := make(map[string]any, len(field.Args))
	for _, a := range field.Args {
		v, err := x.coerceInput(a.ref, raw[a.Name], path+"("+a.Name+")")
		if err != nil {
			return nil, err
		}
		if v != nil {
			args[a.Name] = v
		}
	}
	return args, nil
}

func (x *Executor) coerceInput(ref TypeRef, v any, path string) (any, error) {
	if isNil(v) {
		if ref.NonNull {
			return nil, fmt.Errorf("%w: %s: value is required", ErrInvalidArgument, path)
		}
		return nil, nil
	}

	if ref.Elem != nil {
		items, err := cast.ToSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, path, err)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			c, err := x.coerceInput(*ref.Elem, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	if scalars[ref.Name] {
		c, err := coerceScalar(ref.Name, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, path, err)
		}
		return c, nil
	}

	in := x.schema.inputs[ref.Name]
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s expects an object: %v", ErrInvalidArgument, path, ref.Name, err)
	}
	known := make(map[string]bool, len(in.Fields))
	for _, f := range in.Fields {
		known[f.Name] = true
	}
	for name := range m {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s: %s has no field %q", ErrInvalidArgument, path, ref.Name, name)
		}
	}
	out := make(map[string]any, len(in.Fields))
	for _, f := range in.Fields {
		c, err := x.coerceInput(f.ref, m[f.Name], path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out[f.Name] = c
		}
	}
	return out, nil
}

// complete turns a resolved value into its output form, resolving the
// fields of objects as selected.
func (x *Executor) complete(store types.Store, ref TypeRef, v any, set SelectionSet, path string) (any, error) {
	if isNil(v) {
		if ref.NonNull {
			return nil, fmt.Errorf("%w: %s", ErrNullValue, path)
		}
		return nil, nil
	}

	if ref.Elem != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("%s: resolver returned %T for list type %s", path, v, ref)
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c, err := x.complete(store, *ref.Elem, rv.Index(i).Interface(), set, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	if scalars[ref.Name] {
		c, err := coerceScalar(ref.Name, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return c, nil
	}

	if obj := x.schema.objects[ref.Name]; obj != nil {
		return x.completeObject(store, obj, v, set, path, false)
	}

	iface := x.schema.interfaces[ref.Name]
	concrete := iface.ResolveType(v)
	obj := x.schema.objects[concrete]
	if obj == nil || !obj.Implements(iface.Name) {
		return nil, fmt.Errorf("%s: %q is not a possible type of %s", path, concrete, iface.Name)
	}
	return x.completeObject(store, obj, v, set, path, true)
}

// completeObject resolves the selected fields of obj, each at most once.
// Values of an interface type are tagged with their concrete type name.
func (x *Executor) completeObject(store types.Store, obj *Object, v any, set SelectionSet, path string, tag bool) (*Record, error) {
	rec := NewRecord()
	if tag {
		rec.Set(TypenameField, obj.Name)
	}

	for _, g := range x.collectFields(obj, set, nil) {
		if g.name == TypenameField {
			rec.Set(g.key, obj.Name)
			continue
		}
		f := obj.Field(g.name)
		if f == nil {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, obj.Name, g.name)
		}
		fieldPath := path + "." + g.key
		val, err := f.Resolve(Params{Store: store, Source: v})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldPath, err)
		}
		out, err := x.complete(store, f.ref, val, g.set, fieldPath)
		if err != nil {
			return nil, err
		}
		rec.Set(g.key, out)
	}
	return rec, nil
}

type fieldGroup struct {
	key  string
	name string
	set  SelectionSet
}

// collectFields flattens the fragments of set that apply to obj and merges
// selections sharing a response key, keeping first-seen order.
func (x *Executor) collectFields(obj *Object, set SelectionSet, groups []*fieldGroup) []*fieldGroup {
	for _, sel := range set {
		if sel.IsFragment() {
			if sel.On == obj.Name || obj.Implements(sel.On) {
				groups = x.collectFields(obj, sel.Set, groups)
			}
			continue
		}
		key := sel.ResponseKey()
		var found *fieldGroup
		for _, g := range groups {
			if g.key == key {
				found = g
				break
			}
		}
		if found == nil {
			found = &fieldGroup{key: key, name: sel.Name}
			groups = append(groups, found)
		}
		found.set = append(found.set, sel.Set...)
	}
	return groups
}

func coerceScalar(name string, v any) (any, error) {
	switch name {
	case Int:
		return coerceInt(v)
	case Float:
		return cast.ToFloat64E(v)
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%T is not a string", v)
		}
		return s, nil
	case Boolean:
		return cast.ToBoolE(v)
	}
	return nil, fmt.Errorf("unknown scalar %s", name)
}

// coerceInt accepts integers, floats without a fraction and strings holding
// a base 10 integer.
func coerceInt(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%v is not an integer", t)
		}
	case float32:
		if float64(t) != math.Trunc(float64(t)) {
			return 0, fmt.Errorf("%v is not an integer", t)
		}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", t)
		}
		return n, nil
	case bool:
		return 0, fmt.Errorf("%v is not an integer", t)
	}
	return cast.ToInt64E(v)
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
