package schema

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/mesh-intelligence/menagerie/internal/engine"
	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// Output and input type names of the zoo schema.
const (
	TypeAnimal         = "Animal"
	TypeZoo            = "Zoo"
	TypeQuery          = "Query"
	TypeMutation       = "Mutation"
	InputNewZooModel   = "NewZooModel"
	InputNewLionModel  = "NewLionModel"
	InputNewSharkModel = "NewSharkModel"
)

// Zoo builds the zoo schema with every resolver bound to e. The store each
// resolver reads from is supplied per operation through Params.Store.
func Zoo(e *engine.Engine) (*Schema, error) {
	animal := &Interface{
		Name: TypeAnimal,
		Fields: []*Field{
			{Name: "name", Type: "String!"},
		},
		ResolveType: func(v any) string {
			view, ok := v.(types.AnimalView)
			if !ok {
				return ""
			}
			return types.TypeName(view)
		},
	}

	lion := &Object{
		Name:       types.TypeNameLion,
		Interfaces: []string{TypeAnimal},
		Fields: []*Field{
			{Name: "name", Type: "String!", Resolve: animalName},
			{Name: "walkSpeed", Type: "Float!", Resolve: func(p Params) (any, error) {
				l, err := lionSource(p)
				return l.WalkSpeed, err
			}},
			{Name: "runSpeed", Type: "Float!", Resolve: func(p Params) (any, error) {
				l, err := lionSource(p)
				return l.RunSpeed, err
			}},
		},
	}

	shark := &Object{
		Name:       types.TypeNameShark,
		Interfaces: []string{TypeAnimal},
		Fields: []*Field{
			{Name: "name", Type: "String!", Resolve: animalName},
			{Name: "swimSpeed", Type: "Float!", Resolve: func(p Params) (any, error) {
				s, err := sharkSource(p)
				return s.SwimSpeed, err
			}},
		},
	}

	zoo := &Object{
		Name: TypeZoo,
		Fields: []*Field{
			{Name: "key", Type: "Int!", Resolve: func(p Params) (any, error) {
				z, err := zooSource(p)
				return int64(z.Key), err
			}},
			{Name: "name", Type: "String!", Resolve: func(p Params) (any, error) {
				z, err := zooSource(p)
				return z.Name, err
			}},
			{Name: "animals", Type: "[Animal!]!", Resolve: func(p Params) (any, error) {
				z, err := zooSource(p)
				if err != nil {
					return nil, err
				}
				return e.ResolveZooAnimals(p.Store, z)
			}},
		},
	}

	newZoo := &InputObject{
		Name: InputNewZooModel,
		Fields: []InputField{
			{Name: "name", Type: "String!"},
		},
	}
	newLion := &InputObject{
		Name: InputNewLionModel,
		Fields: []InputField{
			{Name: "name", Type: "String!"},
			{Name: "walkSpeed", Type: "Float!"},
			{Name: "runSpeed", Type: "Float!"},
		},
	}
	newShark := &InputObject{
		Name: InputNewSharkModel,
		Fields: []InputField{
			{Name: "name", Type: "String!"},
			{Name: "swimSpeed", Type: "Float!"},
		},
	}

	query := &Object{
		Name: TypeQuery,
		Fields: []*Field{
			{
				Name: "getZoo",
				Type: TypeZoo,
				Args: []Arg{{Name: "key", Type: "Int!"}},
				Resolve: func(p Params) (any, error) {
					z, err := e.ResolveZoo(p.Store, argKey(p, "key"))
					if err != nil || z == nil {
						return nil, err
					}
					return z, nil
				},
			},
			{
				Name: "getAnimal",
				Type: TypeAnimal,
				Args: []Arg{{Name: "key", Type: "Int!"}},
				Resolve: func(p Params) (any, error) {
					a, err := e.ResolveAnimal(p.Store, argKey(p, "key"))
					if err != nil || a == nil {
						return nil, err
					}
					return a, nil
				},
			},
		},
	}

	mutation := &Object{
		Name: TypeMutation,
		Fields: []*Field{
			{
				Name: "insertZoo",
				Type: "Int!",
				Args: []Arg{{Name: "model", Type: InputNewZooModel + "!"}},
				Resolve: func(p Params) (any, error) {
					var in types.NewZoo
					if err := decodeModel(p.Args["model"], &in); err != nil {
						return nil, err
					}
					key, err := e.InsertZoo(p.Store, in)
					return int64(key), err
				},
			},
			{
				Name: "insertLion",
				Type: "Int!",
				Args: []Arg{
					{Name: "zooKey", Type: "Int!"},
					{Name: "model", Type: InputNewLionModel + "!"},
				},
				Resolve: func(p Params) (any, error) {
					var in types.NewLion
					if err := decodeModel(p.Args["model"], &in); err != nil {
						return nil, err
					}
					key, err := e.InsertLion(p.Store, argKey(p, "zooKey"), in)
					return int64(key), err
				},
			},
			{
				Name: "insertShark",
				Type: "Int!",
				Args: []Arg{
					{Name: "zooKey", Type: "Int!"},
					{Name: "model", Type: InputNewSharkModel + "!"},
				},
				Resolve: func(p Params) (any, error) {
					var in types.NewShark
					if err := decodeModel(p.Args["model"], &in); err != nil {
						return nil, err
					}
					key, err := e.InsertShark(p.Store, argKey(p, "zooKey"), in)
					return int64(key), err
				},
			},
		},
	}

	return New(query, mutation, animal, lion, shark, zoo, newZoo, newLion, newShark)
}

func argKey(p Params, name string) types.Key {
	k, _ := p.Args[name].(int64)
	return types.Key(k)
}

// decodeModel fills out from a coerced input object.
func decodeModel(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func zooSource(p Params) (types.ZooView, error) {
	switch z := p.Source.(type) {
	case *types.ZooView:
		return *z, nil
	case types.ZooView:
		return z, nil
	}
	return types.ZooView{}, fmt.Errorf("zoo field resolved on %T", p.Source)
}

func animalName(p Params) (any, error) {
	view, ok := p.Source.(types.AnimalView)
	if !ok {
		return nil, fmt.Errorf("animal field resolved on %T", p.Source)
	}
	return view.AnimalName(), nil
}

func lionSource(p Params) (types.LionView, error) {
	switch l := p.Source.(type) {
	case types.LionView:
		return l, nil
	case *types.LionView:
		return *l, nil
	}
	return types.LionView{}, fmt.Errorf("lion field resolved on %T", p.Source)
}

func sharkSource(p Params) (types.SharkView, error) {
	switch s := p.Source.(type) {
	case types.SharkView:
		return s, nil
	case *types.SharkView:
		return *s, nil
	}
	return types.SharkView{}, fmt.Errorf("shark field resolved on %T", p.Source)
}
