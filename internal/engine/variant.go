package engine

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// AnimalViewFromRow maps a stored row onto the view of its variant. Missing
// speeds resolve to 0.
//
// A tag outside the declared variants cannot be written through the engine;
// meeting one here means the store is corrupt, and AnimalViewFromRow panics
// with an error wrapping types.ErrUnknownVariant.
func AnimalViewFromRow(row types.AnimalRow) types.AnimalView {
	switch row.Variant {
	case types.VariantLion:
		return types.LionView{
			Name:      row.Name,
			WalkSpeed: valueOrZero(row.WalkSpeed),
			RunSpeed:  valueOrZero(row.RunSpeed),
		}
	case types.VariantShark:
		return types.SharkView{
			Name:      row.Name,
			SwimSpeed: valueOrZero(row.SwimSpeed),
		}
	}
	panic(fmt.Errorf("engine: animal %d: %w %q", row.Key, types.ErrUnknownVariant, row.Variant))
}

func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// insertAnimal issues a key and stores a row tagged with variant. fill sets
// the variant attributes; everything else is shared by every variant.
func (e *Engine) insertAnimal(s types.Store, zooKey types.Key, variant types.Variant, name string, fill func(*types.AnimalRow)) (types.Key, error) {
	if e.strictReferences {
		if _, err := s.GetZoo(zooKey); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return 0, fmt.Errorf("inserting %s %q into zoo %d: %w", variant, name, zooKey, types.ErrZooNotFound)
			}
			return 0, fmt.Errorf("checking zoo %d: %w", zooKey, err)
		}
	}

	key, err := s.NextKey()
	if err != nil {
		return 0, fmt.Errorf("issuing %s key: %w", variant, err)
	}
	row := types.AnimalRow{
		ZooKey:  zooKey,
		Key:     key,
		Name:    name,
		Variant: variant,
	}
	fill(&row)
	if err := s.InsertAnimal(row); err != nil {
		return 0, fmt.Errorf("storing %s %d: %w", variant, key, err)
	}
	return key, nil
}
