package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// ResolveZoo looks up a zoo. An unknown key is not an error: the result is
// nil. The animals relation is left to ResolveZooAnimals.
func (e *Engine) ResolveZoo(s types.Store, key types.Key) (*types.ZooView, error) {
	e.metrics.observe(opResolveZoo)

	row, err := s.GetZoo(key)
	if errors.Is(err, types.ErrNotFound) {
		e.logger.Debug("zoo not found", zap.Int64("key", int64(key)))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving zoo %d: %w", key, err)
	}

	e.logger.Debug("resolved zoo", zap.Int64("key", int64(key)))
	return &types.ZooView{Key: row.Key, Name: row.Name}, nil
}

// ResolveZooAnimals is the Zoo.animals field resolver. It performs exactly
// one join against the animals table and maps each row to its variant view.
// A zoo without animals yields an empty, non-nil slice.
func (e *Engine) ResolveZooAnimals(s types.Store, zoo types.ZooView) ([]types.AnimalView, error) {
	e.metrics.observe(opResolveZooAnimals)
	e.metrics.AnimalJoins.Inc()

	rows, err := s.GetAnimalsByZoo(zoo.Key)
	if err != nil {
		return nil, fmt.Errorf("resolving animals of zoo %d: %w", zoo.Key, err)
	}

	views := make([]types.AnimalView, 0, len(rows))
	for _, row := range rows {
		views = append(views, AnimalViewFromRow(row))
	}

	e.logger.Debug("resolved zoo animals",
		zap.Int64("zoo", int64(zoo.Key)),
		zap.Int("animals", len(views)))
	return views, nil
}

// ResolveAnimal looks up an animal and dispatches on its variant. An unknown
// key yields a nil view and no error.
func (e *Engine) ResolveAnimal(s types.Store, key types.Key) (types.AnimalView, error) {
	e.metrics.observe(opResolveAnimal)

	row, err := s.GetAnimal(key)
	if errors.Is(err, types.ErrNotFound) {
		e.logger.Debug("animal not found", zap.Int64("key", int64(key)))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving animal %d: %w", key, err)
	}

	view := AnimalViewFromRow(row)
	e.logger.Debug("resolved animal",
		zap.Int64("key", int64(key)),
		zap.String("variant", string(row.Variant)))
	return view, nil
}
