package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// InsertZoo issues a key, stores the zoo, and returns the key.
func (e *Engine) InsertZoo(s types.Store, in types.NewZoo) (types.Key, error) {
	e.metrics.observe(opInsertZoo)

	key, err := s.NextKey()
	if err != nil {
		return 0, fmt.Errorf("issuing zoo key: %w", err)
	}
	if err := s.InsertZoo(types.ZooRow{Key: key, Name: in.Name}); err != nil {
		return 0, fmt.Errorf("storing zoo %d: %w", key, err)
	}

	e.logger.Debug("inserted zoo", zap.Int64("key", int64(key)), zap.String("name", in.Name))
	return key, nil
}

// InsertLion stores a lion owned by zooKey and returns its key.
func (e *Engine) InsertLion(s types.Store, zooKey types.Key, in types.NewLion) (types.Key, error) {
	e.metrics.observe(opInsertLion)

	key, err := e.insertAnimal(s, zooKey, types.VariantLion, in.Name, func(row *types.AnimalRow) {
		walk, run := in.WalkSpeed, in.RunSpeed
		row.WalkSpeed = &walk
		row.RunSpeed = &run
	})
	if err != nil {
		return 0, err
	}

	e.logger.Debug("inserted lion", zap.Int64("key", int64(key)), zap.Int64("zoo", int64(zooKey)))
	return key, nil
}

// InsertShark stores a shark owned by zooKey and returns its key.
func (e *Engine) InsertShark(s types.Store, zooKey types.Key, in types.NewShark) (types.Key, error) {
	e.metrics.observe(opInsertShark)

	key, err := e.insertAnimal(s, zooKey, types.VariantShark, in.Name, func(row *types.AnimalRow) {
		swim := in.SwimSpeed
		row.SwimSpeed = &swim
	})
	if err != nil {
		return 0, err
	}

	e.logger.Debug("inserted shark", zap.Int64("key", int64(key)), zap.Int64("zoo", int64(zooKey)))
	return key, nil
}
