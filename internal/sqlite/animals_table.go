package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

const selectAnimal = "SELECT id, zoo_id, name, variant, walk_speed, run_speed, swim_speed FROM animals"

// animalsTable holds the animals queries. The caller must hold the backend
// lock.
type animalsTable struct {
	backend *Backend
}

func (at *animalsTable) insert(row types.AnimalRow) error {
	_, err := at.backend.db.Exec(
		"INSERT INTO animals (id, zoo_id, name, variant, walk_speed, run_speed, swim_speed) VALUES (?, ?, ?, ?, ?, ?, ?)",
		int64(row.Key), int64(row.ZooKey), row.Name, string(row.Variant),
		nullFloat(row.WalkSpeed), nullFloat(row.RunSpeed), nullFloat(row.SwimSpeed),
	)
	if err != nil {
		return fmt.Errorf("inserting animal %d: %w", row.Key, err)
	}
	return nil
}

func (at *animalsTable) get(key types.Key) (types.AnimalRow, error) {
	row, err := scanAnimal(at.backend.db.QueryRow(selectAnimal+" WHERE id = ?", int64(key)))
	if errors.Is(err, sql.ErrNoRows) {
		return types.AnimalRow{}, types.ErrNotFound
	}
	if err != nil {
		return types.AnimalRow{}, fmt.Errorf("getting animal %d: %w", key, err)
	}
	return row, nil
}

func (at *animalsTable) byZoo(zooKey types.Key) ([]types.AnimalRow, error) {
	rows, err := at.backend.db.Query(selectAnimal+" WHERE zoo_id = ? ORDER BY rowid", int64(zooKey))
	if err != nil {
		return nil, fmt.Errorf("querying animals of zoo %d: %w", zooKey, err)
	}
	defer rows.Close()

	result := []types.AnimalRow{}
	for rows.Next() {
		row, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning animal: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating animals of zoo %d: %w", zooKey, err)
	}
	return result, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAnimal(s scanner) (types.AnimalRow, error) {
	var (
		row                 types.AnimalRow
		key, zooKey         int64
		variant             string
		walkSpeed, runSpeed sql.NullFloat64
		swimSpeed           sql.NullFloat64
	)
	if err := s.Scan(&key, &zooKey, &row.Name, &variant, &walkSpeed, &runSpeed, &swimSpeed); err != nil {
		return types.AnimalRow{}, err
	}
	row.Key = types.Key(key)
	row.ZooKey = types.Key(zooKey)
	row.Variant = types.Variant(variant)
	row.WalkSpeed = floatPtr(walkSpeed)
	row.RunSpeed = floatPtr(runSpeed)
	row.SwimSpeed = floatPtr(swimSpeed)
	return row, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
