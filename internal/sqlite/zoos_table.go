package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// zoosTable holds the zoos queries. The caller must hold the backend lock.
type zoosTable struct {
	backend *Backend
}

func (zt *zoosTable) insert(row types.ZooRow) error {
	_, err := zt.backend.db.Exec(
		"INSERT INTO zoos (id, name) VALUES (?, ?)",
		int64(row.Key), row.Name,
	)
	if err != nil {
		return fmt.Errorf("inserting zoo %d: %w", row.Key, err)
	}
	return nil
}

func (zt *zoosTable) get(key types.Key) (types.ZooRow, error) {
	var (
		row types.ZooRow
		k   int64
	)
	err := zt.backend.db.QueryRow(
		"SELECT id, name FROM zoos WHERE id = ?", int64(key),
	).Scan(&k, &row.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ZooRow{}, types.ErrNotFound
	}
	if err != nil {
		return types.ZooRow{}, fmt.Errorf("getting zoo %d: %w", key, err)
	}
	row.Key = types.Key(k)
	return row, nil
}
