package sqlite

// Schema DDL for all tables.
const (
	createKeySequence = `CREATE TABLE key_sequence (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    last_key INTEGER NOT NULL
);`

	seedKeySequence = `INSERT INTO key_sequence (id, last_key) VALUES (1, 0);`

	createZoos = `CREATE TABLE zoos (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);`

	createAnimals = `CREATE TABLE animals (
    id INTEGER NOT NULL UNIQUE,
    zoo_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    variant TEXT NOT NULL CHECK (variant IN ('lion', 'shark')),
    walk_speed REAL,
    run_speed REAL,
    swim_speed REAL
);`
)

// Index DDL for the Zoo.animals join. The implicit rowid follows append
// order, and the index keeps it per zoo.
const (
	idxAnimalsZoo = `CREATE INDEX idx_animals_zoo ON animals(zoo_id);`
)

// schemaDDL lists all statements executed on a fresh database, in order.
// zoo_id carries no foreign key: animals may reference a zoo that was never
// inserted.
var schemaDDL = []string{
	createKeySequence,
	seedKeySequence,
	createZoos,
	createAnimals,
	idxAnimalsZoo,
}
