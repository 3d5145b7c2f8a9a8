package types

// ZooRow is the stored shape of a zoo. It owns zero or more AnimalRows by
// back-reference (AnimalRow.ZooKey).
type ZooRow struct {
	Key  Key    `json:"key"`
	Name string `json:"name"`
}

// ZooView is the resolved shape of a zoo. The animals relation is not a
// field: it is produced on demand by the Zoo.animals field resolver.
type ZooView struct {
	Key  Key    `json:"key"`
	Name string `json:"name"`
}

// NewZoo is the write model for inserting a zoo.
type NewZoo struct {
	Name string `json:"name" mapstructure:"name"`
}
