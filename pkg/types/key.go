package types

import "strconv"

// Key identifies a stored entity. Keys are strictly positive and drawn from a
// single counter shared by every entity kind of one context.
type Key int64

// Valid reports whether k could have been issued by a store.
func (k Key) Valid() bool {
	return k > 0
}

func (k Key) String() string {
	return strconv.FormatInt(int64(k), 10)
}
