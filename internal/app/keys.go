package app

import "github.com/nhle/taskboard/internal/keys"

// KeyMap is re-exported so callers building the root model need not
// import the keys package.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
