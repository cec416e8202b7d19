package hints

import (
	"hash/fnv"

	"github.com/rcliao/tag-hints/internal/index"
)

// KeyPrefix namespaces every mode's snapshot in the shared store.
const KeyPrefix = "hashtag_hints#"

// StoreKey returns the store key holding the snapshot for mode.
func StoreKey(mode string) string {
	return KeyPrefix + mode
}

// ModeFromKey is the inverse of StoreKey.
func ModeFromKey(key string) (string, bool) {
	if len(key) < len(KeyPrefix) || key[:len(KeyPrefix)] != KeyPrefix {
		return "", false
	}
	return key[len(KeyPrefix):], true
}

// KeyOf derives the index key for a hint text with 64-bit FNV-1a. Two texts
// that collide share one entry; the later text replaces the earlier one.
func KeyOf(text string) index.Key {
	h := fnv.New64a()
	h.Write([]byte(text))
	return index.Key(h.Sum64())
}
