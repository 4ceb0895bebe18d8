// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "github.com/cespare/xxhash/v2"

// HashFunc maps key bytes to a 64-bit routing hash.
// Implementations must be pure: the same bytes always yield the same value.
type HashFunc func(key []byte) uint64

// Sum64 is the default routing hash (xxHash64, seed 0).
func Sum64(key []byte) uint64 { return xxhash.Sum64(key) }

// Fnv64a hashes key bytes using 64-bit FNV-1a.
// Slower than Sum64 but dependency-free and stable across releases;
// selectable via configuration for compatibility with external routers.
func Fnv64a(key []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range key {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// HashByName resolves a configured hash name ("xxhash", "fnv").
// An empty name selects Sum64. The second result is false for unknown names.
func HashByName(name string) (HashFunc, bool) {
	switch name {
	case "", "xxhash":
		return Sum64, true
	case "fnv", "fnv64a":
		return Fnv64a, true
	default:
		return nil, false
	}
}
