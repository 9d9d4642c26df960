// Package hashing provides the string hashers used by the interner's
// deduplication index.
//
// Seeds are folded into the base hash with the splitmix64 finalizer by
// Vigna (2014), which gives full-avalanche mixing across all 64 bits.
package hashing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrUnknownKind is returned by New and ParseKind for unsupported hasher names.
var ErrUnknownKind = errors.New("hashing: unknown hasher kind")

// Splitmix64 finalizer constants.
const (
	// MixShift1 is the first right-shift in the splitmix64 finalizer.
	MixShift1 = 30

	// MixMul1 is the first multiplier in the splitmix64 finalizer.
	MixMul1 = 0xbf58476d1ce4e5b9

	// MixShift2 is the second right-shift in the splitmix64 finalizer.
	MixShift2 = 27

	// MixMul2 is the second multiplier in the splitmix64 finalizer.
	MixMul2 = 0x94d049bb133111eb

	// MixShift3 is the third right-shift in the splitmix64 finalizer.
	MixShift3 = 31
)

// FNV-1a 64-bit parameters.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// Hasher computes 64-bit hash codes of strings. Implementations must be safe
// for concurrent use, since read-only interner operations hash in parallel.
type Hasher interface {
	HashString(s string) uint64
}

// Kind names a built-in hasher.
type Kind string

// Built-in hasher kinds.
const (
	KindXXHash Kind = "xxhash"
	KindFNV    Kind = "fnv"
)

// Default returns the hasher used when none is configured.
func Default() Hasher {
	return XXHash{}
}

// ParseKind normalises a hasher name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))

	switch kind {
	case KindXXHash, KindFNV:
		return kind, nil
	case "":
		return KindXXHash, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// New returns the built-in hasher of the given kind seeded with seed.
func New(kind Kind, seed uint64) (Hasher, error) {
	switch kind {
	case KindXXHash, "":
		return XXHash{Seed: seed}, nil
	case KindFNV:
		return FNV{Seed: seed}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// XXHash hashes strings with xxHash64.
type XXHash struct {
	Seed uint64
}

// HashString implements Hasher.
func (h XXHash) HashString(s string) uint64 {
	sum := xxhash.Sum64String(s)
	if h.Seed == 0 {
		return sum
	}

	return MixHash(sum, h.Seed)
}

// FNV hashes strings with 64-bit FNV-1a.
type FNV struct {
	Seed uint64
}

// HashString implements Hasher.
func (h FNV) HashString(s string) uint64 {
	sum := uint64(fnvOffset64)

	for i := range len(s) {
		sum ^= uint64(s[i])
		sum *= fnvPrime64
	}

	if h.Seed == 0 {
		return sum
	}

	return MixHash(sum, h.Seed)
}

// Mix64 applies the splitmix64 finalizer.
func Mix64(v uint64) uint64 {
	v ^= v >> MixShift1
	v *= MixMul1
	v ^= v >> MixShift2
	v *= MixMul2
	v ^= v >> MixShift3

	return v
}

// MixHash combines a base hash with a seed using XOR and the splitmix64 finalizer.
func MixHash(base, seed uint64) uint64 {
	return Mix64(base ^ seed)
}
