// Package safeconv provides integer conversions that panic on overflow.
// Use them only where overflow is logically impossible.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = math.MaxInt

// MustUintToInt converts uint to int, panics on overflow.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// MustIntToUint converts int to uint, panics if negative.
func MustIntToUint(v int) uint {
	if v < 0 {
		panic("safeconv: negative int to uint conversion")
	}

	return uint(v)
}

// MustUint64ToInt converts a decoded uint64 length to int, panics on overflow.
func MustUint64ToInt(v uint64) int {
	if v > uint64(MaxInt) {
		panic("safeconv: uint64 to int overflow")
	}

	return int(v)
}
