// Package symbol defines the compact tokens handed out by the string interner.
//
// A symbol stores its index plus one, so the zero value of every symbol type is
// never issued and can be used as a "no symbol" marker. The width of the
// underlying integer bounds how many distinct strings one interner can hold.
package symbol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrExhausted is wrapped by the panic raised when a backend is asked to mint a
// symbol past the capacity of its symbol type.
var ErrExhausted = errors.New("symbol: symbol space exhausted")

// invalidIndex is returned by ToIndex for the zero symbol.
const invalidIndex = -1

// Symbol is the constraint satisfied by all symbol types.
type Symbol interface {
	~uint16 | ~uint32 | ~uint64
}

// Sym16 is a 16-bit symbol holding up to 65535 strings.
type Sym16 uint16

// Sym32 is a 32-bit symbol. It is the default symbol type.
type Sym32 uint32

// Sym64 is a 64-bit symbol.
type Sym64 uint64

// Index returns the zero-based index of the symbol, or -1 for the zero value.
func (s Sym16) Index() int { return ToIndex(s) }

// IsValid reports whether s could have been issued by a backend.
func (s Sym16) IsValid() bool { return s != 0 }

func (s Sym16) String() string { return format(s) }

// Index returns the zero-based index of the symbol, or -1 for the zero value.
func (s Sym32) Index() int { return ToIndex(s) }

// IsValid reports whether s could have been issued by a backend.
func (s Sym32) IsValid() bool { return s != 0 }

func (s Sym32) String() string { return format(s) }

// Index returns the zero-based index of the symbol, or -1 for the zero value.
func (s Sym64) Index() int { return ToIndex(s) }

// IsValid reports whether s could have been issued by a backend.
func (s Sym64) IsValid() bool { return s != 0 }

func (s Sym64) String() string { return format(s) }

// FromIndex converts a zero-based index into a symbol. It returns false when the
// index is negative or does not fit into S.
func FromIndex[S Symbol](idx int) (S, bool) {
	if idx < 0 || idx > MaxIndex[S]() {
		return 0, false
	}

	return S(uint64(idx) + 1), true
}

// MustFromIndex is like FromIndex but panics with an error wrapping ErrExhausted
// when the index does not fit into S.
func MustFromIndex[S Symbol](idx int) S {
	sym, ok := FromIndex[S](idx)
	if !ok {
		panic(fmt.Errorf("%w: index %d exceeds maximum %d", ErrExhausted, idx, MaxIndex[S]()))
	}

	return sym
}

// ToIndex returns the zero-based index encoded in s, or -1 for the zero symbol
// and for values that cannot be represented as an int.
func ToIndex[S Symbol](s S) int {
	if s == 0 {
		return invalidIndex
	}

	v := uint64(s) - 1
	if v > math.MaxInt {
		return invalidIndex
	}

	return int(v)
}

// MaxIndex returns the highest index representable by S, clamped to MaxInt.
func MaxIndex[S Symbol]() int {
	var top S

	top = ^top

	v := uint64(top) - 1
	if v > math.MaxInt {
		return math.MaxInt
	}

	return int(v)
}

func format[S Symbol](s S) string {
	if s == 0 {
		return "sym(<none>)"
	}

	return "sym(" + strconv.Itoa(ToIndex(s)) + ")"
}
