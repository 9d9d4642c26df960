// Package dedup implements the deduplication index of the string interner.
//
// The index is an open-addressing hash table whose entries are symbols only.
// The string a symbol stands for is the real key, but it lives in the backend;
// the table asks the caller to compare candidates through an equality callback
// that resolves them. Each slot also keeps the full hash code, so probes skip
// candidates with a different hash and growth never rehashes a string.
package dedup

import (
	"iter"
	"math/bits"
	"slices"

	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// Table sizing constants.
const (
	// minSlots is the slot count of a table created without a capacity hint.
	minSlots = 16

	// loadNumerator and loadDenominator bound the load factor to 3/4.
	loadNumerator   = 3
	loadDenominator = 4

	// growthFactor multiplies the slot count on every resize.
	growthFactor = 2

	// MaxPresize caps capacity hints passed to New and Reserve. Larger hints
	// are clamped; the table still grows past it on demand.
	MaxPresize = 1 << 20
)

// Table maps hash codes to symbols. An empty slot holds the zero symbol,
// which backends never issue. Table is not safe for concurrent mutation.
type Table[S symbol.Symbol] struct {
	hashes []uint64
	syms   []S
	count  int
}

// New creates a table able to hold capacity entries without growing. Hints
// above MaxPresize are clamped.
func New[S symbol.Symbol](capacity int) *Table[S] {
	slots := slotsFor(capacity)

	return &Table[S]{
		hashes: make([]uint64, slots),
		syms:   make([]S, slots),
	}
}

// Len returns the number of entries.
func (t *Table[S]) Len() int {
	return t.count
}

// Cap returns the number of slots.
func (t *Table[S]) Cap() int {
	return len(t.syms)
}

// Find returns the symbol stored under hash for which eq reports true.
func (t *Table[S]) Find(hash uint64, eq func(S) bool) (S, bool) {
	slot, found := t.probe(hash, eq)
	if !found {
		return 0, false
	}

	return t.syms[slot], true
}

// FindOrInsert returns the symbol stored under hash for which eq reports true.
// Otherwise it calls mint once and stores the new symbol in the vacant slot the
// probe ended on. The boolean reports whether mint was called.
//
// Growth happens before probing, so a panicking mint leaves the table as if
// the call had not happened, apart from a possibly larger slot count. For the
// same reason a hit on a table at its load limit grows it too.
func (t *Table[S]) FindOrInsert(hash uint64, eq func(S) bool, mint func() S) (S, bool) {
	// May grow even when the probe below turns out to be a hit.
	t.reserve(1)

	slot, found := t.probe(hash, eq)
	if found {
		return t.syms[slot], false
	}

	sym := mint()

	t.hashes[slot] = hash
	t.syms[slot] = sym
	t.count++

	return sym, true
}

// Reserve grows the table so that n more entries fit without a resize. n is
// clamped to MaxPresize. It reports whether the table grew.
func (t *Table[S]) Reserve(n int) bool {
	return t.reserve(n)
}

// Clone returns an independent copy of the table.
func (t *Table[S]) Clone() *Table[S] {
	return &Table[S]{
		hashes: slices.Clone(t.hashes),
		syms:   slices.Clone(t.syms),
		count:  t.count,
	}
}

// All yields every stored symbol in slot order.
func (t *Table[S]) All() iter.Seq[S] {
	return func(yield func(S) bool) {
		for _, sym := range t.syms {
			if sym == 0 {
				continue
			}

			if !yield(sym) {
				return
			}
		}
	}
}

// probe walks the cluster starting at hash. It returns the slot holding a
// match, or the first vacant slot if none matched. The load factor bound
// guarantees a vacant slot exists.
func (t *Table[S]) probe(hash uint64, eq func(S) bool) (slot int, found bool) {
	mask := uint64(len(t.syms) - 1)
	cursor := hash & mask

	for {
		sym := t.syms[cursor]
		if sym == 0 {
			return int(cursor), false
		}

		if t.hashes[cursor] == hash && eq(sym) {
			return int(cursor), true
		}

		cursor = (cursor + 1) & mask
	}
}

func (t *Table[S]) reserve(n int) bool {
	need := t.count + min(max(n, 0), MaxPresize)
	if need*loadDenominator <= len(t.syms)*loadNumerator {
		return false
	}

	slots := len(t.syms) * growthFactor
	for need*loadDenominator > slots*loadNumerator {
		slots *= growthFactor
	}

	t.rehash(slots)

	return true
}

// rehash moves every entry into a table of the given slot count using the
// stored hash codes.
func (t *Table[S]) rehash(slots int) {
	oldHashes, oldSyms := t.hashes, t.syms

	t.hashes = make([]uint64, slots)
	t.syms = make([]S, slots)

	mask := uint64(slots - 1)

	for i, sym := range oldSyms {
		if sym == 0 {
			continue
		}

		hash := oldHashes[i]
		cursor := hash & mask

		for t.syms[cursor] != 0 {
			cursor = (cursor + 1) & mask
		}

		t.hashes[cursor] = hash
		t.syms[cursor] = sym
	}
}

// slotsFor returns the power-of-two slot count that holds capacity entries
// under the load factor bound. capacity is clamped to MaxPresize.
func slotsFor(capacity int) int {
	if capacity <= 0 {
		return minSlots
	}

	capacity = min(capacity, MaxPresize)

	want := (capacity*loadDenominator + loadNumerator - 1) / loadNumerator
	if want <= minSlots {
		return minSlots
	}

	return 1 << bits.Len(uint(want-1))
}
