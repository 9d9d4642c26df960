// Package interner deduplicates strings into compact symbols.
//
// A StringInterner hands out one symbol per distinct string content and
// resolves symbols back to the original content in constant time. Strings are
// stored exactly once, inside a pluggable backend; the deduplication index
// keeps only symbols and compares candidates by resolving them through the
// backend.
//
// A StringInterner is not synchronized. Mutating calls (GetOrIntern*,
// Extend, Reserve) need exclusive access; read-only calls (Get, Resolve,
// All, Len, Stats) may run concurrently with each other. Locked wraps an
// interner for shared mutation.
package interner

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync/atomic"
	"unsafe"

	"github.com/Sumatoshi-tech/interner/pkg/backend"
	"github.com/Sumatoshi-tech/interner/pkg/hashing"
	"github.com/Sumatoshi-tech/interner/pkg/interner/internal/dedup"
	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

var (
	// ErrMissingSymbol is wrapped by the panic raised when a symbol held by the
	// index does not resolve in the backend.
	ErrMissingSymbol = errors.New("interner: encountered missing symbol")

	// ErrUnsupported is returned when the backend lacks an optional capability.
	ErrUnsupported = fmt.Errorf("interner: %w", errors.ErrUnsupported)
)

// StringInterner interns strings into symbols of type S.
type StringInterner[S symbol.Symbol] struct {
	dedup   *dedup.Table[S]
	hasher  hashing.Hasher
	backend backend.Backend[S]
	logger  *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty interner. Without options strings are stored in the
// string backend and hashed with xxhash.
//
// New panics if the selected backend kind is unknown or if a backend instance
// passed via WithBackendInstance is not empty; both are programming errors.
func New[S symbol.Symbol](opts ...Option[S]) *StringInterner[S] {
	cfg := settings[S]{kind: backend.DefaultKind}

	for _, opt := range opts {
		opt(&cfg)
	}

	store := cfg.instance
	if store == nil {
		var err error

		store, err = backend.New[S](cfg.kind, backend.Options{
			Capacity:     cfg.capacity,
			ByteCapacity: cfg.byteCapacity,
		})
		if err != nil {
			panic(fmt.Sprintf("interner: %v", err))
		}
	} else if store.Len() != 0 {
		panic("interner: backend instance must be empty")
	}

	if cfg.hasher == nil {
		cfg.hasher = hashing.Default()
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	return &StringInterner[S]{
		dedup:   dedup.New[S](cfg.capacity),
		hasher:  cfg.hasher,
		backend: store,
		logger:  cfg.logger,
	}
}

// FromStrings creates an interner presized for values and interns each of them.
// Options given by the caller override the capacity hint.
func FromStrings[S symbol.Symbol](values []string, opts ...Option[S]) *StringInterner[S] {
	opts = append([]Option[S]{WithCapacity[S](len(values))}, opts...)

	in := New(opts...)
	in.Extend(slices.Values(values))

	return in
}

// FromSeq creates an interner and interns every string yielded by seq.
func FromSeq[S symbol.Symbol](seq iter.Seq[string], opts ...Option[S]) *StringInterner[S] {
	in := New(opts...)
	in.Extend(seq)

	return in
}

// Len returns the number of distinct strings interned.
func (in *StringInterner[S]) Len() int {
	return in.dedup.Len()
}

// IsEmpty reports whether nothing has been interned yet.
func (in *StringInterner[S]) IsEmpty() bool {
	return in.Len() == 0
}

// Get returns the symbol of s if s has been interned. It never modifies the
// interner.
func (in *StringInterner[S]) Get(s string) (S, bool) {
	return in.dedup.Find(in.hasher.HashString(s), in.matches(s))
}

// GetOrIntern returns the symbol of s, interning a copy of s first if needed.
//
// It panics with an error wrapping symbol.ErrExhausted if s is new and the
// symbol space of S is used up.
func (in *StringInterner[S]) GetOrIntern(s string) S {
	return in.getOrInternUsing(s, in.backend.Intern)
}

// GetOrInternStatic is like GetOrIntern but lets the backend keep s without
// copying. The caller guarantees the bytes behind s are never modified, which
// holds for every string not built with package unsafe.
func (in *StringInterner[S]) GetOrInternStatic(s string) S {
	return in.getOrInternUsing(s, in.backend.InternStatic)
}

// GetOrInternBytes is like GetOrIntern for a byte slice. It does not allocate
// when b is already interned, and b may be reused after the call.
func (in *StringInterner[S]) GetOrInternBytes(b []byte) S {
	return in.getOrInternUsing(unsafe.String(unsafe.SliceData(b), len(b)), in.backend.Intern)
}

// Resolve returns the string for sym, or false if sym was not issued by this
// interner.
func (in *StringInterner[S]) Resolve(sym S) (string, bool) {
	return in.backend.Resolve(sym)
}

// MustResolve is like Resolve but panics with an error wrapping
// ErrMissingSymbol when sym is unknown.
func (in *StringInterner[S]) MustResolve(sym S) string {
	s, ok := in.backend.Resolve(sym)
	if !ok {
		panic(fmt.Errorf("%w: %d", ErrMissingSymbol, symbol.ToIndex(sym)))
	}

	return s
}

// Extend interns every string yielded by seq.
func (in *StringInterner[S]) Extend(seq iter.Seq[string]) {
	for s := range seq {
		in.GetOrIntern(s)
	}
}

// Reserve grows the deduplication index so n more strings fit without a resize.
// Very large n are clamped to a fixed presize limit; the index still grows on
// demand past it.
func (in *StringInterner[S]) Reserve(n int) {
	before := in.dedup.Cap()
	if in.dedup.Reserve(n) {
		in.logGrowth(before)
	}
}

// All yields every interned string with its symbol in intern order.
func (in *StringInterner[S]) All() iter.Seq2[S, string] {
	if it, ok := in.backend.(backend.Iterator[S]); ok {
		return it.All()
	}

	return func(yield func(S, string) bool) {
		syms := slices.Sorted(in.dedup.All())

		for _, sym := range syms {
			if !yield(sym, in.resolveKnown(sym)) {
				return
			}
		}
	}
}

// Symbols yields every issued symbol in intern order.
func (in *StringInterner[S]) Symbols() iter.Seq[S] {
	return func(yield func(S) bool) {
		for sym := range in.All() {
			if !yield(sym) {
				return
			}
		}
	}
}

// Clone returns an independent interner holding the same strings under the
// same symbols. It returns ErrUnsupported if the backend cannot be cloned.
func (in *StringInterner[S]) Clone() (*StringInterner[S], error) {
	cloner, ok := in.backend.(backend.Cloner[S])
	if !ok {
		return nil, fmt.Errorf("%w: clone %T", ErrUnsupported, in.backend)
	}

	clone := &StringInterner[S]{
		dedup:   in.dedup.Clone(),
		hasher:  in.hasher,
		backend: cloner.CloneBackend(),
		logger:  in.logger,
	}

	clone.hits.Store(in.hits.Load())
	clone.misses.Store(in.misses.Load())

	return clone, nil
}

// Equal reports whether both interners hold the same number of strings and
// their backends compare equal. Backends without equality support are only
// equal to themselves.
func (in *StringInterner[S]) Equal(other *StringInterner[S]) bool {
	if in == other {
		return true
	}

	if other == nil || in.Len() != other.Len() {
		return false
	}

	eq, ok := in.backend.(backend.Equaler[S])
	if !ok {
		return false
	}

	return eq.EqualBackend(other.backend)
}

// String implements fmt.Stringer.
func (in *StringInterner[S]) String() string {
	return fmt.Sprintf("StringInterner{len: %d, backend: %T}", in.Len(), in.backend)
}

func (in *StringInterner[S]) getOrInternUsing(s string, intern func(string) S) S {
	hash := in.hasher.HashString(s)
	before := in.dedup.Cap()

	sym, inserted := in.dedup.FindOrInsert(hash, in.matches(s), func() S {
		return intern(s)
	})

	if inserted {
		in.misses.Add(1)
	} else {
		in.hits.Add(1)
	}

	if in.dedup.Cap() != before {
		in.logGrowth(before)
	}

	return sym
}

// matches returns the probe predicate comparing a candidate's content to s.
func (in *StringInterner[S]) matches(s string) func(S) bool {
	return func(sym S) bool {
		return in.resolveKnown(sym) == s
	}
}

// resolveKnown resolves a symbol taken from the index. Failure means the index
// and the backend disagree, which is unrecoverable.
func (in *StringInterner[S]) resolveKnown(sym S) string {
	s, ok := in.backend.Resolve(sym)
	if !ok {
		err := fmt.Errorf("%w: %d", ErrMissingSymbol, symbol.ToIndex(sym))
		in.logger.Error("dedup index out of sync with backend", "error", err)

		panic(err)
	}

	return s
}

func (in *StringInterner[S]) logGrowth(before int) {
	in.logger.Debug("dedup table grew",
		"from", before,
		"to", in.dedup.Cap(),
		"len", in.dedup.Len(),
	)
}
