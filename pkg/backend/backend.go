// Package backend provides the storage strategies that own the bytes of
// interned strings.
//
// A backend mints a symbol for every string it is asked to store and resolves
// that symbol back to the identical content for as long as the backend lives.
// Backends never deduplicate; that is the interner's job. The strategies trade
// space for speed differently:
//
//   - String: one contiguous buffer plus end offsets. Compact, dense symbols.
//   - Buffer: one buffer of length-prefixed records. Most compact; symbols are
//     byte offsets and therefore sparse.
//   - Bucket: fixed-size chunks that never move, and static strings are
//     stored without copying.
//   - Simple: one allocation per string. Fastest to intern, largest footprint.
package backend

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"unsafe"

	"github.com/Sumatoshi-tech/interner/pkg/symbol"
	"github.com/Sumatoshi-tech/interner/pkg/units"
)

// ErrUnknownKind is returned for unsupported backend names.
var ErrUnknownKind = errors.New("backend: unknown backend kind")

// expectedStringLen is the average string length assumed when only a string
// count hint is given.
const expectedStringLen = 8

// Preallocation limits. Hints above them are clamped so that unrealistic
// values cannot overflow size arithmetic.
const (
	maxCapacityHint     = 1 << 20
	maxByteCapacityHint = units.GiB
)

// Backend is the storage contract required by the interner.
//
// Symbols must be minted with strictly increasing indices in intern order. A
// mint that would exceed the symbol space panics with an error wrapping
// symbol.ErrExhausted before any state is modified.
type Backend[S symbol.Symbol] interface {
	// Intern stores a private copy of s and returns a fresh symbol.
	Intern(s string) S

	// InternStatic stores s and returns a fresh symbol. The caller guarantees
	// that the bytes behind s are never modified, so the backend may keep s
	// without copying.
	InternStatic(s string) S

	// Resolve returns the content stored for sym, or false if sym was not
	// issued by this backend.
	Resolve(sym S) (string, bool)

	// Len returns the number of stored strings.
	Len() int
}

// Cloner is implemented by backends that can produce an independent copy.
type Cloner[S symbol.Symbol] interface {
	CloneBackend() Backend[S]
}

// Equaler is implemented by backends that can compare themselves to another
// backend.
type Equaler[S symbol.Symbol] interface {
	EqualBackend(other Backend[S]) bool
}

// Iterator is implemented by backends that can enumerate their contents in
// intern order.
type Iterator[S symbol.Symbol] interface {
	All() iter.Seq2[S, string]
}

// Sizer is implemented by backends that can report their approximate memory
// footprint in bytes.
type Sizer interface {
	Bytes() int
}

// Kind names a built-in backend.
type Kind string

// Built-in backend kinds.
const (
	KindString Kind = "string"
	KindBuffer Kind = "buffer"
	KindBucket Kind = "bucket"
	KindSimple Kind = "simple"
)

// DefaultKind is the backend used when none is configured.
const DefaultKind = KindString

// Options are best-effort preallocation hints. They never affect correctness.
type Options struct {
	// Capacity is the expected number of strings.
	Capacity int

	// ByteCapacity is the expected total size of the strings in bytes. For
	// the bucket backend it is the chunk size.
	ByteCapacity int
}

// capacity returns the clamped string count hint.
func (o Options) capacity() int {
	return min(max(o.Capacity, 0), maxCapacityHint)
}

// byteCapacity returns the clamped byte size hint, derived from the string
// count hint when no explicit size is given.
func (o Options) byteCapacity() int {
	if o.ByteCapacity > 0 {
		return min(o.ByteCapacity, maxByteCapacityHint)
	}

	return o.capacity() * expectedStringLen
}

// ParseKind normalises a backend name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))

	switch kind {
	case KindString, KindBuffer, KindBucket, KindSimple:
		return kind, nil
	case "":
		return DefaultKind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// New constructs a built-in backend.
func New[S symbol.Symbol](kind Kind, opts Options) (Backend[S], error) {
	switch kind {
	case KindString, "":
		return NewString[S](opts), nil
	case KindBuffer:
		return NewBuffer[S](opts), nil
	case KindBucket:
		return NewBucket[S](opts), nil
	case KindSimple:
		return NewSimple[S](opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// view returns a string sharing memory with buf[start:end]. The caller must
// never write to that range again.
func view(buf []byte, start, end int) string {
	if start == end {
		return ""
	}

	return unsafe.String(&buf[start], end-start)
}
