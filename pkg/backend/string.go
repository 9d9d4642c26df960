package backend

import (
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// intSize is the size of an int in bytes.
const intSize = 8

// String stores all strings back to back in one byte buffer and remembers
// where each one ends. Symbols are dense indices into the end table.
//
// The buffer is append-only: growth may move it, but previously resolved
// strings keep referencing the old array, whose bytes are never rewritten.
type String[S symbol.Symbol] struct {
	buf  []byte
	ends []int
}

// NewString creates an empty String backend.
func NewString[S symbol.Symbol](opts Options) *String[S] {
	return &String[S]{
		buf:  make([]byte, 0, opts.byteCapacity()),
		ends: make([]int, 0, opts.capacity()),
	}
}

// Intern implements Backend.
func (b *String[S]) Intern(s string) S {
	sym := symbol.MustFromIndex[S](len(b.ends))

	b.buf = append(b.buf, s...)
	b.ends = append(b.ends, len(b.buf))

	return sym
}

// InternStatic implements Backend. The contiguous layout always copies.
func (b *String[S]) InternStatic(s string) S {
	return b.Intern(s)
}

// Resolve implements Backend.
func (b *String[S]) Resolve(sym S) (string, bool) {
	idx := symbol.ToIndex(sym)
	if idx < 0 || idx >= len(b.ends) {
		return "", false
	}

	return b.span(idx), true
}

// Len implements Backend.
func (b *String[S]) Len() int {
	return len(b.ends)
}

// Bytes implements Sizer.
func (b *String[S]) Bytes() int {
	return cap(b.buf) + cap(b.ends)*intSize
}

// All implements Iterator.
func (b *String[S]) All() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		for idx := range b.ends {
			sym, _ := symbol.FromIndex[S](idx)
			if !yield(sym, b.span(idx)) {
				return
			}
		}
	}
}

// CloneBackend implements Cloner.
func (b *String[S]) CloneBackend() Backend[S] {
	return &String[S]{
		buf:  slices.Clone(b.buf),
		ends: slices.Clone(b.ends),
	}
}

// EqualBackend implements Equaler.
func (b *String[S]) EqualBackend(other Backend[S]) bool {
	o, ok := other.(*String[S])
	if !ok {
		return false
	}

	return slices.Equal(b.ends, o.ends) && slices.Equal(b.buf, o.buf)
}

func (b *String[S]) span(idx int) string {
	start := 0
	if idx > 0 {
		start = b.ends[idx-1]
	}

	return view(b.buf, start, b.ends[idx])
}
