package backend

import (
	"iter"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// Simple keeps every string in its own allocation.
type Simple[S symbol.Symbol] struct {
	strs  []string
	bytes int
}

// NewSimple creates an empty Simple backend.
func NewSimple[S symbol.Symbol](opts Options) *Simple[S] {
	return &Simple[S]{
		strs: make([]string, 0, opts.capacity()),
	}
}

// Intern implements Backend.
func (b *Simple[S]) Intern(s string) S {
	sym := symbol.MustFromIndex[S](len(b.strs))

	b.strs = append(b.strs, strings.Clone(s))
	b.bytes += len(s)

	return sym
}

// InternStatic implements Backend.
func (b *Simple[S]) InternStatic(s string) S {
	sym := symbol.MustFromIndex[S](len(b.strs))

	b.strs = append(b.strs, s)

	return sym
}

// Resolve implements Backend.
func (b *Simple[S]) Resolve(sym S) (string, bool) {
	idx := symbol.ToIndex(sym)
	if idx < 0 || idx >= len(b.strs) {
		return "", false
	}

	return b.strs[idx], true
}

// Len implements Backend.
func (b *Simple[S]) Len() int {
	return len(b.strs)
}

// Bytes implements Sizer. Static strings are not counted since they are not
// owned by the backend.
func (b *Simple[S]) Bytes() int {
	return b.bytes + cap(b.strs)*stringHeaderSize
}

// All implements Iterator.
func (b *Simple[S]) All() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		for idx, s := range b.strs {
			sym, _ := symbol.FromIndex[S](idx)
			if !yield(sym, s) {
				return
			}
		}
	}
}

// CloneBackend implements Cloner.
func (b *Simple[S]) CloneBackend() Backend[S] {
	return &Simple[S]{
		strs:  slices.Clone(b.strs),
		bytes: b.bytes,
	}
}

// EqualBackend implements Equaler.
func (b *Simple[S]) EqualBackend(other Backend[S]) bool {
	o, ok := other.(*Simple[S])
	if !ok {
		return false
	}

	return slices.Equal(b.strs, o.strs)
}
