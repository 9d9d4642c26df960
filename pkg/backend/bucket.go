package backend

import (
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/interner/pkg/symbol"
	"github.com/Sumatoshi-tech/interner/pkg/units"
)

// defaultChunkSize is the bucket chunk size when no byte capacity is given.
const defaultChunkSize = 4 * units.KiB

// stringHeaderSize is the size of a string header in bytes.
const stringHeaderSize = 16

// Bucket copies strings into fixed-capacity chunks. A chunk is never grown
// past its capacity, so it never moves and spans into it stay valid. When the
// head chunk is full a new one is started; the old chunk stays alive through
// the spans that reference it.
//
// InternStatic skips the copy entirely and records the caller's string.
type Bucket[S symbol.Symbol] struct {
	spans     []string
	head      []byte
	chunkSize int
	retired   int
}

// NewBucket creates an empty Bucket backend.
func NewBucket[S symbol.Symbol](opts Options) *Bucket[S] {
	chunkSize := defaultChunkSize
	if opts.ByteCapacity > 0 {
		chunkSize = opts.byteCapacity()
	}

	return &Bucket[S]{
		spans:     make([]string, 0, opts.capacity()),
		chunkSize: chunkSize,
	}
}

// Intern implements Backend.
func (b *Bucket[S]) Intern(s string) S {
	sym := symbol.MustFromIndex[S](len(b.spans))

	b.spans = append(b.spans, b.alloc(s))

	return sym
}

// InternStatic implements Backend.
func (b *Bucket[S]) InternStatic(s string) S {
	sym := symbol.MustFromIndex[S](len(b.spans))

	b.spans = append(b.spans, s)

	return sym
}

// Resolve implements Backend.
func (b *Bucket[S]) Resolve(sym S) (string, bool) {
	idx := symbol.ToIndex(sym)
	if idx < 0 || idx >= len(b.spans) {
		return "", false
	}

	return b.spans[idx], true
}

// Len implements Backend.
func (b *Bucket[S]) Len() int {
	return len(b.spans)
}

// Bytes implements Sizer.
func (b *Bucket[S]) Bytes() int {
	return b.retired + cap(b.head) + cap(b.spans)*stringHeaderSize
}

// All implements Iterator.
func (b *Bucket[S]) All() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		for idx, s := range b.spans {
			sym, _ := symbol.FromIndex[S](idx)
			if !yield(sym, s) {
				return
			}
		}
	}
}

// CloneBackend implements Cloner. Stored spans are immutable and shared with
// the clone; the clone starts a fresh head chunk so the two never write into
// the same spare capacity.
func (b *Bucket[S]) CloneBackend() Backend[S] {
	return &Bucket[S]{
		spans:     slices.Clone(b.spans),
		chunkSize: b.chunkSize,
		retired:   b.retired + cap(b.head),
	}
}

// EqualBackend implements Equaler.
func (b *Bucket[S]) EqualBackend(other Backend[S]) bool {
	o, ok := other.(*Bucket[S])
	if !ok {
		return false
	}

	return slices.Equal(b.spans, o.spans)
}

// alloc copies s into the head chunk, starting a new chunk if s does not fit.
func (b *Bucket[S]) alloc(s string) string {
	if len(s) == 0 {
		return ""
	}

	if cap(b.head)-len(b.head) < len(s) {
		b.retired += cap(b.head)
		b.head = make([]byte, 0, max(b.chunkSize, len(s)))
	}

	start := len(b.head)
	b.head = append(b.head, s...)

	return view(b.head, start, len(b.head))
}
