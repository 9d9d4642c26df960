package backend

import (
	"encoding/binary"
	"iter"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/Sumatoshi-tech/interner/pkg/safeconv"
	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// bitsPerByte converts bitset lengths into bytes.
const bitsPerByte = 8

// Buffer packs every string into a single byte buffer as a uvarint length
// followed by the content. A symbol is the byte offset of its record, so
// symbols grow with the data and are not dense.
//
// Record starts are tracked in a bitset so that offsets pointing into the
// middle of a record resolve to absent instead of garbage.
type Buffer[S symbol.Symbol] struct {
	buf    []byte
	starts *bitset.BitSet
	count  int
}

// NewBuffer creates an empty Buffer backend.
func NewBuffer[S symbol.Symbol](opts Options) *Buffer[S] {
	byteCap := opts.byteCapacity()

	return &Buffer[S]{
		buf:    make([]byte, 0, byteCap),
		starts: bitset.New(safeconv.MustIntToUint(byteCap)),
	}
}

// Intern implements Backend.
func (b *Buffer[S]) Intern(s string) S {
	offset := len(b.buf)
	sym := symbol.MustFromIndex[S](offset)

	b.buf = binary.AppendUvarint(b.buf, uint64(len(s)))
	b.buf = append(b.buf, s...)
	b.starts.Set(safeconv.MustIntToUint(offset))
	b.count++

	return sym
}

// InternStatic implements Backend. The packed layout always copies.
func (b *Buffer[S]) InternStatic(s string) S {
	return b.Intern(s)
}

// Resolve implements Backend.
func (b *Buffer[S]) Resolve(sym S) (string, bool) {
	offset := symbol.ToIndex(sym)
	if offset < 0 || offset >= len(b.buf) || !b.starts.Test(safeconv.MustIntToUint(offset)) {
		return "", false
	}

	content, _ := b.record(offset)

	return content, true
}

// Len implements Backend.
func (b *Buffer[S]) Len() int {
	return b.count
}

// Bytes implements Sizer.
func (b *Buffer[S]) Bytes() int {
	return cap(b.buf) + safeconv.MustUintToInt(b.starts.Len())/bitsPerByte
}

// All implements Iterator.
func (b *Buffer[S]) All() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		for offset := 0; offset < len(b.buf); {
			content, next := b.record(offset)
			sym, _ := symbol.FromIndex[S](offset)

			if !yield(sym, content) {
				return
			}

			offset = next
		}
	}
}

// CloneBackend implements Cloner.
func (b *Buffer[S]) CloneBackend() Backend[S] {
	return &Buffer[S]{
		buf:    slices.Clone(b.buf),
		starts: b.starts.Clone(),
		count:  b.count,
	}
}

// EqualBackend implements Equaler. Record starts are derived from the buffer,
// so comparing the bytes is sufficient.
func (b *Buffer[S]) EqualBackend(other Backend[S]) bool {
	o, ok := other.(*Buffer[S])
	if !ok {
		return false
	}

	return b.count == o.count && slices.Equal(b.buf, o.buf)
}

// record decodes the record at offset and returns its content and the offset
// of the following record.
func (b *Buffer[S]) record(offset int) (content string, next int) {
	length, width := binary.Uvarint(b.buf[offset:])
	start := offset + width
	end := start + safeconv.MustUint64ToInt(length)

	return view(b.buf, start, end), end
}
