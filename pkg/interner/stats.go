package interner

import (
	"fmt"
	"unsafe"

	"github.com/Sumatoshi-tech/interner/pkg/backend"
	"github.com/Sumatoshi-tech/interner/pkg/units"
)

// hashSize is the size of a stored hash code in bytes.
const hashSize = 8

// percent converts a fraction into a percentage.
const percent = 100

// Stats holds interner usage figures.
type Stats struct {
	Len      int
	Hits     int64 // GetOrIntern calls that found an existing symbol.
	Misses   int64 // GetOrIntern calls that interned a new string.
	TableCap int   // Slot count of the deduplication index.
	Bytes    int   // Approximate memory held by the index and the backend.
}

// HitRate returns the fraction of GetOrIntern calls that were deduplicated.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("%d strings, %s, hit rate %.1f%%",
		s.Len, units.FormatBytes(s.Bytes), s.HitRate()*percent)
}

// Stats returns current usage figures.
func (in *StringInterner[S]) Stats() Stats {
	var zero S

	tableBytes := in.dedup.Cap() * (hashSize + int(unsafe.Sizeof(zero)))

	backendBytes := 0
	if sizer, ok := in.backend.(backend.Sizer); ok {
		backendBytes = sizer.Bytes()
	}

	return Stats{
		Len:      in.Len(),
		Hits:     in.hits.Load(),
		Misses:   in.misses.Load(),
		TableCap: in.dedup.Cap(),
		Bytes:    tableBytes + backendBytes,
	}
}

// CacheHits returns the number of deduplicated GetOrIntern calls.
func (in *StringInterner[S]) CacheHits() int64 { return in.hits.Load() }

// CacheMisses returns the number of GetOrIntern calls that stored a new string.
func (in *StringInterner[S]) CacheMisses() int64 { return in.misses.Load() }
