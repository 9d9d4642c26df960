package interner_test

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/interner/pkg/backend"
	"github.com/Sumatoshi-tech/interner/pkg/hashing"
	"github.com/Sumatoshi-tech/interner/pkg/interner"
	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// Test constants.
const (
	testSeed      = 0xDEC0DE
	testManyCount = 3000
	testRepeat    = 5
)

type sym = symbol.Sym32

var allKinds = []backend.Kind{
	backend.KindString,
	backend.KindBuffer,
	backend.KindBucket,
	backend.KindSimple,
}

// forEachKind runs fn against a fresh interner per backend kind, seeding the
// hasher explicitly for reproducibility.
func forEachKind(t *testing.T, fn func(t *testing.T, in *interner.StringInterner[sym])) {
	t.Helper()

	for _, kind := range allKinds {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			fn(t, interner.New(
				interner.WithBackend[sym](kind),
				interner.WithHasher[sym](hashing.XXHash{Seed: testSeed}),
			))
		})
	}
}

// TestNew_Empty verifies a fresh interner holds nothing.
func TestNew_Empty(t *testing.T) {
	t.Parallel()

	in := interner.New[sym]()

	assert.Equal(t, 0, in.Len())
	assert.True(t, in.IsEmpty())
}

// TestScenario_CatDogCat verifies the canonical dedup scenario.
func TestScenario_CatDogCat(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		cat1 := in.GetOrIntern("cat")
		dog := in.GetOrIntern("dog")
		cat2 := in.GetOrIntern("cat")

		assert.Equal(t, 2, in.Len())
		assert.False(t, in.IsEmpty())
		assert.Equal(t, cat1, cat2)
		assert.NotEqual(t, cat1, dog)

		got, ok := in.Resolve(dog)
		require.True(t, ok)
		assert.Equal(t, "dog", got)
	})
}

// TestProperties_RoundTripAndDistinct verifies round-trip and distinctness over many strings.
func TestProperties_RoundTripAndDistinct(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		seen := make(map[sym]string, testManyCount)

		for i := range testManyCount {
			s := fmt.Sprintf("string-%d", i)
			got := in.GetOrIntern(s)

			prev, dup := seen[got]
			require.False(t, dup, "symbol reused for %q and %q", prev, s)

			seen[got] = s
		}

		for got, s := range seen {
			resolved, ok := in.Resolve(got)
			require.True(t, ok)
			assert.Equal(t, s, resolved)
		}

		assert.Equal(t, testManyCount, in.Len())
	})
}

// TestProperties_IdempotentLength verifies repeated interning grows Len by one.
func TestProperties_IdempotentLength(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		in.GetOrIntern("base")

		first := in.GetOrIntern("value")
		for range testRepeat {
			assert.Equal(t, first, in.GetOrIntern(string([]byte("value"))))
		}

		assert.Equal(t, 2, in.Len())
	})
}

// TestGet_Pure verifies Get never changes the interner.
func TestGet_Pure(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		in.GetOrIntern("cat")
		before := in.Len()

		_, ok := in.Get("fish")
		assert.False(t, ok)
		assert.Equal(t, before, in.Len())

		interned := in.GetOrIntern("fish")

		got, ok := in.Get("fish")
		require.True(t, ok)
		assert.Equal(t, interned, got)
	})
}

// TestEmptyString verifies the empty string interns like any other value.
func TestEmptyString(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		a := in.GetOrIntern("")
		b := in.GetOrInternStatic("")

		assert.Equal(t, a, b)
		assert.Equal(t, 1, in.Len())

		got, ok := in.Resolve(a)
		require.True(t, ok)
		assert.Empty(t, got)
	})
}

// TestStaticUnifiesWithOwned verifies static and owned interning share symbols.
func TestStaticUnifiesWithOwned(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		owned := in.GetOrIntern(string([]byte("shared")))
		static := in.GetOrInternStatic("shared")
		assert.Equal(t, owned, static)

		static2 := in.GetOrInternStatic("static-first")
		owned2 := in.GetOrIntern(string([]byte("static-first")))
		assert.Equal(t, static2, owned2)

		assert.Equal(t, 2, in.Len())
	})
}

// TestGetOrInternBytes verifies the byte path copies and deduplicates.
func TestGetOrInternBytes(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		buf := []byte("reused")
		first := in.GetOrInternBytes(buf)

		copy(buf, "REUSED")

		got, ok := in.Resolve(first)
		require.True(t, ok)
		assert.Equal(t, "reused", got)

		assert.Equal(t, first, in.GetOrIntern("reused"))
		assert.NotEqual(t, first, in.GetOrInternBytes(buf))
		assert.Equal(t, in.GetOrIntern("REUSED"), in.GetOrInternBytes([]byte("REUSED")))
		assert.Equal(t, in.GetOrIntern(""), in.GetOrInternBytes(nil))
	})
}

// TestResolve_UnknownSymbol verifies foreign symbols resolve to absent.
func TestResolve_UnknownSymbol(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		in.GetOrIntern("one")

		_, ok := in.Resolve(0)
		assert.False(t, ok)

		_, ok = in.Resolve(symbol.MustFromIndex[sym](testManyCount))
		assert.False(t, ok)

		assert.PanicsWithError(t, "interner: encountered missing symbol: -1", func() {
			in.MustResolve(0)
		})
	})
}

// TestAll_InternOrder verifies iteration follows intern order for every backend.
func TestAll_InternOrder(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		values := []string{"delta", "alpha", "", "charlie", "bravo"}
		for _, v := range values {
			in.GetOrIntern(v)
		}

		in.GetOrIntern("alpha")

		var got []string

		for s, v := range in.All() {
			resolved, ok := in.Resolve(s)
			require.True(t, ok)
			assert.Equal(t, v, resolved)

			got = append(got, v)
		}

		assert.Equal(t, values, got)
		assert.Len(t, slices.Collect(in.Symbols()), len(values))
	})
}

// TestFromStrings verifies bulk construction deduplicates.
func TestFromStrings(t *testing.T) {
	t.Parallel()

	in := interner.FromStrings[sym]([]string{"a", "b", "a", "c", "b"})

	assert.Equal(t, 3, in.Len())

	a, ok := in.Get("a")
	require.True(t, ok)
	assert.Equal(t, 0, a.Index())
}

// TestFromSeqAndExtend verifies incremental construction.
func TestFromSeqAndExtend(t *testing.T) {
	t.Parallel()

	in := interner.FromSeq(slices.Values([]string{"x", "y"}), interner.WithBackend[sym](backend.KindBucket))
	in.Extend(slices.Values([]string{"y", "z"}))

	assert.Equal(t, 3, in.Len())
}

// TestClone_Scenario verifies clones resolve identically and mutate independently.
func TestClone_Scenario(t *testing.T) {
	t.Parallel()

	forEachKind(t, func(t *testing.T, in *interner.StringInterner[sym]) {
		syms := []sym{in.GetOrIntern("one"), in.GetOrIntern("two"), in.GetOrIntern("three")}

		clone, err := in.Clone()
		require.NoError(t, err)
		assert.True(t, in.Equal(clone))

		for _, s := range syms {
			want, ok := in.Resolve(s)
			require.True(t, ok)

			got, ok := clone.Resolve(s)
			require.True(t, ok)
			assert.Equal(t, want, got)
		}

		clone.GetOrIntern("four")

		assert.Equal(t, 3, in.Len())
		assert.Equal(t, 4, clone.Len())
		assert.False(t, in.Equal(clone))

		// The clone's index must point into its own backend.
		two, ok := clone.Get("two")
		require.True(t, ok)
		assert.Equal(t, syms[1], two)

		_, ok = in.Get("four")
		assert.False(t, ok)
	})
}

// TestEqual verifies equality semantics.
func TestEqual(t *testing.T) {
	t.Parallel()

	a := interner.FromStrings[sym]([]string{"p", "q"})
	b := interner.FromStrings[sym]([]string{"p", "q"})
	c := interner.FromStrings[sym]([]string{"q", "p"})

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

// TestStats verifies hit and miss accounting.
func TestStats(t *testing.T) {
	t.Parallel()

	in := interner.New[sym]()
	in.GetOrIntern("a")
	in.GetOrIntern("a")
	in.GetOrIntern("b")
	in.GetOrIntern("a")
	in.Get("a")

	stats := in.Stats()

	assert.Equal(t, 2, stats.Len)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.001)
	assert.Positive(t, stats.Bytes)
	assert.Positive(t, stats.TableCap)
	assert.Contains(t, stats.String(), "2 strings")
	assert.Zero(t, interner.Stats{}.HitRate())
}

// TestLogger_Growth verifies table growth is logged at debug level.
func TestLogger_Growth(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	in := interner.New(interner.WithLogger[sym](logger))

	for i := range testManyCount {
		in.GetOrIntern(fmt.Sprint(i))
	}

	assert.Contains(t, out.String(), "dedup table grew")
}

// TestReserve verifies explicit reservation avoids growth during interning.
func TestReserve(t *testing.T) {
	t.Parallel()

	in := interner.New[sym]()
	in.Reserve(testManyCount)
	capBefore := in.Stats().TableCap

	for i := range testManyCount {
		in.GetOrIntern(fmt.Sprint(i))
	}

	assert.Equal(t, capBefore, in.Stats().TableCap)
}

// TestWithCapacity_HugeHint verifies an unrealistic capacity hint is clamped.
func TestWithCapacity_HugeHint(t *testing.T) {
	t.Parallel()

	var in *interner.StringInterner[sym]

	require.NotPanics(t, func() {
		in = interner.New(interner.WithCapacity[sym](math.MaxInt))
	})

	in.Reserve(math.MaxInt)
	assert.Equal(t, 0, in.GetOrIntern("first").Index())
	assert.Equal(t, 1, in.Len())
}

// TestExhaustion verifies running out of symbols is fatal and leaves state intact.
func TestExhaustion(t *testing.T) {
	t.Parallel()

	in := interner.New[symbol.Sym16]()

	for i := range symbol.MaxIndex[symbol.Sym16]() + 1 {
		in.GetOrIntern(fmt.Sprint(i))
	}

	before := in.Len()

	func() {
		defer func() {
			rec := recover()
			require.NotNil(t, rec)

			err, ok := rec.(error)
			require.True(t, ok)
			require.ErrorIs(t, err, symbol.ErrExhausted)
		}()

		in.GetOrIntern("one too many")
	}()

	assert.Equal(t, before, in.Len())

	_, ok := in.Get("one too many")
	assert.False(t, ok)

	// Existing content still deduplicates after the failure.
	assert.Equal(t, 0, in.GetOrIntern("0").Index())
}

// TestNew_Panics verifies misconfiguration is reported.
func TestNew_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		interner.New(interner.WithBackend[sym]("arena"))
	})

	used := backend.NewSimple[sym](backend.Options{})
	used.Intern("already here")

	assert.PanicsWithValue(t, "interner: backend instance must be empty", func() {
		interner.New(interner.WithBackendInstance[sym](used))
	})
}

// minimal implements only the core backend contract.
type minimal struct {
	strs  []string
	drop  bool
	valid []bool
}

func (m *minimal) Intern(s string) sym {
	m.strs = append(m.strs, s)
	m.valid = append(m.valid, true)

	return symbol.MustFromIndex[sym](len(m.strs) - 1)
}

func (m *minimal) InternStatic(s string) sym { return m.Intern(s) }

func (m *minimal) Resolve(s sym) (string, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(m.strs) || (m.drop && !m.valid[idx]) {
		return "", false
	}

	return m.strs[idx], true
}

func (m *minimal) Len() int { return len(m.strs) }

// TestMinimalBackend_Fallbacks verifies behavior without optional capabilities.
func TestMinimalBackend_Fallbacks(t *testing.T) {
	t.Parallel()

	m := &minimal{}
	in := interner.New(interner.WithBackendInstance[sym](m))

	values := []string{"m1", "m2", "m3", "m4"}
	for _, v := range values {
		in.GetOrIntern(v)
	}

	got := slices.Collect(stringsOf(in.All()))
	assert.Equal(t, values, got)

	_, err := in.Clone()
	require.ErrorIs(t, err, interner.ErrUnsupported)

	assert.True(t, in.Equal(in))

	other := interner.New(interner.WithBackendInstance[sym](&minimal{}))
	other.Extend(slices.Values(values))
	assert.False(t, in.Equal(other))

	// Only the index is accounted without a Sizer: an 8-byte hash and a 4-byte symbol per slot.
	stats := in.Stats()
	assert.Equal(t, stats.TableCap*12, stats.Bytes)
}

// TestMissingSymbol verifies an index/backend mismatch is fatal.
func TestMissingSymbol(t *testing.T) {
	t.Parallel()

	m := &minimal{drop: true}
	in := interner.New(
		interner.WithBackendInstance[sym](m),
		interner.WithHasher[sym](constHasher{}),
	)

	in.GetOrIntern("lost")
	m.valid[0] = false

	defer func() {
		rec := recover()
		require.NotNil(t, rec)

		err, ok := rec.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, interner.ErrMissingSymbol)
	}()

	in.Get("anything with the same hash")
}

// constHasher maps every string to the same hash code.
type constHasher struct{}

func (constHasher) HashString(string) uint64 { return 1 }

// TestCollidingHasher verifies dedup is correct when every hash collides.
func TestCollidingHasher(t *testing.T) {
	t.Parallel()

	in := interner.New(interner.WithHasher[sym](constHasher{}))
	a := in.GetOrIntern("a")
	b := in.GetOrIntern("b")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, in.GetOrIntern("a"))
	assert.Equal(t, 2, in.Len())
}

// TestString verifies the debug rendering.
func TestString(t *testing.T) {
	t.Parallel()

	in := interner.FromStrings[sym]([]string{"a"})

	assert.Contains(t, in.String(), "StringInterner{len: 1, backend: *backend.String[")
}

// stringsOf drops the symbols from seq.
func stringsOf(seq iter.Seq2[sym, string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range seq {
			if !yield(v) {
				return
			}
		}
	}
}
