package interner

import (
	"iter"
	"sync"

	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// Locked is a StringInterner guarded by a read-write mutex, safe for
// concurrent use. Lookups of already interned strings only take the read lock.
type Locked[S symbol.Symbol] struct {
	mu sync.RWMutex
	in *StringInterner[S]
}

// NewLocked creates an empty Locked interner.
func NewLocked[S symbol.Symbol](opts ...Option[S]) *Locked[S] {
	return &Locked[S]{in: New(opts...)}
}

// Wrap guards an existing interner. The caller must stop using in directly.
func Wrap[S symbol.Symbol](in *StringInterner[S]) *Locked[S] {
	return &Locked[S]{in: in}
}

// GetOrIntern returns the symbol of s, interning it if needed.
func (l *Locked[S]) GetOrIntern(s string) S {
	if sym, ok := l.get(s); ok {
		return sym
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another writer may have interned s between the two locks.
	return l.in.GetOrIntern(s)
}

// GetOrInternStatic is the locked form of StringInterner.GetOrInternStatic.
func (l *Locked[S]) GetOrInternStatic(s string) S {
	if sym, ok := l.get(s); ok {
		return sym
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.in.GetOrInternStatic(s)
}

// Get returns the symbol of s if s has been interned.
func (l *Locked[S]) Get(s string) (S, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.in.Get(s)
}

// Resolve returns the string for sym.
func (l *Locked[S]) Resolve(sym S) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.in.Resolve(sym)
}

// Len returns the number of distinct strings interned.
func (l *Locked[S]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.in.Len()
}

// Stats returns current usage figures.
func (l *Locked[S]) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.in.Stats()
}

// All yields every interned string in intern order while holding the read
// lock. Interning from inside the loop deadlocks.
func (l *Locked[S]) All() iter.Seq2[S, string] {
	return func(yield func(S, string) bool) {
		l.mu.RLock()
		defer l.mu.RUnlock()

		for sym, s := range l.in.All() {
			if !yield(sym, s) {
				return
			}
		}
	}
}

// Snapshot returns an unsynchronized clone of the current contents.
func (l *Locked[S]) Snapshot() (*StringInterner[S], error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.in.Clone()
}

// get performs the read-locked fast path and counts a hit on success.
func (l *Locked[S]) get(s string) (S, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sym, ok := l.in.Get(s)
	if ok {
		l.in.hits.Add(1)
	}

	return sym, ok
}
