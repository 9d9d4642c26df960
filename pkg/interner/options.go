package interner

import (
	"log/slog"

	"github.com/Sumatoshi-tech/interner/pkg/backend"
	"github.com/Sumatoshi-tech/interner/pkg/hashing"
	"github.com/Sumatoshi-tech/interner/pkg/symbol"
)

// settings collects the options passed to New.
type settings[S symbol.Symbol] struct {
	capacity     int
	byteCapacity int
	kind         backend.Kind
	instance     backend.Backend[S]
	hasher       hashing.Hasher
	logger       *slog.Logger
}

// Option configures a StringInterner.
type Option[S symbol.Symbol] func(*settings[S])

// WithCapacity presizes the deduplication index and the backend for n strings.
// It is a hint: unrealistically large values are clamped.
func WithCapacity[S symbol.Symbol](n int) Option[S] {
	return func(s *settings[S]) {
		s.capacity = n
	}
}

// WithByteCapacity presizes backend storage for n bytes of string content.
// For the bucket backend it sets the chunk size.
func WithByteCapacity[S symbol.Symbol](n int) Option[S] {
	return func(s *settings[S]) {
		s.byteCapacity = n
	}
}

// WithBackend selects a built-in storage strategy.
func WithBackend[S symbol.Symbol](kind backend.Kind) Option[S] {
	return func(s *settings[S]) {
		s.kind = kind
	}
}

// WithBackendInstance uses b as storage. b must be empty and must not be
// shared with another interner. Capacity hints then only apply to the index.
func WithBackendInstance[S symbol.Symbol](b backend.Backend[S]) Option[S] {
	return func(s *settings[S]) {
		s.instance = b
	}
}

// WithHasher sets the hasher used to probe the deduplication index.
func WithHasher[S symbol.Symbol](h hashing.Hasher) Option[S] {
	return func(s *settings[S]) {
		s.hasher = h
	}
}

// WithLogger sets the logger for diagnostics. A nil logger discards output.
// The interner logs without a context, so context-derived attributes such as
// trace IDs never appear on its records.
func WithLogger[S symbol.Symbol](l *slog.Logger) Option[S] {
	return func(s *settings[S]) {
		s.logger = l
	}
}
