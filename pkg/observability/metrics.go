package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/interner/pkg/interner"
)

// Metric names.
const (
	MetricEntries  = "interner.entries"
	MetricBytes    = "interner.bytes"
	MetricHits     = "interner.hits"
	MetricMisses   = "interner.misses"
	MetricTableCap = "interner.table.capacity"
)

// AttrInterner labels every data point with the registered interner name.
const AttrInterner = "interner"

// StatsProvider reports interner usage. Both *interner.StringInterner and
// *interner.Locked implement it; register a Locked when the interner is
// mutated concurrently with collection.
type StatsProvider interface {
	Stats() interner.Stats
}

// RegisterInternerMetrics registers observable gauges reporting the stats of
// provider under the given name. The returned registration stops reporting
// when unregistered.
func RegisterInternerMetrics(mt metric.Meter, name string, provider StatsProvider) (metric.Registration, error) {
	b := newMetricBuilder(mt)

	entries := b.gauge(MetricEntries, "Distinct strings interned", "{string}")
	size := b.gauge(MetricBytes, "Approximate memory held by the interner", "By")
	hits := b.gauge(MetricHits, "Intern calls that found an existing symbol", "{call}")
	misses := b.gauge(MetricMisses, "Intern calls that stored a new string", "{call}")
	tableCap := b.gauge(MetricTableCap, "Slot count of the deduplication index", "{slot}")

	if b.err != nil {
		return nil, b.err
	}

	attrs := metric.WithAttributes(attribute.String(AttrInterner, name))

	reg, err := mt.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := provider.Stats()

		o.ObserveInt64(entries, int64(stats.Len), attrs)
		o.ObserveInt64(size, int64(stats.Bytes), attrs)
		o.ObserveInt64(hits, stats.Hits, attrs)
		o.ObserveInt64(misses, stats.Misses, attrs)
		o.ObserveInt64(tableCap, int64(stats.TableCap), attrs)

		return nil
	}, b.observables()...)
	if err != nil {
		return nil, fmt.Errorf("register interner callback: %w", err)
	}

	return reg, nil
}
