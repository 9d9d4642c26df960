// Package observability wires interner telemetry into slog, OpenTelemetry
// metrics and a Prometheus scrape endpoint.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID   = "trace_id"
	attrSpanID    = "span_id"
	attrService   = "service"
	attrComponent = "component"
)

// ErrUnknownFormat is returned for an unsupported log format.
var ErrUnknownFormat = errors.New("observability: unknown log format")

// Format selects the slog output encoding.
type Format string

// Supported log formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// LoggingConfig configures NewLogger.
type LoggingConfig struct {
	Level     string
	Format    Format
	Service   string
	Component string
}

// NewLogger builds a logger writing to w. An empty level means info and an
// empty format means text.
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level

	if cfg.Level != "" {
		err := level.UnmarshalText([]byte(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler

	switch Format(strings.ToLower(string(cfg.Format))) {
	case FormatText, "":
		inner = slog.NewTextHandler(w, opts)
	case FormatJSON:
		inner = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}

	return slog.New(NewHandler(inner, cfg.Service, cfg.Component)), nil
}

// Handler is an [slog.Handler] that tags every record with the owning service
// and component. Records logged through a context carrying an active span,
// e.g. via InfoContext, also get its trace and span IDs; records logged
// without a context, such as the interner's own diagnostics, do not.
type Handler struct {
	inner slog.Handler
}

// NewHandler wraps inner. Service and component are attached up front so they
// stay at the top level under later WithGroup calls. Empty values are omitted.
func NewHandler(inner slog.Handler, service, component string) *Handler {
	var attrs []slog.Attr

	if service != "" {
		attrs = append(attrs, slog.String(attrService, service))
	}

	if component != "" {
		attrs = append(attrs, slog.String(attrComponent, component))
	}

	if len(attrs) > 0 {
		inner = inner.WithAttrs(attrs)
	}

	return &Handler{inner: inner}
}

// Enabled delegates to the inner handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds span context attributes, then delegates.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := h.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("observability handler: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
