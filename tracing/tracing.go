package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/optimistic/store"
)

// Default tracer name for optimistic state spans.
const defaultTracerName = "optimistic"

// Config configures the OpenTelemetry observer.
type Config struct {
	// TracerName is the name of the tracer (default: "optimistic").
	TracerName string

	// Attributes are added to every transition span, for example the name
	// of the UI field the store backs.
	Attributes []attribute.KeyValue
}

// Option configures the OpenTelemetry observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithAttributes adds constant attributes to every transition span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Observer records store transitions as spans. It implements
// store.Observer and may be shared by any number of stores.
type Observer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

// New creates an Observer using the global tracer provider.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	return &Observer{
		tracer: otel.Tracer(config.TracerName),
		attrs:  config.Attributes,
	}
}

// Transition implements store.Observer.
func (o *Observer) Transition(op store.Op, pending bool) {
	attrs := make([]attribute.KeyValue, 0, len(o.attrs)+2)
	attrs = append(attrs, o.attrs...)
	attrs = append(attrs,
		attribute.String("optimistic.op", string(op)),
		attribute.Bool("optimistic.pending", pending),
	)

	_, span := o.tracer.Start(
		context.Background(),
		"optimistic."+string(op),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
	if op == store.OpReject {
		span.SetStatus(codes.Error, "outcome failed, reverted to fallback")
	}
	span.End()
}
