// Package ctrace wraps the OpenTelemetry trace API
// with the attributes used across this module.
package ctrace

import (
	otelattr "go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	otelnoop "go.opentelemetry.io/otel/trace/noop"
)

type Tracer = oteltrace.Tracer

type Span = oteltrace.Span

type KeyValueAttr = otelattr.KeyValue

// InstrumentationName is the tracer name used when a component
// creates its own fallback tracer.
const InstrumentationName = "github.com/gordian-engine/cbt"

// TracerOrNop returns t, or a no-op tracer if t is nil.
func TracerOrNop(t Tracer) Tracer {
	if t != nil {
		return t
	}
	return otelnoop.NewTracerProvider().Tracer(InstrumentationName)
}

// WithAttributes is an alias to [oteltrace.WithAttributes]
// to allow consumers to only reference the ctrace package.
func WithAttributes(attrs ...KeyValueAttr) oteltrace.SpanStartEventOption {
	return oteltrace.WithAttributes(attrs...)
}

// SpanError sets the given span to error status,
// with detail from err.Error().
func SpanError(span oteltrace.Span, err error) {
	span.SetStatus(otelcodes.Error, err.Error())
}

// ErrorAttr returns an attribute with the key "err"
// and the value of err's Error() method.
func ErrorAttr(err error) KeyValueAttr {
	return otelattr.Stringer("err", errStringer{err: err})
}

type errStringer struct {
	err error
}

func (e errStringer) String() string {
	return e.err.Error()
}

func SeqAttr(seq uint64) KeyValueAttr {
	return otelattr.Int64("cbt.seq", int64(seq))
}

func MaxDepthAttr(d uint) KeyValueAttr {
	return otelattr.Int("cbt.max_depth", int(d))
}

func NumNodesAttr(n uint) KeyValueAttr {
	return otelattr.Int64("cbt.num_nodes", int64(n))
}
