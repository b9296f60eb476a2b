package ctrace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gordian-engine/cbt/internal/ctrace"
	"github.com/stretchr/testify/require"
)

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	kv := ctrace.ErrorAttr(errors.New("boom"))
	require.Equal(t, "err", string(kv.Key))
	require.Equal(t, "boom", kv.Value.AsString())
}

func TestTracerOrNop(t *testing.T) {
	t.Parallel()

	tr := ctrace.TracerOrNop(nil)
	require.NotNil(t, tr)

	// The no-op span accepts events and errors without recording.
	_, span := tr.Start(context.Background(), "test")
	span.AddEvent("event", ctrace.WithAttributes(
		ctrace.ErrorAttr(errors.New("boom")),
		ctrace.SeqAttr(1),
	))
	ctrace.SpanError(span, errors.New("boom"))
	require.False(t, span.IsRecording())
	span.End()
}
