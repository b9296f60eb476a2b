// Package ctest contains helpers shared across tests in this module.
package ctest

import (
	"log/slog"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
)

// ShortDuration is how long [ReceiveSoon] waits for a value,
// and how long [NotSending] watches for one.
const ShortDuration = 250 * time.Millisecond

// NewLogger returns a logger that writes through t.Log,
// so output is only shown for failed or verbose tests.
func NewLogger(t testing.TB) *slog.Logger {
	return slogt.New(t)
}

// ReceiveSoon returns the next value from ch,
// failing the test if no value arrives within [ShortDuration].
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting for a %T", v)
		}
		return v
	case <-time.After(ShortDuration):
		var zero T
		t.Fatalf("no %T received within %s", zero, ShortDuration)
		return zero
	}
}

// SendSoon sends v on ch,
// failing the test if the send does not complete within [ShortDuration].
func SendSoon[T any](t testing.TB, ch chan<- T, v T) {
	t.Helper()

	select {
	case ch <- v:
	case <-time.After(ShortDuration):
		t.Fatalf("could not send %T within %s", v, ShortDuration)
	}
}

// NotSending fails the test if ch produces a value,
// or is closed, within [ShortDuration].
func NotSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		t.Fatalf("unexpected value received: %v", v)
	case <-time.After(ShortDuration):
	}
}

// IsSending fails the test if ch does not produce a value,
// or is not closed, within [ShortDuration].
// Use it on Ready channels that are closed rather than sent to.
func IsSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(ShortDuration):
		t.Fatalf("channel did not become ready within %s", ShortDuration)
	}
}

// IsClosed reports whether ch is closed, without blocking.
// A pending value on ch is consumed and counts as open.
func IsClosed[T any](ch <-chan T) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
		return false
	}
}
