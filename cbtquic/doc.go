// Package cbtquic declares the QUIC connection and stream interfaces
// used to mirror trees, with adapters over [github.com/quic-go/quic-go].
//
// Code that only moves bytes should depend on the interfaces here
// rather than the concrete quic-go types,
// so that tests can substitute in-memory streams
// from the cbtquictest package.
package cbtquic
