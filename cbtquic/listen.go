package cbtquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol negotiated for tree mirroring.
const ALPN = "cbt-mirror/1"

// DefaultConfig returns the QUIC configuration used by [Listen] and [Dial]
// when the caller does not supply one.
func DefaultConfig() *quic.Config {
	return &quic.Config{
		// The default of 5s is far more than a local mirror needs.
		HandshakeIdleTimeout: 2 * time.Second,

		// A max depth 22 tree is 2 MiB raw,
		// so the stream window must be able to grow past that.
		InitialStreamReceiveWindow: 256 * 1024,
		MaxStreamReceiveWindow:     8 * 1024 * 1024,

		InitialConnectionReceiveWindow: 512 * 1024,
		MaxConnectionReceiveWindow:     16 * 1024 * 1024,

		// One stream per mirrored tree.
		MaxIncomingStreams:    4,
		MaxIncomingUniStreams: 16,

		KeepAlivePeriod: 10 * time.Second,
	}
}

// withALPN returns a copy of conf that advertises [ALPN].
func withALPN(conf *tls.Config) *tls.Config {
	conf = conf.Clone()
	conf.NextProtos = []string{ALPN}
	return conf
}

// Listener accepts mirror connections.
type Listener struct {
	ql *quic.Listener
}

// Listen starts a QUIC listener on the UDP address addr.
// A nil quicConf uses [DefaultConfig].
func Listen(addr string, tlsConf *tls.Config, quicConf *quic.Config) (*Listener, error) {
	if quicConf == nil {
		quicConf = DefaultConfig()
	}

	ql, err := quic.ListenAddr(addr, withALPN(tlsConf), quicConf)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %q: %w", addr, err)
	}
	return &Listener{ql: ql}, nil
}

// Accept blocks until a connection arrives or ctx is canceled.
func (l *Listener) Accept(ctx context.Context) (Conn, error) {
	qc, err := l.ql.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return WrapConn(qc), nil
}

// Addr returns the local address of the listener.
func (l *Listener) Addr() net.Addr {
	return l.ql.Addr()
}

// Close stops accepting connections.
// Connections already accepted remain open.
func (l *Listener) Close() error {
	return l.ql.Close()
}

// Dial opens a QUIC connection to addr.
// A nil quicConf uses [DefaultConfig].
func Dial(
	ctx context.Context, addr string, tlsConf *tls.Config, quicConf *quic.Config,
) (Conn, error) {
	if quicConf == nil {
		quicConf = DefaultConfig()
	}

	qc, err := quic.DialAddr(ctx, addr, withALPN(tlsConf), quicConf)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %q: %w", addr, err)
	}
	return WrapConn(qc), nil
}
