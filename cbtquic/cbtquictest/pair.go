package cbtquictest

import (
	"context"
	"crypto/ed25519"
	crand "crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/gordian-engine/cbt/cbtquic"
	"github.com/gordian-engine/cbt/internal/ctest"
	"github.com/stretchr/testify/require"
)

// ServerName is the DNS name in certificates from [GenerateCert].
const ServerName = "mirror.cbt.test"

// GenerateCert returns a short-lived self-signed ed25519 certificate for [ServerName],
// and a pool trusting it.
func GenerateCert() (tls.Certificate, *x509.CertPool, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	serial, err := crand.Int(crand.Reader, new(big.Int).Lsh(big.NewInt(1), 127))
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("failed to generate serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Test Mirror"},
			CommonName:   ServerName,
		},
		NotBefore: time.Now().Add(-15 * time.Second),
		NotAfter:  time.Now().Add(time.Hour),

		KeyUsage: x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		BasicConstraintsValid: true,
		IsCA:                  true,

		DNSNames: []string{ServerName},
	}

	der, err := x509.CreateCertificate(nil, template, template, pub, priv)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("failed to parse certificate from DER: %w", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
		Leaf:        cert,
	}, pool, nil
}

// NewPair returns two connected QUIC connections over the loopback interface.
// The listener and both connections are closed during t's cleanup.
func NewPair(t *testing.T, ctx context.Context) (client, server cbtquic.Conn) {
	t.Helper()

	cert, pool, err := GenerateCert()
	require.NoError(t, err)

	l, err := cbtquic.Listen(
		"127.0.0.1:0",
		&tls.Config{Certificates: []tls.Certificate{cert}},
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	acceptedCh := make(chan cbtquic.Conn, 1)
	go func() {
		c, err := l.Accept(ctx)
		if err != nil {
			t.Error(err)
			acceptedCh <- nil
			return
		}
		acceptedCh <- c
	}()

	port := l.Addr().(*net.UDPAddr).Port
	client, err = cbtquic.Dial(
		ctx,
		fmt.Sprintf("127.0.0.1:%d", port),
		&tls.Config{RootCAs: pool, ServerName: ServerName},
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.CloseWithError(0, "test done") })

	server = ctest.ReceiveSoon(t, acceptedCh)
	require.NotNil(t, server)
	t.Cleanup(func() { _ = server.CloseWithError(0, "test done") })

	return client, server
}
