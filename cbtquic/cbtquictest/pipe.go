package cbtquictest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gordian-engine/cbt/cbtquic"
)

// CanceledError is returned from a pipe end
// after the stream was canceled with Code.
type CanceledError struct {
	Code cbtquic.StreamErrorCode

	// Whether the cancellation came from the other end.
	Remote bool
}

func (e CanceledError) Error() string {
	if e.Remote {
		return fmt.Sprintf("stream canceled by peer with code %d", e.Code)
	}
	return fmt.Sprintf("stream canceled with code %d", e.Code)
}

var errWriteAfterClose = errors.New("write on closed stream")

// pipe is an unbounded in-memory byte stream.
// Unlike [net.Pipe], writes never wait for a reader,
// which matches a QUIC stream with a large flow control window.
type pipe struct {
	mu sync.Mutex

	buf bytes.Buffer

	// Closed and replaced whenever readers should re-check state.
	changed chan struct{}

	closed       bool
	readCancel   *cbtquic.StreamErrorCode
	writeCancel  *cbtquic.StreamErrorCode
	readDeadline time.Time

	writeDeadline time.Time
}

// NewPipe returns the two ends of a new in-memory stream.
func NewPipe() (*PipeSendStream, *PipeReceiveStream) {
	p := &pipe{changed: make(chan struct{})}
	return &PipeSendStream{p: p}, &PipeReceiveStream{p: p}
}

// broadcast must be called with p.mu held.
func (p *pipe) broadcast() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// PipeSendStream is the writing end of a pipe from [NewPipe].
type PipeSendStream struct {
	p *pipe
}

var _ cbtquic.SendStream = (*PipeSendStream)(nil)

func (s *PipeSendStream) Write(b []byte) (int, error) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeCancel != nil {
		return 0, CanceledError{Code: *p.writeCancel}
	}
	if p.readCancel != nil {
		return 0, CanceledError{Code: *p.readCancel, Remote: true}
	}
	if p.closed {
		return 0, errWriteAfterClose
	}
	if !p.writeDeadline.IsZero() && !time.Now().Before(p.writeDeadline) {
		return 0, os.ErrDeadlineExceeded
	}

	n, _ := p.buf.Write(b)
	p.broadcast()
	return n, nil
}

func (s *PipeSendStream) CancelWrite(code cbtquic.StreamErrorCode) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeCancel == nil {
		p.writeCancel = &code
		p.buf.Reset()
		p.broadcast()
	}
}

// Close marks the end of the stream.
// The reader sees [io.EOF] after draining what was written.
func (s *PipeSendStream) Close() error {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeCancel != nil {
		return CanceledError{Code: *p.writeCancel}
	}
	if !p.closed {
		p.closed = true
		p.broadcast()
	}
	return nil
}

func (s *PipeSendStream) SetWriteDeadline(t time.Time) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.writeDeadline = t
	return nil
}

// PipeReceiveStream is the reading end of a pipe from [NewPipe].
type PipeReceiveStream struct {
	p *pipe
}

var _ cbtquic.ReceiveStream = (*PipeReceiveStream)(nil)

func (s *PipeReceiveStream) Read(b []byte) (int, error) {
	p := s.p
	for {
		p.mu.Lock()
		if p.readCancel != nil {
			p.mu.Unlock()
			return 0, CanceledError{Code: *p.readCancel}
		}
		if p.writeCancel != nil {
			p.mu.Unlock()
			return 0, CanceledError{Code: *p.writeCancel, Remote: true}
		}
		if p.buf.Len() > 0 {
			n, _ := p.buf.Read(b)
			p.mu.Unlock()
			return n, nil
		}
		if p.closed {
			p.mu.Unlock()
			return 0, io.EOF
		}

		deadline := p.readDeadline
		changed := p.changed
		p.mu.Unlock()

		if deadline.IsZero() {
			<-changed
			continue
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return 0, os.ErrDeadlineExceeded
		}
		timer := time.NewTimer(wait)
		select {
		case <-changed:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *PipeReceiveStream) CancelRead(code cbtquic.StreamErrorCode) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readCancel == nil {
		p.readCancel = &code
		p.buf.Reset()
		p.broadcast()
	}
}

func (s *PipeReceiveStream) SetReadDeadline(t time.Time) error {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	p.readDeadline = t
	p.broadcast()
	return nil
}
