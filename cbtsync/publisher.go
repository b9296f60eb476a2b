package cbtsync

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbtquic"
	"github.com/gordian-engine/cbt/cbtwire"
	"github.com/gordian-engine/cbt/internal/ctrace"
)

// PublisherConfig is the configuration for [NewPublisher].
type PublisherConfig struct {
	// Stream receives every published snapshot.
	// The publisher owns it from this point on.
	Stream cbtquic.SendStream

	// Deadline for writing a single snapshot.
	// Zero means no deadline.
	Timeout time.Duration

	// Defaults to a [cbtwire.AdaptiveEncoder] if nil.
	Encoder cbtwire.Encoder

	// Defaults to a no-op tracer if nil.
	Tracer ctrace.Tracer
}

func (c PublisherConfig) validate() {
	if c.Stream == nil {
		panic(fmt.Errorf("BUG: PublisherConfig.Stream must not be nil"))
	}
	if c.Timeout < 0 {
		panic(fmt.Errorf(
			"BUG: PublisherConfig.Timeout must not be negative (got %s)", c.Timeout,
		))
	}
}

// Publisher writes tree snapshots to a stream.
// It is safe for concurrent use.
type Publisher struct {
	log *slog.Logger

	tracer ctrace.Tracer

	timeout time.Duration

	mu  sync.Mutex
	s   cbtquic.SendStream
	enc cbtwire.Encoder
	seq uint64

	// Set after the first failed write;
	// the stream may hold a partial snapshot, so it cannot be reused.
	err error

	seqBuf [8]byte
}

// NewPublisher returns a Publisher writing to cfg.Stream.
// Misconfiguration causes a panic.
func NewPublisher(log *slog.Logger, cfg PublisherConfig) *Publisher {
	cfg.validate()

	enc := cfg.Encoder
	if enc == nil {
		enc = new(cbtwire.AdaptiveEncoder)
	}

	return &Publisher{
		log: log,

		tracer: ctrace.TracerOrNop(cfg.Tracer),

		timeout: cfg.Timeout,

		s:   cfg.Stream,
		enc: enc,
	}
}

// Publish writes a snapshot of tree with the next sequence number,
// which it returns.
// The tree should have been reduced since its last split or merge,
// but it is only read, and only for the duration of the call.
//
// Once a write has failed, every later call returns the same error.
func (p *Publisher) Publish(ctx context.Context, tree *cbt.Tree) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return 0, p.err
	}
	if err := context.Cause(ctx); err != nil {
		return 0, err
	}

	seq := p.seq + 1

	_, span := p.tracer.Start(
		ctx,
		"publish tree",
		ctrace.WithAttributes(
			ctrace.SeqAttr(seq),
			ctrace.MaxDepthAttr(tree.MaxDepth()),
			ctrace.NumNodesAttr(tree.NumNodes()),
		),
	)
	defer span.End()

	if err := p.write(seq, tree); err != nil {
		p.err = err
		span.AddEvent("Failed to write tree", ctrace.WithAttributes(ctrace.ErrorAttr(err)))
		ctrace.SpanError(span, err)
		p.log.Info("Failed to publish tree", "seq", seq, "err", err)
		return 0, err
	}

	p.seq = seq
	p.log.Debug(
		"Published tree",
		"seq", seq,
		"max_depth", tree.MaxDepth(),
		"num_nodes", tree.NumNodes(),
	)
	return seq, nil
}

func (p *Publisher) write(seq uint64, tree *cbt.Tree) error {
	binary.BigEndian.PutUint64(p.seqBuf[:], seq)

	var deadline time.Time
	if p.timeout > 0 {
		deadline = time.Now().Add(p.timeout)
	}
	if err := p.s.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := p.s.Write(p.seqBuf[:]); err != nil {
		return fmt.Errorf("failed to write sequence number %d: %w", seq, err)
	}

	if err := p.enc.SendTree(p.s, p.timeout, tree); err != nil {
		return fmt.Errorf("failed to write tree %d: %w", seq, err)
	}
	return nil
}

// Seq returns the sequence number of the last successful [*Publisher.Publish],
// or zero if nothing has been published.
func (p *Publisher) Seq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Close closes the stream, so replicas see a clean end of stream.
// Later calls to [*Publisher.Publish] fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err == nil {
		p.err = errPublisherClosed
	}
	return p.s.Close()
}
