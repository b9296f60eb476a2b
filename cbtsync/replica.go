package cbtsync

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbtpubsub"
	"github.com/gordian-engine/cbt/cbtquic"
	"github.com/gordian-engine/cbt/cbtwire"
	"github.com/gordian-engine/cbt/internal/ctrace"
)

// ReplicaConfig is the configuration for [NewReplica].
type ReplicaConfig struct {
	// Deadline for reading the body of a snapshot,
	// once its sequence number has arrived.
	// Waiting for the next sequence number is never bounded.
	// Zero means no deadline.
	Timeout time.Duration

	// Deepest tree accepted from the publisher.
	// Zero means [cbtwire.DefaultMaxDepth].
	MaxDepth uint

	// Defaults to a no-op tracer if nil.
	Tracer ctrace.Tracer
}

// Update is a snapshot received by a [Replica].
type Update struct {
	Seq uint64

	// Owned by the receiver of the Update.
	Tree *cbt.Tree
}

// Replica maintains a copy of a published tree.
type Replica struct {
	log *slog.Logger

	tracer ctrace.Tracer

	timeout  time.Duration
	maxDepth uint

	updates chan Update

	mu     sync.Mutex
	latest Update

	// Unpublished tail of the snapshot stream.
	tail *cbtpubsub.Stream[Update]
}

// NewReplica returns a Replica that is ready for [*Replica.Run].
func NewReplica(log *slog.Logger, cfg ReplicaConfig) *Replica {
	if cfg.Timeout < 0 {
		panic(fmt.Errorf(
			"BUG: ReplicaConfig.Timeout must not be negative (got %s)", cfg.Timeout,
		))
	}

	if cfg.MaxDepth > cbt.MaxSupportedDepth {
		panic(fmt.Errorf(
			"BUG: ReplicaConfig.MaxDepth must not exceed %d (got %d)",
			cbt.MaxSupportedDepth, cfg.MaxDepth,
		))
	}

	return &Replica{
		log: log,

		tracer: ctrace.TracerOrNop(cfg.Tracer),

		timeout:  cfg.Timeout,
		maxDepth: cfg.MaxDepth,

		updates: make(chan Update, 1),

		tail: cbtpubsub.NewStream[Update](),
	}
}

// Updates returns a channel of received snapshots.
//
// The channel holds at most one value.
// When a new snapshot arrives before the previous one was received,
// the previous one is dropped;
// snapshots are complete, so only the newest matters.
//
// The channel is never closed.
func (r *Replica) Updates() <-chan Update {
	return r.updates
}

// Latest returns a copy of the most recent snapshot,
// or false if none has arrived yet.
func (r *Replica) Latest() (Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.latest.Tree == nil {
		return Update{}, false
	}
	return Update{Seq: r.latest.Seq, Tree: r.latest.Tree.Clone()}, true
}

// Subscribe returns the point in the snapshot stream
// where the next received snapshot will be published.
// Unlike [*Replica.Updates], a subscriber observes every snapshot.
//
// The trees in the stream are shared between all subscribers
// and must not be modified.
func (r *Replica) Subscribe() *cbtpubsub.Stream[Update] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tail
}

// Run reads snapshots from s until the publisher closes the stream,
// which returns nil, or until ctx is canceled or an error occurs.
// When ctx is canceled, s is canceled with [ReplicaCanceledCode].
//
// Run must not be called concurrently on the same Replica,
// but it may be called again with a new stream after it returns;
// sequence numbers then start over.
func (r *Replica) Run(ctx context.Context, s cbtquic.ReceiveStream) error {
	ctx, span := r.tracer.Start(ctx, "replica main loop")
	defer span.End()

	// Reads have no deadline while waiting for the next snapshot,
	// so canceling the stream is the only way to interrupt them.
	stop := context.AfterFunc(ctx, func() {
		s.CancelRead(ReplicaCanceledCode)
	})
	defer stop()

	dec := cbtwire.Decoder{MaxDepth: r.maxDepth}

	var (
		tree   cbt.Tree
		seqBuf [8]byte
		last   uint64
	)

	for {
		span.AddEvent("Awaiting next snapshot")

		if err := s.SetReadDeadline(time.Time{}); err != nil {
			return fmt.Errorf("failed to clear read deadline: %w", err)
		}
		if _, err := io.ReadFull(s, seqBuf[:]); err != nil {
			if ctxErr := context.Cause(ctx); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, io.EOF) {
				r.log.Info("Publisher closed stream", "last_seq", last)
				return nil
			}
			err = fmt.Errorf("failed to read sequence number: %w", err)
			r.fail(span, err)
			return err
		}

		seq := binary.BigEndian.Uint64(seqBuf[:])
		if seq <= last {
			err := SequenceError{Last: last, Got: seq}
			r.fail(span, err)
			return err
		}

		if err := dec.ReceiveTree(s, r.timeout, &tree); err != nil {
			if ctxErr := context.Cause(ctx); ctxErr != nil {
				return ctxErr
			}
			err = fmt.Errorf("failed to receive tree %d: %w", seq, err)
			r.fail(span, err)
			return err
		}
		last = seq

		span.AddEvent("Received snapshot", ctrace.WithAttributes(
			ctrace.SeqAttr(seq),
			ctrace.MaxDepthAttr(tree.MaxDepth()),
			ctrace.NumNodesAttr(tree.NumNodes()),
		))
		r.log.Debug(
			"Received tree",
			"seq", seq,
			"max_depth", tree.MaxDepth(),
			"num_nodes", tree.NumNodes(),
		)

		r.publish(Update{Seq: seq, Tree: &tree})
	}
}

func (r *Replica) fail(span ctrace.Span, err error) {
	span.AddEvent("Replica stopped", ctrace.WithAttributes(ctrace.ErrorAttr(err)))
	ctrace.SpanError(span, err)
	r.log.Info("Replica stopped", "err", err)
}

// publish records u as the latest snapshot,
// appends a copy to the snapshot stream, and offers another copy on r.updates.
// u.Tree is copied, not retained.
func (r *Replica) publish(u Update) {
	r.mu.Lock()
	if r.latest.Tree == nil {
		r.latest.Tree = u.Tree.Clone()
	} else if err := r.latest.Tree.LoadWords(u.Tree.Words()); err != nil {
		panic(fmt.Errorf("BUG: failed to copy a tree that was just loaded: %w", err))
	}
	r.latest.Seq = u.Seq

	r.tail.Publish(Update{Seq: u.Seq, Tree: u.Tree.Clone()})
	r.tail = r.tail.Next
	r.mu.Unlock()

	out := Update{Seq: u.Seq, Tree: u.Tree.Clone()}

	// Run is the only sender, so after draining
	// a stale value the send cannot block.
	select {
	case <-r.updates:
	default:
	}
	r.updates <- out
}
