package cbtwire

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/golang/snappy"
	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/bitfield"
	"github.com/gordian-engine/cbt/cbtquic"
)

// DefaultMaxDepth is the deepest tree a [Decoder] accepts
// when its MaxDepth field is zero.
// A tree at this depth occupies 8 MiB of storage.
const DefaultMaxDepth = 24

// Decoder reads frames in any encoding.
// The zero value is ready to use.
type Decoder struct {
	// Deepest tree accepted from a frame header.
	// Frames declaring a deeper tree are rejected before
	// any storage is allocated.
	// Zero means [DefaultMaxDepth].
	// Values above [cbt.MaxSupportedDepth] are clamped to it.
	MaxDepth uint

	// Holds the frame header, and the snappy block when present.
	encBuf []byte

	// The little endian storage bytes.
	wordBuf []byte

	words []uint64
}

// ReceiveTree reads one frame from s and loads it into tree
// with [*cbt.Tree.LoadWords].
// The tree may have a different max depth from the frame,
// or may be uninitialized; it is resized as needed.
//
// The timeout covers reading the entire frame.
// On error, tree is unchanged.
func (d *Decoder) ReceiveTree(
	s cbtquic.ReceiveStream,
	timeout time.Duration,
	tree *cbt.Tree,
) error {
	if err := s.SetReadDeadline(deadline(timeout)); err != nil {
		return fmt.Errorf("failed to set read deadline for tree: %w", err)
	}

	d.encBuf = resize(d.encBuf, headerLen)
	if _, err := io.ReadFull(s, d.encBuf); err != nil {
		return fmt.Errorf("failed to read tree frame header: %w", err)
	}

	enc, maxDepth := d.encBuf[0], uint(d.encBuf[1])
	if enc != RawEncoding && enc != SnappyEncoding {
		return UnknownEncodingError{Encoding: enc}
	}
	if limit := d.maxDepth(); maxDepth > limit {
		return cbt.HeaderError{Reason: fmt.Sprintf(
			"max depth %d exceeds limit of %d", maxDepth, limit,
		)}
	}

	nWords := cbt.StorageWords(maxDepth)
	nBytes := 8 * nWords

	switch enc {
	case RawEncoding:
		d.wordBuf = resize(d.wordBuf, nBytes)
		if _, err := io.ReadFull(s, d.wordBuf); err != nil {
			return fmt.Errorf("failed to read raw tree data: %w", err)
		}
	case SnappyEncoding:
		if err := d.readSnappy(s, nBytes); err != nil {
			return err
		}
	}

	if cap(d.words) < nWords {
		d.words = make([]uint64, nWords)
	} else {
		d.words = d.words[:nWords]
	}
	for i := range d.words {
		d.words[i] = binary.LittleEndian.Uint64(d.wordBuf[i*8:])
	}

	// Up to max depth 4 every tree fits in one word,
	// so the word count alone cannot catch a mismatched header.
	if got, ok := bitfield.LeastSignificantBit(d.words[0]); ok && got != maxDepth {
		return cbt.HeaderError{Reason: fmt.Sprintf(
			"frame declares max depth %d but storage declares %d", maxDepth, got,
		)}
	}

	if err := tree.LoadWords(d.words); err != nil {
		return fmt.Errorf("failed to load received tree: %w", err)
	}
	return nil
}

func (d *Decoder) maxDepth() uint {
	if d.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return min(d.MaxDepth, cbt.MaxSupportedDepth)
}

func (d *Decoder) readSnappy(s cbtquic.ReceiveStream, nBytes int) error {
	d.encBuf = resize(d.encBuf, 4)
	if _, err := io.ReadFull(s, d.encBuf); err != nil {
		return fmt.Errorf("failed to read snappy length for tree: %w", err)
	}

	encSz := binary.BigEndian.Uint32(d.encBuf)
	if maxSz := snappy.MaxEncodedLen(nBytes); maxSz < 0 || encSz > uint32(maxSz) {
		return fmt.Errorf(
			"snappy block of %d bytes exceeds bound of %d for %d decoded bytes",
			encSz, maxSz, nBytes,
		)
	}

	d.encBuf = resize(d.encBuf, int(encSz))
	if _, err := io.ReadFull(s, d.encBuf); err != nil {
		return fmt.Errorf("failed to read snappy-encoded tree: %w", err)
	}

	decSz, err := snappy.DecodedLen(d.encBuf)
	if err != nil {
		return fmt.Errorf("failed to calculate snappy-decoded tree length: %w", err)
	}
	if decSz != nBytes {
		return fmt.Errorf(
			"calculated decoded size of %d bytes but expected %d", decSz, nBytes,
		)
	}

	wb, err := snappy.Decode(d.wordBuf, d.encBuf)
	if err != nil {
		return fmt.Errorf("failed to decode snappy tree: %w", err)
	}

	// wb is nil on error, so only keep it after success.
	d.wordBuf = wb
	return nil
}
