package cbtwire

import (
	"encoding/binary"
	"time"

	"github.com/golang/snappy"
	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbtquic"
)

// snappyHeaderLen is the frame header plus the uint32 block length.
const snappyHeaderLen = headerLen + 4

// SnappyEncoder writes the storage words as a snappy block.
//
// Trees are mostly zero bits outside of refined regions,
// so this usually shrinks the frame considerably.
type SnappyEncoder struct {
	// A complete raw frame for the tree.
	// [AdaptiveEncoder] sends this directly when compression does not help.
	wordBuf []byte

	// The complete snappy frame.
	encBuf []byte
}

func (e *SnappyEncoder) encode(tree *cbt.Tree) {
	nBytes := 8 * len(tree.Words())

	e.wordBuf = resize(e.wordBuf, headerLen+nBytes)
	putRawFrame(e.wordBuf, tree)

	// Size for the worst case so snappy.Encode never allocates,
	// then trim to the actual encoded size.
	e.encBuf = resize(e.encBuf, snappyHeaderLen+snappy.MaxEncodedLen(nBytes))
	e.encBuf[0] = SnappyEncoding
	e.encBuf[1] = byte(tree.MaxDepth())

	res := snappy.Encode(e.encBuf[snappyHeaderLen:], e.wordBuf[headerLen:])
	binary.BigEndian.PutUint32(e.encBuf[headerLen:], uint32(len(res)))

	e.encBuf = e.encBuf[:snappyHeaderLen+len(res)]
}

func (e *SnappyEncoder) SendTree(
	s cbtquic.SendStream,
	timeout time.Duration,
	tree *cbt.Tree,
) error {
	e.encode(tree)

	return send(s, timeout, e.encBuf, "snappy")
}
