package cbtwire

import (
	"encoding/binary"
	"time"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbtquic"
)

// RawEncoder writes the storage words uncompressed.
type RawEncoder struct {
	buf []byte
}

// putRawFrame writes a complete raw frame for tree into buf,
// which must be exactly headerLen + 8*len(tree.Words()) long.
func putRawFrame(buf []byte, tree *cbt.Tree) {
	buf[0] = RawEncoding
	buf[1] = byte(tree.MaxDepth())

	// We use little endian since it is most likely
	// to match the endianness of the machine on either end.
	for i, w := range tree.Words() {
		binary.LittleEndian.PutUint64(buf[headerLen+i*8:], w)
	}
}

func (e *RawEncoder) SendTree(
	s cbtquic.SendStream,
	timeout time.Duration,
	tree *cbt.Tree,
) error {
	e.buf = resize(e.buf, headerLen+8*len(tree.Words()))
	putRawFrame(e.buf, tree)

	return send(s, timeout, e.buf, "raw")
}
