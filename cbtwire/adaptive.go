package cbtwire

import (
	"time"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbtquic"
)

// AdaptiveEncoder compresses every tree with snappy,
// but sends the raw frame instead whenever it is no larger.
//
// Small trees fit in one or two words and never compress,
// while large, sparsely refined trees compress well.
type AdaptiveEncoder struct {
	se SnappyEncoder
}

func (e *AdaptiveEncoder) SendTree(
	s cbtquic.SendStream,
	timeout time.Duration,
	tree *cbt.Tree,
) error {
	e.se.encode(tree)

	if len(e.se.wordBuf) <= len(e.se.encBuf) {
		// The snappy encoder already built a complete raw frame.
		return send(s, timeout, e.se.wordBuf, "raw")
	}

	return send(s, timeout, e.se.encBuf, "snappy")
}
