package cbtwire

import (
	"fmt"
	"time"

	"github.com/gordian-engine/cbt"
	"github.com/gordian-engine/cbt/cbtquic"
)

const (
	RawEncoding    byte = 0
	SnappyEncoding byte = 1
)

// headerLen is the encoding byte plus the max depth byte.
const headerLen = 2

// Encoder is implemented by [*RawEncoder], [*SnappyEncoder] and [*AdaptiveEncoder].
type Encoder interface {
	SendTree(s cbtquic.SendStream, timeout time.Duration, tree *cbt.Tree) error
}

var (
	_ Encoder = (*RawEncoder)(nil)
	_ Encoder = (*SnappyEncoder)(nil)
	_ Encoder = (*AdaptiveEncoder)(nil)
)

// UnknownEncodingError is returned from [*Decoder.ReceiveTree]
// when a frame starts with an unrecognized encoding byte.
type UnknownEncodingError struct {
	Encoding byte
}

func (e UnknownEncodingError) Error() string {
	return fmt.Sprintf("unknown tree encoding 0x%x", e.Encoding)
}

// deadline converts a relative timeout to an absolute deadline.
// A non-positive timeout means no deadline.
func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// resize returns buf with length n, reallocating only when it lacks capacity.
func resize(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

func send(s cbtquic.SendStream, timeout time.Duration, frame []byte, kind string) error {
	if err := s.SetWriteDeadline(deadline(timeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if _, err := s.Write(frame); err != nil {
		return fmt.Errorf("failed to write %s tree: %w", kind, err)
	}

	return nil
}
