package cbtsync

import (
	"errors"
	"fmt"
)

var errPublisherClosed = errors.New("publisher closed")

// ReplicaCanceledCode is the stream error code
// a [Replica] uses to cancel its stream when its context ends.
const ReplicaCanceledCode = 0x63627431 // "cbt1"

// SequenceError is returned from [*Replica.Run]
// when a snapshot does not advance the sequence number.
type SequenceError struct {
	Last, Got uint64
}

func (e SequenceError) Error() string {
	return fmt.Sprintf(
		"snapshot sequence number %d does not follow %d", e.Got, e.Last,
	)
}
