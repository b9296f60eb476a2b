// Package cbtwire encodes the packed storage of a [cbt.Tree]
// for transmission over a [cbtquic.SendStream].
//
// Every frame starts with two bytes:
// the encoding ([RawEncoding] or [SnappyEncoding]) and the tree's max depth.
// The max depth fixes the number of storage words,
// so a raw frame is followed directly by the words, little endian.
// A snappy frame is followed by a big endian uint32 length
// and then the snappy block encoding of those same bytes.
//
// Encoders and the [Decoder] hold buffers that are reused across calls,
// so a single value should not be used concurrently.
package cbtwire
