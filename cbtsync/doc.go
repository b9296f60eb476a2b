// Package cbtsync mirrors a [cbt.Tree] from one process to others.
//
// A [Publisher] writes a sequence of snapshots to a single stream,
// each a big endian uint64 sequence number followed by a cbtwire frame.
// A [Replica] reads those snapshots into its own tree
// and hands out copies to its consumers.
//
// Snapshots are complete, not deltas,
// so a replica only ever needs the most recent one.
package cbtsync
