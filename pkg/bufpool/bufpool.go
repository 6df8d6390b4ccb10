// Package bufpool provides a two-tier buffer pool for datagram I/O,
// reducing per-packet allocation on the receive path.
//
// Two size classes cover the traffic shape of a simulator circuit:
//   - datagram buffers (2KB) hold anything within the application MTU plus
//     framing and ack tails
//   - jumbo buffers (64KB) hold the socket read scratch and oversize
//     local traffic
//
// Requests beyond the jumbo class allocate directly and are never pooled,
// so a rare giant buffer does not pin memory. All operations are safe for
// concurrent use via sync.Pool.
package bufpool

import (
	"sync"
)

// Buffer size classes.
const (
	// DatagramSize covers MTU-bounded wire traffic (2KB).
	DatagramSize = 2 << 10

	// JumboSize covers socket read scratch (64KB).
	JumboSize = 64 << 10
)

var (
	datagram = sync.Pool{New: func() any {
		buf := make([]byte, DatagramSize)
		return &buf
	}}
	jumbo = sync.Pool{New: func() any {
		buf := make([]byte, JumboSize)
		return &buf
	}}
)

// Get returns a byte slice of exactly the requested length, backed by a
// pooled buffer when the size fits a class. Pair every Get with a Put.
func Get(size int) []byte {
	var p *sync.Pool
	switch {
	case size <= DatagramSize:
		p = &datagram
	case size <= JumboSize:
		p = &jumbo
	default:
		return make([]byte, size)
	}
	buf := *(p.Get().(*[]byte))
	return buf[:size]
}

// Put returns a buffer obtained from Get to its pool. Buffers outside the
// size classes are left for the garbage collector.
func Put(buf []byte) {
	full := buf[:cap(buf)]
	switch cap(buf) {
	case DatagramSize:
		datagram.Put(&full)
	case JumboSize:
		jumbo.Put(&full)
	}
}
