package circuit

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupSetDetectsDuplicates(t *testing.T) {
	d := newDedupSet(4)
	assert.False(t, d.Insert(1))
	assert.False(t, d.Insert(2))
	assert.True(t, d.Insert(1))
	assert.True(t, d.Insert(2))
	assert.Equal(t, 2, d.Len())
}

func TestDedupSetEvictsOldest(t *testing.T) {
	d := newDedupSet(3)
	d.Insert(1)
	d.Insert(2)
	d.Insert(3)
	// 4 evicts 1, the oldest entry.
	assert.False(t, d.Insert(4))
	assert.Equal(t, 3, d.Len())
	assert.False(t, d.Insert(1), "evicted entries are forgotten")
	assert.True(t, d.Insert(4))
}

func TestSequenceAssignmentIsMonotone(t *testing.T) {
	c := newCircuit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, 1, NewThrottle(1_536_000))
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.nextSequence()
	for i := 0; i < 100; i++ {
		next := c.nextSequence()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestAckQueueTake(t *testing.T) {
	c := newCircuit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, 1, NewThrottle(1_536_000))
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := uint32(1); i <= 5; i++ {
		c.queueAck(i)
	}
	first := c.takeAcks(3)
	assert.Equal(t, []uint32{1, 2, 3}, first)
	rest := c.takeAcks(10)
	assert.Equal(t, []uint32{4, 5}, rest)
	assert.Nil(t, c.takeAcks(10))
}

func TestAckReceivedIdempotent(t *testing.T) {
	c := newCircuit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, 1, NewThrottle(1_536_000))
	c.mu.Lock()
	c.pending[7] = &pendingPacket{sequence: 7}
	c.mu.Unlock()

	assert.True(t, c.ackReceived(7), "first ack removes the entry")
	assert.False(t, c.ackReceived(7), "duplicate acks are a no-op")
	assert.False(t, c.ackReceived(8), "unknown sequences are a no-op")
}

func TestOldestUnacked(t *testing.T) {
	c := newCircuit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, 1, NewThrottle(1_536_000))
	c.mu.Lock()
	c.sequence = 10
	c.mu.Unlock()
	assert.Equal(t, uint32(11), c.oldestUnacked(), "next sequence when nothing pending")

	c.mu.Lock()
	c.pending[9] = &pendingPacket{sequence: 9}
	c.pending[4] = &pendingPacket{sequence: 4}
	c.pending[12] = &pendingPacket{sequence: 12}
	c.mu.Unlock()
	assert.Equal(t, uint32(4), c.oldestUnacked())
}
