// Package circuit implements the UDP circuit engine: per-simulator
// connection state, sequence numbering, reliability, duplicate detection,
// ack generation, liveness probing, and bandwidth throttling.
//
// The engine exclusively owns every circuit's mutable state. Collaborators
// address circuits by opaque id and re-enter through the engine's surface,
// which keeps the circuit/engine reference cycle out of the type graph.
package circuit

import (
	"net"
	"sync"
	"time"

	"github.com/rs/xid"
	"golang.org/x/time/rate"

	"github.com/gridlink/gridlink/internal/protocol/packets"
)

// State is the circuit lifecycle.
type State int

const (
	Disconnected State = iota
	Handshaking
	Connected
	Draining
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Handshaking:
		return "handshaking"
	case Connected:
		return "connected"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// dedupCap bounds the recently-seen sequence set per circuit.
const dedupCap = 1024

// pendingPacket is one reliable datagram awaiting acknowledgement.
type pendingPacket struct {
	sequence uint32
	data     []byte
	sentAt   time.Time
	attempts int
	ptype    packets.PacketType
}

// Circuit is the engine-owned state for one simulator connection. All
// mutable fields are guarded by mu; the lock order is engine table lock
// before circuit lock.
type Circuit struct {
	id   string
	addr *net.UDPAddr
	code uint32

	mu       sync.Mutex
	state    State
	conn     *net.UDPConn
	sequence uint32
	pending  map[uint32]*pendingPacket
	ackQueue []uint32
	dedup    *dedupSet

	lastAckFlush    time.Time
	lastPacketAt    time.Time
	lastAgentUpdate time.Time

	pingID       byte
	lastPingAt   time.Time
	pingOutstand bool
	pingMisses   int
	lag          time.Duration

	throttle   Throttle
	throttleGn uint32
	resendCap  *rate.Limiter

	handshake chan struct{} // closed on Handshaking -> Connected
	logout    chan struct{} // closed on LogoutReply
	closed    chan struct{} // closed on teardown
	closeOnce sync.Once
}

func newCircuit(addr *net.UDPAddr, code uint32, throttle Throttle) *Circuit {
	return &Circuit{
		id:        xid.New().String(),
		addr:      addr,
		code:      code,
		state:     Handshaking,
		pending:   make(map[uint32]*pendingPacket),
		dedup:     newDedupSet(dedupCap),
		throttle:  throttle,
		resendCap: rate.NewLimiter(rate.Limit(throttle.Resend), packets.MTU*4),
		handshake: make(chan struct{}),
		logout:    make(chan struct{}),
		closed:    make(chan struct{}),
	}
}

// ID returns the opaque circuit id.
func (c *Circuit) ID() string { return c.id }

// Addr returns the simulator endpoint.
func (c *Circuit) Addr() *net.UDPAddr { return c.addr }

// Code returns the 32-bit circuit code.
func (c *Circuit) Code() uint32 { return c.code }

// State returns the current lifecycle state.
func (c *Circuit) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lag returns the last measured ping round trip.
func (c *Circuit) Lag() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lag
}

// nextSequence reserves the next outbound sequence number. Callers hold mu.
func (c *Circuit) nextSequence() uint32 {
	c.sequence++
	return c.sequence
}

// queueAck records a sequence owed to the peer. Callers hold mu.
func (c *Circuit) queueAck(seq uint32) {
	c.ackQueue = append(c.ackQueue, seq)
}

// takeAcks removes and returns up to max queued acks. Callers hold mu.
func (c *Circuit) takeAcks(max int) []uint32 {
	if len(c.ackQueue) == 0 {
		return nil
	}
	n := len(c.ackQueue)
	if n > max {
		n = max
	}
	out := c.ackQueue[:n:n]
	c.ackQueue = append([]uint32(nil), c.ackQueue[n:]...)
	return out
}

// ackReceived drops the pending entry for seq. Duplicate acks are a no-op,
// so removal happens exactly once per sequence.
func (c *Circuit) ackReceived(seq uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[seq]; !ok {
		return false
	}
	delete(c.pending, seq)
	return true
}

// oldestUnacked returns the lowest pending sequence, or the next sequence
// when nothing is outstanding. Ping probes carry it.
func (c *Circuit) oldestUnacked() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return c.sequence + 1
	}
	var min uint32
	first := true
	for seq := range c.pending {
		if first || seq < min {
			min = seq
			first = false
		}
	}
	return min
}

// dedupSet is a bounded set of recently seen inbound sequence numbers,
// evicting oldest-first past its capacity.
type dedupSet struct {
	seen  map[uint32]struct{}
	order []uint32
	head  int
	cap   int
}

func newDedupSet(capacity int) *dedupSet {
	return &dedupSet{
		seen:  make(map[uint32]struct{}, capacity),
		order: make([]uint32, 0, capacity),
		cap:   capacity,
	}
}

// Insert adds seq and reports whether it was already present.
func (d *dedupSet) Insert(seq uint32) (duplicate bool) {
	if _, ok := d.seen[seq]; ok {
		return true
	}
	if len(d.order) < d.cap {
		d.order = append(d.order, seq)
	} else {
		delete(d.seen, d.order[d.head])
		d.order[d.head] = seq
		d.head = (d.head + 1) % d.cap
	}
	d.seen[seq] = struct{}{}
	return false
}

// Len returns the current set size.
func (d *dedupSet) Len() int { return len(d.seen) }
