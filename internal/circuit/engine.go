package circuit

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/gridlink/gridlink/internal/dispatch"
	"github.com/gridlink/gridlink/internal/logger"
	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/internal/protocol/protoerr"
	"github.com/gridlink/gridlink/internal/protocol/wire"
	"github.com/gridlink/gridlink/pkg/bufpool"
	"github.com/gridlink/gridlink/pkg/config"
	"github.com/gridlink/gridlink/pkg/metrics"
)

// maintenanceInterval paces the timer loop that drives retransmission, ack
// flushing, pings, and agent updates.
const maintenanceInterval = 100 * time.Millisecond

// Events are the engine-level notifications a collaborator can hook.
// All fields are optional and must be set before the first Connect.
type Events struct {
	// SimConnected fires when a circuit completes its handshake.
	SimConnected func(id string)

	// SimDisconnected fires when a circuit is torn down. reason is nil for
	// a requested disconnect.
	SimDisconnected func(id string, reason error)

	// Disconnected fires when the default circuit goes away. Teardown of a
	// non-default circuit does not fire it, even when it is the last one.
	Disconnected func(reason error)
}

// Engine owns the circuit table and every circuit's runtime. One receive
// goroutine runs per circuit; one maintenance goroutine serves the whole
// table. Lock order: engine table lock before any circuit lock.
type Engine struct {
	settings   *config.Settings
	dispatcher *dispatch.Dispatcher
	events     Events

	agentID   uuid.UUID
	sessionID uuid.UUID

	mu       sync.Mutex
	circuits map[string]*Circuit
	current  string

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New builds an engine and starts its maintenance loop. The dispatcher
// receives every decoded inbound packet.
func New(settings *config.Settings, d *dispatch.Dispatcher, agentID, sessionID uuid.UUID, events Events) *Engine {
	e := &Engine{
		settings:   settings,
		dispatcher: d,
		events:     events,
		agentID:    agentID,
		sessionID:  sessionID,
		circuits:   make(map[string]*Circuit),
		stop:       make(chan struct{}),
	}
	e.wg.Add(1)
	go e.maintenanceLoop()
	return e
}

// Connect dials a simulator endpoint, registers the circuit, and opens the
// handshake by sending UseCircuitCode. The returned id addresses the
// circuit in every other engine operation; the handshake completes
// asynchronously (see WaitConnected).
func (e *Engine) Connect(addr *net.UDPAddr, code uint32, setDefault bool) (string, error) {
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return "", protoerr.IO(err)
	}

	c := newCircuit(addr, code, NewThrottle(e.settings.ThrottleTotal))
	c.conn = conn
	now := time.Now()
	c.lastPacketAt = now
	c.lastAckFlush = now
	c.lastPingAt = now

	e.mu.Lock()
	e.circuits[c.id] = c
	if setDefault || e.current == "" {
		e.current = c.id
	}
	e.mu.Unlock()

	e.wg.Add(1)
	go e.recvLoop(c)

	logger.Info("circuit opened",
		logger.KeyCircuit, c.id,
		logger.KeyEndpoint, addr.String(),
		"code", code)

	ucc := packets.NewUseCircuitCode()
	ucc.CircuitCode.Code = code
	ucc.CircuitCode.SessionID = e.sessionID
	ucc.CircuitCode.ID = e.agentID
	if err := e.sendOn(c, ucc, true); err != nil {
		e.teardown(c, err)
		return "", err
	}

	if e.settings.SendAgentThrottle {
		if err := e.sendThrottle(c); err != nil {
			logger.Warn("throttle send failed", logger.KeyCircuit, c.id, logger.KeyError, err)
		}
	}

	return c.id, nil
}

// WaitConnected blocks until the circuit completes its handshake, fails,
// or the handshake timeout expires.
func (e *Engine) WaitConnected(id string) error {
	c := e.lookup(id)
	if c == nil {
		return protoerr.NotConnected("unknown circuit %s", id)
	}
	select {
	case <-c.handshake:
		return nil
	case <-c.closed:
		return protoerr.NotConnected("circuit %s closed during handshake", id)
	case <-time.After(e.settings.HandshakeTimeout):
		e.teardown(c, protoerr.Timeout("handshake on circuit %s", id))
		return protoerr.Timeout("handshake on circuit %s", id)
	}
}

// Current returns the default circuit id, or empty when none is connected.
func (e *Engine) Current() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Circuits returns the ids of every live circuit.
func (e *Engine) Circuits() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.circuits))
	for id := range e.circuits {
		out = append(out, id)
	}
	return out
}

// CircuitState returns the lifecycle state of a circuit, or Disconnected
// for unknown ids.
func (e *Engine) CircuitState(id string) State {
	c := e.lookup(id)
	if c == nil {
		return Disconnected
	}
	return c.State()
}

// CircuitLag returns the last measured round trip of a circuit.
func (e *Engine) CircuitLag(id string) time.Duration {
	c := e.lookup(id)
	if c == nil {
		return 0
	}
	return c.Lag()
}

// Send transmits a message on the default circuit.
func (e *Engine) Send(pkt packets.Packet, reliable bool) error {
	return e.SendOn(e.Current(), pkt, reliable)
}

// SendOn transmits a message on a specific circuit. Reliable messages are
// retained until the peer acknowledges their sequence numbers.
func (e *Engine) SendOn(id string, pkt packets.Packet, reliable bool) error {
	c := e.lookup(id)
	if c == nil {
		return protoerr.NotConnected("unknown circuit %q", id)
	}
	return e.sendOn(c, pkt, reliable)
}

// SendRaw transmits pre-framed bytes on a circuit, bypassing sequence
// assignment and reliability.
func (e *Engine) SendRaw(id string, data []byte) error {
	c := e.lookup(id)
	if c == nil {
		return protoerr.NotConnected("unknown circuit %q", id)
	}
	if _, err := c.conn.Write(data); err != nil {
		return protoerr.IO(err)
	}
	return nil
}

// sendOn serializes, splits, sequences, zero-codes, piggybacks acks, and
// transmits. Encode overflows surface before any bytes hit the socket.
func (e *Engine) sendOn(c *Circuit, pkt packets.Packet, reliable bool) error {
	if c.State() == Disconnected {
		return protoerr.NotConnected("circuit %s is disconnected", c.id)
	}

	hdr := pkt.Header()
	hdr.Reliable = reliable

	frags, err := pkt.ToBytesMultiple()
	if err != nil {
		return err
	}

	bodyStart := packets.BodyStart(hdr, pkt.Type())
	for i, frag := range frags {
		data := frag
		if hdr.Zerocoded {
			coded := wire.ZeroEncode(frag[bodyStart:])
			data = append(frag[:bodyStart:bodyStart], coded...)
		}

		c.mu.Lock()
		seq := c.nextSequence()
		binary.BigEndian.PutUint32(data[1:5], seq)

		// Acks ride only on the first fragment; later fragments have the
		// flag cleared by the splitter.
		if i == 0 {
			room := (packets.MTU - len(data) - 1) / 4
			if room > 255 {
				room = 255
			}
			if room > 0 {
				if acks := c.takeAcks(room); len(acks) > 0 {
					data = wire.AppendAckTail(data, acks)
					data[0] |= wire.FlagAppendedAcks
					metrics.AcksSent.WithLabelValues("piggyback").Add(float64(len(acks)))
				}
			}
		}

		if reliable {
			c.pending[seq] = &pendingPacket{
				sequence: seq,
				data:     data,
				sentAt:   time.Now(),
				attempts: 1,
				ptype:    pkt.Type(),
			}
		}
		c.mu.Unlock()

		if _, err := c.conn.Write(data); err != nil {
			// Non-reliable sends are fire-and-forget; reliable ones stay
			// in the pending set and ride the retransmit timer.
			logger.Debug("udp write failed",
				logger.KeyCircuit, c.id,
				logger.KeyPacket, pkt.Type().String(),
				logger.KeyError, err)
			if !reliable {
				return protoerr.IO(err)
			}
		}
		metrics.PacketsSent.WithLabelValues(pkt.Type().String()).Inc()
	}
	return nil
}

// sendThrottle advertises the circuit's bandwidth schedule.
func (e *Engine) sendThrottle(c *Circuit) error {
	c.mu.Lock()
	c.throttleGn++
	gen := c.throttleGn
	vec := c.throttle.Bytes()
	c.mu.Unlock()

	at := packets.NewAgentThrottle()
	at.AgentData.AgentID = e.agentID
	at.AgentData.SessionID = e.sessionID
	at.AgentData.CircuitCode = c.code
	at.Throttle.GenCounter = gen
	at.Throttle.Throttles = vec
	return e.sendOn(c, at, true)
}

// SetThrottle re-splits the total budget and advertises it on every
// circuit.
func (e *Engine) SetThrottle(total float64) {
	t := NewThrottle(total)
	for _, c := range e.snapshot() {
		c.mu.Lock()
		c.throttle = t
		c.resendCap.SetLimit(rate.Limit(t.Resend))
		c.mu.Unlock()
		if err := e.sendThrottle(c); err != nil {
			logger.Warn("throttle send failed", logger.KeyCircuit, c.id, logger.KeyError, err)
		}
	}
}

// Logout performs the cooperative client shutdown on the default circuit:
// LogoutRequest, a bounded wait for LogoutReply, then teardown.
func (e *Engine) Logout() error {
	c := e.lookup(e.Current())
	if c == nil {
		return protoerr.NotConnected("no default circuit")
	}

	c.mu.Lock()
	c.state = Draining
	c.mu.Unlock()

	lr := packets.NewLogoutRequest()
	lr.AgentData.AgentID = e.agentID
	lr.AgentData.SessionID = e.sessionID
	if err := e.sendOn(c, lr, true); err != nil {
		e.teardown(c, err)
		return err
	}

	select {
	case <-c.logout:
	case <-c.closed:
	case <-time.After(e.settings.LogoutTimeout):
		// The peer never replied; demand the close instead.
		logger.Warn("logout reply timed out", logger.KeyCircuit, c.id)
		_ = e.sendOn(c, packets.NewCloseCircuit(), false)
	}

	e.flushAcks(c, true)
	e.teardown(c, nil)
	return nil
}

// Disconnect tears down one circuit after notifying the peer.
func (e *Engine) Disconnect(id string) error {
	c := e.lookup(id)
	if c == nil {
		return protoerr.NotConnected("unknown circuit %q", id)
	}
	_ = e.sendOn(c, packets.NewCloseCircuit(), false)
	e.flushAcks(c, true)
	e.teardown(c, nil)
	return nil
}

// Close tears down every circuit and stops the engine's goroutines.
func (e *Engine) Close() {
	for _, c := range e.snapshot() {
		_ = e.sendOn(c, packets.NewCloseCircuit(), false)
		e.teardown(c, nil)
	}
	e.stopOnce.Do(func() { close(e.stop) })
	e.wg.Wait()
}

func (e *Engine) lookup(id string) *Circuit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.circuits[id]
}

func (e *Engine) snapshot() []*Circuit {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Circuit, 0, len(e.circuits))
	for _, c := range e.circuits {
		out = append(out, c)
	}
	return out
}

// recvLoop pumps one circuit's socket. The read deadline doubles as the
// shutdown poll.
func (e *Engine) recvLoop(c *Circuit) {
	defer e.wg.Done()

	buf := make([]byte, 65536)
	for {
		select {
		case <-e.stop:
			return
		case <-c.closed:
			return
		default:
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(e.settings.PollInterval())); err != nil {
			return
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-c.closed:
			case <-e.stop:
			default:
				logger.Debug("udp read failed", logger.KeyCircuit, c.id, logger.KeyError, err)
			}
			return
		}

		// handleDatagram is synchronous and every decoded field is copied
		// out of the raw bytes, so the buffer can go straight back.
		data := bufpool.Get(n)
		copy(data, buf[:n])
		e.handleDatagram(c, data)
		bufpool.Put(data)
	}
}

// handleDatagram decodes one inbound datagram and runs it through acking,
// dedup, the engine's own protocol handling, and the dispatcher. Parse
// failures are logged and dropped; the circuit survives.
func (e *Engine) handleDatagram(c *Circuit, data []byte) {
	pkt, err := packets.FromBytes(data)
	if err != nil {
		logger.Debug("malformed datagram",
			logger.KeyCircuit, c.id,
			"bytes", len(data),
			logger.KeyError, err)
		metrics.PacketsDropped.WithLabelValues("malformed").Inc()
		return
	}
	hdr := pkt.Header()

	for _, seq := range hdr.AckList {
		if c.ackReceived(seq) {
			metrics.AcksReceived.Inc()
		}
	}
	if pa, ok := pkt.(*packets.PacketAck); ok {
		for _, blk := range pa.Packets {
			if c.ackReceived(blk.ID) {
				metrics.AcksReceived.Inc()
			}
		}
	}

	c.mu.Lock()
	c.lastPacketAt = time.Now()
	if hdr.Reliable {
		c.queueAck(hdr.Sequence)
	}
	dup := c.dedup.Insert(hdr.Sequence)
	c.mu.Unlock()

	if dup {
		// Already acked above; the payload is not dispatched again.
		metrics.PacketsDropped.WithLabelValues("duplicate").Inc()
		return
	}
	metrics.PacketsReceived.WithLabelValues(pkt.Type().String()).Inc()

	e.handleProtocol(c, pkt)
	e.dispatcher.Dispatch(c.id, pkt)
}

// handleProtocol covers the messages the engine itself owns: liveness,
// handshake, neighbor announcements, and teardown notices. Collaborator
// callbacks still see these packets through the dispatcher afterwards.
func (e *Engine) handleProtocol(c *Circuit, pkt packets.Packet) {
	switch p := pkt.(type) {
	case *packets.StartPingCheck:
		pong := packets.NewCompletePingCheck()
		pong.PingID.PingID = p.PingID.PingID
		if err := e.sendOn(c, pong, false); err != nil {
			logger.Debug("pong failed", logger.KeyCircuit, c.id, logger.KeyError, err)
		}

	case *packets.CompletePingCheck:
		c.mu.Lock()
		if c.pingOutstand && p.PingID.PingID == c.pingID {
			c.lag = time.Since(c.lastPingAt)
			c.pingOutstand = false
			c.pingMisses = 0
			metrics.PingRTT.Observe(c.lag.Seconds())
		}
		c.mu.Unlock()

	case *packets.RegionHandshake:
		e.completeHandshake(c)

	case *packets.EnableSimulator:
		if !e.settings.MultipleSims {
			return
		}
		ip := p.SimulatorInfo.IP
		addr := &net.UDPAddr{
			IP:   net.IPv4(ip[0], ip[1], ip[2], ip[3]),
			Port: int(p.SimulatorInfo.Port),
		}
		if _, err := e.Connect(addr, c.code, false); err != nil {
			logger.Warn("neighbor circuit failed",
				logger.KeyEndpoint, addr.String(),
				logger.KeyError, err)
		}

	case *packets.LogoutReply:
		c.mu.Lock()
		select {
		case <-c.logout:
		default:
			close(c.logout)
		}
		c.mu.Unlock()

	case *packets.DisableSimulator:
		e.teardown(c, nil)

	case *packets.KickUser:
		e.teardown(c, protoerr.NotConnected("kicked: %s", string(p.UserInfo.Reason)))

	case *packets.CloseCircuit:
		e.teardown(c, nil)
	}
}

// completeHandshake replies to RegionHandshake and promotes the circuit.
func (e *Engine) completeHandshake(c *Circuit) {
	c.mu.Lock()
	if c.state != Handshaking {
		c.mu.Unlock()
		return
	}
	c.state = Connected
	c.mu.Unlock()

	reply := packets.NewRegionHandshakeReply()
	reply.AgentData.AgentID = e.agentID
	reply.AgentData.SessionID = e.sessionID
	if err := e.sendOn(c, reply, true); err != nil {
		logger.Warn("handshake reply failed", logger.KeyCircuit, c.id, logger.KeyError, err)
	}

	cam := packets.NewCompleteAgentMovement()
	cam.AgentData.AgentID = e.agentID
	cam.AgentData.SessionID = e.sessionID
	cam.AgentData.CircuitCode = c.code
	if err := e.sendOn(c, cam, true); err != nil {
		logger.Warn("agent movement failed", logger.KeyCircuit, c.id, logger.KeyError, err)
	}

	close(c.handshake)
	metrics.ConnectedCircuits.Inc()
	logger.Info("circuit connected", logger.KeyCircuit, c.id, logger.KeyEndpoint, c.addr.String())

	if e.events.SimConnected != nil {
		e.events.SimConnected(c.id)
	}
}

// maintenanceLoop drives retransmission, ack flushing, pings, and the
// agent update stream for every circuit.
func (e *Engine) maintenanceLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
		}
		for _, c := range e.snapshot() {
			e.retransmit(c)
			e.flushAcks(c, false)
			e.pingCheck(c)
			e.agentUpdate(c)
		}
	}
}

// rto derives the retransmission timeout for the given attempt from the
// measured lag, with exponential backoff, clamped to [100ms, 60s].
func (e *Engine) rto(c *Circuit, attempts int) time.Duration {
	base := e.settings.ResendTimeout()
	if c.lag > 0 {
		base = c.lag * 3
	}
	d := base << uint(attempts-1)
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	if d > 60*time.Second {
		d = 60 * time.Second
	}
	return d
}

// retransmit re-sends overdue reliable packets with the resent flag, and
// tears the circuit down when attempts are exhausted.
func (e *Engine) retransmit(c *Circuit) {
	now := time.Now()
	var due []*pendingPacket
	exhausted := false

	c.mu.Lock()
	for _, p := range c.pending {
		if now.Sub(p.sentAt) < e.rto(c, p.attempts) {
			continue
		}
		if p.attempts >= e.settings.MaxResendAttempts {
			exhausted = true
			break
		}
		if !c.resendCap.AllowN(now, len(p.data)) {
			// Over the resend channel budget; the next tick retries.
			break
		}
		p.attempts++
		p.sentAt = now
		p.data[0] |= wire.FlagResent
		due = append(due, p)
	}
	c.mu.Unlock()

	if exhausted {
		logger.Warn("retransmit attempts exhausted", logger.KeyCircuit, c.id)
		e.teardown(c, protoerr.Timeout("ack on circuit %s", c.id))
		return
	}

	for _, p := range due {
		if _, err := c.conn.Write(p.data); err != nil {
			logger.Debug("retransmit write failed",
				logger.KeyCircuit, c.id,
				logger.KeySequence, p.sequence,
				logger.KeyError, err)
			continue
		}
		metrics.PacketsResent.Inc()
		logger.Debug("packet resent",
			logger.KeyCircuit, c.id,
			logger.KeyPacket, p.ptype.String(),
			logger.KeySequence, p.sequence,
			logger.KeyAttempt, p.attempts)
	}
}

// flushAcks sends an explicit ack packet when the queue passes the batch
// threshold, when the flush interval elapses, or when forced during
// shutdown.
func (e *Engine) flushAcks(c *Circuit, force bool) {
	now := time.Now()

	c.mu.Lock()
	n := len(c.ackQueue)
	trigger := force && n > 0 ||
		n >= e.settings.AckBatchThreshold ||
		(n > 0 && now.Sub(c.lastAckFlush) >= e.settings.AckFlushInterval())
	var acks []uint32
	if trigger {
		acks = c.takeAcks(255)
		c.lastAckFlush = now
	}
	c.mu.Unlock()

	if len(acks) == 0 {
		return
	}
	pa := packets.NewPacketAck()
	pa.Packets = make([]packets.PacketAckPackets, len(acks))
	for i, seq := range acks {
		pa.Packets[i].ID = seq
	}
	if err := e.sendOn(c, pa, false); err != nil {
		logger.Debug("ack flush failed", logger.KeyCircuit, c.id, logger.KeyError, err)
		return
	}
	metrics.AcksSent.WithLabelValues("explicit").Add(float64(len(acks)))
}

// pingCheck sends the periodic liveness probe and escalates missed
// windows: two misses mark the circuit a disconnect candidate, a third
// confirms the disconnect.
func (e *Engine) pingCheck(c *Circuit) {
	now := time.Now()

	c.mu.Lock()
	if c.state != Connected || now.Sub(c.lastPingAt) < e.settings.PingInterval() {
		c.mu.Unlock()
		return
	}
	if c.pingOutstand {
		c.pingMisses++
	}
	misses := c.pingMisses
	quiet := now.Sub(c.lastPacketAt)
	c.pingID++
	c.lastPingAt = now
	c.pingOutstand = true
	id := c.pingID
	c.mu.Unlock()

	if misses >= 3 || quiet > e.settings.SimulatorTimeout {
		e.teardown(c, protoerr.Timeout("liveness on circuit %s", c.id))
		return
	}
	if misses == 2 {
		logger.Warn("circuit is a disconnect candidate", logger.KeyCircuit, c.id, "misses", misses)
	}

	ping := packets.NewStartPingCheck()
	ping.PingID.PingID = id
	ping.PingID.OldestUnacked = c.oldestUnacked()
	if err := e.sendOn(c, ping, false); err != nil {
		logger.Debug("ping failed", logger.KeyCircuit, c.id, logger.KeyError, err)
	}
}

// agentUpdate keeps the movement stream alive once connected.
func (e *Engine) agentUpdate(c *Circuit) {
	if !e.settings.SendAgentUpdates {
		return
	}
	now := time.Now()

	c.mu.Lock()
	if c.state != Connected || now.Sub(c.lastAgentUpdate) < e.settings.AgentUpdateInterval() {
		c.mu.Unlock()
		return
	}
	c.lastAgentUpdate = now
	c.mu.Unlock()

	au := packets.NewAgentUpdate()
	au.AgentData.AgentID = e.agentID
	au.AgentData.SessionID = e.sessionID
	au.AgentData.BodyRotation.W = 1
	au.AgentData.HeadRotation.W = 1
	if err := e.sendOn(c, au, false); err != nil {
		logger.Debug("agent update failed", logger.KeyCircuit, c.id, logger.KeyError, err)
	}
}

// teardown abandons pending reliable packets, releases the circuit's
// queues, closes the socket, and fires the disconnect notifications.
func (e *Engine) teardown(c *Circuit, reason error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		wasConnected := c.state == Connected
		c.state = Disconnected
		abandoned := len(c.pending)
		c.pending = make(map[uint32]*pendingPacket)
		c.ackQueue = nil
		c.dedup = newDedupSet(dedupCap)
		c.mu.Unlock()

		close(c.closed)
		_ = c.conn.Close()

		e.mu.Lock()
		delete(e.circuits, c.id)
		wasCurrent := e.current == c.id
		if wasCurrent {
			e.current = ""
		}
		e.mu.Unlock()

		if wasConnected {
			metrics.ConnectedCircuits.Dec()
		}
		logger.Info("circuit closed",
			logger.KeyCircuit, c.id,
			logger.KeyEndpoint, c.addr.String(),
			"abandoned", abandoned,
			logger.KeyError, reason)

		if e.events.SimDisconnected != nil {
			e.events.SimDisconnected(c.id, reason)
		}
		if wasCurrent && e.events.Disconnected != nil {
			e.events.Disconnected(reason)
		}
	})
}
