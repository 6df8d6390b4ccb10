package circuit

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlink/gridlink/internal/dispatch"
	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/internal/protocol/wire"
	"github.com/gridlink/gridlink/pkg/config"
)

// fakeSim is a loopback stand-in for a simulator: it records every
// datagram the engine sends and can inject replies.
type fakeSim struct {
	t    *testing.T
	conn *net.UDPConn

	mu   sync.Mutex
	peer *net.UDPAddr
	seq  uint32

	raw chan []byte
}

func newFakeSim(t *testing.T) *fakeSim {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	s := &fakeSim{t: t, conn: conn, raw: make(chan []byte, 256)}
	go s.readLoop()
	t.Cleanup(func() { _ = conn.Close() })
	return s
}

func (s *fakeSim) addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

func (s *fakeSim) readLoop() {
	buf := make([]byte, 65536)
	for {
		n, peer, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.peer = peer
		s.mu.Unlock()

		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case s.raw <- data:
		default:
		}
	}
}

// nextRaw returns the next captured datagram.
func (s *fakeSim) nextRaw(timeout time.Duration) []byte {
	select {
	case d := <-s.raw:
		return d
	case <-time.After(timeout):
		s.t.Fatalf("no datagram from engine within %v", timeout)
		return nil
	}
}

// expect reads captured datagrams until one decodes to the wanted type.
func (s *fakeSim) expect(typ packets.PacketType, timeout time.Duration) packets.Packet {
	s.t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case d := <-s.raw:
			pkt, err := packets.FromBytes(d)
			if err != nil {
				continue
			}
			if pkt.Type() == typ {
				return pkt
			}
		case <-deadline:
			s.t.Fatalf("engine never sent %s within %v", typ, timeout)
			return nil
		}
	}
}

// send injects a datagram toward the engine, assigning the sim-side
// sequence unless an explicit one is given.
func (s *fakeSim) send(pkt packets.Packet, reliable bool, seq ...uint32) {
	s.t.Helper()
	h := pkt.Header()
	h.Reliable = reliable
	s.mu.Lock()
	if len(seq) > 0 {
		h.Sequence = seq[0]
	} else {
		s.seq++
		h.Sequence = s.seq
	}
	peer := s.peer
	s.mu.Unlock()
	require.NotNil(s.t, peer, "engine has not sent anything yet")

	data, err := pkt.ToBytes()
	require.NoError(s.t, err)
	if h.Zerocoded {
		bodyStart := packets.BodyStart(h, pkt.Type())
		data = append(data[:bodyStart:bodyStart], wire.ZeroEncode(data[bodyStart:])...)
	}
	_, err = s.conn.WriteToUDP(data, peer)
	require.NoError(s.t, err)
}

// ack acknowledges engine sequence numbers via an explicit ack packet.
func (s *fakeSim) ack(seqs ...uint32) {
	pa := packets.NewPacketAck()
	for _, q := range seqs {
		pa.Packets = append(pa.Packets, packets.PacketAckPackets{ID: q})
	}
	s.send(pa, false)
}

func testSettings() *config.Settings {
	cfg := config.Defaults()
	cfg.SendAgentUpdates = false
	cfg.SendAgentThrottle = false
	cfg.PollIntervalMS = 20
	cfg.PingIntervalMS = 60_000
	cfg.AckFlushMS = 100
	cfg.ResendTimeoutMS = 30_000
	cfg.HandshakeTimeout = 3 * time.Second
	cfg.LogoutTimeout = time.Second
	return cfg
}

func startEngine(t *testing.T, cfg *config.Settings, events Events) (*Engine, *dispatch.Dispatcher) {
	t.Helper()
	d := dispatch.New()
	e := New(cfg, d, uuid.New(), uuid.New(), events)
	t.Cleanup(e.Close)
	return e, d
}

func TestConnectSendsUseCircuitCode(t *testing.T) {
	sim := newFakeSim(t)
	e, _ := startEngine(t, testSettings(), Events{})

	id, err := e.Connect(sim.addr(), 0xC0DE, true)
	require.NoError(t, err)
	assert.Equal(t, id, e.Current())
	assert.Equal(t, Handshaking, e.CircuitState(id))

	pkt := sim.expect(packets.TypeUseCircuitCode, 2*time.Second)
	ucc := pkt.(*packets.UseCircuitCode)
	assert.Equal(t, uint32(0xC0DE), ucc.CircuitCode.Code)
	assert.True(t, ucc.Head.Reliable, "the opener is reliable")
}

func TestHandshakePromotesCircuit(t *testing.T) {
	sim := newFakeSim(t)
	var connected []string
	var mu sync.Mutex
	e, _ := startEngine(t, testSettings(), Events{
		SimConnected: func(id string) {
			mu.Lock()
			connected = append(connected, id)
			mu.Unlock()
		},
	})

	id, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)

	ucc := sim.expect(packets.TypeUseCircuitCode, 2*time.Second)
	sim.ack(ucc.Header().Sequence)
	sim.send(packets.NewRegionHandshake(), true)

	require.NoError(t, e.WaitConnected(id))
	assert.Equal(t, Connected, e.CircuitState(id))

	reply := sim.expect(packets.TypeRegionHandshakeReply, 2*time.Second)
	assert.True(t, reply.Header().Reliable)
	sim.expect(packets.TypeCompleteAgentMovement, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{id}, connected)
}

func TestSequenceMonotonicPerSend(t *testing.T) {
	sim := newFakeSim(t)
	e, _ := startEngine(t, testSettings(), Events{})
	_, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)

	first := sim.expect(packets.TypeUseCircuitCode, 2*time.Second).Header().Sequence

	prev := first
	for i := 0; i < 5; i++ {
		msg := packets.NewTestMessage()
		msg.TestBlock1.Test1 = uint32(i)
		require.NoError(t, e.Send(msg, true))
		got := sim.expect(packets.TypeTestMessage, 2*time.Second).Header().Sequence
		assert.Greater(t, got, prev)
		prev = got
	}
}

func TestRetransmitSetsResentFlag(t *testing.T) {
	sim := newFakeSim(t)
	cfg := testSettings()
	cfg.ResendTimeoutMS = 100
	cfg.MaxResendAttempts = 3
	e, _ := startEngine(t, cfg, Events{})

	_, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)

	ucc := sim.expect(packets.TypeUseCircuitCode, 2*time.Second)
	sim.ack(ucc.Header().Sequence)

	msg := packets.NewTestMessage()
	msg.TestBlock1.Test1 = 99
	require.NoError(t, e.Send(msg, true))

	original := sim.expect(packets.TypeTestMessage, 2*time.Second)
	require.False(t, original.Header().Resent)

	// No ack: the engine must re-send the identical sequence with the
	// resent flag inside the clamped RTO window.
	resent := sim.expect(packets.TypeTestMessage, 3*time.Second)
	assert.True(t, resent.Header().Resent)
	assert.Equal(t, original.Header().Sequence, resent.Header().Sequence)
	body := resent.(*packets.TestMessage)
	assert.Equal(t, uint32(99), body.TestBlock1.Test1)
}

func TestRetransmitExhaustionTearsDown(t *testing.T) {
	sim := newFakeSim(t)
	cfg := testSettings()
	cfg.ResendTimeoutMS = 100
	cfg.MaxResendAttempts = 2

	var mu sync.Mutex
	var reason error
	e, _ := startEngine(t, cfg, Events{
		SimDisconnected: func(id string, err error) {
			mu.Lock()
			reason = err
			mu.Unlock()
		},
	})

	id, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)

	// Never ack anything; UseCircuitCode runs out of attempts.
	require.Eventually(t, func() bool {
		return e.CircuitState(id) == Disconnected
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Error(t, reason)
}

func TestInboundDedupDispatchesOnceAcksTwice(t *testing.T) {
	sim := newFakeSim(t)
	e, d := startEngine(t, testSettings(), Events{})

	_, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)
	sim.expect(packets.TypeUseCircuitCode, 2*time.Second)

	var mu sync.Mutex
	calls := 0
	d.Register(packets.TypeTestMessage, func(from string, pkt packets.Packet) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	msg := packets.NewTestMessage()
	msg.Head.Zerocoded = false
	msg.TestBlock1.Test1 = 7
	sim.send(msg, true, 5)

	replay := packets.NewTestMessage()
	replay.Head.Zerocoded = false
	replay.TestBlock1.Test1 = 7
	sim.send(replay, true, 5)

	// Both copies get acked; only the first is dispatched.
	acked := 0
	deadline := time.Now().Add(2 * time.Second)
	for acked < 2 && time.Now().Before(deadline) {
		d := sim.nextRaw(2 * time.Second)
		head, _, _, err := wire.ParseHeader(d)
		require.NoError(t, err)
		for _, a := range head.AckList {
			if a == 5 {
				acked++
			}
		}
		if pkt, err := packets.FromBytes(d); err == nil {
			if pa, ok := pkt.(*packets.PacketAck); ok {
				for _, blk := range pa.Packets {
					if blk.ID == 5 {
						acked++
					}
				}
			}
		}
	}
	assert.Equal(t, 2, acked, "one ack per received copy")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "duplicate payloads are not dispatched")
}

func TestPiggybackAcks(t *testing.T) {
	sim := newFakeSim(t)
	cfg := testSettings()
	// Keep the explicit flush out of the way so the ack must ride along.
	cfg.AckFlushMS = 500
	cfg.AckBatchThreshold = 100
	e, _ := startEngine(t, cfg, Events{})

	_, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)
	sim.expect(packets.TypeUseCircuitCode, 2*time.Second)

	inbound := packets.NewTestMessage()
	inbound.Head.Zerocoded = false
	sim.send(inbound, true, 9)

	// Give the receive loop a moment to queue the ack, then probe until a
	// send carries it.
	var carrier []byte
	deadline := time.Now().Add(3 * time.Second)
	for carrier == nil && time.Now().Before(deadline) {
		probe := packets.NewTestMessage()
		probe.TestBlock1.Test1 = 1
		require.NoError(t, e.Send(probe, false))

		data := sim.nextRaw(time.Second)
		head, _, _, err := wire.ParseHeader(data)
		require.NoError(t, err)
		for _, a := range head.AckList {
			if a == 9 {
				carrier = data
			}
		}
		if carrier == nil {
			time.Sleep(20 * time.Millisecond)
		}
	}
	require.NotNil(t, carrier, "no outbound datagram piggybacked the ack")

	head, _, _, err := wire.ParseHeader(carrier)
	require.NoError(t, err)
	assert.True(t, head.AppendedAcks)
	assert.Equal(t, []uint32{9}, head.AckList)

	// The payload region still decodes to the probe message unchanged.
	pkt, err := packets.FromBytes(carrier)
	require.NoError(t, err)
	tm, ok := pkt.(*packets.TestMessage)
	require.True(t, ok)
	assert.Equal(t, uint32(1), tm.TestBlock1.Test1)
}

func TestExplicitAckFlush(t *testing.T) {
	sim := newFakeSim(t)
	e, _ := startEngine(t, testSettings(), Events{})

	_, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)
	sim.expect(packets.TypeUseCircuitCode, 2*time.Second)

	inbound := packets.NewTestMessage()
	inbound.Head.Zerocoded = false
	sim.send(inbound, true, 3)

	// Nothing else goes out, so the periodic flush must carry the ack.
	pa := sim.expect(packets.TypePacketAck, 2*time.Second).(*packets.PacketAck)
	require.Len(t, pa.Packets, 1)
	assert.Equal(t, uint32(3), pa.Packets[0].ID)
}

func TestPingReply(t *testing.T) {
	sim := newFakeSim(t)
	e, _ := startEngine(t, testSettings(), Events{})

	_, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)
	sim.expect(packets.TypeUseCircuitCode, 2*time.Second)

	ping := packets.NewStartPingCheck()
	ping.PingID.PingID = 42
	sim.send(ping, false)

	pong := sim.expect(packets.TypeCompletePingCheck, 2*time.Second).(*packets.CompletePingCheck)
	assert.Equal(t, byte(42), pong.PingID.PingID)
	assert.False(t, pong.Head.Reliable, "pongs are fire-and-forget")
}

func TestLogoutHandshake(t *testing.T) {
	sim := newFakeSim(t)
	e, _ := startEngine(t, testSettings(), Events{})

	id, err := e.Connect(sim.addr(), 1, true)
	require.NoError(t, err)
	ucc := sim.expect(packets.TypeUseCircuitCode, 2*time.Second)
	sim.ack(ucc.Header().Sequence)

	done := make(chan error, 1)
	go func() { done <- e.Logout() }()

	sim.expect(packets.TypeLogoutRequest, 2*time.Second)
	sim.send(packets.NewLogoutReply(), false)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("logout did not complete")
	}
	assert.Equal(t, Disconnected, e.CircuitState(id))
	assert.Empty(t, e.Current())
}

func TestEnableSimulatorSpawnsCircuit(t *testing.T) {
	simA := newFakeSim(t)
	simB := newFakeSim(t)
	e, _ := startEngine(t, testSettings(), Events{})

	_, err := e.Connect(simA.addr(), 77, true)
	require.NoError(t, err)
	sim := simA
	sim.expect(packets.TypeUseCircuitCode, 2*time.Second)

	en := packets.NewEnableSimulator()
	b := simB.addr()
	copy(en.SimulatorInfo.IP[:], b.IP.To4())
	en.SimulatorInfo.Port = uint16(b.Port)
	sim.send(en, false)

	// The announced endpoint gets its own opener with the same code; the
	// original circuit stays put.
	ucc := simB.expect(packets.TypeUseCircuitCode, 2*time.Second).(*packets.UseCircuitCode)
	assert.Equal(t, uint32(77), ucc.CircuitCode.Code)
	assert.Len(t, e.Circuits(), 2)
}

func TestSendOnUnknownCircuit(t *testing.T) {
	e, _ := startEngine(t, testSettings(), Events{})
	err := e.SendOn("nope", packets.NewTestMessage(), false)
	assert.Error(t, err)
	err = e.Send(packets.NewTestMessage(), false)
	assert.Error(t, err, "no default circuit yet")
}
