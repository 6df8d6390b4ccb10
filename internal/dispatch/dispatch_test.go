package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlink/gridlink/internal/protocol/packets"
	"github.com/gridlink/gridlink/pkg/osd"
)

func TestDispatchInRegistrationOrder(t *testing.T) {
	d := New()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		d.Register(packets.TypeTestMessage, func(from string, pkt packets.Packet) {
			order = append(order, i)
		})
	}
	d.Dispatch("circ-1", packets.NewTestMessage())
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatchOnlyMatchingType(t *testing.T) {
	d := New()
	calls := 0
	d.Register(packets.TypePacketAck, func(from string, pkt packets.Packet) {
		calls++
	})
	d.Dispatch("c", packets.NewTestMessage())
	assert.Zero(t, calls)
	d.Dispatch("c", packets.NewPacketAck())
	assert.Equal(t, 1, calls)
}

func TestUnregister(t *testing.T) {
	d := New()
	calls := 0
	h := d.Register(packets.TypeTestMessage, func(from string, pkt packets.Packet) {
		calls++
	})
	d.Dispatch("c", packets.NewTestMessage())
	d.Unregister(packets.TypeTestMessage, h)
	d.Dispatch("c", packets.NewTestMessage())
	assert.Equal(t, 1, calls)

	// Unknown handles are a no-op.
	d.Unregister(packets.TypeTestMessage, h)
	d.Unregister(packets.TypePacketAck, 999)
}

func TestDuplicateCallbacksAreDistinct(t *testing.T) {
	// Registration returns handles precisely so the same function can be
	// added twice and removed individually.
	d := New()
	calls := 0
	cb := func(from string, pkt packets.Packet) { calls++ }
	h1 := d.Register(packets.TypeTestMessage, cb)
	h2 := d.Register(packets.TypeTestMessage, cb)
	require.NotEqual(t, h1, h2)

	d.Dispatch("c", packets.NewTestMessage())
	assert.Equal(t, 2, calls)

	d.Unregister(packets.TypeTestMessage, h1)
	d.Dispatch("c", packets.NewTestMessage())
	assert.Equal(t, 3, calls)
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	d := New()
	var after bool
	d.Register(packets.TypeTestMessage, func(from string, pkt packets.Packet) {
		panic("callback bug")
	})
	d.Register(packets.TypeTestMessage, func(from string, pkt packets.Packet) {
		after = true
	})
	assert.NotPanics(t, func() {
		d.Dispatch("c", packets.NewTestMessage())
	})
	assert.True(t, after, "later callbacks still run after a panic")
}

func TestCircuitIDReachesCallback(t *testing.T) {
	d := New()
	var got string
	d.Register(packets.TypeTestMessage, func(from string, pkt packets.Packet) {
		got = from
	})
	d.Dispatch("circ-42", packets.NewTestMessage())
	assert.Equal(t, "circ-42", got)
}

func TestEventDispatch(t *testing.T) {
	d := New()
	var names []string
	var bodies []osd.Value

	d.RegisterEvent("TeleportFinish", func(name string, body osd.Value) {
		names = append(names, name)
		bodies = append(bodies, body)
	})
	wild := 0
	d.RegisterEvent(WildcardEvent, func(name string, body osd.Value) { wild++ })

	d.DispatchEvent("TeleportFinish", osd.FromInt(5))
	d.DispatchEvent("ChatterBoxInvitation", osd.Null())

	require.Len(t, names, 1)
	assert.Equal(t, "TeleportFinish", names[0])
	assert.Equal(t, int32(5), bodies[0].AsInt())
	assert.Equal(t, 2, wild)
}

func TestEventUnregister(t *testing.T) {
	d := New()
	calls := 0
	h := d.RegisterEvent("X", func(name string, body osd.Value) { calls++ })
	d.DispatchEvent("X", osd.Null())
	d.UnregisterEvent("X", h)
	d.DispatchEvent("X", osd.Null())
	assert.Equal(t, 1, calls)
}

func TestPanickingEventCallbackIsIsolated(t *testing.T) {
	d := New()
	d.RegisterEvent("X", func(name string, body osd.Value) { panic("bug") })
	assert.NotPanics(t, func() { d.DispatchEvent("X", osd.Null()) })
}
